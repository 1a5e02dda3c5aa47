package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/pion/emotioncam"
	"github.com/pion/emotioncam/internal/rate"
	"github.com/pion/emotioncam/pkg/driver"
	"github.com/pion/emotioncam/pkg/prop"
)

var (
	probeDevice   string
	probeDuration time.Duration
)

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Print a device's supported properties and measure its frame rate",
	RunE: func(cmd *cobra.Command, args []string) error {
		drivers := driver.GetManager().Query(func(d driver.Driver) bool {
			return d.ID() == probeDevice || d.Info().Label == probeDevice
		})
		if len(drivers) == 0 {
			return fmt.Errorf("no device %q, see %s devices", probeDevice, rootCmd.Name())
		}
		d := drivers[0]

		if err := d.Open(); err != nil {
			return err
		}
		defer d.Close()

		props := d.Properties()
		for _, p := range props {
			fmt.Println(p)
		}
		if len(props) == 0 {
			return nil
		}

		v := emotioncam.DefaultVideo
		v.Merge(props[0])
		r, err := d.VideoRecord(v)
		if err != nil {
			return err
		}
		fps, err := rate.MeasureFrameRate(r, probeDuration)
		if err != nil {
			return err
		}
		fmt.Printf("%v: %.1f fps measured over %v\n", prop.Video{Width: v.Width, Height: v.Height, FrameFormat: v.FrameFormat}, fps, probeDuration)
		return nil
	},
}

func init() {
	probeCmd.Flags().StringVarP(&probeDevice, "device", "d", "", "Device ID or label")
	probeCmd.Flags().DurationVar(&probeDuration, "duration", 3*time.Second, "Measurement duration")
	probeCmd.MarkFlagRequired("device")
	rootCmd.AddCommand(probeCmd)
}
