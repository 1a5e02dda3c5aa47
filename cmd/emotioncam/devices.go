package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/pion/emotioncam"
	"github.com/pion/emotioncam/pkg/driver"
)

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List capture devices",
	RunE: func(cmd *cobra.Command, args []string) error {
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTYPE\tPOSITION\tLABEL")
		for _, d := range emotioncam.EnumerateDevices(driver.GetManager()) {
			position := string(d.Position)
			if position == "" {
				position = "-"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", d.DeviceID, d.DeviceType, position, d.Label)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(devicesCmd)
}
