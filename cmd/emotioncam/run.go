package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pion/emotioncam"
	"github.com/pion/emotioncam/pkg/backend"
	"github.com/pion/emotioncam/pkg/driver"
	"github.com/pion/emotioncam/pkg/driver/videotest"
	"github.com/pion/emotioncam/pkg/engine/enginetest"
	"github.com/pion/emotioncam/pkg/engine/onnx"
	"github.com/pion/emotioncam/pkg/engine/tflite"
	"github.com/pion/emotioncam/pkg/inference"
	"github.com/pion/emotioncam/pkg/io/video"
	"github.com/pion/emotioncam/pkg/prop"
	"github.com/pion/emotioncam/pkg/sink"
	"github.com/pion/emotioncam/pkg/tensor"
)

// Options holds the configuration of the run command
type Options struct {
	Backend       string
	TFLiteModel   string
	ONNXModel     string
	ONNXLibrary   string
	ONNXInput     string
	ONNXOutput    string
	Threads       int
	Width         int
	Height        int
	FrameRate     float32
	MaxRate       float32
	Detect        time.Duration
	Scaler        string
	Device        string
	Screen        bool
	TestPattern   bool
	DryRun        bool
	StatsInterval time.Duration
}

var runOpts Options

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Classify the emotion seen by a camera until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPipeline(cmd, runOpts)
	},
}

func init() {
	f := runCmd.Flags()
	f.StringVarP(&runOpts.Backend, "backend", "b", backend.TFLite.String(), "Inference backend (tflite, onnx)")
	f.StringVar(&runOpts.TFLiteModel, "tflite-model", tflite.DefaultModelPath, "Path to the TFLite model")
	f.StringVar(&runOpts.ONNXModel, "onnx-model", onnx.DefaultModelPath, "Path to the ONNX model")
	f.StringVar(&runOpts.ONNXLibrary, "onnx-lib", "", "Path to the onnxruntime shared library")
	f.StringVar(&runOpts.ONNXInput, "onnx-input", onnx.DefaultInputName, "ONNX model input name")
	f.StringVar(&runOpts.ONNXOutput, "onnx-output", onnx.DefaultOutputName, "ONNX model output name")
	f.IntVarP(&runOpts.Threads, "threads", "t", 0, "Inference threads (0 lets the runtime decide)")
	f.IntVar(&runOpts.Width, "width", emotioncam.DefaultVideo.Width, "Requested capture width")
	f.IntVar(&runOpts.Height, "height", emotioncam.DefaultVideo.Height, "Requested capture height")
	f.Float32Var(&runOpts.FrameRate, "fps", emotioncam.DefaultVideo.FrameRate, "Requested capture frame rate")
	f.Float32Var(&runOpts.MaxRate, "max-rate", 0, "Drop frames above this rate before classification (0 keeps all)")
	f.DurationVar(&runOpts.Detect, "detect", 0, "Report the measured capture size and frame rate at this interval (0 disables)")
	f.StringVar(&runOpts.Scaler, "scaler", "bilinear", "Resize kernel (nearest, approx-bilinear, bilinear, catmull-rom)")
	f.StringVarP(&runOpts.Device, "device", "d", "", "Device ID or label to bind instead of the preferred camera")
	f.BoolVar(&runOpts.Screen, "screen", false, "Classify the first display instead of a camera")
	f.BoolVar(&runOpts.TestPattern, "test-pattern", false, "Register a color bar camera")
	f.BoolVar(&runOpts.DryRun, "dry-run", false, "Use a stub engine that always answers neutral")
	f.DurationVar(&runOpts.StatsInterval, "stats", 10*time.Second, "Interval between stats lines (0 disables)")

	rootCmd.AddCommand(runCmd)
}

func parseScaler(name string) (tensor.Scaler, error) {
	switch strings.ToLower(name) {
	case "nearest":
		return tensor.ScalerNearestNeighbor, nil
	case "approx-bilinear":
		return tensor.ScalerApproxBiLinear, nil
	case "bilinear", "":
		return tensor.ScalerBiLinear, nil
	case "catmull-rom":
		return tensor.ScalerCatmullRom, nil
	default:
		return nil, fmt.Errorf("unknown scaler %q", name)
	}
}

// videoTransformers returns the transforms applied to captured frames before
// they are scheduled. Changes seen by --detect are written to w.
func videoTransformers(opts Options, w io.Writer) []video.TransformFunc {
	var transforms []video.TransformFunc
	if opts.MaxRate > 0 {
		transforms = append(transforms, video.Throttle(opts.MaxRate))
	}
	if opts.Detect > 0 {
		transforms = append(transforms, video.DetectChanges(opts.Detect, func(v prop.Video) {
			fmt.Fprintf(w, "Capture %v\n", v)
		}))
	}
	return transforms
}

// buildDispatcher loads the engine of b only, so the other backend's model
// doesn't need to be present.
func buildDispatcher(opts Options, b backend.Backend) (*inference.Dispatcher, func(), error) {
	if opts.DryRun {
		neutral := map[backend.Backend][]float32{
			backend.TFLite: {0, 0, 0, 0, 0, 0, 1},
			backend.ONNX:   {0, 0, 0, 0, 1, 0, 0},
		}
		return inference.NewDispatcher(
			inference.WithEngine(backend.TFLite, &enginetest.Static{Scores: neutral[backend.TFLite]}),
			inference.WithEngine(backend.ONNX, &enginetest.Static{Scores: neutral[backend.ONNX]}),
		), func() {}, nil
	}

	switch b {
	case backend.TFLite:
		e, err := tflite.New(tflite.Config{ModelPath: opts.TFLiteModel, NumThreads: opts.Threads})
		if err != nil {
			return nil, nil, err
		}
		return inference.NewDispatcher(inference.WithEngine(b, e)), func() { e.Close() }, nil
	case backend.ONNX:
		e, err := onnx.New(onnx.Config{
			ModelPath:         opts.ONNXModel,
			InputName:         opts.ONNXInput,
			OutputName:        opts.ONNXOutput,
			SharedLibraryPath: opts.ONNXLibrary,
			NumThreads:        opts.Threads,
		})
		if err != nil {
			return nil, nil, err
		}
		return inference.NewDispatcher(inference.WithEngine(b, e)), func() { e.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("invalid backend %v", b)
	}
}

func findDevice(m *driver.Manager, opts Options) (driver.Driver, error) {
	var filter driver.FilterFn
	switch {
	case opts.Device != "":
		filter = func(d driver.Driver) bool {
			return d.ID() == opts.Device || d.Info().Label == opts.Device
		}
	case opts.Screen:
		filter = driver.FilterDeviceType(driver.Screen)
	default:
		return nil, nil
	}

	drivers := m.Query(filter)
	if len(drivers) == 0 {
		return nil, errors.New("no matching device")
	}
	return drivers[0], nil
}

func runPipeline(cmd *cobra.Command, opts Options) error {
	ctx := cmd.Context()

	b, err := backend.Parse(opts.Backend)
	if err != nil {
		return err
	}
	scaler, err := parseScaler(opts.Scaler)
	if err != nil {
		return err
	}
	if opts.TestPattern {
		videotest.Register("ColorBars", driver.PositionFront)
	}

	dispatcher, closeEngine, err := buildDispatcher(opts, b)
	if err != nil {
		return fmt.Errorf("failed to load %v engine: %w", b, err)
	}
	defer closeEngine()

	out := sink.Func(func(r inference.Result) {
		if r.Err != nil {
			fmt.Fprintf(os.Stdout, "%6d  %-8s  %v\n", r.Seq, r.Label, r.Err)
			return
		}
		fmt.Fprintf(os.Stdout, "%6d  %-8s  %.3f\n", r.Seq, r.Label, r.Scores[r.Index])
	})
	defer out.Close()

	pipelineOpts := []emotioncam.Option{
		emotioncam.WithBackend(b),
		emotioncam.WithScaler(scaler),
		emotioncam.WithVideo(prop.Video{Width: opts.Width, Height: opts.Height, FrameRate: opts.FrameRate}),
	}
	if transforms := videoTransformers(opts, os.Stderr); len(transforms) > 0 {
		pipelineOpts = append(pipelineOpts, emotioncam.WithVideoTransformers(transforms...))
	}

	p, err := emotioncam.New(dispatcher, out, pipelineOpts...)
	if err != nil {
		return err
	}
	defer p.Close()

	d, err := findDevice(driver.GetManager(), opts)
	if err != nil {
		return err
	}
	if d != nil {
		err = p.BindDriver(ctx, d)
	} else {
		err = p.Bind(ctx)
	}
	if err != nil {
		return err
	}

	s := p.State()
	fmt.Fprintf(os.Stderr, "Classifying %s (%v) with %v, session %s\n", s.Device.Label, s.Video, s.Backend, s.Session)

	var tick <-chan time.Time
	if opts.StatsInterval > 0 {
		ticker := time.NewTicker(opts.StatsInterval)
		defer ticker.Stop()
		tick = ticker.C
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-tick:
			s := p.State()
			if s.Err != nil {
				return s.Err
			}
			fmt.Fprintf(os.Stderr, "%.1f results/s, %d submitted, %d dropped, avg %v\n",
				s.ResultRate, s.Scheduler.Submitted, s.Scheduler.Dropped, s.Scheduler.AvgProcessing)
		}
	}
}
