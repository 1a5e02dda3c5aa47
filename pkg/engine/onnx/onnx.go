// Package onnx runs emotion classifiers through ONNX Runtime.
package onnx

import (
	"context"
	"errors"
	"fmt"
	"sync"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/pion/emotioncam/internal/logging"
	"github.com/pion/emotioncam/pkg/backend"
	"github.com/pion/emotioncam/pkg/tensor"
)

const (
	DefaultModelPath  = "model.onnx"
	DefaultInputName  = "pixel_values"
	DefaultOutputName = "logits"
	DefaultNumLabels  = 7
)

var logger = logging.NewLogger("emotioncam/engine/onnx")

// Config describes the model and the runtime it is loaded into. Zero fields
// take the Default values.
type Config struct {
	ModelPath  string
	InputName  string
	OutputName string
	NumLabels  int
	// SharedLibraryPath points to the onnxruntime shared library. Empty
	// leaves the library lookup to the system loader.
	SharedLibraryPath string
	// NumThreads limits intra-op parallelism. 0 lets the runtime decide.
	NumThreads int
}

func (c *Config) setDefaults() {
	if c.ModelPath == "" {
		c.ModelPath = DefaultModelPath
	}
	if c.InputName == "" {
		c.InputName = DefaultInputName
	}
	if c.OutputName == "" {
		c.OutputName = DefaultOutputName
	}
	if c.NumLabels <= 0 {
		c.NumLabels = DefaultNumLabels
	}
}

var (
	envMu   sync.Mutex
	envRefs int
)

func acquireEnvironment(libPath string) error {
	envMu.Lock()
	defer envMu.Unlock()
	if envRefs == 0 && !ort.IsInitialized() {
		if libPath != "" {
			ort.SetSharedLibraryPath(libPath)
		}
		if err := ort.InitializeEnvironment(); err != nil {
			return fmt.Errorf("onnx: failed to initialize runtime: %w", err)
		}
	}
	envRefs++
	return nil
}

func releaseEnvironment() {
	envMu.Lock()
	defer envMu.Unlock()
	envRefs--
	if envRefs == 0 && ort.IsInitialized() {
		if err := ort.DestroyEnvironment(); err != nil {
			logger.Warnf("Failed to destroy runtime: %v", err)
		}
	}
}

// Engine owns one session with preallocated input and output tensors.
// Run calls are serialized.
type Engine struct {
	mu      sync.Mutex
	session *ort.AdvancedSession
	input   *ort.Tensor[float32]
	output  *ort.Tensor[float32]
	closed  bool
}

// New loads the model in cfg. The input tensor is shaped for RGB224.
func New(cfg Config) (*Engine, error) {
	cfg.setDefaults()
	if err := acquireEnvironment(cfg.SharedLibraryPath); err != nil {
		return nil, err
	}

	e, err := newEngine(cfg)
	if err != nil {
		releaseEnvironment()
		return nil, err
	}
	logger.Infof("Loaded %s (%s -> %s)", cfg.ModelPath, cfg.InputName, cfg.OutputName)
	return e, nil
}

func newEngine(cfg Config) (*Engine, error) {
	input, err := ort.NewTensor(ort.NewShape((&tensor.RGB224{}).Shape()...), make([]float32, tensor.RGB224Len))
	if err != nil {
		return nil, err
	}

	output, err := ort.NewEmptyTensor[float32](ort.NewShape(1, int64(cfg.NumLabels)))
	if err != nil {
		input.Destroy()
		return nil, err
	}

	options, err := ort.NewSessionOptions()
	if err != nil {
		input.Destroy()
		output.Destroy()
		return nil, err
	}
	defer options.Destroy()

	if cfg.NumThreads > 0 {
		if err := options.SetIntraOpNumThreads(cfg.NumThreads); err != nil {
			input.Destroy()
			output.Destroy()
			return nil, err
		}
	}

	session, err := ort.NewAdvancedSession(
		cfg.ModelPath,
		[]string{cfg.InputName},
		[]string{cfg.OutputName},
		[]ort.ArbitraryTensor{input},
		[]ort.ArbitraryTensor{output},
		options,
	)
	if err != nil {
		input.Destroy()
		output.Destroy()
		return nil, fmt.Errorf("onnx: failed to load %s: %w", cfg.ModelPath, err)
	}

	return &Engine{session: session, input: input, output: output}, nil
}

func (e *Engine) Run(ctx context.Context, img tensor.ImageData) ([]float32, error) {
	if img.Backend() != backend.ONNX {
		return nil, fmt.Errorf("onnx: unexpected %v input", img.Backend())
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil, errors.New("onnx: engine closed")
	}

	copy(e.input.GetData(), img.Data())
	if err := e.session.Run(); err != nil {
		return nil, err
	}
	return append([]float32(nil), e.output.GetData()...), nil
}

// Close frees the session and tensors. Close is idempotent.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}
	e.closed = true

	err := e.session.Destroy()
	e.input.Destroy()
	e.output.Destroy()
	releaseEnvironment()
	return err
}
