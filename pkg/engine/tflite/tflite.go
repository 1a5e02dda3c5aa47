// Package tflite runs emotion classifiers through the TensorFlow Lite C API.
package tflite

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/mattn/go-tflite"

	"github.com/pion/emotioncam/internal/logging"
	"github.com/pion/emotioncam/pkg/backend"
	"github.com/pion/emotioncam/pkg/tensor"
)

const DefaultModelPath = "emotion_model.tflite"

var logger = logging.NewLogger("emotioncam/engine/tflite")

type Config struct {
	ModelPath string
	// NumThreads is passed to the interpreter when > 0.
	NumThreads int
}

// Engine wraps one interpreter. Run calls are serialized.
type Engine struct {
	mu          sync.Mutex
	model       *tflite.Model
	options     *tflite.InterpreterOptions
	interpreter *tflite.Interpreter
	closed      bool
}

// New loads the model in cfg and allocates its tensors. The model must take a
// single 48x48x1 float32 input.
func New(cfg Config) (*Engine, error) {
	if cfg.ModelPath == "" {
		cfg.ModelPath = DefaultModelPath
	}

	model := tflite.NewModelFromFile(cfg.ModelPath)
	if model == nil {
		return nil, fmt.Errorf("tflite: cannot load model %s", cfg.ModelPath)
	}

	options := tflite.NewInterpreterOptions()
	if cfg.NumThreads > 0 {
		options.SetNumThread(cfg.NumThreads)
	}
	options.SetErrorReporter(func(msg string, _ interface{}) {
		logger.Errorf("%s", msg)
	}, nil)

	e := &Engine{model: model, options: options}
	e.interpreter = tflite.NewInterpreter(model, options)
	if e.interpreter == nil {
		e.free()
		return nil, errors.New("tflite: cannot create interpreter")
	}
	if status := e.interpreter.AllocateTensors(); status != tflite.OK {
		e.free()
		return nil, fmt.Errorf("tflite: allocate tensors failed: %v", status)
	}

	input := e.interpreter.GetInputTensor(0)
	if input.Type() != tflite.Float32 || input.ByteSize() != uint(tensor.Grayscale48Len*4) {
		e.free()
		return nil, fmt.Errorf("tflite: model input is not a %dx%d float32 image", tensor.Grayscale48Side, tensor.Grayscale48Side)
	}

	logger.Infof("Loaded %s", cfg.ModelPath)
	return e, nil
}

func (e *Engine) Run(ctx context.Context, img tensor.ImageData) ([]float32, error) {
	if img.Backend() != backend.TFLite {
		return nil, fmt.Errorf("tflite: unexpected %v input", img.Backend())
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil, errors.New("tflite: engine closed")
	}

	copy(e.interpreter.GetInputTensor(0).Float32s(), img.Data())
	if status := e.interpreter.Invoke(); status != tflite.OK {
		return nil, fmt.Errorf("tflite: invoke failed: %v", status)
	}
	return append([]float32(nil), e.interpreter.GetOutputTensor(0).Float32s()...), nil
}

// Close frees the interpreter and model. Close is idempotent.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.closed {
		e.closed = true
		e.free()
	}
	return nil
}

func (e *Engine) free() {
	if e.interpreter != nil {
		e.interpreter.Delete()
	}
	e.options.Delete()
	e.model.Delete()
}
