package inference

import (
	"errors"
	"fmt"

	"github.com/pion/emotioncam/pkg/backend"
)

var (
	// ErrEmptyScores means the engine returned a zero-length score vector.
	ErrEmptyScores = errors.New("inference: empty score vector")
	// ErrMalformedScores means the score vector doesn't line up with the
	// backend's label table.
	ErrMalformedScores = errors.New("inference: score vector doesn't match label table")
	// ErrNoEngine means no engine was registered for the requested backend.
	ErrNoEngine = errors.New("inference: no engine registered")
	// ErrLayoutMismatch means the tensor was packed for another backend.
	ErrLayoutMismatch = errors.New("inference: tensor layout doesn't match backend")
)

// EngineError wraps a failure raised by an engine's forward pass.
type EngineError struct {
	Backend backend.Backend
	Err     error
}

func (e *EngineError) Error() string {
	return fmt.Sprintf("inference: %v engine failed: %v", e.Backend, e.Err)
}

func (e *EngineError) Unwrap() error {
	return e.Err
}
