// Package enginetest provides inference engines for tests and demos.
package enginetest

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/pion/emotioncam/pkg/tensor"
)

// Static returns the same scores for every input and records what it saw.
type Static struct {
	Scores []float32

	calls atomic.Int64
	mu    sync.Mutex
	last  tensor.ImageData
}

func (s *Static) Run(_ context.Context, input tensor.ImageData) ([]float32, error) {
	s.calls.Add(1)
	s.mu.Lock()
	s.last = input
	s.mu.Unlock()
	return append([]float32(nil), s.Scores...), nil
}

// Calls returns the number of forward passes run so far.
func (s *Static) Calls() int64 {
	return s.calls.Load()
}

// Last returns the most recent input.
func (s *Static) Last() tensor.ImageData {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// Failing always returns Err.
type Failing struct {
	Err error
}

func (f Failing) Run(context.Context, tensor.ImageData) ([]float32, error) {
	return nil, f.Err
}

// Blocking holds every forward pass until Release is called or the context
// is done. Started receives a value each time a pass begins.
type Blocking struct {
	Scores  []float32
	Started chan struct{}

	once    sync.Once
	release chan struct{}
}

// NewBlocking creates a Blocking engine returning scores once released.
func NewBlocking(scores []float32) *Blocking {
	return &Blocking{
		Scores:  scores,
		Started: make(chan struct{}, 64),
		release: make(chan struct{}),
	}
}

func (b *Blocking) Run(ctx context.Context, _ tensor.ImageData) ([]float32, error) {
	select {
	case b.Started <- struct{}{}:
	default:
	}
	select {
	case <-b.release:
		return append([]float32(nil), b.Scores...), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Release unblocks all current and future passes.
func (b *Blocking) Release() {
	b.once.Do(func() { close(b.release) })
}
