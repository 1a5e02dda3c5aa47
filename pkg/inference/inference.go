// Package inference routes preprocessed frames to an inference engine and maps
// the returned scores to an emotion label.
package inference

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pion/logging"

	emlogging "github.com/pion/emotioncam/internal/logging"
	"github.com/pion/emotioncam/pkg/backend"
	"github.com/pion/emotioncam/pkg/tensor"
)

// errLogInterval rate-limits repeated engine failure logs.
const errLogInterval = 15 * time.Second

// Engine runs a forward pass. The returned score vector must have one entry
// per label of the backend the engine serves.
type Engine interface {
	Run(ctx context.Context, input tensor.ImageData) ([]float32, error)
}

// EngineFunc is a proxy type to make easier for users to implement Engine
type EngineFunc func(ctx context.Context, input tensor.ImageData) ([]float32, error)

func (f EngineFunc) Run(ctx context.Context, input tensor.ImageData) ([]float32, error) {
	return f(ctx, input)
}

// Result is the outcome of classifying one frame.
type Result struct {
	// Label is the emotion label, or LabelError / LabelUnknown.
	Label string
	// Index is the position of Label in the backend's table, -1 for sentinels.
	Index   int
	Backend backend.Backend
	Scores  []float32
	// Seq is the sequence number of the frame, set by the scheduler.
	Seq uint64
	// Err is the cause of a sentinel label.
	Err error
}

// Sentinel reports whether r carries LabelError or LabelUnknown.
func (r Result) Sentinel() bool {
	return r.Index < 0
}

// ErrorResult builds the LabelError result for a frame that failed before
// reaching an engine.
func ErrorResult(b backend.Backend, err error) Result {
	return Result{Label: LabelError, Index: -1, Backend: b, Err: err}
}

// Stats are per backend counters kept by a Dispatcher.
type Stats struct {
	Runs       int64
	Failures   int64
	Unknown    int64
	AvgLatency time.Duration
}

type Option func(*Dispatcher)

// WithEngine registers e as the engine of b, replacing any previous one.
func WithEngine(b backend.Backend, e Engine) Option {
	return func(d *Dispatcher) {
		d.engines[b] = e
	}
}

// WithLoggerFactory sets the logger factory used by the dispatcher.
func WithLoggerFactory(f logging.LoggerFactory) Option {
	return func(d *Dispatcher) {
		d.log = f.NewLogger("emotioncam/inference")
	}
}

// Dispatcher invokes the engine of the selected backend. Failures are turned
// into sentinel results and never returned to the caller.
type Dispatcher struct {
	engines map[backend.Backend]Engine
	log     logging.LeveledLogger

	mu        sync.Mutex
	stats     map[backend.Backend]*Stats
	latency   map[backend.Backend]time.Duration
	lastErrAt time.Time
}

func NewDispatcher(opts ...Option) *Dispatcher {
	d := &Dispatcher{
		engines: make(map[backend.Backend]Engine),
		log:     emlogging.NewLogger("emotioncam/inference"),
		stats:   make(map[backend.Backend]*Stats),
		latency: make(map[backend.Backend]time.Duration),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Infer classifies img with the engine of b.
func (d *Dispatcher) Infer(ctx context.Context, img tensor.ImageData, b backend.Backend) Result {
	engine, ok := d.engines[b]
	if !ok || engine == nil {
		return d.fail(b, fmt.Errorf("%w for %v", ErrNoEngine, b))
	}
	if img == nil || img.Backend() != b {
		return d.fail(b, ErrLayoutMismatch)
	}

	start := time.Now()
	scores, err := run(ctx, engine, img)
	d.record(b, time.Since(start))
	if err != nil {
		return d.fail(b, &EngineError{Backend: b, Err: err})
	}

	return d.classify(b, scores)
}

func (d *Dispatcher) classify(b backend.Backend, scores []float32) Result {
	labels := labelTables[b]
	idx := ArgMax(scores)

	var cause error
	switch {
	case idx < 0:
		cause = ErrEmptyScores
	case len(scores) != len(labels):
		cause = fmt.Errorf("%w: %d scores, %d labels", ErrMalformedScores, len(scores), len(labels))
	}
	if cause != nil {
		d.mu.Lock()
		d.statsLocked(b).Unknown++
		d.mu.Unlock()
		return Result{Label: LabelUnknown, Index: -1, Backend: b, Scores: scores, Err: cause}
	}

	return Result{Label: labels[idx], Index: idx, Backend: b, Scores: scores}
}

// run calls the engine, turning a panic into an error so that a single frame
// can't take the pipeline down.
func run(ctx context.Context, engine Engine, img tensor.ImageData) (scores []float32, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("engine panic: %v", r)
		}
	}()
	return engine.Run(ctx, img)
}

func (d *Dispatcher) fail(b backend.Backend, err error) Result {
	d.mu.Lock()
	d.statsLocked(b).Failures++
	logNow := time.Since(d.lastErrAt) > errLogInterval
	if logNow {
		d.lastErrAt = time.Now()
	}
	d.mu.Unlock()

	if logNow {
		d.log.Errorf("Error classifying frame: %v", err)
	}
	return ErrorResult(b, err)
}

func (d *Dispatcher) record(b backend.Backend, elapsed time.Duration) {
	d.mu.Lock()
	defer d.mu.Unlock()
	s := d.statsLocked(b)
	s.Runs++
	d.latency[b] += elapsed
	s.AvgLatency = d.latency[b] / time.Duration(s.Runs)
}

func (d *Dispatcher) statsLocked(b backend.Backend) *Stats {
	s, ok := d.stats[b]
	if !ok {
		s = &Stats{}
		d.stats[b] = s
	}
	return s
}

// Stats returns a snapshot of the per backend counters.
func (d *Dispatcher) Stats() map[backend.Backend]Stats {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make(map[backend.Backend]Stats, len(d.stats))
	for b, s := range d.stats {
		out[b] = *s
	}
	return out
}
