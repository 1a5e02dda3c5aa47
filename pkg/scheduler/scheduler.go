// Package scheduler runs at most one classification at a time and keeps only
// the most recent frame waiting behind it.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/pion/logging"

	emlogging "github.com/pion/emotioncam/internal/logging"
	"github.com/pion/emotioncam/pkg/frame"
	"github.com/pion/emotioncam/pkg/inference"
	"github.com/pion/emotioncam/pkg/sink"
)

// State is the scheduler's processing state.
type State uint

const (
	// StateIdle means no unit is running.
	StateIdle State = iota
	// StateProcessing means a unit is running.
	StateProcessing
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateProcessing:
		return "processing"
	default:
		return "unknown"
	}
}

// Handler turns one frame into a result. It may call release as soon as it no
// longer needs the frame's buffers. ctx is cancelled when the unit is
// cancelled.
type Handler func(ctx context.Context, f *frame.RawFrame, release func()) inference.Result

// Job is a frame accepted by the scheduler.
type Job struct {
	Frame   *frame.RawFrame
	Release func()
	Seq     uint64
}

// Stats are cumulative scheduler counters.
type Stats struct {
	Submitted uint64
	Started   uint64
	// Dropped counts frames that were superseded or arrived while the
	// scheduler was cancelling or closed.
	Dropped   uint64
	Delivered uint64
	Cancelled uint64
	// AvgProcessing is the mean handler time over all completed units.
	AvgProcessing time.Duration
}

type unit struct {
	job       *Job
	cancel    context.CancelFunc
	cancelled bool
}

type Option func(*Scheduler)

// WithLoggerFactory sets the logger factory used by the scheduler.
func WithLoggerFactory(f logging.LoggerFactory) Option {
	return func(s *Scheduler) {
		s.log = f.NewLogger("emotioncam/scheduler")
	}
}

// Scheduler is a single slot, keep only latest frame scheduler. A single mutex
// guards the state, the pending slot and the in-flight unit.
type Scheduler struct {
	handler Handler
	sink    sink.Sink
	log     logging.LeveledLogger

	mu         sync.Mutex
	state      State
	pending    *Job
	current    *unit
	cancelling int
	closed     bool
	seq        uint64
	stats      Stats
	completed  uint64
	processing time.Duration

	wg sync.WaitGroup
}

// New creates an idle scheduler feeding h's results to out.
func New(h Handler, out sink.Sink, opts ...Option) *Scheduler {
	s := &Scheduler{
		handler: h,
		sink:    out,
		log:     emlogging.NewLogger("emotioncam/scheduler"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit hands a frame to the scheduler and returns immediately. release is
// called exactly once, when the frame has been converted or dropped.
func (s *Scheduler) Submit(f *frame.RawFrame, release func()) {
	release = once(release)

	s.mu.Lock()
	if s.closed || s.cancelling > 0 {
		s.stats.Dropped++
		s.mu.Unlock()
		release()
		return
	}

	s.seq++
	s.stats.Submitted++
	job := &Job{Frame: f, Release: release, Seq: s.seq}
	if s.state == StateIdle {
		s.startLocked(job)
		s.mu.Unlock()
		return
	}

	superseded := s.pending
	s.pending = job
	if superseded != nil {
		s.stats.Dropped++
	}
	s.mu.Unlock()

	if superseded != nil {
		s.log.Tracef("Frame %d superseded by %d", superseded.Seq, job.Seq)
		superseded.Release()
	}
}

func (s *Scheduler) startLocked(job *Job) {
	ctx, cancel := context.WithCancel(context.Background())
	u := &unit{job: job, cancel: cancel}
	s.current = u
	s.state = StateProcessing
	s.stats.Started++

	s.wg.Add(1)
	go s.run(ctx, u)
}

func (s *Scheduler) run(ctx context.Context, u *unit) {
	defer s.wg.Done()

	start := time.Now()
	r := s.handler(ctx, u.job.Frame, u.job.Release)
	elapsed := time.Since(start)
	u.job.Release()
	u.cancel()
	r.Seq = u.job.Seq

	s.mu.Lock()
	defer s.mu.Unlock()

	s.completed++
	s.processing += elapsed
	s.stats.AvgProcessing = s.processing / time.Duration(s.completed)

	if !u.cancelled {
		s.stats.Delivered++
		s.sink.Deliver(r)
	}

	s.current = nil
	if next := s.pending; next != nil && !u.cancelled {
		s.pending = nil
		s.startLocked(next)
		return
	}
	s.state = StateIdle
}

// Cancel discards the in-flight unit and the pending frame, then waits for
// the unit to finish. Frames submitted until Cancel returns are dropped.
func (s *Scheduler) Cancel() {
	s.Pause()
	s.Resume()
}

// Pause discards the in-flight unit and the pending frame without waiting.
// The discarded unit's result is never delivered, even when its handler
// ignores the context. Frames are dropped until the matching Resume.
func (s *Scheduler) Pause() {
	s.mu.Lock()
	s.cancelling++
	pending := s.pending
	s.pending = nil
	if pending != nil {
		s.stats.Dropped++
	}
	if u := s.current; u != nil && !u.cancelled {
		u.cancelled = true
		u.cancel()
		s.stats.Cancelled++
	}
	s.mu.Unlock()

	if pending != nil {
		pending.Release()
	}
}

// Resume waits for the unit discarded by Pause to finish and accepts frames
// again once every Pause has been matched.
func (s *Scheduler) Resume() {
	s.wg.Wait()

	s.mu.Lock()
	if s.cancelling > 0 {
		s.cancelling--
	}
	s.mu.Unlock()
}

// Close cancels any work and refuses further frames.
func (s *Scheduler) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.Cancel()
}

// State returns the current processing state.
func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Stats returns a snapshot of the counters.
func (s *Scheduler) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

func once(f func()) func() {
	if f == nil {
		return func() {}
	}
	var o sync.Once
	return func() { o.Do(f) }
}
