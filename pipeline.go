// Package emotioncam classifies the facial emotion seen by a live camera.
//
// A Pipeline binds a capture driver, converts each frame from YCbCr 4:2:0 to
// RGB, resizes it for the selected model and hands it to an inference engine.
// Only one frame is classified at a time: frames arriving meanwhile replace
// each other so that the next one classified is always the latest.
package emotioncam

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pion/logging"

	emlogging "github.com/pion/emotioncam/internal/logging"
	"github.com/pion/emotioncam/internal/rate"
	"github.com/pion/emotioncam/pkg/backend"
	"github.com/pion/emotioncam/pkg/driver"
	"github.com/pion/emotioncam/pkg/frame"
	"github.com/pion/emotioncam/pkg/inference"
	"github.com/pion/emotioncam/pkg/io/video"
	"github.com/pion/emotioncam/pkg/prop"
	"github.com/pion/emotioncam/pkg/scheduler"
	"github.com/pion/emotioncam/pkg/sink"
	"github.com/pion/emotioncam/pkg/tensor"
)

const rateWindow = 5 * time.Second

var errClosed = errors.New("pipeline closed")

// State is a snapshot of a Pipeline.
type State struct {
	Bound   bool
	Backend backend.Backend
	// Session identifies the current binding. It changes on every bind.
	Session  string
	DeviceID string
	Device   driver.Info
	Video    prop.Video
	// LastLabel is the label of the most recently delivered result.
	LastLabel string
	// ResultRate is the number of results delivered per second, measured
	// over the last few seconds.
	ResultRate float64
	// Err is the last bind or capture failure, cleared by a successful bind.
	Err       error
	Scheduler scheduler.Stats
}

type binding struct {
	session string
	d       driver.Driver
	video   prop.Video
	cancel  context.CancelFunc
	done    chan struct{}
}

// Pipeline runs frames from a capture driver through the classifier.
type Pipeline struct {
	opts         Options
	log          logging.LeveledLogger
	dispatcher   *inference.Dispatcher
	out          sink.Sink
	sched        *scheduler.Scheduler
	preprocessor tensor.Preprocessor
	rate         *rate.Tracker

	// bindMu serializes Bind, Unbind, SelectBackend and Close.
	bindMu sync.Mutex

	mu        sync.Mutex
	backend   backend.Backend
	bound     *binding
	lastLabel string
	err       error
	closed    bool
}

// New creates an unbound pipeline delivering results to out.
func New(dispatcher *inference.Dispatcher, out sink.Sink, opts ...Option) (*Pipeline, error) {
	o := Options{
		backend: backend.TFLite,
		video:   DefaultVideo,
		manager: driver.GetManager(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if !o.backend.Valid() {
		return nil, fmt.Errorf("invalid backend %v", o.backend)
	}

	factory := emlogging.Factory(o.loggerFactory)
	p := &Pipeline{
		opts:         o,
		log:          factory.NewLogger("emotioncam"),
		dispatcher:   dispatcher,
		out:          out,
		preprocessor: tensor.Preprocessor{Scaler: o.scaler},
		rate:         rate.NewTracker(rateWindow),
		backend:      o.backend,
	}
	p.sched = scheduler.New(p.handle, sink.DeliverFunc(p.deliver), scheduler.WithLoggerFactory(factory))
	return p, nil
}

// handle classifies one frame with the backend selected when the unit starts.
func (p *Pipeline) handle(ctx context.Context, f *frame.RawFrame, release func()) inference.Result {
	b := p.Backend()

	rgb, err := frame.ToRGB(f)
	release()
	if err != nil {
		return inference.ErrorResult(b, err)
	}

	img, err := p.preprocessor.Preprocess(rgb, b)
	if err != nil {
		return inference.ErrorResult(b, err)
	}

	if err := ctx.Err(); err != nil {
		return inference.ErrorResult(b, err)
	}
	return p.dispatcher.Infer(ctx, img, b)
}

func (p *Pipeline) deliver(r inference.Result) {
	p.rate.Add(time.Now())
	p.mu.Lock()
	p.lastLabel = r.Label
	p.mu.Unlock()
	p.out.Deliver(r)
}

// Backend returns the backend the next unit will use.
func (p *Pipeline) Backend() backend.Backend {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.backend
}

// Bind starts classifying frames from the preferred camera: a front camera,
// else a back camera, else any camera. When none is registered Bind returns
// ErrNoCamera, records it in the State and leaves the pipeline unbound.
// Binding a bound pipeline is a no-op.
func (p *Pipeline) Bind(ctx context.Context) error {
	p.bindMu.Lock()
	defer p.bindMu.Unlock()

	if p.isBound() {
		return nil
	}

	d, err := selectCamera(p.opts.manager)
	if err != nil {
		p.setErr(err)
		p.log.Warnf("Bind failed: %v", err)
		return err
	}
	return p.bindLocked(ctx, d)
}

// BindDriver starts classifying frames from d, replacing any current binding.
func (p *Pipeline) BindDriver(ctx context.Context, d driver.Driver) error {
	p.bindMu.Lock()
	defer p.bindMu.Unlock()

	p.unbindLocked()
	return p.bindLocked(ctx, d)
}

func (p *Pipeline) isBound() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.bound != nil
}

func (p *Pipeline) setErr(err error) {
	p.mu.Lock()
	p.err = err
	p.mu.Unlock()
}

func (p *Pipeline) bindLocked(ctx context.Context, d driver.Driver) error {
	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()
	if closed {
		return errClosed
	}

	r, v, err := p.record(d)
	if err != nil {
		p.setErr(err)
		p.log.Warnf("Bind to %s failed: %v", d.Info().Label, err)
		return err
	}
	if p.opts.videoTransform != nil {
		r = p.opts.videoTransform(r)
	}

	loopCtx, cancel := context.WithCancel(ctx)
	b := &binding{
		session: uuid.NewString(),
		d:       d,
		video:   v,
		cancel:  cancel,
		done:    make(chan struct{}),
	}

	p.mu.Lock()
	p.bound = b
	p.err = nil
	p.mu.Unlock()

	p.log.Infof("Session %s bound to %s (%v, %v)", b.session, d.Info().Label, v, p.Backend())
	go p.readLoop(loopCtx, b, r)
	return nil
}

// record opens d if needed and starts it with the property closest to the
// configured video.
func (p *Pipeline) record(d driver.Driver) (video.Reader, prop.Video, error) {
	if d.Status() == driver.StateClosed {
		if err := d.Open(); err != nil {
			return nil, prop.Video{}, err
		}
	}

	v, err := selectProperty(d, p.opts.video)
	if err == nil {
		var r video.Reader
		if r, err = d.VideoRecord(v); err == nil {
			return r, v, nil
		}
	}

	if closeErr := d.Close(); closeErr != nil {
		p.log.Warnf("Failed to close %s: %v", d.Info().Label, closeErr)
	}
	return nil, prop.Video{}, err
}

func (p *Pipeline) readLoop(ctx context.Context, b *binding, r video.Reader) {
	defer close(b.done)
	for {
		f, release, err := r.Read()
		if err != nil {
			if ctx.Err() == nil {
				p.detach(b, err)
			}
			return
		}
		if ctx.Err() != nil {
			if release != nil {
				release()
			}
			return
		}
		p.sched.Submit(f, release)
	}
}

// detach tears down b after its capture ended on its own, leaving the
// pipeline unbound so that the next Bind starts over.
func (p *Pipeline) detach(b *binding, err error) {
	p.mu.Lock()
	if p.bound != b {
		p.mu.Unlock()
		return
	}
	p.bound = nil
	if !errors.Is(err, io.EOF) {
		p.err = err
	}
	p.mu.Unlock()

	if errors.Is(err, io.EOF) {
		p.log.Infof("Session %s capture ended", b.session)
	} else {
		p.log.Errorf("Session %s stopped reading: %v", b.session, err)
	}

	b.cancel()
	p.sched.Cancel()
	if closeErr := b.d.Close(); closeErr != nil {
		p.log.Warnf("Failed to close %s: %v", b.d.Info().Label, closeErr)
	}
}

// Unbind stops the capture, discards the frame being classified along with
// any waiting one, and returns once nothing more will be delivered.
func (p *Pipeline) Unbind() error {
	p.bindMu.Lock()
	defer p.bindMu.Unlock()
	return p.unbindLocked()
}

func (p *Pipeline) unbindLocked() error {
	p.mu.Lock()
	b := p.bound
	p.bound = nil
	p.mu.Unlock()
	if b == nil {
		return nil
	}

	// Discard the unit in flight before the driver is torn down, which may
	// take a while; the gate stays closed until the read loop has exited.
	p.sched.Pause()
	b.cancel()
	err := b.d.Close()
	<-b.done
	p.sched.Resume()

	p.log.Infof("Session %s unbound", b.session)
	return err
}

// SelectBackend switches the backend used from the next unit on. A bound
// pipeline is unbound, waiting for the in-flight unit to be cancelled, and
// bound again to the same driver.
func (p *Pipeline) SelectBackend(ctx context.Context, b backend.Backend) error {
	if !b.Valid() {
		return fmt.Errorf("invalid backend %v", b)
	}

	p.bindMu.Lock()
	defer p.bindMu.Unlock()

	p.mu.Lock()
	changed := p.backend != b
	p.backend = b
	bound := p.bound
	p.mu.Unlock()

	if !changed || bound == nil {
		return nil
	}

	p.log.Infof("Switching to %v, rebinding %s", b, bound.d.Info().Label)
	if err := p.unbindLocked(); err != nil {
		p.log.Warnf("Failed to close %s: %v", bound.d.Info().Label, err)
	}
	return p.bindLocked(ctx, bound.d)
}

// State returns a snapshot of the pipeline.
func (p *Pipeline) State() State {
	stats := p.sched.Stats()

	p.mu.Lock()
	defer p.mu.Unlock()
	s := State{
		Backend:    p.backend,
		LastLabel:  p.lastLabel,
		ResultRate: p.rate.Rate(),
		Err:        p.err,
		Scheduler:  stats,
	}
	if b := p.bound; b != nil {
		s.Bound = true
		s.Session = b.session
		s.DeviceID = b.d.ID()
		s.Device = b.d.Info()
		s.Video = b.video
	}
	return s
}

// Close unbinds the pipeline and refuses any further binding.
func (p *Pipeline) Close() error {
	p.bindMu.Lock()
	defer p.bindMu.Unlock()

	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()

	err := p.unbindLocked()
	p.sched.Close()
	return err
}
