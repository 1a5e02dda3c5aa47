package driver

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/pion/emotioncam/pkg/io/video"
	"github.com/pion/emotioncam/pkg/prop"
)

func wrapAdapter(a Adapter, info Info) Driver {
	return &adapterWrapper{
		Adapter: a,
		id:      uuid.NewString(),
		info:    info,
		state:   StateClosed,
	}
}

type adapterWrapper struct {
	Adapter
	id    string
	info  Info
	mu    sync.Mutex
	state State
}

func (w *adapterWrapper) ID() string {
	return w.id
}

func (w *adapterWrapper) Info() Info {
	return w.info
}

func (w *adapterWrapper) Status() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

func (w *adapterWrapper) Open() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state.Update(StateOpened, w.Adapter.Open)
}

func (w *adapterWrapper) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state.Update(StateClosed, w.Adapter.Close)
}

func (w *adapterWrapper) Properties() []prop.Video {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state == StateClosed {
		return nil
	}

	return w.Adapter.Properties()
}

func (w *adapterWrapper) VideoRecord(p prop.Video) (r video.Reader, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	err = w.state.Update(StateRunning, func() error {
		r, err = w.Adapter.VideoRecord(p)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", w.info.Label, err)
	}
	return r, nil
}
