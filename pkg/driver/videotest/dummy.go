// Package videotest provides dummy video driver for testing.
package videotest

import (
	"context"
	"io"
	"math/rand"
	"sync"
	"time"

	"github.com/pion/emotioncam/pkg/driver"
	"github.com/pion/emotioncam/pkg/frame"
	"github.com/pion/emotioncam/pkg/io/video"
	"github.com/pion/emotioncam/pkg/prop"
)

const (
	defaultWidth     = 640
	defaultHeight    = 480
	defaultFrameRate = 30
)

// Register adds a color bar camera to the global driver manager.
func Register(label string, position driver.Position) driver.Driver {
	return driver.GetManager().Register(
		New(),
		driver.Info{Label: label, DeviceType: driver.Camera, Position: position},
	)
}

type dummy struct {
	mu     sync.Mutex
	closed <-chan struct{}
	cancel func()
	tick   *time.Ticker
}

// New creates a camera adapter producing I420 color bars with a noise patch.
func New() driver.Adapter {
	return &dummy{}
}

func (d *dummy) Open() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	ctx, cancel := context.WithCancel(context.Background())
	d.closed = ctx.Done()
	d.cancel = cancel
	return nil
}

func (d *dummy) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.cancel != nil {
		d.cancel()
	}
	if d.tick != nil {
		d.tick.Stop()
		d.tick = nil
	}
	return nil
}

// ColorBars renders the base test pattern in I420.
func ColorBars(width, height int) []byte {
	colors := [][3]byte{
		{235, 128, 128},
		{210, 16, 146},
		{170, 166, 16},
		{145, 54, 34},
		{107, 202, 222},
		{82, 90, 240},
		{41, 240, 110},
	}

	cw, ch := frame.ChromaSize(width, height)
	buf := make([]byte, frame.Size(frame.FormatI420, width, height))
	yy := buf[:width*height]
	cb := buf[width*height : width*height+cw*ch]
	cr := buf[width*height+cw*ch:]

	hColorBarEnd := height * 3 / 4
	wGradationEnd := width * 5 / 7
	for y := 0; y < height; y++ {
		yi := width * y
		ci := cw * (y / 2)
		for x := 0; x < width; x++ {
			switch {
			case y < hColorBarEnd:
				// Color bar
				c := colors[x*7/width]
				yy[yi+x] = uint8(uint16(c[0]) * 75 / 100)
				cb[ci+x/2] = c[1]
				cr[ci+x/2] = c[2]
			case x < wGradationEnd:
				// Gray gradation
				yy[yi+x] = uint8(x * 255 / wGradationEnd)
				cb[ci+x/2] = 128
				cr[ci+x/2] = 128
			default:
				cb[ci+x/2] = 128
				cr[ci+x/2] = 128
			}
		}
	}
	return buf
}

func (d *dummy) VideoRecord(p prop.Video) (video.Reader, error) {
	if p.Width <= 0 || p.Height <= 0 {
		p.Width, p.Height = defaultWidth, defaultHeight
	}
	if p.FrameRate <= 0 {
		p.FrameRate = defaultFrameRate
	}

	decoder, err := frame.NewDecoder(frame.FormatI420)
	if err != nil {
		return nil, err
	}

	base := ColorBars(p.Width, p.Height)
	pool := sync.Pool{New: func() interface{} {
		return make([]byte, len(base))
	}}
	random := rand.New(rand.NewSource(0))
	hColorBarEnd := p.Height * 3 / 4
	wGradationEnd := p.Width * 5 / 7

	tick := time.NewTicker(time.Duration(float32(time.Second) / p.FrameRate))
	d.mu.Lock()
	d.tick = tick
	closed := d.closed
	d.mu.Unlock()

	r := video.ReaderFunc(func() (*frame.RawFrame, func(), error) {
		select {
		case <-closed:
			return nil, func() {}, io.EOF
		case <-tick.C:
		}

		buf := pool.Get().([]byte)
		copy(buf, base)
		for y := hColorBarEnd; y < p.Height; y++ {
			yi := p.Width * y
			for x := wGradationEnd; x < p.Width; x++ {
				// Noise
				buf[yi+x] = uint8(random.Int31n(2) * 255)
			}
		}

		f, err := decoder.Decode(buf, p.Width, p.Height)
		if err != nil {
			pool.Put(buf)
			return nil, func() {}, err
		}
		return f, func() { pool.Put(buf) }, nil
	})

	return r, nil
}

func (d *dummy) Properties() []prop.Video {
	return []prop.Video{
		{
			Width:       defaultWidth,
			Height:      defaultHeight,
			FrameRate:   defaultFrameRate,
			FrameFormat: frame.FormatI420,
		},
	}
}
