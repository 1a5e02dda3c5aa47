// Package screen provides a capture driver that grabs a display, for running
// the pipeline on hosts without a camera.
package screen

import (
	"fmt"
	"image"
	"io"
	"time"

	"github.com/kbinani/screenshot"

	"github.com/pion/emotioncam/pkg/driver"
	"github.com/pion/emotioncam/pkg/frame"
	"github.com/pion/emotioncam/pkg/io/video"
	"github.com/pion/emotioncam/pkg/prop"
)

const defaultFrameRate = 10

// Capturer grabs one display. It is screenshot.CaptureDisplay outside tests.
// A 4:2:0 *image.YCbCr is used without conversion.
type Capturer func(displayIndex int) (image.Image, error)

type screen struct {
	displayIndex int
	capture      Capturer
	bounds       func(displayIndex int) image.Rectangle
	doneCh       chan struct{}
	tick         *time.Ticker
}

func init() {
	activeDisplays := screenshot.NumActiveDisplays()
	for i := 0; i < activeDisplays; i++ {
		driver.GetManager().Register(newScreen(i), driver.Info{
			Label:      fmt.Sprint(i),
			DeviceType: driver.Screen,
		})
	}
}

func newScreen(displayIndex int) driver.Adapter {
	capture := func(i int) (image.Image, error) {
		img, err := screenshot.CaptureDisplay(i)
		if err != nil {
			return nil, err
		}
		return img, nil
	}
	return New(displayIndex, capture, screenshot.GetDisplayBounds)
}

// New creates a screen adapter for displayIndex backed by capture.
func New(displayIndex int, capture Capturer, bounds func(int) image.Rectangle) driver.Adapter {
	return &screen{
		displayIndex: displayIndex,
		capture:      capture,
		bounds:       bounds,
	}
}

func (s *screen) Open() error {
	s.doneCh = make(chan struct{})
	return nil
}

func (s *screen) Close() error {
	close(s.doneCh)
	if s.tick != nil {
		s.tick.Stop()
		s.tick = nil
	}
	return nil
}

func (s *screen) VideoRecord(selectedProp prop.Video) (video.Reader, error) {
	if selectedProp.FrameRate <= 0 {
		selectedProp.FrameRate = defaultFrameRate
	}
	tick := time.NewTicker(time.Duration(float32(time.Second) / selectedProp.FrameRate))
	s.tick = tick
	doneCh := s.doneCh

	r := video.ReaderFunc(func() (*frame.RawFrame, func(), error) {
		select {
		case <-doneCh:
			return nil, func() {}, io.EOF
		case <-tick.C:
		}

		img, err := s.capture(s.displayIndex)
		if err != nil {
			return nil, func() {}, err
		}
		if ycc, ok := img.(*image.YCbCr); ok {
			return frame.FromYCbCr(ycc), func() {}, nil
		}
		return frame.FromImage(img), func() {}, nil
	})
	return r, nil
}

func (s *screen) Properties() []prop.Video {
	resolution := s.bounds(s.displayIndex)
	supportedProp := prop.Video{
		Width:       resolution.Dx(),
		Height:      resolution.Dy(),
		FrameRate:   defaultFrameRate,
		FrameFormat: frame.FormatI420,
	}
	return []prop.Video{supportedProp}
}
