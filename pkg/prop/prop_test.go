package prop

import (
	"testing"

	"github.com/pion/emotioncam/pkg/frame"
)

func TestMerge(t *testing.T) {
	p := Video{Width: 640, Height: 480, FrameRate: 30, FrameFormat: frame.FormatI420}
	p.Merge(Video{Width: 320, FrameFormat: frame.FormatNV12})

	expected := Video{Width: 320, Height: 480, FrameRate: 30, FrameFormat: frame.FormatNV12}
	if p != expected {
		t.Errorf("expected %v, got %v", expected, p)
	}
}

func TestFitnessDistance(t *testing.T) {
	testDataSet := map[string]struct {
		actual, ideal Video
		expected      float64
	}{
		"Exact": {
			Video{Width: 640, Height: 480, FrameFormat: frame.FormatI420},
			Video{Width: 640, Height: 480, FrameFormat: frame.FormatI420},
			0,
		},
		"IgnoreZeroIdeal": {
			Video{Width: 640, Height: 480, FrameFormat: frame.FormatNV12},
			Video{},
			0,
		},
		"HalfWidth": {
			Video{Width: 320, Height: 480},
			Video{Width: 640, Height: 480},
			0.5,
		},
		"FormatUnmatch": {
			Video{Width: 640, FrameFormat: frame.FormatNV12},
			Video{Width: 640, FrameFormat: frame.FormatI420},
			1,
		},
	}

	for name, data := range testDataSet {
		data := data
		t.Run(name, func(t *testing.T) {
			if d := data.actual.FitnessDistance(data.ideal); d != data.expected {
				t.Errorf("expected distance %f, got %f", data.expected, d)
			}
		})
	}
}

func TestString(t *testing.T) {
	p := Video{Width: 640, Height: 480, FrameRate: 30, FrameFormat: frame.FormatI420}
	if s := p.String(); s != "640x480 I420 @30.0fps" {
		t.Errorf("unexpected string %q", s)
	}
}
