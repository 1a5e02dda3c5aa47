package rate

import (
	"io"
	"math"
	"testing"
	"time"

	"github.com/pion/emotioncam/pkg/frame"
	"github.com/pion/emotioncam/pkg/io/video"
)

func TestTracker(t *testing.T) {
	tr := NewTracker(time.Second)
	now := time.Now()
	tr.Add(now)
	tr.Add(now.Add(time.Millisecond * 250))
	tr.Add(now.Add(time.Millisecond * 500))
	if got, want := tr.Rate(), 4.0; math.Abs(got-want) > 1e-9 {
		t.Fatalf("Rate() = %v, want %v", got, want)
	}

	// Only the last two events remain in the window.
	tr.Add(now.Add(time.Millisecond * 1400))
	if got, want := tr.Rate(), 1/0.9; math.Abs(got-want) > 1e-9 {
		t.Fatalf("Rate() = %v, want %v", got, want)
	}
}

func TestTrackerEmpty(t *testing.T) {
	tr := NewTracker(time.Second)
	if tr.Rate() != 0 {
		t.Fatal("expected no rate without events")
	}
	tr.Add(time.Now())
	if tr.Rate() != 0 {
		t.Fatal("expected no rate with a single event")
	}
}

func TestMeasureFrameRate(t *testing.T) {
	ticker := time.NewTicker(20 * time.Millisecond)
	defer ticker.Stop()

	var released int
	r := video.ReaderFunc(func() (*frame.RawFrame, func(), error) {
		<-ticker.C
		return &frame.RawFrame{}, func() { released++ }, nil
	})

	fps, err := MeasureFrameRate(r, time.Second)
	if err != nil {
		t.Fatal(err)
	}
	if fps < 40 || fps > 60 {
		t.Fatalf("expected about 50 fps, got %f", fps)
	}
	if released == 0 {
		t.Fatal("frames must be released")
	}
}

func TestMeasureFrameRateEOF(t *testing.T) {
	var n int
	r := video.ReaderFunc(func() (*frame.RawFrame, func(), error) {
		if n == 3 {
			return nil, nil, io.EOF
		}
		n++
		return &frame.RawFrame{}, nil, nil
	})
	if _, err := MeasureFrameRate(r, time.Hour); err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Fatalf("expected 3 reads, got %d", n)
	}
}
