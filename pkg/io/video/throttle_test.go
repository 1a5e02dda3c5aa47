package video

import (
	"runtime"
	"testing"
	"time"

	"github.com/pion/emotioncam/pkg/frame"
)

func TestThrottle(t *testing.T) {
	if runtime.GOOS == "darwin" {
		t.Skip("Skipping because Darwin CI is not reliable for timing related tests.")
	}
	f := &frame.RawFrame{Width: 640, Height: 480}

	ticker := time.NewTicker(20 * time.Millisecond)
	defer ticker.Stop()

	var cntPush, cntRelease int
	trans := Throttle(50)
	r := trans(ReaderFunc(func() (*frame.RawFrame, func(), error) {
		<-ticker.C
		cntPush++
		return f, func() { cntRelease++ }, nil
	}))

	for i := 0; i < 20; i++ {
		_, release, err := r.Read()
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		release()
	}
	cntExpected := 20
	if cntPush < cntExpected*8/10 || cntExpected*12/10 < cntPush {
		t.Fatalf("Number of pushed frames is expected to be %d, but pushed %d", cntExpected, cntPush)
	}
	if cntRelease != cntPush {
		t.Fatalf("Every pushed frame must be released, pushed %d, released %d", cntPush, cntRelease)
	}
}

func TestThrottleNonPositiveRate(t *testing.T) {
	f := &frame.RawFrame{Width: 640, Height: 480}
	src := ReaderFunc(func() (*frame.RawFrame, func(), error) {
		return f, noopRelease, nil
	})

	for _, rate := range []float32{0, -1} {
		r := Throttle(rate)(src)
		for i := 0; i < 3; i++ {
			got, _, err := r.Read()
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if got != f {
				t.Fatalf("Expected every frame to pass at rate %v", rate)
			}
		}
	}
}
