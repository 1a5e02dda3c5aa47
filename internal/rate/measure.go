package rate

import (
	"errors"
	"io"
	"time"

	"github.com/pion/emotioncam/pkg/io/video"
)

// MeasureFrameRate measures the average frame rate of r after dur by reading
// it as fast as possible.
func MeasureFrameRate(r video.Reader, dur time.Duration) (float64, error) {
	var frames int
	start := time.Now()
	end := start.Add(dur)
	for time.Now().Before(end) {
		_, release, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return 0, err
		}
		if release != nil {
			release()
		}
		frames++
	}

	elapsed := time.Since(start).Seconds()
	return float64(frames) / elapsed, nil
}
