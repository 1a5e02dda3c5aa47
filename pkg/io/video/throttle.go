package video

import (
	"time"

	"github.com/pion/emotioncam/pkg/frame"
)

// Throttle returns video throttling transform.
// This transform drops some of the incoming frames to achieve given framerate in fps.
// Dropped frames are released right away. A rate of zero or less keeps every frame.
func Throttle(rate float32) TransformFunc {
	return func(r Reader) Reader {
		if rate <= 0 {
			return r
		}
		ticker := time.NewTicker(time.Duration(int64(float64(time.Second) / float64(rate))))
		return ReaderFunc(func() (*frame.RawFrame, func(), error) {
			for {
				f, release, err := r.Read()
				if err != nil {
					ticker.Stop()
					return nil, noopRelease, err
				}
				select {
				case <-ticker.C:
					return f, release, nil
				default:
					if release != nil {
						release()
					}
				}
			}
		})
	}
}
