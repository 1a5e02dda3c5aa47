package video

import (
	"time"

	"github.com/pion/emotioncam/pkg/frame"
	"github.com/pion/emotioncam/pkg/prop"
)

// DetectChanges will detect frame and video property changes. For video property detection,
// since it's time related, interval will be used to determine the sample rate.
func DetectChanges(interval time.Duration, onChange func(prop.Video)) TransformFunc {
	return func(r Reader) Reader {
		var currentProp prop.Video
		var lastTaken time.Time
		var frames uint
		return ReaderFunc(func() (*frame.RawFrame, func(), error) {
			var dirty bool

			f, release, err := r.Read()
			if err != nil {
				return nil, noopRelease, err
			}

			if currentProp.Width != f.Width {
				currentProp.Width = f.Width
				dirty = true
			}

			if currentProp.Height != f.Height {
				currentProp.Height = f.Height
				dirty = true
			}

			now := time.Now()
			elapsed := now.Sub(lastTaken)
			if elapsed >= interval {
				currentProp.FrameRate = float32(float64(frames) / elapsed.Seconds())
				frames = 0
				lastTaken = now
				dirty = true
			}

			if dirty {
				onChange(currentProp)
			}

			frames++
			return f, release, nil
		})
	}
}
