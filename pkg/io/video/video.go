// Package video defines frame sources and transforms applied to them.
package video

import (
	"github.com/pion/emotioncam/pkg/frame"
)

// Reader produces raw camera frames. The returned frame stays valid until
// release is called. io.EOF ends the stream.
type Reader interface {
	Read() (f *frame.RawFrame, release func(), err error)
}

type ReaderFunc func() (f *frame.RawFrame, release func(), err error)

func (rf ReaderFunc) Read() (f *frame.RawFrame, release func(), err error) {
	f, release, err = rf()
	return
}

// TransformFunc produces a new Reader that will produces a transformed video
type TransformFunc func(r Reader) Reader

// Merge merges transforms and produces a new TransformFunc that will execute
// transforms in order
func Merge(transforms ...TransformFunc) TransformFunc {
	return func(r Reader) Reader {
		for _, transform := range transforms {
			if transform == nil {
				continue
			}

			r = transform(r)
		}

		return r
	}
}

func noopRelease() {}
