package frame

import (
	"fmt"

	"github.com/pion/emotioncam/pkg/io"
)

// Plane is one data plane of a RawFrame. RowStride is the byte distance between
// the starts of two consecutive rows, PixelStride the byte distance between two
// consecutive samples of a row (1 for planar data, 2 for interleaved chroma).
type Plane struct {
	Data        []byte
	RowStride   int
	PixelStride int
}

// RawFrame is a planar 4:2:0 YCbCr frame. Width and Height are in luma samples,
// both chroma planes are subsampled by 2 horizontally and vertically.
//
// A RawFrame belongs to the source that produced it until it has been
// converted; nothing may keep a reference to the planes after ToRGB returns.
type RawFrame struct {
	Width  int
	Height int
	Planes [3]Plane
}

// ChromaSize returns the dimensions of the chroma planes for a frame of the
// given luma size.
func ChromaSize(width, height int) (int, int) {
	return (width + 1) / 2, (height + 1) / 2
}

// Validate checks that every sample ToRGB will touch lies inside its plane.
func (f *RawFrame) Validate() error {
	if f.Width <= 0 || f.Height <= 0 {
		return fmt.Errorf("invalid frame size %dx%d", f.Width, f.Height)
	}

	y := f.Planes[PlaneY]
	if y.RowStride < f.Width {
		return &io.DimensionMismatchError{What: "luma row stride", Expected: f.Width, Actual: y.RowStride}
	}
	if err := checkPlane("luma", y, f.Height, f.Width-1); err != nil {
		return err
	}

	cw, ch := ChromaSize(f.Width, f.Height)
	for _, i := range []int{PlaneCb, PlaneCr} {
		c := f.Planes[i]
		name := "cb"
		if i == PlaneCr {
			name = "cr"
		}
		if c.PixelStride < 1 {
			return &io.DimensionMismatchError{What: name + " pixel stride", Expected: 1, Actual: c.PixelStride}
		}
		colOff, ok := offset(len(c.Data), cw, c.PixelStride)
		if !ok {
			return &io.DimensionMismatchError{What: name + " pixel stride", Expected: (len(c.Data) - 1) / max(cw-1, 1), Actual: c.PixelStride}
		}
		if c.RowStride <= colOff {
			return &io.DimensionMismatchError{What: name + " row stride", Expected: colOff + 1, Actual: c.RowStride}
		}
		if err := checkPlane(name, c, ch, colOff); err != nil {
			return err
		}
	}
	return nil
}

// checkPlane checks that rows rows, each colOff bytes past the row start,
// fit in p. RowStride must be positive.
func checkPlane(name string, p Plane, rows, colOff int) error {
	n := len(p.Data)
	rowOff, ok := offset(n, rows, p.RowStride)
	if !ok {
		return &io.DimensionMismatchError{What: name + " row stride", Expected: (n - 1) / max(rows-1, 1), Actual: p.RowStride}
	}
	if last := rowOff + colOff; last >= n {
		return &io.DimensionMismatchError{What: name + " plane", Expected: last + 1, Actual: n}
	}
	return nil
}

// offset returns (count-1)*stride, or false when it doesn't fit in n bytes.
func offset(n, count, stride int) (int, bool) {
	if n == 0 {
		return 0, false
	}
	if count-1 > (n-1)/stride {
		return 0, false
	}
	return (count - 1) * stride, true
}

type Decoder interface {
	Decode(frame []byte, width, height int) (*RawFrame, error)
}

// DecoderFunc is a proxy type for Decoder
type DecoderFunc func(frame []byte, width, height int) (*RawFrame, error)

func (f DecoderFunc) Decode(frame []byte, width, height int) (*RawFrame, error) {
	return f(frame, width, height)
}
