package frame

import (
	"github.com/pion/emotioncam/pkg/io"
)

// The decoders below don't copy: the returned planes alias frame.

func decodeI420(frame []byte, width, height int) (*RawFrame, error) {
	cw, ch := ChromaSize(width, height)
	yi := width * height
	cbi := yi + cw*ch
	cri := cbi + cw*ch

	if cri > len(frame) {
		return nil, &io.DimensionMismatchError{What: "i420 frame", Expected: cri, Actual: len(frame)}
	}

	return &RawFrame{
		Width:  width,
		Height: height,
		Planes: [3]Plane{
			{Data: frame[:yi:yi], RowStride: width, PixelStride: 1},
			{Data: frame[yi:cbi:cbi], RowStride: cw, PixelStride: 1},
			{Data: frame[cbi:cri:cri], RowStride: cw, PixelStride: 1},
		},
	}, nil
}

// semiPlanar builds a frame whose chroma samples are interleaved in a single
// plane. cbFirst reports whether Cb precedes Cr within each pair.
func semiPlanar(what string, frame []byte, width, height int, cbFirst bool) (*RawFrame, error) {
	cw, ch := ChromaSize(width, height)
	yi := width * height
	ci := yi + 2*cw*ch

	if ci > len(frame) {
		return nil, &io.DimensionMismatchError{What: what, Expected: ci, Actual: len(frame)}
	}

	first := Plane{Data: frame[yi:ci:ci], RowStride: 2 * cw, PixelStride: 2}
	second := Plane{Data: frame[yi+1 : ci : ci], RowStride: 2 * cw, PixelStride: 2}
	if !cbFirst {
		first, second = second, first
	}

	return &RawFrame{
		Width:  width,
		Height: height,
		Planes: [3]Plane{
			{Data: frame[:yi:yi], RowStride: width, PixelStride: 1},
			first,
			second,
		},
	}, nil
}

func decodeNV12(frame []byte, width, height int) (*RawFrame, error) {
	return semiPlanar("nv12 frame", frame, width, height, true)
}

func decodeNV21(frame []byte, width, height int) (*RawFrame, error) {
	return semiPlanar("nv21 frame", frame, width, height, false)
}
