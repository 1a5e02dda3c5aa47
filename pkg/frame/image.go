package frame

import (
	"image"
)

// FromYCbCr wraps a 4:2:0 image.YCbCr as a RawFrame without copying. Other
// subsample ratios go through FromImage.
func FromYCbCr(img *image.YCbCr) *RawFrame {
	if img.SubsampleRatio != image.YCbCrSubsampleRatio420 {
		return FromImage(img)
	}
	r := img.Rect
	yi := img.YOffset(r.Min.X, r.Min.Y)
	ci := img.COffset(r.Min.X, r.Min.Y)
	return &RawFrame{
		Width:  r.Dx(),
		Height: r.Dy(),
		Planes: [3]Plane{
			{Data: img.Y[yi:], RowStride: img.YStride, PixelStride: 1},
			{Data: img.Cb[ci:], RowStride: img.CStride, PixelStride: 1},
			{Data: img.Cr[ci:], RowStride: img.CStride, PixelStride: 1},
		},
	}
}

// FromImage converts any image to a tightly packed I420 RawFrame, using the
// BT.601 limited range forward equations so that ToRGB round-trips. Chroma is
// the average of each 2x2 block.
func FromImage(img image.Image) *RawFrame {
	b := img.Bounds()
	width, height := b.Dx(), b.Dy()
	cw, ch := ChromaSize(width, height)

	yp := make([]byte, width*height)
	cbp := make([]byte, cw*ch)
	crp := make([]byte, cw*ch)
	f := &RawFrame{
		Width:  width,
		Height: height,
		Planes: [3]Plane{
			{Data: yp, RowStride: width, PixelStride: 1},
			{Data: cbp, RowStride: cw, PixelStride: 1},
			{Data: crp, RowStride: cw, PixelStride: 1},
		},
	}

	cbSum := make([]int, cw*ch)
	crSum := make([]int, cw*ch)
	count := make([]int, cw*ch)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r16, g16, b16, _ := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			r, g, bl := int(r16>>8), int(g16>>8), int(b16>>8)

			yp[y*width+x] = uint8((66*r+129*g+25*bl+128)>>8 + 16)
			ci := (y>>1)*cw + x>>1
			cbSum[ci] += (-38*r - 74*g + 112*bl + 128) >> 8
			crSum[ci] += (112*r - 94*g - 18*bl + 128) >> 8
			count[ci]++
		}
	}
	for i := range count {
		cbp[i] = uint8(cbSum[i]/count[i] + 128)
		crp[i] = uint8(crSum[i]/count[i] + 128)
	}
	return f
}
