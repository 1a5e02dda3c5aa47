package frame

// ToRGB converts f to an interleaved RGB image using the BT.601 limited range
// equations. Both chroma sample indices use the same formula, each against its
// own plane's strides.
func ToRGB(f *RawFrame) (*RGBImage, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}

	width, height := f.Width, f.Height
	yp, cbp, crp := f.Planes[PlaneY], f.Planes[PlaneCb], f.Planes[PlaneCr]
	dst := NewRGBImage(width, height)

	i := 0
	for y := 0; y < height; y++ {
		yRow := y * yp.RowStride
		cRow := y >> 1
		for x := 0; x < width; x++ {
			cCol := x >> 1
			yy := int(yp.Data[yRow+x]) - 16
			cb := int(cbp.Data[cRow*cbp.RowStride+cCol*cbp.PixelStride]) - 128
			cr := int(crp.Data[cRow*crp.RowStride+cCol*crp.PixelStride]) - 128

			// Explicit float32 conversions keep the products from being fused.
			yf := float32(1.164 * float32(yy))
			dst.Pix[i+0] = clamp(int(yf + float32(1.596*float32(cr))))
			dst.Pix[i+1] = clamp(int(yf - float32(0.392*float32(cb)) - float32(0.813*float32(cr))))
			dst.Pix[i+2] = clamp(int(yf + float32(2.017*float32(cb))))
			i += 3
		}
	}

	return dst, nil
}

func clamp(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
