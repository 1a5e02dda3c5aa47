package tensor

import (
	"fmt"
	"image"

	"golang.org/x/image/draw"

	"github.com/pion/emotioncam/pkg/backend"
	"github.com/pion/emotioncam/pkg/frame"
)

// Scaler represents scaling algorithm
type Scaler draw.Scaler

// List of scaling algorithms
var (
	ScalerNearestNeighbor = Scaler(draw.NearestNeighbor)
	ScalerApproxBiLinear  = Scaler(draw.ApproxBiLinear)
	ScalerBiLinear        = Scaler(draw.BiLinear)
	ScalerCatmullRom      = Scaler(draw.CatmullRom)
)

// Preprocessor resizes RGB frames and packs them into the layout of a backend.
// The zero value resizes bilinearly.
type Preprocessor struct {
	Scaler Scaler
}

// Preprocess packs rgb for backend b: Grayscale48 for TFLite, RGB224 for ONNX.
func (p Preprocessor) Preprocess(rgb *frame.RGBImage, b backend.Backend) (ImageData, error) {
	switch b {
	case backend.TFLite:
		return p.Grayscale48(rgb)
	case backend.ONNX:
		return p.RGB224(rgb)
	}
	return nil, fmt.Errorf("preprocess: unsupported backend %v", b)
}

// Grayscale48 resizes rgb to 48x48 and stores the BT.601 luminance of every
// pixel, divided by 255.
func (p Preprocessor) Grayscale48(rgb *frame.RGBImage) (*Grayscale48, error) {
	scaled, err := p.resize(rgb, Grayscale48Side)
	if err != nil {
		return nil, err
	}

	g := &Grayscale48{}
	for i := range g.Pixels {
		px := scaled.Pix[4*i : 4*i+3 : 4*i+3]
		lum := float32(0.299*float32(px[0])) + float32(0.587*float32(px[1])) + float32(0.114*float32(px[2]))
		g.Pixels[i] = min(lum/255, 1)
	}
	return g, nil
}

// RGB224 resizes rgb to 224x224 and stores every channel divided by 255, in
// channel-planar order.
func (p Preprocessor) RGB224(rgb *frame.RGBImage) (*RGB224, error) {
	scaled, err := p.resize(rgb, RGB224Side)
	if err != nil {
		return nil, err
	}

	const n = RGB224Side * RGB224Side
	r := &RGB224{}
	for i := 0; i < n; i++ {
		px := scaled.Pix[4*i : 4*i+3 : 4*i+3]
		r.Pixels[i] = float32(px[0]) / 255
		r.Pixels[n+i] = float32(px[1]) / 255
		r.Pixels[2*n+i] = float32(px[2]) / 255
	}
	return r, nil
}

// resize scales rgb to a side x side RGBA image. Scaling always works from the
// converted RGB image, never from the raw frame.
func (p Preprocessor) resize(rgb *frame.RGBImage, side int) (*image.RGBA, error) {
	if err := rgb.Validate(); err != nil {
		return nil, err
	}

	rect := image.Rect(0, 0, side, side)
	dst := image.NewRGBA(rect)
	if rgb.Width == side && rgb.Height == side {
		for i, j := 0, 0; i < len(rgb.Pix); i, j = i+3, j+4 {
			dst.Pix[j+0] = rgb.Pix[i+0]
			dst.Pix[j+1] = rgb.Pix[i+1]
			dst.Pix[j+2] = rgb.Pix[i+2]
			dst.Pix[j+3] = 0xff
		}
		return dst, nil
	}

	scaler := p.Scaler
	if scaler == nil {
		scaler = ScalerBiLinear
	}
	scaler.Scale(dst, rect, rgb, rgb.Bounds(), draw.Src, nil)
	return dst, nil
}
