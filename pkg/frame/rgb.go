package frame

import (
	"image"
	"image/color"

	"github.com/pion/emotioncam/pkg/io"
)

// RGBImage is an interleaved 8-bit RGB image, row-major with no padding.
type RGBImage struct {
	Pix    []uint8
	Width  int
	Height int
}

// NewRGBImage allocates a black RGBImage.
func NewRGBImage(width, height int) *RGBImage {
	return &RGBImage{
		Pix:    make([]uint8, 3*width*height),
		Width:  width,
		Height: height,
	}
}

// Validate reports a DimensionMismatchError if Pix isn't exactly
// Width*Height*3 bytes long.
func (m *RGBImage) Validate() error {
	if expected := 3 * m.Width * m.Height; len(m.Pix) != expected || m.Width <= 0 || m.Height <= 0 {
		return &io.DimensionMismatchError{What: "rgb image", Expected: expected, Actual: len(m.Pix)}
	}
	return nil
}

func (m *RGBImage) ColorModel() color.Model {
	return color.RGBAModel
}

func (m *RGBImage) Bounds() image.Rectangle {
	return image.Rect(0, 0, m.Width, m.Height)
}

func (m *RGBImage) At(x, y int) color.Color {
	if !(image.Point{x, y}.In(m.Bounds())) {
		return color.RGBA{}
	}
	i := 3 * (y*m.Width + x)
	return color.RGBA{m.Pix[i], m.Pix[i+1], m.Pix[i+2], 0xff}
}
