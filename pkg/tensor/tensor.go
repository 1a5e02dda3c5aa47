// Package tensor packs RGB frames into the fixed float layouts the inference
// backends consume.
package tensor

import (
	"github.com/pion/emotioncam/pkg/backend"
	"github.com/pion/emotioncam/pkg/io"
)

const (
	// Grayscale48Side is the edge length of the TFLite input.
	Grayscale48Side = 48
	// Grayscale48Len is the number of floats in a Grayscale48 tensor.
	Grayscale48Len = Grayscale48Side * Grayscale48Side

	// RGB224Side is the edge length of the ONNX input.
	RGB224Side = 224
	// RGB224Len is the number of floats in an RGB224 tensor.
	RGB224Len = RGB224Side * RGB224Side * 3
)

// ImageData is a preprocessed frame, ready for one specific backend. The only
// implementations are *Grayscale48 and *RGB224.
type ImageData interface {
	// Backend is the backend this layout was built for.
	Backend() backend.Backend
	// Shape is the tensor shape the engine is fed, batch first.
	Shape() []int64
	// Data is the flat tensor, len(Data()) == product of Shape().
	Data() []float32

	isImageData()
}

// Grayscale48 is a single channel 48x48 luminance tensor, row-major, values in
// [0,1].
type Grayscale48 struct {
	Pixels [Grayscale48Len]float32
}

// NewGrayscale48 copies pixels into a Grayscale48. len(pixels) must be exactly
// Grayscale48Len.
func NewGrayscale48(pixels []float32) (*Grayscale48, error) {
	if len(pixels) != Grayscale48Len {
		return nil, &io.DimensionMismatchError{What: "grayscale48", Expected: Grayscale48Len, Actual: len(pixels)}
	}
	g := &Grayscale48{}
	copy(g.Pixels[:], pixels)
	return g, nil
}

func (g *Grayscale48) Backend() backend.Backend { return backend.TFLite }
func (g *Grayscale48) Shape() []int64           { return []int64{1, Grayscale48Side, Grayscale48Side, 1} }
func (g *Grayscale48) Data() []float32          { return g.Pixels[:] }
func (g *Grayscale48) isImageData()             {}

// RGB224 is a 224x224 RGB tensor in channel-planar order: every R value, then
// every G value, then every B value. Values are in [0,1].
type RGB224 struct {
	Pixels [RGB224Len]float32
}

// NewRGB224 copies channel-planar pixels into an RGB224. len(pixels) must be
// exactly RGB224Len.
func NewRGB224(pixels []float32) (*RGB224, error) {
	if len(pixels) != RGB224Len {
		return nil, &io.DimensionMismatchError{What: "rgb224", Expected: RGB224Len, Actual: len(pixels)}
	}
	r := &RGB224{}
	copy(r.Pixels[:], pixels)
	return r, nil
}

func (r *RGB224) Backend() backend.Backend { return backend.ONNX }
func (r *RGB224) Shape() []int64           { return []int64{1, 3, RGB224Side, RGB224Side} }
func (r *RGB224) Data() []float32          { return r.Pixels[:] }
func (r *RGB224) isImageData()             {}

// PlanarRGB reorders an interleaved RGB float buffer (R,G,B,R,G,B,...) into
// channel-planar order. The buffer must hold exactly width*height*3 values;
// nothing is converted otherwise.
func PlanarRGB(pixels []float32, width, height int) ([]float32, error) {
	n := width * height
	if len(pixels) != 3*n {
		return nil, &io.DimensionMismatchError{What: "interleaved rgb", Expected: 3 * n, Actual: len(pixels)}
	}
	planar := make([]float32, 3*n)
	for i := 0; i < n; i++ {
		planar[i] = pixels[3*i]
		planar[n+i] = pixels[3*i+1]
		planar[2*n+i] = pixels[3*i+2]
	}
	return planar, nil
}
