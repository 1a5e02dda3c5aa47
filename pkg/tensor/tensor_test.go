package tensor

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pion/emotioncam/pkg/backend"
	"github.com/pion/emotioncam/pkg/frame"
	"github.com/pion/emotioncam/pkg/io"
)

func randomRGB(width, height int, seed int64) *frame.RGBImage {
	m := frame.NewRGBImage(width, height)
	random := rand.New(rand.NewSource(seed))
	random.Read(m.Pix)
	return m
}

func uniformRGB(width, height int, r, g, b uint8) *frame.RGBImage {
	m := frame.NewRGBImage(width, height)
	for i := 0; i < len(m.Pix); i += 3 {
		m.Pix[i], m.Pix[i+1], m.Pix[i+2] = r, g, b
	}
	return m
}

func TestPreprocessLengthsAndRange(t *testing.T) {
	scalers := map[string]Scaler{
		"default":  nil,
		"nearest":  ScalerNearestNeighbor,
		"bilinear": ScalerApproxBiLinear,
		"catmull":  ScalerCatmullRom,
	}
	sizes := []struct{ w, h int }{{4, 4}, {48, 48}, {224, 224}, {640, 480}, {31, 17}}

	for name, scaler := range scalers {
		p := Preprocessor{Scaler: scaler}
		for i, sz := range sizes {
			rgb := randomRGB(sz.w, sz.h, int64(i))

			gray, err := p.Preprocess(rgb, backend.TFLite)
			require.NoError(t, err, name)
			require.Len(t, gray.Data(), 2304, name)
			require.IsType(t, &Grayscale48{}, gray)
			for _, v := range gray.Data() {
				if v < 0 || v > 1 {
					t.Fatalf("%s %dx%d: grayscale value %v out of range", name, sz.w, sz.h, v)
				}
			}

			color, err := p.Preprocess(rgb, backend.ONNX)
			require.NoError(t, err, name)
			require.Len(t, color.Data(), 150528, name)
			require.IsType(t, &RGB224{}, color)
			for _, v := range color.Data() {
				if v < 0 || v > 1 {
					t.Fatalf("%s %dx%d: rgb value %v out of range", name, sz.w, sz.h, v)
				}
			}
		}
	}
}

func TestPreprocessWhiteStaysInRange(t *testing.T) {
	gray, err := Preprocessor{}.Grayscale48(uniformRGB(8, 8, 255, 255, 255))
	require.NoError(t, err)
	for _, v := range gray.Pixels {
		require.InDelta(t, 1, v, 1e-6)
		require.LessOrEqual(t, v, float32(1))
	}
}

func TestRGB224IsChannelPlanar(t *testing.T) {
	r, err := Preprocessor{}.RGB224(uniformRGB(224, 224, 255, 0, 51))
	require.NoError(t, err)

	const n = 224 * 224
	assert.Equal(t, float32(1), r.Pixels[0])
	assert.Equal(t, float32(1), r.Pixels[n-1])
	assert.Equal(t, float32(0), r.Pixels[n])
	assert.Equal(t, float32(0), r.Pixels[2*n-1])
	assert.InDelta(t, 0.2, r.Pixels[2*n], 1e-6)
	assert.InDelta(t, 0.2, r.Pixels[3*n-1], 1e-6)
	assert.Equal(t, []int64{1, 3, 224, 224}, r.Shape())
	assert.Equal(t, backend.ONNX, r.Backend())
}

func TestGrayscale48Shape(t *testing.T) {
	g, err := Preprocessor{}.Grayscale48(uniformRGB(48, 48, 0, 0, 0))
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 48, 48, 1}, g.Shape())
	assert.Equal(t, backend.TFLite, g.Backend())
}

func TestPreprocessRejectsBadBuffer(t *testing.T) {
	rgb := uniformRGB(4, 4, 1, 2, 3)
	rgb.Pix = rgb.Pix[:4*4*3-1]

	for _, b := range backend.All() {
		_, err := Preprocessor{}.Preprocess(rgb, b)
		var dm *io.DimensionMismatchError
		require.True(t, errors.As(err, &dm), "%v: expected DimensionMismatchError, got %v", b, err)
		assert.Equal(t, 48, dm.Expected)
		assert.Equal(t, 47, dm.Actual)
	}

	_, err := Preprocessor{}.Preprocess(uniformRGB(4, 4, 1, 2, 3), backend.Backend(9))
	assert.Error(t, err)
}

func TestPlanarRGB(t *testing.T) {
	planar, err := PlanarRGB([]float32{1, 2, 3, 4, 5, 6}, 2, 1)
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 4, 2, 5, 3, 6}, planar)

	_, err = PlanarRGB(make([]float32, 2*2*3-1), 2, 2)
	var dm *io.DimensionMismatchError
	require.True(t, errors.As(err, &dm))
	assert.Equal(t, 12, dm.Expected)
	assert.Equal(t, 11, dm.Actual)
}

func TestConstructorsRejectMismatchedLengths(t *testing.T) {
	_, err := NewGrayscale48(make([]float32, Grayscale48Len+1))
	assert.Error(t, err)
	_, err = NewRGB224(make([]float32, RGB224Len-1))
	assert.Error(t, err)

	g, err := NewGrayscale48(make([]float32, Grayscale48Len))
	require.NoError(t, err)
	assert.Len(t, g.Data(), Grayscale48Len)
	r, err := NewRGB224(make([]float32, RGB224Len))
	require.NoError(t, err)
	assert.Len(t, r.Data(), RGB224Len)
}
