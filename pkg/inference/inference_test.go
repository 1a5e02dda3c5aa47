package inference

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pion/emotioncam/pkg/backend"
	"github.com/pion/emotioncam/pkg/engine/enginetest"
	"github.com/pion/emotioncam/pkg/tensor"
)

func grayscale() tensor.ImageData {
	return &tensor.Grayscale48{}
}

func rgb() tensor.ImageData {
	return &tensor.RGB224{}
}

func TestEveryBackendHasLabels(t *testing.T) {
	for _, b := range backend.All() {
		assert.Len(t, Labels(b), 7, b.String())
	}
	assert.Nil(t, Labels(backend.Backend(42)))
}

func TestLabelsReturnsCopy(t *testing.T) {
	l := Labels(backend.TFLite)
	l[0] = "changed"
	assert.Equal(t, "angry", Labels(backend.TFLite)[0])
}

func TestArgMax(t *testing.T) {
	cases := map[string]struct {
		scores   []float32
		expected int
	}{
		"Empty":     {nil, -1},
		"Single":    {[]float32{0.3}, 0},
		"Last":      {[]float32{0.1, 0.2, 0.7}, 2},
		"FirstTie":  {[]float32{0.1, 0.5, 0.5, 0.2}, 1},
		"Negatives": {[]float32{-3, -1, -2}, 1},
	}
	for name, c := range cases {
		c := c
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, c.expected, ArgMax(c.scores))
		})
	}
}

func TestInferLabels(t *testing.T) {
	scores := []float32{0.05, 0.60, 0.05, 0.10, 0.05, 0.10, 0.05}
	d := NewDispatcher(
		WithEngine(backend.TFLite, &enginetest.Static{Scores: scores}),
		WithEngine(backend.ONNX, &enginetest.Static{Scores: scores}),
	)

	r := d.Infer(context.Background(), grayscale(), backend.TFLite)
	require.NoError(t, r.Err)
	assert.Equal(t, "disgust", r.Label)
	assert.Equal(t, 1, r.Index)
	assert.Equal(t, backend.TFLite, r.Backend)
	assert.False(t, r.Sentinel())

	r = d.Infer(context.Background(), rgb(), backend.ONNX)
	require.NoError(t, r.Err)
	assert.Equal(t, "Disgust", r.Label)
}

func TestInferTableOrderDiffers(t *testing.T) {
	// Index 4 is "sad" for one model and "Neutral" for the other.
	scores := []float32{0, 0, 0, 0, 1, 0, 0}
	d := NewDispatcher(
		WithEngine(backend.TFLite, &enginetest.Static{Scores: scores}),
		WithEngine(backend.ONNX, &enginetest.Static{Scores: scores}),
	)
	assert.Equal(t, "sad", d.Infer(context.Background(), grayscale(), backend.TFLite).Label)
	assert.Equal(t, "Neutral", d.Infer(context.Background(), rgb(), backend.ONNX).Label)
}

func TestInferIsIdempotent(t *testing.T) {
	engine := &enginetest.Static{Scores: []float32{0.1, 0.1, 0.1, 0.1, 0.1, 0.4, 0.1}}
	d := NewDispatcher(WithEngine(backend.TFLite, engine))

	img := grayscale()
	first := d.Infer(context.Background(), img, backend.TFLite)
	second := d.Infer(context.Background(), img, backend.TFLite)
	assert.Equal(t, first, second)
	assert.Equal(t, "surprise", first.Label)
	assert.EqualValues(t, 2, engine.Calls())
	assert.Same(t, img, engine.Last())
}

func TestInferUnknown(t *testing.T) {
	cases := map[string]struct {
		scores []float32
		err    error
	}{
		"Empty":    {[]float32{}, ErrEmptyScores},
		"TooShort": {[]float32{0.5, 0.5}, ErrMalformedScores},
		"TooLong":  {make([]float32, 9), ErrMalformedScores},
	}
	for name, c := range cases {
		c := c
		t.Run(name, func(t *testing.T) {
			d := NewDispatcher(WithEngine(backend.TFLite, &enginetest.Static{Scores: c.scores}))
			r := d.Infer(context.Background(), grayscale(), backend.TFLite)
			assert.Equal(t, LabelUnknown, r.Label)
			assert.Equal(t, -1, r.Index)
			assert.True(t, r.Sentinel())
			assert.ErrorIs(t, r.Err, c.err)
		})
	}
}

func TestInferError(t *testing.T) {
	errBoom := errors.New("boom")

	t.Run("EngineFailure", func(t *testing.T) {
		d := NewDispatcher(WithEngine(backend.ONNX, enginetest.Failing{Err: errBoom}))
		r := d.Infer(context.Background(), rgb(), backend.ONNX)
		assert.Equal(t, LabelError, r.Label)
		assert.ErrorIs(t, r.Err, errBoom)

		var engineErr *EngineError
		require.True(t, errors.As(r.Err, &engineErr))
		assert.Equal(t, backend.ONNX, engineErr.Backend)
	})

	t.Run("EnginePanic", func(t *testing.T) {
		d := NewDispatcher(WithEngine(backend.TFLite, EngineFunc(
			func(context.Context, tensor.ImageData) ([]float32, error) {
				panic("bad model")
			},
		)))
		r := d.Infer(context.Background(), grayscale(), backend.TFLite)
		assert.Equal(t, LabelError, r.Label)
		assert.Error(t, r.Err)
	})

	t.Run("NoEngine", func(t *testing.T) {
		r := NewDispatcher().Infer(context.Background(), grayscale(), backend.TFLite)
		assert.Equal(t, LabelError, r.Label)
		assert.ErrorIs(t, r.Err, ErrNoEngine)
	})

	t.Run("LayoutMismatch", func(t *testing.T) {
		engine := &enginetest.Static{Scores: make([]float32, 7)}
		d := NewDispatcher(WithEngine(backend.ONNX, engine))
		r := d.Infer(context.Background(), grayscale(), backend.ONNX)
		assert.Equal(t, LabelError, r.Label)
		assert.ErrorIs(t, r.Err, ErrLayoutMismatch)
		assert.Zero(t, engine.Calls())
	})
}

func TestStats(t *testing.T) {
	d := NewDispatcher(
		WithEngine(backend.TFLite, &enginetest.Static{Scores: make([]float32, 7)}),
		WithEngine(backend.ONNX, &enginetest.Static{}),
	)
	d.Infer(context.Background(), grayscale(), backend.TFLite)
	d.Infer(context.Background(), grayscale(), backend.TFLite)
	d.Infer(context.Background(), rgb(), backend.ONNX)
	d.Infer(context.Background(), grayscale(), backend.ONNX)

	stats := d.Stats()
	assert.EqualValues(t, 2, stats[backend.TFLite].Runs)
	assert.EqualValues(t, 1, stats[backend.ONNX].Runs)
	assert.EqualValues(t, 1, stats[backend.ONNX].Unknown)
	assert.EqualValues(t, 1, stats[backend.ONNX].Failures)
}
