package backend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	for _, b := range All() {
		parsed, err := Parse(b.String())
		require.NoError(t, err)
		assert.Equal(t, b, parsed)
	}

	b, err := Parse("ONNX")
	require.NoError(t, err)
	assert.Equal(t, ONNX, b)

	_, err = Parse("caffe")
	assert.Error(t, err)
}

func TestValid(t *testing.T) {
	assert.True(t, TFLite.Valid())
	assert.True(t, ONNX.Valid())
	assert.False(t, Backend(-1).Valid())
	assert.False(t, numBackends.Valid())
	assert.Equal(t, "backend(7)", Backend(7).String())
}
