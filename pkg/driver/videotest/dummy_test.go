package videotest

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pion/emotioncam/pkg/driver"
	"github.com/pion/emotioncam/pkg/frame"
	"github.com/pion/emotioncam/pkg/prop"
)

func TestVideoRecord(t *testing.T) {
	m := driver.NewManager()
	d := m.Register(New(), driver.Info{Label: "test", DeviceType: driver.Camera})
	require.NoError(t, d.Open())

	r, err := d.VideoRecord(prop.Video{Width: 64, Height: 48, FrameRate: 1000})
	require.NoError(t, err)

	f, release, err := r.Read()
	require.NoError(t, err)
	assert.Equal(t, 64, f.Width)
	assert.Equal(t, 48, f.Height)
	require.NoError(t, f.Validate())

	rgb, err := frame.ToRGB(f)
	require.NoError(t, err)
	release()

	// The first bar is 75% white.
	px := rgb.Pix[:3]
	for _, c := range px {
		assert.InDelta(t, 188, int(c), 8)
	}

	require.NoError(t, d.Close())
	_, _, err = r.Read()
	assert.Equal(t, io.EOF, err)
}

func TestReopen(t *testing.T) {
	d := driver.NewManager().Register(New(), driver.Info{Label: "test", DeviceType: driver.Camera})
	for i := 0; i < 2; i++ {
		require.NoError(t, d.Open())
		r, err := d.VideoRecord(prop.Video{Width: 8, Height: 8, FrameRate: 1000})
		require.NoError(t, err)
		_, release, err := r.Read()
		require.NoError(t, err)
		release()
		require.NoError(t, d.Close())
	}
}

func TestColorBarsSize(t *testing.T) {
	assert.Len(t, ColorBars(5, 3), 5*3+2*3*2)
}
