package screen

import (
	"image"
	"image/color"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pion/emotioncam/pkg/driver"
	"github.com/pion/emotioncam/pkg/frame"
	"github.com/pion/emotioncam/pkg/prop"
)

func TestScreen(t *testing.T) {
	rect := image.Rect(0, 0, 8, 6)
	capture := func(int) (image.Image, error) {
		img := image.NewRGBA(rect)
		for i := 0; i < len(img.Pix); i += 4 {
			img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = 200, 100, 50, 255
		}
		return img, nil
	}
	bounds := func(int) image.Rectangle { return rect }

	d := driver.NewManager().Register(New(0, capture, bounds), driver.Info{Label: "0", DeviceType: driver.Screen})
	require.NoError(t, d.Open())

	props := d.Properties()
	require.Len(t, props, 1)
	assert.Equal(t, 8, props[0].Width)
	assert.Equal(t, frame.FormatI420, props[0].FrameFormat)

	r, err := d.VideoRecord(prop.Video{FrameRate: 1000})
	require.NoError(t, err)

	f, release, err := r.Read()
	require.NoError(t, err)
	defer release()

	rgb, err := frame.ToRGB(f)
	require.NoError(t, err)
	c := rgb.At(3, 3).(color.RGBA)
	assert.InDelta(t, 200, int(c.R), 4)
	assert.InDelta(t, 100, int(c.G), 4)
	assert.InDelta(t, 50, int(c.B), 4)

	require.NoError(t, d.Close())
	_, _, err = r.Read()
	assert.Equal(t, io.EOF, err)
}

func TestScreenYCbCr(t *testing.T) {
	rect := image.Rect(0, 0, 4, 4)
	img := image.NewYCbCr(rect, image.YCbCrSubsampleRatio420)
	for i := range img.Y {
		img.Y[i] = 128
	}
	for i := range img.Cb {
		img.Cb[i], img.Cr[i] = 128, 128
	}
	capture := func(int) (image.Image, error) { return img, nil }
	bounds := func(int) image.Rectangle { return rect }

	d := driver.NewManager().Register(New(0, capture, bounds), driver.Info{Label: "0", DeviceType: driver.Screen})
	require.NoError(t, d.Open())
	defer d.Close()

	r, err := d.VideoRecord(prop.Video{FrameRate: 1000})
	require.NoError(t, err)
	f, release, err := r.Read()
	require.NoError(t, err)
	defer release()

	// The planes are the capture's own.
	assert.Equal(t, &img.Y[0], &f.Planes[frame.PlaneY].Data[0])
	rgb, err := frame.ToRGB(f)
	require.NoError(t, err)
	assert.Equal(t, []uint8{130, 130, 130}, rgb.Pix[:3])
}
