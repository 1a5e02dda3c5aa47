package camera

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sync"

	"github.com/blackjack/webcam"

	"github.com/pion/emotioncam/internal/logging"
	"github.com/pion/emotioncam/pkg/driver"
	"github.com/pion/emotioncam/pkg/driver/availability"
	"github.com/pion/emotioncam/pkg/frame"
	mio "github.com/pion/emotioncam/pkg/io"
	"github.com/pion/emotioncam/pkg/io/video"
	"github.com/pion/emotioncam/pkg/prop"
)

const (
	maxEmptyFrameCount = 5
	waitTimeoutSeconds = 5
)

var (
	errReadTimeout = errors.New("read timeout")
	errEmptyFrame  = errors.New("empty frame")
)

var logger = logging.NewLogger("emotioncam/driver/camera")

func fourcc(a, b, c, d byte) webcam.PixelFormat {
	return webcam.PixelFormat(uint32(a) | uint32(b)<<8 | uint32(c)<<16 | uint32(d)<<24)
}

// Only 4:2:0 layouts are requested from the device, in order of preference.
var (
	pixFmtYU12 = fourcc('Y', 'U', '1', '2')
	pixFmtNV12 = fourcc('N', 'V', '1', '2')
	pixFmtNV21 = fourcc('N', 'V', '2', '1')

	supportedFormats = []struct {
		pf     webcam.PixelFormat
		format frame.Format
	}{
		{pixFmtYU12, frame.FormatI420},
		{pixFmtNV12, frame.FormatNV12},
		{pixFmtNV21, frame.FormatNV21},
	}
)

// Camera implementation using v4l2
// Reference: https://linuxtv.org/downloads/v4l-dvb-apis/uapi/v4l/videodev.html#videodev
type camera struct {
	path    string
	cam     *webcam.Webcam
	started bool
	mutex   sync.Mutex
	cancel  func()
}

func init() {
	discovered := make(map[string]struct{})
	discover(discovered, "/dev/v4l/by-path/*")
	discover(discovered, "/dev/video*")
}

// discover registers every device matched by pattern whose real path hasn't
// been seen yet. Labels carry the matched name and the device node name.
func discover(discovered map[string]struct{}, pattern string) {
	devices, err := filepath.Glob(pattern)
	if err != nil {
		// No v4l device.
		return
	}
	for _, device := range devices {
		reallink, err := filepath.EvalSymlinks(device)
		if err != nil {
			logger.Warnf("Failed to resolve %s: %v", device, err)
			continue
		}
		if _, ok := discovered[reallink]; ok {
			continue
		}
		discovered[reallink] = struct{}{}

		label := filepath.Base(device) + LabelSeparator + filepath.Base(reallink)
		driver.GetManager().Register(newCamera(device), driver.Info{
			Label:      label,
			DeviceType: driver.Camera,
			Position:   PositionFromLabel(label),
		})
	}
}

func newCamera(path string) *camera {
	return &camera{path: path}
}

func (c *camera) Open() error {
	cam, err := webcam.Open(c.path)
	if err != nil {
		return fmt.Errorf("%s: %w", c.path, availability.Classify(err))
	}

	c.cam = cam
	return nil
}

func (c *camera) Close() error {
	if c.cam == nil {
		return nil
	}

	if c.cancel != nil {
		// Let the reader knows that the caller has closed the camera
		c.cancel()
		c.cancel = nil
	}

	// Wait until the reader is out of the mmap buffers
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.started {
		if err := c.cam.StopStreaming(); err != nil {
			logger.Warnf("Failed to stop streaming %s: %v", c.path, err)
		}
		c.started = false
	}
	err := c.cam.Close()
	c.cam = nil
	return err
}

func (c *camera) pickFormat(want frame.Format) (webcam.PixelFormat, frame.Format, error) {
	available := c.cam.GetSupportedFormats()
	for _, f := range supportedFormats {
		if _, ok := available[f.pf]; ok && (want == "" || want == f.format) {
			return f.pf, f.format, nil
		}
	}
	return 0, "", fmt.Errorf("%s: no supported 4:2:0 pixel format", c.path)
}

func (c *camera) VideoRecord(p prop.Video) (video.Reader, error) {
	pf, format, err := c.pickFormat(p.FrameFormat)
	if err != nil {
		return nil, err
	}

	decoder, err := frame.NewDecoder(format)
	if err != nil {
		return nil, err
	}

	_, w, h, err := c.cam.SetImageFormat(pf, uint32(p.Width), uint32(p.Height))
	if err != nil {
		return nil, err
	}
	width, height := int(w), int(h)

	if err := c.cam.StartStreaming(); err != nil {
		return nil, err
	}
	c.started = true
	logger.Infof("Streaming %s as %dx%d %s", c.path, width, height, format)

	cam := c.cam
	size := frame.Size(format, width, height)
	pool := sync.Pool{New: func() interface{} {
		return make([]byte, size)
	}}

	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	r := video.ReaderFunc(func() (*frame.RawFrame, func(), error) {
		// Lock to avoid accessing the buffer after StopStreaming()
		c.mutex.Lock()
		defer c.mutex.Unlock()

		// Wait until a frame is ready
		for i := 0; i < maxEmptyFrameCount; i++ {
			if ctx.Err() != nil {
				// Return EOF if the camera is already closed.
				return nil, func() {}, io.EOF
			}

			err := cam.WaitForFrame(waitTimeoutSeconds)
			switch err.(type) {
			case nil:
			case *webcam.Timeout:
				return nil, func() {}, errReadTimeout
			default:
				// Camera has been stopped.
				return nil, func() {}, err
			}

			b, err := cam.ReadFrame()
			if err != nil {
				// Camera has been stopped.
				return nil, func() {}, err
			}

			// Frame is empty.
			// Retry reading and return errEmptyFrame if it exceeds maxEmptyFrameCount.
			if len(b) == 0 {
				continue
			}

			// move the memory from mmap to Go. The frame may be held by the
			// consumer long after the device has reused its buffer.
			buf := pool.Get().([]byte)
			n, err := mio.Copy(buf, b)
			var insufficient *mio.InsufficientBufferError
			if errors.As(err, &insufficient) {
				buf = mio.Grow(buf, insufficient.RequiredSize)
				n = copy(buf, b)
			}
			f, err := decoder.Decode(buf[:n], width, height)
			if err != nil {
				pool.Put(buf)
				return nil, func() {}, err
			}
			return f, func() { pool.Put(buf) }, nil
		}
		return nil, func() {}, errEmptyFrame
	})

	return r, nil
}

func (c *camera) Properties() []prop.Video {
	properties := make([]prop.Video, 0)
	available := c.cam.GetSupportedFormats()
	for _, f := range supportedFormats {
		if _, ok := available[f.pf]; !ok {
			continue
		}
		for _, frameSize := range c.cam.GetSupportedFrameSizes(f.pf) {
			properties = append(properties, prop.Video{
				Width:       int(frameSize.MaxWidth),
				Height:      int(frameSize.MaxHeight),
				FrameFormat: f.format,
			})
		}
	}
	return properties
}
