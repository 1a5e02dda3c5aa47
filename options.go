package emotioncam

import (
	"github.com/pion/logging"

	"github.com/pion/emotioncam/pkg/backend"
	"github.com/pion/emotioncam/pkg/driver"
	"github.com/pion/emotioncam/pkg/io/video"
	"github.com/pion/emotioncam/pkg/prop"
	"github.com/pion/emotioncam/pkg/tensor"
)

// DefaultVideo is the capture size requested when no other is configured.
var DefaultVideo = prop.Video{Width: 640, Height: 480, FrameRate: 30}

// Options stores parameters used by a Pipeline.
type Options struct {
	backend        backend.Backend
	video          prop.Video
	scaler         tensor.Scaler
	videoTransform video.TransformFunc
	loggerFactory  logging.LoggerFactory
	manager        *driver.Manager
}

// Option is a type of Pipeline functional option.
type Option func(*Options)

// WithBackend selects the backend used until SelectBackend is called.
// TFLite is used by default.
func WithBackend(b backend.Backend) Option {
	return func(o *Options) {
		o.backend = b
	}
}

// WithVideo sets the capture properties the camera is matched against.
// Zero fields are left to the device.
func WithVideo(p prop.Video) Option {
	return func(o *Options) {
		o.video = p
	}
}

// WithScaler sets the resampling kernel used to resize frames for the model.
func WithScaler(s tensor.Scaler) Option {
	return func(o *Options) {
		o.scaler = s
	}
}

// WithVideoTransformers will be used to transform the video that's coming from the driver.
// So, basically it'll look like following: driver -> VideoTransform -> scheduler
func WithVideoTransformers(transformFuncs ...video.TransformFunc) Option {
	return func(o *Options) {
		o.videoTransform = video.Merge(transformFuncs...)
	}
}

// WithLoggerFactory sets the factory for the pipeline's own loggers.
func WithLoggerFactory(f logging.LoggerFactory) Option {
	return func(o *Options) {
		o.loggerFactory = f
	}
}

// WithManager looks cameras up in m instead of the global driver manager.
func WithManager(m *driver.Manager) Option {
	return func(o *Options) {
		o.manager = m
	}
}
