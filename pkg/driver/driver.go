package driver

import (
	"github.com/pion/emotioncam/pkg/io/video"
	"github.com/pion/emotioncam/pkg/prop"
)

// OpenCloser is a generic interface for opening/closing a device.
type OpenCloser interface {
	Open() error
	Close() error
}

// Info represents a device's information
type Info struct {
	Label      string
	DeviceType DeviceType
	Position   Position
}

// VideoRecorder is an interface to encapsulate the recording process
// for video devices
type VideoRecorder interface {
	VideoRecord(p prop.Video) (r video.Reader, err error)
}

// Adapter is a common interface for drivers
type Adapter interface {
	OpenCloser
	VideoRecorder
	Properties() []prop.Video
}

// Driver is an adapter with a unique ID, its device information and a
// tracked state
type Driver interface {
	Adapter
	ID() string
	Info() Info
	Status() State
}
