package driver

// DeviceType represents human readable device type. DeviceType
// can be useful to filter the drivers too.
type DeviceType string

const (
	// Camera represents camera devices
	Camera DeviceType = "camera"
	// Screen represents screen devices
	Screen DeviceType = "screen"
)

// Position is the side of the device a camera faces.
type Position string

const (
	PositionUnknown Position = ""
	PositionFront   Position = "front"
	PositionBack    Position = "back"
)
