/*
Package camera provides a video camera driver.

Device Label Generation Rules

On Linux, the device label will be in the format of:
	pci-0000:00:00.0-usb-0:0:0.0-video-index0;video0
If /dev/v4l/by-path/* is not available (for example in a docker container without
bindings in /dev/v4l/by-path/), it will be:
	video0;video0
*/
package camera

import (
	"strings"

	"github.com/pion/emotioncam/pkg/driver"
)

// LabelSeparator is used to separate labels for a driver that
// is found from multiple locations on a host.
const LabelSeparator = ";"

// PositionFromLabel guesses which way a camera faces from its device label.
// Most desktop cameras don't say, so the result is usually PositionUnknown.
func PositionFromLabel(label string) driver.Position {
	l := strings.ToLower(label)
	switch {
	case strings.Contains(l, "front"), strings.Contains(l, "user"):
		return driver.PositionFront
	case strings.Contains(l, "back"), strings.Contains(l, "rear"), strings.Contains(l, "environment"):
		return driver.PositionBack
	default:
		return driver.PositionUnknown
	}
}
