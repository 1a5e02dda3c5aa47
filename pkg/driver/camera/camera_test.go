package camera

import (
	"testing"

	"github.com/pion/emotioncam/pkg/driver"
)

func TestPositionFromLabel(t *testing.T) {
	testDataSet := map[string]driver.Position{
		"platform-front-camera;video0":    driver.PositionFront,
		"Rear Camera;video2":              driver.PositionBack,
		"pci-0000:00:14.0-usb-0:1:1.0":    driver.PositionUnknown,
		"usb-Integrated_Webcam_HD;video1": driver.PositionUnknown,
	}
	for label, expected := range testDataSet {
		if p := PositionFromLabel(label); p != expected {
			t.Errorf("%s: expected %q, got %q", label, expected, p)
		}
	}
}
