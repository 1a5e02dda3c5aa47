package emotioncam

import (
	"errors"
	"fmt"
	"math"

	"github.com/pion/emotioncam/pkg/driver"
	"github.com/pion/emotioncam/pkg/driver/availability"
	"github.com/pion/emotioncam/pkg/frame"
	"github.com/pion/emotioncam/pkg/prop"
)

// ErrNoCamera is reported by Bind when no camera is registered.
var ErrNoCamera = fmt.Errorf("no camera found: %w", availability.ErrNoDevice)

var errNoProperties = errors.New("driver reports no supported properties")

// DeviceInfo describes a capture device known to the driver manager.
type DeviceInfo struct {
	DeviceID   string
	Label      string
	DeviceType driver.DeviceType
	Position   driver.Position
}

// EnumerateDevices lists every registered capture device.
func EnumerateDevices(m *driver.Manager) []DeviceInfo {
	drivers := m.Query(func(driver.Driver) bool { return true })
	info := make([]DeviceInfo, 0, len(drivers))
	for _, d := range drivers {
		driverInfo := d.Info()
		info = append(info, DeviceInfo{
			DeviceID:   d.ID(),
			Label:      driverInfo.Label,
			DeviceType: driverInfo.DeviceType,
			Position:   driverInfo.Position,
		})
	}
	return info
}

// selectCamera picks a front camera, then a back camera, then any other one.
func selectCamera(m *driver.Manager) (driver.Driver, error) {
	cameras := driver.FilterDeviceType(driver.Camera)
	for _, filter := range []driver.FilterFn{
		driver.FilterAnd(cameras, driver.FilterPosition(driver.PositionFront)),
		driver.FilterAnd(cameras, driver.FilterPosition(driver.PositionBack)),
		cameras,
	} {
		if drivers := m.Query(filter); len(drivers) > 0 {
			return drivers[0], nil
		}
	}
	return nil, ErrNoCamera
}

// selectProperty picks the property of d closest to constraints. The picked
// property overrides the constraints field by field. d must be opened.
// Reference: https://w3c.github.io/mediacapture-main/#dfn-selectsettings
func selectProperty(d driver.Driver, constraints prop.Video) (prop.Video, error) {
	var best prop.Video
	var found bool
	minFitnessDist := math.Inf(1)

	for _, p := range d.Properties() {
		if !supportedFormat(p) {
			continue
		}
		if fitnessDist := p.FitnessDistance(constraints); fitnessDist < minFitnessDist {
			minFitnessDist = fitnessDist
			best = p
			found = true
		}
	}

	if !found {
		return prop.Video{}, errNoProperties
	}

	constraints.Merge(best)
	return constraints, nil
}

func supportedFormat(p prop.Video) bool {
	if p.FrameFormat == "" {
		return true
	}
	_, err := frame.NewDecoder(p.FrameFormat)
	return err == nil
}
