// Package prop describes capture properties of a video source.
package prop

import (
	"fmt"
	"math"
	"strconv"

	"github.com/pion/emotioncam/pkg/frame"
)

// Video represents a video's properties
type Video struct {
	Width, Height int
	FrameRate     float32
	FrameFormat   frame.Format
}

// Merge copies the non-zero fields of o into p.
func (p *Video) Merge(o Video) {
	if o.Width != 0 {
		p.Width = o.Width
	}
	if o.Height != 0 {
		p.Height = o.Height
	}
	if o.FrameRate != 0 {
		p.FrameRate = o.FrameRate
	}
	if o.FrameFormat != "" {
		p.FrameFormat = o.FrameFormat
	}
}

func (p Video) String() string {
	return fmt.Sprintf("%dx%d %s @%.1ffps", p.Width, p.Height, p.FrameFormat, p.FrameRate)
}

// FitnessDistance scores how far p is from the ideal o, 0 being a perfect
// match. Zero fields of o are ignored.
func (p Video) FitnessDistance(o Video) float64 {
	cmps := comparisons{}
	if o.Width != 0 {
		cmps.add(p.Width, o.Width)
	}
	if o.Height != 0 {
		cmps.add(p.Height, o.Height)
	}
	if o.FrameFormat != "" {
		cmps.add(p.FrameFormat, o.FrameFormat)
	}
	return cmps.fitnessDistance()
}

type comparison struct {
	actual, ideal string
}

type comparisons []comparison

func (c *comparisons) add(actual, ideal interface{}) {
	*c = append(*c, comparison{fmt.Sprint(actual), fmt.Sprint(ideal)})
}

// fitnessDistance is an implementation for https://w3c.github.io/mediacapture-main/#dfn-fitness-distance
func (c comparisons) fitnessDistance() float64 {
	var dist float64

	for _, cmp := range c {
		if cmp.actual == cmp.ideal {
			continue
		}

		actualF, err1 := strconv.ParseFloat(cmp.actual, 64)
		idealF, err2 := strconv.ParseFloat(cmp.ideal, 64)

		switch {
		// If both of the values are numeric, we need to normalize the values to get the distance
		case err1 == nil && err2 == nil:
			dist += math.Abs(actualF-idealF) / math.Max(math.Abs(actualF), math.Abs(idealF))
		// Otherwise the only comparison value is either 0 (matched) or 1 (not matched)
		default:
			dist++
		}
	}

	return dist
}
