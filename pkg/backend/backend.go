// Package backend names the inference backends a frame can be routed to. The
// backend decides both the tensor layout a frame is packed into and the label
// table its scores are read against.
package backend

import (
	"fmt"
	"strings"
)

// Backend selects an inference engine.
type Backend int

const (
	// TFLite takes a 48x48 single channel tensor.
	TFLite Backend = iota
	// ONNX takes a 224x224 channel-planar RGB tensor.
	ONNX

	numBackends
)

// All lists every backend, in declaration order.
func All() []Backend {
	all := make([]Backend, 0, numBackends)
	for b := Backend(0); b < numBackends; b++ {
		all = append(all, b)
	}
	return all
}

// Valid reports whether b is one of the declared backends.
func (b Backend) Valid() bool {
	return b >= 0 && b < numBackends
}

func (b Backend) String() string {
	switch b {
	case TFLite:
		return "tflite"
	case ONNX:
		return "onnx"
	}
	return fmt.Sprintf("backend(%d)", int(b))
}

// Parse is the inverse of String. It is case insensitive.
func Parse(s string) (Backend, error) {
	for _, b := range All() {
		if strings.EqualFold(s, b.String()) {
			return b, nil
		}
	}
	return 0, fmt.Errorf("unknown backend %q", s)
}
