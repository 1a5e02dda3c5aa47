//go:build !linux

package camera

// Cameras are only discovered through V4L2. Other platforms register none and
// rely on the screen or test drivers.
