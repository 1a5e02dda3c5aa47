package io

import "fmt"

// InsufficientBufferError tells the caller that the buffer provided is not big
// enough to hold the whole frame plane.
type InsufficientBufferError struct {
	RequiredSize int
}

func (e *InsufficientBufferError) Error() string {
	return fmt.Sprintf("provided buffer doesn't meet the size requirement of length, %d", e.RequiredSize)
}

// DimensionMismatchError is returned when a buffer length doesn't agree with the
// geometry it is supposed to describe. Expected and Actual are lengths in
// elements of the buffer (bytes for frame planes, floats for tensors).
type DimensionMismatchError struct {
	What     string
	Expected int
	Actual   int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("%s: dimension mismatch, expected length %d, got %d", e.What, e.Expected, e.Actual)
}
