// Package io holds the small buffer helpers and error types shared by the
// frame, tensor and driver packages.
package io

// Copy copies data from src to dst. If dst is not big enough, return an
// InsufficientBufferError.
func Copy(dst, src []byte) (n int, err error) {
	if len(dst) < len(src) {
		return 0, &InsufficientBufferError{len(src)}
	}

	return copy(dst, src), nil
}

// Grow returns buf resliced to n bytes, reallocating only when its capacity is
// too small. The contents are not preserved on reallocation.
func Grow(buf []byte, n int) []byte {
	if cap(buf) < n {
		return make([]byte, n)
	}
	return buf[:n]
}
