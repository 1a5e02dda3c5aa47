package frame

// Size returns the number of bytes a tightly packed frame occupies in the given
// format, or 0 if the format is unknown.
func Size(f Format, width, height int) int {
	switch f {
	case FormatI420, FormatNV12, FormatNV21:
		cw, ch := ChromaSize(width, height)
		return width*height + 2*cw*ch
	}
	return 0
}
