package frame

type Format string

const (
	// Planar and semi-planar 4:2:0 formats. Anything else is rejected by
	// NewDecoder.

	// FormatI420 https://www.fourcc.org/pixel-format/yuv-i420/
	FormatI420 Format = "I420"
	// FormatNV12 https://www.fourcc.org/pixel-format/yuv-nv12/
	FormatNV12 Format = "NV12"
	// FormatNV21 https://www.fourcc.org/pixel-format/yuv-nv21/
	FormatNV21 Format = "NV21"
)

// YUV aliases

// FormatYU12 is an alias of FormatI420
const FormatYU12 = FormatI420

// Plane indices into RawFrame.Planes
const (
	PlaneY = iota
	PlaneCb
	PlaneCr
)
