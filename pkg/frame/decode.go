package frame

import (
	"fmt"
)

func NewDecoder(f Format) (Decoder, error) {
	var decoder DecoderFunc

	switch f {
	case FormatI420:
		decoder = decodeI420
	case FormatNV12:
		decoder = decodeNV12
	case FormatNV21:
		decoder = decodeNV21
	default:
		return nil, fmt.Errorf("%s is not supported", f)
	}

	return decoder, nil
}
