package transform

import "errors"

var (
	// ErrInvalidParameter is returned when an operation parameter is out of
	// range. It is reported before any image processing starts.
	ErrInvalidParameter = errors.New("invalid parameter")
	// ErrDecode wraps failures reading or decoding an input image.
	ErrDecode = errors.New("decode image")
	// ErrEncode wraps failures encoding or writing an output image.
	ErrEncode = errors.New("encode image")
	// ErrUnsupportedFormat is returned when an output extension has no encoder.
	ErrUnsupportedFormat = errors.New("unsupported image format")
)
