package config

import "errors"

var (
	// ErrInvalid is returned when a config fails validation.
	ErrInvalid = errors.New("invalid config")

	// ErrUnsupportedFormat is returned for file extensions with no decoder.
	ErrUnsupportedFormat = errors.New("unsupported config format")

	// ErrDecode is returned when a document cannot be decoded.
	ErrDecode = errors.New("decode failed")
)
