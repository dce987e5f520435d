package envelope

import "errors"

var (
	// ErrInvalidMagic is returned when the input does not begin with
	// the OBB magic bytes.
	ErrInvalidMagic = errors.New("invalid magic bytes")

	// ErrUnsupportedVersion is returned when the header declares a
	// format version this library does not implement.
	ErrUnsupportedVersion = errors.New("unsupported format version")

	// ErrTruncated is returned when a declared section length exceeds
	// the bytes actually available.
	ErrTruncated = errors.New("truncated envelope")
)
