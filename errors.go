package obb

import "errors"

// Sentinel errors for errors.Is() checks. Every failure during a read
// or write is terminal for that call; no partial group or metadata is
// ever returned alongside a non-nil error.
var (
	// ErrInvalidMagic is returned when a file does not start with the
	// OBB magic bytes.
	ErrInvalidMagic = errors.New("not an OBB file: invalid magic bytes")

	// ErrUnsupportedVersion is returned when the envelope declares a
	// format version this library does not understand.
	ErrUnsupportedVersion = errors.New("unsupported OBB format version")

	// ErrMalformedCleartext is returned when the cleartext section is
	// not valid JSON or violates the envelope schema.
	ErrMalformedCleartext = errors.New("malformed cleartext section")

	// ErrTruncatedPayload is returned when a declared section length
	// exceeds the bytes actually present.
	ErrTruncatedPayload = errors.New("truncated payload")

	// ErrInvalidSignature is returned when the vendor signature does
	// not verify. Verification always happens before any decryption
	// attempt, so a forged file never reaches the cipher.
	ErrInvalidSignature = errors.New("signature verification failed")

	// ErrAuthenticationFailed is returned when decryption fails. A
	// wrong recipient key and tampered ciphertext are deliberately
	// indistinguishable.
	ErrAuthenticationFailed = errors.New("decryption failed")

	// ErrIndexIntegrity is returned when surface indices collide or a
	// surface referenced by the visibility plan is missing.
	ErrIndexIntegrity = errors.New("surface index integrity violation")

	// ErrKeyFormat is returned when key material cannot be parsed or
	// is on the wrong curve.
	ErrKeyFormat = errors.New("invalid key format")

	// ErrInvalidMetadata is returned when public metadata violates a
	// field constraint.
	ErrInvalidMetadata = errors.New("invalid metadata")

	// ErrInvalidSurface is returned when a surface violates a field
	// constraint.
	ErrInvalidSurface = errors.New("invalid surface")

	// ErrEmptyGroup is returned when a surface group has no surfaces.
	ErrEmptyGroup = errors.New("surface group has no surfaces")
)
