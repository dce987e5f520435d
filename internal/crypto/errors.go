package crypto

import "errors"

var (
	// ErrDecryptionFailed is returned when an AEAD open fails. A wrong
	// key and a tampered ciphertext are deliberately indistinguishable;
	// no detail beyond this sentinel is ever attached.
	ErrDecryptionFailed = errors.New("decryption failed")

	// ErrSignatureInvalid is returned when signature verification fails.
	ErrSignatureInvalid = errors.New("signature verification failed")

	// ErrInvalidKey is returned when key material cannot be parsed or
	// is not a P-256 key.
	ErrInvalidKey = errors.New("invalid key")

	// ErrInvalidBlock is returned when an encrypted block is too short
	// to contain a nonce and a tag.
	ErrInvalidBlock = errors.New("invalid encrypted block")

	// ErrInvalidSignatureEncoding is returned when a signature string
	// is not valid base64.
	ErrInvalidSignatureEncoding = errors.New("invalid signature encoding")
)
