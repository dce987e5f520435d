package crypto

const (
	// HKDFContext is the fixed, versioned context string used in HKDF
	// key derivation for domain separation. It is owned by envelope
	// format version 1 and never changes within it.
	HKDFContext = "optical-blackbox:obb:v1"

	// AESKeySize is the size of an AES-256 key in bytes.
	AESKeySize = 32
	// NonceSize is the size of an AES-GCM nonce in bytes.
	NonceSize = 12
	// TagSize is the size of an AES-GCM authentication tag in bytes.
	TagSize = 16

	// MinBlockSize is the smallest well-formed encrypted block:
	// a nonce plus the tag of an empty plaintext.
	MinBlockSize = NonceSize + TagSize

	// Ciphersuite is the canonical name of the algorithm suite fixed by
	// format version 1, reported alongside envelope metadata.
	Ciphersuite = "ECDH-P256:ECDSA-P256-SHA256:AES-256-GCM:HKDF-SHA-256"
)
