package crypto

import (
	"crypto/ecdsa"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
)

// Sign signs data with the vendor's private key: SHA-256 digest, ECDSA
// over P-256, ASN.1 DER encoding, standard base64 text form for
// embedding in the envelope cleartext.
func Sign(data []byte, priv *ecdsa.PrivateKey) (string, error) {
	digest := sha256.Sum256(data)
	sig, err := ecdsa.SignASN1(randReader, priv, digest[:])
	if err != nil {
		return "", fmt.Errorf("sign: %w", err)
	}
	return base64.StdEncoding.EncodeToString(sig), nil
}

// Verify reports whether sigText is a valid signature over data.
func Verify(data []byte, sigText string, pub *ecdsa.PublicKey) bool {
	return VerifySignature(data, sigText, pub) == nil
}

// VerifySignature verifies sigText over data, returning
// ErrSignatureInvalid on mismatch and ErrInvalidSignatureEncoding if
// the text form cannot be decoded.
func VerifySignature(data []byte, sigText string, pub *ecdsa.PublicKey) error {
	sig, err := base64.StdEncoding.DecodeString(sigText)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSignatureEncoding, err)
	}
	digest := sha256.Sum256(data)
	if !ecdsa.VerifyASN1(pub, digest[:], sig) {
		return ErrSignatureInvalid
	}
	return nil
}
