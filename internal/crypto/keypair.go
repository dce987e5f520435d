// Package crypto implements the cryptographic core of the OBB
// envelope format: ephemeral ECDH key agreement over NIST P-256,
// HKDF-SHA-256 key derivation, AES-256-GCM authenticated encryption,
// and ECDSA signatures.
//
// Long-lived keys are plain *ecdsa.PrivateKey / *ecdsa.PublicKey
// values on P-256; the same pair serves both key agreement (via the
// standard library ECDH bridge) and signing. Ephemeral pairs exist
// only inside a single Encrypt call.
package crypto

import (
	"crypto"
	"crypto/ecdh"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"io"
)

// randReader is the random source for key and nonce generation. It
// defaults to crypto/rand and can be overridden in tests.
var randReader io.Reader = rand.Reader

// GenerateKey creates a new P-256 key pair usable for both ECDH and
// ECDSA.
func GenerateKey() (*ecdsa.PrivateKey, error) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), randReader)
	if err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}
	return key, nil
}

// generateEphemeral creates the one-shot ECDH pair used by a single
// Encrypt call. The private half never leaves the call stack.
func generateEphemeral() (*ecdh.PrivateKey, error) {
	key, err := ecdh.P256().GenerateKey(randReader)
	if err != nil {
		return nil, fmt.Errorf("generate ephemeral key: %w", err)
	}
	return key, nil
}

// NewEphemeralPublicKey returns the public half of a fresh ephemeral
// pair. Envelopes that carry no encrypted block still embed an
// ephemeral key so the cleartext layout stays uniform.
func NewEphemeralPublicKey() (*ecdh.PublicKey, error) {
	key, err := generateEphemeral()
	if err != nil {
		return nil, err
	}
	return key.PublicKey(), nil
}

// MarshalPublicKeyPEM encodes a public key as a PKIX PEM block. It
// accepts both *ecdsa.PublicKey and *ecdh.PublicKey.
func MarshalPublicKeyPEM(pub crypto.PublicKey) (string, error) {
	der, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	block := &pem.Block{Type: "PUBLIC KEY", Bytes: der}
	return string(pem.EncodeToMemory(block)), nil
}

// ParseECDHPublicKeyPEM decodes a PEM public key and returns it in
// ECDH form on P-256. ECDSA-encoded P-256 keys are bridged via the
// standard library conversion.
func ParseECDHPublicKeyPEM(pemText string) (*ecdh.PublicKey, error) {
	block, _ := pem.Decode([]byte(pemText))
	if block == nil || block.Type != "PUBLIC KEY" {
		return nil, fmt.Errorf("%w: no PUBLIC KEY block", ErrInvalidKey)
	}
	pub, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	switch k := pub.(type) {
	case *ecdh.PublicKey:
		if k.Curve() != ecdh.P256() {
			return nil, fmt.Errorf("%w: not a P-256 key", ErrInvalidKey)
		}
		return k, nil
	case *ecdsa.PublicKey:
		ek, err := k.ECDH()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
		}
		if ek.Curve() != ecdh.P256() {
			return nil, fmt.Errorf("%w: not a P-256 key", ErrInvalidKey)
		}
		return ek, nil
	}
	return nil, fmt.Errorf("%w: unexpected key type %T", ErrInvalidKey, pub)
}
