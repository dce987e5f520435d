package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/ecdh"
	"crypto/ecdsa"
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

// EncryptedBlock is one AEAD unit inside an envelope payload. On the
// wire it is nonce (12B) || ciphertext || tag (16B); Ciphertext here
// already carries the trailing tag, matching cipher.AEAD output.
type EncryptedBlock struct {
	Nonce      []byte
	Ciphertext []byte
}

// Bytes returns the wire form nonce || ciphertext || tag.
func (b *EncryptedBlock) Bytes() []byte {
	out := make([]byte, 0, len(b.Nonce)+len(b.Ciphertext))
	out = append(out, b.Nonce...)
	return append(out, b.Ciphertext...)
}

// ParseBlock splits wire bytes into an EncryptedBlock.
func ParseBlock(data []byte) (*EncryptedBlock, error) {
	if len(data) < MinBlockSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrInvalidBlock, len(data))
	}
	return &EncryptedBlock{
		Nonce:      data[:NonceSize],
		Ciphertext: data[NonceSize:],
	}, nil
}

// Encrypt seals plaintext to the recipient's public key.
//
// A fresh ephemeral P-256 pair is generated for this call only; its
// private half is discarded on return, so compromise of one envelope's
// secrets does not expose any other envelope. The returned ephemeral
// public key must be embedded in the envelope cleartext so the
// recipient can reconstruct the shared secret.
func Encrypt(plaintext []byte, recipient *ecdsa.PublicKey) (*EncryptedBlock, *ecdh.PublicKey, error) {
	recipientECDH, err := recipient.ECDH()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}

	ephemeral, err := generateEphemeral()
	if err != nil {
		return nil, nil, err
	}

	shared, err := ephemeral.ECDH(recipientECDH)
	if err != nil {
		return nil, nil, fmt.Errorf("key agreement: %w", err)
	}

	key, err := deriveKey(shared)
	if err != nil {
		return nil, nil, err
	}

	aead, err := newAEAD(key)
	if err != nil {
		return nil, nil, err
	}

	nonce := make([]byte, NonceSize)
	if _, err := io.ReadFull(randReader, nonce); err != nil {
		return nil, nil, fmt.Errorf("generate nonce: %w", err)
	}

	block := &EncryptedBlock{
		Nonce:      nonce,
		Ciphertext: aead.Seal(nil, nonce, plaintext, nil),
	}
	return block, ephemeral.PublicKey(), nil
}

// Decrypt opens a block using the recipient's private key and the
// ephemeral public key from the envelope cleartext.
//
// Any failure surfaces as ErrDecryptionFailed; a wrong key and a
// tampered ciphertext must look identical to the caller.
func Decrypt(block *EncryptedBlock, ephemeral *ecdh.PublicKey, recipient *ecdsa.PrivateKey) ([]byte, error) {
	recipientECDH, err := recipient.ECDH()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}

	shared, err := recipientECDH.ECDH(ephemeral)
	if err != nil {
		return nil, ErrDecryptionFailed
	}

	key, err := deriveKey(shared)
	if err != nil {
		return nil, err
	}

	aead, err := newAEAD(key)
	if err != nil {
		return nil, err
	}

	if len(block.Nonce) != NonceSize {
		return nil, ErrDecryptionFailed
	}
	plaintext, err := aead.Open(nil, block.Nonce, block.Ciphertext, nil)
	if err != nil {
		return nil, ErrDecryptionFailed
	}
	return plaintext, nil
}

// deriveKey expands the ECDH shared secret into the AES-256 key via
// HKDF-SHA-256 with a zero-filled salt and the fixed versioned context
// string. The derivation is reproduced bit-for-bit on both sides.
func deriveKey(shared []byte) ([]byte, error) {
	salt := make([]byte, sha256.Size)
	reader := hkdf.New(sha256.New, shared, salt, []byte(HKDFContext))

	key := make([]byte, AESKeySize)
	if _, err := io.ReadFull(reader, key); err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}
	return key, nil
}

func newAEAD(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create GCM: %w", err)
	}
	return aead, nil
}
