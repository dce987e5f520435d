// Package keys manages the ECDSA P-256 key pairs used to sign and
// decrypt envelopes. Keys persist as PEM files: public keys in PKIX
// form, private keys in PKCS#8 form, optionally encrypted with a
// password (scrypt key derivation plus AES-256-GCM).
package keys

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"fmt"
	"os"

	"golang.org/x/crypto/scrypt"

	"github.com/opticalblackbox/obb-go"
)

const (
	privateKeyPEMType          = "PRIVATE KEY"
	encryptedPrivateKeyPEMType = "OBB ENCRYPTED PRIVATE KEY"
	publicKeyPEMType           = "PUBLIC KEY"

	scryptN       = 1 << 15
	scryptR       = 8
	scryptP       = 1
	scryptSaltLen = 16
)

// Generate creates a new P-256 key pair. The same pair serves both
// roles: ECDSA signing and ECDH key agreement.
func Generate() (*ecdsa.PrivateKey, error) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generating key: %w", err)
	}
	return key, nil
}

// EncodePrivateKey serializes a private key to PEM. With an empty
// password the PKCS#8 DER goes into the block as is; otherwise the DER
// is sealed with AES-256-GCM under a key scrypt-derived from the
// password, and the salt and nonce ride along as PEM headers.
func EncodePrivateKey(key *ecdsa.PrivateKey, password string) ([]byte, error) {
	der, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", obb.ErrKeyFormat, err)
	}

	if password == "" {
		return pem.EncodeToMemory(&pem.Block{Type: privateKeyPEMType, Bytes: der}), nil
	}

	salt := make([]byte, scryptSaltLen)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("reading salt: %w", err)
	}
	aead, err := passwordAEAD(password, salt)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("reading nonce: %w", err)
	}

	block := &pem.Block{
		Type: encryptedPrivateKeyPEMType,
		Headers: map[string]string{
			"KDF":   fmt.Sprintf("scrypt-%d-%d-%d", scryptN, scryptR, scryptP),
			"Salt":  base64.StdEncoding.EncodeToString(salt),
			"Nonce": base64.StdEncoding.EncodeToString(nonce),
		},
		Bytes: aead.Seal(nil, nonce, der, nil),
	}
	return pem.EncodeToMemory(block), nil
}

// DecodePrivateKey parses a PEM-encoded private key, decrypting it
// with the password when the block is protected. A wrong password and
// a corrupt file are indistinguishable; both report ErrKeyFormat.
func DecodePrivateKey(pemBytes []byte, password string) (*ecdsa.PrivateKey, error) {
	block, _ := pem.Decode(pemBytes)
	if block == nil {
		return nil, fmt.Errorf("%w: no PEM block found", obb.ErrKeyFormat)
	}

	der := block.Bytes
	switch block.Type {
	case privateKeyPEMType:
	case encryptedPrivateKeyPEMType:
		if password == "" {
			return nil, fmt.Errorf("%w: key is password protected", obb.ErrKeyFormat)
		}
		plain, err := openEncryptedBlock(block, password)
		if err != nil {
			return nil, err
		}
		der = plain
	default:
		return nil, fmt.Errorf("%w: unexpected PEM type %q", obb.ErrKeyFormat, block.Type)
	}

	parsed, err := x509.ParsePKCS8PrivateKey(der)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", obb.ErrKeyFormat, err)
	}
	key, ok := parsed.(*ecdsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("%w: not an ECDSA key", obb.ErrKeyFormat)
	}
	if key.Curve != elliptic.P256() {
		return nil, fmt.Errorf("%w: curve must be P-256, got %s", obb.ErrKeyFormat, key.Curve.Params().Name)
	}
	return key, nil
}

func openEncryptedBlock(block *pem.Block, password string) ([]byte, error) {
	salt, err := base64.StdEncoding.DecodeString(block.Headers["Salt"])
	if err != nil || len(salt) == 0 {
		return nil, fmt.Errorf("%w: missing salt header", obb.ErrKeyFormat)
	}
	nonce, err := base64.StdEncoding.DecodeString(block.Headers["Nonce"])
	if err != nil {
		return nil, fmt.Errorf("%w: missing nonce header", obb.ErrKeyFormat)
	}
	aead, err := passwordAEAD(password, salt)
	if err != nil {
		return nil, err
	}
	if len(nonce) != aead.NonceSize() {
		return nil, fmt.Errorf("%w: bad nonce length %d", obb.ErrKeyFormat, len(nonce))
	}
	plain, err := aead.Open(nil, nonce, block.Bytes, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: wrong password or corrupt key file", obb.ErrKeyFormat)
	}
	return plain, nil
}

func passwordAEAD(password string, salt []byte) (cipher.AEAD, error) {
	key, err := scrypt.Key([]byte(password), salt, scryptN, scryptR, scryptP, 32)
	if err != nil {
		return nil, fmt.Errorf("deriving key: %w", err)
	}
	c, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(c)
}

// EncodePublicKey serializes a public key as a PKIX PEM block.
func EncodePublicKey(key *ecdsa.PublicKey) ([]byte, error) {
	der, err := x509.MarshalPKIXPublicKey(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", obb.ErrKeyFormat, err)
	}
	return pem.EncodeToMemory(&pem.Block{Type: publicKeyPEMType, Bytes: der}), nil
}

// DecodePublicKey parses a PKIX PEM public key on curve P-256.
func DecodePublicKey(pemBytes []byte) (*ecdsa.PublicKey, error) {
	block, _ := pem.Decode(pemBytes)
	if block == nil {
		return nil, fmt.Errorf("%w: no PEM block found", obb.ErrKeyFormat)
	}
	if block.Type != publicKeyPEMType {
		return nil, fmt.Errorf("%w: unexpected PEM type %q", obb.ErrKeyFormat, block.Type)
	}
	parsed, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", obb.ErrKeyFormat, err)
	}
	key, ok := parsed.(*ecdsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("%w: not an ECDSA key", obb.ErrKeyFormat)
	}
	if key.Curve != elliptic.P256() {
		return nil, fmt.Errorf("%w: curve must be P-256, got %s", obb.ErrKeyFormat, key.Curve.Params().Name)
	}
	return key, nil
}

// SavePrivateKey writes a PEM private key readable only by the owner.
func SavePrivateKey(path string, key *ecdsa.PrivateKey, password string) error {
	pemBytes, err := EncodePrivateKey(key, password)
	if err != nil {
		return err
	}
	return os.WriteFile(path, pemBytes, 0o600)
}

// LoadPrivateKey reads a PEM private key file. Pass the empty string
// for unprotected keys.
func LoadPrivateKey(path, password string) (*ecdsa.PrivateKey, error) {
	pemBytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading key file: %w", err)
	}
	return DecodePrivateKey(pemBytes, password)
}

// SavePublicKey writes a PKIX PEM public key file.
func SavePublicKey(path string, key *ecdsa.PublicKey) error {
	pemBytes, err := EncodePublicKey(key)
	if err != nil {
		return err
	}
	return os.WriteFile(path, pemBytes, 0o644)
}

// LoadPublicKey reads a PKIX PEM public key file.
func LoadPublicKey(path string) (*ecdsa.PublicKey, error) {
	pemBytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading key file: %w", err)
	}
	return DecodePublicKey(pemBytes)
}
