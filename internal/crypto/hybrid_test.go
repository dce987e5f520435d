package crypto

import (
	"bytes"
	"errors"
	"testing"
)

func TestEncryptDecrypt_RoundTrip(t *testing.T) {
	recipient, err := GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey() error = %v", err)
	}

	plaintext := []byte(`{"surfaces":[{"surface_number":1,"radius":25.84}]}`)

	block, ephemeral, err := Encrypt(plaintext, &recipient.PublicKey)
	if err != nil {
		t.Fatalf("Encrypt() error = %v", err)
	}

	if len(block.Nonce) != NonceSize {
		t.Errorf("nonce size = %d, want %d", len(block.Nonce), NonceSize)
	}
	if len(block.Ciphertext) != len(plaintext)+TagSize {
		t.Errorf("ciphertext size = %d, want %d", len(block.Ciphertext), len(plaintext)+TagSize)
	}

	got, err := Decrypt(block, ephemeral, recipient)
	if err != nil {
		t.Fatalf("Decrypt() error = %v", err)
	}
	if !bytes.Equal(got, plaintext) {
		t.Errorf("Decrypt() = %q, want %q", got, plaintext)
	}
}

func TestEncrypt_FreshEphemeralPerCall(t *testing.T) {
	recipient, err := GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey() error = %v", err)
	}

	plaintext := []byte("same plaintext")

	b1, e1, err := Encrypt(plaintext, &recipient.PublicKey)
	if err != nil {
		t.Fatalf("Encrypt() error = %v", err)
	}
	b2, e2, err := Encrypt(plaintext, &recipient.PublicKey)
	if err != nil {
		t.Fatalf("Encrypt() error = %v", err)
	}

	if e1.Equal(e2) {
		t.Error("two Encrypt calls reused the ephemeral key")
	}
	if bytes.Equal(b1.Nonce, b2.Nonce) {
		t.Error("two Encrypt calls reused the nonce")
	}
	if bytes.Equal(b1.Ciphertext, b2.Ciphertext) {
		t.Error("two Encrypt calls produced identical ciphertext")
	}

	// Both still decrypt to the same plaintext.
	p1, err := Decrypt(b1, e1, recipient)
	if err != nil {
		t.Fatalf("Decrypt(b1) error = %v", err)
	}
	p2, err := Decrypt(b2, e2, recipient)
	if err != nil {
		t.Fatalf("Decrypt(b2) error = %v", err)
	}
	if !bytes.Equal(p1, plaintext) || !bytes.Equal(p2, plaintext) {
		t.Error("non-deterministic envelopes decrypted to different plaintext")
	}
}

func TestDecrypt_TamperedCiphertext(t *testing.T) {
	recipient, err := GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey() error = %v", err)
	}

	block, ephemeral, err := Encrypt([]byte("proprietary geometry"), &recipient.PublicKey)
	if err != nil {
		t.Fatalf("Encrypt() error = %v", err)
	}

	// Flip one bit in every position of the ciphertext+tag in turn.
	for i := range block.Ciphertext {
		tampered := &EncryptedBlock{
			Nonce:      block.Nonce,
			Ciphertext: append([]byte(nil), block.Ciphertext...),
		}
		tampered.Ciphertext[i] ^= 0x01

		if _, err := Decrypt(tampered, ephemeral, recipient); !errors.Is(err, ErrDecryptionFailed) {
			t.Fatalf("Decrypt(tampered byte %d) error = %v, want ErrDecryptionFailed", i, err)
		}
	}
}

func TestDecrypt_WrongKey(t *testing.T) {
	recipient, err := GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey() error = %v", err)
	}
	other, err := GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey() error = %v", err)
	}

	block, ephemeral, err := Encrypt([]byte("secret"), &recipient.PublicKey)
	if err != nil {
		t.Fatalf("Encrypt() error = %v", err)
	}

	_, err = Decrypt(block, ephemeral, other)
	if !errors.Is(err, ErrDecryptionFailed) {
		t.Errorf("Decrypt(wrong key) error = %v, want ErrDecryptionFailed", err)
	}
}

func TestParseBlock(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		wantErr bool
	}{
		{"empty", nil, true},
		{"short", make([]byte, MinBlockSize-1), true},
		{"minimum", make([]byte, MinBlockSize), false},
		{"typical", make([]byte, MinBlockSize+100), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			block, err := ParseBlock(tt.data)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidBlock) {
					t.Errorf("ParseBlock() error = %v, want ErrInvalidBlock", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseBlock() error = %v", err)
			}
			if len(block.Nonce) != NonceSize {
				t.Errorf("nonce size = %d, want %d", len(block.Nonce), NonceSize)
			}
			if !bytes.Equal(block.Bytes(), tt.data) {
				t.Error("Bytes() does not round-trip ParseBlock input")
			}
		})
	}
}

func TestDeriveKey_Deterministic(t *testing.T) {
	shared := []byte("0123456789abcdef0123456789abcdef")

	k1, err := deriveKey(shared)
	if err != nil {
		t.Fatalf("deriveKey() error = %v", err)
	}
	k2, err := deriveKey(shared)
	if err != nil {
		t.Fatalf("deriveKey() error = %v", err)
	}

	if len(k1) != AESKeySize {
		t.Errorf("key size = %d, want %d", len(k1), AESKeySize)
	}
	if !bytes.Equal(k1, k2) {
		t.Error("deriveKey is not reproducible for the same secret")
	}
}
