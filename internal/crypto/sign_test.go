package crypto

import (
	"encoding/base64"
	"errors"
	"strings"
	"testing"
)

func TestSignVerify(t *testing.T) {
	vendor, err := GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey() error = %v", err)
	}

	data := []byte("canonical cleartext || encrypted block bytes")

	sig, err := Sign(data, vendor)
	if err != nil {
		t.Fatalf("Sign() error = %v", err)
	}

	// Text form must be standard base64.
	if _, err := base64.StdEncoding.DecodeString(sig); err != nil {
		t.Fatalf("signature is not standard base64: %v", err)
	}

	if !Verify(data, sig, &vendor.PublicKey) {
		t.Error("Verify() = false for a valid signature")
	}
	if err := VerifySignature(data, sig, &vendor.PublicKey); err != nil {
		t.Errorf("VerifySignature() error = %v", err)
	}
}

func TestVerify_AlteredData(t *testing.T) {
	vendor, err := GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey() error = %v", err)
	}

	data := []byte("original bytes")
	sig, err := Sign(data, vendor)
	if err != nil {
		t.Fatalf("Sign() error = %v", err)
	}

	altered := []byte("altered  bytes")
	if Verify(altered, sig, &vendor.PublicKey) {
		t.Error("Verify() = true for altered data")
	}
	if err := VerifySignature(altered, sig, &vendor.PublicKey); !errors.Is(err, ErrSignatureInvalid) {
		t.Errorf("VerifySignature() error = %v, want ErrSignatureInvalid", err)
	}
}

func TestVerify_WrongKey(t *testing.T) {
	vendor, err := GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey() error = %v", err)
	}
	other, err := GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey() error = %v", err)
	}

	data := []byte("signed by vendor")
	sig, err := Sign(data, vendor)
	if err != nil {
		t.Fatalf("Sign() error = %v", err)
	}

	if err := VerifySignature(data, sig, &other.PublicKey); !errors.Is(err, ErrSignatureInvalid) {
		t.Errorf("VerifySignature(wrong key) error = %v, want ErrSignatureInvalid", err)
	}
}

func TestVerify_BadEncoding(t *testing.T) {
	vendor, err := GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey() error = %v", err)
	}

	err = VerifySignature([]byte("data"), "not!!valid//base64===", &vendor.PublicKey)
	if !errors.Is(err, ErrInvalidSignatureEncoding) {
		t.Errorf("VerifySignature(bad encoding) error = %v, want ErrInvalidSignatureEncoding", err)
	}
}

func TestPublicKeyPEM_RoundTrip(t *testing.T) {
	key, err := GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey() error = %v", err)
	}

	pemText, err := MarshalPublicKeyPEM(&key.PublicKey)
	if err != nil {
		t.Fatalf("MarshalPublicKeyPEM() error = %v", err)
	}
	if !strings.HasPrefix(pemText, "-----BEGIN PUBLIC KEY-----") {
		t.Errorf("unexpected PEM header: %q", pemText[:40])
	}

	parsed, err := ParseECDHPublicKeyPEM(pemText)
	if err != nil {
		t.Fatalf("ParseECDHPublicKeyPEM() error = %v", err)
	}

	want, err := key.PublicKey.ECDH()
	if err != nil {
		t.Fatalf("ECDH() error = %v", err)
	}
	if !parsed.Equal(want) {
		t.Error("parsed key does not equal original")
	}
}

func TestParseECDHPublicKeyPEM_Invalid(t *testing.T) {
	tests := []struct {
		name string
		pem  string
	}{
		{"empty", ""},
		{"garbage", "not a pem block"},
		{"wrong block type", "-----BEGIN CERTIFICATE-----\nAAAA\n-----END CERTIFICATE-----\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseECDHPublicKeyPEM(tt.pem); !errors.Is(err, ErrInvalidKey) {
				t.Errorf("ParseECDHPublicKeyPEM() error = %v, want ErrInvalidKey", err)
			}
		})
	}
}
