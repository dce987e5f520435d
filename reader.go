package obb

import (
	"crypto/ecdh"
	"crypto/ecdsa"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/opticalblackbox/obb-go/internal/crypto"
	"github.com/opticalblackbox/obb-go/internal/envelope"
)

// FileInfo is everything an envelope reveals without keys: the public
// metadata plus the visibility arrangement.
type FileInfo struct {
	// Metadata is the public metadata, signature included.
	Metadata Metadata `json:"metadata"`
	// Mode is the detected envelope layout.
	Mode Mode `json:"mode"`
	// PublicSurfaces, EncryptedSurfaces and RedactedSurfaces count the
	// visibility plan entries per tag. All three are zero for
	// full-mode envelopes, which disclose no per-surface structure.
	PublicSurfaces    int `json:"public_surfaces"`
	EncryptedSurfaces int `json:"encrypted_surfaces"`
	RedactedSurfaces  int `json:"redacted_surfaces"`
	// Ciphersuite names the algorithm suite protecting the envelope,
	// fixed by the format version.
	Ciphersuite string `json:"ciphersuite"`
}

// ReadMetadata reads only the public metadata and visibility summary.
// No signature verification and no decryption takes place; the result
// is untrusted until the envelope is read with Read.
func ReadMetadata(r io.Reader) (*FileInfo, error) {
	_, ct, err := decodeEnvelope(r)
	if err != nil {
		return nil, err
	}
	return fileInfo(ct), nil
}

// ReadMetadataFile is ReadMetadata on a file path.
func ReadMetadataFile(path string) (*FileInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadMetadata(f)
}

// Read verifies and decrypts a complete envelope.
//
// The vendor signature is verified over the canonical cleartext bytes
// and the raw encrypted payload before any decryption is attempted; a
// forged envelope never reaches the cipher. Only after verification
// does decryption, reassembly and invariant validation run. Any
// failure is terminal: no partial group is ever returned.
func Read(r io.Reader, platformKey *ecdsa.PrivateKey, vendorKey *ecdsa.PublicKey) (*Metadata, *SurfaceGroup, error) {
	frame, ct, err := decodeEnvelope(r)
	if err != nil {
		return nil, nil, err
	}

	signing, err := ct.signingBytes(frame.Payload)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrMalformedCleartext, err)
	}
	if err := crypto.VerifySignature(signing, ct.Signature, vendorKey); err != nil {
		return nil, nil, ErrInvalidSignature
	}

	ephemeral, err := crypto.ParseECDHPublicKeyPEM(ct.EphemeralPublicKey)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: ephemeral public key", ErrMalformedCleartext)
	}

	var group *SurfaceGroup
	switch ct.mode() {
	case ModeSelective:
		group, err = readSelective(ct, frame.Payload, ephemeral, platformKey)
	default:
		group, err = readFull(ct, frame.Payload, ephemeral, platformKey)
	}
	if err != nil {
		return nil, nil, err
	}

	meta := ct.Metadata
	meta.Signature = ct.Signature
	return &meta, group, nil
}

// ReadFile is Read on a file path.
func ReadFile(path string, platformKey *ecdsa.PrivateKey, vendorKey *ecdsa.PublicKey) (*Metadata, *SurfaceGroup, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Read(f, platformKey, vendorKey)
}

// IsOBBFile reports whether the file starts with the OBB magic bytes.
func IsOBBFile(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()
	var magic [4]byte
	if _, err := io.ReadFull(f, magic[:]); err != nil {
		return false
	}
	return magic == envelope.Magic
}

// decodeEnvelope parses the frame and the cleartext section, mapping
// codec errors onto the public taxonomy.
func decodeEnvelope(r io.Reader) (*envelope.Frame, *cleartext, error) {
	frame, err := envelope.Decode(r)
	if err != nil {
		switch {
		case errors.Is(err, envelope.ErrInvalidMagic):
			return nil, nil, ErrInvalidMagic
		case errors.Is(err, envelope.ErrUnsupportedVersion):
			return nil, nil, fmt.Errorf("%w: %v", ErrUnsupportedVersion, err)
		case errors.Is(err, envelope.ErrTruncated):
			return nil, nil, fmt.Errorf("%w: %v", ErrTruncatedPayload, err)
		}
		return nil, nil, err
	}

	var ct cleartext
	if err := json.Unmarshal(frame.Cleartext, &ct); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrMalformedCleartext, err)
	}
	if err := ct.validate(); err != nil {
		return nil, nil, err
	}
	return frame, &ct, nil
}

// readFull decrypts a legacy envelope: one block whose plaintext is
// the entire serialized group.
func readFull(ct *cleartext, payload []byte, ephemeral *ecdh.PublicKey, platformKey *ecdsa.PrivateKey) (*SurfaceGroup, error) {
	block, err := crypto.ParseBlock(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: encrypted block", ErrTruncatedPayload)
	}

	plaintext, err := crypto.Decrypt(block, ephemeral, platformKey)
	if err != nil {
		return nil, ErrAuthenticationFailed
	}

	var group SurfaceGroup
	if err := json.Unmarshal(plaintext, &group); err != nil {
		return nil, fmt.Errorf("%w: decrypted group", ErrMalformedCleartext)
	}
	if err := group.normalize(); err != nil {
		return nil, err
	}
	return &group, nil
}

// readSelective decrypts the combined block (if any surfaces were
// encrypted) and reassembles the group against the signed plan.
func readSelective(ct *cleartext, payload []byte, ephemeral *ecdh.PublicKey, platformKey *ecdsa.PrivateKey) (*SurfaceGroup, error) {
	var decrypted []Surface

	needsBlock := false
	for _, e := range ct.VisibilityPlan {
		if e.Visibility.orPublic() == VisibilityEncrypted {
			needsBlock = true
			break
		}
	}

	if needsBlock {
		block, err := crypto.ParseBlock(payload)
		if err != nil {
			return nil, fmt.Errorf("%w: encrypted block", ErrTruncatedPayload)
		}
		plaintext, err := crypto.Decrypt(block, ephemeral, platformKey)
		if err != nil {
			return nil, ErrAuthenticationFailed
		}
		var inner encryptedPayload
		if err := json.Unmarshal(plaintext, &inner); err != nil {
			return nil, fmt.Errorf("%w: decrypted surfaces", ErrMalformedCleartext)
		}
		decrypted = inner.Surfaces
	}

	return mergeGroup(ct, ct.PublicSurfaces, decrypted, ct.RedactedIndices)
}

func fileInfo(ct *cleartext) *FileInfo {
	info := &FileInfo{Mode: ct.mode(), Ciphersuite: crypto.Ciphersuite}
	info.Metadata = ct.Metadata
	info.Metadata.Signature = ct.Signature
	if info.Mode == ModeSelective {
		for _, e := range ct.VisibilityPlan {
			switch e.Visibility.orPublic() {
			case VisibilityEncrypted:
				info.EncryptedSurfaces++
			case VisibilityRedacted:
				info.RedactedSurfaces++
			default:
				info.PublicSurfaces++
			}
		}
	}
	return info
}
