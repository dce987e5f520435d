package obb

import (
	"crypto/ecdh"
	"crypto/ecdsa"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/opticalblackbox/obb-go/internal/crypto"
	"github.com/opticalblackbox/obb-go/internal/envelope"
)

// Write assembles a signed envelope and writes it to w.
//
// The mode is selected by the group's visibility tags: if every
// surface is public the legacy full layout is emitted (the whole group
// as one encrypted block); any non-public tag switches to the
// selective layout. The vendor's private key signs, the platform's
// public key is the encryption recipient.
//
// The returned metadata is the copy actually embedded in the envelope,
// with created_at, num_surfaces and the signature filled in. The
// caller's group and metadata are not modified.
func Write(w io.Writer, group *SurfaceGroup, meta Metadata, vendorKey *ecdsa.PrivateKey, platformKey *ecdsa.PublicKey) (*Metadata, error) {
	if group == nil {
		return nil, ErrEmptyGroup
	}
	g := cloneGroup(group)
	if err := g.normalize(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	meta.CreatedAt = &now
	meta.NumSurfaces = g.NumSurfaces()
	if meta.Version == "" {
		meta.Version = FormatVersion
	}
	meta.Signature = ""
	if err := meta.Validate(); err != nil {
		return nil, err
	}

	var (
		ct      cleartext
		payload []byte
		err     error
	)
	if g.HasSelectiveVisibility() {
		ct, payload, err = buildSelective(g, meta, platformKey)
	} else {
		ct, payload, err = buildFull(g, meta, platformKey)
	}
	if err != nil {
		return nil, err
	}

	signing, err := ct.signingBytes(payload)
	if err != nil {
		return nil, err
	}
	sig, err := crypto.Sign(signing, vendorKey)
	if err != nil {
		return nil, err
	}
	ct.Signature = sig
	ct.Metadata.Signature = ""

	head, err := json.Marshal(&ct)
	if err != nil {
		return nil, fmt.Errorf("marshal cleartext: %w", err)
	}

	frame := &envelope.Frame{
		Version:   envelope.Version,
		Cleartext: head,
		Payload:   payload,
	}
	if err := frame.Encode(w); err != nil {
		return nil, err
	}

	out := ct.Metadata
	out.Signature = sig
	return &out, nil
}

// WriteFile writes an envelope to path. The bytes are fully assembled
// in memory first; concurrent writers targeting the same path need
// external mutual exclusion.
func WriteFile(path string, group *SurfaceGroup, meta Metadata, vendorKey *ecdsa.PrivateKey, platformKey *ecdsa.PublicKey) (*Metadata, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", path, err)
	}
	out, err := Write(f, group, meta, vendorKey, platformKey)
	if cerr := f.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("close %s: %w", path, cerr)
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

// buildFull produces the legacy layout: empty plan, whole group
// serialized and sealed as the single encrypted block.
func buildFull(g *SurfaceGroup, meta Metadata, platformKey *ecdsa.PublicKey) (cleartext, []byte, error) {
	plaintext, err := json.Marshal(g)
	if err != nil {
		return cleartext{}, nil, fmt.Errorf("marshal group: %w", err)
	}

	block, ephemeral, err := crypto.Encrypt(plaintext, platformKey)
	if err != nil {
		return cleartext{}, nil, err
	}

	ct, err := newCleartext(meta, ephemeral)
	if err != nil {
		return cleartext{}, nil, err
	}
	return ct, block.Bytes(), nil
}

// buildSelective partitions the group, seals the encrypted surfaces as
// one combined block, and lays public surfaces and redacted indices
// into the cleartext alongside the signed visibility plan.
func buildSelective(g *SurfaceGroup, meta Metadata, platformKey *ecdsa.PublicKey) (cleartext, []byte, error) {
	public, encrypted, redacted := partitionGroup(g)

	var (
		payload   []byte
		ephemeral *ecdh.PublicKey
		err       error
	)
	if len(encrypted) > 0 {
		var plaintext []byte
		plaintext, err = json.Marshal(&encryptedPayload{Surfaces: encrypted})
		if err != nil {
			return cleartext{}, nil, fmt.Errorf("marshal encrypted surfaces: %w", err)
		}
		var block *crypto.EncryptedBlock
		block, ephemeral, err = crypto.Encrypt(plaintext, platformKey)
		if err != nil {
			return cleartext{}, nil, err
		}
		payload = block.Bytes()
	} else {
		// Nothing to seal, but the layout still carries an ephemeral key.
		ephemeral, err = crypto.NewEphemeralPublicKey()
		if err != nil {
			return cleartext{}, nil, err
		}
	}

	ct, err := newCleartext(meta, ephemeral)
	if err != nil {
		return cleartext{}, nil, err
	}
	ct.VisibilityPlan = visibilityPlan(g)
	ct.PublicSurfaces = public
	ct.RedactedIndices = redacted
	ct.WavelengthsNm = g.WavelengthsNm
	ct.PrimaryWavelengthIndex = g.PrimaryWavelengthIndex
	ct.StopSurface = g.StopSurface
	ct.FieldType = g.FieldType
	ct.MaxField = g.MaxField
	return ct, payload, nil
}

func newCleartext(meta Metadata, ephemeral *ecdh.PublicKey) (cleartext, error) {
	pemText, err := crypto.MarshalPublicKeyPEM(ephemeral)
	if err != nil {
		return cleartext{}, fmt.Errorf("%w: %v", ErrKeyFormat, err)
	}
	meta.Signature = ""
	return cleartext{Metadata: meta, EphemeralPublicKey: pemText}, nil
}

// cloneGroup copies the group and its surface slice so normalization
// never mutates the caller's value.
func cloneGroup(g *SurfaceGroup) *SurfaceGroup {
	out := *g
	out.Surfaces = append([]Surface(nil), g.Surfaces...)
	out.WavelengthsNm = append([]float64(nil), g.WavelengthsNm...)
	return &out
}
