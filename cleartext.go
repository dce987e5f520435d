package obb

import (
	"encoding/json"
	"fmt"
)

// Mode identifies the envelope layout generation.
type Mode string

const (
	// ModeFull is the legacy layout: the whole serialized group is the
	// sole plaintext of one encrypted block.
	ModeFull Mode = "full"
	// ModeSelective stores public surfaces in clear, encrypted
	// surfaces in one combined block, and redacted surfaces as bare
	// indices.
	ModeSelective Mode = "selective"
)

// planEntry records the declared visibility of one surface index. The
// full plan is part of the signed cleartext, so relabeling a surface
// invalidates the vendor signature.
type planEntry struct {
	Index      int        `json:"index"`
	Visibility Visibility `json:"visibility"`
}

// cleartext is the JSON structure of the unencrypted envelope section.
// Field order is fixed by this struct definition and encoding/json
// sorts map keys, so marshaling a parsed cleartext reproduces the
// exact bytes the writer signed.
type cleartext struct {
	Metadata        Metadata    `json:"metadata"`
	VisibilityPlan  []planEntry `json:"visibility_plan,omitempty"`
	PublicSurfaces  []Surface   `json:"public_surfaces,omitempty"`
	RedactedIndices []int       `json:"redacted_indices,omitempty"`

	// Group-level design attributes, carried in clear for selective
	// envelopes so the group can be reassembled without decryption of
	// the remaining surfaces. Full-mode envelopes keep them inside the
	// encrypted group and leave these empty.
	WavelengthsNm          []float64 `json:"wavelengths_nm,omitempty"`
	PrimaryWavelengthIndex int       `json:"primary_wavelength_index,omitempty"`
	StopSurface            *int      `json:"stop_surface,omitempty"`
	FieldType              FieldType `json:"field_type,omitempty"`
	MaxField               float64   `json:"max_field,omitempty"`

	// EphemeralPublicKey is the PEM text of the per-envelope ECDH key.
	EphemeralPublicKey string `json:"ephemeral_public_key"`
	// Signature is the vendor's text-encoded ECDSA signature. It is
	// empty inside the signed bytes.
	Signature string `json:"signature"`
}

// encryptedPayload is the plaintext of the combined encrypted block in
// selective mode.
type encryptedPayload struct {
	Surfaces []Surface `json:"surfaces"`
}

// signingBytes computes the exact byte string the vendor signs: the
// canonical cleartext bytes with the signature fields blanked,
// concatenated with the raw encrypted-block payload. The signature
// thereby binds both the ciphertext and the visibility arrangement.
func (c *cleartext) signingBytes(payload []byte) ([]byte, error) {
	unsigned := *c
	unsigned.Signature = ""
	unsigned.Metadata.Signature = ""

	head, err := json.Marshal(&unsigned)
	if err != nil {
		return nil, fmt.Errorf("marshal cleartext: %w", err)
	}
	return append(head, payload...), nil
}

// mode detects the envelope layout. A file is selective only when the
// visibility plan is non-empty and carries at least one non-public
// tag; anything else reads as the legacy full layout.
func (c *cleartext) mode() Mode {
	for _, e := range c.VisibilityPlan {
		if e.Visibility.orPublic() != VisibilityPublic {
			return ModeSelective
		}
	}
	return ModeFull
}

// validate checks the schema constraints that make a cleartext section
// well-formed, before any cryptographic processing.
func (c *cleartext) validate() error {
	if c.EphemeralPublicKey == "" {
		return fmt.Errorf("%w: missing ephemeral public key", ErrMalformedCleartext)
	}
	if c.Signature == "" {
		return fmt.Errorf("%w: missing signature", ErrMalformedCleartext)
	}
	for _, e := range c.VisibilityPlan {
		if e.Index < 0 {
			return fmt.Errorf("%w: negative index %d in visibility plan", ErrMalformedCleartext, e.Index)
		}
		if !e.Visibility.Valid() {
			return fmt.Errorf("%w: unknown visibility %q in plan", ErrMalformedCleartext, e.Visibility)
		}
	}
	return nil
}
