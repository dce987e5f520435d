package obb

import (
	"fmt"
	"regexp"
	"time"
)

// FormatVersion is the metadata-level format version string.
const FormatVersion = "1.0"

var vendorIDPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9\-]*$`)

// Metadata is the public, unencrypted summary of an envelope. It is
// readable by anyone without keys and never contains raw geometric
// fields.
type Metadata struct {
	// Version is the metadata format version.
	Version string `json:"version"`
	// VendorID is the unique vendor identifier (3-50 chars,
	// lowercase alphanumeric plus hyphen).
	VendorID string `json:"vendor_id"`
	// Name is the component or product name.
	Name string `json:"name"`
	// EFLmm is the effective focal length in mm (Inf for afocal).
	EFLmm Float `json:"efl_mm"`
	// BFLmm is the back focal length in mm.
	BFLmm Float `json:"bfl_mm"`
	// NA is the numerical aperture.
	NA float64 `json:"na"`
	// DiameterMm is the maximum clear aperture in mm.
	DiameterMm float64 `json:"diameter_mm"`
	// SpectralRangeNm is the (min, max) design wavelength in nm.
	SpectralRangeNm [2]float64 `json:"spectral_range_nm"`
	// NumSurfaces is the number of optical surfaces.
	NumSurfaces int `json:"num_surfaces"`
	// CreatedAt is the UTC creation timestamp, set at write time.
	CreatedAt *time.Time `json:"created_at,omitempty"`
	// Signature is the vendor's text-encoded ECDSA signature. It is
	// filled by the writer after signing; inside the signed cleartext
	// bytes it is always empty.
	Signature string `json:"signature"`
	// Description optionally describes the component.
	Description string `json:"description,omitempty"`
	// PartNumber is the vendor's part number, if any.
	PartNumber string `json:"part_number,omitempty"`
}

// Validate checks all metadata field constraints.
func (m *Metadata) Validate() error {
	if l := len(m.VendorID); l < 3 || l > 50 {
		return fmt.Errorf("%w: vendor id must be 3-50 characters", ErrInvalidMetadata)
	}
	if !vendorIDPattern.MatchString(m.VendorID) {
		return fmt.Errorf("%w: vendor id %q must be lowercase alphanumeric", ErrInvalidMetadata, m.VendorID)
	}
	if l := len(m.Name); l < 1 || l > 100 {
		return fmt.Errorf("%w: name must be 1-100 characters", ErrInvalidMetadata)
	}
	if m.NA < 0 || m.NA > 1.5 {
		return fmt.Errorf("%w: numerical aperture %g out of range", ErrInvalidMetadata, m.NA)
	}
	if m.DiameterMm <= 0 {
		return fmt.Errorf("%w: diameter must be positive", ErrInvalidMetadata)
	}
	if m.SpectralRangeNm[0] > m.SpectralRangeNm[1] {
		return fmt.Errorf("%w: spectral range minimum exceeds maximum", ErrInvalidMetadata)
	}
	if m.NumSurfaces < 1 {
		return fmt.Errorf("%w: at least one surface required", ErrInvalidMetadata)
	}
	if len(m.Description) > 500 {
		return fmt.Errorf("%w: description exceeds 500 characters", ErrInvalidMetadata)
	}
	if len(m.PartNumber) > 50 {
		return fmt.Errorf("%w: part number exceeds 50 characters", ErrInvalidMetadata)
	}
	return nil
}

// HasSignature reports whether a signature is present.
func (m *Metadata) HasSignature() bool {
	return m.Signature != ""
}

// SpectralRangeString formats the spectral range for display.
func (m *Metadata) SpectralRangeString() string {
	return fmt.Sprintf("%.0f-%.0f nm", m.SpectralRangeNm[0], m.SpectralRangeNm[1])
}
