package optics

import (
	"math"

	"github.com/opticalblackbox/obb-go"
)

// Option customizes metadata extraction.
type Option func(*obb.Metadata)

// WithDescription sets the component description.
func WithDescription(description string) Option {
	return func(m *obb.Metadata) {
		m.Description = description
	}
}

// WithPartNumber sets the vendor part number.
func WithPartNumber(partNumber string) Option {
	return func(m *obb.Metadata) {
		m.PartNumber = partNumber
	}
}

// ExtractMetadata derives the public metadata of a group: the paraxial
// properties at the primary wavelength plus the structural summary.
// The created_at timestamp and the signature are left empty; the
// envelope writer fills them.
func ExtractMetadata(g *obb.SurfaceGroup, vendorID, name string, opts ...Option) (obb.Metadata, error) {
	if g == nil || len(g.Surfaces) == 0 {
		return obb.Metadata{}, obb.ErrEmptyGroup
	}

	props := Compute(g, g.PrimaryWavelength())
	min, max := g.SpectralRange()

	meta := obb.Metadata{
		Version:         obb.FormatVersion,
		VendorID:        vendorID,
		Name:            name,
		EFLmm:           obb.Float(props.EFLmm),
		BFLmm:           obb.Float(props.BFLmm),
		NA:              props.NA,
		DiameterMm:      roundTo(g.MaxDiameter(), 2),
		SpectralRangeNm: [2]float64{min, max},
		NumSurfaces:     g.NumSurfaces(),
	}
	for _, opt := range opts {
		opt(&meta)
	}

	if err := meta.Validate(); err != nil {
		return obb.Metadata{}, err
	}
	return meta, nil
}

// Afocal reports whether the group has no focusing power at its
// primary wavelength.
func Afocal(g *obb.SurfaceGroup) bool {
	return math.IsInf(Calculator{}.EFL(g, g.PrimaryWavelength()), 0)
}
