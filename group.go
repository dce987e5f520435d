package obb

import (
	"fmt"
	"math"
	"sort"
)

// Default design wavelength (helium d-line) in nm.
const defaultWavelengthNm = 587.56

// FieldType selects how field extent is specified.
type FieldType string

const (
	// FieldAngle specifies field in degrees.
	FieldAngle FieldType = "angle"
	// FieldHeight specifies field in mm.
	FieldHeight FieldType = "height"
)

// SurfaceGroup is a complete sequential optical element: its surfaces
// in order plus the global design attributes.
//
// Surface numbers must be unique within a group; their ascending order
// is the canonical order used when a selectively encrypted envelope is
// reassembled.
type SurfaceGroup struct {
	// Surfaces lists the surfaces from object to image.
	Surfaces []Surface `json:"surfaces"`
	// StopSurface is the aperture stop index, if defined.
	StopSurface *int `json:"stop_surface"`
	// WavelengthsNm are the design wavelengths in nanometers.
	WavelengthsNm []float64 `json:"wavelengths_nm"`
	// PrimaryWavelengthIndex indexes into WavelengthsNm.
	PrimaryWavelengthIndex int `json:"primary_wavelength_index"`
	// FieldType is "angle" (degrees) or "height" (mm).
	FieldType FieldType `json:"field_type"`
	// MaxField is the maximum field extent.
	MaxField float64 `json:"max_field"`
}

// NewSurfaceGroup builds a validated group. Missing wavelengths and
// field type receive their defaults; empty visibility tags resolve to
// public. Invalid states are rejected here so they stay
// unrepresentable afterwards.
func NewSurfaceGroup(surfaces []Surface) (*SurfaceGroup, error) {
	g := &SurfaceGroup{
		Surfaces:      surfaces,
		WavelengthsNm: []float64{defaultWavelengthNm},
		FieldType:     FieldAngle,
	}
	if err := g.normalize(); err != nil {
		return nil, err
	}
	return g, nil
}

// normalize applies defaults and validates. Used both by the
// constructor and by the envelope reader on reconstructed groups.
func (g *SurfaceGroup) normalize() error {
	if len(g.WavelengthsNm) == 0 {
		g.WavelengthsNm = []float64{defaultWavelengthNm}
	}
	if g.FieldType == "" {
		g.FieldType = FieldAngle
	}
	for i := range g.Surfaces {
		g.Surfaces[i].Visibility = g.Surfaces[i].Visibility.orPublic()
		if g.Surfaces[i].Type == "" {
			g.Surfaces[i].Type = SurfaceStandard
		}
	}
	return g.Validate()
}

// Validate checks the group invariants.
func (g *SurfaceGroup) Validate() error {
	if len(g.Surfaces) == 0 {
		return ErrEmptyGroup
	}
	seen := make(map[int]bool, len(g.Surfaces))
	for i := range g.Surfaces {
		s := &g.Surfaces[i]
		if err := s.Validate(); err != nil {
			return err
		}
		if seen[s.SurfaceNumber] {
			return fmt.Errorf("%w: duplicate surface number %d", ErrIndexIntegrity, s.SurfaceNumber)
		}
		seen[s.SurfaceNumber] = true
	}
	if g.PrimaryWavelengthIndex < 0 || g.PrimaryWavelengthIndex >= len(g.WavelengthsNm) {
		return fmt.Errorf("%w: primary wavelength index %d out of range", ErrInvalidMetadata, g.PrimaryWavelengthIndex)
	}
	if g.FieldType != FieldAngle && g.FieldType != FieldHeight {
		return fmt.Errorf("%w: unknown field type %q", ErrInvalidMetadata, g.FieldType)
	}
	if g.MaxField < 0 {
		return fmt.Errorf("%w: negative max field %g", ErrInvalidMetadata, g.MaxField)
	}
	if g.StopSurface != nil && *g.StopSurface < 0 {
		return fmt.Errorf("%w: negative stop surface index %d", ErrInvalidMetadata, *g.StopSurface)
	}
	return nil
}

// NumSurfaces returns the number of surfaces in the group.
func (g *SurfaceGroup) NumSurfaces() int {
	return len(g.Surfaces)
}

// PrimaryWavelength returns the primary design wavelength in nm.
func (g *SurfaceGroup) PrimaryWavelength() float64 {
	if g.PrimaryWavelengthIndex < len(g.WavelengthsNm) {
		return g.WavelengthsNm[g.PrimaryWavelengthIndex]
	}
	return g.WavelengthsNm[0]
}

// MaxDiameter returns the largest clear aperture across all surfaces.
func (g *SurfaceGroup) MaxDiameter() float64 {
	var max float64
	for i := range g.Surfaces {
		if d := g.Surfaces[i].Diameter(); d > max {
			max = d
		}
	}
	return max
}

// SpectralRange returns the (min, max) design wavelength in nm.
func (g *SurfaceGroup) SpectralRange() (float64, float64) {
	min, max := g.WavelengthsNm[0], g.WavelengthsNm[0]
	for _, w := range g.WavelengthsNm[1:] {
		if w < min {
			min = w
		}
		if w > max {
			max = w
		}
	}
	return min, max
}

// TotalLength returns the axial length: the sum of all finite
// thicknesses except the last surface's.
func (g *SurfaceGroup) TotalLength() float64 {
	if len(g.Surfaces) <= 1 {
		return 0
	}
	var sum float64
	for i := range g.Surfaces[:len(g.Surfaces)-1] {
		t := float64(g.Surfaces[i].Thickness)
		if !math.IsInf(t, 0) {
			sum += t
		}
	}
	return sum
}

// HasSelectiveVisibility reports whether any surface carries a
// non-public tag. It decides whether the writer emits a selective or a
// legacy full envelope.
func (g *SurfaceGroup) HasSelectiveVisibility() bool {
	for i := range g.Surfaces {
		if g.Surfaces[i].Visibility.orPublic() != VisibilityPublic {
			return true
		}
	}
	return false
}

// sortSurfaces orders surfaces by ascending surface number.
func sortSurfaces(surfaces []Surface) {
	sort.Slice(surfaces, func(i, j int) bool {
		return surfaces[i].SurfaceNumber < surfaces[j].SurfaceNumber
	})
}
