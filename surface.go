package obb

import (
	"encoding/json"
	"fmt"
	"math"
)

// infinitySentinel stands in for IEEE infinity in JSON, which has no
// infinity literal. Values at or beyond it round-trip as ±1e99.
const infinitySentinel = 1e99

// Float is a float64 whose JSON encoding tolerates IEEE infinities.
// Flat surfaces have infinite radius and object planes may sit at
// infinite distance, so any value at or beyond ±1e99 is written as the
// sentinel ±1e99 and read back as ±Inf. JSON null also reads as +Inf.
type Float float64

// MarshalJSON implements json.Marshaler.
func (f Float) MarshalJSON() ([]byte, error) {
	v := float64(f)
	switch {
	case math.IsInf(v, 1) || v >= infinitySentinel:
		return []byte("1e+99"), nil
	case math.IsInf(v, -1) || v <= -infinitySentinel:
		return []byte("-1e+99"), nil
	case math.IsNaN(v):
		return nil, fmt.Errorf("cannot encode NaN")
	}
	return json.Marshal(v)
}

// UnmarshalJSON implements json.Unmarshaler.
func (f *Float) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = Float(math.Inf(1))
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch {
	case v >= infinitySentinel:
		*f = Float(math.Inf(1))
	case v <= -infinitySentinel:
		*f = Float(math.Inf(-1))
	default:
		*f = Float(v)
	}
	return nil
}

// IsInf reports whether the value is infinite in either direction.
func (f Float) IsInf() bool {
	return math.IsInf(float64(f), 0)
}

// SurfaceType identifies the geometric kind of a surface. The set is
// closed; unknown kinds from external tools map to SurfaceStandard.
type SurfaceType string

// Supported surface kinds.
const (
	// SurfaceStandard is a spherical or conic surface.
	SurfaceStandard SurfaceType = "standard"
	// SurfaceEvenAsphere carries even aspheric terms (A2, A4, A6, ...).
	SurfaceEvenAsphere SurfaceType = "evenasph"
	// SurfaceOddAsphere carries odd aspheric terms (A1, A3, A5, ...).
	SurfaceOddAsphere SurfaceType = "oddasph"
	// SurfaceToroidal is a toroidal surface.
	SurfaceToroidal SurfaceType = "toroidal"
)

// Valid reports whether t is a known surface type.
func (t SurfaceType) Valid() bool {
	switch t {
	case SurfaceStandard, SurfaceEvenAsphere, SurfaceOddAsphere, SurfaceToroidal:
		return true
	}
	return false
}

// Visibility controls how a surface is stored inside an envelope.
type Visibility string

const (
	// VisibilityPublic stores the surface in clear text.
	VisibilityPublic Visibility = "public"
	// VisibilityEncrypted stores the surface only inside the ciphertext.
	VisibilityEncrypted Visibility = "encrypted"
	// VisibilityRedacted stores only the surface index; no other field
	// appears anywhere in the envelope, clear or encrypted.
	VisibilityRedacted Visibility = "redacted"
)

// Valid reports whether v is a known visibility level. The empty
// string counts as valid because it defaults to public.
func (v Visibility) Valid() bool {
	switch v {
	case "", VisibilityPublic, VisibilityEncrypted, VisibilityRedacted:
		return true
	}
	return false
}

// orPublic resolves the empty default.
func (v Visibility) orPublic() Visibility {
	if v == "" {
		return VisibilityPublic
	}
	return v
}

// Surface is a single optical surface in a sequential system.
//
// Surfaces are identified by SurfaceNumber, which must be unique
// within a group. Gaps in the numbering are permitted; the ascending
// order of numbers defines the canonical surface order.
type Surface struct {
	// SurfaceNumber is the surface index in the system, unique per group.
	SurfaceNumber int `json:"surface_number"`
	// Type is the geometric kind of the surface.
	Type SurfaceType `json:"surface_type"`
	// Radius is the radius of curvature in mm (Inf for flat).
	Radius Float `json:"radius"`
	// Thickness is the distance to the next surface in mm.
	Thickness Float `json:"thickness"`
	// SemiDiameter is half the clear aperture in mm.
	SemiDiameter float64 `json:"semi_diameter"`
	// Conic is the conic constant (0 sphere, -1 parabola).
	Conic float64 `json:"conic"`
	// Material is the glass name; empty means air.
	Material string `json:"material,omitempty"`
	// AsphericCoeffs maps coefficient names ("A4", "A6", ...) to values.
	AsphericCoeffs map[string]float64 `json:"aspheric_coeffs,omitempty"`
	// DecenterX and DecenterY are decentration in mm.
	DecenterX float64 `json:"decenter_x"`
	DecenterY float64 `json:"decenter_y"`
	// TiltX and TiltY are tilts in degrees.
	TiltX float64 `json:"tilt_x"`
	TiltY float64 `json:"tilt_y"`
	// Visibility selects clear, encrypted or redacted storage.
	// Empty defaults to public.
	Visibility Visibility `json:"visibility"`
}

// Validate checks the surface field constraints.
func (s *Surface) Validate() error {
	if s.SurfaceNumber < 0 {
		return fmt.Errorf("%w: negative surface number %d", ErrInvalidSurface, s.SurfaceNumber)
	}
	if s.Type != "" && !s.Type.Valid() {
		return fmt.Errorf("%w: unknown surface type %q", ErrInvalidSurface, s.Type)
	}
	if s.SemiDiameter < 0 {
		return fmt.Errorf("%w: negative semi-diameter %g", ErrInvalidSurface, s.SemiDiameter)
	}
	if !s.Visibility.Valid() {
		return fmt.Errorf("%w: unknown visibility %q", ErrInvalidSurface, s.Visibility)
	}
	return nil
}

// IsFlat reports whether the surface has no curvature.
func (s *Surface) IsFlat() bool {
	return s.Radius.IsInf() || math.Abs(float64(s.Radius)) > 1e10
}

// IsAir reports whether the medium after the surface is air.
func (s *Surface) IsAir() bool {
	return s.Material == ""
}

// Curvature returns 1/radius, or 0 for flat surfaces.
func (s *Surface) Curvature() float64 {
	if s.IsFlat() {
		return 0
	}
	return 1 / float64(s.Radius)
}

// Diameter returns the full clear aperture in mm.
func (s *Surface) Diameter() float64 {
	return 2 * s.SemiDiameter
}

// HasAsphericTerms reports whether any aspheric coefficient is
// meaningfully non-zero.
func (s *Surface) HasAsphericTerms() bool {
	for _, v := range s.AsphericCoeffs {
		if math.Abs(v) > 1e-20 {
			return true
		}
	}
	return false
}

// IsDecentered reports whether the surface carries any decentration
// or tilt.
func (s *Surface) IsDecentered() bool {
	return math.Abs(s.DecenterX) > 1e-10 ||
		math.Abs(s.DecenterY) > 1e-10 ||
		math.Abs(s.TiltX) > 1e-10 ||
		math.Abs(s.TiltY) > 1e-10
}

// redactedPlaceholder is the canonical reconstruction of a redacted
// surface: the index, the redacted tag, and model defaults everywhere
// else. The radius default is infinite, so a placeholder reads as a
// flat surface rather than a degenerate one.
func redactedPlaceholder(index int) Surface {
	return Surface{
		SurfaceNumber: index,
		Type:          SurfaceStandard,
		Radius:        Float(math.Inf(1)),
		Visibility:    VisibilityRedacted,
	}
}
