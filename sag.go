package obb

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Geometry is the capability exposed by every surface kind: sag (the
// axial departure of the surface at a point) and the surface normal.
// The built-in kinds are dispatched by SurfaceType; external
// experimental kinds can implement Geometry directly.
type Geometry interface {
	// Sag returns the surface sag z(x, y) in mm.
	Sag(x, y float64) (float64, error)
	// Normal returns the unit surface normal at (x, y).
	Normal(x, y float64) ([3]float64, error)
}

// Geometry returns the geometry implementation for the surface's kind.
func (s *Surface) Geometry() (Geometry, error) {
	switch s.Type.orStandard() {
	case SurfaceStandard:
		return conicGeometry{s}, nil
	case SurfaceEvenAsphere:
		return asphereGeometry{s, 2}, nil
	case SurfaceOddAsphere:
		return asphereGeometry{s, 1}, nil
	case SurfaceToroidal:
		// Rotationally symmetric approximation about the base conic.
		return conicGeometry{s}, nil
	}
	return nil, fmt.Errorf("%w: no geometry for type %q", ErrInvalidSurface, s.Type)
}

func (t SurfaceType) orStandard() SurfaceType {
	if t == "" {
		return SurfaceStandard
	}
	return t
}

// conicGeometry implements the standard spherical/conic sag
//
//	z = c r^2 / (1 + sqrt(1 - (1+k) c^2 r^2))
type conicGeometry struct {
	s *Surface
}

func (g conicGeometry) Sag(x, y float64) (float64, error) {
	return conicSag(g.s, x*x+y*y)
}

func (g conicGeometry) Normal(x, y float64) ([3]float64, error) {
	dz := conicSlope(g.s, math.Hypot(x, y))
	return radialNormal(x, y, dz), nil
}

func conicSag(s *Surface, r2 float64) (float64, error) {
	c := s.Curvature()
	if c == 0 {
		return 0, nil
	}
	k := s.Conic
	disc := 1 - (1+k)*c*c*r2
	if disc < 0 {
		return 0, fmt.Errorf("%w: point outside conic domain of surface %d", ErrInvalidSurface, s.SurfaceNumber)
	}
	return c * r2 / (1 + math.Sqrt(disc)), nil
}

// conicSlope is dz/dr for the conic term.
func conicSlope(s *Surface, r float64) float64 {
	c := s.Curvature()
	if c == 0 {
		return 0
	}
	disc := 1 - (1+s.Conic)*c*c*r*r
	if disc <= 0 {
		return 0
	}
	return c * r / math.Sqrt(disc)
}

// asphereGeometry adds polynomial departure terms to the base conic.
// step is 2 for even aspheres (A2, A4, ...) and 1 for odd (A1, A3, ...).
type asphereGeometry struct {
	s    *Surface
	step int
}

func (g asphereGeometry) Sag(x, y float64) (float64, error) {
	r2 := x*x + y*y
	z, err := conicSag(g.s, r2)
	if err != nil {
		return 0, err
	}
	r := math.Sqrt(r2)
	for _, t := range g.terms() {
		z += t.coeff * math.Pow(r, float64(t.order))
	}
	return z, nil
}

func (g asphereGeometry) Normal(x, y float64) ([3]float64, error) {
	r := math.Hypot(x, y)
	dz := conicSlope(g.s, r)
	for _, t := range g.terms() {
		if t.order > 0 {
			dz += t.coeff * float64(t.order) * math.Pow(r, float64(t.order-1))
		}
	}
	return radialNormal(x, y, dz), nil
}

type asphereTerm struct {
	order int
	coeff float64
}

// terms extracts the polynomial orders from coefficient names ("A4" →
// order 4), sorted ascending for stable evaluation.
func (g asphereGeometry) terms() []asphereTerm {
	out := make([]asphereTerm, 0, len(g.s.AsphericCoeffs))
	for name, coeff := range g.s.AsphericCoeffs {
		order, err := strconv.Atoi(strings.TrimPrefix(name, "A"))
		if err != nil || order <= 0 {
			continue
		}
		if g.step == 2 && order%2 != 0 {
			continue
		}
		out = append(out, asphereTerm{order, coeff})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].order < out[j].order })
	return out
}

// radialNormal builds the unit normal from the radial slope dz/dr of a
// rotationally symmetric surface.
func radialNormal(x, y, dz float64) [3]float64 {
	r := math.Hypot(x, y)
	if r == 0 || dz == 0 {
		return [3]float64{0, 0, 1}
	}
	nx := -dz * x / r
	ny := -dz * y / r
	norm := math.Sqrt(nx*nx + ny*ny + 1)
	return [3]float64{nx / norm, ny / norm, 1 / norm}
}
