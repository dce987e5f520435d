// Package optics computes first-order properties of a surface group:
// effective and back focal length via ABCD matrix raytracing, and a
// numerical aperture estimate from the entrance aperture. A small
// d-line glass catalog supplies refractive indices.
package optics

import (
	"math"

	"github.com/opticalblackbox/obb-go"
)

// matrix is a 2x2 ray transfer matrix [[A, B], [C, D]].
type matrix [2][2]float64

var identity = matrix{{1, 0}, {0, 1}}

func (m matrix) mul(other matrix) matrix {
	return matrix{
		{
			m[0][0]*other[0][0] + m[0][1]*other[1][0],
			m[0][0]*other[0][1] + m[0][1]*other[1][1],
		},
		{
			m[1][0]*other[0][0] + m[1][1]*other[1][0],
			m[1][0]*other[0][1] + m[1][1]*other[1][1],
		},
	}
}

// transferMatrix propagates a distance through a medium of index n.
// Infinite distances (object at infinity) contribute nothing.
func transferMatrix(thickness, n float64) matrix {
	if math.IsInf(thickness, 0) {
		thickness = 0
	}
	return matrix{{1, thickness / n}, {0, 1}}
}

// refractionMatrix refracts at a surface of the given curvature
// between media of index nBefore and nAfter. Reduced-angle convention:
// the ray vector is (height, n*angle), so the transfer distance is
// divided by n and refraction leaves the D element at 1.
func refractionMatrix(curvature, nBefore, nAfter float64) matrix {
	power := (nAfter - nBefore) * curvature
	return matrix{{1, 0}, {-power, 1}}
}

// systemMatrix traces the group from the first surface to the last,
// starting and ending in air.
func systemMatrix(g *obb.SurfaceGroup, wavelengthNm float64) matrix {
	m := identity
	nCurrent := airIndex

	for i := range g.Surfaces {
		s := &g.Surfaces[i]
		nNext := RefractiveIndex(s.Material, wavelengthNm)

		m = refractionMatrix(s.Curvature(), nCurrent, nNext).mul(m)
		if i < len(g.Surfaces)-1 {
			m = transferMatrix(float64(s.Thickness), nNext).mul(m)
		}
		nCurrent = nNext
	}
	return m
}

func eflFromMatrix(m matrix) float64 {
	c := m[1][0]
	if math.Abs(c) < 1e-15 {
		return math.Inf(1)
	}
	return -1 / c
}

func bflFromMatrix(m matrix) float64 {
	c := m[1][0]
	if math.Abs(c) < 1e-15 {
		return math.Inf(1)
	}
	return -m[0][0] / c
}

// Properties holds the computed first-order values.
type Properties struct {
	// EFLmm is the effective focal length (Inf for afocal systems).
	EFLmm float64
	// BFLmm is the back focal length, measured from the last surface.
	BFLmm float64
	// NA is the numerical aperture estimate, capped at 1.0.
	NA float64
}

// Compute traces the group at the given wavelength. Pass the group's
// primary wavelength for the nominal values.
func Compute(g *obb.SurfaceGroup, wavelengthNm float64) Properties {
	m := systemMatrix(g, wavelengthNm)
	efl := eflFromMatrix(m)
	bfl := bflFromMatrix(m)

	// NA from the entrance aperture: (D/2) / |EFL|.
	var na float64
	if !math.IsInf(efl, 0) && math.Abs(efl) > 1e-10 && len(g.Surfaces) > 0 {
		na = g.Surfaces[0].Diameter() / (2 * math.Abs(efl))
		if na > 1 {
			na = 1
		}
	}

	return Properties{
		EFLmm: roundTo(efl, 4),
		BFLmm: roundTo(bfl, 4),
		NA:    roundTo(na, 4),
	}
}

// Calculator implements obb.OpticalCalculator using paraxial
// raytracing. The zero value is ready to use.
type Calculator struct{}

var _ obb.OpticalCalculator = Calculator{}

// EFL returns the effective focal length in mm.
func (Calculator) EFL(g *obb.SurfaceGroup, wavelengthNm float64) float64 {
	return eflFromMatrix(systemMatrix(g, wavelengthNm))
}

// BFL returns the back focal length in mm.
func (Calculator) BFL(g *obb.SurfaceGroup, wavelengthNm float64) float64 {
	return bflFromMatrix(systemMatrix(g, wavelengthNm))
}

// NA returns the numerical aperture estimate.
func (Calculator) NA(g *obb.SurfaceGroup, wavelengthNm float64) float64 {
	return Compute(g, wavelengthNm).NA
}

func roundTo(v float64, decimals int) float64 {
	if math.IsInf(v, 0) {
		return v
	}
	scale := math.Pow(10, float64(decimals))
	return math.Round(v*scale) / scale
}
