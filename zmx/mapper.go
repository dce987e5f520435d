package zmx

import (
	"math"
	"strings"

	"github.com/opticalblackbox/obb-go"
)

// rawSurface accumulates the properties of one SURF block before it is
// mapped onto the surface model.
type rawSurface struct {
	number    int
	zemaxType string
	curvature float64
	thickness float64
	material  string
	semiDiam  float64
	conic     float64
	parm      map[int]float64
	decenterX float64
	decenterY float64
	tiltX     float64
	tiltY     float64
}

func newRawSurface(number int) *rawSurface {
	return &rawSurface{
		number:    number,
		zemaxType: "STANDARD",
		parm:      make(map[int]float64),
	}
}

// mapSurfaceType resolves a Zemax type name. Unknown types fall back
// to standard so a file with exotic surfaces still parses.
func mapSurfaceType(zemaxType string) obb.SurfaceType {
	if t, ok := surfaceTypes[strings.ToUpper(zemaxType)]; ok {
		return t
	}
	return obb.SurfaceStandard
}

// radiusFromCurvature inverts a CURV value. Zemax stores curvature;
// the surface model stores radius, with zero curvature meaning flat.
func radiusFromCurvature(curvature float64) float64 {
	if math.Abs(curvature) < 1e-15 {
		return math.Inf(1)
	}
	return 1 / curvature
}

// asphericCoeffs converts PARM values to named coefficients, dropping
// negligible terms. Returns nil when nothing remains.
func asphericCoeffs(parm map[int]float64) map[string]float64 {
	var coeffs map[string]float64
	for index, value := range parm {
		if math.Abs(value) <= 1e-30 {
			continue
		}
		if coeffs == nil {
			coeffs = make(map[string]float64)
		}
		coeffs[parmCoeffName(index)] = value
	}
	return coeffs
}

func (r *rawSurface) build() obb.Surface {
	return obb.Surface{
		SurfaceNumber:  r.number,
		Type:           mapSurfaceType(r.zemaxType),
		Radius:         obb.Float(radiusFromCurvature(r.curvature)),
		Thickness:      obb.Float(r.thickness),
		Material:       r.material,
		SemiDiameter:   r.semiDiam,
		Conic:          r.conic,
		AsphericCoeffs: asphericCoeffs(r.parm),
		DecenterX:      r.decenterX,
		DecenterY:      r.decenterY,
		TiltX:          r.tiltX,
		TiltY:          r.tiltY,
	}
}
