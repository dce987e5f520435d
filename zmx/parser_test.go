package zmx

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opticalblackbox/obb-go"
)

const doubletZMX = `VERS 181119 25 10994
MODE SEQ
NAME Achromatic Doublet
UNIT MM X W X CM MR CPMM
WAVM 1 0.4861 1
WAVM 2 0.5876 1
WAVM 3 0.6563 1
SURF 0
  TYPE STANDARD
  CURV 0.0
  THIC INFINITY
  DIAM 10.0
SURF 1
  STOP
  TYPE STANDARD
  CURV 0.030167
  THIC 4.0
  GLAS N-BK7 0 0
  DIAM 12.7
SURF 2
  TYPE STANDARD
  CURV -0.044506
  THIC 2.5
  GLAS N-SF5 0 0
  DIAM 12.7
SURF 3
  TYPE STANDARD
  CURV -0.007306
  THIC 43.2
  DIAM 12.7
`

func TestParse_Doublet(t *testing.T) {
	group, err := Parse(strings.NewReader(doubletZMX))
	require.NoError(t, err)

	require.Equal(t, 4, group.NumSurfaces())

	object := group.Surfaces[0]
	assert.True(t, object.Radius.IsInf(), "zero curvature means flat")
	assert.True(t, object.Thickness.IsInf(), "INFINITY thickness")
	// DIAM values carry over unconverted.
	assert.Equal(t, 10.0, object.SemiDiameter)

	front := group.Surfaces[1]
	assert.InDelta(t, 1/0.030167, float64(front.Radius), 1e-6)
	assert.Equal(t, "N-BK7", front.Material)
	assert.Equal(t, obb.Float(4.0), front.Thickness)

	require.NotNil(t, group.StopSurface)
	assert.Equal(t, 1, *group.StopSurface)

	require.Len(t, group.WavelengthsNm, 3)
	assert.InDelta(t, 486.1, group.WavelengthsNm[0], 0.01)
	assert.InDelta(t, 587.6, group.WavelengthsNm[1], 0.01)
}

func TestParse_Asphere(t *testing.T) {
	content := `SURF 0
  THIC INFINITY
SURF 1
  TYPE EVENASPH
  CURV 0.02
  CONI -0.5
  PARM 2 1.5E-06
  PARM 3 -2.0E-09
  PARM 4 0.0
  THIC 5.0
  DIAM 10.0
`
	group, err := Parse(strings.NewReader(content))
	require.NoError(t, err)

	asph := group.Surfaces[1]
	assert.Equal(t, obb.SurfaceEvenAsphere, asph.Type)
	assert.Equal(t, -0.5, asph.Conic)
	require.NotNil(t, asph.AsphericCoeffs)
	assert.Equal(t, 1.5e-06, asph.AsphericCoeffs["A4"])
	assert.Equal(t, -2.0e-09, asph.AsphericCoeffs["A6"])
	_, ok := asph.AsphericCoeffs["A8"]
	assert.False(t, ok, "zero coefficients are dropped")
}

func TestParse_UnknownTypeFallsBack(t *testing.T) {
	content := `SURF 0
  TYPE USERSURF
  CURV 0.01
`
	group, err := Parse(strings.NewReader(content))
	require.NoError(t, err)
	assert.Equal(t, obb.SurfaceStandard, group.Surfaces[0].Type)
}

func TestParse_DecenterAndTilt(t *testing.T) {
	content := `SURF 0
  CURV 0.01
  DECX 0.5
  DECY -0.25
  TILTX 1.0
  TILTY 2.0
`
	group, err := Parse(strings.NewReader(content))
	require.NoError(t, err)

	s := group.Surfaces[0]
	assert.Equal(t, 0.5, s.DecenterX)
	assert.Equal(t, -0.25, s.DecenterY)
	assert.Equal(t, 1.0, s.TiltX)
	assert.Equal(t, 2.0, s.TiltY)
}

func TestParse_MalformedLinesSkipped(t *testing.T) {
	content := `SURF 0
  CURV not-a-number
  THIC 5.0
  GLAS
  BOGUS 1 2 3
`
	group, err := Parse(strings.NewReader(content))
	require.NoError(t, err)

	s := group.Surfaces[0]
	assert.True(t, s.Radius.IsInf(), "bad CURV leaves surface flat")
	assert.Equal(t, obb.Float(5.0), s.Thickness)
	assert.Empty(t, s.Material)
}

func TestParse_NoSurfaces(t *testing.T) {
	_, err := Parse(strings.NewReader("MODE SEQ\nNAME Empty\n"))
	assert.ErrorIs(t, err, ErrNoSurfaces)
}

func TestParse_DefaultWavelength(t *testing.T) {
	group, err := Parse(strings.NewReader("SURF 0\n  CURV 0.01\n"))
	require.NoError(t, err)
	require.Len(t, group.WavelengthsNm, 1)
	assert.InDelta(t, 587.56, group.WavelengthsNm[0], 1e-9)
}

func TestParse_UTF16LE(t *testing.T) {
	content := "SURF 0\n  CURV 0.02\n  THIC 3.0\n"
	encoded := []byte{0xFF, 0xFE}
	for _, r := range content {
		encoded = append(encoded, byte(r), 0)
	}

	group, err := Parse(strings.NewReader(string(encoded)))
	require.NoError(t, err)
	require.Equal(t, 1, group.NumSurfaces())
	assert.InDelta(t, 50.0, float64(group.Surfaces[0].Radius), 1e-9)
}

func TestParse_UTF16LE_NoBOM(t *testing.T) {
	content := "SURF 0\n  CURV 0.02\n  THIC 3.0\n"
	var encoded []byte
	for _, r := range content {
		encoded = append(encoded, byte(r), 0)
	}

	group, err := Parse(strings.NewReader(string(encoded)))
	require.NoError(t, err)
	require.Equal(t, 1, group.NumSurfaces())
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doublet.zmx")
	require.NoError(t, os.WriteFile(path, []byte(doubletZMX), 0o644))

	group, err := ParseFile(path)
	require.NoError(t, err)
	assert.Equal(t, 4, group.NumSurfaces())

	_, err = ParseFile(filepath.Join(t.TempDir(), "missing.zmx"))
	assert.Error(t, err)
}

func TestRadiusFromCurvature(t *testing.T) {
	assert.True(t, math.IsInf(radiusFromCurvature(0), 1))
	assert.InDelta(t, 100.0, radiusFromCurvature(0.01), 1e-12)
	assert.InDelta(t, -25.0, radiusFromCurvature(-0.04), 1e-12)
}

func TestParmCoeffName(t *testing.T) {
	assert.Equal(t, "A2", parmCoeffName(1))
	assert.Equal(t, "A4", parmCoeffName(2))
	assert.Equal(t, "A12", parmCoeffName(6))
}
