package optics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opticalblackbox/obb-go"
)

func lensGroup(t *testing.T, surfaces []obb.Surface) *obb.SurfaceGroup {
	t.Helper()
	g, err := obb.NewSurfaceGroup(surfaces)
	require.NoError(t, err)
	return g
}

func TestCompute_ThinBiconvexLens(t *testing.T) {
	// Symmetric biconvex N-BK7 lens, zero thickness. The lensmaker's
	// equation gives 1/f = (n-1)(1/R1 - 1/R2).
	g := lensGroup(t, []obb.Surface{
		{SurfaceNumber: 0, Radius: 50, Material: "N-BK7", SemiDiameter: 12.7},
		{SurfaceNumber: 1, Radius: -50, SemiDiameter: 12.7},
	})

	props := Compute(g, 587.56)

	n := 1.5168
	wantEFL := 1 / ((n - 1) * (1.0/50 + 1.0/50))
	assert.InDelta(t, wantEFL, props.EFLmm, 1e-3)
	// With zero thickness the principal plane sits on the lens.
	assert.InDelta(t, wantEFL, props.BFLmm, 1e-3)

	wantNA := 25.4 / (2 * wantEFL)
	assert.InDelta(t, wantNA, props.NA, 1e-3)
}

func TestCompute_ThickPlanoConvex(t *testing.T) {
	// Curved side first, flat rear: EFL = R/(n-1), BFL = EFL - t/n.
	g := lensGroup(t, []obb.Surface{
		{SurfaceNumber: 0, Radius: 50, Thickness: 5, Material: "N-BK7", SemiDiameter: 10},
		{SurfaceNumber: 1, Radius: obb.Float(math.Inf(1)), SemiDiameter: 10},
	})

	props := Compute(g, 587.56)

	n := 1.5168
	wantEFL := 50 / (n - 1)
	assert.InDelta(t, wantEFL, props.EFLmm, 1e-3)
	assert.InDelta(t, wantEFL-5/n, props.BFLmm, 1e-3)
}

func TestCompute_Afocal(t *testing.T) {
	g := lensGroup(t, []obb.Surface{
		{SurfaceNumber: 0, Radius: obb.Float(math.Inf(1)), Thickness: 10, Material: "N-BK7", SemiDiameter: 10},
		{SurfaceNumber: 1, Radius: obb.Float(math.Inf(1)), SemiDiameter: 10},
	})

	props := Compute(g, 587.56)
	assert.True(t, math.IsInf(props.EFLmm, 1), "flat window has no power")
	assert.True(t, math.IsInf(props.BFLmm, 1))
	assert.Zero(t, props.NA)
	assert.True(t, Afocal(g))
}

func TestCompute_ObjectAtInfinityIgnored(t *testing.T) {
	lens := []obb.Surface{
		{SurfaceNumber: 1, Radius: 50, Thickness: 5, Material: "N-BK7", SemiDiameter: 10},
		{SurfaceNumber: 2, Radius: obb.Float(math.Inf(1)), SemiDiameter: 10},
	}
	withObject := append([]obb.Surface{
		{SurfaceNumber: 0, Radius: obb.Float(math.Inf(1)), Thickness: obb.Float(math.Inf(1)), SemiDiameter: 10},
	}, lens...)

	bare := Compute(lensGroup(t, lens), 587.56)
	full := Compute(lensGroup(t, withObject), 587.56)

	assert.InDelta(t, bare.EFLmm, full.EFLmm, 1e-9, "infinite object distance adds nothing")
	assert.InDelta(t, bare.BFLmm, full.BFLmm, 1e-9)
}

func TestCalculator_ImplementsInterface(t *testing.T) {
	g := lensGroup(t, []obb.Surface{
		{SurfaceNumber: 0, Radius: 50, Material: "N-BK7", SemiDiameter: 12.7},
		{SurfaceNumber: 1, Radius: -50, SemiDiameter: 12.7},
	})

	var calc obb.OpticalCalculator = Calculator{}
	assert.InDelta(t, Compute(g, 587.56).EFLmm, calc.EFL(g, 587.56), 1e-3)
	assert.Positive(t, calc.NA(g, 587.56))
	assert.InDelta(t, Compute(g, 587.56).BFLmm, calc.BFL(g, 587.56), 1e-3)
}

func TestRefractiveIndex(t *testing.T) {
	tests := []struct {
		material string
		want     float64
	}{
		{"N-BK7", 1.5168},
		{"n-bk7", 1.5168},
		{"NBK7", 1.5168},
		{"", 1.0},
		{"  ", 1.0},
		{"UNOBTAINIUM", 1.5},
		{"SF11", 1.7847},
		{"CAF2", 1.4338},
	}
	for _, tt := range tests {
		t.Run(tt.material, func(t *testing.T) {
			assert.Equal(t, tt.want, RefractiveIndex(tt.material, 587.56))
		})
	}
}

func TestIsMaterialKnown(t *testing.T) {
	assert.True(t, IsMaterialKnown("N-BK7"))
	assert.True(t, IsMaterialKnown("nbk7"))
	assert.True(t, IsMaterialKnown(""), "air is always known")
	assert.False(t, IsMaterialKnown("UNOBTAINIUM"))
}

func TestMaterials(t *testing.T) {
	names := Materials()
	assert.NotEmpty(t, names)
	assert.Contains(t, names, "N-BK7")
	assert.IsIncreasing(t, names)
}
