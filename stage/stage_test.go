package stage

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/scrollglow/render"
)

func TestSelect(t *testing.T) {
	tests := []struct {
		name      string
		p         float64
		wantIndex int
		wantFrac  float64
	}{
		{"Start", 0.0, 0, 0},
		{"Just past first third", 0.33, 1, 0.32 * 0.32 * (3 - 2*0.32)},
		{"Middle of stage two", 0.625, 2, 0.5},
		{"End clamps to last", 1.0, 3, 1},
		{"Over range clamps", 1.7, 3, 1},
		{"Negative clamps", -0.4, 0, 0},
		{"NaN reads as zero", math.NaN(), 0, 0},
		{"PosInf clamps", math.Inf(1), 3, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sel := Select(tt.p, 4)
			assert.Equal(t, tt.wantIndex, sel.Index)
			assert.InDelta(t, tt.wantFrac, sel.Fraction, 1e-9)
		})
	}
}

func TestSelectEmpty(t *testing.T) {
	assert.Equal(t, Selection{}, Select(0.5, 0))
}

func TestSelectionNext(t *testing.T) {
	assert.Equal(t, 1, Select(0.1, 4).Next(4))
	assert.Equal(t, 3, Select(1.0, 4).Next(4))
}

func TestRampContinuousAtBoundaries(t *testing.T) {
	weights := []float64{1.0, 0.8, 0.0, 0.6}
	const delta = 1e-6

	for b := 1; b < 4; b++ {
		boundary := float64(b) / 4
		below := Ramp(weights, Select(boundary-delta, 4))
		above := Ramp(weights, Select(boundary+delta, 4))
		assert.InDelta(t, below, above, 1e-4, "link weight jumps at boundary %d", b)
	}
}

func TestRampRGBContinuousAtBoundaries(t *testing.T) {
	colors := make([]render.RGB, 0, 4)
	for _, k := range Sequence() {
		colors = append(colors, k.DefaultStyle().Accent)
	}
	const delta = 1e-6

	for b := 1; b < 4; b++ {
		boundary := float64(b) / 4
		below := RampRGB(colors, Select(boundary-delta, 4))
		above := RampRGB(colors, Select(boundary+delta, 4))
		assert.Equal(t, colors[b], above)
		assert.InDelta(t, float64(above.R), float64(below.R), 1)
		assert.InDelta(t, float64(above.G), float64(below.G), 1)
		assert.InDelta(t, float64(above.B), float64(below.B), 1)
	}
}

func TestRampEmptyTables(t *testing.T) {
	sel := Select(0.5, 4)
	assert.Equal(t, 0.0, Ramp(nil, sel))
	assert.Equal(t, render.RGBWhite, RampRGB(nil, sel))
}

func TestKindNames(t *testing.T) {
	for _, k := range Sequence() {
		parsed, err := ParseKind(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, parsed)
	}

	_, err := ParseKind("spiral")
	assert.Error(t, err)
	assert.Equal(t, "stage(9)", Kind(9).String())
	assert.False(t, Kind(-1).Valid())
}
