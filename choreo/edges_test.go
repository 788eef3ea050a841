package choreo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultLinks() LinkParams {
	return LinkParams{Distance: 60, MinBrightness: 0.15, Alpha: 0.35, Global: 1}
}

func TestLinksDistanceThreshold(t *testing.T) {
	tests := []struct {
		name string
		dist float64
		want int
	}{
		{"Inside", 59, 1},
		{"AtThreshold", 60, 0},
		{"Outside", 61, 0},
		{"Coincident", 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			points := []Point{
				{X: 100, Y: 100, Brightness: 1, Size: 1},
				{X: 100 + tt.dist, Y: 100, Brightness: 1, Size: 1},
			}
			assert.Equal(t, tt.want, Links(points, defaultLinks(), func(Edge) {}))
		})
	}
}

func TestLinksBrightnessThreshold(t *testing.T) {
	tests := []struct {
		name string
		a, b float64
		want int
	}{
		{"BothBright", 0.8, 0.5, 1},
		{"OneAtThreshold", 0.8, 0.15, 0},
		{"OneDim", 0.1, 0.9, 0},
		{"JustAbove", 0.151, 0.151, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			points := []Point{
				{X: 0, Y: 0, Brightness: tt.a},
				{X: 10, Y: 0, Brightness: tt.b},
			}
			assert.Equal(t, tt.want, Links(points, defaultLinks(), func(Edge) {}))
		})
	}
}

func TestLinksAlpha(t *testing.T) {
	points := []Point{
		{X: 0, Y: 0, Brightness: 0.8},
		{X: 30, Y: 0, Brightness: 0.5},
	}
	lp := defaultLinks()
	lp.Global = 0.5

	var got []Edge
	Links(points, lp, func(e Edge) { got = append(got, e) })
	require.Len(t, got, 1)

	// (1 - 30/60) * 0.5 * 0.35 * min(0.8, 0.5)
	assert.InDelta(t, 0.04375, got[0].Alpha, 1e-12)
	assert.InDelta(t, 30, got[0].Dist, 1e-12)
}

func TestLinksSuppressed(t *testing.T) {
	points := []Point{
		{X: 0, Y: 0, Brightness: 1},
		{X: 5, Y: 0, Brightness: 1},
	}
	for _, lp := range []LinkParams{
		{Distance: 60, MinBrightness: 0.15, Alpha: 0.35, Global: 0},
		{Distance: 60, MinBrightness: 0.15, Alpha: 0, Global: 1},
		{Distance: 0, MinBrightness: 0.15, Alpha: 0.35, Global: 1},
	} {
		assert.Zero(t, Links(points, lp, func(Edge) { t.Fatal("edge drawn while suppressed") }))
	}
}

func TestLinksUnorderedPairs(t *testing.T) {
	points := []Point{
		{X: 0, Y: 0, Brightness: 1},
		{X: 10, Y: 0, Brightness: 0.05},
		{X: 0, Y: 10, Brightness: 1},
		{X: 10, Y: 10, Brightness: 1},
	}

	seen := make(map[[2]int]bool)
	n := Links(points, defaultLinks(), func(e Edge) {
		assert.Less(t, e.A, e.B)
		key := [2]int{e.A, e.B}
		assert.False(t, seen[key], "pair %v emitted twice", key)
		seen[key] = true
	})

	assert.Equal(t, 3, n)
	assert.True(t, seen[[2]int{0, 2}])
	assert.True(t, seen[[2]int{0, 3}])
	assert.True(t, seen[[2]int{2, 3}])
}

func TestLinkerReusesScratch(t *testing.T) {
	var l linker
	points := []Point{{Brightness: 1}, {X: 1, Brightness: 1}}
	l.links(points, defaultLinks(), func(Edge) {})
	before := cap(l.bright)

	l.links(points, defaultLinks(), func(Edge) {})
	assert.Equal(t, before, cap(l.bright))
}
