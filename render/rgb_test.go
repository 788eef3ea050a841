package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBlend(t *testing.T) {
	a := RGB{0, 0, 0}
	b := RGB{200, 100, 50}

	assert.Equal(t, a, Blend(a, b, 0))
	assert.Equal(t, b, Blend(a, b, 1))
	assert.Equal(t, RGB{100, 50, 25}, Blend(a, b, 0.5))
}

func TestAddClamps(t *testing.T) {
	got := Add(RGB{200, 200, 10}, RGB{100, 10, 10}, 1)
	assert.Equal(t, RGB{255, 210, 20}, got)

	half := Add(RGB{0, 0, 0}, RGB{100, 100, 100}, 0.5)
	assert.Equal(t, RGB{50, 50, 50}, half)

	assert.Equal(t, RGB{1, 2, 3}, Add(RGB{1, 2, 3}, RGBWhite, 0))
}

func TestScreenLightens(t *testing.T) {
	dst := RGB{60, 60, 60}
	got := Screen(dst, RGB{120, 120, 120}, 1)
	assert.Greater(t, got.R, dst.R)
	assert.Equal(t, RGBWhite, Screen(dst, RGBWhite, 1))
}

func TestLerpEndpoints(t *testing.T) {
	a := RGB{10, 20, 30}
	b := RGB{210, 120, 0}

	assert.Equal(t, a, Lerp(a, b, 0))
	assert.Equal(t, b, Lerp(a, b, 1))
	assert.Equal(t, a, Lerp(a, b, -1))
	assert.Equal(t, b, Lerp(a, b, 2))
	assert.Equal(t, RGB{110, 70, 15}, Lerp(a, b, 0.5))
}

func TestLerpContinuous(t *testing.T) {
	a := RGB{79, 124, 255}
	b := RGB{56, 214, 196}
	prev := a
	for i := 1; i <= 100; i++ {
		cur := Lerp(a, b, float64(i)/100)
		assert.LessOrEqual(t, absDiff(cur.R, prev.R), 1)
		assert.LessOrEqual(t, absDiff(cur.G, prev.G), 2)
		assert.LessOrEqual(t, absDiff(cur.B, prev.B), 1)
		prev = cur
	}
}

func TestScale(t *testing.T) {
	assert.Equal(t, RGB{50, 25, 0}, Scale(RGB{100, 50, 0}, 0.5))
	assert.Equal(t, RGB{255, 255, 0}, Scale(RGB{200, 150, 0}, 3))
}

func absDiff(a, b uint8) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}
