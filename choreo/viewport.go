package choreo

import (
	"math"

	"github.com/lixenwraith/scrollglow/stage"
)

// Viewport is the host surface size in logical pixels plus its device pixel ratio
type Viewport struct {
	Width, Height float64
	PixelRatio    float64
}

// Valid reports whether the viewport has a drawable area
func (v Viewport) Valid() bool {
	return v.Width > 0 && v.Height > 0 && !math.IsInf(v.Width, 0) && !math.IsInf(v.Height, 0)
}

// Ratio returns the pixel ratio, defaulting to 1
func (v Viewport) Ratio() float64 {
	if v.PixelRatio <= 0 || math.IsNaN(v.PixelRatio) {
		return 1
	}
	return v.PixelRatio
}

func (v Viewport) layout() stage.Viewport {
	return stage.Viewport{Width: v.Width, Height: v.Height}
}

// ViewportSource delivers host resize notifications
// The callback may run on any goroutine; cancel stops further deliveries
type ViewportSource interface {
	Subscribe(fn func(Viewport)) (cancel func())
}
