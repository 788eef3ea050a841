// Package stage defines the scroll-keyed scene layouts and the progress-to-stage mapping
package stage

import (
	"fmt"
	"math"
	"strings"

	"github.com/lixenwraith/scrollglow/particle"
	"github.com/lixenwraith/scrollglow/render"
	"github.com/lixenwraith/scrollglow/vmath"
)

// Kind is a closed set of scene layouts
type Kind int

const (
	Clusters Kind = iota
	Grid
	SignalHighlight
	RadialConvergence
	kindCount
)

var kindNames = [kindCount]string{
	Clusters:          "clusters",
	Grid:              "grid",
	SignalHighlight:   "signal",
	RadialConvergence: "radial",
}

func (k Kind) String() string {
	if k < 0 || k >= kindCount {
		return fmt.Sprintf("stage(%d)", int(k))
	}
	return kindNames[k]
}

// Valid reports whether k names a known layout
func (k Kind) Valid() bool {
	return k >= 0 && k < kindCount
}

// ParseKind resolves a stage name as printed by String
func ParseKind(name string) (Kind, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for k, s := range kindNames {
		if s == n {
			return Kind(k), nil
		}
	}
	return 0, fmt.Errorf("unknown stage %q", name)
}

// Sequence returns the default scroll order of all layouts
func Sequence() []Kind {
	return []Kind{Clusters, Grid, SignalHighlight, RadialConvergence}
}

// Viewport is the logical area targets are laid out in
type Viewport struct {
	Width, Height float64
}

// Generator computes a particle's target for a layout, pure in (meta, viewport)
type Generator func(m particle.Meta, vp Viewport) particle.Attrs

var generators = [kindCount]Generator{
	Clusters:          clusterTarget,
	Grid:              gridTarget,
	SignalHighlight:   signalTarget,
	RadialConvergence: radialTarget,
}

// Generate dispatches to the layout's generator
func (k Kind) Generate(m particle.Meta, vp Viewport) particle.Attrs {
	if !k.Valid() {
		return particle.Attrs{X: vp.Width / 2, Y: vp.Height / 2}
	}
	return generators[k](m, vp)
}

// Style is the per-layout look blended across scroll
type Style struct {
	Accent     render.RGB
	LinkWeight float64 // scales connective line opacity, 0 hides lines
}

var defaultStyles = [kindCount]Style{
	Clusters:          {Accent: render.RGB{R: 79, G: 124, B: 255}, LinkWeight: 1.0},
	Grid:              {Accent: render.RGB{R: 56, G: 214, B: 196}, LinkWeight: 0.8},
	SignalHighlight:   {Accent: render.RGB{R: 255, G: 179, B: 71}, LinkWeight: 0.0},
	RadialConvergence: {Accent: render.RGB{R: 200, G: 107, B: 255}, LinkWeight: 0.6},
}

// DefaultStyle returns the built-in style of k
func (k Kind) DefaultStyle() Style {
	if !k.Valid() {
		return Style{Accent: render.RGBWhite, LinkWeight: 1}
	}
	return defaultStyles[k]
}

// Selection is the stage state derived from one progress sample
type Selection struct {
	Index    int
	Fraction float64 // smoothstep of position within the stage
	Scaled   float64 // progress * stage count
}

// Select maps progress in [0,1] onto count stages
// NaN reads as 0 and out-of-range values clamp, so p=1 stays on the last stage
func Select(p float64, count int) Selection {
	if count <= 0 {
		return Selection{}
	}
	if math.IsNaN(p) {
		p = 0
	}
	p = vmath.Clamp01(p)

	scaled := p * float64(count)
	idx := int(math.Floor(scaled))
	idx = max(0, min(idx, count-1))

	return Selection{
		Index:    idx,
		Fraction: vmath.Smoothstep(scaled - float64(idx)),
		Scaled:   scaled,
	}
}

// Next returns the index blended toward, the last stage blends into itself
func (s Selection) Next(count int) int {
	return min(s.Index+1, count-1)
}

// Ramp blends a per-stage float table by the selection
func Ramp(values []float64, s Selection) float64 {
	if len(values) == 0 {
		return 0
	}
	i := min(s.Index, len(values)-1)
	return vmath.Lerp(values[i], values[s.Next(len(values))], s.Fraction)
}

// RampRGB blends a per-stage color table by the selection
func RampRGB(colors []render.RGB, s Selection) render.RGB {
	if len(colors) == 0 {
		return render.RGBWhite
	}
	i := min(s.Index, len(colors)-1)
	return render.Lerp(colors[i], colors[s.Next(len(colors))], s.Fraction)
}
