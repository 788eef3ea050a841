package stage

import (
	"math"

	"github.com/lixenwraith/scrollglow/particle"
	"github.com/lixenwraith/scrollglow/vmath"
)

// Layout constants
const (
	ClusterOrbit  = 0.27  // cluster centers sit on an ellipse of this fraction of the viewport
	ClusterSpread = 0.085 // blob radius as a fraction of the short side

	GridCoverage = 0.65 // lattice spans this fraction of width and height

	SignalField = 0.8  // scatter area of dimmed particles
	SignalWave  = 0.12 // amplitude of the signal trace as a fraction of height

	RadialExtent   = 0.24 // outer radius as a fraction of the short side
	RadialFalloff  = 0.7  // radius = extent * t^falloff, >0.5 packs the center
	RadialTurns    = 9.0
	radialMinPower = 0.5
)

// Per-particle random salts, one independent stream each
const (
	saltAngle uint64 = iota + 1
	saltRadius
	saltBrightness
	saltSize
	saltFieldX
	saltFieldY
)

// ClusterCenter returns the center of blob c out of n
func ClusterCenter(c, n int, vp Viewport) (float64, float64) {
	n = max(n, 1)
	theta := 2*math.Pi*float64(c)/float64(n) - math.Pi/2
	return vp.Width/2 + math.Cos(theta)*vp.Width*ClusterOrbit,
		vp.Height/2 + math.Sin(theta)*vp.Height*ClusterOrbit
}

// clusterTarget scatters particles uniformly in a disc around their cluster center
func clusterTarget(m particle.Meta, vp Viewport) particle.Attrs {
	ccx, ccy := ClusterCenter(m.Cluster, m.Clusters, vp)
	spread := ClusterSpread * math.Min(vp.Width, vp.Height)

	theta := vmath.Unit(m.Seed, saltAngle) * 2 * math.Pi
	r := math.Sqrt(vmath.Unit(m.Seed, saltRadius)) * spread
	x, y := vmath.Polar(ccx, ccy, r, theta)

	return particle.Attrs{
		X:          x,
		Y:          y,
		Brightness: 0.35 + 0.4*vmath.Unit(m.Seed, saltBrightness),
		Size:       1.1 + 1.1*vmath.Unit(m.Seed, saltSize),
	}
}

// GridDims returns lattice columns and rows for count particles at the viewport aspect
func GridDims(count int, vp Viewport) (cols, rows int) {
	if count <= 0 {
		return 0, 0
	}
	aspect := 1.0
	if vp.Height > 0 && vp.Width > 0 {
		aspect = vp.Width / vp.Height
	}
	cols = max(int(math.Ceil(math.Sqrt(float64(count)*aspect))), 1)
	rows = int(math.Ceil(float64(count) / float64(cols)))
	return cols, rows
}

// GridOrigin returns the top-left corner and extent of the lattice
func GridOrigin(vp Viewport) (left, top, width, height float64) {
	width = vp.Width * GridCoverage
	height = vp.Height * GridCoverage
	return (vp.Width - width) / 2, (vp.Height - height) / 2, width, height
}

// latticeStep places cell i of n evenly on [0,1], a single cell sits at the middle
func latticeStep(i, n int) float64 {
	if n <= 1 {
		return 0.5
	}
	return float64(i) / float64(n-1)
}

// gridTarget places particles row-major on an evenly spaced centered lattice
func gridTarget(m particle.Meta, vp Viewport) particle.Attrs {
	cols, rows := GridDims(m.Count, vp)
	left, top, w, h := GridOrigin(vp)
	col := m.Index % cols
	row := m.Index / cols

	return particle.Attrs{
		X:          left + w*latticeStep(col, cols),
		Y:          top + h*latticeStep(row, rows),
		Brightness: 0.55,
		Size:       1.5,
	}
}

// signalTarget dims the field and lifts signal particles onto a bright trace
func signalTarget(m particle.Meta, vp Viewport) particle.Attrs {
	margin := (1 - SignalField) / 2
	x := vp.Width * (margin + SignalField*vmath.Unit(m.Seed, saltFieldX))

	if !m.Signal {
		return particle.Attrs{
			X:          x,
			Y:          vp.Height * (margin + SignalField*vmath.Unit(m.Seed, saltFieldY)),
			Brightness: 0.04,
			Size:       0.9,
		}
	}

	phase := 0.0
	if vp.Width > 0 {
		phase = x / vp.Width * 3 * math.Pi
	}
	return particle.Attrs{
		X:          x,
		Y:          vp.Height/2 + math.Sin(phase)*vp.Height*SignalWave,
		Brightness: 0.95,
		Size:       2.6,
	}
}

// RadialRadius returns the convergence radius for normalized index t
func RadialRadius(t float64, vp Viewport) float64 {
	power := math.Max(RadialFalloff, radialMinPower)
	return RadialExtent * math.Min(vp.Width, vp.Height) * math.Pow(vmath.Clamp01(t), power)
}

// radialTarget spirals particles by index into a center-dense disc
func radialTarget(m particle.Meta, vp Viewport) particle.Attrs {
	t := (float64(m.Index) + 0.5) / float64(max(m.Count, 1))
	theta := t * RadialTurns * 2 * math.Pi
	x, y := vmath.Polar(vp.Width/2, vp.Height/2, RadialRadius(t, vp), theta)

	return particle.Attrs{
		X:          x,
		Y:          y,
		Brightness: 0.9 - 0.45*t,
		Size:       1.9 - 0.8*t,
	}
}
