package choreo

import (
	"math"
)

// Point is a particle as drawn this frame, after drift
type Point struct {
	X, Y       float64
	Brightness float64
	Size       float64
}

// Edge is one connective line between points A < B
type Edge struct {
	A, B  int
	Dist  float64
	Alpha float64
}

// LinkParams control which pairs connect and how strongly
type LinkParams struct {
	Distance      float64 // strict upper bound on drawn distance
	MinBrightness float64 // strict lower bound on both brightness values
	Alpha         float64 // local opacity factor
	Global        float64 // stage-blended weight, 0 suppresses all lines
}

// linker reuses its scratch index between frames
type linker struct {
	bright []int
}

// links calls fn for every connected unordered pair and returns the edge count
// alpha = (1 - dist/Distance) * Global * Alpha * min(brightness)
func (l *linker) links(points []Point, lp LinkParams, fn func(Edge)) int {
	if lp.Global <= 0 || lp.Alpha <= 0 || lp.Distance <= 0 {
		return 0
	}

	l.bright = l.bright[:0]
	for i := range points {
		if points[i].Brightness > lp.MinBrightness {
			l.bright = append(l.bright, i)
		}
	}

	maxSq := lp.Distance * lp.Distance
	n := 0
	for ai, a := range l.bright {
		pa := &points[a]
		for _, b := range l.bright[ai+1:] {
			pb := &points[b]
			dx := pb.X - pa.X
			dy := pb.Y - pa.Y
			dsq := dx*dx + dy*dy
			if dsq >= maxSq {
				continue
			}
			d := math.Sqrt(dsq)
			alpha := (1 - d/lp.Distance) * lp.Global * lp.Alpha * math.Min(pa.Brightness, pb.Brightness)
			if alpha <= 0 {
				continue
			}
			fn(Edge{A: a, B: b, Dist: d, Alpha: alpha})
			n++
		}
	}
	return n
}

// Links is the stateless form of the per-frame edge pass
func Links(points []Point, lp LinkParams, fn func(Edge)) int {
	var l linker
	return l.links(points, lp, fn)
}
