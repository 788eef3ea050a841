package vmath

import (
	"math"
)

// --- Scalar ---

// Clamp restricts v to [lo, hi], NaN collapses to lo
func Clamp(v, lo, hi float64) float64 {
	if v >= hi {
		return hi
	}
	if v >= lo {
		return v
	}
	return lo
}

// Clamp01 restricts v to [0, 1]
func Clamp01(v float64) float64 {
	return Clamp(v, 0, 1)
}

// Lerp linearly interpolates a->b, t is not clamped
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// Smoothstep is the cubic ease t²(3-2t) over clamped t
func Smoothstep(t float64) float64 {
	t = Clamp01(t)
	return t * t * (3 - 2*t)
}

// Approach moves current toward target by factor of the remaining gap
// Factor in (0,1] never overshoots, factor <= 0 leaves current untouched
func Approach(current, target, factor float64) float64 {
	if factor <= 0 {
		return current
	}
	if factor >= 1 {
		return target
	}
	return current + (target-current)*factor
}

// StepFactor converts a per-nominal-frame smoothing factor into the factor for a step of
// the given length in nominal frames, so exponential decay stays frame-rate independent
func StepFactor(factor, steps float64) float64 {
	if steps <= 0 || factor <= 0 {
		return 0
	}
	if factor >= 1 {
		return 1
	}
	if steps == 1 {
		return factor
	}
	return 1 - math.Pow(1-factor, steps)
}

// --- Geometry ---

// DistSq returns squared euclidean distance
func DistSq(x0, y0, x1, y1 float64) float64 {
	dx := x1 - x0
	dy := y1 - y0
	return dx*dx + dy*dy
}

// Dist returns euclidean distance
func Dist(x0, y0, x1, y1 float64) float64 {
	return math.Sqrt(DistSq(x0, y0, x1, y1))
}

// Polar returns the point at angle theta (radians) and radius r around (cx, cy)
func Polar(cx, cy, r, theta float64) (float64, float64) {
	return cx + r*math.Cos(theta), cy + r*math.Sin(theta)
}

// --- Randomness ---

// FastRand is a xorshift64 generator, not safe for concurrent use
type FastRand struct {
	state uint64
}

func NewFastRand(seed uint64) *FastRand {
	if seed == 0 {
		seed = 1
	}
	return &FastRand{state: seed}
}

func (r *FastRand) Next() uint64 {
	x := r.state
	x ^= x << 13
	x ^= x >> 17
	x ^= x << 5
	r.state = x
	return x
}

func (r *FastRand) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return int(r.Next() % uint64(n))
}

// Float64 returns a value in [0, 1)
func (r *FastRand) Float64() float64 {
	return float64(r.Next()>>11) / (1 << 53)
}

// Mix64 is the splitmix64 finalizer, used to derive independent streams from one seed
func Mix64(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}

// Unit returns a deterministic value in [0, 1) for (seed, salt)
func Unit(seed, salt uint64) float64 {
	return float64(Mix64(seed^Mix64(salt))>>11) / (1 << 53)
}
