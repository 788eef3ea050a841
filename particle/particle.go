// Package particle holds the fixed-cardinality pool of animated points
package particle

import (
	"errors"
	"fmt"
	"math"

	"github.com/lixenwraith/scrollglow/vmath"
)

// Attrs is the animated appearance of a particle in logical pixels
type Attrs struct {
	X, Y       float64
	Brightness float64 // [0,1]
	Size       float64 // radius
}

// Lerp blends two attribute sets per field
func (a Attrs) Lerp(b Attrs, t float64) Attrs {
	return Attrs{
		X:          vmath.Lerp(a.X, b.X, t),
		Y:          vmath.Lerp(a.Y, b.Y, t),
		Brightness: vmath.Lerp(a.Brightness, b.Brightness, t),
		Size:       vmath.Lerp(a.Size, b.Size, t),
	}
}

// Particle is one point entity
// Index, Seed, Signal and Cluster are fixed at creation; Phase only grows
type Particle struct {
	Index   int
	Seed    uint64
	Signal  bool
	Cluster int
	Phase   float64

	Current Attrs
	Target  Attrs // active stage
	Next    Attrs // following stage, equal to Target on the last stage
}

// Meta is the read-only identity view handed to target generators
type Meta struct {
	Index    int
	Count    int
	Clusters int
	Seed     uint64
	Signal   bool
	Cluster  int
}

// Options configures pool creation
type Options struct {
	Count       int
	SignalEvery int // every Nth particle is a signal particle, 0 disables
	Clusters    int
	Seed        uint64
}

// DefaultOptions returns the pool layout used by the landing animation
func DefaultOptions() Options {
	return Options{
		Count:       300,
		SignalEvery: 6,
		Clusters:    5,
		Seed:        0x5eed,
	}
}

var ErrEmptyPool = errors.New("particle count must be positive")

// Pool owns the particle records, its length never changes after creation
type Pool struct {
	particles []Particle
	clusters  int
}

// NewPool creates count particles with identity derived from opts.Seed
func NewPool(opts Options) (*Pool, error) {
	if opts.Count <= 0 {
		return nil, ErrEmptyPool
	}
	if opts.Clusters <= 0 {
		return nil, fmt.Errorf("cluster count %d: must be positive", opts.Clusters)
	}
	if opts.SignalEvery < 0 {
		return nil, fmt.Errorf("signal interval %d: must not be negative", opts.SignalEvery)
	}

	rng := vmath.NewFastRand(opts.Seed)
	ps := make([]Particle, opts.Count)
	for i := range ps {
		seed := vmath.Mix64(rng.Next())
		ps[i] = Particle{
			Index:   i,
			Seed:    seed,
			Signal:  opts.SignalEvery > 0 && i%opts.SignalEvery == 0,
			Cluster: i % opts.Clusters,
			Phase:   vmath.Unit(seed, 0) * 2 * math.Pi,
		}
	}

	return &Pool{particles: ps, clusters: opts.Clusters}, nil
}

// Len returns pool cardinality
func (p *Pool) Len() int {
	return len(p.particles)
}

// At returns a pointer into the pool, callers must not retain it past the owning frame
func (p *Pool) At(i int) *Particle {
	return &p.particles[i]
}

// Each visits every particle in index order
func (p *Pool) Each(fn func(*Particle)) {
	for i := range p.particles {
		fn(&p.particles[i])
	}
}

// Meta returns the generator view of particle i
func (p *Pool) Meta(i int) Meta {
	pt := &p.particles[i]
	return Meta{
		Index:    pt.Index,
		Count:    len(p.particles),
		Clusters: p.clusters,
		Seed:     pt.Seed,
		Signal:   pt.Signal,
		Cluster:  pt.Cluster,
	}
}

// SignalCount returns the number of signal particles
func (p *Pool) SignalCount() int {
	n := 0
	for i := range p.particles {
		if p.particles[i].Signal {
			n++
		}
	}
	return n
}

// Snap places every particle on the blend of its cached targets, used on first mount only
func (p *Pool) Snap(fraction float64) {
	for i := range p.particles {
		pt := &p.particles[i]
		pt.Current = pt.Target.Lerp(pt.Next, fraction)
	}
}
