// Package progress provides scroll-progress sources for the choreography engine
package progress

import (
	"math"
	"sync"
	"time"

	"github.com/lixenwraith/scrollglow/vmath"
)

// Port reads the current scroll progress, nominally in [0,1]
type Port func() float64

// Sanitize maps any float onto [0,1], NaN reads as 0
func Sanitize(p float64) float64 {
	if math.IsNaN(p) {
		return 0
	}
	return vmath.Clamp01(p)
}

// Read samples a port, a nil port or a panicking one reads as 0
func Read(port Port) (p float64) {
	if port == nil {
		return 0
	}
	defer func() {
		if r := recover(); r != nil {
			p = 0
		}
	}()
	return Sanitize(port())
}

// Fixed returns a port that always reports p
func Fixed(p float64) Port {
	return func() float64 { return p }
}

// Sweep ping-pongs progress 0->1->0 once per period of wall time
type Sweep struct {
	Period time.Duration
	Now    func() time.Time

	start time.Time
}

// NewSweep creates a sweep starting at progress 0 now
func NewSweep(period time.Duration, now func() time.Time) *Sweep {
	if now == nil {
		now = time.Now
	}
	return &Sweep{Period: period, Now: now, start: now()}
}

// Progress implements Port
func (s *Sweep) Progress() float64 {
	if s.Period <= 0 {
		return 0
	}
	elapsed := s.Now().Sub(s.start)
	cycle := math.Mod(float64(elapsed)/float64(s.Period), 1)
	if cycle < 0 {
		cycle += 1
	}
	// Triangle wave
	if cycle < 0.5 {
		return cycle * 2
	}
	return 2 - cycle*2
}

// ScrollTrack models a page of Pages viewport heights scrolled by a host
// Writers and the frame reader may be on different goroutines
type ScrollTrack struct {
	mu       sync.Mutex
	pages    float64
	viewport int
	offset   int
}

// NewScrollTrack creates a track of the given page count, at least one page
func NewScrollTrack(pages float64) *ScrollTrack {
	return &ScrollTrack{pages: math.Max(pages, 1)}
}

// maxOffset is the scroll range, caller holds mu
func (t *ScrollTrack) maxOffset() int {
	return int(float64(t.viewport) * (t.pages - 1))
}

// Resize sets the viewport height in rows, preserving relative position
func (t *ScrollTrack) Resize(viewport int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	rel := 0.0
	if m := t.maxOffset(); m > 0 {
		rel = float64(t.offset) / float64(m)
	}
	t.viewport = max(viewport, 0)
	t.offset = int(math.Round(rel * float64(t.maxOffset())))
}

// Scroll moves the offset by delta rows and clamps to the range
func (t *ScrollTrack) Scroll(delta int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.offset = max(0, min(t.offset+delta, t.maxOffset()))
}

// Home scrolls to the top
func (t *ScrollTrack) Home() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.offset = 0
}

// End scrolls to the bottom
func (t *ScrollTrack) End() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.offset = t.maxOffset()
}

// SetProgress jumps to p of the range
func (t *ScrollTrack) SetProgress(p float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.offset = int(math.Round(Sanitize(p) * float64(t.maxOffset())))
}

// Viewport returns the viewport height in rows
func (t *ScrollTrack) Viewport() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.viewport
}

// Progress implements Port
func (t *ScrollTrack) Progress() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	m := t.maxOffset()
	if m <= 0 {
		return 0
	}
	return float64(t.offset) / float64(m)
}
