package choreo

import (
	"sync"

	"github.com/lixenwraith/scrollglow/render"
)

// recordingCanvas is both canvas and context, it logs draw ops of the current frame
type recordingCanvas struct {
	mu      sync.Mutex
	w, h    float64
	ready   bool
	panicOn string

	ops       []string
	calls     int
	presents  int
	lineAlpha []float64
}

func newRecordingCanvas(w, h float64) *recordingCanvas {
	return &recordingCanvas{w: w, h: h, ready: true}
}

func (c *recordingCanvas) setReady(ready bool) {
	c.mu.Lock()
	c.ready = ready
	c.mu.Unlock()
}

func (c *recordingCanvas) Context() (render.Context, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.ready {
		return nil, false
	}
	return c, true
}

func (c *recordingCanvas) record(op string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if op == c.panicOn {
		panic("draw failed: " + op)
	}
	c.ops = append(c.ops, op)
	c.calls++
}

func (c *recordingCanvas) Size() (float64, float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.w, c.h
}

func (c *recordingCanvas) Clear(render.RGB) {
	c.mu.Lock()
	c.ops = c.ops[:0]
	c.lineAlpha = c.lineAlpha[:0]
	c.mu.Unlock()
	c.record("clear")
}

func (c *recordingCanvas) RadialGlow(_, _, _ float64, _ render.RGB, _ float64) {
	c.record("glow")
}

func (c *recordingCanvas) Line(_, _, _, _, _ float64, _ render.RGB, alpha float64) {
	c.record("line")
	c.mu.Lock()
	c.lineAlpha = append(c.lineAlpha, alpha)
	c.mu.Unlock()
}

func (c *recordingCanvas) Disc(_, _, _ float64, _ render.RGB, _ float64) {
	c.record("disc")
}

func (c *recordingCanvas) Present() error {
	c.record("present")
	c.mu.Lock()
	c.presents++
	c.mu.Unlock()
	return nil
}

func (c *recordingCanvas) frameOps() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.ops...)
}

func (c *recordingCanvas) totalCalls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

func (c *recordingCanvas) count(op string) int {
	n := 0
	for _, o := range c.frameOps() {
		if o == op {
			n++
		}
	}
	return n
}

// fakeViewports delivers resizes on demand
type fakeViewports struct {
	mu       sync.Mutex
	fn       func(Viewport)
	canceled bool
}

func (f *fakeViewports) Subscribe(fn func(Viewport)) func() {
	f.mu.Lock()
	f.fn = fn
	f.mu.Unlock()
	return func() {
		f.mu.Lock()
		f.fn = nil
		f.canceled = true
		f.mu.Unlock()
	}
}

func (f *fakeViewports) emit(v Viewport) {
	f.mu.Lock()
	fn := f.fn
	f.mu.Unlock()
	if fn != nil {
		fn(v)
	}
}

func (f *fakeViewports) isCanceled() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.canceled
}
