package choreo

import (
	"errors"
	"fmt"
	"math"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/lixenwraith/scrollglow/particle"
	"github.com/lixenwraith/scrollglow/progress"
	"github.com/lixenwraith/scrollglow/render"
	"github.com/lixenwraith/scrollglow/stage"
	"github.com/lixenwraith/scrollglow/status"
	"github.com/lixenwraith/scrollglow/vmath"
)

var (
	ErrDisposed = errors.New("session disposed")
	ErrNoCanvas = errors.New("session requires a canvas")
)

// StageChange describes one stage edge by sequence position and kind
type StageChange struct {
	From, To         int
	FromKind, ToKind stage.Kind
}

// StageChangeFunc observes a stage edge, it runs inside the frame that crossed it
// A hook may call Dispose; the frame then finishes without drawing
type StageChangeFunc func(c StageChange)

// Session owns one mounted animation: particle pool, frame loop and viewport subscription
// Particle state is only touched from the frame callback or by direct calls while the loop is stopped
type Session struct {
	id  string
	log *zap.Logger

	pool     *particle.Pool
	stages   []stage.Kind
	accents  []render.RGB
	weights  []float64
	tun      Tunables
	progress progress.Port
	canvas   render.Canvas

	vp      Viewport
	scale   float64
	mounted bool
	sel     stage.Selection
	clockMs float64
	points  []Point
	linker  linker
	hooks   []StageChangeFunc

	loop      *Loop
	cancelSub func()
	pending   atomic.Pointer[Viewport]

	disposed atomic.Bool
	inHook   atomic.Bool
	released chan struct{}

	stats   *status.Registry
	metrics metrics
	skipLog rate.Sometimes
}

// metrics are cached registry handles written by the frame goroutine
type metrics struct {
	rendered  *atomic.Int64
	skipped   *atomic.Int64
	recovered *atomic.Int64
	retargets *atomic.Int64
	edges     *status.Float
	progress  *status.Float
	weight    *status.Float
	stage     *status.Text
}

// Metric names published to the registry
const (
	MetricRendered   = "frames.rendered"
	MetricSkipped    = "frames.skipped"
	MetricRecovered  = "frames.recovered"
	MetricRetargets  = "targets.regenerated"
	MetricEdges      = "links.drawn"
	MetricProgress   = "progress"
	MetricLinkWeight = "links.weight"
	MetricStage      = "stage"
)

func newMetrics(r *status.Registry) metrics {
	return metrics{
		rendered:  r.Counters.Handle(MetricRendered),
		skipped:   r.Counters.Handle(MetricSkipped),
		recovered: r.Counters.Handle(MetricRecovered),
		retargets: r.Counters.Handle(MetricRetargets),
		edges:     r.Gauges.Handle(MetricEdges),
		progress:  r.Gauges.Handle(MetricProgress),
		weight:    r.Gauges.Handle(MetricLinkWeight),
		stage:     r.Labels.Handle(MetricStage),
	}
}

// New acquires the pool, primes targets for the current progress and subscribes to resizes
// The frame loop is created stopped, call Start to schedule frames
func New(opts Options) (*Session, error) {
	if opts.Canvas == nil {
		return nil, ErrNoCanvas
	}
	if len(opts.Stages) == 0 {
		opts.Stages = stage.Sequence()
	}
	for _, k := range opts.Stages {
		if !k.Valid() {
			return nil, fmt.Errorf("stage sequence: %s is not a known stage", k)
		}
	}
	if len(opts.Styles) != 0 && len(opts.Styles) != len(opts.Stages) {
		return nil, fmt.Errorf("stage styles: got %d for %d stages", len(opts.Styles), len(opts.Stages))
	}
	if err := opts.Tunables.Validate(); err != nil {
		return nil, fmt.Errorf("tunables: %w", err)
	}

	pool, err := particle.NewPool(opts.Particles)
	if err != nil {
		return nil, fmt.Errorf("particle pool: %w", err)
	}

	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	stats := opts.Stats
	if stats == nil {
		stats = status.NewRegistry()
	}
	id := uuid.NewString()

	s := &Session{
		id:       id,
		log:      log.With(zap.String("session", id)),
		pool:     pool,
		stages:   append([]stage.Kind(nil), opts.Stages...),
		accents:  make([]render.RGB, len(opts.Stages)),
		weights:  make([]float64, len(opts.Stages)),
		tun:      opts.Tunables,
		progress: opts.Progress,
		canvas:   opts.Canvas,
		points:   make([]Point, pool.Len()),
		scale:    1,
		released: make(chan struct{}),
		stats:    stats,
		metrics:  newMetrics(stats),
		skipLog:  rate.Sometimes{First: 1, Interval: 5 * time.Second},
	}

	for i, k := range s.stages {
		style := k.DefaultStyle()
		if len(opts.Styles) != 0 {
			style = opts.Styles[i]
		}
		s.accents[i] = style.Accent
		s.weights[i] = style.LinkWeight
	}

	s.sel = stage.Select(progress.Read(s.progress), len(s.stages))
	s.metrics.stage.Set(s.ActiveStage().String())
	s.applyViewport(opts.Viewport)
	if !s.vp.Valid() {
		if ctx, ok := s.canvas.Context(); ok && ctx != nil {
			w, h := ctx.Size()
			s.applyViewport(Viewport{Width: w, Height: h, PixelRatio: opts.Viewport.PixelRatio})
		}
	}
	s.regenerate()
	if s.vp.Valid() {
		s.mount()
	}

	s.loop = NewLoop(opts.FrameInterval, opts.Now, s.Frame)
	if opts.Viewports != nil {
		s.cancelSub = opts.Viewports.Subscribe(func(v Viewport) {
			s.pending.Store(&v)
		})
	}

	s.log.Info("session created",
		zap.Int("particles", pool.Len()),
		zap.Int("stages", len(s.stages)),
		zap.Float64("width", s.vp.Width),
		zap.Float64("height", s.vp.Height),
		zap.String("stage", s.ActiveStage().String()),
	)
	return s, nil
}

// ID returns the session identifier used in logs
func (s *Session) ID() string {
	return s.id
}

// OnStageChange registers a stage edge listener, must be called before Start
func (s *Session) OnStageChange(fn StageChangeFunc) {
	s.hooks = append(s.hooks, fn)
}

// Start schedules frames on the session loop
func (s *Session) Start() error {
	if s.disposed.Load() || !s.loop.Start() {
		return ErrDisposed
	}
	return nil
}

// Dispose cancels the frame loop, waits for it and releases the viewport subscription
// No draw call reaches the canvas after Dispose returns. Called from a stage hook it only
// cancels, the running frame skips its draw and the loop exits once the frame returns
func (s *Session) Dispose() {
	fromHook := s.inHook.Load()
	if !s.disposed.CompareAndSwap(false, true) {
		if !fromHook {
			<-s.released
		}
		return
	}

	if fromHook {
		s.loop.Cancel()
	} else {
		s.loop.Stop()
	}
	if s.cancelSub != nil {
		s.cancelSub()
		s.cancelSub = nil
	}
	s.log.Info("session disposed",
		zap.Int64("rendered", s.metrics.rendered.Load()),
		zap.Int64("skipped", s.metrics.skipped.Load()),
		zap.Int64("recovered", s.metrics.recovered.Load()),
		zap.Bool("from_hook", fromHook),
	)
	close(s.released)
}

// Disposed reports whether Dispose has been called
func (s *Session) Disposed() bool {
	return s.disposed.Load()
}

// Frame is one scheduled callback: pending resize, Update, Render
// It never panics; a failing frame is logged and the next one runs normally
func (s *Session) Frame(dt time.Duration) {
	if s.disposed.Load() {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			s.metrics.recovered.Add(1)
			s.log.Error("frame recovered from panic", zap.Any("panic", r), zap.Stack("stack"))
		}
	}()

	if vp := s.pending.Swap(nil); vp != nil {
		s.Resize(*vp)
	}
	s.Update(dt)
	if s.disposed.Load() {
		return
	}
	s.Render()
}

// Update advances selection, smoothing, phase and drift by dt
func (s *Session) Update(dt time.Duration) {
	n := len(s.stages)
	p := progress.Read(s.progress)
	sel := stage.Select(p, n)
	s.metrics.progress.Set(p)
	from := s.sel.Index
	s.sel = sel
	if sel.Index != from {
		s.retarget(from, sel.Index)
		s.notifyStage(from, sel.Index)
	}

	steps := vmath.Clamp(float64(dt)/float64(NominalFrame), 0, float64(MaxFrameStep)/float64(NominalFrame))
	posK := vmath.StepFactor(s.tun.PositionSmoothing, steps)
	attrK := vmath.StepFactor(s.tun.AttrSmoothing, steps)
	s.clockMs += steps * float64(NominalFrame) / float64(time.Millisecond)

	t := &s.tun
	drift := t.DriftAmplitude * s.scale
	for i := 0; i < s.pool.Len(); i++ {
		p := s.pool.At(i)
		goal := p.Target.Lerp(p.Next, sel.Fraction)

		p.Current.X = vmath.Approach(p.Current.X, goal.X, posK)
		p.Current.Y = vmath.Approach(p.Current.Y, goal.Y, posK)
		p.Current.Brightness = vmath.Approach(p.Current.Brightness, goal.Brightness, attrK)
		p.Current.Size = vmath.Approach(p.Current.Size, goal.Size, attrK)
		p.Phase += t.PhaseStep * steps

		s.points[i] = Point{
			X:          p.Current.X + drift*math.Sin(s.clockMs*t.DriftFreqX+p.Phase),
			Y:          p.Current.Y + drift*math.Cos(s.clockMs*t.DriftFreqY+p.Phase*1.3),
			Brightness: vmath.Clamp01(p.Current.Brightness),
			Size:       math.Max(p.Current.Size, 0) * s.scale,
		}
	}
}

// Render draws ambient glow, connective edges, then particles
// An unavailable canvas skips the frame without error
func (s *Session) Render() {
	ctx, ok := s.canvas.Context()
	if !ok || ctx == nil {
		s.metrics.skipped.Add(1)
		s.skipLog.Do(func() {
			s.log.Debug("rendering context unavailable, frame skipped", zap.Int64("skipped", s.metrics.skipped.Load()))
		})
		return
	}

	t := &s.tun
	w, h := ctx.Size()
	accent := s.Accent()

	ctx.Clear(t.Background)
	ctx.RadialGlow(w/2, h/2, math.Max(w, h)*0.6, accent, t.AmbientAlpha)

	lp := LinkParams{
		Distance:      t.LinkDistance * s.scale,
		MinBrightness: t.LinkMinBrightness,
		Alpha:         t.LinkAlpha,
		Global:        s.LinkWeight(),
	}
	s.metrics.weight.Set(lp.Global)
	width := t.LinkWidth * s.scale
	edges := s.linker.links(s.points, lp, func(e Edge) {
		a, b := &s.points[e.A], &s.points[e.B]
		ctx.Line(a.X, a.Y, b.X, b.Y, width, accent, e.Alpha)
	})
	s.metrics.edges.Set(float64(edges))

	core := render.Lerp(accent, render.RGBWhite, 0.55)
	for i := range s.points {
		p := &s.points[i]
		if p.Brightness <= 0.005 {
			continue
		}
		ctx.RadialGlow(p.X, p.Y, p.Size*t.GlowScale, accent, p.Brightness*t.GlowAlpha)
		ctx.Disc(p.X, p.Y, p.Size, core, p.Brightness)
	}

	if err := ctx.Present(); err != nil {
		s.log.Debug("present failed", zap.Error(err))
		return
	}
	s.metrics.rendered.Add(1)
}

// Resize applies a new viewport and regenerates targets for the active selection in place
// Particle identity (index, seed, signal, cluster, phase) is untouched
func (s *Session) Resize(vp Viewport) {
	if !vp.Valid() {
		s.log.Debug("ignoring empty viewport", zap.Float64("width", vp.Width), zap.Float64("height", vp.Height))
		return
	}
	s.applyViewport(vp)
	s.regenerate()
	if !s.mounted {
		s.mount()
	}
	s.log.Debug("viewport resized",
		zap.Float64("width", vp.Width),
		zap.Float64("height", vp.Height),
		zap.Float64("ratio", vp.Ratio()),
	)
}

// applyViewport stores vp and resizes a canvas that owns a backing store
func (s *Session) applyViewport(vp Viewport) {
	if !vp.Valid() {
		return
	}
	s.vp = vp
	s.scale = s.tun.Scale(vp)
	if r, ok := s.canvas.(render.Resizer); ok {
		r.Resize(int(math.Round(vp.Width)), int(math.Round(vp.Height)), vp.Ratio())
	}
}

// mount places particles on their blended goal, the only discontinuous move
func (s *Session) mount() {
	s.pool.Snap(s.sel.Fraction)
	s.mounted = true
}

// regenerate rewrites both cached targets for the current selection
func (s *Session) regenerate() {
	n := len(s.stages)
	cur := s.stages[s.sel.Index]
	next := s.stages[s.sel.Next(n)]
	layout := s.vp.layout()
	for i := 0; i < s.pool.Len(); i++ {
		m := s.pool.Meta(i)
		p := s.pool.At(i)
		p.Target = cur.Generate(m, layout)
		p.Next = next.Generate(m, layout)
	}
	s.metrics.retargets.Add(1)
}

// retarget moves cached targets across a stage edge, shifting instead of regenerating on single steps
func (s *Session) retarget(from, to int) {
	n := len(s.stages)
	next := min(to+1, n-1)
	layout := s.vp.layout()

	for i := 0; i < s.pool.Len(); i++ {
		m := s.pool.Meta(i)
		p := s.pool.At(i)
		switch to {
		case from + 1:
			p.Target = p.Next
			p.Next = s.stages[next].Generate(m, layout)
		case from - 1:
			p.Next = p.Target
			p.Target = s.stages[to].Generate(m, layout)
		default:
			p.Target = s.stages[to].Generate(m, layout)
			p.Next = s.stages[next].Generate(m, layout)
		}
	}
	s.metrics.retargets.Add(1)
}

func (s *Session) notifyStage(from, to int) {
	fk, tk := s.stages[from], s.stages[to]
	s.metrics.stage.Set(tk.String())
	s.log.Info("stage changed",
		zap.String("from", fk.String()),
		zap.String("to", tk.String()),
		zap.Float64("scaled", s.sel.Scaled),
	)
	if len(s.hooks) == 0 {
		return
	}
	c := StageChange{From: from, To: to, FromKind: fk, ToKind: tk}
	s.inHook.Store(true)
	defer s.inHook.Store(false)
	for _, h := range s.hooks {
		h(c)
	}
}

// --- Accessors, valid from the frame goroutine or while the loop is stopped ---

// Pool returns the particle store
func (s *Session) Pool() *particle.Pool {
	return s.pool
}

// Points returns the drawn positions of the last Update
func (s *Session) Points() []Point {
	return s.points
}

// Selection returns the stage selection of the last Update
func (s *Session) Selection() stage.Selection {
	return s.sel
}

// ActiveStage returns the stage kind of the last Update
func (s *Session) ActiveStage() stage.Kind {
	return s.stages[s.sel.Index]
}

// Stages returns the configured stage sequence
func (s *Session) Stages() []stage.Kind {
	return s.stages
}

// Viewport returns the applied viewport
func (s *Session) Viewport() Viewport {
	return s.vp
}

// Accent returns the blended accent color of the current selection
func (s *Session) Accent() render.RGB {
	return stage.RampRGB(s.accents, s.sel)
}

// LinkWeight returns the blended connective line weight of the current selection
func (s *Session) LinkWeight() float64 {
	return stage.Ramp(s.weights, s.sel)
}

// --- Counters, safe from any goroutine ---

func (s *Session) RenderedFrames() uint64  { return uint64(s.metrics.rendered.Load()) }
func (s *Session) SkippedFrames() uint64   { return uint64(s.metrics.skipped.Load()) }
func (s *Session) RecoveredPanics() uint64 { return uint64(s.metrics.recovered.Load()) }
func (s *Session) Retargets() uint64       { return uint64(s.metrics.retargets.Load()) }
func (s *Session) LoopFrames() uint64      { return s.loop.Frames() }

// Scale returns the factor applied to pixel tunables for the current viewport
func (s *Session) Scale() float64 { return s.scale }

// Stats returns the metrics registry the session publishes to
func (s *Session) Stats() *status.Registry { return s.stats }
