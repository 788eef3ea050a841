package choreo

import (
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/lixenwraith/scrollglow/particle"
	"github.com/lixenwraith/scrollglow/progress"
	"github.com/lixenwraith/scrollglow/render"
	"github.com/lixenwraith/scrollglow/stage"
	"github.com/lixenwraith/scrollglow/status"
)

// NominalFrame is the frame length all per-frame constants are tuned against
const NominalFrame = 16 * time.Millisecond

// MaxFrameStep caps dt so a stalled host does not teleport particles
const MaxFrameStep = 100 * time.Millisecond

// Tunables are the motion and render constants of one effect
type Tunables struct {
	PositionSmoothing float64 // per nominal frame, (0,1]
	AttrSmoothing     float64 // brightness and size, settles after position

	DriftAmplitude float64 // pixels
	DriftFreqX     float64 // radians per millisecond
	DriftFreqY     float64
	PhaseStep      float64 // added per nominal frame

	LinkDistance      float64 // pixels, strict upper bound
	LinkMinBrightness float64 // both ends must exceed
	LinkAlpha         float64 // local opacity factor
	LinkWidth         float64

	GlowScale    float64 // glow radius as a multiple of size
	GlowAlpha    float64
	AmbientAlpha float64
	Background   render.RGB

	// ReferenceExtent is the viewport short side the pixel constants are tuned for
	// Smaller viewports scale drift, sizes and links down with it, 0 disables scaling
	ReferenceExtent float64
}

// DefaultTunables returns the constants of the landing page hero effect
func DefaultTunables() Tunables {
	return Tunables{
		PositionSmoothing: 0.045,
		AttrSmoothing:     0.055,
		DriftAmplitude:    2.2,
		DriftFreqX:        0.0011,
		DriftFreqY:        0.0014,
		PhaseStep:         0.012,
		LinkDistance:      60,
		LinkMinBrightness: 0.15,
		LinkAlpha:         0.35,
		LinkWidth:         0.8,
		GlowScale:         4,
		GlowAlpha:         0.35,
		AmbientAlpha:      0.18,
		Background:        render.RGB{R: 8, G: 9, B: 16},
		ReferenceExtent:   600,
	}
}

// Scale returns the pixel tunable factor for vp, in (0,1]
func (t Tunables) Scale(vp Viewport) float64 {
	if t.ReferenceExtent <= 0 || !vp.Valid() {
		return 1
	}
	return math.Min(math.Min(vp.Width, vp.Height)/t.ReferenceExtent, 1)
}

// Validate checks tunables for values that break convergence or rendering
func (t Tunables) Validate() error {
	if t.PositionSmoothing <= 0 || t.PositionSmoothing > 1 {
		return fmt.Errorf("position smoothing %v: must be in (0,1]", t.PositionSmoothing)
	}
	if t.AttrSmoothing <= 0 || t.AttrSmoothing > 1 {
		return fmt.Errorf("attribute smoothing %v: must be in (0,1]", t.AttrSmoothing)
	}
	if t.LinkDistance <= 0 {
		return fmt.Errorf("link distance %v: must be positive", t.LinkDistance)
	}
	if t.ReferenceExtent < 0 {
		return fmt.Errorf("reference extent %v: must not be negative", t.ReferenceExtent)
	}
	if t.DriftAmplitude < 0 {
		return fmt.Errorf("drift amplitude %v: must not be negative", t.DriftAmplitude)
	}
	return nil
}

// Options configure a Session
type Options struct {
	Particles particle.Options
	Stages    []stage.Kind
	// Styles overrides per-stage accent and link weight, index-aligned with Stages
	Styles   []stage.Style
	Tunables Tunables

	Progress  progress.Port
	Canvas    render.Canvas
	Viewports ViewportSource // optional resize notifications
	Viewport  Viewport       // initial size

	FrameInterval time.Duration // loop period, defaults to NominalFrame
	Now           func() time.Time
	Logger        *zap.Logger
	Stats         *status.Registry // optional, a private registry is created when nil
}

// DefaultOptions returns options for the four-stage landing animation, minus its ports
func DefaultOptions() Options {
	return Options{
		Particles:     particle.DefaultOptions(),
		Stages:        stage.Sequence(),
		Tunables:      DefaultTunables(),
		FrameInterval: NominalFrame,
	}
}
