package terminal

import (
	"sync/atomic"

	"github.com/lixenwraith/scrollglow/progress"
)

// Controller turns host commands into scroll progress
// Manual scrolling drives a ScrollTrack; autoplay reads a Sweep until toggled off
type Controller struct {
	track    *progress.ScrollTrack
	sweep    *progress.Sweep
	step     int
	autoplay atomic.Bool
}

// NewController wires a track and sweep, step is rows per wheel notch
func NewController(track *progress.ScrollTrack, sweep *progress.Sweep, step int) *Controller {
	return &Controller{track: track, sweep: sweep, step: max(step, 1)}
}

// SetAutoplay switches the progress source
func (c *Controller) SetAutoplay(on bool) {
	if !on && c.autoplay.Load() && c.sweep != nil {
		// Hand the sweep position to the track so turning autoplay off does not jump
		c.track.SetProgress(c.sweep.Progress())
	}
	c.autoplay.Store(on && c.sweep != nil)
}

// Autoplay reports whether the sweep drives progress
func (c *Controller) Autoplay() bool {
	return c.autoplay.Load()
}

// Resize sets the track viewport in rows
func (c *Controller) Resize(rows int) {
	c.track.Resize(rows)
}

// Apply executes a command, manual scrolling leaves autoplay
func (c *Controller) Apply(cmd Command) {
	page := c.track.Viewport()
	switch cmd {
	case CmdToggleAutoplay:
		c.SetAutoplay(!c.Autoplay())
		return
	case CmdScrollUp, CmdScrollDown, CmdPageUp, CmdPageDown, CmdHome, CmdEnd:
		c.SetAutoplay(false)
	default:
		return
	}

	switch cmd {
	case CmdScrollUp:
		c.track.Scroll(-c.step)
	case CmdScrollDown:
		c.track.Scroll(c.step)
	case CmdPageUp:
		c.track.Scroll(-page)
	case CmdPageDown:
		c.track.Scroll(page)
	case CmdHome:
		c.track.Home()
	case CmdEnd:
		c.track.End()
	}
}

// Progress implements progress.Port
func (c *Controller) Progress() float64 {
	if c.autoplay.Load() {
		return c.sweep.Progress()
	}
	return c.track.Progress()
}
