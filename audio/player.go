// Package audio plays a short chime when the animation enters a new stage
package audio

import (
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/speaker"
)

// Player owns the speaker and a mixer chimes are added to
// Every method is a no-op until Initialize succeeds
type Player struct {
	mu          sync.Mutex
	mixer       *beep.Mixer
	volume      float64
	initialized bool
	played      int
}

// NewPlayer creates a player with volume in [0,1]
func NewPlayer(volume float64) *Player {
	return &Player{
		mixer:  &beep.Mixer{},
		volume: min(max(volume, 0), 1),
	}
}

// Initialize sets up the speaker, it is safe to call twice
func (p *Player) Initialize() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.initialized {
		return nil
	}

	if err := speaker.Init(sampleRate, sampleRate.N(time.Millisecond*100)); err != nil {
		return err
	}

	speaker.Play(p.mixer)
	p.initialized = true
	return nil
}

// Cleanup silences the mixer and marks the player unusable until the next Initialize
func (p *Player) Cleanup() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.initialized {
		return
	}

	speaker.Lock()
	p.mixer.Clear()
	speaker.Unlock()

	// beep has no speaker close, a cleared mixer streams silence
	p.initialized = false
}

// PlayStage queues the chime for a stage index
func (p *Player) PlayStage(stage int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.initialized || p.volume == 0 {
		return
	}

	s := p.streamer(stage)
	speaker.Lock()
	p.mixer.Add(s)
	speaker.Unlock()
	p.played++
}

// streamer scales the chime by volume, Gain multiplies by 1+Gain
func (p *Player) streamer(stage int) beep.Streamer {
	return &effects.Gain{Streamer: NewChime(sampleRate, stage), Gain: p.volume - 1}
}

// Played returns the number of chimes queued
func (p *Player) Played() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.played
}
