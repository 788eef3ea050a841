package audio

import (
	"math"
	"time"

	"github.com/gopxl/beep"
)

const (
	sampleRate = beep.SampleRate(48000)

	// ChimeDuration is the length of one stage chime
	ChimeDuration = 350 * time.Millisecond

	chimeAttack = 10 * time.Millisecond
	chimeDecay  = 9.0 // exp(-t*decay) after attack
)

// pentatonic holds C major pentatonic pitches from C5, stage index picks one and wraps
var pentatonic = [...]float64{523.25, 587.33, 659.25, 783.99, 880.00, 1046.50}

// StagePitch returns the chime frequency for a stage index
func StagePitch(stage int) float64 {
	n := len(pentatonic)
	return pentatonic[((stage%n)+n)%n]
}

// Chime is a finite sine with a soft octave partial and an attack/decay envelope
type Chime struct {
	sr     beep.SampleRate
	freq   float64
	phase  float64
	pos    int
	length int
	attack int
}

// NewChime creates a chime for the stage index at the given sample rate
func NewChime(sr beep.SampleRate, stage int) *Chime {
	return &Chime{
		sr:     sr,
		freq:   StagePitch(stage),
		length: sr.N(ChimeDuration),
		attack: max(sr.N(chimeAttack), 1),
	}
}

func (c *Chime) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if c.pos >= c.length {
			return i, i > 0
		}

		var env float64
		if c.pos < c.attack {
			env = float64(c.pos) / float64(c.attack)
		} else {
			t := float64(c.pos-c.attack) / float64(c.sr)
			env = math.Exp(-t * chimeDecay)
		}

		// Peak |sin + 0.3 sin2| stays under 1.3
		val := env * (math.Sin(2*math.Pi*c.phase) + 0.3*math.Sin(4*math.Pi*c.phase)) / 1.3

		samples[i][0] = val
		samples[i][1] = val

		c.phase += c.freq / float64(c.sr)
		c.phase -= math.Floor(c.phase)
		c.pos++
	}
	return len(samples), true
}

func (c *Chime) Err() error { return nil }

// Len returns the total sample count
func (c *Chime) Len() int { return c.length }
