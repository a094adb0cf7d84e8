// Package notify plays a short tone when a message arrives.
package notify

import (
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
	"github.com/pkg/errors"
)

const (
	sampleRate = beep.SampleRate(48000)

	chimeLength = 180 * time.Millisecond
	// Bursts of messages collapse into one chime
	minInterval = 250 * time.Millisecond
)

// Chime plays a two-note tone through the system speaker
type Chime struct {
	mu          sync.Mutex
	mixer       *beep.Mixer
	initialized bool
	last        time.Time
	now         func() time.Time
}

// NewChime creates an uninitialized chime; Notify is a no-op until Init succeeds
func NewChime() *Chime {
	return &Chime{
		mixer: &beep.Mixer{},
		now:   time.Now,
	}
}

// Init opens the audio device
func (c *Chime) Init() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.initialized {
		return nil
	}

	if err := speaker.Init(sampleRate, sampleRate.N(100*time.Millisecond)); err != nil {
		return errors.Wrap(err, "init speaker")
	}

	speaker.Play(c.mixer)
	c.initialized = true
	return nil
}

// Notify queues one chime unless another started within minInterval
func (c *Chime) Notify() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.initialized {
		return
	}
	now := c.now()
	if !c.last.IsZero() && now.Sub(c.last) < minInterval {
		return
	}
	c.last = now

	tone := beep.Take(sampleRate.N(chimeLength), NewChimeGenerator(sampleRate))
	speaker.Lock()
	c.mixer.Add(tone)
	speaker.Unlock()
}

// Close stops playback and releases the device
func (c *Chime) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.initialized {
		return
	}

	speaker.Lock()
	c.mixer.Clear()
	speaker.Unlock()
	speaker.Close()
	c.initialized = false
}

// ChimeGenerator produces an A5 to E6 step with an exponential decay
type ChimeGenerator struct {
	sr  beep.SampleRate
	pos int
}

func NewChimeGenerator(sr beep.SampleRate) *ChimeGenerator {
	return &ChimeGenerator{sr: sr}
}

func (g *ChimeGenerator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		t := float64(g.pos) / float64(g.sr)

		freq := 880.0
		if t > 0.06 {
			freq = 1318.5
		}
		envelope := math.Exp(-t * 18)
		sample := 0.3 * envelope * math.Sin(2*math.Pi*freq*t)

		samples[i][0] = sample
		samples[i][1] = sample
		g.pos++
	}
	return len(samples), true
}

func (g *ChimeGenerator) Err() error {
	return nil
}

// Nop discards notifications
type Nop struct{}

func (Nop) Notify() {}
