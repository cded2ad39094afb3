// Package audio plays a short tone when particles react.
package audio

import (
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"
)

// Settings shapes the reaction tone.
type Settings struct {
	SampleRate int
	Frequency  float64
	Duration   time.Duration
	Cooldown   time.Duration
	Volume     float64 // linear gain, 0..1
}

// Cue plays a rate-limited sine tone. The speaker is initialized on first use;
// if that fails the cue stays silent for the rest of the run.
type Cue struct {
	mu       sync.Mutex
	settings Settings
	rate     beep.SampleRate
	mixer    *beep.Mixer

	initialized bool
	failed      bool
	last        time.Time
}

// NewCue creates a cue. Nothing touches the audio device until Trigger.
func NewCue(s Settings) *Cue {
	if s.SampleRate <= 0 {
		s.SampleRate = 44100
	}
	if s.Frequency <= 0 {
		s.Frequency = 440
	}
	if s.Duration <= 0 {
		s.Duration = 40 * time.Millisecond
	}
	if s.Volume <= 0 || s.Volume > 1 {
		s.Volume = 0.3
	}
	return &Cue{
		settings: s,
		rate:     beep.SampleRate(s.SampleRate),
		mixer:    &beep.Mixer{},
	}
}

// Tone builds a fresh streamer for one cue.
func (c *Cue) Tone() (beep.Streamer, error) {
	sine, err := generators.SineTone(c.rate, c.settings.Frequency)
	if err != nil {
		return nil, fmt.Errorf("building %.0f Hz tone: %w", c.settings.Frequency, err)
	}
	tone := beep.Take(c.samples(), sine)
	return &effects.Volume{Streamer: tone, Base: 2, Volume: math.Log2(c.settings.Volume)}, nil
}

// samples returns the length of one tone in samples.
func (c *Cue) samples() int {
	return c.rate.N(c.settings.Duration)
}

// Trigger plays the tone unless the cooldown has not elapsed. It reports
// whether a tone was queued.
func (c *Cue) Trigger() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.allow(time.Now()) {
		return false
	}
	if !c.ensureSpeaker() {
		return false
	}

	tone, err := c.Tone()
	if err != nil {
		slog.Warn("audio cue disabled", "error", err)
		c.failed = true
		return false
	}
	speaker.Lock()
	c.mixer.Add(tone)
	speaker.Unlock()
	return true
}

// allow applies the cooldown and records the attempt. Caller holds mu.
func (c *Cue) allow(now time.Time) bool {
	if c.failed {
		return false
	}
	if !c.last.IsZero() && now.Sub(c.last) < c.settings.Cooldown {
		return false
	}
	c.last = now
	return true
}

// ensureSpeaker initializes the output device once. Caller holds mu.
func (c *Cue) ensureSpeaker() bool {
	if c.initialized {
		return true
	}
	if err := speaker.Init(c.rate, c.rate.N(100*time.Millisecond)); err != nil {
		slog.Warn("audio initialization failed, continuing without sound", "error", err)
		c.failed = true
		return false
	}
	speaker.Play(c.mixer)
	c.initialized = true
	return true
}

// Close silences pending tones.
func (c *Cue) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.initialized {
		return
	}
	speaker.Lock()
	c.mixer.Clear()
	speaker.Unlock()
	c.initialized = false
}
