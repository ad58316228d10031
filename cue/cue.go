// Package cue synthesizes the installation's audio cues with beep. The
// engine only knows the CuePlayer interface; everything speaker-shaped
// lives here.
package cue

import (
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
)

const sampleRate = beep.SampleRate(48000)

// Player plays the epic chime and warning blip on the default audio device.
type Player struct {
	mu          sync.Mutex
	mixer       *beep.Mixer
	initialized bool
}

// NewPlayer creates an uninitialized player. Call Initialize before use;
// cues on an uninitialized player are silently dropped so a machine with no
// audio device still runs the installation.
func NewPlayer() *Player {
	return &Player{mixer: &beep.Mixer{}}
}

// Initialize opens the speaker and starts the mixer.
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

// EpicCue plays the epic sequence's rising chime: a four-note sine arpeggio.
func (p *Player) EpicCue() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.initialized {
		return
	}
	// C5, E5, G5, C6.
	notes := []float64{523.25, 659.25, 783.99, 1046.50}
	seq := make([]beep.Streamer, len(notes))
	for i, f := range notes {
		seq[i] = newTone(f, 180*time.Millisecond, waveSine)
	}
	p.mixer.Add(beep.Seq(seq...))
}

// WarningCue plays a short low square-wave blip.
func (p *Player) WarningCue() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.initialized {
		return
	}
	p.mixer.Add(newTone(220, 120*time.Millisecond, waveSquare))
}

// Close stops all sounds. beep exposes no speaker teardown, so clearing the
// mixer is the release; Close is idempotent.
func (p *Player) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.initialized {
		return nil
	}
	p.mixer.Clear()
	p.initialized = false
	return nil
}

type waveType int

const (
	waveSine waveType = iota
	waveSquare
)

// tone is a fixed-duration oscillator with a short linear fade-out to avoid
// clicks at note boundaries.
type tone struct {
	freq     float64
	phase    float64
	duration int
	position int
	wave     waveType
}

func newTone(freq float64, d time.Duration, wave waveType) beep.Streamer {
	return &tone{freq: freq, duration: sampleRate.N(d), wave: wave}
}

func (t *tone) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if t.position >= t.duration {
			return i, false
		}

		var val float64
		switch t.wave {
		case waveSine:
			val = math.Sin(2 * math.Pi * t.phase)
		case waveSquare:
			if t.phase < 0.5 {
				val = 0.6
			} else {
				val = -0.6
			}
		}

		// Fade the final 10% out linearly.
		if rem := t.duration - t.position; rem < t.duration/10 {
			val *= float64(rem) / (float64(t.duration) / 10)
		}

		samples[i][0] = val
		samples[i][1] = val

		t.phase += t.freq / float64(sampleRate)
		t.phase -= math.Floor(t.phase)
		t.position++
	}
	return len(samples), true
}

func (t *tone) Err() error { return nil }
