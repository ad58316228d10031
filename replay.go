package arbor

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ReplayFrame is one recorded detection: a timestamp and zero or one hand as
// 21 [x, y, z] triples. An empty hand means no hand was visible.
type ReplayFrame struct {
	At   float64      `yaml:"at"`
	Hand [][3]float64 `yaml:"hand,omitempty"`
}

// ReplayScript is a YAML-encoded landmark recording. The operator console
// and the tests drive the engine from scripts instead of a live camera.
type ReplayScript struct {
	Frames []ReplayFrame `yaml:"frames"`
}

// ReplayProvider plays a recorded landmark stream back as a
// LandmarkProvider. Detect returns the most recent frame at or before the
// requested time, so a rate-capped caller simply re-reads the latest frame.
type ReplayProvider struct {
	frames []ReplayFrame
	idx    int
	closed bool
}

// NewReplayProvider creates a provider over script. Frames must be in
// ascending timestamp order.
func NewReplayProvider(script ReplayScript) *ReplayProvider {
	return &ReplayProvider{frames: script.Frames, idx: -1}
}

// LoadReplay reads a YAML replay script from path.
func LoadReplay(path string) (*ReplayProvider, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("arbor: read replay script: %w", err)
	}
	var script ReplayScript
	if err := yaml.Unmarshal(data, &script); err != nil {
		return nil, fmt.Errorf("arbor: parse replay script: %w", err)
	}
	return NewReplayProvider(script), nil
}

// Detect returns the hand from the latest frame at or before now, or no
// hand when the script hasn't started or the frame recorded none.
func (p *ReplayProvider) Detect(now float64) (Hand, error) {
	if p.closed {
		return nil, fmt.Errorf("arbor: replay provider is closed")
	}
	for p.idx+1 < len(p.frames) && p.frames[p.idx+1].At <= now {
		p.idx++
	}
	if p.idx < 0 {
		return nil, nil
	}
	raw := p.frames[p.idx].Hand
	if len(raw) == 0 {
		return nil, nil
	}
	hand := make(Hand, len(raw))
	for i, t := range raw {
		hand[i] = Vec3{X: t[0], Y: t[1], Z: t[2]}
	}
	return hand, nil
}

// Finished reports whether the script has no frames after now.
func (p *ReplayProvider) Finished(now float64) bool {
	return len(p.frames) == 0 || p.frames[len(p.frames)-1].At <= now
}

// Close marks the provider released. Idempotent.
func (p *ReplayProvider) Close() error {
	p.closed = true
	return nil
}
