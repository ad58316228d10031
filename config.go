package arbor

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Installation defaults. They live here so a site operator can retune them
// in YAML without rebuilding.
const (
	DefaultEaseRate        = 0.05
	DefaultTextEaseRate    = 0.08
	DefaultRepulsionRadius = 18.0
	DefaultTapSeconds      = 0.3
	DefaultHoldSeconds     = 3.0
	DefaultClassifyHz      = 10.0
	DefaultGoldSeconds     = 10.0
)

// Config is the full engine configuration.
type Config struct {
	// Seed drives every random draw (formations, photo targets, random
	// select). Zero means "pick from entropy" at engine creation.
	Seed int64 `yaml:"seed"`

	Tree   TreeShape     `yaml:"tree"`
	Groups []GroupConfig `yaml:"groups"`

	// EaseRate is the per-tick exponential smoothing rate toward targets;
	// TextEaseRate replaces it during text formation, where faster
	// convergence is needed for legible text inside the window.
	EaseRate     float64 `yaml:"ease_rate"`
	TextEaseRate float64 `yaml:"text_ease_rate"`
	// RepulsionRadius is how close a particle must be to the repulsion
	// point to be nudged away.
	RepulsionRadius float64 `yaml:"repulsion_radius"`

	// PhotoShell is the scatter radius band for photo cards.
	PhotoShell Range `yaml:"photo_shell"`
	// FocusDistance is how far in front of the camera the focused card
	// floats.
	FocusDistance float64 `yaml:"focus_distance"`

	Glyph   GlyphConfig   `yaml:"glyph"`
	Touch   TouchConfig   `yaml:"touch"`
	Gesture GestureConfig `yaml:"gesture"`
	Epic    EpicConfig    `yaml:"epic"`
	Camera  CameraConfig  `yaml:"camera"`

	// ClassifyHz caps gesture classifications per second so vision cost
	// never delays rendering.
	ClassifyHz float64 `yaml:"classify_hz"`
	// GoldModeSeconds is how long the gold emphasis state lasts.
	GoldModeSeconds float64 `yaml:"gold_mode_seconds"`

	// GestureRotateScale converts palm deviation to orbit radians per
	// classification tick; GestureZoomScale converts hand size to zoom
	// units per classification tick.
	GestureRotateScale float64 `yaml:"gesture_rotate_scale"`
	GestureZoomScale   float64 `yaml:"gesture_zoom_scale"`
}

// DefaultConfig returns the installation's stock tuning: roughly four
// thousand particles in five groups, the 18-second epic timeline, and the
// gesture thresholds from the interaction design.
func DefaultConfig() *Config {
	return &Config{
		Tree: TreeShape{Height: 60, BaseRadius: 22},
		Groups: []GroupConfig{
			{Name: "gold", Count: 1200, Shell: Range{40, 55}, Scale: Range{0.8, 1.4},
				RadiusScale: 1.0, SpinRate: Range{-0.8, 0.8}, GlyphEligible: true,
				Color: Color{1.0, 0.84, 0.25, 1}},
			{Name: "silver", Count: 1000, Shell: Range{55, 70}, Scale: Range{0.7, 1.2},
				RadiusScale: 1.0, SpinRate: Range{-0.8, 0.8}, GlyphEligible: true,
				Color: Color{0.85, 0.88, 0.95, 1}},
			{Name: "gem", Count: 600, Shell: Range{30, 40}, Scale: Range{0.9, 1.6},
				RadiusScale: 0.85, SpinRate: Range{-1.2, 1.2}, GlyphEligible: true,
				Color: Color{0.9, 0.2, 0.45, 1}},
			{Name: "trunk", Count: 400, Shell: Range{20, 30}, Scale: Range{1.0, 1.8},
				RadiusScale: 0.18, SpinRate: Range{-0.2, 0.2},
				Color: Color{0.45, 0.3, 0.16, 1}},
			{Name: "grass", Count: 800, Shell: Range{70, 85}, Scale: Range{0.5, 0.9},
				RadiusScale: 1.0, SpinRate: Range{-0.5, 0.5},
				Color: Color{0.25, 0.65, 0.3, 1}},
		},
		EaseRate:        DefaultEaseRate,
		TextEaseRate:    DefaultTextEaseRate,
		RepulsionRadius: DefaultRepulsionRadius,
		PhotoShell:      Range{25, 38},
		FocusDistance:   20,
		Glyph: GlyphConfig{
			Message: "MERRY CHRISTMAS",
			Spacing: 2.2,
			CenterY: 32,
		},
		Touch: TouchConfig{
			TapSeconds:     DefaultTapSeconds,
			DragDeadZone:   4,
			HoldSeconds:    DefaultHoldSeconds,
			Hotspot:        Rect{X: 860, Y: 20, Width: 120, Height: 120},
			RotatePerPixel: 0.008,
			ZoomPerPixel:   0.25,
		},
		Gesture: GestureConfig{
			ExtendRatio:        1.1,
			PinchThreshold:     0.05,
			VictoryHoldSeconds: 2.0,
			ThreeHoldSeconds:   3.0,
			TickSeconds:        1 / DefaultClassifyHz,
		},
		Epic: EpicConfig{
			Duration:      18,
			AttentionEnd:  3,
			BurstStart:    3,
			BurstEnd:      6,
			BurstInterval: 0.5,
			TextStart:     4,
			TextEnd:       16,
			ShakeStrength: 1.0,
		},
		Camera: CameraConfig{
			StartDistance: 120,
			MinDistance:   40,
			MaxDistance:   260,
			FOVDegrees:    50,
			Pitch:         0.25,
			LookAtHeight:  28,
			FrameMargin:   1.25,
		},
		ClassifyHz:         DefaultClassifyHz,
		GoldModeSeconds:    DefaultGoldSeconds,
		GestureRotateScale: 0.06,
		GestureZoomScale:   3.0,
	}
}

// LoadConfig reads a YAML config from path, layered over the defaults so a
// partial file only overrides what it names.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("arbor: read config: %w", err)
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("arbor: parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SaveConfig writes cfg as YAML to path.
func SaveConfig(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("arbor: encode config: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// Validate rejects configurations the engine cannot run with. Messages name
// the offending field so a site operator can fix the YAML.
func (c *Config) Validate() error {
	if len(c.Groups) == 0 {
		return fmt.Errorf("arbor: config needs at least one particle group")
	}
	for _, g := range c.Groups {
		if g.Count <= 0 {
			return fmt.Errorf("arbor: group %q count must be positive, got %d", g.Name, g.Count)
		}
	}
	if c.EaseRate <= 0 || c.EaseRate > 1 {
		return fmt.Errorf("arbor: ease_rate must be in (0, 1], got %g", c.EaseRate)
	}
	if c.TextEaseRate <= 0 || c.TextEaseRate > 1 {
		return fmt.Errorf("arbor: text_ease_rate must be in (0, 1], got %g", c.TextEaseRate)
	}
	if c.Epic.Duration <= 0 {
		return fmt.Errorf("arbor: epic duration must be positive, got %g", c.Epic.Duration)
	}
	if c.Epic.TextStart >= c.Epic.TextEnd || c.Epic.TextEnd > c.Epic.Duration {
		return fmt.Errorf("arbor: epic text window [%g, %g) must sit inside the %gs sequence",
			c.Epic.TextStart, c.Epic.TextEnd, c.Epic.Duration)
	}
	if c.ClassifyHz <= 0 {
		return fmt.Errorf("arbor: classify_hz must be positive, got %g", c.ClassifyHz)
	}
	if c.Touch.HoldSeconds <= 0 {
		return fmt.Errorf("arbor: touch hold_seconds must be positive, got %g", c.Touch.HoldSeconds)
	}
	if c.Gesture.VictoryHoldSeconds <= 0 {
		return fmt.Errorf("arbor: victory_hold_seconds must be positive, got %g", c.Gesture.VictoryHoldSeconds)
	}
	if c.Gesture.ThreeHoldSeconds <= 0 {
		return fmt.Errorf("arbor: three_hold_seconds must be positive, got %g", c.Gesture.ThreeHoldSeconds)
	}
	if c.Gesture.TickSeconds <= 0 {
		return fmt.Errorf("arbor: gesture tick_seconds must be positive, got %g", c.Gesture.TickSeconds)
	}
	return nil
}
