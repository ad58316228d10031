package arbor

// EpicConfig holds the epic sequence's timeline bounds, in seconds of
// sequence-elapsed time.
type EpicConfig struct {
	// Duration is the full sequence length.
	Duration float64 `yaml:"duration"`
	// AttentionEnd closes the camera-pulse + gold-flash window [0, AttentionEnd).
	AttentionEnd float64 `yaml:"attention_end"`
	// BurstStart/BurstEnd bound the intermittent colored-burst window.
	BurstStart float64 `yaml:"burst_start"`
	BurstEnd   float64 `yaml:"burst_end"`
	// BurstInterval is the spacing between burst spawns inside the window.
	BurstInterval float64 `yaml:"burst_interval"`
	// TextStart/TextEnd bound the text-formation override window.
	TextStart float64 `yaml:"text_start"`
	TextEnd   float64 `yaml:"text_end"`
	// ShakeStrength is the camera impulse fired at trigger time.
	ShakeStrength float64 `yaml:"shake_strength"`
}

// Directives is what the orchestrator asks of the rest of the engine on one
// tick. All fields are recomputed every Advance; Burst and Done are edges.
type Directives struct {
	Active bool
	// Rainbow tints particles for the whole sequence.
	Rainbow bool
	// GoldFlash and AttentionPulse are on during the opening window.
	GoldFlash      bool
	AttentionPulse bool
	// Burst requests one colored-particle burst spawn this tick.
	Burst bool
	// TextForming switches glyph-eligible groups to the glyph cloud and
	// hands the camera to adaptive framing.
	TextForming bool
	// Done is set on the single tick the sequence completes; the engine
	// forces the tree mode and unlocks transitions on it.
	Done    bool
	Elapsed float64
}

// Orchestrator runs the timed epic choreography. It is single-flight: a
// trigger while active is ignored, and after completion the one-shot latch
// keeps it dormant until Rearm. Re-arming is the chrome's decision, never
// the engine's.
type Orchestrator struct {
	cfg       EpicConfig
	active    bool
	latched   bool
	elapsed   float64
	nextBurst float64
}

// NewOrchestrator creates an idle orchestrator.
func NewOrchestrator(cfg EpicConfig) *Orchestrator {
	return &Orchestrator{cfg: cfg}
}

// Active reports whether a sequence is running.
func (o *Orchestrator) Active() bool { return o.active }

// Elapsed returns seconds since the running sequence was triggered.
func (o *Orchestrator) Elapsed() float64 { return o.elapsed }

// Trigger starts the sequence. Returns false without side effects when a
// sequence is running or the latch has not been rearmed; the caller only
// performs its own trigger effects (counter, cue, shake) on true.
func (o *Orchestrator) Trigger() bool {
	if o.active || o.latched {
		return false
	}
	o.active = true
	o.latched = true
	o.elapsed = 0
	o.nextBurst = o.cfg.BurstStart
	return true
}

// Rearm clears the one-shot latch so the next trigger starts a sequence.
// Ignored while a sequence is still running.
func (o *Orchestrator) Rearm() {
	if !o.active {
		o.latched = false
	}
}

// Advance moves the sequence forward dt seconds and returns this tick's
// directives. While idle it returns the zero value.
func (o *Orchestrator) Advance(dt float64) Directives {
	if !o.active {
		return Directives{}
	}

	o.elapsed += dt
	d := Directives{
		Active:  true,
		Rainbow: true,
		Elapsed: o.elapsed,
	}

	if o.elapsed < o.cfg.AttentionEnd {
		d.GoldFlash = true
		d.AttentionPulse = true
	}

	if o.elapsed >= o.cfg.BurstStart && o.elapsed < o.cfg.BurstEnd {
		if o.elapsed >= o.nextBurst {
			d.Burst = true
			o.nextBurst += o.cfg.BurstInterval
		}
	}

	if o.elapsed >= o.cfg.TextStart && o.elapsed < o.cfg.TextEnd {
		d.TextForming = true
	}

	if o.elapsed >= o.cfg.Duration {
		o.active = false
		d = Directives{Done: true, Elapsed: o.elapsed}
	}

	return d
}
