package arbor

import (
	"fmt"
	"log"
	"math"
	"math/rand/v2"
)

// CuePlayer is the audio collaborator. Synthesis internals live outside the
// engine (see the cue package); tests substitute recorders.
type CuePlayer interface {
	// EpicCue plays the epic sequence's musical cue.
	EpicCue()
	// WarningCue plays a short warning blip (e.g. pinch-select with no
	// photos).
	WarningCue()
	Close() error
}

// StatusSink receives the engine's only outward-facing chrome API: a
// free-text status line and the blessing counter.
type StatusSink interface {
	Status(msg string)
	Blessings(count int)
}

// RenderSink consumes one frame snapshot per tick and draws it. The engine
// never waits on it; a slow renderer drops visual quality, not state.
type RenderSink interface {
	Frame(*FrameSnapshot)
}

type nopCue struct{}

func (nopCue) EpicCue()     {}
func (nopCue) WarningCue()  {}
func (nopCue) Close() error { return nil }

type nopStatus struct{}

func (nopStatus) Status(string) {}
func (nopStatus) Blessings(int) {}

type nopRender struct{}

func (nopRender) Frame(*FrameSnapshot) {}

// Transform is one instance's draw state for a tick.
type Transform struct {
	Position Vec3
	Rotation Vec3
	Scale    float64
}

// GroupSnapshot is one group's transforms plus its material tint.
type GroupSnapshot struct {
	Name       string
	Color      Color
	Transforms []Transform
}

// FrameSnapshot is the full per-tick hand-off to the render step: every
// transform, the camera, and the active directive overlays. Slices are
// reused between ticks; a renderer must not retain them across frames.
type FrameSnapshot struct {
	Mode   DisplayMode
	Groups []GroupSnapshot

	Photos     []Transform
	FocusIndex int

	CameraPosition Vec3
	CameraYaw      float64
	CameraDistance float64
	Shake          float64

	Rainbow     bool
	GoldFlash   bool
	GoldMode    bool
	TextForming bool
	Burst       bool

	Gesture      Gesture
	HoldProgress float64
	Status       string
	Blessings    int
}

// pickRadius is the screen-space distance within which a tap selects a
// photo card.
const pickRadius = 60.0

// refHandSize is the neutral hand size for the point-gesture zoom; hands
// measuring larger zoom in, smaller zoom out.
const refHandSize = 0.2

// Engine owns all interaction and animation state and advances it one Tick
// at a time. The tick is the only logical owner of every mutable field, so
// there is no locking: the core loop has no parallelism.
//
// Engine implements SignalSink; both input sources feed it and it neither
// knows nor cares which one produced a signal.
type Engine struct {
	cfg *Config
	rng *rand.Rand

	mode       *ModeMachine
	groups     []*Group
	deck       *PhotoDeck
	camera     *Rig
	touch      *TouchNormalizer
	classifier *Classifier
	epic       *Orchestrator
	session    *VisionSession
	glyph      *GlyphCloud

	render RenderSink
	status StatusSink
	cue    CuePlayer

	inputMode     InputMode
	now           float64
	classifyAccum float64
	blessings     int
	goldUntil     float64
	repulsion     *Vec3
	burstTick     bool
	gesture       Gesture
	statusMsg     string
	viewW, viewH  float64
	closed        bool

	snapshot FrameSnapshot
}

// NewEngine builds the engine from cfg (nil means DefaultConfig). All
// formations, the glyph cloud, and the photo deck's sampling are seeded from
// cfg.Seed, so a fixed seed reproduces the installation exactly.
func NewEngine(cfg *Config) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = int64(rand.Uint64())
	}
	rng := rand.New(rand.NewPCG(uint64(seed), uint64(seed)+1))

	e := &Engine{
		cfg:     cfg,
		rng:     rng,
		mode:    NewModeMachine(),
		camera:  NewRig(cfg.Camera),
		epic:    NewOrchestrator(cfg.Epic),
		glyph:   NewGlyphCloud(cfg.Glyph),
		session: NewVisionSession(nil),
		render:  nopRender{},
		status:  nopStatus{},
		cue:     nopCue{},
		gesture: GestureSearching,
		viewW:   1000,
		viewH:   700,
	}
	e.deck = NewPhotoDeck(cfg.Tree, cfg.PhotoShell, rng)
	e.touch = NewTouchNormalizer(cfg.Touch, e)
	e.classifier = NewClassifier(cfg.Gesture)

	for _, gc := range cfg.Groups {
		e.groups = append(e.groups, NewGroup(gc, cfg.Tree, rng))
	}

	e.setStatus("tree mode — touch to play")
	return e, nil
}

// --- Collaborator wiring ---

// SetRenderSink installs the render collaborator. nil restores the no-op.
func (e *Engine) SetRenderSink(r RenderSink) {
	if r == nil {
		r = nopRender{}
	}
	e.render = r
}

// SetStatusSink installs the chrome's status/blessings receiver.
func (e *Engine) SetStatusSink(s StatusSink) {
	if s == nil {
		s = nopStatus{}
	}
	e.status = s
	s.Status(e.statusMsg)
	s.Blessings(e.blessings)
}

// SetCuePlayer installs the audio collaborator.
func (e *Engine) SetCuePlayer(c CuePlayer) {
	if c == nil {
		c = nopCue{}
	}
	e.cue = c
}

// SetViewport tells the engine the render surface size, used for hotspot
// hit-testing, photo picking, and unprojecting the repulsion point.
func (e *Engine) SetViewport(w, h float64) {
	if w > 0 && h > 0 {
		e.viewW, e.viewH = w, h
	}
}

// --- Accessors ---

// Mode returns the current display mode.
func (e *Engine) Mode() DisplayMode { return e.mode.Mode() }

// Blessings returns the persistent blessing counter.
func (e *Engine) Blessings() int { return e.blessings }

// InputMode returns the active input source.
func (e *Engine) InputMode() InputMode { return e.inputMode }

// Gesture returns the most recent classification result.
func (e *Engine) Gesture() Gesture { return e.gesture }

// Groups returns the particle groups. Mutating them outside the tick is the
// caller's own funeral.
func (e *Engine) Groups() []*Group { return e.groups }

// Deck returns the photo deck.
func (e *Engine) Deck() *PhotoDeck { return e.deck }

// Camera returns the orbit rig.
func (e *Engine) Camera() *Rig { return e.camera }

// Session returns the vision session so the chrome's bootstrap can feed it
// async step completions.
func (e *Engine) Session() *VisionSession { return e.session }

// EpicActive reports whether the epic sequence is running.
func (e *Engine) EpicActive() bool { return e.epic.Active() }

// Status returns the current status line.
func (e *Engine) Status() string { return e.statusMsg }

// HoldProgress returns the active source's hold-to-confirm progress in
// [0, 1]: touch hotspot hold, or the further along of the two gesture holds.
func (e *Engine) HoldProgress() float64 { return e.holdProgress() }

// Convergence returns the mean particle distance to the current mode's
// targets, averaged across groups. The operator console graphs it.
func (e *Engine) Convergence() float64 {
	if len(e.groups) == 0 {
		return 0
	}
	var sum float64
	for _, g := range e.groups {
		sum += g.MeanTargetDistance(e.mode.Mode())
	}
	return sum / float64(len(e.groups))
}

// --- Externally driven inputs ---

// Pointer feeds one pointer's state for this frame. Ignored while the
// camera source is active: the two sources are mutually exclusive.
func (e *Engine) Pointer(id int, x, y float64, pressed bool) {
	if e.inputMode != InputTouch {
		return
	}
	e.touch.Pointer(id, x, y, pressed)
}

// AddPhoto mounts a newly loaded image as a photo card.
func (e *Engine) AddPhoto(label string) *PhotoCard {
	c := e.deck.Add(label)
	e.setStatus(fmt.Sprintf("photo %q joined the tree (%d total)", label, e.deck.Count()))
	return c
}

// CloseFocus leaves focus mode back to the tree.
func (e *Engine) CloseFocus() {
	if _, ok := e.mode.Request(EventCloseFocus); ok {
		e.deck.ClearFocus()
		e.setStatus("back to the tree")
	}
}

// RearmEpic clears the epic sequence's one-shot latch. The chrome decides
// when the installation may celebrate again.
func (e *Engine) RearmEpic() { e.epic.Rearm() }

// SetInputMode switches input sources. Entering camera mode begins the
// vision session's async setup with the given provider; leaving it releases
// the stream and model immediately, whatever state setup reached.
func (e *Engine) SetInputMode(m InputMode, provider LandmarkProvider) error {
	if m == e.inputMode && m == InputCamera {
		return nil
	}
	// Tear down the old session on any switch.
	e.session.Close()
	e.inputMode = m
	e.classifyAccum = 0
	e.gesture = GestureSearching
	e.classifier.ResetHolds()

	if m == InputCamera {
		e.session = NewVisionSession(provider)
		if err := e.session.Begin(); err != nil {
			return err
		}
		e.setStatus("loading hand model...")
	} else {
		e.setStatus("touch input active")
	}
	return nil
}

// Close tears the engine down: the vision session and audio device are
// released. Safe to call twice. Dangling streams are a leak, not cosmetic,
// so callers must reach this on every exit path.
func (e *Engine) Close() error {
	if e.closed {
		return nil
	}
	e.closed = true
	err := e.session.Close()
	if cerr := e.cue.Close(); err == nil {
		err = cerr
	}
	return err
}

// --- Signal handling ---

// Signal implements SignalSink for both input sources. Ordinary rotation
// and zoom are suppressed while the epic sequence owns the camera.
func (e *Engine) Signal(s Signal) {
	switch s.Kind {
	case SignalRotateBy:
		if !e.epic.Active() {
			e.camera.RotateBy(s.Amount)
		}
	case SignalZoomBy:
		if !e.epic.Active() {
			e.camera.ZoomBy(s.Amount)
		}
	case SignalSelectAt:
		e.selectPhoto(s)
	case SignalToggleFormation:
		if mode, ok := e.mode.Request(EventToggleFormation); ok {
			e.setStatus(fmt.Sprintf("%s formation", mode))
		} else if e.mode.Locked() {
			e.setStatus("the sequence has the stage")
		}
	case SignalForceMode:
		e.forceMode(s.Mode)
	case SignalBurst:
		e.burstTick = true
	case SignalGoldMode:
		e.triggerGold()
	case SignalEpicTrigger:
		e.triggerEpic()
	case SignalHoldStart:
		e.setStatus("keep holding the star...")
	case SignalHoldProgress:
		// Progress is read from the normalizer at snapshot time.
	case SignalHoldEnd:
		e.setStatus("")
	case SignalRepulseAt:
		// The repulsion point only exists in the tree formation.
		if e.mode.Mode() == ModeTree {
			p := e.camera.Unproject(s.X, s.Y, e.viewW, e.viewH, e.camera.Distance)
			e.repulsion = &p
		}
	case SignalRepulseEnd:
		e.repulsion = nil
	}
}

func (e *Engine) forceMode(m DisplayMode) {
	ev := EventFist
	if m == ModeScatter {
		ev = EventOpenHand
	}
	if mode, ok := e.mode.Request(ev); ok {
		e.setStatus(fmt.Sprintf("%s formation", mode))
	}
}

func (e *Engine) selectPhoto(s Signal) {
	if e.deck.Count() == 0 {
		e.setStatus("no photos uploaded yet")
		e.cue.WarningCue()
		return
	}

	idx := -1
	if s.X < 0 {
		idx, _ = e.deck.SelectRandom()
	} else {
		// Nearest projected card within the pick radius. Finding nothing
		// is a per-tick no-op, not an error.
		best := pickRadius
		for i, c := range e.deck.Cards() {
			x, y, ok := e.camera.Project(c.Current, e.viewW, e.viewH)
			if !ok {
				continue
			}
			d := math.Hypot(x-s.X, y-s.Y)
			if d < best {
				best = d
				idx = i
			}
		}
		if idx < 0 {
			return
		}
	}

	if _, ok := e.mode.Request(EventSelectPhoto); !ok {
		return
	}
	e.deck.Select(idx)
	focus := e.camera.Position().Add(e.camera.Forward().Scale(e.cfg.FocusDistance))
	e.deck.SetFocusPoint(focus)
	e.setStatus(fmt.Sprintf("viewing %q", e.deck.Focused().Label))
}

func (e *Engine) triggerEpic() {
	if !e.epic.Trigger() {
		return
	}
	e.mode.Lock()
	e.blessings++
	e.status.Blessings(e.blessings)
	e.cue.EpicCue()
	e.camera.Impulse(e.cfg.Epic.ShakeStrength)
	e.touch.ResetHold()
	e.classifier.ResetHolds()
	e.setStatus(fmt.Sprintf("blessing %d — let it shine", e.blessings))
}

func (e *Engine) triggerGold() {
	e.goldUntil = e.now + e.cfg.GoldModeSeconds
	e.setStatus("gold mode")
}

// --- The tick ---

// Tick advances the whole engine by dt seconds in the fixed order: gesture
// classification (rate-capped), input integration, orchestrator, particle
// easing, photo easing, camera, render snapshot. No step blocks.
//
// A structurally broken engine (no groups) skips the tick entirely: one
// dropped frame is imperceptible, a crashed loop ends the experience.
func (e *Engine) Tick(dt float64) {
	if e.closed || len(e.groups) == 0 {
		return
	}
	e.now += dt

	e.classifyStep(dt)
	if e.inputMode == InputTouch {
		e.touch.Advance(dt)
	}

	d := e.epic.Advance(dt)
	if d.Done {
		e.mode.Unlock()
		e.mode.Request(EventSequenceDone)
		e.deck.ClearFocus()
		e.setStatus("the tree returns")
	}

	if d.AttentionPulse {
		e.camera.SetPulse(math.Sin(d.Elapsed*8) * 1.5)
	} else {
		e.camera.SetPulse(0)
	}
	if d.TextForming && e.glyph != nil {
		// Adaptive distance recomputed each tick to frame the glyph cloud.
		lo, hi := e.glyph.Bounds()
		e.camera.FrameBounds(lo, hi)
	}

	rate := e.cfg.EaseRate
	if d.TextForming {
		rate = e.cfg.TextEaseRate
	}
	params := UpdateParams{
		Mode:            e.mode.Mode(),
		EaseRate:        rate,
		TextForming:     d.TextForming,
		Glyph:           e.glyph,
		Repulsion:       e.repulsion,
		RepulsionRadius: e.cfg.RepulsionRadius,
		Dt:              dt,
	}
	for _, g := range e.groups {
		g.Update(params)
	}
	e.deck.Update(e.mode.Mode(), rate)

	e.camera.Update(dt)
	e.publishFrame(d)
	e.burstTick = false
}

// classifyStep runs the gesture classifier at its capped rate, independent
// of the render tick. Skipped ticks reuse the previous classification's
// derived state; a not-yet-streaming session yields searching frames.
func (e *Engine) classifyStep(dt float64) {
	if e.inputMode != InputCamera {
		return
	}

	// Environment failure: fall back to touch, report, release.
	if e.session.State() == SessionFailed {
		msg := e.session.Failure()
		e.session.Close()
		e.inputMode = InputTouch
		e.setStatus(msg + " — falling back to touch")
		return
	}

	// A stalled frame banks at most one interval; the classifier never
	// runs more than once per interval of tick time, and hold timers
	// never fast-forward through the backlog.
	e.classifyAccum = math.Min(e.classifyAccum+dt, 1/e.cfg.ClassifyHz)
	if e.classifyAccum < 1/e.cfg.ClassifyHz {
		return
	}
	e.classifyAccum = 0

	hand, err := e.session.Detect(e.now)
	if err != nil {
		log.Printf("arbor: hand detection: %v", err)
		e.setStatus(fmt.Sprintf("hand tracking trouble: %v", err))
		return
	}

	res := e.classifier.Step(hand)
	e.gesture = res.Gesture
	e.applyGesture(res, hand)
}

// applyGesture maps a classification tick to abstract signals. Transform
// deltas route through Signal so epic-sequence suppression applies in one
// place.
func (e *Engine) applyGesture(res StepResult, hand Hand) {
	switch res.Gesture {
	case GestureFist:
		e.Signal(Signal{Kind: SignalRotateBy, Amount: palmDeviation(hand) * e.cfg.GestureRotateScale})
		e.Signal(Signal{Kind: SignalForceMode, Mode: ModeTree})
	case GestureOpen:
		e.Signal(Signal{Kind: SignalForceMode, Mode: ModeScatter})
	case GesturePoint:
		e.Signal(Signal{Kind: SignalZoomBy, Amount: (refHandSize - handSize(hand)) * e.cfg.GestureZoomScale})
	case GesturePinch:
		if res.PinchEdge {
			e.Signal(Signal{Kind: SignalSelectAt, X: -1, Y: -1})
		}
	}
	if res.EpicReady {
		e.Signal(Signal{Kind: SignalEpicTrigger})
	}
	if res.GoldReady {
		e.Signal(Signal{Kind: SignalGoldMode})
	}
}

// publishFrame builds the tick's snapshot, reusing last tick's slices, and
// hands it to the render sink.
func (e *Engine) publishFrame(d Directives) {
	snap := &e.snapshot
	mode := e.mode.Mode()

	snap.Mode = mode
	snap.Gesture = e.gesture
	snap.Rainbow = d.Rainbow
	snap.GoldFlash = d.GoldFlash
	snap.TextForming = d.TextForming
	snap.Burst = d.Burst || e.burstTick
	snap.GoldMode = e.now < e.goldUntil
	snap.Blessings = e.blessings
	snap.Status = e.statusMsg

	snap.CameraPosition = e.camera.Position()
	snap.CameraYaw = e.camera.Yaw
	snap.CameraDistance = e.camera.Distance
	snap.Shake = e.camera.Shake()

	snap.HoldProgress = e.holdProgress()

	if cap(snap.Groups) < len(e.groups) {
		snap.Groups = make([]GroupSnapshot, len(e.groups))
	}
	snap.Groups = snap.Groups[:len(e.groups)]
	for gi, g := range e.groups {
		gs := &snap.Groups[gi]
		gs.Name = g.Name
		gs.Color = g.Color
		if cap(gs.Transforms) < len(g.Particles) {
			gs.Transforms = make([]Transform, len(g.Particles))
		}
		gs.Transforms = gs.Transforms[:len(g.Particles)]
		for i := range g.Particles {
			p := &g.Particles[i]
			gs.Transforms[i] = Transform{
				Position: p.Current,
				Rotation: p.Rotation,
				Scale:    g.RenderScale(i, mode, d.TextForming),
			}
		}
	}

	cards := e.deck.Cards()
	if cap(snap.Photos) < len(cards) {
		snap.Photos = make([]Transform, len(cards))
	}
	snap.Photos = snap.Photos[:len(cards)]
	for i, c := range cards {
		snap.Photos[i] = Transform{Position: c.Current, Scale: 1}
	}
	snap.FocusIndex = e.deck.FocusIndex()

	e.render.Frame(snap)
}

// holdProgress reports the hold-to-confirm progress for the active source.
func (e *Engine) holdProgress() float64 {
	if e.inputMode == InputTouch {
		return e.touch.HoldProgress()
	}
	v := e.classifier.VictoryHold() / e.cfg.Gesture.VictoryHoldSeconds
	if t := e.classifier.ThreeHold() / e.cfg.Gesture.ThreeHoldSeconds; t > v {
		v = t
	}
	return math.Min(v, 1)
}

func (e *Engine) setStatus(msg string) {
	e.statusMsg = msg
	e.status.Status(msg)
}
