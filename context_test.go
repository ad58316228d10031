package arbor

import (
	"errors"
	"strings"
	"testing"
)

var errTest = errors.New("simulated failure")

type cueRecorder struct {
	epics    int
	warnings int
	closes   int
}

func (c *cueRecorder) EpicCue()     { c.epics++ }
func (c *cueRecorder) WarningCue()  { c.warnings++ }
func (c *cueRecorder) Close() error { c.closes++; return nil }

type statusRecorder struct {
	lines     []string
	blessings int
}

func (s *statusRecorder) Status(msg string) { s.lines = append(s.lines, msg) }
func (s *statusRecorder) Blessings(n int)   { s.blessings = n }
func (s *statusRecorder) saw(sub string) bool {
	for _, l := range s.lines {
		if strings.Contains(l, sub) {
			return true
		}
	}
	return false
}

type frameRecorder struct {
	frames int
	last   FrameSnapshot
}

func (f *frameRecorder) Frame(s *FrameSnapshot) {
	f.frames++
	f.last = *s
}

// smallConfig keeps the particle counts low so engine tests stay fast.
func smallConfig() *Config {
	cfg := DefaultConfig()
	cfg.Seed = 1
	cfg.Groups = []GroupConfig{
		{Name: "gold", Count: 30, Shell: Range{40, 55}, Scale: Range{1, 1},
			RadiusScale: 1, SpinRate: Range{0, 0}, GlyphEligible: true, Color: ColorWhite},
		{Name: "trunk", Count: 20, Shell: Range{20, 30}, Scale: Range{1, 1},
			RadiusScale: 0.2, SpinRate: Range{0, 0}, Color: ColorWhite},
	}
	return cfg
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := NewEngine(smallConfig())
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return e
}

func TestNewEngineRejectsInvalidConfig(t *testing.T) {
	cfg := smallConfig()
	cfg.EaseRate = 0
	if _, err := NewEngine(cfg); err == nil {
		t.Error("NewEngine accepted an invalid config")
	}
}

func TestToggleFormation(t *testing.T) {
	e := newTestEngine(t)
	rec := &frameRecorder{}
	e.SetRenderSink(rec)

	e.Signal(Signal{Kind: SignalToggleFormation})
	e.Tick(1.0 / 60)

	if e.Mode() != ModeScatter {
		t.Errorf("mode = %v after toggle, want scatter", e.Mode())
	}
	if rec.last.Mode != ModeScatter {
		t.Errorf("snapshot mode = %v, want scatter", rec.last.Mode)
	}

	e.Signal(Signal{Kind: SignalToggleFormation})
	if e.Mode() != ModeTree {
		t.Errorf("mode = %v after second toggle, want tree", e.Mode())
	}
}

// A formation switch converges: after enough ticks the particles sit close
// to their new targets, and the path there is monotone.
func TestFormationSwitchConverges(t *testing.T) {
	e := newTestEngine(t)
	e.Signal(Signal{Kind: SignalToggleFormation})

	prev := e.Convergence()
	for i := 0; i < 240; i++ {
		e.Tick(1.0 / 60)
		d := e.Convergence()
		if d >= prev {
			t.Fatalf("tick %d: convergence %g did not improve on %g", i, d, prev)
		}
		prev = d
	}
	start := e.Groups()[0].Particles[0].Targets[ModeTree].Dist(
		e.Groups()[0].Particles[0].Targets[ModeScatter])
	if prev > start*0.01 {
		t.Errorf("convergence after 240 ticks = %g, want well under %g", prev, start*0.01)
	}
}

// Full interaction scenario: a single open-hand classification flips a
// 1500-particle tree to scatter within that tick, and the swarm converges
// tightly onto the scatter targets within a couple of seconds of easing.
func TestOpenHandScatterScenario(t *testing.T) {
	cfg := smallConfig()
	cfg.Groups = []GroupConfig{
		{Name: "gold", Count: 1500, Shell: Range{40, 55}, Scale: Range{1, 1},
			RadiusScale: 1, SpinRate: Range{0, 0}, GlyphEligible: true, Color: ColorWhite},
	}
	e, err := NewEngine(cfg)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	open := makeHand(handSpec{thumb: true, index: true, middle: true, ring: true, pinky: true})
	if err := e.SetInputMode(InputCamera, &fakeProvider{hand: open}); err != nil {
		t.Fatalf("SetInputMode: %v", err)
	}
	sess := e.Session()
	sess.ModelLoaded(nil)
	sess.PermissionResult(nil)
	sess.StreamStarted(nil, false)

	e.Tick(0.11)
	if e.Mode() != ModeScatter {
		t.Fatalf("mode = %v within the classification tick, want scatter", e.Mode())
	}

	for i := 0; i < 120; i++ {
		e.Tick(1.0 / 60)
	}
	g := e.Groups()[0]
	for i := range g.Particles {
		p := &g.Particles[i]
		if d := p.Current.Dist(p.Targets[ModeScatter]); d > 0.5 {
			t.Fatalf("particle %d is %g from its scatter target, want < 0.5", i, d)
		}
	}
}

func TestEpicSequenceLifecycle(t *testing.T) {
	e := newTestEngine(t)
	cue := &cueRecorder{}
	status := &statusRecorder{}
	e.SetCuePlayer(cue)
	e.SetStatusSink(status)

	e.Signal(Signal{Kind: SignalEpicTrigger})
	if !e.EpicActive() {
		t.Fatal("epic not active after trigger")
	}
	if e.Blessings() != 1 || status.blessings != 1 {
		t.Errorf("blessings = %d (sink %d), want 1", e.Blessings(), status.blessings)
	}
	if cue.epics != 1 {
		t.Errorf("epic cue played %d times, want 1", cue.epics)
	}

	// Re-trigger while running is ignored.
	e.Signal(Signal{Kind: SignalEpicTrigger})
	if e.Blessings() != 1 {
		t.Errorf("blessings = %d after mid-sequence trigger, want 1", e.Blessings())
	}

	// User camera deltas are suppressed for the duration.
	yaw, dist := e.Camera().Yaw, e.Camera().Distance
	e.Signal(Signal{Kind: SignalRotateBy, Amount: 1})
	e.Signal(Signal{Kind: SignalZoomBy, Amount: 50})
	if e.Camera().Yaw != yaw || e.Camera().Distance != dist {
		t.Error("camera moved from user input during the epic sequence")
	}

	// Mode changes are locked out.
	e.Signal(Signal{Kind: SignalToggleFormation})
	if e.Mode() != ModeTree {
		t.Errorf("mode = %v during sequence, want locked tree", e.Mode())
	}

	// Run the sequence out.
	for i := 0; i < 400 && e.EpicActive(); i++ {
		e.Tick(0.05)
	}
	if e.EpicActive() {
		t.Fatal("epic still active after its duration")
	}
	if e.Mode() != ModeTree {
		t.Errorf("mode = %v after sequence, want tree", e.Mode())
	}
	if !status.saw("the tree returns") {
		t.Error("completion status missing")
	}

	// Latched until the chrome rearms.
	e.Signal(Signal{Kind: SignalEpicTrigger})
	if e.Blessings() != 1 {
		t.Errorf("latched trigger incremented blessings to %d", e.Blessings())
	}
	e.RearmEpic()
	e.Signal(Signal{Kind: SignalEpicTrigger})
	if e.Blessings() != 2 {
		t.Errorf("blessings = %d after rearm and trigger, want 2", e.Blessings())
	}
}

func TestSelectWithNoPhotosWarns(t *testing.T) {
	e := newTestEngine(t)
	cue := &cueRecorder{}
	status := &statusRecorder{}
	e.SetCuePlayer(cue)
	e.SetStatusSink(status)

	e.Signal(Signal{Kind: SignalSelectAt, X: -1, Y: -1})

	if e.Mode() != ModeTree {
		t.Errorf("mode = %v, want unchanged tree", e.Mode())
	}
	if cue.warnings != 1 {
		t.Errorf("warning cue played %d times, want 1", cue.warnings)
	}
	if !status.saw("no photos") {
		t.Error("no-photos status missing")
	}
}

func TestRandomSelectEntersFocus(t *testing.T) {
	e := newTestEngine(t)
	e.AddPhoto("holiday")

	e.Signal(Signal{Kind: SignalSelectAt, X: -1, Y: -1})
	if e.Mode() != ModeFocus {
		t.Fatalf("mode = %v after select, want focus", e.Mode())
	}
	if e.Deck().Focused() == nil {
		t.Fatal("no focused card in focus mode")
	}

	e.CloseFocus()
	if e.Mode() != ModeTree {
		t.Errorf("mode = %v after close, want tree", e.Mode())
	}
	if e.Deck().Focused() != nil {
		t.Error("focus card survived CloseFocus")
	}
}

// The focused card converges to a point in front of the camera.
func TestFocusedCardReachesCamera(t *testing.T) {
	e := newTestEngine(t)
	e.AddPhoto("holiday")
	e.Signal(Signal{Kind: SignalSelectAt, X: -1, Y: -1})

	want := e.Camera().Position().Add(e.Camera().Forward().Scale(20))
	for i := 0; i < 600; i++ {
		e.Tick(1.0 / 60)
	}
	// The camera has not moved, so the focus point is where it was computed.
	if d := e.Deck().Focused().Current.Dist(want); d > 0.5 {
		t.Errorf("focused card is %g from the focus point", d)
	}
}

func TestGoldModeExpires(t *testing.T) {
	e := newTestEngine(t)
	rec := &frameRecorder{}
	e.SetRenderSink(rec)

	e.Signal(Signal{Kind: SignalGoldMode})
	e.Tick(1.0 / 60)
	if !rec.last.GoldMode {
		t.Fatal("snapshot not gold right after the trigger")
	}

	for i := 0; i < 11*4; i++ { // 11 seconds at 0.25s ticks
		e.Tick(0.25)
	}
	if rec.last.GoldMode {
		t.Error("gold mode survived past its duration")
	}
}

func TestBurstIsOneTick(t *testing.T) {
	e := newTestEngine(t)
	rec := &frameRecorder{}
	e.SetRenderSink(rec)

	e.Signal(Signal{Kind: SignalBurst})
	e.Tick(1.0 / 60)
	if !rec.last.Burst {
		t.Fatal("snapshot missing the burst tick")
	}
	e.Tick(1.0 / 60)
	if rec.last.Burst {
		t.Error("burst persisted past its tick")
	}
}

func TestOpenHandForcesScatter(t *testing.T) {
	e := newTestEngine(t)
	p := &fakeProvider{hand: makeHand(handSpec{thumb: true, index: true, middle: true, ring: true, pinky: true})}

	if err := e.SetInputMode(InputCamera, p); err != nil {
		t.Fatalf("SetInputMode: %v", err)
	}
	sess := e.Session()
	sess.ModelLoaded(nil)
	sess.PermissionResult(nil)
	sess.StreamStarted(nil, false)

	e.Tick(0.11) // past one classification interval at 10Hz
	if e.Gesture() != GestureOpen {
		t.Fatalf("gesture = %v, want open", e.Gesture())
	}
	if e.Mode() != ModeScatter {
		t.Errorf("mode = %v after open hand, want scatter", e.Mode())
	}
}

func TestFistRotatesTowardPalm(t *testing.T) {
	e := newTestEngine(t)
	fist := makeHand(handSpec{})
	for i := range fist {
		fist[i].X += 0.3 // palm right of center
	}
	p := &fakeProvider{hand: fist}

	if err := e.SetInputMode(InputCamera, p); err != nil {
		t.Fatalf("SetInputMode: %v", err)
	}
	sess := e.Session()
	sess.ModelLoaded(nil)
	sess.PermissionResult(nil)
	sess.StreamStarted(nil, false)

	e.Signal(Signal{Kind: SignalToggleFormation}) // scatter, so the fist has something to force back
	yaw := e.Camera().Yaw
	e.Tick(0.11)

	if e.Camera().Yaw <= yaw {
		t.Error("right-of-center fist did not rotate the orbit positively")
	}
	if e.Mode() != ModeTree {
		t.Errorf("mode = %v after fist, want tree", e.Mode())
	}
}

func TestPinchSelectsThroughGesture(t *testing.T) {
	e := newTestEngine(t)
	e.AddPhoto("holiday")
	p := &fakeProvider{hand: makeHand(handSpec{index: true, middle: true, pinched: true})}

	if err := e.SetInputMode(InputCamera, p); err != nil {
		t.Fatalf("SetInputMode: %v", err)
	}
	sess := e.Session()
	sess.ModelLoaded(nil)
	sess.PermissionResult(nil)
	sess.StreamStarted(nil, false)

	e.Tick(0.11)
	if e.Mode() != ModeFocus {
		t.Errorf("mode = %v after pinch, want focus", e.Mode())
	}

	// The sustained pinch does not re-select on later ticks.
	before := e.Deck().FocusIndex()
	e.Tick(0.11)
	if e.Deck().FocusIndex() != before {
		t.Error("sustained pinch re-selected")
	}
}

// A stalled frame never banks a classification backlog: afterwards the
// classifier keeps its capped cadence, and hold timers advance at wall pace
// rather than sprinting through the banked time.
func TestClassifyCapHoldsAfterStall(t *testing.T) {
	e := newTestEngine(t)
	p := &fakeProvider{hand: makeHand(handSpec{index: true, middle: true})}

	if err := e.SetInputMode(InputCamera, p); err != nil {
		t.Fatalf("SetInputMode: %v", err)
	}
	sess := e.Session()
	sess.ModelLoaded(nil)
	sess.PermissionResult(nil)
	sess.StreamStarted(nil, false)

	e.Tick(0.11)
	if p.detects != 1 {
		t.Fatalf("detects = %d after warmup, want 1", p.detects)
	}

	e.Tick(1.0) // a stalled frame is worth at most one classification
	if p.detects != 2 {
		t.Fatalf("detects = %d after stall, want 2", p.detects)
	}

	before := p.detects
	for i := 0; i < 12; i++ { // 0.2s of normal frames
		e.Tick(1.0 / 60)
	}
	if got := p.detects - before; got > 2 {
		t.Errorf("classifications in 0.2s after stall = %d, want at most 2", got)
	}
	if hold := e.classifier.VictoryHold(); hold > 0.5 {
		t.Errorf("victory hold = %g after stall, want wall-pace accumulation", hold)
	}
	if e.EpicActive() {
		t.Error("stall backlog fast-forwarded the victory hold into the epic trigger")
	}
}

func TestVisionFailureFallsBackToTouch(t *testing.T) {
	e := newTestEngine(t)
	status := &statusRecorder{}
	e.SetStatusSink(status)
	p := &fakeProvider{}

	if err := e.SetInputMode(InputCamera, p); err != nil {
		t.Fatalf("SetInputMode: %v", err)
	}
	e.Session().ModelLoaded(errTest)

	e.Tick(1.0 / 60)
	if e.InputMode() != InputTouch {
		t.Errorf("input mode = %v after vision failure, want touch", e.InputMode())
	}
	if !status.saw("falling back to touch") {
		t.Error("fallback status missing")
	}
}

func TestPointerIgnoredInCameraMode(t *testing.T) {
	e := newTestEngine(t)
	if err := e.SetInputMode(InputCamera, &fakeProvider{}); err != nil {
		t.Fatalf("SetInputMode: %v", err)
	}

	yaw := e.Camera().Yaw
	e.Pointer(0, 100, 200, true)
	e.Tick(1.0 / 60)
	e.Pointer(0, 300, 200, true)
	e.Tick(1.0 / 60)

	if e.Camera().Yaw != yaw {
		t.Error("touch drag moved the camera while in camera mode")
	}
}

func TestHoldProgressInSnapshot(t *testing.T) {
	e := newTestEngine(t)
	rec := &frameRecorder{}
	e.SetRenderSink(rec)

	// DefaultConfig's hotspot sits at (860, 20, 120, 120).
	e.Pointer(0, 900, 80, true)
	for i := 0; i < 60; i++ {
		e.Pointer(0, 900, 80, true)
		e.Tick(1.0 / 60)
	}

	if rec.last.HoldProgress <= 0.2 || rec.last.HoldProgress >= 0.5 {
		t.Errorf("hold progress = %g after 1s of a 3s hold, want about a third", rec.last.HoldProgress)
	}
}

func TestSnapshotShape(t *testing.T) {
	e := newTestEngine(t)
	rec := &frameRecorder{}
	e.SetRenderSink(rec)
	e.AddPhoto("a")

	e.Tick(1.0 / 60)
	if rec.frames != 1 {
		t.Fatalf("frames published = %d, want 1", rec.frames)
	}
	if len(rec.last.Groups) != 2 {
		t.Fatalf("snapshot groups = %d, want 2", len(rec.last.Groups))
	}
	if len(rec.last.Groups[0].Transforms) != 30 || len(rec.last.Groups[1].Transforms) != 20 {
		t.Errorf("transform counts = (%d, %d), want (30, 20)",
			len(rec.last.Groups[0].Transforms), len(rec.last.Groups[1].Transforms))
	}
	if len(rec.last.Photos) != 1 {
		t.Errorf("snapshot photos = %d, want 1", len(rec.last.Photos))
	}
	if rec.last.FocusIndex != -1 {
		t.Errorf("focus index = %d, want -1", rec.last.FocusIndex)
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	e := newTestEngine(t)
	cue := &cueRecorder{}
	e.SetCuePlayer(cue)

	if err := e.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := e.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	if cue.closes != 1 {
		t.Errorf("cue closed %d times, want 1", cue.closes)
	}

	// Ticks after close are dropped.
	rec := &frameRecorder{}
	e.SetRenderSink(rec)
	e.Tick(1.0 / 60)
	if rec.frames != 0 {
		t.Error("closed engine still published a frame")
	}
}
