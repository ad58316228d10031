package arbor

import "math"

// --- Constants ---

const (
	maxPointers         = 10 // pointer 0 = mouse, 1-9 = touch
	defaultDragDeadZone = 4.0
	goldPointerCount    = 5
)

// InputMode selects which source feeds the engine. The two sources are
// mutually exclusive; the chrome switches them.
type InputMode uint8

const (
	// InputTouch feeds pointer events from the touch surface.
	InputTouch InputMode = iota
	// InputCamera feeds hand landmarks through the gesture classifier.
	InputCamera
)

// String returns the input mode's display name.
func (m InputMode) String() string {
	if m == InputCamera {
		return "camera"
	}
	return "touch"
}

// TouchConfig holds the touch normalizer's tunables.
type TouchConfig struct {
	// TapSeconds is the longest press that still counts as a tap, and the
	// double-tap window between two taps.
	TapSeconds float64 `yaml:"tap_seconds"`
	// DragDeadZone is the movement in pixels before a press becomes a drag.
	DragDeadZone float64 `yaml:"drag_dead_zone"`
	// HoldSeconds is the sustained press needed on the star hotspot to fire
	// the epic trigger.
	HoldSeconds float64 `yaml:"hold_seconds"`
	// Hotspot is the star hotspot's screen rectangle.
	Hotspot Rect `yaml:"hotspot"`
	// RotatePerPixel converts horizontal drag pixels to orbit radians.
	RotatePerPixel float64 `yaml:"rotate_per_pixel"`
	// ZoomPerPixel converts pinch distance pixels to zoom units.
	ZoomPerPixel float64 `yaml:"zoom_per_pixel"`
}

// --- Per-pointer state ---

type touchPointer struct {
	down      bool
	startX    float64
	startY    float64
	lastX     float64
	lastY     float64
	pressedAt float64
	dragging  bool
}

type touchPinch struct {
	active    bool
	prevDist  float64
	prevAngle float64
}

type holdState struct {
	active  bool
	pointer int
	elapsed float64
	fired   bool
}

// TouchNormalizer converts raw pointer press/move/release sequences into
// abstract interaction signals. It owns no display state: everything it
// decides is emitted into the sink.
//
// Time advances only through Advance, never the wall clock, so tests drive
// it deterministically.
type TouchNormalizer struct {
	cfg  TouchConfig
	sink SignalSink
	now  float64

	pointers  [maxPointers]touchPointer
	downCount int
	pinch     touchPinch
	hold      holdState

	// Contact-sequence state, reset when the last pointer lifts.
	maxSimultaneous int
	anyDrag         bool
	goldFired       bool

	lastTapAt float64
	repulsing bool
}

// NewTouchNormalizer creates a normalizer emitting into sink.
func NewTouchNormalizer(cfg TouchConfig, sink SignalSink) *TouchNormalizer {
	if cfg.DragDeadZone <= 0 {
		cfg.DragDeadZone = defaultDragDeadZone
	}
	return &TouchNormalizer{cfg: cfg, sink: sink, lastTapAt: math.Inf(-1)}
}

// Pointer runs the state machine for a single pointer. The front end calls
// it once per pointer per tick with the pointer's current position and
// pressed state. Mouse and touch share the one entry point.
func (t *TouchNormalizer) Pointer(id int, x, y float64, pressed bool) {
	if id < 0 || id >= maxPointers {
		return
	}
	p := &t.pointers[id]

	switch {
	case pressed && !p.down:
		t.press(id, p, x, y)
	case !pressed && p.down:
		t.release(id, p)
	case pressed && p.down:
		t.move(id, p, x, y)
	}
}

func (t *TouchNormalizer) press(id int, p *touchPointer, x, y float64) {
	p.down = true
	p.startX, p.startY = x, y
	p.lastX, p.lastY = x, y
	p.pressedAt = t.now
	p.dragging = false

	t.downCount++
	if t.downCount == 1 {
		t.maxSimultaneous = 1
		t.anyDrag = false
		t.goldFired = false
	} else if t.downCount > t.maxSimultaneous {
		t.maxSimultaneous = t.downCount
	}

	// Gold mode fires once per qualifying press, not once per frame.
	if t.downCount == goldPointerCount && !t.goldFired {
		t.goldFired = true
		t.sink.Signal(Signal{Kind: SignalGoldMode})
	}

	if t.downCount == 1 && t.cfg.Hotspot.Contains(x, y) {
		t.hold = holdState{active: true, pointer: id}
		t.sink.Signal(Signal{Kind: SignalHoldStart})
	}
}

func (t *TouchNormalizer) release(id int, p *touchPointer) {
	if t.hold.active && t.hold.pointer == id {
		t.abortHold()
	}

	lastUp := t.downCount == 1
	if lastUp && !t.anyDrag && t.now-p.pressedAt < t.cfg.TapSeconds {
		switch t.maxSimultaneous {
		case 1:
			t.sink.Signal(Signal{Kind: SignalSelectAt, X: p.lastX, Y: p.lastY})
			if t.now-t.lastTapAt < t.cfg.TapSeconds {
				t.sink.Signal(Signal{Kind: SignalBurst})
				t.lastTapAt = math.Inf(-1)
			} else {
				t.lastTapAt = t.now
			}
		case 2:
			t.sink.Signal(Signal{Kind: SignalToggleFormation})
		}
	}

	if t.repulsing && lastUp {
		t.repulsing = false
		t.sink.Signal(Signal{Kind: SignalRepulseEnd})
	}

	p.down = false
	p.dragging = false
	t.downCount--
}

func (t *TouchNormalizer) move(id int, p *touchPointer, x, y float64) {
	if x == p.lastX && y == p.lastY {
		return
	}

	if !p.dragging {
		dx := x - p.startX
		dy := y - p.startY
		if math.Sqrt(dx*dx+dy*dy) > t.cfg.DragDeadZone {
			p.dragging = true
			t.anyDrag = true
		}
	}

	if p.dragging {
		if t.hold.active && t.hold.pointer == id && !t.cfg.Hotspot.Contains(x, y) {
			t.abortHold()
		}
		if t.downCount == 1 {
			t.sink.Signal(Signal{Kind: SignalRotateBy, Amount: (x - p.lastX) * t.cfg.RotatePerPixel})
			t.sink.Signal(Signal{Kind: SignalRepulseAt, X: x, Y: y})
			t.repulsing = true
		}
	}

	p.lastX, p.lastY = x, y
}

// Advance moves the normalizer's clock forward one tick: hold progress
// accumulates and two-pointer pinch deltas are emitted. Call once per tick
// after all Pointer calls for the frame.
func (t *TouchNormalizer) Advance(dt float64) {
	t.now += dt
	t.advanceHold(dt)
	t.detectPinch()
}

func (t *TouchNormalizer) advanceHold(dt float64) {
	if !t.hold.active || t.hold.fired {
		return
	}
	p := &t.pointers[t.hold.pointer]
	if !p.down {
		t.abortHold()
		return
	}
	t.hold.elapsed += dt
	progress := t.hold.elapsed / t.cfg.HoldSeconds
	if progress >= 1 {
		t.hold.fired = true
		t.hold.active = false
		t.sink.Signal(Signal{Kind: SignalHoldProgress, Progress: 1})
		t.sink.Signal(Signal{Kind: SignalEpicTrigger})
		return
	}
	t.sink.Signal(Signal{Kind: SignalHoldProgress, Progress: progress})
}

// ResetHold cancels any in-progress hold without emitting. The epic
// sequence trigger resets hold progress through this.
func (t *TouchNormalizer) ResetHold() {
	t.hold = holdState{}
}

func (t *TouchNormalizer) abortHold() {
	t.hold = holdState{}
	t.sink.Signal(Signal{Kind: SignalHoldEnd})
}

// detectPinch emits zoom and rotate deltas while exactly two pointers are
// down, tracking distance and angle between them frame to frame.
func (t *TouchNormalizer) detectPinch() {
	if t.downCount != 2 {
		t.pinch.active = false
		return
	}

	var p0, p1 *touchPointer
	for i := range t.pointers {
		if !t.pointers[i].down {
			continue
		}
		if p0 == nil {
			p0 = &t.pointers[i]
		} else {
			p1 = &t.pointers[i]
			break
		}
	}
	if p1 == nil {
		return
	}

	dx := p1.lastX - p0.lastX
	dy := p1.lastY - p0.lastY
	dist := math.Sqrt(dx*dx + dy*dy)
	angle := math.Atan2(dy, dx)

	if !t.pinch.active {
		t.pinch.active = true
		t.pinch.prevDist = dist
		t.pinch.prevAngle = angle
		return
	}

	if d := dist - t.pinch.prevDist; d != 0 {
		t.sink.Signal(Signal{Kind: SignalZoomBy, Amount: -d * t.cfg.ZoomPerPixel})
	}
	if a := angle - t.pinch.prevAngle; a != 0 {
		t.sink.Signal(Signal{Kind: SignalRotateBy, Amount: a})
	}
	t.pinch.prevDist = dist
	t.pinch.prevAngle = angle
}

// HoldProgress returns the current hold progress in [0, 1] for UI overlays.
func (t *TouchNormalizer) HoldProgress() float64 {
	if !t.hold.active || t.cfg.HoldSeconds <= 0 {
		return 0
	}
	return math.Min(t.hold.elapsed/t.cfg.HoldSeconds, 1)
}
