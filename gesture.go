package arbor

// Hand is one detected hand's landmark set in normalized coordinates
// ([0, 1] on X/Y, Z relative depth). Landmark indices follow the common
// 21-point hand model: wrist first, then four joints per digit.
type Hand []Vec3

// Landmark indices used by the predicates.
const (
	landmarkCount = 21

	lmWrist     = 0
	lmThumbMCP  = 2
	lmThumbTip  = 4
	lmIndexMCP  = 5
	lmIndexTip  = 8
	lmMiddleMCP = 9
	lmMiddleTip = 12
	lmRingMCP   = 13
	lmRingTip   = 16
	lmPinkyMCP  = 17
	lmPinkyTip  = 20
)

// Gesture is the classifier's output vocabulary.
type Gesture uint8

const (
	// GestureSearching means no hand was detected this frame. Timers are
	// left untouched.
	GestureSearching Gesture = iota
	// GestureTracing means a hand is visible but matches no actionable
	// gesture. Resets all hold timers.
	GestureTracing
	// GesturePoint: index extended, other fingers curled.
	GesturePoint
	// GestureFist: all four non-thumb fingers curled.
	GestureFist
	// GestureOpen: all five digits extended.
	GestureOpen
	// GesturePinch: thumb tip and index tip nearly touching. Edge-triggered.
	GesturePinch
	// GestureVictory: index and middle extended, ring and pinky curled.
	// Held past its threshold it fires the epic trigger.
	GestureVictory
	// GestureThreeFinger: index, middle, and ring extended, pinky curled.
	// Held past its threshold it fires gold mode.
	GestureThreeFinger
)

// String returns the gesture's display name.
func (g Gesture) String() string {
	switch g {
	case GestureSearching:
		return "searching"
	case GestureTracing:
		return "tracing"
	case GesturePoint:
		return "point"
	case GestureFist:
		return "fist"
	case GestureOpen:
		return "open"
	case GesturePinch:
		return "pinch"
	case GestureVictory:
		return "victory"
	case GestureThreeFinger:
		return "three-finger"
	}
	return "unknown"
}

// GestureConfig holds the classifier's thresholds.
type GestureConfig struct {
	// ExtendRatio: a finger is extended when tip-to-wrist exceeds this
	// multiple of knuckle-to-wrist.
	ExtendRatio float64 `yaml:"extend_ratio"`
	// PinchThreshold is the thumb-to-index distance (normalized
	// coordinates) below which a pinch is detected.
	PinchThreshold float64 `yaml:"pinch_threshold"`
	// VictoryHoldSeconds of sustained victory fire the epic trigger.
	VictoryHoldSeconds float64 `yaml:"victory_hold_seconds"`
	// ThreeHoldSeconds of sustained three-finger fire gold mode.
	ThreeHoldSeconds float64 `yaml:"three_hold_seconds"`
	// TickSeconds is the fixed increment a hold timer gains per matching
	// classification tick. Timers advance by tick count, never wall clock,
	// so the threshold is reached at the same tick count regardless of
	// frame pacing.
	TickSeconds float64 `yaml:"tick_seconds"`
}

// gestureRule pairs a predicate with its gesture tag. Rules are evaluated
// top-down and the first match wins, so priority is data, not control flow.
type gestureRule struct {
	gesture Gesture
	match   func(c *Classifier, h Hand) bool
}

// StepResult is the outcome of one classification tick.
type StepResult struct {
	Gesture Gesture
	// EpicReady is set on the single tick the victory hold crosses its
	// threshold.
	EpicReady bool
	// GoldReady is set on the single tick the three-finger hold crosses
	// its threshold.
	GoldReady bool
	// PinchEdge is set on the first tick of a pinch; sustained pinches do
	// not re-fire.
	PinchEdge bool
}

// Classifier maps hand landmark sets to gestures with temporal hysteresis:
// hold timers for the confirm gestures and an edge latch for pinch.
type Classifier struct {
	cfg   GestureConfig
	rules []gestureRule

	last         Gesture
	victoryHold  float64
	threeHold    float64
	victoryFired bool
	threeFired   bool
	pinchLatched bool
}

// NewClassifier creates a classifier with the fixed priority rule order:
// point, fist, open, pinch, victory, three-finger.
func NewClassifier(cfg GestureConfig) *Classifier {
	c := &Classifier{cfg: cfg, last: GestureSearching}
	c.rules = []gestureRule{
		{GesturePoint, func(c *Classifier, h Hand) bool {
			return c.extended(h, lmIndexTip, lmIndexMCP) &&
				!c.extended(h, lmMiddleTip, lmMiddleMCP) &&
				!c.extended(h, lmRingTip, lmRingMCP) &&
				!c.extended(h, lmPinkyTip, lmPinkyMCP)
		}},
		{GestureFist, func(c *Classifier, h Hand) bool {
			return !c.extended(h, lmIndexTip, lmIndexMCP) &&
				!c.extended(h, lmMiddleTip, lmMiddleMCP) &&
				!c.extended(h, lmRingTip, lmRingMCP) &&
				!c.extended(h, lmPinkyTip, lmPinkyMCP)
		}},
		{GestureOpen, func(c *Classifier, h Hand) bool {
			return c.extended(h, lmThumbTip, lmThumbMCP) &&
				c.extended(h, lmIndexTip, lmIndexMCP) &&
				c.extended(h, lmMiddleTip, lmMiddleMCP) &&
				c.extended(h, lmRingTip, lmRingMCP) &&
				c.extended(h, lmPinkyTip, lmPinkyMCP)
		}},
		{GesturePinch, func(c *Classifier, h Hand) bool {
			return h[lmThumbTip].Dist(h[lmIndexTip]) < c.cfg.PinchThreshold
		}},
		{GestureVictory, func(c *Classifier, h Hand) bool {
			return c.extended(h, lmIndexTip, lmIndexMCP) &&
				c.extended(h, lmMiddleTip, lmMiddleMCP) &&
				!c.extended(h, lmRingTip, lmRingMCP) &&
				!c.extended(h, lmPinkyTip, lmPinkyMCP)
		}},
		{GestureThreeFinger, func(c *Classifier, h Hand) bool {
			return c.extended(h, lmIndexTip, lmIndexMCP) &&
				c.extended(h, lmMiddleTip, lmMiddleMCP) &&
				c.extended(h, lmRingTip, lmRingMCP) &&
				!c.extended(h, lmPinkyTip, lmPinkyMCP)
		}},
	}
	return c
}

// extended reports whether a digit is extended: tip-to-wrist distance
// exceeds ExtendRatio times knuckle-to-wrist.
func (c *Classifier) extended(h Hand, tip, knuckle int) bool {
	wrist := h[lmWrist]
	return h[tip].Dist(wrist) > c.cfg.ExtendRatio*h[knuckle].Dist(wrist)
}

// Classify maps one landmark set to a gesture with no side effects. A nil
// or short hand classifies as searching.
func (c *Classifier) Classify(h Hand) Gesture {
	if len(h) < landmarkCount {
		return GestureSearching
	}
	for _, r := range c.rules {
		if r.match(c, h) {
			return r.gesture
		}
	}
	return GestureTracing
}

// Step runs one classification tick: classify, then advance or reset the
// hold timers and the pinch latch. Searching frames change nothing.
func (c *Classifier) Step(h Hand) StepResult {
	g := c.Classify(h)
	if g == GestureSearching {
		return StepResult{Gesture: GestureSearching}
	}

	res := StepResult{Gesture: g}

	if g == GestureVictory {
		c.victoryHold += c.cfg.TickSeconds
		if !c.victoryFired && c.victoryHold >= c.cfg.VictoryHoldSeconds {
			c.victoryFired = true
			res.EpicReady = true
		}
	} else {
		c.victoryHold = 0
		c.victoryFired = false
	}

	if g == GestureThreeFinger {
		c.threeHold += c.cfg.TickSeconds
		if !c.threeFired && c.threeHold >= c.cfg.ThreeHoldSeconds {
			c.threeFired = true
			res.GoldReady = true
		}
	} else {
		c.threeHold = 0
		c.threeFired = false
	}

	if g == GesturePinch {
		if !c.pinchLatched {
			c.pinchLatched = true
			res.PinchEdge = true
		}
	} else {
		c.pinchLatched = false
	}

	c.last = g
	return res
}

// Last returns the most recent non-searching classification.
func (c *Classifier) Last() Gesture {
	return c.last
}

// ResetHolds zeroes both hold timers, e.g. when the epic sequence fires.
func (c *Classifier) ResetHolds() {
	c.victoryHold = 0
	c.threeHold = 0
	c.victoryFired = false
	c.threeFired = false
}

// VictoryHold returns the accumulated victory hold in tick-seconds, exposed
// for the hold-progress overlay.
func (c *Classifier) VictoryHold() float64 { return c.victoryHold }

// ThreeHold returns the accumulated three-finger hold in tick-seconds.
func (c *Classifier) ThreeHold() float64 { return c.threeHold }

// handSize estimates hand scale as the wrist-to-middle-knuckle distance.
// The point gesture zooms proportionally to it.
func handSize(h Hand) float64 {
	return h[lmWrist].Dist(h[lmMiddleMCP])
}

// palmDeviation is the palm's horizontal offset from frame center in
// [-0.5, 0.5]. The fist gesture rotates the orbit by it.
func palmDeviation(h Hand) float64 {
	return h[lmWrist].X - 0.5
}
