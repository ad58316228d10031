package arbor

// SignalKind identifies one of the abstract interaction signals both input
// sources produce. The engine is agnostic to whether a signal came from the
// touch surface or the gesture classifier.
type SignalKind uint8

const (
	// SignalRotateBy rotates the camera orbit by Amount radians.
	SignalRotateBy SignalKind = iota
	// SignalZoomBy changes the camera orbit distance by Amount units.
	SignalZoomBy
	// SignalSelectAt selects the photo card nearest the screen point (X, Y).
	// A negative X marks a random selection (gesture pinch-select).
	SignalSelectAt
	// SignalHoldStart begins a hold-to-confirm press on the star hotspot.
	SignalHoldStart
	// SignalHoldProgress reports hold progress in [0, 1].
	SignalHoldProgress
	// SignalHoldEnd ends a hold before completion.
	SignalHoldEnd
	// SignalBurst fires a decorative burst (touch double-tap).
	SignalBurst
	// SignalToggleFormation flips tree/scatter (two-finger tap).
	SignalToggleFormation
	// SignalGoldMode triggers the temporary gold emphasis state.
	SignalGoldMode
	// SignalEpicTrigger starts the epic sequence.
	SignalEpicTrigger
	// SignalForceMode forces the display mode carried in Mode.
	SignalForceMode
	// SignalRepulseAt places the transient repulsion point under the active
	// single pointer at screen coordinates (X, Y).
	SignalRepulseAt
	// SignalRepulseEnd clears the repulsion point.
	SignalRepulseEnd
)

// String returns a short name for logging and the operator console.
func (k SignalKind) String() string {
	switch k {
	case SignalRotateBy:
		return "rotate-by"
	case SignalZoomBy:
		return "zoom-by"
	case SignalSelectAt:
		return "select-at"
	case SignalHoldStart:
		return "hold-start"
	case SignalHoldProgress:
		return "hold-progress"
	case SignalHoldEnd:
		return "hold-end"
	case SignalBurst:
		return "burst"
	case SignalToggleFormation:
		return "toggle-formation"
	case SignalGoldMode:
		return "gold-mode"
	case SignalEpicTrigger:
		return "epic"
	case SignalForceMode:
		return "force-mode"
	case SignalRepulseAt:
		return "repulse-at"
	case SignalRepulseEnd:
		return "repulse-end"
	}
	return "unknown"
}

// Signal is one abstract interaction event. Only the fields relevant to the
// kind are populated.
type Signal struct {
	Kind SignalKind

	// Amount carries rotate/zoom deltas.
	Amount float64

	// X, Y carry screen coordinates for select-at and repulse-at.
	X, Y float64

	// Mode carries the target mode for force-mode.
	Mode DisplayMode

	// Progress carries hold progress in [0, 1] for hold-progress.
	Progress float64
}

// SignalSink consumes abstract interaction signals. The engine is the only
// production sink; tests substitute recorders.
type SignalSink interface {
	Signal(Signal)
}
