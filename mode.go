package arbor

// DisplayMode identifies one of the spatial formations all particles animate
// toward. Exactly one mode is active at a time; it is mutated only through
// ModeMachine.Request.
type DisplayMode uint8

const (
	// ModeTree arranges particles into the cone-shaped tree formation.
	ModeTree DisplayMode = iota
	// ModeScatter arranges particles into the spherical nebula formation.
	ModeScatter
	// ModeFocus zooms in on a single selected photo card. Particle targets
	// reuse their scatter positions in this mode.
	ModeFocus

	modeCount
)

// String returns the mode's display name.
func (m DisplayMode) String() string {
	switch m {
	case ModeTree:
		return "tree"
	case ModeScatter:
		return "scatter"
	case ModeFocus:
		return "zoom"
	}
	return "unknown"
}

// ModeEvent is a request to change the display mode. Events are the only
// inputs the mode machine accepts; whether they cause a transition depends
// on the current mode and the sequence lock.
type ModeEvent uint8

const (
	// EventToggleFormation flips between tree and scatter. Two-finger
	// double-tap on the touch surface.
	EventToggleFormation ModeEvent = iota
	// EventOpenHand forces the scatter formation.
	EventOpenHand
	// EventFist forces the tree formation.
	EventFist
	// EventSelectPhoto enters focus mode. The caller is responsible for
	// verifying a photo card exists before requesting.
	EventSelectPhoto
	// EventCloseFocus leaves focus mode back to the tree.
	EventCloseFocus
	// EventSequenceDone is the forced return to the tree when the epic
	// sequence completes. It is the only event honored while locked.
	EventSequenceDone
)

// ModeMachine holds the current display mode and enforces legal transitions.
// While the epic sequence runs the machine is locked: every event except
// EventSequenceDone is rejected.
type ModeMachine struct {
	mode   DisplayMode
	locked bool
}

// NewModeMachine returns a machine starting in ModeTree.
func NewModeMachine() *ModeMachine {
	return &ModeMachine{mode: ModeTree}
}

// Mode returns the current display mode.
func (m *ModeMachine) Mode() DisplayMode {
	return m.mode
}

// Lock rejects all transition requests except EventSequenceDone until
// Unlock is called. The epic sequence orchestrator owns the lock.
func (m *ModeMachine) Lock() { m.locked = true }

// Unlock re-enables ordinary transitions.
func (m *ModeMachine) Unlock() { m.locked = false }

// Locked reports whether the machine is currently locked.
func (m *ModeMachine) Locked() bool { return m.locked }

// Request applies a mode event. It returns the (possibly unchanged) current
// mode and whether a transition occurred. Illegal requests are no-ops, never
// errors: the caller decides whether to surface a status message.
func (m *ModeMachine) Request(ev ModeEvent) (DisplayMode, bool) {
	if m.locked && ev != EventSequenceDone {
		return m.mode, false
	}

	next := m.mode
	switch ev {
	case EventToggleFormation:
		switch m.mode {
		case ModeTree:
			next = ModeScatter
		case ModeScatter:
			next = ModeTree
		}
	case EventOpenHand:
		if m.mode != ModeFocus {
			next = ModeScatter
		}
	case EventFist:
		if m.mode != ModeFocus {
			next = ModeTree
		}
	case EventSelectPhoto:
		if m.mode == ModeTree || m.mode == ModeScatter {
			next = ModeFocus
		}
	case EventCloseFocus:
		if m.mode == ModeFocus {
			next = ModeTree
		}
	case EventSequenceDone:
		next = ModeTree
	}

	changed := next != m.mode
	m.mode = next
	return m.mode, changed
}
