package arbor

import "fmt"

// LandmarkProvider is the vision-model collaborator. Given the engine's
// current time it returns zero or one hand's landmark set; a nil Hand with a
// nil error means no hand this frame. Errors must be human-readable; the
// engine turns them into status messages, never faults.
type LandmarkProvider interface {
	Detect(now float64) (Hand, error)
	// Close releases the stream and model resources. Must be idempotent.
	Close() error
}

// SessionState is the camera-mode setup state machine. One transition per
// completed asynchronous step, so each failure point is independently
// testable.
type SessionState uint8

const (
	SessionInit SessionState = iota
	SessionModelLoading
	SessionPermissionPending
	SessionStreaming
	SessionFailed
)

// String returns the state's display name.
func (s SessionState) String() string {
	switch s {
	case SessionInit:
		return "init"
	case SessionModelLoading:
		return "model-loading"
	case SessionPermissionPending:
		return "permission-pending"
	case SessionStreaming:
		return "streaming"
	case SessionFailed:
		return "failed"
	}
	return "unknown"
}

// VisionSession scopes the camera stream and model handle to the lifetime of
// camera input mode. Acquire and release are paired: Close runs on mode exit
// or engine teardown regardless of which exit path was taken, and is safe to
// call twice.
type VisionSession struct {
	state         SessionState
	provider      LandmarkProvider
	failure       string
	fallbackTried bool
}

// NewVisionSession wraps a provider in an unstarted session.
func NewVisionSession(p LandmarkProvider) *VisionSession {
	return &VisionSession{provider: p}
}

// State returns the current setup state.
func (s *VisionSession) State() SessionState { return s.state }

// Failure returns the human-readable failure message, empty unless the
// session is in SessionFailed.
func (s *VisionSession) Failure() string { return s.failure }

// Begin starts the async setup: model load first.
func (s *VisionSession) Begin() error {
	if s.state != SessionInit {
		return fmt.Errorf("arbor: vision session already started (state %s)", s.state)
	}
	s.state = SessionModelLoading
	return nil
}

// ModelLoaded records the model-load step's outcome.
func (s *VisionSession) ModelLoaded(err error) {
	if s.state != SessionModelLoading {
		return
	}
	if err != nil {
		s.fail(fmt.Sprintf("hand model failed to load: %v", err))
		return
	}
	s.state = SessionPermissionPending
}

// PermissionResult records the camera-permission step's outcome.
func (s *VisionSession) PermissionResult(err error) {
	if s.state != SessionPermissionPending {
		return
	}
	if err != nil {
		s.fail(fmt.Sprintf("camera permission denied: %v", err))
	}
}

// StreamStarted records the stream-start step's outcome. A failed
// constrained acquisition is retried once best-effort: the first constrained
// failure returns retry=true and keeps the session in permission-pending so
// the caller re-attempts without constraints. Any later failure is final.
func (s *VisionSession) StreamStarted(err error, constrained bool) (retry bool) {
	if s.state != SessionPermissionPending {
		return false
	}
	if err == nil {
		s.state = SessionStreaming
		return false
	}
	if constrained && !s.fallbackTried {
		s.fallbackTried = true
		return true
	}
	s.fail(fmt.Sprintf("camera stream unavailable: %v", err))
	return false
}

// Detect forwards to the provider only while streaming; before the stream is
// ready or after a failure it is a no-op returning no hand.
func (s *VisionSession) Detect(now float64) (Hand, error) {
	if s.state != SessionStreaming || s.provider == nil {
		return nil, nil
	}
	return s.provider.Detect(now)
}

// Close releases the provider and resets the session for a future camera
// mode entry. Idempotent.
func (s *VisionSession) Close() error {
	var err error
	if s.provider != nil {
		err = s.provider.Close()
		s.provider = nil
	}
	s.state = SessionInit
	s.failure = ""
	s.fallbackTried = false
	return err
}

func (s *VisionSession) fail(msg string) {
	s.state = SessionFailed
	s.failure = msg
	if s.provider != nil {
		s.provider.Close()
		s.provider = nil
	}
}
