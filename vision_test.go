package arbor

import (
	"errors"
	"testing"
)

// fakeProvider is a scriptable LandmarkProvider.
type fakeProvider struct {
	hand    Hand
	err     error
	detects int
	closes  int
}

func (f *fakeProvider) Detect(now float64) (Hand, error) {
	f.detects++
	return f.hand, f.err
}

func (f *fakeProvider) Close() error {
	f.closes++
	return nil
}

// completeSetup walks a session through the happy path to streaming.
func completeSetup(t *testing.T, s *VisionSession) {
	t.Helper()
	if err := s.Begin(); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	s.ModelLoaded(nil)
	s.PermissionResult(nil)
	s.StreamStarted(nil, false)
	if s.State() != SessionStreaming {
		t.Fatalf("state = %v after full setup, want streaming", s.State())
	}
}

func TestSessionHappyPath(t *testing.T) {
	p := &fakeProvider{hand: makeHand(handSpec{index: true})}
	s := NewVisionSession(p)
	completeSetup(t, s)

	hand, err := s.Detect(0)
	if err != nil || len(hand) != landmarkCount {
		t.Errorf("Detect = (%d landmarks, %v), want a full hand", len(hand), err)
	}
}

func TestSessionModelLoadFailure(t *testing.T) {
	p := &fakeProvider{}
	s := NewVisionSession(p)
	s.Begin()
	s.ModelLoaded(errors.New("download failed"))

	if s.State() != SessionFailed {
		t.Fatalf("state = %v, want failed", s.State())
	}
	if s.Failure() == "" {
		t.Error("failure message empty")
	}
	if p.closes == 0 {
		t.Error("failure did not release the provider")
	}
}

func TestSessionPermissionDenied(t *testing.T) {
	s := NewVisionSession(&fakeProvider{})
	s.Begin()
	s.ModelLoaded(nil)
	s.PermissionResult(errors.New("denied by user"))

	if s.State() != SessionFailed {
		t.Errorf("state = %v, want failed", s.State())
	}
}

// A constrained stream failure is retried best-effort once; the second
// failure is final.
func TestSessionConstrainedRetry(t *testing.T) {
	s := NewVisionSession(&fakeProvider{})
	s.Begin()
	s.ModelLoaded(nil)
	s.PermissionResult(nil)

	if !s.StreamStarted(errors.New("resolution unsupported"), true) {
		t.Fatal("first constrained failure did not request a retry")
	}
	if s.State() != SessionPermissionPending {
		t.Fatalf("state = %v after retry request, want permission-pending", s.State())
	}

	// Best-effort attempt succeeds.
	if s.StreamStarted(nil, false) {
		t.Error("successful stream start requested a retry")
	}
	if s.State() != SessionStreaming {
		t.Errorf("state = %v, want streaming", s.State())
	}
}

func TestSessionConstrainedRetryOnlyOnce(t *testing.T) {
	s := NewVisionSession(&fakeProvider{})
	s.Begin()
	s.ModelLoaded(nil)
	s.PermissionResult(nil)

	s.StreamStarted(errors.New("busy"), true)
	if s.StreamStarted(errors.New("busy"), true) {
		t.Error("second constrained failure requested another retry")
	}
	if s.State() != SessionFailed {
		t.Errorf("state = %v, want failed", s.State())
	}
}

func TestDetectNoOpBeforeStreaming(t *testing.T) {
	p := &fakeProvider{hand: makeHand(handSpec{})}
	s := NewVisionSession(p)
	s.Begin()

	hand, err := s.Detect(0)
	if hand != nil || err != nil {
		t.Errorf("Detect before streaming = (%v, %v), want (nil, nil)", hand, err)
	}
	if p.detects != 0 {
		t.Error("provider consulted before the stream started")
	}
}

func TestSessionCloseIdempotent(t *testing.T) {
	p := &fakeProvider{}
	s := NewVisionSession(p)
	completeSetup(t, s)

	s.Close()
	s.Close()
	if p.closes != 1 {
		t.Errorf("provider closed %d times, want 1", p.closes)
	}
	if s.State() != SessionInit {
		t.Errorf("state = %v after close, want init", s.State())
	}

	// A closed session can be started again.
	if err := s.Begin(); err != nil {
		t.Errorf("Begin after close: %v", err)
	}
}

func TestBeginTwiceErrors(t *testing.T) {
	s := NewVisionSession(&fakeProvider{})
	s.Begin()
	if err := s.Begin(); err == nil {
		t.Error("second Begin succeeded")
	}
}
