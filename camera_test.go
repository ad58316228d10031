package arbor

import (
	"math"
	"testing"
)

func testCameraConfig() CameraConfig {
	return CameraConfig{
		StartDistance: 120,
		MinDistance:   40,
		MaxDistance:   260,
		FOVDegrees:    50,
		Pitch:         0.25,
		LookAtHeight:  28,
		FrameMargin:   1.25,
	}
}

func TestZoomClamps(t *testing.T) {
	r := NewRig(testCameraConfig())

	r.ZoomBy(-1000)
	if r.Distance != 40 {
		t.Errorf("distance after huge zoom-in = %g, want clamped 40", r.Distance)
	}
	r.ZoomBy(1000)
	if r.Distance != 260 {
		t.Errorf("distance after huge zoom-out = %g, want clamped 260", r.Distance)
	}
}

func TestRotateAccumulates(t *testing.T) {
	r := NewRig(testCameraConfig())
	r.RotateBy(0.3)
	r.RotateBy(-0.1)
	if math.Abs(r.Yaw-0.2) > 1e-12 {
		t.Errorf("yaw = %g, want 0.2", r.Yaw)
	}
}

func TestPositionOrbitsLookAt(t *testing.T) {
	r := NewRig(testCameraConfig())
	for _, yaw := range []float64{0, 1, 2, 3, 4, 5} {
		r.Yaw = yaw
		if d := r.Position().Dist(r.LookAt); math.Abs(d-r.Distance) > 1e-9 {
			t.Errorf("yaw %g: eye distance = %g, want %g", yaw, d, r.Distance)
		}
	}
}

func TestProjectCentersLookAt(t *testing.T) {
	r := NewRig(testCameraConfig())
	x, y, ok := r.Project(r.LookAt, 1000, 700)
	if !ok {
		t.Fatal("look-at point projected as not visible")
	}
	if math.Abs(x-500) > 1e-6 || math.Abs(y-350) > 1e-6 {
		t.Errorf("look-at projects to (%g, %g), want viewport center (500, 350)", x, y)
	}
}

func TestProjectBehindCamera(t *testing.T) {
	r := NewRig(testCameraConfig())
	behind := r.Position().Add(r.Forward().Scale(-10))
	if _, _, ok := r.Project(behind, 1000, 700); ok {
		t.Error("point behind the camera projected as visible")
	}
}

// Unproject is Project's inverse at a known depth.
func TestUnprojectRoundTrip(t *testing.T) {
	r := NewRig(testCameraConfig())
	r.Yaw = 0.7

	world := r.Unproject(320, 180, 1000, 700, 90)
	x, y, ok := r.Project(world, 1000, 700)
	if !ok {
		t.Fatal("unprojected point not visible")
	}
	if math.Abs(x-320) > 1e-6 || math.Abs(y-180) > 1e-6 {
		t.Errorf("round trip = (%g, %g), want (320, 180)", x, y)
	}
	if d := world.Dist(r.Position()); math.Abs(d-90) > 1e-9 {
		t.Errorf("unprojected depth = %g, want 90", d)
	}
}

func TestFrameBoundsFitsBox(t *testing.T) {
	r := NewRig(testCameraConfig())
	lo := Vec3{X: -50, Y: 20}
	hi := Vec3{X: 50, Y: 44}

	r.FrameBounds(lo, hi)

	// Width dominates this box: halfW/aspect > halfH.
	halfW := 50.0 * 1.25
	want := (halfW / frameAspect) / math.Tan(r.fov/2)
	if math.Abs(r.Distance-want) > 1e-9 {
		t.Errorf("framed distance = %g, want %g", r.Distance, want)
	}
}

// Adaptive framing may push past the user zoom clamp.
func TestFrameBoundsMayExceedClamp(t *testing.T) {
	r := NewRig(testCameraConfig())
	r.FrameBounds(Vec3{X: -500, Y: -500}, Vec3{X: 500, Y: 500})
	if r.Distance <= 260 {
		t.Errorf("framed distance = %g, want beyond the 260 zoom clamp", r.Distance)
	}
}

func TestShakeDecaysToZero(t *testing.T) {
	r := NewRig(testCameraConfig())
	r.Impulse(1)
	if r.Shake() != 1 {
		t.Fatalf("shake right after impulse = %g, want 1", r.Shake())
	}

	prev := r.Shake()
	for i := 0; i < 30; i++ {
		r.Update(0.05)
		if s := r.Shake(); s > prev {
			t.Fatalf("shake grew from %g to %g", prev, s)
		}
		prev = r.Shake()
	}
	if r.Shake() != 0 {
		t.Errorf("shake after full decay = %g, want 0", r.Shake())
	}
}

func TestReframeEases(t *testing.T) {
	r := NewRig(testCameraConfig())
	r.ReframeTo(200, 1)

	r.Update(0.5)
	if r.Distance <= 120 || r.Distance >= 200 {
		t.Errorf("mid-reframe distance = %g, want between 120 and 200", r.Distance)
	}
	r.Update(1)
	if math.Abs(r.Distance-200) > 1e-6 {
		t.Errorf("post-reframe distance = %g, want 200", r.Distance)
	}
}

// Direct zoom input cancels a reframe in flight.
func TestZoomCancelsReframe(t *testing.T) {
	r := NewRig(testCameraConfig())
	r.ReframeTo(200, 1)
	r.Update(0.2)
	r.ZoomBy(5)
	mid := r.Distance

	r.Update(1)
	if r.Distance != mid {
		t.Errorf("distance = %g after cancelled reframe, want %g", r.Distance, mid)
	}
}
