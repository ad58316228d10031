package arbor

import (
	"math"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// CameraConfig holds the orbit rig's tunables.
type CameraConfig struct {
	// StartDistance is the initial orbit distance from the look-at point.
	StartDistance float64 `yaml:"start_distance"`
	// MinDistance and MaxDistance clamp user-driven zoom. Adaptive framing
	// during the epic sequence may exceed MaxDistance.
	MinDistance float64 `yaml:"min_distance"`
	MaxDistance float64 `yaml:"max_distance"`
	// FOVDegrees is the vertical field of view.
	FOVDegrees float64 `yaml:"fov_degrees"`
	// Pitch is the fixed downward orbit tilt in radians.
	Pitch float64 `yaml:"pitch"`
	// LookAtHeight is the Y coordinate the rig orbits around.
	LookAtHeight float64 `yaml:"look_at_height"`
	// FrameMargin pads adaptive framing so glyphs don't touch screen edges
	// (1.0 = exact fit).
	FrameMargin float64 `yaml:"frame_margin"`
}

// projection aspect assumed by adaptive framing and Project when the caller
// gives no viewport; the front end passes real dimensions to Project.
const frameAspect = 16.0 / 9.0

// shakeDuration is how long a full-strength shake impulse takes to decay.
const shakeDuration = 1.2

// Rig is the orbit camera around the formation. Rotation and zoom deltas
// arrive from the input normalizer; the epic sequence orchestrator takes the
// rig over entirely while it runs (the engine suppresses user deltas).
type Rig struct {
	// Yaw is the orbit angle in radians around the Y axis.
	Yaw float64
	// Distance is the orbit distance from the look-at point.
	Distance float64
	// LookAt is the world point the rig orbits and faces.
	LookAt Vec3

	fov      float64 // vertical FOV in radians
	pitch    float64
	minDist  float64
	maxDist  float64
	margin   float64
	pulse    float64 // transient attention-pulse distance offset
	shake    float64
	shakeAnm *gween.Tween
	reframe  *gween.Tween
}

// NewRig creates a camera rig from cfg.
func NewRig(cfg CameraConfig) *Rig {
	margin := cfg.FrameMargin
	if margin <= 0 {
		margin = 1.2
	}
	return &Rig{
		Distance: cfg.StartDistance,
		LookAt:   Vec3{Y: cfg.LookAtHeight},
		fov:      cfg.FOVDegrees * math.Pi / 180,
		pitch:    cfg.Pitch,
		minDist:  cfg.MinDistance,
		maxDist:  cfg.MaxDistance,
		margin:   margin,
	}
}

// RotateBy adds d radians to the orbit yaw.
func (r *Rig) RotateBy(d float64) {
	r.Yaw += d
}

// ZoomBy changes the orbit distance by d units, clamped to the configured
// range. Cancels any reframe tween in flight: direct input wins.
func (r *Rig) ZoomBy(d float64) {
	r.reframe = nil
	r.Distance = clamp(r.Distance+d, r.minDist, r.maxDist)
}

// Impulse starts a camera shake decaying from strength to zero over
// shakeDuration seconds.
func (r *Rig) Impulse(strength float64) {
	r.shake = strength
	r.shakeAnm = gween.New(float32(strength), 0, shakeDuration, ease.OutQuad)
}

// Shake returns the current shake intensity in [0, strength].
func (r *Rig) Shake() float64 {
	return r.shake
}

// SetPulse sets the transient attention-pulse distance offset. Zero clears.
func (r *Rig) SetPulse(v float64) {
	r.pulse = v
}

// ReframeTo eases the orbit distance to dist over duration seconds.
func (r *Rig) ReframeTo(dist float64, duration float32) {
	r.reframe = gween.New(float32(r.Distance), float32(dist), duration, ease.OutQuad)
}

// FrameBounds sets the orbit distance so the given world-space box fits the
// view with the configured margin. Called every tick during text formation,
// so it snaps rather than tweens; it may exceed the user zoom clamp.
func (r *Rig) FrameBounds(minV, maxV Vec3) {
	halfH := (maxV.Y - minV.Y) / 2 * r.margin
	halfW := (maxV.X - minV.X) / 2 * r.margin
	if need := halfW / frameAspect; need > halfH {
		halfH = need
	}
	t := math.Tan(r.fov / 2)
	if t <= 0 || halfH <= 0 {
		return
	}
	r.reframe = nil
	r.Distance = halfH / t
}

// Update advances the shake and reframe tweens by dt seconds.
func (r *Rig) Update(dt float64) {
	if r.shakeAnm != nil {
		v, done := r.shakeAnm.Update(float32(dt))
		r.shake = float64(v)
		if done {
			r.shakeAnm = nil
			r.shake = 0
		}
	}
	if r.reframe != nil {
		v, done := r.reframe.Update(float32(dt))
		r.Distance = float64(v)
		if done {
			r.reframe = nil
		}
	}
}

// Position returns the rig's world-space eye position.
func (r *Rig) Position() Vec3 {
	d := r.Distance + r.pulse
	cp := math.Cos(r.pitch)
	offset := Vec3{
		X: math.Sin(r.Yaw) * cp,
		Y: math.Sin(r.pitch),
		Z: math.Cos(r.Yaw) * cp,
	}
	return r.LookAt.Add(offset.Scale(d))
}

// Forward returns the unit vector from the eye toward the look-at point.
func (r *Rig) Forward() Vec3 {
	return r.LookAt.Sub(r.Position()).Normalize()
}

// Project maps a world point to screen coordinates for a w×h viewport using
// a simple perspective divide. ok is false when the point is behind the
// near plane; callers treat that as "not visible", never an error.
func (r *Rig) Project(p Vec3, w, h float64) (x, y float64, ok bool) {
	const near = 0.1

	eye := r.Position()
	fwd := r.Forward()
	right := fwd.Cross(Vec3{Y: 1}).Normalize()
	up := right.Cross(fwd)

	rel := p.Sub(eye)
	zc := rel.Dot(fwd)
	if zc <= near {
		return 0, 0, false
	}
	f := (h / 2) / math.Tan(r.fov/2)
	x = w/2 + rel.Dot(right)*f/zc
	y = h/2 - rel.Dot(up)*f/zc
	return x, y, true
}

// Unproject maps a screen point back to the world-space point at the given
// depth along the view ray. The touch surface's repulsion point is placed
// with it, at the look-at depth so it sits among the particles.
func (r *Rig) Unproject(x, y, w, h, depth float64) Vec3 {
	eye := r.Position()
	fwd := r.Forward()
	right := fwd.Cross(Vec3{Y: 1}).Normalize()
	up := right.Cross(fwd)

	f := (h / 2) / math.Tan(r.fov/2)
	dir := fwd.
		Add(right.Scale((x - w/2) / f)).
		Add(up.Scale((h/2 - y) / f)).
		Normalize()
	return eye.Add(dir.Scale(depth))
}

// clamp limits v to [lo, hi].
func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
