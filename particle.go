package arbor

import "math/rand/v2"

// Particle holds one decorative instance's animation state. Targets are
// fixed at creation, one per display mode; Current is the only field the
// tick mutates (plus Rotation, which integrates its fixed velocity). Current
// never snaps: it is always eased toward some valid target.
type Particle struct {
	Targets  [modeCount]Vec3
	Current  Vec3
	Scale    float64
	Rotation Vec3
	Spin     Vec3 // fixed rotation velocity in rad/s per axis
}

// Group is a typed set of particles sharing a material tag. All particles in
// a group animate identically; only the material differs between groups.
type Group struct {
	Name          string
	Color         Color
	GlyphEligible bool
	Particles     []Particle
}

// focusScale and textScale are the render-scale multipliers applied in focus
// mode (declutter) and during text formation (denser glyph fill).
const (
	focusScale = 0.5
	textScale  = 0.8
)

// NewGroup creates a group with per-mode targets baked in: tree positions
// from the cone distribution, scatter positions from the group's spherical
// shell. Focus reuses scatter. Particles start at their tree target so the
// initial frame is already the tree formation.
func NewGroup(cfg GroupConfig, shape TreeShape, r *rand.Rand) *Group {
	g := &Group{
		Name:          cfg.Name,
		Color:         cfg.Color,
		GlyphEligible: cfg.GlyphEligible,
		Particles:     make([]Particle, cfg.Count),
	}
	for i := range g.Particles {
		p := &g.Particles[i]
		p.Targets[ModeTree] = treePoint(r, shape, cfg.RadiusScale)
		p.Targets[ModeScatter] = shellPoint(r, cfg.Shell)
		p.Targets[ModeFocus] = p.Targets[ModeScatter]
		p.Current = p.Targets[ModeTree]
		p.Scale = cfg.Scale.Random(r)
		p.Rotation = Vec3{
			X: r.Float64() * 6.28318,
			Y: r.Float64() * 6.28318,
			Z: r.Float64() * 6.28318,
		}
		p.Spin = Vec3{
			X: cfg.SpinRate.Random(r),
			Y: cfg.SpinRate.Random(r),
			Z: cfg.SpinRate.Random(r),
		}
	}
	return g
}

// UpdateParams carries the per-tick inputs every group update reads. One
// value is built per tick and shared across groups.
type UpdateParams struct {
	Mode DisplayMode
	// EaseRate is the exponential smoothing rate toward the target.
	EaseRate float64
	// TextForming overrides glyph-eligible groups' targets with the glyph
	// cloud while the epic sequence is in its text window.
	TextForming bool
	Glyph       *GlyphCloud
	// Repulsion, when non-nil, locally pushes nearby particles away before
	// easing. An additive perturbation, not a target replacement.
	Repulsion       *Vec3
	RepulsionRadius float64
	Dt              float64
}

// repulsionPush scales how hard the repulsion point shoves particles inside
// its radius.
const repulsionPush = 0.35

// Update advances every particle one tick: resolve the target for the
// current mode (or the glyph cloud during text formation), apply the
// repulsion nudge, ease Current toward the target, and integrate rotation.
//
// If the glyph cloud is not ready the particle keeps its Current position
// unchanged for the tick: an undefined target must never reach the
// transform.
func (g *Group) Update(u UpdateParams) {
	useGlyph := u.TextForming && g.GlyphEligible
	for i := range g.Particles {
		p := &g.Particles[i]

		var target Vec3
		if useGlyph {
			if u.Glyph == nil || u.Glyph.Len() == 0 {
				p.Rotation = p.Rotation.Add(p.Spin.Scale(u.Dt))
				continue
			}
			target = u.Glyph.Point(i)
		} else {
			target = p.Targets[u.Mode]
		}

		if u.Repulsion != nil {
			d := p.Current.Dist(*u.Repulsion)
			if d < u.RepulsionRadius {
				away := p.Current.Sub(*u.Repulsion).Normalize()
				p.Current = p.Current.Add(away.Scale((u.RepulsionRadius - d) * repulsionPush))
			}
		}

		p.Current = p.Current.Add(target.Sub(p.Current).Scale(u.EaseRate))
		p.Rotation = p.Rotation.Add(p.Spin.Scale(u.Dt))
	}
}

// RenderScale returns the per-particle draw scale for the given particle
// index under the current mode and text-formation state.
func (g *Group) RenderScale(i int, mode DisplayMode, textForming bool) float64 {
	s := g.Particles[i].Scale
	if textForming && g.GlyphEligible {
		return s * textScale
	}
	if mode == ModeFocus {
		return s * focusScale
	}
	return s
}

// MeanTargetDistance returns the average distance from Current to the target
// for the given mode. The operator console graphs it as a convergence
// measure.
func (g *Group) MeanTargetDistance(mode DisplayMode) float64 {
	if len(g.Particles) == 0 {
		return 0
	}
	var sum float64
	for i := range g.Particles {
		p := &g.Particles[i]
		sum += p.Current.Dist(p.Targets[mode])
	}
	return sum / float64(len(g.Particles))
}
