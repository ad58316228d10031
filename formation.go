package arbor

import (
	"math"
	"math/rand/v2"
)

// TreeShape describes the cone volume the tree formation fills.
type TreeShape struct {
	// Height is the cone height in world units.
	Height float64 `yaml:"height"`
	// BaseRadius is the cone radius at ground level.
	BaseRadius float64 `yaml:"base_radius"`
}

// GroupConfig controls how one typed particle group is created.
type GroupConfig struct {
	// Name is the group's material tag ("gold", "silver", "gem", ...).
	Name string `yaml:"name"`
	// Count is the number of particles in the group.
	Count int `yaml:"count"`
	// Shell is the radius band of the group's scatter shell. Groups get
	// distinct bands so the nebula reads as concentric layers.
	Shell Range `yaml:"shell"`
	// Scale is the range of per-particle decorative scales.
	Scale Range `yaml:"scale"`
	// RadiusScale shrinks the cone radius for groups that hug the trunk
	// (1.0 = full cone).
	RadiusScale float64 `yaml:"radius_scale"`
	// SpinRate is the range of per-axis rotation velocities in rad/s.
	SpinRate Range `yaml:"spin_rate"`
	// GlyphEligible marks the group as part of the text-formation subset
	// during the epic sequence.
	GlyphEligible bool `yaml:"glyph_eligible"`
	// Color is the group's material tint, passed through to the render
	// snapshot untouched.
	Color Color `yaml:"color"`
}

// treePoint samples one position inside the cone volume. Area-correct radial
// sampling (sqrt) so the cone fills evenly instead of clustering at the axis.
func treePoint(r *rand.Rand, shape TreeShape, radiusScale float64) Vec3 {
	if radiusScale <= 0 {
		radiusScale = 1
	}
	h := r.Float64()
	maxR := shape.BaseRadius * (1 - h) * radiusScale
	rad := maxR * math.Sqrt(r.Float64())
	ang := r.Float64() * 2 * math.Pi
	return Vec3{
		X: rad * math.Cos(ang),
		Y: h * shape.Height,
		Z: rad * math.Sin(ang),
	}
}

// shellPoint samples one position on a spherical shell whose radius lies in
// band. Uniform over the sphere surface.
func shellPoint(r *rand.Rand, band Range) Vec3 {
	z := 2*r.Float64() - 1
	theta := r.Float64() * 2 * math.Pi
	planar := math.Sqrt(1 - z*z)
	dir := Vec3{
		X: planar * math.Cos(theta),
		Y: z,
		Z: planar * math.Sin(theta),
	}
	return dir.Scale(band.Random(r))
}
