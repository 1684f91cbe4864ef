package geostat

import (
	"math"

	mat2d "github.com/flywave/go3d/float64/mat2"
	vec2d "github.com/flywave/go3d/float64/vec2"
)

func degToRad(angle float64) float64 {
	return angle * math.Pi / 180
}

// Rotator rotates 2D vectors by a fixed angle in degrees.
type Rotator struct {
	Degrees float64
}

func (r Rotator) RotationMatrix() (m mat2d.T) {
	rad := degToRad(r.Degrees)

	c := math.Cos(rad)
	s := math.Sin(rad)

	m[0][0] = c
	m[0][1] = -s
	m[1][0] = s
	m[1][1] = c

	return m
}

func (r Rotator) RotateVector(v vec2d.T) vec2d.T {
	v2 := v
	mat := r.RotationMatrix()
	mat.TransformVec2(&v2)
	return v2
}

// Anisotropy describes geometric anisotropy of a variogram model: the
// direction (degrees clockwise from north) of the major continuity axis and
// the ratio of minor to major range, 0 < Ratio <= 1.
type Anisotropy struct {
	Direction float64
	Ratio     float64
}

// transform maps a separation vector into the isotropic space where distances
// can be compared against the major-axis range: rotate the major axis onto x,
// then stretch the minor axis by 1/Ratio.
func (a Anisotropy) transform(dx, dy float64) (float64, float64) {
	// The major axis sits at 90-Direction counterclockwise from east, and
	// RotateVector turns clockwise by its angle, so this brings the major
	// axis onto x.
	r := Rotator{Degrees: 90 - a.Direction}
	v := r.RotateVector(vec2d.T{dx, dy})
	return v[0], v[1] / a.Ratio
}

// Distance returns the anisotropic separation distance between two points.
func (a Anisotropy) Distance(p, q Point) float64 {
	dx, dy := a.transform(q.X-p.X, q.Y-p.Y)
	return math.Sqrt(dx*dx + dy*dy)
}
