// Package geostat implements the spatial interpolation methods used by the
// analyses: inverse distance weighting, empirical semivariograms, variogram
// model fitting, and ordinary kriging with an optional external drift.
//
// All functions expect coordinates in a single shared CRS. Reprojection is
// the caller's job (see the geodata package).
package geostat

import (
	"math"

	vec2d "github.com/flywave/go3d/float64/vec2"
)

// Point is a georeferenced observation: a coordinate pair, a measured value,
// and optional covariates (e.g. elevation) used by drift kriging.
type Point struct {
	X, Y       float64
	Value      float64
	Covariates []float64
}

// Interpolator predicts the target variable at an unsampled location.
// Implementations that use covariates (drift kriging) read them from the
// query point; the rest ignore them.
type Interpolator interface {
	Predict(at Point) (float64, error)
}

func distance(a, b Point) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Bounds returns the bounding rectangle of the points.
func Bounds(points []Point) vec2d.Rect {
	r := vec2d.Rect{Min: vec2d.MaxVal, Max: vec2d.MinVal}
	for _, p := range points {
		v := vec2d.T{p.X, p.Y}
		r.Extend(&v)
	}
	return r
}

// Values extracts the measured values in point order.
func Values(points []Point) []float64 {
	vs := make([]float64, len(points))
	for i, p := range points {
		vs[i] = p.Value
	}
	return vs
}
