package geodata

import (
	"github.com/flywave/go-geo"
	vec2d "github.com/flywave/go3d/float64/vec2"

	"github.com/carlesmila/geoblog/internal/geostat"
)

// ReprojectPoints transforms point coordinates between coordinate reference
// systems. Values and covariates pass through untouched. A no-op when the
// systems are equal.
func ReprojectPoints(points []geostat.Point, from, to geo.Proj) []geostat.Point {
	if from == nil || to == nil || from.Eq(to) {
		return points
	}
	coords := make([]vec2d.T, len(points))
	for i, p := range points {
		coords[i] = vec2d.T{p.X, p.Y}
	}
	coords = from.TransformTo(to, coords)

	out := make([]geostat.Point, len(points))
	for i, p := range points {
		out[i] = p
		out[i].X = coords[i][0]
		out[i].Y = coords[i][1]
	}
	return out
}

// ReprojectRect transforms a bounding rectangle between systems.
func ReprojectRect(rect vec2d.Rect, from, to geo.Proj) vec2d.Rect {
	if from == nil || to == nil || from.Eq(to) {
		return rect
	}
	return from.TransformRectTo(to, rect, 16)
}
