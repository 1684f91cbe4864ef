package geostat

import (
	"math"

	vec2d "github.com/flywave/go3d/float64/vec2"
)

// ConvexHull is the convex hull of a station network, usable as a coverage
// Mask: interpolation outside the hull is extrapolation and is masked off
// when no region boundary is supplied.
type ConvexHull struct {
	points []Point
	hull   []vec2d.T
	edges  []hullEdge
}

type hullEdge struct {
	start vec2d.T
	end   vec2d.T
}

// NewConvexHull wraps the stations; the hull itself is computed lazily.
func NewConvexHull(points []Point) *ConvexHull {
	return &ConvexHull{points: points}
}

// Rect returns the bounding rectangle of the hull vertices.
func (c *ConvexHull) Rect() vec2d.Rect {
	r := vec2d.Rect{Min: vec2d.MaxVal, Max: vec2d.MinVal}
	for i := range c.Hull() {
		r.Extend(&c.hull[i])
	}
	return r
}

// Hull returns the hull vertices in counterclockwise order, computed by
// quickhull.
func (c *ConvexHull) Hull() []vec2d.T {
	if c.hull == nil {
		minX, maxX := c.extremePoints()
		c.hull = append(c.quickHull(c.points, maxX, minX), c.quickHull(c.points, minX, maxX)...)
	}
	return c.hull
}

func (c *ConvexHull) buildEdges() []hullEdge {
	if c.edges == nil {
		hull := c.Hull()
		for i, start := range hull {
			next := i + 1
			if next >= len(hull) {
				next = 0
			}
			c.edges = append(c.edges, hullEdge{start: start, end: hull[next]})
		}
	}
	return c.edges
}

func cross2(lhs, rhs vec2d.T) float64 {
	return lhs[0]*rhs[1] - lhs[1]*rhs[0]
}

// Contains reports whether the location is on or inside the hull.
func (c *ConvexHull) Contains(x, y float64) bool {
	p := vec2d.T{x, y}
	for _, e := range c.buildEdges() {
		edge := vec2d.Sub(&e.end, &e.start)
		toPoint := vec2d.Sub(&p, &e.start)
		if cross2(edge, toPoint) < 0 {
			return false
		}
	}
	return true
}

func (c *ConvexHull) extremePoints() (minX, maxX vec2d.T) {
	minX = vec2d.T{math.MaxFloat64, 0}
	maxX = vec2d.T{-math.MaxFloat64, 0}

	for _, p := range c.points {
		if p.X < minX[0] {
			minX = vec2d.T{p.X, p.Y}
		}
		if maxX[0] < p.X {
			maxX = vec2d.T{p.X, p.Y}
		}
	}
	return minX, maxX
}

func (c *ConvexHull) quickHull(points []Point, start, end vec2d.T) []vec2d.T {
	leftOf := c.leftOfLine(points, start, end)
	if len(leftOf) == 0 {
		return []vec2d.T{end}
	}

	farthest := farthestPoint(leftOf, start, end)

	return append(
		c.quickHull(leftOf, farthest, end),
		c.quickHull(leftOf, start, farthest)...)
}

// leftOfLine keeps the points strictly left of the directed line start→end.
func (c *ConvexHull) leftOfLine(points []Point, start, end vec2d.T) []Point {
	var kept []Point
	for _, p := range points {
		if lineDistance(p, start, end) > 0 {
			kept = append(kept, p)
		}
	}
	return kept
}

func lineDistance(p Point, start, end vec2d.T) float64 {
	line := vec2d.Sub(&end, &start)
	pv := vec2d.T{p.X - start[0], p.Y - start[1]}
	return cross2(line, pv)
}

func farthestPoint(points []Point, start, end vec2d.T) vec2d.T {
	maxDist := -math.MaxFloat64
	var far vec2d.T
	for _, p := range points {
		if d := lineDistance(p, start, end); d > maxDist {
			maxDist = d
			far = vec2d.T{p.X, p.Y}
		}
	}
	return far
}
