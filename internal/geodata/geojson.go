package geodata

import (
	"fmt"
	"os"

	"github.com/flywave/go-geom"
	"github.com/flywave/go-geom/general"
	vec2d "github.com/flywave/go3d/float64/vec2"

	"github.com/carlesmila/geoblog/internal/geostat"
)

// Boundary is a region polygon loaded from GeoJSON, used to clip analysis
// grids. It satisfies geostat.Mask with even-odd point-in-polygon tests over
// every ring of every polygon.
type Boundary struct {
	rings [][]vec2d.T
	rect  vec2d.Rect
}

// ReadBoundary loads the Polygon/MultiPolygon features of a GeoJSON file.
func ReadBoundary(path string) (*Boundary, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("boundary: %w", err)
	}
	fc, err := general.UnmarshalFeatureCollection(raw)
	if err != nil {
		return nil, fmt.Errorf("boundary %s: %w", path, err)
	}
	return boundaryFromFeatures(fc)
}

func boundaryFromFeatures(fc *geom.FeatureCollection) (*Boundary, error) {
	b := &Boundary{rect: vec2d.Rect{Min: vec2d.MaxVal, Max: vec2d.MinVal}}

	for _, fea := range fc.Features {
		switch g := fea.Geometry.(type) {
		case *general.Polygon:
			b.addPolygon(g)
		case *general.MultiPolygon:
			for _, poly := range g.Polygons() {
				b.addPolygon(poly)
			}
		}
	}
	if len(b.rings) == 0 {
		return nil, fmt.Errorf("boundary: no polygon features")
	}
	return b, nil
}

func (b *Boundary) addPolygon(g geom.Polygon) {
	for _, line := range g.Sublines() {
		ring := make([]vec2d.T, 0, len(line.Subpoints()))
		for _, pos := range line.Subpoints() {
			v := vec2d.T{pos.X(), pos.Y()}
			ring = append(ring, v)
			b.rect.Extend(&v)
		}
		b.rings = append(b.rings, ring)
	}
}

// Contains reports whether the location is inside the region. A location
// inside an even number of rings (e.g. within a hole) is outside.
func (b *Boundary) Contains(x, y float64) bool {
	if x < b.rect.Min[0] || x > b.rect.Max[0] || y < b.rect.Min[1] || y > b.rect.Max[1] {
		return false
	}
	crossings := 0
	for _, ring := range b.rings {
		if ringContains(ring, x, y) {
			crossings++
		}
	}
	return crossings%2 == 1
}

// Rect returns the bounding rectangle of the region.
func (b *Boundary) Rect() vec2d.Rect { return b.rect }

func ringContains(ring []vec2d.T, x, y float64) bool {
	contains := false
	n := len(ring)
	j := n - 1
	for i := 0; i < n; i++ {
		xi, yi := ring[i][0], ring[i][1]
		xj, yj := ring[j][0], ring[j][1]
		if ((yi > y) != (yj > y)) && (x < (xj-xi)*(y-yi)/(yj-yi)+xi) {
			contains = !contains
		}
		j = i
	}
	return contains
}

// ReadStationsGeoJSON extracts Point and MultiPoint features whose third
// coordinate carries the measured value, the layout used by the point
// exports in data/.
func ReadStationsGeoJSON(path string) ([]geostat.Point, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("stations geojson: %w", err)
	}
	fc, err := general.UnmarshalFeatureCollection(raw)
	if err != nil {
		return nil, fmt.Errorf("stations geojson %s: %w", path, err)
	}

	var points []geostat.Point
	for _, fea := range fc.Features {
		switch g := fea.Geometry.(type) {
		case *general.Point:
			points = append(points, pointFromCoords(g.X(), g.Y(), g.Data()))
		case *general.MultiPoint:
			for _, pos := range g.Points() {
				points = append(points, pointFromCoords(pos.X(), pos.Y(), pos.Data()))
			}
		}
	}
	if len(points) == 0 {
		return nil, fmt.Errorf("stations geojson %s: no point features", path)
	}
	return points, nil
}

func pointFromCoords(x, y float64, data []float64) geostat.Point {
	p := geostat.Point{X: x, Y: y}
	if len(data) > 2 {
		p.Value = data[2]
	}
	return p
}
