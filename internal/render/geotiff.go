// Package render writes the analysis outputs: GeoTIFF surfaces and PNG
// diagnostic plots.
package render

import (
	"image"

	"github.com/flywave/go-cog"
	"github.com/flywave/go-geo"
	vec2d "github.com/flywave/go3d/float64/vec2"
	vec3d "github.com/flywave/go3d/float64/vec3"

	"github.com/carlesmila/geoblog/internal/geostat"
)

// WriteGridGeoTIFF encodes the grid predictions as a single-band LZW
// GeoTIFF.
func WriteGridGeoTIFF(path string, g *geostat.Grid) error {
	data, size, box, srs := g.TileData()
	return writeTile(path, data, size, box, srs)
}

// WriteVarianceGeoTIFF encodes the kriging variances the same way.
func WriteVarianceGeoTIFF(path string, g *geostat.Grid) error {
	data, size, box, srs := g.VarianceTileData()
	return writeTile(path, data, size, box, srs)
}

func writeTile(path string, data []float64, size [2]uint32, box vec3d.Box, srs geo.Proj) error {
	rect := image.Rect(0, 0, int(size[0]), int(size[1]))
	src := cog.NewSource(data, &rect, cog.CTLZW)
	bounds := vec2d.Rect{
		Min: vec2d.T{box.Min[0], box.Min[1]},
		Max: vec2d.T{box.Max[0], box.Max[1]},
	}
	return cog.WriteTile(path, src, bounds, srs, size, nil)
}
