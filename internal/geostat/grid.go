package geostat

import (
	"errors"
	"fmt"

	"github.com/flywave/go-geo"
	vec2d "github.com/flywave/go3d/float64/vec2"
	vec3d "github.com/flywave/go3d/float64/vec3"
)

// NoData marks grid cells outside the coverage mask.
const NoData = float64(-9999)

// Mask restricts predictions to a study region, e.g. an administrative
// boundary polygon or the convex hull of the stations.
type Mask interface {
	Contains(x, y float64) bool
}

// Grid is a regular lattice of prediction cells over a georeferenced
// bounding box. Cells are stored row-major with row 0 at the top, the
// raster convention.
type Grid struct {
	Width  int
	Height int

	Cells     []Point
	Variances []float64

	pixelSize [2]float64
	bounds    vec2d.Rect
	srs       geo.Proj
}

// NewGrid lays out cell centers over the georeference at the given pixel
// size in CRS units.
func NewGrid(georef *geo.GeoReference, pixelSize [2]float64) (*Grid, error) {
	bbox := georef.GetBBox()
	width := int((bbox.Max[0] - bbox.Min[0]) / pixelSize[0])
	height := int((bbox.Max[1] - bbox.Min[1]) / pixelSize[1])
	if width < 1 || height < 1 {
		return nil, fmt.Errorf("grid: pixel size %v larger than extent", pixelSize)
	}

	g := &Grid{
		Width:     width,
		Height:    height,
		Cells:     make([]Point, 0, width*height),
		pixelSize: pixelSize,
		bounds:    bbox,
		srs:       georef.GetSrs(),
	}

	for y := height - 1; y >= 0; y-- {
		cy := georef.GetOrigin()[1] + pixelSize[1]*(float64(y)+0.5)
		for x := 0; x < width; x++ {
			cx := georef.GetOrigin()[0] + pixelSize[0]*(float64(x)+0.5)
			g.Cells = append(g.Cells, Point{X: cx, Y: cy, Value: NoData})
		}
	}
	return g, nil
}

// Fill predicts every cell inside the mask, leaving NoData elsewhere.
// A nil mask predicts everywhere. ErrNoNeighbors and ErrMissingCovariates on
// a cell leave it NoData; other prediction errors abort.
func (g *Grid) Fill(interp Interpolator, mask Mask) error {
	collect := func(at Point) (float64, float64, error) {
		if pv, ok := interp.(interface {
			PredictVariance(Point) (float64, float64, error)
		}); ok {
			return pv.PredictVariance(at)
		}
		v, err := interp.Predict(at)
		return v, NoData, err
	}

	g.Variances = make([]float64, len(g.Cells))
	for i := range g.Cells {
		c := &g.Cells[i]
		g.Variances[i] = NoData
		if mask != nil && !mask.Contains(c.X, c.Y) {
			c.Value = NoData
			continue
		}
		v, variance, err := collect(*c)
		if err != nil {
			if errors.Is(err, ErrNoNeighbors) || errors.Is(err, ErrMissingCovariates) {
				c.Value = NoData
				continue
			}
			return fmt.Errorf("grid: cell %d: %w", i, err)
		}
		c.Value = v
		g.Variances[i] = variance
	}
	return nil
}

// SampleCovariates assigns each in-mask cell the covariates returned by
// sample, so drift kriging can run over the grid. Cells where sample fails
// are masked out with NoData.
func (g *Grid) SampleCovariates(sample func(x, y float64) ([]float64, error)) {
	for i := range g.Cells {
		c := &g.Cells[i]
		covars, err := sample(c.X, c.Y)
		if err != nil {
			c.Value = NoData
			c.Covariates = nil
			continue
		}
		c.Covariates = covars
	}
}

// At returns the value at a row/column, row 0 at the top.
func (g *Grid) At(row, col int) float64 {
	return g.Cells[row*g.Width+col].Value
}

// VarianceAt returns the kriging variance at a row/column.
func (g *Grid) VarianceAt(row, col int) float64 {
	if g.Variances == nil {
		return NoData
	}
	return g.Variances[row*g.Width+col]
}

// X returns the x coordinate of a column center, Y of a row center counted
// from the bottom. Together with Dims and Z they expose the lattice for
// rendering.
func (g *Grid) X(col int) float64 {
	return g.bounds.Min[0] + g.pixelSize[0]*(float64(col)+0.5)
}

func (g *Grid) Y(rowFromBottom int) float64 {
	return g.bounds.Min[1] + g.pixelSize[1]*(float64(rowFromBottom)+0.5)
}

// Bounds returns the grid extent.
func (g *Grid) Bounds() vec2d.Rect { return g.bounds }

// Srs returns the grid CRS.
func (g *Grid) Srs() geo.Proj { return g.srs }

// PixelSize returns the cell size in CRS units.
func (g *Grid) PixelSize() [2]float64 { return g.pixelSize }

// TileData flattens the grid into raster tile data with its bounding box,
// ready for GeoTIFF encoding.
func (g *Grid) TileData() ([]float64, [2]uint32, vec3d.Box, geo.Proj) {
	data := make([]float64, len(g.Cells))
	for i, c := range g.Cells {
		data[i] = c.Value
	}
	box := vec3d.Box{
		Min: vec3d.T{g.bounds.Min[0], g.bounds.Min[1], 0},
		Max: vec3d.T{g.bounds.Max[0], g.bounds.Max[1], 0},
	}
	return data, [2]uint32{uint32(g.Width), uint32(g.Height)}, box, g.srs
}

// VarianceTileData flattens the kriging variances the same way.
func (g *Grid) VarianceTileData() ([]float64, [2]uint32, vec3d.Box, geo.Proj) {
	data, size, box, srs := g.TileData()
	if g.Variances != nil {
		copy(data, g.Variances)
	}
	return data, size, box, srs
}
