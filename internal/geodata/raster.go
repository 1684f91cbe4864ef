package geodata

import (
	"fmt"
	"math"

	"github.com/flywave/go-cog"
	"github.com/flywave/go-geoid"
)

// NoData marks raster cells with no measurement.
const NoData = float64(-9999)

// ErrOutsideRaster is returned when sampling beyond the raster extent.
var ErrOutsideRaster = fmt.Errorf("geodata: location outside raster extent")

// rasterBand is a single band of gridded values with its georeferencing,
// decoupled from the file reader so sampling can be tested on synthetic
// grids.
type rasterBand struct {
	data          []float64
	width, height int
	origin        [2]float64 // lower-left corner
	pixelSize     [2]float64
}

// ElevationRaster samples a single-band elevation GeoTIFF. Queries use the
// raster's own CRS coordinates.
type ElevationRaster struct {
	band rasterBand

	// Non-nil when heights are converted from an orthometric datum to
	// ellipsoidal on read.
	geoid *geoid.Geoid
}

// OpenElevation reads a single-band float64 GeoTIFF. When datum names an
// orthometric vertical datum, sampled heights are converted to ellipsoidal
// heights.
func OpenElevation(path string, datum geoid.VerticalDatum) (*ElevationRaster, error) {
	reader := cog.Read(path)
	if reader == nil {
		return nil, fmt.Errorf("elevation raster %s: read failed", path)
	}
	data, ok := reader.Data[0].([]float64)
	if !ok {
		return nil, fmt.Errorf("elevation raster %s: band 0 is not float64", path)
	}

	size := reader.GetSize(0)
	bounds := reader.GetBounds(0)
	ps := reader.GetPixelSize(0)

	r := &ElevationRaster{
		band: rasterBand{
			data:      data,
			width:     int(size[0]),
			height:    int(size[1]),
			origin:    [2]float64{bounds.Min[0], bounds.Min[1]},
			pixelSize: [2]float64{math.Abs(ps[0]), math.Abs(ps[1])},
		},
	}
	if datum != geoid.UNKNOWN && datum != geoid.HAE {
		r.geoid = geoid.NewGeoid(datum, false)
	}
	return r, nil
}

// NewElevationRaster wraps an in-memory band, for synthetic surfaces and
// tests. data is row-major with row 0 at the top; origin is the lower-left
// corner.
func NewElevationRaster(data []float64, width, height int, origin, pixelSize [2]float64) *ElevationRaster {
	return &ElevationRaster{
		band: rasterBand{
			data:      data,
			width:     width,
			height:    height,
			origin:    origin,
			pixelSize: pixelSize,
		},
	}
}

// Sample returns the bilinearly interpolated elevation at the location.
func (r *ElevationRaster) Sample(x, y float64) (float64, error) {
	h, err := r.band.bilinear(x, y)
	if err != nil {
		return 0, err
	}
	if r.geoid != nil {
		h = r.geoid.ConvertHeight(x, y, h, geoid.GEOIDTOELLIPSOID)
	}
	return h, nil
}

// SampleNearest returns the elevation of the cell containing the location.
func (r *ElevationRaster) SampleNearest(x, y float64) (float64, error) {
	h, err := r.band.nearest(x, y)
	if err != nil {
		return 0, err
	}
	if r.geoid != nil {
		h = r.geoid.ConvertHeight(x, y, h, geoid.GEOIDTOELLIPSOID)
	}
	return h, nil
}

// at clamps to the raster edge, row 0 at the top.
func (b *rasterBand) at(col, row int) float64 {
	if col >= b.width {
		col = b.width - 1
	}
	if col < 0 {
		col = 0
	}
	if row >= b.height {
		row = b.height - 1
	}
	if row < 0 {
		row = 0
	}
	return b.data[row*b.width+col]
}

// pixel converts CRS coordinates to fractional pixel coordinates.
func (b *rasterBand) pixel(x, y float64) (float64, float64, error) {
	maxX := b.origin[0] + b.pixelSize[0]*float64(b.width)
	maxY := b.origin[1] + b.pixelSize[1]*float64(b.height)
	if x < b.origin[0] || x > maxX || y < b.origin[1] || y > maxY {
		return 0, 0, ErrOutsideRaster
	}
	px := (x - b.origin[0]) / b.pixelSize[0]
	py := (maxY - y) / b.pixelSize[1]
	return px, py, nil
}

func (b *rasterBand) nearest(x, y float64) (float64, error) {
	px, py, err := b.pixel(x, y)
	if err != nil {
		return 0, err
	}
	return b.at(int(px), int(py)), nil
}

// bilinear samples the four surrounding cell centers. NoData corners are
// replaced by the mean of the valid ones before interpolating; all-NoData
// neighborhoods return NoData.
func (b *rasterBand) bilinear(x, y float64) (float64, error) {
	px, py, err := b.pixel(x, y)
	if err != nil {
		return 0, err
	}
	// Shift to cell-center space.
	px -= 0.5
	py -= 0.5

	x0 := int(math.Floor(px))
	y0 := int(math.Floor(py))
	fx := px - float64(x0)
	fy := py - float64(y0)

	nw := b.at(x0, y0)
	ne := b.at(x0+1, y0)
	sw := b.at(x0, y0+1)
	se := b.at(x0+1, y0+1)

	if avg, ok := averageValid(nw, ne, sw, se); ok {
		if nw == NoData {
			nw = avg
		}
		if ne == NoData {
			ne = avg
		}
		if sw == NoData {
			sw = avg
		}
		if se == NoData {
			se = avg
		}
	} else {
		return NoData, nil
	}

	top := lerp(nw, ne, fx)
	bottom := lerp(sw, se, fx)
	return lerp(top, bottom, fy), nil
}

func lerp(a, b, t float64) float64 { return a + (b-a)*t }

func averageValid(values ...float64) (float64, bool) {
	var sum float64
	var n int
	for _, v := range values {
		if v != NoData {
			sum += v
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}
