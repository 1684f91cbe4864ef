package render

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/flywave/go-geo"
	vec2d "github.com/flywave/go3d/float64/vec2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carlesmila/geoblog/internal/geostat"
)

// testGrid fills a small grid from one station, leaving the eastern half
// masked at NoData.
func testGrid(t *testing.T) *geostat.Grid {
	t.Helper()
	rect := vec2d.Rect{Min: vec2d.T{0, 0}, Max: vec2d.T{4, 4}}
	georef := geo.NewGeoReference(rect, geo.NewProj(4326))
	g, err := geostat.NewGrid(georef, [2]float64{1, 1})
	require.NoError(t, err)

	w, err := geostat.NewIDW([]geostat.Point{{X: 1, Y: 1, Value: 3}}, 2)
	require.NoError(t, err)

	west := westMask{}
	require.NoError(t, g.Fill(w, west))
	return g
}

type westMask struct{}

func (westMask) Contains(x, _ float64) bool { return x < 2 }

func assertPNGWritten(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestVariogramPlot(t *testing.T) {
	sample := []geostat.VariogramBin{
		{Distance: 10, Gamma: 2, Pairs: 40},
		{Distance: 20, Gamma: 5, Pairs: 35},
		{Distance: 30, Gamma: 7, Pairs: 30},
		{Distance: 40, Gamma: 8, Pairs: 25},
	}
	models := map[string]geostat.VariogramModel{
		"spherical":   {Type: geostat.Spherical, Nugget: 1, PartialSill: 7, Range: 35},
		"exponential": {Type: geostat.Exponential, Nugget: 1, PartialSill: 7, Range: 35},
	}

	path := filepath.Join(t.TempDir(), "variogram.png")
	require.NoError(t, VariogramPlot(path, "semivariogram", sample, models))
	assertPNGWritten(t, path)
}

func TestScatterPlot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scatter.png")
	err := ScatterPlot(path, "cv", "observed", "predicted",
		[]float64{1, 2, 3}, []float64{1.1, 1.9, 3.2}, true)
	require.NoError(t, err)
	assertPNGWritten(t, path)
}

func TestScatterPlotLengthMismatch(t *testing.T) {
	err := ScatterPlot(filepath.Join(t.TempDir(), "bad.png"), "", "", "",
		[]float64{1}, []float64{1, 2}, false)
	assert.Error(t, err)
}

func TestMapPNGSkipsNoData(t *testing.T) {
	g := testGrid(t)
	stations := []geostat.Point{{X: 1, Y: 1, Value: 3}}

	path := filepath.Join(t.TempDir(), "map.png")
	require.NoError(t, MapPNG(path, "surface", g, stations))
	assertPNGWritten(t, path)
}
