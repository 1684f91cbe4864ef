package analysis

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carlesmila/geoblog/internal/config"
	"github.com/carlesmila/geoblog/internal/geostat"
)

const testBoundary = `{
  "type": "FeatureCollection",
  "features": [{
    "type": "Feature",
    "properties": {"name": "study area"},
    "geometry": {
      "type": "Polygon",
      "coordinates": [[[0,0],[10,0],[10,10],[0,10],[0,0]]]
    }
  }]
}`

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dataDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, germanyBoundaryFile), []byte(testBoundary), 0o644))
	return &config.Config{
		DataDir:       dataDir,
		OutputDir:     filepath.Join(t.TempDir(), "out"),
		WorkingEPSG:   4326,
		GridPixelSize: 1,
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// gradientStations is a 3x3 lattice with value x + y.
func gradientStations() []geostat.Point {
	var points []geostat.Point
	for _, x := range []float64{1, 5, 9} {
		for _, y := range []float64{1, 5, 9} {
			points = append(points, geostat.Point{X: x, Y: y, Value: x + y})
		}
	}
	return points
}

func writeStationsCSV(t *testing.T, dir string) {
	t.Helper()
	csv := "longitude,latitude,prcp\n"
	for _, p := range gradientStations() {
		csv += fmt.Sprintf("%g,%g,%g\n", p.X, p.Y, p.Value)
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, germanyPrecipFile), []byte(csv), 0o644))
}

func TestPrecipIDW_FromCSV(t *testing.T) {
	cfg := testConfig(t)
	writeStationsCSV(t, cfg.DataDir)

	summary, err := PrecipIDW(context.Background(), cfg, discardLogger(), nil, 2019)
	require.NoError(t, err)

	assert.Equal(t, 2019, summary.Year)
	assert.Equal(t, 9, summary.Stations)
	require.Len(t, summary.Powers, len(DefaultPowers))
	assert.Contains(t, DefaultPowers, summary.BestPower)

	for _, result := range summary.Powers {
		assert.Greater(t, result.CV.RMSE, 0.0)
		assert.Equal(t, 9, result.CV.N)
	}

	for _, name := range []string{
		"precip_idw_p1.png", "precip_idw_p2.png", "precip_idw_p5.png",
		"precip_cv_scatter.png", "precip_summary.json",
	} {
		_, err := os.Stat(filepath.Join(cfg.OutputDir, name))
		assert.NoError(t, err, name)
	}
}

type fakeSource struct {
	locationID string
	year       int
	points     []geostat.Point
}

func (f *fakeSource) YearlyPrecipitation(_ context.Context, locationID string, year int) ([]geostat.Point, error) {
	f.locationID = locationID
	f.year = year
	return f.points, nil
}

func TestPrecipIDW_FromSource(t *testing.T) {
	cfg := testConfig(t)
	source := &fakeSource{points: gradientStations()}

	summary, err := PrecipIDW(context.Background(), cfg, discardLogger(), source, 2018)
	require.NoError(t, err)

	assert.Equal(t, "FIPS:GM", source.locationID)
	assert.Equal(t, 2018, source.year)
	assert.Equal(t, 9, summary.Stations)
}

func TestPrecipIDW_HullFallback(t *testing.T) {
	// Without a boundary file the convex hull of the stations clips the
	// grid instead.
	cfg := testConfig(t)
	require.NoError(t, os.Remove(filepath.Join(cfg.DataDir, germanyBoundaryFile)))
	writeStationsCSV(t, cfg.DataDir)

	summary, err := PrecipIDW(context.Background(), cfg, discardLogger(), nil, 2019)
	require.NoError(t, err)
	assert.Equal(t, 9, summary.Stations)
}

func TestPrecipIDW_MissingData(t *testing.T) {
	cfg := testConfig(t)

	_, err := PrecipIDW(context.Background(), cfg, discardLogger(), nil, 2019)
	assert.Error(t, err)
}
