package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/flywave/go-geo"

	"github.com/carlesmila/geoblog/internal/config"
	"github.com/carlesmila/geoblog/internal/geodata"
	"github.com/carlesmila/geoblog/internal/geostat"
	"github.com/carlesmila/geoblog/internal/render"
)

const (
	germanyBoundaryFile = "germany.geojson"
	germanyPrecipFile   = "precip_germany.csv"
	germanyLocationID   = "FIPS:GM"
)

// DefaultPowers is the IDW exponent sweep of the precipitation study.
var DefaultPowers = []float64{1, 2, 5}

// PrecipSource provides yearly precipitation observations, normally the
// NOAA CDO client.
type PrecipSource interface {
	YearlyPrecipitation(ctx context.Context, locationID string, year int) ([]geostat.Point, error)
}

// PowerResult is one entry of the IDW power sweep.
type PowerResult struct {
	Power float64   `json:"power"`
	CV    CVSummary `json:"cv"`
}

// PrecipSummary is the JSON summary of a precipitation run.
type PrecipSummary struct {
	Year      int           `json:"year"`
	Stations  int           `json:"stations"`
	Powers    []PowerResult `json:"powers"`
	BestPower float64       `json:"best_power"`
}

// PrecipIDW interpolates yearly precipitation over Germany with an IDW
// power sweep, choosing the exponent by leave-one-out RMSE. When source is
// nil the CSV snapshot in the data directory is used instead of the API.
func PrecipIDW(ctx context.Context, cfg *config.Config, logger *slog.Logger, source PrecipSource, year int) (*PrecipSummary, error) {
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("precip: %w", err)
	}
	points, err := loadPrecip(ctx, cfg, source, year)
	if err != nil {
		return nil, err
	}
	logger.Info("loaded precipitation observations", "stations", len(points), "year", year)

	points, err = geostat.Thin(points, cfg.GridPixelSize/2)
	if err != nil {
		return nil, fmt.Errorf("precip: %w", err)
	}

	mask, rect, err := coverageMask(filepath.Join(cfg.DataDir, germanyBoundaryFile), points)
	if err != nil {
		return nil, fmt.Errorf("precip: %w", err)
	}

	georef := geo.NewGeoReference(rect, geo.NewProj(cfg.WorkingEPSG))
	summary := &PrecipSummary{Year: year, Stations: len(points)}

	var best *PowerResult
	var bestScores geostat.CVScores
	for _, power := range DefaultPowers {
		scores, err := geostat.LeaveOneOut(points, func(train []geostat.Point) (geostat.Interpolator, error) {
			return geostat.NewIDW(train, power)
		})
		if err != nil {
			return nil, fmt.Errorf("precip: power %g: %w", power, err)
		}
		logger.Info("cross-validated IDW", "power", power, "rmse", scores.RMSE, "me", scores.ME)

		grid, err := geostat.NewGrid(georef, [2]float64{cfg.GridPixelSize, cfg.GridPixelSize})
		if err != nil {
			return nil, fmt.Errorf("precip: %w", err)
		}
		interp, err := geostat.NewIDW(points, power)
		if err != nil {
			return nil, fmt.Errorf("precip: %w", err)
		}
		if err := grid.Fill(interp, mask); err != nil {
			return nil, fmt.Errorf("precip: power %g: %w", power, err)
		}

		name := fmt.Sprintf("precip_idw_p%g", power)
		if err := render.MapPNG(outPath(cfg, name+".png"),
			fmt.Sprintf("Precipitation %d, IDW power %g", year, power), grid, points); err != nil {
			return nil, fmt.Errorf("precip: %w", err)
		}
		if err := render.WriteGridGeoTIFF(outPath(cfg, name+".tif"), grid); err != nil {
			return nil, fmt.Errorf("precip: %w", err)
		}

		result := PowerResult{Power: power, CV: summarizeCV(scores)}
		summary.Powers = append(summary.Powers, result)
		if best == nil || result.CV.RMSE < best.CV.RMSE {
			r := result
			best = &r
			bestScores = scores
		}
	}

	summary.BestPower = best.Power
	logger.Info("selected IDW power", "power", best.Power, "rmse", best.CV.RMSE)

	observed := make([]float64, len(bestScores.Residuals))
	predicted := make([]float64, len(bestScores.Residuals))
	for i, r := range bestScores.Residuals {
		observed[i] = r.Point.Value
		predicted[i] = r.Predicted
	}
	if err := render.ScatterPlot(outPath(cfg, "precip_cv_scatter.png"),
		fmt.Sprintf("LOOCV, IDW power %g", best.Power),
		"observed (mm)", "predicted (mm)", observed, predicted, true); err != nil {
		return nil, fmt.Errorf("precip: %w", err)
	}

	if err := writeSummary(cfg.OutputDir, "precip_summary.json", summary); err != nil {
		return nil, fmt.Errorf("precip: %w", err)
	}
	return summary, nil
}

// loadPrecip fetches observations from the API when a source is configured,
// otherwise from the CSV snapshot. API coordinates arrive geographic and are
// brought into the working CRS; the snapshot is stored in it already.
func loadPrecip(ctx context.Context, cfg *config.Config, source PrecipSource, year int) ([]geostat.Point, error) {
	if source != nil {
		points, err := source.YearlyPrecipitation(ctx, germanyLocationID, year)
		if err != nil {
			return nil, fmt.Errorf("precip: %w", err)
		}
		return geodata.ReprojectPoints(points, geo.NewProj(4326), geo.NewProj(cfg.WorkingEPSG)), nil
	}
	points, err := geodata.ReadStationsCSV(filepath.Join(cfg.DataDir, germanyPrecipFile), geodata.CSVColumns{
		X: "longitude", Y: "latitude", Value: "prcp",
	})
	if err != nil {
		return nil, fmt.Errorf("precip: %w", err)
	}
	return points, nil
}

func outPath(cfg *config.Config, name string) string {
	return filepath.Join(cfg.OutputDir, name)
}
