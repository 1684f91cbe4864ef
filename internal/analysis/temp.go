package analysis

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/flywave/go-geo"
	"github.com/flywave/go-geoid"

	"github.com/carlesmila/geoblog/internal/config"
	"github.com/carlesmila/geoblog/internal/geodata"
	"github.com/carlesmila/geoblog/internal/geostat"
	"github.com/carlesmila/geoblog/internal/render"
)

const (
	catalunyaBoundaryFile = "catalunya.geojson"
	catalunyaTempFile     = "temp_catalunya.csv"
	catalunyaDEMFile      = "elevation_catalunya.tif"
)

// TempSummary is the JSON summary of a temperature kriging run.
type TempSummary struct {
	Stations   int                     `json:"stations"`
	Fits       map[string]ModelSummary `json:"fits"`
	BestModel  string                  `json:"best_model"`
	OrdinaryCV CVSummary               `json:"ordinary_cv"`
	DriftCV    CVSummary               `json:"drift_cv"`
}

// TempKriging interpolates Catalunya station temperatures twice, by ordinary
// kriging and by kriging with an elevation drift, comparing both through
// leave-one-out scores.
func TempKriging(cfg *config.Config, logger *slog.Logger) (*TempSummary, error) {
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("temp: %w", err)
	}
	dem, err := geodata.OpenElevation(filepath.Join(cfg.DataDir, catalunyaDEMFile), geoid.UNKNOWN)
	if err != nil {
		return nil, fmt.Errorf("temp: %w", err)
	}
	points, err := geodata.ReadStationsCSV(filepath.Join(cfg.DataDir, catalunyaTempFile), geodata.CSVColumns{
		X: "x", Y: "y", Value: "temp",
	})
	if err != nil {
		return nil, fmt.Errorf("temp: %w", err)
	}

	points = attachElevation(points, dem, logger)
	points, err = geostat.Thin(points, cfg.GridPixelSize/2)
	if err != nil {
		return nil, fmt.Errorf("temp: %w", err)
	}
	logger.Info("loaded temperature observations", "stations", len(points))

	mask, rect, err := coverageMask(filepath.Join(cfg.DataDir, catalunyaBoundaryFile), points)
	if err != nil {
		return nil, fmt.Errorf("temp: %w", err)
	}

	sample, err := geostat.Semivariogram(points, geostat.SemivariogramOptions{})
	if err != nil {
		return nil, fmt.Errorf("temp: semivariogram: %w", err)
	}

	summary := &TempSummary{Stations: len(points), Fits: map[string]ModelSummary{}}
	fitted := map[string]geostat.VariogramModel{}
	for _, mt := range []geostat.ModelType{geostat.Spherical, geostat.Exponential, geostat.Gaussian} {
		fit, err := fitShape(sample, mt)
		if err != nil {
			logger.Warn("variogram fit failed", "model", string(mt), "error", err)
			continue
		}
		fitted[string(mt)] = fit.Model
		summary.Fits[string(mt)] = summarizeFit(fit)
	}
	best, err := geostat.AutoFit(sample)
	if err != nil {
		return nil, fmt.Errorf("temp: variogram fit: %w", err)
	}
	summary.BestModel = string(best.Model.Type)
	logger.Info("fitted variogram", "model", string(best.Model.Type),
		"nugget", best.Model.Nugget, "psill", best.Model.PartialSill, "range", best.Model.Range)

	if err := render.VariogramPlot(outPath(cfg, "temp_variogram.png"),
		"Temperature semivariogram", sample, fitted); err != nil {
		return nil, fmt.Errorf("temp: %w", err)
	}
	if err := elevationScatter(cfg, points); err != nil {
		return nil, err
	}

	georef := geo.NewGeoReference(rect, geo.NewProj(cfg.WorkingEPSG))

	okCV, err := geostat.LeaveOneOut(points, func(train []geostat.Point) (geostat.Interpolator, error) {
		return geostat.NewOrdinaryKriging(train, best.Model)
	})
	if err != nil {
		return nil, fmt.Errorf("temp: ordinary kriging cv: %w", err)
	}
	summary.OrdinaryCV = summarizeCV(okCV)
	logger.Info("cross-validated ordinary kriging", "rmse", okCV.RMSE, "me", okCV.ME)

	kedCV, err := geostat.LeaveOneOut(points, func(train []geostat.Point) (geostat.Interpolator, error) {
		return geostat.NewDriftKriging(train, best.Model, 1)
	})
	if err != nil {
		return nil, fmt.Errorf("temp: drift kriging cv: %w", err)
	}
	summary.DriftCV = summarizeCV(kedCV)
	logger.Info("cross-validated drift kriging", "rmse", kedCV.RMSE, "me", kedCV.ME)

	ok, err := geostat.NewOrdinaryKriging(points, best.Model)
	if err != nil {
		return nil, fmt.Errorf("temp: %w", err)
	}
	if err := renderKriged(cfg, georef, mask, points, ok, nil, "temp_ok"); err != nil {
		return nil, err
	}

	ked, err := geostat.NewDriftKriging(points, best.Model, 1)
	if err != nil {
		return nil, fmt.Errorf("temp: %w", err)
	}
	if err := renderKriged(cfg, georef, mask, points, ked, dem, "temp_ked"); err != nil {
		return nil, err
	}

	if err := writeSummary(cfg.OutputDir, "temp_summary.json", summary); err != nil {
		return nil, fmt.Errorf("temp: %w", err)
	}
	return summary, nil
}

// attachElevation samples the DEM at every station, dropping stations the
// raster does not cover.
func attachElevation(points []geostat.Point, dem *geodata.ElevationRaster, logger *slog.Logger) []geostat.Point {
	kept := points[:0]
	for _, p := range points {
		h, err := dem.Sample(p.X, p.Y)
		if err != nil || h == geodata.NoData {
			if errors.Is(err, geodata.ErrOutsideRaster) {
				logger.Warn("station outside elevation raster, dropped", "x", p.X, "y", p.Y)
			}
			continue
		}
		p.Covariates = []float64{h}
		kept = append(kept, p)
	}
	return kept
}

func fitShape(sample []geostat.VariogramBin, mt geostat.ModelType) (geostat.FitResult, error) {
	fit, err := geostat.FitShape(sample, mt)
	if err != nil && !errors.Is(err, geostat.ErrNoConvergence) {
		return geostat.FitResult{}, err
	}
	return fit, nil
}

func elevationScatter(cfg *config.Config, points []geostat.Point) error {
	elev := make([]float64, len(points))
	temp := make([]float64, len(points))
	for i, p := range points {
		elev[i] = p.Covariates[0]
		temp[i] = p.Value
	}
	err := render.ScatterPlot(outPath(cfg, "temp_vs_elevation.png"),
		"Temperature against elevation", "elevation (m)", "temperature (°C)",
		elev, temp, false)
	if err != nil {
		return fmt.Errorf("temp: %w", err)
	}
	return nil
}

// renderKriged fills a prediction grid with the interpolator and writes the
// prediction and variance maps plus their GeoTIFFs. A non-nil DEM supplies
// the drift covariate on the grid.
func renderKriged(cfg *config.Config, georef *geo.GeoReference, mask geostat.Mask, points []geostat.Point, interp geostat.Interpolator, dem *geodata.ElevationRaster, name string) error {
	grid, err := geostat.NewGrid(georef, [2]float64{cfg.GridPixelSize, cfg.GridPixelSize})
	if err != nil {
		return fmt.Errorf("temp: %w", err)
	}
	if dem != nil {
		grid.SampleCovariates(func(x, y float64) ([]float64, error) {
			h, err := dem.Sample(x, y)
			if err != nil || h == geodata.NoData {
				return nil, geodata.ErrOutsideRaster
			}
			return []float64{h}, nil
		})
	}
	if err := grid.Fill(interp, mask); err != nil {
		return fmt.Errorf("temp: %s: %w", name, err)
	}

	if err := render.MapPNG(outPath(cfg, name+".png"), "Temperature prediction", grid, points); err != nil {
		return fmt.Errorf("temp: %w", err)
	}
	if err := render.VarianceMapPNG(outPath(cfg, name+"_variance.png"), "Kriging variance", grid); err != nil {
		return fmt.Errorf("temp: %w", err)
	}
	if err := render.WriteGridGeoTIFF(outPath(cfg, name+".tif"), grid); err != nil {
		return fmt.Errorf("temp: %w", err)
	}
	if err := render.WriteVarianceGeoTIFF(outPath(cfg, name+"_variance.tif"), grid); err != nil {
		return fmt.Errorf("temp: %w", err)
	}
	return nil
}
