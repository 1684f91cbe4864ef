// Package analysis runs the two interpolation studies end to end: loading
// observations, fitting, predicting over a clipped grid, cross-validating,
// and writing maps, plots, and a machine-readable summary.
package analysis

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	vec2d "github.com/flywave/go3d/float64/vec2"

	"github.com/carlesmila/geoblog/internal/geodata"
	"github.com/carlesmila/geoblog/internal/geostat"
)

// coverageMask resolves the prediction region: the boundary polygon when the
// GeoJSON file exists, otherwise the convex hull of the stations.
func coverageMask(path string, points []geostat.Point) (geostat.Mask, vec2d.Rect, error) {
	boundary, err := geodata.ReadBoundary(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			hull := geostat.NewConvexHull(points)
			return hull, hull.Rect(), nil
		}
		return nil, vec2d.Rect{}, err
	}
	return boundary, boundary.Rect(), nil
}

// CVSummary is the cross-validation block of a run summary.
type CVSummary struct {
	ME          float64 `json:"me"`
	RMSE        float64 `json:"rmse"`
	Correlation float64 `json:"correlation"`
	N           int     `json:"n"`
}

func summarizeCV(s geostat.CVScores) CVSummary {
	return CVSummary{
		ME:          s.ME,
		RMSE:        s.RMSE,
		Correlation: s.Correlation,
		N:           len(s.Residuals),
	}
}

// ModelSummary describes a fitted variogram model in a run summary.
type ModelSummary struct {
	Type        string  `json:"type"`
	Nugget      float64 `json:"nugget"`
	PartialSill float64 `json:"partial_sill"`
	Range       float64 `json:"range"`
	WSSE        float64 `json:"wsse"`
}

func summarizeFit(f geostat.FitResult) ModelSummary {
	return ModelSummary{
		Type:        string(f.Model.Type),
		Nugget:      f.Model.Nugget,
		PartialSill: f.Model.PartialSill,
		Range:       f.Model.Range,
		WSSE:        f.WSSE,
	}
}

// writeSummary writes a run summary as indented JSON under the output
// directory.
func writeSummary(outputDir, name string, v any) error {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("summary: %w", err)
	}
	path := filepath.Join(outputDir, name)
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("summary: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("summary: %w", err)
	}
	return nil
}
