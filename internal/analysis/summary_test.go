package analysis

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carlesmila/geoblog/internal/geostat"
)

func TestSummarizeCV(t *testing.T) {
	scores := geostat.CVScores{
		ME:          -0.5,
		RMSE:        2.25,
		Correlation: 0.91,
		Residuals: []geostat.CVResidual{
			{Predicted: 10, Residual: -1},
			{Predicted: 12, Residual: 1},
		},
	}

	s := summarizeCV(scores)
	assert.Equal(t, -0.5, s.ME)
	assert.Equal(t, 2.25, s.RMSE)
	assert.Equal(t, 0.91, s.Correlation)
	assert.Equal(t, 2, s.N)
}

func TestSummarizeFit(t *testing.T) {
	fit := geostat.FitResult{
		Model: geostat.VariogramModel{
			Type:        geostat.Exponential,
			Nugget:      1.5,
			PartialSill: 8,
			Range:       120,
		},
		WSSE: 0.042,
	}

	s := summarizeFit(fit)
	assert.Equal(t, "exponential", s.Type)
	assert.Equal(t, 1.5, s.Nugget)
	assert.Equal(t, 8.0, s.PartialSill)
	assert.Equal(t, 120.0, s.Range)
	assert.Equal(t, 0.042, s.WSSE)
}

func TestWriteSummary(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")

	summary := &PrecipSummary{
		Year:      2019,
		Stations:  42,
		BestPower: 2,
		Powers: []PowerResult{
			{Power: 2, CV: CVSummary{RMSE: 3.5, N: 42}},
		},
	}
	require.NoError(t, writeSummary(dir, "precip_summary.json", summary))

	data, err := os.ReadFile(filepath.Join(dir, "precip_summary.json"))
	require.NoError(t, err)

	var got PrecipSummary
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, 2019, got.Year)
	assert.Equal(t, 42, got.Stations)
	assert.Equal(t, 2.0, got.BestPower)
	require.Len(t, got.Powers, 1)
	assert.Equal(t, 3.5, got.Powers[0].CV.RMSE)
}
