package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Empty(t, cfg.NOAAToken)
	assert.Equal(t, 30*time.Second, cfg.NOAATimeout)
	assert.Equal(t, 100, cfg.NOAACacheSize)
	assert.Equal(t, "data", cfg.DataDir)
	assert.Equal(t, "output", cfg.OutputDir)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 4326, cfg.WorkingEPSG)
	assert.InDelta(t, 0.05, cfg.GridPixelSize, 1e-12)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("NOAA_TOKEN", "abc123")
	t.Setenv("NOAA_TIMEOUT", "10s")
	t.Setenv("NOAA_CACHE_SIZE", "5")
	t.Setenv("DATA_DIR", "/tmp/data")
	t.Setenv("OUTPUT_DIR", "/tmp/out")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("WORKING_EPSG", "25831")
	t.Setenv("GRID_PIXEL_SIZE", "1000")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "abc123", cfg.NOAAToken)
	assert.Equal(t, 10*time.Second, cfg.NOAATimeout)
	assert.Equal(t, 5, cfg.NOAACacheSize)
	assert.Equal(t, "/tmp/data", cfg.DataDir)
	assert.Equal(t, "/tmp/out", cfg.OutputDir)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 25831, cfg.WorkingEPSG)
	assert.InDelta(t, 1000.0, cfg.GridPixelSize, 1e-12)
}

func TestLoad_InvalidValues(t *testing.T) {
	cases := map[string]string{
		"NOAA_TIMEOUT":    "never",
		"NOAA_CACHE_SIZE": "-1",
		"WORKING_EPSG":    "wgs84",
		"GRID_PIXEL_SIZE": "0",
		"LOG_FORMAT":      "yaml",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
