// Package config loads runtime settings from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all settings, populated from environment variables.
type Config struct {
	// NOAA CDO API access. When the token is empty the precipitation
	// analysis falls back to the CSV snapshot in the data directory.
	NOAAToken     string
	NOAABaseURL   string
	NOAATimeout   time.Duration
	NOAACacheSize int

	DataDir   string
	OutputDir string

	LogLevel  string
	LogFormat string

	// WorkingEPSG is the CRS all analysis coordinates are brought into.
	WorkingEPSG int

	// GridPixelSize is the prediction cell size in working-CRS units.
	GridPixelSize float64
}

// Load reads configuration from environment variables, applying defaults
// where unset.
func Load() (*Config, error) {
	timeout, err := parseDuration("NOAA_TIMEOUT", "30s")
	if err != nil {
		return nil, err
	}
	cacheSize, err := parseInt("NOAA_CACHE_SIZE", 100)
	if err != nil {
		return nil, err
	}
	epsg, err := parseInt("WORKING_EPSG", 4326)
	if err != nil {
		return nil, err
	}
	pixel, err := parseFloat("GRID_PIXEL_SIZE", 0.05)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		NOAAToken:     os.Getenv("NOAA_TOKEN"),
		NOAABaseURL:   envOrDefault("NOAA_BASE_URL", ""),
		NOAATimeout:   timeout,
		NOAACacheSize: cacheSize,
		DataDir:       envOrDefault("DATA_DIR", "data"),
		OutputDir:     envOrDefault("OUTPUT_DIR", "output"),
		LogLevel:      envOrDefault("LOG_LEVEL", "info"),
		LogFormat:     envOrDefault("LOG_FORMAT", "text"),
		WorkingEPSG:   epsg,
		GridPixelSize: pixel,
	}

	if cfg.DataDir == "" {
		return nil, errors.New("DATA_DIR is required")
	}
	if cfg.OutputDir == "" {
		return nil, errors.New("OUTPUT_DIR is required")
	}
	if cfg.GridPixelSize <= 0 {
		return nil, errors.New("GRID_PIXEL_SIZE must be positive")
	}
	switch cfg.LogFormat {
	case "text", "json":
	default:
		return nil, fmt.Errorf("invalid LOG_FORMAT %q", cfg.LogFormat)
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseDuration(key, fallback string) (time.Duration, error) {
	v := envOrDefault(key, fallback)
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s %q", key, v)
	}
	return d, nil
}

func parseInt(key string, fallback int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s %q", key, s)
	}
	return n, nil
}

func parseFloat(key string, fallback float64) (float64, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", key, s)
	}
	return f, nil
}
