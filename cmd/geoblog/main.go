// Command geoblog runs the two interpolation studies: an IDW power sweep
// over German yearly precipitation and variogram-based kriging of Catalunya
// temperatures with an elevation drift.
//
// Usage:
//
//	geoblog idw [-year 2019]
//	geoblog kriging
//	geoblog all [-year 2019]
//
// Configuration comes from the environment (NOAA_TOKEN, DATA_DIR,
// OUTPUT_DIR, ...); see internal/config. Without a NOAA token the
// precipitation study loads the CSV snapshot from the data directory.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/carlesmila/geoblog/internal/analysis"
	"github.com/carlesmila/geoblog/internal/config"
	"github.com/carlesmila/geoblog/internal/noaa"
	"github.com/carlesmila/geoblog/internal/observability"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		slog.Error("run failed", "error", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: geoblog idw|kriging|all [flags]")
	}
	command := args[0]

	flags := flag.NewFlagSet(command, flag.ContinueOnError)
	year := flags.Int("year", 2019, "year of yearly precipitation totals")
	if err := flags.Parse(args[1:]); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := observability.NewLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// The precipitation source is feature-flagged on the token; without it
	// the analysis falls back to the CSV snapshot in the data directory.
	var source analysis.PrecipSource
	if cfg.NOAAToken != "" {
		client := noaa.NewClient(cfg.NOAAToken, cfg.NOAABaseURL, cfg.NOAATimeout, logger)
		client.UseStationCache(cfg.NOAACacheSize)
		source = client
		logger.Info("noaa client enabled", "cache_size", cfg.NOAACacheSize, "timeout", cfg.NOAATimeout)
	} else {
		logger.Info("no NOAA token, using local CSV snapshot")
	}

	switch command {
	case "idw":
		return runIDW(ctx, cfg, logger, source, *year)
	case "kriging":
		return runKriging(cfg, logger)
	case "all":
		if err := runIDW(ctx, cfg, logger, source, *year); err != nil {
			return err
		}
		return runKriging(cfg, logger)
	default:
		return fmt.Errorf("unknown command %q, want idw, kriging, or all", command)
	}
}

func runIDW(ctx context.Context, cfg *config.Config, logger *slog.Logger, source analysis.PrecipSource, year int) error {
	summary, err := analysis.PrecipIDW(ctx, cfg, logger, source, year)
	if err != nil {
		return fmt.Errorf("precipitation analysis: %w", err)
	}
	logger.Info("precipitation analysis complete",
		"stations", summary.Stations, "best_power", summary.BestPower, "output", cfg.OutputDir)
	return nil
}

func runKriging(cfg *config.Config, logger *slog.Logger) error {
	summary, err := analysis.TempKriging(cfg, logger)
	if err != nil {
		return fmt.Errorf("temperature analysis: %w", err)
	}
	logger.Info("temperature analysis complete",
		"stations", summary.Stations, "best_model", summary.BestModel, "output", cfg.OutputDir)
	return nil
}
