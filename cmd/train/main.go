package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/levenlabs/go-lflag"
	"github.com/levenlabs/go-llog"

	"github.com/loadpilot/loadpilot/pkg/forecast"
	"github.com/loadpilot/loadpilot/pkg/forecaster"
	"github.com/loadpilot/loadpilot/pkg/log"
	"github.com/loadpilot/loadpilot/pkg/storage"
	"github.com/loadpilot/loadpilot/pkg/types"
)

func main() {
	// optional local overrides, flags and env still win
	_ = godotenv.Load()

	// init packages
	s := storage.Configured()

	profileName := lflag.String("profile", types.DefaultProfile.Name, "Demand-response deployment profile (default, dashboard, sensitive)")
	horizonHours := forecast.DefaultHorizonHours
	lflag.JSON(&horizonHours, "horizon-hours", horizonHours, "Number of future hours to forecast")
	lambda := 1.0
	lflag.JSON(&lambda, "ridge-lambda", lambda, "Ridge penalty for the per-appliance regressions")
	var seed int64 = 1
	lflag.JSON(&seed, "sim-seed", seed, "Seed for the simulated future occupancy")

	// parse flags
	lflag.Configure()

	var level slog.Level
	// lflag automatically sets llog's level, but we need to set the slog level
	switch llog.GetLevel() {
	case llog.DebugLevel:
		level = slog.LevelDebug
	case llog.InfoLevel:
		level = slog.LevelInfo
	case llog.WarnLevel:
		level = slog.LevelWarn
	case llog.ErrorLevel:
		level = slog.LevelError
	default:
		panic(fmt.Errorf("unknown log level: %s", llog.GetLevel().String()))
	}
	log.SetDefaultLogLevel(level)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	defer func() {
		if err := s.Close(); err != nil {
			log.Ctx(ctx).ErrorContext(ctx, "failed to close storage", "error", err)
		}
	}()

	if err := run(ctx, s, *profileName, horizonHours, lambda, seed); err != nil {
		log.Ctx(ctx).ErrorContext(ctx, "training run failed", "error", err)
		os.Exit(1)
	}
	log.Ctx(ctx).InfoContext(ctx, "training run finished")
}

func run(ctx context.Context, s storage.Store, profileName string, horizonHours int, lambda float64, seed int64) error {
	profile, err := types.ProfileByName(profileName)
	if err != nil {
		return err
	}

	history, err := s.LoadHistory(ctx)
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}
	log.Ctx(ctx).InfoContext(ctx, "history loaded", slog.Int("records", len(history)))

	models, err := forecaster.FitAll(ctx, history, types.Appliances, lambda)
	if err != nil {
		return fmt.Errorf("failed to train appliance models: %w", err)
	}

	var lastTS time.Time
	for _, rec := range history {
		if rec.TS.After(lastTS) {
			lastTS = rec.TS
		}
	}

	asm, err := forecast.New(models, profile, seed)
	if err != nil {
		return err
	}
	rows, err := asm.Assemble(ctx, lastTS, horizonHours)
	if err != nil {
		return fmt.Errorf("failed to assemble forecast: %w", err)
	}

	if err := s.WriteForecast(ctx, rows); err != nil {
		return fmt.Errorf("failed to persist forecast: %w", err)
	}
	return nil
}
