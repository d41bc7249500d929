// Command advise reads a persisted forecast artifact, classifies one selected
// hour and prints the demand-response decision together with its factor
// attribution. It is the reference consumer for presentation layers: they
// get structured JSON back and render it however they like.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/levenlabs/go-lflag"
	"github.com/levenlabs/go-llog"

	"github.com/loadpilot/loadpilot/pkg/attribution"
	"github.com/loadpilot/loadpilot/pkg/forecast"
	"github.com/loadpilot/loadpilot/pkg/log"
	"github.com/loadpilot/loadpilot/pkg/policy"
	"github.com/loadpilot/loadpilot/pkg/storage"
	"github.com/loadpilot/loadpilot/pkg/types"
)

// advice is the JSON document handed to the presentation layer.
type advice struct {
	Row         types.ForecastRow       `json:"row"`
	Decision    types.DecisionResult    `json:"decision"`
	Attribution types.AttributionResult `json:"attribution"`
	// PrimaryDriver duplicates the top attribution entry for convenience.
	// The weights are a heuristic linear scaling, not a rigorous
	// feature-attribution method.
	PrimaryDriver string `json:"primaryDriver"`
}

func main() {
	_ = godotenv.Load()

	s := storage.Configured()

	profileName := lflag.String("profile", types.DefaultProfile.Name, "Demand-response deployment profile (default, dashboard, sensitive)")
	hour := 0
	lflag.JSON(&hour, "hour", hour, "Forecast row index to advise on")
	at := lflag.String("at", "", "Advise on the forecast hour covering this RFC3339 timestamp instead of -hour")

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

	if err := run(ctx, s, *profileName, hour, *at, os.Stdout); err != nil {
		log.Ctx(ctx).ErrorContext(ctx, "advise failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, s storage.Store, profileName string, hour int, at string, w io.Writer) error {
	profile, err := types.ProfileByName(profileName)
	if err != nil {
		return err
	}

	rows, err := s.LoadForecast(ctx)
	if err != nil {
		return fmt.Errorf("failed to load forecast: %w", err)
	}

	var row types.ForecastRow
	if at != "" {
		ts, err := time.Parse(time.RFC3339, at)
		if err != nil {
			return types.NewConfigError("at", "bad timestamp %q: %v", at, err)
		}
		row, err = forecast.SelectTime(rows, ts)
		if err != nil {
			return err
		}
	} else {
		row, err = forecast.Select(rows, hour)
		if err != nil {
			return err
		}
	}

	decision, err := policy.Decide(ctx, row, profile)
	if err != nil {
		return err
	}
	attr := attribution.ExplainRow(row, profile)

	out := advice{
		Row:         row,
		Decision:    decision,
		Attribution: attr,
	}
	if top, ok := attr.Primary(); ok {
		out.PrimaryDriver = top.Label
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
