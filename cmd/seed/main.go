// Command seed generates a synthetic household history CSV for local
// development, shaped like the real metering export: hourly rows with
// occupancy, tariff and per-appliance loads.
package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/levenlabs/go-lflag"
	"github.com/levenlabs/go-llog"

	"github.com/loadpilot/loadpilot/pkg/log"
	"github.com/loadpilot/loadpilot/pkg/types"
)

// applianceShape describes how an appliance behaves over a day.
type applianceShape struct {
	baseKW      float64
	perPersonKW float64
	// extra load during meal hours and the evening window
	mealKW    float64
	eveningKW float64
	jitterKW  float64
}

var shapes = map[types.Appliance]applianceShape{
	types.ApplianceFridge:         {baseKW: 0.12, jitterKW: 0.02},
	types.ApplianceHeater:         {baseKW: 0.3, perPersonKW: 0.25, eveningKW: 0.6, jitterKW: 0.15},
	types.ApplianceFans:           {baseKW: 0.05, perPersonKW: 0.05, jitterKW: 0.03},
	types.ApplianceLights:         {baseKW: 0.02, perPersonKW: 0.08, eveningKW: 0.25, jitterKW: 0.03},
	types.ApplianceTV:             {perPersonKW: 0.06, eveningKW: 0.2, jitterKW: 0.04},
	types.ApplianceMicrowave:      {mealKW: 0.5, jitterKW: 0.05},
	types.ApplianceWashingMachine: {baseKW: 0.02, mealKW: 0.1, eveningKW: 0.35, jitterKW: 0.1},
}

func main() {
	_ = godotenv.Load()

	out := lflag.String("out", "data/history.csv", "Path to write the synthetic history CSV")
	days := 14
	lflag.JSON(&days, "days", days, "Number of days of hourly history to generate")
	var seed int64 = 1
	lflag.JSON(&seed, "seed", seed, "RNG seed so reruns produce the same dataset")

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

	if err := run(ctx, *out, days, seed); err != nil {
		log.Ctx(ctx).ErrorContext(ctx, "seed failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, out string, days int, seed int64) error {
	if days <= 0 {
		return types.NewConfigError("days", "must be > 0, got %d", days)
	}

	log.Ctx(ctx).InfoContext(ctx, "seeding synthetic history",
		slog.String("out", out),
		slog.Int("days", days),
	)

	rng := rand.New(rand.NewSource(seed))

	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", out, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{"datetime", "occupancy", "electricity_price"}
	for _, app := range types.Appliances {
		header = append(header, string(app))
	}
	if err := w.Write(header); err != nil {
		return err
	}

	// end yesterday at 23:00 so training data never overlaps the forecast
	end := time.Now().UTC().Truncate(24 * time.Hour)
	start := end.Add(-time.Duration(days) * 24 * time.Hour)

	for t := start; t.Before(end); t = t.Add(time.Hour) {
		hour := t.Hour()

		occupancy := 1
		if (hour >= 7 && hour <= 9) || (hour >= 18 && hour <= 22) {
			occupancy = 2 + rng.Intn(3)
		} else if hour >= 23 || hour <= 6 {
			occupancy = 2 + rng.Intn(2) // asleep but home
		}

		price := 0.25
		if (hour >= 7 && hour <= 10) || (hour >= 18 && hour <= 22) {
			price = 0.65
		}
		// jitter so the price column isn't perfectly collinear with hour
		price += rng.Float64()*0.02 - 0.01

		evening := hour >= 18 && hour <= 22
		meal := types.MealHours[hour]

		rec := []string{
			t.Format("2006-01-02 15:04:05"),
			strconv.Itoa(occupancy),
			strconv.FormatFloat(price, 'g', -1, 64),
		}
		for _, app := range types.Appliances {
			shape := shapes[app]
			load := shape.baseKW + shape.perPersonKW*float64(occupancy)
			if meal {
				load += shape.mealKW
			}
			if evening {
				load += shape.eveningKW
			}
			load += rng.Float64() * shape.jitterKW
			if load < 0 {
				load = 0
			}
			rec = append(rec, strconv.FormatFloat(load, 'g', -1, 64))
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}

	log.Ctx(ctx).InfoContext(ctx, "synthetic history written",
		slog.String("out", out),
		slog.Int("rows", days*24),
	)
	return nil
}
