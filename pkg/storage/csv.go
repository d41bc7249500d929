package storage

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/levenlabs/go-lflag"

	"github.com/loadpilot/loadpilot/pkg/log"
	"github.com/loadpilot/loadpilot/pkg/types"
)

// Column names shared with the upstream dataset and downstream consumers.
// Appliance columns use the canonical types.Appliances names.
const (
	colDatetime  = "datetime"
	colOccupancy = "occupancy"
	colPrice     = "electricity_price"
	colHourSin   = "hour_sin"
	colHourCos   = "hour_cos"
	colTotal     = "Total_Load_Forecasted"
	colMealTime  = "is_meal_time"
)

// timeLayouts are the accepted datetime formats, most common first.
var timeLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02 15:04",
}

// CSV reads and writes the flat tabular artifacts.
type CSV struct {
	historyPath  string
	forecastPath string
}

// NewCSV returns a CSV store over the given file paths.
func NewCSV(historyPath, forecastPath string) *CSV {
	return &CSV{historyPath: historyPath, forecastPath: forecastPath}
}

func configuredCSV() *CSV {
	history := lflag.String("history-csv", "data/history.csv", "Path to the historical household dataset CSV")
	forecast := lflag.String("forecast-csv", "data/next_day_forecast.csv", "Path to the forecast artifact CSV")

	c := &CSV{}
	lflag.Do(func() {
		c.historyPath = *history
		c.forecastPath = *forecast
	})
	return c
}

// Validate checks that the configured paths are usable.
func (c *CSV) Validate() error {
	if c.historyPath == "" {
		return types.NewConfigError("history-csv", "path must not be empty")
	}
	if c.forecastPath == "" {
		return types.NewConfigError("forecast-csv", "path must not be empty")
	}
	return nil
}

// Close implements Store. CSV holds no open handles between calls.
func (c *CSV) Close() error { return nil }

// LoadHistory reads the historical dataset. Header names are trimmed to
// tolerate minor whitespace variance. Appliance columns absent from the
// header are reported once and stay absent from the record maps, so callers
// see the gap instead of a silent zero.
func (c *CSV) LoadHistory(ctx context.Context) ([]types.HistoricalRecord, error) {
	header, rows, err := readTable(c.historyPath)
	if err != nil {
		return nil, err
	}

	dtIdx, ok := header[colDatetime]
	if !ok {
		return nil, types.NewDataError("history %s missing required column %q", c.historyPath, colDatetime)
	}
	occIdx, ok := header[colOccupancy]
	if !ok {
		return nil, types.NewDataError("history %s missing required column %q", c.historyPath, colOccupancy)
	}
	priceIdx, ok := header[colPrice]
	if !ok {
		return nil, types.NewDataError("history %s missing required column %q", c.historyPath, colPrice)
	}

	appIdx := make(map[types.Appliance]int)
	for _, app := range types.Appliances {
		if i, ok := header[string(app)]; ok {
			appIdx[app] = i
		} else {
			log.Ctx(ctx).WarnContext(ctx, "history missing appliance column",
				slog.String("appliance", string(app)),
				slog.String("path", c.historyPath),
			)
		}
	}

	recs := make([]types.HistoricalRecord, 0, len(rows))
	for n, row := range rows {
		ts, err := parseTime(row[dtIdx])
		if err != nil {
			return nil, types.NewDataError("history row %d: %v", n+1, err)
		}
		occ, err := strconv.Atoi(strings.TrimSpace(row[occIdx]))
		if err != nil {
			return nil, types.NewDataError("history row %d: bad occupancy %q", n+1, row[occIdx])
		}
		price, err := strconv.ParseFloat(strings.TrimSpace(row[priceIdx]), 64)
		if err != nil {
			return nil, types.NewDataError("history row %d: bad price %q", n+1, row[priceIdx])
		}

		loads := make(map[types.Appliance]float64, len(appIdx))
		for app, i := range appIdx {
			v, err := strconv.ParseFloat(strings.TrimSpace(row[i]), 64)
			if err != nil {
				return nil, types.NewDataError("history row %d: bad %s load %q", n+1, app, row[i])
			}
			loads[app] = v
		}

		recs = append(recs, types.HistoricalRecord{
			TS:                 ts,
			Occupancy:          occ,
			PriceDollarsPerKWH: price,
			LoadKW:             loads,
		})
	}
	if len(recs) == 0 {
		return nil, types.NewDataError("history %s has no data rows", c.historyPath)
	}
	return recs, nil
}

// WriteForecast persists the forecast rows, one row per hour in order.
// Floats are written with full round-trip precision so reloading the
// artifact reproduces the rows exactly.
func (c *CSV) WriteForecast(ctx context.Context, rows []types.ForecastRow) error {
	if dir := filepath.Dir(c.forecastPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create forecast dir: %w", err)
		}
	}
	f, err := os.Create(c.forecastPath)
	if err != nil {
		return fmt.Errorf("failed to create forecast file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{colDatetime, colHourSin, colHourCos, colOccupancy, colPrice}
	for _, app := range types.Appliances {
		header = append(header, string(app))
	}
	header = append(header, colTotal, colMealTime)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("failed to write forecast header: %w", err)
	}

	for _, row := range rows {
		rec := []string{
			row.TS.Format(timeLayouts[0]),
			formatFloat(row.HourSin),
			formatFloat(row.HourCos),
			strconv.Itoa(row.Occupancy),
			formatFloat(row.PriceDollarsPerKWH),
		}
		for _, app := range types.Appliances {
			rec = append(rec, formatFloat(row.LoadKW[app]))
		}
		meal := "0"
		if row.MealTime {
			meal = "1"
		}
		rec = append(rec, formatFloat(row.TotalLoadKW), meal)
		if err := w.Write(rec); err != nil {
			return fmt.Errorf("failed to write forecast row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush forecast: %w", err)
	}

	log.Ctx(ctx).InfoContext(ctx, "forecast artifact written",
		slog.String("path", c.forecastPath),
		slog.Int("rows", len(rows)),
	)
	return nil
}

// LoadForecast reads a forecast artifact back. The total column is
// recomputed from the per-appliance breakdown so the sum invariant holds
// even for artifacts produced by other writers.
func (c *CSV) LoadForecast(ctx context.Context) ([]types.ForecastRow, error) {
	header, tableRows, err := readTable(c.forecastPath)
	if err != nil {
		return nil, err
	}

	for _, col := range []string{colDatetime, colOccupancy, colPrice} {
		if _, ok := header[col]; !ok {
			return nil, types.NewDataError("forecast %s missing required column %q", c.forecastPath, col)
		}
	}

	rows := make([]types.ForecastRow, 0, len(tableRows))
	for n, rec := range tableRows {
		ts, err := parseTime(rec[header[colDatetime]])
		if err != nil {
			return nil, types.NewDataError("forecast row %d: %v", n+1, err)
		}
		occ, err := strconv.Atoi(strings.TrimSpace(rec[header[colOccupancy]]))
		if err != nil {
			return nil, types.NewDataError("forecast row %d: bad occupancy %q", n+1, rec[header[colOccupancy]])
		}
		price, err := strconv.ParseFloat(strings.TrimSpace(rec[header[colPrice]]), 64)
		if err != nil {
			return nil, types.NewDataError("forecast row %d: bad price %q", n+1, rec[header[colPrice]])
		}

		loads := make(map[types.Appliance]float64, len(types.Appliances))
		var total float64
		for _, app := range types.Appliances {
			i, ok := header[string(app)]
			if !ok {
				continue
			}
			v, err := strconv.ParseFloat(strings.TrimSpace(rec[i]), 64)
			if err != nil {
				return nil, types.NewDataError("forecast row %d: bad %s load %q", n+1, app, rec[i])
			}
			loads[app] = v
			total += v
		}

		row := types.ForecastRow{
			TS:                 ts,
			Hour:               ts.Hour(),
			Occupancy:          occ,
			PriceDollarsPerKWH: price,
			LoadKW:             loads,
			TotalLoadKW:        total,
			MealTime:           types.MealHours[ts.Hour()],
		}
		if i, ok := header[colHourSin]; ok {
			if row.HourSin, err = strconv.ParseFloat(strings.TrimSpace(rec[i]), 64); err != nil {
				return nil, types.NewDataError("forecast row %d: bad hour_sin %q", n+1, rec[i])
			}
		}
		if i, ok := header[colHourCos]; ok {
			if row.HourCos, err = strconv.ParseFloat(strings.TrimSpace(rec[i]), 64); err != nil {
				return nil, types.NewDataError("forecast row %d: bad hour_cos %q", n+1, rec[i])
			}
		}
		if i, ok := header[colMealTime]; ok {
			row.MealTime = strings.TrimSpace(rec[i]) == "1"
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return nil, types.NewDataError("forecast %s has no data rows", c.forecastPath)
	}
	return rows, nil
}

// readTable reads a CSV file and returns a trimmed-header index plus the
// data rows.
func readTable(path string) (map[string]int, [][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, types.NewDataError("failed to open %s: %v", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	all, err := r.ReadAll()
	if err != nil {
		return nil, nil, types.NewDataError("failed to parse %s: %v", path, err)
	}
	if len(all) == 0 {
		return nil, nil, types.NewDataError("%s is empty", path)
	}

	header := make(map[string]int, len(all[0]))
	for i, name := range all[0] {
		header[strings.TrimSpace(name)] = i
	}
	return header, all[1:], nil
}

func parseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable datetime %q", s)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
