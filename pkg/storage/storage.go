// Package storage persists the flat tabular artifacts: the historical
// household dataset and the next-day forecast. There is deliberately no
// database here; the forecast CSV is the only hand-off between the training
// stage and the decision stage.
package storage

import (
	"context"
	"fmt"

	"github.com/levenlabs/go-lflag"

	"github.com/loadpilot/loadpilot/pkg/types"
)

// Store defines the interface for reading history and persisting forecasts.
type Store interface {
	// LoadHistory reads the full historical dataset. Records are immutable
	// once loaded.
	LoadHistory(ctx context.Context) ([]types.HistoricalRecord, error)

	// WriteForecast persists the ordered forecast rows, replacing any
	// previous artifact.
	WriteForecast(ctx context.Context, rows []types.ForecastRow) error

	// LoadForecast reads a previously persisted forecast artifact.
	LoadForecast(ctx context.Context) ([]types.ForecastRow, error)

	// Lifecycle
	Close() error
}

// Configured sets up the Store based on flags.
func Configured() Store {
	provider := lflag.String("storage-provider", "csv", "Storage provider to use (available: csv)")

	var p struct{ Store }

	c := configuredCSV()

	lflag.Do(func() {
		switch *provider {
		case "csv":
			if err := c.Validate(); err != nil {
				panic(fmt.Sprintf("csv storage validation failed: %v", err))
			}
			p.Store = c
		default:
			panic(fmt.Sprintf("unknown storage provider: %s", *provider))
		}
	})

	return &p
}
