package storagemock

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/loadpilot/loadpilot/pkg/storage"
	"github.com/loadpilot/loadpilot/pkg/types"
)

type MockStore struct {
	mock.Mock
}

var _ storage.Store = (*MockStore)(nil)

func (m *MockStore) LoadHistory(ctx context.Context) ([]types.HistoricalRecord, error) {
	args := m.Called(ctx)
	if recs, ok := args.Get(0).([]types.HistoricalRecord); ok {
		return recs, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStore) WriteForecast(ctx context.Context, rows []types.ForecastRow) error {
	args := m.Called(ctx, rows)
	return args.Error(0)
}

func (m *MockStore) LoadForecast(ctx context.Context) ([]types.ForecastRow, error) {
	args := m.Called(ctx)
	if rows, ok := args.Get(0).([]types.ForecastRow); ok {
		return rows, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStore) Close() error {
	args := m.Called()
	return args.Error(0)
}
