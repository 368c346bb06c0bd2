package cmd

import (
	"context"
	"time"

	"github.com/anicoll/okte-integration/internal/pkg/model"
)

// MockFetcher is a mock implementation of the Fetcher interface.
type MockFetcher struct {
	GetRangeFunc          func(ctx context.Context, now time.Time) ([]model.RawRecord, error)
	CheckConnectivityFunc func(ctx context.Context) error
}

func (m *MockFetcher) GetRange(ctx context.Context, now time.Time) ([]model.RawRecord, error) {
	if m.GetRangeFunc != nil {
		return m.GetRangeFunc(ctx, now)
	}
	return nil, nil
}

func (m *MockFetcher) CheckConnectivity(ctx context.Context) error {
	if m.CheckConnectivityFunc != nil {
		return m.CheckConnectivityFunc(ctx)
	}
	return nil
}
