package cmd

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/anicoll/okte-integration/internal/pkg/config"
	"github.com/anicoll/okte-integration/internal/pkg/coordinator"
	"github.com/anicoll/okte-integration/internal/pkg/model"
	"github.com/anicoll/okte-integration/internal/pkg/okte"
)

func testConfig() *config.Config {
	return &config.Config{
		Name:         "OKTE DAM",
		PollSchedule: "@every 1h",
		HTTPAddr:     "127.0.0.1:0",
		LogLevel:     "DEBUG",
		OkteCfg: config.OkteConfig{
			Range: model.RangeTodayTomorrow,
		},
	}
}

// TestRun_NotReady tests that run() refuses to start when the first fetch fails.
func TestRun_NotReady(t *testing.T) {
	t.Parallel()
	logger := zaptest.NewLogger(t)

	fetcher := &MockFetcher{
		GetRangeFunc: func(ctx context.Context, now time.Time) ([]model.RawRecord, error) {
			return nil, okte.ErrUnexpectedStatus
		},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := run(ctx, testConfig(), fetcher, logger)

	assert.ErrorIs(t, err, coordinator.ErrNotReady)
	assert.ErrorIs(t, err, okte.ErrUnexpectedStatus)
}

// TestRun_Cancel tests that run() stops without an error once the context is cancelled.
func TestRun_Cancel(t *testing.T) {
	t.Parallel()
	logger := zaptest.NewLogger(t)

	fetched := make(chan struct{}, 1)
	fetcher := &MockFetcher{
		GetRangeFunc: func(ctx context.Context, now time.Time) ([]model.RawRecord, error) {
			select {
			case fetched <- struct{}{}:
			default:
			}
			return []model.RawRecord{
				model.RawRecord(`{"price": 10, "period": 1}`),
			}, nil
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- run(ctx, testConfig(), fetcher, logger)
	}()

	select {
	case <-fetched:
	case <-time.After(5 * time.Second):
		t.Fatal("first refresh never happened")
	}
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err, "a cancelled context is a clean shutdown")
	case <-time.After(5 * time.Second):
		t.Fatal("run did not return after cancel")
	}
}

// TestRun_InvalidSchedule tests that a bad cron expression stops run().
func TestRun_InvalidSchedule(t *testing.T) {
	t.Parallel()
	logger := zaptest.NewLogger(t)
	cfg := testConfig()
	cfg.PollSchedule = "not a schedule"

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := run(ctx, cfg, &MockFetcher{}, logger)

	require.Error(t, err)
	assert.NotErrorIs(t, err, context.DeadlineExceeded)
}

func TestValidate(t *testing.T) {
	t.Parallel()
	logger := zaptest.NewLogger(t)

	err := validate(context.Background(), testConfig(), &MockFetcher{}, logger)
	assert.NoError(t, err)

	fetcher := &MockFetcher{
		CheckConnectivityFunc: func(ctx context.Context) error {
			return okte.ErrCannotConnect
		},
	}
	err = validate(context.Background(), testConfig(), fetcher, logger)
	assert.ErrorIs(t, err, okte.ErrCannotConnect)
}

func TestNewLogger(t *testing.T) {
	t.Parallel()

	logger, err := newLogger("DEBUG")
	require.NoError(t, err)
	assert.NotNil(t, logger)

	_, err = newLogger("LOUD")
	assert.Error(t, err)
}
