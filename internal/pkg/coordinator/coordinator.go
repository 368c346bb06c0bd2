package coordinator

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/anicoll/okte-integration/internal/pkg/model"
	"github.com/anicoll/okte-integration/internal/pkg/prices"
)

const DefaultSchedule = "@every 30m"

var ErrNotReady = errors.New("unable to fetch initial OKTE DAM data")

type fetcher interface {
	GetRange(ctx context.Context, now time.Time) ([]model.RawRecord, error)
}

type publisher interface {
	Publish(ctx context.Context, update model.Update) error
}

// Coordinator polls the OKTE API, keeps the latest snapshot and hands every
// outcome to the publisher. Only Refresh writes the snapshot slot.
type Coordinator struct {
	fetcher   fetcher
	publisher publisher
	logger    *zap.Logger
	schedule  string
	now       func() time.Time

	data   atomic.Pointer[model.Snapshot]
	status atomic.Pointer[model.Status]
}

func New(f fetcher, p publisher, opts ...func(*Coordinator)) *Coordinator {
	c := &Coordinator{
		fetcher:   f,
		publisher: p,
		logger:    zap.L(),
		schedule:  DefaultSchedule,
		now:       time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	c.status.Store(&model.Status{})
	return c
}

func WithSchedule(spec string) func(*Coordinator) {
	return func(c *Coordinator) {
		if spec != "" {
			c.schedule = spec
		}
	}
}

func WithClock(now func() time.Time) func(*Coordinator) {
	return func(c *Coordinator) {
		c.now = now
	}
}

func WithLogger(logger *zap.Logger) func(*Coordinator) {
	return func(c *Coordinator) {
		c.logger = logger
	}
}

// Data returns the latest snapshot, or nil before the first successful poll.
func (c *Coordinator) Data() *model.Snapshot {
	return c.data.Load()
}

func (c *Coordinator) Status() model.Status {
	return *c.status.Load()
}

func (c *Coordinator) LastUpdateSuccess() bool {
	return c.Status().LastUpdateSuccess
}

// Refresh runs one poll. On failure the previous snapshot is kept and the
// failure is published alongside it.
func (c *Coordinator) Refresh(ctx context.Context) error {
	now := c.now()
	records, err := c.fetcher.GetRange(ctx, now)
	if err != nil {
		prev := c.Status()
		c.status.Store(&model.Status{
			LastUpdateSuccess: false,
			LastUpdated:       now,
			LastSuccess:       prev.LastSuccess,
			Error:             err.Error(),
		})
		c.publish(ctx)
		return fmt.Errorf("update failed: %w", err)
	}

	snap := prices.Aggregate(records, now)
	c.data.Store(&snap)
	c.status.Store(&model.Status{
		LastUpdateSuccess: true,
		LastUpdated:       now,
		LastSuccess:       now,
	})
	c.publish(ctx)
	c.logger.Info("refreshed DAM data",
		zap.Int("records", len(records)),
		zap.Int("schedule", len(snap.Prices)),
		zap.Bool("has_current_price", snap.CurrentPrice.Valid))
	return nil
}

// FirstRefresh is the setup poll; unlike later polls its failure is fatal to
// startup.
func (c *Coordinator) FirstRefresh(ctx context.Context) error {
	if err := c.Refresh(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrNotReady, err)
	}
	return nil
}

// Run schedules Refresh until ctx is done. An in-flight poll is abandoned
// with ctx.
func (c *Coordinator) Run(ctx context.Context) error {
	cl := cronLogger{c.logger.Sugar()}
	cr := cron.New(
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)
	if _, err := cr.AddFunc(c.schedule, func() {
		if err := c.Refresh(ctx); err != nil {
			c.logger.Warn("scheduled refresh failed, keeping previous data", zap.Error(err))
		}
	}); err != nil {
		return fmt.Errorf("invalid poll schedule %q: %w", c.schedule, err)
	}

	cr.Start()
	c.logger.Info("polling scheduled", zap.String("schedule", c.schedule))
	<-ctx.Done()
	<-cr.Stop().Done()
	return ctx.Err()
}

func (c *Coordinator) publish(ctx context.Context) {
	if c.publisher == nil {
		return
	}
	update := model.Update{Snapshot: c.Data(), Status: c.Status()}
	if err := c.publisher.Publish(ctx, update); err != nil {
		c.logger.Error("failed to publish update", zap.Error(err))
	}
}
