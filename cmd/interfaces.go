package cmd

import (
	"context"
	"time"

	"github.com/anicoll/okte-integration/internal/pkg/model"
)

// Fetcher defines what cmd.run expects from the OKTE client.
type Fetcher interface {
	GetRange(ctx context.Context, now time.Time) ([]model.RawRecord, error)
	CheckConnectivity(ctx context.Context) error
}
