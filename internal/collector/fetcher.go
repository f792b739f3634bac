package collector

import (
	"context"
	"time"

	"FinPlanner/internal/model"
)

// Fetcher defines the interface for fetching market data.
// FetchHistory returns an empty slice and no error for unknown symbols.
type Fetcher interface {
	FetchHistory(ctx context.Context, symbol string, start, end time.Time) ([]model.PricePoint, error)
	FetchMetadata(ctx context.Context, symbol string) (*model.Metadata, error)
	Name() string
}
