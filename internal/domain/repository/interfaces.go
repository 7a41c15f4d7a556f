package repository

import (
	"context"
	"time"

	"TazeAI/internal/domain/models"
)

// MarketDataProvider fetches the per-symbol provider bundle.
type MarketDataProvider interface {
	FetchBundle(ctx context.Context, symbol string, historyDays int) (*models.ProviderBundle, error)
}

// SignalPublisher broadcasts analyzer output.
type SignalPublisher interface {
	PublishSignals(ctx context.Context, records []models.SignalRecord) error
	Close() error
}

// SignalCache memoizes analyzer output by key.
type SignalCache interface {
	Get(ctx context.Context, key string) ([]models.SignalRecord, bool)
	Set(ctx context.Context, key string, records []models.SignalRecord, ttl time.Duration)
}

type Metrics interface {
	RecordSnapshotSaved(symbol string)
	RecordSymbolSkipped(reason string)
	RecordProviderError(endpoint string)
	RecordZeroFilled(count int)
	RecordScore(symbol string, score float64)
	RecordLatency(op string, seconds float64)
	RecordError(kind string)
}
