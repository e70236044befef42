package repository

import (
	"context"

	"MarketCoach/internal/domain/models"
)

// MarketData is the upstream quote provider. Absent or malformed numbers come
// back as nil, never as zero.
type MarketData interface {
	Quote(ctx context.Context, symbol string) (*models.Quote, error)
	IntradaySeries(ctx context.Context, symbol string) ([]models.Bar, error)
	DailyClose(ctx context.Context, symbol string) (*float64, error)
	Dividends(ctx context.Context, symbol string) ([]models.Dividend, error)
	Earnings(ctx context.Context, symbol string) ([]models.Earning, error)
}

// Publisher fans computed results out to downstream consumers.
type Publisher interface {
	PublishSnapshot(ctx context.Context, bucket string, s *models.Snapshot) error
	PublishRegime(ctx context.Context, r *models.RegimeReport) error
	Close() error
}

type Metrics interface {
	RecordUpstreamCall(endpoint, result string)
	RecordCacheLookup(kind string, hit bool)
	RecordSymbolError(symbol string)
	RecordLastPrice(symbol string, price float64)
	RecordLatency(op string, seconds float64)
}
