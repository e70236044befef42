package usecase

import (
	"context"
	"testing"
	"time"

	"MarketCoach/internal/domain/models"
	"MarketCoach/internal/services/session"
	"MarketCoach/internal/services/universe"
	"MarketCoach/pkg/cache"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockMarket struct{ mock.Mock }

func (m *mockMarket) Quote(_ context.Context, symbol string) (*models.Quote, error) {
	args := m.Called(symbol)
	q, _ := args.Get(0).(*models.Quote)
	return q, args.Error(1)
}

func (m *mockMarket) IntradaySeries(_ context.Context, symbol string) ([]models.Bar, error) {
	args := m.Called(symbol)
	bars, _ := args.Get(0).([]models.Bar)
	return bars, args.Error(1)
}

func (m *mockMarket) DailyClose(_ context.Context, symbol string) (*float64, error) {
	args := m.Called(symbol)
	v, _ := args.Get(0).(*float64)
	return v, args.Error(1)
}

func (m *mockMarket) Dividends(_ context.Context, symbol string) ([]models.Dividend, error) {
	args := m.Called(symbol)
	rows, _ := args.Get(0).([]models.Dividend)
	return rows, args.Error(1)
}

func (m *mockMarket) Earnings(_ context.Context, symbol string) ([]models.Earning, error) {
	args := m.Called(symbol)
	rows, _ := args.Get(0).([]models.Earning)
	return rows, args.Error(1)
}

type mockPublisher struct{ mock.Mock }

func (m *mockPublisher) PublishSnapshot(_ context.Context, bucket string, s *models.Snapshot) error {
	return m.Called(bucket, s.Symbol).Error(0)
}

func (m *mockPublisher) PublishRegime(_ context.Context, r *models.RegimeReport) error {
	return m.Called(r.Classifier).Error(0)
}

func (m *mockPublisher) Close() error { return nil }

// 10:07 ET on a Wednesday, inside RTH.
var rthInstant = time.Date(2025, 3, 5, 15, 7, 0, 0, time.UTC)

type fixture struct {
	now    time.Time
	clock  *session.Clock
	cache  *cache.MemoryCache
	market *mockMarket
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{now: rthInstant, market: &mockMarket{}}
	base, err := session.NewClock("America/New_York", "America/Chicago")
	require.NoError(t, err)
	f.clock = base.WithNow(func() time.Time { return f.now })
	f.cache = cache.NewMemoryCache()
	t.Cleanup(func() { _ = f.cache.Close() })
	return f
}

func (f *fixture) gateway(u *universe.Universe) *SnapshotGateway {
	if u == nil {
		u = universe.Default()
	}
	return NewSnapshotGateway(f.market, f.cache, f.clock, u, nil, nil, nil, GatewayConfig{Configured: true})
}

func ptr(v float64) *float64 { return &v }
