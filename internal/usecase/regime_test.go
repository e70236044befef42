package usecase

import (
	"context"
	"errors"
	"testing"

	"MarketCoach/internal/domain/models"
	"MarketCoach/internal/services/regime"
	"MarketCoach/internal/services/universe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestRegimeClassifiesAndRecordsCoach(t *testing.T) {
	f := newFixture(t)
	u := universe.Default()
	f.market.On("DailyClose", mock.Anything).Return(ptr(100), nil)
	f.market.On("Quote", "AAPL").Return(nil, errors.New("down"))
	f.market.On("Quote", mock.Anything).Return(&models.Quote{Price: ptr(101), PreviousClose: ptr(100)}, nil)
	f.market.On("IntradaySeries", mock.Anything).Return([]models.Bar{}, nil)

	pub := &mockPublisher{}
	pub.On("PublishSnapshot", mock.Anything, mock.Anything).Return(nil)
	pub.On("PublishRegime", regime.ClassifierBreadth).Return(nil).Once()

	g := NewSnapshotGateway(f.market, f.cache, f.clock, u, pub, nil, nil, GatewayConfig{Configured: true})
	coach := NewCoachUseCase(f.cache, f.clock, nil)
	uc := NewRegimeUseCase(g, regime.NewBreadthClassifier(u), coach, pub, nil)

	r, err := uc.Regime(context.Background(), []string{"AAPL", "MSFT", "KO"})
	require.NoError(t, err)

	assert.Equal(t, regime.ClassifierBreadth, uc.ClassifierName())
	require.NotNil(t, r.Breadth)
	assert.Equal(t, 2, r.Breadth.Used)
	assert.Equal(t, 2, r.Breadth.Up)
	assert.Equal(t, map[string]string{"AAPL": "quote: down"}, r.Errors)
	assert.Equal(t, "2025-03-05:10:05", r.Meta.Bucket)
	assert.Equal(t, models.RegimeNormal, r.Regime.Code)

	latest, err := coach.Latest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, r.Regime.Label, latest.Regime)
	pub.AssertExpectations(t)
}

func TestRegimeNotConfigured(t *testing.T) {
	f := newFixture(t)
	u := universe.Default()
	g := NewSnapshotGateway(f.market, f.cache, f.clock, u, nil, nil, nil, GatewayConfig{})
	uc := NewRegimeUseCase(g, regime.NewConfirmationClassifier(u), nil, nil, nil)

	_, err := uc.Regime(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNotConfigured)
}
