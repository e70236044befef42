package usecase

import (
	"context"
	"errors"
	"testing"

	"MarketCoach/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func str(s string) *string { return &s }

func TestDividendsCachedForRepeatCalls(t *testing.T) {
	f := newFixture(t)
	f.market.On("Dividends", "KO").Return([]models.Dividend{
		{ExDate: str("2025-03-14"), Amount: ptr(0.51)},
	}, nil).Once()

	uc := NewFundamentalsUseCase(f.market, f.cache, f.clock, nil, nil, true)
	first, err := uc.Dividends(context.Background(), "KO")
	require.NoError(t, err)
	second, err := uc.Dividends(context.Background(), "KO")
	require.NoError(t, err)

	f.market.AssertNumberOfCalls(t, "Dividends", 1)
	assert.Equal(t, first, second)
	assert.Equal(t, "KO", first.Symbol)
	assert.Equal(t, "twelvedata", first.Source)
	assert.Equal(t, "Mar 05, 9:07 AM", first.AsOfLocal)
}

func TestEarningsLast4(t *testing.T) {
	f := newFixture(t)
	rows := make([]models.Earning, 6)
	for i := range rows {
		rows[i] = models.Earning{Period: str(string(rune('A' + i)))}
	}
	f.market.On("Earnings", "AAPL").Return(rows, nil)
	f.market.On("Earnings", "NONE").Return(nil, nil)

	uc := NewFundamentalsUseCase(f.market, f.cache, f.clock, nil, nil, true)
	r, err := uc.Earnings(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Len(t, r.Earnings, 6)
	require.Len(t, r.Last4, 4)
	assert.Equal(t, "A", *r.Last4[0].Period)

	empty, err := uc.Earnings(context.Background(), "NONE")
	require.NoError(t, err)
	assert.NotNil(t, empty.Earnings)
	assert.Empty(t, empty.Last4)
}

func TestFundamentalsUpstreamErrorNotCached(t *testing.T) {
	f := newFixture(t)
	f.market.On("Dividends", "X").Return(nil, errors.New("boom"))

	uc := NewFundamentalsUseCase(f.market, f.cache, f.clock, nil, nil, true)
	_, err := uc.Dividends(context.Background(), "X")
	require.Error(t, err)

	ok, _ := f.cache.Exists(context.Background(), dividendsKey("X"))
	assert.False(t, ok)
}

func TestFundamentalsNotConfigured(t *testing.T) {
	f := newFixture(t)
	uc := NewFundamentalsUseCase(f.market, f.cache, f.clock, nil, nil, false)
	_, err := uc.Earnings(context.Background(), "AAPL")
	assert.ErrorIs(t, err, ErrNotConfigured)
}
