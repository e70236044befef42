package usecase

import (
	"context"
	"errors"
	"fmt"

	"MarketCoach/internal/domain/models"
	domrepo "MarketCoach/internal/domain/repository"
	"MarketCoach/internal/services/session"
	"MarketCoach/pkg/cache"
	applogger "MarketCoach/pkg/logger"
)

const fundamentalsSource = "twelvedata"

const last4 = 4

// FundamentalsUseCase serves dividends and earnings, cached for 12 hours.
type FundamentalsUseCase struct {
	market     domrepo.MarketData
	cache      cache.Service
	clock      *session.Clock
	metrics    domrepo.Metrics
	log        *applogger.Logger
	configured bool
}

func NewFundamentalsUseCase(market domrepo.MarketData, c cache.Service, clock *session.Clock, metrics domrepo.Metrics, l *applogger.Logger, configured bool) *FundamentalsUseCase {
	if metrics == nil {
		metrics = nopMetrics{}
	}
	if l == nil {
		l = applogger.NewNop()
	}
	return &FundamentalsUseCase{market: market, cache: c, clock: clock, metrics: metrics, log: l, configured: configured}
}

func (uc *FundamentalsUseCase) Dividends(ctx context.Context, symbol string) (*models.DividendsReport, error) {
	if !uc.configured {
		return nil, ErrNotConfigured
	}
	key := dividendsKey(symbol)

	var cached models.DividendsReport
	if uc.lookup(ctx, "dividends", key, &cached) {
		return &cached, nil
	}

	rows, err := uc.market.Dividends(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("dividends %s: %w", symbol, err)
	}
	if rows == nil {
		rows = []models.Dividend{}
	}
	report := &models.DividendsReport{
		Symbol:    symbol,
		AsOfLocal: uc.clock.FormatLocal(),
		Source:    fundamentalsSource,
		Dividends: rows,
	}
	uc.store(ctx, key, report)
	return report, nil
}

func (uc *FundamentalsUseCase) Earnings(ctx context.Context, symbol string) (*models.EarningsReport, error) {
	if !uc.configured {
		return nil, ErrNotConfigured
	}
	key := earningsKey(symbol)

	var cached models.EarningsReport
	if uc.lookup(ctx, "earnings", key, &cached) {
		return &cached, nil
	}

	rows, err := uc.market.Earnings(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("earnings %s: %w", symbol, err)
	}
	if rows == nil {
		rows = []models.Earning{}
	}
	report := &models.EarningsReport{
		Symbol:    symbol,
		AsOfLocal: uc.clock.FormatLocal(),
		Source:    fundamentalsSource,
		Earnings:  rows,
		Last4:     rows[:min(len(rows), last4)],
	}
	uc.store(ctx, key, report)
	return report, nil
}

func (uc *FundamentalsUseCase) lookup(ctx context.Context, kind, key string, dest interface{}) bool {
	err := uc.cache.Get(ctx, key, dest)
	if err != nil && !errors.Is(err, cache.ErrCacheMiss) {
		uc.log.Warn("fundamentals cache read failed", applogger.String("key", key), applogger.Error(err))
	}
	uc.metrics.RecordCacheLookup(kind, err == nil)
	return err == nil
}

func (uc *FundamentalsUseCase) store(ctx context.Context, key string, v interface{}) {
	if err := uc.cache.Set(ctx, key, v, fundamentalsTTL); err != nil {
		uc.log.Warn("fundamentals cache write failed", applogger.String("key", key), applogger.Error(err))
	}
}
