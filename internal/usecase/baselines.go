package usecase

import (
	"context"
	"errors"
	"math"
	"strconv"

	"MarketCoach/internal/domain/models"
	domrepo "MarketCoach/internal/domain/repository"
	"MarketCoach/pkg/cache"
	applogger "MarketCoach/pkg/logger"
)

var errNoDailyClose = errors.New("no daily close")

// readBaseline returns the stored Day-0 close. A missing or unparsable entry
// reports false so the caller refetches it.
func readBaseline(ctx context.Context, c cache.Service, symbol string) (*float64, bool) {
	var s string
	if err := c.Get(ctx, BaselineKey(symbol), &s); err != nil {
		return nil, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, false
	}
	return &v, true
}

func storeBaseline(ctx context.Context, c cache.Service, symbol string, v float64) error {
	return c.Set(ctx, BaselineKey(symbol), strconv.FormatFloat(v, 'f', -1, 64), 0)
}

// BaselineUseCase refreshes baselines out of band.
type BaselineUseCase struct {
	market     domrepo.MarketData
	cache      cache.Service
	log        *applogger.Logger
	configured bool
}

func NewBaselineUseCase(market domrepo.MarketData, c cache.Service, l *applogger.Logger, configured bool) *BaselineUseCase {
	if l == nil {
		l = applogger.NewNop()
	}
	return &BaselineUseCase{market: market, cache: c, log: l, configured: configured}
}

// Init fetches the latest daily close for every symbol and overwrites its
// baseline. Failures are reported per symbol.
func (uc *BaselineUseCase) Init(ctx context.Context, symbols []string) (*models.BaselineReport, error) {
	if !uc.configured {
		return nil, ErrNotConfigured
	}

	report := &models.BaselineReport{OK: true, Results: make(map[string]models.BaselineResult, len(symbols))}
	for _, sym := range symbols {
		v, err := uc.refresh(ctx, sym)
		if err != nil {
			uc.log.Warn("init baseline failed", applogger.String("symbol", sym), applogger.Error(err))
			report.Results[sym] = models.BaselineResult{OK: false, Error: err.Error()}
			continue
		}
		report.Results[sym] = models.BaselineResult{OK: true, Baseline: &v}
	}
	return report, nil
}

func (uc *BaselineUseCase) refresh(ctx context.Context, symbol string) (float64, error) {
	v, err := uc.market.DailyClose(ctx, symbol)
	if err != nil {
		return 0, err
	}
	if !models.Finite(v) {
		return 0, errNoDailyClose
	}
	if err := storeBaseline(ctx, uc.cache, symbol, *v); err != nil {
		return 0, err
	}
	return *v, nil
}
