package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"MarketCoach/internal/domain/models"
	domrepo "MarketCoach/internal/domain/repository"
	"MarketCoach/internal/services/reversal"
	"MarketCoach/internal/services/session"
	"MarketCoach/internal/services/universe"
	"MarketCoach/pkg/cache"
	applogger "MarketCoach/pkg/logger"
	"MarketCoach/pkg/util"

	"golang.org/x/sync/errgroup"
)

const (
	snapshotNote = "Backend enforces credits-aware cadence (RTH 5m, ETH 1h) via cache."

	defaultMaxConcurrency = 8
	defaultSymbolTimeout  = 15 * time.Second
)

// GatewayConfig tunes the snapshot fan-out.
type GatewayConfig struct {
	// Configured is false when no API key is set; every request then fails with ErrNotConfigured.
	Configured     bool
	MaxConcurrency int
	SymbolTimeout  time.Duration
}

// SnapshotGateway serves per-symbol snapshots from the cache, computing and
// storing them on a miss. At most one upstream fetch happens per symbol per
// cadence bucket unless two misses race, in which case the last write wins.
type SnapshotGateway struct {
	market    domrepo.MarketData
	cache     cache.Service
	clock     *session.Clock
	universe  *universe.Universe
	publisher domrepo.Publisher
	metrics   domrepo.Metrics
	log       *applogger.Logger
	cfg       GatewayConfig
}

// NewSnapshotGateway wires the gateway. publisher and metrics may be nil.
func NewSnapshotGateway(
	market domrepo.MarketData,
	c cache.Service,
	clock *session.Clock,
	u *universe.Universe,
	publisher domrepo.Publisher,
	metrics domrepo.Metrics,
	l *applogger.Logger,
	cfg GatewayConfig,
) *SnapshotGateway {
	if cfg.MaxConcurrency <= 0 {
		cfg.MaxConcurrency = defaultMaxConcurrency
	}
	if cfg.SymbolTimeout <= 0 {
		cfg.SymbolTimeout = defaultSymbolTimeout
	}
	if metrics == nil {
		metrics = nopMetrics{}
	}
	if l == nil {
		l = applogger.NewNop()
	}
	return &SnapshotGateway{
		market:    market,
		cache:     c,
		clock:     clock,
		universe:  u,
		publisher: publisher,
		metrics:   metrics,
		log:       l,
		cfg:       cfg,
	}
}

// Snapshot resolves every symbol concurrently. An empty list means the whole
// universe. Per-symbol failures land in that symbol's slot; only missing
// configuration fails the call.
func (g *SnapshotGateway) Snapshot(ctx context.Context, symbols []string) (*models.SnapshotResponse, error) {
	if !g.cfg.Configured {
		return nil, ErrNotConfigured
	}
	if len(symbols) == 0 {
		symbols = g.universe.Symbols()
	}

	start := time.Now()
	tick := g.clock.Tick()
	results := make([]models.SymbolResult, len(symbols))

	// Symbols keep running after the caller goes away so the cache still fills.
	detached := context.WithoutCancel(ctx)

	var eg errgroup.Group
	eg.SetLimit(g.cfg.MaxConcurrency)
	for i, sym := range symbols {
		eg.Go(func() error {
			sctx, cancel := context.WithTimeout(detached, g.cfg.SymbolTimeout)
			defer cancel()
			results[i] = g.Symbol(sctx, sym, tick)
			return nil
		})
	}
	_ = eg.Wait()

	resp := &models.SnapshotResponse{
		Symbols: symbols,
		Results: make(map[string]models.SymbolResult, len(symbols)),
		Meta:    Meta(tick),
	}
	for i, sym := range symbols {
		resp.Results[sym] = results[i]
	}

	g.metrics.RecordLatency("snapshot", time.Since(start).Seconds())
	return resp, nil
}

// Meta describes the clock reading a snapshot set was computed at.
func Meta(tick session.Tick) models.SnapshotMeta {
	return models.SnapshotMeta{
		AsOfMarket: tick.Now.MarketStamp(),
		AsOfLocal:  tick.Local,
		InRTH:      tick.InRTH,
		CadenceRTH: session.CadenceLabel(session.CadenceRTH),
		CadenceETH: session.CadenceLabel(session.CadenceETH),
		Bucket:     tick.Bucket,
		Note:       snapshotNote,
	}
}

// Symbol returns the cached snapshot for the tick's bucket or computes it.
func (g *SnapshotGateway) Symbol(ctx context.Context, symbol string, tick session.Tick) models.SymbolResult {
	key := SnapshotKey(symbol, tick.Bucket)

	var cached models.Snapshot
	err := g.cache.Get(ctx, key, &cached)
	if err == nil {
		g.metrics.RecordCacheLookup("snapshot", true)
		g.log.Debug("snapshot cache hit", applogger.String("key", key))
		return models.SymbolResult{Snapshot: &cached}
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		g.log.Warn("snapshot cache read failed", applogger.String("key", key), applogger.Error(err))
	}
	g.metrics.RecordCacheLookup("snapshot", false)

	snap, err := g.compute(ctx, symbol, tick)
	if err != nil {
		g.metrics.RecordSymbolError(symbol)
		g.log.Warn("snapshot upstream failed", applogger.String("symbol", symbol), applogger.Error(err))
		return models.SymbolResult{Err: &models.SymbolError{Symbol: symbol, Error: err.Error()}}
	}

	if err := g.cache.Set(ctx, key, snap, session.SnapshotTTL(tick.Cadence)); err != nil {
		g.log.Warn("snapshot cache write failed", applogger.String("key", key), applogger.Error(err))
	}
	if g.publisher != nil {
		if err := g.publisher.PublishSnapshot(ctx, tick.Bucket, snap); err != nil {
			g.log.Warn("publish snapshot failed", applogger.String("symbol", symbol), applogger.Error(err))
		}
	}
	if snap.Last != nil {
		g.metrics.RecordLastPrice(symbol, *snap.Last)
	}
	return models.SymbolResult{Snapshot: snap}
}

// fetched is everything one cache miss pulls from upstream.
type fetched struct {
	baseline *float64
	quote    *models.Quote
	bars     []models.Bar
}

func (g *SnapshotGateway) compute(ctx context.Context, symbol string, tick session.Tick) (*models.Snapshot, error) {
	var in fetched

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		// a failed baseline leaves it null; it never fails the symbol
		in.baseline = g.baseline(ctx, symbol)
		return nil
	})
	eg.Go(func() error {
		q, err := g.market.Quote(egCtx, symbol)
		if err != nil {
			return fmt.Errorf("quote: %w", err)
		}
		in.quote = q
		return nil
	})
	eg.Go(func() error {
		bars, err := g.market.IntradaySeries(egCtx, symbol)
		if err != nil {
			return fmt.Errorf("series: %w", err)
		}
		in.bars = bars
		return nil
	})
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	if in.quote == nil {
		in.quote = &models.Quote{Symbol: symbol}
	}

	thr := g.universe.Threshold(symbol)
	last := resolve(lastChain, &in)
	high := resolve(highChain, &in)
	rth := reversal.Session(in.baseline, high, last, thr)

	return &models.Snapshot{
		Symbol:        symbol,
		Baseline:      in.baseline,
		Last:          last,
		PreviousClose: in.quote.PreviousClose,
		RTH:           rth,
		// No extended-hours feed: ETH mirrors the RTH figures.
		ETH: models.ExtendedSessionStats{
			Available: true,
			High:      rth.High,
			PerfHigh:  rth.PerfHigh,
			Reversal:  rth.Reversal,
		},
		AsOfMarket: g.quoteStamp(in.quote),
		AsOfLocal:  tick.Local,
	}, nil
}

func (g *SnapshotGateway) baseline(ctx context.Context, symbol string) *float64 {
	if v, ok := readBaseline(ctx, g.cache, symbol); ok {
		g.metrics.RecordCacheLookup("baseline", true)
		return v
	}
	g.metrics.RecordCacheLookup("baseline", false)

	v, err := g.market.DailyClose(ctx, symbol)
	if err != nil {
		g.log.Warn("baseline fetch failed", applogger.String("symbol", symbol), applogger.Error(err))
		return nil
	}
	if !models.Finite(v) {
		g.log.Debug("baseline unavailable", applogger.String("symbol", symbol))
		return nil
	}
	if err := storeBaseline(ctx, g.cache, symbol, *v); err != nil {
		g.log.Warn("baseline cache write failed", applogger.String("symbol", symbol), applogger.Error(err))
	}
	return v
}

func (g *SnapshotGateway) quoteStamp(q *models.Quote) *string {
	var t time.Time
	switch {
	case q.Timestamp > 0:
		t = time.Unix(q.Timestamp, 0)
	default:
		parsed, ok := util.ParseTime(q.Datetime, g.clock.Market())
		if !ok {
			return nil
		}
		t = parsed
	}
	s := session.NowInMarketTZ(t, g.clock.Market()).MarketStamp()
	return &s
}

// priceSource is one step of a fallback chain.
type priceSource func(in *fetched) *float64

var (
	// last: quote price, newest series close, previous close, baseline.
	lastChain = []priceSource{quotePrice, seriesClose, quotePreviousClose, baselinePrice}
	// high: max series high, quote high.
	highChain = []priceSource{seriesHigh, quoteHigh}
)

func resolve(chain []priceSource, in *fetched) *float64 {
	for _, src := range chain {
		if v := src(in); models.Finite(v) {
			return v
		}
	}
	return nil
}

func quotePrice(in *fetched) *float64         { return in.quote.Price }
func quoteHigh(in *fetched) *float64          { return in.quote.High }
func quotePreviousClose(in *fetched) *float64 { return in.quote.PreviousClose }
func baselinePrice(in *fetched) *float64      { return in.baseline }

func seriesClose(in *fetched) *float64 {
	for _, b := range in.bars {
		if models.Finite(b.Close) {
			return b.Close
		}
	}
	return nil
}

func seriesHigh(in *fetched) *float64 {
	var best *float64
	for _, b := range in.bars {
		if !models.Finite(b.High) {
			continue
		}
		if best == nil || *b.High > *best {
			v := *b.High
			best = &v
		}
	}
	return best
}

type nopMetrics struct{}

func (nopMetrics) RecordUpstreamCall(string, string) {}
func (nopMetrics) RecordCacheLookup(string, bool)    {}
func (nopMetrics) RecordSymbolError(string)          {}
func (nopMetrics) RecordLastPrice(string, float64)   {}
func (nopMetrics) RecordLatency(string, float64)     {}
