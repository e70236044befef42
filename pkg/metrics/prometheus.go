package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	upstreamCalls *prometheus.CounterVec
	cacheLookups  *prometheus.CounterVec
	symbolErrors  *prometheus.CounterVec
	lastPrice     *prometheus.GaugeVec
	latency       *prometheus.HistogramVec
}

// New creates a recorder registered on reg; nil means the default registry.
func New(reg prometheus.Registerer) *Recorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Recorder{
		upstreamCalls: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mcm_upstream_calls_total",
				Help: "Upstream market-data calls by endpoint and result",
			},
			[]string{"endpoint", "result"},
		),
		cacheLookups: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mcm_cache_lookups_total",
				Help: "Cache lookups by entry kind and outcome",
			},
			[]string{"kind", "hit"},
		),
		symbolErrors: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mcm_symbol_errors_total",
				Help: "Per-symbol snapshot failures",
			},
			[]string{"symbol"},
		),
		lastPrice: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "mcm_last_price",
				Help: "Last resolved price for a symbol",
			},
			[]string{"symbol"},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "mcm_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordUpstreamCall counts one provider request.
func (r *Recorder) RecordUpstreamCall(endpoint, result string) {
	r.upstreamCalls.WithLabelValues(endpoint, result).Inc()
}

// RecordCacheLookup counts a cache hit or miss for an entry kind (snapshot, baseline, ...).
func (r *Recorder) RecordCacheLookup(kind string, hit bool) {
	r.cacheLookups.WithLabelValues(kind, strconv.FormatBool(hit)).Inc()
}

func (r *Recorder) RecordSymbolError(symbol string) {
	r.symbolErrors.WithLabelValues(symbol).Inc()
}

// RecordLastPrice records the last price for a symbol.
func (r *Recorder) RecordLastPrice(symbol string, price float64) {
	r.lastPrice.WithLabelValues(symbol).Set(price)
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
