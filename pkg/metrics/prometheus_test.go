package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecorderCounts(t *testing.T) {
	r := New(prometheus.NewRegistry())

	r.RecordUpstreamCall("quote", "ok")
	r.RecordUpstreamCall("quote", "ok")
	r.RecordCacheLookup("snapshot", true)
	r.RecordCacheLookup("snapshot", false)
	r.RecordSymbolError("AAPL")
	r.RecordLastPrice("AAPL", 190.5)
	r.RecordLatency("snapshot", 0.2)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.upstreamCalls.WithLabelValues("quote", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.cacheLookups.WithLabelValues("snapshot", "true")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.symbolErrors.WithLabelValues("AAPL")))
	assert.Equal(t, 190.5, testutil.ToFloat64(r.lastPrice.WithLabelValues("AAPL")))
}

func TestRecordersOnSeparateRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		New(prometheus.NewRegistry())
		New(prometheus.NewRegistry())
	})
}
