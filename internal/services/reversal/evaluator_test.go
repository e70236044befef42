package reversal

import (
	"math"
	"testing"

	"MarketCoach/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f(v float64) *float64 { return &v }

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name      string
		baseline  *float64
		high      *float64
		last      *float64
		threshold float64
		needHigh  *float64
		confirmed bool
	}{
		{"confirmed", f(100), f(101.5), f(100.5), 0.01, f(101), true},
		{"high short of need", f(100), f(100.9), f(100.5), 0.01, f(101), false},
		{"high exactly at need", f(100), f(101), f(100.01), 0.01, f(101), true},
		{"last not above baseline", f(100), f(102), f(100), 0.01, f(101), false},
		{"missing baseline", nil, f(101.5), f(100.5), 0.01, nil, false},
		{"zero baseline", f(0), f(101.5), f(100.5), 0.01, nil, false},
		{"negative baseline", f(-5), f(101.5), f(100.5), 0.01, nil, false},
		{"nan baseline", f(math.NaN()), f(101.5), f(100.5), 0.01, nil, false},
		{"missing high", f(100), nil, f(100.5), 0.01, f(101), false},
		{"missing last", f(100), f(101.5), nil, 0.01, f(101), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Evaluate(tt.baseline, tt.high, tt.last, tt.threshold)
			assert.Equal(t, tt.confirmed, got.Confirmed)
			assert.Equal(t, tt.threshold, got.Threshold)
			if tt.needHigh == nil {
				assert.Nil(t, got.NeedHigh)
				assert.Equal(t, "Missing baseline.", got.Detail)
				return
			}
			require.NotNil(t, got.NeedHigh)
			assert.InDelta(t, *tt.needHigh, *got.NeedHigh, 1e-9)
		})
	}
}

func TestEvaluateDetail(t *testing.T) {
	got := Evaluate(f(412.3), f(415), f(414), 0.005)
	assert.Equal(t, "Need High ≥ $414.36 and Last > $412.30 (threshold 0.50%).", got.Detail)
}

func TestPerfHighRoundTrips(t *testing.T) {
	for _, tc := range [][2]float64{{100, 101.5}, {412.3, 398.12}, {0.37, 0.41}} {
		baseline, high := tc[0], tc[1]
		p := PerfHigh(f(high), f(baseline))
		require.NotNil(t, p)
		assert.InDelta(t, high, baseline*(1+*p), 1e-9)
	}
}

func TestPerfHighNeedsBothInputs(t *testing.T) {
	assert.Nil(t, PerfHigh(nil, f(100)))
	assert.Nil(t, PerfHigh(f(100), nil))
	assert.Nil(t, PerfHigh(f(100), f(0)))
}

func TestSession(t *testing.T) {
	s := Session(f(100), f(102), f(101), 0.01)
	require.NotNil(t, s.PerfHigh)
	assert.InDelta(t, 0.02, *s.PerfHigh, 1e-12)
	assert.True(t, s.Reversal.Confirmed)

	empty := Session(nil, nil, nil, 0.01)
	assert.Equal(t, models.SessionStats{Reversal: models.Reversal{Threshold: 0.01, Detail: "Missing baseline."}}, empty)
}
