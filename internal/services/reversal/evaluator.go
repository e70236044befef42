// Package reversal evaluates whether a symbol reclaimed its baseline by a
// per-symbol threshold during a session.
package reversal

import (
	"fmt"

	"MarketCoach/internal/domain/models"

	"github.com/shopspring/decimal"
)

const missingBaseline = "Missing baseline."

// Evaluate computes needHigh = baseline*(1+threshold) and confirms when the
// session high reached it and last trades above baseline. A missing or
// non-positive baseline never confirms.
func Evaluate(baseline, sessionHigh, last *float64, threshold float64) models.Reversal {
	if !models.Finite(baseline) || *baseline <= 0 {
		return models.Reversal{
			Threshold: threshold,
			Detail:    missingBaseline,
		}
	}

	b := *baseline
	needHigh := b * (1 + threshold)
	confirmed := models.Finite(sessionHigh) && models.Finite(last) &&
		*sessionHigh >= needHigh && *last > b

	return models.Reversal{
		Threshold: threshold,
		NeedHigh:  &needHigh,
		Confirmed: confirmed,
		Detail: fmt.Sprintf("Need High ≥ $%s and Last > $%s (threshold %s%%).",
			money(needHigh), money(b), decimal.NewFromFloat(threshold).Shift(2).StringFixed(2)),
	}
}

// PerfHigh is (high-baseline)/baseline, nil when it cannot be computed.
func PerfHigh(high, baseline *float64) *float64 {
	if !models.Finite(high) || !models.Finite(baseline) || *baseline <= 0 {
		return nil
	}
	return models.Float((*high - *baseline) / *baseline)
}

// Session builds the RTH block for one symbol.
func Session(baseline, high, last *float64, threshold float64) models.SessionStats {
	return models.SessionStats{
		High:     high,
		PerfHigh: PerfHigh(high, baseline),
		Reversal: Evaluate(baseline, high, last, threshold),
	}
}

func money(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}
