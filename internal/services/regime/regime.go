// Package regime labels the aggregate market state from a set of snapshots.
// Two classifiers exist; a deployment picks exactly one of them.
package regime

import (
	"fmt"

	"MarketCoach/internal/domain/service"
	"MarketCoach/internal/services/universe"
)

const (
	ClassifierBreadth      = "breadth"
	ClassifierConfirmation = "confirmation"
)

// New returns the classifier registered under name.
func New(name string, u *universe.Universe) (service.RegimeClassifier, error) {
	switch name {
	case ClassifierBreadth, "":
		return NewBreadthClassifier(u), nil
	case ClassifierConfirmation:
		return NewConfirmationClassifier(u), nil
	default:
		return nil, fmt.Errorf("regime: unknown classifier %q", name)
	}
}

func ratio(n, d int) float64 {
	if d == 0 {
		return 0
	}
	return float64(n) / float64(d)
}

func set(symbols []string) map[string]struct{} {
	m := make(map[string]struct{}, len(symbols))
	for _, s := range symbols {
		m[s] = struct{}{}
	}
	return m
}
