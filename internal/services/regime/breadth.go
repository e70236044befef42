package regime

import (
	"fmt"

	"MarketCoach/internal/domain/models"
	"MarketCoach/internal/services/universe"
)

const (
	minUsed          = 10
	panicBreadthMax  = 0.25
	recoveryBreadth  = 0.60
	panicDefensives  = 2
	rotationDefUp    = 3
	cyclicalsDownMin = 3
	financialsDown   = 2
	macroLeadersMax  = 1
)

// BreadthClassifier is the five-way up/down breadth and cohort decision table.
type BreadthClassifier struct {
	leaders    map[string]struct{}
	defensives map[string]struct{}
	cyclicals  map[string]struct{}
	financials map[string]struct{}
}

func NewBreadthClassifier(u *universe.Universe) *BreadthClassifier {
	return &BreadthClassifier{
		leaders:    set(u.Members(models.CohortLiquidityLeader)),
		defensives: set(u.Members(models.CohortDefensive)),
		cyclicals:  set(u.Members(models.CohortCyclical)),
		financials: set(universe.Financials),
	}
}

func (c *BreadthClassifier) Name() string { return ClassifierBreadth }

// Classify tallies signs and applies the decision table.
func (c *BreadthClassifier) Classify(snapshots []models.Snapshot) *models.RegimeReport {
	b := c.Tally(snapshots)
	return &models.RegimeReport{
		Classifier: ClassifierBreadth,
		Regime:     ClassifyBreadth(b),
		Breadth:    &b,
	}
}

// Tally counts up/down/flat by last versus previous close. Symbols missing
// either price are left out of every count.
func (c *BreadthClassifier) Tally(snapshots []models.Snapshot) models.Breadth {
	var b models.Breadth
	for _, s := range snapshots {
		if !models.Finite(s.Last) || !models.Finite(s.PreviousClose) {
			continue
		}
		diff := *s.Last - *s.PreviousClose
		bump(&b.Up, &b.Down, &b.Flat, diff)
		if _, ok := c.leaders[s.Symbol]; ok {
			bump(&b.Leaders.Up, &b.Leaders.Down, &b.Leaders.Flat, diff)
		}
		if _, ok := c.defensives[s.Symbol]; ok {
			bump(&b.Defensives.Up, &b.Defensives.Down, &b.Defensives.Flat, diff)
		}
		if _, ok := c.cyclicals[s.Symbol]; ok {
			bump(&b.Cyclicals.Up, &b.Cyclicals.Down, &b.Cyclicals.Flat, diff)
		}
		if _, ok := c.financials[s.Symbol]; ok {
			bump(&b.Financials.Up, &b.Financials.Down, &b.Financials.Flat, diff)
		}
	}
	b.Used = b.Up + b.Down + b.Flat
	b.BreadthUp = ratio(b.Up, b.Used)
	return b
}

func bump(up, down, flat *int, diff float64) {
	switch {
	case diff > 0:
		*up++
	case diff < 0:
		*down++
	default:
		*flat++
	}
}

// ClassifyBreadth applies the rules in order; the first match wins.
func ClassifyBreadth(b models.Breadth) models.RegimeClassification {
	meta := fmt.Sprintf("%d symbols: %d up, %d down, %d flat (breadth %.0f%%)",
		b.Used, b.Up, b.Down, b.Flat, b.BreadthUp*100)

	switch {
	case b.Used >= minUsed && b.BreadthUp <= panicBreadthMax &&
		b.Leaders.Down >= 1 && b.Defensives.Up <= panicDefensives:
		return models.RegimeClassification{
			Code:      models.RegimePanicLiquidation,
			Label:     "Panic / Liquidation",
			ToneClass: models.ToneBad,
			Sub: fmt.Sprintf("Only %d/%d up; %d leader(s) down and just %d defensive(s) holding.",
				b.Up, b.Used, b.Leaders.Down, b.Defensives.Up),
			Meta: meta,
		}

	case b.Defensives.Up >= rotationDefUp &&
		(b.Cyclicals.Down >= cyclicalsDownMin || b.Financials.Down >= financialsDown):
		return models.RegimeClassification{
			Code:      models.RegimeRiskOffRotation,
			Label:     "Risk-Off Rotation",
			ToneClass: models.ToneBad,
			Sub: fmt.Sprintf("%d defensives up while %d cyclicals and %d financials are down.",
				b.Defensives.Up, b.Cyclicals.Down, b.Financials.Down),
			Meta: meta,
		}

	case b.Cyclicals.Down >= cyclicalsDownMin && b.Financials.Down >= financialsDown &&
		b.Leaders.Up <= macroLeadersMax:
		return models.RegimeClassification{
			Code:      models.RegimeMacroRepricing,
			Label:     "Macro Repricing",
			ToneClass: models.ToneBad,
			Sub: fmt.Sprintf("%d cyclicals and %d financials down; leaders not offsetting (%d up).",
				b.Cyclicals.Down, b.Financials.Down, b.Leaders.Up),
			Meta: meta,
		}

	case b.Used >= minUsed && b.BreadthUp >= recoveryBreadth && b.Leaders.Up >= 1:
		return models.RegimeClassification{
			Code:      models.RegimeRecovery,
			Label:     "Recovery / Mean Reversion",
			ToneClass: models.ToneGood,
			Sub: fmt.Sprintf("%d/%d up with %d leader(s) participating.",
				b.Up, b.Used, b.Leaders.Up),
			Meta: meta,
		}
	}

	return models.RegimeClassification{
		Code:      models.RegimeNormal,
		Label:     "Normal / Earnings-Driven",
		ToneClass: models.ToneNeutral,
		Sub:       fmt.Sprintf("Mixed tape: %d up, %d down, %d flat.", b.Up, b.Down, b.Flat),
		Meta:      meta,
	}
}
