// Package universe holds the tracked symbol table: per-symbol reversal
// thresholds and cohort membership.
package universe

import (
	"strings"

	"MarketCoach/internal/domain/models"
	"MarketCoach/pkg/config"
)

// DefaultThreshold applies to symbols missing from the table.
const DefaultThreshold = 0.01

// Financials is the fixed financials list used by the breadth classifier.
var Financials = []string{"JPM", "GS", "AXP", "V"}

var dow30 = []models.SymbolInfo{
	{Symbol: "AAPL", Name: "Apple", Threshold: 0.006, Category: "Mega-cap Liquidity Leader", Cohort: models.CohortLiquidityLeader},
	{Symbol: "MSFT", Name: "Microsoft", Threshold: 0.005, Category: "Mega-cap Liquidity Leader", Cohort: models.CohortLiquidityLeader},
	{Symbol: "IBM", Name: "IBM", Threshold: 0.007, Category: "Value Tech / Rebalancing", Cohort: models.CohortLiquidityLeader},

	{Symbol: "CRM", Name: "Salesforce", Threshold: 0.010, Category: "Enterprise Software / IT Budgets", Cohort: models.CohortReflexBounce},
	{Symbol: "INTC", Name: "Intel", Threshold: 0.010, Category: "Semis / Cycle", Cohort: models.CohortReflexBounce},
	{Symbol: "NKE", Name: "Nike", Threshold: 0.010, Category: "Consumer Discretionary", Cohort: models.CohortReflexBounce},

	{Symbol: "JPM", Name: "JPMorgan", Threshold: 0.008, Category: "Cyclical Financials", Cohort: models.CohortMacroSensitive},
	{Symbol: "AXP", Name: "American Express", Threshold: 0.012, Category: "Payments / Affluent Spend", Cohort: models.CohortMacroSensitive},
	{Symbol: "V", Name: "Visa", Threshold: 0.010, Category: "Payments / Spending", Cohort: models.CohortMacroSensitive},
	{Symbol: "GS", Name: "Goldman Sachs", Threshold: 0.010, Category: "Capital Markets", Cohort: models.CohortMacroSensitive},
	{Symbol: "HD", Name: "Home Depot", Threshold: 0.010, Category: "Housing / Consumer", Cohort: models.CohortMacroSensitive},
	{Symbol: "DIS", Name: "Disney", Threshold: 0.012, Category: "Consumer / Media", Cohort: models.CohortMacroSensitive},
	{Symbol: "WMT", Name: "Walmart", Threshold: 0.007, Category: "Consumer Staples / Scale", Cohort: models.CohortMacroSensitive},
	{Symbol: "CVX", Name: "Chevron", Threshold: 0.010, Category: "Energy / Macro", Cohort: models.CohortMacroSensitive},

	{Symbol: "CAT", Name: "Caterpillar", Threshold: 0.010, Category: "Industrials / Capex", Cohort: models.CohortCyclical},
	{Symbol: "HON", Name: "Honeywell", Threshold: 0.008, Category: "Industrials / Aerospace", Cohort: models.CohortCyclical},
	{Symbol: "BA", Name: "Boeing", Threshold: 0.014, Category: "Aerospace", Cohort: models.CohortCyclical},
	{Symbol: "MMM", Name: "3M", Threshold: 0.010, Category: "Industrials", Cohort: models.CohortCyclical},
	{Symbol: "DOW", Name: "Dow Inc.", Threshold: 0.012, Category: "Chemicals", Cohort: models.CohortCyclical},

	{Symbol: "JNJ", Name: "Johnson & Johnson", Threshold: 0.006, Category: "Defensive / Healthcare", Cohort: models.CohortDefensive},
	{Symbol: "MRK", Name: "Merck", Threshold: 0.006, Category: "Defensive / Healthcare", Cohort: models.CohortDefensive},
	{Symbol: "AMGN", Name: "Amgen", Threshold: 0.007, Category: "Defensive / Biotech", Cohort: models.CohortDefensive},
	{Symbol: "UNH", Name: "UnitedHealth", Threshold: 0.007, Category: "Defensive / Healthcare", Cohort: models.CohortDefensive},
	{Symbol: "PG", Name: "Procter & Gamble", Threshold: 0.006, Category: "Defensive / Staples", Cohort: models.CohortDefensive},
	{Symbol: "KO", Name: "Coca-Cola", Threshold: 0.006, Category: "Defensive / Staples", Cohort: models.CohortDefensive},
	{Symbol: "MCD", Name: "McDonald's", Threshold: 0.007, Category: "Defensive / Consumer", Cohort: models.CohortDefensive},
	{Symbol: "VZ", Name: "Verizon", Threshold: 0.006, Category: "Defensive / Yield", Cohort: models.CohortDefensive},
	{Symbol: "TRV", Name: "Travelers", Threshold: 0.007, Category: "Defensive / Insurance", Cohort: models.CohortDefensive},
	{Symbol: "CSCO", Name: "Cisco", Threshold: 0.007, Category: "Defensive / Networking", Cohort: models.CohortDefensive},
}

// Universe is an immutable symbol table.
type Universe struct {
	list     []models.SymbolInfo
	bySymbol map[string]models.SymbolInfo
}

// New builds a table from entries; an empty list yields the Dow 30 default.
func New(entries []models.SymbolInfo) *Universe {
	if len(entries) == 0 {
		entries = dow30
	}
	u := &Universe{
		list:     make([]models.SymbolInfo, 0, len(entries)),
		bySymbol: make(map[string]models.SymbolInfo, len(entries)),
	}
	for _, e := range entries {
		e.Symbol = strings.ToUpper(strings.TrimSpace(e.Symbol))
		if e.Symbol == "" {
			continue
		}
		if _, dup := u.bySymbol[e.Symbol]; dup {
			continue
		}
		u.list = append(u.list, e)
		u.bySymbol[e.Symbol] = e
	}
	return u
}

// Default is the built-in Dow 30 table.
func Default() *Universe { return New(nil) }

// FromConfig converts the YAML universe section.
func FromConfig(cfg *config.Config) *Universe {
	entries := make([]models.SymbolInfo, 0, len(cfg.Universe))
	for _, s := range cfg.Universe {
		entries = append(entries, models.SymbolInfo{
			Symbol:    s.Symbol,
			Name:      s.Name,
			Threshold: s.Threshold,
			Category:  s.Category,
			Cohort:    s.Cohort,
		})
	}
	return New(entries)
}

// Symbols lists tickers in table order.
func (u *Universe) Symbols() []string {
	out := make([]string, len(u.list))
	for i, e := range u.list {
		out[i] = e.Symbol
	}
	return out
}

// All returns a copy of the table.
func (u *Universe) All() []models.SymbolInfo {
	return append([]models.SymbolInfo(nil), u.list...)
}

func (u *Universe) Lookup(symbol string) (models.SymbolInfo, bool) {
	e, ok := u.bySymbol[symbol]
	return e, ok
}

// Threshold is the symbol's reversal threshold, DefaultThreshold when unknown.
func (u *Universe) Threshold(symbol string) float64 {
	if e, ok := u.bySymbol[symbol]; ok && e.Threshold > 0 {
		return e.Threshold
	}
	return DefaultThreshold
}

// Cohort is the symbol's cohort key, "" when unknown.
func (u *Universe) Cohort(symbol string) string {
	return u.bySymbol[symbol].Cohort
}

// Members lists the symbols of one cohort.
func (u *Universe) Members(cohort string) []string {
	var out []string
	for _, e := range u.list {
		if e.Cohort == cohort {
			out = append(out, e.Symbol)
		}
	}
	return out
}
