package models

// Cohort keys used by the symbol universe.
const (
	CohortLiquidityLeader = "liquidity_leader"
	CohortReflexBounce    = "reflex_bounce"
	CohortMacroSensitive  = "macro_sensitive"
	CohortCyclical        = "cyclical"
	CohortDefensive       = "defensive"
)

// SymbolInfo describes one tracked ticker.
type SymbolInfo struct {
	Symbol    string  `json:"symbol"`
	Name      string  `json:"name"`
	Threshold float64 `json:"threshold"`
	Category  string  `json:"category"`
	Cohort    string  `json:"cohort"`
}
