package models

type Tone string

const (
	ToneGood    Tone = "good"
	ToneBad     Tone = "bad"
	ToneNeutral Tone = "neutral"
)

type RegimeCode string

// Breadth classifier outcomes.
const (
	RegimePanicLiquidation RegimeCode = "panic_liquidation"
	RegimeRiskOffRotation  RegimeCode = "risk_off_rotation"
	RegimeMacroRepricing   RegimeCode = "macro_repricing"
	RegimeRecovery         RegimeCode = "recovery"
	RegimeNormal           RegimeCode = "normal"
)

// Confirmation classifier outcomes.
const (
	RegimePanicEvent        RegimeCode = "panic_event"
	RegimeEconomicRepricing RegimeCode = "economic_repricing"
	RegimeStabilization     RegimeCode = "stabilization"
	RegimeNone              RegimeCode = "none"
)

// RegimeClassification is the labelled aggregate market state.
type RegimeClassification struct {
	Code      RegimeCode `json:"code"`
	Label     string     `json:"label"`
	ToneClass Tone       `json:"toneClass"`
	Sub       string     `json:"sub"`
	Meta      string     `json:"meta"`
}

type SignCounts struct {
	Up   int `json:"up"`
	Down int `json:"down"`
	Flat int `json:"flat"`
}

// Used is the number of symbols with a known sign.
func (c SignCounts) Used() int { return c.Up + c.Down + c.Flat }

// Breadth summarises up/down/flat signs over the whole set and per cohort.
type Breadth struct {
	Used       int        `json:"used"`
	Up         int        `json:"up"`
	Down       int        `json:"down"`
	Flat       int        `json:"flat"`
	BreadthUp  float64    `json:"breadthUp"`
	Leaders    SignCounts `json:"leaders"`
	Defensives SignCounts `json:"defensives"`
	Cyclicals  SignCounts `json:"cyclicals"`
	Financials SignCounts `json:"financials"`
}

// Confirmation summarises reversal confirmations for the tile classifier.
type Confirmation struct {
	Total        int `json:"total"`
	ConfirmedRTH int `json:"confirmedRth"`
	ConfirmedETH int `json:"confirmedEth"`
	PositiveHigh int `json:"positiveHigh"`
	// Cohort -> {confirmed, total}
	Cohorts map[string][2]int `json:"cohorts"`
}

// RegimeReport is what /api/regime returns and what the coach stores.
type RegimeReport struct {
	Classifier   string               `json:"classifier"`
	Regime       RegimeClassification `json:"regime"`
	Breadth      *Breadth             `json:"breadth,omitempty"`
	Confirmation *Confirmation        `json:"confirmation,omitempty"`
	Errors       map[string]string    `json:"errors,omitempty"`
	Meta         SnapshotMeta         `json:"_meta"`
}
