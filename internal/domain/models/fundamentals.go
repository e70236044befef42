package models

type Dividend struct {
	ExDate          *string  `json:"ex_date"`
	PayDate         *string  `json:"pay_date"`
	RecordDate      *string  `json:"record_date"`
	DeclarationDate *string  `json:"declaration_date"`
	Amount          *float64 `json:"amount"`
}

type DividendsReport struct {
	Symbol    string     `json:"symbol"`
	AsOfLocal string     `json:"asof_local"`
	Source    string     `json:"source"`
	Dividends []Dividend `json:"dividends"`
}

type Earning struct {
	Date            *string  `json:"date"`
	Period          *string  `json:"period"`
	EPSEstimate     *float64 `json:"eps_estimate"`
	EPSActual       *float64 `json:"eps_actual"`
	RevenueEstimate *float64 `json:"revenue_estimate"`
	RevenueActual   *float64 `json:"revenue_actual"`
}

type EarningsReport struct {
	Symbol    string    `json:"symbol"`
	AsOfLocal string    `json:"asof_local"`
	Source    string    `json:"source"`
	Earnings  []Earning `json:"earnings"`
	Last4     []Earning `json:"last4"`
}
