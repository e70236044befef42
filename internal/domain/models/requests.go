package models

// Query parameters for the dashboard endpoints.

type SymbolsRequest struct {
	Symbols string `query:"symbols" json:"symbols" validate:"max=1024,tickers"`
}

type InitBaselinesRequest struct {
	Symbols string `query:"symbols" json:"symbols" validate:"required,max=1024,tickers"`
}

type FundamentalsRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required,max=16,tickers"`
}

type StreamRequest struct {
	Symbols  string `query:"symbols" json:"symbols" validate:"max=1024,tickers"`
	Interval string `query:"interval" json:"interval" validate:"max=16"`
}
