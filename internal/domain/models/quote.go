package models

// Quote is the normalised provider quote.
type Quote struct {
	Symbol        string   `json:"symbol"`
	Price         *float64 `json:"price"`
	High          *float64 `json:"high"`
	PreviousClose *float64 `json:"previous_close"`
	// Datetime is the provider's bar time, Timestamp its unix seconds.
	Datetime  string `json:"datetime,omitempty"`
	Timestamp int64  `json:"timestamp,omitempty"`
}

// Bar is one OHLC row of a time series, newest first in a series slice.
type Bar struct {
	Datetime string   `json:"datetime"`
	Open     *float64 `json:"open"`
	High     *float64 `json:"high"`
	Low      *float64 `json:"low"`
	Close    *float64 `json:"close"`
}
