package models

type BaselineResult struct {
	OK       bool     `json:"ok"`
	Baseline *float64 `json:"baseline,omitempty"`
	Error    string   `json:"error,omitempty"`
}

type BaselineReport struct {
	OK      bool                      `json:"ok"`
	Results map[string]BaselineResult `json:"results"`
}
