package models

import "time"

// CoachEntry is one stored regime reading.
type CoachEntry struct {
	At         time.Time            `json:"at"`
	AsOfMarket string               `json:"asof_market"`
	Bucket     string               `json:"bucket"`
	Session    string               `json:"session"`
	Regime     RegimeClassification `json:"regime"`
	Breadth    *Breadth             `json:"breadth,omitempty"`
}

type CoachLatest struct {
	AsOfMarket string   `json:"asof_market"`
	AsOfLocal  string   `json:"asof_local"`
	Session    string   `json:"session"`
	Regime     string   `json:"regime"`
	Tone       Tone     `json:"tone"`
	Text       []string `json:"text"`
}

type CoachHistory struct {
	OK    bool         `json:"ok"`
	Hours int          `json:"hours"`
	Items []CoachEntry `json:"items"`
}
