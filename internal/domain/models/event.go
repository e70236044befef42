package models

// Event is one entry of the recorded-event library.
type Event struct {
	EventID         string   `json:"event_id"`
	Title           string   `json:"title"`
	EventType       string   `json:"event_type"`
	RegimeShort     string   `json:"regime_short"`
	DaysRecorded    int      `json:"days_recorded"`
	TrackedSymbols  []string `json:"tracked_symbols"`
	StartMarketTime string   `json:"start_market_time"`
}
