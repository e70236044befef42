package models

import (
	"encoding/json"
	"math"
)

// Float returns a pointer to v, or nil when v is not a finite number.
func Float(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// Finite reports whether p holds a usable number.
func Finite(p *float64) bool {
	return p != nil && !math.IsNaN(*p) && !math.IsInf(*p, 0)
}

// Reversal says whether price reclaimed baseline*(1+threshold) intraday and
// still trades above baseline.
type Reversal struct {
	Threshold float64  `json:"threshold"`
	NeedHigh  *float64 `json:"needHigh"`
	Confirmed bool     `json:"confirmed"`
	Detail    string   `json:"detail"`
}

type SessionStats struct {
	High     *float64 `json:"high"`
	PerfHigh *float64 `json:"perfHigh"`
	Reversal Reversal `json:"reversal"`
}

// ExtendedSessionStats carries ETH figures. Available reports whether an
// extended-hours view exists at all; its numbers currently mirror RTH.
type ExtendedSessionStats struct {
	Available bool     `json:"available"`
	High      *float64 `json:"high"`
	PerfHigh  *float64 `json:"perfHigh"`
	Reversal  Reversal `json:"reversal"`
}

// Snapshot is the per-symbol view cached for one cadence bucket.
type Snapshot struct {
	Symbol        string               `json:"symbol"`
	Baseline      *float64             `json:"baseline"`
	Last          *float64             `json:"last"`
	PreviousClose *float64             `json:"previous_close"`
	RTH           SessionStats         `json:"rth"`
	ETH           ExtendedSessionStats `json:"eth"`
	AsOfMarket    *string              `json:"asof_market"`
	AsOfLocal     string               `json:"asof_local"`
}

// SymbolError occupies a symbol's slot when its upstream fetch failed.
type SymbolError struct {
	Symbol string `json:"symbol"`
	Error  string `json:"error"`
}

// SymbolResult is exactly one of Snapshot or Err.
type SymbolResult struct {
	Snapshot *Snapshot
	Err      *SymbolError
}

func (r SymbolResult) MarshalJSON() ([]byte, error) {
	if r.Err != nil {
		return json.Marshal(r.Err)
	}
	return json.Marshal(r.Snapshot)
}

func (r *SymbolResult) UnmarshalJSON(b []byte) error {
	var probe struct {
		Error *string `json:"error"`
	}
	if err := json.Unmarshal(b, &probe); err != nil {
		return err
	}
	if probe.Error != nil {
		r.Err = &SymbolError{}
		return json.Unmarshal(b, r.Err)
	}
	r.Snapshot = &Snapshot{}
	return json.Unmarshal(b, r.Snapshot)
}

type SnapshotMeta struct {
	AsOfMarket string `json:"asof_market"`
	AsOfLocal  string `json:"asof_local"`
	InRTH      bool   `json:"in_rth"`
	CadenceRTH string `json:"cadence_rth"`
	CadenceETH string `json:"cadence_eth"`
	Bucket     string `json:"bucket"`
	Note       string `json:"note"`
}

// SnapshotResponse serialises as {SYMBOL: Snapshot|{symbol,error}, ..., _meta: {...}}.
type SnapshotResponse struct {
	Symbols []string
	Results map[string]SymbolResult
	Meta    SnapshotMeta
}

func (r SnapshotResponse) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(r.Results)+1)
	for sym, res := range r.Results {
		out[sym] = res
	}
	out["_meta"] = r.Meta
	return json.Marshal(out)
}

func (r *SnapshotResponse) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	r.Results = make(map[string]SymbolResult, len(raw))
	r.Symbols = r.Symbols[:0]
	for k, v := range raw {
		if k == "_meta" {
			if err := json.Unmarshal(v, &r.Meta); err != nil {
				return err
			}
			continue
		}
		var res SymbolResult
		if err := json.Unmarshal(v, &res); err != nil {
			return err
		}
		r.Results[k] = res
		r.Symbols = append(r.Symbols, k)
	}
	return nil
}

// Snapshots returns the successful snapshots in request order.
func (r SnapshotResponse) Snapshots() []Snapshot {
	out := make([]Snapshot, 0, len(r.Results))
	for _, sym := range r.Symbols {
		if res, ok := r.Results[sym]; ok && res.Snapshot != nil {
			out = append(out, *res.Snapshot)
		}
	}
	return out
}
