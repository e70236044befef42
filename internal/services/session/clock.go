// Package session derives the market wall clock, the trading session and the
// cadence bucket that keys every cached snapshot.
package session

import (
	"fmt"
	"time"
	_ "time/tzdata"
)

const (
	rthOpenMinute  = 9*60 + 30
	rthCloseMinute = 16 * 60

	CadenceRTH = 5 * 60
	CadenceETH = 60 * 60

	// minSnapshotTTL keeps a bucket's entry alive past the end of the bucket.
	minSnapshotTTL = 330
)

// WallClock is a broken-down time in the market time zone.
type WallClock struct {
	Year   int
	Month  int
	Day    int
	Hour   int
	Minute int
	Second int
}

// NowInMarketTZ converts now to the market zone.
func NowInMarketTZ(now time.Time, loc *time.Location) WallClock {
	t := now.In(loc)
	return WallClock{
		Year:   t.Year(),
		Month:  int(t.Month()),
		Day:    t.Day(),
		Hour:   t.Hour(),
		Minute: t.Minute(),
		Second: t.Second(),
	}
}

// IsRegularTradingHours reports 09:30 <= wc < 16:00.
func IsRegularTradingHours(wc WallClock) bool {
	m := wc.Hour*60 + wc.Minute
	return m >= rthOpenMinute && m < rthCloseMinute
}

// CadenceSeconds is the refresh period for the session wc falls in.
func CadenceSeconds(wc WallClock) int {
	if IsRegularTradingHours(wc) {
		return CadenceRTH
	}
	return CadenceETH
}

// BucketFloor truncates the time of day down to a multiple of cadenceSec.
// The date is left untouched.
func BucketFloor(wc WallClock, cadenceSec int) WallClock {
	if cadenceSec <= 0 {
		return wc
	}
	total := wc.Hour*3600 + wc.Minute*60 + wc.Second
	floored := total / cadenceSec * cadenceSec
	wc.Hour = floored / 3600
	wc.Minute = floored % 3600 / 60
	wc.Second = floored % 60
	return wc
}

// BucketKey serialises wc as YYYY-MM-DD:HH:MM.
func BucketKey(wc WallClock) string {
	return fmt.Sprintf("%04d-%02d-%02d:%02d:%02d", wc.Year, wc.Month, wc.Day, wc.Hour, wc.Minute)
}

// SnapshotTTL is max(cadence+30s, 330s).
func SnapshotTTL(cadenceSec int) time.Duration {
	ttl := cadenceSec + 30
	if ttl < minSnapshotTTL {
		ttl = minSnapshotTTL
	}
	return time.Duration(ttl) * time.Second
}

// MarketStamp renders wc as "YYYY-MM-DD HH:MM ET".
func (wc WallClock) MarketStamp() string {
	return fmt.Sprintf("%04d-%02d-%02d %02d:%02d ET", wc.Year, wc.Month, wc.Day, wc.Hour, wc.Minute)
}

// Name returns "RTH" or "ETH".
func Name(wc WallClock) string {
	if IsRegularTradingHours(wc) {
		return "RTH"
	}
	return "ETH"
}

// CadenceLabel renders a cadence in seconds as "5m", "1h", ...
func CadenceLabel(sec int) string {
	d := time.Duration(sec) * time.Second
	if d%time.Hour == 0 {
		return fmt.Sprintf("%dh", int(d/time.Hour))
	}
	if d%time.Minute == 0 {
		return fmt.Sprintf("%dm", int(d/time.Minute))
	}
	return fmt.Sprintf("%ds", sec)
}

// Clock binds the market and display zones to a time source.
type Clock struct {
	market *time.Location
	local  *time.Location
	now    func() time.Time
}

// NewClock loads both zones by IANA name.
func NewClock(marketTZ, localTZ string) (*Clock, error) {
	market, err := time.LoadLocation(marketTZ)
	if err != nil {
		return nil, fmt.Errorf("market tz %q: %w", marketTZ, err)
	}
	local, err := time.LoadLocation(localTZ)
	if err != nil {
		return nil, fmt.Errorf("local tz %q: %w", localTZ, err)
	}
	return &Clock{market: market, local: local, now: time.Now}, nil
}

// WithNow returns a copy of c reading time from fn.
func (c *Clock) WithNow(fn func() time.Time) *Clock {
	cp := *c
	cp.now = fn
	return &cp
}

// Time is the raw current instant.
func (c *Clock) Time() time.Time { return c.now() }

// Market returns the market zone.
func (c *Clock) Market() *time.Location { return c.market }

// Now is the current market wall clock.
func (c *Clock) Now() WallClock { return NowInMarketTZ(c.now(), c.market) }

// FormatLocal renders the current instant in the display zone, e.g. "Mar 05, 2:07 PM".
func (c *Clock) FormatLocal() string { return c.FormatLocalAt(c.now()) }

// FormatLocalAt renders t in the display zone.
func (c *Clock) FormatLocalAt(t time.Time) string {
	return t.In(c.local).Format("Jan 02, 3:04 PM")
}

// Tick bundles everything a request derives from one reading of the clock.
type Tick struct {
	Now     WallClock
	InRTH   bool
	Cadence int
	Bucket  string
	Local   string
}

// Tick reads the clock once and derives session, cadence and bucket from it.
func (c *Clock) Tick() Tick {
	t := c.now()
	wc := NowInMarketTZ(t, c.market)
	cadence := CadenceSeconds(wc)
	return Tick{
		Now:     wc,
		InRTH:   IsRegularTradingHours(wc),
		Cadence: cadence,
		Bucket:  BucketKey(BucketFloor(wc, cadence)),
		Local:   c.FormatLocalAt(t),
	}
}
