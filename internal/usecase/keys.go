package usecase

import (
	"errors"
	"time"

	"MarketCoach/pkg/cache"
)

// ErrNotConfigured is returned when no upstream API key is configured.
var ErrNotConfigured = errors.New("TWELVE_DATA_API_KEY is not configured")

const (
	fundamentalsTTL = 12 * time.Hour
	coachLatestTTL  = 24 * time.Hour
	coachHistoryMax = 72 * time.Hour

	coachLatestKey  = "coach:latest"
	coachHistoryKey = "coach:history"
	eventsIndexKey  = "v2:events:index"
	eventsActiveKey = "v2:events:active"
)

// SnapshotKey is snap:S:B.
func SnapshotKey(symbol, bucket string) string {
	return cache.GenerateKeyWithParams("snap", symbol, bucket)
}

// BaselineKey is baseline:S. Baselines never expire.
func BaselineKey(symbol string) string { return cache.GenerateKey("baseline", symbol) }

func dividendsKey(symbol string) string { return cache.GenerateKeyWithParams("fund", "dividends", symbol) }

func earningsKey(symbol string) string { return cache.GenerateKeyWithParams("fund", "earnings", symbol) }
