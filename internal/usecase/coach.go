package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"MarketCoach/internal/domain/models"
	"MarketCoach/internal/services/session"
	"MarketCoach/pkg/cache"
	applogger "MarketCoach/pkg/logger"
	"MarketCoach/pkg/util"
)

const (
	DefaultCoachHours = 24
	MaxCoachHours     = 72
)

var coachPlaceholder = []string{
	"MCM Coach is on. No regime has been computed yet.",
	"Load the dashboard or call /api/regime; the coach summarizes the latest stored regime without spending API credits.",
}

// CoachUseCase keeps the most recent regime reading and a 72h history of one
// entry per cadence bucket.
type CoachUseCase struct {
	cache cache.Service
	clock *session.Clock
	log   *applogger.Logger
}

func NewCoachUseCase(c cache.Service, clock *session.Clock, l *applogger.Logger) *CoachUseCase {
	if l == nil {
		l = applogger.NewNop()
	}
	return &CoachUseCase{cache: c, clock: clock, log: l}
}

// Record stores report as the latest reading and appends it to the history.
// A second reading in the same bucket replaces the first.
func (uc *CoachUseCase) Record(ctx context.Context, report *models.RegimeReport) error {
	now := uc.clock.Time()
	entry := models.CoachEntry{
		At:         now,
		AsOfMarket: report.Meta.AsOfMarket,
		Bucket:     report.Meta.Bucket,
		Session:    sessionName(report.Meta.InRTH),
		Regime:     report.Regime,
		Breadth:    report.Breadth,
	}

	if err := uc.cache.Set(ctx, coachLatestKey, entry, coachLatestTTL); err != nil {
		return fmt.Errorf("store coach latest: %w", err)
	}

	hist, err := uc.history(ctx)
	if err != nil {
		return err
	}
	if n := len(hist); n > 0 && hist[n-1].Bucket == entry.Bucket {
		hist[n-1] = entry
	} else {
		hist = append(hist, entry)
	}
	hist = since(hist, now.Add(-coachHistoryMax))

	if err := uc.cache.Set(ctx, coachHistoryKey, hist, coachHistoryMax); err != nil {
		return fmt.Errorf("store coach history: %w", err)
	}
	return nil
}

// Latest renders the stored reading, or the placeholder when none exists.
func (uc *CoachUseCase) Latest(ctx context.Context) (*models.CoachLatest, error) {
	var e models.CoachEntry
	err := uc.cache.Get(ctx, coachLatestKey, &e)
	if errors.Is(err, cache.ErrCacheMiss) {
		tick := uc.clock.Tick()
		return &models.CoachLatest{
			AsOfMarket: tick.Now.MarketStamp(),
			AsOfLocal:  tick.Local,
			Session:    session.Name(tick.Now),
			Regime:     "—",
			Tone:       models.ToneNeutral,
			Text:       coachPlaceholder,
		}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load coach latest: %w", err)
	}

	text := []string{fmt.Sprintf("%s: %s", e.Regime.Label, e.Regime.Sub)}
	if e.Regime.Meta != "" {
		text = append(text, e.Regime.Meta)
	}
	text = append(text, sessionHint(e.Session))

	return &models.CoachLatest{
		AsOfMarket: e.AsOfMarket,
		AsOfLocal:  uc.clock.FormatLocalAt(e.At),
		Session:    e.Session,
		Regime:     e.Regime.Label,
		Tone:       e.Regime.ToneClass,
		Text:       text,
	}, nil
}

// History returns readings from the last hours hours, clamped to 1..72.
func (uc *CoachUseCase) History(ctx context.Context, hours int) (*models.CoachHistory, error) {
	if hours == 0 {
		hours = DefaultCoachHours
	}
	hours = util.ClampInt(hours, 1, MaxCoachHours)

	hist, err := uc.history(ctx)
	if err != nil {
		return nil, err
	}
	items := since(hist, uc.clock.Time().Add(-time.Duration(hours)*time.Hour))
	if items == nil {
		items = []models.CoachEntry{}
	}
	return &models.CoachHistory{OK: true, Hours: hours, Items: items}, nil
}

func (uc *CoachUseCase) history(ctx context.Context) ([]models.CoachEntry, error) {
	var hist []models.CoachEntry
	err := uc.cache.Get(ctx, coachHistoryKey, &hist)
	if err != nil && !errors.Is(err, cache.ErrCacheMiss) {
		return nil, fmt.Errorf("load coach history: %w", err)
	}
	return hist, nil
}

func since(hist []models.CoachEntry, cutoff time.Time) []models.CoachEntry {
	out := hist[:0:0]
	for _, e := range hist {
		if !e.At.Before(cutoff) {
			out = append(out, e)
		}
	}
	return out
}

func sessionName(inRTH bool) string {
	if inRTH {
		return "RTH"
	}
	return "ETH"
}

func sessionHint(s string) string {
	if s == "RTH" {
		return "Regular session: snapshots refresh every 5 minutes."
	}
	return "Extended hours: snapshots refresh hourly and ETH figures mirror the regular session."
}
