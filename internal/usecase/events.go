package usecase

import (
	"context"
	"errors"
	"fmt"

	"MarketCoach/internal/domain/models"
	"MarketCoach/pkg/cache"
	applogger "MarketCoach/pkg/logger"
)

// EventsUseCase reads the recorded-event library. It never writes; events
// are curated by an external recorder.
type EventsUseCase struct {
	cache cache.Service
	log   *applogger.Logger
}

func NewEventsUseCase(c cache.Service, l *applogger.Logger) *EventsUseCase {
	if l == nil {
		l = applogger.NewNop()
	}
	return &EventsUseCase{cache: c, log: l}
}

// Index returns the library. A missing or unreadable index is empty.
func (uc *EventsUseCase) Index(ctx context.Context) ([]models.Event, error) {
	var idx []models.Event
	err := uc.cache.Get(ctx, eventsIndexKey, &idx)
	switch {
	case errors.Is(err, cache.ErrCacheMiss):
		return []models.Event{}, nil
	case errors.Is(err, cache.ErrDecode):
		uc.log.Warn("events index is not a list", applogger.Error(err))
		return []models.Event{}, nil
	case err != nil:
		return nil, fmt.Errorf("load events index: %w", err)
	}
	if idx == nil {
		return []models.Event{}, nil
	}
	return idx, nil
}

// Active returns the event currently being recorded, nil when there is none
// or the stored record is unreadable.
func (uc *EventsUseCase) Active(ctx context.Context) (*models.Event, error) {
	var ev *models.Event
	err := uc.cache.Get(ctx, eventsActiveKey, &ev)
	switch {
	case errors.Is(err, cache.ErrCacheMiss):
		return nil, nil
	case errors.Is(err, cache.ErrDecode):
		uc.log.Warn("active event is unreadable", applogger.Error(err))
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("load active event: %w", err)
	}
	return ev, nil
}
