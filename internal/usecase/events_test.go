package usecase

import (
	"context"
	"testing"

	"MarketCoach/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventsEmpty(t *testing.T) {
	f := newFixture(t)
	uc := NewEventsUseCase(f.cache, nil)

	idx, err := uc.Index(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, idx)
	assert.Empty(t, idx)

	active, err := uc.Active(context.Background())
	require.NoError(t, err)
	assert.Nil(t, active)
}

func TestEventsStored(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ev := models.Event{EventID: "evt-1", Title: "CPI shock", EventType: "macro", DaysRecorded: 3, TrackedSymbols: []string{"JPM", "GS"}}
	require.NoError(t, f.cache.Set(ctx, eventsIndexKey, []models.Event{ev}, 0))
	require.NoError(t, f.cache.Set(ctx, eventsActiveKey, ev, 0))

	uc := NewEventsUseCase(f.cache, nil)
	idx, err := uc.Index(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.Event{ev}, idx)

	active, err := uc.Active(ctx)
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, "CPI shock", active.Title)
}

func TestEventsUnreadableTreatedAsEmpty(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.cache.Set(ctx, eventsIndexKey, map[string]string{"not": "array"}, 0))
	require.NoError(t, f.cache.Set(ctx, eventsActiveKey, []string{"nope"}, 0))

	uc := NewEventsUseCase(f.cache, nil)
	idx, err := uc.Index(ctx)
	require.NoError(t, err)
	assert.NotNil(t, idx)
	assert.Empty(t, idx)

	active, err := uc.Active(ctx)
	require.NoError(t, err)
	assert.Nil(t, active)
}
