package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAllowDrainsAndRefills(t *testing.T) {
	now := time.Date(2025, 3, 3, 15, 0, 0, 0, time.UTC)
	l := New().WithClock(func() time.Time { return now })

	for i := 0; i < 3; i++ {
		assert.True(t, l.Allow("1.2.3.4", 3, 1), "token %d", i)
	}
	assert.False(t, l.Allow("1.2.3.4", 3, 1))
	assert.True(t, l.Allow("5.6.7.8", 3, 1), "keys are independent")

	now = now.Add(1500 * time.Millisecond)
	assert.True(t, l.Allow("1.2.3.4", 3, 1))
	assert.False(t, l.Allow("1.2.3.4", 3, 1))

	now = now.Add(time.Hour)
	assert.Equal(t, 3, l.Remaining("1.2.3.4", 3, 1), "refill capped at capacity")
}

func TestRemainingDoesNotConsume(t *testing.T) {
	l := New()
	assert.Equal(t, 5, l.Remaining("k", 5, 0))
	assert.Equal(t, 5, l.Remaining("k", 5, 0))
	assert.True(t, l.Allow("k", 5, 0))
	assert.Equal(t, 4, l.Remaining("k", 5, 0))
}

func TestIdleBucketsArePruned(t *testing.T) {
	now := time.Date(2025, 3, 3, 15, 0, 0, 0, time.UTC)
	l := New().WithClock(func() time.Time { return now })

	assert.True(t, l.Allow("idle", 2, 1))
	assert.True(t, l.Allow("frozen", 2, 0))
	for i := 0; i < 2; i++ {
		assert.True(t, l.Allow("busy", 2, 0.001))
	}
	assert.Equal(t, 3, l.Len())

	now = now.Add(sweepEvery)
	assert.True(t, l.Allow("new", 2, 1))

	assert.Equal(t, 3, l.Len(), "only the refilled bucket is dropped")
	assert.Equal(t, 1, l.Remaining("frozen", 2, 0), "non-refilling buckets keep their state")
	assert.False(t, l.Allow("busy", 2, 0.001), "partially refilled buckets keep their state")
}
