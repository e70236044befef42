package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type quote struct {
	Symbol string   `json:"symbol"`
	Last   *float64 `json:"last"`
}

func TestMemoryCacheRoundTripsStructs(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	last := 101.25
	require.NoError(t, mc.Set(ctx, "snap:MSFT:2024-01-02:10:05", quote{Symbol: "MSFT", Last: &last}, time.Minute))

	var got quote
	require.NoError(t, mc.Get(ctx, "snap:MSFT:2024-01-02:10:05", &got))
	assert.Equal(t, "MSFT", got.Symbol)
	require.NotNil(t, got.Last)
	assert.InDelta(t, 101.25, *got.Last, 1e-9)
}

func TestMemoryCacheMissIsSentinel(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()

	var got quote
	assert.ErrorIs(t, mc.Get(context.Background(), "absent", &got), ErrCacheMiss)
}

func TestMemoryCacheDecodeMismatch(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()
	require.NoError(t, mc.Set(ctx, "events", map[string]string{"not": "array"}, 0))

	var got []quote
	err := mc.Get(ctx, "events", &got)
	assert.ErrorIs(t, err, ErrDecode)
	assert.NotErrorIs(t, err, ErrCacheMiss)
}

func TestMemoryCacheStrings(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	require.NoError(t, mc.Set(ctx, "baseline:KO", "61.5", 0))

	var s string
	require.NoError(t, mc.Get(ctx, "baseline:KO", &s))
	assert.Equal(t, "61.5", s)

	var f float64
	require.NoError(t, mc.Get(ctx, "baseline:KO", &f))
	assert.InDelta(t, 61.5, f, 1e-9)
}

func TestMemoryCacheExpiry(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	require.NoError(t, mc.Set(ctx, "short", 1, 10*time.Millisecond))
	require.NoError(t, mc.Set(ctx, "forever", 2, 0))
	time.Sleep(30 * time.Millisecond)

	var v int
	assert.ErrorIs(t, mc.Get(ctx, "short", &v), ErrCacheMiss)
	require.NoError(t, mc.Get(ctx, "forever", &v))
	assert.Equal(t, 2, v)

	ok, err := mc.Exists(ctx, "short")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryCacheEvictsLeastRecentlyUsed(t *testing.T) {
	mc := NewMemoryCache(WithMemoryMaxSize(2))
	defer mc.Close()
	ctx := context.Background()

	require.NoError(t, mc.Set(ctx, "a", 1, 0))
	time.Sleep(2 * time.Millisecond)
	require.NoError(t, mc.Set(ctx, "b", 2, 0))
	time.Sleep(2 * time.Millisecond)

	var v int
	require.NoError(t, mc.Get(ctx, "a", &v)) // a is now fresher than b
	time.Sleep(2 * time.Millisecond)
	require.NoError(t, mc.Set(ctx, "c", 3, 0))

	assert.Equal(t, 2, mc.Len())
	assert.ErrorIs(t, mc.Get(ctx, "b", &v), ErrCacheMiss)
	require.NoError(t, mc.Get(ctx, "a", &v))
	require.NoError(t, mc.Get(ctx, "c", &v))
}

func TestMemoryCacheOverwriteDoesNotEvict(t *testing.T) {
	mc := NewMemoryCache(WithMemoryMaxSize(2))
	defer mc.Close()
	ctx := context.Background()

	require.NoError(t, mc.Set(ctx, "a", 1, 0))
	require.NoError(t, mc.Set(ctx, "b", 2, 0))
	require.NoError(t, mc.Set(ctx, "b", 3, 0))

	assert.Equal(t, 2, mc.Len())
}

func TestMGetTyped(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	require.NoError(t, mc.Set(ctx, "q1", quote{Symbol: "AAPL"}, 0))
	require.NoError(t, mc.Set(ctx, "q2", quote{Symbol: "IBM"}, 0))

	got, err := MGetTyped[quote](ctx, mc, "q1", "q2", "q3")
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, "IBM", got["q2"].Symbol)
}

func TestDeleteAndKeys(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	key := GenerateKeyWithParams("snap", "MSFT", "2024-01-02:10:05")
	assert.Equal(t, "snap:MSFT:2024-01-02:10:05", key)
	assert.Equal(t, "baseline:MSFT", GenerateKey("baseline", "MSFT"))

	require.NoError(t, mc.Set(ctx, key, 1, 0))
	require.NoError(t, mc.Delete(ctx, key))
	ok, err := mc.Exists(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLayeredL1Lifetime(t *testing.T) {
	lc := &LayeredCache{l1TTL: time.Minute}
	assert.Equal(t, time.Minute, lc.l1(0))
	assert.Equal(t, time.Minute, lc.l1(330*time.Second))
	assert.Equal(t, 30*time.Second, lc.l1(30*time.Second))

	lc.l1TTL = 0
	assert.Equal(t, time.Duration(0), lc.l1(0))
}
