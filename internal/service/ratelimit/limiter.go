package ratelimit

import (
	"sync"
	"time"
)

// sweepEvery is how often idle buckets are pruned.
const sweepEvery = 5 * time.Minute

type bucket struct {
	tokens     float64
	capacity   float64
	refillRate float64 // tokens per second
	last       time.Time
}

// full reports whether the bucket has refilled to capacity by now. A full
// bucket is indistinguishable from a fresh one and can be dropped.
func (b *bucket) full(now time.Time) bool {
	if b.refillRate <= 0 {
		return false
	}
	return b.tokens+now.Sub(b.last).Seconds()*b.refillRate >= b.capacity
}

// Limiter keeps one token bucket per key. It throttles API clients by remote
// address and the upstream credit budget by API key.
type Limiter struct {
	mu        sync.Mutex
	m         map[string]*bucket
	now       func() time.Time
	lastSweep time.Time
}

func New() *Limiter { return &Limiter{m: make(map[string]*bucket), now: time.Now} }

// WithClock replaces the time source; used by tests.
func (l *Limiter) WithClock(now func() time.Time) *Limiter {
	l.now = now
	return l
}

// Allow returns true if one token can be consumed for key.
func (l *Limiter) Allow(key string, capacity, refillPerSec float64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	b := l.refill(key, capacity, refillPerSec)
	if b.tokens >= 1 {
		b.tokens--
		return true
	}
	return false
}

// Remaining reports the whole tokens left for key without consuming any.
func (l *Limiter) Remaining(key string, capacity, refillPerSec float64) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return int(l.refill(key, capacity, refillPerSec).tokens)
}

// Len reports how many buckets are tracked.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.m)
}

func (l *Limiter) refill(key string, capacity, refillPerSec float64) *bucket {
	now := l.now()
	l.sweep(now)

	b, ok := l.m[key]
	if !ok {
		b = &bucket{tokens: capacity, capacity: capacity, refillRate: refillPerSec, last: now}
		l.m[key] = b
		return b
	}
	if elapsed := now.Sub(b.last).Seconds(); elapsed > 0 {
		b.tokens += elapsed * b.refillRate
		if b.tokens > b.capacity {
			b.tokens = b.capacity
		}
		b.last = now
	}
	return b
}

// sweep drops buckets that have refilled completely. Buckets that never
// refill are kept.
func (l *Limiter) sweep(now time.Time) {
	if l.lastSweep.IsZero() {
		l.lastSweep = now
		return
	}
	if now.Sub(l.lastSweep) < sweepEvery {
		return
	}
	l.lastSweep = now
	for k, b := range l.m {
		if b.full(now) {
			delete(l.m, k)
		}
	}
}
