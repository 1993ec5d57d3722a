// Package ratelimit throttles repeated attempts per key with one token bucket per key.
package ratelimit

import (
	"sync"
	"time"

	"fooddelivery/internal/core/ports"

	"golang.org/x/time/rate"
)

const (
	DefaultBurst    = 5
	DefaultInterval = 30 * time.Second
)

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// KeyedLimiter hands out one bucket of Burst attempts per key, refilled by one
// token every Interval. Buckets idle for longer than the prune horizon are dropped.
type KeyedLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	limit   rate.Limit
	burst   int
	clock   ports.Clock
}

var _ ports.AttemptLimiter = (*KeyedLimiter)(nil)

func NewKeyedLimiter(burst int, interval time.Duration, clock ports.Clock) *KeyedLimiter {
	if burst <= 0 {
		burst = DefaultBurst
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	if clock == nil {
		clock = ports.SystemClock{}
	}
	return &KeyedLimiter{
		buckets: make(map[string]*bucket),
		limit:   rate.Every(interval),
		burst:   burst,
		clock:   clock,
	}
}

func (l *KeyedLimiter) Allow(key string) bool {
	now := l.clock.Now()

	l.mu.Lock()
	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.buckets[key] = b
	}
	b.lastSeen = now
	l.mu.Unlock()

	return b.limiter.AllowN(now, 1)
}

// Prune drops buckets not used within idle and returns how many were removed. A
// dropped bucket starts full again on the next attempt, so idle should be at least
// Burst × Interval.
func (l *KeyedLimiter) Prune(idle time.Duration) int {
	cutoff := l.clock.Now().Add(-idle)

	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for key, b := range l.buckets {
		if b.lastSeen.Before(cutoff) {
			delete(l.buckets, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of tracked keys.
func (l *KeyedLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}
