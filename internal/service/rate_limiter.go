package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter decide si un usuario puede dar otro like.
type RateLimiter interface {
	Allow(ctx context.Context, userID string) bool
}

type memoryRateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*limiterEntry
	limit    rate.Limit
	burst    int
	idleTTL  time.Duration
	now      func() time.Time
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewMemoryRateLimiter permite max eventos por window y clave, con rafaga = max.
// Se usa cuando no hay Redis configurado; no se comparte entre replicas.
func NewMemoryRateLimiter(window time.Duration, max int) RateLimiter {
	if window <= 0 {
		window = time.Minute
	}
	if max <= 0 {
		max = 1
	}
	return &memoryRateLimiter{
		limiters: make(map[string]*limiterEntry),
		limit:    rate.Every(window / time.Duration(max)),
		burst:    max,
		idleTTL:  2 * window,
		now:      time.Now,
	}
}

func (l *memoryRateLimiter) Allow(_ context.Context, userID string) bool {
	normalizedKey := strings.ToLower(strings.TrimSpace(userID))
	if normalizedKey == "" {
		return false
	}
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.limiters[normalizedKey]
	if !ok {
		entry = &limiterEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.limiters[normalizedKey] = entry
		if len(l.limiters)%256 == 0 {
			l.evictIdle(now)
		}
	}
	entry.lastSeen = now
	return entry.limiter.AllowN(now, 1)
}

func (l *memoryRateLimiter) evictIdle(now time.Time) {
	for k, e := range l.limiters {
		if now.Sub(e.lastSeen) > l.idleTTL {
			delete(l.limiters, k)
		}
	}
}
