package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// LimiterStore hands out one token-bucket limiter per key. The market data
// repositories key it by provider so that every client of a provider shares
// the same request budget.
type LimiterStore struct {
	limiters map[string]*rate.Limiter
	mu       sync.Mutex
	r        rate.Limit
	burst    int
}

func NewLimiterStore(r rate.Limit, burst int) *LimiterStore {
	return &LimiterStore{
		limiters: make(map[string]*rate.Limiter),
		r:        r,
		burst:    burst,
	}
}

// PerMinute converts a requests-per-minute budget into a rate.Limit.
// Non-positive budgets mean unlimited.
func PerMinute(requests int) rate.Limit {
	if requests <= 0 {
		return rate.Inf
	}
	return rate.Every(time.Minute / time.Duration(requests))
}

func (s *LimiterStore) GetLimiter(key string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	if limiter, exists := s.limiters[key]; exists {
		return limiter
	}
	limiter := rate.NewLimiter(s.r, s.burst)
	s.limiters[key] = limiter
	return limiter
}

// Configure installs a limiter for key with its own rate, replacing the
// default one GetLimiter would create.
func (s *LimiterStore) Configure(key string, r rate.Limit, burst int) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	limiter := rate.NewLimiter(r, burst)
	s.limiters[key] = limiter
	return limiter
}
