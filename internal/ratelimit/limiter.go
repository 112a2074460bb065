// Package ratelimit throttles calls to external offer sources so a wide
// date-range sweep cannot exhaust a provider's request quota.
package ratelimit

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// Config holds the per-source rate limit settings.
type Config struct {
	// RequestsPerSecond is the sustained request rate allowed per source.
	RequestsPerSecond float64

	// BurstSize is how many requests may fire back-to-back before the
	// sustained rate applies.
	BurstSize int
}

// DefaultConfig matches the Amadeus test-tier allowance with headroom.
func DefaultConfig() Config {
	return Config{
		RequestsPerSecond: 10,
		BurstSize:         20,
	}
}

// SourceLimiter hands out one token-bucket limiter per named source,
// creating them lazily with the configured defaults.
type SourceLimiter struct {
	limiters map[string]*rate.Limiter
	mu       sync.RWMutex
	defaults Config
}

// NewSourceLimiter creates a SourceLimiter with the given defaults.
func NewSourceLimiter(cfg Config) *SourceLimiter {
	return &SourceLimiter{
		limiters: make(map[string]*rate.Limiter),
		defaults: cfg,
	}
}

// Wait blocks until the named source may issue another request, or until the
// context is cancelled.
func (s *SourceLimiter) Wait(ctx context.Context, source string) error {
	return s.limiter(source).Wait(ctx)
}

// Allow reports whether the named source may issue a request right now
// without blocking.
func (s *SourceLimiter) Allow(source string) bool {
	return s.limiter(source).Allow()
}

// SetSourceLimit overrides the limit for one source.
func (s *SourceLimiter) SetSourceLimit(source string, rps float64, burst int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.limiters[source] = rate.NewLimiter(rate.Limit(rps), burst)
}

func (s *SourceLimiter) limiter(source string) *rate.Limiter {
	s.mu.RLock()
	limiter, exists := s.limiters[source]
	s.mu.RUnlock()
	if exists {
		return limiter
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if limiter, exists = s.limiters[source]; exists {
		return limiter
	}

	limiter = rate.NewLimiter(rate.Limit(s.defaults.RequestsPerSecond), s.defaults.BurstSize)
	s.limiters[source] = limiter
	return limiter
}
