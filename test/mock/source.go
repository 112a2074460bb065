// Package mock provides test doubles for the offer search system.
// These mocks are designed for integration testing where we need
// configurable behavior (delays, errors, specific responses).
package mock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/skysweep/skysweep/internal/domain"
)

// Source is a configurable mock implementation of domain.OfferSource.
// It supports configurable delays, errors, and per-leg responses for testing
// scenarios including timeouts and partial sweep failures.
type Source struct {
	name      string
	offers    []domain.RawOffer
	perLeg    map[string][]domain.RawOffer
	err       error
	failLegs  map[string]error
	delay     time.Duration
	callCount int
	legs      []domain.SearchLeg
	mu        sync.Mutex
}

// NewSource creates a new mock source with the given name.
// The source is configured using the builder pattern methods.
func NewSource(name string) *Source {
	return &Source{
		name:     name,
		perLeg:   make(map[string][]domain.RawOffer),
		failLegs: make(map[string]error),
	}
}

// WithOffers configures the source to return the given raw offers for every leg.
func (s *Source) WithOffers(offers []domain.RawOffer) *Source {
	s.offers = offers
	return s
}

// WithLegOffers configures the source to return the given raw offers for one
// specific leg, overriding WithOffers for that leg.
func (s *Source) WithLegOffers(leg domain.SearchLeg, offers []domain.RawOffer) *Source {
	s.perLeg[leg.String()] = offers
	return s
}

// WithError configures the source to fail every leg with the given error.
func (s *Source) WithError(err error) *Source {
	s.err = err
	return s
}

// WithLegError configures the source to fail one specific leg.
func (s *Source) WithLegError(leg domain.SearchLeg, err error) *Source {
	s.failLegs[leg.String()] = err
	return s
}

// WithDelay configures the source to wait the given duration before responding.
// This is useful for testing timeout behavior.
func (s *Source) WithDelay(d time.Duration) *Source {
	s.delay = d
	return s
}

// Name returns the source's unique identifier.
func (s *Source) Name() string {
	return s.name
}

// Search implements domain.OfferSource.Search.
// It respects context cancellation, applies the configured delay, and returns
// the configured offers or error for the leg.
func (s *Source) Search(ctx context.Context, leg domain.SearchLeg) ([]domain.RawOffer, error) {
	s.mu.Lock()
	s.callCount++
	s.legs = append(s.legs, leg)
	s.mu.Unlock()

	if s.delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(s.delay):
		}
	}

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	if err, ok := s.failLegs[leg.String()]; ok {
		return nil, fmt.Errorf("leg %s: %w", leg.String(), err)
	}
	if s.err != nil {
		return nil, s.err
	}

	if offers, ok := s.perLeg[leg.String()]; ok {
		return offers, nil
	}
	return s.offers, nil
}

// CallCount returns the number of times Search was called.
func (s *Source) CallCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.callCount
}

// Legs returns every leg Search was called with, in call order.
func (s *Source) Legs() []domain.SearchLeg {
	s.mu.Lock()
	defer s.mu.Unlock()
	legs := make([]domain.SearchLeg, len(s.legs))
	copy(legs, s.legs)
	return legs
}

// Reset clears the recorded calls.
func (s *Source) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.callCount = 0
	s.legs = nil
}

// Ensure Source implements domain.OfferSource at compile time.
var _ domain.OfferSource = (*Source)(nil)
