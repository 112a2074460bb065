package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/skysweep/skysweep/internal/cache"
	"github.com/skysweep/skysweep/internal/domain"
)

// Default timeout and fan-out values for the sweep.
const (
	DefaultGlobalTimeout = 20 * time.Second
	DefaultLegTimeout    = 8 * time.Second
	DefaultConcurrency   = 4
)

// SearchUseCase defines the interface for the offer sweep.
type SearchUseCase interface {
	// Search resolves both places, sweeps the offer source across the
	// airport and date combinations, and returns normalized, policy-ranked
	// offers. Partial leg failures are tolerated; only a fully failed sweep
	// returns an error.
	Search(ctx context.Context, query domain.SearchQuery) (*SearchResult, error)
}

// SearchResult is the ranked output of one sweep.
type SearchResult struct {
	Offers   []Ranked       `json:"offers"`
	Reason   string         `json:"reason_short"`
	Metadata SearchMetadata `json:"metadata"`
}

// SearchMetadata describes how the sweep went.
type SearchMetadata struct {
	OriginPlace         string   `json:"origin_place"`
	DestinationPlace    string   `json:"destination_place"`
	OriginAirports      []string `json:"origin_airports"`
	DestinationAirports []string `json:"destination_airports"`
	LegsQueried         int      `json:"legs_queried"`
	LegsFailed          []string `json:"legs_failed,omitempty"`
	TotalOffers         int      `json:"total_offers"`
	SearchDurationMs    int64    `json:"search_duration_ms"`
	Source              string   `json:"source"`
	CacheHit            bool     `json:"cache_hit"`
}

// Config contains tuning options for the use case.
type Config struct {
	// GlobalTimeout bounds the whole sweep
	GlobalTimeout time.Duration

	// LegTimeout bounds each individual offer-source call
	LegTimeout time.Duration

	// Concurrency caps how many legs are in flight at once
	Concurrency int
}

// DefaultSearchConfig returns the default sweep configuration.
func DefaultSearchConfig() Config {
	return Config{
		GlobalTimeout: DefaultGlobalTimeout,
		LegTimeout:    DefaultLegTimeout,
		Concurrency:   DefaultConcurrency,
	}
}

// searchUseCase implements SearchUseCase with a bounded scatter-gather over
// the sweep legs.
type searchUseCase struct {
	source   domain.OfferSource
	resolver domain.PlaceResolver
	store    cache.Store
	policy   domain.Policy
	cfg      Config
	logger   zerolog.Logger
}

// NewSearchUseCase creates a SearchUseCase. A nil config selects the
// defaults; a nil store disables caching.
func NewSearchUseCase(
	source domain.OfferSource,
	resolver domain.PlaceResolver,
	store cache.Store,
	policy domain.Policy,
	config *Config,
	logger zerolog.Logger,
) SearchUseCase {
	cfg := DefaultSearchConfig()
	if config != nil {
		if config.GlobalTimeout > 0 {
			cfg.GlobalTimeout = config.GlobalTimeout
		}
		if config.LegTimeout > 0 {
			cfg.LegTimeout = config.LegTimeout
		}
		if config.Concurrency > 0 {
			cfg.Concurrency = config.Concurrency
		}
	}
	if store == nil {
		store = cache.NewNoOp()
	}

	return &searchUseCase{
		source:   source,
		resolver: resolver,
		store:    store,
		policy:   policy,
		cfg:      cfg,
		logger:   logger,
	}
}

// legResult holds the outcome of one sweep leg.
type legResult struct {
	Leg      domain.SearchLeg
	Raw      []domain.RawOffer
	Error    error
	Duration time.Duration
}

// Search implements SearchUseCase.
func (uc *searchUseCase) Search(ctx context.Context, query domain.SearchQuery) (*SearchResult, error) {
	startTime := time.Now()

	query.SetDefaults()
	if err := query.Validate(); err != nil {
		return nil, err
	}

	key := cache.Key(cache.SearchPrefix, query)
	if data, ok := uc.store.Get(ctx, key); ok {
		var cached SearchResult
		if err := json.Unmarshal(data, &cached); err == nil {
			cached.Metadata.CacheHit = true
			cached.Metadata.SearchDurationMs = time.Since(startTime).Milliseconds()
			uc.logger.Debug().Str("key", key).Msg("Search served from cache")
			return &cached, nil
		}
		uc.logger.Warn().Str("key", key).Msg("Discarding undecodable cache entry")
	}

	ctx, cancel := context.WithTimeout(ctx, uc.cfg.GlobalTimeout)
	defer cancel()

	origin, err := uc.resolver.Resolve(ctx, query.Origin)
	if err != nil {
		return nil, fmt.Errorf("resolve origin %q: %w", query.Origin, err)
	}
	destination, err := uc.resolver.Resolve(ctx, query.Destination)
	if err != nil {
		return nil, fmt.Errorf("resolve destination %q: %w", query.Destination, err)
	}

	legs := buildLegs(query, origin, destination)
	if len(legs) == 0 {
		return nil, fmt.Errorf("%w: no airport pairs to sweep", domain.ErrInvalidRequest)
	}

	raw, failedLegs := uc.sweep(ctx, legs)
	if len(failedLegs) == len(legs) {
		return nil, domain.ErrAllSearchesFailed
	}

	offers := Normalize(raw)
	feasible := make([]domain.Offer, 0, len(offers))
	for _, o := range offers {
		if uc.policy.Feasible(o) {
			feasible = append(feasible, o)
		}
	}

	ranked := Rank(feasible, uc.policy)

	result := &SearchResult{
		Offers: ranked,
		Reason: Explain(uc.policy),
		Metadata: SearchMetadata{
			OriginPlace:         origin.Label,
			DestinationPlace:    destination.Label,
			OriginAirports:      origin.AirportCodes(query.MaxOriginAirports),
			DestinationAirports: destination.AirportCodes(query.MaxDestinationAirports),
			LegsQueried:         len(legs),
			LegsFailed:          failedLegs,
			TotalOffers:         len(ranked),
			SearchDurationMs:    time.Since(startTime).Milliseconds(),
			Source:              uc.source.Name(),
		},
	}

	if data, err := json.Marshal(result); err == nil {
		if err := uc.store.Set(ctx, key, data, cache.DefaultSearchTTL); err != nil {
			uc.logger.Warn().Err(err).Msg("Cache write failed")
		}
	}

	uc.logger.Info().
		Int("legs", len(legs)).
		Int("failed", len(failedLegs)).
		Int("offers", len(ranked)).
		Int64("duration_ms", result.Metadata.SearchDurationMs).
		Msg("Search completed")

	return result, nil
}

// sweep runs the legs with bounded concurrency and gathers raw offers.
// It returns everything that succeeded plus the labels of failed legs.
func (uc *searchUseCase) sweep(ctx context.Context, legs []domain.SearchLeg) ([]domain.RawOffer, []string) {
	resultsChan := make(chan legResult, len(legs))
	sem := make(chan struct{}, uc.cfg.Concurrency)

	var wg sync.WaitGroup
	for _, leg := range legs {
		wg.Add(1)
		go func(l domain.SearchLeg) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			uc.queryLeg(ctx, l, resultsChan)
		}(leg)
	}

	go func() {
		wg.Wait()
		close(resultsChan)
	}()

	var raw []domain.RawOffer
	var failedLegs []string

	for result := range resultsChan {
		if result.Error != nil {
			failedLegs = append(failedLegs, result.Leg.String())
			uc.logger.Warn().
				Err(result.Error).
				Str("leg", result.Leg.String()).
				Dur("duration", result.Duration).
				Msg("Sweep leg failed")
			continue
		}
		raw = append(raw, result.Raw...)
	}

	return raw, failedLegs
}

// queryLeg queries the offer source for one leg with timeout and panic
// recovery, so a misbehaving leg cannot take down the sweep.
func (uc *searchUseCase) queryLeg(ctx context.Context, leg domain.SearchLeg, results chan<- legResult) {
	ctx, cancel := context.WithTimeout(ctx, uc.cfg.LegTimeout)
	defer cancel()

	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			results <- legResult{
				Leg:      leg,
				Error:    fmt.Errorf("source panic: %v", r),
				Duration: time.Since(start),
			}
		}
	}()

	raw, err := uc.source.Search(ctx, leg)

	results <- legResult{
		Leg:      leg,
		Raw:      raw,
		Error:    err,
		Duration: time.Since(start),
	}
}

// buildLegs expands the query into the full airport-pair and date grid.
// Pairs where both sides resolve to the same airport are skipped.
func buildLegs(query domain.SearchQuery, origin, destination domain.Place) []domain.SearchLeg {
	originCodes := origin.AirportCodes(query.MaxOriginAirports)
	destinationCodes := destination.AirportCodes(query.MaxDestinationAirports)
	dates := query.DepartureDates()

	legs := make([]domain.SearchLeg, 0, len(originCodes)*len(destinationCodes)*len(dates))
	for _, oc := range originCodes {
		for _, dc := range destinationCodes {
			if oc == dc {
				continue
			}
			for _, date := range dates {
				legs = append(legs, domain.SearchLeg{
					Origin:        oc,
					Destination:   dc,
					DepartureDate: date,
					ReturnDate:    query.ReturnDate,
					Adults:        query.Adults,
				})
			}
		}
	}
	return legs
}

// Ensure searchUseCase implements SearchUseCase at compile time.
var _ SearchUseCase = (*searchUseCase)(nil)
