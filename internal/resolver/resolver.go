// Package resolver maps free-text place names (cities, autonomous
// communities, or IATA codes) to resolved places with ranked nearby
// airports. It works entirely from an embedded gazetteer of Spanish cities
// and airports; autonomous-community names resolve through their capital.
package resolver

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/skysweep/skysweep/internal/cache"
	"github.com/skysweep/skysweep/internal/domain"
)

//go:embed data/cities.json
var citiesJSON []byte

//go:embed data/airports.json
var airportsJSON []byte

//go:embed data/ccaa_capitals.json
var ccaaJSON []byte

// DefaultAirportsPerPlace is how many nearest airports a resolved place
// carries when the caller does not override it.
const DefaultAirportsPerPlace = 3

// city is one gazetteer entry.
type city struct {
	Name     string   `json:"name"`
	AltNames []string `json:"alt_names,omitempty"`
	Lat      float64  `json:"lat"`
	Lon      float64  `json:"lon"`
}

// LocationSource looks up airports for a keyword in a remote reference
// dataset.
type LocationSource interface {
	Locations(ctx context.Context, keyword string) ([]domain.Airport, error)
}

// Gazetteer resolves place names against the embedded tables, optionally
// consulting a cache store before recomputing.
type Gazetteer struct {
	cities      []city
	airports    []domain.Airport
	ccaaCapital map[string]string
	store       cache.Store
	fallback    LocationSource
	topN        int
}

// Option configures a Gazetteer.
type Option func(*Gazetteer)

// WithCache makes resolution results cacheable in the given store.
func WithCache(store cache.Store) Option {
	return func(g *Gazetteer) { g.store = store }
}

// WithFallback consults the given source for places missing from the
// embedded tables.
func WithFallback(src LocationSource) Option {
	return func(g *Gazetteer) { g.fallback = src }
}

// WithAirportsPerPlace overrides how many nearest airports each resolved
// place carries.
func WithAirportsPerPlace(n int) Option {
	return func(g *Gazetteer) { g.topN = n }
}

// New builds a Gazetteer from the embedded data.
// The embedded tables are fixed at build time; a decode failure is a
// programming error, so New panics rather than returning it.
func New(opts ...Option) *Gazetteer {
	g := &Gazetteer{topN: DefaultAirportsPerPlace}

	if err := json.Unmarshal(citiesJSON, &g.cities); err != nil {
		panic(fmt.Sprintf("embedded cities table is invalid: %v", err))
	}
	if err := json.Unmarshal(airportsJSON, &g.airports); err != nil {
		panic(fmt.Sprintf("embedded airports table is invalid: %v", err))
	}
	if err := json.Unmarshal(ccaaJSON, &g.ccaaCapital); err != nil {
		panic(fmt.Sprintf("embedded CCAA table is invalid: %v", err))
	}

	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Resolve implements domain.PlaceResolver.
func (g *Gazetteer) Resolve(ctx context.Context, query string) (domain.Place, error) {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return domain.Place{}, fmt.Errorf("%w: empty place query", domain.ErrInvalidRequest)
	}

	key := cache.Key(cache.ResolvePrefix, strings.ToLower(trimmed))
	if g.store != nil {
		if data, ok := g.store.Get(ctx, key); ok {
			var place domain.Place
			if err := json.Unmarshal(data, &place); err == nil {
				return place, nil
			}
		}
	}

	place, err := g.resolve(trimmed)
	if err != nil {
		if g.fallback == nil || !errors.Is(err, domain.ErrPlaceNotFound) {
			return domain.Place{}, err
		}
		place, err = g.resolveRemote(ctx, trimmed)
		if err != nil {
			return domain.Place{}, err
		}
	}

	if g.store != nil {
		if data, err := json.Marshal(place); err == nil {
			if err := g.store.Set(ctx, key, data, cache.DefaultResolveTTL); err != nil {
				log.Warn().Err(err).Str("place", place.Label).Msg("Resolve cache write failed")
			}
		}
	}

	return place, nil
}

func (g *Gazetteer) resolve(query string) (domain.Place, error) {
	// Bare IATA codes short-circuit the gazetteer.
	if a, ok := g.airportByIATA(query); ok {
		return domain.Place{
			Label:    a.City,
			Lat:      a.Lat,
			Lon:      a.Lon,
			Airports: g.nearest(a.Lat, a.Lon),
		}, nil
	}

	name := fold(query)

	// Autonomous communities resolve through their capital.
	if capital, ok := g.ccaaCapital[name]; ok {
		name = fold(capital)
	}

	c, ok := g.cityByName(name)
	if !ok {
		return domain.Place{}, fmt.Errorf("%w: %q", domain.ErrPlaceNotFound, query)
	}

	return domain.Place{
		Label:    c.Name,
		Lat:      c.Lat,
		Lon:      c.Lon,
		Airports: g.nearest(c.Lat, c.Lon),
	}, nil
}

// resolveRemote asks the fallback source for the keyword and builds a place
// around the first airport it returns. A fallback failure reads as not found
// so callers see one error regardless of which lookup missed.
func (g *Gazetteer) resolveRemote(ctx context.Context, query string) (domain.Place, error) {
	airports, err := g.fallback.Locations(ctx, query)
	if err != nil {
		log.Warn().Err(err).Str("place", query).Msg("Location fallback failed")
		return domain.Place{}, fmt.Errorf("%w: %q", domain.ErrPlaceNotFound, query)
	}
	if len(airports) == 0 {
		return domain.Place{}, fmt.Errorf("%w: %q", domain.ErrPlaceNotFound, query)
	}

	first := airports[0]
	if len(airports) > g.topN {
		airports = airports[:g.topN]
	}
	for i := range airports {
		airports[i].DistanceKm = math.Round(haversineKm(first.Lat, first.Lon, airports[i].Lat, airports[i].Lon)*10) / 10
	}

	label := first.City
	if label == "" {
		label = first.Name
	}

	return domain.Place{
		Label:    label,
		Lat:      first.Lat,
		Lon:      first.Lon,
		Airports: airports,
	}, nil
}

func (g *Gazetteer) airportByIATA(query string) (domain.Airport, bool) {
	code := strings.ToUpper(strings.TrimSpace(query))
	if len(code) != 3 {
		return domain.Airport{}, false
	}
	for _, a := range g.airports {
		if a.IATA == code {
			return a, true
		}
	}
	return domain.Airport{}, false
}

func (g *Gazetteer) cityByName(name string) (city, bool) {
	for _, c := range g.cities {
		if fold(c.Name) == name {
			return c, true
		}
		for _, alt := range c.AltNames {
			if fold(alt) == name {
				return c, true
			}
		}
	}

	// Prefix fallback, matching the forgiving behavior users expect from a
	// search box ("santia" finds Santiago de Compostela).
	if len(name) >= 4 {
		for _, c := range g.cities {
			if strings.HasPrefix(fold(c.Name), name) {
				return c, true
			}
		}
	}

	return city{}, false
}

// nearest returns the topN airports closest to the given coordinates,
// nearest first, with distances rounded to one decimal.
func (g *Gazetteer) nearest(lat, lon float64) []domain.Airport {
	ranked := make([]domain.Airport, len(g.airports))
	copy(ranked, g.airports)

	for i := range ranked {
		ranked[i].DistanceKm = math.Round(haversineKm(lat, lon, ranked[i].Lat, ranked[i].Lon)*10) / 10
	}

	// Insertion sort: the table is small and mostly random-access.
	for i := 1; i < len(ranked); i++ {
		for j := i; j > 0 && ranked[j].DistanceKm < ranked[j-1].DistanceKm; j-- {
			ranked[j], ranked[j-1] = ranked[j-1], ranked[j]
		}
	}

	if len(ranked) > g.topN {
		ranked = ranked[:g.topN]
	}
	return ranked
}

// haversineKm computes the great-circle distance between two coordinates.
func haversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	const earthRadiusKm = 6371.0

	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	return 2 * earthRadiusKm * math.Asin(math.Sqrt(a))
}

// diacriticFolder strips the Spanish diacritics the gazetteer can contain,
// so "Málaga", "malaga" and "MALAGA" all match.
var diacriticFolder = strings.NewReplacer(
	"á", "a", "é", "e", "í", "i", "ó", "o", "ú", "u",
	"ü", "u", "ñ", "n", "ç", "c",
)

// fold lowercases, trims, and strips diacritics for matching.
func fold(s string) string {
	return diacriticFolder.Replace(strings.ToLower(strings.TrimSpace(s)))
}

// Airports returns the full embedded airport table, for the static listing
// endpoint.
func (g *Gazetteer) Airports() []domain.Airport {
	out := make([]domain.Airport, len(g.airports))
	copy(out, g.airports)
	return out
}
