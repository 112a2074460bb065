// Package usecase provides the business logic for offer search operations:
// normalizing raw provider payloads, ranking canonical offers under a policy,
// and orchestrating the offer-source sweep.
package usecase

import (
	"regexp"
	"strconv"

	"github.com/google/uuid"

	"github.com/skysweep/skysweep/internal/domain"
)

// DefaultCurrency is assumed when a provider record carries no currency code.
const DefaultCurrency = "EUR"

// ISO 8601 duration components ("PT2H30M"). Hours and minutes are extracted
// independently so "PT45M" and "PT3H" both parse.
var (
	durationHoursRe   = regexp.MustCompile(`(\d+)H`)
	durationMinutesRe = regexp.MustCompile(`(\d+)M`)
)

// Normalize converts a heterogeneous list of raw offer records into canonical
// offers, deduplicated by provider-assigned identifier (first occurrence
// wins). The input may come from many provider calls flattened together and
// may be arbitrarily malformed: every missing or wrong-typed field degrades
// to its documented default, never to an error.
//
// Records without a provider identifier get a synthesized one; those records
// never participate in deduplication.
func Normalize(raw []domain.RawOffer) []domain.Offer {
	offers := make([]domain.Offer, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))

	for _, record := range raw {
		id := asString(record["id"])
		if id != "" {
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
		} else {
			id = uuid.NewString()
		}

		offers = append(offers, normalizeOffer(id, record))
	}

	return offers
}

// normalizeOffer builds one canonical offer from one raw record.
func normalizeOffer(id string, record domain.RawOffer) domain.Offer {
	itineraries := asList(record["itineraries"])

	var outboundRaw, inboundRaw map[string]any
	if len(itineraries) > 0 {
		outboundRaw = asMap(itineraries[0])
	}
	if len(itineraries) > 1 {
		inboundRaw = asMap(itineraries[1])
	}

	outbound := buildSlice(outboundRaw)

	var inbound *domain.Slice
	if inboundRaw != nil {
		s := buildSlice(inboundRaw)
		inbound = &s
	}

	price := asMap(record["price"])
	currency := asString(price["currency"])
	if currency == "" {
		currency = DefaultCurrency
	}

	offer := domain.Offer{
		ID:         id,
		PriceTotal: asNumber(price["grandTotal"]),
		Currency:   currency,
		Carriers:   collectCarriers(outboundRaw, inboundRaw),
		Outbound:   outbound,
		Inbound:    inbound,
	}
	offer.Stops = offer.TotalStops()
	offer.DurationTotalMinutes = outbound.DurationMinutes
	if inbound != nil {
		offer.DurationTotalMinutes += inbound.DurationMinutes
	}

	return offer
}

// buildSlice converts one raw itinerary into a Slice. A nil itinerary yields
// the zero slice with an empty (non-nil) segment list.
func buildSlice(itinerary map[string]any) domain.Slice {
	segments := asList(itinerary["segments"])

	slice := domain.Slice{
		DurationMinutes: parseISODuration(asString(itinerary["duration"])),
		Segments:        make([]string, 0, len(segments)),
	}

	if len(segments) > 0 {
		first := asMap(segments[0])
		last := asMap(segments[len(segments)-1])
		slice.Departure = isoOrEmpty(asMap(first["departure"])["at"])
		slice.Arrival = isoOrEmpty(asMap(last["arrival"])["at"])
	}

	for _, s := range segments {
		if label := segmentLabel(asMap(s)); label != "" {
			slice.Segments = append(slice.Segments, label)
		}
	}

	return slice
}

// segmentLabel renders one segment as "IB1234 MAD-BCN". The flight part is
// omitted when carrier or number is missing, the route part when either
// airport code is missing; a segment with neither yields "".
func segmentLabel(segment map[string]any) string {
	carrier := asString(segment["carrierCode"])
	number := asString(segment["number"])
	from := asString(asMap(segment["departure"])["iataCode"])
	to := asString(asMap(segment["arrival"])["iataCode"])

	var flight, route string
	if carrier != "" && number != "" {
		flight = carrier + number
	}
	if from != "" && to != "" {
		route = from + "-" + to
	}

	switch {
	case flight != "" && route != "":
		return flight + " " + route
	case flight != "":
		return flight
	default:
		return route
	}
}

// collectCarriers gathers the carrier codes of every segment across both
// itineraries, first-seen order, empty codes and duplicates excluded.
func collectCarriers(itineraries ...map[string]any) []string {
	carriers := make([]string, 0, 2)
	seen := make(map[string]struct{}, 2)

	for _, it := range itineraries {
		for _, s := range asList(it["segments"]) {
			code := asString(asMap(s)["carrierCode"])
			if code == "" {
				continue
			}
			if _, dup := seen[code]; dup {
				continue
			}
			seen[code] = struct{}{}
			carriers = append(carriers, code)
		}
	}

	return carriers
}

// parseISODuration extracts minutes from an ISO 8601 "PTxHyM" duration.
// Missing components default to 0; anything unparsable yields 0.
func parseISODuration(iso string) int {
	if iso == "" {
		return 0
	}

	minutes := 0
	if m := durationHoursRe.FindStringSubmatch(iso); m != nil {
		if h, err := strconv.Atoi(m[1]); err == nil {
			minutes += h * 60
		}
	}
	if m := durationMinutesRe.FindStringSubmatch(iso); m != nil {
		if mins, err := strconv.Atoi(m[1]); err == nil {
			minutes += mins
		}
	}
	return minutes
}

// asString returns v when it is a string, "" otherwise.
func asString(v any) string {
	s, _ := v.(string)
	return s
}

// asNumber coerces v to a float64. Providers send prices both as JSON numbers
// and as numeric strings ("100.00"); anything else yields 0.
func asNumber(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

// asMap returns v as a map, or nil for any other type. Indexing a nil map is
// safe, so extractor chains never need nil checks.
func asMap(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

// asList returns v as a slice, or nil for any other type.
func asList(v any) []any {
	l, _ := v.([]any)
	return l
}

// isoOrEmpty accepts v only when it is a string long enough to contain at
// least a full date ("2006-01-02" is 10 bytes); anything else yields "".
func isoOrEmpty(v any) string {
	s, ok := v.(string)
	if !ok || len(s) < 10 {
		return ""
	}
	return s
}
