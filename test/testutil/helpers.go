// Package testutil provides test helper functions for unit and integration tests.
package testutil

import (
	"fmt"
	"testing"
	"time"

	"github.com/skysweep/skysweep/internal/domain"
)

// RawSegment describes one flight segment for building raw offer records.
type RawSegment struct {
	Carrier  string
	Number   string
	From     string
	To       string
	DepartAt string
	ArriveAt string
}

// RawItinerary describes one direction of a raw offer.
type RawItinerary struct {
	Duration string
	Segments []RawSegment
}

// RawOffer builds a well-formed raw offer record in the provider wire shape.
func RawOffer(id string, price float64, currency string, itineraries ...RawItinerary) domain.RawOffer {
	its := make([]any, len(itineraries))
	for i, it := range itineraries {
		segs := make([]any, len(it.Segments))
		for j, s := range it.Segments {
			segs[j] = map[string]any{
				"carrierCode": s.Carrier,
				"number":      s.Number,
				"departure":   map[string]any{"iataCode": s.From, "at": s.DepartAt},
				"arrival":     map[string]any{"iataCode": s.To, "at": s.ArriveAt},
			}
		}
		its[i] = map[string]any{"duration": it.Duration, "segments": segs}
	}

	return domain.RawOffer{
		"id": id,
		"price": map[string]any{
			"grandTotal": fmt.Sprintf("%.2f", price),
			"currency":   currency,
		},
		"itineraries": its,
	}
}

// DirectOffer builds a one-way direct raw offer between two airports.
func DirectOffer(id string, price float64, origin, destination string) domain.RawOffer {
	return RawOffer(id, price, "EUR", RawItinerary{
		Duration: "PT1H30M",
		Segments: []RawSegment{{
			Carrier:  "IB",
			Number:   "1000",
			From:     origin,
			To:       destination,
			DepartAt: "2026-10-01T08:00:00",
			ArriveAt: "2026-10-01T09:30:00",
		}},
	})
}

// MustParseDate parses a date string in YYYY-MM-DD format.
// It fails the test if parsing fails.
func MustParseDate(t *testing.T, dateStr string) time.Time {
	t.Helper()
	parsed, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		t.Fatalf("Failed to parse date %s: %v", dateStr, err)
	}
	return parsed
}

// Ptr returns a pointer to the given value.
// Useful for creating pointers to literals in tests.
func Ptr[T any](v T) *T {
	return &v
}
