// Package domain contains the core business entities and rules for the offer
// aggregation system. These entities are provider-agnostic and form the
// foundation upon which all other components are built.
package domain

// RawOffer is one decoded element of a provider flight-offers payload.
// No field is guaranteed present or well-typed; only the normalizer is
// allowed to reach into it, and only through defensive accessors.
type RawOffer map[string]any

// Offer is the canonical, fully-typed representation of one priced itinerary
// option. Every field always holds a concrete value of its declared type;
// malformed provider input degrades to the documented default during
// normalization instead of surfacing here.
type Offer struct {
	// ID is stable per distinct provider record. It is synthesized only when
	// the provider record carries no identifier of its own.
	ID string `json:"id"`

	// PriceTotal is the total price in Currency. 0 when unparsable.
	PriceTotal float64 `json:"price_total"`

	// Currency is the ISO 4217 currency code (e.g., "EUR")
	Currency string `json:"currency"`

	// Carriers lists every carrier code appearing in any segment of either
	// slice, first-seen order, duplicates removed.
	Carriers []string `json:"carriers"`

	// Stops is the total number of intermediate connections across both slices.
	Stops int `json:"stops"`

	// DurationTotalMinutes is the sum of the outbound and inbound durations.
	DurationTotalMinutes int `json:"duration_total_minutes"`

	// Outbound is the first direction of travel. Always present.
	Outbound Slice `json:"outbound"`

	// Inbound is the return direction. Nil exactly when the provider record
	// described a one-way offer.
	Inbound *Slice `json:"inbound"`
}

// Slice is one direction of travel (outbound or inbound) within an offer.
type Slice struct {
	// Departure is the first segment's departure timestamp as an ISO 8601
	// string, or "" when the provider record lacked one.
	Departure string `json:"departure"`

	// Arrival is the last segment's arrival timestamp, same convention.
	Arrival string `json:"arrival"`

	// DurationMinutes is the parsed slice duration. 0 when unparsable.
	DurationMinutes int `json:"duration_minutes"`

	// Segments holds one human-readable label per flight segment,
	// e.g. "IB1234 MAD-BCN". Never nil.
	Segments []string `json:"segments"`
}

// SliceStops returns the number of connections within one slice.
func (s Slice) SliceStops() int {
	if len(s.Segments) == 0 {
		return 0
	}
	return len(s.Segments) - 1
}

// TotalStops computes the connection count the Stops field must equal:
// max(0, outbound segments - 1) plus the same for the inbound slice when
// present.
func (o Offer) TotalStops() int {
	stops := o.Outbound.SliceStops()
	if o.Inbound != nil {
		stops += o.Inbound.SliceStops()
	}
	return stops
}

// IsRoundTrip reports whether the offer has a return slice.
func (o Offer) IsRoundTrip() bool {
	return o.Inbound != nil
}
