package usecase

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skysweep/skysweep/internal/domain"
)

// rawOffer builds a well-formed raw record in the provider wire shape.
// Segments are (carrier, number, from, to, departAt, arriveAt) tuples.
func rawOffer(id, price, currency string, itineraries ...map[string]any) domain.RawOffer {
	record := domain.RawOffer{
		"itineraries": toAnyList(itineraries),
	}
	if id != "" {
		record["id"] = id
	}
	if price != "" || currency != "" {
		record["price"] = map[string]any{"grandTotal": price, "currency": currency}
	}
	return record
}

func itinerary(duration string, segments ...[]string) map[string]any {
	segs := make([]any, 0, len(segments))
	for _, s := range segments {
		segs = append(segs, map[string]any{
			"carrierCode": s[0],
			"number":      s[1],
			"departure":   map[string]any{"iataCode": s[2], "at": s[4]},
			"arrival":     map[string]any{"iataCode": s[3], "at": s[5]},
		})
	}
	return map[string]any{"duration": duration, "segments": segs}
}

func toAnyList(maps []map[string]any) []any {
	list := make([]any, len(maps))
	for i, m := range maps {
		list[i] = m
	}
	return list
}

func TestNormalizeEmptyInput(t *testing.T) {
	assert.Empty(t, Normalize(nil))
	assert.Empty(t, Normalize([]domain.RawOffer{}))
}

func TestNormalizeWellFormedOneWay(t *testing.T) {
	raw := []domain.RawOffer{
		rawOffer("A", "100", "EUR", itinerary("PT2H30M",
			[]string{"IB", "100", "MAD", "BCN", "2024-06-01T10:00:00", "2024-06-01T12:30:00"},
		)),
	}

	offers := Normalize(raw)
	require.Len(t, offers, 1)

	o := offers[0]
	assert.Equal(t, "A", o.ID)
	assert.Equal(t, 100.0, o.PriceTotal)
	assert.Equal(t, "EUR", o.Currency)
	assert.Equal(t, []string{"IB"}, o.Carriers)
	assert.Equal(t, 0, o.Stops)
	assert.Equal(t, 150, o.DurationTotalMinutes)
	assert.Equal(t, "2024-06-01T10:00:00", o.Outbound.Departure)
	assert.Equal(t, "2024-06-01T12:30:00", o.Outbound.Arrival)
	assert.Equal(t, []string{"IB100 MAD-BCN"}, o.Outbound.Segments)
	assert.Nil(t, o.Inbound)
}

func TestNormalizeRoundTrip(t *testing.T) {
	raw := []domain.RawOffer{
		rawOffer("RT", "250.50", "USD",
			itinerary("PT3H",
				[]string{"IB", "100", "MAD", "LHR", "2024-06-01T08:00:00", "2024-06-01T11:00:00"},
			),
			itinerary("PT4H15M",
				[]string{"BA", "200", "LHR", "BCN", "2024-06-08T09:00:00", "2024-06-08T11:00:00"},
				[]string{"VY", "300", "BCN", "MAD", "2024-06-08T12:00:00", "2024-06-08T13:15:00"},
			),
		),
	}

	offers := Normalize(raw)
	require.Len(t, offers, 1)

	o := offers[0]
	assert.Equal(t, 250.50, o.PriceTotal)
	assert.Equal(t, "USD", o.Currency)
	assert.Equal(t, []string{"IB", "BA", "VY"}, o.Carriers)
	assert.Equal(t, 1, o.Stops)
	assert.Equal(t, 180+255, o.DurationTotalMinutes)

	require.NotNil(t, o.Inbound)
	assert.Equal(t, "2024-06-08T09:00:00", o.Inbound.Departure)
	assert.Equal(t, "2024-06-08T13:15:00", o.Inbound.Arrival)
	assert.Equal(t, []string{"BA200 LHR-BCN", "VY300 BCN-MAD"}, o.Inbound.Segments)
}

func TestNormalizeDeduplicatesByID(t *testing.T) {
	first := rawOffer("DUP", "100", "EUR", itinerary("PT1H",
		[]string{"IB", "1", "MAD", "BCN", "2024-06-01T10:00:00", "2024-06-01T11:00:00"},
	))
	second := rawOffer("DUP", "999", "EUR", itinerary("PT9H",
		[]string{"FR", "2", "MAD", "BCN", "2024-06-01T10:00:00", "2024-06-01T19:00:00"},
	))

	offers := Normalize([]domain.RawOffer{first, second})

	// First occurrence wins; the later record is dropped, not merged.
	require.Len(t, offers, 1)
	assert.Equal(t, 100.0, offers[0].PriceTotal)
	assert.Equal(t, []string{"IB"}, offers[0].Carriers)
}

func TestNormalizeSynthesizesMissingIDs(t *testing.T) {
	blank := func() domain.RawOffer {
		return rawOffer("", "50", "EUR", itinerary("PT1H",
			[]string{"VY", "9", "BCN", "PMI", "2024-06-01T10:00:00", "2024-06-01T11:00:00"},
		))
	}

	offers := Normalize([]domain.RawOffer{blank(), blank()})

	// Synthesized ids never participate in dedup: both records survive with
	// distinct identifiers.
	require.Len(t, offers, 2)
	assert.NotEmpty(t, offers[0].ID)
	assert.NotEmpty(t, offers[1].ID)
	assert.NotEqual(t, offers[0].ID, offers[1].ID)
}

func TestNormalizeMissingItineraries(t *testing.T) {
	offers := Normalize([]domain.RawOffer{{"id": "BARE"}})
	require.Len(t, offers, 1)

	o := offers[0]
	assert.Equal(t, "BARE", o.ID)
	assert.Equal(t, 0.0, o.PriceTotal)
	assert.Equal(t, DefaultCurrency, o.Currency)
	assert.Empty(t, o.Carriers)
	assert.Equal(t, 0, o.Stops)
	assert.Equal(t, 0, o.DurationTotalMinutes)
	assert.Equal(t, "", o.Outbound.Departure)
	assert.NotNil(t, o.Outbound.Segments)
	assert.Empty(t, o.Outbound.Segments)
	assert.Nil(t, o.Inbound)
}

func TestNormalizeMalformedFieldsDegradeToDefaults(t *testing.T) {
	tests := []struct {
		name   string
		record domain.RawOffer
		check  func(t *testing.T, o domain.Offer)
	}{
		{
			name:   "price as unparsable string",
			record: domain.RawOffer{"id": "P1", "price": map[string]any{"grandTotal": "abc", "currency": "EUR"}},
			check: func(t *testing.T, o domain.Offer) {
				assert.Equal(t, 0.0, o.PriceTotal)
			},
		},
		{
			name:   "price block wrong type",
			record: domain.RawOffer{"id": "P2", "price": "100 EUR"},
			check: func(t *testing.T, o domain.Offer) {
				assert.Equal(t, 0.0, o.PriceTotal)
				assert.Equal(t, DefaultCurrency, o.Currency)
			},
		},
		{
			name:   "price as JSON number",
			record: domain.RawOffer{"id": "P3", "price": map[string]any{"grandTotal": 88.5}},
			check: func(t *testing.T, o domain.Offer) {
				assert.Equal(t, 88.5, o.PriceTotal)
			},
		},
		{
			name:   "itineraries wrong type",
			record: domain.RawOffer{"id": "I1", "itineraries": "none"},
			check: func(t *testing.T, o domain.Offer) {
				assert.Empty(t, o.Outbound.Segments)
				assert.Equal(t, 0, o.Stops)
			},
		},
		{
			name: "duration garbage",
			record: domain.RawOffer{"id": "D1", "itineraries": []any{
				map[string]any{"duration": "soon", "segments": []any{}},
			}},
			check: func(t *testing.T, o domain.Offer) {
				assert.Equal(t, 0, o.DurationTotalMinutes)
			},
		},
		{
			name: "timestamp too short is dropped",
			record: domain.RawOffer{"id": "T1", "itineraries": []any{
				map[string]any{"segments": []any{
					map[string]any{
						"carrierCode": "IB",
						"number":      "1",
						"departure":   map[string]any{"iataCode": "MAD", "at": "tomorrow"},
						"arrival":     map[string]any{"iataCode": "BCN", "at": "2024-06-01T12:00:00"},
					},
				}},
			}},
			check: func(t *testing.T, o domain.Offer) {
				assert.Equal(t, "", o.Outbound.Departure)
				assert.Equal(t, "2024-06-01T12:00:00", o.Outbound.Arrival)
			},
		},
		{
			name: "segment with only route keeps route label",
			record: domain.RawOffer{"id": "S1", "itineraries": []any{
				map[string]any{"segments": []any{
					map[string]any{
						"departure": map[string]any{"iataCode": "MAD"},
						"arrival":   map[string]any{"iataCode": "BCN"},
					},
				}},
			}},
			check: func(t *testing.T, o domain.Offer) {
				assert.Equal(t, []string{"MAD-BCN"}, o.Outbound.Segments)
			},
		},
		{
			name: "fully empty segment contributes no label",
			record: domain.RawOffer{"id": "S2", "itineraries": []any{
				map[string]any{"segments": []any{map[string]any{}}},
			}},
			check: func(t *testing.T, o domain.Offer) {
				assert.Empty(t, o.Outbound.Segments)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			offers := Normalize([]domain.RawOffer{tt.record})
			require.Len(t, offers, 1)
			tt.check(t, offers[0])
		})
	}
}

func TestNormalizeInvariants(t *testing.T) {
	// A messy batch: well-formed, partial, and junk records together.
	raw := []domain.RawOffer{
		rawOffer("A", "100", "EUR", itinerary("PT2H30M",
			[]string{"IB", "100", "MAD", "BCN", "2024-06-01T10:00:00", "2024-06-01T12:30:00"},
		)),
		rawOffer("B", "80", "EUR", itinerary("PT5H",
			[]string{"FR", "11", "MAD", "PMI", "2024-06-01T07:00:00", "2024-06-01T08:20:00"},
			[]string{"FR", "12", "PMI", "BCN", "2024-06-01T10:00:00", "2024-06-01T12:00:00"},
		)),
		{"id": "C"},
		{"garbage": true},
	}

	offers := Normalize(raw)
	require.Len(t, offers, 4)

	for _, o := range offers {
		assert.Equal(t, o.TotalStops(), o.Stops, "stops invariant for %s", o.ID)

		wantDuration := o.Outbound.DurationMinutes
		if o.Inbound != nil {
			wantDuration += o.Inbound.DurationMinutes
		}
		assert.Equal(t, wantDuration, o.DurationTotalMinutes, "duration invariant for %s", o.ID)

		assert.GreaterOrEqual(t, o.PriceTotal, 0.0)
		assert.NotEmpty(t, o.Currency)
		assert.NotNil(t, o.Outbound.Segments)
	}
}

func TestNormalizeRepeatableExceptSynthesizedIDs(t *testing.T) {
	raw := []domain.RawOffer{
		rawOffer("A", "100", "EUR", itinerary("PT2H30M",
			[]string{"IB", "100", "MAD", "BCN", "2024-06-01T10:00:00", "2024-06-01T12:30:00"},
		)),
		rawOffer("", "75", "EUR", itinerary("PT1H",
			[]string{"VY", "9", "BCN", "PMI", "2024-06-01T10:00:00", "2024-06-01T11:00:00"},
		)),
	}

	first := Normalize(raw)
	second := Normalize(raw)
	require.Len(t, first, 2)
	require.Len(t, second, 2)

	// Field-for-field identical output across calls, with non-determinism
	// isolated to the synthesized id.
	assert.Equal(t, first[0], second[0])
	assert.NotEqual(t, first[1].ID, second[1].ID)
	first[1].ID, second[1].ID = "", ""
	assert.Equal(t, first[1], second[1])
}

func TestNormalizeAcceptsDecodedProviderJSON(t *testing.T) {
	payload := `[
		{
			"id": "1",
			"price": {"grandTotal": "185.30", "currency": "EUR"},
			"itineraries": [
				{
					"duration": "PT1H25M",
					"segments": [
						{
							"carrierCode": "UX",
							"number": "7701",
							"departure": {"iataCode": "MAD", "at": "2024-06-01T09:15:00"},
							"arrival": {"iataCode": "BCN", "at": "2024-06-01T10:40:00"}
						}
					]
				}
			]
		}
	]`

	var raw []domain.RawOffer
	require.NoError(t, json.Unmarshal([]byte(payload), &raw))

	offers := Normalize(raw)
	require.Len(t, offers, 1)
	assert.Equal(t, 185.30, offers[0].PriceTotal)
	assert.Equal(t, 85, offers[0].DurationTotalMinutes)
	assert.Equal(t, []string{"UX7701 MAD-BCN"}, offers[0].Outbound.Segments)
}

func TestParseISODuration(t *testing.T) {
	tests := []struct {
		iso  string
		want int
	}{
		{"PT2H30M", 150},
		{"PT3H", 180},
		{"PT45M", 45},
		{"PT0H0M", 0},
		{"", 0},
		{"nonsense", 0},
		{"P1DT2H", 120}, // days are not modeled; hours still parse
	}

	for _, tt := range tests {
		t.Run(tt.iso, func(t *testing.T) {
			assert.Equal(t, tt.want, parseISODuration(tt.iso))
		})
	}
}
