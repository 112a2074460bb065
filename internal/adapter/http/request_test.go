package http

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skysweep/skysweep/internal/domain"
)

func validSearchRequest() SearchOffersRequest {
	return SearchOffersRequest{
		Origin:        "Madrid",
		Destination:   "Barcelona",
		DepartureDate: "2026-10-01",
	}
}

func TestSearchRequestValid(t *testing.T) {
	req := validSearchRequest()
	assert.NoError(t, req.Validate())
}

func TestSearchRequestValidation(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*SearchOffersRequest)
		wantField string
	}{
		{"missing origin", func(r *SearchOffersRequest) { r.Origin = "" }, "origin"},
		{"missing destination", func(r *SearchOffersRequest) { r.Destination = "" }, "destination"},
		{"same places", func(r *SearchOffersRequest) { r.Destination = "Madrid" }, "destination"},
		{"missing departure date", func(r *SearchOffersRequest) { r.DepartureDate = "" }, "departure_date"},
		{"bad date format", func(r *SearchOffersRequest) { r.DepartureDate = "01-10-2026" }, "departure_date"},
		{"impossible date", func(r *SearchOffersRequest) { r.DepartureDate = "2026-13-45" }, "departure_date"},
		{"bad return format", func(r *SearchOffersRequest) { r.ReturnDate = "next week" }, "return_date"},
		{"return before departure", func(r *SearchOffersRequest) { r.ReturnDate = "2026-09-01" }, "return_date"},
		{"too many adults", func(r *SearchOffersRequest) { r.Adults = 10 }, "adults"},
		{"negative adults", func(r *SearchOffersRequest) { r.Adults = -1 }, "adults"},
		{"too many flex days", func(r *SearchOffersRequest) { r.FlexDays = 4 }, "flex_days"},
		{"too many origin airports", func(r *SearchOffersRequest) { r.MaxOriginAirports = 5 }, "max_origin_airports"},
		{"too many destination airports", func(r *SearchOffersRequest) { r.MaxDestinationAirports = 5 }, "max_destination_airports"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validSearchRequest()
			tt.mutate(&req)

			err := req.Validate()
			require.Error(t, err)

			var verrs *ValidationErrors
			require.ErrorAs(t, err, &verrs)
			assert.Contains(t, verrs.ToMap(), tt.wantField)
		})
	}
}

func TestSearchRequestCollectsAllErrors(t *testing.T) {
	req := SearchOffersRequest{}

	err := req.Validate()
	require.Error(t, err)

	var verrs *ValidationErrors
	require.ErrorAs(t, err, &verrs)

	fields := verrs.ToMap()
	assert.Contains(t, fields, "origin")
	assert.Contains(t, fields, "destination")
	assert.Contains(t, fields, "departure_date")
}

func TestSearchRequestZeroOptionalsAreValid(t *testing.T) {
	// Zero values mean "use the defaults"; the use case fills them in.
	req := validSearchRequest()
	req.Adults = 0
	req.MaxOriginAirports = 0
	req.MaxDestinationAirports = 0

	assert.NoError(t, req.Validate())
}

func TestSearchRequestToQuery(t *testing.T) {
	req := SearchOffersRequest{
		Origin:                 "Navarra",
		Destination:            "Galicia",
		DepartureDate:          "2026-10-01",
		ReturnDate:             "2026-10-08",
		Adults:                 2,
		FlexDays:               1,
		MaxOriginAirports:      1,
		MaxDestinationAirports: 3,
	}

	q := req.ToQuery()

	assert.Equal(t, "Navarra", q.Origin)
	assert.Equal(t, "Galicia", q.Destination)
	assert.Equal(t, "2026-10-08", q.ReturnDate)
	assert.Equal(t, 2, q.Adults)
	assert.Equal(t, 1, q.FlexDays)
	assert.Equal(t, 1, q.MaxOriginAirports)
	assert.Equal(t, 3, q.MaxDestinationAirports)
}

func TestPlanRequestValidation(t *testing.T) {
	valid := PlanOffersRequest{Offers: []domain.RawOffer{{"id": "a"}}}
	assert.NoError(t, valid.Validate())

	empty := PlanOffersRequest{}
	err := empty.Validate()
	require.Error(t, err)

	var verrs *ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs.ToMap(), "offers")

	negative := -1
	badLimit := PlanOffersRequest{
		Offers:            []domain.RawOffer{{"id": "a"}},
		MaxTransfersTotal: &negative,
	}
	err = badLimit.Validate()
	require.Error(t, err)
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs.ToMap(), "max_transfers_total")

	zeroWeights := PlanOffersRequest{
		Offers:  []domain.RawOffer{{"id": "a"}},
		Weights: &domain.Weights{},
	}
	err = zeroWeights.Validate()
	require.Error(t, err)
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs.ToMap(), "weights")
}

func TestPlanRequestPolicyMerge(t *testing.T) {
	base := domain.Policy{
		Weights: domain.Weights{Price: 0.45, Duration: 0.3, Transfers: 0.15, ConnectionRisk: 0.1},
		Limits:  domain.Limits{MaxTransfersTotal: 2},
	}

	// No overrides keeps the base policy.
	plain := PlanOffersRequest{}
	assert.Equal(t, base, plain.Policy(base))

	// Weight override replaces the whole weight set, limit stays.
	withWeights := PlanOffersRequest{
		Weights: &domain.Weights{Price: 1},
	}
	merged := withWeights.Policy(base)
	assert.Equal(t, 1.0, merged.Weights.Price)
	assert.Equal(t, 0.0, merged.Weights.Duration)
	assert.Equal(t, 2, merged.Limits.MaxTransfersTotal)

	// Limit override keeps the base weights.
	one := 1
	withLimit := PlanOffersRequest{MaxTransfersTotal: &one}
	merged = withLimit.Policy(base)
	assert.Equal(t, base.Weights, merged.Weights)
	assert.Equal(t, 1, merged.Limits.MaxTransfersTotal)
}

func TestValidationErrorsInterface(t *testing.T) {
	errs := &ValidationErrors{}
	assert.Equal(t, "validation failed", errs.Error())
	assert.False(t, errs.HasErrors())

	errs.Add("origin", "origin is required")
	assert.True(t, errs.HasErrors())
	assert.Equal(t, "origin is required", errs.Error())
}
