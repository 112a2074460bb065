// Package http provides the HTTP handler layer for the offer search API.
// It handles request parsing, validation, and response formatting.
package http

import (
	"fmt"
	"regexp"
	"time"

	"github.com/skysweep/skysweep/internal/domain"
)

// SearchOffersRequest represents the request body for an offer search.
type SearchOffersRequest struct {
	// Origin is a free-text place name or IATA code (e.g., "Navarra", "MAD")
	Origin string `json:"origin"`

	// Destination is a free-text place name or IATA code
	Destination string `json:"destination"`

	// DepartureDate is the desired departure date in YYYY-MM-DD format
	DepartureDate string `json:"departure_date"`

	// ReturnDate is the optional inbound date; empty means one-way
	ReturnDate string `json:"return_date,omitempty"`

	// Adults is the number of adult passengers (1-9, default 1)
	Adults int `json:"adults,omitempty"`

	// FlexDays widens the departure date into a ±N day window (0-3)
	FlexDays int `json:"flex_days,omitempty"`

	// MaxOriginAirports caps the swept origin airports (1-4, default 2)
	MaxOriginAirports int `json:"max_origin_airports,omitempty"`

	// MaxDestinationAirports caps the swept destination airports (1-4, default 2)
	MaxDestinationAirports int `json:"max_destination_airports,omitempty"`
}

// PlanOffersRequest represents the request body for ranking caller-supplied
// raw offer records without touching the offer source.
type PlanOffersRequest struct {
	// Offers is the list of raw offer records in the provider wire shape
	Offers []domain.RawOffer `json:"offers"`

	// Weights optionally overrides the configured ranking weights
	Weights *domain.Weights `json:"weights,omitempty"`

	// MaxTransfersTotal optionally overrides the feasibility limit
	MaxTransfersTotal *int `json:"max_transfers_total,omitempty"`
}

// Validation regex patterns.
var datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// ValidationError represents a field-level validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors holds multiple validation errors.
type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

// Error implements the error interface.
func (v *ValidationErrors) Error() string {
	if len(v.Errors) == 0 {
		return "validation failed"
	}
	return v.Errors[0].Message
}

// Add adds a validation error.
func (v *ValidationErrors) Add(field, message string) {
	v.Errors = append(v.Errors, ValidationError{
		Field:   field,
		Message: message,
	})
}

// HasErrors returns true if there are validation errors.
func (v *ValidationErrors) HasErrors() bool {
	return len(v.Errors) > 0
}

// ToMap converts validation errors to a map for API response.
func (v *ValidationErrors) ToMap() map[string]string {
	result := make(map[string]string, len(v.Errors))
	for _, e := range v.Errors {
		result[e.Field] = e.Message
	}
	return result
}

// Validate validates the search request and returns any validation errors.
// Defaults are not applied here; the use case owns them.
func (r *SearchOffersRequest) Validate() error {
	errs := &ValidationErrors{}

	if r.Origin == "" {
		errs.Add("origin", "origin is required")
	}
	if r.Destination == "" {
		errs.Add("destination", "destination is required")
	}
	if r.Origin != "" && r.Origin == r.Destination {
		errs.Add("destination", "origin and destination must be different")
	}

	r.validateDates(errs)

	if r.Adults < 0 || r.Adults > domain.MaxAdults {
		errs.Add("adults", fmt.Sprintf("adults must be between 1 and %d", domain.MaxAdults))
	}
	if r.FlexDays < 0 || r.FlexDays > domain.MaxFlexDays {
		errs.Add("flex_days", fmt.Sprintf("flex_days must be between 0 and %d", domain.MaxFlexDays))
	}
	if r.MaxOriginAirports < 0 || r.MaxOriginAirports > domain.MaxAirportsPerPlace {
		errs.Add("max_origin_airports", fmt.Sprintf("max_origin_airports must be between 1 and %d", domain.MaxAirportsPerPlace))
	}
	if r.MaxDestinationAirports < 0 || r.MaxDestinationAirports > domain.MaxAirportsPerPlace {
		errs.Add("max_destination_airports", fmt.Sprintf("max_destination_airports must be between 1 and %d", domain.MaxAirportsPerPlace))
	}

	if errs.HasErrors() {
		return errs
	}
	return nil
}

func (r *SearchOffersRequest) validateDates(errs *ValidationErrors) {
	if r.DepartureDate == "" {
		errs.Add("departure_date", "departure_date is required")
		return
	}
	if !datePattern.MatchString(r.DepartureDate) {
		errs.Add("departure_date", "departure_date must be in YYYY-MM-DD format")
		return
	}
	departure, err := time.Parse("2006-01-02", r.DepartureDate)
	if err != nil {
		errs.Add("departure_date", "departure_date is not a valid date")
		return
	}

	if r.ReturnDate == "" {
		return
	}
	if !datePattern.MatchString(r.ReturnDate) {
		errs.Add("return_date", "return_date must be in YYYY-MM-DD format")
		return
	}
	ret, err := time.Parse("2006-01-02", r.ReturnDate)
	if err != nil {
		errs.Add("return_date", "return_date is not a valid date")
		return
	}
	if ret.Before(departure) {
		errs.Add("return_date", "return_date must not be before departure_date")
	}
}

// ToQuery converts the request into the domain search query.
func (r *SearchOffersRequest) ToQuery() domain.SearchQuery {
	return domain.SearchQuery{
		Origin:                 r.Origin,
		Destination:            r.Destination,
		DepartureDate:          r.DepartureDate,
		ReturnDate:             r.ReturnDate,
		Adults:                 r.Adults,
		FlexDays:               r.FlexDays,
		MaxOriginAirports:      r.MaxOriginAirports,
		MaxDestinationAirports: r.MaxDestinationAirports,
	}
}

// Validate validates the plan request.
func (r *PlanOffersRequest) Validate() error {
	errs := &ValidationErrors{}

	if len(r.Offers) == 0 {
		errs.Add("offers", "offers must contain at least one record")
	}
	if r.MaxTransfersTotal != nil && *r.MaxTransfersTotal < 0 {
		errs.Add("max_transfers_total", "max_transfers_total must be non-negative")
	}
	if r.Weights != nil {
		w := *r.Weights
		if w.Price == 0 && w.Duration == 0 && w.Transfers == 0 && w.ConnectionRisk == 0 {
			errs.Add("weights", "at least one weight must be non-zero")
		}
	}

	if errs.HasErrors() {
		return errs
	}
	return nil
}

// Policy merges the request overrides onto the base policy.
func (r *PlanOffersRequest) Policy(base domain.Policy) domain.Policy {
	merged := base
	if r.Weights != nil {
		merged.Weights = *r.Weights
	}
	if r.MaxTransfersTotal != nil {
		merged.Limits.MaxTransfersTotal = *r.MaxTransfersTotal
	}
	return merged
}
