package domain

import (
	"fmt"
	"regexp"
	"time"
)

// Defaults and caps for search queries. The airport caps bound the size of
// the offer-source sweep (each extra airport multiplies provider calls).
const (
	DefaultAdults           = 1
	MaxAdults               = 9
	DefaultAirportsPerPlace = 2
	MaxAirportsPerPlace     = 4
	MaxFlexDays             = 3
)

// dateRegex matches dates in YYYY-MM-DD format.
var dateRegex = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// SearchQuery defines the parameters for an offer search request. Origin and
// destination are free-text place names (city, region, or IATA code); the
// resolver turns them into airport lists before the sweep.
type SearchQuery struct {
	// Origin is the departure place (e.g., "Navarra", "Madrid", "MAD")
	Origin string `json:"origin"`

	// Destination is the arrival place
	Destination string `json:"destination"`

	// DepartureDate is the outbound date in YYYY-MM-DD format
	DepartureDate string `json:"departure_date"`

	// ReturnDate is the optional inbound date in YYYY-MM-DD format.
	// Empty means a one-way search.
	ReturnDate string `json:"return_date,omitempty"`

	// Adults is the number of adult passengers (default: 1)
	Adults int `json:"adults"`

	// FlexDays widens the departure date into a window of ±FlexDays,
	// sweeping one provider call per candidate date (default: 0)
	FlexDays int `json:"flex_days,omitempty"`

	// MaxOriginAirports caps how many resolved origin airports are swept
	// (default: 2)
	MaxOriginAirports int `json:"max_origin_airports,omitempty"`

	// MaxDestinationAirports caps how many resolved destination airports are
	// swept (default: 2)
	MaxDestinationAirports int `json:"max_destination_airports,omitempty"`
}

// Validate checks if the search query is valid.
// Returns a wrapped ErrInvalidRequest error if validation fails.
func (q *SearchQuery) Validate() error {
	if q.Origin == "" {
		return fmt.Errorf("%w: origin is required", ErrInvalidRequest)
	}
	if q.Destination == "" {
		return fmt.Errorf("%w: destination is required", ErrInvalidRequest)
	}
	if q.Origin == q.Destination {
		return fmt.Errorf("%w: origin and destination must be different", ErrInvalidRequest)
	}

	if q.DepartureDate == "" {
		return fmt.Errorf("%w: departure_date is required", ErrInvalidRequest)
	}
	if !dateRegex.MatchString(q.DepartureDate) {
		return fmt.Errorf("%w: departure_date must be in YYYY-MM-DD format, got %q", ErrInvalidRequest, q.DepartureDate)
	}
	departure, err := time.Parse("2006-01-02", q.DepartureDate)
	if err != nil {
		return fmt.Errorf("%w: departure_date is not a valid date: %s", ErrInvalidRequest, q.DepartureDate)
	}

	if q.ReturnDate != "" {
		if !dateRegex.MatchString(q.ReturnDate) {
			return fmt.Errorf("%w: return_date must be in YYYY-MM-DD format, got %q", ErrInvalidRequest, q.ReturnDate)
		}
		ret, err := time.Parse("2006-01-02", q.ReturnDate)
		if err != nil {
			return fmt.Errorf("%w: return_date is not a valid date: %s", ErrInvalidRequest, q.ReturnDate)
		}
		if ret.Before(departure) {
			return fmt.Errorf("%w: return_date must not be before departure_date", ErrInvalidRequest)
		}
	}

	if q.Adults < 1 {
		return fmt.Errorf("%w: adults must be at least 1", ErrInvalidRequest)
	}
	if q.Adults > MaxAdults {
		return fmt.Errorf("%w: adults cannot exceed %d", ErrInvalidRequest, MaxAdults)
	}

	if q.FlexDays < 0 || q.FlexDays > MaxFlexDays {
		return fmt.Errorf("%w: flex_days must be between 0 and %d", ErrInvalidRequest, MaxFlexDays)
	}

	if q.MaxOriginAirports < 1 || q.MaxOriginAirports > MaxAirportsPerPlace {
		return fmt.Errorf("%w: max_origin_airports must be between 1 and %d", ErrInvalidRequest, MaxAirportsPerPlace)
	}
	if q.MaxDestinationAirports < 1 || q.MaxDestinationAirports > MaxAirportsPerPlace {
		return fmt.Errorf("%w: max_destination_airports must be between 1 and %d", ErrInvalidRequest, MaxAirportsPerPlace)
	}

	return nil
}

// SetDefaults applies default values to empty optional fields.
func (q *SearchQuery) SetDefaults() {
	if q.Adults == 0 {
		q.Adults = DefaultAdults
	}
	if q.MaxOriginAirports == 0 {
		q.MaxOriginAirports = DefaultAirportsPerPlace
	}
	if q.MaxDestinationAirports == 0 {
		q.MaxDestinationAirports = DefaultAirportsPerPlace
	}
}

// DepartureDates expands the departure date into the swept window:
// the date itself plus ±FlexDays neighbors, in chronological order.
// An unparsable date yields just the raw value so the provider call still
// carries it (and fails there with a clear error).
func (q *SearchQuery) DepartureDates() []string {
	base, err := time.Parse("2006-01-02", q.DepartureDate)
	if err != nil || q.FlexDays == 0 {
		return []string{q.DepartureDate}
	}

	dates := make([]string, 0, 2*q.FlexDays+1)
	for d := -q.FlexDays; d <= q.FlexDays; d++ {
		dates = append(dates, base.AddDate(0, 0, d).Format("2006-01-02"))
	}
	return dates
}
