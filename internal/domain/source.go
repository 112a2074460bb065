package domain

import "context"

//go:generate mockgen -source=source.go -destination=mock_source.go -package=domain

// SearchLeg is one (origin, destination, date[, return date]) combination of
// the sweep, handed to the offer source as a single provider call.
type SearchLeg struct {
	// Origin is the 3-letter IATA code of the departure airport
	Origin string

	// Destination is the 3-letter IATA code of the arrival airport
	Destination string

	// DepartureDate is the outbound date in YYYY-MM-DD format
	DepartureDate string

	// ReturnDate is the inbound date; empty for one-way legs
	ReturnDate string

	// Adults is the number of adult passengers
	Adults int
}

// String renders the leg for logs and error messages.
func (l SearchLeg) String() string {
	s := l.Origin + "-" + l.Destination + "@" + l.DepartureDate
	if l.ReturnDate != "" {
		s += "/" + l.ReturnDate
	}
	return s
}

// OfferSource is the external flight-offer search capability. One call covers
// one leg and returns zero or more raw offer records in a provider-specific
// shape; the normalizer owns making sense of them.
type OfferSource interface {
	// Name returns the source's unique identifier for logs and metadata.
	Name() string

	// Search performs the offer search for one leg. Implementations must
	// honor context cancellation.
	Search(ctx context.Context, leg SearchLeg) ([]RawOffer, error)
}

// PlaceResolver maps a free-text place name to a resolved place with ranked
// nearby airports.
type PlaceResolver interface {
	// Resolve returns ErrPlaceNotFound (possibly wrapped) when the name
	// matches no known city, region, or airport.
	Resolve(ctx context.Context, query string) (Place, error)
}
