package domain

// Airport is one airport candidate attached to a resolved place, ranked by
// distance from the place's coordinates.
type Airport struct {
	// IATA is the 3-letter airport code (e.g., "MAD")
	IATA string `json:"iata"`

	// Name is the full airport name
	Name string `json:"name"`

	// City is the city the airport serves
	City string `json:"city,omitempty"`

	// Lat and Lon are the airport coordinates in decimal degrees
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`

	// DistanceKm is the great-circle distance from the resolved place,
	// rounded to one decimal.
	DistanceKm float64 `json:"distance_km"`
}

// Place is a free-text place name resolved to coordinates plus a ranked list
// of nearby airports. The search pipeline consumes only the airport codes.
type Place struct {
	// Label is the canonical place name (e.g., "Pamplona")
	Label string `json:"label"`

	// Lat and Lon are the place coordinates in decimal degrees
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`

	// Airports is the nearest-first list of airport candidates. Never empty
	// for a successfully resolved place.
	Airports []Airport `json:"airports"`
}

// AirportCodes returns up to max airport codes, nearest first. A max of 0 or
// less returns every code.
func (p Place) AirportCodes(max int) []string {
	codes := make([]string, 0, len(p.Airports))
	for _, a := range p.Airports {
		if max > 0 && len(codes) >= max {
			break
		}
		codes = append(codes, a.IATA)
	}
	return codes
}
