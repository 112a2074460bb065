package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the domain and use case layers.
// Callers match on them with errors.Is to decide the HTTP status.
var (
	// ErrInvalidRequest indicates the caller supplied invalid search input.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrPlaceNotFound indicates the resolver could not map a place name to
	// any known city or airport.
	ErrPlaceNotFound = errors.New("place not found")

	// ErrAllSearchesFailed indicates every leg of the offer-source sweep
	// failed, leaving nothing to normalize.
	ErrAllSearchesFailed = errors.New("all offer searches failed")
)

// SourceError wraps an error from the external offer source with the leg
// that produced it, so partial sweep failures stay attributable in logs.
type SourceError struct {
	// Leg describes the (origin, destination, date) combination that failed.
	Leg string

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *SourceError) Error() string {
	return fmt.Sprintf("offer source leg %s: %v", e.Leg, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As chains.
func (e *SourceError) Unwrap() error {
	return e.Err
}

// NewSourceError creates a SourceError for the given leg.
func NewSourceError(leg string, err error) *SourceError {
	return &SourceError{Leg: leg, Err: err}
}
