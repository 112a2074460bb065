// Package http provides the HTTP handler layer for the offer search API.
// It handles request parsing, validation, response formatting, and error mapping.
package http

import (
	"context"
	"errors"

	"github.com/labstack/echo/v4"

	"github.com/skysweep/skysweep/internal/adapter/http/response"
	"github.com/skysweep/skysweep/internal/domain"
	"github.com/skysweep/skysweep/internal/usecase"
)

// maxBestIDs caps the shortlist returned by the plan endpoint.
const maxBestIDs = 3

// AirportLister exposes the full airport table backing the resolver.
type AirportLister interface {
	Airports() []domain.Airport
}

// OfferHandler handles HTTP requests for offer-related endpoints.
type OfferHandler struct {
	search   usecase.SearchUseCase
	resolver domain.PlaceResolver
	airports AirportLister
	policy   domain.Policy
}

// NewOfferHandler creates a new OfferHandler.
func NewOfferHandler(search usecase.SearchUseCase, resolver domain.PlaceResolver, airports AirportLister, policy domain.Policy) *OfferHandler {
	return &OfferHandler{
		search:   search,
		resolver: resolver,
		airports: airports,
		policy:   policy,
	}
}

// SearchOffers handles POST /api/v1/offers/search
//
// @Summary Search for flight offers
// @Description Resolves both places, sweeps the offer source across nearby airports and flexible dates, and returns normalized offers ranked under the travel policy
// @Tags offers
// @Accept json
// @Produce json
// @Param request body SearchOffersRequest true "Search parameters"
// @Success 200 {object} usecase.SearchResult
// @Failure 400 {object} response.ErrorDetail "Validation error"
// @Failure 404 {object} response.ErrorDetail "Place not found"
// @Failure 503 {object} response.ErrorDetail "All sweep legs failed"
// @Failure 504 {object} response.ErrorDetail "Gateway timeout"
// @Router /api/v1/offers/search [post]
func (h *OfferHandler) SearchOffers(c echo.Context) error {
	var req SearchOffersRequest

	if err := c.Bind(&req); err != nil {
		return response.InvalidRequestBody(c)
	}

	if err := req.Validate(); err != nil {
		return h.handleValidationError(c, err)
	}

	result, err := h.search.Search(c.Request().Context(), req.ToQuery())
	if err != nil {
		return h.handleError(c, err)
	}

	return response.SearchResults(c, result)
}

// PlanResult is the response body of the plan endpoint.
type PlanResult struct {
	// Offers is the full ranked list, best first
	Offers []usecase.Ranked `json:"offers"`

	// BestIDs is a shortlist of the top offer ids
	BestIDs []string `json:"best_ids"`

	// Reason is a short plain-language ranking rationale
	Reason string `json:"reason_short"`

	// Infeasible counts offers dropped by the transfer limit
	Infeasible int `json:"infeasible"`
}

// PlanOffers handles POST /api/v1/offers/plan
//
// @Summary Rank caller-supplied offers
// @Description Normalizes and ranks raw offer records already in hand, without calling the offer source. Weights and limits may override the configured policy per request.
// @Tags offers
// @Accept json
// @Produce json
// @Param request body PlanOffersRequest true "Raw offers plus optional policy overrides"
// @Success 200 {object} PlanResult
// @Failure 400 {object} response.ErrorDetail "Validation error"
// @Router /api/v1/offers/plan [post]
func (h *OfferHandler) PlanOffers(c echo.Context) error {
	var req PlanOffersRequest

	if err := c.Bind(&req); err != nil {
		return response.InvalidRequestBody(c)
	}

	if err := req.Validate(); err != nil {
		return h.handleValidationError(c, err)
	}

	policy := req.Policy(h.policy)

	offers := usecase.Normalize(req.Offers)
	feasible := make([]domain.Offer, 0, len(offers))
	for _, o := range offers {
		if policy.Feasible(o) {
			feasible = append(feasible, o)
		}
	}

	ranked := usecase.Rank(feasible, policy)

	best := make([]string, 0, maxBestIDs)
	for _, r := range ranked {
		if len(best) == maxBestIDs {
			break
		}
		best = append(best, r.ID)
	}

	return response.OK(c, &PlanResult{
		Offers:     ranked,
		BestIDs:    best,
		Reason:     usecase.Explain(policy),
		Infeasible: len(offers) - len(feasible),
	})
}

// ResolvePlace handles GET /api/v1/places/resolve
//
// @Summary Resolve a place name
// @Description Maps a free-text city, region, or IATA code to coordinates and a nearest-first airport list
// @Tags places
// @Produce json
// @Param q query string true "Place name (e.g., Navarra, Madrid, MAD)"
// @Success 200 {object} domain.Place
// @Failure 400 {object} response.ErrorDetail "Missing query"
// @Failure 404 {object} response.ErrorDetail "Place not found"
// @Router /api/v1/places/resolve [get]
func (h *OfferHandler) ResolvePlace(c echo.Context) error {
	query := c.QueryParam("q")
	if query == "" {
		return response.BadRequest(c, "query parameter q is required")
	}

	place, err := h.resolver.Resolve(c.Request().Context(), query)
	if err != nil {
		return h.handleError(c, err)
	}

	return response.OK(c, place)
}

// ListAirports handles GET /api/v1/places/airports
//
// @Summary List known airports
// @Description Returns the full airport table used for place resolution
// @Tags places
// @Produce json
// @Success 200 {array} domain.Airport
// @Router /api/v1/places/airports [get]
func (h *OfferHandler) ListAirports(c echo.Context) error {
	return response.OK(c, h.airports.Airports())
}

// handleValidationError handles validation errors and returns a 400 response.
func (h *OfferHandler) handleValidationError(c echo.Context, err error) error {
	var validationErrs *ValidationErrors
	if errors.As(err, &validationErrs) {
		return response.ValidationError(c, validationErrs.ToMap())
	}

	// Fallback for non-structured validation errors
	return response.ValidationErrorWithMessage(c, err.Error())
}

// handleError maps domain errors to appropriate HTTP responses.
func (h *OfferHandler) handleError(c echo.Context, err error) error {
	if errors.Is(err, domain.ErrPlaceNotFound) {
		return response.NotFound(c, err.Error())
	}

	if errors.Is(err, domain.ErrAllSearchesFailed) {
		return response.ServiceUnavailable(c)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return response.GatewayTimeout(c)
	}

	if errors.Is(err, context.Canceled) {
		return response.RequestCancelled(c)
	}

	if errors.Is(err, domain.ErrInvalidRequest) {
		return response.ValidationErrorWithMessage(c, err.Error())
	}

	return response.InternalServerError(c)
}

// Health handles GET /health
// Simple health check endpoint.
func (h *OfferHandler) Health(c echo.Context) error {
	return response.Health(c)
}
