// Package integration provides helpers and integration tests for the offer
// search system. Integration tests verify that components work together
// correctly: HTTP handlers, the sweep use case, the place resolver, and mock
// offer sources.
package integration

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	httpAdapter "github.com/skysweep/skysweep/internal/adapter/http"
	"github.com/skysweep/skysweep/internal/domain"
	"github.com/skysweep/skysweep/internal/policy"
	"github.com/skysweep/skysweep/internal/resolver"
	"github.com/skysweep/skysweep/internal/usecase"
)

// TestServer wraps an Echo instance and provides helper methods for integration testing.
type TestServer struct {
	Echo    *echo.Echo
	Handler *httpAdapter.OfferHandler
}

// NewTestServer creates a test server wiring the real resolver and policy
// around the given offer source.
func NewTestServer(source domain.OfferSource) *TestServer {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	gazetteer := resolver.New()
	pol := policy.Default()
	uc := usecase.NewSearchUseCase(source, gazetteer, nil, pol, nil, zerolog.Nop())

	handler := httpAdapter.NewOfferHandler(uc, gazetteer, gazetteer, pol)
	httpAdapter.RegisterRoutes(e, handler)

	return &TestServer{
		Echo:    e,
		Handler: handler,
	}
}

// Request represents a test HTTP request configuration.
type Request struct {
	Method      string
	Path        string
	Body        interface{}
	ContentType string
}

// Response represents a test HTTP response.
type Response struct {
	Code    int
	Body    []byte
	Headers http.Header
}

// Do executes a test request and returns the response.
func (ts *TestServer) Do(req Request) Response {
	var bodyReader *bytes.Reader
	if req.Body != nil {
		bodyBytes, _ := json.Marshal(req.Body)
		bodyReader = bytes.NewReader(bodyBytes)
	} else {
		bodyReader = bytes.NewReader(nil)
	}

	httpReq := httptest.NewRequest(req.Method, req.Path, bodyReader)

	if req.ContentType != "" {
		httpReq.Header.Set(echo.HeaderContentType, req.ContentType)
	} else if req.Body != nil {
		httpReq.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}

	rec := httptest.NewRecorder()
	ts.Echo.ServeHTTP(rec, httpReq)

	return Response{
		Code:    rec.Code,
		Body:    rec.Body.Bytes(),
		Headers: rec.Header(),
	}
}

// SearchRequest posts a search request body.
func (ts *TestServer) SearchRequest(body interface{}) Response {
	return ts.Do(Request{
		Method: http.MethodPost,
		Path:   "/api/v1/offers/search",
		Body:   body,
	})
}

// PlanRequest posts a plan request body.
func (ts *TestServer) PlanRequest(body interface{}) Response {
	return ts.Do(Request{
		Method: http.MethodPost,
		Path:   "/api/v1/offers/plan",
		Body:   body,
	})
}

// HealthRequest makes a health check request.
func (ts *TestServer) HealthRequest() Response {
	return ts.Do(Request{
		Method: http.MethodGet,
		Path:   "/health",
	})
}

// ParseSearchResult parses the response body as a SearchResult.
func (r *Response) ParseSearchResult() (*usecase.SearchResult, error) {
	var result usecase.SearchResult
	if err := json.Unmarshal(r.Body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ParseError parses the response body to extract error information.
func (r *Response) ParseError() (map[string]interface{}, error) {
	var errResp map[string]interface{}
	if err := json.Unmarshal(r.Body, &errResp); err != nil {
		return nil, err
	}
	return errResp, nil
}

// SearchRequestBody is a helper struct for building search request bodies.
type SearchRequestBody struct {
	Origin                 string `json:"origin"`
	Destination            string `json:"destination"`
	DepartureDate          string `json:"departure_date"`
	ReturnDate             string `json:"return_date,omitempty"`
	Adults                 int    `json:"adults,omitempty"`
	FlexDays               int    `json:"flex_days,omitempty"`
	MaxOriginAirports      int    `json:"max_origin_airports,omitempty"`
	MaxDestinationAirports int    `json:"max_destination_airports,omitempty"`
}

// DefaultSearchRequest returns a valid one-leg search request body. Airport
// caps of 1 keep the sweep to exactly one MAD-BCN leg, which makes source
// expectations deterministic.
func DefaultSearchRequest() SearchRequestBody {
	return SearchRequestBody{
		Origin:                 "Madrid",
		Destination:            "Barcelona",
		DepartureDate:          "2026-10-01",
		MaxOriginAirports:      1,
		MaxDestinationAirports: 1,
	}
}

// DefaultQuery returns the matching domain query for driving the use case
// directly.
func DefaultQuery() domain.SearchQuery {
	return domain.SearchQuery{
		Origin:                 "Madrid",
		Destination:            "Barcelona",
		DepartureDate:          "2026-10-01",
		MaxOriginAirports:      1,
		MaxDestinationAirports: 1,
	}
}

// CreateSweep creates a sweep use case over the real resolver and default
// policy with the given source and configuration.
func CreateSweep(source domain.OfferSource, config *usecase.Config) usecase.SearchUseCase {
	return usecase.NewSearchUseCase(source, resolver.New(), nil, policy.Default(), config, zerolog.Nop())
}
