// Package amadeus implements the offer source against the Amadeus
// Self-Service flight APIs. It owns OAuth2 token acquisition (with an
// explicit in-process cache), request throttling, and retry; the payloads it
// returns stay raw, shaping them is the normalizer's job.
package amadeus

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/skysweep/skysweep/internal/domain"
	"github.com/skysweep/skysweep/internal/infrastructure/retry"
	"github.com/skysweep/skysweep/internal/infrastructure/timeutil"
	"github.com/skysweep/skysweep/internal/ratelimit"
)

// SourceName is the unique identifier for the Amadeus offer source.
const SourceName = "amadeus"

// tokenSafetyMargin is subtracted from the token lifetime so a token is
// refreshed before it can expire mid-request.
const tokenSafetyMargin = 60 * time.Second

// defaultTokenLifetime applies when the auth response omits expires_in.
const defaultTokenLifetime = 1800 * time.Second

// Config holds the Amadeus client settings.
type Config struct {
	// BaseURL is the API root (test or production environment)
	BaseURL string

	// APIKey and APISecret are the OAuth2 client credentials
	APIKey    string
	APISecret string

	// Currency is the currency code requested for offer prices
	Currency string

	// MaxResults caps offers per search call
	MaxResults int

	// Timeout bounds each HTTP request
	Timeout time.Duration
}

// Client talks to the Amadeus API and implements domain.OfferSource.
type Client struct {
	cfg     Config
	http    *http.Client
	clock   timeutil.Clock
	limiter *ratelimit.SourceLimiter

	mu       sync.Mutex
	token    string
	tokenExp time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithClock overrides the clock used for token expiry decisions.
func WithClock(clock timeutil.Clock) Option {
	return func(c *Client) { c.clock = clock }
}

// WithLimiter attaches a rate limiter consulted before every API call.
func WithLimiter(limiter *ratelimit.SourceLimiter) Option {
	return func(c *Client) { c.limiter = limiter }
}

// WithHTTPClient overrides the underlying HTTP client, for tests.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) { c.http = httpClient }
}

// New creates an Amadeus client.
func New(cfg Config, opts ...Option) *Client {
	if cfg.Currency == "" {
		cfg.Currency = "EUR"
	}
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = 50
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	c := &Client{
		cfg:   cfg,
		http:  &http.Client{Timeout: cfg.Timeout},
		clock: timeutil.NewRealClock(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name implements domain.OfferSource.
func (c *Client) Name() string {
	return SourceName
}

// Search implements domain.OfferSource. It performs one flight-offers call
// for the leg and returns the raw offer records from the response's data
// array. Retries apply to transport errors and retryable statuses only.
func (c *Client) Search(ctx context.Context, leg domain.SearchLeg) ([]domain.RawOffer, error) {
	params := url.Values{}
	params.Set("originLocationCode", leg.Origin)
	params.Set("destinationLocationCode", leg.Destination)
	params.Set("departureDate", leg.DepartureDate)
	if leg.ReturnDate != "" {
		params.Set("returnDate", leg.ReturnDate)
	}
	adults := leg.Adults
	if adults < 1 {
		adults = 1
	}
	params.Set("adults", strconv.Itoa(adults))
	params.Set("currencyCode", c.cfg.Currency)
	params.Set("max", strconv.Itoa(c.cfg.MaxResults))

	cfg := retry.SourceConfig
	cfg.RetryIf = isRetryable

	return retry.DoWithResult(ctx, func() ([]domain.RawOffer, error) {
		body, err := c.get(ctx, "/v2/shopping/flight-offers", params)
		if err != nil {
			return nil, domain.NewSourceError(leg.String(), err)
		}

		var payload struct {
			Data []domain.RawOffer `json:"data"`
		}
		if err := json.Unmarshal(body, &payload); err != nil {
			return nil, domain.NewSourceError(leg.String(), fmt.Errorf("decode offers: %w", err))
		}
		return payload.Data, nil
	}, cfg)
}

// Locations searches the Amadeus airport and city reference data for a
// keyword. It backs up the embedded gazetteer for places it does not know.
func (c *Client) Locations(ctx context.Context, keyword string) ([]domain.Airport, error) {
	params := url.Values{}
	params.Set("keyword", keyword)
	params.Set("subType", "AIRPORT,CITY")

	body, err := c.get(ctx, "/v1/reference-data/locations", params)
	if err != nil {
		return nil, fmt.Errorf("locations %q: %w", keyword, err)
	}

	var payload struct {
		Data []struct {
			IataCode string `json:"iataCode"`
			Name     string `json:"name"`
			Address  struct {
				CityName string `json:"cityName"`
			} `json:"address"`
			GeoCode struct {
				Latitude  float64 `json:"latitude"`
				Longitude float64 `json:"longitude"`
			} `json:"geoCode"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("locations %q: decode: %w", keyword, err)
	}

	airports := make([]domain.Airport, 0, len(payload.Data))
	for _, d := range payload.Data {
		if d.IataCode == "" {
			continue
		}
		airports = append(airports, domain.Airport{
			IATA: d.IataCode,
			Name: d.Name,
			City: d.Address.CityName,
			Lat:  d.GeoCode.Latitude,
			Lon:  d.GeoCode.Longitude,
		})
	}
	return airports, nil
}

// get performs an authenticated GET and returns the response body.
func (c *Client) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx, SourceName); err != nil {
			return nil, err
		}
	}

	token, err := c.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	reqURL := c.cfg.BaseURL + path + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// An unauthorized response means the cached token went stale early;
		// drop it so the next attempt re-authenticates.
		if resp.StatusCode == http.StatusUnauthorized {
			c.invalidateToken()
		}
		return nil, &statusError{status: resp.StatusCode, body: truncate(body, 200)}
	}

	return body, nil
}

// accessToken returns a valid OAuth2 token, reusing the cached one while it
// has more than the safety margin of lifetime left.
func (c *Client) accessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	if c.token != "" && c.tokenExp.Add(-tokenSafetyMargin).After(now) {
		return c.token, nil
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", c.cfg.APIKey)
	form.Set("client_secret", c.cfg.APISecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.cfg.BaseURL+"/v1/security/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("amadeus auth: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("amadeus auth failed with status %d", resp.StatusCode)
	}

	var auth struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&auth); err != nil {
		return "", fmt.Errorf("amadeus auth: decode: %w", err)
	}
	if auth.AccessToken == "" {
		return "", fmt.Errorf("amadeus auth: empty access token")
	}

	lifetime := defaultTokenLifetime
	if auth.ExpiresIn > 0 {
		lifetime = time.Duration(auth.ExpiresIn) * time.Second
	}

	c.token = auth.AccessToken
	c.tokenExp = now.Add(lifetime)
	log.Debug().Time("expires", c.tokenExp).Msg("Amadeus token refreshed")

	return c.token, nil
}

func (c *Client) invalidateToken() {
	c.mu.Lock()
	c.token = ""
	c.mu.Unlock()
}

// statusError is a non-2xx API response.
type statusError struct {
	status int
	body   string
}

func (e *statusError) Error() string {
	if e.body == "" {
		return fmt.Sprintf("amadeus responded %d", e.status)
	}
	return fmt.Sprintf("amadeus responded %d: %s", e.status, e.body)
}

// isRetryable treats rate limiting and server-side failures as transient.
func isRetryable(err error) bool {
	var se *statusError
	if asStatusError(err, &se) {
		return se.status == http.StatusTooManyRequests || se.status >= 500
	}
	// Transport errors (timeouts, resets) are worth one more try.
	return true
}

// asStatusError unwraps err looking for a statusError.
func asStatusError(err error, target **statusError) bool {
	for err != nil {
		if se, ok := err.(*statusError); ok {
			*target = se
			return true
		}
		unwrapper, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = unwrapper.Unwrap()
	}
	return false
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}

// Ensure Client implements domain.OfferSource at compile time.
var _ domain.OfferSource = (*Client)(nil)
