// Package geo resolves UK postcodes to coordinates for the practice search.
// Distance itself is computed store-side so it can drive filtering and
// ordering in one pass.
package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/danbennett239/CI601-sub000/internal/platform/cache"
)

const (
	defaultBaseURL     = "https://api.postcodes.io"
	defaultHTTPTimeout = 8 * time.Second
	geocodeCacheTTL    = 30 * 24 * time.Hour
)

// Coordinates is a geographic point.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// GeocodeError reports a postcode that could not be resolved. It is surfaced
// to the caller as a search error, never swallowed into an empty result.
type GeocodeError struct {
	Postcode string
	Err      error
}

func (e *GeocodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("could not resolve postcode %q: %v", e.Postcode, e.Err)
	}
	return fmt.Sprintf("could not resolve postcode %q", e.Postcode)
}

func (e *GeocodeError) Unwrap() error { return e.Err }

// Geocoder resolves a postcode to coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, postcode string) (Coordinates, error)
}

// Client is a Geocoder backed by a postcodes.io-compatible HTTP API, with an
// optional cache in front of the lookup.
type Client struct {
	baseURL    string
	httpClient *http.Client
	cache      cache.Cache
}

// NewClient creates a geocoding client. baseURL may be empty for the public
// API; c may be nil to disable caching.
func NewClient(baseURL string, c cache.Cache) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
		cache:      c,
	}
}

type postcodeResponse struct {
	Status int `json:"status"`
	Result *struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	} `json:"result"`
	Error string `json:"error"`
}

// Geocode resolves a postcode, consulting the cache first. Cache writes are
// best-effort.
func (c *Client) Geocode(ctx context.Context, postcode string) (Coordinates, error) {
	normalized := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(postcode), " ", ""))
	if normalized == "" {
		return Coordinates{}, &GeocodeError{Postcode: postcode}
	}

	cacheKey := "geo:postcode:" + normalized
	if c.cache != nil {
		if cached, err := c.cache.Get(ctx, cacheKey); err == nil && len(cached) > 0 {
			var coords Coordinates
			if err := json.Unmarshal(cached, &coords); err == nil {
				return coords, nil
			}
		}
	}

	reqURL := c.baseURL + "/postcodes/" + url.PathEscape(normalized)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return Coordinates{}, &GeocodeError{Postcode: postcode, Err: err}
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Coordinates{}, &GeocodeError{Postcode: postcode, Err: err}
	}
	defer resp.Body.Close()

	var body postcodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Coordinates{}, &GeocodeError{Postcode: postcode, Err: err}
	}
	if resp.StatusCode != http.StatusOK || body.Result == nil {
		if body.Error != "" {
			return Coordinates{}, &GeocodeError{Postcode: postcode, Err: fmt.Errorf("%s", body.Error)}
		}
		return Coordinates{}, &GeocodeError{Postcode: postcode, Err: fmt.Errorf("status %d", resp.StatusCode)}
	}

	coords := Coordinates{Latitude: body.Result.Latitude, Longitude: body.Result.Longitude}
	if c.cache != nil {
		if payload, err := json.Marshal(coords); err == nil {
			_ = c.cache.Set(ctx, cacheKey, payload, geocodeCacheTTL)
		}
	}
	return coords, nil
}
