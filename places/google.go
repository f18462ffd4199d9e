// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package places

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/poiesic/wayfinder/core"
	"golang.org/x/time/rate"
)

const (
	defaultBaseURL = "https://maps.googleapis.com/maps/api"
	defaultTimeout = 10 * time.Second
	defaultRadiusM = 30000
)

// GoogleClient talks to the Google Places Autocomplete and Geocoding APIs.
type GoogleClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	bias       core.Coordinate
	radiusM    int
	language   string
	country    string
	logger     *slog.Logger
}

var _ Service = (*GoogleClient)(nil)

// Option configures a GoogleClient.
type Option func(*GoogleClient) error

// WithBaseURL points the client at a different API root.
func WithBaseURL(u string) Option {
	return func(c *GoogleClient) error {
		if _, err := url.Parse(u); err != nil {
			return fmt.Errorf("places: invalid base url: %w", err)
		}
		c.baseURL = u
		return nil
	}
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *GoogleClient) error {
		c.httpClient = client
		return nil
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *GoogleClient) error {
		if d <= 0 {
			return fmt.Errorf("places: timeout must be positive")
		}
		c.httpClient.Timeout = d
		return nil
	}
}

// WithRateLimit limits outgoing requests to rps with the given burst.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *GoogleClient) error {
		if rps <= 0 || burst <= 0 {
			return fmt.Errorf("places: rate limit must be positive")
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
		return nil
	}
}

// WithBias biases autocomplete toward a location.
func WithBias(center core.Coordinate, radiusM int) Option {
	return func(c *GoogleClient) error {
		c.bias = center
		c.radiusM = radiusM
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *GoogleClient) error {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger
		return nil
	}
}

// NewGoogleClient creates a client for the given API key.
func NewGoogleClient(apiKey string, opts ...Option) (*GoogleClient, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	c := &GoogleClient{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
		limiter:    rate.NewLimiter(rate.Every(100*time.Millisecond), 5),
		bias:       core.Coordinate{Lat: 37.5665, Lng: 126.9780},
		radiusM:    defaultRadiusM,
		language:   "ko",
		country:    "kr",
		logger:     slog.Default().With("component", "google-places"),
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

type autocompleteResponse struct {
	Status      string `json:"status"`
	Predictions []struct {
		Description string   `json:"description"`
		PlaceID     string   `json:"place_id"`
		Types       []string `json:"types"`
	} `json:"predictions"`
}

// Autocomplete returns up to limit predictions for input.
// A ZERO_RESULTS answer with a type filter is retried without the filter.
func (c *GoogleClient) Autocomplete(ctx context.Context, input string, limit int, typeFilter string) ([]Prediction, error) {
	if input == "" {
		return nil, nil
	}

	params := url.Values{
		"input":      {input},
		"key":        {c.apiKey},
		"language":   {c.language},
		"components": {"country:" + c.country},
		"location":   {formatLatLng(c.bias)},
		"radius":     {strconv.Itoa(c.radiusM)},
	}
	withTypes := params
	if typeFilter != "" {
		withTypes = cloneValues(params)
		withTypes.Set("types", typeFilter)
	}

	var resp autocompleteResponse
	if err := c.get(ctx, "/place/autocomplete/json", withTypes, &resp); err != nil {
		return nil, err
	}
	if resp.Status == "ZERO_RESULTS" && typeFilter != "" {
		resp = autocompleteResponse{}
		if err := c.get(ctx, "/place/autocomplete/json", params, &resp); err != nil {
			return nil, err
		}
	}
	if resp.Status != "" && resp.Status != "OK" {
		if resp.Status == "ZERO_RESULTS" {
			return nil, nil
		}
		c.logger.Warn("autocomplete returned non-OK status", "input", input, "status", resp.Status)
		return nil, fmt.Errorf("%w: %s", ErrStatus, resp.Status)
	}

	n := max(1, limit)
	out := make([]Prediction, 0, min(n, len(resp.Predictions)))
	for i, p := range resp.Predictions {
		if i >= n {
			break
		}
		out = append(out, Prediction{Description: p.Description, PlaceID: p.PlaceID, Types: p.Types})
	}
	return out, nil
}

type geocodeResponse struct {
	Status  string `json:"status"`
	Results []struct {
		FormattedAddress string `json:"formatted_address"`
		Geometry         struct {
			Location struct {
				Lat *float64 `json:"lat"`
				Lng *float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

// GeocodePlaceID resolves a place id to coordinates.
func (c *GoogleClient) GeocodePlaceID(ctx context.Context, placeID string) (*Geocode, error) {
	if placeID == "" {
		return nil, nil
	}
	return c.geocode(ctx, url.Values{"place_id": {placeID}})
}

// GeocodeAddress resolves a free-text address to coordinates.
func (c *GoogleClient) GeocodeAddress(ctx context.Context, address string) (*Geocode, error) {
	if address == "" {
		return nil, nil
	}
	return c.geocode(ctx, url.Values{"address": {address}})
}

func (c *GoogleClient) geocode(ctx context.Context, params url.Values) (*Geocode, error) {
	params.Set("key", c.apiKey)
	params.Set("language", c.language)

	var resp geocodeResponse
	if err := c.get(ctx, "/geocode/json", params, &resp); err != nil {
		return nil, err
	}
	if resp.Status == "ZERO_RESULTS" || len(resp.Results) == 0 {
		return nil, nil
	}
	if resp.Status != "OK" {
		c.logger.Warn("geocode returned non-OK status", "status", resp.Status)
		return nil, fmt.Errorf("%w: %s", ErrStatus, resp.Status)
	}

	first := resp.Results[0]
	loc := first.Geometry.Location
	if loc.Lat == nil || loc.Lng == nil {
		return nil, nil
	}
	return &Geocode{Lat: *loc.Lat, Lng: *loc.Lng, Address: first.FormattedAddress}, nil
}

func (c *GoogleClient) get(ctx context.Context, path string, params url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("places request failed", "path", path, "err", err)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: http %d", ErrStatus, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("places: decoding %s: %w", path, err)
	}
	return nil
}

func formatLatLng(c core.Coordinate) string {
	return strconv.FormatFloat(c.Lat, 'f', -1, 64) + "," + strconv.FormatFloat(c.Lng, 'f', -1, 64)
}

func cloneValues(v url.Values) url.Values {
	out := make(url.Values, len(v))
	for k, vals := range v {
		out[k] = append([]string(nil), vals...)
	}
	return out
}
