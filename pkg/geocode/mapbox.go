package geocode

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

const mapboxForwardURL = "https://api.mapbox.com/search/geocode/v6/forward"

// mapboxResponse mirrors the relevant parts of the Mapbox v6 forward
// geocode payload.
type mapboxResponse struct {
	Features []struct {
		Properties struct {
			Coordinates struct {
				Latitude  float64 `json:"latitude"`
				Longitude float64 `json:"longitude"`
			} `json:"coordinates"`
		} `json:"properties"`
	} `json:"features"`
}

// Mapbox geocodes via the Mapbox forward geocoding API.
type Mapbox struct {
	httpClient  *http.Client
	baseURL     string
	accessToken string
}

// MapboxOption configures the Mapbox provider.
type MapboxOption func(*Mapbox)

// WithMapboxHTTPClient sets a custom HTTP client.
func WithMapboxHTTPClient(hc *http.Client) MapboxOption {
	return func(m *Mapbox) {
		m.httpClient = hc
	}
}

// WithMapboxBaseURL overrides the forward-geocode endpoint, for tests.
func WithMapboxBaseURL(base string) MapboxOption {
	return func(m *Mapbox) {
		m.baseURL = base
	}
}

// NewMapbox creates a Mapbox provider with the given access token.
func NewMapbox(accessToken string, opts ...MapboxOption) *Mapbox {
	m := &Mapbox{
		httpClient:  defaultHTTPClient(),
		baseURL:     mapboxForwardURL,
		accessToken: accessToken,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Name implements Provider.
func (m *Mapbox) Name() string { return "mapbox" }

// Geocode implements Provider.
func (m *Mapbox) Geocode(ctx context.Context, query string) (*Result, error) {
	params := url.Values{
		"q":            {query},
		"access_token": {m.accessToken},
		"limit":        {"1"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "geocode: mapbox build request")
	}

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "geocode: mapbox request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("geocode: mapbox returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "geocode: mapbox read body")
	}

	var mbResp mapboxResponse
	if err := json.Unmarshal(body, &mbResp); err != nil {
		return nil, eris.Wrap(err, "geocode: mapbox parse response")
	}

	if len(mbResp.Features) == 0 {
		zap.L().Debug("mapbox: no match", zap.String("query", query))
		return &Result{Matched: false}, nil
	}

	coords := mbResp.Features[0].Properties.Coordinates
	return &Result{Latitude: coords.Latitude, Longitude: coords.Longitude, Matched: true}, nil
}
