package geocode

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

const nominatimSearchURL = "https://nominatim.openstreetmap.org/search"

// nominatimResult is one element of the Nominatim search response. The API
// returns coordinates as strings.
type nominatimResult struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

// Nominatim geocodes via the public OpenStreetMap Nominatim API. The usage
// policy requires an identifying User-Agent on every request and at most one
// request per second per client; pacing is the caller's responsibility.
type Nominatim struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
}

// NominatimOption configures the Nominatim provider.
type NominatimOption func(*Nominatim)

// WithNominatimHTTPClient sets a custom HTTP client.
func WithNominatimHTTPClient(hc *http.Client) NominatimOption {
	return func(n *Nominatim) {
		n.httpClient = hc
	}
}

// WithNominatimBaseURL overrides the search endpoint, for tests.
func WithNominatimBaseURL(base string) NominatimOption {
	return func(n *Nominatim) {
		n.baseURL = base
	}
}

// NewNominatim creates a Nominatim provider. userAgent identifies this
// client to the service and must not be empty.
func NewNominatim(userAgent string, opts ...NominatimOption) *Nominatim {
	n := &Nominatim{
		httpClient: defaultHTTPClient(),
		baseURL:    nominatimSearchURL,
		userAgent:  userAgent,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Name implements Provider.
func (n *Nominatim) Name() string { return "nominatim" }

// Geocode implements Provider.
func (n *Nominatim) Geocode(ctx context.Context, query string) (*Result, error) {
	if n.userAgent == "" {
		return nil, eris.New("geocode: nominatim requires an identifying user agent")
	}

	params := url.Values{
		"q":      {query},
		"format": {"json"},
		"limit":  {"1"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, n.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "geocode: nominatim build request")
	}
	req.Header.Set("User-Agent", n.userAgent)

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "geocode: nominatim request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("geocode: nominatim returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "geocode: nominatim read body")
	}

	var results []nominatimResult
	if err := json.Unmarshal(body, &results); err != nil {
		return nil, eris.Wrap(err, "geocode: nominatim parse response")
	}

	if len(results) == 0 {
		zap.L().Debug("nominatim: no match", zap.String("query", query))
		return &Result{Matched: false}, nil
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return nil, eris.Wrap(err, "geocode: nominatim parse lat")
	}
	lon, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return nil, eris.Wrap(err, "geocode: nominatim parse lon")
	}

	return &Result{Latitude: lat, Longitude: lon, Matched: true}, nil
}
