// Package geocode provides forward geocoding via OpenStreetMap Nominatim
// (default) and Mapbox (when an access token is available), plus the
// file-backed cache and resolver that enrich facility records.
package geocode

import (
	"context"
	"net/http"
	"time"
)

// Provider represents a single geocoding backend.
type Provider interface {
	Name() string
	Geocode(ctx context.Context, query string) (*Result, error)
}

// Result holds the geocoding output for a query. Matched is false when the
// service answered but found nothing; that is not an error.
type Result struct {
	Latitude  float64
	Longitude float64
	Matched   bool
}

func defaultHTTPClient() *http.Client {
	return &http.Client{Timeout: 15 * time.Second}
}
