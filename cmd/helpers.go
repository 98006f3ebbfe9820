package main

import (
	"time"

	"github.com/lockdown-systems/icewatch/internal/extract"
	"github.com/lockdown-systems/icewatch/internal/fetcher"
	"github.com/lockdown-systems/icewatch/pkg/geocode"
)

func newFetcher(progress bool) fetcher.Fetcher {
	return fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
		UserAgent:    cfg.Fetch.UserAgent,
		Timeout:      time.Duration(cfg.Fetch.TimeoutSecs) * time.Second,
		MaxRetries:   cfg.Fetch.MaxRetries,
		RateLimiters: fetcher.DefaultRateLimiters(),
		Progress:     progress,
	})
}

func extractOptions() extract.Options {
	return extract.Options{
		SheetName: cfg.Extract.SheetName,
		HeaderRow: cfg.Extract.HeaderRow,
	}
}

// geocodeProvider picks Mapbox when an access token is configured and falls
// back to Nominatim otherwise.
func geocodeProvider(userAgent string) geocode.Provider {
	if cfg.Geocode.MapboxToken != "" {
		return geocode.NewMapbox(cfg.Geocode.MapboxToken)
	}
	return geocode.NewNominatim(userAgent)
}

func runTimestamp() string {
	return time.Now().Format("20060102_150405")
}
