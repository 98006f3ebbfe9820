package geocode

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lockdown-systems/icewatch/internal/model"
)

// stubProvider serves canned results and records every query it receives.
type stubProvider struct {
	results map[string]*Result
	err     error
	calls   []string
}

func (s *stubProvider) Name() string { return "stub" }

func (s *stubProvider) Geocode(_ context.Context, query string) (*Result, error) {
	s.calls = append(s.calls, query)
	if s.err != nil {
		return nil, s.err
	}
	if r, ok := s.results[query]; ok {
		return r, nil
	}
	return &Result{Matched: false}, nil
}

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	cache, err := LoadCache(filepath.Join(t.TempDir(), "geocode_cache.json"))
	require.NoError(t, err)
	return cache
}

func facility(name, address, city, state, zip string) model.FacilityRecord {
	return model.FacilityRecord{Name: name, Address: address, City: city, State: state, Zip: zip}
}
