package geocode

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapbox_Success(t *testing.T) {
	var gotToken, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.URL.Query().Get("access_token")
		gotQuery = r.URL.Query().Get("q")
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{
			"features": [{
				"properties": {
					"coordinates": {"latitude": 39.7817213, "longitude": -89.6501481}
				}
			}]
		}`)
	}))
	defer srv.Close()

	m := NewMapbox("pk.test-token", WithMapboxBaseURL(srv.URL), WithMapboxHTTPClient(srv.Client()))

	result, err := m.Geocode(context.Background(), "123 main st, springfield, il, 62701")
	require.NoError(t, err)
	assert.True(t, result.Matched)
	assert.InDelta(t, 39.7817213, result.Latitude, 0.0000001)
	assert.InDelta(t, -89.6501481, result.Longitude, 0.0000001)
	assert.Equal(t, "pk.test-token", gotToken)
	assert.Equal(t, "123 main st, springfield, il, 62701", gotQuery)
}

func TestMapbox_NoFeaturesIsUnmatched(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"features": []}`)
	}))
	defer srv.Close()

	m := NewMapbox("pk.test-token", WithMapboxBaseURL(srv.URL))

	result, err := m.Geocode(context.Background(), "1 unknown rd")
	require.NoError(t, err)
	assert.False(t, result.Matched)
}

func TestMapbox_UnauthorizedFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	m := NewMapbox("bad-token", WithMapboxBaseURL(srv.URL))

	_, err := m.Geocode(context.Background(), "anywhere")
	require.Error(t, err)
}

func TestMapbox_Name(t *testing.T) {
	assert.Equal(t, "mapbox", NewMapbox("tok").Name())
}
