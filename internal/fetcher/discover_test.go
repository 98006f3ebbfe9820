package fetcher

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscoverWorkbookURL_PicksHighestScoringLink(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body>
			<a href="/about">About ICE</a>
			<a href="/doclib/reports/annual-report.pdf">Annual Report</a>
			<a href="/doclib/detention/FY25_detentionStats06202025.xlsx">FY25 YTD Detention Statistics (Excel)</a>
			<a href="/doclib/other/detention-factsheet.pdf">Detention Factsheet</a>
		</body></html>`)
	}))
	defer server.Close()

	f := NewHTTPFetcher(HTTPOptions{})
	got, err := f.DiscoverWorkbookURL(context.Background(), server.URL+"/detain/detention-management")
	require.NoError(t, err)
	assert.Equal(t, server.URL+"/doclib/detention/FY25_detentionStats06202025.xlsx", got)
}

func TestDiscoverWorkbookURL_ResolvesRelativeHrefs(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body>
			<a href="files/detentionStats.xlsx">Detention Statistics</a>
		</body></html>`)
	}))
	defer server.Close()

	f := NewHTTPFetcher(HTTPOptions{})
	got, err := f.DiscoverWorkbookURL(context.Background(), server.URL+"/detain/page")
	require.NoError(t, err)
	assert.Equal(t, server.URL+"/detain/files/detentionStats.xlsx", got)
}

func TestDiscoverWorkbookURL_PrefersXLSXAmongEqualScores(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body>
			<a href="/detention-statistics.pdf">detention statistics</a>
			<a href="/detention-statistics.xlsx">detention statistics</a>
		</body></html>`)
	}))
	defer server.Close()

	f := NewHTTPFetcher(HTTPOptions{})
	got, err := f.DiscoverWorkbookURL(context.Background(), server.URL+"/page")
	require.NoError(t, err)
	assert.Equal(t, server.URL+"/detention-statistics.xlsx", got)
}

func TestDiscoverWorkbookURL_NoCandidatesFails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><a href="/about">About</a></body></html>`)
	}))
	defer server.Close()

	f := NewHTTPFetcher(HTTPOptions{})
	_, err := f.DiscoverWorkbookURL(context.Background(), server.URL+"/page")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no workbook link")
}

func TestDiscoverWorkbookURL_PageFetchFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	f := NewHTTPFetcher(HTTPOptions{})
	_, err := f.DiscoverWorkbookURL(context.Background(), server.URL+"/missing")
	require.Error(t, err)
}
