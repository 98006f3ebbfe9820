package fetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSourceDateFromURL(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{
			name: "published MMDDYYYY convention",
			url:  "https://www.ice.gov/doclib/detention/FY25_detentionStats06202025.xlsx",
			want: "2025-06-20",
		},
		{
			name: "YYYYMMDD fallback",
			url:  "https://example.com/files/20250620.xlsx",
			want: "2025-06-20",
		},
		{
			name: "two digit year",
			url:  "https://example.com/files/stats010225.xlsx",
			want: "2025-01-02",
		},
		{
			name: "no date in filename",
			url:  "https://example.com/files/detentionStats.xlsx",
			want: "",
		},
		{
			name: "query string ignored",
			url:  "https://www.ice.gov/doclib/FY25_detentionStats06202025.xlsx?cache=1",
			want: "2025-06-20",
		},
		{
			name: "not a workbook",
			url:  "https://example.com/page.html",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SourceDateFromURL(tt.url))
		})
	}
}

func TestDownloadWorkbook_KeepsOriginalFilename(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("workbook-bytes"))
	}))
	defer server.Close()

	f := NewHTTPFetcher(HTTPOptions{})
	dir := t.TempDir()

	path, sourceDate, err := f.DownloadWorkbook(context.Background(),
		server.URL+"/doclib/FY25_detentionStats06202025.xlsx", dir)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "FY25_detentionStats06202025.xlsx"), path)
	assert.Equal(t, "2025-06-20", sourceDate)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "workbook-bytes", string(data))
}

func TestDownloadWorkbook_GeneratesFilenameForOpaqueURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("x"))
	}))
	defer server.Close()

	f := NewHTTPFetcher(HTTPOptions{})
	dir := t.TempDir()

	path, sourceDate, err := f.DownloadWorkbook(context.Background(), server.URL+"/download", dir)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(filepath.Base(path), "ice_detention_stats_"))
	assert.True(t, strings.HasSuffix(path, ".xlsx"))
	assert.Empty(t, sourceDate)
	assert.FileExists(t, path)
}

func TestDownloadWorkbook_CreatesOutputDir(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("x"))
	}))
	defer server.Close()

	f := NewHTTPFetcher(HTTPOptions{})
	dir := filepath.Join(t.TempDir(), "nested", "data")

	path, _, err := f.DownloadWorkbook(context.Background(), server.URL+"/stats.xlsx", dir)
	require.NoError(t, err)
	assert.FileExists(t, path)
}
