package fetcher

import (
	"context"
	"io"
)

// Fetcher is the workbook acquisition surface the commands run against.
// Tests substitute a fake to drive the pipeline without a live site.
type Fetcher interface {
	// Download fetches the URL and returns the response body.
	Download(ctx context.Context, url string) (io.ReadCloser, error)

	// DownloadToFile fetches the URL and writes it to the given path.
	// Returns bytes written.
	DownloadToFile(ctx context.Context, url string, path string) (int64, error)

	// DiscoverWorkbookURL scans the download page for the most relevant
	// workbook link.
	DiscoverWorkbookURL(ctx context.Context, pageURL string) (string, error)

	// DownloadWorkbook downloads the workbook into outputDir, returning
	// the saved path and the source date from the filename.
	DownloadWorkbook(ctx context.Context, url, outputDir string) (string, string, error)
}

var _ Fetcher = (*HTTPFetcher)(nil)
