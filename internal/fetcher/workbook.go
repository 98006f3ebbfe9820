package fetcher

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Filename date patterns used by published workbooks, e.g.
// FY25_detentionStats06202025.xlsx. MMDDYYYY is the convention; the others
// are fallbacks.
var sourceDatePatterns = []struct {
	re     *regexp.Regexp
	layout string // order of the three capture groups
}{
	{regexp.MustCompile(`(\d{2})(\d{2})(\d{4})\.xlsx$`), "mdy"},
	{regexp.MustCompile(`(\d{4})(\d{2})(\d{2})\.xlsx$`), "ymd"},
	{regexp.MustCompile(`(\d{2})(\d{2})(\d{2})\.xlsx$`), "mdy2"},
}

// SourceDateFromURL extracts the reporting date embedded in the workbook
// filename, as YYYY-MM-DD. Returns "" when no date pattern matches.
func SourceDateFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	filename := path.Base(u.Path)

	for _, p := range sourceDatePatterns {
		m := p.re.FindStringSubmatch(filename)
		if m == nil {
			continue
		}
		var year, month, day string
		switch p.layout {
		case "mdy":
			month, day, year = m[1], m[2], m[3]
		case "ymd":
			year, month, day = m[1], m[2], m[3]
		case "mdy2":
			month, day, year = m[1], m[2], "20"+m[3]
		}
		if month > "12" || month == "00" {
			continue
		}
		return fmt.Sprintf("%s-%s-%s", year, month, day)
	}

	zap.L().Warn("could not extract date from workbook filename", zap.String("filename", filename))
	return ""
}

// DownloadWorkbook downloads the workbook at rawURL into outputDir, keeping
// the original filename when the URL ends in .xlsx and generating a
// timestamped one otherwise. Returns the saved path and the source date
// extracted from the filename.
func (f *HTTPFetcher) DownloadWorkbook(ctx context.Context, rawURL, outputDir string) (string, string, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", "", eris.Wrap(err, "fetch: create output dir")
	}

	sourceDate := SourceDateFromURL(rawURL)

	filename := ""
	if u, err := url.Parse(rawURL); err == nil {
		if base := path.Base(u.Path); strings.HasSuffix(base, ".xlsx") {
			filename = base
		}
	}
	if filename == "" {
		filename = fmt.Sprintf("ice_detention_stats_%s.xlsx", time.Now().Format("20060102_150405"))
	}

	dest := filepath.Join(outputDir, filename)
	zap.L().Info("downloading workbook", zap.String("url", rawURL), zap.String("dest", dest))

	n, err := f.DownloadToFile(ctx, rawURL, dest)
	if err != nil {
		return "", "", eris.Wrap(err, "fetch: download workbook")
	}

	zap.L().Info("workbook downloaded",
		zap.String("path", dest),
		zap.Int64("bytes", n),
		zap.String("source_date", sourceDate),
	)
	return dest, sourceDate, nil
}
