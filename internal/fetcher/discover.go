package fetcher

import (
	"context"
	"net/url"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/net/html"
)

// discoverKeywords mark a link as a candidate detention statistics
// workbook. A link's relevance is the number of keywords appearing in its
// href or text.
var discoverKeywords = []string{
	"detention", "statistics", "fy25", "ytd", "xlsx", "excel",
	"detentionstats", "fy2025",
}

type scoredLink struct {
	URL   string
	Text  string
	Score int
}

// DiscoverWorkbookURL scans the download page for the most relevant
// workbook link: highest keyword score first, .xlsx links preferred among
// equals. Relative hrefs are resolved against the page URL.
func (f *HTTPFetcher) DiscoverWorkbookURL(ctx context.Context, pageURL string) (string, error) {
	body, err := f.Download(ctx, pageURL)
	if err != nil {
		return "", eris.Wrap(err, "discover: fetch page")
	}
	defer body.Close() //nolint:errcheck

	doc, err := html.Parse(body)
	if err != nil {
		return "", eris.Wrap(err, "discover: parse page")
	}

	base, err := url.Parse(pageURL)
	if err != nil {
		return "", eris.Wrap(err, "discover: parse page url")
	}

	candidates := scoreAnchors(doc, base)
	if len(candidates) == 0 {
		return "", eris.Errorf("discover: no workbook link found on %s", pageURL)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		iXLSX := strings.Contains(strings.ToLower(candidates[i].URL), ".xlsx")
		jXLSX := strings.Contains(strings.ToLower(candidates[j].URL), ".xlsx")
		return iXLSX && !jXLSX
	})

	best := candidates[0]
	zap.L().Info("discovered workbook link",
		zap.String("url", best.URL),
		zap.String("text", best.Text),
		zap.Int("score", best.Score),
	)
	return best.URL, nil
}

func scoreAnchors(doc *html.Node, base *url.URL) []scoredLink {
	var links []scoredLink

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			if href := attrValue(n, "href"); href != "" {
				if link, ok := scoreLink(href, anchorText(n), base); ok {
					links = append(links, link)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return links
}

func scoreLink(href, text string, base *url.URL) (scoredLink, bool) {
	lowerHref := strings.ToLower(href)
	lowerText := strings.ToLower(text)

	score := 0
	for _, kw := range discoverKeywords {
		if strings.Contains(lowerHref, kw) || strings.Contains(lowerText, kw) {
			score++
		}
	}
	if score == 0 {
		return scoredLink{}, false
	}

	ref, err := url.Parse(href)
	if err != nil {
		return scoredLink{}, false
	}

	return scoredLink{
		URL:   base.ResolveReference(ref).String(),
		Text:  strings.TrimSpace(text),
		Score: score,
	}, true
}

func attrValue(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}

func anchorText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}
