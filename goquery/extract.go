// Package goquery implements link resolution, field extraction and content
// cleaning on top of CSS selectors.
package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/scrapedoc"
)

// schemeMarker separates a URL scheme from the rest of an absolute URL.
const schemeMarker = "://"

// Ensure LinkResolver implements scrapedoc.LinkResolver at compile time.
var _ scrapedoc.LinkResolver = (*LinkResolver)(nil)

// LinkResolver extracts detail-page links from listing pages.
type LinkResolver struct{}

// NewLinkResolver creates a new LinkResolver.
func NewLinkResolver() *LinkResolver {
	return &LinkResolver{}
}

// ResolveLinks tries each selector in chain and returns the links matched by
// the first one that yields at least one acceptable link. Links are
// deduplicated by URL and keep document order of first occurrence.
// When no selector matches, an empty slice is returned.
func (r *LinkResolver) ResolveLinks(html string, baseURL string, chain scrapedoc.SelectorChain) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, scrapedoc.Errorf(scrapedoc.EINVALID, "failed to parse HTML: %v", err)
	}

	links, ok := scrapedoc.ResolveChain(chain, func(selector string) ([]string, bool) {
		links := extractLinks(doc, selector, baseURL)
		return links, len(links) > 0
	})
	if !ok {
		return []string{}, nil
	}
	return links, nil
}

func extractLinks(doc *goquery.Document, selector string, baseURL string) []string {
	seen := make(map[string]struct{})
	var links []string

	doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
		href, exists := sel.Attr("href")
		if !exists {
			return
		}

		link, ok := NormalizeLink(baseURL, href)
		if !ok {
			return
		}

		if _, dup := seen[link]; dup {
			return
		}
		seen[link] = struct{}{}
		links = append(links, link)
	})

	return links
}

// NormalizeLink turns href into an absolute URL relative to baseURL.
// Root-relative hrefs are appended to baseURL, other relative hrefs are
// joined with a slash, and absolute URLs pass through unchanged apart from
// their fragment. It reports false for fragment-only and non-HTTP links
// (mailto:, javascript:, tel:, data:) and for anything still lacking a scheme.
func NormalizeLink(baseURL, href string) (string, bool) {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") || isNonHTTPLink(href) {
		return "", false
	}

	base := strings.TrimRight(baseURL, "/")
	switch {
	case strings.HasPrefix(href, "//"):
		// Protocol-relative URL: borrow the base scheme.
		if i := strings.Index(base, schemeMarker); i >= 0 {
			href = base[:i+1] + href
		}
	case strings.HasPrefix(href, "/"):
		href = base + href
	case !strings.Contains(href, schemeMarker):
		href = base + "/" + href
	}

	// Strip fragment for deduplication
	if i := strings.Index(href, "#"); i >= 0 {
		href = href[:i]
	}

	if !strings.Contains(href, schemeMarker) {
		return "", false
	}
	return href, true
}

// isNonHTTPLink checks if a href is a non-HTTP link that should be skipped.
func isNonHTTPLink(href string) bool {
	href = strings.ToLower(strings.TrimSpace(href))
	return strings.HasPrefix(href, "javascript:") ||
		strings.HasPrefix(href, "mailto:") ||
		strings.HasPrefix(href, "tel:") ||
		strings.HasPrefix(href, "data:")
}
