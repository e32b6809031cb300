// Package readability locates a page's main content with go-readability.
package readability

import (
	"strings"

	"github.com/fwojciec/scrapedoc"
	"github.com/go-shiori/go-readability"
)

// Ensure Extractor implements scrapedoc.ContentExtractor at compile time.
var _ scrapedoc.ContentExtractor = (*Extractor)(nil)

// Extractor wraps go-readability to extract main content from HTML.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// ExtractContent returns the readable article body of rawHTML as HTML.
// Returns EINVALID for empty input and ENOTFOUND when no article is detected.
func (e *Extractor) ExtractContent(rawHTML string) (string, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return "", scrapedoc.Errorf(scrapedoc.EINVALID, "empty HTML input")
	}

	article, err := readability.FromReader(strings.NewReader(rawHTML), nil)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(article.Content) == "" {
		return "", scrapedoc.Errorf(scrapedoc.ENOTFOUND, "no readable content found")
	}

	return article.Content, nil
}
