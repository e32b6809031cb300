// Package trafilatura locates a page's main content with go-trafilatura.
package trafilatura

import (
	"bytes"
	"strings"

	"github.com/fwojciec/scrapedoc"
	"github.com/markusmobius/go-trafilatura"
	"golang.org/x/net/html"
)

// Ensure Extractor implements scrapedoc.ContentExtractor at compile time.
var _ scrapedoc.ContentExtractor = (*Extractor)(nil)

// Extractor wraps go-trafilatura to extract main content from HTML.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// ExtractContent returns the main content of rawHTML as HTML.
// Returns EINVALID for empty input and ENOTFOUND when no content is detected.
func (e *Extractor) ExtractContent(rawHTML string) (string, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return "", scrapedoc.Errorf(scrapedoc.EINVALID, "empty HTML input")
	}

	opts := trafilatura.Options{
		EnableFallback: true,
	}

	result, err := trafilatura.Extract(strings.NewReader(rawHTML), opts)
	if err != nil {
		return "", err
	}
	if result == nil || result.ContentNode == nil {
		return "", scrapedoc.Errorf(scrapedoc.ENOTFOUND, "no main content found")
	}

	return renderChildren(result.ContentNode)
}

// renderChildren renders the children of n, dropping the wrapper element
// trafilatura builds around the extracted content.
func renderChildren(n *html.Node) (string, error) {
	var buf bytes.Buffer
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}
