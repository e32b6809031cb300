package mock

import "github.com/fwojciec/scrapedoc"

// Compile-time interface verification.
var (
	_ scrapedoc.LinkResolver     = (*LinkResolver)(nil)
	_ scrapedoc.FieldExtractor   = (*FieldExtractor)(nil)
	_ scrapedoc.ContentExtractor = (*ContentExtractor)(nil)
	_ scrapedoc.Cleaner          = (*Cleaner)(nil)
)

// LinkResolver is a mock implementation of scrapedoc.LinkResolver.
type LinkResolver struct {
	ResolveLinksFn func(html, baseURL string, chain scrapedoc.SelectorChain) ([]string, error)
}

func (r *LinkResolver) ResolveLinks(html, baseURL string, chain scrapedoc.SelectorChain) ([]string, error) {
	return r.ResolveLinksFn(html, baseURL, chain)
}

// FieldExtractor is a mock implementation of scrapedoc.FieldExtractor.
type FieldExtractor struct {
	ExtractFieldsFn func(html, url string, src *scrapedoc.Source) (*scrapedoc.Record, error)
}

func (e *FieldExtractor) ExtractFields(html, url string, src *scrapedoc.Source) (*scrapedoc.Record, error) {
	return e.ExtractFieldsFn(html, url, src)
}

// ContentExtractor is a mock implementation of scrapedoc.ContentExtractor.
type ContentExtractor struct {
	ExtractContentFn func(html string) (string, error)
}

func (e *ContentExtractor) ExtractContent(html string) (string, error) {
	return e.ExtractContentFn(html)
}

// Cleaner is a mock implementation of scrapedoc.Cleaner.
type Cleaner struct {
	CleanFn func(html string) string
}

func (c *Cleaner) Clean(html string) string {
	return c.CleanFn(html)
}
