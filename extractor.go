package scrapedoc

// LinkResolver extracts detail-page URLs from a listing page.
type LinkResolver interface {
	// ResolveLinks evaluates chain in order and returns the absolute,
	// deduplicated links matched by the first selector that yields any.
	// An empty result is not an error.
	ResolveLinks(html string, baseURL string, chain SelectorChain) ([]string, error)
}

// FieldExtractor builds a Record from a detail page.
type FieldExtractor interface {
	// ExtractFields resolves title, content, author and date for the page.
	// Returns a nil record and nil error when the cleaned content is too
	// short; callers treat that as a skipped item.
	ExtractFields(html string, url string, src *Source) (*Record, error)
}

// ContentExtractor locates the main content of a page without selectors.
type ContentExtractor interface {
	// ExtractContent returns the main content of the page as HTML.
	ExtractContent(html string) (string, error)
}

// Cleaner strips non-content markup from an extracted fragment.
type Cleaner interface {
	// Clean never fails; it returns a best-effort result, or an empty
	// string for empty input.
	Clean(html string) string
}
