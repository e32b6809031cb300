package scrapedoc

// SourceKind describes what a source's listing page enumerates.
type SourceKind string

// Supported source kinds.
const (
	KindBlogListing  SourceKind = "blog_listing"
	KindGuideListing SourceKind = "guide_listing"
)

// SelectorChain is an ordered list of CSS selectors tried in sequence for a
// single extraction target. Order is significant.
type SelectorChain []string

// Resolve evaluates try for each selector in order and returns the first
// matched value. Selectors after the first match are never evaluated.
func (c SelectorChain) Resolve(try func(selector string) (string, bool)) (string, bool) {
	return ResolveChain(c, try)
}

// ResolveChain is the generic form of SelectorChain.Resolve.
func ResolveChain[T any](c SelectorChain, try func(selector string) (T, bool)) (T, bool) {
	for _, selector := range c {
		if v, ok := try(selector); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}

// Selectors groups the selector chains used to scrape a source.
type Selectors struct {
	Links   SelectorChain `json:"links"`
	Title   SelectorChain `json:"title"`
	Content SelectorChain `json:"content"`
	Author  SelectorChain `json:"author"`
	Date    SelectorChain `json:"date"`
}

// Source identifies a scraping target: a listing page whose links lead to
// detail pages. Sources are loaded once from configuration and never mutated.
type Source struct {
	Name          string     `json:"name"`
	URL           string     `json:"url"`
	BaseURL       string     `json:"baseUrl"`
	Kind          SourceKind `json:"type"`
	ContentType   string     `json:"contentType"`
	DefaultAuthor string     `json:"defaultAuthor"`

	// Dynamic marks sources whose pages need JavaScript rendering.
	Dynamic bool `json:"dynamic"`

	Selectors Selectors `json:"selectors"`
}

// Validate returns an error if the source contains invalid fields.
func (s *Source) Validate() error {
	if s.Name == "" {
		return Errorf(EINVALID, "source name required")
	}
	if s.URL == "" {
		return Errorf(EINVALID, "source %q: listing URL required", s.Name)
	}
	if s.BaseURL == "" {
		return Errorf(EINVALID, "source %q: base URL required", s.Name)
	}
	if len(s.Selectors.Links) == 0 {
		return Errorf(EINVALID, "source %q: at least one link selector required", s.Name)
	}
	return nil
}

// Site groups the sources scraped from a single host.
type Site struct {
	Name    string   `json:"name"`
	BaseURL string   `json:"baseUrl"`
	Sources []Source `json:"sources"`
}

// Catalog is the full configuration consumed by the pipeline: global defaults
// plus every configured site.
type Catalog struct {
	Config Config
	Sites  []Site
}

// FindSite returns the site with the given name.
// Returns ENOTFOUND if no site matches.
func (c *Catalog) FindSite(name string) (*Site, error) {
	for i := range c.Sites {
		if c.Sites[i].Name == name {
			return &c.Sites[i], nil
		}
	}
	return nil, Errorf(ENOTFOUND, "site %q not found", name)
}
