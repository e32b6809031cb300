package scrapedoc

import "time"

// DefaultUserAgent identifies requests as a desktop browser.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// Config holds the global defaults shared by every pipeline component.
// Components receive it at construction time.
type Config struct {
	Request    RequestConfig    `yaml:"request"`
	Render     RenderConfig     `yaml:"render"`
	Processing ProcessingConfig `yaml:"processing"`
	Output     OutputConfig     `yaml:"output"`

	// Fallback holds the generic selector chains tried after a source's own.
	// The catalog loader decodes it separately to accept single-string chains.
	Fallback Selectors `yaml:"-"`

	// PolitenessDelay is the pause between consecutive item fetches of a source.
	PolitenessDelay time.Duration `yaml:"politenessDelay"`

	// DefaultContentType is used for sources without a content type.
	DefaultContentType string `yaml:"defaultContentType"`

	// Byline prepends author and source attribution to converted content.
	Byline bool `yaml:"byline"`
}

// RequestConfig configures static page retrieval.
type RequestConfig struct {
	Timeout     time.Duration `yaml:"timeout"`
	MaxAttempts int           `yaml:"retries"`
	RetryDelay  time.Duration `yaml:"retryDelay"`
	UserAgent   string        `yaml:"userAgent"`
}

// RenderConfig configures the dynamic-render collaborator.
type RenderConfig struct {
	Timeout time.Duration `yaml:"timeout"`
	Width   int           `yaml:"width"`
	Height  int           `yaml:"height"`
}

// ProcessingConfig bounds and cleans extracted content.
type ProcessingConfig struct {
	MinContentLength int          `yaml:"minContentLength"`
	MaxContentLength int          `yaml:"maxContentLength"`
	Cleanup          CleanupRules `yaml:"cleanupRules"`

	// ContentFallback names the selector-free extractor consulted when no
	// content selector matches: "trafilatura", "readability", or empty to
	// disable it.
	ContentFallback string `yaml:"contentFallback"`
}

// OutputConfig controls where and how records are written.
type OutputConfig struct {
	Dir      string `yaml:"dir"`
	Filename string `yaml:"filename"`
	// Format is "json" for a single record array or "markdown" for a file tree.
	Format string `yaml:"format"`
	Pretty bool   `yaml:"prettyPrint"`
}

// CleanupRules toggles individual cleaner steps.
type CleanupRules struct {
	RemoveEmptyParagraphs bool `yaml:"removeEmptyParagraphs"`
	CollapseWhitespace    bool `yaml:"removeExcessiveWhitespace"`
	RemoveNavigation      bool `yaml:"removeNavigationElements"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		Request: RequestConfig{
			Timeout:     30 * time.Second,
			MaxAttempts: 3,
			RetryDelay:  1 * time.Second,
			UserAgent:   DefaultUserAgent,
		},
		Render: RenderConfig{
			Timeout: 30 * time.Second,
			Width:   1200,
			Height:  800,
		},
		Processing: ProcessingConfig{
			MinContentLength: 50,
			MaxContentLength: 50000,
			Cleanup: CleanupRules{
				RemoveEmptyParagraphs: true,
				CollapseWhitespace:    true,
				RemoveNavigation:      true,
			},
		},
		Output: OutputConfig{
			Dir:      "./data",
			Filename: "scraped_content.json",
			Format:   "json",
			Pretty:   true,
		},
		Fallback:           DefaultFallbackSelectors(),
		PolitenessDelay:    1 * time.Second,
		DefaultContentType: "other",
	}
}

// DefaultFallbackSelectors returns the generic selector chains used for
// sites without a matching site-specific selector.
func DefaultFallbackSelectors() Selectors {
	return Selectors{
		Title: SelectorChain{"h1", ".post-title", ".entry-title", ".article-title", "title"},
		Content: SelectorChain{
			"[data-testid='post-content']",
			".prose",
			".markdown",
			".blog-content",
			".article-content",
			".post-content",
			".entry-content",
			"article",
			".content",
			"main",
			".post-body",
			"p",
		},
		Author: SelectorChain{".author", ".post-author", ".by-author", `[rel="author"]`, `[class*="author"]`},
	}
}
