// Package yaml loads the site catalog and global defaults from YAML.
//
// Top-level keys mirror scrapedoc.Config; a "sites" list holds the sources.
// Any key left out keeps its value from scrapedoc.DefaultConfig. Durations
// use Go duration syntax ("30s", "1m"). A selector chain may be written as a
// list or as a single string.
package yaml

import (
	"errors"
	"io"
	"io/fs"
	"os"

	"github.com/fwojciec/scrapedoc"
	"gopkg.in/yaml.v3"
)

// Supported values for processing.contentFallback.
const (
	FallbackNone        = ""
	FallbackTrafilatura = "trafilatura"
	FallbackReadability = "readability"
)

// ellipsis is the truncation marker the content cleaner appends.
const ellipsis = "..."

type catalogFile struct {
	scrapedoc.Config `yaml:",inline"`

	Fallback *selectorsFile `yaml:"fallbackSelectors"`
	Sites    []siteFile     `yaml:"sites"`
}

type siteFile struct {
	Name    string       `yaml:"name"`
	BaseURL string       `yaml:"baseUrl"`
	Sources []sourceFile `yaml:"sources"`
}

type sourceFile struct {
	Name          string        `yaml:"name"`
	URL           string        `yaml:"url"`
	BaseURL       string        `yaml:"baseUrl"`
	Type          string        `yaml:"type"`
	ContentType   string        `yaml:"contentType"`
	DefaultAuthor string        `yaml:"defaultAuthor"`
	Dynamic       bool          `yaml:"dynamic"`
	Selectors     selectorsFile `yaml:"selectors"`
}

type selectorsFile struct {
	Links   chain `yaml:"links"`
	Title   chain `yaml:"title"`
	Content chain `yaml:"content"`
	Author  chain `yaml:"author"`
	Date    chain `yaml:"date"`
}

func (s selectorsFile) selectors() scrapedoc.Selectors {
	return scrapedoc.Selectors{
		Links:   scrapedoc.SelectorChain(s.Links),
		Title:   scrapedoc.SelectorChain(s.Title),
		Content: scrapedoc.SelectorChain(s.Content),
		Author:  scrapedoc.SelectorChain(s.Author),
		Date:    scrapedoc.SelectorChain(s.Date),
	}
}

// chain decodes a selector chain from a sequence or a single scalar.
// A comma-separated scalar stays one selector group.
type chain []string

func (c *chain) UnmarshalYAML(n *yaml.Node) error {
	switch n.Kind {
	case yaml.ScalarNode:
		var s string
		if err := n.Decode(&s); err != nil {
			return err
		}
		*c = nil
		if s != "" {
			*c = chain{s}
		}
		return nil
	case yaml.SequenceNode:
		var ss []string
		if err := n.Decode(&ss); err != nil {
			return err
		}
		*c = ss
		return nil
	default:
		return scrapedoc.Errorf(scrapedoc.EINVALID, "line %d: selector chain must be a string or a list", n.Line)
	}
}

// LoadCatalog reads a catalog from r, overlaying it on the built-in defaults.
// Returns EINVALID if the document cannot be parsed or fails validation.
func LoadCatalog(r io.Reader) (*scrapedoc.Catalog, error) {
	file := catalogFile{Config: scrapedoc.DefaultConfig()}

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		var appErr *scrapedoc.Error
		if errors.As(err, &appErr) {
			return nil, err
		}
		return nil, scrapedoc.Errorf(scrapedoc.EINVALID, "parse catalog: %v", err)
	}

	cfg := file.Config
	if file.Fallback != nil {
		cfg.Fallback = mergeSelectors(cfg.Fallback, file.Fallback.selectors())
	}
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	sites, err := buildSites(file.Sites)
	if err != nil {
		return nil, err
	}

	return &scrapedoc.Catalog{Config: cfg, Sites: sites}, nil
}

// LoadFile reads a catalog from the file at path.
// Returns ENOTFOUND if the file does not exist.
func LoadFile(path string) (*scrapedoc.Catalog, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, scrapedoc.Errorf(scrapedoc.ENOTFOUND, "catalog %s not found", path)
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return LoadCatalog(f)
}

// mergeSelectors replaces each chain of base that override sets.
func mergeSelectors(base, override scrapedoc.Selectors) scrapedoc.Selectors {
	pick := func(b, o scrapedoc.SelectorChain) scrapedoc.SelectorChain {
		if len(o) > 0 {
			return o
		}
		return b
	}
	return scrapedoc.Selectors{
		Links:   pick(base.Links, override.Links),
		Title:   pick(base.Title, override.Title),
		Content: pick(base.Content, override.Content),
		Author:  pick(base.Author, override.Author),
		Date:    pick(base.Date, override.Date),
	}
}

func validateConfig(cfg scrapedoc.Config) error {
	switch {
	case cfg.Request.MaxAttempts < 1:
		return scrapedoc.Errorf(scrapedoc.EINVALID, "request.retries must be at least 1")
	case cfg.Request.Timeout <= 0:
		return scrapedoc.Errorf(scrapedoc.EINVALID, "request.timeout must be positive")
	case cfg.Request.RetryDelay < 0:
		return scrapedoc.Errorf(scrapedoc.EINVALID, "request.retryDelay must not be negative")
	case cfg.PolitenessDelay < 0:
		return scrapedoc.Errorf(scrapedoc.EINVALID, "politenessDelay must not be negative")
	case cfg.Processing.MinContentLength < 0:
		return scrapedoc.Errorf(scrapedoc.EINVALID, "processing.minContentLength must not be negative")
	case cfg.Processing.MaxContentLength > 0 && cfg.Processing.MaxContentLength <= len(ellipsis):
		return scrapedoc.Errorf(scrapedoc.EINVALID, "processing.maxContentLength must exceed %d to leave room for the ellipsis", len(ellipsis))
	case cfg.Processing.MaxContentLength > 0 && cfg.Processing.MaxContentLength < cfg.Processing.MinContentLength:
		return scrapedoc.Errorf(scrapedoc.EINVALID, "processing.maxContentLength must not be below minContentLength")
	case cfg.Render.Width < 0 || cfg.Render.Height < 0:
		return scrapedoc.Errorf(scrapedoc.EINVALID, "render viewport must not be negative")
	}

	switch cfg.Processing.ContentFallback {
	case FallbackNone, FallbackTrafilatura, FallbackReadability:
	default:
		return scrapedoc.Errorf(scrapedoc.EINVALID, "unknown processing.contentFallback %q", cfg.Processing.ContentFallback)
	}

	switch cfg.Output.Format {
	case "json", "markdown":
	default:
		return scrapedoc.Errorf(scrapedoc.EINVALID, "unknown output.format %q", cfg.Output.Format)
	}

	return nil
}

func buildSites(files []siteFile) ([]scrapedoc.Site, error) {
	sites := make([]scrapedoc.Site, 0, len(files))
	seen := make(map[string]bool, len(files))

	for _, sf := range files {
		if sf.Name == "" {
			return nil, scrapedoc.Errorf(scrapedoc.EINVALID, "site name required")
		}
		if seen[sf.Name] {
			return nil, scrapedoc.Errorf(scrapedoc.EINVALID, "duplicate site %q", sf.Name)
		}
		seen[sf.Name] = true

		site := scrapedoc.Site{Name: sf.Name, BaseURL: sf.BaseURL}
		for _, src := range sf.Sources {
			source := scrapedoc.Source{
				Name:          src.Name,
				URL:           src.URL,
				BaseURL:       src.BaseURL,
				Kind:          scrapedoc.SourceKind(src.Type),
				ContentType:   src.ContentType,
				DefaultAuthor: src.DefaultAuthor,
				Dynamic:       src.Dynamic,
				Selectors:     src.Selectors.selectors(),
			}
			if source.BaseURL == "" {
				source.BaseURL = sf.BaseURL
			}
			if source.Kind == "" {
				source.Kind = scrapedoc.KindBlogListing
			}
			if source.Kind != scrapedoc.KindBlogListing && source.Kind != scrapedoc.KindGuideListing {
				return nil, scrapedoc.Errorf(scrapedoc.EINVALID, "source %q: unknown type %q", source.Name, source.Kind)
			}
			if err := source.Validate(); err != nil {
				return nil, err
			}
			site.Sources = append(site.Sources, source)
		}
		sites = append(sites, site)
	}

	return sites, nil
}
