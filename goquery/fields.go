package goquery

import (
	"io"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/scrapedoc"
)

// DefaultTitle is used when no title selector matches.
const DefaultTitle = "Untitled"

// minMarkupLength is the trimmed length a markup match must exceed, and the
// trimmed text length a paragraph must exceed to join the combined content.
const minMarkupLength = 20

// paragraphSelector is the last-resort content selector whose matches are
// combined instead of taking only the first.
const paragraphSelector = "p"

// markupHints mark selectors whose matches are returned as inner HTML.
var markupHints = []string{"content", "article", "main", "prose", "markdown"}

// Ensure FieldExtractor implements scrapedoc.FieldExtractor at compile time.
var _ scrapedoc.FieldExtractor = (*FieldExtractor)(nil)

// FieldExtractor resolves record fields from detail pages through
// source-specific selector chains, then generic fallback chains, then
// static defaults.
type FieldExtractor struct {
	cfg      scrapedoc.Config
	cleaner  scrapedoc.Cleaner
	fallback scrapedoc.ContentExtractor
	logger   *slog.Logger
}

// FieldExtractorOption configures a FieldExtractor.
type FieldExtractorOption func(*FieldExtractor)

// WithContentExtractor sets an extractor consulted for content when no
// selector in either chain matches.
func WithContentExtractor(e scrapedoc.ContentExtractor) FieldExtractorOption {
	return func(fe *FieldExtractor) {
		fe.fallback = e
	}
}

// WithLogger sets the logger used for skipped-item diagnostics.
func WithLogger(logger *slog.Logger) FieldExtractorOption {
	return func(fe *FieldExtractor) {
		fe.logger = logger
	}
}

// NewFieldExtractor creates a FieldExtractor using cfg for fallback chains
// and length bounds, and cleaner for content cleanup.
func NewFieldExtractor(cfg scrapedoc.Config, cleaner scrapedoc.Cleaner, opts ...FieldExtractorOption) *FieldExtractor {
	fe := &FieldExtractor{
		cfg:     cfg,
		cleaner: cleaner,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(fe)
	}
	return fe
}

// ExtractFields builds a record for the detail page at url.
// It returns nil, nil when the cleaned content is shorter than the
// configured minimum.
func (e *FieldExtractor) ExtractFields(html string, url string, src *scrapedoc.Source) (*scrapedoc.Record, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, scrapedoc.Errorf(scrapedoc.EINVALID, "failed to parse HTML: %v", err)
	}

	title := firstNonEmpty(
		resolveField(doc, src.Selectors.Title, e.cfg.Fallback.Title),
		DefaultTitle,
	)
	author := firstNonEmpty(
		resolveField(doc, src.Selectors.Author, e.cfg.Fallback.Author),
		src.DefaultAuthor,
	)
	date := resolveField(doc, src.Selectors.Date, e.cfg.Fallback.Date)

	content := resolveField(doc, src.Selectors.Content, e.cfg.Fallback.Content)
	if content == "" && e.fallback != nil {
		if extracted, err := e.fallback.ExtractContent(html); err == nil {
			content = extracted
		} else {
			e.logger.Debug("content fallback failed", "url", url, "err", err)
		}
	}

	cleaned := e.cleaner.Clean(content)
	if n := utf8.RuneCountInString(cleaned); n < e.cfg.Processing.MinContentLength {
		e.logger.Warn("content too short, skipping",
			"url", url,
			"length", n,
			"min", e.cfg.Processing.MinContentLength,
			"title", strings.TrimSpace(title),
			"author", strings.TrimSpace(author),
			"raw_length", utf8.RuneCountInString(content),
			"preview", preview(cleaned, 100),
		)
		return nil, nil
	}

	contentType := src.ContentType
	if contentType == "" {
		contentType = e.cfg.DefaultContentType
	}

	return &scrapedoc.Record{
		Title:       strings.TrimSpace(title),
		Content:     cleaned,
		ContentType: contentType,
		SourceURL:   url,
		Author:      strings.TrimSpace(author),
		Date:        strings.TrimSpace(date),
	}, nil
}

// resolveField evaluates each chain in turn and returns the first match,
// or an empty string.
func resolveField(doc *goquery.Document, chains ...scrapedoc.SelectorChain) string {
	for _, chain := range chains {
		if v, ok := chain.Resolve(func(selector string) (string, bool) {
			return resolveSelector(doc, selector)
		}); ok {
			return v
		}
	}
	return ""
}

// resolveSelector evaluates a single selector. Markup selectors match when
// their inner HTML is longer than minMarkupLength; text selectors match on
// any non-blank text.
func resolveSelector(doc *goquery.Document, selector string) (string, bool) {
	sel := doc.Find(selector)
	if sel.Length() == 0 {
		return "", false
	}

	if !IsMarkupSelector(selector) {
		text := sel.First().Text()
		return text, strings.TrimSpace(text) != ""
	}

	var content string
	if selector == paragraphSelector {
		content = combineParagraphs(sel)
	} else if h, err := sel.First().Html(); err == nil {
		content = h
	}

	if utf8.RuneCountInString(strings.TrimSpace(content)) <= minMarkupLength {
		return "", false
	}
	return content, true
}

// combineParagraphs joins the inner HTML of every substantial paragraph,
// each followed by a blank line, in document order.
func combineParagraphs(sel *goquery.Selection) string {
	var b strings.Builder
	sel.Each(func(_ int, p *goquery.Selection) {
		if utf8.RuneCountInString(strings.TrimSpace(p.Text())) <= minMarkupLength {
			return
		}
		h, err := p.Html()
		if err != nil {
			return
		}
		b.WriteString(h)
		b.WriteString("\n\n")
	})
	return b.String()
}

// IsMarkupSelector reports whether matches of selector are returned as
// markup rather than text. The decision is inferred from the selector string:
// the paragraph selector, or any selector mentioning content, article, main,
// prose or markdown.
func IsMarkupSelector(selector string) bool {
	if selector == paragraphSelector {
		return true
	}
	for _, hint := range markupHints {
		if strings.Contains(selector, hint) {
			return true
		}
	}
	return false
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func preview(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + Ellipsis
}
