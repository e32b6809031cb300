package goquery

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/scrapedoc"
)

// Ellipsis marks truncated content.
const Ellipsis = "..."

// alwaysRemoved lists elements that never carry content.
const alwaysRemoved = "script, style"

// navigationSelectors lists page chrome removed when navigation cleanup is on.
const navigationSelectors = "nav, footer, header, .navigation, .nav, .menu"

var (
	whitespaceRe     = regexp.MustCompile(`\s+`)
	emptyParagraphRe = regexp.MustCompile(`<p>\s*</p>`)
)

// Ensure Cleaner implements scrapedoc.Cleaner at compile time.
var _ scrapedoc.Cleaner = (*Cleaner)(nil)

// Cleaner strips non-content markup from extracted fragments and enforces
// the maximum content length.
type Cleaner struct {
	rules     scrapedoc.CleanupRules
	maxLength int
}

// NewCleaner creates a Cleaner from the processing configuration.
// A non-positive MaxContentLength disables truncation.
func NewCleaner(cfg scrapedoc.ProcessingConfig) *Cleaner {
	return &Cleaner{
		rules:     cfg.Cleanup,
		maxLength: cfg.MaxContentLength,
	}
}

// Clean removes denylisted elements, collapses whitespace, drops empty
// paragraphs and finally truncates to the maximum length. Length is counted
// in runes and includes the ellipsis, which is appended only on truncation.
func (c *Cleaner) Clean(html string) string {
	if strings.TrimSpace(html) == "" {
		return ""
	}

	cleaned := c.strip(html)

	if c.rules.CollapseWhitespace {
		cleaned = whitespaceRe.ReplaceAllString(cleaned, " ")
	}
	if c.rules.RemoveEmptyParagraphs {
		cleaned = emptyParagraphRe.ReplaceAllString(cleaned, "")
	}

	return Truncate(strings.TrimSpace(cleaned), c.maxLength)
}

// strip removes denylisted elements. On parse failure the input is returned
// unchanged.
func (c *Cleaner) strip(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return html
	}

	doc.Find(alwaysRemoved).Remove()
	if c.rules.RemoveNavigation {
		doc.Find(navigationSelectors).Remove()
	}

	out, err := doc.Find("body").Html()
	if err != nil {
		return html
	}
	return out
}

// Truncate caps s at max runes, replacing the tail with Ellipsis when s is
// longer. A non-positive max returns s unchanged.
func Truncate(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}

	runes := []rune(s)
	keep := max - len(Ellipsis)
	if keep <= 0 {
		// No room for text; the ellipsis itself is cut to fit.
		return Ellipsis[:max]
	}
	return string(runes[:keep]) + Ellipsis
}
