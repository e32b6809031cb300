// Package htmltomarkdown converts cleaned HTML fragments into Markdown using
// html-to-markdown with rule overrides for code, quotes, tables and images.
package htmltomarkdown

import (
	"bytes"
	"io"
	"log/slog"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/scrapedoc"
	"golang.org/x/net/html"
)

// noiseSelectors lists non-content containers stripped before conversion.
const noiseSelectors = "script, style, nav, header, footer, aside, .navigation, .nav, .menu, " +
	".sidebar, .ads, .advertisement, .social-share, .comments, .related-posts, " +
	".newsletter-signup, .cookie-notice, .popup, .modal"

// emptySelectors lists elements dropped when they have neither children nor text.
const emptySelectors = "p:empty, div:empty, span:empty"

// removedTags are structural elements the converter itself never renders.
var removedTags = []string{"nav", "header", "footer", "aside", "script", "style", "noscript"}

// Ensure Converter implements scrapedoc.Converter at compile time.
var _ scrapedoc.Converter = (*Converter)(nil)

// Converter wraps html-to-markdown to convert HTML to Markdown.
type Converter struct {
	conv   *converter.Converter
	logger *slog.Logger
}

// Option configures a Converter.
type Option func(*Converter)

// WithLogger sets the logger used to report conversion failures.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Converter) {
		c.logger = logger
	}
}

// NewConverter creates a new Converter.
func NewConverter(opts ...Option) *Converter {
	conv := converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(
				commonmark.WithEmDelimiter("_"),
				commonmark.WithStrongDelimiter("**"),
			),
		),
	)

	for _, tag := range removedTags {
		conv.Register.TagType(tag, converter.TagTypeRemove, converter.PriorityEarly)
	}
	conv.Register.RendererFor("pre", converter.TagTypeBlock, renderCodeBlock, converter.PriorityEarly)
	conv.Register.RendererFor("code", converter.TagTypeInline, renderInlineCode, converter.PriorityEarly)
	conv.Register.RendererFor("blockquote", converter.TagTypeBlock, renderBlockquote, converter.PriorityEarly)
	conv.Register.RendererFor("table", converter.TagTypeBlock, renderTable, converter.PriorityEarly)
	conv.Register.RendererFor("tr", converter.TagTypeBlock, renderTable, converter.PriorityEarly)
	for _, tag := range []string{"th", "td"} {
		conv.Register.RendererFor(tag, converter.TagTypeBlock, renderCell, converter.PriorityEarly)
	}
	conv.Register.RendererFor("img", converter.TagTypeInline, renderImage, converter.PriorityEarly)

	c := &Converter{
		conv:   conv,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Convert transforms HTML content into Markdown. If conversion fails, the
// plain text of the input is returned instead; empty input yields "".
func (c *Converter) Convert(html string) string {
	if strings.TrimSpace(html) == "" {
		return ""
	}

	prepared, err := preprocess(html)
	if err == nil {
		var md string
		md, err = c.conv.ConvertString(prepared)
		if err == nil {
			return PostProcess(md)
		}
	}

	c.logger.Warn("markdown conversion failed, using plain text", "err", err)
	return PlainText(html)
}

// ConvertWithContext converts html and prepends an author byline and a
// source line. The byline is omitted when the body already credits the
// author.
func (c *Converter) ConvertWithContext(html string, byline scrapedoc.Byline) string {
	md := c.Convert(html)
	if byline.Author == "" && byline.URL == "" {
		return md
	}

	var b strings.Builder
	if byline.Author != "" && !strings.Contains(md, "By "+byline.Author) {
		b.WriteString("*By " + byline.Author + "*\n\n")
	}
	if byline.URL != "" {
		b.WriteString("*Source: " + byline.URL + "*\n\n")
	}
	b.WriteString(md)
	return b.String()
}

// PlainText returns the text content of html with all tags stripped,
// or "" if it cannot be parsed.
func PlainText(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	return doc.Text()
}

// preprocess removes non-content containers and empty elements.
func preprocess(raw string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return "", err
	}

	doc.Find(noiseSelectors).Remove()
	doc.Find(emptySelectors).Remove()

	return doc.Find("body").Html()
}

// renderCodeBlock renders <pre> as a fenced block holding its raw text.
func renderCodeBlock(ctx converter.Context, w converter.Writer, n *html.Node) converter.RenderStatus {
	w.WriteString("\n```\n")
	w.WriteString(textContent(n))
	w.WriteString("\n```\n\n")
	return converter.RenderSuccess
}

// renderInlineCode wraps <code> outside <pre> in single backticks.
func renderInlineCode(ctx converter.Context, w converter.Writer, n *html.Node) converter.RenderStatus {
	if hasAncestor(n, "pre") {
		return converter.RenderTryNext
	}
	w.WriteString("`" + textContent(n) + "`")
	return converter.RenderSuccess
}

// renderBlockquote prefixes every line of the rendered children with "> ".
func renderBlockquote(ctx converter.Context, w converter.Writer, n *html.Node) converter.RenderStatus {
	var buf bytes.Buffer
	ctx.RenderChildNodes(ctx, &buf, n)

	content := strings.TrimSpace(buf.String())
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = "> " + line
	}

	w.WriteString("\n\n")
	w.WriteString(strings.Join(lines, "\n"))
	w.WriteString("\n\n")
	return converter.RenderSuccess
}

// renderTable renders the children of a table or row surrounded by blank
// lines, so rows never run together.
func renderTable(ctx converter.Context, w converter.Writer, n *html.Node) converter.RenderStatus {
	w.WriteString("\n\n")
	ctx.RenderChildNodes(ctx, w, n)
	w.WriteString("\n\n")
	return converter.RenderSuccess
}

// renderCell renders a header or data cell as its own paragraph.
func renderCell(ctx converter.Context, w converter.Writer, n *html.Node) converter.RenderStatus {
	var buf bytes.Buffer
	ctx.RenderChildNodes(ctx, &buf, n)

	w.WriteString("\n\n")
	w.WriteString(strings.TrimSpace(buf.String()))
	w.WriteString("\n\n")
	return converter.RenderSuccess
}

// renderImage renders ![alt](src "title"); images without src are dropped.
func renderImage(ctx converter.Context, w converter.Writer, n *html.Node) converter.RenderStatus {
	src := strings.TrimSpace(attr(n, "src"))
	if src == "" {
		return converter.RenderSuccess
	}

	w.WriteString("![" + attr(n, "alt") + "](" + src)
	if title := attr(n, "title"); title != "" {
		w.WriteString(` "` + title + `"`)
	}
	w.WriteString(")")
	return converter.RenderSuccess
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasAncestor(n *html.Node, tag string) bool {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Type == html.ElementNode && p.Data == tag {
			return true
		}
	}
	return false
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}
