package mock

import "github.com/fwojciec/scrapedoc"

var _ scrapedoc.Converter = (*Converter)(nil)

// Converter is a mock implementation of scrapedoc.Converter.
type Converter struct {
	ConvertFn            func(html string) string
	ConvertWithContextFn func(html string, byline scrapedoc.Byline) string
}

func (c *Converter) Convert(html string) string {
	return c.ConvertFn(html)
}

func (c *Converter) ConvertWithContext(html string, byline scrapedoc.Byline) string {
	return c.ConvertWithContextFn(html, byline)
}
