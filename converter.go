package scrapedoc

// Byline is the attribution prepended to converted content.
type Byline struct {
	Author string
	URL    string
}

// Converter converts HTML to Markdown.
type Converter interface {
	// Convert transforms cleaned HTML into Markdown. On conversion failure it
	// degrades to the plain text of the input.
	Convert(html string) string

	// ConvertWithContext is like Convert but prepends the byline.
	ConvertWithContext(html string, byline Byline) string
}
