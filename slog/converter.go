package slog

import (
	"log/slog"
	"time"

	"github.com/fwojciec/scrapedoc"
)

// Ensure LoggingConverter implements scrapedoc.Converter.
var _ scrapedoc.Converter = (*LoggingConverter)(nil)

// LoggingConverter wraps a Converter with debug logging.
type LoggingConverter struct {
	next   scrapedoc.Converter
	logger *slog.Logger
}

// NewLoggingConverter creates a new LoggingConverter.
func NewLoggingConverter(next scrapedoc.Converter, logger *slog.Logger) *LoggingConverter {
	return &LoggingConverter{next: next, logger: logger}
}

// Convert delegates to the wrapped converter and logs input and output sizes.
func (c *LoggingConverter) Convert(html string) (md string) {
	defer c.log(time.Now(), html, &md)
	return c.next.Convert(html)
}

// ConvertWithContext delegates to the wrapped converter and logs input and
// output sizes.
func (c *LoggingConverter) ConvertWithContext(html string, byline scrapedoc.Byline) (md string) {
	defer c.log(time.Now(), html, &md)
	return c.next.ConvertWithContext(html, byline)
}

func (c *LoggingConverter) log(begin time.Time, html string, md *string) {
	c.logger.Debug("convert",
		"html_bytes", len(html),
		"markdown_bytes", len(*md),
		"duration", time.Since(begin),
	)
}
