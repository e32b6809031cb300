package slog

import (
	"log/slog"
	"time"

	"github.com/fwojciec/scrapedoc"
)

// Ensure LoggingFieldExtractor implements scrapedoc.FieldExtractor.
var _ scrapedoc.FieldExtractor = (*LoggingFieldExtractor)(nil)

// LoggingFieldExtractor wraps a FieldExtractor with debug logging.
type LoggingFieldExtractor struct {
	next   scrapedoc.FieldExtractor
	logger *slog.Logger
}

// NewLoggingFieldExtractor creates a new LoggingFieldExtractor.
func NewLoggingFieldExtractor(next scrapedoc.FieldExtractor, logger *slog.Logger) *LoggingFieldExtractor {
	return &LoggingFieldExtractor{next: next, logger: logger}
}

// ExtractFields delegates to the wrapped extractor and logs the resolved
// title and content size, or that the page was skipped.
func (e *LoggingFieldExtractor) ExtractFields(html, url string, src *scrapedoc.Source) (record *scrapedoc.Record, err error) {
	defer func(begin time.Time) {
		attrs := []any{
			"url", url,
			"duration", time.Since(begin),
		}
		switch {
		case err != nil:
			attrs = append(attrs, "err", err)
		case record == nil:
			attrs = append(attrs, "skipped", true)
		default:
			attrs = append(attrs, "title", record.Title, "content_length", len(record.Content))
		}
		e.logger.Debug("field extraction", attrs...)
	}(time.Now())
	return e.next.ExtractFields(html, url, src)
}
