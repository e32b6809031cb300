package slog

import (
	"log/slog"
	"time"

	"github.com/fwojciec/scrapedoc"
)

// Ensure LoggingLinkResolver implements scrapedoc.LinkResolver.
var _ scrapedoc.LinkResolver = (*LoggingLinkResolver)(nil)

// LoggingLinkResolver wraps a LinkResolver with logging.
type LoggingLinkResolver struct {
	next   scrapedoc.LinkResolver
	logger *slog.Logger
}

// NewLoggingLinkResolver creates a new LoggingLinkResolver.
func NewLoggingLinkResolver(next scrapedoc.LinkResolver, logger *slog.Logger) *LoggingLinkResolver {
	return &LoggingLinkResolver{next: next, logger: logger}
}

// ResolveLinks delegates to the wrapped resolver and logs the operation.
func (r *LoggingLinkResolver) ResolveLinks(html, baseURL string, chain scrapedoc.SelectorChain) (links []string, err error) {
	defer func(begin time.Time) {
		r.logger.Info("link resolution",
			"base_url", baseURL,
			"selectors", len(chain),
			"count", len(links),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return r.next.ResolveLinks(html, baseURL, chain)
}
