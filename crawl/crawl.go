// Package crawl provides scraping orchestration.
// It coordinates listing retrieval, link resolution, per-item fetching,
// field extraction, and Markdown conversion for configured sources.
package crawl

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"

	"github.com/fwojciec/scrapedoc"
)

// Scraper runs the listing→detail pipeline for sources.
// Sources are processed one at a time and items within a source sequentially;
// the politeness limiter is the only pacing mechanism.
type Scraper struct {
	// Fetcher retrieves static pages.
	Fetcher scrapedoc.Fetcher
	// Renderer retrieves pages of dynamic sources. Falls back to Fetcher when nil.
	Renderer  scrapedoc.Fetcher
	Links     scrapedoc.LinkResolver
	Fields    scrapedoc.FieldExtractor
	Converter scrapedoc.Converter
	// Limiter applies the politeness delay between requests to a host.
	Limiter scrapedoc.DomainLimiter
	Retry   RetryPolicy
	// Byline prepends author and source attribution to converted content.
	Byline bool
	Logger *slog.Logger
}

// Result holds the outcome of scraping a set of sites.
type Result struct {
	Sources []SourceResult
}

// SourceResult holds the records produced for one source. Err is set only
// when the listing page could not be retrieved or resolved.
type SourceResult struct {
	Site    string
	Source  string
	Records []*scrapedoc.Record
	Err     error
}

// Records returns every record in source order.
func (r *Result) Records() []*scrapedoc.Record {
	var records []*scrapedoc.Record
	for _, s := range r.Sources {
		records = append(records, s.Records...)
	}
	return records
}

// Failed returns the number of sources that failed at the listing stage.
func (r *Result) Failed() int {
	var n int
	for _, s := range r.Sources {
		if s.Err != nil {
			n++
		}
	}
	return n
}

// ProgressEvent reports progress while scraping a source.
type ProgressEvent struct {
	Type      ProgressType
	Source    string
	Completed int
	Total     int
	URL       string
	Error     error
}

// ProgressType indicates the type of progress event.
type ProgressType int

const (
	ProgressStarted ProgressType = iota
	ProgressCompleted
	ProgressSkipped
	ProgressFailed
	ProgressFinished
)

// ProgressFunc is a callback for reporting scrape progress.
type ProgressFunc func(event ProgressEvent)

// ScrapeAll scrapes every source of every site in order. A failing source
// contributes an empty record list and a logged diagnostic; it never aborts
// the run.
func (s *Scraper) ScrapeAll(ctx context.Context, sites []scrapedoc.Site, progress ProgressFunc) *Result {
	logger := s.logger()
	result := &Result{}

	for _, site := range sites {
		for i := range site.Sources {
			src := &site.Sources[i]
			records, err := s.ScrapeSource(ctx, src, progress)
			if err != nil {
				logger.Error("source failed",
					"site", site.Name,
					"source", src.Name,
					"url", src.URL,
					"err", err,
				)
				records = []*scrapedoc.Record{}
			}

			result.Sources = append(result.Sources, SourceResult{
				Site:    site.Name,
				Source:  src.Name,
				Records: records,
				Err:     err,
			})
		}
	}

	return result
}

// ScrapeSource fetches the source's listing page, resolves its detail links,
// and extracts a record from each. Only a listing failure is returned as an
// error; item failures are logged and skipped. The progress callback, if
// provided, receives an event per item.
func (s *Scraper) ScrapeSource(ctx context.Context, src *scrapedoc.Source, progress ProgressFunc) ([]*scrapedoc.Record, error) {
	logger := s.logger().With("source", src.Name)

	if err := src.Validate(); err != nil {
		return nil, err
	}

	listing, err := s.fetch(ctx, src, src.URL)
	if err != nil {
		return nil, fmt.Errorf("fetch listing: %w", err)
	}

	links, err := s.Links.ResolveLinks(listing, src.BaseURL, src.Selectors.Links)
	if err != nil {
		return nil, fmt.Errorf("resolve links: %w", err)
	}

	records := []*scrapedoc.Record{}
	if len(links) == 0 {
		logger.Warn("no links found", "url", src.URL)
		return records, nil
	}

	total := len(links)
	logger.Info("links resolved", "count", total)
	notify(progress, ProgressEvent{Type: ProgressStarted, Source: src.Name, Total: total})

	for i, link := range links {
		if ctx.Err() != nil {
			return records, nil
		}

		event := ProgressEvent{Source: src.Name, Completed: i + 1, Total: total, URL: link}

		record, err := s.scrapeItem(ctx, src, link)
		switch {
		case err != nil:
			logger.Warn("item failed", "url", link, "err", err)
			event.Type = ProgressFailed
			event.Error = err
		case record == nil:
			event.Type = ProgressSkipped
		default:
			records = append(records, record)
			event.Type = ProgressCompleted
		}
		notify(progress, event)
	}

	notify(progress, ProgressEvent{Type: ProgressFinished, Source: src.Name, Completed: total, Total: total})
	logger.Info("source done", "records", len(records), "links", total)

	return records, nil
}

// scrapeItem returns a nil record when the page is skipped for short content.
func (s *Scraper) scrapeItem(ctx context.Context, src *scrapedoc.Source, link string) (*scrapedoc.Record, error) {
	html, err := s.fetch(ctx, src, link)
	if err != nil {
		return nil, err
	}

	record, err := s.Fields.ExtractFields(html, link, src)
	if err != nil {
		return nil, fmt.Errorf("extract fields: %w", err)
	}
	if record == nil {
		return nil, nil
	}

	if s.Byline {
		record.Content = s.Converter.ConvertWithContext(record.Content, scrapedoc.Byline{
			Author: record.Author,
			URL:    record.SourceURL,
		})
	} else {
		record.Content = s.Converter.Convert(record.Content)
	}

	return record, nil
}

// fetch waits for the politeness limiter and then fetches with retry,
// using the renderer for dynamic sources.
func (s *Scraper) fetch(ctx context.Context, src *scrapedoc.Source, rawURL string) (string, error) {
	if s.Limiter != nil {
		if err := s.Limiter.Wait(ctx, hostOf(rawURL)); err != nil {
			return "", err
		}
	}

	fetcher := s.Fetcher
	if src.Dynamic && s.Renderer != nil {
		fetcher = s.Renderer
	}

	policy := s.Retry
	if policy.MaxAttempts == 0 {
		policy = DefaultRetryPolicy()
	}

	return FetchWithRetry(ctx, rawURL, fetcher.Fetch, policy, s.logger())
}

func (s *Scraper) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return s.Logger
}

func notify(progress ProgressFunc, event ProgressEvent) {
	if progress != nil {
		progress(event)
	}
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	return u.Host
}
