package main

import (
	"fmt"

	"github.com/fwojciec/scrapedoc"
	"github.com/fwojciec/scrapedoc/crawl"
)

const progressURLWidth = 60

// Run executes the run command.
func (c *RunCmd) Run(deps *Dependencies) error {
	progress := func(event crawl.ProgressEvent) {
		line := crawl.FormatProgress(event, progressURLWidth)
		if event.Type == crawl.ProgressFailed {
			fmt.Fprintln(deps.Stderr, line)
			return
		}
		fmt.Fprintln(deps.Stdout, line)
	}

	result := deps.Scraper.ScrapeAll(deps.Ctx, deps.Catalog.Sites, progress)
	records := result.Records()

	var size int
	for _, record := range records {
		if err := deps.Store.Save(deps.Ctx, record); err != nil {
			_ = deps.Store.Abort()
			fmt.Fprintf(deps.Stderr, "error saving %s: %s\n", record.SourceURL, scrapedoc.ErrorMessage(err))
			return err
		}
		size += len(record.Content)
	}

	if err := deps.Store.Commit(); err != nil {
		fmt.Fprintf(deps.Stderr, "error committing: %v\n", err)
		return err
	}

	if deps.Records != nil {
		for _, src := range result.Sources {
			for _, record := range src.Records {
				stored := &scrapedoc.StoredRecord{Site: src.Site, Source: src.Source, Record: *record}
				if err := deps.Records.CreateRecord(deps.Ctx, stored); err != nil {
					fmt.Fprintf(deps.Stderr, "error recording history: %s\n", scrapedoc.ErrorMessage(err))
					return err
				}
			}
		}
	}

	fmt.Fprintf(deps.Stdout, "Saved %d records (%s) to %s\n", len(records), crawl.FormatBytes(size), deps.Output)
	if failed := result.Failed(); failed > 0 {
		fmt.Fprintf(deps.Stderr, "%d of %d sources failed\n", failed, len(result.Sources))
	}

	return nil
}
