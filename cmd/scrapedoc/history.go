package main

import (
	"fmt"
	"time"

	"github.com/fwojciec/scrapedoc"
)

// Run executes the history command.
func (c *HistoryCmd) Run(deps *Dependencies) error {
	filter := scrapedoc.RecordFilter{Limit: c.Limit, Offset: c.Offset}
	if c.Site != "" {
		filter.Site = &c.Site
	}
	if c.Source != "" {
		filter.Source = &c.Source
	}
	if c.URL != "" {
		filter.SourceURL = &c.URL
	}

	records, err := deps.Records.FindRecords(deps.Ctx, filter)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", scrapedoc.ErrorMessage(err))
		return err
	}

	if len(records) == 0 {
		fmt.Fprintln(deps.Stdout, "No records found. Use 'scrapedoc run' to scrape some.")
		return nil
	}

	for _, r := range records {
		fmt.Fprintf(deps.Stdout, "%s  %s/%s  %s  %s\n",
			r.ScrapedAt.Local().Format(time.DateTime), r.Site, r.Source, r.ContentHash, r.SourceURL)
	}

	return nil
}
