package main

import (
	"context"
	"io"
	"log/slog"

	"github.com/fwojciec/scrapedoc"
	"github.com/fwojciec/scrapedoc/crawl"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx     context.Context
	Stdout  io.Writer
	Stderr  io.Writer
	Logger  *slog.Logger
	Catalog *scrapedoc.Catalog

	// Wired for "run".
	Scraper *crawl.Scraper
	Store   scrapedoc.RecordStore
	Output  string

	// Wired for "run" and "history". Nil when history is disabled.
	Records scrapedoc.RecordService

	// Wired for "convert".
	Converter scrapedoc.Converter
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Config  string `short:"c" type:"path" help:"Site catalog YAML (default: built-in catalog)"`
	Verbose bool   `short:"v" help:"Enable debug logging"`

	Run     RunCmd     `cmd:"" help:"Scrape configured sources and write records"`
	Convert ConvertCmd `cmd:"" help:"Convert an HTML file to Markdown"`
	Sites   SitesCmd   `cmd:"" help:"List configured sites and sources"`
	History HistoryCmd `cmd:"" help:"List previously scraped records"`
}

// RunCmd is the "run" subcommand.
type RunCmd struct {
	Site      []string `short:"s" help:"Only scrape the named site (repeatable)"`
	Out       string   `short:"o" type:"path" help:"Output directory (default: from catalog)"`
	Format    string   `short:"f" help:"Output format: json or markdown (default: from catalog)"`
	Byline    bool     `help:"Prepend author and source lines to content"`
	NoHistory bool     `help:"Do not record scraped records in the history database"`
}

// ConvertCmd is the "convert" subcommand.
type ConvertCmd struct {
	File      string `arg:"" type:"existingfile" help:"HTML file to convert"`
	SourceURL string `name:"source-url" help:"Source URL for the attribution line"`
	Author    string `help:"Author for the byline"`
}

// SitesCmd is the "sites" subcommand.
type SitesCmd struct {
	JSON bool `help:"Print sites as JSON"`
}

// HistoryCmd is the "history" subcommand.
type HistoryCmd struct {
	Site   string `help:"Filter by site"`
	Source string `help:"Filter by source"`
	URL    string `name:"url" help:"Filter by record URL"`
	Limit  int    `short:"n" default:"20" help:"Maximum records to show"`
	Offset int    `help:"Records to skip"`
}
