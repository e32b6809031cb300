package main

import (
	"fmt"
	"os"

	"github.com/fwojciec/scrapedoc"
)

// Run executes the convert command.
func (c *ConvertCmd) Run(deps *Dependencies) error {
	data, err := os.ReadFile(c.File)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %v\n", err)
		return err
	}

	md := deps.Converter.ConvertWithContext(string(data), scrapedoc.Byline{
		Author: c.Author,
		URL:    c.SourceURL,
	})

	fmt.Fprintln(deps.Stdout, md)
	return nil
}
