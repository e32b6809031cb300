package main

import (
	"encoding/json"
	"fmt"
)

// Run executes the sites command.
func (c *SitesCmd) Run(deps *Dependencies) error {
	sites := deps.Catalog.Sites

	if c.JSON {
		enc := json.NewEncoder(deps.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(sites)
	}

	if len(sites) == 0 {
		fmt.Fprintln(deps.Stdout, "No sites configured.")
		return nil
	}

	for _, site := range sites {
		fmt.Fprintf(deps.Stdout, "%s  %s\n", site.Name, site.BaseURL)
		for _, src := range site.Sources {
			mode := "static"
			if src.Dynamic {
				mode = "dynamic"
			}
			fmt.Fprintf(deps.Stdout, "  %s  %s  %s  %s\n", src.Name, src.Kind, mode, src.URL)
		}
	}

	return nil
}
