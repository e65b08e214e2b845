// Copyright (C) 2026 John Nuwan (THE HIVE)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// runOsintSearch queries the shadow agent's web search and prints the hits.
// A dead shadow service yields the offline placeholder, not an error: OSINT
// results are advisory, the command has nothing to retry.
func runOsintSearch(cmd *cobra.Command, args []string) {
	app := mustApp()
	defer app.Close()

	query := strings.Join(args, " ")
	results := app.Dash.Search(context.Background(), query)
	printSearchResults(query, results)
}

// runOsintRecon runs target reconnaissance through the shadow agent.
func runOsintRecon(cmd *cobra.Command, args []string) {
	app := mustApp()
	defer app.Close()

	results := app.Dash.Recon(context.Background(), args[0])
	printSearchResults(args[0], results)
}

func printSearchResults(query string, results []SearchResult) {
	fmt.Printf("Results for %q (%d)\n\n", query, len(results))
	for i, r := range results {
		fmt.Printf("%d. %s\n", i+1, r.Title)
		if r.URL != "" {
			fmt.Printf("   %s\n", r.URL)
		}
		if r.Snippet != "" {
			fmt.Printf("   %s\n", r.Snippet)
		}
	}
}
