// Copyright (C) 2026 John Nuwan (THE HIVE)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

// =============================================================================
// COMMAND IMPLEMENTATION
// =============================================================================

// runStatus probes every active service once and prints the results.
//
// # Description
//
// Fans out health probes across the constellation, preserving registry
// order in the output. Positional args narrow the probe set to named
// services. Exits 1 when any probed service is offline so scripts can
// gate on fleet health.
//
// # Examples
//
//	hive status                 # whole constellation
//	hive status core banker     # only these two
//	hive status --json          # machine-readable
func runStatus(cmd *cobra.Command, args []string) {
	app := mustApp()
	defer app.Close()

	probes := BuildProbes(&config)
	if len(args) > 0 {
		probes = filterProbes(probes, args)
		if len(probes) == 0 {
			fmt.Fprintf(os.Stderr, "No known services match %v\n", args)
			os.Exit(1)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	results := app.Checker.CheckAllHealth(ctx, probes)

	if jsonOutput {
		outputStatusJSON(results)
	} else {
		outputStatusTable(results)
	}

	for _, r := range results {
		if r.Status == StatusOffline {
			os.Exit(1)
		}
	}
}

func filterProbes(probes []ServiceProbe, names []string) []ServiceProbe {
	wanted := make(map[string]bool, len(names))
	for _, n := range names {
		wanted[strings.ToLower(strings.TrimSpace(n))] = true
	}
	out := probes[:0]
	for _, p := range probes {
		if wanted[p.Name] {
			out = append(out, p)
		}
	}
	return out
}

// =============================================================================
// OUTPUT FORMATTING
// =============================================================================

func outputStatusJSON(results []ServiceHealth) {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(results); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to encode JSON: %v\n", err)
		os.Exit(1)
	}
}

func outputStatusTable(results []ServiceHealth) {
	online := 0
	for _, r := range results {
		if r.Online() {
			online++
		}
	}
	fmt.Printf("THE HIVE: %d/%d services online\n\n", online, len(results))

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SERVICE\tSTATUS\tLATENCY\tPHASE")
	for _, r := range results {
		latency := "-"
		if r.LatencyMs != LatencyUnmeasured {
			latency = fmt.Sprintf("%dms", r.LatencyMs)
		}
		phase := ""
		if spec, ok := LookupService(r.Name); ok {
			phase = string(spec.Phase)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.Name, statusGlyph(r.Status), latency, phase)
	}
	w.Flush()
}

func statusGlyph(s ServiceStatus) string {
	switch s {
	case StatusOnline:
		return "● online"
	case StatusDegraded:
		return "◐ degraded"
	default:
		return "○ offline"
	}
}
