// Copyright (C) 2026 John Nuwan (THE HIVE)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// runInit writes a default config.yaml in the current directory.
//
// # Description
//
// The file carries the compiled-in defaults so operators have something
// concrete to edit. Refuses to overwrite an existing file unless --force
// is set.
//
// # Examples
//
//	hive init            # write ./config.yaml
//	hive init --force    # replace an existing one
func runInit(cmd *cobra.Command, args []string) {
	const path = "config.yaml"

	if _, err := os.Stat(path); err == nil && !forceInit {
		fmt.Fprintf(os.Stderr, "%s already exists (use --force to overwrite)\n", path)
		os.Exit(1)
	}

	cfg := DefaultConfig()
	raw, err := yaml.Marshal(&cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to encode default config: %v\n", err)
		os.Exit(1)
	}

	header := []byte("# THE HIVE console configuration.\n# Every key can be overridden with a HIVE_* environment variable,\n# e.g. HIVE_NEXUS_BASE_URL.\n")
	if err := os.WriteFile(path, append(header, raw...), 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write %s: %v\n", path, err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %s\n", path)
}
