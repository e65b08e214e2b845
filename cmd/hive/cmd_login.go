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
	"os"

	"github.com/charmbracelet/huh"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

// runLogin authenticates the operator and persists the session.
//
// # Description
//
// Username comes from --username or an interactive prompt; the password
// is always prompted (masked) so it never lands in shell history. In
// non-interactive contexts the password is read from HIVE_PASSWORD.
func runLogin(cmd *cobra.Command, args []string) {
	app := mustApp()
	defer app.Close()

	username := loginUser
	password := os.Getenv("HIVE_PASSWORD")

	interactive := isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	if interactive && (username == "" || password == "") {
		var fields []huh.Field
		if username == "" {
			fields = append(fields, huh.NewInput().Title("Username").Value(&username))
		}
		if password == "" {
			fields = append(fields, huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&password))
		}
		if err := huh.NewForm(huh.NewGroup(fields...)).Run(); err != nil {
			fmt.Fprintf(os.Stderr, "Login aborted: %v\n", err)
			os.Exit(1)
		}
	}
	if username == "" || password == "" {
		fmt.Fprintln(os.Stderr, "Username and password are required (use --username and HIVE_PASSWORD when not on a terminal)")
		os.Exit(1)
	}

	if err := app.Sessions.Login(context.Background(), username, password); err != nil {
		fmt.Fprintf(os.Stderr, "Login failed: %v\n", err)
		os.Exit(1)
	}

	session := app.Sessions.Snapshot()
	if session.User != nil {
		fmt.Printf("Logged in as %s (%s)\n", session.User.Username, session.User.Role)
	} else {
		fmt.Println("Logged in")
	}
}

// runLogout clears the persisted session. Always succeeds.
func runLogout(cmd *cobra.Command, args []string) {
	app := mustApp()
	defer app.Close()

	app.Sessions.Logout()
	fmt.Println("Logged out")
}

// runWhoami revalidates the persisted token and prints the session.
//
// # Description
//
// Exit code 1 means no usable session. When the auth service is
// unreachable the session store falls back to the cached user record,
// so whoami keeps working during fleet outages.
func runWhoami(cmd *cobra.Command, args []string) {
	app := mustApp()
	defer app.Close()

	if !app.Sessions.CheckAuth(context.Background()) {
		fmt.Println("Not logged in")
		os.Exit(1)
	}

	session := app.Sessions.Snapshot()
	if session.User == nil {
		fmt.Println("Logged in (user record unavailable)")
		return
	}
	fmt.Printf("%s (%s)", session.User.Username, session.User.Role)
	if session.User.DisplayName != "" {
		fmt.Printf(" - %s", session.User.DisplayName)
	}
	fmt.Println()
}
