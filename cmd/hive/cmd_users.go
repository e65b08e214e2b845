// Copyright (C) 2026 John Nuwan (THE HIVE)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/charmbracelet/huh"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

// validRoles are the roles the auth service accepts.
var validRoles = map[string]bool{"admin": true, "operator": true, "viewer": true}

func runUsersList(cmd *cobra.Command, args []string) {
	app := mustApp()
	defer app.Close()

	users, err := app.Users.ListUsers(context.Background())
	if err != nil {
		exitUsersError(err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "USERNAME\tROLE\tDISPLAY NAME\tACTIVE\tCREATED")
	for _, u := range users {
		active := "yes"
		if !u.IsActive {
			active = "no"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", u.Username, u.Role, u.DisplayName, active, u.CreatedAt)
	}
	w.Flush()
}

func runUsersCreate(cmd *cobra.Command, args []string) {
	app := mustApp()
	defer app.Close()

	if !validRoles[userRole] {
		fmt.Fprintf(os.Stderr, "Invalid role %q: must be admin, operator, or viewer\n", userRole)
		os.Exit(1)
	}

	password := os.Getenv("HIVE_NEW_PASSWORD")
	if password == "" && (isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())) {
		prompt := huh.NewInput().
			Title(fmt.Sprintf("Password for %s", args[0])).
			EchoMode(huh.EchoModePassword).
			Value(&password)
		if err := huh.NewForm(huh.NewGroup(prompt)).Run(); err != nil {
			fmt.Fprintf(os.Stderr, "Aborted: %v\n", err)
			os.Exit(1)
		}
	}

	err := app.Users.CreateUser(context.Background(), CreateUserRequest{
		Username:    args[0],
		Password:    password,
		DisplayName: userDisplay,
		Role:        userRole,
	})
	if err != nil {
		exitUsersError(err)
	}
	fmt.Printf("User %q created with role %s\n", args[0], userRole)
}

func runUsersUpdate(cmd *cobra.Command, args []string) {
	app := mustApp()
	defer app.Close()

	if userActive && userInactive {
		fmt.Fprintln(os.Stderr, "--activate and --deactivate are mutually exclusive")
		os.Exit(1)
	}

	var req UpdateUserRequest
	if userRole != "" {
		if !validRoles[userRole] {
			fmt.Fprintf(os.Stderr, "Invalid role %q: must be admin, operator, or viewer\n", userRole)
			os.Exit(1)
		}
		req.Role = &userRole
	}
	if userDisplay != "" {
		req.DisplayName = &userDisplay
	}
	if userActive {
		active := true
		req.IsActive = &active
	}
	if userInactive {
		active := false
		req.IsActive = &active
	}
	if req == (UpdateUserRequest{}) {
		fmt.Fprintln(os.Stderr, "Nothing to update: pass --role, --display-name, --activate, or --deactivate")
		os.Exit(1)
	}

	if err := app.Users.UpdateUser(context.Background(), args[0], req); err != nil {
		exitUsersError(err)
	}
	fmt.Printf("User %q updated\n", args[0])
}

func runUsersDelete(cmd *cobra.Command, args []string) {
	app := mustApp()
	defer app.Close()

	if err := app.Users.DeleteUser(context.Background(), args[0]); err != nil {
		exitUsersError(err)
	}
	fmt.Printf("User %q deleted\n", args[0])
}

// exitUsersError prints a CRUD failure in operator terms and exits 1. The
// session is untouched: a 403 here means wrong role, not a bad token.
func exitUsersError(err error) {
	var valErr *ValidationError
	switch {
	case errors.Is(err, ErrAccessDenied):
		fmt.Fprintln(os.Stderr, "Access denied: your session lacks the admin role")
	case errors.As(err, &valErr):
		fmt.Fprintf(os.Stderr, "Invalid request: %s\n", valErr.Error())
	default:
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	os.Exit(1)
}
