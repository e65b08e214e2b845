// Copyright (C) 2026 John Nuwan (THE HIVE)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"github.com/spf13/cobra"
)

// --- Global Command Variables ---
var (
	configPath  string
	jsonOutput  bool
	metricsAddr string
	loginUser   string
	forceInit   bool

	userRole     string
	userDisplay  string
	userActive   bool
	userInactive bool

	rootCmd = &cobra.Command{
		Use:   "hive",
		Short: "A cli to operate THE HIVE service constellation",
		Long: `Hive is the terminal operations console for THE HIVE: it polls
				every service in the constellation, manages your operator
				session, and gives you chat, OSINT and admin surfaces without
				leaving the shell.`,
	}

	// --- Fleet status ---
	statusCmd = &cobra.Command{
		Use:   "status [service...]",
		Short: "Probe the constellation once and print each service's health",
		Run:   runStatus, // Defined in cmd_status.go
	}

	watchCmd = &cobra.Command{
		Use:   "watch",
		Short: "Live dashboard: health grid, host metrics, containers, trading strip",
		Run:   runWatch, // Defined in cmd_watch.go
	}

	// --- Session ---
	loginCmd = &cobra.Command{
		Use:   "login",
		Short: "Authenticate against the core auth service",
		Run:   runLogin, // Defined in cmd_login.go
	}
	logoutCmd = &cobra.Command{
		Use:   "logout",
		Short: "Clear the persisted operator session",
		Run:   runLogout, // Defined in cmd_login.go
	}
	whoamiCmd = &cobra.Command{
		Use:   "whoami",
		Short: "Show the current operator session, revalidating the token",
		Run:   runWhoami, // Defined in cmd_login.go
	}

	// --- Chat ---
	chatCmd = &cobra.Command{
		Use:   "chat",
		Short: "Starts an interactive chat session with the core",
		Run:   runChatCommand, // Defined in cmd_chat.go
	}

	// --- Admin ---
	usersCmd = &cobra.Command{
		Use:   "users",
		Short: "Manage operator accounts (admin role required)",
	}
	usersListCmd = &cobra.Command{
		Use:   "list",
		Short: "List all operator accounts",
		Run:   runUsersList, // Defined in cmd_users.go
	}
	usersCreateCmd = &cobra.Command{
		Use:   "create [username]",
		Short: "Create an operator account",
		Args:  cobra.ExactArgs(1),
		Run:   runUsersCreate, // Defined in cmd_users.go
	}
	usersUpdateCmd = &cobra.Command{
		Use:   "update [username]",
		Short: "Update an account's role, display name, or active flag",
		Args:  cobra.ExactArgs(1),
		Run:   runUsersUpdate, // Defined in cmd_users.go
	}
	usersDeleteCmd = &cobra.Command{
		Use:   "delete [username]",
		Short: "Delete an operator account",
		Args:  cobra.ExactArgs(1),
		Run:   runUsersDelete, // Defined in cmd_users.go
	}

	// --- OSINT ---
	osintCmd = &cobra.Command{
		Use:   "osint",
		Short: "Query the shadow agent's intelligence surfaces",
	}
	osintSearchCmd = &cobra.Command{
		Use:   "search [query]",
		Short: "Web search through the shadow agent",
		Args:  cobra.MinimumNArgs(1),
		Run:   runOsintSearch, // Defined in cmd_osint.go
	}
	osintReconCmd = &cobra.Command{
		Use:   "recon [target]",
		Short: "Run reconnaissance on a target through the shadow agent",
		Args:  cobra.ExactArgs(1),
		Run:   runOsintRecon, // Defined in cmd_osint.go
	}

	// --- Setup ---
	initCmd = &cobra.Command{
		Use:   "init",
		Short: "Write a default config.yaml for the console",
		Run:   runInit, // Defined in cmd_init.go
	}
)

// init runs when the Go program starts
func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Path to config.yaml (default: ./config.yaml then ~/.hive/config.yaml)")

	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit results as JSON instead of a table")

	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "",
		"Expose Prometheus metrics on this address while watching (e.g. :9101)")

	rootCmd.AddCommand(loginCmd)
	loginCmd.Flags().StringVarP(&loginUser, "username", "u", "", "Username (prompted when omitted)")
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)

	rootCmd.AddCommand(chatCmd)

	rootCmd.AddCommand(usersCmd)
	usersCmd.AddCommand(usersListCmd)
	usersCmd.AddCommand(usersCreateCmd)
	usersCreateCmd.Flags().StringVar(&userRole, "role", "viewer", "Account role: admin, operator, or viewer")
	usersCreateCmd.Flags().StringVar(&userDisplay, "display-name", "", "Human-readable name")
	usersCmd.AddCommand(usersUpdateCmd)
	usersUpdateCmd.Flags().StringVar(&userRole, "role", "", "New role: admin, operator, or viewer")
	usersUpdateCmd.Flags().StringVar(&userDisplay, "display-name", "", "New display name")
	usersUpdateCmd.Flags().BoolVar(&userActive, "activate", false, "Re-enable the account")
	usersUpdateCmd.Flags().BoolVar(&userInactive, "deactivate", false, "Disable the account")
	usersCmd.AddCommand(usersDeleteCmd)

	rootCmd.AddCommand(osintCmd)
	osintCmd.AddCommand(osintSearchCmd)
	osintCmd.AddCommand(osintReconCmd)

	rootCmd.AddCommand(initCmd)
	initCmd.Flags().BoolVar(&forceInit, "force", false, "Overwrite an existing config.yaml")
}
