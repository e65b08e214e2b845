// Copyright (C) 2026 John Nuwan (THE HIVE)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"fmt"
	"log"

	"github.com/JohnNuwan/The-Hive/pkg/kvstore"
)

// App wires the console's components for one command invocation.
type App struct {
	kv       *kvstore.Store
	Sessions *SessionStore
	API      *APIClient
	Dash     *DashboardClient
	Users    *UsersClient
	Checker  HealthChecker
}

// newApp builds the component graph from the loaded global config. The
// session KV store takes a directory lock, so only one console command can
// hold an App at a time.
func newApp() (*App, error) {
	kvCfg := kvstore.DefaultConfig(config.ExpandedSessionDBPath())
	kvCfg.Logger = logger.Slog()
	kv, err := kvstore.Open(kvCfg)
	if err != nil {
		return nil, fmt.Errorf("opening session store at %s: %w", config.ExpandedSessionDBPath(), err)
	}

	sessions := NewSessionStore(config.NexusBaseURL, config.DefaultTimeout(), kv, nil, logger)
	api := NewAPIClient(config.NexusBaseURL, sessions, nil, config.DefaultTimeout(), logger)

	return &App{
		kv:       kv,
		Sessions: sessions,
		API:      api,
		Dash:     NewDashboardClient(api, &config),
		Users:    NewUsersClient(api, &config),
		Checker:  NewDefaultHealthChecker(DefaultHealthCheckerConfig(), logger),
	}, nil
}

// mustApp is newApp for command entry points, where a broken environment is
// fatal.
func mustApp() *App {
	app, err := newApp()
	if err != nil {
		log.Fatalf("Error: %v", err)
	}
	return app
}

func (a *App) Close() {
	if err := a.kv.Close(); err != nil {
		logger.Warn("closing session store", "error", err.Error())
	}
}
