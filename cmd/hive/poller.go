// Copyright (C) 2026 John Nuwan (THE HIVE)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"context"
	"time"

	"github.com/JohnNuwan/The-Hive/pkg/logging"
)

// Poller drives one view refresh function: an immediate first tick, then a
// fixed cadence until the context is cancelled.
//
// # Description
//
//	The tick function is expected to compute a complete replacement for
//	its view's state and deliver it whole; the poller never merges or
//	retries. Ticks run sequentially on the poller's goroutine, so a slow
//	tick delays the next one instead of stacking concurrent refreshes.
//
// # Examples
//
//	p := NewPoller("health", 8*time.Second, refreshHealth, logger)
//	p.Start(ctx)
//	...
//	cancel()
//	<-p.Done()
type Poller struct {
	name     string
	interval time.Duration
	tick     func(context.Context)
	logger   *logging.Logger
	done     chan struct{}
}

// NewPoller builds a poller. interval must be positive; tick must be non-nil.
func NewPoller(name string, interval time.Duration, tick func(context.Context), logger *logging.Logger) *Poller {
	if logger == nil {
		logger = logging.Default()
	}
	return &Poller{
		name:     name,
		interval: interval,
		tick:     tick,
		logger:   logger,
		done:     make(chan struct{}),
	}
}

// Start launches the poll loop on its own goroutine.
func (p *Poller) Start(ctx context.Context) {
	go p.run(ctx)
}

// Done is closed once the loop has fully exited after cancellation.
func (p *Poller) Done() <-chan struct{} {
	return p.done
}

func (p *Poller) run(ctx context.Context) {
	defer close(p.done)

	// First tick fires immediately so views are never blank for a full
	// interval at startup.
	if ctx.Err() != nil {
		return
	}
	observePollTick(p.name)
	p.tick(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Debug("poller stopped", "name", p.name)
			return
		case <-ticker.C:
			observePollTick(p.name)
			p.tick(ctx)
		}
	}
}

// StopAll waits for every poller to finish, bounded by grace. Returns true
// when all stopped in time.
func StopAll(pollers []*Poller, grace time.Duration) bool {
	deadline := time.After(grace)
	for _, p := range pollers {
		select {
		case <-p.Done():
		case <-deadline:
			return false
		}
	}
	return true
}
