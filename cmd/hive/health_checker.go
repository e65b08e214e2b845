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
	"io"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/JohnNuwan/The-Hive/pkg/logging"
)

// =============================================================================
// INTERFACES
// =============================================================================

// HealthChecker produces point-in-time health snapshots for remote services.
//
// # Description
//
// The checker probes each service's health endpoint with a bounded timeout
// and classifies the outcome as online, degraded, or offline. Probes for
// different services never block each other; a fleet-wide check completes
// in the time of the slowest single probe.
//
// # Examples
//
//	checker := NewDefaultHealthChecker(DefaultHealthCheckerConfig(), logger)
//
//	h := checker.CheckHealth(ctx, "banker", "http://localhost:8100/health")
//	fmt.Printf("%s: %s (%dms)\n", h.Name, h.Status, h.LatencyMs)
//
//	all := checker.CheckAllHealth(ctx, registry.Probes(baseURL))
//
// # Limitations
//
//   - Probes report reachability only; no trend or anomaly analysis
//   - Concurrent fleet checks may briefly open one socket per service
//
// # Assumptions
//
//   - Health endpoints answer GET with arbitrary JSON (or nothing)
//   - A reasonable number of services (< 50)
type HealthChecker interface {
	// CheckHealth probes a single service.
	//
	// Never returns an error: every failure mode is folded into the
	// returned snapshot's Status and LatencyMs fields. 2xx responses
	// classify as online with the decoded body in Details; non-2xx as
	// degraded with measured latency; transport errors and timeouts as
	// offline with LatencyMs = -1.
	CheckHealth(ctx context.Context, name, url string) ServiceHealth

	// CheckAllHealth probes all services concurrently.
	//
	// The result slice matches the input slice in length and order
	// regardless of the order probes resolve in. Any subset of services
	// may be offline without affecting the others. An empty input
	// returns an empty slice immediately.
	CheckAllHealth(ctx context.Context, probes []ServiceProbe) []ServiceHealth
}

// HealthHTTPClient abstracts HTTP transport for health probing.
//
// Kept to the single Do method so tests can substitute a function-backed
// mock without standing up a server.
type HealthHTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// =============================================================================
// CONFIGURATION
// =============================================================================

// HealthCheckerConfig tunes probe behavior.
type HealthCheckerConfig struct {
	// ProbeTimeout bounds a single health probe. Exceeding it aborts the
	// request and classifies the service offline.
	ProbeTimeout time.Duration

	// MaxBodyBytes caps how much of a health endpoint body is read into
	// Details. Protects the console from a misbehaving service streaming
	// an unbounded body.
	MaxBodyBytes int64
}

// DefaultHealthCheckerConfig returns probe defaults: 5s timeout, 64KiB body cap.
func DefaultHealthCheckerConfig() HealthCheckerConfig {
	return HealthCheckerConfig{
		ProbeTimeout: 5 * time.Second,
		MaxBodyBytes: 64 * 1024,
	}
}

// =============================================================================
// DEFAULT IMPLEMENTATION
// =============================================================================

// DefaultHealthChecker implements HealthChecker over HTTP.
//
// # Description
//
// Production implementation. Overlapping probes of the same URL are
// coalesced through a singleflight group, so a slow endpoint polled
// faster than it answers accumulates one in-flight request, not a queue.
// All callers of the coalesced probe observe the same snapshot.
//
// # Thread Safety
//
// Safe for concurrent use.
type DefaultHealthChecker struct {
	httpClient HealthHTTPClient
	config     HealthCheckerConfig
	logger     *logging.Logger
	flight     singleflight.Group
}

// NewDefaultHealthChecker creates a production health checker with its
// own HTTP client (keep-alives disabled; probes are sporadic and the
// fleet is large enough that idle pooled connections aren't worth it).
func NewDefaultHealthChecker(config HealthCheckerConfig, logger *logging.Logger) *DefaultHealthChecker {
	if logger == nil {
		logger = logging.Default()
	}
	return &DefaultHealthChecker{
		config: config,
		logger: logger,
		httpClient: &http.Client{
			Timeout: config.ProbeTimeout,
			Transport: &http.Transport{
				DisableKeepAlives: true,
			},
		},
	}
}

// NewDefaultHealthCheckerWithHTTPClient creates a checker with an injected
// HTTP client. Used by tests to mock transport outcomes.
func NewDefaultHealthCheckerWithHTTPClient(config HealthCheckerConfig, logger *logging.Logger, httpClient HealthHTTPClient) *DefaultHealthChecker {
	if logger == nil {
		logger = logging.Default()
	}
	return &DefaultHealthChecker{
		config:     config,
		logger:     logger,
		httpClient: httpClient,
	}
}

// CheckHealth probes a single service. See HealthChecker.
func (c *DefaultHealthChecker) CheckHealth(ctx context.Context, name, url string) ServiceHealth {
	// Coalesce overlapping probes of the same endpoint: when a poll
	// cycle fires before the previous probe resolved, both cycles share
	// one request and one snapshot.
	v, _, _ := c.flight.Do(url, func() (any, error) {
		return c.probe(ctx, name, url), nil
	})
	health := v.(ServiceHealth)
	// The coalesced snapshot may carry the name of whichever caller
	// started the flight; stamp the caller's own name.
	health.Name = name
	return health
}

// probe performs the actual HTTP round trip and classification.
func (c *DefaultHealthChecker) probe(ctx context.Context, name, url string) ServiceHealth {
	health := ServiceHealth{
		Name:      name,
		Status:    StatusOffline,
		LatencyMs: LatencyUnmeasured,
		CheckedAt: time.Now(),
	}

	probeCtx, cancel := context.WithTimeout(ctx, c.config.ProbeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(probeCtx, http.MethodGet, url, nil)
	if err != nil {
		c.logger.Warn("health probe request invalid", "service", name, "url", url, "error", err.Error())
		return health
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Connection refused, DNS failure, or timeout: offline, latency
		// stays at the unmeasured sentinel.
		c.logger.Debug("health probe failed", "service", name, "error", err.Error())
		observeProbe(name, StatusOffline, 0)
		return health
	}
	defer resp.Body.Close()

	elapsed := time.Since(start)
	health.LatencyMs = elapsed.Milliseconds()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		health.Status = StatusDegraded
		observeProbe(name, StatusDegraded, elapsed)
		return health
	}

	health.Status = StatusOnline
	observeProbe(name, StatusOnline, elapsed)

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.config.MaxBodyBytes))
	if err == nil && len(body) > 0 {
		var details map[string]any
		if json.Unmarshal(body, &details) == nil {
			health.Details = details
		}
	}
	return health
}

// CheckAllHealth probes all services concurrently. See HealthChecker.
func (c *DefaultHealthChecker) CheckAllHealth(ctx context.Context, probes []ServiceProbe) []ServiceHealth {
	if len(probes) == 0 {
		return []ServiceHealth{}
	}

	cycleID := GenerateID()
	results := make([]ServiceHealth, len(probes))

	var wg sync.WaitGroup
	for i, probe := range probes {
		wg.Add(1)
		go func(idx int, p ServiceProbe) {
			defer wg.Done()
			results[idx] = c.CheckHealth(ctx, p.Name, p.URL)
		}(i, probe)
	}
	wg.Wait()

	online := 0
	for _, h := range results {
		if h.Online() {
			online++
		}
	}
	c.logger.Debug("health cycle complete",
		"cycle_id", cycleID,
		"probed", len(results),
		"online", online,
	)
	return results
}

// =============================================================================
// MOCK IMPLEMENTATION
// =============================================================================

// MockHealthChecker is a configurable test double for HealthChecker.
//
//	mock := &MockHealthChecker{
//	    CheckHealthFunc: func(ctx context.Context, name, url string) ServiceHealth {
//	        return ServiceHealth{Name: name, Status: StatusOnline, LatencyMs: 5}
//	    },
//	}
type MockHealthChecker struct {
	CheckHealthFunc    func(ctx context.Context, name, url string) ServiceHealth
	CheckAllHealthFunc func(ctx context.Context, probes []ServiceProbe) []ServiceHealth

	mu              sync.Mutex
	CheckHealthCalls []string
}

func (m *MockHealthChecker) CheckHealth(ctx context.Context, name, url string) ServiceHealth {
	m.mu.Lock()
	m.CheckHealthCalls = append(m.CheckHealthCalls, name)
	m.mu.Unlock()
	if m.CheckHealthFunc != nil {
		return m.CheckHealthFunc(ctx, name, url)
	}
	return ServiceHealth{Name: name, Status: StatusOnline, LatencyMs: 1, CheckedAt: time.Now()}
}

func (m *MockHealthChecker) CheckAllHealth(ctx context.Context, probes []ServiceProbe) []ServiceHealth {
	if m.CheckAllHealthFunc != nil {
		return m.CheckAllHealthFunc(ctx, probes)
	}
	results := make([]ServiceHealth, 0, len(probes))
	for _, p := range probes {
		results = append(results, m.CheckHealth(ctx, p.Name, p.URL))
	}
	return results
}
