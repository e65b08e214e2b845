// Copyright (C) 2026 John Nuwan (THE HIVE)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"crypto/rand"
	"encoding/hex"
	"time"
)

// =============================================================================
// HEALTH CLASSIFICATION
// =============================================================================

// ServiceStatus classifies a remote endpoint's reachability.
//
// # Description
//
// Three-way classification produced by every health probe. States are
// mutually exclusive and represent a point-in-time snapshot:
//
//   - online: the endpoint answered with a success status
//   - degraded: the endpoint answered, but not successfully
//   - offline: the endpoint could not be reached at all
//
// # Examples
//
//	h := checker.CheckHealth(ctx, "banker", url)
//	if h.Status == StatusOnline {
//	    fmt.Printf("%s up in %dms\n", h.Name, h.LatencyMs)
//	}
//
// # Limitations
//
//   - Point-in-time; the state may change immediately after the probe
//   - "online" means the health endpoint answered, not that the service
//     is functionally correct
type ServiceStatus string

const (
	// StatusOnline indicates the health endpoint returned 2xx.
	StatusOnline ServiceStatus = "online"

	// StatusDegraded indicates the endpoint responded with a non-2xx status.
	StatusDegraded ServiceStatus = "degraded"

	// StatusOffline indicates the endpoint could not be contacted
	// (connection refused, DNS failure, or probe timeout).
	StatusOffline ServiceStatus = "offline"
)

// LatencyUnmeasured is the sentinel latency for probes that never
// completed a round trip.
const LatencyUnmeasured int64 = -1

// ServiceHealth is a point-in-time health snapshot for one service.
//
// # Description
//
// Created fresh on every poll cycle and replaced wholesale; never mutated
// in place. Not persisted.
//
// # Examples
//
//	ServiceHealth{Name: "banker", Status: StatusOnline, LatencyMs: 12}
//	ServiceHealth{Name: "sage", Status: StatusOffline, LatencyMs: -1}
type ServiceHealth struct {
	// Name is the display name of the probed service.
	Name string `json:"name"`

	// Status is the three-way reachability classification.
	Status ServiceStatus `json:"status"`

	// LatencyMs is the measured round-trip in milliseconds, or
	// LatencyUnmeasured (-1) when the probe never completed.
	LatencyMs int64 `json:"latency_ms"`

	// Details is the decoded health endpoint body, when it was valid
	// JSON. Nil for offline services and undecodable bodies.
	Details map[string]any `json:"details,omitempty"`

	// CheckedAt records when the probe started.
	CheckedAt time.Time `json:"checked_at"`
}

// Online reports whether the snapshot classifies the service as online.
func (h ServiceHealth) Online() bool {
	return h.Status == StatusOnline
}

// ServiceProbe names one health endpoint to check.
type ServiceProbe struct {
	// Name is the display name carried into the resulting ServiceHealth.
	Name string

	// URL is the absolute health endpoint URL.
	URL string
}

// GenerateID returns a 16-character hex identifier for correlating
// log entries with probe cycles.
//
// Not a UUID; shorter for log readability. Collision probability is
// negligible at console volumes.
func GenerateID() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		// Fallback to a timestamp-derived ID if crypto/rand fails.
		return hex.EncodeToString([]byte(time.Now().Format("20060102150405.000")))[:16]
	}
	return hex.EncodeToString(b)
}
