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
	"net/http"
	"net/url"

	"github.com/google/uuid"
)

// chatApology is the assistant line shown when the core cannot answer. The
// chat loop keeps going; only the one exchange is lost.
const chatApology = "Désolé Maître, une erreur est survenue lors de la communication avec le Core. Veuillez vérifier les logs."

// DashboardClient is the typed facade over the fleet's read surfaces.
//
// # Description
//
//	Every getter is built on the safe-fetch contract: it returns its
//	documented fallback instead of an error, so a view renders a degraded
//	panel rather than tearing down. Only explicit operator actions
//	(kill switch toggle, admin CRUD) surface errors.
type DashboardClient struct {
	api *APIClient
	cfg *Config
}

func NewDashboardClient(api *APIClient, cfg *Config) *DashboardClient {
	return &DashboardClient{api: api, cfg: cfg}
}

// GetSystemMetrics returns the host snapshot, or nil when the core is
// unreachable (rendered as "unavailable").
func (d *DashboardClient) GetSystemMetrics(ctx context.Context) *SystemMetrics {
	return safeFetch[*SystemMetrics](ctx, d.api, "/core/system/metrics", nil, d.cfg.DefaultTimeout())
}

// GetContainers returns the container table, or an empty list.
func (d *DashboardClient) GetContainers(ctx context.Context) []ContainerStats {
	return safeFetch(ctx, d.api, "/core/docker/containers", []ContainerStats{}, d.cfg.DefaultTimeout())
}

// GetTradingStatus returns the banker's account strip, or a zero value.
func (d *DashboardClient) GetTradingStatus(ctx context.Context) TradingStatus {
	return safeFetch(ctx, d.api, "/banker/trading/status", TradingStatus{}, d.cfg.DefaultTimeout())
}

// GetKillSwitch returns the kernel's kill switch state. The fallback is
// inactive with a LOADING message so the badge never claims a state it
// has not observed.
func (d *DashboardClient) GetKillSwitch(ctx context.Context) KillSwitchStatus {
	fallback := KillSwitchStatus{IsActive: false, Message: "LOADING..."}
	return safeFetch(ctx, d.api, "/kernel/killswitch", fallback, d.cfg.DefaultTimeout())
}

// ToggleKillSwitch flips the kill switch: activate when idle, reset when
// active. This is an operator action, so failures are returned, not
// swallowed.
func (d *DashboardClient) ToggleKillSwitch(ctx context.Context, current KillSwitchStatus) (KillSwitchStatus, error) {
	action := "activate"
	if current.IsActive {
		action = "reset"
	}
	var out KillSwitchStatus
	if err := d.api.Do(ctx, http.MethodPost, "/kernel/killswitch/"+action, nil, d.cfg.DefaultTimeout(), &out); err != nil {
		return current, fmt.Errorf("kill switch %s: %w", action, err)
	}
	return out, nil
}

// GetNemesis returns the kernel's adversary ledger, or a zero value.
func (d *DashboardClient) GetNemesis(ctx context.Context) NemesisStatus {
	return safeFetch(ctx, d.api, "/kernel/nemesis/status", NemesisStatus{}, d.cfg.DefaultTimeout())
}

// GetNewsFilter returns the news trading filter, or inactive.
func (d *DashboardClient) GetNewsFilter(ctx context.Context) NewsFilterStatus {
	return safeFetch(ctx, d.api, "/kernel/newsfilter/status", NewsFilterStatus{}, d.cfg.DefaultTimeout())
}

// GetTelemetry returns core request counters, or nil.
func (d *DashboardClient) GetTelemetry(ctx context.Context) *TelemetryData {
	return safeFetch[*TelemetryData](ctx, d.api, "/core/telemetry", nil, d.cfg.DefaultTimeout())
}

// GetCircuitBreaker returns the kernel breaker state, or nil.
func (d *DashboardClient) GetCircuitBreaker(ctx context.Context) *CircuitBreakerStatus {
	return safeFetch[*CircuitBreakerStatus](ctx, d.api, "/kernel/circuitbreaker/status", nil, d.cfg.DefaultTimeout())
}

// CreateChatSession asks the core for a conversation session. When the core
// cannot mint one, a locally generated ID keeps the chat usable; the core
// treats unknown sessions as fresh.
func (d *DashboardClient) CreateChatSession(ctx context.Context) string {
	var payload struct {
		SessionID string `json:"session_id"`
	}
	if err := d.api.Do(ctx, http.MethodPost, "/core/session", nil, d.cfg.DefaultTimeout(), &payload); err != nil || payload.SessionID == "" {
		return uuid.New().String()
	}
	return payload.SessionID
}

// SendChat delivers one message to the core and returns the assistant's
// reply. Any failure yields the canned apology; the session stays intact.
func (d *DashboardClient) SendChat(ctx context.Context, message, sessionID string) ChatMessage {
	body := map[string]string{"message": message, "session_id": sessionID}
	return safePost(ctx, d.api, "/core/chat", body, ChatMessage{Message: chatApology}, d.cfg.ChatTimeout())
}

// Search queries the shadow agent's web search.
func (d *DashboardClient) Search(ctx context.Context, query string) []SearchResult {
	var payload struct {
		Results []SearchResult `json:"results"`
	}
	path := "/shadow/search?q=" + url.QueryEscape(query)
	if err := d.api.Do(ctx, http.MethodGet, path, nil, d.cfg.OsintTimeout(), &payload); err != nil {
		return shadowOfflineResults()
	}
	return payload.Results
}

// Recon runs the shadow agent's target reconnaissance.
func (d *DashboardClient) Recon(ctx context.Context, target string) []SearchResult {
	var payload struct {
		WebFindings []SearchResult `json:"web_findings"`
	}
	path := "/shadow/recon?target=" + url.QueryEscape(target)
	if err := d.api.Do(ctx, http.MethodGet, path, nil, d.cfg.OsintTimeout(), &payload); err != nil {
		return shadowOfflineResults()
	}
	return payload.WebFindings
}

func shadowOfflineResults() []SearchResult {
	return []SearchResult{{
		Title:   "Shadow agent offline",
		Snippet: "Unable to reach the shadow service. Check its deployment status.",
	}}
}
