// Copyright (C) 2026 John Nuwan (THE HIVE)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/JohnNuwan/The-Hive/pkg/logging"
)

// TokenSource supplies the current bearer token, "" when logged out.
// SessionStore implements it.
type TokenSource interface {
	Token() string
}

// APIError is a completed HTTP exchange the service answered with a non-2xx
// status. Transport failures are returned as-is, not wrapped in APIError.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("status %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("status %d", e.Status)
}

const maxAPIBodyBytes = 1 << 20

// =============================================================================
// APIClient
// =============================================================================

// APIClient performs authenticated JSON calls against the nexus gateway.
//
// # Description
//
//	Every call gets a per-call timeout context (the configured default
//	unless the caller passes one), and a Bearer header whenever the token
//	source has a token. Caller headers are merged in but can never
//	override Authorization.
type APIClient struct {
	baseURL        string
	tokens         TokenSource
	httpClient     HTTPDoer
	defaultTimeout time.Duration
	logger         *logging.Logger
}

// noToken is the TokenSource for unauthenticated clients.
type noToken struct{}

func (noToken) Token() string { return "" }

// NewAPIClient builds a client for base. tokens may be nil for
// unauthenticated use; client may be nil to use a plain http.Client.
func NewAPIClient(base string, tokens TokenSource, client HTTPDoer, defaultTimeout time.Duration, logger *logging.Logger) *APIClient {
	if tokens == nil {
		tokens = noToken{}
	}
	if client == nil {
		client = &http.Client{}
	}
	if logger == nil {
		logger = logging.Default()
	}
	if defaultTimeout <= 0 {
		defaultTimeout = 5 * time.Second
	}
	return &APIClient{
		baseURL:        strings.TrimRight(base, "/"),
		tokens:         tokens,
		httpClient:     client,
		defaultTimeout: defaultTimeout,
		logger:         logger,
	}
}

// Do performs one JSON exchange.
//
// # Inputs
//   - ctx: caller context; a per-call timeout is layered on top.
//   - method, path: e.g. GET "/core/telemetry". Path is joined to the base URL.
//   - body: JSON-encoded when non-nil.
//   - timeout: per-call deadline; <=0 uses the client default.
//   - out: decode target for a 2xx body; nil to discard.
//
// # Outputs
//   - error: transport errors verbatim; non-2xx as *APIError carrying any
//     "detail"/"error" message the service included.
func (c *APIClient) Do(ctx context.Context, method, path string, body any, timeout time.Duration, out any) error {
	return c.DoWithHeaders(ctx, method, path, body, timeout, out, nil)
}

// DoWithHeaders is Do with extra request headers. Authorization in extra is
// ignored; the session token always wins.
func (c *APIClient) DoWithHeaders(ctx context.Context, method, path string, body any, timeout time.Duration, out any, extra map[string]string) error {
	if timeout <= 0 {
		timeout = c.defaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	for k, v := range extra {
		if strings.EqualFold(k, "Authorization") {
			continue
		}
		req.Header.Set(k, v)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.tokens.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxAPIBodyBytes))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{Status: resp.StatusCode, Message: extractErrorMessage(raw)}
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decoding %s %s response: %w", method, path, err)
	}
	return nil
}

// extractErrorMessage pulls a human message out of an error body. Services
// in the fleet use either {"detail": ...} or {"error": ...}.
func extractErrorMessage(raw []byte) string {
	var payload struct {
		Detail string `json:"detail"`
		Error  string `json:"error"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return ""
	}
	if payload.Detail != "" {
		return payload.Detail
	}
	return payload.Error
}

// safeFetch GETs path and decodes into T, returning fallback on ANY failure:
// transport error, timeout, non-2xx, or an undecodable body. It never returns
// an error. Dashboard views run on it so one dead service degrades its own
// panel and nothing else.
func safeFetch[T any](ctx context.Context, c *APIClient, path string, fallback T, timeout time.Duration) T {
	var out T
	if err := c.Do(ctx, http.MethodGet, path, nil, timeout, &out); err != nil {
		c.logger.Debug("safe fetch fell back", "path", path, "error", err.Error())
		return fallback
	}
	return out
}

// safePost POSTs body to path, decoding into T with the same
// fallback-on-any-failure contract as safeFetch.
func safePost[T any](ctx context.Context, c *APIClient, path string, body any, fallback T, timeout time.Duration) T {
	var out T
	if err := c.Do(ctx, http.MethodPost, path, body, timeout, &out); err != nil {
		c.logger.Debug("safe post fell back", "path", path, "error", err.Error())
		return fallback
	}
	return out
}
