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
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/JohnNuwan/The-Hive/pkg/kvstore"
	"github.com/JohnNuwan/The-Hive/pkg/logging"
)

// Sentinel auth errors. Callers match with errors.Is and render the message.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAuthUnavailable    = errors.New("auth service unavailable")
	ErrServerUnreachable  = errors.New("server unreachable")
)

// Persistence keys in the session KV store. Mirrors the browser-era key
// names so an operator inspecting the store recognizes them.
const (
	sessionTokenKey = "hive-auth-token"
	sessionUserKey  = "hive-auth-user"
)

// UserRecord is the auth service's view of an operator account.
type UserRecord struct {
	Username    string `json:"username"`
	Role        string `json:"role"`
	DisplayName string `json:"display_name"`
	CreatedAt   string `json:"created_at"`
	IsActive    bool   `json:"is_active"`
}

// Session is an immutable snapshot of the console's auth state. The store
// replaces the whole value on every transition, so a snapshot is never torn.
type Session struct {
	Token         string
	User          *UserRecord
	Authenticated bool
	LastError     string
}

// HTTPDoer abstracts the HTTP round trip for tests.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// =============================================================================
// SessionStore
// =============================================================================

// SessionStore owns the console's authenticated session against the core
// auth service.
//
// # Description
//
//	All state transitions happen under one mutex and replace the Session
//	value wholesale. The token and user record are persisted in a durable
//	KV store under sessionTokenKey/sessionUserKey so a restarted console
//	can revalidate without logging in again. Failed logins never leave a
//	partial token behind.
//
// # Limitations
//   - One store per session database: the underlying KV store takes a
//     directory lock.
//
// # Assumptions
//   - The auth service lives at <base>/core/auth.
type SessionStore struct {
	mu      sync.Mutex
	session Session

	kv         *kvstore.Store
	httpClient HTTPDoer
	baseURL    string
	timeout    time.Duration
	logger     *logging.Logger
}

// NewSessionStore builds a store over kv, restoring any persisted token and
// user into memory. The restored session is NOT marked authenticated; callers
// run CheckAuth to decide that.
func NewSessionStore(baseURL string, timeout time.Duration, kv *kvstore.Store, client HTTPDoer, logger *logging.Logger) *SessionStore {
	if client == nil {
		client = &http.Client{}
	}
	if logger == nil {
		logger = logging.Default()
	}
	s := &SessionStore{
		kv:         kv,
		httpClient: client,
		baseURL:    strings.TrimRight(baseURL, "/"),
		timeout:    timeout,
		logger:     logger,
	}
	s.restore()
	return s
}

func (s *SessionStore) restore() {
	token, err := s.kv.Get(sessionTokenKey)
	if err != nil {
		return
	}
	sess := Session{Token: string(token)}
	if raw, err := s.kv.Get(sessionUserKey); err == nil {
		var user UserRecord
		if err := json.Unmarshal(raw, &user); err == nil {
			sess.User = &user
		}
	}
	s.session = sess
}

// Snapshot returns the current session value.
func (s *SessionStore) Snapshot() Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session
}

// Token returns the current bearer token, or "" when logged out. Implements
// the TokenSource the API client reads.
func (s *SessionStore) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session.Token
}

// ClearError drops the last auth error message without touching the rest of
// the session.
func (s *SessionStore) ClearError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session.LastError = ""
}

// Login authenticates against POST <base>/core/auth/login.
//
// # Description
//
//	On success the token and user record are persisted and the in-memory
//	session becomes authenticated in one replacement. On any failure the
//	session keeps its previous token state, LastError is set to an
//	operator-facing message, and a sentinel error is returned:
//	401 -> ErrInvalidCredentials, 503 -> ErrAuthUnavailable, transport
//	failure -> ErrServerUnreachable.
func (s *SessionStore) Login(ctx context.Context, username, password string) error {
	body, err := json.Marshal(map[string]string{"username": username, "password": password})
	if err != nil {
		return fmt.Errorf("encoding login request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/core/auth/login", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		s.setError(ErrServerUnreachable.Error())
		s.logger.Warn("login failed, auth service unreachable", "error", err.Error())
		return ErrServerUnreachable
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		s.setError(ErrInvalidCredentials.Error())
		return ErrInvalidCredentials
	case resp.StatusCode == http.StatusServiceUnavailable:
		s.setError(ErrAuthUnavailable.Error())
		return ErrAuthUnavailable
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		msg := fmt.Sprintf("login failed with status %d", resp.StatusCode)
		s.setError(msg)
		return errors.New(msg)
	}

	var payload struct {
		Token string     `json:"access_token"`
		User  UserRecord `json:"user"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxAuthBodyBytes)).Decode(&payload); err != nil {
		s.setError("malformed login response")
		return fmt.Errorf("decoding login response: %w", err)
	}
	if payload.Token == "" {
		s.setError("malformed login response")
		return errors.New("login response carried no token")
	}

	if err := s.persist(payload.Token, &payload.User); err != nil {
		// Durable state failed: stay logged out rather than holding a
		// token that will vanish on restart.
		s.setError("session persistence failed")
		return err
	}

	s.mu.Lock()
	s.session = Session{Token: payload.Token, User: &payload.User, Authenticated: true}
	s.mu.Unlock()
	s.logger.Info("login succeeded", "username", payload.User.Username, "role", payload.User.Role)
	return nil
}

// Logout clears the in-memory session and removes both persistence keys.
// Always succeeds from the caller's point of view.
func (s *SessionStore) Logout() {
	s.mu.Lock()
	s.session = Session{}
	s.mu.Unlock()

	if err := s.kv.Delete(sessionTokenKey); err != nil {
		s.logger.Warn("failed to delete persisted token", "error", err.Error())
	}
	if err := s.kv.Delete(sessionUserKey); err != nil {
		s.logger.Warn("failed to delete persisted user", "error", err.Error())
	}
	s.logger.Info("logged out")
}

// CheckAuth validates the persisted token against GET <base>/core/auth/me.
//
// # Description
//
//	No token means unauthenticated, no network involved. A 2xx refreshes
//	the cached user record and authenticates. An explicit rejection (any
//	non-2xx) clears the persisted session: the service has seen the token
//	and turned it down. A transport failure restores the session
//	optimistically from the cached user when one exists: an unreachable
//	auth service must not lock operators out of a console whose whole job
//	is watching services that are down.
func (s *SessionStore) CheckAuth(ctx context.Context) bool {
	s.mu.Lock()
	token := s.session.Token
	cached := s.session.User
	s.mu.Unlock()

	if token == "" {
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/core/auth/me", nil)
	if err != nil {
		return false
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		if cached != nil {
			s.mu.Lock()
			s.session = Session{Token: token, User: cached, Authenticated: true}
			s.mu.Unlock()
			s.logger.Warn("auth service unreachable, restoring cached session",
				"username", cached.Username)
			return true
		}
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		s.logger.Info("persisted token rejected, clearing session", "status", resp.StatusCode)
		s.Logout()
		return false
	}

	var user UserRecord
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxAuthBodyBytes)).Decode(&user); err != nil {
		// Token is valid but the body is junk; keep whatever user we had.
		user = UserRecord{}
		if cached != nil {
			user = *cached
		}
	} else if raw, err := json.Marshal(user); err == nil {
		if err := s.kv.Set(sessionUserKey, raw); err != nil {
			s.logger.Warn("failed to refresh cached user", "error", err.Error())
		}
	}

	s.mu.Lock()
	s.session = Session{Token: token, User: &user, Authenticated: true}
	s.mu.Unlock()
	return true
}

const maxAuthBodyBytes = 1 << 16

func (s *SessionStore) setError(msg string) {
	s.mu.Lock()
	s.session.LastError = msg
	s.mu.Unlock()
}

func (s *SessionStore) persist(token string, user *UserRecord) error {
	if err := s.kv.Set(sessionTokenKey, []byte(token)); err != nil {
		return fmt.Errorf("persisting token: %w", err)
	}
	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encoding user record: %w", err)
	}
	if err := s.kv.Set(sessionUserKey, raw); err != nil {
		// Roll the token back so the two keys never disagree.
		_ = s.kv.Delete(sessionTokenKey)
		return fmt.Errorf("persisting user record: %w", err)
	}
	return nil
}
