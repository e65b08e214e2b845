package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/JohnNuwan/The-Hive/pkg/kvstore"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func newTestKV(t *testing.T) *kvstore.Store {
	t.Helper()
	kv, err := kvstore.OpenInMemory()
	if err != nil {
		t.Fatalf("opening in-memory store: %v", err)
	}
	t.Cleanup(func() { kv.Close() })
	return kv
}

// authTestServer simulates the core auth service.
type authTestServer struct {
	*httptest.Server
	loginStatus int
	meStatus    int
	token       string
	user        UserRecord
	meCalls     int32
}

func newAuthTestServer(t *testing.T) *authTestServer {
	t.Helper()
	s := &authTestServer{
		loginStatus: http.StatusOK,
		meStatus:    http.StatusOK,
		token:       "tok-abc123",
		user: UserRecord{
			Username: "queen", Role: "admin", DisplayName: "The Queen", IsActive: true,
		},
	}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/core/auth/login":
			if s.loginStatus != http.StatusOK {
				w.WriteHeader(s.loginStatus)
				return
			}
			json.NewEncoder(w).Encode(map[string]any{"access_token": s.token, "user": s.user})
		case "/core/auth/me":
			atomic.AddInt32(&s.meCalls, 1)
			if r.Header.Get("Authorization") != "Bearer "+s.token {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			if s.meStatus != http.StatusOK {
				w.WriteHeader(s.meStatus)
				return
			}
			json.NewEncoder(w).Encode(s.user)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(s.Server.Close)
	return s
}

func newTestSessionStore(t *testing.T, baseURL string, kv *kvstore.Store) *SessionStore {
	t.Helper()
	return NewSessionStore(baseURL, 2*time.Second, kv, nil, nil)
}

// =============================================================================
// UNIT TESTS: Login
// =============================================================================

func TestSessionStore_Login_Success(t *testing.T) {
	server := newAuthTestServer(t)
	kv := newTestKV(t)
	store := newTestSessionStore(t, server.URL, kv)

	if err := store.Login(context.Background(), "queen", "hunter2"); err != nil {
		t.Fatalf("expected login to succeed, got %v", err)
	}

	session := store.Snapshot()
	if !session.Authenticated {
		t.Error("expected authenticated session")
	}
	if session.Token != "tok-abc123" {
		t.Errorf("expected token tok-abc123, got %q", session.Token)
	}
	if session.User == nil || session.User.Username != "queen" {
		t.Errorf("expected user queen, got %+v", session.User)
	}

	// Both keys must be persisted.
	if _, err := kv.Get("hive-auth-token"); err != nil {
		t.Errorf("token not persisted: %v", err)
	}
	if _, err := kv.Get("hive-auth-user"); err != nil {
		t.Errorf("user not persisted: %v", err)
	}
}

// The login endpoint returns the token under the access_token key. A response
// keyed any other way carries no usable token and must be treated as
// malformed rather than silently accepted.
func TestSessionStore_Login_AccessTokenWireKey(t *testing.T) {
	bodies := map[string]struct {
		body    string
		wantErr bool
	}{
		"access_token accepted": {
			body:    `{"access_token":"tok-wire","user":{"username":"queen","role":"admin"}}`,
			wantErr: false,
		},
		"token key rejected": {
			body:    `{"token":"tok-wire","user":{"username":"queen","role":"admin"}}`,
			wantErr: true,
		},
	}

	for name, tc := range bodies {
		t.Run(name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/core/auth/login" {
					w.WriteHeader(http.StatusNotFound)
					return
				}
				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(tc.body))
			}))
			defer server.Close()
			store := newTestSessionStore(t, server.URL, newTestKV(t))

			err := store.Login(context.Background(), "queen", "hunter2")
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected login to fail on missing access_token")
				}
				if store.Snapshot().Authenticated {
					t.Error("malformed response must not authenticate")
				}
				return
			}
			if err != nil {
				t.Fatalf("expected login to succeed, got %v", err)
			}
			if got := store.Snapshot().Token; got != "tok-wire" {
				t.Errorf("expected token tok-wire, got %q", got)
			}
		})
	}
}

func TestSessionStore_Login_InvalidCredentials(t *testing.T) {
	server := newAuthTestServer(t)
	server.loginStatus = http.StatusUnauthorized
	kv := newTestKV(t)
	store := newTestSessionStore(t, server.URL, kv)

	err := store.Login(context.Background(), "queen", "wrong")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}

	session := store.Snapshot()
	if session.Authenticated {
		t.Error("failed login must not authenticate")
	}
	if session.LastError != ErrInvalidCredentials.Error() {
		t.Errorf("expected last error %q, got %q", ErrInvalidCredentials.Error(), session.LastError)
	}
	if _, err := kv.Get("hive-auth-token"); !errors.Is(err, kvstore.ErrNotFound) {
		t.Error("failed login must not persist a token")
	}
}

func TestSessionStore_Login_ServiceUnavailable(t *testing.T) {
	server := newAuthTestServer(t)
	server.loginStatus = http.StatusServiceUnavailable
	store := newTestSessionStore(t, server.URL, newTestKV(t))

	err := store.Login(context.Background(), "queen", "hunter2")
	if !errors.Is(err, ErrAuthUnavailable) {
		t.Fatalf("expected ErrAuthUnavailable, got %v", err)
	}
}

func TestSessionStore_Login_Unreachable(t *testing.T) {
	// Closed server: connection refused.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	store := newTestSessionStore(t, url, newTestKV(t))

	err := store.Login(context.Background(), "queen", "hunter2")
	if !errors.Is(err, ErrServerUnreachable) {
		t.Fatalf("expected ErrServerUnreachable, got %v", err)
	}
}

func TestSessionStore_ClearError(t *testing.T) {
	server := newAuthTestServer(t)
	server.loginStatus = http.StatusUnauthorized
	store := newTestSessionStore(t, server.URL, newTestKV(t))

	store.Login(context.Background(), "queen", "wrong")
	if store.Snapshot().LastError == "" {
		t.Fatal("expected a last error after failed login")
	}

	store.ClearError()
	if got := store.Snapshot().LastError; got != "" {
		t.Errorf("expected cleared error, got %q", got)
	}
}

// =============================================================================
// UNIT TESTS: CheckAuth
// =============================================================================

func TestSessionStore_CheckAuth_NoToken(t *testing.T) {
	server := newAuthTestServer(t)
	store := newTestSessionStore(t, server.URL, newTestKV(t))

	if store.CheckAuth(context.Background()) {
		t.Error("no token must mean unauthenticated")
	}
	if got := atomic.LoadInt32(&server.meCalls); got != 0 {
		t.Errorf("no token must mean no network call, saw %d", got)
	}
}

func TestSessionStore_CheckAuth_ValidToken(t *testing.T) {
	server := newAuthTestServer(t)
	kv := newTestKV(t)

	// First store logs in; a second store simulates a console restart.
	first := newTestSessionStore(t, server.URL, kv)
	if err := first.Login(context.Background(), "queen", "hunter2"); err != nil {
		t.Fatalf("login: %v", err)
	}

	restarted := newTestSessionStore(t, server.URL, kv)
	if restarted.Snapshot().Authenticated {
		t.Error("restored session must not be authenticated before CheckAuth")
	}
	if !restarted.CheckAuth(context.Background()) {
		t.Fatal("expected CheckAuth to validate the persisted token")
	}
	session := restarted.Snapshot()
	if !session.Authenticated || session.User == nil || session.User.Username != "queen" {
		t.Errorf("unexpected session after CheckAuth: %+v", session)
	}
}

func TestSessionStore_CheckAuth_RejectedTokenClearsSession(t *testing.T) {
	server := newAuthTestServer(t)
	kv := newTestKV(t)
	store := newTestSessionStore(t, server.URL, kv)
	if err := store.Login(context.Background(), "queen", "hunter2"); err != nil {
		t.Fatalf("login: %v", err)
	}

	server.meStatus = http.StatusUnauthorized
	server.token = "rotated-elsewhere"

	if store.CheckAuth(context.Background()) {
		t.Error("rejected token must mean unauthenticated")
	}
	if _, err := kv.Get("hive-auth-token"); !errors.Is(err, kvstore.ErrNotFound) {
		t.Error("rejected token must be removed from the store")
	}
	if _, err := kv.Get("hive-auth-user"); !errors.Is(err, kvstore.ErrNotFound) {
		t.Error("rejected token must remove the cached user too")
	}
}

func TestSessionStore_CheckAuth_OptimisticRestoreWhenUnreachable(t *testing.T) {
	server := newAuthTestServer(t)
	kv := newTestKV(t)
	store := newTestSessionStore(t, server.URL, kv)
	if err := store.Login(context.Background(), "queen", "hunter2"); err != nil {
		t.Fatalf("login: %v", err)
	}

	// Auth service goes away; the cached user keeps the console usable.
	server.Close()
	restarted := newTestSessionStore(t, server.URL, kv)

	if !restarted.CheckAuth(context.Background()) {
		t.Fatal("expected optimistic restore from cached user")
	}
	session := restarted.Snapshot()
	if session.User == nil || session.User.Username != "queen" {
		t.Errorf("expected cached user restored, got %+v", session.User)
	}
}

func TestSessionStore_CheckAuth_UnreachableWithoutCachedUser(t *testing.T) {
	kv := newTestKV(t)
	if err := kv.Set("hive-auth-token", []byte("orphan-token")); err != nil {
		t.Fatal(err)
	}

	store := newTestSessionStore(t, "http://127.0.0.1:1", kv)
	if store.CheckAuth(context.Background()) {
		t.Error("no cached user means nothing to restore optimistically")
	}
}

// =============================================================================
// UNIT TESTS: Logout
// =============================================================================

func TestSessionStore_Logout(t *testing.T) {
	server := newAuthTestServer(t)
	kv := newTestKV(t)
	store := newTestSessionStore(t, server.URL, kv)
	if err := store.Login(context.Background(), "queen", "hunter2"); err != nil {
		t.Fatalf("login: %v", err)
	}

	store.Logout()

	session := store.Snapshot()
	if session.Authenticated || session.Token != "" || session.User != nil {
		t.Errorf("expected empty session after logout, got %+v", session)
	}
	if _, err := kv.Get("hive-auth-token"); !errors.Is(err, kvstore.ErrNotFound) {
		t.Error("logout must delete the persisted token")
	}
}
