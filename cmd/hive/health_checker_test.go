package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

// mockProbeHTTPClient implements HealthHTTPClient for probe tests.
type mockProbeHTTPClient struct {
	DoFunc func(*http.Request) (*http.Response, error)
	calls  int32
}

func (m *mockProbeHTTPClient) Do(req *http.Request) (*http.Response, error) {
	atomic.AddInt32(&m.calls, 1)
	if m.DoFunc != nil {
		return m.DoFunc(req)
	}
	return &http.Response{
		StatusCode: 200,
		Body:       io.NopCloser(strings.NewReader(`{"status":"ok"}`)),
	}, nil
}

func createTestChecker(httpClient HealthHTTPClient) *DefaultHealthChecker {
	config := DefaultHealthCheckerConfig()
	config.ProbeTimeout = 1 * time.Second
	if httpClient == nil {
		httpClient = &mockProbeHTTPClient{}
	}
	return NewDefaultHealthCheckerWithHTTPClient(config, nil, httpClient)
}

// =============================================================================
// UNIT TESTS: CheckHealth
// =============================================================================

func TestDefaultHealthChecker_CheckHealth_Online(t *testing.T) {
	client := &mockProbeHTTPClient{
		DoFunc: func(req *http.Request) (*http.Response, error) {
			return &http.Response{
				StatusCode: 200,
				Body:       io.NopCloser(strings.NewReader(`{"status":"ok","version":"1.2.0"}`)),
			}, nil
		},
	}
	checker := createTestChecker(client)

	health := checker.CheckHealth(context.Background(), "core", "http://localhost:8000/core/health")

	if health.Status != StatusOnline {
		t.Errorf("expected %s, got %s", StatusOnline, health.Status)
	}
	if health.Name != "core" {
		t.Errorf("expected name core, got %s", health.Name)
	}
	if health.LatencyMs == LatencyUnmeasured {
		t.Error("expected measured latency for a completed probe")
	}
	if health.Details["version"] != "1.2.0" {
		t.Errorf("expected decoded details, got %v", health.Details)
	}
}

func TestDefaultHealthChecker_CheckHealth_Degraded(t *testing.T) {
	client := &mockProbeHTTPClient{
		DoFunc: func(req *http.Request) (*http.Response, error) {
			return &http.Response{
				StatusCode: 500,
				Body:       io.NopCloser(strings.NewReader("internal error")),
			}, nil
		},
	}
	checker := createTestChecker(client)

	health := checker.CheckHealth(context.Background(), "banker", "http://localhost:8100/banker/health")

	if health.Status != StatusDegraded {
		t.Errorf("expected %s, got %s", StatusDegraded, health.Status)
	}
	if health.LatencyMs == LatencyUnmeasured {
		t.Error("expected measured latency: the service did respond")
	}
}

func TestDefaultHealthChecker_CheckHealth_Offline(t *testing.T) {
	client := &mockProbeHTTPClient{
		DoFunc: func(req *http.Request) (*http.Response, error) {
			return nil, errors.New("connection refused")
		},
	}
	checker := createTestChecker(client)

	health := checker.CheckHealth(context.Background(), "sage", "http://localhost:9200/sage/health")

	if health.Status != StatusOffline {
		t.Errorf("expected %s, got %s", StatusOffline, health.Status)
	}
	if health.LatencyMs != LatencyUnmeasured {
		t.Errorf("expected latency sentinel %d, got %d", LatencyUnmeasured, health.LatencyMs)
	}
}

func TestDefaultHealthChecker_CheckHealth_NonJSONBody(t *testing.T) {
	client := &mockProbeHTTPClient{
		DoFunc: func(req *http.Request) (*http.Response, error) {
			return &http.Response{
				StatusCode: 200,
				Body:       io.NopCloser(strings.NewReader("OK")),
			}, nil
		},
	}
	checker := createTestChecker(client)

	health := checker.CheckHealth(context.Background(), "nervous", "http://localhost:9090/nervous/health")

	if health.Status != StatusOnline {
		t.Errorf("a 2xx with a non-JSON body is still online, got %s", health.Status)
	}
}

// =============================================================================
// UNIT TESTS: CheckAllHealth
// =============================================================================

func TestDefaultHealthChecker_CheckAllHealth_PreservesOrder(t *testing.T) {
	var mu sync.Mutex
	seen := map[string]int{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		seen[r.URL.Path]++
		mu.Unlock()
		if strings.Contains(r.URL.Path, "muse") {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"status":"ok"}`))
	}))
	defer server.Close()

	checker := createTestChecker(server.Client())

	probes := []ServiceProbe{
		{Name: "core", URL: server.URL + "/core/health"},
		{Name: "muse", URL: server.URL + "/muse/health"},
		{Name: "kernel", URL: server.URL + "/kernel/health"},
	}
	results := checker.CheckAllHealth(context.Background(), probes)

	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for i, p := range probes {
		if results[i].Name != p.Name {
			t.Errorf("result %d: expected %s, got %s (order must match input)", i, p.Name, results[i].Name)
		}
	}
	if results[1].Status != StatusDegraded {
		t.Errorf("muse should be degraded, got %s", results[1].Status)
	}
	if results[0].Status != StatusOnline || results[2].Status != StatusOnline {
		t.Errorf("core and kernel should be online, got %s/%s", results[0].Status, results[2].Status)
	}
}

func TestDefaultHealthChecker_CheckAllHealth_EmptyInput(t *testing.T) {
	checker := createTestChecker(nil)

	done := make(chan []ServiceHealth, 1)
	go func() {
		done <- checker.CheckAllHealth(context.Background(), nil)
	}()

	select {
	case results := <-done:
		if len(results) != 0 {
			t.Errorf("expected empty results, got %d", len(results))
		}
	case <-time.After(time.Second):
		t.Fatal("empty input must return immediately")
	}
}

func TestDefaultHealthChecker_CheckHealth_CoalescesConcurrentProbes(t *testing.T) {
	release := make(chan struct{})
	var requests int32
	client := &mockProbeHTTPClient{
		DoFunc: func(req *http.Request) (*http.Response, error) {
			atomic.AddInt32(&requests, 1)
			<-release
			return &http.Response{
				StatusCode: 200,
				Body:       io.NopCloser(strings.NewReader(`{"status":"ok"}`)),
			}, nil
		},
	}
	checker := createTestChecker(client)

	const callers = 5
	var wg sync.WaitGroup
	results := make([]ServiceHealth, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = checker.CheckHealth(context.Background(), "core", "http://localhost:8000/core/health")
		}(i)
	}

	// Give the callers time to pile onto the in-flight probe.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	if got := atomic.LoadInt32(&requests); got != 1 {
		t.Errorf("expected 1 coalesced request for overlapping probes, got %d", got)
	}
	for i, r := range results {
		if r.Status != StatusOnline {
			t.Errorf("caller %d: expected online, got %s", i, r.Status)
		}
	}
}

// =============================================================================
// UNIT TESTS: MockHealthChecker
// =============================================================================

func TestMockHealthChecker_RecordsCalls(t *testing.T) {
	mock := &MockHealthChecker{
		CheckHealthFunc: func(ctx context.Context, name, url string) ServiceHealth {
			return ServiceHealth{Name: name, Status: StatusOnline}
		},
	}

	mock.CheckHealth(context.Background(), "core", "http://localhost:8000/core/health")
	mock.CheckHealth(context.Background(), "banker", "http://localhost:8100/banker/health")

	if len(mock.CheckHealthCalls) != 2 {
		t.Fatalf("expected 2 recorded calls, got %d", len(mock.CheckHealthCalls))
	}
	if mock.CheckHealthCalls[0] != "core" || mock.CheckHealthCalls[1] != "banker" {
		t.Errorf("unexpected recorded calls: %v", mock.CheckHealthCalls)
	}
}
