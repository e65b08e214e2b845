package main

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

func applyMsg(t *testing.T, m watchModel, msg tea.Msg) watchModel {
	t.Helper()
	updated, _ := m.Update(msg)
	model, ok := updated.(watchModel)
	if !ok {
		t.Fatalf("Update returned %T, want watchModel", updated)
	}
	return model
}

func TestWatchModel_HealthMsgReplacesGrid(t *testing.T) {
	m := newWatchModel()

	m = applyMsg(t, m, healthGridMsg{
		{Name: "core", Status: StatusOnline, LatencyMs: 12},
		{Name: "muse", Status: StatusOffline, LatencyMs: LatencyUnmeasured},
	})
	if len(m.health) != 2 {
		t.Fatalf("expected 2 services, got %d", len(m.health))
	}

	// Next tick's payload replaces the previous one wholesale.
	m = applyMsg(t, m, healthGridMsg{
		{Name: "core", Status: StatusDegraded, LatencyMs: 900},
	})
	if len(m.health) != 1 || m.health[0].Status != StatusDegraded {
		t.Errorf("expected wholesale replacement, got %+v", m.health)
	}
}

func TestWatchModel_HostMsgAccumulatesCPUHistory(t *testing.T) {
	m := newWatchModel()

	for i := 0; i < cpuHistoryLen+10; i++ {
		metrics := &SystemMetrics{}
		metrics.CPU.Usage = float64(i)
		m = applyMsg(t, m, hostMsg(metrics))
	}

	if len(m.cpuHistory) != cpuHistoryLen {
		t.Errorf("history must be capped at %d, got %d", cpuHistoryLen, len(m.cpuHistory))
	}
	if m.cpuHistory[len(m.cpuHistory)-1] != float64(cpuHistoryLen+9) {
		t.Errorf("history must keep the newest samples, got tail %v", m.cpuHistory[len(m.cpuHistory)-1])
	}
}

func TestWatchModel_NilHostMsgKeepsHistory(t *testing.T) {
	m := newWatchModel()
	metrics := &SystemMetrics{}
	metrics.CPU.Usage = 42
	m = applyMsg(t, m, hostMsg(metrics))

	m = applyMsg(t, m, hostMsg(nil))
	if m.host != nil {
		t.Error("nil metrics must replace the panel state")
	}
	if len(m.cpuHistory) != 1 {
		t.Errorf("a failed poll must not grow the history, got %d", len(m.cpuHistory))
	}
}

func TestWatchModel_QuitKeys(t *testing.T) {
	m := newWatchModel()
	if _, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")}); cmd == nil {
		t.Error("q must quit")
	}
	if _, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC}); cmd == nil {
		t.Error("ctrl+c must quit")
	}
}

func TestWatchModel_ViewRendersPanels(t *testing.T) {
	m := newWatchModel()
	m = applyMsg(t, m, healthGridMsg{
		{Name: "core", Status: StatusOnline, LatencyMs: 8},
		{Name: "banker", Status: StatusOffline, LatencyMs: LatencyUnmeasured},
	})
	m = applyMsg(t, m, badgesMsg{
		Kill:    KillSwitchStatus{IsActive: true, Message: "HALTED"},
		Breaker: &CircuitBreakerStatus{State: "OPEN", Failures: 4, FailureThreshold: 5},
	})

	view := m.View()
	for _, want := range []string{"THE HIVE", "1/2 online", "core", "banker", "KILL SWITCH: HALTED", "breaker OPEN 4/5"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestSparkline(t *testing.T) {
	if got := sparkline(nil); got != "" {
		t.Errorf("empty input must render empty, got %q", got)
	}
	got := sparkline([]float64{0, 50, 100})
	runes := []rune(got)
	if len(runes) != 3 {
		t.Fatalf("expected 3 glyphs, got %q", got)
	}
	if runes[0] >= runes[2] {
		t.Errorf("sparkline must rise with the values, got %q", got)
	}
	// All-zero input must not divide by zero.
	if got := sparkline([]float64{0, 0}); len([]rune(got)) != 2 {
		t.Errorf("flat input must still render, got %q", got)
	}
}

func TestFormatUptime(t *testing.T) {
	tests := []struct {
		seconds int64
		want    string
	}{
		{90, "0h01m"},
		{3 * 3600, "3h00m"},
		{26 * 3600, "1d2h"},
	}
	for _, tt := range tests {
		if got := formatUptime(tt.seconds); got != tt.want {
			t.Errorf("formatUptime(%d) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}

func TestPollerCadenceConfigDefaults(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.MetricsInterval() != 3*time.Second ||
		cfg.ContainersInterval() != 5*time.Second ||
		cfg.HealthInterval() != 8*time.Second ||
		cfg.BadgesInterval() != 30*time.Second {
		t.Error("dashboard cadences drifted from 3s/5s/8s/30s defaults")
	}
}
