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
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

// =============================================================================
// MESSAGES
// =============================================================================

// Each poller delivers a complete replacement for its slice of the model.
// No merging: a tick's payload is the new truth for that panel.
type (
	healthGridMsg []ServiceHealth
	hostMsg       *SystemMetrics
	containersMsg []ContainerStats
	tradingMsg    TradingStatus
	badgesMsg     struct {
		Kill      KillSwitchStatus
		Nemesis   NemesisStatus
		News      NewsFilterStatus
		Telemetry *TelemetryData
		Breaker   *CircuitBreakerStatus
	}
)

// =============================================================================
// MODEL
// =============================================================================

const cpuHistoryLen = 60

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	panelStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	onlineStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	degradedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	offlineStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	faintStyle    = lipgloss.NewStyle().Faint(true)
	alertStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
)

// watchModel is the dashboard state. All fields are wholesale-replaced by
// poller messages; the model itself never fetches.
type watchModel struct {
	health     []ServiceHealth
	host       *SystemMetrics
	containers []ContainerStats
	trading    TradingStatus
	badges     badgesMsg

	cpuHistory []float64
	width      int
	updatedAt  time.Time
	spinner    spinner.Model
}

func newWatchModel() watchModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	return watchModel{
		badges:     badgesMsg{Kill: KillSwitchStatus{Message: "LOADING..."}},
		cpuHistory: make([]float64, 0, cpuHistoryLen),
		width:      100,
		spinner:    sp,
	}
}

func (m watchModel) Init() tea.Cmd { return m.spinner.Tick }

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case healthGridMsg:
		m.health = msg
		m.updatedAt = time.Now()
	case hostMsg:
		m.host = msg
		if msg != nil {
			m.cpuHistory = append(m.cpuHistory, msg.CPU.Usage)
			if len(m.cpuHistory) > cpuHistoryLen {
				m.cpuHistory = m.cpuHistory[len(m.cpuHistory)-cpuHistoryLen:]
			}
		}
		m.updatedAt = time.Now()
	case containersMsg:
		m.containers = msg
		m.updatedAt = time.Now()
	case tradingMsg:
		m.trading = TradingStatus(msg)
		m.updatedAt = time.Now()
	case badgesMsg:
		m.badges = msg
		m.updatedAt = time.Now()
	}
	return m, nil
}

// =============================================================================
// VIEW
// =============================================================================

func (m watchModel) View() string {
	var b strings.Builder

	online := 0
	for _, h := range m.health {
		if h.Online() {
			online++
		}
	}
	header := titleStyle.Render("THE HIVE") +
		faintStyle.Render(fmt.Sprintf("  %d/%d online", online, len(m.health)))
	if !m.updatedAt.IsZero() {
		header += faintStyle.Render("  updated " + m.updatedAt.Format("15:04:05"))
	}
	b.WriteString(header + "\n\n")

	b.WriteString(panelStyle.Render(m.renderHealthGrid()) + "\n")
	b.WriteString(panelStyle.Render(m.renderHost()) + "\n")
	if len(m.containers) > 0 {
		b.WriteString(panelStyle.Render(m.renderContainers()) + "\n")
	}
	b.WriteString(panelStyle.Render(m.renderTrading()) + "\n")
	b.WriteString(panelStyle.Render(m.renderBadges()) + "\n")
	b.WriteString(faintStyle.Render("q to quit"))
	return b.String()
}

func (m watchModel) renderHealthGrid() string {
	if len(m.health) == 0 {
		return m.spinner.View() + " probing constellation..."
	}
	cells := make([]string, 0, len(m.health))
	for _, h := range m.health {
		style := offlineStyle
		glyph := "○"
		switch h.Status {
		case StatusOnline:
			style, glyph = onlineStyle, "●"
		case StatusDegraded:
			style, glyph = degradedStyle, "◐"
		}
		latency := ""
		if h.LatencyMs != LatencyUnmeasured {
			latency = fmt.Sprintf(" %dms", h.LatencyMs)
		}
		cells = append(cells, style.Render(fmt.Sprintf("%s %-11s", glyph, h.Name))+faintStyle.Render(latency))
	}
	perRow := m.width / 22
	if perRow < 1 {
		perRow = 1
	}
	var rows []string
	for i := 0; i < len(cells); i += perRow {
		end := i + perRow
		if end > len(cells) {
			end = len(cells)
		}
		rows = append(rows, strings.Join(cells[i:end], "  "))
	}
	return strings.Join(rows, "\n")
}

func (m watchModel) renderHost() string {
	if m.host == nil {
		return "host metrics unavailable"
	}
	h := m.host
	lines := []string{
		fmt.Sprintf("CPU %5.1f%%  %s", h.CPU.Usage, sparkline(m.cpuHistory)),
		fmt.Sprintf("MEM %5.1f%%  %.1f / %.0f GB", h.Memory.Percent, h.Memory.Used, h.Memory.Total),
		fmt.Sprintf("DSK %5.1f%%  r %.1f MB/s  w %.1f MB/s", h.Disk.Percent, h.Disk.ReadSpeed, h.Disk.WriteSpeed),
		fmt.Sprintf("NET rx %.1f MB/s  tx %.1f MB/s", h.Network.RxSpeed, h.Network.TxSpeed),
	}
	if h.GPU != nil {
		lines = append(lines, fmt.Sprintf("GPU %5.1f%%  %s  VRAM %.1f/%.0f GB",
			h.GPU.Usage, h.GPU.Name, h.GPU.MemoryUsed, h.GPU.MemoryTotal))
	}
	return strings.Join(lines, "\n")
}

func (m watchModel) renderContainers() string {
	containers := make([]ContainerStats, len(m.containers))
	copy(containers, m.containers)
	sort.Slice(containers, func(i, j int) bool {
		return containers[i].CPUPercent > containers[j].CPUPercent
	})
	if len(containers) > 8 {
		containers = containers[:8]
	}
	var lines []string
	for _, c := range containers {
		style := onlineStyle
		if c.Status != "running" {
			style = offlineStyle
		}
		lines = append(lines, fmt.Sprintf("%s %5.1f%% cpu  %4.0f MB  %s",
			style.Render(fmt.Sprintf("%-24s", c.Name)), c.CPUPercent, c.MemoryUsage, faintStyle.Render(c.Status)))
	}
	return strings.Join(lines, "\n")
}

func (m watchModel) renderTrading() string {
	t := m.trading
	line := fmt.Sprintf("EQUITY %.2f  CASH %.2f  POSITIONS %d",
		t.Account.Equity, t.Account.Cash, len(t.Positions))
	for _, p := range t.Positions {
		style := onlineStyle
		if p.UnrealizedPL < 0 {
			style = offlineStyle
		}
		line += "\n" + fmt.Sprintf("  %-8s qty %.2f  ", p.Symbol, p.Qty) +
			style.Render(fmt.Sprintf("%+.2f", p.UnrealizedPL))
	}
	return line
}

func (m watchModel) renderBadges() string {
	var parts []string

	if m.badges.Kill.IsActive {
		parts = append(parts, alertStyle.Render("KILL SWITCH: HALTED"))
	} else {
		parts = append(parts, onlineStyle.Render("kill switch armed"))
	}
	if m.badges.News.IsActive {
		parts = append(parts, degradedStyle.Render("news filter blocking"))
	}
	if m.badges.Nemesis.TradingBlocked {
		parts = append(parts, alertStyle.Render(fmt.Sprintf("nemesis block (%d defeats)", m.badges.Nemesis.TotalDefeats)))
	}
	if br := m.badges.Breaker; br != nil {
		style := onlineStyle
		if br.State != "CLOSED" {
			style = alertStyle
		}
		parts = append(parts, style.Render(fmt.Sprintf("breaker %s %d/%d", br.State, br.Failures, br.FailureThreshold)))
	}
	if tel := m.badges.Telemetry; tel != nil {
		parts = append(parts, faintStyle.Render(fmt.Sprintf("up %s  req %d  err %d",
			formatUptime(tel.UptimeSeconds), tel.RequestsTotal, tel.ErrorsTotal)))
	}
	return strings.Join(parts, "   ")
}

// sparkline renders values as a row of block glyphs scaled to the max.
func sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	blocks := []rune("▁▂▃▄▅▆▇█")
	max := 0.0
	for _, v := range values {
		if v > max {
			max = v
		}
	}
	if max == 0 {
		max = 1
	}
	var b strings.Builder
	for _, v := range values {
		idx := int(v / max * float64(len(blocks)-1))
		b.WriteRune(blocks[idx])
	}
	return b.String()
}

func formatUptime(seconds int64) string {
	d := time.Duration(seconds) * time.Second
	if d >= 24*time.Hour {
		return fmt.Sprintf("%dd%dh", int(d.Hours())/24, int(d.Hours())%24)
	}
	return fmt.Sprintf("%dh%02dm", int(d.Hours()), int(d.Minutes())%60)
}

// =============================================================================
// COMMAND IMPLEMENTATION
// =============================================================================

// runWatch runs the live dashboard.
//
// # Description
//
// Five pollers feed the bubbletea program at their own cadences; the
// model replaces the matching panel state on each message. Quitting
// cancels the shared context and waits for every poller to drain before
// the terminal is restored.
func runWatch(cmd *cobra.Command, args []string) {
	app := mustApp()
	defer app.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if metricsAddr != "" {
		srv := serveMetrics(metricsAddr, logger)
		defer func() {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer shutdownCancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	program := tea.NewProgram(newWatchModel(), tea.WithAltScreen())

	pollers := []*Poller{
		NewPoller("health", config.HealthInterval(), func(ctx context.Context) {
			program.Send(healthGridMsg(app.Checker.CheckAllHealth(ctx, BuildProbes(&config))))
		}, logger),
		NewPoller("host", config.MetricsInterval(), func(ctx context.Context) {
			program.Send(hostMsg(app.Dash.GetSystemMetrics(ctx)))
		}, logger),
		NewPoller("containers", config.ContainersInterval(), func(ctx context.Context) {
			program.Send(containersMsg(app.Dash.GetContainers(ctx)))
		}, logger),
		NewPoller("trading", config.HealthInterval(), func(ctx context.Context) {
			program.Send(tradingMsg(app.Dash.GetTradingStatus(ctx)))
		}, logger),
		NewPoller("badges", config.BadgesInterval(), func(ctx context.Context) {
			program.Send(badgesMsg{
				Kill:      app.Dash.GetKillSwitch(ctx),
				Nemesis:   app.Dash.GetNemesis(ctx),
				News:      app.Dash.GetNewsFilter(ctx),
				Telemetry: app.Dash.GetTelemetry(ctx),
				Breaker:   app.Dash.GetCircuitBreaker(ctx),
			})
		}, logger),
	}
	for _, p := range pollers {
		p.Start(ctx)
	}

	_, err := program.Run()
	cancel()
	if !StopAll(pollers, 5*time.Second) {
		logger.Warn("pollers did not stop within grace period")
	}
	if err != nil {
		logger.Error("watch terminated", "error", err.Error())
	}
}
