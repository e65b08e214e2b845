// Copyright (C) 2026 John Nuwan (THE HIVE)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

// Payload types for the dashboard surfaces. Field names track the wire
// format the fleet services emit.

// SystemMetrics is the host snapshot from GET /core/system/metrics.
type SystemMetrics struct {
	CPU struct {
		Usage float64 `json:"usage"`
		Model string  `json:"model"`
		Cores int     `json:"cores"`
		Temp  float64 `json:"temp"`
	} `json:"cpu"`
	Memory struct {
		Percent float64 `json:"percent"`
		Used    float64 `json:"used"`
		Total   float64 `json:"total"`
	} `json:"memory"`
	Disk struct {
		Percent    float64 `json:"percent"`
		Used       float64 `json:"used"`
		Total      float64 `json:"total"`
		ReadSpeed  float64 `json:"read_speed"`
		WriteSpeed float64 `json:"write_speed"`
	} `json:"disk"`
	Network struct {
		RxSpeed float64 `json:"rx_speed"`
		TxSpeed float64 `json:"tx_speed"`
		RxBytes int64   `json:"rx_bytes"`
		TxBytes int64   `json:"tx_bytes"`
	} `json:"network"`
	GPU *struct {
		Usage       float64 `json:"usage"`
		Name        string  `json:"name"`
		MemoryUsed  float64 `json:"memory_used"`
		MemoryTotal float64 `json:"memory_total"`
		Temp        float64 `json:"temp"`
	} `json:"gpu"`
	UptimeSeconds int64 `json:"uptime"`
}

// ContainerStats is one row from GET /core/docker/containers.
type ContainerStats struct {
	Name          string  `json:"name"`
	Image         string  `json:"image"`
	Status        string  `json:"status"`
	CPUPercent    float64 `json:"cpu_percent"`
	MemoryPercent float64 `json:"memory_percent"`
	MemoryUsage   float64 `json:"memory_usage"`
	MemoryLimit   float64 `json:"memory_limit"`
	NetworkRx     int64   `json:"network_rx"`
	NetworkTx     int64   `json:"network_tx"`
	Uptime        string  `json:"uptime"`
}

// TradingAccount summarizes the banker's brokerage account.
type TradingAccount struct {
	Equity      float64 `json:"equity"`
	Cash        float64 `json:"cash"`
	BuyingPower float64 `json:"buying_power"`
}

// TradingPosition is one open position.
type TradingPosition struct {
	Symbol        string  `json:"symbol"`
	Qty           float64 `json:"qty"`
	AvgEntryPrice float64 `json:"avg_entry_price"`
	MarketValue   float64 `json:"market_value"`
	UnrealizedPL  float64 `json:"unrealized_pl"`
}

// TradingStatus is GET /banker/trading/status.
type TradingStatus struct {
	Account   TradingAccount    `json:"account"`
	Positions []TradingPosition `json:"positions"`
}

// KillSwitchStatus is GET /kernel/killswitch.
type KillSwitchStatus struct {
	IsActive bool   `json:"is_active"`
	Message  string `json:"message"`
}

// NemesisStatus is GET /kernel/nemesis/status.
type NemesisStatus struct {
	TotalDefeats   int            `json:"total_defeats"`
	KnownNemeses   map[string]int `json:"known_nemeses"`
	TradingBlocked bool           `json:"trading_blocked"`
	BlockedUntil   *string        `json:"blocked_until"`
}

// NewsFilterStatus is GET /kernel/newsfilter/status.
type NewsFilterStatus struct {
	IsActive             bool     `json:"is_active"`
	BlockedUntil         *string  `json:"blocked_until"`
	NextHighImpactEvents []string `json:"next_high_impact_events"`
}

// TelemetryData is GET /core/telemetry.
type TelemetryData struct {
	UptimeSeconds int64 `json:"uptime_seconds"`
	RequestsTotal int64 `json:"requests_total"`
	ErrorsTotal   int64 `json:"errors_total"`
}

// CircuitBreakerStatus is GET /kernel/circuitbreaker/status.
type CircuitBreakerStatus struct {
	State            string `json:"state"`
	Failures         int    `json:"failures"`
	FailureThreshold int    `json:"failure_threshold"`
}

// ChatMessage is the assistant's reply from POST /core/chat.
type ChatMessage struct {
	Message  string `json:"message"`
	Metadata struct {
		Expert     string  `json:"expert"`
		Confidence float64 `json:"confidence"`
	} `json:"metadata"`
}

// SearchResult is one hit from the shadow agent's search or recon surfaces.
type SearchResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}
