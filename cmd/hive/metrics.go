// Copyright (C) 2026 John Nuwan (THE HIVE)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/JohnNuwan/The-Hive/pkg/logging"
)

// Console-local metrics. Registered on a private registry so the watch
// view can expose them without inheriting the default Go collectors'
// namespace collisions when embedded elsewhere.
var (
	metricsRegistry = prometheus.NewRegistry()

	probeTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hive_probe_total",
			Help: "Health probes performed, by service and resulting status.",
		},
		[]string{"service", "status"},
	)

	probeLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "hive_probe_latency_seconds",
			Help:    "Round-trip latency of completed health probes.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service"},
	)

	pollTicks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hive_poll_ticks_total",
			Help: "Poller ticks executed, by view.",
		},
		[]string{"view"},
	)
)

func init() {
	metricsRegistry.MustRegister(probeTotal, probeLatency, pollTicks)
	metricsRegistry.MustRegister(collectors.NewGoCollector())
}

// observeProbe records one probe outcome. Latency is only observed for
// probes that completed a round trip (online or degraded).
func observeProbe(service string, status ServiceStatus, latency time.Duration) {
	probeTotal.WithLabelValues(service, string(status)).Inc()
	if status != StatusOffline {
		probeLatency.WithLabelValues(service).Observe(latency.Seconds())
	}
}

// observePollTick records one scheduler tick for a named view.
func observePollTick(view string) {
	pollTicks.WithLabelValues(view).Inc()
}

// serveMetrics exposes the console registry on addr until the context
// backing the server is no longer needed. Errors are logged, never fatal:
// metrics are an observability extra, not part of the console's job.
func serveMetrics(addr string, logger *logging.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(metricsRegistry, promhttp.HandlerOpts{}))

	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Warn("metrics listener stopped", "addr", addr, "error", err.Error())
		}
	}()
	logger.Info("metrics exposed", "addr", addr)
	return srv
}
