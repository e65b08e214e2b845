// Copyright (C) 2026 John Nuwan (THE HIVE)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"fmt"
	"strings"
)

// ServicePhase marks how far along a service is in the rollout plan.
type ServicePhase string

const (
	PhaseSkeleton   ServicePhase = "SKELETON"
	PhaseAlpha      ServicePhase = "ALPHA"
	PhaseProduction ServicePhase = "PRODUCTION"
)

// ServiceSpec describes one member of the constellation.
//
// # Description
//
//	Prefix is the path segment the nexus gateway routes on; Port is the
//	service's direct port when the console talks to localhost without a
//	gateway in front. Group is a coarse bucket used by the watch view to
//	cluster the health grid.
type ServiceSpec struct {
	Name   string
	Prefix string
	Port   int
	Phase  ServicePhase
	Group  string
}

// HealthURL returns the health endpoint for this service under base.
//
// # Inputs
//   - base: scheme://host[:port] with no trailing slash required.
//
// # Outputs
//   - string: "<base>/<prefix>/health".
func (s ServiceSpec) HealthURL(base string) string {
	return fmt.Sprintf("%s/%s/health", strings.TrimRight(base, "/"), s.Prefix)
}

// defaultServices is the built-in fleet. Config can disable entries but the
// table itself is compiled in so a bare binary still knows its constellation.
var defaultServices = []ServiceSpec{
	{Name: "core", Prefix: "core", Port: 8000, Phase: PhaseProduction, Group: "nexus"},
	{Name: "banker", Prefix: "banker", Port: 8100, Phase: PhaseAlpha, Group: "finance"},
	{Name: "sentinel", Prefix: "sentinel", Port: 8200, Phase: PhaseAlpha, Group: "intel"},
	{Name: "compliance", Prefix: "compliance", Port: 8300, Phase: PhaseAlpha, Group: "finance"},
	{Name: "substrate", Prefix: "substrate", Port: 8400, Phase: PhaseAlpha, Group: "nexus"},
	{Name: "accountant", Prefix: "accountant", Port: 8500, Phase: PhaseAlpha, Group: "finance"},
	{Name: "lab", Prefix: "lab", Port: 8600, Phase: PhaseAlpha, Group: "creative"},
	{Name: "rwa", Prefix: "rwa", Port: 8700, Phase: PhaseAlpha, Group: "finance"},
	{Name: "kernel", Prefix: "kernel", Port: 8800, Phase: PhaseProduction, Group: "nexus"},
	{Name: "shadow", Prefix: "shadow", Port: 8900, Phase: PhaseAlpha, Group: "intel"},
	{Name: "builder", Prefix: "builder", Port: 9000, Phase: PhaseAlpha, Group: "creative"},
	{Name: "muse", Prefix: "muse", Port: 9100, Phase: PhaseSkeleton, Group: "creative"},
	{Name: "sage", Prefix: "sage", Port: 9200, Phase: PhaseSkeleton, Group: "creative"},
	{Name: "researcher", Prefix: "researcher", Port: 9300, Phase: PhaseAlpha, Group: "intel"},
	{Name: "wraith", Prefix: "wraith", Port: 9400, Phase: PhaseSkeleton, Group: "intel"},
	{Name: "nervous", Prefix: "nervous", Port: 9090, Phase: PhaseProduction, Group: "nexus"},
}

// ActiveServices returns the fleet minus anything disabled in cfg, in the
// registry's canonical order.
func ActiveServices(cfg *Config) []ServiceSpec {
	disabled := make(map[string]bool, len(cfg.DisabledServices))
	for _, name := range cfg.DisabledServices {
		disabled[strings.ToLower(strings.TrimSpace(name))] = true
	}
	out := make([]ServiceSpec, 0, len(defaultServices))
	for _, s := range defaultServices {
		if !disabled[s.Name] {
			out = append(out, s)
		}
	}
	return out
}

// BuildProbes converts the active fleet into probe targets for the health
// checker, preserving registry order.
func BuildProbes(cfg *Config) []ServiceProbe {
	services := ActiveServices(cfg)
	probes := make([]ServiceProbe, 0, len(services))
	for _, s := range services {
		probes = append(probes, ServiceProbe{Name: s.Name, URL: s.HealthURL(cfg.NexusBaseURL)})
	}
	return probes
}

// LookupService finds a registry entry by name. The bool reports whether the
// name is known at all, independent of whether config disabled it.
func LookupService(name string) (ServiceSpec, bool) {
	needle := strings.ToLower(strings.TrimSpace(name))
	for _, s := range defaultServices {
		if s.Name == needle {
			return s, true
		}
	}
	return ServiceSpec{}, false
}
