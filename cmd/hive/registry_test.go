package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestServiceSpec_HealthURL(t *testing.T) {
	tests := []struct {
		name string
		base string
		spec ServiceSpec
		want string
	}{
		{"plain base", "http://localhost:8000/api", ServiceSpec{Prefix: "core"}, "http://localhost:8000/api/core/health"},
		{"trailing slash trimmed", "http://localhost:8000/api/", ServiceSpec{Prefix: "banker"}, "http://localhost:8000/api/banker/health"},
		{"remote gateway", "https://hive.example.com", ServiceSpec{Prefix: "shadow"}, "https://hive.example.com/shadow/health"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.spec.HealthURL(tt.base))
		})
	}
}

func TestActiveServices_FiltersDisabled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DisabledServices = []string{"muse", " Sage ", "WRAITH"}

	services := ActiveServices(&cfg)

	assert.Len(t, services, len(defaultServices)-3)
	for _, s := range services {
		assert.NotContains(t, []string{"muse", "sage", "wraith"}, s.Name)
	}
}

func TestBuildProbes_PreservesRegistryOrder(t *testing.T) {
	cfg := DefaultConfig()
	probes := BuildProbes(&cfg)

	assert.Len(t, probes, len(defaultServices))
	for i, p := range probes {
		assert.Equal(t, defaultServices[i].Name, p.Name)
		assert.Equal(t, defaultServices[i].HealthURL(cfg.NexusBaseURL), p.URL)
	}
}

func TestLookupService(t *testing.T) {
	spec, ok := LookupService("  Kernel ")
	assert.True(t, ok)
	assert.Equal(t, 8800, spec.Port)
	assert.Equal(t, PhaseProduction, spec.Phase)

	_, ok = LookupService("unknown")
	assert.False(t, ok)
}
