package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	// Run from an empty directory so no stray config.yaml is picked up.
	t.Chdir(t.TempDir())

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8000/api", cfg.NexusBaseURL)
	assert.Equal(t, 5*time.Second, cfg.DefaultTimeout())
	assert.Equal(t, 60*time.Second, cfg.ChatTimeout())
	assert.Equal(t, 10*time.Second, cfg.OsintTimeout())
	assert.Equal(t, 3*time.Second, cfg.MetricsInterval())
	assert.Equal(t, 5*time.Second, cfg.ContainersInterval())
	assert.Equal(t, 8*time.Second, cfg.HealthInterval())
	assert.Equal(t, 30*time.Second, cfg.BadgesInterval())
}

func TestLoadConfig_ExplicitFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `nexus_base_url: http://hive.internal:9999/api
chat_timeout_secs: 90
disabled_services:
  - muse
  - wraith
log_level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "http://hive.internal:9999/api", cfg.NexusBaseURL)
	assert.Equal(t, 90*time.Second, cfg.ChatTimeout())
	assert.Equal(t, []string{"muse", "wraith"}, cfg.DisabledServices)
	assert.Equal(t, "debug", cfg.LogLevel)
	// Untouched keys keep their defaults.
	assert.Equal(t, 5*time.Second, cfg.DefaultTimeout())
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HIVE_NEXUS_BASE_URL", "http://override:8000/api")
	t.Setenv("HIVE_HEALTH_INTERVAL_SECS", "2")

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "http://override:8000/api", cfg.NexusBaseURL)
	assert.Equal(t, 2*time.Second, cfg.HealthInterval())
}

func TestLoadConfig_MalformedFileFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("nexus_base_url: [not: closed"), 0644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults are valid", func(c *Config) {}, false},
		{"empty base URL", func(c *Config) { c.NexusBaseURL = "" }, true},
		{"zero timeout", func(c *Config) { c.DefaultTimeoutSecs = 0 }, true},
		{"negative cadence", func(c *Config) { c.HealthIntervalSecs = -1 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
