// Copyright (C) 2026 John Nuwan (THE HIVE)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config is the console's runtime configuration, loaded from config.yaml
// with HIVE_* environment overrides.
type Config struct {
	// NexusBaseURL is the gateway every service prefix hangs off.
	NexusBaseURL string `mapstructure:"nexus_base_url" yaml:"nexus_base_url"`

	// SessionDBPath is where the auth session blob is persisted.
	SessionDBPath string `mapstructure:"session_db_path" yaml:"session_db_path"`

	// Request timeouts per call class, in seconds.
	DefaultTimeoutSecs int `mapstructure:"default_timeout_secs" yaml:"default_timeout_secs"`
	ChatTimeoutSecs    int `mapstructure:"chat_timeout_secs" yaml:"chat_timeout_secs"`
	OsintTimeoutSecs   int `mapstructure:"osint_timeout_secs" yaml:"osint_timeout_secs"`

	// Poll cadences for the watch dashboard, in seconds.
	MetricsIntervalSecs    int `mapstructure:"metrics_interval_secs" yaml:"metrics_interval_secs"`
	ContainersIntervalSecs int `mapstructure:"containers_interval_secs" yaml:"containers_interval_secs"`
	HealthIntervalSecs     int `mapstructure:"health_interval_secs" yaml:"health_interval_secs"`
	BadgesIntervalSecs     int `mapstructure:"badges_interval_secs" yaml:"badges_interval_secs"`

	// DisabledServices lists registry names the console should skip.
	DisabledServices []string `mapstructure:"disabled_services" yaml:"disabled_services"`

	LogLevel string `mapstructure:"log_level" yaml:"log_level"`
	LogDir   string `mapstructure:"log_dir" yaml:"log_dir"`
}

// DefaultConfig returns the compiled-in configuration, matching a local
// constellation behind a gateway on :8000.
func DefaultConfig() Config {
	return Config{
		NexusBaseURL:           "http://localhost:8000/api",
		SessionDBPath:          "~/.hive/session",
		DefaultTimeoutSecs:     5,
		ChatTimeoutSecs:        60,
		OsintTimeoutSecs:       10,
		MetricsIntervalSecs:    3,
		ContainersIntervalSecs: 5,
		HealthIntervalSecs:     8,
		BadgesIntervalSecs:     30,
		LogLevel:               "info",
		LogDir:                 "",
	}
}

func (c *Config) DefaultTimeout() time.Duration {
	return time.Duration(c.DefaultTimeoutSecs) * time.Second
}

func (c *Config) ChatTimeout() time.Duration {
	return time.Duration(c.ChatTimeoutSecs) * time.Second
}

func (c *Config) OsintTimeout() time.Duration {
	return time.Duration(c.OsintTimeoutSecs) * time.Second
}

func (c *Config) MetricsInterval() time.Duration {
	return time.Duration(c.MetricsIntervalSecs) * time.Second
}

func (c *Config) ContainersInterval() time.Duration {
	return time.Duration(c.ContainersIntervalSecs) * time.Second
}

func (c *Config) HealthInterval() time.Duration {
	return time.Duration(c.HealthIntervalSecs) * time.Second
}

func (c *Config) BadgesInterval() time.Duration {
	return time.Duration(c.BadgesIntervalSecs) * time.Second
}

// LoadConfig reads configuration from path (or the default search locations
// when path is empty), layered as defaults < file < HIVE_* environment.
//
// # Description
//
//	A missing file is not an error: the console runs fine on compiled-in
//	defaults plus environment. A file that exists but cannot be parsed is
//	an error, because silently ignoring a config the operator wrote leads
//	to confusing sessions.
//
// # Inputs
//   - path: explicit config file, or "" for ./config.yaml then ~/.hive/config.yaml.
//
// # Outputs
//   - Config: the merged configuration.
//   - error: non-nil only for unreadable or malformed files.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix("HIVE")
	v.AutomaticEnv()

	v.SetDefault("nexus_base_url", cfg.NexusBaseURL)
	v.SetDefault("session_db_path", cfg.SessionDBPath)
	v.SetDefault("default_timeout_secs", cfg.DefaultTimeoutSecs)
	v.SetDefault("chat_timeout_secs", cfg.ChatTimeoutSecs)
	v.SetDefault("osint_timeout_secs", cfg.OsintTimeoutSecs)
	v.SetDefault("metrics_interval_secs", cfg.MetricsIntervalSecs)
	v.SetDefault("containers_interval_secs", cfg.ContainersIntervalSecs)
	v.SetDefault("health_interval_secs", cfg.HealthIntervalSecs)
	v.SetDefault("badges_interval_secs", cfg.BadgesIntervalSecs)
	v.SetDefault("disabled_services", cfg.DisabledServices)
	v.SetDefault("log_level", cfg.LogLevel)
	v.SetDefault("log_dir", cfg.LogDir)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return cfg, fmt.Errorf("error reading config file %s: %w", path, err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".hive"))
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return cfg, fmt.Errorf("error reading config: %w", err)
			}
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("error unmarshalling config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.NexusBaseURL == "" {
		return fmt.Errorf("nexus_base_url must not be empty")
	}
	for name, secs := range map[string]int{
		"default_timeout_secs":     c.DefaultTimeoutSecs,
		"chat_timeout_secs":        c.ChatTimeoutSecs,
		"osint_timeout_secs":       c.OsintTimeoutSecs,
		"metrics_interval_secs":    c.MetricsIntervalSecs,
		"containers_interval_secs": c.ContainersIntervalSecs,
		"health_interval_secs":     c.HealthIntervalSecs,
		"badges_interval_secs":     c.BadgesIntervalSecs,
	} {
		if secs <= 0 {
			return fmt.Errorf("%s must be positive, got %d", name, secs)
		}
	}
	return nil
}

// ExpandedSessionDBPath resolves a leading ~ in SessionDBPath.
func (c *Config) ExpandedSessionDBPath() string {
	p := c.SessionDBPath
	if len(p) >= 2 && p[:2] == "~/" {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, p[2:])
		}
	}
	return p
}
