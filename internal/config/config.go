// Package config handles loading daypact.toml configuration files.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// Config represents the daypact.toml configuration file.
type Config struct {
	Storage Storage `toml:"storage"`
	Remote  Remote  `toml:"remote"`
	Probe   Probe   `toml:"probe"`
	Sync    Sync    `toml:"sync"`
	Time    Time    `toml:"time"`
}

// Storage selects the local key-value backend.
type Storage struct {
	// Backend is "file" or "sqlite".
	Backend string `toml:"backend"`
	// Path is the data directory (file backend) or database file (sqlite).
	Path string `toml:"path"`
}

// Remote contains the table-store connection settings.
type Remote struct {
	// DSN is the postgres connection string.
	DSN string `toml:"dsn"`
}

// Probe contains connectivity-probe settings.
type Probe struct {
	Endpoint       string `toml:"endpoint"`
	TimeoutSeconds int    `toml:"timeout-seconds"`
}

// Sync contains the watch-loop scheduling settings.
type Sync struct {
	IntervalSeconds    int `toml:"interval-seconds"`
	BackoffBaseSeconds int `toml:"backoff-base-seconds"`
	BackoffMaxSeconds  int `toml:"backoff-max-seconds"`
}

// Time fixes the reference used to resolve "today".
type Time struct {
	UTCOffsetMinutes int `toml:"utc-offset-minutes"`
}

// Default returns the configuration used when daypact.toml is absent.
func Default() *Config {
	return &Config{
		Storage: Storage{Backend: "file", Path: "daypact-data"},
		Probe:   Probe{TimeoutSeconds: 5},
		Sync:    Sync{IntervalSeconds: 30, BackoffBaseSeconds: 1, BackoffMaxSeconds: 300},
	}
}

// Load reads the config file at path, filling unset fields with defaults.
// A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config file %s: %w", path, err)
	}

	if _, err := toml.Decode(string(data), cfg); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}

	if cfg.Storage.Backend != "file" && cfg.Storage.Backend != "sqlite" {
		return nil, fmt.Errorf("config %s: unknown storage backend %q", path, cfg.Storage.Backend)
	}
	return cfg, nil
}

// ProbeTimeout returns the probe timeout as a duration.
func (c *Config) ProbeTimeout() time.Duration {
	return time.Duration(c.Probe.TimeoutSeconds) * time.Second
}

// SyncInterval returns the base delay between sync passes.
func (c *Config) SyncInterval() time.Duration {
	return time.Duration(c.Sync.IntervalSeconds) * time.Second
}

// BackoffBase returns the first backoff step after a failed pass.
func (c *Config) BackoffBase() time.Duration {
	return time.Duration(c.Sync.BackoffBaseSeconds) * time.Second
}

// BackoffMax caps the backoff delay.
func (c *Config) BackoffMax() time.Duration {
	return time.Duration(c.Sync.BackoffMaxSeconds) * time.Second
}
