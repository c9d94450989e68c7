// Package config loads and validates boardman.yaml.
package config

import (
	"time"

	"github.com/lanternworks/boardman/internal/board"
	"github.com/lanternworks/boardman/internal/cache"
)

// FileConfig represents the top-level boardman.yaml structure. Durations
// are plain integers (seconds, minutes, days per field name) so the file
// stays friendly to hand editing.
type FileConfig struct {
	Repo           string        `yaml:"repo"`
	States         []string      `yaml:"states,omitempty"`
	RequiredFacets []string      `yaml:"required_facets,omitempty"`
	RulesFile      string        `yaml:"rules_file,omitempty"`
	ScriptFile     string        `yaml:"script_file,omitempty"`
	LogLevel       string        `yaml:"log_level,omitempty"`
	Sync           SyncConfig    `yaml:"sync"`
	Cache          CacheConfig   `yaml:"cache"`
	Metrics        MetricsConfig `yaml:"metrics"`
}

type SyncConfig struct {
	IntervalMin           int `yaml:"interval_min"`            // 0 disables periodic sync
	DecisionRetentionDays int `yaml:"decision_retention_days"` // 0 keeps decisions forever
}

// CacheConfig overrides the per-class TTLs. An explicit zero makes that
// class effectively uncached.
type CacheConfig struct {
	RemoteTTLSec    int `yaml:"remote_ttl_sec"`
	ActivityTTLSec  int `yaml:"activity_ttl_sec"`
	AggregateTTLSec int `yaml:"aggregate_ttl_sec"`
	DerivedTTLSec   int `yaml:"derived_ttl_sec"`
}

type MetricsConfig struct {
	SlowThresholdMs int `yaml:"slow_threshold_ms"`
}

// Default returns the configuration used when boardman.yaml is absent
// or leaves a field out.
func Default() *FileConfig {
	ttls := cache.DefaultTTLConfig()
	return &FileConfig{
		States:         board.DefaultStates(),
		RequiredFacets: board.DefaultRequiredFacets(),
		LogLevel:       "info",
		Sync: SyncConfig{
			IntervalMin:           10,
			DecisionRetentionDays: 30,
		},
		Cache: CacheConfig{
			RemoteTTLSec:    int(ttls.Remote.Seconds()),
			ActivityTTLSec:  int(ttls.Activity.Seconds()),
			AggregateTTLSec: int(ttls.Aggregate.Seconds()),
			DerivedTTLSec:   int(ttls.Derived.Seconds()),
		},
		Metrics: MetricsConfig{SlowThresholdMs: 1000},
	}
}

// BoardStates returns the configured board columns in order.
func (c *FileConfig) BoardStates() board.States {
	return board.States(c.States)
}

// TTLs converts the cache section to runtime durations.
func (c *FileConfig) TTLs() cache.TTLConfig {
	return cache.TTLConfig{
		Remote:    time.Duration(c.Cache.RemoteTTLSec) * time.Second,
		Activity:  time.Duration(c.Cache.ActivityTTLSec) * time.Second,
		Aggregate: time.Duration(c.Cache.AggregateTTLSec) * time.Second,
		Derived:   time.Duration(c.Cache.DerivedTTLSec) * time.Second,
	}
}

func (c *FileConfig) SlowThreshold() time.Duration {
	return time.Duration(c.Metrics.SlowThresholdMs) * time.Millisecond
}

// SyncInterval returns zero when periodic sync is disabled.
func (c *FileConfig) SyncInterval() time.Duration {
	return time.Duration(c.Sync.IntervalMin) * time.Minute
}

// DecisionRetention returns zero when decisions are kept forever.
func (c *FileConfig) DecisionRetention() time.Duration {
	return time.Duration(c.Sync.DecisionRetentionDays) * 24 * time.Hour
}
