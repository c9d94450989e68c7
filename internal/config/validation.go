package config

import (
	"fmt"
	"strings"
)

// ValidationError holds all validation failures for a config file.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed: %s", strings.Join(e.Errors, "; "))
}

// Validate checks a config for correctness. All failures are collected
// so one edit session fixes the whole file.
func Validate(cfg *FileConfig) error {
	var errs []string

	if cfg.Repo == "" {
		errs = append(errs, "repo is required (owner/name)")
	} else if !validRepo(cfg.Repo) {
		errs = append(errs, fmt.Sprintf("repo %q must look like owner/name", cfg.Repo))
	}

	if len(cfg.States) == 0 {
		errs = append(errs, "states must name at least one board column")
	}
	seen := make(map[string]bool, len(cfg.States))
	for i, s := range cfg.States {
		if s == "" {
			errs = append(errs, fmt.Sprintf("states[%d]: empty state name", i))
			continue
		}
		if seen[s] {
			errs = append(errs, fmt.Sprintf("states[%d]: duplicate state %q", i, s))
		}
		seen[s] = true
	}

	for i, f := range cfg.RequiredFacets {
		if !strings.Contains(f, ":") {
			errs = append(errs, fmt.Sprintf("required_facets[%d]: %q must look like group:value", i, f))
		}
	}

	if err := validateLogLevel(cfg.LogLevel); err != nil {
		errs = append(errs, err.Error())
	}

	if cfg.Sync.IntervalMin < 0 {
		errs = append(errs, "sync.interval_min must not be negative")
	}
	if cfg.Sync.DecisionRetentionDays < 0 {
		errs = append(errs, "sync.decision_retention_days must not be negative")
	}
	for _, ttl := range []struct {
		name string
		sec  int
	}{
		{"cache.remote_ttl_sec", cfg.Cache.RemoteTTLSec},
		{"cache.activity_ttl_sec", cfg.Cache.ActivityTTLSec},
		{"cache.aggregate_ttl_sec", cfg.Cache.AggregateTTLSec},
		{"cache.derived_ttl_sec", cfg.Cache.DerivedTTLSec},
	} {
		if ttl.sec < 0 {
			errs = append(errs, fmt.Sprintf("%s must not be negative", ttl.name))
		}
	}
	if cfg.Metrics.SlowThresholdMs < 0 {
		errs = append(errs, "metrics.slow_threshold_ms must not be negative")
	}

	if len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}
	return nil
}

func validRepo(r string) bool {
	owner, name, ok := strings.Cut(r, "/")
	return ok && owner != "" && name != "" && !strings.Contains(name, "/")
}

func validateLogLevel(l string) error {
	switch l {
	case "", "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("invalid log_level %q (must be debug, info, warn, or error)", l)
	}
}
