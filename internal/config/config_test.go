package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse([]byte("repo: lanternworks/boardman\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Repo != "lanternworks/boardman" {
		t.Errorf("repo = %q", cfg.Repo)
	}
	if len(cfg.States) != 5 || cfg.States[0] != "Backlog" || cfg.States[4] != "Done" {
		t.Errorf("states = %v, want the default board", cfg.States)
	}
	if cfg.SyncInterval() != 10*time.Minute {
		t.Errorf("sync interval = %v, want 10m", cfg.SyncInterval())
	}
	if cfg.DecisionRetention() != 30*24*time.Hour {
		t.Errorf("retention = %v, want 30d", cfg.DecisionRetention())
	}
	if got := cfg.TTLs(); got.Remote != 5*time.Minute || got.Aggregate != 30*time.Second {
		t.Errorf("ttls = %+v", got)
	}
	if cfg.SlowThreshold() != time.Second {
		t.Errorf("slow threshold = %v, want 1s", cfg.SlowThreshold())
	}
}

func TestParseOverrides(t *testing.T) {
	raw := `
repo: acme/widgets
states: [Todo, Doing, Done]
required_facets: ["kind:*"]
log_level: debug
sync:
  interval_min: 0
  decision_retention_days: 7
cache:
  remote_ttl_sec: 60
metrics:
  slow_threshold_ms: 250
`
	cfg, err := Parse([]byte(raw))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(cfg.States) != 3 || cfg.States[1] != "Doing" {
		t.Errorf("states = %v", cfg.States)
	}
	if cfg.SyncInterval() != 0 {
		t.Errorf("explicit zero interval = %v, want disabled", cfg.SyncInterval())
	}
	if cfg.DecisionRetention() != 7*24*time.Hour {
		t.Errorf("retention = %v", cfg.DecisionRetention())
	}
	ttls := cfg.TTLs()
	if ttls.Remote != time.Minute {
		t.Errorf("remote ttl = %v, want 1m", ttls.Remote)
	}
	// Absent cache keys keep their defaults.
	if ttls.Activity != 2*time.Minute {
		t.Errorf("activity ttl = %v, want the default", ttls.Activity)
	}
	if cfg.SlowThreshold() != 250*time.Millisecond {
		t.Errorf("slow threshold = %v", cfg.SlowThreshold())
	}
}

func TestParseExpandsEnv(t *testing.T) {
	t.Setenv("BOARDMAN_TEST_REPO", "acme/widgets")
	cfg, err := Parse([]byte("repo: $BOARDMAN_TEST_REPO\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Repo != "acme/widgets" {
		t.Errorf("repo = %q, want the expanded value", cfg.Repo)
	}
}

func TestValidationCollectsAllFailures(t *testing.T) {
	raw := `
repo: not-a-repo
states: [Todo, Todo, ""]
required_facets: ["plain"]
log_level: loud
sync:
  interval_min: -1
`
	_, err := Parse([]byte(raw))
	if err == nil {
		t.Fatal("want validation failure")
	}
	verr, ok := err.(*ValidationError)
	if !ok {
		t.Fatalf("err = %T, want *ValidationError", err)
	}
	if len(verr.Errors) != 6 {
		t.Errorf("errors = %d (%v), want all 6 reported", len(verr.Errors), verr.Errors)
	}
	for _, want := range []string{"owner/name", "duplicate state", "empty state", "group:value", "log_level", "interval_min"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %q", err.Error(), want)
		}
	}
}

func TestValidationRequiresRepo(t *testing.T) {
	_, err := Parse([]byte("log_level: info\n"))
	if err == nil || !strings.Contains(err.Error(), "repo is required") {
		t.Fatalf("err = %v, want missing repo failure", err)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "boardman.yaml")
	if err := os.WriteFile(path, []byte("repo: acme/widgets\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Repo != "acme/widgets" {
		t.Errorf("repo = %q", cfg.Repo)
	}

	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("want error for a missing file")
	}
}
