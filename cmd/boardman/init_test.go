package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInitCreatesConfigDirectory(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "conf", "boardman.yaml")
	t.Setenv("BOARDMAN_CONFIG", cfgPath)
	t.Setenv("BOARDMAN_DB", filepath.Join(dir, "data", "boardman.db"))

	cmd := newInitCmd()
	cmd.SetArgs([]string{"--repo", "octo/widgets"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("init: %v", err)
	}

	data, err := os.ReadFile(cfgPath)
	if err != nil {
		t.Fatalf("starter config missing: %v", err)
	}
	if !strings.Contains(string(data), "repo: octo/widgets") {
		t.Errorf("starter config = %s", data)
	}
	if _, err := os.Stat(filepath.Join(dir, "data", "boardman.db")); err != nil {
		t.Errorf("database missing: %v", err)
	}
}

func TestInitKeepsExistingConfig(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "boardman.yaml")
	if err := os.WriteFile(cfgPath, []byte("repo: keep/me\n"), 0o644); err != nil {
		t.Fatalf("seed config: %v", err)
	}
	t.Setenv("BOARDMAN_CONFIG", cfgPath)
	t.Setenv("BOARDMAN_DB", filepath.Join(dir, "boardman.db"))

	cmd := newInitCmd()
	cmd.SetArgs([]string{"--repo", "octo/widgets"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("init: %v", err)
	}

	data, err := os.ReadFile(cfgPath)
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	if string(data) != "repo: keep/me\n" {
		t.Errorf("existing config was overwritten: %s", data)
	}
}
