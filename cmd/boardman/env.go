package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/lanternworks/boardman/internal/config"
	"github.com/lanternworks/boardman/internal/store/sqlite"
)

// appConfig holds process-level settings resolved from environment
// variables and flags. Board behavior lives in boardman.yaml.
type appConfig struct {
	ConfigFile string
	DBPath     string
	LogLevel   string // overrides the file's log_level when set
}

func loadAppConfig() *appConfig {
	return &appConfig{
		ConfigFile: envOr("BOARDMAN_CONFIG", defaultDataPath("boardman.yaml")),
		DBPath:     envOr("BOARDMAN_DB", defaultDataPath("boardman.db")),
		LogLevel:   envOr("BOARDMAN_LOG_LEVEL", ""),
	}
}

// applyOverrides lets flags win over environment variables. Empty flag
// values leave the resolved setting alone.
func (a *appConfig) applyOverrides(configFile, dbPath, logLevel string) {
	if configFile != "" {
		a.ConfigFile = configFile
	}
	if dbPath != "" {
		a.DBPath = dbPath
	}
	if logLevel != "" {
		a.LogLevel = logLevel
	}
}

// defaultDataPath returns ~/.boardman/<filename>, falling back to a
// CWD-relative path if the home directory can't be resolved.
func defaultDataPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filename
	}
	return filepath.Join(home, ".boardman", filename)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseLogLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// resolveConfig loads boardman.yaml if it exists, else the defaults.
func resolveConfig(app *appConfig) (*config.FileConfig, error) {
	if _, err := os.Stat(app.ConfigFile); err == nil {
		return config.LoadFile(app.ConfigFile)
	}
	return config.Default(), nil
}

// requireRepo applies the --repo override and rejects a config that
// still names no repository.
func requireRepo(cfg *config.FileConfig, repoFlag string) error {
	if repoFlag != "" {
		cfg.Repo = repoFlag
		return config.Validate(cfg)
	}
	if cfg.Repo == "" {
		return errors.New("no repository configured: set repo in boardman.yaml or pass --repo owner/name")
	}
	return nil
}

// openStore opens the local database, creating the data directory on
// first use.
func openStore(ctx context.Context, path string) (*sqlite.DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
	}
	return sqlite.New(ctx, path)
}
