package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// migrate applies every migrations/NNN_*.sql newer than the recorded
// schema version, each inside its own transaction.
func migrate(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY,
			applied_at TEXT NOT NULL
		)`)
	if err != nil {
		return fmt.Errorf("ensure schema table: %w", err)
	}

	var current int
	err = db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(version), 0) FROM schema_version`,
	).Scan(&current)
	if err != nil {
		return fmt.Errorf("get current version: %w", err)
	}

	names, err := migrationNames()
	if err != nil {
		return fmt.Errorf("list migrations: %w", err)
	}

	for _, name := range names {
		ver := migrationVersion(name)
		if ver <= current {
			continue
		}
		if err := applyMigration(ctx, db, name, ver); err != nil {
			return fmt.Errorf("apply migration %s: %w", name, err)
		}
	}
	return nil
}

func migrationNames() ([]string, error) {
	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return nil, err
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".sql") {
			continue
		}
		if migrationVersion(e.Name()) == 0 {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Slice(names, func(i, j int) bool {
		return migrationVersion(names[i]) < migrationVersion(names[j])
	})
	return names, nil
}

// migrationVersion extracts the numeric prefix of "NNN_name.sql".
// Files without one are skipped.
func migrationVersion(name string) int {
	prefix, _, ok := strings.Cut(name, "_")
	if !ok {
		return 0
	}
	ver, err := strconv.Atoi(prefix)
	if err != nil {
		return 0
	}
	return ver
}

func applyMigration(ctx context.Context, db *sql.DB, name string, ver int) error {
	data, err := migrationsFS.ReadFile("migrations/" + name)
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, string(data)); err != nil {
		return fmt.Errorf("exec %s: %w", name, err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO schema_version (version, applied_at) VALUES (?, datetime('now'))`,
		ver,
	)
	if err != nil {
		return fmt.Errorf("record version: %w", err)
	}

	return tx.Commit()
}
