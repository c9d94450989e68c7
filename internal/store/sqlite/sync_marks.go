package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lanternworks/boardman/internal/store"
)

func (d *DB) SetSyncMark(ctx context.Context, name string, at time.Time) error {
	_, err := d.q.ExecContext(ctx, `
		INSERT INTO sync_marks (name, synced_at) VALUES (?, ?)
		ON CONFLICT(name) DO UPDATE SET synced_at = excluded.synced_at`,
		name, formatTime(at),
	)
	return err
}

func (d *DB) GetSyncMark(ctx context.Context, name string) (time.Time, error) {
	var s string
	err := d.q.QueryRowContext(ctx,
		`SELECT synced_at FROM sync_marks WHERE name = ?`, name).Scan(&s)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, store.ErrNotFound
	}
	if err != nil {
		return time.Time{}, err
	}
	return parseTime(s), nil
}
