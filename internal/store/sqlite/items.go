package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lanternworks/boardman/internal/board"
	"github.com/lanternworks/boardman/internal/store"
)

const itemColumns = `id, title, state, facets, url, updated_at`

func (d *DB) UpsertItem(ctx context.Context, it *board.Item) error {
	facets, err := encodeFacets(it.Facets)
	if err != nil {
		return err
	}
	if it.UpdatedAt.IsZero() {
		it.UpdatedAt = time.Now().UTC()
	}

	_, err = d.q.ExecContext(ctx, `
		INSERT INTO items (id, title, state, facets, url, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			state = excluded.state,
			facets = excluded.facets,
			url = excluded.url,
			updated_at = excluded.updated_at`,
		it.ID, it.Title, it.State, facets, it.URL, formatTime(it.UpdatedAt),
	)
	return err
}

func (d *DB) GetItem(ctx context.Context, id int) (*board.Item, error) {
	row := d.q.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM items WHERE id = ?`, id)

	it, err := scanItemRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	return it, err
}

func (d *DB) ListItems(ctx context.Context, f store.ItemFilter) ([]board.Item, error) {
	var conds []string
	var args []any
	if f.State != nil {
		conds = append(conds, "state = ?")
		args = append(args, *f.State)
	}

	q := `SELECT ` + itemColumns + ` FROM items`
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY id ASC"
	if f.Limit > 0 {
		q += " LIMIT ? OFFSET ?"
		args = append(args, f.Limit, f.Offset)
	}

	rows, err := d.q.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []board.Item
	for rows.Next() {
		it, err := scanItemRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *it)
	}
	return out, rows.Err()
}

func (d *DB) SetItemState(ctx context.Context, id int, state string) error {
	res, err := d.q.ExecContext(ctx,
		`UPDATE items SET state = ? WHERE id = ?`, state, id)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func (d *DB) CountByState(ctx context.Context) (map[string]int, error) {
	rows, err := d.q.QueryContext(ctx,
		`SELECT state, COUNT(*) FROM items GROUP BY state`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var state string
		var n int
		if err := rows.Scan(&state, &n); err != nil {
			return nil, fmt.Errorf("scan state count: %w", err)
		}
		out[state] = n
	}
	return out, rows.Err()
}

// StaleItems lists items untouched since before, oldest first. Items in
// the exclude state (the board's terminal column) are skipped; an empty
// exclude skips nothing.
func (d *DB) StaleItems(ctx context.Context, before time.Time, exclude string, limit int) ([]board.Item, error) {
	if limit <= 0 {
		limit = 20
	}
	q := `SELECT ` + itemColumns + ` FROM items WHERE updated_at < ?`
	args := []any{formatTime(before)}
	if exclude != "" {
		q += ` AND state != ?`
		args = append(args, exclude)
	}
	q += ` ORDER BY updated_at ASC LIMIT ?`
	args = append(args, limit)

	rows, err := d.q.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []board.Item
	for rows.Next() {
		it, err := scanItemRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *it)
	}
	return out, rows.Err()
}

// DeleteItemsNotIn removes rows absent from ids, so the local view tracks
// remote deletions and closures. An empty ids list clears the table.
func (d *DB) DeleteItemsNotIn(ctx context.Context, ids []int) (int, error) {
	q := `DELETE FROM items`
	var args []any
	if len(ids) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
		q += ` WHERE id NOT IN (` + placeholders + `)`
		for _, id := range ids {
			args = append(args, id)
		}
	}

	res, err := d.q.ExecContext(ctx, q, args...)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

func scanItemRow(row rowScanner) (*board.Item, error) {
	var it board.Item
	var facets, updatedAt string
	err := row.Scan(&it.ID, &it.Title, &it.State, &facets, &it.URL, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan item row: %w", err)
	}
	it.Facets, err = decodeFacets(facets)
	if err != nil {
		return nil, err
	}
	it.UpdatedAt = parseTime(updatedAt)
	return &it, nil
}
