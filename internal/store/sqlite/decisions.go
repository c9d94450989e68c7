package sqlite

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lanternworks/boardman/internal/store"
)

func (d *DB) InsertDecision(ctx context.Context, dec *store.Decision) error {
	if dec.ID == "" {
		dec.ID = uuid.NewString()
	}
	if dec.CreatedAt.IsZero() {
		dec.CreatedAt = time.Now().UTC()
	}

	_, err := d.q.ExecContext(ctx, `
		INSERT INTO decisions (id, item_id, action, status, detail, dry_run, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		dec.ID, dec.ItemID, dec.Action, dec.Status, dec.Detail,
		boolToInt(dec.DryRun), formatTime(dec.CreatedAt),
	)
	return mapConstraintError(err)
}

func (d *DB) ListDecisions(ctx context.Context, f store.DecisionFilter) ([]store.Decision, int, error) {
	where, args := buildDecisionWhere(f)

	// Count total.
	var total int
	countQ := "SELECT COUNT(*) FROM decisions" + where
	if err := d.q.QueryRowContext(ctx, countQ, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	// Fetch page.
	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}
	dataQ := `SELECT id, item_id, action, status, detail, dry_run, created_at
		FROM decisions` + where +
		` ORDER BY created_at DESC LIMIT ? OFFSET ?`
	dataArgs := append(args, limit, f.Offset)

	rows, err := d.q.QueryContext(ctx, dataQ, dataArgs...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []store.Decision
	for rows.Next() {
		var dec store.Decision
		var dryRun int
		var createdAt string
		err := rows.Scan(&dec.ID, &dec.ItemID, &dec.Action, &dec.Status,
			&dec.Detail, &dryRun, &createdAt)
		if err != nil {
			return nil, 0, fmt.Errorf("scan decision row: %w", err)
		}
		dec.DryRun = dryRun != 0
		dec.CreatedAt = parseTime(createdAt)
		out = append(out, dec)
	}
	return out, total, rows.Err()
}

func (d *DB) PruneDecisions(ctx context.Context, before time.Time) (int, error) {
	res, err := d.q.ExecContext(ctx,
		`DELETE FROM decisions WHERE created_at < ?`, formatTime(before))
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

func buildDecisionWhere(f store.DecisionFilter) (string, []any) {
	var conds []string
	var args []any
	if f.ItemID != nil {
		conds = append(conds, "item_id = ?")
		args = append(args, *f.ItemID)
	}
	if f.Action != nil {
		conds = append(conds, "action = ?")
		args = append(args, *f.Action)
	}
	if f.Status != nil {
		conds = append(conds, "status = ?")
		args = append(args, *f.Status)
	}
	if f.After != nil {
		conds = append(conds, "created_at >= ?")
		args = append(args, formatTime(*f.After))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
