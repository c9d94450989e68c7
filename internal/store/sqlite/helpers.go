package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/lanternworks/boardman/internal/store"
)

const timeFormat = time.RFC3339

func formatTime(t time.Time) string {
	return t.UTC().Format(timeFormat)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(timeFormat, s)
	return t
}

// rowScanner covers *sql.Row and *sql.Rows for shared scan code.
type rowScanner interface {
	Scan(dest ...any) error
}

// Facet lists are stored as JSON text columns.
func encodeFacets(facets []string) (string, error) {
	if len(facets) == 0 {
		return "[]", nil
	}
	data, err := json.Marshal(facets)
	if err != nil {
		return "", fmt.Errorf("encode facets: %w", err)
	}
	return string(data), nil
}

func decodeFacets(s string) ([]string, error) {
	if s == "" || s == "[]" {
		return nil, nil
	}
	var facets []string
	if err := json.Unmarshal([]byte(s), &facets); err != nil {
		return nil, fmt.Errorf("decode facets: %w", err)
	}
	return facets, nil
}

func checkRowsAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func mapConstraintError(err error) error {
	if err == nil {
		return nil
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "unique_") ||
		strings.Contains(msg, "already exists") {
		return store.ErrAlreadyExists
	}
	return err
}
