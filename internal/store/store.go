package store

import (
	"context"
	"time"

	"github.com/lanternworks/boardman/internal/board"
)

// Store is the composite interface for all data access.
type Store interface {
	ItemStore
	DecisionStore
	SyncStore
	Tx(ctx context.Context, fn func(Store) error) error
	Ping(ctx context.Context) error
	Close() error
}

// ItemStore manages the locally recorded view of tracked issues. Rows are
// refreshed by sync and consulted by transitions; a missing row means the
// caller should sync first.
type ItemStore interface {
	UpsertItem(ctx context.Context, it *board.Item) error
	GetItem(ctx context.Context, id int) (*board.Item, error)
	ListItems(ctx context.Context, f ItemFilter) ([]board.Item, error)
	SetItemState(ctx context.Context, id int, state string) error
	CountByState(ctx context.Context) (map[string]int, error)
	StaleItems(ctx context.Context, before time.Time, exclude string, limit int) ([]board.Item, error)
	DeleteItemsNotIn(ctx context.Context, ids []int) (int, error)
}

// DecisionStore manages the append-only decision log.
type DecisionStore interface {
	InsertDecision(ctx context.Context, d *Decision) error
	ListDecisions(ctx context.Context, f DecisionFilter) ([]Decision, int, error)
	PruneDecisions(ctx context.Context, before time.Time) (int, error)
}

// SyncStore records when named external sources were last synced.
type SyncStore interface {
	SetSyncMark(ctx context.Context, name string, at time.Time) error
	GetSyncMark(ctx context.Context, name string) (time.Time, error)
}
