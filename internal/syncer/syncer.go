// Package syncer mirrors the remote tracker into the local store so
// transitions and fallback listings can run against a recent snapshot.
package syncer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lanternworks/boardman/internal/board"
	"github.com/lanternworks/boardman/internal/store"
)

// SyncMark names the sync cursor row.
const SyncMark = "issues"

// fetchLimit bounds one sync pass. Boards past this size want paging,
// not a bigger constant.
const fetchLimit = 200

// Lister supplies the remote items to mirror.
type Lister interface {
	ListIssues(ctx context.Context, state string, limit int) ([]board.Item, error)
}

// Result describes one completed sync pass.
type Result struct {
	Fetched         int       `json:"fetched"`
	Pruned          int       `json:"pruned"`
	PrunedDecisions int       `json:"pruned_decisions"`
	At              time.Time `json:"at"`
}

// Syncer replaces the local item snapshot with the remote listing in a
// single transaction: a failed pass leaves the previous snapshot intact.
type Syncer struct {
	lister    Lister
	store     store.Store
	retention time.Duration
	logger    *slog.Logger
	afterRun  func()
}

// New builds a Syncer. Decisions older than retention are pruned on each
// pass; zero retention keeps them all.
func New(lister Lister, st store.Store, retention time.Duration, logger *slog.Logger) *Syncer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Syncer{
		lister:    lister,
		store:     st,
		retention: retention,
		logger:    logger.With("component", "syncer"),
	}
}

// AfterRun registers fn to run after every successful pass, one-shot or
// periodic. A completed pass rewrites the snapshot, so anything derived
// from it (cached listings, aggregates) is stale once fn fires.
func (s *Syncer) AfterRun(fn func()) {
	s.afterRun = fn
}

// Run performs one sync pass: fetch, upsert, prune rows that left the
// remote listing, record the pass, advance the sync mark.
func (s *Syncer) Run(ctx context.Context) (*Result, error) {
	items, err := s.lister.ListIssues(ctx, "", fetchLimit)
	if err != nil {
		return nil, fmt.Errorf("list issues: %w", err)
	}

	now := time.Now().UTC()
	res := &Result{Fetched: len(items), At: now}
	err = s.store.Tx(ctx, func(tx store.Store) error {
		ids := make([]int, 0, len(items))
		for _, it := range items {
			if err := tx.UpsertItem(ctx, &it); err != nil {
				return fmt.Errorf("upsert item %d: %w", it.ID, err)
			}
			ids = append(ids, it.ID)
		}

		pruned, err := tx.DeleteItemsNotIn(ctx, ids)
		if err != nil {
			return fmt.Errorf("prune items: %w", err)
		}
		res.Pruned = pruned

		if s.retention > 0 {
			n, err := tx.PruneDecisions(ctx, now.Add(-s.retention))
			if err != nil {
				return fmt.Errorf("prune decisions: %w", err)
			}
			res.PrunedDecisions = n
		}

		dec := &store.Decision{
			Action: "sync",
			Status: "ok",
			Detail: fmt.Sprintf("fetched %d item(s), pruned %d", res.Fetched, res.Pruned),
		}
		if err := tx.InsertDecision(ctx, dec); err != nil {
			return fmt.Errorf("record sync: %w", err)
		}
		return tx.SetSyncMark(ctx, SyncMark, now)
	})
	if err != nil {
		return nil, err
	}

	if s.afterRun != nil {
		s.afterRun()
	}
	s.logger.Info("sync complete",
		"fetched", res.Fetched, "pruned", res.Pruned, "pruned_decisions", res.PrunedDecisions)
	return res, nil
}

// RunEvery runs sync passes on a fixed interval until ctx is cancelled.
// A failed pass is logged and the loop keeps going.
func (s *Syncer) RunEvery(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := s.Run(ctx); err != nil {
				s.logger.Error("periodic sync failed", "error", err)
			}
		}
	}
}

// LastSync reports when the previous pass completed. The zero time and
// false mean no pass has run yet.
func (s *Syncer) LastSync(ctx context.Context) (time.Time, bool) {
	at, err := s.store.GetSyncMark(ctx, SyncMark)
	if err != nil {
		return time.Time{}, false
	}
	return at, true
}
