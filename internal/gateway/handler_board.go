package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lanternworks/boardman/internal/board"
	"github.com/lanternworks/boardman/internal/github"
	"github.com/lanternworks/boardman/internal/store"
)

const (
	defaultListLimit     = 30
	defaultActivityHours = 24

	staleAfter = 14 * 24 * time.Hour
	staleLimit = 5
)

type issueListPayload struct {
	Source string       `json:"source"` // "tracker" or "local"
	Count  int          `json:"count"`
	Items  []board.Item `json:"items"`
}

func (h *handler) handleListIssues(
	ctx context.Context, state string, limit int,
) (json.RawMessage, *RPCError) {
	if limit <= 0 {
		limit = defaultListLimit
	}

	payload := issueListPayload{Source: "tracker"}
	items, err := h.lister.ListIssues(ctx, state, limit)
	if err != nil {
		h.logger.Warn("tracker listing failed, serving local snapshot", "error", err)
		f := store.ItemFilter{Limit: limit}
		if state != "" {
			f.State = &state
		}
		items, err = h.store.ListItems(ctx, f)
		if err != nil {
			return marshalErrorResult(fmt.Sprintf("list issues: %v", err)), nil
		}
		payload.Source = "local"
	}

	payload.Count = len(items)
	payload.Items = items
	return marshalJSONResult(payload)
}

// HealthReport is the boardman_board_health payload.
type HealthReport struct {
	Total       int            `json:"total"`
	ByState     map[string]int `json:"by_state"`
	NeedsTriage int            `json:"needs_triage"`
	Stale       []board.Item   `json:"stale"`
	LastSyncAt  *time.Time     `json:"last_sync_at,omitempty"`
}

func (h *handler) handleBoardHealth(ctx context.Context) (json.RawMessage, *RPCError) {
	raw, err := h.cache.GetOrCompute("board:health", h.ttls.Aggregate, func() (json.RawMessage, error) {
		counts, err := h.store.CountByState(ctx)
		if err != nil {
			return nil, fmt.Errorf("count by state: %w", err)
		}

		items, err := h.store.ListItems(ctx, store.ItemFilter{})
		if err != nil {
			return nil, fmt.Errorf("list items: %w", err)
		}
		needs := 0
		for _, it := range items {
			if h.classifier.NeedsTriage(it) {
				needs++
			}
		}

		stale, err := h.store.StaleItems(ctx, time.Now().Add(-staleAfter), h.states.Terminal(), staleLimit)
		if err != nil {
			return nil, fmt.Errorf("stale items: %w", err)
		}

		report := HealthReport{
			Total:       len(items),
			ByState:     counts,
			NeedsTriage: needs,
			Stale:       stale,
		}
		if at, ok := h.syncer.LastSync(ctx); ok {
			report.LastSyncAt = &at
		}
		return json.MarshalIndent(report, "", "  ")
	})
	if err != nil {
		return marshalErrorResult(fmt.Sprintf("board health: %v", err)), nil
	}
	return marshalToolResult(string(raw)), nil
}

type activityPayload struct {
	Hours   int             `json:"hours"`
	Commits []github.Commit `json:"commits"`
}

func (h *handler) handleRecentActivity(
	ctx context.Context, hours int,
) (json.RawMessage, *RPCError) {
	if hours <= 0 {
		hours = defaultActivityHours
	}

	key := fmt.Sprintf("github:activity:%d", hours)
	raw, err := h.cache.GetOrCompute(key, h.ttls.Activity, func() (json.RawMessage, error) {
		since := time.Now().Add(-time.Duration(hours) * time.Hour)
		commits, err := h.tracker.RecentActivity(ctx, since)
		if err != nil {
			return nil, err
		}
		return json.MarshalIndent(activityPayload{Hours: hours, Commits: commits}, "", "  ")
	})
	if err != nil {
		return marshalErrorResult(fmt.Sprintf("recent activity: %v", err)), nil
	}
	return marshalToolResult(string(raw)), nil
}

func (h *handler) handleSync(ctx context.Context) (json.RawMessage, *RPCError) {
	res, err := h.syncer.Run(ctx)
	if err != nil {
		return marshalErrorResult(fmt.Sprintf("sync failed: %v", err)), nil
	}

	// Everything cached describes the pre-sync world.
	h.cache.InvalidateAll()

	return marshalToolResult(fmt.Sprintf(
		"Synced %d item(s) from the tracker, pruned %d. Cache cleared.",
		res.Fetched, res.Pruned)), nil
}
