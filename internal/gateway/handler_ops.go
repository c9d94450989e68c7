package gateway

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/lanternworks/boardman/internal/store"
)

func (h *handler) handleCacheStats() (json.RawMessage, *RPCError) {
	return marshalJSONResult(h.cache.Stats())
}

func (h *handler) handleFlushCache(prefix string) (json.RawMessage, *RPCError) {
	if prefix == "" {
		h.cache.InvalidateAll()
		return marshalToolResult("Flushed all cache entries."), nil
	}
	h.cache.InvalidatePrefix(prefix)
	return marshalToolResult(fmt.Sprintf("Flushed cache entries with prefix %q.", prefix)), nil
}

func (h *handler) handleOpMetrics() (json.RawMessage, *RPCError) {
	return marshalJSONResult(h.recorder.Snapshot())
}

type decisionsPayload struct {
	Total     int              `json:"total"`
	Decisions []store.Decision `json:"decisions"`
}

func (h *handler) handleDecisions(
	ctx context.Context, itemID int, action string, limit int,
) (json.RawMessage, *RPCError) {
	f := store.DecisionFilter{Limit: limit}
	if itemID > 0 {
		f.ItemID = &itemID
	}
	if action != "" {
		f.Action = &action
	}

	decs, total, err := h.store.ListDecisions(ctx, f)
	if err != nil {
		return marshalErrorResult(fmt.Sprintf("list decisions: %v", err)), nil
	}
	return marshalJSONResult(decisionsPayload{Total: total, Decisions: decs})
}
