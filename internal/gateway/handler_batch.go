package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/lanternworks/boardman/internal/batch"
	"github.com/lanternworks/boardman/internal/board"
	"github.com/lanternworks/boardman/internal/store"
)

func (h *handler) handleBulkClassify(
	ctx context.Context, maxItems int, state string,
) (json.RawMessage, *RPCError) {
	report, err := h.executor.BulkClassify(ctx, maxItems, state)
	if err != nil {
		return marshalErrorResult(fmt.Sprintf("bulk classify failed: %v", err)), nil
	}

	for _, res := range report.Results {
		dec := &store.Decision{
			ItemID: res.ItemID(),
			Action: "classify",
			Status: res.Status(),
		}
		switch res.Status() {
		case batch.StatusTriaged:
			dec.Detail = strings.Join(res.Suggested().Labels, ", ")
		case batch.StatusError:
			dec.Detail = res.Err()
		}
		h.recordDecision(ctx, dec)
	}

	return marshalJSONResult(report)
}

func (h *handler) handleBulkMove(
	ctx context.Context, itemIDs []int, state string, dryRun bool,
) (json.RawMessage, *RPCError) {
	if state == "" {
		return marshalErrorResult("state is required."), nil
	}

	report, err := h.executor.BulkTransition(ctx, itemIDs, state, dryRun)
	if err != nil {
		return marshalErrorResult(fmt.Sprintf("bulk move failed: %v", err)), nil
	}

	for _, res := range report.Results {
		dec := &store.Decision{
			ItemID: res.ItemID(),
			Action: "transition",
			Status: res.Status(),
			DryRun: report.DryRun,
		}
		if res.Status() == batch.StatusError {
			dec.Detail = res.Err()
		} else {
			dec.Detail = fmt.Sprintf("%s -> %s", res.From(), res.To())
		}
		h.recordDecision(ctx, dec)
	}

	// Live moves rewrite tracker labels and local rows alike, so
	// everything cached describes the pre-move board.
	if !report.DryRun && report.Moved > 0 {
		h.cache.InvalidateAll()
	}
	return marshalJSONResult(report)
}

func (h *handler) handleClassifyIssue(
	ctx context.Context, itemID int,
) (json.RawMessage, *RPCError) {
	if itemID <= 0 {
		return marshalErrorResult("item_id is required."), nil
	}

	key := fmt.Sprintf("derived:classify:%d", itemID)
	raw, err := h.cache.GetOrCompute(key, h.ttls.Derived, func() (json.RawMessage, error) {
		it, err := h.resolveItem(ctx, itemID)
		if err != nil {
			return nil, err
		}

		suggestions, err := h.classifier.Classify(ctx, *it)
		if err != nil {
			return nil, err
		}

		var res batch.ClassifyResult
		if len(suggestions) == 0 {
			res = batch.AlreadyClassifiedResult(*it)
		} else {
			res = batch.TriagedResult(*it, suggestions)
		}

		dec := &store.Decision{ItemID: it.ID, Action: "classify", Status: res.Status()}
		if sf := res.Suggested(); sf != nil {
			dec.Detail = strings.Join(sf.Labels, ", ")
		}
		h.recordDecision(ctx, dec)

		return json.MarshalIndent(res, "", "  ")
	})
	if err != nil {
		return marshalErrorResult(fmt.Sprintf("classify issue %d: %v", itemID, err)), nil
	}
	return marshalToolResult(string(raw)), nil
}

// resolveItem prefers the tracker's view of an item and falls back to
// the local snapshot when the tracker is unreachable.
func (h *handler) resolveItem(ctx context.Context, id int) (*board.Item, error) {
	it, err := h.tracker.GetIssue(ctx, id)
	if err == nil {
		return it, nil
	}
	h.logger.Warn("tracker lookup failed, trying local store", "item", id, "error", err)

	local, lerr := h.store.GetItem(ctx, id)
	if lerr != nil {
		return nil, fmt.Errorf("item %d not found on tracker or locally: %w", id, err)
	}
	return local, nil
}
