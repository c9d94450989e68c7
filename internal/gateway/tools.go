package gateway

import "encoding/json"

// toolDefinitions returns every tool the server advertises, in the order
// they appear in tools/list.
func toolDefinitions() []Tool {
	return []Tool{
		{
			Name: "boardman_bulk_classify",
			Description: "Scan board items that are missing required facets and suggest " +
				"classification labels for each. Suggestions are advisory: no labels are " +
				"changed. Items are processed one at a time; a failing item becomes an " +
				"error entry in the report instead of aborting the batch.",
			InputSchema: json.RawMessage(`{
				"type": "object",
				"properties": {
					"max_items": {
						"type": "integer",
						"description": "Upper bound on items to classify (default 20)"
					},
					"state": {
						"type": "string",
						"description": "Only consider items in this board state"
					}
				}
			}`),
		},
		{
			Name: "boardman_bulk_move",
			Description: "Move a list of items to a target board state. Items already " +
				"in the target state are reported, not re-moved. Set dry_run to preview " +
				"the moves without changing anything.",
			InputSchema: json.RawMessage(`{
				"type": "object",
				"properties": {
					"item_ids": {
						"type": "array",
						"items": {"type": "integer"},
						"description": "Issue numbers to move"
					},
					"state": {
						"type": "string",
						"description": "Target board state"
					},
					"dry_run": {
						"type": "boolean",
						"description": "Report what would happen without moving anything"
					}
				},
				"required": ["item_ids", "state"]
			}`),
		},
		{
			Name: "boardman_classify_issue",
			Description: "Classify a single issue and return its suggested facets. " +
				"Advisory only; nothing is written.",
			InputSchema: json.RawMessage(`{
				"type": "object",
				"properties": {
					"item_id": {
						"type": "integer",
						"description": "Issue number"
					}
				},
				"required": ["item_id"]
			}`),
		},
		{
			Name: "boardman_board_health",
			Description: "Summarize the board: item counts per state, how many items " +
				"still need triage, the oldest untouched items, and when the last sync ran.",
			InputSchema: json.RawMessage(`{"type": "object", "properties": {}}`),
		},
		{
			Name: "boardman_list_issues",
			Description: "List board items, optionally filtered by state. Served from " +
				"cache when a recent listing exists.",
			InputSchema: json.RawMessage(`{
				"type": "object",
				"properties": {
					"state": {
						"type": "string",
						"description": "Only items in this board state"
					},
					"limit": {
						"type": "integer",
						"description": "Maximum items to return (default 30)"
					}
				}
			}`),
		},
		{
			Name: "boardman_recent_activity",
			Description: "Show recent commits and the board items they reference.",
			InputSchema: json.RawMessage(`{
				"type": "object",
				"properties": {
					"hours": {
						"type": "integer",
						"description": "Look-back window in hours (default 24)"
					}
				}
			}`),
		},
		{
			Name: "boardman_sync",
			Description: "Refresh the local snapshot from the tracker now and drop all " +
				"cached listings. Run this when items look stale or a bulk_move reported " +
				"unknown items.",
			InputSchema: json.RawMessage(`{"type": "object", "properties": {}}`),
		},
		{
			Name: "boardman_cache_stats",
			Description: "Report cache contents and hit rates without disturbing any entry.",
			InputSchema: json.RawMessage(`{"type": "object", "properties": {}}`),
		},
		{
			Name: "boardman_flush_cache",
			Description: "Drop cached entries. With a prefix only matching keys are " +
				"dropped; without one the whole cache is cleared.",
			InputSchema: json.RawMessage(`{
				"type": "object",
				"properties": {
					"prefix": {
						"type": "string",
						"description": "Key prefix to invalidate, e.g. \"github:\""
					}
				}
			}`),
		},
		{
			Name: "boardman_op_metrics",
			Description: "Report per-operation call counts, error counts, and average " +
				"latency since the server started.",
			InputSchema: json.RawMessage(`{"type": "object", "properties": {}}`),
		},
		{
			Name: "boardman_decisions",
			Description: "List recorded decisions (classifications, moves, syncs), " +
				"newest first.",
			InputSchema: json.RawMessage(`{
				"type": "object",
				"properties": {
					"item_id": {
						"type": "integer",
						"description": "Only decisions about this item"
					},
					"action": {
						"type": "string",
						"description": "Only decisions of this kind: classify, transition, or sync"
					},
					"limit": {
						"type": "integer",
						"description": "Maximum decisions to return (default 50)"
					}
				}
			}`),
		},
	}
}
