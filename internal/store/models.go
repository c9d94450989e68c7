package store

import "time"

// Decision is one recorded outcome: a classification suggestion, a board
// transition, or a sync. Decisions are append-only; the log is the
// system's memory of what it did and why.
type Decision struct {
	ID        string    `json:"id"`
	ItemID    int       `json:"item_id"`
	Action    string    `json:"action"` // "classify", "transition", "sync"
	Status    string    `json:"status"` // per-item status, or "ok"/"error"
	Detail    string    `json:"detail,omitempty"`
	DryRun    bool      `json:"dry_run"`
	CreatedAt time.Time `json:"created_at"`
}

// DecisionFilter specifies query parameters for listing decisions.
type DecisionFilter struct {
	ItemID *int       `json:"item_id,omitempty"`
	Action *string    `json:"action,omitempty"`
	Status *string    `json:"status,omitempty"`
	After  *time.Time `json:"after,omitempty"`
	Limit  int        `json:"limit"`
	Offset int        `json:"offset"`
}

// ItemFilter specifies query parameters for listing items.
type ItemFilter struct {
	State  *string `json:"state,omitempty"`
	Limit  int     `json:"limit"`
	Offset int     `json:"offset"`
}
