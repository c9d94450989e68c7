// Package batch applies an operation to many board items with per-item
// failure isolation: items run strictly sequentially in input order, a
// failing item becomes an error result rather than aborting the loop,
// and every batch produces an aggregate report.
package batch

import (
	"encoding/json"
	"strings"

	"github.com/lanternworks/boardman/internal/board"
)

// Per-item result statuses.
const (
	StatusTriaged           = "triaged"
	StatusAlreadyClassified = "already_classified"
	StatusMoved             = "moved"
	StatusAlreadyInState    = "already_in_state"
	StatusError             = "error"
)

// SuggestedFields is the advisory classification derived from a
// suggestion set. Labels carries every suggestion; the named fields hold
// the first suggestion of each single-valued group.
type SuggestedFields struct {
	Type      string   `json:"type,omitempty"`
	Area      string   `json:"area,omitempty"`
	Priority  string   `json:"priority,omitempty"`
	Labels    []string `json:"labels"`
	SpecReady bool     `json:"spec_ready"`
}

func mapSuggestions(suggestions []string) *SuggestedFields {
	sf := &SuggestedFields{Labels: suggestions}
	for _, label := range suggestions {
		if label == board.ReadyMarker {
			sf.SpecReady = true
			continue
		}
		group, value, ok := strings.Cut(label, ":")
		if !ok {
			continue
		}
		switch {
		case group == "type" && sf.Type == "":
			sf.Type = value
		case group == "area" && sf.Area == "":
			sf.Area = value
		case group == "priority" && sf.Priority == "":
			sf.Priority = value
		}
	}
	return sf
}

// ClassifyResult is the outcome for one item of a classification batch.
// Exactly one status applies, and an error message is carried iff the
// status is StatusError; the unexported fields plus constructors keep
// that invariant out of callers' hands.
type ClassifyResult struct {
	itemID    int
	title     string
	status    string
	suggested *SuggestedFields
	errMsg    string
}

// TriagedResult records actionable suggestions for an item.
func TriagedResult(it board.Item, suggestions []string) ClassifyResult {
	return ClassifyResult{
		itemID:    it.ID,
		title:     it.Title,
		status:    StatusTriaged,
		suggested: mapSuggestions(suggestions),
	}
}

// AlreadyClassifiedResult records that the item needs nothing.
func AlreadyClassifiedResult(it board.Item) ClassifyResult {
	return ClassifyResult{itemID: it.ID, title: it.Title, status: StatusAlreadyClassified}
}

// ClassifyErrorResult records a contained per-item failure.
func ClassifyErrorResult(it board.Item, err error) ClassifyResult {
	return ClassifyResult{itemID: it.ID, title: it.Title, status: StatusError, errMsg: err.Error()}
}

func (r ClassifyResult) ItemID() int                 { return r.itemID }
func (r ClassifyResult) Title() string               { return r.title }
func (r ClassifyResult) Status() string              { return r.status }
func (r ClassifyResult) Suggested() *SuggestedFields { return r.suggested }
func (r ClassifyResult) Err() string                 { return r.errMsg }

func (r ClassifyResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(classifyResultJSON{
		ItemID:          r.itemID,
		Title:           r.title,
		Status:          r.status,
		SuggestedFields: r.suggested,
		Error:           r.errMsg,
	})
}

type classifyResultJSON struct {
	ItemID          int              `json:"item_id"`
	Title           string           `json:"title"`
	Status          string           `json:"status"`
	SuggestedFields *SuggestedFields `json:"suggested_fields,omitempty"`
	Error           string           `json:"error,omitempty"`
}

// TransitionResult is the outcome for one item of a transition batch.
// The same tagged-variant rules apply as for ClassifyResult; FromState
// is empty for error results (the item's state may be unknown).
type TransitionResult struct {
	itemID int
	title  string
	status string
	from   string
	to     string
	errMsg string
}

// MovedResult records a transition, live or would-be (dry run).
func MovedResult(id int, title, from, to string) TransitionResult {
	return TransitionResult{itemID: id, title: title, status: StatusMoved, from: from, to: to}
}

// AlreadyInStateResult records that no move was needed.
func AlreadyInStateResult(id int, title, state string) TransitionResult {
	return TransitionResult{itemID: id, title: title, status: StatusAlreadyInState, from: state, to: state}
}

// TransitionErrorResult records a contained per-item failure. The target
// is kept so the report still shows what was attempted.
func TransitionErrorResult(id int, title, target string, err error) TransitionResult {
	return TransitionResult{itemID: id, title: title, status: StatusError, to: target, errMsg: err.Error()}
}

func (r TransitionResult) ItemID() int    { return r.itemID }
func (r TransitionResult) Title() string  { return r.title }
func (r TransitionResult) Status() string { return r.status }
func (r TransitionResult) From() string   { return r.from }
func (r TransitionResult) To() string     { return r.to }
func (r TransitionResult) Err() string    { return r.errMsg }

func (r TransitionResult) MarshalJSON() ([]byte, error) {
	out := transitionResultJSON{
		ItemID: r.itemID,
		Title:  r.title,
		Status: r.status,
		To:     r.to,
		Error:  r.errMsg,
	}
	if r.from != "" {
		out.From = &r.from
	}
	return json.Marshal(out)
}

type transitionResultJSON struct {
	ItemID int     `json:"item_id"`
	Title  string  `json:"title"`
	From   *string `json:"from_state"` // null when the state was never resolved
	To     string  `json:"to_state"`
	Status string  `json:"status"`
	Error  string  `json:"error,omitempty"`
}
