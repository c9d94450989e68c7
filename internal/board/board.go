// Package board defines the domain model for tracked issues: board states,
// classification facets, and the label conventions that encode both on the
// remote tracker.
package board

import (
	"strings"
	"time"
)

// Label conventions. Board state is carried by a single "status:" label;
// every other label is a classification facet.
const (
	StatePrefix = "status:"
	ReadyMarker = "spec:ready"
)

// Item is one tracked issue.
type Item struct {
	ID        int       `json:"id"`
	Title     string    `json:"title"`
	State     string    `json:"state"`
	Facets    []string  `json:"facets,omitempty"`
	URL       string    `json:"url,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// States is an ordered list of board states, first to last in the flow.
type States []string

// DefaultStates returns the standard board flow.
func DefaultStates() States {
	return States{"Backlog", "Ready", "Active", "Review", "Done"}
}

// Valid reports whether s names a known state.
func (st States) Valid(s string) bool {
	for _, name := range st {
		if name == s {
			return true
		}
	}
	return false
}

// Terminal returns the last state in the flow, where finished work
// lands. Empty for an empty state list.
func (st States) Terminal() string {
	if len(st) == 0 {
		return ""
	}
	return st[len(st)-1]
}

// StateLabel returns the label encoding of a board state.
func StateLabel(state string) string {
	return StatePrefix + state
}

// SplitLabels partitions raw tracker labels into a board state and facet
// labels. The first "status:" label wins; status labels are never facets.
func SplitLabels(labels []string) (state string, facets []string) {
	for _, l := range labels {
		if rest, ok := strings.CutPrefix(l, StatePrefix); ok {
			if state == "" {
				state = rest
			}
			continue
		}
		facets = append(facets, l)
	}
	return state, facets
}
