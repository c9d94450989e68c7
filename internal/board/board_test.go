package board

import (
	"reflect"
	"testing"
)

func TestSplitLabels(t *testing.T) {
	state, facets := SplitLabels([]string{"type:bug", "status:Active", "area:api"})
	if state != "Active" {
		t.Errorf("state = %q, want %q", state, "Active")
	}
	if want := []string{"type:bug", "area:api"}; !reflect.DeepEqual(facets, want) {
		t.Errorf("facets = %v, want %v", facets, want)
	}
}

func TestSplitLabelsFirstStatusWins(t *testing.T) {
	state, facets := SplitLabels([]string{"status:Backlog", "status:Done"})
	if state != "Backlog" {
		t.Errorf("state = %q, want %q", state, "Backlog")
	}
	if facets != nil {
		t.Errorf("status labels leaked into facets: %v", facets)
	}
}

func TestSplitLabelsNoStatus(t *testing.T) {
	state, facets := SplitLabels([]string{"type:bug"})
	if state != "" {
		t.Errorf("state = %q, want empty", state)
	}
	if len(facets) != 1 {
		t.Errorf("facets = %v, want one entry", facets)
	}
}

func TestStatesValid(t *testing.T) {
	st := DefaultStates()
	if !st.Valid("Backlog") {
		t.Error("Backlog should be a valid default state")
	}
	if st.Valid("Shipped") {
		t.Error("Shipped should not be a valid default state")
	}
}

func TestStatesTerminal(t *testing.T) {
	if got := DefaultStates().Terminal(); got != "Done" {
		t.Errorf("terminal = %q, want %q", got, "Done")
	}
	if got := (States{"Todo", "Doing", "Archived"}).Terminal(); got != "Archived" {
		t.Errorf("terminal = %q, want %q", got, "Archived")
	}
	if got := (States{}).Terminal(); got != "" {
		t.Errorf("terminal of empty states = %q, want empty", got)
	}
}

func TestStateLabel(t *testing.T) {
	if got := StateLabel("Review"); got != "status:Review" {
		t.Errorf("StateLabel(Review) = %q, want %q", got, "status:Review")
	}
}
