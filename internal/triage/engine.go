package triage

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/lanternworks/boardman/internal/board"
)

// Engine classifies items against its rule set. Safe for concurrent use:
// rules are immutable after construction and each scripted call runs in
// its own VM.
type Engine struct {
	rules    []Rule
	required []string
	script   *scriptHook // nil when no script is configured
	logger   *slog.Logger
}

// NewEngine builds an Engine from operator rules (appended after the
// built-ins), required facet patterns, and an optional JavaScript hook
// source. An empty required list selects the defaults.
func NewEngine(rules []Rule, required []string, script string, logger *slog.Logger) (*Engine, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if len(required) == 0 {
		required = board.DefaultRequiredFacets()
	}

	e := &Engine{
		rules:    append(slices.Clone(builtinRules), rules...),
		required: required,
		logger:   logger.With("component", "triage"),
	}
	if script != "" {
		hook, err := compileScript(script)
		if err != nil {
			return nil, err
		}
		e.script = hook
	}
	return e, nil
}

// NeedsTriage reports whether the item is missing any required facet.
func (e *Engine) NeedsTriage(it board.Item) bool {
	return len(board.MissingFacets(it.Facets, e.required)) > 0
}

// Classify returns the actionable facet labels suggested for the item,
// in rule order, deduplicated. An empty result means the item already
// carries everything the rules would suggest.
func (e *Engine) Classify(_ context.Context, it board.Item) ([]string, error) {
	title := strings.ToLower(it.Title)

	var suggestions []string
	seen := make(map[string]bool)
	add := func(label string) {
		if seen[label] || !e.actionable(it, label) {
			return
		}
		seen[label] = true
		suggestions = append(suggestions, label)
	}

	for _, r := range e.rules {
		if r.matches(title) {
			for _, s := range r.Suggest {
				add(s)
			}
		}
	}

	if e.script != nil {
		extra, err := e.script.run(it)
		if err != nil {
			return nil, fmt.Errorf("scripted rules: %w", err)
		}
		for _, s := range extra {
			add(s)
		}
	}

	e.logger.Debug("classified item", "item", it.ID, "suggestions", len(suggestions))
	return suggestions, nil
}

// actionable filters suggestions the item already satisfies. The type,
// area, and priority groups are single-valued: carrying any facet in the
// group closes it.
func (e *Engine) actionable(it board.Item, label string) bool {
	if slices.Contains(it.Facets, label) {
		return false
	}
	switch group := board.FacetGroup(label); group {
	case "type", "area", "priority":
		return !board.HasFacet(it.Facets, group+":*")
	}
	return true
}
