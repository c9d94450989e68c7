// Package triage produces advisory facet suggestions for board items.
// Suggestions come from three layers, in order: built-in keyword rules,
// operator rule packs (TOML), and an optional scripted hook (JavaScript).
// Nothing in this package mutates the tracker.
package triage

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

// Rule maps title keywords to suggested facet labels.
type Rule struct {
	Name    string   `toml:"name"`
	Match   []string `toml:"match"`   // case-insensitive substrings of the title
	Suggest []string `toml:"suggest"` // facet labels to propose
}

func (r Rule) matches(lowerTitle string) bool {
	for _, m := range r.Match {
		if strings.Contains(lowerTitle, strings.ToLower(m)) {
			return true
		}
	}
	return false
}

// builtinRules cover the common keyword signals. Operator rule packs run
// after these and can only add suggestions.
var builtinRules = []Rule{
	{Name: "bug-keywords", Match: []string{"bug", "crash", "panic", "broken", "regression"}, Suggest: []string{"type:bug"}},
	{Name: "feature-keywords", Match: []string{"add ", "support", "implement", "feature"}, Suggest: []string{"type:feature"}},
	{Name: "docs-keywords", Match: []string{"docs", "documentation", "readme"}, Suggest: []string{"type:docs", "area:docs"}},
	{Name: "perf-keywords", Match: []string{"slow", "performance", "latency", "memory leak"}, Suggest: []string{"type:perf"}},
	{Name: "api-area", Match: []string{"api", "endpoint", "handler"}, Suggest: []string{"area:api"}},
	{Name: "cli-area", Match: []string{"cli", "command", "flag"}, Suggest: []string{"area:cli"}},
	{Name: "storage-area", Match: []string{"database", "sqlite", "migration"}, Suggest: []string{"area:storage"}},
	{Name: "urgent-priority", Match: []string{"urgent", "blocker", "data loss", "security"}, Suggest: []string{"priority:high"}},
	{Name: "spec-ready", Match: []string{"acceptance criteria", "spec complete", "ready for dev"}, Suggest: []string{"spec:ready"}},
}

type rulesFile struct {
	Rule []Rule `toml:"rule"`
}

// LoadRules reads operator rules from a TOML file of [[rule]] blocks.
func LoadRules(path string) ([]Rule, error) {
	var rf rulesFile
	if _, err := toml.DecodeFile(path, &rf); err != nil {
		return nil, fmt.Errorf("load rules %s: %w", path, err)
	}
	for i, r := range rf.Rule {
		if r.Name == "" {
			return nil, fmt.Errorf("rules %s: rule %d missing name", path, i)
		}
		if len(r.Suggest) == 0 {
			return nil, fmt.Errorf("rules %s: rule %q suggests nothing", path, r.Name)
		}
	}
	return rf.Rule, nil
}
