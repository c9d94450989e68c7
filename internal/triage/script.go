package triage

import (
	"errors"
	"fmt"

	"github.com/dop251/goja"
	"github.com/lanternworks/boardman/internal/board"
)

// scriptHook runs an operator-provided JavaScript classify(item) hook.
// The program is compiled once; each call gets a fresh VM because a goja
// runtime is not safe for concurrent use.
type scriptHook struct {
	prog *goja.Program
}

func compileScript(src string) (*scriptHook, error) {
	prog, err := goja.Compile("triage.js", src, true)
	if err != nil {
		return nil, fmt.Errorf("compile triage script: %w", err)
	}

	// Fail at startup, not per item, when the hook is missing.
	vm := goja.New()
	if _, err := vm.RunProgram(prog); err != nil {
		return nil, fmt.Errorf("evaluate triage script: %w", err)
	}
	if _, ok := goja.AssertFunction(vm.Get("classify")); !ok {
		return nil, errors.New("triage script must define classify(item)")
	}
	return &scriptHook{prog: prog}, nil
}

func (h *scriptHook) run(it board.Item) ([]string, error) {
	vm := goja.New()
	if _, err := vm.RunProgram(h.prog); err != nil {
		return nil, fmt.Errorf("evaluate script: %w", err)
	}
	// Evaluation can diverge between the startup check and this call.
	fn, ok := goja.AssertFunction(vm.Get("classify"))
	if !ok {
		return nil, errors.New("triage script must define classify(item)")
	}

	val, err := fn(goja.Undefined(), vm.ToValue(map[string]any{
		"id":     it.ID,
		"title":  it.Title,
		"state":  it.State,
		"facets": it.Facets,
	}))
	if err != nil {
		return nil, fmt.Errorf("classify(%d): %w", it.ID, err)
	}
	return exportLabels(val)
}

// exportLabels converts the hook's return value to facet labels. The
// hook may return nothing; anything else must be an array of strings.
func exportLabels(val goja.Value) ([]string, error) {
	if val == nil || goja.IsUndefined(val) || goja.IsNull(val) {
		return nil, nil
	}
	raw, ok := val.Export().([]any)
	if !ok {
		return nil, fmt.Errorf("classify must return an array of labels, got %T", val.Export())
	}
	labels := make([]string, 0, len(raw))
	for _, v := range raw {
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("classify returned non-string label %v", v)
		}
		labels = append(labels, s)
	}
	return labels, nil
}
