package command

import (
	"fmt"
	"sort"
	"strings"
)

// Trigger is a modifier set plus a key or mouse button.
type Trigger struct {
	Mods []string
	Key  string
}

// modOrder sorts modifiers the way X11 numbers them.
var modOrder = map[string]int{
	"shift": 0, "lock": 1, "control": 2,
	"mod1": 3, "mod2": 4, "mod3": 5, "mod4": 6, "mod5": 7,
}

var modAliases = map[string]string{
	"ctrl":  "control",
	"alt":   "mod1",
	"super": "mod4",
	"win":   "mod4",
}

// NormalizeMod maps aliases to X11 modifier names.
func NormalizeMod(m string) (string, error) {
	m = strings.ToLower(strings.TrimSpace(m))
	if alias, ok := modAliases[m]; ok {
		m = alias
	}
	if _, ok := modOrder[m]; !ok {
		return "", fmt.Errorf("unknown modifier %q", m)
	}
	return m, nil
}

// NewTrigger normalises and orders the modifiers.
func NewTrigger(mods []string, key string) (Trigger, error) {
	if strings.TrimSpace(key) == "" {
		return Trigger{}, fmt.Errorf("key is empty")
	}
	seen := make(map[string]struct{}, len(mods))
	out := make([]string, 0, len(mods))
	for _, m := range mods {
		n, err := NormalizeMod(m)
		if err != nil {
			return Trigger{}, err
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return modOrder[out[i]] < modOrder[out[j]] })
	return Trigger{Mods: out, Key: key}, nil
}

// String renders the trigger in the "mod4-shift-h" form the key grabber
// parses.
func (t Trigger) String() string {
	if len(t.Mods) == 0 {
		return t.Key
	}
	return strings.Join(t.Mods, "-") + "-" + t.Key
}

// Action is one command of a binding, optionally limited to some layouts.
type Action struct {
	Command
	// WhenLayout lists layout names this action applies to; empty means all.
	WhenLayout []string `json:"when_layout,omitempty"`
}

// Applies reports whether the action runs under the named layout.
func (a Action) Applies(layout string) bool {
	if len(a.WhenLayout) == 0 {
		return true
	}
	for _, l := range a.WhenLayout {
		if l == layout {
			return true
		}
	}
	return false
}

// Binding maps a trigger to the actions it runs, in order.
type Binding struct {
	Trigger Trigger
	Actions []Action
}

// Table is the resolved binding table keyed by trigger string.
type Table struct {
	bindings map[string]Binding
	order    []string
}

// Resolve builds the binding table. When two bindings share a trigger the
// one registered last wins; the overridden triggers are returned so the
// caller can warn about them.
func Resolve(bindings []Binding) (*Table, []Trigger) {
	t := &Table{bindings: make(map[string]Binding, len(bindings))}
	var dups []Trigger
	for _, b := range bindings {
		key := b.Trigger.String()
		if _, ok := t.bindings[key]; ok {
			dups = append(dups, b.Trigger)
		} else {
			t.order = append(t.order, key)
		}
		t.bindings[key] = b
	}
	return t, dups
}

// Lookup returns the binding for a trigger string.
func (t *Table) Lookup(trigger string) (Binding, bool) {
	if t == nil {
		return Binding{}, false
	}
	b, ok := t.bindings[trigger]
	return b, ok
}

// Bindings returns the resolved bindings in first-registration order.
func (t *Table) Bindings() []Binding {
	if t == nil {
		return nil
	}
	out := make([]Binding, 0, len(t.order))
	for _, key := range t.order {
		out = append(out, t.bindings[key])
	}
	return out
}

// Len returns the number of distinct triggers.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.bindings)
}
