package rules

// DefaultFloatRules returns the float rules every configuration starts with:
// transient and fixed-size windows plus the usual dialog-like window types.
func DefaultFloatRules() []Match {
	out := []Match{
		{MustPredicate(Transient, "")},
		{MustPredicate(FixedSize, "")},
	}
	for _, t := range []string{"utility", "notification", "toolbar", "splash", "dialog"} {
		out = append(out, Match{MustPredicate(TypeEquals, t)})
	}
	for _, c := range []string{"confirm", "dialog", "download", "error", "file_progress", "notification", "splash", "toolbar"} {
		out = append(out, Match{MustPredicate(ClassEquals, c)})
	}
	return out
}

// FloatTable decides, once per window at creation time, whether the window
// starts floating.
type FloatTable struct {
	rules []Match
}

// NewFloatTable combines the defaults with configured rules. Defaults are
// evaluated first.
func NewFloatTable(configured []Match) *FloatTable {
	all := DefaultFloatRules()
	all = append(all, configured...)
	return &FloatTable{rules: all}
}

// Floating reports whether s should float, and the index of the rule that
// decided it (-1 when none did).
func (t *FloatTable) Floating(s Subject) (bool, int) {
	if t == nil {
		return false, -1
	}
	i := First(t.rules, s)
	return i >= 0, i
}

// Len returns the number of rules in the table.
func (t *FloatTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.rules)
}
