// Package rules implements the typed window predicates used for group
// auto-assignment and for deciding which new windows start floating.
package rules

import (
	"fmt"
	"regexp"
	"strings"
)

// Kind selects which window property a predicate inspects.
type Kind string

const (
	ClassEquals Kind = "class"
	ClassRegex  Kind = "class_regex"
	TitleEquals Kind = "title"
	TitleRegex  Kind = "title_regex"
	RoleEquals  Kind = "role"
	TypeEquals  Kind = "type"
	Transient   Kind = "transient"
	FixedSize   Kind = "fixed_size"
)

// Subject is the view of a newly created window that predicates evaluate.
type Subject struct {
	Class     string
	Instance  string
	Title     string
	Role      string
	Type      string
	Transient bool
	FixedSize bool
}

// Predicate is a single typed test against a Subject.
type Predicate struct {
	Kind  Kind
	Value string
	re    *regexp.Regexp
}

// NewPredicate builds a predicate, compiling regex values up front.
func NewPredicate(kind Kind, value string) (Predicate, error) {
	p := Predicate{Kind: kind, Value: value}
	switch kind {
	case ClassEquals, TitleEquals, RoleEquals, TypeEquals:
		if value == "" {
			return Predicate{}, fmt.Errorf("%s: value is empty", kind)
		}
	case ClassRegex, TitleRegex:
		re, err := regexp.Compile(value)
		if err != nil {
			return Predicate{}, fmt.Errorf("%s: %w", kind, err)
		}
		p.re = re
	case Transient, FixedSize:
	default:
		return Predicate{}, fmt.Errorf("unknown match kind %q", kind)
	}
	return p, nil
}

// MustPredicate is NewPredicate for static tables; it panics on error.
func MustPredicate(kind Kind, value string) Predicate {
	p, err := NewPredicate(kind, value)
	if err != nil {
		panic(err)
	}
	return p
}

// Matches reports whether s satisfies the predicate. Class tests look at both
// halves of WM_CLASS.
func (p Predicate) Matches(s Subject) bool {
	switch p.Kind {
	case ClassEquals:
		return s.Class == p.Value || s.Instance == p.Value
	case ClassRegex:
		return p.re != nil && (p.re.MatchString(s.Class) || p.re.MatchString(s.Instance))
	case TitleEquals:
		return s.Title == p.Value
	case TitleRegex:
		return p.re != nil && p.re.MatchString(s.Title)
	case RoleEquals:
		return s.Role == p.Value
	case TypeEquals:
		return strings.EqualFold(s.Type, p.Value)
	case Transient:
		return s.Transient
	case FixedSize:
		return s.FixedSize
	}
	return false
}

func (p Predicate) String() string {
	switch p.Kind {
	case Transient, FixedSize:
		return string(p.Kind)
	}
	return fmt.Sprintf("%s=%q", p.Kind, p.Value)
}

// Match is a conjunction of predicates. An empty Match never matches.
type Match []Predicate

// Matches reports whether every predicate holds.
func (m Match) Matches(s Subject) bool {
	if len(m) == 0 {
		return false
	}
	for _, p := range m {
		if !p.Matches(s) {
			return false
		}
	}
	return true
}

func (m Match) String() string {
	parts := make([]string, len(m))
	for i, p := range m {
		parts[i] = p.String()
	}
	return strings.Join(parts, " && ")
}

// First returns the index of the first match in declaration order that s
// satisfies, or -1.
func First(matches []Match, s Subject) int {
	for i, m := range matches {
		if m.Matches(s) {
			return i
		}
	}
	return -1
}

// Any reports whether any match in the list is satisfied.
func Any(matches []Match, s Subject) bool {
	return First(matches, s) >= 0
}
