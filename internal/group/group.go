// Package group partitions windows into named groups. Each group keeps its
// windows in order, owns its layout instances and is shown on at most one
// screen.
package group

import (
	"errors"
	"fmt"

	"github.com/1broseidon/groupwm/internal/platform"
	"github.com/1broseidon/groupwm/internal/rules"
	"github.com/1broseidon/groupwm/internal/tiling"
)

var (
	// ErrNotFound is returned when a group name or member is unknown.
	ErrNotFound = errors.New("group not found")
	// ErrDuplicate is returned when two groups share a name.
	ErrDuplicate = errors.New("duplicate group name")
)

// NoScreen marks a hidden group.
const NoScreen = -1

// Spec describes one group at construction time.
type Spec struct {
	Name string
	// Affinity is the preferred screen index, or NoScreen.
	Affinity int
	Matches  []rules.Match
	// Layouts are prototypes; the group clones them.
	Layouts []tiling.Layout
}

// Group is a named virtual desktop.
type Group struct {
	name     string
	affinity int
	matches  []rules.Match
	layouts  []tiling.Layout
	current  int
	windows  []platform.WindowID
	focused  platform.WindowID
	screen   int
}

func newGroup(spec Spec) (*Group, error) {
	if spec.Name == "" {
		return nil, fmt.Errorf("group name is empty")
	}
	if len(spec.Layouts) == 0 {
		return nil, fmt.Errorf("group %q: no layouts", spec.Name)
	}
	g := &Group{
		name:     spec.Name,
		affinity: spec.Affinity,
		matches:  spec.Matches,
		screen:   NoScreen,
	}
	for _, l := range spec.Layouts {
		g.layouts = append(g.layouts, l.Clone())
	}
	return g, nil
}

// Name is the group's configured name.
func (g *Group) Name() string { return g.name }

// Affinity returns the preferred screen, or NoScreen.
func (g *Group) Affinity() int { return g.affinity }

// Matches returns the group's auto-assignment rules.
func (g *Group) Matches() []rules.Match { return g.matches }

// Layout returns the active layout.
func (g *Group) Layout() tiling.Layout { return g.layouts[g.current] }

// Layouts returns the group's layouts in cycle order.
func (g *Group) Layouts() []tiling.Layout { return g.layouts }

// Screen returns the screen the group is shown on, or NoScreen.
func (g *Group) Screen() int { return g.screen }

// Visible reports whether the group is shown on a screen.
func (g *Group) Visible() bool { return g.screen != NoScreen }

// Windows returns a copy of the ordered member list.
func (g *Group) Windows() []platform.WindowID {
	return append([]platform.WindowID(nil), g.windows...)
}

// Len returns the number of members.
func (g *Group) Len() int { return len(g.windows) }

// Contains reports whether id is a member.
func (g *Group) Contains(id platform.WindowID) bool {
	return g.index(id) >= 0
}

// Focused returns the focused member, if any.
func (g *Group) Focused() (platform.WindowID, bool) {
	return g.focused, g.focused != 0
}

// Focus makes id the group's focused member.
func (g *Group) Focus(id platform.WindowID) error {
	if !g.Contains(id) {
		return fmt.Errorf("window 0x%x in group %q: %w", id, g.name, ErrNotFound)
	}
	g.focused = id
	return nil
}

// SetOrder replaces the member order. The new order must be a permutation
// of the current members.
func (g *Group) SetOrder(order []platform.WindowID) error {
	if len(order) != len(g.windows) {
		return fmt.Errorf("group %q: order has %d windows, group has %d", g.name, len(order), len(g.windows))
	}
	for _, id := range order {
		if !g.Contains(id) {
			return fmt.Errorf("window 0x%x in group %q: %w", id, g.name, ErrNotFound)
		}
	}
	g.windows = append(g.windows[:0], order...)
	return nil
}

func (g *Group) index(id platform.WindowID) int {
	for i, w := range g.windows {
		if w == id {
			return i
		}
	}
	return -1
}

func (g *Group) add(id platform.WindowID, pos tiling.Position) {
	at := len(g.windows)
	switch pos {
	case tiling.PositionTop:
		at = 0
	case tiling.PositionAfterCurrent:
		if i := g.index(g.focused); i >= 0 {
			at = i + 1
		}
	}
	g.windows = append(g.windows, 0)
	copy(g.windows[at+1:], g.windows[at:])
	g.windows[at] = id
	g.focused = id
}

// remove drops id and hands focus to the window that took its place, or the
// new last window.
func (g *Group) remove(id platform.WindowID) bool {
	i := g.index(id)
	if i < 0 {
		return false
	}
	g.windows = append(g.windows[:i], g.windows[i+1:]...)
	for _, l := range g.layouts {
		l.Forget(id)
	}
	if g.focused == id {
		switch {
		case len(g.windows) == 0:
			g.focused = 0
		case i < len(g.windows):
			g.focused = g.windows[i]
		default:
			g.focused = g.windows[len(g.windows)-1]
		}
	}
	return true
}
