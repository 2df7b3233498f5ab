package group

import (
	"fmt"

	"github.com/1broseidon/groupwm/internal/platform"
	"github.com/1broseidon/groupwm/internal/rules"
	"github.com/1broseidon/groupwm/internal/tiling"
)

// Manager owns every group. Like the window registry it is driven only from
// the reactor goroutine.
type Manager struct {
	order  []string
	groups map[string]*Group
}

// NewManager builds groups in declaration order. Duplicate names are an
// error.
func NewManager(specs []Spec) (*Manager, error) {
	m := &Manager{groups: make(map[string]*Group, len(specs))}
	for _, spec := range specs {
		if _, ok := m.groups[spec.Name]; ok {
			return nil, fmt.Errorf("%q: %w", spec.Name, ErrDuplicate)
		}
		g, err := newGroup(spec)
		if err != nil {
			return nil, err
		}
		m.groups[spec.Name] = g
		m.order = append(m.order, spec.Name)
	}
	if len(m.order) == 0 {
		return nil, fmt.Errorf("no groups defined")
	}
	return m, nil
}

// Names returns group names in declaration order.
func (m *Manager) Names() []string {
	return append([]string(nil), m.order...)
}

// Get returns the named group.
func (m *Manager) Get(name string) (*Group, error) {
	g, ok := m.groups[name]
	if !ok {
		return nil, fmt.Errorf("%q: %w", name, ErrNotFound)
	}
	return g, nil
}

// All returns groups in declaration order.
func (m *Manager) All() []*Group {
	out := make([]*Group, 0, len(m.order))
	for _, name := range m.order {
		out = append(out, m.groups[name])
	}
	return out
}

// AddWindow inserts id into the group at pos and focuses it there.
func (m *Manager) AddWindow(name string, id platform.WindowID, pos tiling.Position) error {
	g, err := m.Get(name)
	if err != nil {
		return err
	}
	if g.Contains(id) {
		return nil
	}
	g.add(id, pos)
	return nil
}

// RemoveWindow drops id from the group.
func (m *Manager) RemoveWindow(name string, id platform.WindowID) error {
	g, err := m.Get(name)
	if err != nil {
		return err
	}
	if !g.remove(id) {
		return fmt.Errorf("window 0x%x in group %q: %w", id, name, ErrNotFound)
	}
	return nil
}

// MoveWindow moves id from one group to the end of another.
func (m *Manager) MoveWindow(id platform.WindowID, from, to string) error {
	dst, err := m.Get(to)
	if err != nil {
		return err
	}
	if err := m.RemoveWindow(from, id); err != nil {
		return err
	}
	dst.add(id, tiling.PositionBottom)
	return nil
}

// CycleLayout moves the active layout forward (dir > 0) or backward,
// wrapping, and returns the new layout.
func (m *Manager) CycleLayout(name string, dir int) (tiling.Layout, error) {
	g, err := m.Get(name)
	if err != nil {
		return nil, err
	}
	n := len(g.layouts)
	step := 1
	if dir < 0 {
		step = -1
	}
	g.current = ((g.current+step)%n + n) % n
	return g.Layout(), nil
}

// SetLayout activates the layout with the given name.
func (m *Manager) SetLayout(name, layout string) error {
	g, err := m.Get(name)
	if err != nil {
		return err
	}
	for i, l := range g.layouts {
		if l.Name() == layout {
			g.current = i
			return nil
		}
	}
	return fmt.Errorf("layout %q in group %q: %w", layout, name, ErrNotFound)
}

// SetScreen records which screen shows the group. screen is NoScreen to
// hide it. The caller keeps the screen side consistent; Displayed reads the
// mapping back from the groups.
func (m *Manager) SetScreen(name string, screen int) error {
	g, err := m.Get(name)
	if err != nil {
		return err
	}
	if screen != NoScreen {
		for _, other := range m.groups {
			if other != g && other.screen == screen {
				other.screen = NoScreen
			}
		}
	}
	g.screen = screen
	return nil
}

// Displayed returns the group shown on screen.
func (m *Manager) Displayed(screen int) (*Group, bool) {
	for _, name := range m.order {
		if g := m.groups[name]; g.screen == screen {
			return g, true
		}
	}
	return nil, false
}

// WindowsOf returns the group's ordered member list.
func (m *Manager) WindowsOf(name string) ([]platform.WindowID, error) {
	g, err := m.Get(name)
	if err != nil {
		return nil, err
	}
	return g.Windows(), nil
}

// Match returns the first group, in declaration order, whose match rules
// accept s.
func (m *Manager) Match(s rules.Subject) (*Group, bool) {
	for _, name := range m.order {
		g := m.groups[name]
		if rules.Any(g.matches, s) {
			return g, true
		}
	}
	return nil, false
}

// Hidden returns hidden groups in declaration order.
func (m *Manager) Hidden() []*Group {
	var out []*Group
	for _, name := range m.order {
		if g := m.groups[name]; !g.Visible() {
			out = append(out, g)
		}
	}
	return out
}
