// Package window tracks every window the engine manages.
package window

import (
	"errors"
	"fmt"
	"sort"

	"github.com/1broseidon/groupwm/internal/platform"
)

var (
	// ErrNotFound is returned for operations on a window the registry does not know.
	ErrNotFound = errors.New("window not found")
	// ErrExists is returned when a window is registered twice.
	ErrExists = errors.New("window already registered")
)

// Flag is one of the boolean window states.
type Flag string

const (
	Floating   Flag = "floating"
	Fullscreen Flag = "fullscreen"
	Minimized  Flag = "minimized"
	Urgent     Flag = "urgent"
)

// ParseFlag converts a flag name into a Flag.
func ParseFlag(s string) (Flag, error) {
	switch f := Flag(s); f {
	case Floating, Fullscreen, Minimized, Urgent:
		return f, nil
	}
	return "", fmt.Errorf("unknown window flag %q", s)
}

// Window is the registry's record of a managed window.
type Window struct {
	ID       platform.WindowID
	Class    string
	Instance string
	Title    string
	// Geometry is the last geometry the window was given or asked for. For
	// floating windows it is authoritative.
	Geometry platform.Rect

	Floating   bool
	Fullscreen bool
	Minimized  bool
	Urgent     bool

	// Group is the owning group's name; empty while unassigned.
	Group string
	// ZOrder grows each time the window is raised.
	ZOrder uint64
}

// Flag returns the current value of f.
func (w *Window) Flag(f Flag) bool {
	switch f {
	case Floating:
		return w.Floating
	case Fullscreen:
		return w.Fullscreen
	case Minimized:
		return w.Minimized
	case Urgent:
		return w.Urgent
	}
	return false
}

// Tiled reports whether the window takes part in layout arrangement.
func (w *Window) Tiled() bool {
	return !w.Floating && !w.Fullscreen && !w.Minimized
}

// Registry owns window records. It is not safe for concurrent use; the
// reactor goroutine is its only caller.
type Registry struct {
	windows map[platform.WindowID]*Window
	zorder  uint64
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{windows: make(map[platform.WindowID]*Window)}
}

// Register records a new window. The window starts without a group.
func (r *Registry) Register(id platform.WindowID, class, instance, title string, geometry platform.Rect) (*Window, error) {
	if _, ok := r.windows[id]; ok {
		return nil, fmt.Errorf("window 0x%x: %w", id, ErrExists)
	}
	r.zorder++
	w := &Window{
		ID:       id,
		Class:    class,
		Instance: instance,
		Title:    title,
		Geometry: geometry,
		ZOrder:   r.zorder,
	}
	r.windows[id] = w
	return w, nil
}

// Unregister removes a window and returns its final record so callers can
// relayout its former group.
func (r *Registry) Unregister(id platform.WindowID) (*Window, error) {
	w, ok := r.windows[id]
	if !ok {
		return nil, fmt.Errorf("window 0x%x: %w", id, ErrNotFound)
	}
	delete(r.windows, id)
	return w, nil
}

// Get returns the window record for id.
func (r *Registry) Get(id platform.WindowID) (*Window, error) {
	w, ok := r.windows[id]
	if !ok {
		return nil, fmt.Errorf("window 0x%x: %w", id, ErrNotFound)
	}
	return w, nil
}

// UpdateFlag sets f on the window to value.
func (r *Registry) UpdateFlag(id platform.WindowID, f Flag, value bool) error {
	w, err := r.Get(id)
	if err != nil {
		return err
	}
	switch f {
	case Floating:
		w.Floating = value
	case Fullscreen:
		w.Fullscreen = value
	case Minimized:
		w.Minimized = value
	case Urgent:
		w.Urgent = value
	default:
		return fmt.Errorf("unknown window flag %q", f)
	}
	return nil
}

// SetGroup records the owning group of a window.
func (r *Registry) SetGroup(id platform.WindowID, group string) error {
	w, err := r.Get(id)
	if err != nil {
		return err
	}
	w.Group = group
	return nil
}

// SetGeometry records the last geometry of a window.
func (r *Registry) SetGeometry(id platform.WindowID, g platform.Rect) error {
	w, err := r.Get(id)
	if err != nil {
		return err
	}
	w.Geometry = g
	return nil
}

// SetTitle updates the window's title.
func (r *Registry) SetTitle(id platform.WindowID, title string) error {
	w, err := r.Get(id)
	if err != nil {
		return err
	}
	w.Title = title
	return nil
}

// Raise moves the window to the top of the z-order hint.
func (r *Registry) Raise(id platform.WindowID) error {
	w, err := r.Get(id)
	if err != nil {
		return err
	}
	r.zorder++
	w.ZOrder = r.zorder
	return nil
}

// Count returns the number of registered windows.
func (r *Registry) Count() int {
	return len(r.windows)
}

// CountInGroup returns how many registered windows belong to group.
func (r *Registry) CountInGroup(group string) int {
	n := 0
	for _, w := range r.windows {
		if w.Group == group {
			n++
		}
	}
	return n
}

// All returns every window sorted by ID.
func (r *Registry) All() []*Window {
	out := make([]*Window, 0, len(r.windows))
	for _, w := range r.windows {
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
