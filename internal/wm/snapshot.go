package wm

import (
	"github.com/1broseidon/groupwm/internal/platform"
)

// GroupStatus is one group as seen by a status bar.
type GroupStatus struct {
	Name    string `json:"name"`
	Layout  string `json:"layout"`
	Screen  int    `json:"screen"`
	Windows int    `json:"windows"`
	Urgent  bool   `json:"urgent,omitempty"`
}

// WindowStatus is one managed window.
type WindowStatus struct {
	ID         uint32 `json:"id"`
	Class      string `json:"class"`
	Title      string `json:"title"`
	Group      string `json:"group"`
	Floating   bool   `json:"floating,omitempty"`
	Fullscreen bool   `json:"fullscreen,omitempty"`
	Minimized  bool   `json:"minimized,omitempty"`
	Urgent     bool   `json:"urgent,omitempty"`
}

// ScreenStatus is one screen and the group it shows.
type ScreenStatus struct {
	Index  int           `json:"index"`
	Bounds platform.Rect `json:"bounds"`
	Group  string        `json:"group,omitempty"`
}

// Snapshot is an immutable view of the engine for readers outside the
// reactor. A new value is published after every reactor item.
type Snapshot struct {
	Group         string         `json:"group"`
	Layout        string         `json:"layout"`
	FocusedScreen int            `json:"focused_screen"`
	FocusedTitle  string         `json:"focused_title"`
	FocusedWindow uint32         `json:"focused_window,omitempty"`
	Groups        []GroupStatus  `json:"groups"`
	Screens       []ScreenStatus `json:"screens"`
	Windows       []WindowStatus `json:"windows"`
}

// WindowCount returns the member count of the named group.
func (s *Snapshot) WindowCount(name string) (int, bool) {
	for _, g := range s.Groups {
		if g.Name == name {
			return g.Windows, true
		}
	}
	return 0, false
}

// Snapshot returns the latest published view. It is safe to call from any
// goroutine.
func (e *Engine) Snapshot() *Snapshot {
	return e.snapshot.Load()
}

func (e *Engine) publish() {
	s := &Snapshot{FocusedScreen: e.focusedScreen}

	urgent := make(map[string]bool)
	s.Windows = []WindowStatus{}
	for _, w := range e.registry.All() {
		if w.Urgent {
			urgent[w.Group] = true
		}
		s.Windows = append(s.Windows, WindowStatus{
			ID:         uint32(w.ID),
			Class:      w.Class,
			Title:      w.Title,
			Group:      w.Group,
			Floating:   w.Floating,
			Fullscreen: w.Fullscreen,
			Minimized:  w.Minimized,
			Urgent:     w.Urgent,
		})
	}
	for _, g := range e.groups.All() {
		s.Groups = append(s.Groups, GroupStatus{
			Name:    g.Name(),
			Layout:  g.Layout().Name(),
			Screen:  g.Screen(),
			Windows: g.Len(),
			Urgent:  urgent[g.Name()],
		})
	}
	for _, sc := range e.screens {
		st := ScreenStatus{Index: sc.Index, Bounds: sc.Bounds}
		if g, ok := e.groups.Displayed(sc.Index); ok {
			st.Group = g.Name()
		}
		s.Screens = append(s.Screens, st)
	}

	if g, ok := e.currentGroup(); ok {
		s.Group = g.Name()
		s.Layout = g.Layout().Name()
	}
	if e.focused != 0 {
		if w, err := e.registry.Get(e.focused); err == nil {
			s.FocusedTitle = w.Title
			s.FocusedWindow = uint32(w.ID)
		}
	}
	if s.Screens == nil {
		s.Screens = []ScreenStatus{}
	}
	if s.Groups == nil {
		s.Groups = []GroupStatus{}
	}
	e.snapshot.Store(s)
	if e.observer != nil {
		e.observer(s)
	}
}

// OnPublish registers fn to be called on the reactor goroutine with every
// new snapshot. It must be set before Start.
func (e *Engine) OnPublish(fn func(*Snapshot)) {
	e.observer = fn
}
