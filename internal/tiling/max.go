package tiling

import "github.com/1broseidon/groupwm/internal/platform"

// MaxOptions configures a Max layout.
type MaxOptions struct {
	Name   string
	Margin int
	Border int
}

// Max shows only the focused window, covering the whole area.
type Max struct {
	opts MaxOptions
}

// NewMax builds a Max layout named "max" unless opts names it.
func NewMax(opts MaxOptions) *Max {
	if opts.Name == "" {
		opts.Name = string(KindMax)
	}
	return &Max{opts: opts}
}

// Kind reports KindMax.
func (m *Max) Kind() Kind { return KindMax }

// Name is the configured layout name.
func (m *Max) Name() string { return m.opts.Name }

func (m *Max) InsertPosition() Position    { return PositionBottom }
func (m *Max) Clone() Layout               { return NewMax(m.opts) }
func (m *Max) Forget(id platform.WindowID) {}
func (m *Max) sealed()                     {}

// Arrange gives the focused window the whole area and hides the others.
func (m *Max) Arrange(f Frame) (Placement, error) {
	p := newPlacement(m.opts.Border)
	idx := f.focusIndex()
	if idx < 0 {
		// Focus is on a window outside the layout; keep a tile showing.
		idx = 0
	}
	for i, id := range f.Windows {
		if i == idx {
			p.Rects[id] = fit(f.Area, m.opts.Margin, m.opts.Border)
			continue
		}
		p.Hidden = append(p.Hidden, id)
	}
	return p, nil
}

// Neighbor walks the window list: left and up go to the previous window,
// right and down to the next, wrapping at both ends.
func (m *Max) Neighbor(f Frame, dir Direction) (platform.WindowID, bool) {
	idx := f.focusIndex()
	if idx < 0 || len(f.Windows) < 2 {
		return 0, false
	}
	return f.Windows[cycle(idx, len(f.Windows), dir)], true
}
