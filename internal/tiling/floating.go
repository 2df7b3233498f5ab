package tiling

import "github.com/1broseidon/groupwm/internal/platform"

// FloatingOptions configures a Floating layout.
type FloatingOptions struct {
	Name   string
	Border int
}

// Floating leaves every window where it was last put. Windows with no known
// geometry are centred at half the area's size.
type Floating struct {
	opts FloatingOptions
}

// NewFloating builds a Floating layout named "floating" unless opts names it.
func NewFloating(opts FloatingOptions) *Floating {
	if opts.Name == "" {
		opts.Name = string(KindFloating)
	}
	return &Floating{opts: opts}
}

// Kind reports KindFloating.
func (l *Floating) Kind() Kind { return KindFloating }

// Name is the configured layout name.
func (l *Floating) Name() string { return l.opts.Name }

func (l *Floating) InsertPosition() Position    { return PositionBottom }
func (l *Floating) Clone() Layout               { return NewFloating(l.opts) }
func (l *Floating) Forget(id platform.WindowID) {}
func (l *Floating) sealed()                     {}

// Arrange keeps each window at its last geometry, centring those with none.
func (l *Floating) Arrange(f Frame) (Placement, error) {
	p := newPlacement(l.opts.Border)
	for _, id := range f.Windows {
		p.Rects[id] = PlaceFloating(f.Geometry[id], f.Area)
	}
	return p, nil
}

// Neighbor is the nearest window in dir, wrapping to the far side.
func (l *Floating) Neighbor(f Frame, dir Direction) (platform.WindowID, bool) {
	idx := f.focusIndex()
	if idx < 0 {
		return 0, false
	}
	p, _ := l.Arrange(f)
	return navigateSpatial(f.Windows, p.Rects, f.Windows[idx], dir, true)
}

// PlaceFloating returns g when it is usable, otherwise a rectangle centred in
// area at half its size.
func PlaceFloating(g, area platform.Rect) platform.Rect {
	if !g.Empty() {
		return g
	}
	w, h := area.Width/2, area.Height/2
	return platform.Rect{
		X:      area.X + (area.Width-w)/2,
		Y:      area.Y + (area.Height-h)/2,
		Width:  w,
		Height: h,
	}
}
