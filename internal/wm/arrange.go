package wm

import (
	"errors"

	"github.com/1broseidon/groupwm/internal/group"
	"github.com/1broseidon/groupwm/internal/platform"
	"github.com/1broseidon/groupwm/internal/tiling"
	"github.com/1broseidon/groupwm/internal/window"
)

// frame collects the layout input for a group. Only tiled windows take
// part; Geometry carries every member's last geometry for the floating
// layout.
func (e *Engine) frame(g *group.Group, area platform.Rect) tiling.Frame {
	f := tiling.Frame{
		Area:     area,
		Geometry: make(map[platform.WindowID]platform.Rect),
	}
	for _, id := range g.Windows() {
		w, err := e.registry.Get(id)
		if err != nil {
			continue
		}
		f.Geometry[id] = w.Geometry
		if w.Tiled() {
			f.Windows = append(f.Windows, id)
		}
	}
	f.Focused, _ = g.Focused()
	return f
}

// arrange runs the group's layout. A placement that fails validation is
// replaced by a Max arrangement for this pass only; the group keeps its
// layout.
func (e *Engine) arrange(g *group.Group, f tiling.Frame) tiling.Placement {
	layout := g.Layout()
	p, err := layout.Arrange(f)
	if err == nil && layout.Kind() != tiling.KindFloating {
		err = tiling.Validate(layout.Name(), p, f.Windows, f.Area)
	}
	if err == nil {
		return p
	}

	var conflict *tiling.GeometryConflictError
	if errors.As(err, &conflict) {
		e.log.Warn("geometry conflict, using max for this pass",
			"group", g.Name(),
			"layout", layout.Name(),
			"window", conflict.Window,
			"error", err.Error())
	} else {
		e.log.Error("arrange failed, using max for this pass", err, "group", g.Name(), "layout", layout.Name())
	}
	p, _ = e.fallback.Arrange(f)
	return p
}

// relayout recomputes a group's placement and pushes it to the display.
// Hidden groups are still arranged so their placement is current, but their
// windows stay hidden.
func (e *Engine) relayout(g *group.Group) {
	f := e.frame(g, e.areaFor(g))
	if !g.Visible() {
		p, err := g.Layout().Arrange(f)
		if err != nil {
			p, _ = e.fallback.Arrange(f)
		}
		e.arranged[g.Name()] = p
		for _, id := range g.Windows() {
			e.hide(id)
		}
		return
	}

	p := e.arrange(g, f)
	e.arranged[g.Name()] = p

	var floats, fullscreen []*window.Window
	for _, id := range g.Windows() {
		w, err := e.registry.Get(id)
		if err != nil {
			continue
		}
		switch {
		case w.Minimized:
			e.hide(id)
		case w.Fullscreen:
			fullscreen = append(fullscreen, w)
		case w.Floating:
			floats = append(floats, w)
		default:
			r, shown := p.Rects[id]
			if !shown {
				e.hide(id)
				continue
			}
			_ = e.registry.SetGeometry(id, r)
			e.place(id, r, p.Border)
		}
	}

	for _, w := range floats {
		e.place(w.ID, w.Geometry, e.cfg.FloatingBorderWidth)
		if e.cfg.FloatsKeptAbove {
			e.raise(w.ID)
		}
	}
	bounds := e.screens[g.Screen()].Bounds
	for _, w := range fullscreen {
		e.place(w.ID, bounds, 0)
		e.raise(w.ID)
	}
}

// relayoutAll arranges every group, visible or not.
func (e *Engine) relayoutAll() {
	for _, g := range e.groups.All() {
		e.relayout(g)
	}
}

func (e *Engine) relayoutByName(name string) {
	g, err := e.groups.Get(name)
	if err != nil {
		e.log.Debug("relayout skipped", "group", name, "error", err.Error())
		return
	}
	e.relayout(g)
}

func (e *Engine) place(id platform.WindowID, r platform.Rect, border int) {
	if err := e.display.SetGeometry(id, r, border); err != nil {
		e.log.Debug("set geometry failed", "window", id, "error", err.Error())
	}
	if err := e.display.Show(id); err != nil {
		e.log.Debug("show failed", "window", id, "error", err.Error())
	}
}

func (e *Engine) hide(id platform.WindowID) {
	if err := e.display.Hide(id); err != nil {
		e.log.Debug("hide failed", "window", id, "error", err.Error())
	}
}

func (e *Engine) raise(id platform.WindowID) {
	_ = e.registry.Raise(id)
	if err := e.display.Raise(id); err != nil {
		e.log.Debug("raise failed", "window", id, "error", err.Error())
	}
}
