package wm

import (
	"fmt"
	"sort"

	"github.com/1broseidon/groupwm/internal/group"
	"github.com/1broseidon/groupwm/internal/platform"
	"github.com/1broseidon/groupwm/internal/tiling"
)

// setInputFocus gives id the input focus and remembers it.
func (e *Engine) setInputFocus(id platform.WindowID) {
	e.focused = id
	if w, err := e.registry.Get(id); err == nil {
		w.Urgent = false
		if w.Floating && !e.cfg.FloatsKeptAbove {
			e.raise(id)
		}
	}
	if err := e.display.SetInputFocus(id); err != nil {
		e.log.Debug("set input focus failed", "window", id, "error", err.Error())
	}
}

// warpPointer centres the pointer on id when the display can move it.
func (e *Engine) warpPointer(id platform.WindowID) {
	pw, ok := e.display.(platform.PointerWarper)
	if !ok {
		return
	}
	if err := pw.WarpPointer(id); err != nil {
		e.log.Debug("warp pointer failed", "window", id, "error", err.Error())
	}
}

// focusWindow makes id the focused member of g and, when g is on the
// focused screen, gives it input focus. The group is rearranged since
// layouts like Max show only the focused window.
func (e *Engine) focusWindow(g *group.Group, id platform.WindowID) error {
	if err := g.Focus(id); err != nil {
		return err
	}
	e.relayout(g)
	if g.Visible() && g.Screen() == e.focusedScreen {
		e.setInputFocus(id)
	}
	return nil
}

// focusCurrent restores input focus to the focused member of the current
// group.
func (e *Engine) focusCurrent() {
	g, ok := e.currentGroup()
	if !ok {
		return
	}
	if id, ok := g.Focused(); ok {
		e.setInputFocus(id)
		return
	}
	e.focused = 0
}

// FocusDirection moves focus to the neighbour of the focused window as the
// active layout defines it.
func (e *Engine) FocusDirection(dir tiling.Direction) error {
	g, ok := e.currentGroup()
	if !ok || g.Len() == 0 {
		return nil
	}
	f := e.frame(g, e.areaFor(g))
	next, ok := g.Layout().Neighbor(f, dir)
	if !ok {
		return nil
	}
	return e.focusWindow(g, next)
}

// FocusNextWindow focuses the next member in group order, wrapping.
func (e *Engine) FocusNextWindow() error {
	return e.cycleWindow(1)
}

// FocusPrevWindow focuses the previous member in group order, wrapping.
func (e *Engine) FocusPrevWindow() error {
	return e.cycleWindow(-1)
}

func (e *Engine) cycleWindow(step int) error {
	g, ok := e.currentGroup()
	if !ok || g.Len() == 0 {
		return nil
	}
	members := g.Windows()
	n := len(members)
	start := 0
	if cur, ok := g.Focused(); ok {
		for i, id := range members {
			if id == cur {
				start = (i + step + n) % n
				break
			}
		}
	}
	// Minimized members stay hidden, so they are skipped.
	for k := 0; k < n; k++ {
		id := members[((start+k*step)%n+n)%n]
		if w, err := e.registry.Get(id); err == nil && !w.Minimized {
			return e.focusWindow(g, id)
		}
	}
	return nil
}

// SwitchScreen focuses screen n without changing which group any screen
// shows.
func (e *Engine) SwitchScreen(n int) error {
	if n < 0 || n >= len(e.screens) {
		return fmt.Errorf("screen %d: %w", n, ErrScreenNotFound)
	}
	e.focusedScreen = n
	e.focusCurrent()
	return nil
}

// CycleScreen focuses the next (step > 0) or previous screen, wrapping.
func (e *Engine) CycleScreen(step int) error {
	n := len(e.screens)
	if n == 0 {
		return nil
	}
	if step < 0 {
		step = -1
	} else {
		step = 1
	}
	return e.SwitchScreen(((e.focusedScreen+step)%n + n) % n)
}

// ToGroup shows the named group on the focused screen. If the group is
// already shown on another screen the two screens swap groups; otherwise the
// screen's previous group is hidden with its window list intact.
func (e *Engine) ToGroup(name string) error {
	g, err := e.groups.Get(name)
	if err != nil {
		return err
	}
	target := e.focusedScreen
	if target < 0 || target >= len(e.screens) {
		return fmt.Errorf("screen %d: %w", target, ErrScreenNotFound)
	}
	if g.Screen() == target {
		return nil
	}

	prev, hadPrev := e.groups.Displayed(target)
	from := g.Screen()
	if err := e.groups.SetScreen(name, target); err != nil {
		return err
	}
	if hadPrev {
		if from != group.NoScreen {
			_ = e.groups.SetScreen(prev.Name(), from)
		}
		e.relayout(prev)
	}
	e.relayout(g)
	e.focusCurrent()
	e.log.Debug("group shown", "group", name, "screen", target, "swapped", hadPrev && from != group.NoScreen)
	return nil
}

// ReconfigureScreens applies a new screen list after hotplug. Screens are
// matched to the old ones by geometry first, then by index. Groups whose
// screen vanished move to the lowest remaining screen, replacing the group
// shown there; new screens receive hidden groups. Every group is then
// rearranged.
func (e *Engine) ReconfigureScreens(rects []platform.Rect) {
	old := e.screens
	remap := make(map[int]int, len(old))
	claimed := make(map[int]bool, len(rects))

	for _, s := range old {
		for j, r := range rects {
			if !claimed[j] && r == s.Bounds {
				remap[s.Index] = j
				claimed[j] = true
				break
			}
		}
	}
	for _, s := range old {
		if _, ok := remap[s.Index]; ok {
			continue
		}
		if s.Index < len(rects) && !claimed[s.Index] {
			remap[s.Index] = s.Index
			claimed[s.Index] = true
		}
	}

	// Detach every shown group, then reattach by the new indices.
	type shown struct {
		name   string
		screen int
	}
	var moved, orphaned []shown
	for _, g := range e.groups.All() {
		if !g.Visible() {
			continue
		}
		if to, ok := remap[g.Screen()]; ok {
			moved = append(moved, shown{g.Name(), to})
		} else {
			orphaned = append(orphaned, shown{g.Name(), g.Screen()})
		}
		_ = e.groups.SetScreen(g.Name(), group.NoScreen)
	}
	sort.Slice(orphaned, func(i, j int) bool { return orphaned[i].screen < orphaned[j].screen })

	e.setScreens(rects)
	for _, m := range moved {
		_ = e.groups.SetScreen(m.name, m.screen)
	}
	if len(rects) > 0 && len(orphaned) > 0 {
		o := orphaned[0]
		_ = e.groups.SetScreen(o.name, 0)
		e.log.Info("screen removed, group moved", "group", o.name, "from", o.screen, "to", 0)
	}
	e.fillEmptyScreens()

	if to, ok := remap[e.focusedScreen]; ok {
		e.focusedScreen = to
	} else {
		e.focusedScreen = 0
	}
	e.relayoutAll()
	e.focusCurrent()
	e.log.Info("screens reconfigured", "screens", len(rects))
}
