package wm

import (
	"fmt"
	"strings"

	"github.com/1broseidon/groupwm/internal/command"
	"github.com/1broseidon/groupwm/internal/group"
	"github.com/1broseidon/groupwm/internal/platform"
	"github.com/1broseidon/groupwm/internal/tiling"
	"github.com/1broseidon/groupwm/internal/window"
)

var focusDirs = map[string]tiling.Direction{
	command.LayoutLeft:  tiling.DirLeft,
	command.LayoutRight: tiling.DirRight,
	command.LayoutUp:    tiling.DirUp,
	command.LayoutDown:  tiling.DirDown,
}

var shuffleDirs = map[string]tiling.Direction{
	command.LayoutShuffleLeft:  tiling.DirLeft,
	command.LayoutShuffleRight: tiling.DirRight,
	command.LayoutShuffleUp:    tiling.DirUp,
	command.LayoutShuffleDown:  tiling.DirDown,
}

var growDirs = map[string]tiling.Direction{
	command.LayoutGrowLeft:  tiling.DirLeft,
	command.LayoutGrowRight: tiling.DirRight,
	command.LayoutGrowUp:    tiling.DirUp,
	command.LayoutGrowDown:  tiling.DirDown,
}

// Press runs the binding for a trigger string such as "mod4-shift-h". Each
// action runs only if its layout filter accepts the layout active when the
// key was pressed.
func (e *Engine) Press(trigger string) error {
	b, ok := e.bindings.Lookup(trigger)
	if !ok {
		return fmt.Errorf("no binding for %q", trigger)
	}
	layout := ""
	if g, ok := e.currentGroup(); ok {
		layout = g.Layout().Name()
	}
	for _, a := range b.Actions {
		if !a.Applies(layout) {
			continue
		}
		e.run(a.Command)
	}
	return nil
}

// run dispatches a command and logs the outcome. Lookups of unknown windows,
// groups or screens are no-ops.
func (e *Engine) run(c command.Command) {
	err := e.Dispatch(c)
	switch {
	case err == nil:
	case IsNotFound(err):
		e.log.Debug("command ignored", "command", c.String(), "error", err.Error())
	default:
		e.log.Error("command failed", err, "command", c.String())
	}
}

// Dispatch applies one command. With cursor_warp set, a command that moves
// the input focus also centres the pointer on the new window.
func (e *Engine) Dispatch(c command.Command) error {
	before := e.focused
	err := e.apply(c)
	if e.cfg.CursorWarp && e.focused != 0 && e.focused != before {
		e.warpPointer(e.focused)
	}
	return err
}

func (e *Engine) apply(c command.Command) error {
	if err := command.Check(c, func(name string) bool {
		_, err := e.groups.Get(name)
		return err == nil
	}); err != nil {
		if spec, ok := command.Lookup(c.Name); ok && spec.Args == command.ArgGroup && len(c.Args) == 1 {
			return fmt.Errorf("%s: %w", c.Args[0], group.ErrNotFound)
		}
		return err
	}

	if dir, ok := focusDirs[c.Name]; ok {
		return e.FocusDirection(dir)
	}
	if dir, ok := shuffleDirs[c.Name]; ok {
		return e.shuffle(dir)
	}
	if dir, ok := growDirs[c.Name]; ok {
		return e.growColumn(dir)
	}

	switch c.Name {
	case command.LayoutGrowMain, command.LayoutShrinkMain, command.LayoutGrow, command.LayoutShrink,
		command.LayoutNormalize, command.LayoutReset, command.LayoutToggleSplit:
		return e.adjustLayout(c.Name)

	case command.GroupNextWindow:
		return e.FocusNextWindow()
	case command.GroupPrevWindow:
		return e.FocusPrevWindow()
	case command.GroupToScreen:
		return e.ToGroup(c.Args[0])
	case command.GroupSetLayout:
		g, ok := e.currentGroup()
		if !ok {
			return nil
		}
		if err := e.groups.SetLayout(g.Name(), c.Args[0]); err != nil {
			return err
		}
		e.relayout(g)
		return nil

	case command.WindowToGroup:
		return e.windowToGroup(c.Args[0])
	case command.WindowToggleFloating:
		return e.toggleFlag(window.Floating)
	case command.WindowToggleFullscreen:
		return e.toggleFlag(window.Fullscreen)
	case command.WindowToggleMinimize:
		return e.toggleFlag(window.Minimized)
	case command.WindowKill:
		w, _, ok := e.focusedWindow()
		if !ok {
			return nil
		}
		return e.display.Close(w.ID)
	case command.WindowBringToFront:
		w, _, ok := e.focusedWindow()
		if !ok {
			return nil
		}
		e.raise(w.ID)
		return nil
	case command.WindowSetPosition, command.WindowSetSize:
		args, err := c.IntArgs()
		if err != nil {
			return err
		}
		return e.setFloatingGeometry(c.Name == command.WindowSetPosition, args[0], args[1])

	case command.NextLayout, command.PrevLayout:
		g, ok := e.currentGroup()
		if !ok {
			return nil
		}
		step := 1
		if c.Name == command.PrevLayout {
			step = -1
		}
		l, err := e.groups.CycleLayout(g.Name(), step)
		if err != nil {
			return err
		}
		e.log.Debug("layout changed", "group", g.Name(), "layout", l.Name())
		e.relayout(g)
		return nil
	case command.ToScreen:
		args, err := c.IntArgs()
		if err != nil {
			return err
		}
		return e.SwitchScreen(args[0])
	case command.NextScreen:
		return e.CycleScreen(1)
	case command.PrevScreen:
		return e.CycleScreen(-1)

	case command.Spawn:
		return e.spawn(c.Args)
	case command.ReloadConfig:
		e.stop(ErrReload)
		return nil
	case command.Shutdown:
		e.stop(nil)
		return nil
	}
	return fmt.Errorf("command %q not implemented", c.Name)
}

// shuffle moves the focused window within the active layout.
func (e *Engine) shuffle(dir tiling.Direction) error {
	g, ok := e.currentGroup()
	if !ok || g.Len() == 0 {
		return nil
	}
	f := e.frame(g, e.areaFor(g))
	switch l := g.Layout().(type) {
	case *tiling.Tall:
		order, moved := l.Shuffle(f, dir)
		if !moved {
			return nil
		}
		if err := g.SetOrder(mergeOrder(g.Windows(), f.Windows, order)); err != nil {
			return err
		}
	case *tiling.Columns:
		if !l.Shuffle(f, dir) {
			return nil
		}
	default:
		return nil
	}
	e.relayout(g)
	return nil
}

// mergeOrder rewrites the tiled members of all in the order given by tiled,
// leaving non-tiled members where they are.
func mergeOrder(all, before, tiled []platform.WindowID) []platform.WindowID {
	isTiled := make(map[platform.WindowID]bool, len(before))
	for _, id := range before {
		isTiled[id] = true
	}
	out := make([]platform.WindowID, 0, len(all))
	next := 0
	for _, id := range all {
		if isTiled[id] {
			out = append(out, tiled[next])
			next++
			continue
		}
		out = append(out, id)
	}
	return out
}

// growColumn handles grow_left/right/up/down, which only the columns layout
// understands.
func (e *Engine) growColumn(dir tiling.Direction) error {
	g, ok := e.currentGroup()
	if !ok || g.Len() == 0 {
		return nil
	}
	l, ok := g.Layout().(*tiling.Columns)
	if !ok {
		return nil
	}
	f := e.frame(g, e.areaFor(g))
	var changed bool
	if dir == tiling.DirLeft || dir == tiling.DirRight {
		changed = l.GrowWidth(f, dir)
	} else {
		changed = l.GrowHeight(f, dir)
	}
	if changed {
		e.relayout(g)
	}
	return nil
}

// adjustLayout applies the sizing commands to whichever layout supports
// them.
func (e *Engine) adjustLayout(name string) error {
	g, ok := e.currentGroup()
	if !ok {
		return nil
	}
	f := e.frame(g, e.areaFor(g))
	switch l := g.Layout().(type) {
	case *tiling.Tall:
		switch name {
		case command.LayoutGrowMain:
			l.GrowMain()
		case command.LayoutShrinkMain:
			l.ShrinkMain()
		case command.LayoutGrow:
			l.Grow(f)
		case command.LayoutShrink:
			l.Shrink(f)
		case command.LayoutNormalize:
			l.Normalize()
		case command.LayoutReset:
			l.Reset()
		default:
			return nil
		}
	case *tiling.Columns:
		switch name {
		case command.LayoutNormalize, command.LayoutReset:
			l.Normalize()
		case command.LayoutToggleSplit:
			l.ToggleSplit(f)
		default:
			return nil
		}
	default:
		return nil
	}
	e.relayout(g)
	return nil
}

// windowToGroup sends the focused window to another group without following
// it.
func (e *Engine) windowToGroup(name string) error {
	w, src, ok := e.focusedWindow()
	if !ok {
		return nil
	}
	if w.Group == name {
		return nil
	}
	dst, err := e.groups.Get(name)
	if err != nil {
		return err
	}
	if err := e.groups.MoveWindow(w.ID, src.Name(), name); err != nil {
		return err
	}
	if err := e.registry.SetGroup(w.ID, name); err != nil {
		return err
	}
	e.relayout(src)
	e.relayout(dst)
	e.focusCurrent()
	return nil
}

// toggleFlag flips a state flag on the focused window. A window that starts
// floating keeps the geometry it last had as a tile.
func (e *Engine) toggleFlag(f window.Flag) error {
	w, g, ok := e.focusedWindow()
	if !ok {
		return nil
	}
	value := !w.Flag(f)
	if err := e.registry.UpdateFlag(w.ID, f, value); err != nil {
		return err
	}
	if f == window.Floating && value {
		w.Geometry = tiling.PlaceFloating(w.Geometry, e.areaFor(g))
	}
	e.relayout(g)
	if f == window.Minimized && value {
		e.focusNextVisible(g, w.ID)
	}
	return nil
}

// focusNextVisible moves group focus off a window that was just hidden.
func (e *Engine) focusNextVisible(g *group.Group, from platform.WindowID) {
	for _, id := range g.Windows() {
		if id == from {
			continue
		}
		if w, err := e.registry.Get(id); err == nil && !w.Minimized {
			_ = e.focusWindow(g, id)
			return
		}
	}
}

// setFloatingGeometry floats the focused window and moves (or resizes) it.
func (e *Engine) setFloatingGeometry(position bool, a, b int) error {
	w, g, ok := e.focusedWindow()
	if !ok {
		return nil
	}
	r := w.Geometry
	if position {
		r.X, r.Y = a, b
	} else {
		if a <= 0 || b <= 0 {
			return fmt.Errorf("invalid size %dx%d", a, b)
		}
		r.Width, r.Height = a, b
	}
	if err := e.registry.UpdateFlag(w.ID, window.Floating, true); err != nil {
		return err
	}
	if err := e.registry.SetGeometry(w.ID, r); err != nil {
		return err
	}
	e.relayout(g)
	return nil
}

// spawn launches a program without waiting for it. Launch failures are the
// launcher's concern and are only logged.
func (e *Engine) spawn(args []string) error {
	argv := e.cfg.ExpandSpawn(args)
	if len(argv) == 1 {
		argv = strings.Fields(argv[0])
	}
	if len(argv) == 0 {
		e.log.Warn("spawn: nothing to run", "args", strings.Join(args, " "))
		return nil
	}
	if e.spawner == nil {
		e.log.Warn("spawn: no launcher configured", "command", argv[0])
		return nil
	}
	if err := e.spawner.Spawn(argv); err != nil {
		e.log.Warn("spawn failed", "command", strings.Join(argv, " "), "error", err.Error())
	}
	return nil
}
