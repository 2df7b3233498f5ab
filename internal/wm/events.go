package wm

import (
	"fmt"

	"github.com/1broseidon/groupwm/internal/config"
	"github.com/1broseidon/groupwm/internal/group"
	"github.com/1broseidon/groupwm/internal/platform"
	"github.com/1broseidon/groupwm/internal/rules"
	"github.com/1broseidon/groupwm/internal/tiling"
	"github.com/1broseidon/groupwm/internal/window"
)

// HandleEvent applies one display event. Events about unknown windows are
// logged and ignored.
func (e *Engine) HandleEvent(ev platform.Event) {
	var err error
	switch ev := ev.(type) {
	case platform.WindowCreated:
		err = e.manage(ev)
	case platform.WindowDestroyed:
		err = e.unmanage(ev.ID)
	case platform.ConfigureRequest:
		err = e.configureRequest(ev)
	case platform.FocusIn:
		err = e.focusIn(ev.ID)
	case platform.ActivationRequest:
		err = e.activate(ev.ID)
	case platform.ButtonPress:
		err = e.click(ev.ID)
	case platform.MinimizeRequest:
		err = e.minimizeRequest(ev.ID)
	case platform.TitleChanged:
		err = e.registry.SetTitle(ev.ID, ev.Title)
	case platform.ScreenListChanged:
		if !e.cfg.ReconfigureScreens {
			e.log.Debug("screen change ignored", "screens", len(ev.Screens))
			return
		}
		e.ReconfigureScreens(ev.Screens)
	default:
		err = fmt.Errorf("unhandled event %T", ev)
	}
	if err == nil {
		return
	}
	if IsNotFound(err) {
		e.log.Debug("event ignored", "event", fmt.Sprintf("%T", ev), "error", err.Error())
		return
	}
	e.log.Error("event failed", err, "event", fmt.Sprintf("%T", ev))
}

// manage registers a new window, decides whether it floats, assigns it to a
// group and arranges that group, shown or not.
func (e *Engine) manage(ev platform.WindowCreated) error {
	if _, err := e.registry.Get(ev.ID); err == nil {
		return nil
	}
	w, err := e.registry.Register(ev.ID, ev.Class, ev.Instance, ev.Title, ev.Geometry)
	if err != nil {
		return err
	}

	subject := rules.Subject{
		Class:     ev.Class,
		Instance:  ev.Instance,
		Title:     ev.Title,
		Role:      ev.Hints.Role,
		Type:      ev.Hints.Type,
		Transient: ev.Hints.Transient,
		FixedSize: ev.Hints.FixedSize,
	}
	if floating, rule := e.floats.Floating(subject); floating {
		_ = e.registry.UpdateFlag(ev.ID, window.Floating, true)
		e.log.Debug("window floats by rule", "window", ev.ID, "rule", rule)
	}
	if ev.Hints.Fullscreen && e.cfg.AutoFullscreen {
		_ = e.registry.UpdateFlag(ev.ID, window.Fullscreen, true)
	}

	g := e.targetGroup(subject, ev.Screen)
	if w.Floating {
		w.Geometry = tiling.PlaceFloating(ev.Geometry, e.areaFor(g))
	}
	if err := e.groups.AddWindow(g.Name(), ev.ID, g.Layout().InsertPosition()); err != nil {
		_, _ = e.registry.Unregister(ev.ID)
		return err
	}
	if err := e.registry.SetGroup(ev.ID, g.Name()); err != nil {
		return err
	}
	e.log.Info("window managed",
		"window", ev.ID,
		"class", ev.Class,
		"group", g.Name(),
		"floating", w.Floating)

	e.relayout(g)
	if g.Visible() && g.Screen() == e.focusedScreen {
		e.setInputFocus(ev.ID)
	}
	return nil
}

// targetGroup picks the group for a new window: the first group whose match
// rules accept it, else the group shown on the requesting screen (or the
// focused screen), else the default group.
func (e *Engine) targetGroup(s rules.Subject, screen int) *group.Group {
	if g, ok := e.groups.Match(s); ok {
		return g
	}
	if screen < 0 || screen >= len(e.screens) {
		screen = e.focusedScreen
	}
	if screen >= 0 && screen < len(e.screens) {
		if g, ok := e.groups.Displayed(screen); ok {
			return g
		}
	}
	if g, err := e.groups.Get(e.cfg.DefaultGroup); err == nil {
		return g
	}
	return e.groups.All()[0]
}

// unmanage forgets a window and rearranges its former group.
func (e *Engine) unmanage(id platform.WindowID) error {
	w, err := e.registry.Unregister(id)
	if err != nil {
		return err
	}
	if w.Group != "" {
		if err := e.groups.RemoveWindow(w.Group, id); err != nil {
			e.log.Warn("window missing from its group", "window", id, "group", w.Group)
		}
		e.relayoutByName(w.Group)
	}
	e.log.Info("window unmanaged", "window", id, "group", w.Group)

	if e.focused == id {
		e.focused = 0
		e.focusCurrent()
	}
	return nil
}

// configureRequest honours geometry requests from floating windows. Tiled
// windows are put back where the layout wants them.
func (e *Engine) configureRequest(ev platform.ConfigureRequest) error {
	w, err := e.registry.Get(ev.ID)
	if err != nil {
		return err
	}
	if w.Floating && !w.Fullscreen {
		if ev.Geometry.Empty() {
			return nil
		}
		if err := e.registry.SetGeometry(ev.ID, ev.Geometry); err != nil {
			return err
		}
		e.place(ev.ID, ev.Geometry, e.cfg.FloatingBorderWidth)
		return nil
	}
	e.relayoutByName(w.Group)
	return nil
}

// focusIn records focus the server reports, for example from the pointer.
func (e *Engine) focusIn(id platform.WindowID) error {
	w, err := e.registry.Get(id)
	if err != nil {
		return err
	}
	g, err := e.groups.Get(w.Group)
	if err != nil {
		return err
	}
	if err := g.Focus(id); err != nil {
		return err
	}
	if g.Visible() {
		e.focusedScreen = g.Screen()
	}
	e.focused = id
	return e.registry.UpdateFlag(id, window.Urgent, false)
}

// click focuses a clicked window, raising it when bring_front_click is set.
func (e *Engine) click(id platform.WindowID) error {
	w, err := e.registry.Get(id)
	if err != nil {
		return err
	}
	g, err := e.groups.Get(w.Group)
	if err != nil {
		return err
	}
	if g.Visible() {
		e.focusedScreen = g.Screen()
	}
	if err := e.focusWindow(g, id); err != nil {
		return err
	}
	if e.cfg.BringFrontClick {
		e.raise(id)
	}
	return nil
}

// minimizeRequest honours a client's request to be iconified when
// auto_minimize is set.
func (e *Engine) minimizeRequest(id platform.WindowID) error {
	w, err := e.registry.Get(id)
	if err != nil {
		return err
	}
	if !e.cfg.AutoMinimize {
		e.log.Debug("minimize request refused", "window", id)
		return nil
	}
	if w.Minimized {
		return nil
	}
	g, err := e.groups.Get(w.Group)
	if err != nil {
		return err
	}
	if err := e.registry.UpdateFlag(id, window.Minimized, true); err != nil {
		return err
	}
	e.relayout(g)
	if cur, ok := g.Focused(); ok && cur == id {
		e.focusNextVisible(g, id)
	}
	return nil
}

// activate applies focus_on_window_activation to an activation request.
func (e *Engine) activate(id platform.WindowID) error {
	w, err := e.registry.Get(id)
	if err != nil {
		return err
	}
	g, err := e.groups.Get(w.Group)
	if err != nil {
		return err
	}

	policy := e.cfg.FocusOnWindowActivation
	switch policy {
	case config.ActivationNever:
		return nil
	case config.ActivationUrgent:
		return e.registry.UpdateFlag(id, window.Urgent, true)
	case config.ActivationSmart:
		if !g.Visible() {
			return e.registry.UpdateFlag(id, window.Urgent, true)
		}
	case config.ActivationFocus:
		if !g.Visible() {
			if err := e.ToGroup(g.Name()); err != nil {
				return err
			}
		}
	}

	if err := e.registry.UpdateFlag(id, window.Minimized, false); err != nil {
		return err
	}
	e.focusedScreen = g.Screen()
	return e.focusWindow(g, id)
}
