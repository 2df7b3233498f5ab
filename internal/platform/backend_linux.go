//go:build linux

package platform

import (
	"fmt"
	"sync"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/xevent"

	"github.com/1broseidon/groupwm/internal/logger"
	"github.com/1broseidon/groupwm/internal/x11"
)

// X11Backend drives an X server as the window manager. It implements Display
// for the engine and translates X events into Events.
type X11Backend struct {
	conn *x11.Connection
	log  *logger.Logger

	// FollowMouse gives input focus to windows the pointer enters.
	FollowMouse bool

	mu       sync.Mutex
	managed  map[xproto.Window]bool
	geometry map[xproto.Window]Rect
	// ignoreUnmap counts unmaps the backend caused itself.
	ignoreUnmap map[xproto.Window]int
	monitors    []x11.Monitor
}

var (
	_ Display       = (*X11Backend)(nil)
	_ PointerWarper = (*X11Backend)(nil)
)

// NewX11Backend wraps an X connection that has already become the window
// manager.
func NewX11Backend(conn *x11.Connection, log *logger.Logger) *X11Backend {
	if log == nil {
		log = logger.Nop()
	}
	return &X11Backend{
		conn:        conn,
		log:         log,
		managed:     make(map[xproto.Window]bool),
		geometry:    make(map[xproto.Window]Rect),
		ignoreUnmap: make(map[xproto.Window]int),
	}
}

// Screens queries RandR and returns the output bounds in screen order.
func (b *X11Backend) Screens() ([]Rect, error) {
	monitors, err := b.conn.GetMonitors()
	if err != nil {
		return nil, err
	}
	b.mu.Lock()
	b.monitors = monitors
	b.mu.Unlock()
	return monitorRects(monitors), nil
}

func monitorRects(monitors []x11.Monitor) []Rect {
	out := make([]Rect, len(monitors))
	for i, m := range monitors {
		out[i] = Rect{X: m.X, Y: m.Y, Width: m.Width, Height: m.Height}
	}
	return out
}

// SetGeometry implements Display.
func (b *X11Backend) SetGeometry(id WindowID, r Rect, border int) error {
	win := xproto.Window(id)
	b.mu.Lock()
	b.geometry[win] = r
	b.mu.Unlock()
	return b.conn.Configure(win, r.X, r.Y, r.Width, r.Height, border)
}

// WarpPointer implements PointerWarper.
func (b *X11Backend) WarpPointer(id WindowID) error {
	win := xproto.Window(id)
	b.mu.Lock()
	r, ok := b.geometry[win]
	b.mu.Unlock()
	if !ok {
		return fmt.Errorf("window %d is not managed", id)
	}
	return b.conn.WarpPointer(win, r.Width/2, r.Height/2)
}

// Raise implements Display.
func (b *X11Backend) Raise(id WindowID) error {
	return b.conn.Raise(xproto.Window(id))
}

// Hide implements Display. The resulting UnmapNotify is not reported.
func (b *X11Backend) Hide(id WindowID) error {
	win := xproto.Window(id)
	b.mu.Lock()
	if !b.managed[win] {
		b.mu.Unlock()
		return nil
	}
	b.managed[win] = false
	b.ignoreUnmap[win]++
	b.mu.Unlock()
	if err := b.conn.Unmap(win); err != nil {
		b.mu.Lock()
		b.ignoreUnmap[win]--
		b.mu.Unlock()
		return err
	}
	return nil
}

// Show implements Display.
func (b *X11Backend) Show(id WindowID) error {
	win := xproto.Window(id)
	b.mu.Lock()
	mapped, known := b.managed[win]
	if known && mapped {
		b.mu.Unlock()
		return nil
	}
	b.managed[win] = true
	b.mu.Unlock()
	return b.conn.Map(win)
}

// SetInputFocus implements Display.
func (b *X11Backend) SetInputFocus(id WindowID) error {
	return b.conn.Focus(xproto.Window(id))
}

// Close implements Display.
func (b *X11Backend) Close(id WindowID) error {
	return b.conn.CloseWindow(xproto.Window(id))
}

// Listen connects the backend to the X event loop and reports events to
// sink. Windows that are already mapped are adopted first. sink must not
// block on the X event loop.
func (b *X11Backend) Listen(sink func(Event)) error {
	if err := b.conn.SelectScreenChanges(); err != nil {
		b.log.Warn("randr screen change notification unavailable", "error", err.Error())
	}
	if _, err := b.Screens(); err != nil {
		return err
	}

	xevent.HookFun(func(xu *xgbutil.XUtil, ev interface{}) bool {
		b.handle(ev, sink)
		return true
	}).Connect(b.conn.XUtil)

	existing, err := b.conn.TopLevel()
	if err != nil {
		return fmt.Errorf("adopt existing windows: %w", err)
	}
	for _, win := range existing {
		b.adopt(win, sink)
	}
	return nil
}

func (b *X11Backend) handle(ev interface{}, sink func(Event)) {
	switch ev := ev.(type) {
	case xproto.MapRequestEvent:
		b.mapRequest(ev.Window, sink)

	case xproto.ConfigureRequestEvent:
		b.configureRequest(ev, sink)

	case xproto.UnmapNotifyEvent:
		if ev.Event != b.conn.Root {
			return
		}
		b.mu.Lock()
		if b.ignoreUnmap[ev.Window] > 0 {
			b.ignoreUnmap[ev.Window]--
			b.mu.Unlock()
			return
		}
		_, known := b.managed[ev.Window]
		b.forget(ev.Window)
		b.mu.Unlock()
		if known {
			sink(WindowDestroyed{ID: WindowID(ev.Window)})
		}

	case xproto.DestroyNotifyEvent:
		b.mu.Lock()
		_, known := b.managed[ev.Window]
		b.forget(ev.Window)
		b.mu.Unlock()
		if known {
			sink(WindowDestroyed{ID: WindowID(ev.Window)})
		}

	case xproto.PropertyNotifyEvent:
		if !b.isManaged(ev.Window) {
			return
		}
		switch b.conn.AtomName(ev.Atom) {
		case "_NET_WM_NAME", "WM_NAME":
			sink(TitleChanged{ID: WindowID(ev.Window), Title: b.conn.Title(ev.Window)})
		}

	case xproto.ClientMessageEvent:
		switch b.conn.AtomName(ev.Type) {
		case "_NET_ACTIVE_WINDOW":
			if b.isManaged(ev.Window) {
				sink(ActivationRequest{ID: WindowID(ev.Window)})
			}
		case "WM_CHANGE_STATE":
			if x11.IconifyRequest(ev) && b.isManaged(ev.Window) {
				sink(MinimizeRequest{ID: WindowID(ev.Window)})
			}
		case "_NET_CLOSE_WINDOW":
			if b.isManaged(ev.Window) {
				if err := b.conn.CloseWindow(ev.Window); err != nil {
					b.log.Debug("close request failed", "window", ev.Window, "error", err.Error())
				}
			}
		}

	case xproto.FocusInEvent:
		if ev.Mode == xproto.NotifyModeGrab || ev.Mode == xproto.NotifyModeUngrab {
			return
		}
		if b.isManaged(ev.Event) {
			sink(FocusIn{ID: WindowID(ev.Event)})
		}

	case xproto.ButtonPressEvent:
		if ev.Event == b.conn.Root {
			return
		}
		b.conn.ReplayClick(ev.Time)
		if b.isManaged(ev.Event) {
			sink(ButtonPress{ID: WindowID(ev.Event)})
		}

	case xproto.EnterNotifyEvent:
		if !b.FollowMouse || ev.Mode != xproto.NotifyModeNormal || !b.isManaged(ev.Event) {
			return
		}
		if err := b.conn.Focus(ev.Event); err != nil {
			b.log.Debug("focus follows mouse failed", "window", ev.Event, "error", err.Error())
		}

	case randr.ScreenChangeNotifyEvent:
		rects, err := b.Screens()
		if err != nil {
			b.log.Error("screen query failed", err)
			return
		}
		sink(ScreenListChanged{Screens: rects})
	}
}

func (b *X11Backend) isManaged(win xproto.Window) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.managed[win]
	return ok
}

// forget drops a window from the backend's books. b.mu must be held.
func (b *X11Backend) forget(win xproto.Window) {
	delete(b.managed, win)
	delete(b.geometry, win)
	delete(b.ignoreUnmap, win)
}

func (b *X11Backend) mapRequest(win xproto.Window, sink func(Event)) {
	if b.isManaged(win) {
		return
	}
	if !b.conn.Manageable(win) {
		if err := b.conn.Map(win); err != nil {
			b.log.Debug("map unmanaged window failed", "window", win, "error", err.Error())
		}
		return
	}
	b.adopt(win, sink)
}

// adopt starts managing a window and reports it. The window stays unmapped
// until the engine shows it.
func (b *X11Backend) adopt(win xproto.Window, sink func(Event)) {
	info, err := b.conn.Client(win)
	if err != nil {
		b.log.Debug("window vanished before it was managed", "window", win, "error", err.Error())
		return
	}
	if err := b.conn.Watch(win); err != nil {
		b.log.Debug("select window events failed", "window", win, "error", err.Error())
	}
	if err := b.conn.GrabClick(win); err != nil {
		b.log.Debug("grab window clicks failed", "window", win, "error", err.Error())
	}

	geom := Rect{X: info.X, Y: info.Y, Width: info.Width, Height: info.Height}
	b.mu.Lock()
	// Adopted windows are already mapped; new ones are not.
	b.managed[win] = b.viewable(win)
	b.geometry[win] = geom
	screen := -1
	if info.Positioned {
		cx, cy := geom.Center()
		screen = x11.MonitorAt(b.monitors, cx, cy)
	}
	b.mu.Unlock()

	sink(WindowCreated{
		ID:       WindowID(win),
		Class:    info.Class,
		Instance: info.Instance,
		Title:    info.Title,
		Geometry: geom,
		Hints: Hints{
			Type:       info.Type,
			Role:       info.Role,
			Transient:  info.Transient,
			FixedSize:  info.FixedSize,
			Fullscreen: info.Fullscreen,
		},
		Screen: screen,
	})
}

func (b *X11Backend) viewable(win xproto.Window) bool {
	attrs, err := xproto.GetWindowAttributes(b.conn.XUtil.Conn(), win).Reply()
	return err == nil && attrs.MapState == xproto.MapStateViewable
}

func (b *X11Backend) configureRequest(ev xproto.ConfigureRequestEvent, sink func(Event)) {
	b.mu.Lock()
	current, known := b.geometry[ev.Window]
	b.mu.Unlock()
	if !known {
		b.conn.ConfigurePassthrough(ev)
		return
	}

	r := current
	if ev.ValueMask&xproto.ConfigWindowX != 0 {
		r.X = int(ev.X)
	}
	if ev.ValueMask&xproto.ConfigWindowY != 0 {
		r.Y = int(ev.Y)
	}
	if ev.ValueMask&xproto.ConfigWindowWidth != 0 {
		r.Width = int(ev.Width)
	}
	if ev.ValueMask&xproto.ConfigWindowHeight != 0 {
		r.Height = int(ev.Height)
	}
	// Tell the client where it is now; the engine's answer, if any, follows
	// as a real ConfigureNotify.
	b.conn.SendConfigureNotify(ev.Window, current.X, current.Y, current.Width, current.Height, 0)
	sink(ConfigureRequest{ID: WindowID(ev.Window), Geometry: r})
}
