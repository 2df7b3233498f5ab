// Package hotkeys grabs key and pointer bindings on the root window and
// forwards them to the engine's queue.
package hotkeys

import (
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/mousebind"
	"github.com/BurntSushi/xgbutil/xevent"

	"github.com/1broseidon/groupwm/internal/command"
	"github.com/1broseidon/groupwm/internal/config"
	"github.com/1broseidon/groupwm/internal/logger"
	"github.com/1broseidon/groupwm/internal/platform"
	"github.com/1broseidon/groupwm/internal/x11"
)

// Sink receives what the bindings produce. *wm.Engine satisfies it.
type Sink interface {
	Post(ev platform.Event)
	PostTrigger(trigger string)
	PostCommand(c command.Command)
}

// Handler manages global keyboard and pointer shortcuts
type Handler struct {
	conn *x11.Connection
	xu   *xgbutil.XUtil
	root xproto.Window
	sink Sink
	log  *logger.Logger
}

var ignoreModsOnce sync.Once

// NewHandler creates a new hotkey handler.
func NewHandler(conn *x11.Connection, sink Sink, log *logger.Logger) *Handler {
	if log == nil {
		log = logger.Nop()
	}
	ignoreModsOnce.Do(func() {
		configureIgnoreMods(conn.XUtil)
	})
	return &Handler{
		conn: conn,
		xu:   conn.XUtil,
		root: conn.Root,
		sink: sink,
		log:  log,
	}
}

// RegisterKeys grabs every binding's trigger. A trigger that cannot be
// grabbed is reported and the rest are still registered.
func (h *Handler) RegisterKeys(bindings []command.Binding) error {
	var errs []error
	for _, b := range bindings {
		trigger := b.Trigger.String()
		if err := h.RegisterFunc(trigger, func() { h.sink.PostTrigger(trigger) }); err != nil {
			errs = append(errs, fmt.Errorf("grab %s: %w", trigger, err))
			continue
		}
		h.log.Debug("key grabbed", "trigger", trigger)
	}
	return errors.Join(errs...)
}

// RegisterFunc registers an arbitrary hotkey callback.
func (h *Handler) RegisterFunc(keySequence string, callback func()) error {
	return keybind.KeyPressFun(func(xu *xgbutil.XUtil, ev xevent.KeyPressEvent) {
		callback()
	}).Connect(h.xu, h.root, keySequence, true)
}

// RegisterMouse grabs pointer bindings. Click bindings focus the window under
// the pointer and run their command. Drag bindings do the same on press and
// then run their command with the pointer-derived position or size on every
// motion event.
func (h *Handler) RegisterMouse(bindings []config.MouseConfig) error {
	var errs []error
	for _, m := range bindings {
		t, err := command.NewTrigger(m.Mods, strconv.Itoa(m.Button))
		if err != nil {
			errs = append(errs, err)
			continue
		}
		seq := t.String()
		switch m.Action {
		case "drag":
			d := &drag{h: h, command: m.Command}
			mousebind.Drag(h.xu, h.root, h.root, seq, true, d.begin, d.step, d.end)
		case "click":
			name := m.Command
			err = mousebind.ButtonPressFun(func(xu *xgbutil.XUtil, ev xevent.ButtonPressEvent) {
				if h.focusChild(ev.Child) {
					h.sink.PostCommand(command.Command{Name: name})
				}
			}).Connect(h.xu, h.root, seq, false, true)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("grab %s: %w", seq, err))
			continue
		}
		h.log.Debug("button grabbed", "trigger", seq, "action", m.Action)
	}
	return errors.Join(errs...)
}

// focusChild focuses the top-level window under the pointer. It reports
// false when the pointer is over the root window.
func (h *Handler) focusChild(child xproto.Window) bool {
	if child == 0 || child == h.root {
		return false
	}
	if err := h.conn.Focus(child); err != nil {
		h.log.Debug("focus under pointer failed", "window", child, "error", err.Error())
	}
	h.sink.Post(platform.FocusIn{ID: platform.WindowID(child)})
	return true
}

// drag tracks one pointer drag. All callbacks run on the X event goroutine.
type drag struct {
	h       *Handler
	command string

	active         bool
	startX, startY int
	geom           platform.Rect
}

func (d *drag) begin(xu *xgbutil.XUtil, rootX, rootY, eventX, eventY int) (bool, xproto.Cursor) {
	pointer, err := xproto.QueryPointer(xu.Conn(), d.h.root).Reply()
	if err != nil || !d.h.focusChild(pointer.Child) {
		d.active = false
		return false, 0
	}
	geom, err := xproto.GetGeometry(xu.Conn(), xproto.Drawable(pointer.Child)).Reply()
	if err != nil {
		d.active = false
		return false, 0
	}
	d.active = true
	d.startX, d.startY = rootX, rootY
	d.geom = platform.Rect{X: int(geom.X), Y: int(geom.Y), Width: int(geom.Width), Height: int(geom.Height)}
	return true, 0
}

func (d *drag) step(xu *xgbutil.XUtil, rootX, rootY, eventX, eventY int) {
	if !d.active {
		return
	}
	a, b := dragArgs(d.command, d.geom, rootX-d.startX, rootY-d.startY)
	d.h.sink.PostCommand(command.Command{
		Name: d.command,
		Args: []string{strconv.Itoa(a), strconv.Itoa(b)},
	})
}

func (d *drag) end(xu *xgbutil.XUtil, rootX, rootY, eventX, eventY int) {
	d.active = false
}

// dragArgs turns a pointer offset into the two arguments of a drag command:
// a position for set_position_floating, a size for set_size_floating.
func dragArgs(name string, geom platform.Rect, dx, dy int) (int, int) {
	if name == command.WindowSetSize {
		return max(geom.Width+dx, 1), max(geom.Height+dy, 1)
	}
	return geom.X + dx, geom.Y + dy
}

func configureIgnoreMods(xu *xgbutil.XUtil) {
	// Always ignore CapsLock.
	caps := uint16(xproto.ModMaskLock)

	numLock := modMaskForKeysym(xu, "Num_Lock")
	scrollLock := modMaskForKeysym(xu, "Scroll_Lock")

	unique := make(map[uint16]struct{})
	add := func(mask uint16) {
		unique[mask] = struct{}{}
	}

	add(0)
	base := []uint16{caps}
	if numLock != 0 && numLock != caps {
		base = append(base, numLock)
	}
	if scrollLock != 0 && scrollLock != caps && scrollLock != numLock {
		base = append(base, scrollLock)
	}

	for subset := 1; subset < (1 << len(base)); subset++ {
		var mask uint16
		for bit := range base {
			if subset&(1<<bit) != 0 {
				mask |= base[bit]
			}
		}
		add(mask)
	}

	ignore := make([]uint16, 0, len(unique))
	for mask := range unique {
		ignore = append(ignore, mask)
	}

	xevent.IgnoreMods = ignore
}

func modMaskForKeysym(xu *xgbutil.XUtil, keysym string) uint16 {
	for _, keycode := range keybind.StrToKeycodes(xu, keysym) {
		if mask := keybind.ModGet(xu, keycode); mask != 0 {
			return mask
		}
	}
	return 0
}
