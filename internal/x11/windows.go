package x11

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/xprop"
	"github.com/BurntSushi/xgbutil/xwindow"
)

const typePrefix = "_NET_WM_WINDOW_TYPE_"

// ClientInfo is what a top-level window advertises when it asks to be mapped.
type ClientInfo struct {
	Class    string
	Instance string
	Title    string

	X, Y, Width, Height int

	// Type is the lower-case EWMH window type suffix, "normal" when unset.
	Type       string
	Role       string
	Transient  bool
	FixedSize  bool
	Fullscreen bool
	// Positioned is set when the client asked for its position explicitly.
	Positioned bool
}

// Client reads the geometry, class, title and hints of a window.
func (c *Connection) Client(win xproto.Window) (ClientInfo, error) {
	geom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(win)).Reply()
	if err != nil {
		return ClientInfo{}, fmt.Errorf("get geometry of 0x%x: %w", win, err)
	}
	info := ClientInfo{
		X:      int(geom.X),
		Y:      int(geom.Y),
		Width:  int(geom.Width),
		Height: int(geom.Height),
		Title:  c.Title(win),
		Type:   c.windowType(win),
	}

	if cls, err := icccm.WmClassGet(c.XUtil, win); err == nil && cls != nil {
		info.Class = cls.Class
		info.Instance = cls.Instance
	}
	if role, err := xprop.PropValStr(xprop.GetProperty(c.XUtil, win, "WM_WINDOW_ROLE")); err == nil {
		info.Role = role
	}
	if parent, err := icccm.WmTransientForGet(c.XUtil, win); err == nil && parent != 0 {
		info.Transient = true
	}
	if nh, err := icccm.WmNormalHintsGet(c.XUtil, win); err == nil && nh != nil {
		both := icccm.SizeHintPMinSize | icccm.SizeHintPMaxSize
		if nh.Flags&uint(both) == uint(both) && nh.MinWidth > 0 &&
			nh.MinWidth == nh.MaxWidth && nh.MinHeight == nh.MaxHeight {
			info.FixedSize = true
		}
		pos := icccm.SizeHintUSPosition | icccm.SizeHintPPosition
		info.Positioned = nh.Flags&uint(pos) != 0
	}
	if states, err := ewmh.WmStateGet(c.XUtil, win); err == nil {
		for _, s := range states {
			if s == "_NET_WM_STATE_FULLSCREEN" {
				info.Fullscreen = true
			}
		}
	}
	return info, nil
}

// Title returns _NET_WM_NAME, falling back to WM_NAME.
func (c *Connection) Title(win xproto.Window) string {
	if name, err := ewmh.WmNameGet(c.XUtil, win); err == nil && name != "" {
		return name
	}
	if name, err := icccm.WmNameGet(c.XUtil, win); err == nil {
		return name
	}
	return ""
}

func (c *Connection) windowType(win xproto.Window) string {
	types, err := ewmh.WmWindowTypeGet(c.XUtil, win)
	if err != nil || len(types) == 0 {
		return "normal"
	}
	return strings.ToLower(strings.TrimPrefix(types[0], typePrefix))
}

// Manageable reports whether a window should be managed: it is not
// override-redirect and is not a dock or desktop.
func (c *Connection) Manageable(win xproto.Window) bool {
	attrs, err := xproto.GetWindowAttributes(c.XUtil.Conn(), win).Reply()
	if err != nil || attrs.OverrideRedirect {
		return false
	}
	switch c.windowType(win) {
	case "dock", "desktop":
		return false
	}
	return true
}

// TopLevel returns the viewable, manageable children of the root window in
// stacking order.
func (c *Connection) TopLevel() ([]xproto.Window, error) {
	tree, err := xproto.QueryTree(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("query tree: %w", err)
	}
	var out []xproto.Window
	for _, win := range tree.Children {
		attrs, err := xproto.GetWindowAttributes(c.XUtil.Conn(), win).Reply()
		if err != nil || attrs.MapState != xproto.MapStateViewable {
			continue
		}
		if c.Manageable(win) {
			out = append(out, win)
		}
	}
	return out, nil
}

// Exists reports whether the window is still known to the server.
func (c *Connection) Exists(win xproto.Window) bool {
	_, err := xproto.GetWindowAttributes(c.XUtil.Conn(), win).Reply()
	return err == nil
}

// Watch selects the per-client events the window manager follows and adds
// the window to the save-set so hidden windows are mapped again if the
// manager exits.
func (c *Connection) Watch(win xproto.Window) error {
	xproto.ChangeSaveSet(c.XUtil.Conn(), xproto.SetModeInsert, win)
	return xwindow.New(c.XUtil, win).Listen(
		xproto.EventMaskPropertyChange,
		xproto.EventMaskEnterWindow,
		xproto.EventMaskFocusChange,
	)
}

// Configure sets position, size and border width in one request.
func (c *Connection) Configure(win xproto.Window, x, y, width, height, border int) error {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	mask := uint16(xproto.ConfigWindowX | xproto.ConfigWindowY |
		xproto.ConfigWindowWidth | xproto.ConfigWindowHeight |
		xproto.ConfigWindowBorderWidth)
	values := []uint32{uint32(int32(x)), uint32(int32(y)), uint32(width), uint32(height), uint32(border)}
	return xproto.ConfigureWindowChecked(c.XUtil.Conn(), win, mask, values).Check()
}

// ConfigurePassthrough applies a configure request unchanged. It is used for
// windows the manager does not control.
func (c *Connection) ConfigurePassthrough(ev xproto.ConfigureRequestEvent) {
	var mask uint16
	var values []uint32
	add := func(bit uint16, v uint32) {
		if ev.ValueMask&bit != 0 {
			mask |= bit
			values = append(values, v)
		}
	}
	add(xproto.ConfigWindowX, uint32(int32(ev.X)))
	add(xproto.ConfigWindowY, uint32(int32(ev.Y)))
	add(xproto.ConfigWindowWidth, uint32(ev.Width))
	add(xproto.ConfigWindowHeight, uint32(ev.Height))
	add(xproto.ConfigWindowBorderWidth, uint32(ev.BorderWidth))
	add(xproto.ConfigWindowSibling, uint32(ev.Sibling))
	add(xproto.ConfigWindowStackMode, uint32(ev.StackMode))
	xproto.ConfigureWindow(c.XUtil.Conn(), ev.Window, mask, values)
}

// SendConfigureNotify tells a client its current geometry with a synthetic
// ConfigureNotify, as ICCCM requires when a request is refused.
func (c *Connection) SendConfigureNotify(win xproto.Window, x, y, width, height, border int) {
	ev := xproto.ConfigureNotifyEvent{
		Event:       win,
		Window:      win,
		X:           int16(x),
		Y:           int16(y),
		Width:       uint16(width),
		Height:      uint16(height),
		BorderWidth: uint16(border),
	}
	xproto.SendEvent(c.XUtil.Conn(), false, win, xproto.EventMaskStructureNotify, string(ev.Bytes()))
}

// Raise puts the window on top of its siblings.
func (c *Connection) Raise(win xproto.Window) error {
	return xproto.ConfigureWindowChecked(c.XUtil.Conn(), win,
		xproto.ConfigWindowStackMode, []uint32{xproto.StackModeAbove}).Check()
}

// GrabClick grabs every button on win synchronously, so the manager sees a
// click before the client does. Each press must be released with
// ReplayClick.
func (c *Connection) GrabClick(win xproto.Window) error {
	return xproto.GrabButtonChecked(c.XUtil.Conn(), false, win,
		uint16(xproto.EventMaskButtonPress), xproto.GrabModeSync, xproto.GrabModeAsync,
		xproto.WindowNone, xproto.CursorNone, xproto.ButtonIndexAny, xproto.ModMaskAny).Check()
}

// ReplayClick thaws the pointer and delivers a grabbed press to the client.
func (c *Connection) ReplayClick(t xproto.Timestamp) {
	xproto.AllowEvents(c.XUtil.Conn(), xproto.AllowReplayPointer, t)
}

// WarpPointer moves the pointer to (x, y) relative to win.
func (c *Connection) WarpPointer(win xproto.Window, x, y int) error {
	return xproto.WarpPointerChecked(c.XUtil.Conn(), xproto.WindowNone, win,
		0, 0, 0, 0, int16(x), int16(y)).Check()
}

// IconifyRequest reports whether a client message is an ICCCM request to
// iconify its window.
func IconifyRequest(ev xproto.ClientMessageEvent) bool {
	return ev.Format == 32 && uint(ev.Data.Data32[0]) == icccm.StateIconic
}

// Map maps the window and marks it NormalState.
func (c *Connection) Map(win xproto.Window) error {
	if err := xproto.MapWindowChecked(c.XUtil.Conn(), win).Check(); err != nil {
		return err
	}
	return icccm.WmStateSet(c.XUtil, win, &icccm.WmState{State: icccm.StateNormal})
}

// Unmap unmaps the window and marks it IconicState.
func (c *Connection) Unmap(win xproto.Window) error {
	if err := xproto.UnmapWindowChecked(c.XUtil.Conn(), win).Check(); err != nil {
		return err
	}
	return icccm.WmStateSet(c.XUtil, win, &icccm.WmState{State: icccm.StateIconic})
}

// Focus gives the window input focus and records it as _NET_ACTIVE_WINDOW.
// A zero window returns focus to the root.
func (c *Connection) Focus(win xproto.Window) error {
	target := win
	if target == 0 {
		target = c.Root
	}
	err := xproto.SetInputFocusChecked(c.XUtil.Conn(), xproto.InputFocusPointerRoot,
		target, xproto.TimeCurrentTime).Check()
	if err != nil {
		return err
	}
	return ewmh.ActiveWindowSet(c.XUtil, win)
}

// CloseWindow asks the client to close with WM_DELETE_WINDOW when it
// supports the protocol and kills the client connection otherwise.
func (c *Connection) CloseWindow(win xproto.Window) error {
	protocols, err := icccm.WmProtocolsGet(c.XUtil, win)
	if err == nil {
		for _, p := range protocols {
			if p == "WM_DELETE_WINDOW" {
				return c.sendDelete(win)
			}
		}
	}
	return xproto.KillClientChecked(c.XUtil.Conn(), uint32(win)).Check()
}

func (c *Connection) sendDelete(win xproto.Window) error {
	wmProtocols, err := xprop.Atm(c.XUtil, "WM_PROTOCOLS")
	if err != nil {
		return err
	}
	wmDelete, err := xprop.Atm(c.XUtil, "WM_DELETE_WINDOW")
	if err != nil {
		return err
	}
	ev := xproto.ClientMessageEvent{
		Format: 32,
		Window: win,
		Type:   wmProtocols,
		Data: xproto.ClientMessageDataUnionData32New([]uint32{
			uint32(wmDelete), uint32(xproto.TimeCurrentTime), 0, 0, 0,
		}),
	}
	return xproto.SendEventChecked(c.XUtil.Conn(), false, win, xproto.EventMaskNoEvent, string(ev.Bytes())).Check()
}
