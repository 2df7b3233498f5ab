package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/xprop"
)

// Desktops publishes the group list as EWMH desktops so pagers and bars can
// show it. current is the index of the group on the focused screen.
func (c *Connection) Desktops(names []string, current int) error {
	if err := ewmh.NumberOfDesktopsSet(c.XUtil, uint(len(names))); err != nil {
		return fmt.Errorf("set desktop count: %w", err)
	}
	if err := ewmh.DesktopNamesSet(c.XUtil, names); err != nil {
		return fmt.Errorf("set desktop names: %w", err)
	}
	if current < 0 {
		return nil
	}
	if err := ewmh.CurrentDesktopSet(c.XUtil, uint(current)); err != nil {
		return fmt.Errorf("set current desktop: %w", err)
	}
	return nil
}

// ClientList publishes _NET_CLIENT_LIST.
func (c *Connection) ClientList(wins []xproto.Window) error {
	return ewmh.ClientListSet(c.XUtil, wins)
}

// SetWindowDesktop records the desktop index of a managed window in
// _NET_WM_DESKTOP.
func (c *Connection) SetWindowDesktop(win xproto.Window, desktop int) error {
	return ewmh.WmDesktopSet(c.XUtil, win, uint(desktop))
}

// AtomName resolves a client message type to its name.
func (c *Connection) AtomName(atom xproto.Atom) string {
	name, err := xprop.AtomName(c.XUtil, atom)
	if err != nil {
		return ""
	}
	return name
}
