package x11

import (
	"fmt"
	"sort"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
)

// Monitor represents a physical display
type Monitor struct {
	ID     int
	Name   string
	X      int
	Y      int
	Width  int
	Height int
}

// Contains reports whether the point lies on the monitor.
func (m Monitor) Contains(x, y int) bool {
	return x >= m.X && x < m.X+m.Width && y >= m.Y && y < m.Y+m.Height
}

// GetMonitors retrieves all active monitors using XRandR, ordered left to
// right then top to bottom. Cloned outputs sharing one geometry are reported
// once. Without RandR outputs the root window is the only monitor.
func (c *Connection) GetMonitors() ([]Monitor, error) {
	resources, err := randr.GetScreenResources(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get screen resources: %w", err)
	}

	var monitors []Monitor
	seen := make(map[[4]int]bool)

	for i, crtc := range resources.Crtcs {
		crtcInfo, err := randr.GetCrtcInfo(c.XUtil.Conn(), crtc, resources.ConfigTimestamp).Reply()
		if err != nil {
			continue
		}

		// Skip disabled CRTCs
		if crtcInfo.Width == 0 || crtcInfo.Height == 0 || len(crtcInfo.Outputs) == 0 {
			continue
		}
		key := [4]int{int(crtcInfo.X), int(crtcInfo.Y), int(crtcInfo.Width), int(crtcInfo.Height)}
		if seen[key] {
			continue
		}
		seen[key] = true

		outputName := fmt.Sprintf("Monitor%d", i)
		outputInfo, err := randr.GetOutputInfo(c.XUtil.Conn(), crtcInfo.Outputs[0], resources.ConfigTimestamp).Reply()
		if err == nil {
			outputName = string(outputInfo.Name)
		}

		monitors = append(monitors, Monitor{
			ID:     i,
			Name:   outputName,
			X:      key[0],
			Y:      key[1],
			Width:  key[2],
			Height: key[3],
		})
	}

	if len(monitors) == 0 {
		geom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(c.Root)).Reply()
		if err != nil {
			return nil, fmt.Errorf("no monitors found: %w", err)
		}
		monitors = append(monitors, Monitor{Name: "root", Width: int(geom.Width), Height: int(geom.Height)})
	}

	sort.SliceStable(monitors, func(i, j int) bool {
		if monitors[i].X != monitors[j].X {
			return monitors[i].X < monitors[j].X
		}
		return monitors[i].Y < monitors[j].Y
	})
	return monitors, nil
}

// SelectScreenChanges asks the server for RandR screen change notifications
// on the root window.
func (c *Connection) SelectScreenChanges() error {
	return randr.SelectInputChecked(c.XUtil.Conn(), c.Root, randr.NotifyMaskScreenChange).Check()
}

// MonitorAt returns the index of the monitor containing the point, or -1.
func MonitorAt(monitors []Monitor, x, y int) int {
	for i, m := range monitors {
		if m.Contains(x, y) {
			return i
		}
	}
	return -1
}

// PointerMonitor returns the index of the monitor under the pointer, or -1.
func (c *Connection) PointerMonitor(monitors []Monitor) int {
	pointer, err := xproto.QueryPointer(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return -1
	}
	return MonitorAt(monitors, int(pointer.RootX), int(pointer.RootY))
}
