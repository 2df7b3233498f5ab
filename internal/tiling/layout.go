// Package tiling computes window geometry for a group. The set of layouts is
// closed: Tall, Max, Columns and Floating are the only implementations of
// Layout, and callers switch on the concrete type for layout-specific
// commands.
package tiling

import (
	"fmt"
	"math"
	"strings"

	"github.com/1broseidon/groupwm/internal/platform"
)

// Kind names a layout variant.
type Kind string

const (
	KindTall     Kind = "tall"
	KindMax      Kind = "max"
	KindColumns  Kind = "columns"
	KindFloating Kind = "floating"
)

// Direction is a focus or shuffle direction.
type Direction int

const (
	DirLeft Direction = iota
	DirRight
	DirUp
	DirDown
)

func (d Direction) String() string {
	switch d {
	case DirLeft:
		return "left"
	case DirRight:
		return "right"
	case DirUp:
		return "up"
	case DirDown:
		return "down"
	}
	return fmt.Sprintf("Direction(%d)", int(d))
}

// ParseDirection converts "left", "right", "up" or "down".
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "left":
		return DirLeft, nil
	case "right":
		return DirRight, nil
	case "up":
		return DirUp, nil
	case "down":
		return DirDown, nil
	}
	return 0, fmt.Errorf("unknown direction %q", s)
}

// Position is where a new window enters a group's ordered window list.
type Position string

const (
	PositionTop          Position = "top"
	PositionAfterCurrent Position = "after_current"
	PositionBottom       Position = "bottom"
)

// ParsePosition validates a new_client_position value.
func ParsePosition(s string) (Position, error) {
	switch p := Position(s); p {
	case PositionTop, PositionAfterCurrent, PositionBottom:
		return p, nil
	}
	return "", fmt.Errorf("unknown new_client_position %q (expected top, after_current or bottom)", s)
}

// Frame is the input to an arrangement: the group's tiled windows in order,
// the focused one, and the area they share.
type Frame struct {
	Windows []platform.WindowID
	Focused platform.WindowID
	Area    platform.Rect
	// Geometry holds the last explicit geometry per window, used by Floating.
	Geometry map[platform.WindowID]platform.Rect
}

// focusIndex returns the index of the focused window. With no focus it
// falls back to the first window. It is -1 when the frame is empty or the
// focused window is not tiled (floating, fullscreen or minimized).
func (f Frame) focusIndex() int {
	if len(f.Windows) == 0 {
		return -1
	}
	if f.Focused == 0 {
		return 0
	}
	return indexOf(f.Windows, f.Focused)
}

// Placement is the result of an arrangement.
type Placement struct {
	// Rects holds the client geometry of every visible window, excluding the
	// border the display server draws around it.
	Rects map[platform.WindowID]platform.Rect
	// Hidden lists windows that stay in the group but are not shown.
	Hidden []platform.WindowID
	Border int
}

func newPlacement(border int) Placement {
	return Placement{Rects: make(map[platform.WindowID]platform.Rect), Border: border}
}

// Outer returns the rectangle a window occupies including its border.
func (p Placement) Outer(id platform.WindowID) (platform.Rect, bool) {
	r, ok := p.Rects[id]
	if !ok {
		return platform.Rect{}, false
	}
	return platform.Rect{X: r.X, Y: r.Y, Width: r.Width + 2*p.Border, Height: r.Height + 2*p.Border}, true
}

// Layout is implemented only by the types in this package.
type Layout interface {
	Kind() Kind
	// Name is the configured display name, shown in status snapshots.
	Name() string
	// Clone returns a fresh instance with the same parameters and no
	// per-group state.
	Clone() Layout
	Arrange(f Frame) (Placement, error)
	// Neighbor returns the window next to the focused one in dir, as this
	// layout understands adjacency.
	Neighbor(f Frame, dir Direction) (platform.WindowID, bool)
	// InsertPosition is where new windows enter the group's list.
	InsertPosition() Position
	// Forget drops per-window state for a window that left the group.
	Forget(id platform.WindowID)

	sealed()
}

// GeometryConflictError reports a placement with an empty, out-of-bounds or
// overlapping rectangle.
type GeometryConflictError struct {
	Layout string
	Window platform.WindowID
	// Other is the window overlapped, zero for bounds problems.
	Other platform.WindowID
	Rect  platform.Rect
}

func (e *GeometryConflictError) Error() string {
	if e.Other != 0 {
		return fmt.Sprintf("layout %s: window 0x%x overlaps window 0x%x", e.Layout, e.Window, e.Other)
	}
	return fmt.Sprintf("layout %s: window 0x%x has invalid geometry %dx%d+%d+%d",
		e.Layout, e.Window, e.Rect.Width, e.Rect.Height, e.Rect.X, e.Rect.Y)
}

// Validate checks that every placed window has a positive size, lies within
// area and does not overlap another placed window. order fixes the
// reporting order.
func Validate(name string, p Placement, order []platform.WindowID, area platform.Rect) error {
	var placed []platform.WindowID
	for _, id := range order {
		r, ok := p.Rects[id]
		if !ok {
			continue
		}
		outer, _ := p.Outer(id)
		if r.Empty() || !area.Contains(outer) {
			return &GeometryConflictError{Layout: name, Window: id, Rect: r}
		}
		for _, other := range placed {
			o, _ := p.Outer(other)
			if outer.Overlaps(o) {
				return &GeometryConflictError{Layout: name, Window: id, Other: other, Rect: r}
			}
		}
		placed = append(placed, id)
	}
	return nil
}

// fit turns a slot into client geometry: margin on every side, then the
// border drawn by the server.
func fit(slot platform.Rect, margin, border int) platform.Rect {
	r := slot.Inset(margin)
	r.Width -= 2 * border
	r.Height -= 2 * border
	return r
}

// split divides length into bands proportional to fractions. The last band
// absorbs rounding so the bands always cover the full length.
func split(start, length int, fractions []float64) []int {
	edges := make([]int, len(fractions)+1)
	edges[0] = start
	acc := 0.0
	for i, f := range fractions {
		acc += f
		edges[i+1] = start + int(math.Round(acc*float64(length)))
	}
	edges[len(fractions)] = start + length
	return edges
}

// normalize scales weights so they sum to 1. Missing or non-positive weights
// count as equal shares.
func normalize(weights []float64) []float64 {
	out := make([]float64, len(weights))
	sum := 0.0
	for i, w := range weights {
		if w <= 0 {
			w = 1
		}
		out[i] = w
		sum += w
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}

func clampFloat(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// roundRatio keeps repeated small steps from accumulating float noise.
func roundRatio(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}

func indexOf(ids []platform.WindowID, id platform.WindowID) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}

// cycle returns the neighbour of idx in a ring of n: left/up go back,
// right/down go forward.
func cycle(idx, n int, dir Direction) int {
	switch dir {
	case DirLeft, DirUp:
		return (idx - 1 + n) % n
	default:
		return (idx + 1) % n
	}
}
