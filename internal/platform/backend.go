package platform

// WindowID is a platform-neutral window identifier.
type WindowID uint32

// Rect describes a rectangular region in screen coordinates.
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Right returns the first column past the rectangle.
func (r Rect) Right() int { return r.X + r.Width }

// Bottom returns the first row past the rectangle.
func (r Rect) Bottom() int { return r.Y + r.Height }

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool { return r.Width <= 0 || r.Height <= 0 }

// Inset shrinks the rectangle by n pixels on every side.
func (r Rect) Inset(n int) Rect {
	return Rect{X: r.X + n, Y: r.Y + n, Width: r.Width - 2*n, Height: r.Height - 2*n}
}

// Contains reports whether o lies entirely inside r.
func (r Rect) Contains(o Rect) bool {
	return o.X >= r.X && o.Y >= r.Y && o.Right() <= r.Right() && o.Bottom() <= r.Bottom()
}

// Overlaps reports whether the two rectangles share any pixel.
func (r Rect) Overlaps(o Rect) bool {
	if r.Empty() || o.Empty() {
		return false
	}
	return r.X < o.Right() && o.X < r.Right() && r.Y < o.Bottom() && o.Y < r.Bottom()
}

// Center returns the integer midpoint of the rectangle.
func (r Rect) Center() (int, int) {
	return r.X + r.Width/2, r.Y + r.Height/2
}

// Screen describes a physical output and the area windows may use on it.
type Screen struct {
	Index  int    `json:"index"`
	Name   string `json:"name,omitempty"`
	Bounds Rect   `json:"bounds"`
}

// Display is the outbound side of the display server: everything the engine
// asks the server to do with a managed window.
type Display interface {
	// SetGeometry places a window. r is the client area, excluding the
	// border; the window occupies r grown by border on every side.
	SetGeometry(id WindowID, r Rect, border int) error
	Raise(id WindowID) error
	Hide(id WindowID) error
	Show(id WindowID) error
	SetInputFocus(id WindowID) error
	Close(id WindowID) error
}

// PointerWarper is implemented by displays that can move the pointer.
type PointerWarper interface {
	// WarpPointer centres the pointer on a window.
	WarpPointer(id WindowID) error
}
