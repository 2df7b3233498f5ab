package tiling

import "github.com/1broseidon/groupwm/internal/platform"

const (
	DefaultNumColumns = 2

	// Column widths and window heights are weights; every new column or
	// window starts at defaultWeight.
	defaultWeight = 100.0
	growStep      = 10.0
	minWeight     = 10.0
)

// ColumnsOptions configures a Columns layout.
type ColumnsOptions struct {
	Name       string
	NumColumns int
	Margin     int
	Border     int
}

type column struct {
	windows []platform.WindowID
	heights []float64
	width   float64
	current int
	// stacked columns show only their current window.
	stacked bool
}

func (c *column) insert(at int, id platform.WindowID) {
	c.windows = append(c.windows, 0)
	copy(c.windows[at+1:], c.windows[at:])
	c.windows[at] = id
	c.heights = append(c.heights, 0)
	copy(c.heights[at+1:], c.heights[at:])
	c.heights[at] = defaultWeight
	c.current = at
}

func (c *column) remove(at int) {
	c.windows = append(c.windows[:at], c.windows[at+1:]...)
	c.heights = append(c.heights[:at], c.heights[at+1:]...)
	if c.current >= len(c.windows) {
		c.current = len(c.windows) - 1
	}
	if c.current < 0 {
		c.current = 0
	}
}

// Columns arranges windows into independent vertical columns. New windows
// open a new column until NumColumns exist, then join the focused column.
type Columns struct {
	opts    ColumnsOptions
	cols    []*column
	current int
}

// NewColumns builds a Columns layout, filling in defaults for unset options.
func NewColumns(opts ColumnsOptions) *Columns {
	if opts.Name == "" {
		opts.Name = string(KindColumns)
	}
	if opts.NumColumns <= 0 {
		opts.NumColumns = DefaultNumColumns
	}
	return &Columns{opts: opts}
}

// Kind reports KindColumns.
func (c *Columns) Kind() Kind { return KindColumns }

// Name is the configured layout name.
func (c *Columns) Name() string { return c.opts.Name }

func (c *Columns) InsertPosition() Position { return PositionAfterCurrent }
func (c *Columns) Clone() Layout            { return NewColumns(c.opts) }
func (c *Columns) sealed()                  {}

func (c *Columns) Forget(id platform.WindowID) {
	if ci, wi, ok := c.locate(id); ok {
		c.removeAt(ci, wi)
	}
}

// Layout returns the window IDs per column, left to right.
func (c *Columns) Layout() [][]platform.WindowID {
	out := make([][]platform.WindowID, len(c.cols))
	for i, col := range c.cols {
		out[i] = append([]platform.WindowID(nil), col.windows...)
	}
	return out
}

func (c *Columns) locate(id platform.WindowID) (int, int, bool) {
	for ci, col := range c.cols {
		if wi := indexOf(col.windows, id); wi >= 0 {
			return ci, wi, true
		}
	}
	return 0, 0, false
}

func (c *Columns) removeAt(ci, wi int) {
	c.cols[ci].remove(wi)
	if len(c.cols[ci].windows) > 0 {
		return
	}
	c.cols = append(c.cols[:ci], c.cols[ci+1:]...)
	if c.current > ci || c.current >= len(c.cols) {
		c.current--
	}
	if c.current < 0 {
		c.current = 0
	}
}

func (c *Columns) insertColumn(at int) *column {
	col := &column{width: defaultWeight}
	c.cols = append(c.cols, nil)
	copy(c.cols[at+1:], c.cols[at:])
	c.cols[at] = col
	return col
}

func (c *Columns) add(id platform.WindowID) {
	if len(c.cols) == 0 || len(c.cols) < c.opts.NumColumns {
		at := 0
		if len(c.cols) > 0 {
			at = c.current + 1
		}
		c.insertColumn(at)
		c.current = at
	}
	col := c.cols[c.current]
	at := 0
	if len(col.windows) > 0 {
		at = col.current + 1
	}
	col.insert(at, id)
}

// sync reconciles the column structure with the group's window list and
// moves the column cursor to the focused window.
func (c *Columns) sync(f Frame) {
	present := make(map[platform.WindowID]struct{}, len(f.Windows))
	for _, id := range f.Windows {
		present[id] = struct{}{}
	}
	for ci := len(c.cols) - 1; ci >= 0; ci-- {
		col := c.cols[ci]
		for wi := len(col.windows) - 1; wi >= 0; wi-- {
			if _, ok := present[col.windows[wi]]; !ok {
				c.removeAt(ci, wi)
			}
		}
	}
	for _, id := range f.Windows {
		if _, _, ok := c.locate(id); !ok {
			c.add(id)
		}
	}
	if ci, wi, ok := c.locate(f.Focused); ok {
		c.current = ci
		c.cols[ci].current = wi
	}
}

// Arrange splits the area into columns by width weight. A stacked column
// shows only its current window; others split their height by weight.
func (c *Columns) Arrange(f Frame) (Placement, error) {
	c.sync(f)
	p := newPlacement(c.opts.Border)
	if len(c.cols) == 0 {
		return p, nil
	}

	widths := make([]float64, len(c.cols))
	for i, col := range c.cols {
		widths[i] = col.width
	}
	xs := split(f.Area.X, f.Area.Width, normalize(widths))

	for ci, col := range c.cols {
		colRect := platform.Rect{X: xs[ci], Y: f.Area.Y, Width: xs[ci+1] - xs[ci], Height: f.Area.Height}
		if col.stacked || len(col.windows) == 1 {
			for wi, id := range col.windows {
				if wi == col.current {
					p.Rects[id] = fit(colRect, c.opts.Margin, c.opts.Border)
				} else {
					p.Hidden = append(p.Hidden, id)
				}
			}
			continue
		}
		ys := split(colRect.Y, colRect.Height, normalize(col.heights))
		for wi, id := range col.windows {
			slot := platform.Rect{X: colRect.X, Y: ys[wi], Width: colRect.Width, Height: ys[wi+1] - ys[wi]}
			p.Rects[id] = fit(slot, c.opts.Margin, c.opts.Border)
		}
	}
	return p, nil
}

// Neighbor moves between columns for left/right and within the focused
// column for up/down, wrapping in both cases.
func (c *Columns) Neighbor(f Frame, dir Direction) (platform.WindowID, bool) {
	c.sync(f)
	if len(c.cols) == 0 {
		return 0, false
	}
	var next platform.WindowID
	switch dir {
	case DirLeft, DirRight:
		if len(c.cols) < 2 {
			return 0, false
		}
		col := c.cols[cycle(c.current, len(c.cols), dir)]
		next = col.windows[col.current]
	default:
		col := c.cols[c.current]
		if len(col.windows) < 2 {
			return 0, false
		}
		next = col.windows[cycle(col.current, len(col.windows), dir)]
	}
	return next, next != f.Focused
}

// Shuffle moves the focused window. Left and right move it into the
// neighbouring column; past the outer edge a new column is created as long
// as the window is not alone in its column. Up and down reorder within the
// column and stop at its ends.
func (c *Columns) Shuffle(f Frame, dir Direction) bool {
	c.sync(f)
	ci, wi, ok := c.locate(f.Focused)
	if !ok {
		return false
	}
	col := c.cols[ci]
	id := col.windows[wi]

	switch dir {
	case DirUp, DirDown:
		target := wi - 1
		if dir == DirDown {
			target = wi + 1
		}
		if target < 0 || target >= len(col.windows) {
			return false
		}
		col.windows[wi], col.windows[target] = col.windows[target], col.windows[wi]
		col.heights[wi], col.heights[target] = col.heights[target], col.heights[wi]
		col.current = target
		return true
	}

	target := ci - 1
	if dir == DirRight {
		target = ci + 1
	}
	if target < 0 || target >= len(c.cols) {
		if len(col.windows) == 1 {
			return false
		}
		if target < 0 {
			c.insertColumn(0)
			ci++
			target = 0
		} else {
			c.insertColumn(len(c.cols))
		}
	}
	dest := c.cols[target]
	c.removeAt(ci, wi)
	// The source column may have emptied and been removed.
	for i, col := range c.cols {
		if col == dest {
			target = i
		}
	}
	at := 0
	if len(dest.windows) > 0 {
		at = dest.current + 1
	}
	dest.insert(at, id)
	c.current = target
	return true
}

// GrowWidth widens or narrows the focused column in dir. Growing toward an
// outer edge that the column already touches narrows it instead. Only the
// focused column's weight changes; the rendered widths are renormalised
// against its siblings.
func (c *Columns) GrowWidth(f Frame, dir Direction) bool {
	c.sync(f)
	if len(c.cols) < 2 {
		return false
	}
	col := c.cols[c.current]
	grow := true
	if (dir == DirLeft && c.current == 0) || (dir == DirRight && c.current == len(c.cols)-1) {
		grow = false
	}
	col.width = adjustWeight(col.width, grow)
	return true
}

// GrowHeight is GrowWidth for the focused window inside its column.
func (c *Columns) GrowHeight(f Frame, dir Direction) bool {
	c.sync(f)
	if len(c.cols) == 0 {
		return false
	}
	col := c.cols[c.current]
	if len(col.windows) < 2 || col.stacked {
		return false
	}
	grow := true
	if (dir == DirUp && col.current == 0) || (dir == DirDown && col.current == len(col.windows)-1) {
		grow = false
	}
	col.heights[col.current] = adjustWeight(col.heights[col.current], grow)
	return true
}

func adjustWeight(w float64, grow bool) float64 {
	if grow {
		return w + growStep
	}
	if w-growStep < minWeight {
		return minWeight
	}
	return w - growStep
}

// Normalize resets every column width and window height.
func (c *Columns) Normalize() {
	for _, col := range c.cols {
		col.width = defaultWeight
		for i := range col.heights {
			col.heights[i] = defaultWeight
		}
	}
}

// ToggleSplit switches the focused column between showing all of its
// windows and showing only the current one.
func (c *Columns) ToggleSplit(f Frame) bool {
	c.sync(f)
	if len(c.cols) == 0 {
		return false
	}
	col := c.cols[c.current]
	col.stacked = !col.stacked
	return true
}
