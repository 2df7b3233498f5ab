package tiling

import (
	"math"

	"github.com/1broseidon/groupwm/internal/platform"
)

const (
	MinRatio = 0.1
	MaxRatio = 0.9

	DefaultRatio       = 0.5
	DefaultChangeRatio = 0.05
	DefaultChangeSize  = 0.05

	// minStackFraction keeps every stacked window visible after grow/shrink.
	minStackFraction = 0.05
)

// TallOptions configures a Tall layout.
type TallOptions struct {
	Name              string
	Ratio             float64
	ChangeRatio       float64
	ChangeSize        float64
	Margin            int
	Border            int
	NewClientPosition Position
}

// Tall puts the first window in a main column on the left and stacks the
// rest on the right.
type Tall struct {
	opts  TallOptions
	ratio float64
	// sizes holds each stacked window's share of the stack height.
	sizes map[platform.WindowID]float64
}

// NewTall builds a Tall layout, filling in defaults for unset options.
func NewTall(opts TallOptions) *Tall {
	if opts.Name == "" {
		opts.Name = string(KindTall)
	}
	if opts.Ratio == 0 {
		opts.Ratio = DefaultRatio
	}
	opts.Ratio = clampFloat(opts.Ratio, MinRatio, MaxRatio)
	if opts.ChangeRatio <= 0 {
		opts.ChangeRatio = DefaultChangeRatio
	}
	if opts.ChangeSize <= 0 {
		opts.ChangeSize = DefaultChangeSize
	}
	if opts.NewClientPosition == "" {
		opts.NewClientPosition = PositionTop
	}
	return &Tall{
		opts:  opts,
		ratio: opts.Ratio,
		sizes: make(map[platform.WindowID]float64),
	}
}

// Kind reports KindTall.
func (t *Tall) Kind() Kind { return KindTall }

// Name is the configured layout name.
func (t *Tall) Name() string { return t.opts.Name }

func (t *Tall) InsertPosition() Position { return t.opts.NewClientPosition }
func (t *Tall) Clone() Layout            { return NewTall(t.opts) }
func (t *Tall) sealed()                  {}

// Ratio returns the main column's current share of the width.
func (t *Tall) Ratio() float64 { return t.ratio }

func (t *Tall) Forget(id platform.WindowID) {
	delete(t.sizes, id)
}

// Arrange is pure with respect to the layout state: calling it twice with the
// same frame gives the same placement.
func (t *Tall) Arrange(f Frame) (Placement, error) {
	p := newPlacement(t.opts.Border)
	n := len(f.Windows)
	if n == 0 {
		return p, nil
	}
	area := f.Area
	if n == 1 {
		p.Rects[f.Windows[0]] = fit(area, t.opts.Margin, t.opts.Border)
		return p, nil
	}

	mainWidth := int(math.Round(float64(area.Width) * t.ratio))
	main := platform.Rect{X: area.X, Y: area.Y, Width: mainWidth, Height: area.Height}
	p.Rects[f.Windows[0]] = fit(main, t.opts.Margin, t.opts.Border)

	stack := f.Windows[1:]
	edges := split(area.Y, area.Height, t.StackFractions(stack))
	for i, id := range stack {
		slot := platform.Rect{
			X:      area.X + mainWidth,
			Y:      edges[i],
			Width:  area.Width - mainWidth,
			Height: edges[i+1] - edges[i],
		}
		p.Rects[id] = fit(slot, t.opts.Margin, t.opts.Border)
	}
	return p, nil
}

// StackFractions returns each stacked window's share of the stack height.
// The shares always sum to 1.
func (t *Tall) StackFractions(stack []platform.WindowID) []float64 {
	weights := make([]float64, len(stack))
	for i, id := range stack {
		weights[i] = t.sizes[id]
	}
	return normalize(weights)
}

// Neighbor is the nearest tile in dir by geometry. It does not wrap.
func (t *Tall) Neighbor(f Frame, dir Direction) (platform.WindowID, bool) {
	p, err := t.Arrange(f)
	if err != nil {
		return 0, false
	}
	idx := f.focusIndex()
	if idx < 0 {
		return 0, false
	}
	return navigateSpatial(f.Windows, p.Rects, f.Windows[idx], dir, false)
}

// GrowMain widens the main column by one step, up to MaxRatio.
func (t *Tall) GrowMain() {
	t.ratio = roundRatio(clampFloat(t.ratio+t.opts.ChangeRatio, MinRatio, MaxRatio))
}

// ShrinkMain narrows the main column by one step, down to MinRatio.
func (t *Tall) ShrinkMain() {
	t.ratio = roundRatio(clampFloat(t.ratio-t.opts.ChangeRatio, MinRatio, MaxRatio))
}

// Grow enlarges the focused window: the main column when the main window is
// focused, otherwise the focused window's share of the stack.
func (t *Tall) Grow(f Frame) {
	t.resize(f, t.opts.ChangeSize)
}

// Shrink is the inverse of Grow.
func (t *Tall) Shrink(f Frame) {
	t.resize(f, -t.opts.ChangeSize)
}

func (t *Tall) resize(f Frame, delta float64) {
	idx := f.focusIndex()
	if idx < 0 {
		return
	}
	if idx == 0 {
		if delta > 0 {
			t.GrowMain()
		} else {
			t.ShrinkMain()
		}
		return
	}

	stack := f.Windows[1:]
	if len(stack) < 2 {
		return
	}
	i := idx - 1
	fractions := t.StackFractions(stack)
	maxShare := 1 - minStackFraction*float64(len(stack)-1)
	share := clampFloat(fractions[i]+delta, minStackFraction, maxShare)

	// The other windows keep their proportions among themselves.
	rest := 1 - fractions[i]
	for j, id := range stack {
		if j == i {
			t.sizes[id] = share
			continue
		}
		t.sizes[id] = fractions[j] / rest * (1 - share)
	}
}

// Normalize resets every stacked window to an equal share.
func (t *Tall) Normalize() {
	t.sizes = make(map[platform.WindowID]float64)
}

// Reset restores the configured ratio and equal stack shares.
func (t *Tall) Reset() {
	t.Normalize()
	t.ratio = t.opts.Ratio
}

// Shuffle returns the window order after moving the focused window in dir.
// Up and down swap with the previous and next window; left moves a stacked
// window into the main slot and right moves the main window into the stack.
// Moves past an edge leave the order unchanged and report false.
func (t *Tall) Shuffle(f Frame, dir Direction) ([]platform.WindowID, bool) {
	idx := f.focusIndex()
	if idx < 0 || len(f.Windows) < 2 {
		return f.Windows, false
	}
	target := -1
	switch dir {
	case DirUp:
		target = idx - 1
	case DirDown:
		target = idx + 1
	case DirLeft:
		if idx > 0 {
			target = 0
		}
	case DirRight:
		if idx == 0 {
			target = 1
		}
	}
	if target < 0 || target >= len(f.Windows) {
		return f.Windows, false
	}
	out := append([]platform.WindowID(nil), f.Windows...)
	out[idx], out[target] = out[target], out[idx]
	return out, true
}
