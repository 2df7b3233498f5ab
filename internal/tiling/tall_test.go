package tiling

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/1broseidon/groupwm/internal/platform"
)

type R = platform.Rect

var ids123 = []platform.WindowID{1, 2, 3}

func TestTallArrange_MainAndTwoBands(t *testing.T) {
	tall := NewTall(TallOptions{Ratio: 0.62})
	area := R{X: 0, Y: 0, Width: 1000, Height: 800}

	got, err := tall.Arrange(Frame{Windows: ids123, Focused: 1, Area: area})
	if err != nil {
		t.Fatalf("Arrange: %v", err)
	}
	want := Placement{
		Rects: map[platform.WindowID]platform.Rect{
			1: {X: 0, Y: 0, Width: 620, Height: 800},
			2: {X: 620, Y: 0, Width: 380, Height: 400},
			3: {X: 620, Y: 400, Width: 380, Height: 400},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("placement mismatch (-want +got):\n%s", diff)
	}
}

func TestTallArrange_MarginAndBorderReserved(t *testing.T) {
	tall := NewTall(TallOptions{Ratio: 0.62, Margin: 6, Border: 4})
	area := R{Width: 1000, Height: 800}

	got, err := tall.Arrange(Frame{Windows: ids123, Focused: 1, Area: area})
	if err != nil {
		t.Fatalf("Arrange: %v", err)
	}
	// Each slot loses the margin on both sides, then twice the border.
	want := map[platform.WindowID]platform.Rect{
		1: {X: 6, Y: 6, Width: 620 - 12 - 8, Height: 800 - 12 - 8},
		2: {X: 626, Y: 6, Width: 380 - 12 - 8, Height: 400 - 12 - 8},
		3: {X: 626, Y: 406, Width: 380 - 12 - 8, Height: 400 - 12 - 8},
	}
	if diff := cmp.Diff(want, got.Rects); diff != "" {
		t.Fatalf("rects mismatch (-want +got):\n%s", diff)
	}
	if err := Validate(tall.Name(), got, ids123, area); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestTallArrange_SingleWindowFillsArea(t *testing.T) {
	tall := NewTall(TallOptions{Ratio: 0.62})
	area := R{X: 100, Y: 24, Width: 800, Height: 576}
	got, _ := tall.Arrange(Frame{Windows: []platform.WindowID{9}, Area: area})
	if got.Rects[9] != area {
		t.Errorf("single window = %+v, want %+v", got.Rects[9], area)
	}
}

func TestTallArrange_Idempotent(t *testing.T) {
	tall := NewTall(TallOptions{Ratio: 0.62, Margin: 3, Border: 1})
	f := Frame{Windows: []platform.WindowID{1, 2, 3, 4, 5}, Focused: 3, Area: R{Width: 1337, Height: 733}}
	tall.Grow(f)

	first, err := tall.Arrange(f)
	if err != nil {
		t.Fatal(err)
	}
	second, err := tall.Arrange(f)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("second arrange differs (-first +second):\n%s", diff)
	}
}

func TestTallRatioClamped(t *testing.T) {
	tall := NewTall(TallOptions{Ratio: 0.62})
	for i := 0; i < 50; i++ {
		tall.GrowMain()
		if r := tall.Ratio(); r < MinRatio || r > MaxRatio {
			t.Fatalf("ratio %v out of range after %d grows", r, i+1)
		}
	}
	if tall.Ratio() != MaxRatio {
		t.Errorf("ratio after many grows = %v, want %v", tall.Ratio(), MaxRatio)
	}
	for i := 0; i < 50; i++ {
		tall.ShrinkMain()
	}
	if tall.Ratio() != MinRatio {
		t.Errorf("ratio after many shrinks = %v, want %v", tall.Ratio(), MinRatio)
	}

	tall.Reset()
	if tall.Ratio() != 0.62 {
		t.Errorf("ratio after reset = %v, want 0.62", tall.Ratio())
	}
}

func TestTallConfiguredRatioClamped(t *testing.T) {
	if got := NewTall(TallOptions{Ratio: 0.99}).Ratio(); got != MaxRatio {
		t.Errorf("ratio = %v, want %v", got, MaxRatio)
	}
}

func TestTallGrowStackRenormalises(t *testing.T) {
	tall := NewTall(TallOptions{})
	f := Frame{Windows: []platform.WindowID{1, 2, 3, 4}, Focused: 2, Area: R{Width: 1000, Height: 900}}

	tall.Grow(f)
	fr := tall.StackFractions(f.Windows[1:])
	sum := 0.0
	for _, v := range fr {
		sum += v
	}
	if math.Abs(sum-1) > 1e-9 {
		t.Fatalf("fractions sum to %v, want 1", sum)
	}
	if !(fr[0] > fr[1] && math.Abs(fr[1]-fr[2]) < 1e-9) {
		t.Fatalf("unexpected fractions after grow: %v", fr)
	}

	// Growing forever stops before starving the other windows.
	for i := 0; i < 100; i++ {
		tall.Grow(f)
	}
	fr = tall.StackFractions(f.Windows[1:])
	if fr[1] < minStackFraction-1e-9 || fr[2] < minStackFraction-1e-9 {
		t.Fatalf("stack window starved: %v", fr)
	}

	tall.Normalize()
	fr = tall.StackFractions(f.Windows[1:])
	for _, v := range fr {
		if math.Abs(v-1.0/3) > 1e-9 {
			t.Fatalf("fractions after normalize = %v", fr)
		}
	}
}

func TestTallGrowOnMainChangesRatio(t *testing.T) {
	tall := NewTall(TallOptions{Ratio: 0.5})
	tall.Grow(Frame{Windows: ids123, Focused: 1})
	if tall.Ratio() != 0.55 {
		t.Errorf("ratio = %v, want 0.55", tall.Ratio())
	}
}

func TestTallShuffle(t *testing.T) {
	tall := NewTall(TallOptions{})
	tests := []struct {
		name    string
		focused platform.WindowID
		dir     Direction
		want    []platform.WindowID
		moved   bool
	}{
		{"up clamps at top", 1, DirUp, ids123, false},
		{"down clamps at bottom", 3, DirDown, ids123, false},
		{"down swaps with next", 2, DirDown, []platform.WindowID{1, 3, 2}, true},
		{"left promotes to main", 3, DirLeft, []platform.WindowID{3, 2, 1}, true},
		{"left on main clamps", 1, DirLeft, ids123, false},
		{"right demotes main", 1, DirRight, []platform.WindowID{2, 1, 3}, true},
		{"right in stack clamps", 2, DirRight, ids123, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, moved := tall.Shuffle(Frame{Windows: ids123, Focused: tt.focused}, tt.dir)
			if moved != tt.moved {
				t.Errorf("moved = %v, want %v", moved, tt.moved)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("order mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestTallNeighbor(t *testing.T) {
	tall := NewTall(TallOptions{Ratio: 0.62})
	area := R{Width: 1000, Height: 800}
	tests := []struct {
		focused platform.WindowID
		dir     Direction
		want    platform.WindowID
		ok      bool
	}{
		{1, DirRight, 2, true},
		{3, DirLeft, 1, true},
		{3, DirUp, 2, true},
		{2, DirDown, 3, true},
		{2, DirUp, 0, false},
		{1, DirLeft, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.dir.String(), func(t *testing.T) {
			got, ok := tall.Neighbor(Frame{Windows: ids123, Focused: tt.focused, Area: area}, tt.dir)
			if got != tt.want || ok != tt.ok {
				t.Errorf("Neighbor(%d, %s) = %d,%v want %d,%v", tt.focused, tt.dir, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestValidateReportsConflicts(t *testing.T) {
	tall := NewTall(TallOptions{Margin: 10})
	area := R{Width: 20, Height: 20}
	p, _ := tall.Arrange(Frame{Windows: ids123, Area: area})

	err := Validate(tall.Name(), p, ids123, area)
	var conflict *GeometryConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected GeometryConflictError, got %v", err)
	}

	overlap := Placement{Rects: map[platform.WindowID]platform.Rect{
		1: {X: 0, Y: 0, Width: 60, Height: 60},
		2: {X: 50, Y: 50, Width: 40, Height: 40},
	}}
	err = Validate("test", overlap, []platform.WindowID{1, 2}, R{Width: 100, Height: 100})
	if !errors.As(err, &conflict) || conflict.Other != 1 || conflict.Window != 2 {
		t.Fatalf("expected overlap of 2 with 1, got %v", err)
	}

	outside := Placement{Rects: map[platform.WindowID]platform.Rect{1: {X: 90, Width: 20, Height: 20}}}
	if err := Validate("test", outside, []platform.WindowID{1}, R{Width: 100, Height: 100}); err == nil {
		t.Fatal("expected out-of-bounds conflict")
	}
}

func TestParseHelpers(t *testing.T) {
	if d, err := ParseDirection(" Left "); err != nil || d != DirLeft {
		t.Errorf("ParseDirection = %v, %v", d, err)
	}
	if _, err := ParseDirection("sideways"); err == nil {
		t.Error("expected error for unknown direction")
	}
	if p, err := ParsePosition("after_current"); err != nil || p != PositionAfterCurrent {
		t.Errorf("ParsePosition = %v, %v", p, err)
	}
	if _, err := ParsePosition("middle"); err == nil {
		t.Error("expected error for unknown position")
	}
}

func TestUntiledFocusLeavesTilesAlone(t *testing.T) {
	// Window 9 has focus but is not part of the layout, e.g. it floats.
	f := Frame{Windows: ids123, Focused: 9, Area: R{Width: 1000, Height: 800}}

	tall := NewTall(TallOptions{Ratio: 0.5})
	tall.Grow(f)
	tall.Shrink(f)
	if tall.Ratio() != 0.5 {
		t.Errorf("ratio = %v, want 0.5", tall.Ratio())
	}
	if got, moved := tall.Shuffle(f, DirDown); moved {
		t.Errorf("Shuffle moved tiles to %v", got)
	}
	if next, ok := tall.Neighbor(f, DirRight); ok {
		t.Errorf("Neighbor = %d, want none", next)
	}

	m := NewMax(MaxOptions{})
	if next, ok := m.Neighbor(f, DirRight); ok {
		t.Errorf("max Neighbor = %d, want none", next)
	}
	p, _ := m.Arrange(f)
	if _, ok := p.Rects[1]; !ok || len(p.Rects) != 1 {
		t.Errorf("max shows %v, want window 1 only", p.Rects)
	}
}
