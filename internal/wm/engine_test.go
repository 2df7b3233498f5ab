package wm

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/1broseidon/groupwm/internal/config"
	"github.com/1broseidon/groupwm/internal/logger"
	"github.com/1broseidon/groupwm/internal/platform"
	"github.com/1broseidon/groupwm/internal/tiling"
	"github.com/1broseidon/groupwm/internal/window"
)

type fakeDisplay struct {
	geometry map[platform.WindowID]platform.Rect
	borders  map[platform.WindowID]int
	hidden   map[platform.WindowID]bool
	focus    platform.WindowID
	raised   []platform.WindowID
	closed   []platform.WindowID
	warped   []platform.WindowID
}

func newFakeDisplay() *fakeDisplay {
	return &fakeDisplay{
		geometry: make(map[platform.WindowID]platform.Rect),
		borders:  make(map[platform.WindowID]int),
		hidden:   make(map[platform.WindowID]bool),
	}
}

func (d *fakeDisplay) SetGeometry(id platform.WindowID, r platform.Rect, border int) error {
	d.geometry[id] = r
	d.borders[id] = border
	return nil
}

func (d *fakeDisplay) Raise(id platform.WindowID) error {
	d.raised = append(d.raised, id)
	return nil
}

func (d *fakeDisplay) Hide(id platform.WindowID) error {
	d.hidden[id] = true
	return nil
}

func (d *fakeDisplay) Show(id platform.WindowID) error {
	d.hidden[id] = false
	return nil
}

func (d *fakeDisplay) SetInputFocus(id platform.WindowID) error {
	d.focus = id
	return nil
}

func (d *fakeDisplay) Close(id platform.WindowID) error {
	d.closed = append(d.closed, id)
	return nil
}

func (d *fakeDisplay) WarpPointer(id platform.WindowID) error {
	d.warped = append(d.warped, id)
	return nil
}

type recordingSpawner struct {
	calls [][]string
}

func (s *recordingSpawner) Spawn(argv []string) error {
	s.calls = append(s.calls, argv)
	return nil
}

var (
	screenA = platform.Rect{X: 0, Y: 0, Width: 1000, Height: 800}
	screenB = platform.Rect{X: 1000, Y: 0, Width: 1000, Height: 800}
	screenC = platform.Rect{X: 2000, Y: 0, Width: 1000, Height: 800}
)

func screenAt(n int) *int { return &n }

// testConfig returns a bar-less configuration with tall (0.62, no margin or
// border), max and columns layouts and the given groups.
func testConfig(groups ...config.GroupConfig) *config.Config {
	cfg := config.DefaultConfig()
	cfg.Screens = nil
	cfg.Layouts = []config.LayoutConfig{
		{Type: tiling.KindTall, Name: "tall", Ratio: 0.62},
		{Type: tiling.KindMax, Name: "max"},
		{Type: tiling.KindColumns, Name: "columns"},
	}
	cfg.FloatRules = nil
	cfg.Groups = groups
	cfg.DefaultGroup = groups[0].Name
	cfg.Keys = nil
	cfg.Mouse = nil
	cfg.Terminal = "xterm"
	return cfg
}

func newTestEngine(t *testing.T, cfg *config.Config, screens ...platform.Rect) (*Engine, *fakeDisplay) {
	t.Helper()
	d := newFakeDisplay()
	e, err := New(cfg, d, &recordingSpawner{}, logger.Nop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	e.Start(screens)
	return e, d
}

func create(e *Engine, id platform.WindowID, class string, screen int) {
	e.HandleEvent(platform.WindowCreated{
		ID:       id,
		Class:    class,
		Title:    fmt.Sprintf("window %d", id),
		Geometry: platform.Rect{X: 10, Y: 10, Width: 300, Height: 200},
		Screen:   screen,
	})
}

// checkInvariants verifies window conservation and the screen/group
// bijection.
func checkInvariants(t *testing.T, e *Engine) {
	t.Helper()
	total := 0
	for _, g := range e.groups.All() {
		total += g.Len()
		if got := e.registry.CountInGroup(g.Name()); got != g.Len() {
			t.Errorf("group %q: registry has %d windows, group lists %d", g.Name(), got, g.Len())
		}
		for _, id := range g.Windows() {
			w, err := e.registry.Get(id)
			if err != nil {
				t.Errorf("group %q lists unknown window %d", g.Name(), id)
				continue
			}
			if w.Group != g.Name() {
				t.Errorf("window %d: registry group %q, listed in %q", id, w.Group, g.Name())
			}
		}
		if g.Visible() && (g.Screen() < 0 || g.Screen() >= len(e.screens)) {
			t.Errorf("group %q shown on missing screen %d", g.Name(), g.Screen())
		}
	}
	if total != e.registry.Count() {
		t.Errorf("groups hold %d windows, registry has %d", total, e.registry.Count())
	}

	seen := make(map[string]int)
	for i := range e.screens {
		g, ok := e.groups.Displayed(i)
		if !ok {
			t.Errorf("screen %d shows no group", i)
			continue
		}
		if prev, dup := seen[g.Name()]; dup {
			t.Errorf("group %q shown on screens %d and %d", g.Name(), prev, i)
		}
		seen[g.Name()] = i
	}
}

func displayed(t *testing.T, e *Engine, screen int) string {
	t.Helper()
	g, ok := e.groups.Displayed(screen)
	if !ok {
		t.Fatalf("screen %d shows no group", screen)
	}
	return g.Name()
}

func TestNew_RejectsInvalidConfig(t *testing.T) {
	cfg := testConfig(config.GroupConfig{Name: "a"}, config.GroupConfig{Name: "a"})
	_, err := New(cfg, newFakeDisplay(), nil, logger.Nop())
	var verr *config.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("error = %v, want *config.ValidationError", err)
	}
	if verr.Path != "groups.1.name" {
		t.Errorf("path = %q, want groups.1.name", verr.Path)
	}
}

func TestStart_HonoursAffinityThenFillsScreens(t *testing.T) {
	cfg := testConfig(
		config.GroupConfig{Name: "1", ScreenAffinity: screenAt(1)},
		config.GroupConfig{Name: "2", ScreenAffinity: screenAt(0)},
		config.GroupConfig{Name: "3", ScreenAffinity: screenAt(2)},
		config.GroupConfig{Name: "4"},
	)
	e, _ := newTestEngine(t, cfg, screenA, screenB)

	if got := displayed(t, e, 0); got != "2" {
		t.Errorf("screen 0 shows %q, want 2", got)
	}
	if got := displayed(t, e, 1); got != "1" {
		t.Errorf("screen 1 shows %q, want 1", got)
	}
	g, _ := e.groups.Get("3")
	if g.Visible() {
		t.Errorf("group 3 affine to a missing screen is shown on %d", g.Screen())
	}
	checkInvariants(t, e)
}

func TestTallGeometryThroughEngine(t *testing.T) {
	e, d := newTestEngine(t, testConfig(config.GroupConfig{Name: "a"}), screenA)

	for id := platform.WindowID(1); id <= 3; id++ {
		create(e, id, "xterm", 0)
	}

	// New windows enter at the top, so the last one is the main window.
	want := map[platform.WindowID]platform.Rect{
		3: {X: 0, Y: 0, Width: 620, Height: 800},
		2: {X: 620, Y: 0, Width: 380, Height: 400},
		1: {X: 620, Y: 400, Width: 380, Height: 400},
	}
	if diff := cmp.Diff(want, d.geometry); diff != "" {
		t.Fatalf("geometry mismatch (-want +got):\n%s", diff)
	}
	if d.focus != 3 {
		t.Errorf("focus = %d, want 3", d.focus)
	}

	e.relayoutAll()
	if diff := cmp.Diff(want, d.geometry); diff != "" {
		t.Errorf("second arrange changed geometry (-want +got):\n%s", diff)
	}
	checkInvariants(t, e)
}

func TestBorderReservedOnceAtDisplay(t *testing.T) {
	cfg := testConfig(config.GroupConfig{Name: "a"})
	cfg.Layouts[0].BorderWidth = 5
	cfg.Layouts[0].Margin = 3
	e, d := newTestEngine(t, cfg, screenA)
	create(e, 1, "xterm", 0)
	create(e, 2, "xterm", 0)

	// Each window plus its border fills its slot minus the margin.
	want := map[platform.WindowID]platform.Rect{
		2: {X: 3, Y: 3, Width: 614, Height: 794},
		1: {X: 623, Y: 3, Width: 374, Height: 794},
	}
	got := make(map[platform.WindowID]platform.Rect)
	for id, r := range d.geometry {
		b := d.borders[id]
		if b != 5 {
			t.Errorf("window %d border = %d, want 5", id, b)
		}
		got[id] = platform.Rect{X: r.X, Y: r.Y, Width: r.Width + 2*b, Height: r.Height + 2*b}
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("outer geometry (-want +got):\n%s", diff)
	}
}

func TestClickFocusesWindow(t *testing.T) {
	tests := []struct {
		name       string
		bringFront bool
		wantRaised []platform.WindowID
	}{
		{name: "bring front", bringFront: true, wantRaised: []platform.WindowID{1}},
		{name: "focus only"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(config.GroupConfig{Name: "a"})
			cfg.BringFrontClick = tt.bringFront
			e, d := newTestEngine(t, cfg, screenA)
			create(e, 1, "xterm", 0)
			create(e, 2, "xterm", 0)
			d.raised = nil

			e.HandleEvent(platform.ButtonPress{ID: 1})

			if d.focus != 1 {
				t.Errorf("focus = %d, want 1", d.focus)
			}
			if diff := cmp.Diff(tt.wantRaised, d.raised); diff != "" {
				t.Errorf("raised (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMinimizeRequest(t *testing.T) {
	tests := []struct {
		name          string
		autoMinimize  bool
		wantMinimized bool
		wantFocus     platform.WindowID
	}{
		{name: "honoured", autoMinimize: true, wantMinimized: true, wantFocus: 1},
		{name: "refused", wantFocus: 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(config.GroupConfig{Name: "a"})
			cfg.AutoMinimize = tt.autoMinimize
			e, d := newTestEngine(t, cfg, screenA)
			create(e, 1, "xterm", 0)
			create(e, 2, "xterm", 0)

			e.HandleEvent(platform.MinimizeRequest{ID: 2})

			w, err := e.registry.Get(2)
			if err != nil {
				t.Fatalf("Get: %v", err)
			}
			if w.Minimized != tt.wantMinimized {
				t.Errorf("minimized = %v, want %v", w.Minimized, tt.wantMinimized)
			}
			if d.hidden[2] != tt.wantMinimized {
				t.Errorf("hidden = %v, want %v", d.hidden[2], tt.wantMinimized)
			}
			if d.focus != tt.wantFocus {
				t.Errorf("focus = %d, want %d", d.focus, tt.wantFocus)
			}
			checkInvariants(t, e)
		})
	}
}

func TestMatchRuleAssignsHiddenGroup(t *testing.T) {
	cfg := testConfig(
		config.GroupConfig{Name: "1", Matches: []config.MatchConfig{{Class: "VM-Console"}}},
		config.GroupConfig{Name: "2", ScreenAffinity: screenAt(0)},
	)
	e, d := newTestEngine(t, cfg, screenA)
	if got := displayed(t, e, 0); got != "2" {
		t.Fatalf("screen 0 shows %q, want 2", got)
	}

	create(e, 10, "xterm", 0)
	create(e, 11, "VM-Console", 0)

	w, err := e.registry.Get(11)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if w.Group != "1" {
		t.Errorf("window group = %q, want 1", w.Group)
	}
	members, _ := e.groups.WindowsOf("1")
	if diff := cmp.Diff([]platform.WindowID{11}, members); diff != "" {
		t.Errorf("group 1 members (-want +got):\n%s", diff)
	}
	p, ok := e.Arrangement("1")
	if !ok {
		t.Fatal("group 1 was not arranged")
	}
	if got, want := p.Rects[11], screenA; got != want {
		t.Errorf("group 1 placement = %+v, want %+v", got, want)
	}
	if !d.hidden[11] {
		t.Error("window in hidden group is shown")
	}
	if d.focus != 10 {
		t.Errorf("focus = %d, want 10 (unchanged)", d.focus)
	}
	checkInvariants(t, e)
}

func TestNewWindowJoinsGroupOnRequestingScreen(t *testing.T) {
	cfg := testConfig(
		config.GroupConfig{Name: "a", ScreenAffinity: screenAt(0)},
		config.GroupConfig{Name: "b", ScreenAffinity: screenAt(1)},
	)
	e, _ := newTestEngine(t, cfg, screenA, screenB)

	create(e, 1, "xterm", 1)
	create(e, 2, "xterm", -1)

	for id, want := range map[platform.WindowID]string{1: "b", 2: "a"} {
		w, err := e.registry.Get(id)
		if err != nil {
			t.Fatalf("Get(%d): %v", id, err)
		}
		if w.Group != want {
			t.Errorf("window %d group = %q, want %q", id, w.Group, want)
		}
	}
}

func TestToGroupSwapsScreens(t *testing.T) {
	cfg := testConfig(
		config.GroupConfig{Name: "2", ScreenAffinity: screenAt(0)},
		config.GroupConfig{Name: "3", ScreenAffinity: screenAt(1)},
		config.GroupConfig{Name: "4"},
	)
	e, d := newTestEngine(t, cfg, screenA, screenB)
	create(e, 20, "xterm", 0)
	create(e, 30, "xterm", 1)

	if err := e.ToGroup("3"); err != nil {
		t.Fatalf("ToGroup(3): %v", err)
	}
	if got := displayed(t, e, 0); got != "3" {
		t.Errorf("screen 0 shows %q, want 3", got)
	}
	if got := displayed(t, e, 1); got != "2" {
		t.Errorf("screen 1 shows %q, want 2", got)
	}
	if got := d.geometry[30]; got != screenA {
		t.Errorf("window 30 at %+v, want %+v", got, screenA)
	}
	if got := d.geometry[20]; got != screenB {
		t.Errorf("window 20 at %+v, want %+v", got, screenB)
	}
	if d.focus != 30 {
		t.Errorf("focus = %d, want 30", d.focus)
	}
	checkInvariants(t, e)

	if err := e.ToGroup("4"); err != nil {
		t.Fatalf("ToGroup(4): %v", err)
	}
	g3, _ := e.groups.Get("3")
	if g3.Visible() {
		t.Errorf("group 3 still shown on screen %d", g3.Screen())
	}
	if got := displayed(t, e, 1); got != "2" {
		t.Errorf("screen 1 shows %q, want 2", got)
	}
	if !d.hidden[30] {
		t.Error("window 30 of hidden group 3 is shown")
	}
	if g3.Len() != 1 {
		t.Errorf("hidden group 3 lost its windows: %d", g3.Len())
	}
	checkInvariants(t, e)
}

func TestToGroup_UnknownGroupIsNotFound(t *testing.T) {
	e, _ := newTestEngine(t, testConfig(config.GroupConfig{Name: "a"}), screenA)
	err := e.ToGroup("nope")
	if !IsNotFound(err) {
		t.Fatalf("error = %v, want not found", err)
	}
	if got := displayed(t, e, 0); got != "a" {
		t.Errorf("screen 0 shows %q, want a", got)
	}
}

func TestReconfigureScreens_OrphanMovesToLowestScreen(t *testing.T) {
	cfg := testConfig(
		config.GroupConfig{Name: "4", ScreenAffinity: screenAt(0)},
		config.GroupConfig{Name: "5", ScreenAffinity: screenAt(1)},
		config.GroupConfig{Name: "6", ScreenAffinity: screenAt(2)},
		config.GroupConfig{Name: "7"},
	)
	e, d := newTestEngine(t, cfg, screenA, screenB, screenC)
	create(e, 50, "xterm", 1)
	create(e, 60, "xterm", 2)
	if err := e.SwitchScreen(1); err != nil {
		t.Fatalf("SwitchScreen: %v", err)
	}

	e.HandleEvent(platform.ScreenListChanged{Screens: []platform.Rect{screenA, screenC}})

	if got := displayed(t, e, 0); got != "5" {
		t.Errorf("screen 0 shows %q, want 5", got)
	}
	if got := displayed(t, e, 1); got != "6" {
		t.Errorf("screen 1 shows %q, want 6", got)
	}
	if g, _ := e.groups.Get("4"); g.Visible() {
		t.Errorf("group 4 still shown on screen %d", g.Screen())
	}
	if got := d.geometry[50]; got != screenA {
		t.Errorf("window 50 at %+v, want %+v", got, screenA)
	}
	if got := d.geometry[60]; got != screenC {
		t.Errorf("window 60 at %+v, want %+v", got, screenC)
	}
	if e.focusedScreen != 0 {
		t.Errorf("focused screen = %d, want 0", e.focusedScreen)
	}
	if d.focus != 50 {
		t.Errorf("focus = %d, want 50", d.focus)
	}
	checkInvariants(t, e)
}

func TestReconfigureScreens_NewScreenGetsHiddenGroup(t *testing.T) {
	cfg := testConfig(
		config.GroupConfig{Name: "a", ScreenAffinity: screenAt(0)},
		config.GroupConfig{Name: "b"},
		config.GroupConfig{Name: "c"},
	)
	e, _ := newTestEngine(t, cfg, screenA)

	e.ReconfigureScreens([]platform.Rect{screenA, screenB})

	if got := displayed(t, e, 0); got != "a" {
		t.Errorf("screen 0 shows %q, want a", got)
	}
	if got := displayed(t, e, 1); got != "b" {
		t.Errorf("screen 1 shows %q, want b", got)
	}
	checkInvariants(t, e)
}

func TestScreenListChangedIgnoredWhenDisabled(t *testing.T) {
	cfg := testConfig(config.GroupConfig{Name: "a"}, config.GroupConfig{Name: "b"})
	cfg.ReconfigureScreens = false
	e, _ := newTestEngine(t, cfg, screenA, screenB)

	e.HandleEvent(platform.ScreenListChanged{Screens: []platform.Rect{screenA}})

	if len(e.screens) != 2 {
		t.Errorf("screens = %d, want 2", len(e.screens))
	}
}

func TestGeometryConflictFallsBackToMaxForOnePass(t *testing.T) {
	cfg := testConfig(config.GroupConfig{Name: "a"})
	cfg.Layouts[0].Margin = 500
	e, d := newTestEngine(t, cfg, screenA)

	create(e, 1, "xterm", 0)
	create(e, 2, "xterm", 0)

	if got := d.geometry[2]; got != screenA {
		t.Errorf("focused window at %+v, want full screen %+v", got, screenA)
	}
	if !d.hidden[1] {
		t.Error("unfocused window is shown under the max fallback")
	}
	g, _ := e.groups.Get("a")
	if got := g.Layout().Name(); got != "tall" {
		t.Errorf("layout = %q, want tall to be kept", got)
	}
	checkInvariants(t, e)
}

func TestUnknownWindowEventsAreNoops(t *testing.T) {
	e, d := newTestEngine(t, testConfig(config.GroupConfig{Name: "a"}), screenA)
	create(e, 1, "xterm", 0)
	before := make(map[platform.WindowID]platform.Rect, len(d.geometry))
	for id, r := range d.geometry {
		before[id] = r
	}

	e.HandleEvent(platform.WindowDestroyed{ID: 99})
	e.HandleEvent(platform.FocusIn{ID: 99})
	e.HandleEvent(platform.TitleChanged{ID: 99, Title: "x"})
	e.HandleEvent(platform.ConfigureRequest{ID: 99, Geometry: screenA})
	e.HandleEvent(platform.ActivationRequest{ID: 99})

	if e.registry.Count() != 1 {
		t.Errorf("registry count = %d, want 1", e.registry.Count())
	}
	if diff := cmp.Diff(before, d.geometry); diff != "" {
		t.Errorf("geometry changed on unknown-window events (-before +after):\n%s", diff)
	}
	if d.focus != 1 {
		t.Errorf("focus = %d, want 1", d.focus)
	}
	checkInvariants(t, e)
}

func TestWindowDestroyedRefocusesAndRelayouts(t *testing.T) {
	e, d := newTestEngine(t, testConfig(config.GroupConfig{Name: "a"}), screenA)
	create(e, 1, "xterm", 0)
	create(e, 2, "xterm", 0)

	e.HandleEvent(platform.WindowDestroyed{ID: 2})

	if d.focus != 1 {
		t.Errorf("focus = %d, want 1", d.focus)
	}
	if got := d.geometry[1]; got != screenA {
		t.Errorf("remaining window at %+v, want %+v", got, screenA)
	}
	checkInvariants(t, e)
}

func TestWindowConservationAcrossOperations(t *testing.T) {
	cfg := testConfig(
		config.GroupConfig{Name: "a", ScreenAffinity: screenAt(0)},
		config.GroupConfig{Name: "b", ScreenAffinity: screenAt(1)},
		config.GroupConfig{Name: "c", Matches: []config.MatchConfig{{Class: "chat"}}},
	)
	e, _ := newTestEngine(t, cfg, screenA, screenB)

	steps := []func(){
		func() { create(e, 1, "xterm", 0) },
		func() { create(e, 2, "xterm", 1) },
		func() { create(e, 3, "chat", 0) },
		func() { create(e, 4, "xterm", 0) },
		func() { _ = e.windowToGroup("b") },
		func() { _ = e.toggleFlag(window.Floating) },
		func() { _ = e.ToGroup("c") },
		func() { _ = e.windowToGroup("a") },
		func() { _ = e.CycleScreen(1) },
		func() { _ = e.ToGroup("a") },
		func() { e.HandleEvent(platform.WindowDestroyed{ID: 1}) },
		func() { e.ReconfigureScreens([]platform.Rect{screenB}) },
		func() { create(e, 5, "xterm", 0) },
		func() { e.HandleEvent(platform.WindowDestroyed{ID: 3}) },
	}
	for i, step := range steps {
		step()
		t.Run(fmt.Sprintf("step%d", i), func(t *testing.T) { checkInvariants(t, e) })
	}
}
