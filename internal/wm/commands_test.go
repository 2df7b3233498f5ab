package wm

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/1broseidon/groupwm/internal/command"
	"github.com/1broseidon/groupwm/internal/config"
	"github.com/1broseidon/groupwm/internal/group"
	"github.com/1broseidon/groupwm/internal/logger"
	"github.com/1broseidon/groupwm/internal/platform"
	"github.com/1broseidon/groupwm/internal/tiling"
	"github.com/1broseidon/groupwm/internal/window"
)

func dispatch(t *testing.T, e *Engine, name string, args ...string) {
	t.Helper()
	if err := e.Dispatch(command.Command{Name: name, Args: args}); err != nil {
		t.Fatalf("Dispatch(%s %v): %v", name, args, err)
	}
}

// threeTiled returns an engine on screenA with windows 1, 2 and 3 in group
// "a". Their order is [3 2 1] and 3 is focused.
func threeTiled(t *testing.T) (*Engine, *fakeDisplay) {
	t.Helper()
	e, d := newTestEngine(t, testConfig(config.GroupConfig{Name: "a"}), screenA)
	for id := platform.WindowID(1); id <= 3; id++ {
		create(e, id, "xterm", 0)
	}
	return e, d
}

func TestDispatch_FocusNextWindowWraps(t *testing.T) {
	e, d := threeTiled(t)

	var got []platform.WindowID
	for i := 0; i < 3; i++ {
		dispatch(t, e, command.GroupNextWindow)
		got = append(got, d.focus)
	}
	dispatch(t, e, command.GroupPrevWindow)
	got = append(got, d.focus)

	want := []platform.WindowID{2, 1, 3, 1}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("focus sequence (-want +got):\n%s", diff)
	}
}

func TestDispatch_FocusCycleSkipsMinimized(t *testing.T) {
	e, d := threeTiled(t)
	g, _ := e.groups.Get("a")
	if err := e.focusWindow(g, 2); err != nil {
		t.Fatalf("focusWindow: %v", err)
	}
	dispatch(t, e, command.WindowToggleMinimize)

	var got []platform.WindowID
	for i := 0; i < 2; i++ {
		dispatch(t, e, command.GroupNextWindow)
		got = append(got, d.focus)
	}
	dispatch(t, e, command.GroupPrevWindow)
	got = append(got, d.focus)

	want := []platform.WindowID{1, 3, 1}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("focus sequence (-want +got):\n%s", diff)
	}
}

func TestDispatch_FocusDirectionFollowsTallGeometry(t *testing.T) {
	e, d := threeTiled(t)

	steps := []struct {
		cmd  string
		want platform.WindowID
	}{
		{command.LayoutRight, 2},
		{command.LayoutDown, 1},
		{command.LayoutUp, 2},
		{command.LayoutLeft, 3},
		{command.LayoutLeft, 3},
	}
	for _, s := range steps {
		dispatch(t, e, s.cmd)
		if d.focus != s.want {
			t.Fatalf("after %s focus = %d, want %d", s.cmd, d.focus, s.want)
		}
	}
}

func TestDispatch_ShuffleLeftPromotesToMain(t *testing.T) {
	e, d := threeTiled(t)
	g, _ := e.groups.Get("a")
	if err := e.focusWindow(g, 1); err != nil {
		t.Fatalf("focusWindow: %v", err)
	}

	dispatch(t, e, command.LayoutShuffleLeft)

	if diff := cmp.Diff([]platform.WindowID{1, 2, 3}, g.Windows()); diff != "" {
		t.Errorf("order (-want +got):\n%s", diff)
	}
	if got, want := d.geometry[1], (platform.Rect{Width: 620, Height: 800}); got != want {
		t.Errorf("window 1 at %+v, want main %+v", got, want)
	}
}

func TestDispatch_NextLayoutMaxShowsFocusedOnly(t *testing.T) {
	e, d := threeTiled(t)

	dispatch(t, e, command.NextLayout)

	g, _ := e.groups.Get("a")
	if got := g.Layout().Name(); got != "max" {
		t.Fatalf("layout = %q, want max", got)
	}
	if got := d.geometry[3]; got != screenA {
		t.Errorf("focused window at %+v, want %+v", got, screenA)
	}
	if !d.hidden[1] || !d.hidden[2] {
		t.Errorf("unfocused windows shown: hidden=%v", d.hidden)
	}

	dispatch(t, e, command.GroupNextWindow)
	if d.hidden[2] || !d.hidden[3] {
		t.Errorf("after next_window hidden=%v, want only 1 and 3 hidden", d.hidden)
	}

	dispatch(t, e, command.PrevLayout)
	if got := g.Layout().Name(); got != "tall" {
		t.Errorf("layout = %q, want tall", got)
	}
	dispatch(t, e, command.GroupSetLayout, "columns")
	if got := g.Layout().Name(); got != "columns" {
		t.Errorf("layout = %q, want columns", got)
	}
}

func TestDispatch_GrowAndShrinkMain(t *testing.T) {
	e, d := threeTiled(t)

	dispatch(t, e, command.LayoutGrowMain)
	if got, want := d.geometry[3].Width, 670; got != want {
		t.Errorf("main width = %d, want %d", got, want)
	}
	for i := 0; i < 20; i++ {
		dispatch(t, e, command.LayoutShrinkMain)
	}
	if got, want := d.geometry[3].Width, 100; got != want {
		t.Errorf("main width after clamping = %d, want %d", got, want)
	}
	dispatch(t, e, command.LayoutReset)
	if got, want := d.geometry[3].Width, 620; got != want {
		t.Errorf("main width after reset = %d, want %d", got, want)
	}
}

func TestPress_WhenLayoutFiltersActions(t *testing.T) {
	cfg := testConfig(config.GroupConfig{Name: "a"})
	cfg.Keys = []config.KeyConfig{{
		Mods: []string{"control", "mod4"},
		Key:  "h",
		Actions: []config.ActionConfig{
			{Command: command.LayoutGrowLeft},
			{Command: command.LayoutShrinkMain, WhenLayout: []string{"tall"}},
		},
	}}
	e, _ := newTestEngine(t, cfg, screenA)
	create(e, 1, "xterm", 0)
	create(e, 2, "xterm", 0)
	g, _ := e.groups.Get("a")
	tall := g.Layouts()[0].(*tiling.Tall)

	if err := e.Press("control-mod4-h"); err != nil {
		t.Fatalf("Press: %v", err)
	}
	if got := tall.Ratio(); math.Abs(got-0.57) > 1e-9 {
		t.Fatalf("ratio = %v, want 0.57", got)
	}

	dispatch(t, e, command.GroupSetLayout, "columns")
	if err := e.Press("control-mod4-h"); err != nil {
		t.Fatalf("Press: %v", err)
	}
	if got := tall.Ratio(); math.Abs(got-0.57) > 1e-9 {
		t.Errorf("ratio changed under columns: %v", got)
	}

	if err := e.Press("mod4-q"); err == nil {
		t.Error("Press of an unbound trigger succeeded")
	}
}

func TestNew_DuplicateBindingLastWins(t *testing.T) {
	cfg := testConfig(config.GroupConfig{Name: "a"})
	cfg.Keys = []config.KeyConfig{
		{Mods: []string{"mod4"}, Key: "n", Command: command.NextLayout},
		{Mods: []string{"super"}, Key: "n", Command: command.PrevLayout},
	}
	e, _ := newTestEngine(t, cfg, screenA)

	if got := len(e.Bindings()); got != 1 {
		t.Fatalf("bindings = %d, want 1", got)
	}
	if err := e.Press("mod4-n"); err != nil {
		t.Fatalf("Press: %v", err)
	}
	g, _ := e.groups.Get("a")
	if got := g.Layout().Name(); got != "columns" {
		t.Errorf("layout = %q, want columns (prev_layout)", got)
	}
}

func TestDispatch_ToggleFloating(t *testing.T) {
	e, d := newTestEngine(t, testConfig(config.GroupConfig{Name: "a"}), screenA)
	create(e, 1, "xterm", 0)
	create(e, 2, "xterm", 0)

	dispatch(t, e, command.WindowToggleFloating)

	w, _ := e.registry.Get(2)
	if !w.Floating {
		t.Fatal("window 2 is not floating")
	}
	if got := d.geometry[1]; got != screenA {
		t.Errorf("remaining tile at %+v, want %+v", got, screenA)
	}
	if got, want := d.borders[2], e.cfg.FloatingBorderWidth; got != want {
		t.Errorf("floating border = %d, want %d", got, want)
	}

	float := platform.Rect{X: 100, Y: 100, Width: 300, Height: 200}
	e.HandleEvent(platform.ConfigureRequest{ID: 2, Geometry: float})
	if got := d.geometry[2]; got != float {
		t.Errorf("floating window at %+v, want %+v", got, float)
	}
	e.HandleEvent(platform.ConfigureRequest{ID: 1, Geometry: float})
	if got := d.geometry[1]; got != screenA {
		t.Errorf("tiled window moved by its own request to %+v", got)
	}

	dispatch(t, e, command.WindowToggleFloating)
	if got, want := d.geometry[2], (platform.Rect{Width: 620, Height: 800}); got != want {
		t.Errorf("re-tiled window at %+v, want %+v", got, want)
	}
	checkInvariants(t, e)
}

func TestDispatch_FloatingFocusDoesNotMoveTiles(t *testing.T) {
	e, d := threeTiled(t)
	dispatch(t, e, command.WindowToggleFloating)
	if d.focus != 3 {
		t.Fatalf("focus = %d, want floating window 3", d.focus)
	}
	g, _ := e.groups.Get("a")
	tall := g.Layout().(*tiling.Tall)

	dispatch(t, e, command.LayoutShuffleDown)
	if diff := cmp.Diff([]platform.WindowID{3, 2, 1}, g.Windows()); diff != "" {
		t.Errorf("order (-want +got):\n%s", diff)
	}
	dispatch(t, e, command.LayoutGrow)
	if got := tall.Ratio(); math.Abs(got-0.62) > 1e-9 {
		t.Errorf("ratio = %v, want 0.62", got)
	}
	dispatch(t, e, command.LayoutDown)
	if d.focus != 3 {
		t.Errorf("focus moved to %d", d.focus)
	}
	checkInvariants(t, e)
}

func TestDispatch_ToggleMinimizeMovesFocus(t *testing.T) {
	e, d := newTestEngine(t, testConfig(config.GroupConfig{Name: "a"}), screenA)
	create(e, 1, "xterm", 0)
	create(e, 2, "xterm", 0)

	dispatch(t, e, command.WindowToggleMinimize)

	if !d.hidden[2] {
		t.Error("minimized window is shown")
	}
	if d.focus != 1 {
		t.Errorf("focus = %d, want 1", d.focus)
	}
	if got := d.geometry[1]; got != screenA {
		t.Errorf("remaining tile at %+v, want %+v", got, screenA)
	}
	checkInvariants(t, e)
}

func TestDispatch_CursorWarpFollowsFocusCommands(t *testing.T) {
	tests := []struct {
		name string
		warp bool
		want []platform.WindowID
	}{
		{name: "enabled", warp: true, want: []platform.WindowID{2}},
		{name: "disabled"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(config.GroupConfig{Name: "a"})
			cfg.CursorWarp = tt.warp
			e, d := newTestEngine(t, cfg, screenA)
			for id := platform.WindowID(1); id <= 3; id++ {
				create(e, id, "xterm", 0)
			}

			dispatch(t, e, command.GroupNextWindow)
			// Pointer-driven focus never warps.
			e.HandleEvent(platform.FocusIn{ID: 1})
			// Neither does a command that leaves focus alone.
			dispatch(t, e, command.LayoutGrow)

			if diff := cmp.Diff(tt.want, d.warped); diff != "" {
				t.Errorf("warps (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDispatch_ToggleFullscreenCoversBar(t *testing.T) {
	cfg := testConfig(config.GroupConfig{Name: "a"})
	cfg.Screens = []config.ScreenConfig{{Bar: config.BarConfig{Position: "top", Size: 24}}}
	e, d := newTestEngine(t, cfg, screenA)
	create(e, 1, "xterm", 0)
	create(e, 2, "xterm", 0)

	dispatch(t, e, command.WindowToggleFullscreen)

	if got := d.geometry[2]; got != screenA {
		t.Errorf("fullscreen window at %+v, want %+v", got, screenA)
	}
	if d.borders[2] != 0 {
		t.Errorf("fullscreen border = %d, want 0", d.borders[2])
	}
	if got, want := d.geometry[1], (platform.Rect{Y: 24, Width: 1000, Height: 776}); got != want {
		t.Errorf("tile at %+v, want %+v below the bar", got, want)
	}
	if n := len(d.raised); n == 0 || d.raised[n-1] != 2 {
		t.Errorf("raised = %v, want 2 last", d.raised)
	}
}

func TestDispatch_WindowToGroup(t *testing.T) {
	cfg := testConfig(
		config.GroupConfig{Name: "a", ScreenAffinity: screenAt(0)},
		config.GroupConfig{Name: "b"},
	)
	e, d := newTestEngine(t, cfg, screenA)
	create(e, 1, "xterm", 0)
	create(e, 2, "xterm", 0)

	dispatch(t, e, command.WindowToGroup, "b")

	members, _ := e.groups.WindowsOf("b")
	if diff := cmp.Diff([]platform.WindowID{2}, members); diff != "" {
		t.Errorf("group b (-want +got):\n%s", diff)
	}
	if !d.hidden[2] {
		t.Error("moved window is still shown")
	}
	if d.focus != 1 {
		t.Errorf("focus = %d, want 1", d.focus)
	}
	if got := displayed(t, e, 0); got != "a" {
		t.Errorf("screen 0 shows %q, want a (no follow)", got)
	}
	checkInvariants(t, e)
}

func TestDispatch_NotFoundIsReportedAndHarmless(t *testing.T) {
	cfg := testConfig(config.GroupConfig{Name: "a"}, config.GroupConfig{Name: "b"})
	e, _ := newTestEngine(t, cfg, screenA, screenB)
	create(e, 1, "xterm", 0)

	err := e.Dispatch(command.Command{Name: command.WindowToGroup, Args: []string{"zzz"}})
	if !errors.Is(err, group.ErrNotFound) {
		t.Errorf("togroup zzz: error = %v, want group.ErrNotFound", err)
	}
	err = e.Dispatch(command.Command{Name: command.ToScreen, Args: []string{"5"}})
	if !errors.Is(err, ErrScreenNotFound) {
		t.Errorf("to_screen 5: error = %v, want ErrScreenNotFound", err)
	}
	err = e.Dispatch(command.Command{Name: "window.explode"})
	if err == nil || IsNotFound(err) {
		t.Errorf("unknown command: error = %v, want a plain error", err)
	}

	w, _ := e.registry.Get(1)
	if w.Group != "a" {
		t.Errorf("window moved to %q", w.Group)
	}
	checkInvariants(t, e)
}

func TestDispatch_ScreenFocus(t *testing.T) {
	cfg := testConfig(
		config.GroupConfig{Name: "a", ScreenAffinity: screenAt(0)},
		config.GroupConfig{Name: "b", ScreenAffinity: screenAt(1)},
	)
	e, d := newTestEngine(t, cfg, screenA, screenB)
	create(e, 1, "xterm", 0)
	create(e, 2, "xterm", 1)

	dispatch(t, e, command.ToScreen, "1")
	if e.focusedScreen != 1 || d.focus != 2 {
		t.Errorf("after to_screen 1: screen %d focus %d, want 1 and 2", e.focusedScreen, d.focus)
	}
	dispatch(t, e, command.NextScreen)
	if e.focusedScreen != 0 || d.focus != 1 {
		t.Errorf("after next_screen: screen %d focus %d, want 0 and 1", e.focusedScreen, d.focus)
	}
	dispatch(t, e, command.PrevScreen)
	if e.focusedScreen != 1 {
		t.Errorf("after prev_screen: screen %d, want 1", e.focusedScreen)
	}
}

func TestDispatch_KillAndBringToFront(t *testing.T) {
	e, d := threeTiled(t)

	dispatch(t, e, command.WindowBringToFront)
	dispatch(t, e, command.WindowKill)

	if diff := cmp.Diff([]platform.WindowID{3}, d.closed); diff != "" {
		t.Errorf("closed (-want +got):\n%s", diff)
	}
	if n := len(d.raised); n == 0 || d.raised[n-1] != 3 {
		t.Errorf("raised = %v, want 3 last", d.raised)
	}
	if e.registry.Count() != 3 {
		t.Errorf("kill removed the window before the server destroyed it")
	}
}

func TestDispatch_SetFloatingPosition(t *testing.T) {
	e, d := newTestEngine(t, testConfig(config.GroupConfig{Name: "a"}), screenA)
	create(e, 1, "xterm", 0)

	dispatch(t, e, command.WindowSetPosition, "50", "60")

	w, _ := e.registry.Get(1)
	if !w.Flag(window.Floating) {
		t.Fatal("window is not floating")
	}
	if got, want := d.geometry[1], (platform.Rect{X: 50, Y: 60, Width: 1000, Height: 800}); got != want {
		t.Errorf("window at %+v, want %+v", got, want)
	}
	dispatch(t, e, command.WindowSetSize, "400", "300")
	if got, want := d.geometry[1], (platform.Rect{X: 50, Y: 60, Width: 400, Height: 300}); got != want {
		t.Errorf("window at %+v, want %+v", got, want)
	}
	if err := e.Dispatch(command.Command{Name: command.WindowSetSize, Args: []string{"0", "10"}}); err == nil {
		t.Error("zero size accepted")
	}
}

func TestDispatch_SpawnExpandsPlaceholders(t *testing.T) {
	cfg := testConfig(config.GroupConfig{Name: "a"})
	sp := &recordingSpawner{}
	e, err := New(cfg, newFakeDisplay(), sp, logger.Nop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	e.Start([]platform.Rect{screenA})

	dispatch(t, e, command.Spawn, config.TerminalPlaceholder)
	dispatch(t, e, command.Spawn, config.LauncherPlaceholder)
	dispatch(t, e, command.Spawn, "rofi -show run")
	dispatch(t, e, command.Spawn, "firefox", "--private-window")

	want := [][]string{
		{"xterm"},
		{"dmenu_run"},
		{"rofi", "-show", "run"},
		{"firefox", "--private-window"},
	}
	if diff := cmp.Diff(want, sp.calls); diff != "" {
		t.Errorf("spawned (-want +got):\n%s", diff)
	}
}

func TestActivation_Policies(t *testing.T) {
	groups := []config.GroupConfig{
		{Name: "a", ScreenAffinity: screenAt(0)},
		{Name: "b", Matches: []config.MatchConfig{{Class: "chat"}}},
	}
	tests := []struct {
		policy     string
		wantUrgent bool
		wantShown  string
		wantFocus  platform.WindowID
	}{
		{config.ActivationSmart, true, "a", 1},
		{config.ActivationUrgent, true, "a", 1},
		{config.ActivationNever, false, "a", 1},
		{config.ActivationFocus, false, "b", 2},
	}
	for _, tt := range tests {
		t.Run(tt.policy, func(t *testing.T) {
			cfg := testConfig(groups...)
			cfg.FocusOnWindowActivation = tt.policy
			e, d := newTestEngine(t, cfg, screenA)
			create(e, 1, "xterm", 0)
			create(e, 2, "chat", 0)

			e.HandleEvent(platform.ActivationRequest{ID: 2})
			e.publish()

			w, _ := e.registry.Get(2)
			if w.Urgent != tt.wantUrgent {
				t.Errorf("urgent = %v, want %v", w.Urgent, tt.wantUrgent)
			}
			if got := displayed(t, e, 0); got != tt.wantShown {
				t.Errorf("screen 0 shows %q, want %q", got, tt.wantShown)
			}
			if d.focus != tt.wantFocus {
				t.Errorf("focus = %d, want %d", d.focus, tt.wantFocus)
			}
			var urgent bool
			for _, g := range e.Snapshot().Groups {
				if g.Name == "b" {
					urgent = g.Urgent
				}
			}
			if urgent != tt.wantUrgent {
				t.Errorf("snapshot urgent = %v, want %v", urgent, tt.wantUrgent)
			}
		})
	}
}

func TestActivation_SmartFocusesVisibleWindow(t *testing.T) {
	e, d := threeTiled(t)

	e.HandleEvent(platform.ActivationRequest{ID: 1})

	if d.focus != 1 {
		t.Errorf("focus = %d, want 1", d.focus)
	}
}
