package wm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/1broseidon/groupwm/internal/command"
	"github.com/1broseidon/groupwm/internal/config"
	"github.com/1broseidon/groupwm/internal/platform"
)

func startReactor(t *testing.T, e *Engine) (context.Context, <-chan error) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	errc := make(chan error, 1)
	go func() { errc <- e.Run(ctx) }()
	return ctx, errc
}

func waitRun(t *testing.T, errc <-chan error) error {
	t.Helper()
	select {
	case err := <-errc:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("reactor did not stop")
		return nil
	}
}

func TestRun_AppliesItemsInOrderAndPublishes(t *testing.T) {
	cfg := testConfig(
		config.GroupConfig{Name: "a", ScreenAffinity: screenAt(0)},
		config.GroupConfig{Name: "b"},
	)
	e, d := newTestEngine(t, cfg, screenA)
	ctx, errc := startReactor(t, e)

	e.Post(platform.WindowCreated{ID: 1, Class: "xterm", Title: "one", Screen: 0})
	e.Post(platform.WindowCreated{ID: 2, Class: "xterm", Title: "two", Screen: 0})
	e.Post(platform.TitleChanged{ID: 2, Title: "vim"})
	if err := e.Do(ctx, command.Command{Name: command.NextLayout}); err != nil {
		t.Fatalf("Do(next_layout): %v", err)
	}

	s := e.Snapshot()
	want := &Snapshot{
		Group:         "a",
		Layout:        "max",
		FocusedScreen: 0,
		FocusedTitle:  "vim",
		FocusedWindow: 2,
		Groups: []GroupStatus{
			{Name: "a", Layout: "max", Screen: 0, Windows: 2},
			{Name: "b", Layout: "tall", Screen: -1, Windows: 0},
		},
		Screens: []ScreenStatus{{Index: 0, Bounds: screenA, Group: "a"}},
		Windows: []WindowStatus{
			{ID: 1, Class: "xterm", Title: "one", Group: "a"},
			{ID: 2, Class: "xterm", Title: "vim", Group: "a"},
		},
	}
	if diff := cmp.Diff(want, s); diff != "" {
		t.Errorf("snapshot (-want +got):\n%s", diff)
	}
	if n, ok := s.WindowCount("a"); !ok || n != 2 {
		t.Errorf("WindowCount(a) = %d, %v", n, ok)
	}

	if err := e.Do(ctx, command.Command{Name: command.Shutdown}); err != nil {
		t.Fatalf("Do(shutdown): %v", err)
	}
	if err := waitRun(t, errc); err != nil {
		t.Errorf("Run = %v, want nil after shutdown", err)
	}
	if d.focus != 2 {
		t.Errorf("focus = %d, want 2", d.focus)
	}
}

func TestRun_TriggersAndNotFoundCommands(t *testing.T) {
	cfg := testConfig(config.GroupConfig{Name: "a"})
	cfg.Keys = []config.KeyConfig{{Mods: []string{"mod4"}, Key: "Tab", Command: command.NextLayout}}
	e, _ := newTestEngine(t, cfg, screenA)
	ctx, errc := startReactor(t, e)

	e.PostTrigger("mod4-Tab")
	err := e.Do(ctx, command.Command{Name: command.GroupToScreen, Args: []string{"nope"}})
	if !IsNotFound(err) {
		t.Errorf("Do(group.toscreen nope) = %v, want not found", err)
	}
	if got := e.Snapshot().Layout; got != "max" {
		t.Errorf("layout = %q, want max after trigger", got)
	}

	if err := e.Do(ctx, command.Command{Name: command.ReloadConfig}); err != nil {
		t.Fatalf("Do(reload_config): %v", err)
	}
	if err := waitRun(t, errc); !errors.Is(err, ErrReload) {
		t.Errorf("Run = %v, want ErrReload", err)
	}
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	e, _ := newTestEngine(t, testConfig(config.GroupConfig{Name: "a"}), screenA)
	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- e.Run(ctx) }()

	cancel()
	if err := waitRun(t, errc); !errors.Is(err, context.Canceled) {
		t.Errorf("Run = %v, want context.Canceled", err)
	}
}

func TestDo_ReturnsWhenContextDone(t *testing.T) {
	e, _ := newTestEngine(t, testConfig(config.GroupConfig{Name: "a"}), screenA)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// No reactor is running; Do must not block.
	err := e.Do(ctx, command.Command{Name: command.NextLayout})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Do = %v, want context.Canceled", err)
	}
}
