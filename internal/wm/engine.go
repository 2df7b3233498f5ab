// Package wm is the layout and focus engine. An Engine owns the window
// registry, the group manager and the screen/focus state, and is driven by a
// single reactor goroutine that applies display events and commands one at a
// time.
package wm

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/1broseidon/groupwm/internal/command"
	"github.com/1broseidon/groupwm/internal/config"
	"github.com/1broseidon/groupwm/internal/group"
	"github.com/1broseidon/groupwm/internal/logger"
	"github.com/1broseidon/groupwm/internal/platform"
	"github.com/1broseidon/groupwm/internal/rules"
	"github.com/1broseidon/groupwm/internal/tiling"
	"github.com/1broseidon/groupwm/internal/window"
)

var (
	// ErrScreenNotFound is returned for a screen index that does not exist.
	ErrScreenNotFound = errors.New("screen not found")
	// ErrReload is returned by Run after a reload_config command.
	ErrReload = errors.New("reload requested")
)

// Spawner launches external programs without waiting for them.
type Spawner interface {
	Spawn(argv []string) error
}

// Engine holds all window manager state. Every method except Snapshot and
// the queueing methods in loop.go must be called from the reactor goroutine.
type Engine struct {
	cfg     *config.Config
	display platform.Display
	spawner Spawner
	log     *logger.Logger

	registry *window.Registry
	groups   *group.Manager
	floats   *rules.FloatTable
	bindings *command.Table
	fallback tiling.Layout

	screens       []platform.Screen
	focusedScreen int
	// focused is the window holding input focus, zero when none.
	focused platform.WindowID
	// arranged is the last placement computed per group.
	arranged map[string]tiling.Placement

	queue    chan item
	exit     error
	stopping bool
	snapshot atomic.Pointer[Snapshot]
	observer func(*Snapshot)
}

// New builds an engine from a validated configuration. Configuration
// problems are returned as *config.ValidationError and are fatal.
func New(cfg *config.Config, display platform.Display, spawner Spawner, log *logger.Logger) (*Engine, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}
	if display == nil {
		return nil, fmt.Errorf("display is nil")
	}
	if log == nil {
		log = logger.Nop()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	specs, err := cfg.GroupSpecs()
	if err != nil {
		return nil, err
	}
	groups, err := group.NewManager(specs)
	if err != nil {
		return nil, &config.ValidationError{Path: "groups", Err: err}
	}
	floats, err := cfg.FloatTable()
	if err != nil {
		return nil, err
	}
	bindings, err := cfg.Bindings()
	if err != nil {
		return nil, err
	}
	table, dups := command.Resolve(bindings)
	for _, t := range dups {
		log.Warn("duplicate key binding, last definition wins", "trigger", t.String())
	}

	e := &Engine{
		cfg:      cfg,
		display:  display,
		spawner:  spawner,
		log:      log,
		registry: window.NewRegistry(),
		groups:   groups,
		floats:   floats,
		bindings: table,
		fallback: tiling.NewMax(tiling.MaxOptions{Name: "max"}),
		arranged: make(map[string]tiling.Placement),
		queue:    make(chan item, queueSize),
	}
	e.publish()
	return e, nil
}

// Config returns the configuration the engine was built from.
func (e *Engine) Config() *config.Config { return e.cfg }

// Bindings returns the resolved key bindings.
func (e *Engine) Bindings() []command.Binding { return e.bindings.Bindings() }

// Start assigns groups to the initial screens and arranges everything. Each
// group with a screen affinity is shown on that screen; remaining screens get
// the first hidden groups in configuration order.
func (e *Engine) Start(screens []platform.Rect) {
	e.setScreens(screens)
	for _, g := range e.groups.All() {
		a := g.Affinity()
		if a == group.NoScreen || a >= len(e.screens) {
			continue
		}
		if _, taken := e.groups.Displayed(a); taken {
			continue
		}
		_ = e.groups.SetScreen(g.Name(), a)
	}
	e.fillEmptyScreens()
	e.focusedScreen = 0
	e.relayoutAll()
	e.focusCurrent()
	e.publish()
	e.log.Info("engine started", "screens", len(e.screens), "groups", len(e.groups.Names()))
}

func (e *Engine) setScreens(rects []platform.Rect) {
	e.screens = make([]platform.Screen, len(rects))
	for i, r := range rects {
		e.screens[i] = platform.Screen{Index: i, Bounds: r}
	}
}

// fillEmptyScreens gives every screen without a group the first hidden
// group in configuration order.
func (e *Engine) fillEmptyScreens() {
	for i := range e.screens {
		if _, ok := e.groups.Displayed(i); ok {
			continue
		}
		hidden := e.groups.Hidden()
		if len(hidden) == 0 {
			return
		}
		_ = e.groups.SetScreen(hidden[0].Name(), i)
	}
}

// currentGroup returns the group on the focused screen.
func (e *Engine) currentGroup() (*group.Group, bool) {
	if e.focusedScreen < 0 || e.focusedScreen >= len(e.screens) {
		return nil, false
	}
	return e.groups.Displayed(e.focusedScreen)
}

// focusedWindow returns the current group's focused window.
func (e *Engine) focusedWindow() (*window.Window, *group.Group, bool) {
	g, ok := e.currentGroup()
	if !ok {
		return nil, nil, false
	}
	id, ok := g.Focused()
	if !ok {
		return nil, g, false
	}
	w, err := e.registry.Get(id)
	if err != nil {
		return nil, g, false
	}
	return w, g, true
}

// screenArea returns the usable area of screen i.
func (e *Engine) screenArea(i int) platform.Rect {
	if i < 0 || i >= len(e.screens) {
		return platform.Rect{}
	}
	return e.cfg.UsableArea(i, e.screens[i].Bounds)
}

// areaFor returns the area a group is arranged in: its screen when shown,
// otherwise its affine screen or the focused screen.
func (e *Engine) areaFor(g *group.Group) platform.Rect {
	switch {
	case g.Visible():
		return e.screenArea(g.Screen())
	case g.Affinity() != group.NoScreen && g.Affinity() < len(e.screens):
		return e.screenArea(g.Affinity())
	default:
		return e.screenArea(e.focusedScreen)
	}
}

// IsNotFound reports whether err is about a window, group or screen that
// does not exist. Such errors leave the engine unchanged.
func IsNotFound(err error) bool {
	return errors.Is(err, window.ErrNotFound) ||
		errors.Is(err, group.ErrNotFound) ||
		errors.Is(err, ErrScreenNotFound)
}

// Arrangement returns the last placement computed for a group.
func (e *Engine) Arrangement(name string) (tiling.Placement, bool) {
	p, ok := e.arranged[name]
	return p, ok
}
