// Package daemon wires the engine to the X server, the key grabber, the IPC
// socket and the background reconciler, and runs it until shutdown.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/xgb/xproto"

	"github.com/1broseidon/groupwm/internal/config"
	"github.com/1broseidon/groupwm/internal/hotkeys"
	"github.com/1broseidon/groupwm/internal/ipc"
	"github.com/1broseidon/groupwm/internal/logger"
	"github.com/1broseidon/groupwm/internal/platform"
	"github.com/1broseidon/groupwm/internal/runtimepath"
	"github.com/1broseidon/groupwm/internal/spawn"
	"github.com/1broseidon/groupwm/internal/wm"
	"github.com/1broseidon/groupwm/internal/x11"
)

// Options configures Run.
type Options struct {
	// ConfigPath is the configuration file; empty means the default path.
	ConfigPath string
	// Display overrides the configured X display.
	Display string
	Log     *logger.Logger
}

// Run manages the display until ctx is cancelled or a shutdown command
// arrives. A reload_config command rebuilds everything from a fresh
// configuration load; windows survive the reload and are adopted again.
func Run(ctx context.Context, opts Options) error {
	log := opts.Log
	if log == nil {
		log = logger.Nop()
	}
	first := true
	for {
		cfg, err := loadConfig(opts.ConfigPath)
		if err != nil {
			return err
		}
		err = runSession(ctx, cfg, opts, log, first)
		if !errors.Is(err, wm.ErrReload) {
			return err
		}
		log.Info("reloading configuration")
		first = false
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Load()
	}
	res, err := config.LoadFromPath(path)
	if err != nil {
		return nil, err
	}
	return res.Config, nil
}

// runSession runs one engine lifetime on its own X connection.
func runSession(ctx context.Context, cfg *config.Config, opts Options, log *logger.Logger, autostart bool) error {
	display := opts.Display
	if display == "" {
		display = cfg.Display
	}
	if display == "" {
		display = os.Getenv("DISPLAY")
	}

	conn, err := x11.NewConnection(display)
	if err != nil {
		return fmt.Errorf("failed to connect to X11: %w", err)
	}
	defer conn.Close()
	if err := conn.BecomeWM(cfg.WMName); err != nil {
		return err
	}

	backend := platform.NewX11Backend(conn, log.With("component", "x11"))
	backend.FollowMouse = cfg.FollowMouseFocus
	screens, err := backend.Screens()
	if err != nil {
		return err
	}

	launcher := spawn.New(log.With("component", "spawn"))
	engine, err := wm.New(cfg, backend, launcher, log.With("component", "engine"))
	if err != nil {
		return err
	}
	engine.OnPublish(NewDesktopSync(connPublisher{conn}, log).Publish)
	engine.Start(screens)

	keys := hotkeys.NewHandler(conn, engine, log.With("component", "hotkeys"))
	if err := keys.RegisterKeys(engine.Bindings()); err != nil {
		log.Warn("some key bindings could not be grabbed", "error", err.Error())
	}
	if err := keys.RegisterMouse(cfg.Mouse); err != nil {
		log.Warn("some mouse bindings could not be grabbed", "error", err.Error())
	}
	if err := backend.Listen(engine.Post); err != nil {
		return err
	}
	go conn.EventLoop()
	defer conn.Quit()

	socket, err := runtimepath.SocketPath(display)
	if err != nil {
		return fmt.Errorf("failed to resolve IPC socket path: %w", err)
	}
	server := ipc.NewServer(socket, engine, log.With("component", "ipc"))
	if err := server.Start(); err != nil {
		return err
	}
	defer server.Stop()

	sessionCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	reconciler := NewReconciler(ReconcilerConfig{
		Interval: time.Duration(cfg.ReconcileSeconds) * time.Second,
		Logger:   log.With("component", "reconciler"),
	}, engine.Snapshot, func(id uint32) bool {
		return conn.Exists(xproto.Window(id))
	}, engine.Post)
	go reconciler.Run(sessionCtx)

	if autostart {
		launcher.Autostart(cfg.Autostart)
	}

	log.Info("window manager running", "display", display, "screens", len(screens), "socket", socket)
	return engine.Run(sessionCtx)
}

// connPublisher adapts the X connection to DesktopPublisher.
type connPublisher struct {
	conn *x11.Connection
}

func (p connPublisher) Desktops(names []string, current int) error {
	return p.conn.Desktops(names, current)
}

func (p connPublisher) ClientList(ids []uint32) error {
	wins := make([]xproto.Window, len(ids))
	for i, id := range ids {
		wins[i] = xproto.Window(id)
	}
	return p.conn.ClientList(wins)
}

func (p connPublisher) SetWindowDesktop(id uint32, desktop int) error {
	return p.conn.SetWindowDesktop(xproto.Window(id), desktop)
}
