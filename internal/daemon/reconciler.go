package daemon

import (
	"context"
	"time"

	"github.com/1broseidon/groupwm/internal/logger"
	"github.com/1broseidon/groupwm/internal/platform"
	"github.com/1broseidon/groupwm/internal/wm"
)

// WindowChecker reports whether the display server still knows a window.
type WindowChecker func(id uint32) bool

// ReconcilerConfig holds configuration for the reconciler.
type ReconcilerConfig struct {
	Interval time.Duration
	Logger   *logger.Logger
}

// Reconciler periodically compares the engine's windows with the display
// server and reports windows whose destroy notification was lost.
type Reconciler struct {
	interval time.Duration
	snapshot func() *wm.Snapshot
	exists   WindowChecker
	post     func(platform.Event)
	logger   *logger.Logger
}

// NewReconciler creates a new reconciler with the given configuration.
func NewReconciler(cfg ReconcilerConfig, snapshot func() *wm.Snapshot, exists WindowChecker, post func(platform.Event)) *Reconciler {
	interval := cfg.Interval
	if interval <= 0 {
		interval = 10 * time.Second
	}
	log := cfg.Logger
	if log == nil {
		log = logger.Nop()
	}

	return &Reconciler{
		interval: interval,
		snapshot: snapshot,
		exists:   exists,
		post:     post,
		logger:   log,
	}
}

// Run starts the reconciliation loop. Blocks until context is cancelled.
func (r *Reconciler) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info("reconciler started", "interval", r.interval.String())

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("reconciler stopped")
			return
		case <-ticker.C:
			r.reconcile()
		}
	}
}

// reconcile performs a single reconciliation pass and returns the number of
// stale windows it reported.
func (r *Reconciler) reconcile() (stale int) {
	// Recover from panics to prevent crashing the daemon
	defer func() {
		if err := recover(); err != nil {
			r.logger.Warn("reconciler panic recovered", "error", err)
		}
	}()

	s := r.snapshot()
	if s == nil {
		return 0
	}
	for _, w := range s.Windows {
		if r.exists(w.ID) {
			continue
		}
		r.logger.Info("reconciler: stale window detected",
			"window", w.ID,
			"class", w.Class,
			"group", w.Group)
		r.post(platform.WindowDestroyed{ID: platform.WindowID(w.ID)})
		stale++
	}
	return stale
}
