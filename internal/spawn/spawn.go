// Package spawn launches programs for key bindings and autostart without
// waiting for them.
package spawn

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/1broseidon/groupwm/internal/logger"
)

// ErrEmptyCommand is returned when there is nothing to run.
var ErrEmptyCommand = errors.New("empty command")

// Launcher starts processes in their own session so they outlive the window
// manager and do not receive its terminal signals.
type Launcher struct {
	log *logger.Logger
	// Env entries are appended to the inherited environment, e.g. DISPLAY.
	Env []string
}

// New returns a launcher that logs process exits to log.
func New(log *logger.Logger) *Launcher {
	if log == nil {
		log = logger.Nop()
	}
	return &Launcher{log: log}
}

// Spawn starts argv and returns once the process is running. The exit status
// is only logged.
func (l *Launcher) Spawn(argv []string) error {
	if len(argv) == 0 || strings.TrimSpace(argv[0]) == "" {
		return ErrEmptyCommand
	}
	name, err := expandHome(argv[0])
	if err != nil {
		return err
	}
	cmd := exec.Command(name, argv[1:]...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	if len(l.Env) > 0 {
		cmd.Env = append(os.Environ(), l.Env...)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to spawn %q: %w", argv[0], err)
	}
	pid := cmd.Process.Pid
	l.log.Debug("process started", "command", strings.Join(argv, " "), "pid", pid)

	// Reap the child; nobody else waits for it.
	go func() {
		if err := cmd.Wait(); err != nil {
			l.log.Debug("process exited", "command", argv[0], "pid", pid, "error", err.Error())
			return
		}
		l.log.Debug("process exited", "command", argv[0], "pid", pid)
	}()
	return nil
}

// Autostart runs each existing script once. Missing scripts are skipped.
func (l *Launcher) Autostart(scripts []string) {
	for _, s := range scripts {
		path, err := expandHome(s)
		if err != nil {
			l.log.Warn("autostart: cannot resolve path", "script", s, "error", err.Error())
			continue
		}
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			l.log.Debug("autostart: script not found", "script", path)
			continue
		}
		if err := l.Spawn([]string{"/bin/sh", path}); err != nil {
			l.log.Error("autostart failed", err, "script", path)
			continue
		}
		l.log.Info("autostart started", "script", path)
	}
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to determine home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
