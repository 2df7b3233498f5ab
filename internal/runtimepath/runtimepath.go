package runtimepath

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// SocketEnv overrides the IPC socket path when set.
const SocketEnv = "GROUPWM_SOCKET"

// Dir returns the runtime directory used for the IPC socket. Priority:
// 1) XDG_RUNTIME_DIR (if set)
// 2) /run/user/<uid> (if present)
// 3) /tmp/groupwm-runtime-<uid> (created)
func Dir() (string, error) {
	if runtimeDir := os.Getenv("XDG_RUNTIME_DIR"); runtimeDir != "" {
		return runtimeDir, nil
	}

	uid := os.Getuid()
	runUserDir := fmt.Sprintf("/run/user/%d", uid)
	if info, err := os.Stat(runUserDir); err == nil && info.IsDir() {
		return runUserDir, nil
	}

	tmpDir := fmt.Sprintf("/tmp/groupwm-runtime-%d", uid)
	if err := os.MkdirAll(tmpDir, 0700); err != nil {
		return "", fmt.Errorf("failed to create runtime dir: %w", err)
	}
	return tmpDir, nil
}

// SocketPath returns the IPC socket path for an X display. An empty display
// means $DISPLAY. Each display gets its own socket so nested sessions do not
// collide.
func SocketPath(display string) (string, error) {
	if p := os.Getenv(SocketEnv); p != "" {
		return p, nil
	}
	runtimeDir, err := Dir()
	if err != nil {
		return "", err
	}
	if display == "" {
		display = os.Getenv("DISPLAY")
	}
	name := "groupwm.sock"
	if d := sanitize(display); d != "" {
		name = "groupwm-" + d + ".sock"
	}
	return filepath.Join(runtimeDir, name), nil
}

func sanitize(display string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.':
			return r
		case r == ':':
			return -1
		}
		return '_'
	}, display)
}
