package config

import (
	"os"
	"os/exec"
	"strings"
)

// knownTerminals is searched in order when no terminal is configured.
var knownTerminals = []string{
	"roxterm",
	"sakura",
	"hyper",
	"alacritty",
	"terminator",
	"termite",
	"gnome-terminal",
	"konsole",
	"xfce4-terminal",
	"lxterminal",
	"mate-terminal",
	"kitty",
	"yakuake",
	"tilda",
	"guake",
	"eterm",
	"st",
	"urxvt",
	"wezterm",
	"xterm",
	"x-terminal-emulator",
}

var lookPath = exec.LookPath

// DetectTerminal returns the first terminal found on PATH, preferring
// $TERMINAL. It returns "" when nothing is found.
func DetectTerminal() string {
	candidates := knownTerminals
	if env := strings.TrimSpace(os.Getenv("TERMINAL")); env != "" {
		candidates = append([]string{env}, knownTerminals...)
	}
	for _, name := range candidates {
		if _, err := lookPath(name); err == nil {
			return name
		}
	}
	return ""
}

// ExpandSpawn replaces the terminal and launcher placeholders in a spawn
// command. Placeholder arguments that expand to a multi-word command are
// split on whitespace.
func (c *Config) ExpandSpawn(args []string) []string {
	out := make([]string, 0, len(args))
	for _, a := range args {
		switch a {
		case TerminalPlaceholder:
			term := c.Terminal
			if term == "" {
				term = DetectTerminal()
			}
			out = append(out, strings.Fields(term)...)
		case LauncherPlaceholder:
			out = append(out, strings.Fields(c.Launcher)...)
		default:
			out = append(out, a)
		}
	}
	return out
}
