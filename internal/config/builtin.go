package config

import (
	"github.com/1broseidon/groupwm/internal/command"
	"github.com/1broseidon/groupwm/internal/tiling"
)

// Placeholders expanded in spawn arguments.
const (
	TerminalPlaceholder = "{terminal}"
	LauncherPlaceholder = "{launcher}"
)

// ModKey is the modifier used by the builtin bindings.
const ModKey = "mod4"

func intPtr(v int) *int { return &v }

func builtinLayouts(position tiling.Position) []LayoutConfig {
	return []LayoutConfig{
		{Type: tiling.KindTall, Name: "monadtall", Ratio: 0.62, Margin: 6, BorderWidth: 4, NewClientPosition: string(position)},
		{Type: tiling.KindMax, Name: "max"},
		{Type: tiling.KindColumns, Name: "columns", Margin: 5, BorderWidth: 5},
	}
}

func builtinGroups() []GroupConfig {
	return []GroupConfig{
		{
			Name:           "1",
			ScreenAffinity: intPtr(1),
			Matches: []MatchConfig{
				{ClassRegex: ".*remmina|Remmina.*"},
				{ClassRegex: ".*VirtualBox.*"},
				{ClassRegex: ".*irt-manager,*"},
			},
			Layouts: builtinLayouts(tiling.PositionAfterCurrent),
		},
		{Name: "2", ScreenAffinity: intPtr(0)},
		{Name: "3", ScreenAffinity: intPtr(2)},
		{Name: "4"},
		{Name: "5"},
		{Name: "6"},
		{Name: "7"},
		{Name: "8", Matches: []MatchConfig{{Class: "keepassxc"}}},
		{Name: "9", Matches: []MatchConfig{{ClassRegex: ".*teams.*"}}},
	}
}

func key(mods []string, k string, desc string, cmd string, args ...string) KeyConfig {
	return KeyConfig{Mods: mods, Key: k, Command: cmd, Args: args, Desc: desc}
}

// builtinKeys returns the bindings that do not depend on the group list.
func builtinKeys() []KeyConfig {
	mod := []string{ModKey}
	shift := []string{ModKey, "shift"}
	ctrl := []string{ModKey, "control"}
	tall := []string{"monadtall"}

	return []KeyConfig{
		key(mod, "h", "Move focus to left", command.LayoutLeft),
		key(mod, "i", "Move focus to right", command.LayoutRight),
		key(mod, "n", "Move focus down", command.LayoutDown),
		key(mod, "e", "Move focus up", command.LayoutUp),
		key(mod, "space", "Move window focus to other window", command.GroupNextWindow),
		key(mod, "m", "Minimize or restore", command.WindowToggleMinimize),

		key(shift, "h", "Move window to the left", command.LayoutShuffleLeft),
		key(shift, "i", "Move window to the right", command.LayoutShuffleRight),
		key(shift, "n", "Move window down", command.LayoutShuffleDown),
		key(shift, "e", "Move window up", command.LayoutShuffleUp),

		{Mods: ctrl, Key: "h", Desc: "Grow window to the left", Actions: []ActionConfig{
			{Command: command.LayoutGrowLeft},
			{Command: command.LayoutShrinkMain, WhenLayout: tall},
		}},
		{Mods: ctrl, Key: "i", Desc: "Grow window to the right", Actions: []ActionConfig{
			{Command: command.LayoutGrowRight},
			{Command: command.LayoutGrowMain, WhenLayout: tall},
		}},
		{Mods: ctrl, Key: "n", Desc: "Grow window down", Actions: []ActionConfig{
			{Command: command.LayoutGrowDown},
			{Command: command.LayoutGrow, WhenLayout: tall},
		}},
		{Mods: ctrl, Key: "e", Desc: "Grow window up", Actions: []ActionConfig{
			{Command: command.LayoutGrowUp},
			{Command: command.LayoutShrink, WhenLayout: tall},
		}},
		key(mod, "k", "Reset all window sizes", command.LayoutNormalize),
		key(shift, "Return", "Toggle between split and unsplit sides of stack", command.LayoutToggleSplit),
		key(mod, "Return", "Launch terminal", command.Spawn, TerminalPlaceholder),
		key(mod, "Tab", "Toggle between layouts", command.NextLayout),
		key(mod, "w", "Kill focused window", command.WindowKill),
		key(mod, "t", "Toggle fullscreen on the focused window", command.WindowToggleFullscreen),
		key(mod, "f", "Toggle floating on the focused window", command.WindowToggleFloating),
		key(ctrl, "r", "Reload the config", command.ReloadConfig),
		key(ctrl, "q", "Shutdown", command.Shutdown),
		key(mod, "r", "Launch a command", command.Spawn, LauncherPlaceholder),

		key(ctrl, "l", "Focus to monitor 1", command.ToScreen, "1"),
		key(ctrl, "u", "Focus to monitor 0", command.ToScreen, "0"),
		key(ctrl, "y", "Focus to monitor 2", command.ToScreen, "2"),

		key(mod, "l", "Lock the screen", command.Spawn, "xsecurelock"),
		key(mod, "p", "Take a screenshot", command.Spawn, "flameshot", "gui"),
		key(mod, "v", "Toggle the clipboard manager", command.Spawn, "copyq", "toggle"),
	}
}

// groupKeys binds mod+name to show a group and mod+shift+name to send the
// focused window there.
func groupKeys(names []string) []KeyConfig {
	out := make([]KeyConfig, 0, 2*len(names))
	for _, name := range names {
		out = append(out,
			key([]string{ModKey}, name, "Switch to group "+name, command.GroupToScreen, name),
			key([]string{ModKey, "shift"}, name, "Move focused window to group "+name, command.WindowToGroup, name),
		)
	}
	return out
}

// DefaultConfig returns the builtin configuration.
func DefaultConfig() *Config {
	groups := builtinGroups()
	names := make([]string, len(groups))
	for i, g := range groups {
		names[i] = g.Name
	}
	bar := ScreenConfig{Bar: BarConfig{Position: "top", Size: 24}}

	return &Config{
		LogLevel:  "info",
		WMName:    "LG3D",
		Launcher:  "dmenu_run",
		Autostart: []string{"~/.config/groupwm/autostart.sh"},

		DefaultGroup:            names[0],
		FollowMouseFocus:        true,
		BringFrontClick:         false,
		FloatsKeptAbove:         true,
		CursorWarp:              false,
		AutoFullscreen:          true,
		FocusOnWindowActivation: ActivationSmart,
		ReconfigureScreens:      true,
		AutoMinimize:            true,
		ReconcileSeconds:        5,

		FloatingBorderWidth: 1,
		Screens:             []ScreenConfig{bar, bar, bar},
		Layouts:             builtinLayouts(tiling.PositionTop),
		FloatRules: []MatchConfig{
			{Class: "confirmreset"},
			{Class: "makebranch"},
			{Class: "maketag"},
			{Class: "ssh-askpass"},
			{Title: "branchdialog"},
			{Title: "pinentry"},
		},
		Groups: groups,
		Keys:   append(builtinKeys(), groupKeys(names)...),
		Mouse: []MouseConfig{
			{Mods: []string{ModKey}, Button: 1, Action: "drag", Command: command.WindowSetPosition},
			{Mods: []string{ModKey}, Button: 3, Action: "drag", Command: command.WindowSetSize},
			{Mods: []string{ModKey}, Button: 2, Action: "click", Command: command.WindowBringToFront},
		},
	}
}
