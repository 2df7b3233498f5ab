// Package command defines the engine's command table and the data form of
// key and mouse bindings. Bindings are plain values resolved against the
// table once, when configuration loads.
package command

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ArgKind constrains a command's arguments.
type ArgKind int

const (
	ArgNone ArgKind = iota
	// ArgGroup is a single group name that must exist.
	ArgGroup
	// ArgInt is one or more integers.
	ArgInt
	// ArgString is free text; multiple args are joined with spaces.
	ArgString
)

// Spec describes one entry of the command table.
type Spec struct {
	Name        string
	Args        ArgKind
	MinArgs     int
	MaxArgs     int
	Description string
}

// Command names.
const (
	LayoutLeft         = "layout.left"
	LayoutRight        = "layout.right"
	LayoutUp           = "layout.up"
	LayoutDown         = "layout.down"
	LayoutShuffleLeft  = "layout.shuffle_left"
	LayoutShuffleRight = "layout.shuffle_right"
	LayoutShuffleUp    = "layout.shuffle_up"
	LayoutShuffleDown  = "layout.shuffle_down"
	LayoutGrowLeft     = "layout.grow_left"
	LayoutGrowRight    = "layout.grow_right"
	LayoutGrowUp       = "layout.grow_up"
	LayoutGrowDown     = "layout.grow_down"
	LayoutGrowMain     = "layout.grow_main"
	LayoutShrinkMain   = "layout.shrink_main"
	LayoutGrow         = "layout.grow"
	LayoutShrink       = "layout.shrink"
	LayoutNormalize    = "layout.normalize"
	LayoutReset        = "layout.reset"
	LayoutToggleSplit  = "layout.toggle_split"

	GroupNextWindow = "group.next_window"
	GroupPrevWindow = "group.prev_window"
	GroupToScreen   = "group.toscreen"
	GroupSetLayout  = "group.setlayout"

	WindowToGroup          = "window.togroup"
	WindowToggleFloating   = "window.toggle_floating"
	WindowToggleFullscreen = "window.toggle_fullscreen"
	WindowToggleMinimize   = "window.toggle_minimize"
	WindowKill             = "window.kill"
	WindowBringToFront     = "window.bring_to_front"
	WindowSetPosition      = "window.set_position_floating"
	WindowSetSize          = "window.set_size_floating"

	NextLayout   = "next_layout"
	PrevLayout   = "prev_layout"
	ToScreen     = "to_screen"
	NextScreen   = "next_screen"
	PrevScreen   = "prev_screen"
	Spawn        = "spawn"
	ReloadConfig = "reload_config"
	Shutdown     = "shutdown"
)

var table = map[string]Spec{}

func register(specs ...Spec) {
	for _, s := range specs {
		table[s.Name] = s
	}
}

func init() {
	register(
		Spec{Name: LayoutLeft, Description: "Focus the window to the left"},
		Spec{Name: LayoutRight, Description: "Focus the window to the right"},
		Spec{Name: LayoutUp, Description: "Focus the window above"},
		Spec{Name: LayoutDown, Description: "Focus the window below"},
		Spec{Name: LayoutShuffleLeft, Description: "Move the focused window left"},
		Spec{Name: LayoutShuffleRight, Description: "Move the focused window right"},
		Spec{Name: LayoutShuffleUp, Description: "Move the focused window up"},
		Spec{Name: LayoutShuffleDown, Description: "Move the focused window down"},
		Spec{Name: LayoutGrowLeft, Description: "Grow the focused column to the left"},
		Spec{Name: LayoutGrowRight, Description: "Grow the focused column to the right"},
		Spec{Name: LayoutGrowUp, Description: "Grow the focused window upward"},
		Spec{Name: LayoutGrowDown, Description: "Grow the focused window downward"},
		Spec{Name: LayoutGrowMain, Description: "Widen the main column"},
		Spec{Name: LayoutShrinkMain, Description: "Narrow the main column"},
		Spec{Name: LayoutGrow, Description: "Grow the focused window"},
		Spec{Name: LayoutShrink, Description: "Shrink the focused window"},
		Spec{Name: LayoutNormalize, Description: "Reset window sizes"},
		Spec{Name: LayoutReset, Description: "Reset window sizes and the main ratio"},
		Spec{Name: LayoutToggleSplit, Description: "Toggle between split and stacked column"},
		Spec{Name: GroupNextWindow, Description: "Focus the next window in the group"},
		Spec{Name: GroupPrevWindow, Description: "Focus the previous window in the group"},
		Spec{Name: GroupToScreen, Args: ArgGroup, MinArgs: 1, MaxArgs: 1, Description: "Show a group on the focused screen"},
		Spec{Name: GroupSetLayout, Args: ArgString, MinArgs: 1, MaxArgs: 1, Description: "Switch the current group to a named layout"},
		Spec{Name: WindowToGroup, Args: ArgGroup, MinArgs: 1, MaxArgs: 1, Description: "Move the focused window to a group"},
		Spec{Name: WindowToggleFloating, Description: "Toggle floating on the focused window"},
		Spec{Name: WindowToggleFullscreen, Description: "Toggle fullscreen on the focused window"},
		Spec{Name: WindowToggleMinimize, Description: "Minimize or restore the focused window"},
		Spec{Name: WindowKill, Description: "Close the focused window"},
		Spec{Name: WindowBringToFront, Description: "Raise the focused window"},
		Spec{Name: WindowSetPosition, Args: ArgInt, MinArgs: 2, MaxArgs: 2, Description: "Float the focused window at x y"},
		Spec{Name: WindowSetSize, Args: ArgInt, MinArgs: 2, MaxArgs: 2, Description: "Float the focused window with width height"},
		Spec{Name: NextLayout, Description: "Cycle to the next layout"},
		Spec{Name: PrevLayout, Description: "Cycle to the previous layout"},
		Spec{Name: ToScreen, Args: ArgInt, MinArgs: 1, MaxArgs: 1, Description: "Focus a screen by index"},
		Spec{Name: NextScreen, Description: "Focus the next screen"},
		Spec{Name: PrevScreen, Description: "Focus the previous screen"},
		Spec{Name: Spawn, Args: ArgString, MinArgs: 1, MaxArgs: -1, Description: "Launch a command"},
		Spec{Name: ReloadConfig, Description: "Reload the configuration"},
		Spec{Name: Shutdown, Description: "Stop the window manager"},
	)
}

// Lookup returns the table entry for name.
func Lookup(name string) (Spec, bool) {
	s, ok := table[name]
	return s, ok
}

// Names returns every command name, sorted.
func Names() []string {
	out := make([]string, 0, len(table))
	for name := range table {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Command is one dispatched invocation.
type Command struct {
	Name string   `json:"name"`
	Args []string `json:"args,omitempty"`
}

func (c Command) String() string {
	if len(c.Args) == 0 {
		return c.Name
	}
	return c.Name + " " + strings.Join(c.Args, " ")
}

// Check validates a command against the table. groupExists may be nil, in
// which case group arguments are not checked.
func Check(c Command, groupExists func(string) bool) error {
	spec, ok := Lookup(c.Name)
	if !ok {
		return fmt.Errorf("unknown command %q", c.Name)
	}
	n := len(c.Args)
	if n < spec.MinArgs || (spec.MaxArgs >= 0 && n > spec.MaxArgs) {
		return fmt.Errorf("%s: wrong number of arguments (%d)", c.Name, n)
	}
	switch spec.Args {
	case ArgGroup:
		if groupExists != nil && !groupExists(c.Args[0]) {
			return fmt.Errorf("%s: unknown group %q", c.Name, c.Args[0])
		}
	case ArgInt:
		for _, a := range c.Args {
			if _, err := strconv.Atoi(a); err != nil {
				return fmt.Errorf("%s: argument %q is not an integer", c.Name, a)
			}
		}
	case ArgString:
		for _, a := range c.Args {
			if strings.TrimSpace(a) == "" {
				return fmt.Errorf("%s: empty argument", c.Name)
			}
		}
	}
	return nil
}

// IntArgs parses every argument as an integer.
func (c Command) IntArgs() ([]int, error) {
	out := make([]int, len(c.Args))
	for i, a := range c.Args {
		v, err := strconv.Atoi(a)
		if err != nil {
			return nil, fmt.Errorf("%s: argument %q is not an integer", c.Name, a)
		}
		out[i] = v
	}
	return out, nil
}
