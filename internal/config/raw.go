package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// IncludeList supports either:
//
//	include: "/path/to/file.yaml"
//
// or:
//
//	include:
//	  - "/path/to/file.yaml"
//	  - "/path/to/dir"
type IncludeList []string

func (l *IncludeList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case 0:
		// Not present.
		*l = nil
		return nil
	case yaml.ScalarNode:
		if value.Tag != "!!str" {
			return fmt.Errorf("include must be a string or list of strings")
		}
		*l = []string{value.Value}
		return nil
	case yaml.SequenceNode:
		out := make([]string, 0, len(value.Content))
		for _, item := range value.Content {
			if item.Kind != yaml.ScalarNode || item.Tag != "!!str" {
				return fmt.Errorf("include entries must be strings")
			}
			out = append(out, item.Value)
		}
		*l = out
		return nil
	default:
		return fmt.Errorf("include must be a string or list of strings")
	}
}

// RawConfig is one file's view of the configuration. Scalars are pointers so
// an unset key leaves the value below it untouched; lists replace wholesale,
// except extra_keys which accumulates across files.
type RawConfig struct {
	Include IncludeList `yaml:"include"`

	LogLevel *string `yaml:"log_level"`
	LogFile  *string `yaml:"log_file"`
	Display  *string `yaml:"display"`
	WMName   *string `yaml:"wmname"`

	Terminal  *string  `yaml:"terminal"`
	Launcher  *string  `yaml:"launcher"`
	Autostart []string `yaml:"autostart"`

	DefaultGroup            *string `yaml:"default_group"`
	FollowMouseFocus        *bool   `yaml:"follow_mouse_focus"`
	BringFrontClick         *bool   `yaml:"bring_front_click"`
	FloatsKeptAbove         *bool   `yaml:"floats_kept_above"`
	CursorWarp              *bool   `yaml:"cursor_warp"`
	AutoFullscreen          *bool   `yaml:"auto_fullscreen"`
	FocusOnWindowActivation *string `yaml:"focus_on_window_activation"`
	ReconfigureScreens      *bool   `yaml:"reconfigure_screens"`
	AutoMinimize            *bool   `yaml:"auto_minimize"`
	ReconcileSeconds        *int    `yaml:"reconcile_seconds"`

	FloatingBorderWidth *int           `yaml:"floating_border_width"`
	Screens             []ScreenConfig `yaml:"screens"`
	Layouts             []LayoutConfig `yaml:"layouts"`
	FloatRules          []MatchConfig  `yaml:"float_rules"`
	Groups              []GroupConfig  `yaml:"groups"`
	Keys                []KeyConfig    `yaml:"keys"`
	ExtraKeys           []KeyConfig    `yaml:"extra_keys"`
	Mouse               []MouseConfig  `yaml:"mouse"`
}

func (c RawConfig) merge(overlay RawConfig) RawConfig {
	out := c

	mergeString := func(dst **string, src *string) {
		if src != nil {
			*dst = src
		}
	}
	mergeBool := func(dst **bool, src *bool) {
		if src != nil {
			*dst = src
		}
	}
	mergeInt := func(dst **int, src *int) {
		if src != nil {
			*dst = src
		}
	}

	mergeString(&out.LogLevel, overlay.LogLevel)
	mergeString(&out.LogFile, overlay.LogFile)
	mergeString(&out.Display, overlay.Display)
	mergeString(&out.WMName, overlay.WMName)
	mergeString(&out.Terminal, overlay.Terminal)
	mergeString(&out.Launcher, overlay.Launcher)
	mergeString(&out.DefaultGroup, overlay.DefaultGroup)
	mergeString(&out.FocusOnWindowActivation, overlay.FocusOnWindowActivation)

	mergeBool(&out.FollowMouseFocus, overlay.FollowMouseFocus)
	mergeBool(&out.BringFrontClick, overlay.BringFrontClick)
	mergeBool(&out.FloatsKeptAbove, overlay.FloatsKeptAbove)
	mergeBool(&out.CursorWarp, overlay.CursorWarp)
	mergeBool(&out.AutoFullscreen, overlay.AutoFullscreen)
	mergeBool(&out.ReconfigureScreens, overlay.ReconfigureScreens)
	mergeBool(&out.AutoMinimize, overlay.AutoMinimize)

	mergeInt(&out.ReconcileSeconds, overlay.ReconcileSeconds)
	mergeInt(&out.FloatingBorderWidth, overlay.FloatingBorderWidth)

	if overlay.Autostart != nil {
		out.Autostart = overlay.Autostart
	}
	if overlay.Screens != nil {
		out.Screens = overlay.Screens
	}
	if overlay.Layouts != nil {
		out.Layouts = overlay.Layouts
	}
	if overlay.FloatRules != nil {
		out.FloatRules = overlay.FloatRules
	}
	if overlay.Groups != nil {
		out.Groups = overlay.Groups
	}
	if overlay.Keys != nil {
		out.Keys = overlay.Keys
	}
	if overlay.ExtraKeys != nil {
		out.ExtraKeys = append(append([]KeyConfig(nil), out.ExtraKeys...), overlay.ExtraKeys...)
	}
	if overlay.Mouse != nil {
		out.Mouse = overlay.Mouse
	}

	return out
}
