package config

import (
	"fmt"
)

// ValidationError is a configuration error tied to a YAML path. The loader
// fills in Source when the path came from a file.
type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.Kind == SourceFile && e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.Source.File, e.Source.Line, e.Source.Column, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// BuildEffectiveConfig applies raw over DefaultConfig.
func BuildEffectiveConfig(raw RawConfig) (*Config, error) {
	cfg := DefaultConfig()

	setString := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	setBool := func(dst *bool, src *bool) {
		if src != nil {
			*dst = *src
		}
	}
	setInt := func(dst *int, src *int) {
		if src != nil {
			*dst = *src
		}
	}

	setString(&cfg.LogLevel, raw.LogLevel)
	setString(&cfg.LogFile, raw.LogFile)
	setString(&cfg.Display, raw.Display)
	setString(&cfg.WMName, raw.WMName)
	setString(&cfg.Terminal, raw.Terminal)
	setString(&cfg.Launcher, raw.Launcher)
	setString(&cfg.DefaultGroup, raw.DefaultGroup)
	setString(&cfg.FocusOnWindowActivation, raw.FocusOnWindowActivation)

	setBool(&cfg.FollowMouseFocus, raw.FollowMouseFocus)
	setBool(&cfg.BringFrontClick, raw.BringFrontClick)
	setBool(&cfg.FloatsKeptAbove, raw.FloatsKeptAbove)
	setBool(&cfg.CursorWarp, raw.CursorWarp)
	setBool(&cfg.AutoFullscreen, raw.AutoFullscreen)
	setBool(&cfg.ReconfigureScreens, raw.ReconfigureScreens)
	setBool(&cfg.AutoMinimize, raw.AutoMinimize)

	setInt(&cfg.ReconcileSeconds, raw.ReconcileSeconds)
	setInt(&cfg.FloatingBorderWidth, raw.FloatingBorderWidth)

	if raw.Autostart != nil {
		cfg.Autostart = append([]string(nil), raw.Autostart...)
	}
	if raw.Screens != nil {
		cfg.Screens = append([]ScreenConfig(nil), raw.Screens...)
	}
	if raw.Layouts != nil {
		cfg.Layouts = append([]LayoutConfig(nil), raw.Layouts...)
	}
	if raw.FloatRules != nil {
		cfg.FloatRules = append([]MatchConfig(nil), raw.FloatRules...)
	}
	if raw.Mouse != nil {
		cfg.Mouse = append([]MouseConfig(nil), raw.Mouse...)
	}

	groupsReplaced := raw.Groups != nil
	if groupsReplaced {
		cfg.Groups = append([]GroupConfig(nil), raw.Groups...)
		if raw.DefaultGroup == nil && len(cfg.Groups) > 0 {
			cfg.DefaultGroup = cfg.Groups[0].Name
		}
	}

	switch {
	case raw.Keys != nil:
		cfg.Keys = append([]KeyConfig(nil), raw.Keys...)
	case groupsReplaced:
		// The builtin keys reference the builtin groups; rebuild the group
		// keys for the configured ones.
		cfg.Keys = append(builtinKeys(), groupKeys(cfg.GroupNames())...)
	}
	cfg.Keys = append(cfg.Keys, raw.ExtraKeys...)

	return cfg, nil
}
