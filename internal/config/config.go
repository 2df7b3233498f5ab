package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/1broseidon/groupwm/internal/command"
	"github.com/1broseidon/groupwm/internal/group"
	"github.com/1broseidon/groupwm/internal/platform"
	"github.com/1broseidon/groupwm/internal/rules"
	"github.com/1broseidon/groupwm/internal/tiling"
)

// LayoutConfig defines one layout instance.
type LayoutConfig struct {
	Type tiling.Kind `yaml:"type"`
	// Name is shown in the status snapshot and used by when_layout and
	// group.setlayout. Defaults to the type.
	Name              string  `yaml:"name,omitempty"`
	Ratio             float64 `yaml:"ratio,omitempty"`        // tall: main column share (0.1-0.9)
	ChangeRatio       float64 `yaml:"change_ratio,omitempty"` // tall: grow_main/shrink_main step
	Margin            int     `yaml:"margin,omitempty"`
	BorderWidth       int     `yaml:"border_width,omitempty"`
	NewClientPosition string  `yaml:"new_client_position,omitempty"` // tall: top, after_current, bottom
	NumColumns        int     `yaml:"num_columns,omitempty"`         // columns
}

// DisplayName returns the configured name or the layout type.
func (l LayoutConfig) DisplayName() string {
	if l.Name != "" {
		return l.Name
	}
	return string(l.Type)
}

// MatchConfig is one match rule. Every field that is set must hold.
type MatchConfig struct {
	Class      string `yaml:"class,omitempty"`
	ClassRegex string `yaml:"class_regex,omitempty"`
	Title      string `yaml:"title,omitempty"`
	TitleRegex string `yaml:"title_regex,omitempty"`
	Role       string `yaml:"role,omitempty"`
	Type       string `yaml:"type,omitempty"`
	Transient  bool   `yaml:"transient,omitempty"`
	FixedSize  bool   `yaml:"fixed_size,omitempty"`
}

// GroupConfig defines a group. Groups without layouts use the global list.
type GroupConfig struct {
	Name           string         `yaml:"name"`
	ScreenAffinity *int           `yaml:"screen_affinity,omitempty"`
	Matches        []MatchConfig  `yaml:"matches,omitempty"`
	Layouts        []LayoutConfig `yaml:"layouts,omitempty"`
}

// ActionConfig is one command run by a key binding.
type ActionConfig struct {
	Command    string   `yaml:"command"`
	Args       []string `yaml:"args,omitempty"`
	WhenLayout []string `yaml:"when_layout,omitempty"`
}

// KeyConfig binds a key. Either command/args or actions may be given; a
// command is run before any actions.
type KeyConfig struct {
	Mods    []string       `yaml:"mods,omitempty"`
	Key     string         `yaml:"key"`
	Command string         `yaml:"command,omitempty"`
	Args    []string       `yaml:"args,omitempty"`
	Actions []ActionConfig `yaml:"actions,omitempty"`
	Desc    string         `yaml:"desc,omitempty"`
}

// MouseConfig binds a pointer button. Drag bindings run their command with
// the pointer-derived arguments while the button is held.
type MouseConfig struct {
	Mods    []string `yaml:"mods,omitempty"`
	Button  int      `yaml:"button"`
	Action  string   `yaml:"action"` // drag or click
	Command string   `yaml:"command"`
}

// BarConfig reserves a strip of a screen for a status bar.
type BarConfig struct {
	Position string `yaml:"position,omitempty"` // top or bottom
	Size     int    `yaml:"size,omitempty"`
}

// ScreenConfig holds per-screen settings, indexed by screen number.
type ScreenConfig struct {
	Bar BarConfig `yaml:"bar"`
}

// Focus activation policies for windows that ask to be activated.
const (
	ActivationSmart  = "smart"
	ActivationFocus  = "focus"
	ActivationUrgent = "urgent"
	ActivationNever  = "never"
)

// Config is the effective configuration.
type Config struct {
	LogLevel string `yaml:"log_level"`
	LogFile  string `yaml:"log_file,omitempty"`
	Display  string `yaml:"display,omitempty"`
	WMName   string `yaml:"wmname"`

	// Terminal is spawned by "spawn terminal"; empty means detect.
	Terminal  string   `yaml:"terminal,omitempty"`
	Launcher  string   `yaml:"launcher"`
	Autostart []string `yaml:"autostart,omitempty"`

	DefaultGroup            string `yaml:"default_group"`
	FollowMouseFocus        bool   `yaml:"follow_mouse_focus"`
	// BringFrontClick raises a window when it is clicked.
	BringFrontClick         bool   `yaml:"bring_front_click"`
	FloatsKeptAbove         bool   `yaml:"floats_kept_above"`
	// CursorWarp centres the pointer on a window focused by a command.
	CursorWarp              bool   `yaml:"cursor_warp"`
	AutoFullscreen          bool   `yaml:"auto_fullscreen"`
	FocusOnWindowActivation string `yaml:"focus_on_window_activation"`
	ReconfigureScreens      bool   `yaml:"reconfigure_screens"`
	// AutoMinimize honours client requests to be iconified.
	AutoMinimize            bool   `yaml:"auto_minimize"`
	ReconcileSeconds        int    `yaml:"reconcile_seconds"`

	FloatingBorderWidth int            `yaml:"floating_border_width"`
	Screens             []ScreenConfig `yaml:"screens,omitempty"`
	Layouts             []LayoutConfig `yaml:"layouts"`
	FloatRules          []MatchConfig  `yaml:"float_rules,omitempty"`
	Groups              []GroupConfig  `yaml:"groups"`
	Keys                []KeyConfig    `yaml:"keys,omitempty"`
	Mouse               []MouseConfig  `yaml:"mouse,omitempty"`
}

// Save writes the configuration to path.
//
// Note: this marshals the effective config and will not preserve comments or
// include structure from the source YAML.
func (c *Config) Save(path string) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := c.Marshal()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Marshal renders the effective config as YAML.
func (c *Config) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return data, nil
}

// Validate performs strict validation of the effective configuration. Every
// error is a *ValidationError naming the offending path.
func (c *Config) Validate() error {
	switch c.LogLevel {
	case "debug", "info", "warning", "error":
	default:
		return &ValidationError{Path: "log_level", Err: fmt.Errorf("log_level must be one of: debug, info, warning, error")}
	}
	switch c.FocusOnWindowActivation {
	case ActivationSmart, ActivationFocus, ActivationUrgent, ActivationNever:
	default:
		return &ValidationError{Path: "focus_on_window_activation", Err: fmt.Errorf("focus_on_window_activation must be one of: smart, focus, urgent, never")}
	}
	if c.ReconcileSeconds < 0 {
		return &ValidationError{Path: "reconcile_seconds", Err: fmt.Errorf("reconcile_seconds must be >= 0")}
	}
	if c.FloatingBorderWidth < 0 {
		return &ValidationError{Path: "floating_border_width", Err: fmt.Errorf("floating_border_width must be >= 0")}
	}
	for i, s := range c.Screens {
		if err := validateBar(s.Bar); err != nil {
			return &ValidationError{Path: fmt.Sprintf("screens.%d.bar", i), Err: err}
		}
	}

	if len(c.Layouts) == 0 {
		return &ValidationError{Path: "layouts", Err: fmt.Errorf("layouts must not be empty")}
	}
	if err := validateLayoutList("layouts", c.Layouts); err != nil {
		return err
	}
	for i, m := range c.FloatRules {
		if _, err := m.Build(); err != nil {
			return &ValidationError{Path: fmt.Sprintf("float_rules.%d", i), Err: err}
		}
	}

	if len(c.Groups) == 0 {
		return &ValidationError{Path: "groups", Err: fmt.Errorf("groups must not be empty")}
	}
	seen := make(map[string]int, len(c.Groups))
	for i, g := range c.Groups {
		path := fmt.Sprintf("groups.%d", i)
		if strings.TrimSpace(g.Name) == "" {
			return &ValidationError{Path: path + ".name", Err: fmt.Errorf("group name is required")}
		}
		if first, dup := seen[g.Name]; dup {
			return &ValidationError{Path: path + ".name", Err: fmt.Errorf("duplicate group name %q (first defined at groups.%d)", g.Name, first)}
		}
		seen[g.Name] = i
		if g.ScreenAffinity != nil && *g.ScreenAffinity < 0 {
			return &ValidationError{Path: path + ".screen_affinity", Err: fmt.Errorf("screen_affinity must be >= 0")}
		}
		for j, m := range g.Matches {
			if _, err := m.Build(); err != nil {
				return &ValidationError{Path: fmt.Sprintf("%s.matches.%d", path, j), Err: err}
			}
		}
		if err := validateLayoutList(path+".layouts", g.Layouts); err != nil {
			return err
		}
	}
	if c.DefaultGroup != "" {
		if _, ok := seen[c.DefaultGroup]; !ok {
			return &ValidationError{Path: "default_group", Err: fmt.Errorf("default_group %q is not a defined group", c.DefaultGroup)}
		}
	}

	groupExists := func(name string) bool {
		_, ok := seen[name]
		return ok
	}
	for i, k := range c.Keys {
		path := fmt.Sprintf("keys.%d", i)
		if _, err := command.NewTrigger(k.Mods, k.Key); err != nil {
			return &ValidationError{Path: path, Err: err}
		}
		actions := k.actions()
		if len(actions) == 0 {
			return &ValidationError{Path: path, Err: fmt.Errorf("binding has no command")}
		}
		for _, a := range actions {
			if err := command.Check(command.Command{Name: a.Command, Args: a.Args}, groupExists); err != nil {
				return &ValidationError{Path: path, Err: err}
			}
		}
	}
	for i, m := range c.Mouse {
		path := fmt.Sprintf("mouse.%d", i)
		if m.Button < 1 || m.Button > 5 {
			return &ValidationError{Path: path + ".button", Err: fmt.Errorf("button must be between 1 and 5")}
		}
		if m.Action != "drag" && m.Action != "click" {
			return &ValidationError{Path: path + ".action", Err: fmt.Errorf("action must be drag or click")}
		}
		if _, ok := command.Lookup(m.Command); !ok {
			return &ValidationError{Path: path + ".command", Err: fmt.Errorf("unknown command %q", m.Command)}
		}
		for _, mod := range m.Mods {
			if _, err := command.NormalizeMod(mod); err != nil {
				return &ValidationError{Path: path + ".mods", Err: err}
			}
		}
	}
	return nil
}

func validateBar(b BarConfig) error {
	switch b.Position {
	case "", "top", "bottom":
	default:
		return fmt.Errorf("position must be top or bottom")
	}
	if b.Size < 0 {
		return fmt.Errorf("size must be >= 0")
	}
	return nil
}

func validateLayoutList(path string, layouts []LayoutConfig) error {
	names := make(map[string]struct{}, len(layouts))
	for i, l := range layouts {
		p := fmt.Sprintf("%s.%d", path, i)
		if err := validateLayout(l); err != nil {
			return &ValidationError{Path: p, Err: err}
		}
		name := l.DisplayName()
		if _, dup := names[name]; dup {
			return &ValidationError{Path: p + ".name", Err: fmt.Errorf("duplicate layout name %q", name)}
		}
		names[name] = struct{}{}
	}
	return nil
}

// validateLayout checks if a layout configuration is valid.
func validateLayout(l LayoutConfig) error {
	switch l.Type {
	case tiling.KindTall, tiling.KindMax, tiling.KindColumns, tiling.KindFloating:
	default:
		return fmt.Errorf("invalid type %q (expected tall, max, columns or floating)", l.Type)
	}
	if l.Margin < 0 {
		return fmt.Errorf("margin must be >= 0")
	}
	if l.BorderWidth < 0 {
		return fmt.Errorf("border_width must be >= 0")
	}
	if l.Ratio != 0 && (l.Ratio < tiling.MinRatio || l.Ratio > tiling.MaxRatio) {
		return fmt.Errorf("ratio must be between %.1f and %.1f", tiling.MinRatio, tiling.MaxRatio)
	}
	if l.ChangeRatio < 0 || l.ChangeRatio >= 1 {
		return fmt.Errorf("change_ratio must be between 0 and 1")
	}
	if l.NewClientPosition != "" {
		if _, err := tiling.ParsePosition(l.NewClientPosition); err != nil {
			return err
		}
	}
	if l.NumColumns < 0 {
		return fmt.Errorf("num_columns must be >= 0")
	}
	return nil
}

// Build turns the match config into a typed rule.
func (m MatchConfig) Build() (rules.Match, error) {
	var out rules.Match
	add := func(kind rules.Kind, value string) error {
		p, err := rules.NewPredicate(kind, value)
		if err != nil {
			return err
		}
		out = append(out, p)
		return nil
	}
	fields := []struct {
		kind  rules.Kind
		value string
	}{
		{rules.ClassEquals, m.Class},
		{rules.ClassRegex, m.ClassRegex},
		{rules.TitleEquals, m.Title},
		{rules.TitleRegex, m.TitleRegex},
		{rules.RoleEquals, m.Role},
		{rules.TypeEquals, m.Type},
	}
	for _, f := range fields {
		if f.value == "" {
			continue
		}
		if err := add(f.kind, f.value); err != nil {
			return nil, err
		}
	}
	if m.Transient {
		_ = add(rules.Transient, "")
	}
	if m.FixedSize {
		_ = add(rules.FixedSize, "")
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("match rule has no conditions")
	}
	return out, nil
}

// BuildLayout creates a layout prototype from its config.
func (c *Config) BuildLayout(l LayoutConfig) (tiling.Layout, error) {
	if err := validateLayout(l); err != nil {
		return nil, err
	}
	switch l.Type {
	case tiling.KindTall:
		pos := tiling.PositionTop
		if l.NewClientPosition != "" {
			pos = tiling.Position(l.NewClientPosition)
		}
		return tiling.NewTall(tiling.TallOptions{
			Name:              l.DisplayName(),
			Ratio:             l.Ratio,
			ChangeRatio:       l.ChangeRatio,
			Margin:            l.Margin,
			Border:            l.BorderWidth,
			NewClientPosition: pos,
		}), nil
	case tiling.KindMax:
		return tiling.NewMax(tiling.MaxOptions{Name: l.DisplayName(), Margin: l.Margin, Border: l.BorderWidth}), nil
	case tiling.KindColumns:
		return tiling.NewColumns(tiling.ColumnsOptions{
			Name:       l.DisplayName(),
			NumColumns: l.NumColumns,
			Margin:     l.Margin,
			Border:     l.BorderWidth,
		}), nil
	default:
		return tiling.NewFloating(tiling.FloatingOptions{Name: l.DisplayName(), Border: l.BorderWidth}), nil
	}
}

// GroupSpecs converts the group definitions, in declaration order.
func (c *Config) GroupSpecs() ([]group.Spec, error) {
	global, err := c.buildLayouts(c.Layouts)
	if err != nil {
		return nil, &ValidationError{Path: "layouts", Err: err}
	}
	specs := make([]group.Spec, 0, len(c.Groups))
	for i, g := range c.Groups {
		spec := group.Spec{Name: g.Name, Affinity: group.NoScreen, Layouts: global}
		if g.ScreenAffinity != nil {
			spec.Affinity = *g.ScreenAffinity
		}
		for j, m := range g.Matches {
			match, err := m.Build()
			if err != nil {
				return nil, &ValidationError{Path: fmt.Sprintf("groups.%d.matches.%d", i, j), Err: err}
			}
			spec.Matches = append(spec.Matches, match)
		}
		if len(g.Layouts) > 0 {
			own, err := c.buildLayouts(g.Layouts)
			if err != nil {
				return nil, &ValidationError{Path: fmt.Sprintf("groups.%d.layouts", i), Err: err}
			}
			spec.Layouts = own
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

func (c *Config) buildLayouts(list []LayoutConfig) ([]tiling.Layout, error) {
	out := make([]tiling.Layout, 0, len(list))
	for _, lc := range list {
		l, err := c.BuildLayout(lc)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, nil
}

// FloatTable builds the float rule table: defaults, then configured rules.
func (c *Config) FloatTable() (*rules.FloatTable, error) {
	var configured []rules.Match
	for i, m := range c.FloatRules {
		match, err := m.Build()
		if err != nil {
			return nil, &ValidationError{Path: fmt.Sprintf("float_rules.%d", i), Err: err}
		}
		configured = append(configured, match)
	}
	return rules.NewFloatTable(configured), nil
}

func (k KeyConfig) actions() []ActionConfig {
	var out []ActionConfig
	if k.Command != "" {
		out = append(out, ActionConfig{Command: k.Command, Args: k.Args})
	}
	return append(out, k.Actions...)
}

// Bindings converts key bindings into command bindings, in declaration
// order.
func (c *Config) Bindings() ([]command.Binding, error) {
	out := make([]command.Binding, 0, len(c.Keys))
	for i, k := range c.Keys {
		trigger, err := command.NewTrigger(k.Mods, k.Key)
		if err != nil {
			return nil, &ValidationError{Path: fmt.Sprintf("keys.%d", i), Err: err}
		}
		b := command.Binding{Trigger: trigger}
		for _, a := range k.actions() {
			b.Actions = append(b.Actions, command.Action{
				Command:    command.Command{Name: a.Command, Args: a.Args},
				WhenLayout: a.WhenLayout,
			})
		}
		out = append(out, b)
	}
	return out, nil
}

// UsableArea removes the screen's bar strip from its bounds.
func (c *Config) UsableArea(index int, bounds platform.Rect) platform.Rect {
	if index < 0 || index >= len(c.Screens) {
		return bounds
	}
	bar := c.Screens[index].Bar
	if bar.Size <= 0 || bar.Size >= bounds.Height {
		return bounds
	}
	out := bounds
	out.Height -= bar.Size
	if bar.Position != "bottom" {
		out.Y += bar.Size
	}
	return out
}

// GroupNames returns group names in declaration order.
func (c *Config) GroupNames() []string {
	out := make([]string, len(c.Groups))
	for i, g := range c.Groups {
		out[i] = g.Name
	}
	return out
}
