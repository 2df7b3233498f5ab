package mcp

import "github.com/1broseidon/groupwm/internal/wm"

// StatusInput is the input for the get_status tool.
type StatusInput struct{}

// StatusOutput is the output for the get_status tool.
type StatusOutput struct {
	Group         string            `json:"group"`
	Layout        string            `json:"layout"`
	FocusedScreen int               `json:"focused_screen"`
	FocusedTitle  string            `json:"focused_title"`
	Groups        []wm.GroupStatus  `json:"groups"`
	Screens       []wm.ScreenStatus `json:"screens"`
}

// ListWindowsInput is the input for the list_windows tool.
type ListWindowsInput struct {
	Group string `json:"group,omitempty" jsonschema:"Only list windows in this group"`
}

// ListWindowsOutput is the output for the list_windows tool.
type ListWindowsOutput struct {
	Windows []wm.WindowStatus `json:"windows"`
}

// DispatchInput is the input for the dispatch tool.
type DispatchInput struct {
	Command string   `json:"command" jsonschema:"required,Command name from list_commands (e.g. group.toscreen, layout.grow_main)"`
	Args    []string `json:"args,omitempty" jsonschema:"Command arguments, e.g. a group name or two integers"`
}

// DispatchOutput is the output for the dispatch tool.
type DispatchOutput struct {
	Command string `json:"command"`
	// Ignored is set when the command named a window, group or screen that
	// does not exist; nothing changed.
	Ignored bool   `json:"ignored,omitempty"`
	Reason  string `json:"reason,omitempty"`
}

// ListBindingsInput is the input for the list_bindings tool.
type ListBindingsInput struct {
	Trigger string `json:"trigger,omitempty" jsonschema:"Only show the binding for this trigger, e.g. mod4-shift-h"`
}

// ListBindingsOutput is the output for the list_bindings tool.
type ListBindingsOutput struct {
	Bindings []BindingInfo `json:"bindings"`
}

// BindingInfo describes one key binding.
type BindingInfo struct {
	Trigger string   `json:"trigger"`
	Actions []string `json:"actions"`
}

// ListCommandsInput is the input for the list_commands tool.
type ListCommandsInput struct{}

// CommandInfo describes one command.
type CommandInfo struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// ListCommandsOutput is the output for the list_commands tool.
type ListCommandsOutput struct {
	Commands []CommandInfo `json:"commands"`
}
