package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/groupwm/internal/command"
	"github.com/1broseidon/groupwm/internal/ipc"
	"github.com/1broseidon/groupwm/internal/wm"
)

func (s *Server) handleGetStatus(_ context.Context, _ *mcpsdk.CallToolRequest, _ StatusInput) (*mcpsdk.CallToolResult, StatusOutput, error) {
	snap, err := s.daemon.Status()
	if err != nil {
		return nil, StatusOutput{}, err
	}
	return nil, StatusOutput{
		Group:         snap.Group,
		Layout:        snap.Layout,
		FocusedScreen: snap.FocusedScreen,
		FocusedTitle:  snap.FocusedTitle,
		Groups:        snap.Groups,
		Screens:       snap.Screens,
	}, nil
}

func (s *Server) handleListWindows(_ context.Context, _ *mcpsdk.CallToolRequest, args ListWindowsInput) (*mcpsdk.CallToolResult, ListWindowsOutput, error) {
	snap, err := s.daemon.Status()
	if err != nil {
		return nil, ListWindowsOutput{}, err
	}
	if args.Group != "" {
		if _, ok := snap.WindowCount(args.Group); !ok {
			return nil, ListWindowsOutput{}, fmt.Errorf("unknown group %q", args.Group)
		}
	}
	out := ListWindowsOutput{Windows: []wm.WindowStatus{}}
	for _, w := range snap.Windows {
		if args.Group == "" || w.Group == args.Group {
			out.Windows = append(out.Windows, w)
		}
	}
	return nil, out, nil
}

func (s *Server) handleDispatch(_ context.Context, _ *mcpsdk.CallToolRequest, args DispatchInput) (*mcpsdk.CallToolResult, DispatchOutput, error) {
	if args.Command == "" {
		return nil, DispatchOutput{}, fmt.Errorf("command is required")
	}
	out := DispatchOutput{Command: args.Command}
	err := s.daemon.Dispatch(args.Command, args.Args...)
	switch {
	case err == nil:
	case errors.Is(err, ipc.ErrNotFound):
		out.Ignored = true
		out.Reason = err.Error()
	default:
		return nil, DispatchOutput{}, err
	}
	s.log.Debug("mcp dispatch", "command", args.Command, "args", args.Args, "ignored", out.Ignored)
	return nil, out, nil
}

func (s *Server) handleListBindings(_ context.Context, _ *mcpsdk.CallToolRequest, args ListBindingsInput) (*mcpsdk.CallToolResult, ListBindingsOutput, error) {
	data, err := s.daemon.Bindings()
	if err != nil {
		return nil, ListBindingsOutput{}, err
	}
	want := ""
	if args.Trigger != "" {
		if want, err = normalizeTrigger(args.Trigger); err != nil {
			return nil, ListBindingsOutput{}, err
		}
	}
	out := ListBindingsOutput{Bindings: []BindingInfo{}}
	for _, b := range data.Bindings {
		if want != "" && b.Trigger != want {
			continue
		}
		out.Bindings = append(out.Bindings, BindingInfo{Trigger: b.Trigger, Actions: b.Actions})
	}
	return nil, out, nil
}

func (s *Server) handleListCommands(_ context.Context, _ *mcpsdk.CallToolRequest, _ ListCommandsInput) (*mcpsdk.CallToolResult, ListCommandsOutput, error) {
	data, err := s.daemon.Commands()
	if err != nil {
		return nil, ListCommandsOutput{}, err
	}
	out := ListCommandsOutput{Commands: make([]CommandInfo, 0, len(data.Commands))}
	for _, c := range data.Commands {
		out.Commands = append(out.Commands, CommandInfo{Name: c.Name, Description: c.Description})
	}
	return nil, out, nil
}

// normalizeTrigger accepts aliases and any modifier order, e.g.
// "shift-super-h" becomes "shift-mod4-h".
func normalizeTrigger(s string) (string, error) {
	parts := strings.Split(s, "-")
	t, err := command.NewTrigger(parts[:len(parts)-1], parts[len(parts)-1])
	if err != nil {
		return "", fmt.Errorf("invalid trigger %q: %w", s, err)
	}
	return t.String(), nil
}
