// Package mcp exposes the running window manager to MCP clients over stdio.
// Every tool is a thin call through the daemon's IPC socket.
package mcp

import (
	"context"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/groupwm/internal/ipc"
	"github.com/1broseidon/groupwm/internal/logger"
	"github.com/1broseidon/groupwm/internal/wm"
)

const (
	ServerName    = "groupwm"
	ServerVersion = "0.1.0"
)

// Daemon is the IPC surface the tools use. *ipc.Client satisfies it.
type Daemon interface {
	Status() (*wm.Snapshot, error)
	Dispatch(name string, args ...string) error
	Bindings() (*ipc.BindingsData, error)
	Commands() (*ipc.CommandsData, error)
}

// Server is the MCP server for querying and driving the window manager.
type Server struct {
	mcpServer *mcpsdk.Server
	daemon    Daemon
	log       *logger.Logger
}

// NewServer creates a new MCP server backed by daemon.
func NewServer(daemon Daemon, log *logger.Logger) *Server {
	if log == nil {
		log = logger.Nop()
	}
	s := &Server{daemon: daemon, log: log}
	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)
	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "get_status",
		Description: "Show the current group and layout, the focused window title, every group with its layout, screen (-1 when hidden) and window count, and every screen with the group it displays.",
	}, s.handleGetStatus)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_windows",
		Description: "List managed windows with class, title, group and floating/fullscreen/minimized/urgent flags. Optionally filter by group.",
	}, s.handleListWindows)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "dispatch",
		Description: "Run a window manager command, exactly as a key binding would, and wait until it is applied. Commands about a missing window, group or screen are reported as ignored.",
	}, s.handleDispatch)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_bindings",
		Description: "List key bindings as resolved by the daemon: trigger and the commands it runs. When two bindings share a trigger only the last one is listed.",
	}, s.handleListBindings)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_commands",
		Description: "List every command name accepted by dispatch, with a short description.",
	}, s.handleListCommands)
}
