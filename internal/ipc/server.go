package ipc

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"os"
	"sync"
	"time"

	"github.com/1broseidon/groupwm/internal/command"
	"github.com/1broseidon/groupwm/internal/logger"
	"github.com/1broseidon/groupwm/internal/wm"
)

// Engine is the part of the window manager the server talks to.
// *wm.Engine satisfies it.
type Engine interface {
	Snapshot() *wm.Snapshot
	Bindings() []command.Binding
	Do(ctx context.Context, c command.Command) error
}

// Server handles IPC requests from clients
type Server struct {
	socketPath   string
	listener     net.Listener
	engine       Engine
	log          *logger.Logger
	timeout      time.Duration
	ctx          context.Context
	cancel       context.CancelFunc
	shuttingDown bool
	shutdownMu   sync.Mutex
	wg           sync.WaitGroup
}

// NewServer creates a new IPC server
func NewServer(socketPath string, engine Engine, log *logger.Logger) *Server {
	if log == nil {
		log = logger.Nop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		socketPath: socketPath,
		engine:     engine,
		log:        log,
		timeout:    5 * time.Second,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Start begins listening for IPC connections
func (s *Server) Start() error {
	// Remove a stale socket left by a previous run.
	os.Remove(s.socketPath)

	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create IPC socket: %w", err)
	}
	s.listener = listener

	if err := os.Chmod(s.socketPath, 0600); err != nil {
		listener.Close()
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	s.log.Info("IPC server listening", "socket", s.socketPath)

	s.wg.Add(1)
	go s.acceptLoop()

	return nil
}

// acceptLoop accepts incoming connections
func (s *Server) acceptLoop() {
	defer s.wg.Done()
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.shutdownMu.Lock()
			if s.shuttingDown {
				s.shutdownMu.Unlock()
				return
			}
			s.shutdownMu.Unlock()
			s.log.Warn("IPC accept error", "error", err.Error())
			continue
		}

		go s.handleConnection(conn)
	}
}

// handleConnection handles a single IPC connection
func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(2 * s.timeout))

	reader := bufio.NewReader(conn)

	// Read the request (expect JSON on a single line)
	data, err := reader.ReadBytes('\n')
	if err != nil && err != io.EOF {
		s.log.Debug("IPC read error", "error", err.Error())
		return
	}

	req, err := ParseRequest(data)
	if err != nil {
		s.send(conn, NewErrorResponse(fmt.Sprintf("Invalid request: %v", err)))
		return
	}

	s.send(conn, s.handleCommand(req))
}

// handleCommand processes an IPC command and returns a response
func (s *Server) handleCommand(req *Request) *Response {
	switch req.Command {
	case CommandGetStatus:
		resp, _ := NewOKResponse(s.engine.Snapshot())
		return resp
	case CommandDispatch:
		return s.handleDispatch(req.Payload)
	case CommandListBindings:
		return s.handleListBindings()
	case CommandListCommands:
		return s.handleListCommands()
	default:
		return NewErrorResponse(fmt.Sprintf("Unknown command: %s", req.Command))
	}
}

func (s *Server) handleDispatch(payload json.RawMessage) *Response {
	var p DispatchPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid dispatch payload: %v", err))
	}
	if p.Name == "" {
		return NewErrorResponse("name is required")
	}
	c := command.Command{Name: p.Name, Args: p.Args}
	if c.Name == command.ReloadConfig {
		return NewErrorResponse("reload_config is only available from key bindings")
	}
	if err := command.Check(c, nil); err != nil {
		return NewErrorResponse(err.Error())
	}

	ctx, cancel := context.WithTimeout(s.ctx, s.timeout)
	defer cancel()

	s.log.Debug("IPC dispatch", "command", c.String())
	if err := s.engine.Do(ctx, c); err != nil {
		resp := NewErrorResponse(err.Error())
		resp.NotFound = wm.IsNotFound(err)
		return resp
	}
	resp, _ := NewOKResponse(nil)
	return resp
}

func (s *Server) handleListBindings() *Response {
	bindings := s.engine.Bindings()
	data := BindingsData{Bindings: make([]BindingInfo, 0, len(bindings))}
	for _, b := range bindings {
		info := BindingInfo{Trigger: b.Trigger.String()}
		for _, a := range b.Actions {
			action := a.Command.String()
			if len(a.WhenLayout) > 0 {
				action += fmt.Sprintf(" (when layout %v)", a.WhenLayout)
			}
			info.Actions = append(info.Actions, action)
		}
		data.Bindings = append(data.Bindings, info)
	}
	resp, _ := NewOKResponse(data)
	return resp
}

func (s *Server) handleListCommands() *Response {
	names := command.Names()
	data := CommandsData{Commands: make([]CommandInfo, 0, len(names))}
	for _, name := range names {
		spec, _ := command.Lookup(name)
		data.Commands = append(data.Commands, CommandInfo{Name: name, Description: spec.Description})
	}
	resp, _ := NewOKResponse(data)
	return resp
}

func (s *Server) send(conn net.Conn, resp *Response) {
	data, err := resp.Marshal()
	if err != nil {
		s.log.Error("failed to marshal IPC response", err)
		return
	}
	data = append(data, '\n')
	if _, err := conn.Write(data); err != nil {
		s.log.Debug("failed to send IPC response", "error", err.Error())
	}
}

// Stop gracefully shuts down the IPC server
func (s *Server) Stop() {
	s.shutdownMu.Lock()
	s.shuttingDown = true
	s.shutdownMu.Unlock()

	s.cancel()
	if s.listener != nil {
		s.listener.Close()
	}
	s.wg.Wait()
	os.Remove(s.socketPath)
}
