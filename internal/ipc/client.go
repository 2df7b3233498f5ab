package ipc

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/1broseidon/groupwm/internal/wm"
)

// ErrNotFound is returned by Dispatch when the daemon ignored a command
// about a window, group or screen that does not exist.
var ErrNotFound = errors.New("not found")

// Client handles IPC communication with the daemon
type Client struct {
	socketPath string
	timeout    time.Duration
}

// NewClient creates a new IPC client for the socket at socketPath.
func NewClient(socketPath string) *Client {
	return &Client{
		socketPath: socketPath,
		timeout:    5 * time.Second,
	}
}

// sendRequest sends a request and waits for a response
func (c *Client) sendRequest(req *Request) (*Response, error) {
	conn, err := net.DialTimeout("unix", c.socketPath, c.timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to daemon: %w (is the daemon running?)", err)
	}
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(c.timeout))

	reqData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	reqData = append(reqData, '\n')
	if _, err := conn.Write(reqData); err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	reader := bufio.NewReader(conn)
	respData, err := reader.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var resp Response
	if err := json.Unmarshal(respData, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if resp.Status == "ERROR" {
		if resp.NotFound {
			return nil, fmt.Errorf("daemon error: %s: %w", resp.Error, ErrNotFound)
		}
		return nil, fmt.Errorf("daemon error: %s", resp.Error)
	}

	return &resp, nil
}

func (c *Client) query(cmd CommandType, out any) error {
	resp, err := c.sendRequest(&Request{Command: cmd})
	if err != nil {
		return err
	}
	if err := json.Unmarshal(resp.Data, out); err != nil {
		return fmt.Errorf("failed to parse %s data: %w", cmd, err)
	}
	return nil
}

// Status retrieves the engine's latest snapshot.
func (c *Client) Status() (*wm.Snapshot, error) {
	var s wm.Snapshot
	if err := c.query(CommandGetStatus, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Dispatch runs a command in the daemon and waits for it to be applied.
func (c *Client) Dispatch(name string, args ...string) error {
	payload, err := json.Marshal(DispatchPayload{Name: name, Args: args})
	if err != nil {
		return fmt.Errorf("failed to marshal dispatch payload: %w", err)
	}
	_, err = c.sendRequest(&Request{Command: CommandDispatch, Payload: payload})
	return err
}

// Bindings lists the daemon's resolved key bindings.
func (c *Client) Bindings() (*BindingsData, error) {
	var data BindingsData
	if err := c.query(CommandListBindings, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// Commands lists the daemon's command table.
func (c *Client) Commands() (*CommandsData, error) {
	var data CommandsData
	if err := c.query(CommandListCommands, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// Ping checks if the daemon is responding
func (c *Client) Ping() error {
	_, err := c.Status()
	return err
}
