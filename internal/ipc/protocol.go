package ipc

import (
	"encoding/json"
	"fmt"
)

// CommandType represents different IPC command types
type CommandType string

const (
	CommandGetStatus    CommandType = "GET_STATUS"
	CommandDispatch     CommandType = "DISPATCH"
	CommandListBindings CommandType = "LIST_BINDINGS"
	CommandListCommands CommandType = "LIST_COMMANDS"
)

// Request represents an IPC request from client to server
type Request struct {
	Command CommandType     `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response represents an IPC response from server to client
type Response struct {
	Status string          `json:"status"` // "OK" or "ERROR"
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
	// NotFound marks errors about a window, group or screen that does not
	// exist; the daemon treated them as no-ops.
	NotFound bool `json:"not_found,omitempty"`
}

// DispatchPayload is the payload of DISPATCH.
type DispatchPayload struct {
	Name string   `json:"name"`
	Args []string `json:"args,omitempty"`
}

// BindingInfo describes one resolved key binding.
type BindingInfo struct {
	Trigger string   `json:"trigger"`
	Actions []string `json:"actions"`
}

// BindingsData represents the data returned by LIST_BINDINGS
type BindingsData struct {
	Bindings []BindingInfo `json:"bindings"`
}

// CommandInfo describes one entry of the command table.
type CommandInfo struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// CommandsData represents the data returned by LIST_COMMANDS
type CommandsData struct {
	Commands []CommandInfo `json:"commands"`
}

// NewOKResponse creates a successful response with optional data
func NewOKResponse(data interface{}) (*Response, error) {
	var dataBytes json.RawMessage
	if data != nil {
		bytes, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response data: %w", err)
		}
		dataBytes = bytes
	}

	return &Response{
		Status: "OK",
		Data:   dataBytes,
	}, nil
}

// NewErrorResponse creates an error response with a message
func NewErrorResponse(errMsg string) *Response {
	return &Response{
		Status: "ERROR",
		Error:  errMsg,
	}
}

// ParseRequest parses a request from JSON bytes
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	return &req, nil
}

// Marshal converts a response to JSON bytes
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}
