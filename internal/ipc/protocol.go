package ipc

import (
	"encoding/json"
	"fmt"

	"github.com/1broseidon/vimwn/internal/session"
)

// CommandType represents different IPC command types
type CommandType string

const (
	CommandShow        CommandType = "SHOW"
	CommandShowCommand CommandType = "SHOW_COMMAND"
	CommandExecute     CommandType = "EXECUTE"
	CommandBuffers     CommandType = "BUFFERS"
	CommandGetStatus   CommandType = "GET_STATUS"
	CommandReload      CommandType = "RELOAD"
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
}

// StatusData represents the data returned by GET_STATUS
type StatusData struct {
	Mode          string   `json:"mode"`
	BufferCount   int      `json:"buffer_count"`
	VisibleCount  int      `json:"visible_count"`
	ConfigPath    string   `json:"config_path,omitempty"`
	Hotkeys       []string `json:"hotkeys,omitempty"`
	UptimeSeconds int64    `json:"uptime_seconds"`
	DaemonRunning bool     `json:"daemon_running"`
}

// ShowPayload represents the payload for SHOW_COMMAND.
type ShowPayload struct {
	// Text pre-fills the command line.
	Text string `json:"text,omitempty"`
}

// ExecutePayload represents the payload for EXECUTE.
type ExecutePayload struct {
	Command string `json:"command"`
}

// MessageInfo is one status message produced by a command.
type MessageInfo struct {
	Text  string `json:"text"`
	Error bool   `json:"error,omitempty"`
}

// ExecuteData represents the data returned by EXECUTE.
type ExecuteData struct {
	Messages []MessageInfo `json:"messages"`
}

// BuffersData represents the data returned by BUFFERS.
type BuffersData struct {
	Buffers []session.BufferInfo `json:"buffers"`
}

// MessagesFromSession converts session messages to their wire form.
func MessagesFromSession(msgs []session.Message) []MessageInfo {
	out := make([]MessageInfo, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, MessageInfo{Text: m.Text, Error: m.Level == session.LevelError})
	}
	return out
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
