package mcp

import "github.com/1broseidon/vimwn/internal/session"

// RunCommandInput is the input for the run_command tool.
type RunCommandInput struct {
	Command string `json:"command" jsonschema:"required,A vimwn command line without the leading colon, e.g. 'only', 'b 2', 'move 0 0' or '!ls'"`
}

// RunCommandOutput is the output for the run_command tool.
type RunCommandOutput struct {
	Messages []string `json:"messages"`
	Errors   []string `json:"errors,omitempty"`
}

// ListBuffersInput is the input for the list_buffers tool.
type ListBuffersInput struct {
	Filter string `json:"filter,omitempty" jsonschema:"Optional case-insensitive substring matched against title and application"`
}

// ListBuffersOutput is the output for the list_buffers tool.
type ListBuffersOutput struct {
	Buffers []session.BufferInfo `json:"buffers"`
}

// StatusInput is the input for the get_status tool.
type StatusInput struct{}

// StatusOutput is the output for the get_status tool.
type StatusOutput struct {
	Mode          string   `json:"mode"`
	BufferCount   int      `json:"buffer_count"`
	VisibleCount  int      `json:"visible_count"`
	Hotkeys       []string `json:"hotkeys,omitempty"`
	UptimeSeconds int64    `json:"uptime_seconds"`
}
