// Package mcp exposes the running vimwn daemon to MCP clients.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/vimwn/internal/ipc"
	"github.com/1broseidon/vimwn/internal/logging"
	"github.com/1broseidon/vimwn/internal/session"
)

const (
	ServerName    = "vimwn"
	ServerVersion = "0.1.0"
)

// Daemon is the part of the IPC client the tools use.
type Daemon interface {
	Execute(command string) ([]ipc.MessageInfo, error)
	Buffers() ([]session.BufferInfo, error)
	GetStatus() (*ipc.StatusData, error)
}

var _ Daemon = (*ipc.Client)(nil)

// Server is the MCP server. Every tool call is forwarded to the daemon.
type Server struct {
	mcpServer *mcpsdk.Server
	daemon    Daemon
}

// NewServer creates an MCP server backed by daemon.
func NewServer(daemon Daemon) (*Server, error) {
	if daemon == nil {
		return nil, errors.New("daemon client is required")
	}
	s := &Server{daemon: daemon}
	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)
	s.registerTools()
	return s, nil
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "run_command",
		Description: "Run one vimwn command line against the current X11 desktop, exactly as typed after ':' in the overlay. Commands: only, buffers (ls), buffer N|name (b), bdelete [N...|name] (bd), centralize (ce), maximize (max), decorate NAME, move X Y, edit APP (e), !SHELL. Returns the status messages the command produced.",
	}, s.handleRunCommand)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_buffers",
		Description: "List the open windows (buffers) with their 1-based numbers, titles, applications, owning process and workspace. Numbers can be passed to 'buffer' and 'bdelete'.",
	}, s.handleListBuffers)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "get_status",
		Description: "Report whether the vimwn daemon is running, its overlay mode and the number of windows it tracks.",
	}, s.handleStatus)
}

func (s *Server) handleRunCommand(_ context.Context, _ *mcpsdk.CallToolRequest, args RunCommandInput) (*mcpsdk.CallToolResult, RunCommandOutput, error) {
	cmd := strings.TrimPrefix(strings.TrimSpace(args.Command), ":")
	if cmd == "" {
		return nil, RunCommandOutput{}, fmt.Errorf("command is required")
	}

	msgs, err := s.daemon.Execute(cmd)
	if err != nil {
		logging.Warn().Err(err).Str("command", cmd).Msg("mcp run_command failed")
		return nil, RunCommandOutput{}, err
	}

	out := RunCommandOutput{Messages: []string{}}
	for _, m := range msgs {
		if m.Error {
			out.Errors = append(out.Errors, m.Text)
		} else {
			out.Messages = append(out.Messages, m.Text)
		}
	}
	return nil, out, nil
}

func (s *Server) handleListBuffers(_ context.Context, _ *mcpsdk.CallToolRequest, args ListBuffersInput) (*mcpsdk.CallToolResult, ListBuffersOutput, error) {
	bufs, err := s.daemon.Buffers()
	if err != nil {
		return nil, ListBuffersOutput{}, err
	}

	filter := strings.ToLower(strings.TrimSpace(args.Filter))
	out := ListBuffersOutput{Buffers: make([]session.BufferInfo, 0, len(bufs))}
	for _, b := range bufs {
		if filter != "" &&
			!strings.Contains(strings.ToLower(b.Title), filter) &&
			!strings.Contains(strings.ToLower(b.AppID), filter) {
			continue
		}
		out.Buffers = append(out.Buffers, b)
	}
	return nil, out, nil
}

func (s *Server) handleStatus(_ context.Context, _ *mcpsdk.CallToolRequest, _ StatusInput) (*mcpsdk.CallToolResult, StatusOutput, error) {
	status, err := s.daemon.GetStatus()
	if err != nil {
		return nil, StatusOutput{}, err
	}
	return nil, StatusOutput{
		Mode:          status.Mode,
		BufferCount:   status.BufferCount,
		VisibleCount:  status.VisibleCount,
		Hotkeys:       status.Hotkeys,
		UptimeSeconds: status.UptimeSeconds,
	}, nil
}
