package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"os"
	"sync"

	"github.com/1broseidon/vimwn/internal/logging"
	"github.com/1broseidon/vimwn/internal/runtimepath"
	"github.com/1broseidon/vimwn/internal/session"
)

// Handler executes IPC requests inside the daemon.
type Handler interface {
	Show(command bool, text string) error
	Execute(text string) ([]session.Message, error)
	Buffers() ([]session.BufferInfo, error)
	Status() StatusData
	Reload() error
}

// Server handles IPC requests from clients
type Server struct {
	socketPath   string
	listener     net.Listener
	handler      Handler
	shuttingDown bool
	shutdownMu   sync.Mutex
	wg           sync.WaitGroup
}

// NewServer creates a new IPC server on the default socket path.
func NewServer(handler Handler) (*Server, error) {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve IPC socket path: %w", err)
	}
	return NewServerAt(socketPath, handler), nil
}

// NewServerAt creates a server listening on socketPath.
func NewServerAt(socketPath string, handler Handler) *Server {
	// Remove existing socket if present
	os.Remove(socketPath)

	return &Server{
		socketPath: socketPath,
		handler:    handler,
	}
}

// SocketPath returns the path the server listens on.
func (s *Server) SocketPath() string { return s.socketPath }

// Start begins listening for IPC connections
func (s *Server) Start() error {
	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create IPC socket: %w", err)
	}
	s.listener = listener

	// Set socket permissions
	if err := os.Chmod(s.socketPath, 0600); err != nil {
		listener.Close()
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	logging.Info().Str("socket", s.socketPath).Msg("IPC server listening")

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
			logging.Warn().Err(err).Msg("IPC accept error")
			continue
		}

		go s.handleConnection(conn)
	}
}

// handleConnection handles a single IPC connection
func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()

	reader := bufio.NewReader(conn)

	// Read the request (expect JSON on a single line)
	data, err := reader.ReadBytes('\n')
	if err != nil && err != io.EOF {
		logging.Warn().Err(err).Msg("IPC read error")
		return
	}

	req, err := ParseRequest(data)
	if err != nil {
		s.sendError(conn, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	resp := s.handleCommand(req)

	respData, err := resp.Marshal()
	if err != nil {
		logging.Error().Err(err).Msg("failed to marshal IPC response")
		return
	}

	respData = append(respData, '\n')
	if _, err := conn.Write(respData); err != nil {
		logging.Warn().Err(err).Msg("failed to send IPC response")
	}
}

// handleCommand processes an IPC command and returns a response
func (s *Server) handleCommand(req *Request) *Response {
	logging.Debug().Str("command", string(req.Command)).Msg("IPC request")
	switch req.Command {
	case CommandShow:
		return s.handleShow(false, nil)
	case CommandShowCommand:
		return s.handleShow(true, req.Payload)
	case CommandExecute:
		return s.handleExecute(req.Payload)
	case CommandBuffers:
		return s.handleBuffers()
	case CommandGetStatus:
		resp, _ := NewOKResponse(s.handler.Status())
		return resp
	case CommandReload:
		return s.handleReload()
	default:
		return NewErrorResponse(fmt.Sprintf("Unknown command: %s", req.Command))
	}
}

func (s *Server) handleShow(command bool, payload json.RawMessage) *Response {
	var req ShowPayload
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &req); err != nil {
			return NewErrorResponse(fmt.Sprintf("Invalid show payload: %v", err))
		}
	}
	if err := s.handler.Show(command, req.Text); err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to show overlay: %v", err))
	}
	resp, _ := NewOKResponse(nil)
	return resp
}

func (s *Server) handleExecute(payload json.RawMessage) *Response {
	var req ExecutePayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid execute payload: %v", err))
	}
	if req.Command == "" {
		return NewErrorResponse("command is required")
	}

	msgs, err := s.handler.Execute(req.Command)
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	resp, err := NewOKResponse(ExecuteData{Messages: MessagesFromSession(msgs)})
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	return resp
}

func (s *Server) handleBuffers() *Response {
	bufs, err := s.handler.Buffers()
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to list buffers: %v", err))
	}
	resp, err := NewOKResponse(BuffersData{Buffers: bufs})
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	return resp
}

// handleReload reloads the configuration
func (s *Server) handleReload() *Response {
	logging.Info().Msg("IPC: received RELOAD")
	if err := s.handler.Reload(); err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to reload config: %v", err))
	}
	resp, _ := NewOKResponse(nil)
	return resp
}

// sendError sends an error response
func (s *Server) sendError(conn net.Conn, errMsg string) {
	resp := NewErrorResponse(errMsg)
	data, _ := resp.Marshal()
	data = append(data, '\n')
	conn.Write(data)
}

// Stop gracefully shuts down the IPC server
func (s *Server) Stop() {
	s.shutdownMu.Lock()
	s.shuttingDown = true
	s.shutdownMu.Unlock()

	if s.listener != nil {
		s.listener.Close()
		s.wg.Wait()
	}
	os.Remove(s.socketPath)
}
