package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/1broseidon/vimwn/internal/runtimepath"
	"github.com/1broseidon/vimwn/internal/session"
)

// Client handles IPC communication with the daemon
type Client struct {
	socketPath string
	timeout    time.Duration
}

// NewClient creates a new IPC client
func NewClient() *Client {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		// Keep constructor non-failing; sendRequest surfaces connection errors.
		socketPath = ""
	}
	return NewClientAt(socketPath)
}

// NewClientAt creates a client for the daemon listening on socketPath.
func NewClientAt(socketPath string) *Client {
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
		return nil, fmt.Errorf("daemon error: %s", resp.Error)
	}

	return &resp, nil
}

// Show opens the overlay in Key mode.
func (c *Client) Show() error {
	_, err := c.sendRequest(&Request{Command: CommandShow})
	return err
}

// ShowCommand opens the overlay in Command mode with text pre-filled.
func (c *Client) ShowCommand(text string) error {
	payload, err := json.Marshal(ShowPayload{Text: text})
	if err != nil {
		return fmt.Errorf("failed to marshal show payload: %w", err)
	}
	_, err = c.sendRequest(&Request{Command: CommandShowCommand, Payload: payload})
	return err
}

// Execute runs one command line in the daemon and returns its messages.
func (c *Client) Execute(command string) ([]MessageInfo, error) {
	payload, err := json.Marshal(ExecutePayload{Command: command})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal execute payload: %w", err)
	}

	resp, err := c.sendRequest(&Request{Command: CommandExecute, Payload: payload})
	if err != nil {
		return nil, err
	}

	var data ExecuteData
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		return nil, fmt.Errorf("failed to parse execute data: %w", err)
	}
	return data.Messages, nil
}

// Buffers retrieves the daemon's buffer list.
func (c *Client) Buffers() ([]session.BufferInfo, error) {
	resp, err := c.sendRequest(&Request{Command: CommandBuffers})
	if err != nil {
		return nil, err
	}

	var data BuffersData
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		return nil, fmt.Errorf("failed to parse buffers data: %w", err)
	}
	return data.Buffers, nil
}

// GetStatus retrieves daemon status
func (c *Client) GetStatus() (*StatusData, error) {
	resp, err := c.sendRequest(&Request{Command: CommandGetStatus})
	if err != nil {
		return nil, err
	}

	var status StatusData
	if err := json.Unmarshal(resp.Data, &status); err != nil {
		return nil, fmt.Errorf("failed to parse status data: %w", err)
	}
	return &status, nil
}

// Reload sends a RELOAD command to the daemon
func (c *Client) Reload() error {
	_, err := c.sendRequest(&Request{Command: CommandReload})
	return err
}

// Ping checks if the daemon is responding
func (c *Client) Ping() error {
	_, err := c.GetStatus()
	return err
}
