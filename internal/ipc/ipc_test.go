package ipc

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/1broseidon/vimwn/internal/session"
)

type fakeHandler struct {
	shows    []string
	executed []string
	execErr  error
	reloads  int
}

func (f *fakeHandler) Show(command bool, text string) error {
	if command {
		f.shows = append(f.shows, ":"+text)
	} else {
		f.shows = append(f.shows, "key")
	}
	return nil
}

func (f *fakeHandler) Execute(text string) ([]session.Message, error) {
	f.executed = append(f.executed, text)
	if f.execErr != nil {
		return nil, f.execErr
	}
	return []session.Message{
		{Text: "ok"},
		{Text: "bad", Level: session.LevelError},
	}, nil
}

func (f *fakeHandler) Buffers() ([]session.BufferInfo, error) {
	return []session.BufferInfo{{Number: 1, ID: 7, Title: "term", Active: true}}, nil
}

func (f *fakeHandler) Status() StatusData {
	return StatusData{Mode: "normal", BufferCount: 1, DaemonRunning: true}
}

func (f *fakeHandler) Reload() error {
	f.reloads++
	return nil
}

func startServer(t *testing.T, h Handler) *Client {
	t.Helper()
	// Unix socket paths are short; t.TempDir() can exceed the limit.
	dir, err := os.MkdirTemp("", "vimwn-ipc")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })

	srv := NewServerAt(filepath.Join(dir, "s.sock"), h)
	if err := srv.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	t.Cleanup(srv.Stop)
	return NewClientAt(srv.SocketPath())
}

func TestClientServerRoundTrip(t *testing.T) {
	h := &fakeHandler{}
	c := startServer(t, h)

	if err := c.Show(); err != nil {
		t.Fatalf("Show() error = %v", err)
	}
	if err := c.ShowCommand("b "); err != nil {
		t.Fatalf("ShowCommand() error = %v", err)
	}
	if !reflect.DeepEqual(h.shows, []string{"key", ":b "}) {
		t.Fatalf("shows = %v", h.shows)
	}

	msgs, err := c.Execute("only")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	want := []MessageInfo{{Text: "ok"}, {Text: "bad", Error: true}}
	if !reflect.DeepEqual(msgs, want) {
		t.Fatalf("Execute() = %+v, want %+v", msgs, want)
	}

	bufs, err := c.Buffers()
	if err != nil || len(bufs) != 1 || bufs[0].ID != 7 || !bufs[0].Active {
		t.Fatalf("Buffers() = %+v, %v", bufs, err)
	}

	status, err := c.GetStatus()
	if err != nil || status.Mode != "normal" || !status.DaemonRunning {
		t.Fatalf("GetStatus() = %+v, %v", status, err)
	}

	if err := c.Reload(); err != nil || h.reloads != 1 {
		t.Fatalf("Reload() error = %v, reloads = %d", err, h.reloads)
	}
}

func TestExecuteErrors(t *testing.T) {
	h := &fakeHandler{execErr: errors.New("window system gone")}
	c := startServer(t, h)

	if _, err := c.Execute("only"); err == nil || !strings.Contains(err.Error(), "window system gone") {
		t.Fatalf("expected daemon error, got %v", err)
	}
	if _, err := c.Execute(""); err == nil || !strings.Contains(err.Error(), "command is required") {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(h.executed) != 1 {
		t.Fatalf("executed = %v", h.executed)
	}
}

func TestClientWithoutDaemon(t *testing.T) {
	c := NewClientAt(filepath.Join(t.TempDir(), "missing.sock"))
	if err := c.Ping(); err == nil || !strings.Contains(err.Error(), "is the daemon running") {
		t.Fatalf("expected connection error, got %v", err)
	}
}

func TestHandleCommand_Unknown(t *testing.T) {
	srv := &Server{handler: &fakeHandler{}}
	resp := srv.handleCommand(&Request{Command: "TILE"})
	if resp.Status != "ERROR" || !strings.Contains(resp.Error, "Unknown command") {
		t.Fatalf("unexpected response: %+v", resp)
	}
}
