// Package tui implements the interactive configuration editor.
package tui

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/1broseidon/vimwn/internal/config"
	"github.com/1broseidon/vimwn/internal/ipc"
	"github.com/1broseidon/vimwn/internal/session"
)

// Daemon is the part of the IPC client the editor talks to.
type Daemon interface {
	GetStatus() (*ipc.StatusData, error)
	Buffers() ([]session.BufferInfo, error)
	Execute(command string) ([]ipc.MessageInfo, error)
	Reload() error
}

var _ Daemon = (*ipc.Client)(nil)

// Run starts the editor on the loaded configuration. Changes are written to
// res.Path and the daemon, when running, is asked to reload.
func Run(res *config.LoadResult, daemon Daemon) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("config editor requires an interactive terminal (stdin/stdout must be TTYs)")
	}
	if res == nil || res.Config == nil {
		return fmt.Errorf("no configuration loaded")
	}
	if res.Path == "" {
		path, err := config.DefaultConfigPath()
		if err != nil {
			return err
		}
		res.Path = path
	}

	p := tea.NewProgram(newModel(res, daemon), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
