package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/vimwn/internal/ipc"
	"github.com/1broseidon/vimwn/internal/session"
)

type buffersMsg struct {
	buffers []session.BufferInfo
	err     error
}

type executeMsg struct {
	messages []ipc.MessageInfo
	err      error
}

func loadBuffers(d Daemon) tea.Cmd {
	return func() tea.Msg {
		bufs, err := d.Buffers()
		return buffersMsg{buffers: bufs, err: err}
	}
}

func executeCommand(d Daemon, line string) tea.Cmd {
	return func() tea.Msg {
		msgs, err := d.Execute(line)
		return executeMsg{messages: msgs, err: err}
	}
}

// BuffersTab lists the windows the daemon tracks and switches to them.
type BuffersTab struct {
	daemon  Daemon
	buffers []session.BufferInfo
	cursor  int
	status  string
	err     error

	width  int
	height int
}

func NewBuffersTab(d Daemon) BuffersTab {
	return BuffersTab{daemon: d}
}

func (b BuffersTab) Refresh() tea.Cmd {
	if b.daemon == nil {
		return nil
	}
	return loadBuffers(b.daemon)
}

func (b BuffersTab) Update(msg tea.Msg) (BuffersTab, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		b.width = msg.Width
		b.height = msg.Height

	case buffersMsg:
		b.err = msg.err
		if msg.err == nil {
			b.buffers = msg.buffers
		}
		if b.cursor >= len(b.buffers) {
			b.cursor = max(len(b.buffers)-1, 0)
		}

	case executeMsg:
		b.err = msg.err
		b.status = ""
		for _, m := range msg.messages {
			if m.Error {
				b.err = fmt.Errorf("%s", m.Text)
			} else {
				b.status = m.Text
			}
		}
		return b, b.Refresh()

	case tea.KeyMsg:
		switch msg.String() {
		case "j", "down":
			if b.cursor < len(b.buffers)-1 {
				b.cursor++
			}
		case "k", "up":
			if b.cursor > 0 {
				b.cursor--
			}
		case "r":
			return b, b.Refresh()
		case "enter":
			if b.daemon != nil && b.cursor < len(b.buffers) {
				return b, executeCommand(b.daemon, fmt.Sprintf("buffer %d", b.buffers[b.cursor].Number))
			}
		case "x":
			if b.daemon != nil && b.cursor < len(b.buffers) {
				return b, executeCommand(b.daemon, fmt.Sprintf("bdelete %d", b.buffers[b.cursor].Number))
			}
		}
	}
	return b, nil
}

func (b BuffersTab) View() string {
	style := lipgloss.NewStyle().Width(b.width).Height(b.height).Padding(1, 2)
	if b.daemon == nil {
		return style.Foreground(lipgloss.Color("241")).Render("daemon not running")
	}

	selected := lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Background(lipgloss.Color("62"))
	var lines []string
	for i, buf := range b.buffers {
		line := fmt.Sprintf("%3d %-3s %s", buf.Number, buf.Flags(), buf.Title)
		if buf.AppID != "" {
			line += dimStyle.Render("  " + buf.AppID)
		}
		if i == b.cursor {
			line = selected.Render(line)
		}
		lines = append(lines, line)
	}
	if len(lines) == 0 {
		lines = append(lines, dimStyle.Render("no windows"))
	}

	lines = append(lines, "")
	switch {
	case b.err != nil:
		lines = append(lines, lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render(b.err.Error()))
	case b.status != "":
		lines = append(lines, b.status)
	}
	lines = append(lines, dimStyle.Render("enter: switch  x: close  r: refresh"))
	return style.Render(strings.Join(lines, "\n"))
}
