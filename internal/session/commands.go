package session

import (
	"errors"
	"fmt"
	"strings"

	"github.com/1broseidon/vimwn/internal/command"
	"github.com/1broseidon/vimwn/internal/logging"
	"github.com/1broseidon/vimwn/internal/platform"
	"github.com/1broseidon/vimwn/internal/windows"
)

// Outcome tells the session where to go after a command succeeded.
type Outcome int

const (
	// OutcomeKey keeps the overlay open, unless navigation was committed.
	OutcomeKey Outcome = iota
	// OutcomeHide returns to Normal mode.
	OutcomeHide
)

type handler func(s *Session, in command.Input) (Outcome, error)

var commandSet = command.NewSet(
	command.Command{Name: "only"},
	command.Command{Name: "buffers", Aliases: []string{"ls", "files"}},
	command.Command{Name: "buffer", Aliases: []string{"b"}, Hints: command.WindowTitleHints},
	command.Command{Name: "bdelete", Aliases: []string{"bd"}, Hints: command.WindowTitleHints},
	command.Command{Name: "centralize", Aliases: []string{"ce"}},
	command.Command{Name: "maximize", Aliases: []string{"max"}},
	command.Command{Name: "decorate", Hints: command.DecorationHints},
	command.Command{Name: "move"},
	command.Command{Name: "edit", Aliases: []string{"e"}, Hints: command.ApplicationHints},
	command.Command{Name: "quit", Aliases: []string{"q"}},
	command.Command{Name: command.Bang},
)

var handlers map[string]handler

func init() {
	handlers = map[string]handler{
		"only":       cmdOnly,
		"buffers":    cmdBuffers,
		"buffer":     cmdBuffer,
		"bdelete":    cmdBdelete,
		"centralize": cmdCentralize,
		"maximize":   cmdMaximize,
		"decorate":   cmdDecorate,
		"move":       cmdMove,
		"edit":       cmdEdit,
		"quit":       cmdQuit,
		command.Bang: cmdShell,
	}
}

// CommandNames lists the command line keywords, without aliases.
func CommandNames() []string {
	return commandSet.Names()
}

func cmdOnly(s *Session, _ command.Input) (Outcome, error) {
	return OutcomeKey, s.nav.Only()
}

func cmdCentralize(s *Session, _ command.Input) (Outcome, error) {
	return OutcomeKey, s.nav.Centralize()
}

func cmdMaximize(s *Session, _ command.Input) (Outcome, error) {
	return OutcomeKey, s.nav.Maximize()
}

func cmdQuit(*Session, command.Input) (Outcome, error) {
	return OutcomeHide, nil
}

func cmdDecorate(s *Session, in command.Input) (Outcome, error) {
	if in.Parameter == "" {
		return OutcomeKey, command.Userf(command.BadParameter, "Decoration name required: %s",
			strings.Join(windows.DecorationNames(), ", "))
	}
	err := s.nav.Decorate(in.Parameter)
	if errors.Is(err, windows.ErrUnknownDecoration) {
		return OutcomeKey, command.Userf(command.BadParameter, "Unknown decoration: %s", in.Parameter)
	}
	return OutcomeKey, err
}

func cmdMove(s *Session, in command.Input) (Outcome, error) {
	nums, ok := in.Numbers()
	if !ok || len(nums) != 2 {
		return OutcomeKey, command.Userf(command.BadParameter, "Usage: move <x> <y>")
	}
	return OutcomeKey, s.nav.MoveTo(nums[0], nums[1])
}

// BufferInfo describes one entry of the buffer list.
type BufferInfo struct {
	Number    int    `json:"number"`
	ID        uint32 `json:"id"`
	Title     string `json:"title"`
	AppID     string `json:"app_id"`
	Process   string `json:"process,omitempty"`
	Workspace int    `json:"workspace"`
	Active    bool   `json:"active"`
	Hidden    bool   `json:"hidden"`
}

// Flags renders the vim style indicator column ("%a", "h", ...).
func (b BufferInfo) Flags() string {
	var f string
	if b.Active {
		f = "%a"
	}
	if b.Hidden {
		f += "h"
	}
	return f
}

// Buffers describes the windows of the last resync, numbered from 1.
func (s *Session) Buffers() []BufferInfo {
	active := s.reg.Active()
	bufs := s.reg.Buffers()
	out := make([]BufferInfo, 0, len(bufs))
	for i, w := range bufs {
		info := BufferInfo{
			Number:    i + 1,
			ID:        uint32(w.ID),
			Title:     w.Title,
			AppID:     w.AppID,
			Workspace: w.Workspace,
			Active:    w == active,
			Hidden:    w.Minimized,
		}
		if s.procFn != nil && w.PID > 0 {
			info.Process = s.procFn(w.PID)
		}
		out = append(out, info)
	}
	return out
}

func cmdBuffers(s *Session, _ command.Input) (Outcome, error) {
	for _, b := range s.Buffers() {
		line := fmt.Sprintf("%3d %-3s %q", b.Number, b.Flags(), b.Title)
		if b.Process != "" {
			line += " [" + b.Process + "]"
		}
		s.messages = append(s.messages, Message{Text: line, Level: LevelInfo})
	}
	s.messages = append(s.messages, Message{Text: "Press ENTER or type command to continue", Level: LevelInfo})
	return OutcomeKey, nil
}

// bufferByParameter resolves "N" (1-based) or a title fragment.
func (s *Session) bufferByParameter(param string) (*platform.Window, error) {
	bufs := s.reg.Buffers()
	in := command.Input{Parameter: param}
	if nums, ok := in.Numbers(); ok && len(nums) == 1 {
		idx := nums[0] - 1
		if idx < 0 || idx >= len(bufs) {
			return nil, command.Userf(command.NoSuchBuffer, "Buffer %d does not exist", nums[0])
		}
		return bufs[idx], nil
	}

	matches := s.reg.FindByName(param)
	switch len(matches) {
	case 0:
		return nil, command.Userf(command.NoSuchBuffer, "No matching buffer for %s", param)
	case 1:
		return matches[0], nil
	default:
		return nil, command.Userf(command.Ambiguous, "More than one buffer matches: %s", param)
	}
}

func cmdBuffer(s *Session, in command.Input) (Outcome, error) {
	if in.Parameter == "" {
		return OutcomeKey, nil
	}
	w, err := s.bufferByParameter(in.Parameter)
	if err != nil {
		return OutcomeKey, err
	}
	// Buffers may live outside the visible set, so the window is activated
	// directly instead of staged.
	if err := s.ws.Activate(w.ID, in.Time); err != nil {
		return OutcomeKey, fmt.Errorf("failed to activate window %d: %w", w.ID, err)
	}
	return OutcomeHide, nil
}

func cmdBdelete(s *Session, in command.Input) (Outcome, error) {
	if in.Parameter == "" {
		active := s.reg.Active()
		if active == nil {
			return OutcomeKey, command.Userf(command.NoSuchBuffer, "There is no active window")
		}
		return OutcomeHide, s.nav.Close(active, in.Time)
	}

	if nums, ok := in.Numbers(); ok {
		bufs := s.reg.Buffers()
		targets := make([]*platform.Window, 0, len(nums))
		for _, n := range nums {
			if n < 1 || n > len(bufs) {
				return OutcomeKey, command.Userf(command.NoSuchBuffer, "No buffers were deleted")
			}
			targets = append(targets, bufs[n-1])
		}
		for _, w := range targets {
			if s.reg.Find(w.ID) == nil {
				continue // listed twice
			}
			if err := s.nav.Close(w, in.Time); err != nil {
				return OutcomeKey, err
			}
		}
		return OutcomeHide, nil
	}

	w, err := s.bufferByParameter(in.Parameter)
	if err != nil {
		return OutcomeKey, err
	}
	return OutcomeHide, s.nav.Close(w, in.Time)
}

func cmdEdit(s *Session, in command.Input) (Outcome, error) {
	if s.apps == nil {
		return OutcomeKey, command.Userf(command.External, "No application launcher available")
	}
	name := in.Parameter
	if name == "" {
		return OutcomeKey, command.Userf(command.BadParameter, "Application name required")
	}
	matches := s.apps.Match(name)
	switch len(matches) {
	case 0:
		return OutcomeKey, command.Userf(command.BadParameter, "No matching application for %s", name)
	case 1:
	default:
		return OutcomeKey, command.Userf(command.Ambiguous, "More than one application matches: %s", name)
	}
	if err := s.apps.Launch(matches[0]); err != nil {
		logging.Warn().Err(err).Str("app", matches[0]).Msg("launch failed")
		return OutcomeKey, command.Userf(command.External, "Error launching %s", matches[0])
	}
	return OutcomeHide, nil
}

func cmdShell(s *Session, in command.Input) (Outcome, error) {
	if in.Parameter == "" {
		return OutcomeKey, command.Userf(command.BadParameter, "ERROR: empty command")
	}
	if s.shell == nil {
		return OutcomeKey, command.Userf(command.External, "No shell available")
	}
	stdout, stderr, err := s.shell.Run(in.Parameter)
	for _, line := range splitLines(stdout) {
		s.messages = append(s.messages, Message{Text: line, Level: LevelInfo})
	}
	for _, line := range splitLines(stderr) {
		s.messages = append(s.messages, Message{Text: line, Level: LevelError})
	}
	if err != nil && stderr == "" {
		return OutcomeKey, err
	}
	return OutcomeKey, nil
}

func splitLines(text string) []string {
	text = strings.TrimRight(text, "\n")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}
