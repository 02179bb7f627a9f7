package session

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/1broseidon/vimwn/internal/command"
	"github.com/1broseidon/vimwn/internal/logging"
	"github.com/1broseidon/vimwn/internal/platform"
	"github.com/1broseidon/vimwn/internal/windows"
)

// DefaultWidthStep is the split change applied by the width keys.
const DefaultWidthStep = 0.05

// Options are the user-tunable behaviors of a session.
type Options struct {
	ListWorkspaces    bool
	AutoHint          bool
	NativeDecorations bool
	WidthStep         float64
}

// Deps are the collaborators of a session. Windows and View are required.
type Deps struct {
	Windows platform.WindowSystem
	View    View
	Keymap  *Keymap
	Apps    Launcher
	Shell   Shell
	// ProcessName resolves the name of a window's owning process for
	// buffer listings.
	ProcessName func(pid int) string
}

// Session is the modal controller of the overlay. It is not safe for
// concurrent use; callers serialize events.
type Session struct {
	ws     platform.WindowSystem
	view   View
	keymap *Keymap
	apps   Launcher
	shell  Shell
	procFn func(int) string
	opts   Options

	reg     *windows.Registry
	nav     *windows.Navigator
	cmds    *command.Set
	history *command.History
	hinter  *command.Hinter

	mode       Mode
	multiplier int
	text       string
	messages   []Message
}

// New creates a session in Normal mode.
func New(deps Deps, opts Options) (*Session, error) {
	if deps.Windows == nil || deps.View == nil {
		return nil, errors.New("session requires a window system and a view")
	}
	if opts.WidthStep <= 0 {
		opts.WidthStep = DefaultWidthStep
	}
	keymap := deps.Keymap
	if keymap == nil {
		var err error
		if keymap, err = DefaultKeymap(nil); err != nil {
			return nil, err
		}
	}

	reg := windows.NewRegistry(opts.ListWorkspaces)
	s := &Session{
		ws:      deps.Windows,
		view:    deps.View,
		keymap:  keymap,
		apps:    deps.Apps,
		shell:   deps.Shell,
		procFn:  deps.ProcessName,
		opts:    opts,
		reg:     reg,
		nav:     windows.NewNavigator(reg, deps.Windows, windows.Options{NativeDecorations: opts.NativeDecorations}),
		cmds:    commandSet,
		history: &command.History{},
	}
	s.hinter = command.NewHinter(s.cmds, candidates{s})
	return s, nil
}

// Mode returns the current mode.
func (s *Session) Mode() Mode { return s.mode }

// Messages returns the status lines currently shown.
func (s *Session) Messages() []Message { return s.messages }

// Registry exposes the window snapshot of the last resync.
func (s *Session) Registry() *windows.Registry { return s.reg }

// History returns the command history.
func (s *Session) History() *command.History { return s.history }

// Reconfigure applies new options and bindings, e.g. after a config reload.
// A nil keymap keeps the current one.
func (s *Session) Reconfigure(opts Options, keymap *Keymap) {
	if opts.WidthStep <= 0 {
		opts.WidthStep = DefaultWidthStep
	}
	s.opts = opts
	s.reg.ListWorkspaces = opts.ListWorkspaces
	s.nav.SetOptions(windows.Options{NativeDecorations: opts.NativeDecorations})
	if keymap != nil {
		s.keymap = keymap
	}
}

// Show opens the overlay in Key mode.
func (s *Session) Show(timestamp uint32) {
	s.messages = nil
	s.enterKeyMode(timestamp)
}

// ShowCommand opens the overlay directly in Command mode.
func (s *Session) ShowCommand(timestamp uint32) {
	s.Prompt(timestamp, "")
}

// Prompt opens the overlay in Command mode with text already typed.
func (s *Session) Prompt(timestamp uint32, text string) {
	s.messages = nil
	s.enterKeyMode(timestamp)
	s.enterCommandMode(timestamp, text)
	s.refreshHints()
}

// FocusLost hides the overlay.
func (s *Session) FocusLost() {
	s.enterNormalMode()
}

// HandleKey processes one key press. Errors are reported as messages.
func (s *Session) HandleKey(k Key) {
	switch s.mode {
	case ModeKey:
		s.handleKeyModeKey(k)
	case ModeCommand:
		s.handleCommandKey(k)
	}
}

func keyName(k Key) string {
	if k.Ctrl {
		return "Ctrl+" + k.Name
	}
	return k.Name
}

func isEscape(k Key) bool {
	return k.Name == "Escape" || (k.Ctrl && k.Name == "bracketleft")
}

func (s *Session) handleKeyModeKey(k Key) {
	if !k.Ctrl && len(k.Name) == 1 && k.Name[0] >= '0' && k.Name[0] <= '9' {
		s.accumulate(int(k.Name[0] - '0'))
		return
	}

	name := keyName(k)
	action, ok := s.keymap.Lookup(name)
	if !ok {
		s.multiplier = 0
		return
	}

	times := s.multiplier
	if times < 1 {
		times = 1
	}
	s.multiplier = 0
	in := command.Input{Text: name, Key: name, Multiplier: times, Time: k.Time}

	logging.Debug().Str("action", action.Name).Int("times", times).Msg("key action")
	for i := 0; i < times; i++ {
		if err := action.Run(s, in); err != nil {
			s.fail(k.Time, in.Text, err)
			return
		}
		if s.mode != ModeKey {
			// The action switched modes (command line); repeats stop here.
			return
		}
	}

	committed, err := s.commit(k.Time)
	if err != nil {
		s.fail(k.Time, in.Text, err)
		return
	}
	if committed || action.Hide {
		s.enterNormalMode()
		return
	}
	s.enterKeyMode(k.Time)
}

// accumulate appends a digit to the repeat count, saturating instead of
// overflowing.
func (s *Session) accumulate(digit int) {
	const limit = 1 << 30
	if s.multiplier > (limit-digit)/10 {
		s.multiplier = limit
		return
	}
	s.multiplier = s.multiplier*10 + digit
}

// Multiplier returns the pending repeat count, 0 when none was typed.
func (s *Session) Multiplier() int { return s.multiplier }

func (s *Session) handleCommandKey(k Key) {
	switch {
	case isEscape(k):
		s.enterKeyMode(k.Time)
		return
	case k.Name == "Return" || k.Name == "KP_Enter":
		s.submit(k.Time)
		return
	case (k.Name == "Up" || k.Name == "Down") && !s.hinter.Hinting():
		delta := 1
		if k.Name == "Up" {
			delta = -1
		}
		s.setText(s.history.Navigate(delta, s.text))
		s.hinter.Clear()
		s.view.ClearHints()
		return
	}
	s.history.Reset()

	switch k.Name {
	case "Tab", "ISO_Left_Tab", "Left", "Right", "Up", "Down":
		s.cycleHints(k)
		return
	case "BackSpace":
		if s.text == "" {
			s.enterKeyMode(k.Time)
			return
		}
		_, size := utf8.DecodeLastRuneInString(s.text)
		s.setText(s.text[:len(s.text)-size])
		if strings.TrimSpace(s.text) == "" {
			s.enterKeyMode(k.Time)
			return
		}
	default:
		if k.Ctrl || k.Text == "" {
			return
		}
		s.setText(s.text + k.Text)
	}
	s.refreshHints()
}

func (s *Session) cycleHints(k Key) {
	tab := k.Name == "Tab" || k.Name == "ISO_Left_Tab"
	if !s.hinter.Hinting() {
		if !tab {
			return
		}
		s.hinter.Hint(s.cmds.Parse(s.text, k.Time))
		if !s.hinter.Hinting() {
			return
		}
	}

	direction := 1
	if k.Name == "Left" || k.Name == "Up" || k.Name == "ISO_Left_Tab" || (k.Name == "Tab" && k.Shift) {
		direction = -1
	}
	s.hinter.Cycle(direction)
	if len(s.hinter.Candidates()) == 1 {
		s.view.ClearHints()
	} else {
		s.view.RenderHints(s.hinter.Candidates(), s.hinter.Highlight(), s.hinter.ShouldAutoHint())
	}
	s.setText(s.hinter.MountInput())
}

func (s *Session) refreshHints() {
	if !s.opts.AutoHint {
		s.hinter.Clear()
		s.view.ClearHints()
		return
	}
	s.hinter.Hint(s.cmds.Parse(s.text, 0))
	if s.hinter.Hinting() {
		s.view.RenderHints(s.hinter.Candidates(), s.hinter.Highlight(), s.hinter.ShouldAutoHint())
	} else {
		s.view.ClearHints()
	}
}

func (s *Session) submit(timestamp uint32) {
	text := s.text
	if s.hinter.ShouldAutoHint() && !numericParameter(s.cmds.Parse(text, timestamp)) {
		if s.hinter.Highlight() < 0 {
			s.hinter.Cycle(1)
		}
		text = s.hinter.MountInput()
	}
	s.history.Append(text)

	if strings.TrimSpace(text) == "" {
		s.enterKeyMode(timestamp)
		return
	}

	s.messages = nil
	outcome, err := s.run(text, timestamp)
	if err != nil {
		s.fail(timestamp, text, err)
		return
	}
	committed, err := s.commit(timestamp)
	if err != nil {
		s.fail(timestamp, text, err)
		return
	}
	if committed || outcome == OutcomeHide {
		s.enterNormalMode()
		return
	}
	s.enterKeyMode(timestamp)
}

// numericParameter reports whether in addresses buffers by number, which a
// title hint must not replace.
func numericParameter(in command.Input) bool {
	_, ok := in.Numbers()
	return ok
}

// run parses and dispatches one command line.
func (s *Session) run(text string, timestamp uint32) (Outcome, error) {
	if s.cmds.HasMultipleCommands(text) {
		return OutcomeKey, command.Userf(command.MultipleCommands, "Multiple commands are not supported: %s", text)
	}
	in := s.cmds.Parse(text, timestamp)
	cmd, ok := s.cmds.Resolve(in)
	if !ok {
		return OutcomeKey, command.Userf(command.UnknownCommand, "Not an editor command: %s", text)
	}
	handler, ok := handlers[cmd.Name]
	if !ok {
		return OutcomeKey, command.Userf(command.UnknownCommand, "Not an editor command: %s", text)
	}
	logging.Debug().Str("command", cmd.Name).Str("parameter", in.Parameter).Msg("running command")
	return handler(s, in)
}

// Execute resyncs and runs one command line without the overlay, as used by
// remote callers. Staged navigation is committed. The messages the command
// produced are returned.
func (s *Session) Execute(text string) ([]Message, error) {
	if err := s.Resync(); err != nil {
		return nil, err
	}
	saved := s.messages
	s.messages = nil
	defer func() { s.messages = saved }()

	if _, err := s.run(text, 0); err != nil {
		return nil, err
	}
	if _, err := s.commit(0); err != nil {
		return nil, err
	}
	return s.messages, nil
}

// Resync reloads the window list from the window system.
func (s *Session) Resync() error {
	return s.reg.Resync(s.ws)
}

// commit realizes staged navigation by activating the active window.
func (s *Session) commit(timestamp uint32) (bool, error) {
	if !s.reg.Staged() {
		return false, nil
	}
	err := s.reg.CommitIfStaged(func(w *platform.Window) error {
		if err := s.ws.Activate(w.ID, timestamp); err != nil {
			return fmt.Errorf("failed to activate window %d: %w", w.ID, err)
		}
		return nil
	})
	return err == nil, err
}

// fail reports err and returns to Key mode.
func (s *Session) fail(timestamp uint32, text string, err error) {
	var userErr *command.UserInputError
	msg := fmt.Sprintf("ERROR (%v) executing: %s", err, text)
	if errors.As(err, &userErr) {
		msg = userErr.Message
	}
	logging.Warn().Err(err).Str("input", text).Msg("command failed")
	s.enterKeyMode(timestamp)
	s.messages = append(s.messages, Message{Text: msg, Level: LevelError})
	s.view.SetMessages(s.messages)
}

func (s *Session) enterNormalMode() {
	s.mode = ModeNormal
	s.multiplier = 0
	s.messages = nil
	s.clearCommandState()
	s.view.SetMode(ModeNormal)
	s.view.Hide()
}

func (s *Session) enterKeyMode(timestamp uint32) {
	if err := s.reg.Resync(s.ws); err != nil {
		logging.Error().Err(err).Msg("failed to read windows")
		s.messages = append(s.messages, Message{Text: fmt.Sprintf("ERROR (%v) reading windows", err), Level: LevelError})
	}
	s.mode = ModeKey
	s.clearCommandState()
	s.view.SetMode(ModeKey)
	s.view.SetMessages(s.messages)
	if err := s.view.Show(timestamp); err != nil {
		logging.Error().Err(err).Msg("failed to show overlay")
	}
}

func (s *Session) enterCommandMode(timestamp uint32, text string) {
	s.mode = ModeCommand
	s.multiplier = 0
	s.view.SetMode(ModeCommand)
	s.setText(text)
	if err := s.view.Show(timestamp); err != nil {
		logging.Error().Err(err).Msg("failed to show overlay")
	}
}

func (s *Session) clearCommandState() {
	s.text = ""
	s.hinter.Clear()
	s.history.Reset()
	s.view.SetCommandText("")
	s.view.ClearHints()
}

func (s *Session) setText(text string) {
	s.text = text
	s.view.SetCommandText(text)
}

// candidates feeds the hinter from the session's collaborators.
type candidates struct{ s *Session }

func (c candidates) Applications() []string {
	if c.s.apps == nil {
		return nil
	}
	return c.s.apps.Names()
}

func (c candidates) WindowTitles() []string {
	bufs := c.s.reg.Buffers()
	titles := make([]string, 0, len(bufs))
	for _, w := range bufs {
		titles = append(titles, w.Title)
	}
	return titles
}

func (c candidates) DecorationNames() []string {
	return windows.DecorationNames()
}
