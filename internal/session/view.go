package session

// Mode is the overlay input mode.
type Mode int

const (
	// ModeNormal means the overlay is hidden and only global hotkeys are live.
	ModeNormal Mode = iota
	// ModeKey means every key press is a single-key window command.
	ModeKey
	// ModeCommand means key presses edit the colon command line.
	ModeCommand
)

// String returns the string representation of the mode
func (m Mode) String() string {
	switch m {
	case ModeNormal:
		return "normal"
	case ModeKey:
		return "key"
	case ModeCommand:
		return "command"
	default:
		return "unknown"
	}
}

// Level is the severity of a status message.
type Level int

const (
	LevelInfo Level = iota
	LevelError
)

// Message is one line of the overlay status area.
type Message struct {
	Text  string
	Level Level
}

// Key is a key press delivered to the session. Name is the X keysym name
// ("h", "H", "Left", "colon", "Escape"); Text is the printable text of the
// key, empty for function keys.
type Key struct {
	Name  string
	Text  string
	Ctrl  bool
	Shift bool
	Time  uint32
}

// View renders the overlay. Implementations only draw; all state lives in
// the session.
type View interface {
	Show(timestamp uint32) error
	Hide()
	SetMode(mode Mode)
	SetCommandText(text string)
	CommandText() string
	RenderHints(candidates []string, highlight int, autoAccept bool)
	ClearHints()
	SetMessages(msgs []Message)
}

// Launcher starts desktop applications by name.
type Launcher interface {
	// Names lists launchable application names.
	Names() []string
	// Match returns the applications matching name: the exact match alone
	// when there is one, otherwise every name containing it.
	Match(name string) []string
	Launch(name string) error
}

// Shell runs "!" commands.
type Shell interface {
	Run(cmd string) (stdout, stderr string, err error)
}
