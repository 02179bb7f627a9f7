package session

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/1broseidon/vimwn/internal/platform"
	"github.com/1broseidon/vimwn/internal/platform/platformtest"
)

type fakeView struct {
	shown    bool
	mode     Mode
	text     string
	hints    []string
	messages []Message
}

func (v *fakeView) Show(uint32) error          { v.shown = true; return nil }
func (v *fakeView) Hide()                      { v.shown = false }
func (v *fakeView) SetMode(m Mode)             { v.mode = m }
func (v *fakeView) SetCommandText(text string) { v.text = text }
func (v *fakeView) CommandText() string        { return v.text }
func (v *fakeView) ClearHints()                { v.hints = nil }
func (v *fakeView) SetMessages(msgs []Message) { v.messages = msgs }
func (v *fakeView) RenderHints(c []string, _ int, _ bool) {
	v.hints = c
}

type fakeApps struct {
	names    []string
	launched []string
	err      error
}

func (a *fakeApps) Names() []string { return a.names }

func (a *fakeApps) Match(name string) []string {
	var out []string
	for _, n := range a.names {
		if n == name {
			return []string{n}
		}
		if strings.Contains(n, name) {
			out = append(out, n)
		}
	}
	return out
}

func (a *fakeApps) Launch(name string) error {
	a.launched = append(a.launched, name)
	return a.err
}

type fakeShell struct {
	stdout, stderr string
	ran            []string
}

func (s *fakeShell) Run(cmd string) (string, string, error) {
	s.ran = append(s.ran, cmd)
	return s.stdout, s.stderr, nil
}

type fixture struct {
	s     *Session
	ws    *platformtest.WindowSystem
	view  *fakeView
	apps  *fakeApps
	shell *fakeShell
}

// newFixture lays out three windows left to right; the right-most is on top.
func newFixture(t *testing.T, opts Options) *fixture {
	t.Helper()
	ws := platformtest.New(
		platformtest.Win(1, "left", 0, 0, 200, 800),
		platformtest.Win(2, "middle", 300, 0, 200, 800),
		platformtest.Win(3, "right", 700, 0, 200, 800),
	)
	f := &fixture{
		ws:    ws,
		view:  &fakeView{},
		apps:  &fakeApps{names: []string{"notepad", "notes-app", "terminal"}},
		shell: &fakeShell{},
	}
	s, err := New(Deps{
		Windows:     ws,
		View:        f.view,
		Apps:        f.apps,
		Shell:       f.shell,
		ProcessName: func(pid int) string { return "proc" },
	}, opts)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	f.s = s
	return f
}

func (f *fixture) press(names ...string) {
	for _, n := range names {
		f.s.HandleKey(Key{Name: n, Time: 42})
	}
}

// command enters Command mode, types text and presses Return.
func (f *fixture) command(text string) {
	f.s.HandleKey(Key{Name: "colon", Text: ":"})
	f.typeText(text)
	f.press("Return")
}

func (f *fixture) typeText(text string) {
	for _, r := range text {
		name := string(r)
		if r == ' ' {
			name = "space"
		}
		f.s.HandleKey(Key{Name: name, Text: string(r)})
	}
}

func lastMessage(t *testing.T, s *Session) Message {
	t.Helper()
	msgs := s.Messages()
	if len(msgs) == 0 {
		t.Fatal("expected a message")
	}
	return msgs[len(msgs)-1]
}

func TestNew_RequiresCollaborators(t *testing.T) {
	if _, err := New(Deps{}, Options{}); err == nil {
		t.Fatal("expected error without window system and view")
	}
}

func TestSession_ModeTransitions(t *testing.T) {
	f := newFixture(t, Options{})
	if f.s.Mode() != ModeNormal {
		t.Fatalf("initial mode = %v", f.s.Mode())
	}

	f.s.Show(1)
	if f.s.Mode() != ModeKey || !f.view.shown {
		t.Fatalf("Show: mode = %v shown = %v", f.s.Mode(), f.view.shown)
	}

	f.s.HandleKey(Key{Name: "colon", Text: ":"})
	if f.s.Mode() != ModeCommand || f.view.mode != ModeCommand {
		t.Fatalf("colon: mode = %v", f.s.Mode())
	}

	f.press("Escape")
	if f.s.Mode() != ModeKey {
		t.Fatalf("Escape in command mode: mode = %v, want key", f.s.Mode())
	}

	f.s.HandleKey(Key{Name: "bracketleft", Ctrl: true})
	if f.s.Mode() != ModeNormal || f.view.shown {
		t.Fatalf("Ctrl+[ in key mode: mode = %v shown = %v", f.s.Mode(), f.view.shown)
	}

	f.s.ShowCommand(2)
	if f.s.Mode() != ModeCommand {
		t.Fatalf("ShowCommand: mode = %v", f.s.Mode())
	}
	f.s.FocusLost()
	if f.s.Mode() != ModeNormal {
		t.Fatalf("FocusLost: mode = %v", f.s.Mode())
	}
}

func TestSession_NavigationCommitsAndHides(t *testing.T) {
	f := newFixture(t, Options{})
	f.s.Show(1)
	f.press("h")

	call, ok := f.ws.Last("Activate")
	if !ok || call.ID != 2 || call.Timestamp != 42 {
		t.Fatalf("Activate = %+v (%v), want window 2 at 42", call, ok)
	}
	if f.s.Mode() != ModeNormal {
		t.Fatalf("mode = %v, want normal after commit", f.s.Mode())
	}
}

func TestSession_MultiplierRepeatsAction(t *testing.T) {
	f := newFixture(t, Options{})
	f.s.Show(1)
	f.press("2")
	if f.s.Multiplier() != 2 {
		t.Fatalf("multiplier = %d, want 2", f.s.Multiplier())
	}
	f.press("h")

	activations := 0
	for _, c := range f.ws.Calls {
		if c.Op == "Activate" {
			activations++
		}
	}
	call, _ := f.ws.Last("Activate")
	if activations != 1 || call.ID != 1 {
		t.Fatalf("activations = %d last = %d, want a single commit of window 1", activations, call.ID)
	}
}

func TestSession_MultiplierSaturates(t *testing.T) {
	f := newFixture(t, Options{})
	f.s.Show(1)
	for i := 0; i < 30; i++ {
		f.press("9")
	}
	if f.s.Multiplier() <= 0 {
		t.Fatalf("multiplier overflowed: %d", f.s.Multiplier())
	}
	f.press("x")
	if f.s.Multiplier() != 0 {
		t.Fatal("unbound key must reset the multiplier")
	}
}

func TestSession_QuitHides(t *testing.T) {
	f := newFixture(t, Options{})
	f.s.Show(1)
	f.press("q")
	if f.s.Mode() != ModeNormal {
		t.Fatalf("mode = %v", f.s.Mode())
	}
	if len(f.ws.Calls) != 0 {
		t.Fatalf("quit touched windows: %v", f.ws.Ops())
	}
}

func TestSession_UnknownCommand(t *testing.T) {
	f := newFixture(t, Options{})
	f.s.Show(1)
	f.command("frobnicate")

	msg := lastMessage(t, f.s)
	if msg.Text != "Not an editor command: frobnicate" || msg.Level != LevelError {
		t.Fatalf("message = %+v", msg)
	}
	if f.s.Mode() != ModeKey {
		t.Fatalf("mode = %v, want key", f.s.Mode())
	}
}

func TestSession_MultipleCommandsRejected(t *testing.T) {
	f := newFixture(t, Options{})
	f.s.Show(1)
	f.command("only|buffers")

	if msg := lastMessage(t, f.s); msg.Level != LevelError {
		t.Fatalf("message = %+v", msg)
	}
	if _, ok := f.ws.Last("Minimize"); ok {
		t.Fatal("no part of a chained command may run")
	}
}

func TestSession_BdeleteAllOrNothing(t *testing.T) {
	f := newFixture(t, Options{})
	f.s.Show(1)
	f.command("bdelete 3 5")

	if _, ok := f.ws.Last("Close"); ok {
		t.Fatalf("windows closed despite invalid index: %v", f.ws.Ops())
	}
	msgs := f.s.Messages()
	if len(msgs) != 1 || msgs[0].Text != "No buffers were deleted" {
		t.Fatalf("messages = %+v", msgs)
	}
	if f.s.Mode() != ModeKey {
		t.Fatalf("mode = %v", f.s.Mode())
	}

	f.command("bd 1 3")
	var closed []platform.WindowID
	for _, c := range f.ws.Calls {
		if c.Op == "Close" {
			closed = append(closed, c.ID)
		}
	}
	if !reflect.DeepEqual(closed, []platform.WindowID{1, 3}) {
		t.Fatalf("closed = %v, want [1 3]", closed)
	}
	if f.s.Mode() != ModeNormal {
		t.Fatalf("mode = %v, want normal", f.s.Mode())
	}
}

func TestSession_BufferSelection(t *testing.T) {
	tests := []struct {
		text    string
		want    platform.WindowID
		message string
	}{
		{text: "b2", want: 2},
		{text: "buffer left", want: 1},
		{text: "b 9", message: "Buffer 9 does not exist"},
		{text: "b nothing", message: "No matching buffer for nothing"},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			f := newFixture(t, Options{})
			f.s.Show(1)
			f.command(tt.text)

			call, ok := f.ws.Last("Activate")
			if tt.message != "" {
				if ok {
					t.Fatalf("unexpected activation of %d", call.ID)
				}
				if got := lastMessage(t, f.s).Text; got != tt.message {
					t.Fatalf("message = %q, want %q", got, tt.message)
				}
				return
			}
			if !ok || call.ID != tt.want {
				t.Fatalf("Activate = %+v (%v), want %d", call, ok, tt.want)
			}
			if f.s.Mode() != ModeNormal {
				t.Fatalf("mode = %v", f.s.Mode())
			}
		})
	}
}

func TestSession_BuffersListing(t *testing.T) {
	f := newFixture(t, Options{})
	f.ws.Windows[0].PID = 10
	f.s.Show(1)
	f.command("ls")

	msgs := f.s.Messages()
	if len(msgs) != 4 {
		t.Fatalf("messages = %+v", msgs)
	}
	if !strings.Contains(msgs[0].Text, `"left" [proc]`) {
		t.Fatalf("first line = %q", msgs[0].Text)
	}
	if !strings.Contains(msgs[2].Text, "%a") {
		t.Fatalf("active flag missing: %q", msgs[2].Text)
	}
	if msgs[3].Text != "Press ENTER or type command to continue" {
		t.Fatalf("last line = %q", msgs[3].Text)
	}

	f.press("Return")
	if len(f.s.Messages()) != 0 {
		t.Fatal("Return in key mode must clear messages")
	}
}

func TestSession_AutoHintLaunch(t *testing.T) {
	f := newFixture(t, Options{AutoHint: true})
	f.s.Show(1)
	f.s.HandleKey(Key{Name: "colon", Text: ":"})
	f.typeText("e note")
	if !reflect.DeepEqual(f.view.hints, []string{"notepad", "notes-app"}) {
		t.Fatalf("hints = %v", f.view.hints)
	}
	f.typeText("p")
	f.press("Return")

	if !reflect.DeepEqual(f.apps.launched, []string{"notepad"}) {
		t.Fatalf("launched = %v", f.apps.launched)
	}
	if got := f.s.History().Entries(); !reflect.DeepEqual(got, []string{"e notepad"}) {
		t.Fatalf("history = %v", got)
	}
}

func TestSession_PromptPrefillsText(t *testing.T) {
	f := newFixture(t, Options{AutoHint: true})
	f.s.Prompt(1, "e note")
	if f.s.Mode() != ModeCommand || f.view.text != "e note" {
		t.Fatalf("mode = %v, text = %q", f.s.Mode(), f.view.text)
	}
	if !reflect.DeepEqual(f.view.hints, []string{"notepad", "notes-app"}) {
		t.Fatalf("hints = %v", f.view.hints)
	}
}

func TestSession_EditErrors(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"e zzz", "No matching application for zzz"},
		{"e note", "More than one application matches: note"},
	}
	for _, tt := range tests {
		f := newFixture(t, Options{})
		f.s.Show(1)
		f.command(tt.text)
		if got := lastMessage(t, f.s).Text; got != tt.want {
			t.Fatalf("%s: message = %q, want %q", tt.text, got, tt.want)
		}
	}

	f := newFixture(t, Options{})
	f.apps.err = errors.New("exec failed")
	f.s.Show(1)
	f.command("edit terminal")
	if got := lastMessage(t, f.s).Text; got != "Error launching terminal" {
		t.Fatalf("message = %q", got)
	}
}

func TestSession_TabCompletion(t *testing.T) {
	f := newFixture(t, Options{})
	f.s.Show(1)
	f.s.HandleKey(Key{Name: "colon", Text: ":"})
	f.typeText("cen")
	f.press("Tab")
	if f.view.text != "centralize" {
		t.Fatalf("command text = %q, want centralize", f.view.text)
	}
}

func TestSession_CompletedTitleWithColon(t *testing.T) {
	f := newFixture(t, Options{})
	f.ws.Windows[1].Title = "user@host: ~/src"
	f.s.Show(1)
	f.s.HandleKey(Key{Name: "colon", Text: ":"})
	f.typeText("b user")
	f.press("Tab")
	if f.view.text != "b user@host: ~/src" {
		t.Fatalf("command text = %q", f.view.text)
	}
	f.press("Return")

	call, ok := f.ws.Last("Activate")
	if !ok || call.ID != 2 {
		t.Fatalf("Activate = %+v (%v), messages = %+v", call, ok, f.s.Messages())
	}
	if f.s.Mode() != ModeNormal {
		t.Fatalf("mode = %v", f.s.Mode())
	}
}

func TestSession_HistoryKeys(t *testing.T) {
	f := newFixture(t, Options{})
	f.s.Show(1)
	f.command("b 9")
	f.command("b 8")

	f.s.HandleKey(Key{Name: "colon", Text: ":"})
	f.typeText("dr")
	f.press("Up")
	if f.view.text != "b 9" {
		t.Fatalf("Up = %q, want b 9", f.view.text)
	}
	f.press("Up")
	if f.view.text != "dr" {
		t.Fatalf("Up past the front = %q, want draft", f.view.text)
	}
}

func TestSession_BackspaceLeavesCommandMode(t *testing.T) {
	f := newFixture(t, Options{})
	f.s.Show(1)
	f.s.HandleKey(Key{Name: "colon", Text: ":"})
	f.typeText("o")
	f.press("BackSpace")
	if f.s.Mode() != ModeKey {
		t.Fatalf("mode = %v, want key after erasing the line", f.s.Mode())
	}
}

func TestSession_Shell(t *testing.T) {
	f := newFixture(t, Options{})
	f.shell.stdout = "one\ntwo\n"
	f.shell.stderr = "oops\n"
	f.s.Show(1)
	f.command("!ls | wc")

	if !reflect.DeepEqual(f.shell.ran, []string{"ls | wc"}) {
		t.Fatalf("ran = %v", f.shell.ran)
	}
	want := []Message{{"one", LevelInfo}, {"two", LevelInfo}, {"oops", LevelError}}
	if got := f.s.Messages(); !reflect.DeepEqual(got, want) {
		t.Fatalf("messages = %+v", got)
	}

	f.command("!")
	if got := lastMessage(t, f.s).Text; got != "ERROR: empty command" {
		t.Fatalf("message = %q", got)
	}
}

func TestSession_ExternalFailure(t *testing.T) {
	f := newFixture(t, Options{})
	f.s.Show(1)
	f.ws.Err = errors.New("bad window")
	f.command("centralize")

	msg := lastMessage(t, f.s)
	if !strings.HasPrefix(msg.Text, "ERROR (") || !strings.HasSuffix(msg.Text, "executing: centralize") {
		t.Fatalf("message = %q", msg.Text)
	}
}

func TestSession_Execute(t *testing.T) {
	f := newFixture(t, Options{})
	msgs, err := f.s.Execute("buffers")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if len(msgs) != 4 {
		t.Fatalf("messages = %+v", msgs)
	}
	if f.s.Mode() != ModeNormal {
		t.Fatal("Execute must not open the overlay")
	}

	if _, err := f.s.Execute("b 2"); err != nil {
		t.Fatalf("Execute(b 2) error = %v", err)
	}
	if call, ok := f.ws.Last("Activate"); !ok || call.ID != 2 {
		t.Fatalf("Activate = %+v", call)
	}

	if _, err := f.s.Execute("nope"); err == nil {
		t.Fatal("expected error for unknown command")
	}
}

func TestKeymapBuilder_BuildOnce(t *testing.T) {
	b := NewKeymapBuilder().Bind(Action{Name: "quit", Hide: true}, "q")
	km, err := b.Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if a, ok := km.Lookup("q"); !ok || a.Name != "quit" {
		t.Fatalf("Lookup(q) = %+v, %v", a, ok)
	}
	if _, err := b.Build(); !errors.Is(err, ErrKeymapAlreadyBuilt) {
		t.Fatalf("second Build() error = %v", err)
	}
}

func TestDefaultKeymap_Overrides(t *testing.T) {
	km, err := DefaultKeymap(map[string][]string{"quit": {"x"}})
	if err != nil {
		t.Fatalf("DefaultKeymap() error = %v", err)
	}
	if _, ok := km.Lookup("q"); ok {
		t.Fatal("q must be unbound after override")
	}
	if a, ok := km.Lookup("x"); !ok || a.Name != "quit" {
		t.Fatalf("Lookup(x) = %+v", a)
	}
	if _, err := DefaultKeymap(map[string][]string{"fly": {"f"}}); err == nil {
		t.Fatal("expected error for unknown action")
	}
}

func TestDefaultKeys(t *testing.T) {
	keys := DefaultKeys("hide")
	if len(keys) != 2 || keys[0] != "Escape" {
		t.Fatalf("DefaultKeys(hide) = %v", keys)
	}
	keys[0] = "x"
	if DefaultKeys("hide")[0] != "Escape" {
		t.Fatal("DefaultKeys must return a copy")
	}
	if DefaultKeys("fly") != nil {
		t.Fatal("unknown action must have no keys")
	}
}
