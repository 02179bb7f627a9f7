package daemon

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/1broseidon/vimwn/internal/config"
	"github.com/1broseidon/vimwn/internal/hotkeys"
	"github.com/1broseidon/vimwn/internal/platform/platformtest"
	"github.com/1broseidon/vimwn/internal/session"
)

type fakeView struct {
	shown bool
	mode  session.Mode
	text  string
}

func (v *fakeView) Show(uint32) error                  { v.shown = true; return nil }
func (v *fakeView) Hide()                              { v.shown = false }
func (v *fakeView) SetMode(m session.Mode)             { v.mode = m }
func (v *fakeView) SetCommandText(text string)         { v.text = text }
func (v *fakeView) CommandText() string                { return v.text }
func (v *fakeView) RenderHints([]string, int, bool)    {}
func (v *fakeView) ClearHints()                        {}
func (v *fakeView) SetMessages(msgs []session.Message) {}

type fakeHotkeys struct {
	callbacks  map[string]hotkeys.Callback
	unregister int
}

func (h *fakeHotkeys) Register(keys string, cb hotkeys.Callback) error {
	if h.callbacks == nil {
		h.callbacks = make(map[string]hotkeys.Callback)
	}
	for _, k := range hotkeys.SplitKeys(keys) {
		h.callbacks[k] = cb
	}
	return nil
}

func (h *fakeHotkeys) UnregisterAll() {
	h.callbacks = nil
	h.unregister++
}

func (h *fakeHotkeys) Registered() []string {
	var out []string
	for k := range h.callbacks {
		out = append(out, k)
	}
	return out
}

type fixture struct {
	ctrl *Controller
	ws   *platformtest.WindowSystem
	view *fakeView
	keys *fakeHotkeys
	path string
}

func newFixture(t *testing.T, yaml string) *fixture {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if yaml != "" {
		writeConfig(t, path, yaml)
	}
	res, err := config.LoadFromPath(path, session.ActionNames()...)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	f := &fixture{
		ws: platformtest.New(
			platformtest.Win(1, "left", 0, 0, 400, 800),
			platformtest.Win(2, "right", 500, 0, 400, 800),
		),
		view: &fakeView{},
		keys: &fakeHotkeys{},
		path: path,
	}
	f.ctrl, err = NewController(res, Deps{Windows: f.ws, View: f.view, Hotkeys: f.keys})
	if err != nil {
		t.Fatalf("NewController() error = %v", err)
	}
	return f
}

func writeConfig(t *testing.T, path, data string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestController_HotkeysOpenOverlay(t *testing.T) {
	f := newFixture(t, "prefix_key: Mod4-w\ncommand_prefix_key: Mod4-semicolon\n")
	if err := f.ctrl.RegisterHotkeys(); err != nil {
		t.Fatalf("RegisterHotkeys() error = %v", err)
	}

	f.keys.callbacks["Mod4-w"](10)
	if !f.view.shown || f.ctrl.Session().Mode() != session.ModeKey {
		t.Fatalf("prefix key should open Key mode, mode = %v", f.ctrl.Session().Mode())
	}
	f.ctrl.HandleKey(session.Key{Name: "Escape"})
	if f.view.shown {
		t.Fatal("Escape should hide the overlay")
	}

	f.keys.callbacks["Mod4-semicolon"](11)
	if f.ctrl.Session().Mode() != session.ModeCommand {
		t.Fatalf("command prefix should open Command mode, mode = %v", f.ctrl.Session().Mode())
	}
	f.ctrl.FocusLost()
	if f.ctrl.Session().Mode() != session.ModeNormal {
		t.Fatal("focus loss should return to Normal mode")
	}
}

func TestController_Execute(t *testing.T) {
	f := newFixture(t, "")

	msgs, err := f.ctrl.Execute("b right")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if len(msgs) != 0 {
		t.Fatalf("messages = %v", msgs)
	}
	if call, ok := f.ws.Last("Activate"); !ok || call.ID != 2 {
		t.Fatalf("expected window 2 activated, calls = %v", f.ws.Ops())
	}
	if f.view.shown {
		t.Fatal("remote execution must not show the overlay")
	}
}

func TestController_BuffersResyncs(t *testing.T) {
	f := newFixture(t, "")
	f.ws.Windows = append(f.ws.Windows, platformtest.Win(3, "new", 0, 0, 10, 10))

	bufs, err := f.ctrl.Buffers()
	if err != nil {
		t.Fatalf("Buffers() error = %v", err)
	}
	var titles []string
	for _, b := range bufs {
		titles = append(titles, b.Title)
	}
	if !reflect.DeepEqual(titles, []string{"left", "right", "new"}) {
		t.Fatalf("titles = %v", titles)
	}

	status := f.ctrl.Status()
	if status.Mode != "normal" || status.BufferCount != 3 || !status.DaemonRunning {
		t.Fatalf("Status() = %+v", status)
	}
}

func TestController_ShowCommand(t *testing.T) {
	f := newFixture(t, "")
	if err := f.ctrl.Show(true, "b "); err != nil {
		t.Fatalf("Show() error = %v", err)
	}
	if f.ctrl.Session().Mode() != session.ModeCommand || f.view.text != "b " {
		t.Fatalf("mode = %v, text = %q", f.ctrl.Session().Mode(), f.view.text)
	}
}

func TestController_Reload(t *testing.T) {
	f := newFixture(t, "prefix_key: Control-q\n")
	if err := f.ctrl.RegisterHotkeys(); err != nil {
		t.Fatal(err)
	}

	writeConfig(t, f.path, "prefix_key: Mod4-v\nkeys:\n  hide: [x]\n")
	if err := f.ctrl.Reload(); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}
	if f.keys.unregister != 1 {
		t.Fatalf("expected hotkeys to be re-grabbed, unregister = %d", f.keys.unregister)
	}
	if _, ok := f.keys.callbacks["Mod4-v"]; !ok {
		t.Fatalf("registered = %v", f.keys.Registered())
	}

	f.ctrl.Show(false, "")
	f.ctrl.HandleKey(session.Key{Name: "x", Text: "x"})
	if f.ctrl.Session().Mode() != session.ModeNormal {
		t.Fatal("reloaded binding should hide the overlay")
	}

	writeConfig(t, f.path, "width_step: 3\n")
	if err := f.ctrl.Reload(); err == nil {
		t.Fatal("expected invalid config to be rejected")
	}
	if _, ok := f.keys.callbacks["Mod4-v"]; !ok || f.keys.unregister != 1 {
		t.Fatal("failed reload must keep the running hotkeys")
	}
}
