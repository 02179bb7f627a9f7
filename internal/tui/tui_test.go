package tui

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/1broseidon/vimwn/internal/config"
	"github.com/1broseidon/vimwn/internal/ipc"
	"github.com/1broseidon/vimwn/internal/session"
)

type fakeDaemon struct {
	buffers  []session.BufferInfo
	executed []string
	reloads  int
}

func (f *fakeDaemon) GetStatus() (*ipc.StatusData, error) {
	return &ipc.StatusData{Mode: "normal", BufferCount: len(f.buffers), DaemonRunning: true}, nil
}

func (f *fakeDaemon) Buffers() ([]session.BufferInfo, error) { return f.buffers, nil }

func (f *fakeDaemon) Execute(line string) ([]ipc.MessageInfo, error) {
	f.executed = append(f.executed, line)
	return []ipc.MessageInfo{{Text: "ok"}}, nil
}

func (f *fakeDaemon) Reload() error {
	f.reloads++
	return nil
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestConfigDiff(t *testing.T) {
	orig := config.DefaultConfig()
	if got := configDiff(orig, cloneConfig(orig)); got != nil {
		t.Fatalf("configDiff(equal) = %v", got)
	}

	changed := cloneConfig(orig)
	changed.WidthStep = 0.1
	var removed, added bool
	for _, l := range configDiff(orig, changed) {
		switch {
		case l.kind == diffRemoved && strings.Contains(l.text, "width_step: 0.05"):
			removed = true
		case l.kind == diffAdded && strings.Contains(l.text, "width_step: 0.1"):
			added = true
		}
	}
	if !removed || !added {
		t.Fatalf("diff does not show the width_step change: %+v", configDiff(orig, changed))
	}
}

func TestLineDiff(t *testing.T) {
	got := lineDiff([]string{"a", "b", "c"}, []string{"a", "x", "c", "d"})
	want := []diffLine{
		{diffContext, "a"},
		{diffRemoved, "b"},
		{diffAdded, "x"},
		{diffContext, "c"},
		{diffAdded, "d"},
	}
	if !slices.Equal(got, want) {
		t.Fatalf("lineDiff() = %+v, want %+v", got, want)
	}
}

func TestKeysTab_SetKeys(t *testing.T) {
	cfg := config.DefaultConfig()
	tab := NewKeysTab(cfg)

	tab.setKeys("quit", []string{"x"})
	if !slices.Equal(cfg.Keys["quit"], []string{"x"}) {
		t.Fatalf("Keys[quit] = %v", cfg.Keys["quit"])
	}
	tab.setKeys("quit", nil)
	if !slices.Equal(cfg.Keys["quit"], []string{"x"}) {
		t.Fatal("an empty key list must be ignored")
	}
	tab.setKeys("quit", session.DefaultKeys("quit"))
	if _, ok := cfg.Keys["quit"]; ok {
		t.Fatal("default keys must remove the override")
	}
}

func TestSplitKeyList(t *testing.T) {
	got := splitKeyList(" h, Left ,,")
	if !slices.Equal(got, []string{"h", "Left"}) {
		t.Fatalf("splitKeyList() = %v", got)
	}
}

func TestGeneralTab_ApplyFormKeepsInvalidValues(t *testing.T) {
	cfg := config.DefaultConfig()
	tab := NewGeneralTab(cfg)
	tab.loadForm()
	tab.fWidthStep = "0.7"
	tab.fPrefixKey = " , "
	tab.fCommandPrefixKey = "Mod4-colon"
	tab.applyForm()

	if cfg.WidthStep != config.DefaultWidthStep {
		t.Fatalf("WidthStep = %v", cfg.WidthStep)
	}
	if cfg.PrefixKey != config.DefaultPrefixKey {
		t.Fatalf("PrefixKey = %q", cfg.PrefixKey)
	}
	if cfg.CommandPrefixKey != "Mod4-colon" {
		t.Fatalf("CommandPrefixKey = %q", cfg.CommandPrefixKey)
	}
}

func TestModel_SaveWritesAndReloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	d := &fakeDaemon{}
	m := newModel(&config.LoadResult{Config: config.DefaultConfig(), Path: path}, d)
	m.cfg.AutoHint = false

	var tm tea.Model = m
	tm, _ = tm.Update(key("ctrl+s"))
	if !tm.(model).saveOverlay.Active() {
		t.Fatal("ctrl+s must open the save preview")
	}
	tm, _ = tm.Update(key("enter"))
	if !tm.(model).saveOverlay.SaveSucceeded() {
		t.Fatalf("save failed: %v", tm.(model).saveOverlay.err)
	}
	if d.reloads != 1 {
		t.Fatalf("reloads = %d", d.reloads)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !strings.Contains(string(data), "auto_hint: false") {
		t.Fatalf("saved config:\n%s", data)
	}

	// Dismiss, then a second save has nothing to write.
	tm, _ = tm.Update(key("x"))
	tm, _ = tm.Update(key("ctrl+s"))
	if tm.(model).saveOverlay.err == nil {
		t.Fatal("expected no changes to save")
	}
}

func TestBuffersTab_SwitchAndClose(t *testing.T) {
	d := &fakeDaemon{buffers: []session.BufferInfo{
		{Number: 1, Title: "one"},
		{Number: 2, Title: "two"},
	}}
	tab := NewBuffersTab(d)
	tab, _ = tab.Update(tab.Refresh()())
	if len(tab.buffers) != 2 {
		t.Fatalf("buffers = %d", len(tab.buffers))
	}

	tab, _ = tab.Update(key("j"))
	tab, cmd := tab.Update(key("enter"))
	if cmd == nil {
		t.Fatal("enter must run a command")
	}
	tab, _ = tab.Update(cmd())
	tab, cmd = tab.Update(key("x"))
	cmd()

	want := []string{"buffer 2", "bdelete 2"}
	if !slices.Equal(d.executed, want) {
		t.Fatalf("executed = %v, want %v", d.executed, want)
	}
	if tab.status != "ok" {
		t.Fatalf("status = %q", tab.status)
	}
}
