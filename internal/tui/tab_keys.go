package tui

import (
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/vimwn/internal/config"
	"github.com/1broseidon/vimwn/internal/session"
)

// keyItem is a Key mode action and its bound keys.
type keyItem struct {
	action string
	keys   []string
	custom bool
}

func (i keyItem) Title() string {
	if i.custom {
		return lipgloss.NewStyle().Foreground(lipgloss.Color("226")).Render("★") + " " + i.action
	}
	return "  " + i.action
}

func (i keyItem) Description() string {
	desc := strings.Join(i.keys, ", ")
	if desc == "" {
		desc = "(unbound)"
	}
	if i.custom {
		return desc + " | custom"
	}
	return desc
}

func (i keyItem) FilterValue() string { return i.action }

// KeysTab edits the keys bound to Key mode actions.
type KeysTab struct {
	list   list.Model
	cfg    *config.Config
	width  int
	height int

	editing   bool
	textInput textinput.Model
}

func NewKeysTab(cfg *config.Config) KeysTab {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.
		Foreground(lipgloss.Color("15")).
		BorderForeground(lipgloss.Color("62"))
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.
		Foreground(lipgloss.Color("250")).
		BorderForeground(lipgloss.Color("62"))

	l := list.New(buildKeyItems(cfg), delegate, 0, 0)
	l.Title = "Key Mode Actions"
	l.Styles.Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("15")).
		Background(lipgloss.Color("62")).
		Padding(0, 1)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.KeyMap.Quit.SetEnabled(false)

	ti := textinput.New()
	ti.Placeholder = "comma separated keys, e.g. h, Left"
	ti.CharLimit = 128

	return KeysTab{list: l, cfg: cfg, textInput: ti}
}

func buildKeyItems(cfg *config.Config) []list.Item {
	names := session.ActionNames()
	items := make([]list.Item, 0, len(names))
	for _, name := range names {
		keys, custom := cfg.Keys[name]
		if !custom {
			keys = session.DefaultKeys(name)
		}
		items = append(items, keyItem{action: name, keys: keys, custom: custom})
	}
	return items
}

func (t KeysTab) Update(msg tea.Msg) (KeysTab, tea.Cmd) {
	if t.editing {
		return t.updateEditing(msg)
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		t.width = msg.Width
		t.height = msg.Height
		t.list.SetSize(t.width, t.height-2)
		return t, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "enter", "e":
			if item, ok := t.list.SelectedItem().(keyItem); ok {
				t.editing = true
				t.textInput.SetValue(strings.Join(item.keys, ", "))
				t.textInput.CursorEnd()
				return t, t.textInput.Focus()
			}
			return t, nil
		case "x", "delete":
			if item, ok := t.list.SelectedItem().(keyItem); ok {
				t.resetKeys(item.action)
				return t, t.list.SetItems(buildKeyItems(t.cfg))
			}
			return t, nil
		}
	}

	var cmd tea.Cmd
	t.list, cmd = t.list.Update(msg)
	return t, cmd
}

func (t KeysTab) updateEditing(msg tea.Msg) (KeysTab, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok {
		switch km.String() {
		case "enter":
			if item, ok := t.list.SelectedItem().(keyItem); ok {
				t.setKeys(item.action, splitKeyList(t.textInput.Value()))
			}
			t.editing = false
			t.textInput.Blur()
			return t, t.list.SetItems(buildKeyItems(t.cfg))
		case "esc":
			t.editing = false
			t.textInput.Blur()
			return t, nil
		}
	}

	var cmd tea.Cmd
	t.textInput, cmd = t.textInput.Update(msg)
	return t, cmd
}

// setKeys stores keys as an override of action. Keys equal to the defaults
// remove the override; an empty list is ignored.
func (t *KeysTab) setKeys(action string, keys []string) {
	if len(keys) == 0 {
		return
	}
	if slices.Equal(keys, session.DefaultKeys(action)) {
		t.resetKeys(action)
		return
	}
	if t.cfg.Keys == nil {
		t.cfg.Keys = make(map[string][]string)
	}
	t.cfg.Keys[action] = keys
}

func (t *KeysTab) resetKeys(action string) {
	delete(t.cfg.Keys, action)
}

func splitKeyList(s string) []string {
	var keys []string
	for _, k := range strings.Split(s, ",") {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}

func (t KeysTab) View() string {
	footer := dimStyle.Render("  enter: edit keys  x: reset to default")
	if t.editing {
		footer = "  " + t.textInput.View()
	}
	return lipgloss.JoinVertical(lipgloss.Left, t.list.View(), "", footer)
}
