package session

import (
	"errors"
	"fmt"
	"sort"

	"github.com/1broseidon/vimwn/internal/command"
	"github.com/1broseidon/vimwn/internal/windows"
)

// ErrKeymapAlreadyBuilt is returned when Build is called twice on one builder.
var ErrKeymapAlreadyBuilt = errors.New("keymap already built")

// Action is a Key-mode command bound to one or more keys.
type Action struct {
	Name string
	Run  func(s *Session, in command.Input) error
	// Hide returns to Normal mode after the action runs.
	Hide bool
}

// Keymap maps key names to actions. It is immutable once built.
type Keymap struct {
	bindings map[string]Action
}

// Lookup returns the action bound to key.
func (k *Keymap) Lookup(key string) (Action, bool) {
	a, ok := k.bindings[key]
	return a, ok
}

// Keys returns the bound keys in sorted order.
func (k *Keymap) Keys() []string {
	keys := make([]string, 0, len(k.bindings))
	for key := range k.bindings {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// KeymapBuilder collects bindings for a Keymap.
type KeymapBuilder struct {
	bindings map[string]Action
	built    bool
}

// NewKeymapBuilder creates an empty builder.
func NewKeymapBuilder() *KeymapBuilder {
	return &KeymapBuilder{bindings: make(map[string]Action)}
}

// Bind maps each key to action, replacing earlier bindings of the key.
func (b *KeymapBuilder) Bind(action Action, keys ...string) *KeymapBuilder {
	for _, key := range keys {
		b.bindings[key] = action
	}
	return b
}

// Build returns the Keymap. A builder can only be built once.
func (b *KeymapBuilder) Build() (*Keymap, error) {
	if b.built {
		return nil, ErrKeymapAlreadyBuilt
	}
	b.built = true
	bindings := make(map[string]Action, len(b.bindings))
	for k, v := range b.bindings {
		bindings[k] = v
	}
	return &Keymap{bindings: bindings}, nil
}

type defaultBinding struct {
	action Action
	keys   []string
}

func navigate(direction int, axis windows.Axis) func(*Session, command.Input) error {
	return func(s *Session, _ command.Input) error {
		s.nav.Navigate(direction, axis)
		return nil
	}
}

func snap(axis windows.Axis, position float64) func(*Session, command.Input) error {
	return func(s *Session, _ command.Input) error {
		return s.nav.Snap(axis, position)
	}
}

func shiftCenter(sign float64) func(*Session, command.Input) error {
	return func(s *Session, _ command.Input) error {
		return s.nav.ShiftCenter(sign * s.opts.WidthStep)
	}
}

var defaultBindings = []defaultBinding{
	{Action{Name: "cycle", Run: func(s *Session, _ command.Input) error { s.nav.Cycle(); return nil }}, []string{"w", "W"}},
	{Action{Name: "navigate_left", Run: navigate(-1, windows.Horizontal)}, []string{"h", "Left"}},
	{Action{Name: "navigate_down", Run: navigate(1, windows.Vertical)}, []string{"j", "Down"}},
	{Action{Name: "navigate_up", Run: navigate(-1, windows.Vertical)}, []string{"k", "Up"}},
	{Action{Name: "navigate_right", Run: navigate(1, windows.Horizontal)}, []string{"l", "Right"}},
	{Action{Name: "snap_left", Run: snap(windows.Horizontal, 0)}, []string{"H"}},
	{Action{Name: "snap_down", Run: snap(windows.Vertical, 0.5)}, []string{"J"}},
	{Action{Name: "snap_up", Run: snap(windows.Vertical, 0)}, []string{"K"}},
	{Action{Name: "snap_right", Run: snap(windows.Horizontal, 0.5)}, []string{"L"}},
	{Action{Name: "decrease_width", Run: shiftCenter(-1)}, []string{"less"}},
	{Action{Name: "increase_width", Run: shiftCenter(1)}, []string{"greater"}},
	{Action{Name: "equalize", Run: func(s *Session, _ command.Input) error { return s.nav.Equalize() }}, []string{"equal"}},
	{Action{Name: "centralize", Run: func(s *Session, _ command.Input) error { return s.nav.Centralize() }}, []string{"c"}},
	{Action{Name: "only", Run: func(s *Session, _ command.Input) error { return s.nav.Only() }}, []string{"o"}},
	{Action{Name: "previous", Run: func(s *Session, _ command.Input) error { s.nav.NavigateToPrevious(); return nil }}, []string{"p"}},
	{Action{Name: "quit", Run: func(*Session, command.Input) error { return nil }, Hide: true}, []string{"q"}},
	{Action{Name: "command_mode", Run: func(s *Session, in command.Input) error { s.enterCommandMode(in.Time, ""); return nil }}, []string{"colon"}},
	{Action{Name: "clear_messages", Run: func(s *Session, _ command.Input) error { s.messages = nil; return nil }}, []string{"Return"}},
	{Action{Name: "hide", Run: func(*Session, command.Input) error { return nil }, Hide: true}, []string{"Escape", "Ctrl+bracketleft"}},
}

// ActionNames lists the names accepted as keys of DefaultKeymap overrides.
func ActionNames() []string {
	names := make([]string, len(defaultBindings))
	for i, b := range defaultBindings {
		names[i] = b.action.Name
	}
	return names
}

// DefaultKeys returns the keys bound to action when it is not overridden.
func DefaultKeys(action string) []string {
	for _, b := range defaultBindings {
		if b.action.Name == action {
			return append([]string(nil), b.keys...)
		}
	}
	return nil
}

// DefaultKeymap builds the standard bindings. overrides replaces the keys of
// the named actions.
func DefaultKeymap(overrides map[string][]string) (*Keymap, error) {
	known := make(map[string]bool, len(defaultBindings))
	for _, b := range defaultBindings {
		known[b.action.Name] = true
	}
	for name := range overrides {
		if !known[name] {
			return nil, fmt.Errorf("unknown key action %q", name)
		}
	}

	builder := NewKeymapBuilder()
	for _, b := range defaultBindings {
		keys := b.keys
		if custom, ok := overrides[b.action.Name]; ok {
			keys = custom
		}
		builder.Bind(b.action, keys...)
	}
	return builder.Build()
}
