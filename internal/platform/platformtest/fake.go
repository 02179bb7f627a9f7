// Package platformtest provides an in-memory WindowSystem for tests.
package platformtest

import (
	"fmt"

	"github.com/1broseidon/vimwn/internal/platform"
)

// Call records one mutation made through the fake.
type Call struct {
	Op        string
	ID        platform.WindowID
	Rect      platform.Rect
	Flags     uint
	Timestamp uint32
}

// WindowSystem is a scripted platform.WindowSystem. Windows are listed in
// slice order; Stack is bottom to top and defaults to slice order.
type WindowSystem struct {
	Windows   []platform.Window
	Stack     []platform.WindowID
	Workspace int
	Area      platform.Rect
	Decor     map[platform.WindowID]uint

	// Err, when set, is returned by every mutation.
	Err   error
	Calls []Call
}

var _ platform.WindowSystem = (*WindowSystem)(nil)

// New returns a fake with a 1000x800 work area at the origin.
func New(wins ...platform.Window) *WindowSystem {
	return &WindowSystem{
		Windows: wins,
		Area:    platform.Rect{Width: 1000, Height: 800},
		Decor:   make(map[platform.WindowID]uint),
	}
}

// Ops returns the recorded operation names in order.
func (f *WindowSystem) Ops() []string {
	ops := make([]string, len(f.Calls))
	for i, c := range f.Calls {
		ops[i] = c.Op
	}
	return ops
}

// Last returns the most recent call with the given op.
func (f *WindowSystem) Last(op string) (Call, bool) {
	for i := len(f.Calls) - 1; i >= 0; i-- {
		if f.Calls[i].Op == op {
			return f.Calls[i], true
		}
	}
	return Call{}, false
}

func (f *WindowSystem) ListWindows() ([]platform.Window, error) {
	return append([]platform.Window(nil), f.Windows...), nil
}

func (f *WindowSystem) ActiveWorkspace() (int, error) {
	return f.Workspace, nil
}

func (f *WindowSystem) Stacking() ([]platform.WindowID, error) {
	if f.Stack != nil {
		return f.Stack, nil
	}
	ids := make([]platform.WindowID, len(f.Windows))
	for i, w := range f.Windows {
		ids[i] = w.ID
	}
	return ids, nil
}

func (f *WindowSystem) SetGeometry(id platform.WindowID, bounds platform.Rect) error {
	return f.record(Call{Op: "SetGeometry", ID: id, Rect: bounds})
}

func (f *WindowSystem) Activate(id platform.WindowID, timestamp uint32) error {
	return f.record(Call{Op: "Activate", ID: id, Timestamp: timestamp})
}

// Close records the call and drops the window from later listings.
func (f *WindowSystem) Close(id platform.WindowID, timestamp uint32) error {
	if err := f.record(Call{Op: "Close", ID: id, Timestamp: timestamp}); err != nil {
		return err
	}
	for i, w := range f.Windows {
		if w.ID == id {
			f.Windows = append(f.Windows[:i:i], f.Windows[i+1:]...)
			break
		}
	}
	return nil
}

func (f *WindowSystem) Minimize(id platform.WindowID) error {
	return f.record(Call{Op: "Minimize", ID: id})
}

func (f *WindowSystem) Maximize(id platform.WindowID) error {
	return f.record(Call{Op: "Maximize", ID: id})
}

func (f *WindowSystem) Unmaximize(id platform.WindowID) error {
	return f.record(Call{Op: "Unmaximize", ID: id})
}

func (f *WindowSystem) UnmaximizeHorizontally(id platform.WindowID) error {
	return f.record(Call{Op: "UnmaximizeHorizontally", ID: id})
}

func (f *WindowSystem) UnmaximizeVertically(id platform.WindowID) error {
	return f.record(Call{Op: "UnmaximizeVertically", ID: id})
}

func (f *WindowSystem) WorkArea(id platform.WindowID) (platform.Rect, error) {
	return f.Area, nil
}

func (f *WindowSystem) Decorations(id platform.WindowID) (bool, uint, error) {
	flags, ok := f.Decor[id]
	if !ok {
		return true, 1, nil
	}
	return flags != 0, flags, nil
}

func (f *WindowSystem) SetDecorations(id platform.WindowID, flags uint) error {
	if err := f.record(Call{Op: "SetDecorations", ID: id, Flags: flags}); err != nil {
		return err
	}
	f.Decor[id] = flags
	return nil
}

func (f *WindowSystem) record(c Call) error {
	f.Calls = append(f.Calls, c)
	if f.Err != nil {
		return fmt.Errorf("%s: %w", c.Op, f.Err)
	}
	return nil
}

// Win builds a normal window on workspace 0.
func Win(id platform.WindowID, title string, x, y, w, h int) platform.Window {
	return platform.Window{
		ID:     id,
		Title:  title,
		AppID:  title,
		Bounds: platform.Rect{X: x, Y: y, Width: w, Height: h},
	}
}
