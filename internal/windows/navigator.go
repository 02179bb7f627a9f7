package windows

import (
	"errors"
	"fmt"
	"strings"

	"github.com/1broseidon/vimwn/internal/platform"
	"github.com/BurntSushi/xgbutil/motif"
)

const (
	defaultCenter = 0.5
	minCenter     = 0.1
	maxCenter     = 0.9
)

// ErrUnknownDecoration is returned by Decorate for names not in DecorationNames.
var ErrUnknownDecoration = errors.New("unknown decoration")

// decorationPresets maps preset names to Motif decoration flags, in the
// order they are offered as hints.
var decorationPresets = []struct {
	name  string
	flags uint
}{
	{"ALL", motif.DecorationAll},
	{"BORDER", motif.DecorationBorder},
	{"RESIZEH", motif.DecorationResizeH},
	{"TITLE", motif.DecorationTitle},
	{"MENU", motif.DecorationMenu},
	{"MINIMIZE", motif.DecorationMinimize},
	{"MAXIMIZE", motif.DecorationMaximize},
	{"NONE", motif.DecorationNone},
}

// DecorationNames lists the presets accepted by Decorate.
func DecorationNames() []string {
	names := make([]string, len(decorationPresets))
	for i, p := range decorationPresets {
		names[i] = p.name
	}
	return names
}

// Options tunes geometry placement.
type Options struct {
	// NativeDecorations disables frame correction when the window manager
	// already accounts for decorations in requested geometry.
	NativeDecorations bool
}

// Navigator implements directional navigation and tiling over a Registry.
// Operations without an active window, or without the second window they
// need, do nothing and return nil.
type Navigator struct {
	reg  *Registry
	ws   platform.WindowSystem
	opts Options

	center   float64
	pair     [2]platform.WindowID
	original map[platform.WindowID]uint
}

// NewNavigator creates a navigator acting on reg through ws.
func NewNavigator(reg *Registry, ws platform.WindowSystem, opts Options) *Navigator {
	return &Navigator{
		reg:      reg,
		ws:       ws,
		opts:     opts,
		center:   defaultCenter,
		original: make(map[platform.WindowID]uint),
	}
}

// SetOptions replaces the placement options, e.g. after a config reload.
func (n *Navigator) SetOptions(opts Options) {
	n.opts = opts
}

// Registry returns the registry the navigator acts on.
func (n *Navigator) Registry() *Registry {
	return n.reg
}

// Cycle makes the next window along the x line active, wrapping around.
func (n *Navigator) Cycle() {
	line := n.reg.XLine()
	idx := indexOf(line, n.reg.Active())
	if idx < 0 || len(line) == 0 {
		return
	}
	n.reg.setActive(line[(idx+1)%len(line)])
	n.reg.MarkStaged()
}

// Navigate moves the active window to the nearest window in direction
// (+1 or -1) along axis. Among windows beyond the active one, the closest
// along the perpendicular axis wins.
func (n *Navigator) Navigate(direction int, axis Axis) {
	active := n.reg.Active()
	if active == nil || direction == 0 {
		return
	}
	line := n.reg.XLine()
	if axis == Vertical {
		line = n.reg.YLine()
	}
	if target := lookAt(line, active, direction, axis); target != nil {
		n.reg.setActive(target)
		n.reg.MarkStaged()
	}
}

func lookAt(line []*platform.Window, ref *platform.Window, direction int, axis Axis) *platform.Window {
	idx := indexOf(line, ref)
	if idx < 0 {
		return nil
	}
	step := 1
	if direction < 0 {
		step = -1
	}

	coord := axis.Coordinate(ref)
	perp := axis.Perpendicular()
	lateral := perp.Coordinate(ref)

	var best *platform.Window
	bestDist := 0
	for i := idx + step; i >= 0 && i < len(line); i += step {
		w := line[i]
		if axis.Coordinate(w) == coord {
			continue
		}
		dist := abs(perp.Coordinate(w) - lateral)
		if best == nil || dist < bestDist {
			best = w
			bestDist = dist
		}
	}
	return best
}

// NavigateToPrevious activates the window right below the top of the stack.
func (n *Navigator) NavigateToPrevious() {
	stacked := n.reg.Stacked()
	if len(stacked) < 2 {
		return
	}
	n.reg.setActive(stacked[1])
	n.reg.MarkStaged()
}

// Snap tiles the active window over half of the work area along axis,
// starting at position (a ratio of the work area, 0 or 0.5), spanning the
// whole work area on the perpendicular axis.
func (n *Navigator) Snap(axis Axis, position float64) error {
	active := n.reg.Active()
	if active == nil {
		return nil
	}
	var err error
	if axis == Horizontal {
		err = n.Resize(active, position, 0, 0.5, 1)
	} else {
		err = n.Resize(active, 0, position, 1, 0.5)
	}
	if err != nil {
		return err
	}
	n.reg.MarkStaged()
	return nil
}

// Resize places win at the given ratios of its monitor's work area.
func (n *Navigator) Resize(win *platform.Window, xRatio, yRatio, widthRatio, heightRatio float64) error {
	if win == nil {
		return nil
	}
	wa, err := n.ws.WorkArea(win.ID)
	if err != nil {
		return fmt.Errorf("failed to read work area: %w", err)
	}
	target := platform.Rect{
		X:      wa.X + int(float64(wa.Width)*xRatio),
		Y:      wa.Y + int(float64(wa.Height)*yRatio),
		Width:  int(float64(wa.Width) * widthRatio),
		Height: int(float64(wa.Height) * heightRatio),
	}
	return n.place(win, target)
}

// Equalize splits the work area evenly between the two front-most windows.
func (n *Navigator) Equalize() error {
	n.center = defaultCenter
	return n.split()
}

// ShiftCenter moves the split between the two front-most windows by delta.
// The split starts from the middle again when the two windows have changed
// since the last split.
func (n *Navigator) ShiftCenter(delta float64) error {
	if pair, ok := n.frontPair(); ok && pair != n.pair {
		n.center = defaultCenter
	}
	n.center = clamp(n.center+delta, minCenter, maxCenter)
	return n.split()
}

// Center returns the current split fraction used by Equalize and ShiftCenter.
func (n *Navigator) Center() float64 {
	return n.center
}

func (n *Navigator) split() error {
	stacked := n.reg.Stacked()
	if len(stacked) < 2 {
		return nil
	}
	left, right := stacked[1], stacked[0]
	if right.Bounds.X < left.Bounds.X {
		left, right = right, left
	}

	wa, err := n.ws.WorkArea(left.ID)
	if err != nil {
		return fmt.Errorf("failed to read work area: %w", err)
	}
	leftWidth := int(float64(wa.Width) * n.center)
	err = n.place(left, platform.Rect{X: wa.X, Y: wa.Y, Width: leftWidth, Height: wa.Height})
	if err != nil {
		return err
	}
	err = n.place(right, platform.Rect{X: wa.X + leftWidth, Y: wa.Y, Width: wa.Width - leftWidth, Height: wa.Height})
	if err != nil {
		return err
	}
	n.pair, _ = n.frontPair()
	n.reg.MarkStaged()
	return nil
}

// frontPair identifies the two front-most windows regardless of which one
// is focused.
func (n *Navigator) frontPair() ([2]platform.WindowID, bool) {
	stacked := n.reg.Stacked()
	if len(stacked) < 2 {
		return [2]platform.WindowID{}, false
	}
	a, b := stacked[0].ID, stacked[1].ID
	if b < a {
		a, b = b, a
	}
	return [2]platform.WindowID{a, b}, true
}

// MoveTo places the active window origin at (x, y) relative to the work
// area, keeping its size.
func (n *Navigator) MoveTo(x, y int) error {
	active := n.reg.Active()
	if active == nil {
		return nil
	}
	wa, err := n.ws.WorkArea(active.ID)
	if err != nil {
		return fmt.Errorf("failed to read work area: %w", err)
	}
	target := platform.Rect{
		X:      wa.X + x,
		Y:      wa.Y + y,
		Width:  active.Bounds.Width,
		Height: active.Bounds.Height,
	}
	if err := n.place(active, target); err != nil {
		return err
	}
	n.reg.MarkStaged()
	return nil
}

// Centralize centers the active window in its work area. Windows larger
// than the work area are shrunk to fit.
func (n *Navigator) Centralize() error {
	active := n.reg.Active()
	if active == nil {
		return nil
	}
	wa, err := n.ws.WorkArea(active.ID)
	if err != nil {
		return fmt.Errorf("failed to read work area: %w", err)
	}
	w := min(active.Bounds.Width, wa.Width)
	h := min(active.Bounds.Height, wa.Height)
	target := platform.Rect{
		X:      wa.X + (wa.Width-w)/2,
		Y:      wa.Y + (wa.Height-h)/2,
		Width:  w,
		Height: h,
	}
	if err := n.place(active, target); err != nil {
		return err
	}
	n.reg.MarkStaged()
	return nil
}

// Maximize maximizes the active window in both dimensions.
func (n *Navigator) Maximize() error {
	active := n.reg.Active()
	if active == nil {
		return nil
	}
	if err := n.ws.Maximize(active.ID); err != nil {
		return fmt.Errorf("failed to maximize window: %w", err)
	}
	active.MaximizedH, active.MaximizedV = true, true
	n.reg.MarkStaged()
	return nil
}

// Decorate applies the named decoration preset to the active window. The
// flags a window had before its first change are kept in Original.
func (n *Navigator) Decorate(name string) error {
	flags, ok := presetFlags(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownDecoration, name)
	}
	active := n.reg.Active()
	if active == nil {
		return nil
	}
	if _, seen := n.original[active.ID]; !seen {
		_, current, err := n.ws.Decorations(active.ID)
		if err != nil {
			return fmt.Errorf("failed to read decorations: %w", err)
		}
		n.original[active.ID] = current
	}
	if err := n.ws.SetDecorations(active.ID, flags); err != nil {
		return fmt.Errorf("failed to set decorations: %w", err)
	}
	n.reg.MarkStaged()
	return nil
}

// Original returns the decoration flags a window had before Decorate first
// touched it.
func (n *Navigator) Original(id platform.WindowID) (uint, bool) {
	flags, ok := n.original[id]
	return flags, ok
}

// Only minimizes every visible window except the active one.
func (n *Navigator) Only() error {
	active := n.reg.Active()
	if active == nil {
		return nil
	}
	for _, w := range append([]*platform.Window(nil), n.reg.Visible()...) {
		if w == active {
			continue
		}
		if err := n.ws.Minimize(w.ID); err != nil {
			return fmt.Errorf("failed to minimize window %d: %w", w.ID, err)
		}
		w.Minimized = true
	}
	n.reg.Refresh()
	n.reg.MarkStaged()
	return nil
}

// Close asks the window system to close the window and forgets it once the
// request was accepted.
func (n *Navigator) Close(w *platform.Window, timestamp uint32) error {
	if w == nil {
		return nil
	}
	id := w.ID
	if err := n.ws.Close(id, timestamp); err != nil {
		return fmt.Errorf("failed to close window %d: %w", id, err)
	}
	n.reg.Remove(id)
	return nil
}

// place unmaximizes win and requests target, correcting for the frame when
// the window manager does not.
func (n *Navigator) place(win *platform.Window, target platform.Rect) error {
	if err := n.unmaximize(win); err != nil {
		return err
	}
	requested := target
	if !n.opts.NativeDecorations && win.Frame.HasFrame {
		requested.X -= win.Frame.Width
		requested.Y -= win.Frame.Height
		requested.Width += win.Frame.Width
		requested.Height += win.Frame.Height
	}
	if err := n.ws.SetGeometry(win.ID, requested); err != nil {
		return fmt.Errorf("failed to set geometry of window %d: %w", win.ID, err)
	}
	win.Bounds = target
	n.reg.recomputeLines()
	return nil
}

func (n *Navigator) unmaximize(win *platform.Window) error {
	var err error
	switch {
	case win.MaximizedH && win.MaximizedV:
		err = n.ws.Unmaximize(win.ID)
	case win.MaximizedH:
		err = n.ws.UnmaximizeHorizontally(win.ID)
	case win.MaximizedV:
		err = n.ws.UnmaximizeVertically(win.ID)
	default:
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to unmaximize window %d: %w", win.ID, err)
	}
	win.MaximizedH, win.MaximizedV = false, false
	return nil
}

func presetFlags(name string) (uint, bool) {
	name = strings.ToUpper(strings.TrimSpace(name))
	for _, p := range decorationPresets {
		if p.name == name {
			return p.flags, true
		}
	}
	return 0, false
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
