package x11

import (
	"errors"
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/motif"
)

const (
	stateHidden     = "_NET_WM_STATE_HIDDEN"
	stateSkipTask   = "_NET_WM_STATE_SKIP_TASKBAR"
	stateMaxHorz    = "_NET_WM_STATE_MAXIMIZED_HORZ"
	stateMaxVert    = "_NET_WM_STATE_MAXIMIZED_VERT"
	stateFullscreen = "_NET_WM_STATE_FULLSCREEN"
)

// WindowState is the subset of _NET_WM_STATE the navigator cares about.
type WindowState struct {
	Hidden      bool
	SkipTaskbar bool
	MaximizedH  bool
	MaximizedV  bool
	Fullscreen  bool
}

// GetWindowState reads _NET_WM_STATE for a window. Windows without the
// property report the zero state.
func (c *Connection) GetWindowState(windowID xproto.Window) WindowState {
	var st WindowState
	states, err := ewmh.WmStateGet(c.XUtil, windowID)
	if err != nil {
		return st
	}
	for _, state := range states {
		switch state {
		case stateHidden:
			st.Hidden = true
		case stateSkipTask:
			st.SkipTaskbar = true
		case stateMaxHorz:
			st.MaximizedH = true
		case stateMaxVert:
			st.MaximizedV = true
		case stateFullscreen:
			st.Fullscreen = true
		}
	}
	return st
}

// MoveResizeWindow moves and resizes a window to the specified geometry
func (c *Connection) MoveResizeWindow(windowID xproto.Window, x, y, width, height int) error {
	// Use EWMH MoveResize for better WM compatibility, falling back to a
	// direct ConfigureWindow when the WM rejects the request.
	err := moveResizeWith(
		func() error { return ewmh.MoveresizeWindow(c.XUtil, windowID, x, y, width, height) },
		func() error {
			mask := uint16(xproto.ConfigWindowX | xproto.ConfigWindowY | xproto.ConfigWindowWidth | xproto.ConfigWindowHeight)
			values := []uint32{uint32(int32(x)), uint32(int32(y)), uint32(width), uint32(height)}
			return xproto.ConfigureWindowChecked(c.XUtil.Conn(), windowID, mask, values).Check()
		},
	)
	if err != nil {
		return fmt.Errorf("failed to move window %d: %w", windowID, err)
	}
	return nil
}

// moveResizeWith runs request and, when it fails, fallback. Both errors are
// returned if neither succeeds.
func moveResizeWith(request, fallback func() error) error {
	err := request()
	if err == nil {
		return nil
	}
	if ferr := fallback(); ferr != nil {
		return errors.Join(err, ferr)
	}
	return nil
}

// SetMaximized adds or removes the maximized states of a window.
func (c *Connection) SetMaximized(windowID xproto.Window, horizontal, vertical, maximize bool) error {
	action := ewmh.StateRemove
	if maximize {
		action = ewmh.StateAdd
	}
	switch {
	case horizontal && vertical:
		return ewmh.WmStateReqExtra(c.XUtil, windowID, action, stateMaxHorz, stateMaxVert, 2)
	case horizontal:
		return ewmh.WmStateReq(c.XUtil, windowID, action, stateMaxHorz)
	case vertical:
		return ewmh.WmStateReq(c.XUtil, windowID, action, stateMaxVert)
	}
	return nil
}

// Iconify asks the window manager to minimize a window via WM_CHANGE_STATE.
func (c *Connection) Iconify(windowID xproto.Window) error {
	reply, err := xproto.InternAtom(c.XUtil.Conn(), false, uint16(len("WM_CHANGE_STATE")), "WM_CHANGE_STATE").Reply()
	if err != nil {
		return err
	}

	const iconicState = 3
	ev := xproto.ClientMessageEvent{
		Format: 32,
		Window: windowID,
		Type:   reply.Atom,
		Data:   xproto.ClientMessageDataUnionData32New([]uint32{iconicState, 0, 0, 0, 0}),
	}

	return xproto.SendEventChecked(
		c.XUtil.Conn(),
		false,
		c.Root,
		xproto.EventMaskSubstructureRedirect|xproto.EventMaskSubstructureNotify,
		string(ev.Bytes()),
	).Check()
}

// GetFrameExtents returns the window decoration sizes (if available)
func (c *Connection) GetFrameExtents(windowID xproto.Window) (left, right, top, bottom int, err error) {
	extents, err := ewmh.FrameExtentsGet(c.XUtil, windowID)
	if err != nil {
		// No frame extents available, return zeros
		return 0, 0, 0, 0, nil
	}

	return extents.Left, extents.Right, extents.Top, extents.Bottom, nil
}

// GetDecorations reads _MOTIF_WM_HINTS. Windows that never set the hint are
// decorated with every decoration.
func (c *Connection) GetDecorations(windowID xproto.Window) (bool, uint) {
	hints, err := motif.WmHintsGet(c.XUtil, windowID)
	if err != nil {
		return true, motif.DecorationAll
	}
	if hints.Flags&motif.HintDecorations == 0 {
		return motif.Decor(hints), motif.DecorationAll
	}
	return motif.Decor(hints), hints.Decoration
}

// SetDecorations writes the Motif decoration flags, keeping any other hints
// the client already set.
func (c *Connection) SetDecorations(windowID xproto.Window, flags uint) error {
	hints, err := motif.WmHintsGet(c.XUtil, windowID)
	if err != nil {
		hints = &motif.Hints{}
	}
	hints.Flags |= motif.HintDecorations
	hints.Decoration = flags
	if err := motif.WmHintsSet(c.XUtil, windowID, hints); err != nil {
		return fmt.Errorf("failed to set decorations on window %d: %w", windowID, err)
	}
	return nil
}

// IsNormalWindow checks if a window is a normal application window
func (c *Connection) IsNormalWindow(windowID xproto.Window) bool {
	types, err := ewmh.WmWindowTypeGet(c.XUtil, windowID)
	if err != nil {
		// If we can't determine type, assume it's normal
		return true
	}

	for _, t := range types {
		if t == "_NET_WM_WINDOW_TYPE_NORMAL" || t == "_NET_WM_WINDOW_TYPE_DIALOG" {
			return true
		}
		// Reject desktop, dock, splash, etc.
		if t == "_NET_WM_WINDOW_TYPE_DESKTOP" ||
			t == "_NET_WM_WINDOW_TYPE_DOCK" ||
			t == "_NET_WM_WINDOW_TYPE_SPLASH" ||
			t == "_NET_WM_WINDOW_TYPE_NOTIFICATION" {
			return false
		}
	}

	// If no specific type is set, assume it's normal
	return len(types) == 0
}

func (c *Connection) GetActiveWindow() (xproto.Window, error) {
	return ewmh.ActiveWindowGet(c.XUtil)
}

// GetStacking returns managed windows ordered bottom to top.
func (c *Connection) GetStacking() ([]xproto.Window, error) {
	wins, err := ewmh.ClientListStackingGet(c.XUtil)
	if err != nil {
		return nil, fmt.Errorf("failed to get stacking order: %w", err)
	}
	return wins, nil
}

// GetWindowRect returns the root-relative geometry of a client window.
func (c *Connection) GetWindowRect(windowID xproto.Window) (x, y, width, height int, err error) {
	geom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(windowID)).Reply()
	if err != nil {
		return 0, 0, 0, 0, err
	}

	translate, err := xproto.TranslateCoordinates(
		c.XUtil.Conn(),
		windowID,
		c.Root,
		0, 0,
	).Reply()
	if err != nil {
		return 0, 0, 0, 0, err
	}

	return int(translate.DstX), int(translate.DstY), int(geom.Width), int(geom.Height), nil
}
