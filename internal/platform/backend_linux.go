//go:build linux

package platform

import (
	"fmt"
	"strings"

	"github.com/1broseidon/vimwn/internal/x11"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
)

// LinuxBackend implements WindowSystem on top of an EWMH-compliant X11
// window manager.
type LinuxBackend struct {
	conn *x11.Connection
}

var _ WindowSystem = (*LinuxBackend)(nil)

// NewLinuxBackend creates a Linux platform backend from an existing X11 connection.
func NewLinuxBackend(conn *x11.Connection) *LinuxBackend {
	return &LinuxBackend{conn: conn}
}

// NewLinuxBackendFromDisplay creates a new Linux backend by opening a fresh X11 connection.
func NewLinuxBackendFromDisplay() (*LinuxBackend, error) {
	conn, err := x11.NewConnection()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X11: %w", err)
	}
	return &LinuxBackend{conn: conn}, nil
}

// Disconnect closes the underlying X11 connection.
func (b *LinuxBackend) Disconnect() {
	if b != nil && b.conn != nil {
		b.conn.Close()
	}
}

// Connection exposes the X11 connection for the overlay and key grabs.
func (b *LinuxBackend) Connection() *x11.Connection {
	if b == nil {
		return nil
	}
	return b.conn
}

// XUtil returns the underlying xgbutil connection for X11-specific operations.
func (b *LinuxBackend) XUtil() *xgbutil.XUtil {
	if b == nil || b.conn == nil {
		return nil
	}
	return b.conn.XUtil
}

// ListWindows returns normal application windows in _NET_CLIENT_LIST order.
// Windows on other workspaces are included; callers filter by workspace.
func (b *LinuxBackend) ListWindows() ([]Window, error) {
	conn, err := b.connection()
	if err != nil {
		return nil, err
	}

	clients, err := ewmh.ClientListGet(conn.XUtil)
	if err != nil {
		return nil, fmt.Errorf("failed to get client list: %w", err)
	}

	windows := make([]Window, 0, len(clients))
	for _, windowID := range clients {
		if !conn.IsNormalWindow(windowID) {
			continue
		}

		x, y, w, h, err := conn.GetWindowRect(windowID)
		if err != nil {
			// Window vanished between the list and the query.
			continue
		}

		workspace, err := conn.GetWindowDesktop(windowID)
		if err != nil {
			workspace = StickyWorkspace
		}

		state := conn.GetWindowState(windowID)
		left, _, top, _, _ := conn.GetFrameExtents(windowID)

		pid := 0
		if p, err := ewmh.WmPidGet(conn.XUtil, windowID); err == nil {
			pid = int(p)
		}

		windows = append(windows, Window{
			ID:           WindowID(windowID),
			PID:          pid,
			AppID:        b.windowAppID(windowID),
			Title:        b.windowTitle(windowID),
			Bounds:       Rect{X: x, Y: y, Width: w, Height: h},
			Workspace:    workspace,
			Minimized:    state.Hidden,
			MaximizedH:   state.MaximizedH,
			MaximizedV:   state.MaximizedV,
			SkipTasklist: state.SkipTaskbar,
			Frame: Decoration{
				HasFrame: left > 0 || top > 0,
				Width:    left,
				Height:   top,
			},
		})
	}
	return windows, nil
}

// ActiveWorkspace returns the current desktop index.
func (b *LinuxBackend) ActiveWorkspace() (int, error) {
	conn, err := b.connection()
	if err != nil {
		return 0, err
	}
	return conn.GetCurrentDesktop()
}

// Stacking returns managed windows ordered bottom to top.
func (b *LinuxBackend) Stacking() ([]WindowID, error) {
	conn, err := b.connection()
	if err != nil {
		return nil, err
	}
	wins, err := conn.GetStacking()
	if err != nil {
		return nil, err
	}
	ids := make([]WindowID, len(wins))
	for i, w := range wins {
		ids[i] = WindowID(w)
	}
	return ids, nil
}

// SetGeometry moves and resizes a window to the specified bounds.
func (b *LinuxBackend) SetGeometry(windowID WindowID, bounds Rect) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	return conn.MoveResizeWindow(xproto.Window(windowID), bounds.X, bounds.Y, bounds.Width, bounds.Height)
}

func (b *LinuxBackend) Activate(windowID WindowID, timestamp uint32) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	return conn.FocusWindow(xproto.Window(windowID), timestamp)
}

func (b *LinuxBackend) Close(windowID WindowID, timestamp uint32) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	return conn.CloseWindow(xproto.Window(windowID), timestamp)
}

// Minimize minimizes a window via WM_CHANGE_STATE.
func (b *LinuxBackend) Minimize(windowID WindowID) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	return conn.Iconify(xproto.Window(windowID))
}

func (b *LinuxBackend) Maximize(windowID WindowID) error {
	return b.setMaximized(windowID, true, true, true)
}

func (b *LinuxBackend) Unmaximize(windowID WindowID) error {
	return b.setMaximized(windowID, true, true, false)
}

func (b *LinuxBackend) UnmaximizeHorizontally(windowID WindowID) error {
	return b.setMaximized(windowID, true, false, false)
}

func (b *LinuxBackend) UnmaximizeVertically(windowID WindowID) error {
	return b.setMaximized(windowID, false, true, false)
}

// WorkArea returns the dock-free area of the monitor holding the window.
func (b *LinuxBackend) WorkArea(windowID WindowID) (Rect, error) {
	conn, err := b.connection()
	if err != nil {
		return Rect{}, err
	}
	mon, err := conn.WorkAreaForWindow(xproto.Window(windowID))
	if err != nil {
		return Rect{}, err
	}
	return Rect{X: mon.X, Y: mon.Y, Width: mon.Width, Height: mon.Height}, nil
}

func (b *LinuxBackend) Decorations(windowID WindowID) (bool, uint, error) {
	conn, err := b.connection()
	if err != nil {
		return false, 0, err
	}
	decorated, flags := conn.GetDecorations(xproto.Window(windowID))
	return decorated, flags, nil
}

func (b *LinuxBackend) SetDecorations(windowID WindowID, flags uint) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	return conn.SetDecorations(xproto.Window(windowID), flags)
}

func (b *LinuxBackend) setMaximized(windowID WindowID, horizontal, vertical, maximize bool) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	return conn.SetMaximized(xproto.Window(windowID), horizontal, vertical, maximize)
}

func (b *LinuxBackend) connection() (*x11.Connection, error) {
	if b == nil || b.conn == nil {
		return nil, fmt.Errorf("x11 backend connection is nil")
	}
	return b.conn, nil
}

func (b *LinuxBackend) windowAppID(windowID xproto.Window) string {
	wmClass, err := icccm.WmClassGet(b.conn.XUtil, windowID)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(wmClass.Class)
}

func (b *LinuxBackend) windowTitle(windowID xproto.Window) string {
	title, err := ewmh.WmNameGet(b.conn.XUtil, windowID)
	if err == nil {
		title = strings.TrimSpace(title)
		if title != "" {
			return title
		}
	}

	title, err = icccm.WmNameGet(b.conn.XUtil, windowID)
	if err == nil {
		title = strings.TrimSpace(title)
		if title != "" {
			return title
		}
	}

	return ""
}
