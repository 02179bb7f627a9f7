package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
)

// sourcePager marks client messages as direct user actions per EWMH.
const sourcePager = 2

// GetCurrentDesktop returns the current virtual desktop number (0-indexed).
// Uses _NET_CURRENT_DESKTOP atom. Returns 0 with an error if detection fails.
func (c *Connection) GetCurrentDesktop() (int, error) {
	desktop, err := ewmh.CurrentDesktopGet(c.XUtil)
	if err != nil {
		return 0, fmt.Errorf("failed to get current desktop: %w", err)
	}
	return int(desktop), nil
}

// GetWindowDesktop returns the desktop number a window is on.
// Uses _NET_WM_DESKTOP atom. Returns -1 for "sticky" windows (visible on all desktops).
// Returns 0 with an error if detection fails.
func (c *Connection) GetWindowDesktop(windowID xproto.Window) (int, error) {
	desktop, err := ewmh.WmDesktopGet(c.XUtil, windowID)
	if err != nil {
		return 0, fmt.Errorf("failed to get window desktop: %w", err)
	}
	// 0xFFFFFFFF means the window is on all desktops (sticky)
	if desktop == 0xFFFFFFFF {
		return -1, nil
	}
	return int(desktop), nil
}

// FocusWindow activates and raises a window using _NET_ACTIVE_WINDOW.
// The timestamp should be the time of the user event that caused the
// activation so focus-stealing prevention lets it through.
func (c *Connection) FocusWindow(windowID xproto.Window, timestamp uint32) error {
	current, _ := ewmh.ActiveWindowGet(c.XUtil)
	if err := ewmh.ActiveWindowReqExtra(c.XUtil, windowID, sourcePager, xproto.Timestamp(timestamp), current); err != nil {
		return fmt.Errorf("failed to activate window %d: %w", windowID, err)
	}
	return nil
}

// CloseWindow requests a graceful close using _NET_CLOSE_WINDOW.
func (c *Connection) CloseWindow(windowID xproto.Window, timestamp uint32) error {
	if err := ewmh.CloseWindowExtra(c.XUtil, windowID, xproto.Timestamp(timestamp), sourcePager); err != nil {
		return fmt.Errorf("failed to close window %d: %w", windowID, err)
	}
	return nil
}
