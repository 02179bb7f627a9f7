package x11

import (
	"fmt"
	"slices"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
)

// Monitor represents a physical display
type Monitor struct {
	ID     int
	Name   string
	X      int
	Y      int
	Width  int
	Height int
}

// GetMonitors retrieves all active monitors using XRandR
func (c *Connection) GetMonitors() ([]Monitor, error) {
	// Initialize RandR if not already done
	if err := randr.Init(c.XUtil.Conn()); err != nil {
		return nil, fmt.Errorf("randr init failed: %w", err)
	}

	// Get screen resources
	resources, err := randr.GetScreenResources(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get screen resources: %w", err)
	}

	var monitors []Monitor

	// Query each CRTC for active monitors
	for i, crtc := range resources.Crtcs {
		crtcInfo, err := randr.GetCrtcInfo(c.XUtil.Conn(), crtc, resources.ConfigTimestamp).Reply()
		if err != nil {
			continue
		}

		// Skip disabled CRTCs
		if crtcInfo.Width == 0 || crtcInfo.Height == 0 || len(crtcInfo.Outputs) == 0 {
			continue
		}

		// Get output name
		outputName := fmt.Sprintf("Monitor%d", i)
		if len(crtcInfo.Outputs) > 0 {
			outputInfo, err := randr.GetOutputInfo(c.XUtil.Conn(), crtcInfo.Outputs[0], resources.ConfigTimestamp).Reply()
			if err == nil {
				outputName = string(outputInfo.Name)
			}
		}

		monitors = append(monitors, Monitor{
			ID:     i,
			Name:   outputName,
			X:      int(crtcInfo.X),
			Y:      int(crtcInfo.Y),
			Width:  int(crtcInfo.Width),
			Height: int(crtcInfo.Height),
		})
	}

	return monitors, nil
}

// WorkAreaForWindow returns the usable area of the monitor holding the
// window's center, excluding docks and panels. When the window cannot be
// located the monitor under the pointer is used, then the first monitor.
func (c *Connection) WorkAreaForWindow(windowID xproto.Window) (Monitor, error) {
	monitors, err := c.GetMonitors()
	if err != nil {
		return Monitor{}, err
	}
	if len(monitors) == 0 {
		return Monitor{}, fmt.Errorf("no monitors found")
	}

	var mon *Monitor
	if windowID != 0 {
		mon = findMonitorForWindow(c, monitors, windowID)
	}
	if mon == nil {
		mon = findMonitorForPointer(c, monitors)
	}
	if mon == nil {
		mon = &monitors[0]
	}

	area := *mon
	if !applyDockStruts(c, &area) {
		c.clipToWorkarea(&area)
	}
	return area, nil
}

// clipToWorkarea intersects the monitor with _NET_WORKAREA of the current
// desktop. The monitor is left untouched when they do not overlap.
func (c *Connection) clipToWorkarea(area *Monitor) {
	workArea, err := ewmh.WorkareaGet(c.XUtil)
	if err != nil || len(workArea) == 0 {
		return
	}
	desktop := 0
	if current, err := ewmh.CurrentDesktopGet(c.XUtil); err == nil && int(current) < len(workArea) {
		desktop = int(current)
	}
	wa := workArea[desktop]

	clipped, ok := area.bounds().intersect(box{wa.X, wa.Y, wa.X + int(wa.Width), wa.Y + int(wa.Height)})
	if !ok {
		return
	}
	area.X, area.Y = clipped.x1, clipped.y1
	area.Width, area.Height = clipped.width(), clipped.height()
}

// applyDockStruts shrinks the monitor by the struts of dock windows that
// overlap it. It reports whether any dock reserved space on the monitor.
func applyDockStruts(c *Connection, monitor *Monitor) bool {
	rootGeom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(c.Root)).Reply()
	if err != nil {
		return false
	}
	rootW, rootH := int(rootGeom.Width), int(rootGeom.Height)

	clients, err := ewmh.ClientListGet(c.XUtil)
	if err != nil {
		return false
	}

	var struts []ewmh.WmStrutPartial
	for _, id := range clients {
		types, err := ewmh.WmWindowTypeGet(c.XUtil, id)
		if err != nil || !slices.Contains(types, "_NET_WM_WINDOW_TYPE_DOCK") {
			continue
		}
		if sp, err := ewmh.WmStrutPartialGet(c.XUtil, id); err == nil {
			struts = append(struts, *sp)
			continue
		}
		// Docks that only set _NET_WM_STRUT span the whole root edge.
		if s, err := ewmh.WmStrutGet(c.XUtil, id); err == nil {
			struts = append(struts, ewmh.WmStrutPartial{
				Left: s.Left, Right: s.Right, Top: s.Top, Bottom: s.Bottom,
				LeftEndY: uint(rootH - 1), RightEndY: uint(rootH - 1),
				TopEndX: uint(rootW - 1), BottomEndX: uint(rootW - 1),
			})
		}
	}

	inset, ok := insetForStruts(*monitor, rootW, rootH, struts)
	if ok {
		*monitor = inset
	}
	return ok
}

// insetForStruts removes from mon the part of each reserved screen edge
// that overlaps it. Overlapping struts on one edge do not add up; the
// largest wins.
func insetForStruts(mon Monitor, rootW, rootH int, struts []ewmh.WmStrutPartial) (Monitor, bool) {
	var left, right, top, bottom int
	area := mon.bounds()
	for _, sp := range struts {
		if sp.Top > 0 {
			if o, ok := area.intersect(box{int(sp.TopStartX), 0, int(sp.TopEndX) + 1, int(sp.Top)}); ok {
				top = max(top, o.height())
			}
		}
		if sp.Bottom > 0 {
			if o, ok := area.intersect(box{int(sp.BottomStartX), rootH - int(sp.Bottom), int(sp.BottomEndX) + 1, rootH}); ok {
				bottom = max(bottom, o.height())
			}
		}
		if sp.Left > 0 {
			if o, ok := area.intersect(box{0, int(sp.LeftStartY), int(sp.Left), int(sp.LeftEndY) + 1}); ok {
				left = max(left, o.width())
			}
		}
		if sp.Right > 0 {
			if o, ok := area.intersect(box{rootW - int(sp.Right), int(sp.RightStartY), rootW, int(sp.RightEndY) + 1}); ok {
				right = max(right, o.width())
			}
		}
	}
	if left == 0 && right == 0 && top == 0 && bottom == 0 {
		return mon, false
	}

	mon.X += left
	mon.Y += top
	mon.Width = max(mon.Width-left-right, 1)
	mon.Height = max(mon.Height-top-bottom, 1)
	return mon, true
}

// box is a half-open rectangle [x1,x2) x [y1,y2) in root coordinates.
type box struct {
	x1, y1, x2, y2 int
}

func (b box) width() int  { return b.x2 - b.x1 }
func (b box) height() int { return b.y2 - b.y1 }

func (b box) intersect(o box) (box, bool) {
	r := box{max(b.x1, o.x1), max(b.y1, o.y1), min(b.x2, o.x2), min(b.y2, o.y2)}
	if r.x2 <= r.x1 || r.y2 <= r.y1 {
		return box{}, false
	}
	return r, true
}

func (m Monitor) bounds() box {
	return box{m.X, m.Y, m.X + m.Width, m.Y + m.Height}
}

func (m Monitor) contains(x, y int) bool {
	return x >= m.X && x < m.X+m.Width && y >= m.Y && y < m.Y+m.Height
}

func monitorAt(monitors []Monitor, x, y int) *Monitor {
	for i := range monitors {
		if monitors[i].contains(x, y) {
			return &monitors[i]
		}
	}
	return nil
}

func findMonitorForWindow(c *Connection, monitors []Monitor, windowID xproto.Window) *Monitor {
	geom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(windowID)).Reply()
	if err != nil {
		return nil
	}
	pos, err := xproto.TranslateCoordinates(c.XUtil.Conn(), windowID, c.Root, 0, 0).Reply()
	if err != nil {
		return nil
	}
	return monitorAt(monitors, int(pos.DstX)+int(geom.Width)/2, int(pos.DstY)+int(geom.Height)/2)
}

func findMonitorForPointer(c *Connection, monitors []Monitor) *Monitor {
	pointer, err := xproto.QueryPointer(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return nil
	}
	return monitorAt(monitors, int(pointer.RootX), int(pointer.RootY))
}
