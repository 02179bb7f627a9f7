// Package overlay draws the vimwn panel with core X11 requests and owns the
// keyboard while the panel is shown.
package overlay

import (
	"fmt"
	"sync"

	"github.com/1broseidon/vimwn/internal/logging"
	"github.com/1broseidon/vimwn/internal/platform"
	"github.com/1broseidon/vimwn/internal/session"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/xevent"
)

// Overlay is the X11 session.View. Key presses received while the keyboard
// is grabbed are translated and passed to OnKey.
type Overlay struct {
	xu   *xgbutil.XUtil
	root xproto.Window

	// Bounds returns the area the panel is centered in. Defaults to the
	// whole screen.
	Bounds func() platform.Rect
	// OnKey receives key presses while the panel is shown.
	OnKey func(session.Key)
	// OnFocusLost is called when another client takes the keyboard.
	OnFocusLost func()

	mu    sync.Mutex
	state panelState

	window  xproto.Window
	gc      xproto.Gcontext
	font    xproto.Font
	created bool
	mapped  bool

	grabWindow      xproto.Window
	grabbed         bool
	handlerAttached bool
}

var _ session.View = (*Overlay)(nil)

// New creates an overlay on the root window of xu.
func New(xu *xgbutil.XUtil) *Overlay {
	return &Overlay{
		xu:    xu,
		root:  xu.RootWin(),
		state: panelState{highlight: -1},
	}
}

// Show maps the panel and grabs the keyboard.
func (o *Overlay) Show(timestamp uint32) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if err := o.ensureResources(); err != nil {
		return err
	}
	o.renderLocked()
	if !o.mapped {
		xproto.MapWindow(o.xu.Conn(), o.window)
		o.mapped = true
	}
	if !o.grabbed {
		if err := o.grabKeyboard(timestamp); err != nil {
			return fmt.Errorf("failed to grab keyboard: %w", err)
		}
	}
	return nil
}

// Hide unmaps the panel and releases the keyboard.
func (o *Overlay) Hide() {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.grabbed {
		o.ungrabKeyboard()
	}
	if o.mapped {
		xproto.UnmapWindow(o.xu.Conn(), o.window)
		o.mapped = false
	}
}

func (o *Overlay) SetMode(mode session.Mode) {
	o.update(func(s *panelState) { s.mode = mode })
}

func (o *Overlay) SetCommandText(text string) {
	o.update(func(s *panelState) { s.command = text })
}

func (o *Overlay) CommandText() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state.command
}

func (o *Overlay) RenderHints(candidates []string, highlight int, autoAccept bool) {
	o.update(func(s *panelState) {
		s.hints = append([]string(nil), candidates...)
		s.highlight = highlight
		s.autoAccept = autoAccept
	})
}

func (o *Overlay) ClearHints() {
	o.update(func(s *panelState) {
		s.hints = nil
		s.highlight = -1
		s.autoAccept = false
	})
}

func (o *Overlay) SetMessages(msgs []session.Message) {
	o.update(func(s *panelState) { s.messages = append([]session.Message(nil), msgs...) })
}

// Destroy frees the X resources of the overlay.
func (o *Overlay) Destroy() {
	o.mu.Lock()
	defer o.mu.Unlock()

	conn := o.xu.Conn()
	if o.grabbed {
		o.ungrabKeyboard()
	}
	if o.handlerAttached {
		xevent.Detach(o.xu, o.grabWindow)
		o.handlerAttached = false
	}
	if o.grabWindow != 0 {
		xproto.DestroyWindow(conn, o.grabWindow)
		o.grabWindow = 0
	}
	if !o.created {
		return
	}
	xproto.FreeGC(conn, o.gc)
	xproto.CloseFont(conn, o.font)
	xproto.DestroyWindow(conn, o.window)
	o.created = false
	o.mapped = false
}

func (o *Overlay) update(fn func(*panelState)) {
	o.mu.Lock()
	defer o.mu.Unlock()
	fn(&o.state)
	if o.mapped {
		o.renderLocked()
	}
}

func (o *Overlay) bounds() platform.Rect {
	if o.Bounds != nil {
		if b := o.Bounds(); b.Width > 0 && b.Height > 0 {
			return b
		}
	}
	screen := o.xu.Screen()
	return platform.Rect{Width: int(screen.WidthInPixels), Height: int(screen.HeightInPixels)}
}

func (o *Overlay) renderLocked() {
	conn := o.xu.Conn()
	lines := o.state.lines()
	width, height := panelDimensions(lines)
	x, y := panelOrigin(o.bounds(), width, height)

	xproto.ConfigureWindow(
		conn,
		o.window,
		xproto.ConfigWindowX|xproto.ConfigWindowY|xproto.ConfigWindowWidth|xproto.ConfigWindowHeight|xproto.ConfigWindowStackMode,
		[]uint32{uint32(x), uint32(y), uint32(width), uint32(height), xproto.StackModeAbove},
	)
	xproto.ClearArea(conn, false, o.window, 0, 0, 0, 0)

	baseline := panelPaddingY + panelLineHeight - 4
	for i, line := range lines {
		if line.text == "" {
			continue
		}
		text := line.text
		if len(text) > maxLineBytes {
			text = text[:maxLineBytes]
		}
		xproto.ChangeGC(conn, o.gc, xproto.GcForeground|xproto.GcBackground, []uint32{line.color, ColorBg})
		xproto.ImageText8(
			conn,
			byte(len(text)),
			xproto.Drawable(o.window),
			o.gc,
			int16(panelPaddingX),
			int16(baseline+i*panelLineHeight),
			text,
		)
	}
}

func (o *Overlay) ensureResources() error {
	if o.created {
		return nil
	}
	conn := o.xu.Conn()
	screen := o.xu.Screen()

	wid, err := xproto.NewWindowId(conn)
	if err != nil {
		return err
	}
	// Value list order follows the mask bits: back_pixel, override_redirect,
	// event_mask.
	err = xproto.CreateWindowChecked(
		conn,
		screen.RootDepth,
		wid,
		o.root,
		0, 0, 1, 1, 0,
		xproto.WindowClassInputOutput,
		screen.RootVisual,
		xproto.CwBackPixel|xproto.CwOverrideRedirect|xproto.CwEventMask,
		[]uint32{ColorBg, 1, uint32(xproto.EventMaskExposure)},
	).Check()
	if err != nil {
		return fmt.Errorf("failed to create overlay window: %w", err)
	}

	font, err := xproto.NewFontId(conn)
	if err != nil {
		xproto.DestroyWindow(conn, wid)
		return err
	}
	opened := false
	for _, name := range []string{"fixed", "9x15", "8x13", "6x13"} {
		if xproto.OpenFontChecked(conn, font, uint16(len(name)), name).Check() == nil {
			opened = true
			break
		}
	}
	if !opened {
		xproto.DestroyWindow(conn, wid)
		return fmt.Errorf("no usable core font")
	}

	gc, err := xproto.NewGcontextId(conn)
	if err != nil {
		xproto.CloseFont(conn, font)
		xproto.DestroyWindow(conn, wid)
		return err
	}
	err = xproto.CreateGCChecked(
		conn,
		gc,
		xproto.Drawable(wid),
		xproto.GcForeground|xproto.GcBackground|xproto.GcFont|xproto.GcGraphicsExposures,
		[]uint32{ColorText, ColorBg, uint32(font), 0},
	).Check()
	if err != nil {
		xproto.CloseFont(conn, font)
		xproto.DestroyWindow(conn, wid)
		return fmt.Errorf("failed to create graphics context: %w", err)
	}

	xevent.ExposeFun(func(_ *xgbutil.XUtil, ev xevent.ExposeEvent) {
		if ev.Count != 0 {
			return
		}
		o.mu.Lock()
		defer o.mu.Unlock()
		if o.mapped {
			o.renderLocked()
		}
	}).Connect(o.xu, wid)

	o.window, o.font, o.gc = wid, font, gc
	o.created = true
	logging.Debug().Uint32("window", uint32(wid)).Msg("overlay window created")
	return nil
}
