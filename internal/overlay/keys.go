package overlay

import (
	"fmt"
	"unicode"

	"github.com/1broseidon/vimwn/internal/logging"
	"github.com/1broseidon/vimwn/internal/session"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"
)

// grabKeyboard routes every key press to the overlay until ungrabKeyboard.
func (o *Overlay) grabKeyboard(timestamp uint32) error {
	if err := o.ensureGrabWindow(); err != nil {
		return err
	}
	conn := o.xu.Conn()
	ts := xproto.Timestamp(timestamp)
	if ts == 0 {
		ts = xproto.TimeCurrentTime
	}

	grab := func() (*xproto.GrabKeyboardReply, error) {
		return xproto.GrabKeyboard(conn, false, o.root, ts, xproto.GrabModeAsync, xproto.GrabModeAsync).Reply()
	}
	reply, err := grab()
	if err != nil {
		return err
	}
	// The prefix hotkey's passive grab may still be active.
	if reply.Status == xproto.GrabStatusAlreadyGrabbed {
		xproto.UngrabKeyboard(conn, xproto.TimeCurrentTime)
		if reply, err = grab(); err != nil {
			return err
		}
	}
	if reply.Status != xproto.GrabStatusSuccess {
		return fmt.Errorf("keyboard grab failed with status %d", reply.Status)
	}

	xevent.RedirectKeyEvents(o.xu, o.grabWindow)
	if !o.handlerAttached {
		xevent.KeyPressFun(o.handleKeyPress).Connect(o.xu, o.grabWindow)
		xevent.FocusOutFun(o.handleFocusOut).Connect(o.xu, o.grabWindow)
		o.handlerAttached = true
	}
	o.grabbed = true
	logging.Debug().Msg("keyboard grabbed")
	return nil
}

func (o *Overlay) ungrabKeyboard() {
	xproto.UngrabKeyboard(o.xu.Conn(), xproto.TimeCurrentTime)
	xevent.RedirectKeyEvents(o.xu, 0)
	o.grabbed = false
	logging.Debug().Msg("keyboard released")
}

func (o *Overlay) ensureGrabWindow() error {
	if o.grabWindow != 0 {
		return nil
	}
	conn := o.xu.Conn()
	wid, err := xproto.NewWindowId(conn)
	if err != nil {
		return err
	}
	err = xproto.CreateWindowChecked(
		conn,
		0,
		wid,
		o.root,
		0, 0, 1, 1, 0,
		xproto.WindowClassInputOnly,
		xproto.Visualid(0),
		xproto.CwEventMask,
		[]uint32{uint32(xproto.EventMaskKeyPress | xproto.EventMaskFocusChange)},
	).Check()
	if err != nil {
		return fmt.Errorf("failed to create grab window: %w", err)
	}
	xproto.MapWindow(conn, wid)
	o.grabWindow = wid
	return nil
}

func (o *Overlay) handleKeyPress(xu *xgbutil.XUtil, ev xevent.KeyPressEvent) {
	key := translate(xu, ev.State, ev.Detail)
	key.Time = uint32(ev.Time)
	if key.Name == "" || isModifier(key.Name) {
		return
	}
	if o.OnKey != nil {
		o.OnKey(key)
	}
}

func (o *Overlay) handleFocusOut(_ *xgbutil.XUtil, ev xevent.FocusOutEvent) {
	// Grab and ungrab notifications are our own keyboard grab.
	if ev.Mode == xproto.NotifyModeGrab || ev.Mode == xproto.NotifyModeUngrab {
		return
	}
	if o.OnFocusLost != nil {
		o.OnFocusLost()
	}
}

func translate(xu *xgbutil.XUtil, state uint16, code xproto.Keycode) session.Key {
	shift := state&xproto.ModMaskShift != 0
	column := byte(0)
	if shift {
		column = 1
	}
	sym := keybind.KeysymGet(xu, code, column)
	if sym == 0 && column == 1 {
		sym = keybind.KeysymGet(xu, code, 0)
	}
	return session.Key{
		Name:  keybind.LookupString(xu, state, code),
		Text:  keysymText(uint32(sym), state&xproto.ModMaskLock != 0),
		Ctrl:  state&xproto.ModMaskControl != 0,
		Shift: shift,
	}
}

// keysymText returns the text typed by a Latin-1 keysym, whose values equal
// their code points. Other keysyms type nothing.
func keysymText(sym uint32, capsLock bool) string {
	if (sym < 0x20 || sym > 0x7e) && (sym < 0xa0 || sym > 0xff) {
		return ""
	}
	r := rune(sym)
	if capsLock {
		r = unicode.ToUpper(r)
	}
	return string(r)
}

func isModifier(name string) bool {
	switch name {
	case "Shift_L", "Shift_R", "Control_L", "Control_R", "Alt_L", "Alt_R",
		"Super_L", "Super_R", "Meta_L", "Meta_R", "Caps_Lock", "ISO_Level3_Shift":
		return true
	}
	return false
}
