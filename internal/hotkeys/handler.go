package hotkeys

import (
	"fmt"
	"strings"
	"sync"

	"github.com/1broseidon/vimwn/internal/logging"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"
)

// Callback receives the server timestamp of the key press.
type Callback func(timestamp uint32)

// Handler manages global keyboard shortcuts on the root window.
type Handler struct {
	xu   *xgbutil.XUtil
	root xproto.Window

	mu         sync.Mutex
	registered []string
}

var ignoreModsOnce sync.Once

// NewHandler creates a new hotkey handler.
func NewHandler(xu *xgbutil.XUtil) *Handler {
	ignoreModsOnce.Do(func() {
		configureIgnoreMods(xu)
	})
	return &Handler{xu: xu, root: xu.RootWin()}
}

// Register grabs every key of a comma-separated list ("Control-q, Mod4-w")
// and calls callback when one is pressed. Empty lists are ignored.
func (h *Handler) Register(keys string, callback Callback) error {
	for _, seq := range SplitKeys(keys) {
		if err := h.RegisterFunc(seq, callback); err != nil {
			return err
		}
	}
	return nil
}

// RegisterFunc registers a single hotkey callback.
func (h *Handler) RegisterFunc(keySequence string, callback Callback) error {
	err := keybind.KeyPressFun(func(xu *xgbutil.XUtil, ev xevent.KeyPressEvent) {
		logging.Debug().Str("key", keySequence).Msg("hotkey pressed")
		callback(uint32(ev.Time))
	}).Connect(h.xu, h.root, keySequence, true)
	if err != nil {
		return fmt.Errorf("failed to grab %q: %w", keySequence, err)
	}

	h.mu.Lock()
	h.registered = append(h.registered, keySequence)
	h.mu.Unlock()
	return nil
}

// Registered returns the key sequences grabbed so far.
func (h *Handler) Registered() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.registered...)
}

// UnregisterAll drops every grab made by this handler.
func (h *Handler) UnregisterAll() {
	keybind.Detach(h.xu, h.root)
	h.mu.Lock()
	h.registered = nil
	h.mu.Unlock()
}

// SplitKeys splits a comma-separated key list, dropping blanks.
func SplitKeys(keys string) []string {
	var out []string
	for _, k := range strings.Split(keys, ",") {
		if k = strings.TrimSpace(k); k != "" {
			out = append(out, k)
		}
	}
	return out
}

func configureIgnoreMods(xu *xgbutil.XUtil) {
	// Always ignore CapsLock.
	caps := uint16(xproto.ModMaskLock)

	numLock := modMaskForKeysym(xu, "Num_Lock")
	scrollLock := modMaskForKeysym(xu, "Scroll_Lock")

	xevent.IgnoreMods = ignoreMasks(caps, numLock, scrollLock)
}

// ignoreMasks returns every combination of the lock modifiers, including 0.
func ignoreMasks(caps, numLock, scrollLock uint16) []uint16 {
	base := []uint16{caps}
	if numLock != 0 && numLock != caps {
		base = append(base, numLock)
	}
	if scrollLock != 0 && scrollLock != caps && scrollLock != numLock {
		base = append(base, scrollLock)
	}

	unique := map[uint16]struct{}{0: {}}
	for subset := 1; subset < (1 << len(base)); subset++ {
		var mask uint16
		for bit := range base {
			if subset&(1<<bit) != 0 {
				mask |= base[bit]
			}
		}
		unique[mask] = struct{}{}
	}

	ignore := make([]uint16, 0, len(unique))
	for mask := range unique {
		ignore = append(ignore, mask)
	}
	return ignore
}

func modMaskForKeysym(xu *xgbutil.XUtil, keysym string) uint16 {
	for _, keycode := range keybind.StrToKeycodes(xu, keysym) {
		if mask := keybind.ModGet(xu, keycode); mask != 0 {
			return mask
		}
	}
	return 0
}
