// Package daemon wires the window system, the overlay and the session
// together and serializes every event source on one lock.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/1broseidon/vimwn/internal/apps"
	"github.com/1broseidon/vimwn/internal/config"
	"github.com/1broseidon/vimwn/internal/hotkeys"
	"github.com/1broseidon/vimwn/internal/ipc"
	"github.com/1broseidon/vimwn/internal/logging"
	"github.com/1broseidon/vimwn/internal/platform"
	"github.com/1broseidon/vimwn/internal/session"
)

// Hotkeys grabs global key sequences.
type Hotkeys interface {
	Register(keys string, callback hotkeys.Callback) error
	UnregisterAll()
	Registered() []string
}

// Deps are the collaborators of a Controller. Windows and View are required.
type Deps struct {
	Windows     platform.WindowSystem
	View        session.View
	Hotkeys     Hotkeys
	Apps        session.Launcher
	ProcessName func(pid int) string
}

// Controller owns the session. Key events, hotkeys, IPC requests and config
// reloads all run under mu.
type Controller struct {
	mu      sync.Mutex
	sess    *session.Session
	hotkeys Hotkeys
	apps    session.Launcher
	shell   *apps.Shell
	started time.Time

	cfg   *config.Config
	path  string
	files []string

	watchCancel context.CancelFunc
}

var _ ipc.Handler = (*Controller)(nil)

// NewController builds the session from a loaded configuration.
func NewController(res *config.LoadResult, deps Deps) (*Controller, error) {
	if res == nil || res.Config == nil {
		return nil, errors.New("no configuration loaded")
	}
	cfg := res.Config

	keymap, err := session.DefaultKeymap(cfg.Keys)
	if err != nil {
		return nil, fmt.Errorf("invalid key bindings: %w", err)
	}
	shell := apps.NewShell(cfg.Shell)

	sess, err := session.New(session.Deps{
		Windows:     deps.Windows,
		View:        deps.View,
		Keymap:      keymap,
		Apps:        deps.Apps,
		Shell:       shell,
		ProcessName: deps.ProcessName,
	}, sessionOptions(cfg))
	if err != nil {
		return nil, err
	}

	return &Controller{
		sess:    sess,
		hotkeys: deps.Hotkeys,
		apps:    deps.Apps,
		shell:   shell,
		started: time.Now(),
		cfg:     cfg,
		path:    res.Path,
		files:   res.Files,
	}, nil
}

func sessionOptions(cfg *config.Config) session.Options {
	return session.Options{
		ListWorkspaces:    cfg.ListWorkspaces,
		AutoHint:          cfg.AutoHint,
		NativeDecorations: cfg.NativeDecorations,
		WidthStep:         cfg.WidthStep,
	}
}

// Session returns the controlled session. Callers must not use it
// concurrently with the controller.
func (c *Controller) Session() *session.Session { return c.sess }

// RegisterHotkeys grabs the prefix keys and the command prefix key.
func (c *Controller) RegisterHotkeys() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.registerHotkeysLocked()
}

func (c *Controller) registerHotkeysLocked() error {
	if c.hotkeys == nil {
		return nil
	}
	if err := c.hotkeys.Register(c.cfg.PrefixKey, c.onPrefix); err != nil {
		return err
	}
	if err := c.hotkeys.Register(c.cfg.CommandPrefixKey, c.onCommandPrefix); err != nil {
		return err
	}
	logging.Info().Strs("keys", c.hotkeys.Registered()).Msg("hotkeys registered")
	return nil
}

func (c *Controller) onPrefix(timestamp uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sess.Mode() != session.ModeNormal {
		return
	}
	c.sess.Show(timestamp)
}

func (c *Controller) onCommandPrefix(timestamp uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sess.Mode() != session.ModeNormal {
		return
	}
	c.sess.ShowCommand(timestamp)
}

// HandleKey forwards a key press from the overlay.
func (c *Controller) HandleKey(k session.Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sess.HandleKey(k)
}

// FocusLost hides the overlay when another client takes the keyboard.
func (c *Controller) FocusLost() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sess.FocusLost()
}

// Show opens the overlay, in Command mode with text typed when command is set.
func (c *Controller) Show(command bool, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if command {
		c.sess.Prompt(0, text)
	} else {
		c.sess.Show(0)
	}
	return nil
}

// Execute runs one command line headlessly.
func (c *Controller) Execute(text string) ([]session.Message, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	logging.Debug().Str("input", text).Msg("remote command")
	return c.sess.Execute(text)
}

// Buffers lists the current windows. The snapshot is refreshed unless the
// overlay is open, so numbers match what the user sees.
func (c *Controller) Buffers() ([]session.BufferInfo, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sess.Mode() == session.ModeNormal {
		if err := c.sess.Resync(); err != nil {
			return nil, err
		}
	}
	return c.sess.Buffers(), nil
}

// Status reports the daemon state.
func (c *Controller) Status() ipc.StatusData {
	c.mu.Lock()
	defer c.mu.Unlock()
	var keys []string
	if c.hotkeys != nil {
		keys = c.hotkeys.Registered()
	}
	reg := c.sess.Registry()
	return ipc.StatusData{
		Mode:          c.sess.Mode().String(),
		BufferCount:   len(reg.Buffers()),
		VisibleCount:  len(reg.Visible()),
		ConfigPath:    c.path,
		Hotkeys:       keys,
		UptimeSeconds: int64(time.Since(c.started).Seconds()),
		DaemonRunning: true,
	}
}

// Reload re-reads the configuration file and applies it. On error the
// running configuration is kept.
func (c *Controller) Reload() error {
	res, err := config.LoadFromPath(c.path, session.ActionNames()...)
	if err != nil {
		return err
	}
	keymap, err := session.DefaultKeymap(res.Config.Keys)
	if err != nil {
		return fmt.Errorf("invalid key bindings: %w", err)
	}
	if err := logging.SetLevel(res.Config.LogLevel); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	old := c.cfg
	c.cfg = res.Config
	c.files = res.Files
	c.sess.Reconfigure(sessionOptions(res.Config), keymap)
	c.shell.Path = res.Config.Shell
	if r, ok := c.apps.(interface{ Reload() }); ok {
		r.Reload()
	}

	if c.hotkeys != nil && (old.PrefixKey != res.Config.PrefixKey || old.CommandPrefixKey != res.Config.CommandPrefixKey) {
		c.hotkeys.UnregisterAll()
		if err := c.registerHotkeysLocked(); err != nil {
			return fmt.Errorf("failed to register hotkeys: %w", err)
		}
	}
	logging.Info().Str("path", c.path).Msg("configuration reloaded")
	return nil
}

// Watch reloads the configuration whenever its files change, until ctx is
// done. The watch set follows the includes of the latest load.
func (c *Controller) Watch(ctx context.Context) error {
	c.mu.Lock()
	files := c.watchedFilesLocked()
	if c.watchCancel != nil {
		c.watchCancel()
	}
	wctx, cancel := context.WithCancel(ctx)
	c.watchCancel = cancel
	c.mu.Unlock()

	onChange := func() {
		if err := c.Reload(); err != nil {
			logging.Warn().Err(err).Msg("config reload failed")
			return
		}
		c.mu.Lock()
		changed := !slices.Equal(files, c.watchedFilesLocked())
		c.mu.Unlock()
		if changed {
			if err := c.Watch(ctx); err != nil {
				logging.Warn().Err(err).Msg("failed to restart config watcher")
			}
		}
	}
	onError := func(err error) {
		logging.Warn().Err(err).Msg("config watcher error")
	}
	if err := config.Watch(wctx, files, config.DefaultDebounce, onChange, onError); err != nil {
		cancel()
		return err
	}
	logging.Debug().Strs("files", files).Msg("watching configuration")
	return nil
}

func (c *Controller) watchedFilesLocked() []string {
	if len(c.files) > 0 {
		return append([]string(nil), c.files...)
	}
	return []string{c.path}
}
