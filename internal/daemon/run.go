//go:build linux

package daemon

import (
	"context"
	"fmt"

	"github.com/1broseidon/vimwn/internal/apps"
	"github.com/1broseidon/vimwn/internal/config"
	"github.com/1broseidon/vimwn/internal/hotkeys"
	"github.com/1broseidon/vimwn/internal/ipc"
	"github.com/1broseidon/vimwn/internal/logging"
	"github.com/1broseidon/vimwn/internal/overlay"
	"github.com/1broseidon/vimwn/internal/platform"
	"github.com/1broseidon/vimwn/internal/session"
)

// Run connects to the X server, grabs the hotkeys, serves IPC and processes
// X events until ctx is done.
func Run(ctx context.Context, res *config.LoadResult) error {
	backend, err := platform.NewLinuxBackendFromDisplay()
	if err != nil {
		return fmt.Errorf("failed to connect to display: %w", err)
	}
	defer backend.Disconnect()
	conn := backend.Connection()

	ov := overlay.New(conn.XUtil)
	defer ov.Destroy()

	catalog := apps.NewCatalog()
	ctrl, err := NewController(res, Deps{
		Windows:     backend,
		View:        ov,
		Hotkeys:     hotkeys.NewHandler(conn.XUtil),
		Apps:        catalog,
		ProcessName: platform.ProcessName,
	})
	if err != nil {
		return err
	}

	ov.OnKey = ctrl.HandleKey
	ov.OnFocusLost = ctrl.FocusLost
	// Called from within Show, with the controller lock already held.
	ov.Bounds = func() platform.Rect {
		var id platform.WindowID
		if w := ctrl.Session().Registry().Active(); w != nil {
			id = w.ID
		}
		area, err := backend.WorkArea(id)
		if err != nil {
			logging.Debug().Err(err).Msg("no work area, centering on screen")
			return platform.Rect{}
		}
		return area
	}

	if err := ctrl.RegisterHotkeys(); err != nil {
		return fmt.Errorf("failed to register hotkeys: %w", err)
	}

	srv, err := ipc.NewServer(ctrl)
	if err != nil {
		return err
	}
	if err := srv.Start(); err != nil {
		return err
	}
	defer srv.Stop()

	if err := ctrl.Watch(ctx); err != nil {
		logging.Warn().Err(err).Msg("config live reload disabled")
	}

	go func() {
		<-ctx.Done()
		conn.Quit()
	}()

	logging.Info().
		Strs("actions", session.ActionNames()).
		Int("applications", len(catalog.Names())).
		Msg("vimwn daemon started")
	conn.EventLoop()
	logging.Info().Msg("vimwn daemon stopped")
	return nil
}
