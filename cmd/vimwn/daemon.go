package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/1broseidon/vimwn/internal/daemon"
	"github.com/1broseidon/vimwn/internal/logging"
)

var (
	logLevel  string
	logStderr bool
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Run the vimwn daemon in the foreground",
	Long: `Connects to the X server, grabs the prefix keys and serves the IPC socket
used by the other commands. The configuration is reloaded when its files change.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := loadConfig()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		level := res.Config.LogLevel
		if logLevel != "" {
			level = logLevel
		}
		var out io.Writer
		if logStderr {
			out = os.Stderr
		}
		if err := logging.Init(level, out); err != nil {
			return fmt.Errorf("failed to initialize logging: %w", err)
		}
		defer logging.Close()

		logging.Info().
			Str("config", res.Path).
			Strs("files", res.Files).
			Str("prefix_key", res.Config.PrefixKey).
			Msg("configuration loaded")

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return daemon.Run(ctx, res)
	},
}

func init() {
	daemonCmd.Flags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn or error (default: from config)")
	daemonCmd.Flags().BoolVar(&logStderr, "log-stderr", false, "log to stderr instead of $XDG_STATE_HOME/vimwn/vimwn.log")
}
