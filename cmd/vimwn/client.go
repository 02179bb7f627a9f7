package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/1broseidon/vimwn/internal/ipc"
	"github.com/1broseidon/vimwn/internal/session"
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Open the overlay in Key mode",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return newClient().Show()
	},
}

var commandCmd = &cobra.Command{
	Use:   "command [text]",
	Short: "Open the overlay in Command mode",
	Long:  `Opens the overlay on the colon command line, optionally with text already typed.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var text string
		if len(args) == 1 {
			text = args[0]
		}
		return newClient().ShowCommand(text)
	},
}

var execCmd = &cobra.Command{
	Use:   "exec <command>",
	Short: "Run one command line in the daemon",
	Long: `Runs a command line as if typed after ':' in the overlay, without showing it.

Examples:
  vimwn exec only
  vimwn exec "b firefox"
  vimwn exec "move 0 0"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		msgs, err := newClient().Execute(strings.Join(args, " "))
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), msgs)
		}
		if printMessages(cmd.OutOrStdout(), cmd.ErrOrStderr(), msgs) {
			return fmt.Errorf("command reported errors")
		}
		return nil
	},
}

var buffersCmd = &cobra.Command{
	Use:     "buffers",
	Aliases: []string{"ls"},
	Short:   "List the windows vimwn tracks",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		bufs, err := newClient().Buffers()
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), bufs)
		}
		return printBuffersTable(cmd.OutOrStdout(), bufs)
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show daemon status",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		status, err := newClient().GetStatus()
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), status)
		}
		printStatus(cmd.OutOrStdout(), status)
		return nil
	},
}

var reloadCmd = &cobra.Command{
	Use:   "reload",
	Short: "Reload the daemon configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := newClient().Reload(); err != nil {
			return err
		}
		successColor.Fprintln(cmd.OutOrStdout(), "✓ Configuration reloaded")
		return nil
	},
}

// printMessages writes info messages to out and errors to errOut. It
// reports whether any error was printed.
func printMessages(out, errOut io.Writer, msgs []ipc.MessageInfo) bool {
	failed := false
	for _, m := range msgs {
		if m.Error {
			failed = true
			errorColor.Fprintln(errOut, m.Text)
			continue
		}
		fmt.Fprintln(out, m.Text)
	}
	return failed
}

func printBuffersTable(w io.Writer, bufs []session.BufferInfo) error {
	table := tablewriter.NewWriter(w)
	table.Header("#", "Flags", "Title", "App", "Process", "Workspace", "Window")
	for _, b := range bufs {
		workspace := fmt.Sprintf("%d", b.Workspace)
		if b.Workspace < 0 {
			workspace = "all"
		}
		if err := table.Append(
			fmt.Sprintf("%d", b.Number),
			b.Flags(),
			truncate(b.Title, 40),
			truncate(b.AppID, 20),
			b.Process,
			workspace,
			fmt.Sprintf("0x%08x", b.ID),
		); err != nil {
			return err
		}
	}
	return table.Render()
}

func printStatus(w io.Writer, status *ipc.StatusData) {
	keyColor.Fprint(w, "Daemon: ")
	if status.DaemonRunning {
		successColor.Fprintln(w, "running")
	} else {
		errorColor.Fprintln(w, "stopped")
	}
	keyColor.Fprint(w, "Mode: ")
	fmt.Fprintln(w, status.Mode)
	keyColor.Fprint(w, "Windows: ")
	fmt.Fprintf(w, "%d (%d visible)\n", status.BufferCount, status.VisibleCount)
	if len(status.Hotkeys) > 0 {
		keyColor.Fprint(w, "Hotkeys: ")
		fmt.Fprintln(w, strings.Join(status.Hotkeys, ", "))
	}
	if status.ConfigPath != "" {
		keyColor.Fprint(w, "Config: ")
		fmt.Fprintln(w, status.ConfigPath)
	}
	keyColor.Fprint(w, "Uptime: ")
	fmt.Fprintln(w, time.Duration(status.UptimeSeconds)*time.Second)
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}
