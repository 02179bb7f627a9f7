package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/1broseidon/vimwn/internal/config"
	"github.com/1broseidon/vimwn/internal/ipc"
	"github.com/1broseidon/vimwn/internal/session"
)

var (
	configPath string
	jsonOutput bool
	noColor    bool

	successColor = color.New(color.FgGreen, color.Bold)
	errorColor   = color.New(color.FgRed, color.Bold)
	keyColor     = color.New(color.FgYellow)
)

var rootCmd = &cobra.Command{
	Use:   "vimwn",
	Short: "Keyboard-driven window navigation for X11",
	Long: `vimwn is a vi-style overlay for switching, moving, resizing and arranging
X11 windows. Run "vimwn daemon" from your session startup, press the prefix
key (Control-q by default) and use h/j/k/l, or ':' for the command line.`,
	Version:       "0.1.0",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default: $XDG_CONFIG_HOME/vimwn/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print JSON instead of tables")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(daemonCmd, showCmd, commandCmd, execCmd, buffersCmd, statusCmd, reloadCmd, configCmd, mcpCmd)

	cobra.OnInitialize(func() {
		if noColor {
			color.NoColor = true
		}
	})
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		printError(os.Stderr, err.Error())
		os.Exit(1)
	}
}

// loadConfig loads --config, or the default location.
func loadConfig() (*config.LoadResult, error) {
	if configPath == "" {
		return config.Load(session.ActionNames()...)
	}
	return config.LoadFromPath(configPath, session.ActionNames()...)
}

func newClient() *ipc.Client {
	return ipc.NewClient()
}

func printJSON(w io.Writer, data interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

func printError(w io.Writer, msg string) {
	if color.NoColor {
		fmt.Fprintln(w, "Error:", msg)
		return
	}
	errorColor.Fprint(w, "✗ Error: ")
	fmt.Fprintln(w, msg)
}
