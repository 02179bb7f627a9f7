package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/1broseidon/vimwn/internal/config"
	"github.com/1broseidon/vimwn/internal/tui"
)

var printDefaults bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect the configuration",
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration files",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := loadConfig()
		if err != nil {
			return err
		}
		successColor.Fprint(cmd.OutOrStdout(), "✓ config: ok")
		fmt.Fprintf(cmd.OutOrStdout(), " (%d file(s))\n", len(res.Files))
		return nil
	},
}

var configPrintCmd = &cobra.Command{
	Use:   "print",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.DefaultConfig()
		if !printDefaults {
			res, err := loadConfig()
			if err != nil {
				return err
			}
			cfg = res.Config
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), cfg)
		}
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), string(data))
		return nil
	},
}

var configExplainCmd = &cobra.Command{
	Use:   "explain [path]",
	Short: "Show where configuration values come from",
	Long: `Prints the effective value of a configuration key and the file and line
that set it. Without a path every key is explained.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := loadConfig()
		if err != nil {
			return err
		}
		paths := config.Paths(res.Config)
		if len(args) == 1 {
			paths = []string{args[0]}
		}
		for _, p := range paths {
			value, src, err := config.Explain(res, p)
			if err != nil {
				return err
			}
			keyColor.Fprintf(cmd.OutOrStdout(), "%s", p)
			fmt.Fprintf(cmd.OutOrStdout(), " = %v  (%s)\n", value, src)
		}
		return nil
	},
}

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Edit the configuration interactively",
	Long: `Opens a terminal editor for the configuration. Saving writes the root
config file with the effective values and reloads the daemon when it is
running. Include directives in the root file are not preserved.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := loadConfig()
		if err != nil {
			return err
		}
		return tui.Run(res, newClient())
	},
}

func init() {
	configPrintCmd.Flags().BoolVar(&printDefaults, "defaults", false, "print built-in defaults, ignoring files")
	configCmd.AddCommand(configValidateCmd, configPrintCmd, configExplainCmd, configEditCmd)
}
