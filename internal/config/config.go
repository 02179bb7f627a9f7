package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Defaults
const (
	DefaultPrefixKey = "Control-q"
	DefaultWidthStep = 0.05
	DefaultLogLevel  = "info"
	DefaultShell     = "/bin/sh"
)

// Config is the effective vimwn configuration.
type Config struct {
	// PrefixKey lists comma-separated global hotkeys that open the overlay
	// in Key mode, in xgbutil notation ("Control-q", "Mod4-w").
	PrefixKey string `yaml:"prefix_key"`
	// CommandPrefixKey opens the overlay directly in Command mode. Empty
	// disables it.
	CommandPrefixKey  string  `yaml:"command_prefix_key"`
	ListWorkspaces    bool    `yaml:"list_workspaces"`
	AutoHint          bool    `yaml:"auto_hint"`
	NativeDecorations bool    `yaml:"native_decorations"`
	WidthStep         float64 `yaml:"width_step"`
	LogLevel          string  `yaml:"log_level"`
	// Keys replaces the keys bound to Key mode actions.
	Keys  map[string][]string `yaml:"keys,omitempty"`
	Shell string              `yaml:"shell"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		PrefixKey:      DefaultPrefixKey,
		ListWorkspaces: false,
		AutoHint:       true,
		WidthStep:      DefaultWidthStep,
		LogLevel:       DefaultLogLevel,
		Keys:           map[string][]string{},
		Shell:          DefaultShell,
	}
}

// PrefixKeys splits PrefixKey into its hotkeys.
func (c *Config) PrefixKeys() []string {
	var keys []string
	for _, k := range strings.Split(c.PrefixKey, ",") {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}

// ValidationError reports an invalid value and, when known, where it was set.
type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.Kind == SourceFile && e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.Source.File, e.Source.Line, e.Source.Column, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error { return e.Err }

// Validate performs strict validation of the effective configuration.
// knownActions, when non-nil, restricts the keys of Keys.
func (c *Config) Validate(knownActions ...string) error {
	if len(c.PrefixKeys()) == 0 {
		return &ValidationError{Path: "prefix_key", Err: fmt.Errorf("prefix_key is required")}
	}
	if c.WidthStep <= 0 || c.WidthStep >= 0.5 {
		return &ValidationError{Path: "width_step", Err: fmt.Errorf("width_step must be in (0, 0.5)")}
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return &ValidationError{Path: "log_level", Err: fmt.Errorf("log_level must be one of: debug, info, warn, error")}
	}
	if strings.TrimSpace(c.Shell) == "" {
		return &ValidationError{Path: "shell", Err: fmt.Errorf("shell must not be empty")}
	}

	known := make(map[string]bool, len(knownActions))
	for _, a := range knownActions {
		known[a] = true
	}
	for action, keys := range c.Keys {
		if len(knownActions) > 0 && !known[action] {
			return &ValidationError{Path: "keys." + action, Err: fmt.Errorf("unknown action %q", action)}
		}
		for _, k := range keys {
			if strings.TrimSpace(k) == "" {
				return &ValidationError{Path: "keys." + action, Err: fmt.Errorf("key names must not be empty")}
			}
		}
	}
	return nil
}

// Save writes the configuration to path, creating parent directories.
func (c *Config) Save(path string) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := c.Marshal()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Marshal renders the configuration as YAML.
func (c *Config) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return data, nil
}
