package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// IncludeList supports either:
//
//	include: "/path/to/file.yaml"
//
// or:
//
//	include:
//	  - "/path/to/file.yaml"
//	  - "/path/to/dir"
type IncludeList []string

func (l *IncludeList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case 0:
		*l = nil
		return nil
	case yaml.ScalarNode:
		if value.Tag != "!!str" {
			return fmt.Errorf("include must be a string or list of strings")
		}
		*l = []string{value.Value}
		return nil
	case yaml.SequenceNode:
		out := make([]string, 0, len(value.Content))
		for _, item := range value.Content {
			if item.Kind != yaml.ScalarNode || item.Tag != "!!str" {
				return fmt.Errorf("include entries must be strings")
			}
			out = append(out, item.Value)
		}
		*l = out
		return nil
	default:
		return fmt.Errorf("include must be a string or list of strings")
	}
}

// RawConfig is one file as written: nil fields were not set.
type RawConfig struct {
	Include IncludeList `yaml:"include"`

	PrefixKey         *string             `yaml:"prefix_key"`
	CommandPrefixKey  *string             `yaml:"command_prefix_key"`
	ListWorkspaces    *bool               `yaml:"list_workspaces"`
	AutoHint          *bool               `yaml:"auto_hint"`
	NativeDecorations *bool               `yaml:"native_decorations"`
	WidthStep         *float64            `yaml:"width_step"`
	LogLevel          *string             `yaml:"log_level"`
	Keys              map[string][]string `yaml:"keys"`
	Shell             *string             `yaml:"shell"`
}

// merge overlays o onto r. Keys are merged per action.
func (r RawConfig) merge(o RawConfig) RawConfig {
	if o.PrefixKey != nil {
		r.PrefixKey = o.PrefixKey
	}
	if o.CommandPrefixKey != nil {
		r.CommandPrefixKey = o.CommandPrefixKey
	}
	if o.ListWorkspaces != nil {
		r.ListWorkspaces = o.ListWorkspaces
	}
	if o.AutoHint != nil {
		r.AutoHint = o.AutoHint
	}
	if o.NativeDecorations != nil {
		r.NativeDecorations = o.NativeDecorations
	}
	if o.WidthStep != nil {
		r.WidthStep = o.WidthStep
	}
	if o.LogLevel != nil {
		r.LogLevel = o.LogLevel
	}
	if o.Shell != nil {
		r.Shell = o.Shell
	}
	if len(o.Keys) > 0 {
		keys := make(map[string][]string, len(r.Keys)+len(o.Keys))
		for k, v := range r.Keys {
			keys[k] = v
		}
		for k, v := range o.Keys {
			keys[k] = v
		}
		r.Keys = keys
	}
	return r
}

// BuildEffectiveConfig applies raw over the defaults.
func BuildEffectiveConfig(raw RawConfig) *Config {
	cfg := DefaultConfig()
	if raw.PrefixKey != nil {
		cfg.PrefixKey = *raw.PrefixKey
	}
	if raw.CommandPrefixKey != nil {
		cfg.CommandPrefixKey = *raw.CommandPrefixKey
	}
	if raw.ListWorkspaces != nil {
		cfg.ListWorkspaces = *raw.ListWorkspaces
	}
	if raw.AutoHint != nil {
		cfg.AutoHint = *raw.AutoHint
	}
	if raw.NativeDecorations != nil {
		cfg.NativeDecorations = *raw.NativeDecorations
	}
	if raw.WidthStep != nil {
		cfg.WidthStep = *raw.WidthStep
	}
	if raw.LogLevel != nil {
		cfg.LogLevel = *raw.LogLevel
	}
	if raw.Shell != nil {
		cfg.Shell = *raw.Shell
	}
	for action, keys := range raw.Keys {
		cfg.Keys[action] = append([]string(nil), keys...)
	}
	return cfg
}
