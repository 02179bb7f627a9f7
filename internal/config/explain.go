package config

import (
	"fmt"
	"sort"
	"strings"
)

// Explain returns the effective value at the given YAML-like path and its source.
//
// Supported paths:
//
//	prefix_key
//	command_prefix_key
//	list_workspaces
//	auto_hint
//	native_decorations
//	width_step
//	log_level
//	shell
//	keys
//	keys.<action>
func Explain(res *LoadResult, path string) (any, Source, error) {
	if res == nil || res.Config == nil {
		return nil, Source{}, fmt.Errorf("no config loaded")
	}
	if path == "" {
		return nil, Source{}, fmt.Errorf("path is empty")
	}

	value, err := lookupValue(res.Config, path)
	if err != nil {
		return nil, Source{}, err
	}
	if src, ok := res.Sources[path]; ok {
		return value, src, nil
	}
	return value, Source{Kind: SourceDefault}, nil
}

// Paths lists every path Explain accepts for cfg, in sorted order.
func Paths(cfg *Config) []string {
	paths := []string{
		"prefix_key", "command_prefix_key", "list_workspaces", "auto_hint",
		"native_decorations", "width_step", "log_level", "shell",
	}
	for action := range cfg.Keys {
		paths = append(paths, "keys."+action)
	}
	sort.Strings(paths)
	return paths
}

func lookupValue(cfg *Config, path string) (any, error) {
	parts := strings.Split(path, ".")
	if parts[0] == "keys" {
		switch len(parts) {
		case 1:
			return cfg.Keys, nil
		case 2:
			keys, ok := cfg.Keys[parts[1]]
			if !ok {
				return nil, fmt.Errorf("no key override for action %q", parts[1])
			}
			return keys, nil
		}
		return nil, fmt.Errorf("unknown path: %s", path)
	}
	if len(parts) != 1 {
		return nil, fmt.Errorf("unknown path: %s", path)
	}

	switch path {
	case "prefix_key":
		return cfg.PrefixKey, nil
	case "command_prefix_key":
		return cfg.CommandPrefixKey, nil
	case "list_workspaces":
		return cfg.ListWorkspaces, nil
	case "auto_hint":
		return cfg.AutoHint, nil
	case "native_decorations":
		return cfg.NativeDecorations, nil
	case "width_step":
		return cfg.WidthStep, nil
	case "log_level":
		return cfg.LogLevel, nil
	case "shell":
		return cfg.Shell, nil
	default:
		return nil, fmt.Errorf("unknown path: %s", path)
	}
}
