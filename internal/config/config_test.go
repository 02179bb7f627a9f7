package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

func writeFile(t *testing.T, path, data string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
	if !reflect.DeepEqual(cfg.PrefixKeys(), []string{DefaultPrefixKey}) {
		t.Fatalf("PrefixKeys() = %v", cfg.PrefixKeys())
	}
}

func TestLoadFromPath_MissingFileUsesDefaults(t *testing.T) {
	res, err := LoadFromPath(filepath.Join(t.TempDir(), "config.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.WidthStep != DefaultWidthStep || len(res.Files) != 0 {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestLoadFromPath_EmptyFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "# empty\n")

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.PrefixKey != DefaultPrefixKey {
		t.Fatalf("expected prefix_key %q, got %q", DefaultPrefixKey, res.Config.PrefixKey)
	}
}

func TestLoadFromPath_Values(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, strings.Join([]string{
		`prefix_key: "Control-q, Mod4-w"`,
		`command_prefix_key: "Mod4-semicolon"`,
		`list_workspaces: true`,
		`auto_hint: false`,
		`native_decorations: true`,
		`width_step: 0.1`,
		`log_level: debug`,
		`shell: /bin/bash`,
		`keys:`,
		`  quit: ["x", "Q"]`,
		"",
	}, "\n"))

	res, err := LoadFromPath(path, "quit", "hide")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cfg := res.Config
	if !reflect.DeepEqual(cfg.PrefixKeys(), []string{"Control-q", "Mod4-w"}) {
		t.Fatalf("PrefixKeys() = %v", cfg.PrefixKeys())
	}
	if cfg.CommandPrefixKey != "Mod4-semicolon" || !cfg.ListWorkspaces || cfg.AutoHint || !cfg.NativeDecorations {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.WidthStep != 0.1 || cfg.LogLevel != "debug" || cfg.Shell != "/bin/bash" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if !reflect.DeepEqual(cfg.Keys["quit"], []string{"x", "Q"}) {
		t.Fatalf("keys = %v", cfg.Keys)
	}
}

func TestLoadFromPath_RejectsUnknownFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "prefix_key: Control-q\nhotkey: Mod4-g\n")

	_, err := LoadFromPath(path)
	if err == nil || !strings.Contains(err.Error(), "hotkey") {
		t.Fatalf("expected unknown field error, got %v", err)
	}
}

func TestLoadFromPath_ValidationErrorHasSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "auto_hint: true\nwidth_step: 0.7\n")

	_, err := LoadFromPath(path)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Path != "width_step" || verr.Source.Line != 2 {
		t.Fatalf("unexpected error context: %+v", verr)
	}
	if !strings.Contains(err.Error(), ":2:") {
		t.Fatalf("error should carry the line: %v", err)
	}
}

func TestLoadFromPath_UnknownKeyAction(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "keys:\n  fly: [f]\n")

	if _, err := LoadFromPath(path, "quit"); err == nil {
		t.Fatal("expected error for unknown action")
	}
	if _, err := LoadFromPath(path); err != nil {
		t.Fatalf("without known actions keys are not checked: %v", err)
	}
}

func TestLoadFromPath_Includes(t *testing.T) {
	dir := t.TempDir()
	incDir := filepath.Join(dir, "conf.d")
	if err := os.Mkdir(incDir, 0755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(incDir, "10-keys.yaml"), "keys:\n  quit: [x]\nwidth_step: 0.2\n")
	writeFile(t, filepath.Join(incDir, "20-more.yml"), "keys:\n  hide: [Escape]\n")
	writeFile(t, filepath.Join(incDir, "ignored.txt"), "not: yaml: at all\n")
	path := filepath.Join(dir, "config.yaml")
	writeFile(t, path, "include: conf.d\nwidth_step: 0.3\n")

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.WidthStep != 0.3 {
		t.Fatalf("root file must override includes, got %v", res.Config.WidthStep)
	}
	if len(res.Config.Keys) != 2 {
		t.Fatalf("keys = %v", res.Config.Keys)
	}
	if len(res.Files) != 3 {
		t.Fatalf("files = %v", res.Files)
	}
}

func TestLoadFromPath_IncludeCycle(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.yaml")
	b := filepath.Join(dir, "b.yaml")
	writeFile(t, a, "include: b.yaml\n")
	writeFile(t, b, "include: a.yaml\n")

	if _, err := LoadFromPath(a); err == nil || !strings.Contains(err.Error(), "cycle") {
		t.Fatalf("expected include cycle error, got %v", err)
	}
}

func TestExplain(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "auto_hint: false\nkeys:\n  quit: [x]\n")
	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	v, src, err := Explain(res, "auto_hint")
	if err != nil || v != false || src.Kind != SourceFile || src.Line != 1 {
		t.Fatalf("Explain(auto_hint) = %v, %+v, %v", v, src, err)
	}
	v, src, err = Explain(res, "width_step")
	if err != nil || v != DefaultWidthStep || src.Kind != SourceDefault {
		t.Fatalf("Explain(width_step) = %v, %+v, %v", v, src, err)
	}
	if _, src, _ := Explain(res, "keys.quit"); src.Line != 3 {
		t.Fatalf("Explain(keys.quit) source = %+v", src)
	}
	if _, _, err := Explain(res, "nope"); err == nil {
		t.Fatal("expected error for unknown path")
	}
	if got := Paths(res.Config); got[len(got)-1] != "width_step" || got[1] != "command_prefix_key" {
		t.Fatalf("Paths() = %v", got)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := DefaultConfig()
	cfg.ListWorkspaces = true
	if err := cfg.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}
	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !res.Config.ListWorkspaces {
		t.Fatal("saved value lost")
	}
}

func TestWatch_ReportsChanges(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "auto_hint: true\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	changed := make(chan struct{}, 1)
	err := Watch(ctx, []string{path}, 20*time.Millisecond, func() {
		select {
		case changed <- struct{}{}:
		default:
		}
	}, nil)
	if err != nil {
		t.Fatalf("Watch() error = %v", err)
	}

	writeFile(t, path, "auto_hint: false\n")
	select {
	case <-changed:
	case <-time.After(5 * time.Second):
		t.Fatal("no change notification")
	}
}
