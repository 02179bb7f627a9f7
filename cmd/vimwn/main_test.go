package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"

	"github.com/1broseidon/vimwn/internal/ipc"
	"github.com/1broseidon/vimwn/internal/session"
)

func init() {
	color.NoColor = true
}

func TestPrintMessages(t *testing.T) {
	var out, errOut bytes.Buffer
	failed := printMessages(&out, &errOut, []ipc.MessageInfo{
		{Text: "first"},
		{Text: "broken", Error: true},
		{Text: "second"},
	})
	if !failed {
		t.Fatal("expected failure to be reported")
	}
	if out.String() != "first\nsecond\n" || errOut.String() != "broken\n" {
		t.Fatalf("out = %q, err = %q", out.String(), errOut.String())
	}
	if printMessages(&out, &errOut, nil) {
		t.Fatal("no messages is not a failure")
	}
}

func TestPrintBuffersTable(t *testing.T) {
	var buf bytes.Buffer
	err := printBuffersTable(&buf, []session.BufferInfo{
		{Number: 1, ID: 0x1a00003, Title: "vim", AppID: "Alacritty", Process: "alacritty", Workspace: 0, Active: true},
		{Number: 2, ID: 0x2200001, Title: "panel", AppID: "xfce4-panel", Workspace: -1, Hidden: true},
	})
	if err != nil {
		t.Fatalf("printBuffersTable() error = %v", err)
	}
	got := buf.String()
	for _, want := range []string{"%a", "vim", "alacritty", "0x01a00003", "all", "h"} {
		if !strings.Contains(got, want) {
			t.Fatalf("table missing %q:\n%s", want, got)
		}
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"a long window title", 10, "a long ..."},
		{"ünïcödé", 3, "ünï"},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.max); got != tt.want {
			t.Fatalf("truncate(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}

func TestPrintError(t *testing.T) {
	var buf bytes.Buffer
	printError(&buf, "daemon not running")
	if buf.String() != "Error: daemon not running\n" {
		t.Fatalf("printError() = %q", buf.String())
	}
}
