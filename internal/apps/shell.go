package apps

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"
)

// DefaultShell runs "!" commands when none is configured.
const DefaultShell = "/bin/sh"

const shellTimeout = 30 * time.Second

// Shell runs command lines through a POSIX shell.
type Shell struct {
	Path    string
	Timeout time.Duration
}

// NewShell returns a Shell using path, or DefaultShell when empty.
func NewShell(path string) *Shell {
	if path == "" {
		path = DefaultShell
	}
	return &Shell{Path: path, Timeout: shellTimeout}
}

// Run executes cmd and returns its output. A non-zero exit is reported
// through stderr when the command wrote any, and as an error otherwise.
func (s *Shell) Run(cmd string) (string, string, error) {
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = shellTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	c := exec.CommandContext(ctx, s.Path, "-c", cmd)
	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr

	err := c.Run()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && stderr.Len() > 0 {
			err = nil
		} else if ctx.Err() != nil {
			err = fmt.Errorf("command timed out after %s", timeout)
		}
	}
	return stdout.String(), stderr.String(), err
}
