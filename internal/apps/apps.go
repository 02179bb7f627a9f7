// Package apps discovers desktop applications from XDG .desktop entries and
// launches them.
package apps

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"syscall"

	"github.com/1broseidon/vimwn/internal/logging"
	"github.com/adrg/xdg"
	"gopkg.in/ini.v1"
)

// Entry is one launchable application.
type Entry struct {
	Name string
	Exec string
	Path string
}

// Catalog indexes .desktop entries by display name. The index is built
// lazily and rebuilt by Reload.
type Catalog struct {
	dirs []string

	mu      sync.Mutex
	loaded  bool
	entries map[string]Entry
	names   []string

	// start runs a prepared command; replaced in tests.
	start func(*exec.Cmd) error
}

// DefaultDirs returns the XDG applications directories, user dir first.
func DefaultDirs() []string {
	dirs := []string{filepath.Join(xdg.DataHome, "applications")}
	for _, d := range xdg.DataDirs {
		dirs = append(dirs, filepath.Join(d, "applications"))
	}
	return dirs
}

// NewCatalog creates a catalog over dirs. Earlier dirs shadow later ones.
func NewCatalog(dirs ...string) *Catalog {
	if len(dirs) == 0 {
		dirs = DefaultDirs()
	}
	return &Catalog{dirs: dirs, start: startDetached}
}

// Reload drops the index so the next lookup rescans the directories.
func (c *Catalog) Reload() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loaded = false
}

// Names lists application names in alphabetical order.
func (c *Catalog) Names() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.load()
	return append([]string(nil), c.names...)
}

// Match returns the exact (case-insensitive) match alone, otherwise every
// name containing name.
func (c *Catalog) Match(name string) []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.load()

	needle := strings.ToLower(strings.TrimSpace(name))
	var partial []string
	for _, n := range c.names {
		ln := strings.ToLower(n)
		if ln == needle {
			return []string{n}
		}
		if strings.Contains(ln, needle) {
			partial = append(partial, n)
		}
	}
	return partial
}

// Lookup returns the entry named name.
func (c *Catalog) Lookup(name string) (Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.load()
	e, ok := c.entries[name]
	return e, ok
}

// Launch starts the named application detached from vimwn.
func (c *Catalog) Launch(name string) error {
	entry, ok := c.Lookup(name)
	if !ok {
		return fmt.Errorf("unknown application %q", name)
	}
	argv := commandLine(entry.Exec)
	if len(argv) == 0 {
		return fmt.Errorf("application %q has an empty Exec line", name)
	}
	cmd := exec.Command(argv[0], argv[1:]...)
	if err := c.start(cmd); err != nil {
		return fmt.Errorf("failed to launch %s: %w", name, err)
	}
	logging.Info().Str("app", name).Strs("argv", argv).Msg("launched application")
	return nil
}

func startDetached(cmd *exec.Cmd) error {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() { _ = cmd.Wait() }()
	return nil
}

func (c *Catalog) load() {
	if c.loaded {
		return
	}
	c.entries = make(map[string]Entry)
	for _, dir := range c.dirs {
		files, err := filepath.Glob(filepath.Join(dir, "*.desktop"))
		if err != nil {
			continue
		}
		for _, path := range files {
			entry, ok, err := readEntryFile(path)
			if err != nil {
				logging.Debug().Err(err).Str("path", path).Msg("skipping desktop entry")
				continue
			}
			if !ok {
				continue
			}
			if _, dup := c.entries[entry.Name]; !dup {
				c.entries[entry.Name] = entry
			}
		}
	}
	c.names = make([]string, 0, len(c.entries))
	for name := range c.entries {
		c.names = append(c.names, name)
	}
	sort.Strings(c.names)
	c.loaded = true
}

func readEntryFile(path string) (Entry, bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return Entry{}, false, err
	}
	defer f.Close()
	entry, ok, err := ParseEntry(f)
	entry.Path = path
	return entry, ok, err
}

// entryOptions follow the desktop entry format: '=' is the only delimiter,
// '#' starts a comment line only, and quotes belong to the Exec grammar.
var entryOptions = ini.LoadOptions{
	IgnoreInlineComment:     true,
	IgnoreContinuation:      true,
	SkipUnrecognizableLines: true,
	KeyValueDelimiters:      "=",
	PreserveSurroundedQuote: true,
}

// ParseEntry reads the [Desktop Entry] group of a .desktop file. ok is false
// for entries that are hidden, not applications, or lack Name or Exec.
func ParseEntry(r io.Reader) (entry Entry, ok bool, err error) {
	f, err := ini.LoadSources(entryOptions, r)
	if err != nil {
		return Entry{}, false, err
	}
	sec, err := f.GetSection("Desktop Entry")
	if err != nil {
		return Entry{}, false, nil
	}
	entry.Name = sec.Key("Name").String()
	entry.Exec = sec.Key("Exec").String()
	typ := sec.Key("Type").String()
	hidden := sec.Key("NoDisplay").MustBool(false) || sec.Key("Hidden").MustBool(false)

	ok = !hidden && entry.Name != "" && entry.Exec != "" && (typ == "" || typ == "Application")
	return entry, ok, nil
}

// commandLine splits an Exec value into argv, honoring double quotes and
// dropping field codes such as %f and %U wherever they appear.
func commandLine(execLine string) []string {
	var (
		args    []string
		cur     strings.Builder
		quoted  bool
		escaped bool
		hasArg  bool
	)
	flush := func() {
		if hasArg {
			args = append(args, cur.String())
		}
		cur.Reset()
		hasArg = false
	}
	for _, r := range execLine {
		switch {
		case escaped:
			cur.WriteRune(r)
			escaped = false
		case r == '\\' && quoted:
			escaped = true
		case r == '"':
			quoted = !quoted
			hasArg = true
		case (r == ' ' || r == '\t') && !quoted:
			flush()
		default:
			cur.WriteRune(r)
			hasArg = true
		}
	}
	flush()

	out := args[:0]
	for _, a := range args {
		arg, codesOnly := stripFieldCodes(a)
		if codesOnly {
			continue
		}
		out = append(out, arg)
	}
	return out
}

// stripFieldCodes removes %x field codes from arg and unescapes %%.
// codesOnly is true when nothing but field codes remained.
func stripFieldCodes(arg string) (string, bool) {
	if !strings.Contains(arg, "%") {
		return arg, false
	}
	var b strings.Builder
	removed := false
	for i := 0; i < len(arg); i++ {
		if arg[i] != '%' || i+1 == len(arg) {
			b.WriteByte(arg[i])
			continue
		}
		i++
		if arg[i] == '%' {
			b.WriteByte('%')
			continue
		}
		removed = true
	}
	return b.String(), removed && b.Len() == 0
}
