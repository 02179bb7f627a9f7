package command

import (
	"sort"
	"strconv"
	"strings"
	"unicode"
)

// Bang is the keyword of shell commands ("!ls -l").
const Bang = "!"

// Input is one parsed command line or key press. It is never modified after
// parsing.
type Input struct {
	Text       string
	Key        string // key name when produced by a Key-mode binding
	Multiplier int
	Time       uint32

	Keyword   string
	Parameter string
}

// Numbers parses the parameter as whitespace separated integers.
func (in Input) Numbers() ([]int, bool) {
	fields := strings.Fields(in.Parameter)
	if len(fields) == 0 {
		return nil, false
	}
	nums := make([]int, 0, len(fields))
	for _, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			return nil, false
		}
		nums = append(nums, n)
	}
	return nums, true
}

// Complete reports whether the keyword was followed by a separator, i.e. the
// user moved on to typing the parameter.
func (in Input) Complete() bool {
	if in.Keyword == "" {
		return false
	}
	if in.Keyword == Bang || in.Parameter != "" {
		return true
	}
	return strings.HasSuffix(in.Text, " ")
}

// HintSource selects the candidates offered for a command's parameter.
type HintSource int

const (
	NoHints HintSource = iota
	ApplicationHints
	WindowTitleHints
	DecorationHints
)

// Command describes a command line keyword.
type Command struct {
	Name    string
	Aliases []string
	Hints   HintSource
}

// Set is the registry of known commands.
type Set struct {
	commands []Command
	keywords []string // names and aliases, longest first
}

// NewSet creates a Set. Earlier commands win when names collide.
func NewSet(commands ...Command) *Set {
	s := &Set{commands: commands}
	seen := make(map[string]bool)
	for _, c := range commands {
		for _, k := range append([]string{c.Name}, c.Aliases...) {
			if k == "" || seen[k] {
				continue
			}
			seen[k] = true
			s.keywords = append(s.keywords, k)
		}
	}
	sort.SliceStable(s.keywords, func(i, j int) bool {
		return len(s.keywords[i]) > len(s.keywords[j])
	})
	return s
}

// Names returns the primary command names in registration order, without
// the shell command.
func (s *Set) Names() []string {
	names := make([]string, 0, len(s.commands))
	for _, c := range s.commands {
		if c.Name != Bang {
			names = append(names, c.Name)
		}
	}
	return names
}

// Parse splits text into keyword and parameter. The keyword is the longest
// known name or alias at the start of the line that is followed by the end
// of the line, whitespace or a digit. A leading ':' is ignored.
func (s *Set) Parse(text string, time uint32) Input {
	in := Input{Text: text, Time: time, Multiplier: 1}
	line := strings.TrimLeftFunc(text, unicode.IsSpace)
	line = strings.TrimPrefix(line, ":")

	if strings.HasPrefix(line, Bang) {
		in.Keyword = Bang
		in.Parameter = strings.TrimSpace(line[len(Bang):])
		return in
	}

	for _, k := range s.keywords {
		if !strings.HasPrefix(line, k) {
			continue
		}
		rest := line[len(k):]
		if rest != "" {
			r := rune(rest[0])
			if !unicode.IsSpace(r) && !unicode.IsDigit(r) {
				continue
			}
		}
		in.Keyword = k
		in.Parameter = strings.TrimSpace(rest)
		return in
	}
	return in
}

// Resolve finds the command for a parsed keyword.
func (s *Set) Resolve(in Input) (Command, bool) {
	return s.Lookup(in.Keyword)
}

// Lookup finds a command by exact name or alias.
func (s *Set) Lookup(keyword string) (Command, bool) {
	if keyword == "" {
		return Command{}, false
	}
	for _, c := range s.commands {
		if c.Name == keyword {
			return c, true
		}
	}
	for _, c := range s.commands {
		for _, a := range c.Aliases {
			if a == keyword {
				return c, true
			}
		}
	}
	return Command{}, false
}

// HasMultipleCommands reports whether text chains commands with '|' or ':'.
// A separator only counts when a known command follows it, so parameters
// such as window titles may contain either character. Shell commands are
// exempt since their text may contain pipes.
func (s *Set) HasMultipleCommands(text string) bool {
	line := strings.TrimLeftFunc(text, unicode.IsSpace)
	line = strings.TrimPrefix(line, ":")
	if strings.HasPrefix(strings.TrimSpace(line), Bang) {
		return false
	}
	for i, r := range line {
		if r != '|' && r != ':' {
			continue
		}
		if strings.Trim(line[:i], " \t|:") == "" {
			continue
		}
		next := s.Parse(line[i+1:], 0)
		if next.Keyword == Bang {
			return true
		}
		if _, ok := s.Resolve(next); ok {
			return true
		}
	}
	return false
}
