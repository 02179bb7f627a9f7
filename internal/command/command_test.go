package command

import (
	"reflect"
	"testing"
)

func testSet() *Set {
	return NewSet(
		Command{Name: "only"},
		Command{Name: "buffers", Aliases: []string{"ls", "files"}},
		Command{Name: "buffer", Aliases: []string{"b"}, Hints: WindowTitleHints},
		Command{Name: "bdelete", Aliases: []string{"bd"}, Hints: WindowTitleHints},
		Command{Name: "centralize", Aliases: []string{"ce"}},
		Command{Name: "decorate", Hints: DecorationHints},
		Command{Name: "edit", Aliases: []string{"e"}, Hints: ApplicationHints},
		Command{Name: "move"},
		Command{Name: Bang},
	)
}

func TestParse(t *testing.T) {
	set := testSet()

	tests := []struct {
		text      string
		keyword   string
		parameter string
	}{
		{"buffers", "buffers", ""},
		{"buffer 2", "buffer", "2"},
		{"b2", "b", "2"},
		{"bd 3 5", "bd", "3 5"},
		{"bdelete   term  ", "bdelete", "term"},
		{":only", "only", ""},
		{"  move 10 20", "move", "10 20"},
		{"e notes", "e", "notes"},
		{"edit", "edit", ""},
		{"!ls -l | wc", Bang, "ls -l | wc"},
		{"bogus", "", ""},
		{"Buffers", "", ""},
		{"bx", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			in := set.Parse(tt.text, 7)
			if in.Keyword != tt.keyword || in.Parameter != tt.parameter {
				t.Fatalf("Parse(%q) = (%q, %q), want (%q, %q)",
					tt.text, in.Keyword, in.Parameter, tt.keyword, tt.parameter)
			}
			if in.Text != tt.text || in.Time != 7 {
				t.Fatalf("Parse(%q) lost raw input: %+v", tt.text, in)
			}
		})
	}
}

func TestResolve(t *testing.T) {
	set := testSet()

	tests := []struct {
		text string
		want string
		ok   bool
	}{
		{"ls", "buffers", true},
		{"files", "buffers", true},
		{"b 1", "buffer", true},
		{"ce", "centralize", true},
		{"!true", Bang, true},
		{"nope", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			cmd, ok := set.Resolve(set.Parse(tt.text, 0))
			if ok != tt.ok || cmd.Name != tt.want {
				t.Fatalf("Resolve(%q) = (%q, %v), want (%q, %v)", tt.text, cmd.Name, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestInputNumbers(t *testing.T) {
	set := testSet()

	nums, ok := set.Parse("bd 3 5", 0).Numbers()
	if !ok || !reflect.DeepEqual(nums, []int{3, 5}) {
		t.Fatalf("Numbers() = %v, %v; want [3 5], true", nums, ok)
	}
	if _, ok := set.Parse("bd term 5", 0).Numbers(); ok {
		t.Fatal("Numbers() accepted a non-numeric parameter")
	}
	if _, ok := set.Parse("bd", 0).Numbers(); ok {
		t.Fatal("Numbers() accepted an empty parameter")
	}
}

func TestHasMultipleCommands(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"buffers", false},
		{"buffers | only", true},
		{"only:buffers", true},
		{":only", false},
		{"only |", false},
		{"!ps aux | grep x", false},
		{"b user@host: ~/src", false},
		{"bdelete vim: file.go", false},
		{"only | !ls", true},
		{"b title: only", true},
	}
	set := testSet()
	for _, tt := range tests {
		if got := set.HasMultipleCommands(tt.text); got != tt.want {
			t.Errorf("HasMultipleCommands(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}

func TestUserInputError(t *testing.T) {
	err := Userf(NoSuchBuffer, "Buffer %d does not exist", 9)
	if err.Error() != "Buffer 9 does not exist" {
		t.Fatalf("Error() = %q", err.Error())
	}
	if err.Kind.String() != "no-such-buffer" {
		t.Fatalf("Kind = %v", err.Kind)
	}
}
