package command

import "strings"

// CandidateSource supplies parameter completions.
type CandidateSource interface {
	Applications() []string
	WindowTitles() []string
	DecorationNames() []string
}

// Hinter computes and cycles completion candidates for the command line.
// It is idle until Hint finds at least one candidate.
type Hinter struct {
	set    *Set
	source CandidateSource

	input      Input
	parameter  bool // candidates complete the parameter, not the keyword
	candidates []string
	highlight  int
}

// NewHinter creates an idle Hinter.
func NewHinter(set *Set, source CandidateSource) *Hinter {
	return &Hinter{set: set, source: source, highlight: -1}
}

// Hint computes candidates for the parsed line. Lines without a complete
// keyword are completed against command names; otherwise the command's
// hint source is filtered by the parameter.
func (h *Hinter) Hint(in Input) {
	h.input = in
	h.highlight = -1
	h.candidates = nil
	h.parameter = false

	if !in.Complete() {
		prefix := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(in.Text), ":"))
		h.candidates = filter(h.set.Names(), prefix)
		return
	}

	cmd, ok := h.set.Resolve(in)
	if !ok {
		return
	}
	var pool []string
	switch cmd.Hints {
	case ApplicationHints:
		pool = h.source.Applications()
	case WindowTitleHints:
		pool = h.source.WindowTitles()
	case DecorationHints:
		pool = h.source.DecorationNames()
	default:
		return
	}
	h.parameter = true
	h.candidates = filter(pool, in.Parameter)
}

// Hinting reports whether candidates are available.
func (h *Hinter) Hinting() bool {
	return len(h.candidates) > 0
}

// Candidates returns the current candidates in display order.
func (h *Hinter) Candidates() []string {
	return h.candidates
}

// Highlight returns the highlighted candidate index, or -1.
func (h *Hinter) Highlight() int {
	return h.highlight
}

// Cycle moves the highlight by direction, wrapping around. The first cycle
// lands on the first (or, backwards, the last) candidate.
func (h *Hinter) Cycle(direction int) {
	n := len(h.candidates)
	if n == 0 {
		return
	}
	if h.highlight < 0 {
		if direction < 0 {
			h.highlight = n - 1
		} else {
			h.highlight = 0
		}
		return
	}
	h.highlight = ((h.highlight+direction)%n + n) % n
}

// ShouldAutoHint reports whether exactly one candidate is left.
func (h *Hinter) ShouldAutoHint() bool {
	return len(h.candidates) == 1
}

// MountInput rebuilds the command line with the highlighted candidate in
// place of the partial text. Without a highlight the original text is kept.
func (h *Hinter) MountInput() string {
	if h.highlight < 0 || h.highlight >= len(h.candidates) {
		return h.input.Text
	}
	pick := h.candidates[h.highlight]
	if !h.parameter {
		return pick
	}
	return h.input.Keyword + " " + pick
}

// Clear returns the Hinter to idle.
func (h *Hinter) Clear() {
	h.input = Input{}
	h.candidates = nil
	h.highlight = -1
	h.parameter = false
}

// filter returns prefix matches followed by substring matches, both
// case-insensitive and in pool order. An empty needle matches everything.
func filter(pool []string, needle string) []string {
	needle = strings.ToLower(needle)
	var prefix, infix []string
	for _, c := range pool {
		lc := strings.ToLower(c)
		switch {
		case strings.HasPrefix(lc, needle):
			prefix = append(prefix, c)
		case strings.Contains(lc, needle):
			infix = append(infix, c)
		}
	}
	return append(prefix, infix...)
}
