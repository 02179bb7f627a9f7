package command

// History keeps submitted command lines for recall with Up/Down.
//
// Browsing starts on the newest entry. Moving before the first or past the
// last entry yields the draft that was being typed when browsing began.
type History struct {
	entries  []string
	cursor   int
	browsing bool
	draft    string
}

// Append adds text to the end of the history and stops browsing.
func (h *History) Append(text string) {
	h.entries = append(h.entries, text)
	h.browsing = false
}

// Navigate moves the cursor by delta and returns the line to show.
func (h *History) Navigate(delta int, draft string) string {
	if !h.browsing {
		h.browsing = true
		h.draft = draft
		h.cursor = len(h.entries) - 1
	}
	if len(h.entries) == 0 {
		return h.draft
	}

	next := h.cursor + delta
	switch {
	case next < 0:
		h.cursor = -1
		return h.draft
	case next >= len(h.entries):
		h.cursor = len(h.entries)
		return h.draft
	}
	h.cursor = next
	return h.entries[h.cursor]
}

// Reset stops browsing. Entries are kept.
func (h *History) Reset() {
	h.browsing = false
}

// Browsing reports whether Navigate was called since the last Reset.
func (h *History) Browsing() bool {
	return h.browsing
}

// Entries returns the recorded lines, oldest first.
func (h *History) Entries() []string {
	return h.entries
}
