package command

import "testing"

func TestHistory_EmptyReturnsDraft(t *testing.T) {
	var h History
	if got := h.Navigate(-1, "draft"); got != "draft" {
		t.Fatalf("Navigate(-1) = %q, want draft", got)
	}
	if got := h.Navigate(1, "ignored"); got != "draft" {
		t.Fatalf("Navigate(+1) = %q, want draft", got)
	}
}

func TestHistory_NavigateSequence(t *testing.T) {
	var h History
	h.Append("buffers")
	h.Append("bdelete 2")

	steps := []struct {
		delta int
		want  string
	}{
		{-1, "buffers"},
		{-1, "draft"},
		{1, "buffers"},
		{1, "bdelete 2"},
		{1, "draft"},
		{1, "draft"},
		{-1, "bdelete 2"},
	}
	for i, s := range steps {
		if got := h.Navigate(s.delta, "draft"); got != s.want {
			t.Fatalf("step %d: Navigate(%d) = %q, want %q", i, s.delta, got, s.want)
		}
	}
}

func TestHistory_AppendStopsBrowsing(t *testing.T) {
	var h History
	h.Append("only")
	h.Append("only")
	h.Navigate(-1, "first draft")
	if !h.Browsing() {
		t.Fatal("expected browsing after Navigate")
	}

	h.Append("buffers")
	if h.Browsing() {
		t.Fatal("Append did not stop browsing")
	}
	if len(h.Entries()) != 3 {
		t.Fatalf("entries = %v, duplicates must be kept", h.Entries())
	}
	// A new browse remembers the new draft.
	h.Navigate(-1, "second draft")
	if got := h.Navigate(-5, ""); got != "second draft" {
		t.Fatalf("Navigate off the front = %q, want second draft", got)
	}

	h.Reset()
	if h.Browsing() || len(h.Entries()) != 3 {
		t.Fatal("Reset must stop browsing and keep entries")
	}
}
