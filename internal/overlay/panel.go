package overlay

import (
	"strings"

	"github.com/1broseidon/vimwn/internal/platform"
	"github.com/1broseidon/vimwn/internal/session"
)

// Panel colors
const (
	ColorText      = 0xf5f7fa
	ColorBg        = 0x1f2933
	ColorError     = 0xe74c3c
	ColorHighlight = 0x3498db
	ColorDim       = 0x95a5a6
)

const (
	panelPaddingX   = 10
	panelPaddingY   = 8
	panelLineHeight = 16
	panelCharWidth  = 7
	panelMinWidth   = 360
	panelMaxChars   = 120
	maxLineBytes    = 255
)

// panelState is everything the panel shows.
type panelState struct {
	mode       session.Mode
	command    string
	hints      []string
	highlight  int
	autoAccept bool
	messages   []session.Message
}

type panelLine struct {
	text  string
	color uint32
}

func (s panelState) lines() []panelLine {
	var out []panelLine
	switch s.mode {
	case session.ModeCommand:
		out = append(out, panelLine{text: ":" + s.command + "_", color: ColorText})
	default:
		out = append(out, panelLine{text: "-- vimwn --  h/j/k/l navigate  : command  Esc hide", color: ColorDim})
	}

	if len(s.hints) > 0 {
		color := uint32(ColorText)
		if s.autoAccept {
			color = ColorHighlight
		}
		out = append(out, panelLine{text: hintRow(s.hints, s.highlight, panelMaxChars), color: color})
	}

	for _, m := range s.messages {
		color := uint32(ColorText)
		if m.Level == session.LevelError {
			color = ColorError
		}
		out = append(out, panelLine{text: truncate(m.Text, panelMaxChars), color: color})
	}
	return out
}

// hintRow joins candidates, bracketing the highlighted one. The row is
// scrolled so the highlight stays inside maxChars.
func hintRow(hints []string, highlight, maxChars int) string {
	parts := make([]string, len(hints))
	for i, h := range hints {
		if i == highlight {
			parts[i] = "[" + h + "]"
		} else {
			parts[i] = h
		}
	}

	start := 0
	for start < highlight && len(strings.Join(parts[start:highlight+1], "  ")) > maxChars-2 {
		start++
	}
	row := strings.Join(parts[start:], "  ")
	if start > 0 {
		row = "< " + row
	}
	return truncate(row, maxChars)
}

func truncate(s string, maxChars int) string {
	if len(s) <= maxChars {
		return s
	}
	if maxChars <= 3 {
		return s[:maxChars]
	}
	return s[:maxChars-3] + "..."
}

func panelDimensions(lines []panelLine) (width, height int) {
	maxChars := 0
	for _, l := range lines {
		if len(l.text) > maxChars {
			maxChars = len(l.text)
		}
	}
	width = maxChars*panelCharWidth + 2*panelPaddingX
	if width < panelMinWidth {
		width = panelMinWidth
	}
	height = len(lines)*panelLineHeight + 2*panelPaddingY
	return width, height
}

// panelOrigin centers a width x height panel horizontally in bounds, a third
// of the way down, clamped inside bounds.
func panelOrigin(bounds platform.Rect, width, height int) (int, int) {
	x := bounds.X + (bounds.Width-width)/2
	y := bounds.Y + (bounds.Height-height)/3
	if x < bounds.X {
		x = bounds.X
	}
	if y < bounds.Y {
		y = bounds.Y
	}
	return x, y
}
