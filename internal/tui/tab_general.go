package tui

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/vimwn/internal/config"
)

// GeneralTab edits the scalar settings.
type GeneralTab struct {
	cfg *config.Config

	width  int
	height int

	editing bool
	form    *huh.Form

	// Form-bound values, converted on submit
	fPrefixKey         string
	fCommandPrefixKey  string
	fListWorkspaces    bool
	fAutoHint          bool
	fNativeDecorations bool
	fWidthStep         string
	fLogLevel          string
	fShell             string
}

func NewGeneralTab(cfg *config.Config) GeneralTab {
	return GeneralTab{cfg: cfg}
}

func (g GeneralTab) Update(msg tea.Msg) (GeneralTab, tea.Cmd) {
	if g.editing {
		return g.updateEditing(msg)
	}
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "e" {
			g.startEditing()
			return g, g.form.Init()
		}
	case tea.WindowSizeMsg:
		g.width = msg.Width
		g.height = msg.Height
	}
	return g, nil
}

func (g GeneralTab) updateEditing(msg tea.Msg) (GeneralTab, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "esc" {
			g.editing = false
			g.form = nil
			return g, nil
		}
	case tea.WindowSizeMsg:
		g.width = msg.Width
		g.height = msg.Height
	}

	form, cmd := g.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		g.form = f
	}
	if g.form.State == huh.StateCompleted {
		g.applyForm()
		g.editing = false
		g.form = nil
		return g, nil
	}
	return g, cmd
}

func (g *GeneralTab) loadForm() {
	cfg := g.cfg
	g.fPrefixKey = cfg.PrefixKey
	g.fCommandPrefixKey = cfg.CommandPrefixKey
	g.fListWorkspaces = cfg.ListWorkspaces
	g.fAutoHint = cfg.AutoHint
	g.fNativeDecorations = cfg.NativeDecorations
	g.fWidthStep = strconv.FormatFloat(cfg.WidthStep, 'f', -1, 64)
	g.fLogLevel = cfg.LogLevel
	g.fShell = cfg.Shell
}

func (g *GeneralTab) startEditing() {
	g.loadForm()

	w := g.width - 4
	if w < 40 {
		w = 40
	}

	g.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("prefix_key").
				Title("Prefix Key").
				Description("Comma separated hotkeys that open the overlay").
				Validate(validatePrefixKey).
				Value(&g.fPrefixKey),
			huh.NewInput().
				Key("command_prefix_key").
				Title("Command Prefix Key").
				Description("Hotkey that opens the command line directly (empty disables)").
				Value(&g.fCommandPrefixKey),
			huh.NewInput().
				Key("width_step").
				Title("Width Step").
				Description("Fraction of the work area moved by < and >").
				Validate(validateWidthStep).
				Value(&g.fWidthStep),
			huh.NewSelect[string]().
				Key("log_level").
				Title("Log Level").
				Options(huh.NewOptions("debug", "info", "warn", "error")...).
				Value(&g.fLogLevel),
			huh.NewInput().
				Key("shell").
				Title("Shell").
				Description("Interpreter for :!command").
				Value(&g.fShell),
		),
		huh.NewGroup(
			huh.NewConfirm().
				Key("list_workspaces").
				Title("List windows of every workspace").
				Value(&g.fListWorkspaces),
			huh.NewConfirm().
				Key("auto_hint").
				Title("Show hints while typing").
				Value(&g.fAutoHint),
			huh.NewConfirm().
				Key("native_decorations").
				Title("Trust window geometry as reported (native decorations)").
				Value(&g.fNativeDecorations),
		),
	).WithWidth(w).WithShowHelp(true).WithShowErrors(true)

	g.editing = true
}

func validatePrefixKey(s string) error {
	if strings.TrimSpace(strings.ReplaceAll(s, ",", "")) == "" {
		return fmt.Errorf("at least one hotkey is required")
	}
	return nil
}

func validateWidthStep(s string) error {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return fmt.Errorf("not a number")
	}
	if v <= 0 || v >= 0.5 {
		return fmt.Errorf("must be in (0, 0.5)")
	}
	return nil
}

// applyForm copies valid form values into the config.
func (g *GeneralTab) applyForm() {
	if validatePrefixKey(g.fPrefixKey) == nil {
		g.cfg.PrefixKey = strings.TrimSpace(g.fPrefixKey)
	}
	g.cfg.CommandPrefixKey = strings.TrimSpace(g.fCommandPrefixKey)
	g.cfg.ListWorkspaces = g.fListWorkspaces
	g.cfg.AutoHint = g.fAutoHint
	g.cfg.NativeDecorations = g.fNativeDecorations
	if validateWidthStep(g.fWidthStep) == nil {
		g.cfg.WidthStep, _ = strconv.ParseFloat(strings.TrimSpace(g.fWidthStep), 64)
	}
	if g.fLogLevel != "" {
		g.cfg.LogLevel = g.fLogLevel
	}
	if s := strings.TrimSpace(g.fShell); s != "" {
		g.cfg.Shell = s
	}
}

func (g GeneralTab) View() string {
	if g.editing && g.form != nil {
		return g.viewEditing()
	}

	cfg := g.cfg
	labelStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("250")).
		Width(22).
		Align(lipgloss.Right).
		PaddingRight(2)
	valueStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("15")).
		Bold(true)

	row := func(label, value string) string {
		return labelStyle.Render(label) + valueStyle.Render(value)
	}

	lines := []string{
		"",
		row("Prefix Key", cfg.PrefixKey),
		row("Command Prefix Key", displayOrDefault(cfg.CommandPrefixKey, "(disabled)")),
		"",
		row("List Workspaces", strconv.FormatBool(cfg.ListWorkspaces)),
		row("Auto Hint", strconv.FormatBool(cfg.AutoHint)),
		row("Native Decorations", strconv.FormatBool(cfg.NativeDecorations)),
		row("Width Step", strconv.FormatFloat(cfg.WidthStep, 'f', -1, 64)),
		"",
		row("Log Level", cfg.LogLevel),
		row("Shell", cfg.Shell),
		"",
		dimStyle.Render("  Press 'e' to edit settings"),
	}

	return lipgloss.NewStyle().
		Width(g.width).
		Height(g.height).
		Padding(1, 2).
		Render(strings.Join(lines, "\n"))
}

func (g GeneralTab) viewEditing() string {
	header := lipgloss.NewStyle().
		Foreground(lipgloss.Color("62")).
		Bold(true).
		Render("Editing General Settings") +
		dimStyle.Render("  (esc to cancel)")

	return lipgloss.NewStyle().
		Width(g.width).
		Height(g.height).
		Padding(1, 2).
		Render(header + "\n\n" + g.form.View())
}

func displayOrDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
