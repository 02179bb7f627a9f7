package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/vimwn/internal/config"
	"github.com/1broseidon/vimwn/internal/ipc"
)

// model is the root bubbletea model.
type model struct {
	path   string
	cfg    *config.Config
	daemon Daemon
	status *ipc.StatusData

	activeTab  Tab
	generalTab GeneralTab
	keysTab    KeysTab
	buffersTab BuffersTab

	originalConfig *config.Config
	saveOverlay    SaveOverlay

	width  int
	height int
}

func newModel(res *config.LoadResult, daemon Daemon) model {
	m := model{
		path:      res.Path,
		cfg:       res.Config,
		activeTab: TabGeneral,
	}
	if m.cfg.Keys == nil {
		m.cfg.Keys = map[string][]string{}
	}
	m.originalConfig = cloneConfig(m.cfg)

	if daemon != nil {
		if status, err := daemon.GetStatus(); err == nil {
			m.daemon = daemon
			m.status = status
		}
	}

	m.generalTab = NewGeneralTab(m.cfg)
	m.keysTab = NewKeysTab(m.cfg)
	m.buffersTab = NewBuffersTab(m.daemon)
	return m
}

func (m model) connected() bool {
	return m.daemon != nil && m.status != nil && m.status.DaemonRunning
}

// capturing reports whether a sub-model is consuming raw key input.
func (m model) capturing() bool {
	return (m.activeTab == TabGeneral && m.generalTab.editing) ||
		(m.activeTab == TabKeys && m.keysTab.editing)
}

func (m model) Init() tea.Cmd {
	return m.buffersTab.Refresh()
}

func (m model) resize(msg tea.WindowSizeMsg) model {
	m.width = msg.Width
	m.height = msg.Height
	// status bar (1) + tab bar (2 with margin) + help bar (1)
	sub := tea.WindowSizeMsg{Width: m.width, Height: max(m.height-4, 1)}
	m.generalTab, _ = m.generalTab.Update(sub)
	m.keysTab, _ = m.keysTab.Update(sub)
	m.buffersTab, _ = m.buffersTab.Update(sub)
	return m
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if ws, ok := msg.(tea.WindowSizeMsg); ok {
		return m.resize(ws), nil
	}

	switch msg.(type) {
	case buffersMsg, executeMsg:
		var cmd tea.Cmd
		m.buffersTab, cmd = m.buffersTab.Update(msg)
		return m, cmd
	}

	if m.saveOverlay.Active() {
		if km, ok := msg.(tea.KeyMsg); ok && km.String() == "ctrl+c" {
			return m, tea.Quit
		}
		prev := m.saveOverlay.phase
		m.saveOverlay = m.saveOverlay.Update(msg, m.cfg, m.path, m.daemon, m.connected())
		if prev == savePreview && m.saveOverlay.SaveSucceeded() {
			m.originalConfig = cloneConfig(m.cfg)
		}
		return m, nil
	}

	km, isKey := msg.(tea.KeyMsg)
	if isKey && km.String() == "ctrl+s" {
		m.saveOverlay.Show(m.originalConfig, m.cfg)
		return m, nil
	}

	if isKey && !m.capturing() {
		switch km.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "tab":
			return m.switchTab((m.activeTab + 1) % tabCount)
		case "shift+tab":
			return m.switchTab((m.activeTab - 1 + tabCount) % tabCount)
		case "1":
			return m.switchTab(TabGeneral)
		case "2":
			return m.switchTab(TabKeys)
		case "3":
			return m.switchTab(TabBuffers)
		}
	}
	if isKey && km.String() == "ctrl+c" {
		return m, tea.Quit
	}

	var cmd tea.Cmd
	switch m.activeTab {
	case TabGeneral:
		m.generalTab, cmd = m.generalTab.Update(msg)
	case TabKeys:
		m.keysTab, cmd = m.keysTab.Update(msg)
	case TabBuffers:
		m.buffersTab, cmd = m.buffersTab.Update(msg)
	}
	return m, cmd
}

func (m model) switchTab(t Tab) (tea.Model, tea.Cmd) {
	m.activeTab = t
	if t == TabBuffers {
		return m, m.buffersTab.Refresh()
	}
	return m, nil
}

func (m model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	statusBar := renderStatusBar(m.status, m.path, m.width)
	tabBar := renderTabBar(m.activeTab, m.width)
	helpBar := renderHelpBar(m.width)

	used := lipgloss.Height(statusBar) + lipgloss.Height(tabBar) + lipgloss.Height(helpBar)
	contentHeight := max(m.height-used, 1)

	var content string
	if m.saveOverlay.Active() {
		content = m.saveOverlay.View(m.width, contentHeight)
	} else {
		switch m.activeTab {
		case TabGeneral:
			content = m.generalTab.View()
		case TabKeys:
			content = m.keysTab.View()
		case TabBuffers:
			content = m.buffersTab.View()
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left, statusBar, tabBar, content, helpBar)
}
