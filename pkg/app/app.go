// Package app provides the full-screen terminal console for the Quantix
// control plane. It follows the Bubble Tea architecture with tabs for the
// VM list, the creation wizard, and settings.
package app

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Model is the main application model.
type Model struct {
	tabs      []Tab
	activeTab int
	width     int
	height    int
	quitting  bool
	err       error
	endpoint  string
}

// New creates a new application model for the given control-plane endpoint.
func New(endpoint string) Model {
	return Model{
		tabs:     []Tab{},
		endpoint: endpoint,
	}
}

// WithTabs sets the tabs for the application.
func (m Model) WithTabs(tabs ...Tab) Model {
	m.tabs = tabs
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	var cmds []tea.Cmd

	for i := range m.tabs {
		if cmd := m.tabs[i].Init(); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}

	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		contentHeight := m.height - headerHeight - footerHeight
		for i := range m.tabs {
			m.tabs[i].SetSize(m.width, contentHeight)
		}

		return m, nil

	case error:
		m.err = msg
		return m, nil
	}

	// Forward to active tab
	if len(m.tabs) > 0 && m.activeTab < len(m.tabs) {
		var cmd tea.Cmd
		m.tabs[m.activeTab], cmd = m.tabs[m.activeTab].Update(msg)
		return m, cmd
	}

	return m, nil
}

// handleKeyMsg processes key events.
func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	hasFocusedInput := false
	if len(m.tabs) > 0 && m.activeTab < len(m.tabs) {
		hasFocusedInput = m.tabs[m.activeTab].HasFocusedInput()
	}

	// Always allow Ctrl+C to quit
	if msg.Type == tea.KeyCtrlC {
		m.quitting = true
		return m, tea.Quit
	}

	// When a text input is focused, skip the global keybindings so
	// alphanumeric characters reach the input instead of switching tabs.
	if !hasFocusedInput {
		switch {
		case key.Matches(msg, keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, keys.Tab1):
			return m.switchTab(0)
		case key.Matches(msg, keys.Tab2):
			return m.switchTab(1)
		case key.Matches(msg, keys.Tab3):
			return m.switchTab(2)

		case key.Matches(msg, keys.NextTab):
			return m.switchTab((m.activeTab + 1) % len(m.tabs))
		case key.Matches(msg, keys.PrevTab):
			idx := m.activeTab - 1
			if idx < 0 {
				idx = len(m.tabs) - 1
			}
			return m.switchTab(idx)
		}
	}

	// Forward to active tab
	if len(m.tabs) > 0 && m.activeTab < len(m.tabs) {
		var cmd tea.Cmd
		m.tabs[m.activeTab], cmd = m.tabs[m.activeTab].Update(msg)
		return m, cmd
	}

	return m, nil
}

// switchTab changes the active tab.
func (m Model) switchTab(idx int) (tea.Model, tea.Cmd) {
	if idx >= 0 && idx < len(m.tabs) && idx != m.activeTab {
		m.tabs[m.activeTab].Blur()
		m.activeTab = idx
		if cmd := m.tabs[m.activeTab].Focus(); cmd != nil {
			return m, cmd
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	if m.width == 0 {
		return "Loading..."
	}

	header := m.renderHeader()
	content := m.renderContent()
	footer := m.renderFooter()

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (m Model) renderHeader() string {
	return renderHeader(m.tabs, m.activeTab, m.endpoint, m.width)
}

func (m Model) renderContent() string {
	if len(m.tabs) == 0 || m.activeTab >= len(m.tabs) {
		return ""
	}

	contentHeight := m.height - headerHeight - footerHeight
	content := m.tabs[m.activeTab].View()

	return lipgloss.NewStyle().
		Height(contentHeight).
		Width(m.width).
		Render(content)
}

func (m Model) renderFooter() string {
	var tabBindings []string
	if len(m.tabs) > 0 && m.activeTab < len(m.tabs) {
		tabBindings = m.tabs[m.activeTab].KeyBindings()
	}
	return renderFooter(tabBindings, m.width)
}

// ActiveTab returns the currently active tab index.
func (m Model) ActiveTab() int {
	return m.activeTab
}

// SetActiveTab sets the active tab by index.
func (m *Model) SetActiveTab(idx int) {
	if idx >= 0 && idx < len(m.tabs) {
		m.activeTab = idx
	}
}

// Error returns the last error.
func (m Model) Error() error {
	return m.err
}

// Endpoint returns the control-plane endpoint the app talks to.
func (m Model) Endpoint() string {
	return m.endpoint
}
