// Package settings provides the preferences view for the terminal console.
package settings

import (
	"fmt"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/quantix-cloud/qcli/pkg/app"
	"github.com/quantix-cloud/qcli/pkg/settings"
)

// Message types for async operations.
type (
	loadedMsg struct {
		settings *settings.Settings
	}

	savedMsg struct{}

	errorMsg struct {
		err error
	}
)

// item indexes the editable rows of the view.
type item int

const (
	itemEndpoint item = iota
	itemConsoleType
	itemCount
)

// Model is the preferences view model.
type Model struct {
	app.BaseTab

	store    *settings.Store
	settings *settings.Settings

	cursor        item
	endpointInput textinput.Model
	editing       bool
	message       string
	err           error
}

// New creates a new preferences model.
func New(store *settings.Store) *Model {
	in := textinput.New()
	in.Placeholder = "https://qvdc.local:8443"
	in.CharLimit = 256

	return &Model{
		BaseTab:       app.NewBaseTab(app.TabSettings, "Settings", "3"),
		store:         store,
		endpointInput: in,
	}
}

// Init initializes the model.
func (m *Model) Init() tea.Cmd {
	return m.load
}

// load reads settings from disk.
func (m *Model) load() tea.Msg {
	s, err := m.store.Load()
	if err != nil {
		return errorMsg{err: err}
	}
	return loadedMsg{settings: s}
}

// save persists the current settings.
func (m *Model) save() tea.Msg {
	endpoint := m.settings.Endpoint
	consoleType := m.settings.ConsoleType()

	err := m.store.LoadAndSave(func(s *settings.Settings) error {
		s.Endpoint = endpoint
		s.SetConsoleType(consoleType)
		return nil
	})
	if err != nil {
		return errorMsg{err: err}
	}
	return savedMsg{}
}

// Update handles messages.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case loadedMsg:
		m.settings = msg.settings
		m.endpointInput.SetValue(m.settings.Endpoint)
		m.err = nil
		return m, nil

	case savedMsg:
		m.message = "Settings saved"
		m.err = nil
		return m, nil

	case errorMsg:
		m.err = msg.err
		return m, nil
	}

	return m, nil
}

// handleKeyMsg handles keyboard input.
func (m *Model) handleKeyMsg(msg tea.KeyMsg) (app.Tab, tea.Cmd) {
	if m.settings == nil {
		return m, nil
	}

	if m.editing {
		switch msg.String() {
		case "enter":
			m.settings.Endpoint = m.endpointInput.Value()
			m.editing = false
			m.endpointInput.Blur()
			return m, m.save
		case "esc":
			m.editing = false
			m.endpointInput.Blur()
			m.endpointInput.SetValue(m.settings.Endpoint)
			return m, nil
		default:
			var cmd tea.Cmd
			m.endpointInput, cmd = m.endpointInput.Update(msg)
			return m, cmd
		}
	}

	switch msg.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < itemCount-1 {
			m.cursor++
		}
	case "enter", " ", "left", "right":
		return m.activate()
	}

	return m, nil
}

// activate edits or toggles the selected item.
func (m *Model) activate() (app.Tab, tea.Cmd) {
	switch m.cursor {
	case itemEndpoint:
		m.editing = true
		m.message = ""
		return m, m.endpointInput.Focus()

	case itemConsoleType:
		if m.settings.ConsoleType() == settings.ConsoleBrowser {
			m.settings.SetConsoleType(settings.ConsoleNative)
		} else {
			m.settings.SetConsoleType(settings.ConsoleBrowser)
		}
		m.message = ""
		return m, m.save
	}
	return m, nil
}

// View renders the preferences.
func (m *Model) View() string {
	if m.Width() == 0 || m.settings == nil {
		return "Loading..."
	}

	var lines []string
	lines = append(lines, "  "+app.BoldStyle.Render("Settings"), "")

	rows := []struct {
		label string
		value string
	}{
		{"Endpoint", m.endpointValue()},
		{"Console", m.consoleValue()},
	}

	for i, row := range rows {
		marker := "  "
		label := app.DimStyle.Render(fmt.Sprintf("%-10s", row.label+":"))
		if item(i) == m.cursor {
			marker = app.AccentStyle.Render("> ")
			label = app.BoldStyle.Render(fmt.Sprintf("%-10s", row.label+":"))
		}
		lines = append(lines, fmt.Sprintf("  %s%s %s", marker, label, row.value))
	}

	lines = append(lines, "", "  "+app.DimStyle.Render(fmt.Sprintf("File: %s", m.store.SettingsPath())))

	if m.err != nil {
		lines = append(lines, "", "  "+app.ErrorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	} else if m.message != "" {
		lines = append(lines, "", "  "+app.SuccessStyle.Render(m.message))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (m *Model) endpointValue() string {
	if m.editing {
		return m.endpointInput.View()
	}
	if m.settings.Endpoint == "" {
		return app.DimStyle.Render("(not set)")
	}
	return m.settings.Endpoint
}

func (m *Model) consoleValue() string {
	if m.settings.ConsoleType() == settings.ConsoleNative {
		return "native client (qvmrc://)"
	}
	return "browser"
}

// Focus sets focus on this tab.
func (m *Model) Focus() tea.Cmd {
	m.BaseTab.Focus()
	return m.load
}

// Blur removes focus from this tab.
func (m *Model) Blur() {
	m.BaseTab.Blur()
	m.editing = false
	m.endpointInput.Blur()
}

// KeyBindings returns the key bindings for this tab.
func (m *Model) KeyBindings() []string {
	if m.editing {
		return []string{
			"[Enter] save",
			"[esc] cancel",
		}
	}
	return []string{
		"[up/down] select",
		"[Enter] edit/toggle",
	}
}

// HasFocusedInput reports whether the endpoint input has focus.
func (m *Model) HasFocusedInput() bool {
	return m.editing
}
