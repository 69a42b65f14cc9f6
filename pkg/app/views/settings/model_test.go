package settings

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantix-cloud/qcli/pkg/settings"
)

func loadedModel(t *testing.T) *Model {
	t.Helper()
	store := settings.NewStoreWithDir(t.TempDir())
	m := New(store)
	m.SetSize(120, 40)

	msg := m.load()
	tab, _ := m.Update(msg)
	return tab.(*Model)
}

func TestModel_LoadsDefaults(t *testing.T) {
	m := loadedModel(t)

	require.NotNil(t, m.settings)
	assert.Equal(t, settings.ConsoleBrowser, m.settings.ConsoleType())
	assert.Contains(t, m.View(), "browser")
}

func TestModel_ToggleConsoleTypePersists(t *testing.T) {
	m := loadedModel(t)

	// Move to the console row and toggle it
	tab, _ := m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m = tab.(*Model)
	tab, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = tab.(*Model)
	require.NotNil(t, cmd)

	msg := cmd()
	_, ok := msg.(savedMsg)
	require.True(t, ok)

	saved, err := m.store.Load()
	require.NoError(t, err)
	assert.Equal(t, settings.ConsoleNative, saved.ConsoleType())
}

func TestModel_EditEndpoint(t *testing.T) {
	m := loadedModel(t)

	tab, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = tab.(*Model)
	assert.True(t, m.editing)
	assert.True(t, m.HasFocusedInput())

	for _, r := range "https://qvdc.local:8443" {
		tab, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		m = tab.(*Model)
	}

	tab, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = tab.(*Model)
	require.NotNil(t, cmd)
	assert.False(t, m.editing)

	msg := cmd()
	_, ok := msg.(savedMsg)
	require.True(t, ok)

	saved, err := m.store.Load()
	require.NoError(t, err)
	assert.Equal(t, "https://qvdc.local:8443", saved.Endpoint)
}

func TestModel_EscCancelsEdit(t *testing.T) {
	m := loadedModel(t)
	m.settings.Endpoint = "https://old.local"
	m.endpointInput.SetValue("https://old.local")

	tab, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = tab.(*Model)

	for _, r := range "garbage" {
		tab, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		m = tab.(*Model)
	}

	tab, _ = m.Update(tea.KeyMsg{Type: tea.KeyEscape})
	m = tab.(*Model)

	assert.False(t, m.editing)
	assert.Equal(t, "https://old.local", m.endpointInput.Value())
}

func TestModel_CursorStaysInBounds(t *testing.T) {
	m := loadedModel(t)

	tab, _ := m.Update(tea.KeyMsg{Type: tea.KeyUp})
	m = tab.(*Model)
	assert.Equal(t, itemEndpoint, m.cursor)

	for i := 0; i < 5; i++ {
		tab, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
		m = tab.(*Model)
	}
	assert.Equal(t, itemConsoleType, m.cursor)
}
