package app

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the key bindings for the application.
type KeyMap struct {
	// Navigation
	Quit    key.Binding
	NextTab key.Binding
	PrevTab key.Binding

	// Tab shortcuts
	Tab1 key.Binding
	Tab2 key.Binding
	Tab3 key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		NextTab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("Tab", "next tab"),
		),
		PrevTab: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("Shift+Tab", "prev tab"),
		),
		Tab1: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", "VMs"),
		),
		Tab2: key.NewBinding(
			key.WithKeys("2"),
			key.WithHelp("2", "Create"),
		),
		Tab3: key.NewBinding(
			key.WithKeys("3"),
			key.WithHelp("3", "Settings"),
		),
	}
}

// keys is the global key map instance.
var keys = DefaultKeyMap()

// VMListKeyMap defines key bindings specific to the VM list view.
type VMListKeyMap struct {
	Start   key.Binding
	Stop    key.Binding
	Console key.Binding
	Agent   key.Binding
	Refresh key.Binding
	Details key.Binding
}

// DefaultVMListKeyMap returns default VM list key bindings.
func DefaultVMListKeyMap() VMListKeyMap {
	return VMListKeyMap{
		Start: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "start"),
		),
		Stop: key.NewBinding(
			key.WithKeys("S"),
			key.WithHelp("S", "stop"),
		),
		Console: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "console"),
		),
		Agent: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "agent"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Details: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "details"),
		),
	}
}

// WizardKeyMap defines key bindings specific to the creation wizard.
type WizardKeyMap struct {
	FocusNext  key.Binding
	FocusPrev  key.Binding
	NextOption key.Binding
	PrevOption key.Binding
	Next       key.Binding
	Prev       key.Binding
}

// DefaultWizardKeyMap returns default wizard key bindings.
func DefaultWizardKeyMap() WizardKeyMap {
	return WizardKeyMap{
		FocusNext: key.NewBinding(
			key.WithKeys("down", "tab"),
			key.WithHelp("down", "next field"),
		),
		FocusPrev: key.NewBinding(
			key.WithKeys("up", "shift+tab"),
			key.WithHelp("up", "prev field"),
		),
		NextOption: key.NewBinding(
			key.WithKeys("right", " "),
			key.WithHelp("right/space", "next option"),
		),
		PrevOption: key.NewBinding(
			key.WithKeys("left"),
			key.WithHelp("left", "prev option"),
		),
		Next: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "next step"),
		),
		Prev: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
	}
}
