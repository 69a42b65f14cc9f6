package app

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/quantix-cloud/qcli/pkg/api"
)

// Common styles used across the application.
var (
	// Status colors
	StatusRunningStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("40")).
				Bold(true)

	StatusStoppedStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("214"))

	StatusErrorStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("196")).
				Bold(true)

	StatusPendingStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("39"))

	StatusUnknownStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("244"))

	// Text styles
	BoldStyle = lipgloss.NewStyle().Bold(true)

	DimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("244"))

	AccentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39"))

	SuccessStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("40"))

	WarningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	// Layout styles
	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(1, 2)

	SelectedRowStyle = lipgloss.NewStyle().
				Background(lipgloss.Color("236")).
				Bold(true)

	// Spinner style
	SpinnerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39"))
)

// StateStyle returns the appropriate style for a VM power state.
func StateStyle(state api.VMState) lipgloss.Style {
	switch state {
	case api.VMStateRunning:
		return StatusRunningStyle
	case api.VMStateStopped, api.VMStateStopping:
		return StatusStoppedStyle
	case api.VMStateError:
		return StatusErrorStyle
	case api.VMStatePending, api.VMStateCreating:
		return StatusPendingStyle
	default:
		return StatusUnknownStyle
	}
}

// RenderState renders a VM state with appropriate coloring.
func RenderState(state api.VMState) string {
	return StateStyle(state).Render(string(state))
}
