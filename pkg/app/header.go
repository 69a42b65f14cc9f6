package app

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const (
	headerHeight = 3
)

var (
	// Header styles
	headerStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(lipgloss.Color("240"))

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")).
			Padding(0, 1)

	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")).
			Background(lipgloss.Color("236")).
			Padding(0, 2)

	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("244")).
				Padding(0, 2)

	tabSeparator = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Render(" | ")

	shortKeyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("244")).
			Faint(true)
)

// renderHeader renders the application header with title, tabs, and the
// endpoint the console is connected to.
func renderHeader(tabs []Tab, activeIdx int, endpoint string, width int) string {
	title := titleStyle.Render("qcli - Quantix Console")

	var tabParts []string
	for i, tab := range tabs {
		shortKey := shortKeyStyle.Render("[" + tab.ShortKey() + "] ")
		name := tab.Name()

		if i == activeIdx {
			tabParts = append(tabParts, activeTabStyle.Render(shortKey+name))
		} else {
			tabParts = append(tabParts, inactiveTabStyle.Render(shortKey+name))
		}
	}

	tabBar := strings.Join(tabParts, tabSeparator)

	// Right-align the endpoint
	endpointHint := shortKeyStyle.Render(endpoint)

	titleWidth := lipgloss.Width(title)
	tabBarWidth := lipgloss.Width(tabBar)
	endpointWidth := lipgloss.Width(endpointHint)
	spacing := width - titleWidth - tabBarWidth - endpointWidth - 4

	if spacing < 1 {
		spacing = 1
	}

	headerLine := lipgloss.JoinHorizontal(
		lipgloss.Center,
		title,
		strings.Repeat(" ", 2),
		tabBar,
		strings.Repeat(" ", spacing),
		endpointHint,
	)

	return headerStyle.Width(width).Render(headerLine)
}
