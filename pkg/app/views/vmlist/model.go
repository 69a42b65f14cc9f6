// Package vmlist provides the VM list view for the terminal console.
package vmlist

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/quantix-cloud/qcli/pkg/api"
	"github.com/quantix-cloud/qcli/pkg/app"
	"github.com/quantix-cloud/qcli/pkg/console"
	"github.com/quantix-cloud/qcli/pkg/settings"
)

const (
	// RefreshInterval is the auto-refresh interval for the VM list.
	RefreshInterval = 5 * time.Second
)

// RefreshMsg triggers a VM list refresh.
type RefreshMsg struct{}

// VMsLoadedMsg indicates VMs were loaded successfully.
type VMsLoadedMsg struct {
	VMs []api.VM
}

// VMsErrorMsg indicates an error loading VMs.
type VMsErrorMsg struct {
	Err error
}

// ActionResultMsg indicates the result of a VM lifecycle action.
type ActionResultMsg struct {
	Action  string
	VMName  string
	Success bool
	Err     error
}

// AgentStatusMsg carries the result of a guest-agent ping.
type AgentStatusMsg struct {
	VMName string
	Status api.AgentStatus
}

// MetricsMsg carries the metrics of the selected VM.
type MetricsMsg struct {
	VMName  string
	Metrics *api.VMMetrics
}

// Model is the VM list view model.
type Model struct {
	app.BaseTab

	client *api.Client
	store  *settings.Store
	keys   app.VMListKeyMap

	vms        []api.VM
	table      table.Model
	spinner    spinner.Model
	loading    bool
	err        error
	lastUpdate time.Time

	// Action state
	actionInProgress bool
	actionMessage    string

	autoRefresh bool
}

// New creates a new VM list model.
func New(client *api.Client, store *settings.Store) *Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = app.SpinnerStyle

	m := &Model{
		BaseTab:     app.NewBaseTab(app.TabVMs, "VMs", "1"),
		client:      client,
		store:       store,
		keys:        app.DefaultVMListKeyMap(),
		spinner:     s,
		loading:     true,
		autoRefresh: true,
	}

	m.table = m.createTable()
	return m
}

// createTable creates the table model with columns.
func (m *Model) createTable() table.Model {
	columns := []table.Column{
		{Title: "NAME", Width: 20},
		{Title: "STATE", Width: 10},
		{Title: "NODE", Width: 14},
		{Title: "IP", Width: 16},
		{Title: "CPU", Width: 5},
		{Title: "MEM", Width: 8},
		{Title: "AGE", Width: 8},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(10),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return t
}

// Init initializes the VM list view.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		m.loadVMs,
		m.scheduleRefresh(),
	)
}

// Update handles messages.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.actionInProgress {
			return m, nil
		}
		return m.handleKeyMsg(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case RefreshMsg:
		if !m.loading && !m.actionInProgress {
			m.loading = true
			cmds = append(cmds, m.loadVMs)
		}
		if m.autoRefresh && m.IsFocused() {
			cmds = append(cmds, m.scheduleRefresh())
		}

	case VMsLoadedMsg:
		m.loading = false
		m.vms = msg.VMs
		m.lastUpdate = time.Now()
		m.err = nil
		m.updateTableRows()

	case VMsErrorMsg:
		m.loading = false
		m.err = msg.Err

	case ActionResultMsg:
		m.actionInProgress = false
		if msg.Success {
			m.actionMessage = fmt.Sprintf("%s %s: ok", msg.Action, msg.VMName)
			cmds = append(cmds, m.loadVMs)
		} else {
			m.actionMessage = fmt.Sprintf("%s %s: %v", msg.Action, msg.VMName, msg.Err)
		}

	case AgentStatusMsg:
		if msg.Status.Connected {
			version := msg.Status.Version
			if version == "" {
				version = "unknown version"
			}
			m.actionMessage = fmt.Sprintf("agent on %s: connected (%s)", msg.VMName, version)
		} else {
			m.actionMessage = fmt.Sprintf("agent on %s: %s", msg.VMName, msg.Status.Reason)
		}

	case MetricsMsg:
		m.actionMessage = fmt.Sprintf(
			"%s: cpu %.1f%%, mem %s / %s",
			msg.VMName,
			msg.Metrics.CPUPercent,
			formatBytes(msg.Metrics.MemoryUsedBytes),
			formatBytes(msg.Metrics.MemoryTotalBytes),
		)
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// handleKeyMsg handles keyboard input.
func (m *Model) handleKeyMsg(msg tea.KeyMsg) (app.Tab, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Start):
		return m.powerSelected(api.PowerStart)
	case key.Matches(msg, m.keys.Stop):
		return m.powerSelected(api.PowerStop)
	case key.Matches(msg, m.keys.Console):
		return m.openConsole()
	case key.Matches(msg, m.keys.Agent):
		return m.pingAgent()
	case key.Matches(msg, m.keys.Refresh):
		m.loading = true
		return m, m.loadVMs
	case key.Matches(msg, m.keys.Details):
		return m.showMetrics()
	default:
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		return m, cmd
	}
}

// View renders the VM list.
func (m *Model) View() string {
	if m.Width() == 0 {
		return "Loading..."
	}

	var content string

	header := m.renderHeader()

	if m.loading && len(m.vms) == 0 {
		content = fmt.Sprintf("\n  %s Loading VMs...\n", m.spinner.View())
	} else if m.err != nil {
		content = fmt.Sprintf("\n  Error: %v\n\n  Press 'r' to retry.\n", m.err)
	} else if len(m.vms) == 0 {
		content = "\n  No VMs found.\n\n  Press '2' to create a new VM.\n"
	} else {
		content = m.table.View()
	}

	statusBar := m.renderStatusBar()

	return lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
}

// renderHeader renders the view header.
func (m *Model) renderHeader() string {
	title := "Virtual Machines"
	if m.loading {
		title += fmt.Sprintf(" %s", m.spinner.View())
	}

	updateInfo := ""
	if !m.lastUpdate.IsZero() {
		updateInfo = fmt.Sprintf("Last update: %s", m.lastUpdate.Format("15:04:05"))
	}

	left := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229")).Render(title)
	right := app.DimStyle.Render(updateInfo)

	gap := m.Width() - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 0 {
		gap = 0
	}

	return fmt.Sprintf("%s%s%s", left, lipgloss.NewStyle().Width(gap).Render(""), right)
}

// renderStatusBar renders the status bar at the bottom.
func (m *Model) renderStatusBar() string {
	if m.actionMessage != "" {
		return app.DimStyle.Render(m.actionMessage)
	}

	if m.actionInProgress {
		return fmt.Sprintf("%s Action in progress...", m.spinner.View())
	}

	return ""
}

// updateTableRows updates the table with current VM data.
func (m *Model) updateTableRows() {
	rows := make([]table.Row, len(m.vms))
	for i, vm := range m.vms {
		rows[i] = table.Row{
			vm.Name,
			app.RenderState(vm.State),
			formatDash(vm.NodeID),
			formatDash(vm.IPAddress),
			fmt.Sprintf("%d", vm.Cores),
			formatMemory(vm.MemoryMiB),
			formatAge(vm.CreatedAt),
		}
	}
	m.table.SetRows(rows)
}

func formatDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// formatMemory formats memory in human-readable form.
func formatMemory(mib int64) string {
	if mib >= 1024 {
		return fmt.Sprintf("%.1fGiB", float64(mib)/1024)
	}
	return fmt.Sprintf("%dMiB", mib)
}

// formatBytes formats a byte count in human-readable form.
func formatBytes(b int64) string {
	const gib = 1024 * 1024 * 1024
	const mib = 1024 * 1024
	if b >= gib {
		return fmt.Sprintf("%.1fGiB", float64(b)/gib)
	}
	return fmt.Sprintf("%dMiB", b/mib)
}

// formatAge formats the time since creation.
func formatAge(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	d := time.Since(t)
	switch {
	case d >= 24*time.Hour:
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	case d >= time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	case d >= time.Minute:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	default:
		return "now"
	}
}

// loadVMs returns a command to load VMs.
func (m *Model) loadVMs() tea.Msg {
	ctx, cancel := context.WithTimeout(context.Background(), api.DefaultTimeout)
	defer cancel()

	vms, err := m.client.ListVMs(ctx)
	if err != nil {
		return VMsErrorMsg{Err: err}
	}
	return VMsLoadedMsg{VMs: vms}
}

// scheduleRefresh returns a command to schedule the next refresh.
func (m *Model) scheduleRefresh() tea.Cmd {
	return tea.Tick(RefreshInterval, func(time.Time) tea.Msg {
		return RefreshMsg{}
	})
}

// selectedVM returns the currently selected VM, if any.
func (m *Model) selectedVM() *api.VM {
	if len(m.vms) == 0 {
		return nil
	}
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.vms) {
		return nil
	}
	return &m.vms[idx]
}

// powerSelected starts or stops the selected VM.
func (m *Model) powerSelected(action api.PowerAction) (app.Tab, tea.Cmd) {
	vm := m.selectedVM()
	if vm == nil {
		return m, nil
	}
	if action == api.PowerStart && vm.State == api.VMStateRunning {
		m.actionMessage = fmt.Sprintf("%s is already running", vm.Name)
		return m, nil
	}
	if action == api.PowerStop && vm.State == api.VMStateStopped {
		m.actionMessage = fmt.Sprintf("%s is already stopped", vm.Name)
		return m, nil
	}

	m.actionInProgress = true
	m.actionMessage = ""
	id, name := vm.ID, vm.Name
	return m, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), api.DefaultTimeout)
		defer cancel()

		err := m.client.PowerVM(ctx, id, action)
		return ActionResultMsg{
			Action:  string(action),
			VMName:  name,
			Success: err == nil,
			Err:     err,
		}
	}
}

// openConsole resolves the console target for the selected VM and shows it.
// Following the configured preference this is either the web console URL or
// a native-client deep link.
func (m *Model) openConsole() (app.Tab, tea.Cmd) {
	vm := m.selectedVM()
	if vm == nil {
		return m, nil
	}

	prefs := m.store.Settings()
	if prefs == nil {
		prefs = settings.NewSettings()
	}
	target := console.LaunchURL(prefs, m.client.BaseURL(), vm.ID, vm.Name)
	m.actionMessage = fmt.Sprintf("console: %s", target)
	return m, nil
}

// pingAgent checks guest-agent connectivity for the selected VM.
func (m *Model) pingAgent() (app.Tab, tea.Cmd) {
	vm := m.selectedVM()
	if vm == nil {
		return m, nil
	}

	id, name := vm.ID, vm.Name
	return m, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), api.DefaultTimeout)
		defer cancel()

		return AgentStatusMsg{VMName: name, Status: m.client.AgentPing(ctx, id)}
	}
}

// showMetrics fetches metrics for the selected VM.
func (m *Model) showMetrics() (app.Tab, tea.Cmd) {
	vm := m.selectedVM()
	if vm == nil {
		return m, nil
	}
	if vm.State != api.VMStateRunning {
		m.actionMessage = fmt.Sprintf("%s is not running", vm.Name)
		return m, nil
	}

	id, name := vm.ID, vm.Name
	return m, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), api.DefaultTimeout)
		defer cancel()

		metrics, err := m.client.GetVMMetrics(ctx, id)
		if err != nil {
			return ActionResultMsg{Action: "metrics", VMName: name, Err: err}
		}
		return MetricsMsg{VMName: name, Metrics: metrics}
	}
}

// Focus sets focus on this tab.
func (m *Model) Focus() tea.Cmd {
	m.BaseTab.Focus()
	m.autoRefresh = true
	return tea.Batch(
		m.spinner.Tick,
		m.loadVMs,
		m.scheduleRefresh(),
	)
}

// Blur removes focus from this tab.
func (m *Model) Blur() {
	m.BaseTab.Blur()
	m.autoRefresh = false
}

// SetSize sets the tab dimensions.
func (m *Model) SetSize(width, height int) {
	m.BaseTab.SetSize(width, height)
	// Reserve space for header and status bar
	tableHeight := height - 4
	if tableHeight < 5 {
		tableHeight = 5
	}
	m.table.SetWidth(width)
	m.table.SetHeight(tableHeight)
}

// KeyBindings returns the key bindings for this tab.
func (m *Model) KeyBindings() []string {
	return []string{
		"[s] start",
		"[S] stop",
		"[c] console",
		"[a] agent",
		"[r] refresh",
		"[Enter] metrics",
	}
}

// HasFocusedInput returns false as this tab has no text inputs.
func (m *Model) HasFocusedInput() bool {
	return false
}
