// Package create provides the VM creation wizard view for the terminal
// console. The form state, validation, and payload assembly live in
// pkg/wizard; this package only renders and edits that state.
package create

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/quantix-cloud/qcli/pkg/api"
	"github.com/quantix-cloud/qcli/pkg/app"
	"github.com/quantix-cloud/qcli/pkg/settings"
	"github.com/quantix-cloud/qcli/pkg/wizard"
)

// InventoryLoadedMsg carries the inventory snapshot the wizard validates
// against.
type InventoryLoadedMsg struct {
	Inventory *api.Inventory
}

// InventoryErrorMsg indicates the inventory could not be fetched.
type InventoryErrorMsg struct {
	Err error
}

// CreatedMsg indicates the VM was created.
type CreatedMsg struct {
	VM *api.VM
}

// CreateErrorMsg indicates the creation request failed. The wizard stays on
// the review step with all state intact so the user can retry.
type CreateErrorMsg struct {
	Err error
}

// Model is the creation wizard view model.
type Model struct {
	app.BaseTab

	client *api.Client
	store  *settings.Store
	keys   app.WizardKeyMap

	state     *wizard.State
	inventory *api.Inventory
	step      wizard.Step
	fields    []*field
	focus     int
	result    wizard.Result

	// attachVolumeID is the volume picked in the storage step's attach
	// selector, pending attachment.
	attachVolumeID string

	spinner    spinner.Model
	loading    bool
	submitting bool
	err        error
	message    string
}

// New creates a new creation wizard model.
func New(client *api.Client, store *settings.Store) *Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = app.SpinnerStyle

	m := &Model{
		BaseTab: app.NewBaseTab(app.TabCreate, "Create", "2"),
		client:  client,
		store:   store,
		keys:    app.DefaultWizardKeyMap(),
		state:   wizard.NewState(),
		step:    wizard.StepIdentity,
		spinner: s,
		loading: true,
	}
	m.prefillFromSettings()
	return m
}

// prefillFromSettings seeds the form with the last-used selections.
func (m *Model) prefillFromSettings() {
	prefs := m.store.Settings()
	if prefs == nil {
		return
	}
	m.state.Apply(func(s *wizard.State) {
		s.ClusterID = prefs.LastClusterID
		s.PoolID = prefs.LastPoolID
	})
}

// Init initializes the wizard view.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.loadInventory)
}

// loadInventory fetches the read models the wizard validates against.
func (m *Model) loadInventory() tea.Msg {
	ctx, cancel := context.WithTimeout(context.Background(), api.DefaultTimeout)
	defer cancel()

	inv, err := m.client.FetchInventory(ctx)
	if err != nil {
		return InventoryErrorMsg{Err: err}
	}
	return InventoryLoadedMsg{Inventory: inv}
}

// Update handles messages.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.submitting {
			return m, nil
		}
		return m.handleKeyMsg(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case InventoryLoadedMsg:
		m.loading = false
		m.err = nil
		m.inventory = msg.Inventory
		m.rebuildFields()
		return m, nil

	case InventoryErrorMsg:
		m.loading = false
		m.err = msg.Err
		return m, nil

	case CreatedMsg:
		m.submitting = false
		m.message = fmt.Sprintf("VM %q created (%s)", msg.VM.Name, msg.VM.ID)
		m.resetForm()
		m.client.InvalidateInventory()
		return m, m.loadInventory

	case CreateErrorMsg:
		m.submitting = false
		m.err = msg.Err
		return m, nil
	}

	return m, nil
}

// resetForm starts a fresh session after a successful creation.
func (m *Model) resetForm() {
	m.state = wizard.NewState()
	m.prefillFromSettings()
	m.step = wizard.StepIdentity
	m.focus = 0
	m.attachVolumeID = ""
	m.result = wizard.Result{Valid: true}
	m.rebuildFields()
}

// rebuildFields reconstructs the form fields for the current step.
func (m *Model) rebuildFields() {
	m.fields = m.buildFields(m.step)
	if m.focus >= len(m.fields) {
		m.focus = 0
	}
	m.syncFocus()
}

// syncFocus focuses the active text input and blurs the rest.
func (m *Model) syncFocus() {
	for i, f := range m.fields {
		if f.kind != fieldInput {
			continue
		}
		if i == m.focus {
			f.input.Focus()
		} else {
			f.input.Blur()
		}
	}
}

// handleKeyMsg handles keyboard input.
func (m *Model) handleKeyMsg(msg tea.KeyMsg) (app.Tab, tea.Cmd) {
	if m.loading {
		return m, nil
	}
	if m.err != nil && m.inventory == nil {
		if msg.String() == "r" {
			m.loading = true
			m.err = nil
			return m, m.loadInventory
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.FocusPrev):
		if m.focus > 0 {
			m.focus--
			m.syncFocus()
		}
		return m, nil

	case key.Matches(msg, m.keys.FocusNext):
		if m.focus < len(m.fields)-1 {
			m.focus++
			m.syncFocus()
		}
		return m, nil

	case key.Matches(msg, m.keys.PrevOption), key.Matches(msg, m.keys.NextOption):
		f := m.currentField()
		if f != nil && f.kind != fieldInput {
			delta := 1
			if key.Matches(msg, m.keys.PrevOption) {
				delta = -1
			}
			f.cycle(delta)
			m.state.Apply(func(s *wizard.State) { f.set(s, f) })
			// Kind and cluster switches change which fields exist
			m.rebuildFields()
			m.validateStep()
			return m, nil
		}

	case key.Matches(msg, m.keys.Next):
		return m.advance()

	case key.Matches(msg, m.keys.Prev):
		return m.retreat()
	}

	// Everything else goes to the focused input
	f := m.currentField()
	if f != nil && f.kind == fieldInput {
		var cmd tea.Cmd
		f.input, cmd = f.input.Update(msg)
		m.state.Apply(func(s *wizard.State) { f.set(s, f) })
		m.validateStep()
		return m, cmd
	}

	return m, nil
}

// currentField returns the focused field, or nil on the review step.
func (m *Model) currentField() *field {
	if m.focus < 0 || m.focus >= len(m.fields) {
		return nil
	}
	return m.fields[m.focus]
}

// validateStep refreshes the validation result for the current step.
func (m *Model) validateStep() {
	if m.inventory == nil {
		return
	}
	m.result = wizard.ValidateStep(m.step, m.state, m.inventory)
}

// advance moves to the next step when the current one validates, or submits
// from the review step.
func (m *Model) advance() (app.Tab, tea.Cmd) {
	if m.step == wizard.StepReview {
		return m.submit()
	}

	m.validateStep()
	if !m.result.Valid {
		return m, nil
	}

	m.message = ""
	m.step = m.step.Next()
	m.focus = 0
	m.result = wizard.Result{Valid: true}
	m.rebuildFields()
	return m, nil
}

// retreat moves to the previous step. State is kept, so nothing entered is
// lost by going back.
func (m *Model) retreat() (app.Tab, tea.Cmd) {
	if m.step == wizard.StepIdentity {
		return m, nil
	}
	m.step = m.step.Prev()
	m.focus = 0
	m.result = wizard.Result{Valid: true}
	m.rebuildFields()
	return m, nil
}

// submit validates the whole form and sends the creation request.
func (m *Model) submit() (app.Tab, tea.Cmd) {
	m.result = wizard.ValidateAll(m.state, m.inventory)
	if !m.result.Valid {
		return m, nil
	}

	req, err := wizard.BuildCreateRequest(m.state, m.inventory, m.client.BaseURL())
	if err != nil {
		m.err = err
		return m, nil
	}

	m.submitting = true
	m.err = nil
	m.rememberSelections()

	return m, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), api.DefaultTimeout)
		defer cancel()

		vm, err := m.client.CreateVM(ctx, req)
		if err != nil {
			return CreateErrorMsg{Err: err}
		}
		return CreatedMsg{VM: vm}
	}
}

// rememberSelections persists the cluster and pool for the next session.
func (m *Model) rememberSelections() {
	clusterID, poolID := m.state.ClusterID, m.state.PoolID
	err := m.store.LoadAndSave(func(s *settings.Settings) error {
		s.LastClusterID = clusterID
		s.LastPoolID = poolID
		return nil
	})
	if err != nil {
		// Preference persistence is best effort
		m.message = fmt.Sprintf("could not save preferences: %v", err)
	}
}

// View renders the wizard.
func (m *Model) View() string {
	if m.Width() == 0 {
		return "Loading..."
	}

	if m.loading {
		return fmt.Sprintf("\n  %s Loading inventory...\n", m.spinner.View())
	}
	if m.inventory == nil {
		return fmt.Sprintf("\n  %s\n\n  Press 'r' to retry.\n",
			app.ErrorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	}

	header := m.renderStepHeader()

	var body string
	if m.step == wizard.StepReview {
		body = m.renderReview()
	} else {
		body = m.renderFields()
	}

	status := m.renderStatus()

	return lipgloss.JoinVertical(lipgloss.Left, header, "", body, "", status)
}

// renderStepHeader renders the step title and progress.
func (m *Model) renderStepHeader() string {
	title := app.BoldStyle.Render(m.step.String())
	progress := app.DimStyle.Render(
		fmt.Sprintf("Step %d of %d", int(m.step)+1, wizard.TotalSteps()))
	return fmt.Sprintf("  %s  %s", title, progress)
}

// renderFields renders the form fields with inline validation errors.
func (m *Model) renderFields() string {
	var lines []string

	for i, f := range m.fields {
		marker := "  "
		labelStyle := app.DimStyle
		if i == m.focus {
			marker = app.AccentStyle.Render("> ")
			labelStyle = app.BoldStyle
		}

		var value string
		switch f.kind {
		case fieldInput:
			value = f.input.View()
		case fieldSelect:
			value = fmt.Sprintf("< %s >", f.selected().label)
		case fieldToggle:
			value = fmt.Sprintf("[%s]", f.value())
		case fieldAction:
			value = app.DimStyle.Render("(space)")
		}

		lines = append(lines, fmt.Sprintf("  %s%s  %s", marker, labelStyle.Render(f.label+":"), value))

		if msg := m.result.Error(f.key); msg != "" && f.key != "" {
			lines = append(lines, "      "+app.ErrorStyle.Render(msg))
		}
	}

	// Errors without a field on this step (e.g. access rules spanning
	// password and SSH keys)
	shown := map[wizard.Field]bool{}
	for _, f := range m.fields {
		shown[f.key] = true
	}
	for key, msg := range m.result.FieldErrors {
		if !shown[key] {
			lines = append(lines, "  "+app.ErrorStyle.Render(msg))
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// renderStatus renders the submit state or the last message.
func (m *Model) renderStatus() string {
	switch {
	case m.submitting:
		return fmt.Sprintf("  %s Creating VM...", m.spinner.View())
	case m.err != nil:
		return "  " + app.ErrorStyle.Render(fmt.Sprintf("Error: %v", m.err))
	case m.message != "":
		return "  " + app.SuccessStyle.Render(m.message)
	default:
		return ""
	}
}

// Focus sets focus on this tab.
func (m *Model) Focus() tea.Cmd {
	m.BaseTab.Focus()
	if m.inventory == nil && !m.loading {
		m.loading = true
		return tea.Batch(m.spinner.Tick, m.loadInventory)
	}
	return m.spinner.Tick
}

// Blur removes focus from this tab.
func (m *Model) Blur() {
	m.BaseTab.Blur()
}

// SetSize sets the tab dimensions.
func (m *Model) SetSize(width, height int) {
	m.BaseTab.SetSize(width, height)
}

// KeyBindings returns the key bindings for this tab.
func (m *Model) KeyBindings() []string {
	if m.step == wizard.StepReview {
		return []string{
			"[Enter] create",
			"[esc] back",
		}
	}
	return []string{
		"[Enter] next",
		"[esc] back",
		"[up/down] field",
		"[left/right/space] change",
	}
}

// HasFocusedInput reports whether a text input currently has focus.
func (m *Model) HasFocusedInput() bool {
	f := m.currentField()
	return f != nil && f.kind == fieldInput && f.input.Focused()
}
