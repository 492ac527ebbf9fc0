package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"imagelab-cli/internal/controller"
	"imagelab-cli/internal/interfaces"
	"imagelab-cli/internal/state"
)

const (
	fieldPrompt = iota
	fieldWidth
	fieldHeight
	fieldCount
)

var themeAccents = map[state.Theme]lipgloss.Color{
	state.ThemeTeal:  lipgloss.Color("30"),
	state.ThemeLilac: lipgloss.Color("141"),
	state.ThemeDark:  lipgloss.Color("39"),
}

var (
	labelStyle = lipgloss.NewStyle().
			Width(8).
			Foreground(lipgloss.Color("245"))

	statusStyle = lipgloss.NewStyle().
			MarginTop(1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	helpStyle = lipgloss.NewStyle().
			MarginTop(1).
			Foreground(lipgloss.Color("241"))

	flashStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Italic(true)
)

type (
	// stateChangedMsg signals that the store was updated
	stateChangedMsg struct{}

	generationDoneMsg struct{ err error }
)

// modalNotifier captures the message of a convert alert so the model can show it as a modal
type modalNotifier struct {
	message string
}

func (n *modalNotifier) Alert(message string) error {
	n.message = message
	return nil
}

// Model is the bubbletea model of the terminal front end
type Model struct {
	ctx    context.Context
	ctrl   *controller.Controller
	output interfaces.OutputHandler

	snapshot state.State
	inputs   []textinput.Model
	focus    int
	spinner  spinner.Model

	notice string
	flash  string

	changes     chan struct{}
	unsubscribe func()
	quitting    bool
}

// New creates a model bound to ctrl. Call Close when the program has finished.
func New(ctx context.Context, ctrl *controller.Controller, output interfaces.OutputHandler) Model {
	snapshot := ctrl.Snapshot()

	inputs := make([]textinput.Model, fieldCount)
	for i := range inputs {
		ti := textinput.New()
		ti.Prompt = ""
		inputs[i] = ti
	}
	inputs[fieldPrompt].Placeholder = "Describe your image"
	inputs[fieldPrompt].SetValue(snapshot.Prompt)
	inputs[fieldWidth].SetValue(fmt.Sprint(snapshot.Width))
	inputs[fieldWidth].CharLimit = 10
	inputs[fieldHeight].SetValue(fmt.Sprint(snapshot.Height))
	inputs[fieldHeight].CharLimit = 10
	inputs[fieldPrompt].Focus()

	s := spinner.New()
	s.Spinner = spinner.Dot

	// Coalescing signal: the model re-reads the snapshot, so one pending wake-up is enough
	changes := make(chan struct{}, 1)
	unsubscribe := ctrl.Subscribe(func(state.State) {
		select {
		case changes <- struct{}{}:
		default:
		}
	})

	return Model{
		ctx:         ctx,
		ctrl:        ctrl,
		output:      output,
		snapshot:    snapshot,
		inputs:      inputs,
		spinner:     s,
		changes:     changes,
		unsubscribe: unsubscribe,
	}
}

// Close detaches the model from the store
func (m Model) Close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
}

// Run starts the terminal UI and blocks until the user quits
func Run(ctx context.Context, ctrl *controller.Controller, output interfaces.OutputHandler) error {
	m := New(ctx, ctrl, output)
	defer m.Close()

	_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}

func waitForChange(changes <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		<-changes
		return stateChangedMsg{}
	}
}

func waitForGeneration(done <-chan error) tea.Cmd {
	return func() tea.Msg {
		return generationDoneMsg{err: <-done}
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, waitForChange(m.changes))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case stateChangedMsg:
		m.snapshot = m.ctrl.Snapshot()
		return m, waitForChange(m.changes)

	case generationDoneMsg:
		// The outcome is already in the store; errors only need the fresh snapshot
		m.snapshot = m.ctrl.Snapshot()
		return m, nil

	case spinner.TickMsg:
		if !m.snapshot.InFlight {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		// The convert modal swallows the key that dismisses it
		if m.notice != "" {
			m.notice = ""
			return m, nil
		}
		return m.handleKey(msg)
	}

	return m.updateFocused(msg)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		m.quitting = true
		return m, tea.Quit

	case "tab", "shift+tab":
		m.inputs[m.focus].Blur()
		if msg.String() == "tab" {
			m.focus = (m.focus + 1) % fieldCount
		} else {
			m.focus = (m.focus + fieldCount - 1) % fieldCount
		}
		// Show the stored value again if the user left an unparsable number behind
		m.inputs[fieldWidth].SetValue(fmt.Sprint(m.snapshot.Width))
		m.inputs[fieldHeight].SetValue(fmt.Sprint(m.snapshot.Height))
		return m, m.inputs[m.focus].Focus()

	case "enter", "ctrl+g":
		if m.snapshot.InFlight {
			return m, nil
		}
		m.flash = ""
		done := m.ctrl.Start(m.ctx)
		m.snapshot = m.ctrl.Snapshot()
		if !m.snapshot.InFlight {
			return m, waitForGeneration(done)
		}
		return m, tea.Batch(waitForGeneration(done), m.spinner.Tick)

	case "ctrl+r":
		prompt := m.ctrl.PickRandomPrompt()
		m.inputs[fieldPrompt].SetValue(prompt)
		m.snapshot = m.ctrl.Snapshot()
		return m, nil

	case "ctrl+o":
		m.ctrl.SetModel(string(nextModel(m.snapshot.Model)))
		m.snapshot = m.ctrl.Snapshot()
		return m, nil

	case "ctrl+t":
		m.ctrl.SetTheme(nextTheme(m.snapshot.Theme).String())
		m.snapshot = m.ctrl.Snapshot()
		return m, nil

	case "ctrl+y":
		m.flash = m.copyPreview()
		return m, nil

	case "ctrl+k":
		n := &modalNotifier{}
		if err := m.ctrl.ConvertClicked(n); err != nil {
			m.flash = err.Error()
			return m, nil
		}
		m.notice = n.message
		return m, nil
	}

	return m.updateFocused(msg)
}

// updateFocused forwards msg to the focused field and pushes the edited value into the controller
func (m Model) updateFocused(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	before := m.inputs[m.focus].Value()
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)

	value := m.inputs[m.focus].Value()
	if value == before {
		return m, cmd
	}

	switch m.focus {
	case fieldPrompt:
		m.ctrl.SetPrompt(value)
	case fieldWidth:
		m.ctrl.SetWidth(value)
	case fieldHeight:
		m.ctrl.SetHeight(value)
	}
	m.snapshot = m.ctrl.Snapshot()
	return m, cmd
}

func (m Model) copyPreview() string {
	if !m.snapshot.HasPreview() {
		return "Nothing to copy yet."
	}
	if err := m.output.WriteToClipboard(m.snapshot.Preview); err != nil {
		return controller.NewOutputError("clipboard", err).Message
	}
	return "Image data URI copied to clipboard."
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	accent := themeAccents[m.snapshot.Theme]
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(accent).MarginBottom(1)

	var b strings.Builder
	b.WriteString(titleStyle.Render("Pollinations Image Lab"))
	b.WriteString("\n")

	labels := []string{"Prompt", "Width", "Height"}
	for i, label := range labels {
		b.WriteString(labelStyle.Render(label))
		b.WriteString(m.inputs[i].View())
		b.WriteString("\n")
	}

	b.WriteString(labelStyle.Render("Model"))
	b.WriteString(string(m.snapshot.Model))
	b.WriteString("\n")
	b.WriteString(labelStyle.Render("Theme"))
	b.WriteString(lipgloss.NewStyle().Foreground(accent).Render(m.snapshot.Theme.String()))
	b.WriteString("\n")

	status := m.snapshot.Status
	if m.snapshot.InFlight {
		status = m.spinner.View() + " " + status
	}
	b.WriteString(statusStyle.Render(status))
	b.WriteString("\n")

	if m.snapshot.HasError() {
		b.WriteString(errorStyle.Render(m.snapshot.Error))
		b.WriteString("\n")
	}

	if m.snapshot.HasPreview() {
		b.WriteString(fmt.Sprintf("Preview ready: %s JPEG", humanize.Bytes(uint64(m.snapshot.PreviewSize))))
		b.WriteString("\n")
	}

	if m.flash != "" {
		b.WriteString(flashStyle.Render(m.flash))
		b.WriteString("\n")
	}

	generate := "enter generate"
	if m.snapshot.InFlight {
		generate = "generating..."
	}
	help := []string{generate, "ctrl+r random", "ctrl+o model", "ctrl+t theme", "ctrl+y copy", "ctrl+k convert", "tab next field", "esc quit"}
	b.WriteString(helpStyle.Render(strings.Join(help, " • ")))

	if m.notice != "" {
		modal := lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(1, 2).
			Render(m.notice + "\n\n" + helpStyle.Render("press any key"))
		return b.String() + "\n\n" + modal
	}

	return b.String()
}

func nextModel(current state.Model) state.Model {
	models := state.Models()
	for i, m := range models {
		if m == current {
			return models[(i+1)%len(models)]
		}
	}
	return models[0]
}

func nextTheme(current state.Theme) state.Theme {
	themes := state.Themes()
	for i, t := range themes {
		if t == current {
			return themes[(i+1)%len(themes)]
		}
	}
	return themes[0]
}
