package cli

import (
	"errors"
	"fmt"
	"os"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"golang.org/x/term"
)

// errInterrupted is returned when the user stops waiting.
var errInterrupted = errors.New("interrupted")

// workDoneMsg carries the result of the awaited work.
type workDoneMsg struct {
	err error
}

// pendingModel is the bubbletea model shown while a request is in flight.
type pendingModel struct {
	label       string
	work        func() error
	spinner     spinner.Model
	theme       Theme
	done        bool
	interrupted bool
	err         error
}

// newPendingModel creates a spinner model for work.
func newPendingModel(label string, work func() error) pendingModel {
	return pendingModel{
		label:   label,
		work:    work,
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
		theme:   defaultTheme,
	}
}

// Init starts the spinner and the work.
func (m pendingModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.run())
}

// Update handles messages and returns the updated model.
func (m pendingModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.interrupted = true
			return m, tea.Quit
		}

	case workDoneMsg:
		m.done = true
		m.err = msg.err
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View renders the spinner line.
func (m pendingModel) View() tea.View {
	return tea.NewView(m.renderContent())
}

func (m pendingModel) renderContent() string {
	switch {
	case m.interrupted:
		return m.theme.hintStyle().Render("Stopped waiting.") + "\n"
	case m.done && m.err != nil:
		return m.theme.errorStyle().Render("✗ "+m.label) + "\n"
	case m.done:
		return ""
	}
	hint := m.theme.hintStyle().Render("(esc to stop waiting)")
	return fmt.Sprintf("%s %s %s\n", m.spinner.View(), m.theme.statusStyle().Render(m.label), hint)
}

// run executes the work in a command so Update never blocks.
func (m pendingModel) run() tea.Cmd {
	return func() tea.Msg {
		return workDoneMsg{err: m.work()}
	}
}

// runPending runs work, showing a spinner with label while it is in flight
// when stdout is a terminal.
func runPending(label string, work func() error) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return work()
	}

	p := tea.NewProgram(newPendingModel(label, work))
	finalModel, err := p.Run()
	if err != nil {
		return fmt.Errorf("progress UI error: %w", err)
	}

	m, ok := finalModel.(pendingModel)
	if !ok {
		return nil
	}
	if m.interrupted {
		return errInterrupted
	}
	return m.err
}
