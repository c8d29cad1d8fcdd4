package cli

import (
	"io"
	"os"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/theirongolddev/ocstats/internal/cli/theme"
)

type (
	labelMsg string
	stopMsg  struct{}
)

// spinnerModel is the bubbletea model behind Spinner.
type spinnerModel struct {
	spinner spinner.Model
	label   string
	style   lipgloss.Style
	stopped bool
}

func newSpinnerModel(label string) spinnerModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent)

	return spinnerModel{
		spinner: s,
		label:   label,
		style:   lipgloss.NewStyle().Foreground(theme.Active.Muted),
	}
}

func (m spinnerModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case labelMsg:
		m.label = string(msg)
		return m, nil
	case stopMsg:
		m.stopped = true
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.spinner, cmd = m.spinner.Update(msg)
	return m, cmd
}

func (m spinnerModel) View() string {
	if m.stopped {
		return ""
	}
	return m.spinner.View() + " " + m.style.Render(m.label)
}

// Spinner shows an animated status line while data loads. A disabled
// Spinner does nothing.
type Spinner struct {
	prog *tea.Program
	done chan struct{}
}

// StartSpinner starts a spinner on w with the given label. When enabled is
// false the returned Spinner is inert.
func StartSpinner(w io.Writer, label string, enabled bool) *Spinner {
	if !enabled {
		return &Spinner{}
	}

	s := &Spinner{
		prog: tea.NewProgram(newSpinnerModel(label),
			tea.WithOutput(w),
			tea.WithInput(nil),
			tea.WithoutSignalHandler(),
		),
		done: make(chan struct{}),
	}
	go func() {
		defer close(s.done)
		_, _ = s.prog.Run()
	}()
	return s
}

// SetLabel replaces the spinner's label.
func (s *Spinner) SetLabel(label string) {
	if s.prog != nil {
		s.prog.Send(labelMsg(label))
	}
}

// Stop clears the spinner and waits for it to exit.
func (s *Spinner) Stop() {
	if s.prog == nil {
		return
	}
	s.prog.Send(stopMsg{})
	<-s.done
	s.prog = nil
}

// SpinnerEnabled reports whether f is an interactive terminal outside CI.
func SpinnerEnabled(f *os.File) bool {
	if os.Getenv("CI") != "" {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
