// Package tui draws a spinner on the terminal while a long step runs.
package tui

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// --- Styles ---
var (
	spinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	labelStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63")) // Mauve
	faintStyle   = lipgloss.NewStyle().Faint(true)
)

// --- Messages ---
type doneMsg struct{}

// --- Model ---
type Model struct {
	spinner spinner.Model
	label   string
	detail  string
	done    bool
}

func New(label, detail string) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = spinnerStyle
	return Model{
		spinner: s,
		label:   label,
		detail:  detail,
	}
}

func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case doneMsg:
		m.done = true
		return m, tea.Quit

	default:
		var cmd tea.Cmd
		if !m.done {
			m.spinner, cmd = m.spinner.Update(msg)
		}
		return m, cmd
	}
}

func (m Model) View() string {
	if m.done {
		return ""
	}
	line := fmt.Sprintf("%s %s", m.spinner.View(), labelStyle.Render(m.label))
	if m.detail != "" {
		line += " " + faintStyle.Render(m.detail)
	}
	return line + "\n"
}

// Done reports whether the work finished.
func (m Model) Done() bool {
	return m.done
}

type outcome[T any] struct {
	val T
	err error
}

// Run calls work while a spinner labelled label animates on w. The spinner
// line is cleared once work returns. Cancelling ctx stops the animation but
// Run still waits for work, which receives the same ctx.
func Run[T any](ctx context.Context, w io.Writer, label, detail string, work func(context.Context) (T, error)) (T, error) {
	p := tea.NewProgram(
		New(label, detail),
		tea.WithOutput(w),
		tea.WithInput(nil),
		tea.WithContext(ctx),
		tea.WithoutSignalHandler(),
	)

	done := make(chan outcome[T], 1)
	go func() {
		val, err := work(ctx)
		done <- outcome[T]{val: val, err: err}
		p.Send(doneMsg{})
	}()

	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) && !errors.Is(err, context.Canceled) {
		o := <-done
		if o.err != nil {
			return o.val, o.err
		}
		return o.val, fmt.Errorf("tui: %w", err)
	}

	o := <-done
	return o.val, o.err
}
