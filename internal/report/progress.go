// Package report renders analysis progress and results: a live
// bubbletea view when attached to a terminal, a plain sequential log
// otherwise, a tablewriter summary table, and a JSON survivors report.
package report

import (
	"fmt"
	"io"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"mutacore.dev/mutacore/internal/model"
	"mutacore.dev/mutacore/internal/orchestrator"
)

var (
	headerStyle   = lipgloss.NewStyle().Bold(true)
	killedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	survivedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// ProgressView renders orchestrator.Progress events as they arrive. Use
// NewProgressView to get the right implementation for output's terminal
// status.
type ProgressView interface {
	// Update reports one mutant's completion.
	Update(p orchestrator.Progress)
	// Finish renders any final state and releases resources (e.g. stops
	// the bubbletea program).
	Finish() error
}

// NewProgressView returns a live bubbletea view when output is a
// terminal, or a plain sequential logger otherwise, mirroring the
// teacher's non-TTY fallback for piped/CI output.
func NewProgressView(output io.Writer, total int) ProgressView {
	if f, ok := output.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		return newTeaProgressView(output, total)
	}

	return &plainProgressView{output: output, total: total}
}

// plainProgressView writes one line per completed mutant, suitable for
// piped output or CI logs where cursor control would corrupt the stream.
type plainProgressView struct {
	output io.Writer
	total  int
	done   int
}

func (v *plainProgressView) Update(p orchestrator.Progress) {
	v.done++

	status := styleStatus(p.Outcome.Status)
	fmt.Fprintf(v.output, "[%d/%d] mutant %d: %s\n", v.done, v.total, p.Outcome.MutantID, status)
}

func (v *plainProgressView) Finish() error {
	return nil
}

func styleStatus(status model.OutcomeStatus) string {
	switch status {
	case model.Killed:
		return killedStyle.Render(string(status))
	case model.Survived:
		return survivedStyle.Render(string(status))
	default:
		return dimStyle.Render(string(status))
	}
}

// teaProgressView drives a bubbletea program showing a live-updating
// count of killed/survived/remaining mutants.
type teaProgressView struct {
	program *tea.Program
	done    chan struct{}
}

func newTeaProgressView(output io.Writer, total int) *teaProgressView {
	program := tea.NewProgram(newProgressModel(total), tea.WithOutput(output))
	done := make(chan struct{})

	go func() {
		defer close(done)
		_, _ = program.Run()
	}()

	return &teaProgressView{program: program, done: done}
}

func (v *teaProgressView) Update(p orchestrator.Progress) {
	v.program.Send(progressMsg(p))
}

func (v *teaProgressView) Finish() error {
	v.program.Send(finishedMsg{})
	<-v.done

	return nil
}

type progressMsg orchestrator.Progress

type finishedMsg struct{}

type progressModel struct {
	total    int
	done     int
	killed   int
	survived int
	last     orchestrator.Progress
	finished bool
}

func newProgressModel(total int) progressModel {
	return progressModel{total: total}
}

func (m progressModel) Init() tea.Cmd {
	return nil
}

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case progressMsg:
		m.done = msg.Completed
		m.killed = msg.Killed
		m.survived = msg.Survived
		m.last = orchestrator.Progress(msg)

		return m, nil
	case finishedMsg:
		m.finished = true

		return m, tea.Quit
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
	}

	return m, nil
}

func (m progressModel) View() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render("mutacore analyze") + "\n\n")

	fmt.Fprintf(&b, "  %d/%d mutants analyzed\n", m.done, m.total)
	fmt.Fprintf(&b, "  %s   %s\n", killedStyle.Render(fmt.Sprintf("killed: %d", m.killed)), survivedStyle.Render(fmt.Sprintf("survived: %d", m.survived)))

	if m.last.Outcome.MutantID != 0 {
		fmt.Fprintf(&b, "\n  last: mutant %d — %s\n", m.last.Outcome.MutantID, styleStatus(m.last.Outcome.Status))
	}

	if m.finished {
		b.WriteString("\n" + dimStyle.Render("done") + "\n")
	}

	return b.String()
}
