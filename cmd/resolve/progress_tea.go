//go:build !no_bubbletea

package resolve

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	helpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#626262"))
)

// advanceMsg reports one finished URL
type advanceMsg struct{ ok bool }

type progressDoneMsg struct{}

type batchModel struct {
	progress progress.Model
	total    int
	finished int
	failed   int
	done     bool
}

func newBatchModel(total int) batchModel {
	return batchModel{
		progress: progress.New(
			progress.WithDefaultGradient(),
			progress.WithWidth(50),
		),
		total: total,
	}
}

func (m batchModel) Init() tea.Cmd {
	return nil
}

func (m batchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.progress.Width = min(msg.Width-10, 80)
		return m, nil

	case advanceMsg:
		m.finished++
		if !msg.ok {
			m.failed++
		}
		return m, m.progress.SetPercent(float64(m.finished) / float64(max(m.total, 1)))

	case progressDoneMsg:
		m.done = true
		return m, tea.Quit

	case progress.FrameMsg:
		if m.done {
			return m, nil
		}
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m batchModel) View() string {
	var sb strings.Builder
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "  %d / %d resolved", m.finished, m.total)
	if m.failed > 0 {
		fmt.Fprintf(&sb, ", %d failed", m.failed)
	}
	sb.WriteString("\n\n  ")
	if m.done {
		sb.WriteString(m.progress.ViewAs(float64(m.finished) / float64(max(m.total, 1))))
	} else {
		sb.WriteString(m.progress.View())
	}
	sb.WriteString("\n\n")
	if !m.done {
		sb.WriteString(helpStyle.Render("  Press Ctrl+C to cancel"))
		sb.WriteString("\n\n")
	}
	return sb.String()
}

// ResolveProgress draws a progress bar for a batch on stderr.
type ResolveProgress struct {
	program *tea.Program
}

func NewResolveProgress(ctx context.Context, total int) *ResolveProgress {
	p := tea.NewProgram(
		newBatchModel(total),
		tea.WithoutSignalHandler(),
		tea.WithContext(ctx),
		tea.WithInput(nil),
		tea.WithOutput(os.Stderr),
	)
	return &ResolveProgress{program: p}
}

// Start runs the UI in a goroutine and returns immediately
func (rp *ResolveProgress) Start() {
	go func() {
		rp.program.Run()
	}()
}

// Advance is safe to call from any goroutine.
func (rp *ResolveProgress) Advance(ok bool) {
	rp.program.Send(advanceMsg{ok: ok})
}

func (rp *ResolveProgress) Done() {
	rp.program.Send(progressDoneMsg{})
}

func (rp *ResolveProgress) Wait() {
	rp.program.Wait()
}
