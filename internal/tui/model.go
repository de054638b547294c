package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"shotsort/internal/triage"
)

type Model struct {
	updates   <-chan triage.ProgressEvent
	started   time.Time
	now       func() time.Time
	width     int
	total     int
	processed int
	fraction  float64
	clean     int
	code      int
	uncertain int
	errors    int
	message   string
	quitting  bool
}

type doneMsg struct{}

type updateMsg triage.ProgressEvent

func NewModel(updates <-chan triage.ProgressEvent) Model {
	return Model{updates: updates, started: time.Now(), now: time.Now}
}

func (m Model) Init() tea.Cmd {
	return listenForUpdates(m.updates)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case updateMsg:
		m.total = msg.Total
		m.processed = msg.Processed
		m.message = msg.Message
		if msg.Fraction > m.fraction {
			m.fraction = math.Min(msg.Fraction, 1)
		}
		switch msg.Outcome {
		case triage.OutcomeClean:
			m.clean++
		case triage.OutcomeCode:
			m.code++
		case triage.OutcomeUncertain:
			m.uncertain++
		default:
			m.errors++
		}
		return m, listenForUpdates(m.updates)
	case doneMsg:
		m.quitting = true
		return m, tea.Quit
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	case tea.KeyMsg:
		// The run keeps going in the background; only the view is dropped.
		if msg.String() == "ctrl+c" {
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil
	default:
		return m, nil
	}
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	barWidth := 40
	if m.width > 0 {
		barWidth = int(math.Min(60, float64(m.width-10)))
		if barWidth < 20 {
			barWidth = 20
		}
	}

	bar := renderBar(barWidth, m.fraction)
	elapsed := m.now().Sub(m.started).Round(time.Millisecond)

	lines := []string{
		titleStyle.Render("shotsort"),
		labelStyle.Render(fmt.Sprintf("Images: %d/%d", m.processed, m.total)) + dimStyle.Render(fmt.Sprintf("  errors:%d", m.errors)),
		cleanStyle.Render(fmt.Sprintf("Clean: %d", m.clean)) + "  " +
			codeStyle.Render(fmt.Sprintf("Code: %d", m.code)) + "  " +
			uncertainStyle.Render(fmt.Sprintf("Uncertain: %d", m.uncertain)),
		dimStyle.Render(fmt.Sprintf("Elapsed: %s", elapsed)),
		barStyle.Render(bar) + dimStyle.Render(fmt.Sprintf(" %3.0f%%", m.fraction*100)),
	}

	return strings.Join(lines, "\n")
}

func listenForUpdates(updates <-chan triage.ProgressEvent) tea.Cmd {
	return func() tea.Msg {
		update, ok := <-updates
		if !ok {
			return doneMsg{}
		}
		return updateMsg(update)
	}
}

func renderBar(width int, ratio float64) string {
	filled := int(math.Round(ratio * float64(width)))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return "[" + strings.Repeat("=", filled) + strings.Repeat(" ", width-filled) + "]"
}

var (
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(ColorAccent)
	labelStyle     = lipgloss.NewStyle().Foreground(ColorInk)
	barStyle       = lipgloss.NewStyle().Foreground(ColorAccentAlt)
	dimStyle       = lipgloss.NewStyle().Foreground(ColorDim)
	cleanStyle     = lipgloss.NewStyle().Foreground(ColorSuccess)
	codeStyle      = lipgloss.NewStyle().Foreground(ColorAccent)
	uncertainStyle = lipgloss.NewStyle().Foreground(ColorWarn)
)
