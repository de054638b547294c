package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"shotsort/internal/triage"
)

type SummaryRow struct {
	Label string
	Value string
}

// SummaryRows lays out a finished run for RenderSummary.
func SummaryRows(report triage.SummaryReport) []SummaryRow {
	stats := report.Stats
	rows := []SummaryRow{
		{Label: "Images processed", Value: fmt.Sprintf("%d", stats.Total)},
		{Label: "Clean images", Value: fmt.Sprintf("%d", stats.Clean)},
		{Label: "Code screenshots", Value: fmt.Sprintf("%d", stats.Code)},
		{Label: "Uncertain", Value: fmt.Sprintf("%d", stats.Uncertain)},
	}
	if stats.Errors > 0 {
		rows = append(rows, SummaryRow{Label: "Errors", Value: fmt.Sprintf("%d", stats.Errors)})
	}
	rows = append(rows,
		SummaryRow{Label: "Elapsed", Value: fmt.Sprintf("%.1fs", report.Elapsed.Seconds())},
		SummaryRow{Label: "Images per second", Value: fmt.Sprintf("%.1f", report.Throughput)},
	)
	return rows
}

func RenderSummary(rows []SummaryRow) string {
	labelWidth := 0
	valueWidth := 0
	for _, row := range rows {
		if len(row.Label) > labelWidth {
			labelWidth = len(row.Label)
		}
		if len(row.Value) > valueWidth {
			valueWidth = len(row.Value)
		}
	}

	hline := strings.Repeat("-", labelWidth+valueWidth+3)
	lines := []string{hline}

	for _, row := range rows {
		label := padRight(row.Label, labelWidth)
		value := padRight(row.Value, valueWidth)
		line := fmt.Sprintf("%s | %s", labelStyle.Render(label), valueStyle.Render(value))
		lines = append(lines, line)
	}

	lines = append(lines, hline)
	return strings.Join(lines, "\n")
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

var (
	valueStyle = lipgloss.NewStyle().Foreground(ColorInk).Bold(true)
)
