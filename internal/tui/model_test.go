package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"shotsort/internal/triage"
)

func fixedModel(updates <-chan triage.ProgressEvent) Model {
	m := NewModel(updates)
	start := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	m.started = start
	m.now = func() time.Time { return start.Add(1500 * time.Millisecond) }
	return m
}

func TestModelCountsOutcomes(t *testing.T) {
	var model tea.Model = fixedModel(nil)
	events := []triage.ProgressEvent{
		{Fraction: 0.25, Processed: 1, Total: 4, Outcome: triage.OutcomeCode},
		{Fraction: 0.5, Processed: 2, Total: 4, Outcome: triage.OutcomeClean},
		{Fraction: 0.75, Processed: 3, Total: 4, Outcome: triage.OutcomeError},
		{Fraction: 1, Processed: 4, Total: 4, Outcome: triage.OutcomeUncertain},
	}
	for _, ev := range events {
		model, _ = model.Update(updateMsg(ev))
	}

	m := model.(Model)
	if m.clean != 1 || m.code != 1 || m.uncertain != 1 || m.errors != 1 {
		t.Fatalf("unexpected counts: %+v", m)
	}
	if m.fraction != 1 {
		t.Fatalf("fraction = %v", m.fraction)
	}

	view := m.View()
	for _, want := range []string{"Images: 4/4", "errors:1", "Clean: 1", "Code: 1", "Uncertain: 1", "Elapsed: 1.5s", "100%"} {
		if !strings.Contains(view, want) {
			t.Fatalf("view missing %q:\n%s", want, view)
		}
	}
}

func TestModelQuitsWhenUpdatesClose(t *testing.T) {
	updates := make(chan triage.ProgressEvent)
	close(updates)
	m := fixedModel(updates)

	msg := m.Init()()
	if _, ok := msg.(doneMsg); !ok {
		t.Fatalf("expected doneMsg, got %T", msg)
	}
	next, cmd := m.Update(msg)
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
	if next.View() != "" {
		t.Fatalf("expected empty view after quit")
	}
}

func TestRenderBarBounds(t *testing.T) {
	if got := renderBar(4, 0.5); got != "[==  ]" {
		t.Fatalf("renderBar = %q", got)
	}
	if got := renderBar(4, 2); got != "[====]" {
		t.Fatalf("renderBar overflow = %q", got)
	}
	if got := renderBar(4, -1); got != "[    ]" {
		t.Fatalf("renderBar underflow = %q", got)
	}
}

func TestSummaryRows(t *testing.T) {
	report := triage.BuildSummary(triage.RunStats{Total: 4, Clean: 1, Code: 1, Uncertain: 1, Errors: 1}, 2*time.Second, triage.Destinations{})
	rendered := RenderSummary(SummaryRows(report))
	for _, want := range []string{"Images processed", "Code screenshots", "Errors", "2.0s", "2.0"} {
		if !strings.Contains(rendered, want) {
			t.Fatalf("summary missing %q:\n%s", want, rendered)
		}
	}

	report.Stats.Errors = 0
	if strings.Contains(RenderSummary(SummaryRows(report)), "Errors") {
		t.Fatalf("errors row shown for clean run")
	}
}
