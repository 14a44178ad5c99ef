package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/gerunddev/keepbridge/internal/export"
)

func TestProgressModelUpdate(t *testing.T) {
	m := NewProgressModel(false)

	next, cmd := m.Update(ProgressMsg{Done: 2, Total: 5})
	if cmd != nil {
		t.Error("progress update should not return a command")
	}
	m = next.(ProgressModel)
	if !strings.Contains(m.View(), "Converting notes (2/5)") {
		t.Errorf("View() = %q, want progress status", m.View())
	}

	start := time.Now()
	result := &export.Result{Converted: 5, StartTime: start, EndTime: start.Add(time.Second)}
	next, cmd = m.Update(ExportMsg{Result: result})
	if cmd == nil {
		t.Error("completion should quit the program")
	}
	m = next.(ProgressModel)
	if !m.Complete() {
		t.Error("model should be complete")
	}
	if !strings.Contains(m.View(), "Converted 5 note(s)") {
		t.Errorf("View() = %q, want summary", m.View())
	}
}

func TestProgressModelQuit(t *testing.T) {
	m := NewProgressModel(false)
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Error("q should quit the program")
	}
	if next.(ProgressModel).Complete() {
		t.Error("quitting should not mark the export complete")
	}
}

func TestSummary(t *testing.T) {
	start := time.Now()
	tests := []struct {
		name     string
		result   *export.Result
		err      error
		dryRun   bool
		contains []string
	}{
		{
			name:     "failure",
			err:      errors.New("boom"),
			contains: []string{"Conversion failed: boom"},
		},
		{
			name:     "nothing to do",
			result:   &export.Result{StartTime: start, EndTime: start},
			contains: []string{"Nothing to convert"},
		},
		{
			name:     "all unchanged",
			result:   &export.Result{Unchanged: 3, StartTime: start, EndTime: start},
			contains: []string{"3 note(s) unchanged"},
		},
		{
			name: "mixed",
			result: &export.Result{
				Converted:   4,
				Attachments: 2,
				Skipped:     1,
				Errors:      []error{errors.New("x")},
				StartTime:   start,
				EndTime:     start.Add(250 * time.Millisecond),
			},
			contains: []string{"Converted 4 note(s)", "2 attachment(s)", "1 skipped", "1 error(s)", "250ms"},
		},
		{
			name:     "interrupted",
			result:   &export.Result{Converted: 2, Unchanged: 1, StartTime: start, EndTime: start},
			err:      context.Canceled,
			contains: []string{"Interrupted after 2 note(s)", "1 unchanged", "Run again"},
		},
		{
			name:     "dry run",
			result:   &export.Result{Converted: 1, StartTime: start, EndTime: start},
			dryRun:   true,
			contains: []string{"Would convert 1 note(s)"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Summary(tt.result, tt.err, tt.dryRun)
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("Summary() = %q, missing %q", got, want)
				}
			}
		})
	}
}
