package tui

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/gerunddev/keepbridge/internal/export"
	"github.com/gerunddev/keepbridge/internal/styles"
)

// ProgressModel is the Bubble Tea model shown while an export runs
type ProgressModel struct {
	spinner  spinner.Model
	status   string
	done     int
	total    int
	dryRun   bool
	complete bool
	result   *export.Result
	err      error
}

// ExportMsg is sent when the export completes
type ExportMsg struct {
	Result *export.Result
	Err    error
}

// ProgressMsg reports how many notes have been handled so far
type ProgressMsg struct {
	Done  int
	Total int
}

// NewProgressModel creates a new export progress model
func NewProgressModel(dryRun bool) ProgressModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.SpinnerStyle

	return ProgressModel{
		spinner: s,
		status:  "Reading export...",
		dryRun:  dryRun,
	}
}

func (m ProgressModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m ProgressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		}

	case ProgressMsg:
		m.done = msg.Done
		m.total = msg.Total
		m.status = fmt.Sprintf("Converting notes (%d/%d)...", msg.Done, msg.Total)
		return m, nil

	case ExportMsg:
		m.complete = true
		m.result = msg.Result
		m.err = msg.Err
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m ProgressModel) View() string {
	if !m.complete {
		return fmt.Sprintf("\n%s %s\n\n", m.spinner.View(), m.status)
	}
	return Summary(m.result, m.err, m.dryRun)
}

// Complete reports whether the export finished before the program exited
func (m ProgressModel) Complete() bool {
	return m.complete
}

// Summary renders the outcome of an export for the terminal
func Summary(result *export.Result, err error, dryRun bool) string {
	if errors.Is(err, context.Canceled) && result != nil {
		msg := styles.WarningStyle.Render(fmt.Sprintf("! Interrupted after %d note(s)", result.Converted))
		if result.Unchanged > 0 {
			msg += ", " + styles.DimStyle.Render(fmt.Sprintf("%d unchanged", result.Unchanged))
		}
		if len(result.Errors) > 0 {
			msg += ", " + styles.ErrorStyle.Render(fmt.Sprintf("%d error(s)", len(result.Errors)))
		}
		return msg + "\n" + styles.HelpStyle.Render("Run again to convert the remaining notes") + "\n"
	}
	if err != nil {
		return styles.ErrorStyle.Render("✗ Conversion failed: "+err.Error()) + "\n"
	}
	if result == nil {
		return ""
	}

	duration := result.EndTime.Sub(result.StartTime).Round(time.Millisecond)
	footer := styles.HelpStyle.Render(fmt.Sprintf("Completed in %v", duration)) + "\n"

	if result.Converted == 0 && len(result.Errors) == 0 {
		msg := "✓ Nothing to convert"
		if result.Unchanged > 0 {
			msg = fmt.Sprintf("✓ %d note(s) unchanged", result.Unchanged)
		}
		return styles.SuccessStyle.Render(msg) + "\n" + footer
	}

	verb := "Converted"
	if dryRun {
		verb = "Would convert"
	}
	msg := styles.SuccessStyle.Render(fmt.Sprintf("✓ %s %d note(s)", verb, result.Converted))
	if result.Attachments > 0 {
		msg += ", " + styles.HighlightStyle.Render(fmt.Sprintf("%d attachment(s)", result.Attachments))
	}
	if result.Unchanged > 0 {
		msg += ", " + styles.DimStyle.Render(fmt.Sprintf("%d unchanged", result.Unchanged))
	}
	if result.Skipped > 0 {
		msg += ", " + styles.DimStyle.Render(fmt.Sprintf("%d skipped", result.Skipped))
	}
	if len(result.Errors) > 0 {
		msg += ", " + styles.ErrorStyle.Render(fmt.Sprintf("%d error(s)", len(result.Errors)))
	}
	return msg + "\n" + footer
}
