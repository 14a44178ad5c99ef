package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/gerunddev/keepbridge/internal/config"
	"github.com/gerunddev/keepbridge/internal/export"
	"github.com/gerunddev/keepbridge/internal/logger"
	"github.com/gerunddev/keepbridge/internal/state"
	"github.com/gerunddev/keepbridge/internal/styles"
	"github.com/gerunddev/keepbridge/internal/tui"
)

// Plan performs a dry run and reports what would happen to every note
func Plan(ctx context.Context, cfg *config.Config, input string) ([]export.NoteReport, error) {
	st := state.NewState()
	if cfg.StateFile != "" {
		var err error
		st, err = state.Load(cfg.StateFile)
		if err != nil {
			return nil, fmt.Errorf("error loading state: %w", err)
		}
	}

	var notes []export.NoteReport
	exporter := export.New(cfg, st, logger.Discard())
	exporter.DryRun = true
	exporter.Report = func(r export.NoteReport) {
		notes = append(notes, r)
	}

	if _, err := exporter.Run(ctx, input); err != nil {
		return nil, err
	}
	return notes, nil
}

// Status shows what converting input would change in the vault, as a
// browsable table on a terminal or a plain listing otherwise
func Status(ctx context.Context, cfg *config.Config, input string, noTUI bool, w io.Writer) error {
	notes, err := Plan(ctx, cfg, input)
	if err != nil {
		return err
	}

	if noTUI || !isTerminal(w) {
		for _, n := range notes {
			name := n.Path
			if name == "" {
				name = n.SourceID
			}
			line := fmt.Sprintf("%-10s %s", n.Status, name)
			if n.Reason != "" {
				line += styles.DimStyle.Render(" (" + n.Reason + ")")
			}
			fmt.Fprintln(w, line)
		}
		fmt.Fprintln(w, styles.HelpStyle.Render(tui.Counts(notes)))
		return nil
	}

	p := tea.NewProgram(tui.NewBrowseModel(notes), tea.WithInput(os.Stdin), tea.WithOutput(w), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("terminal UI failed: %w", err)
	}
	return nil
}
