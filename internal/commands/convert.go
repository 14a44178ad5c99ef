package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/mattn/go-isatty"

	"github.com/gerunddev/keepbridge/internal/config"
	"github.com/gerunddev/keepbridge/internal/diff"
	"github.com/gerunddev/keepbridge/internal/export"
	"github.com/gerunddev/keepbridge/internal/logger"
	"github.com/gerunddev/keepbridge/internal/state"
	"github.com/gerunddev/keepbridge/internal/styles"
	"github.com/gerunddev/keepbridge/internal/tui"
)

// ConvertRequest describes one invocation of the convert command
type ConvertRequest struct {
	Input  string
	DryRun bool
	NoTUI  bool
	Stdout io.Writer
	Stderr io.Writer
}

// Convert runs an export into the configured vault
func Convert(ctx context.Context, cfg *config.Config, req ConvertRequest) error {
	if req.Stdout == nil {
		req.Stdout = os.Stdout
	}
	if req.Stderr == nil {
		req.Stderr = os.Stderr
	}

	l, cleanup, err := openLogger(cfg, req.Stderr)
	if err != nil {
		return err
	}
	defer cleanup()
	l.ConfigLoaded(cfg.OutputDir, cfg.StateFile, cfg.Incremental)

	st := state.NewState()
	if cfg.StateFile != "" {
		st, err = state.Load(cfg.StateFile)
		if err != nil {
			return fmt.Errorf("error loading state: %w", err)
		}
	}

	title := "Keep → Obsidian"
	if req.DryRun {
		title += " (DRY RUN)"
	}
	fmt.Fprintln(req.Stdout, styles.TitleStyle.Render(title))
	fmt.Fprintf(req.Stdout, "%s → %s\n", styles.PathStyle.Render(req.Input), styles.PathStyle.Render(cfg.OutputDir))
	if req.DryRun {
		fmt.Fprintln(req.Stdout, styles.DimStyle.Render("(dry run - no files will be modified)"))
	}
	fmt.Fprintln(req.Stdout)

	exporter := export.New(cfg, st, l)
	exporter.DryRun = req.DryRun
	interactive := !req.NoTUI && isTerminal(req.Stdout)
	if req.DryRun {
		exporter.DiffOut = req.Stdout
		if interactive {
			exporter.FormatDiff = diff.Render
		}
		// Diffs and a spinner cannot share the terminal.
		interactive = false
	}

	var result *export.Result
	if interactive {
		result, err = runWithProgress(ctx, exporter, req)
	} else {
		result, err = exporter.Run(ctx, req.Input)
		fmt.Fprint(req.Stdout, tui.Summary(result, err, req.DryRun))
	}
	if errors.Is(err, context.Canceled) {
		// The summary already reported the partial run.
		return nil
	}
	if err != nil {
		return err
	}

	// Without a log file the errors were already logged to stderr.
	if cfg.LogFile != "" {
		for _, e := range result.Errors {
			fmt.Fprintln(req.Stderr, styles.WarningStyle.Render("  ! "+e.Error()))
		}
	}
	return nil
}

// runWithProgress runs the export in a goroutine while the spinner owns
// the terminal
func runWithProgress(ctx context.Context, exporter *export.Exporter, req ConvertRequest) (*export.Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	m := tui.NewProgressModel(req.DryRun)
	p := tea.NewProgram(m, tea.WithInput(os.Stdin), tea.WithOutput(req.Stdout))

	exporter.Progress = func(done, total int) {
		p.Send(tui.ProgressMsg{Done: done, Total: total})
	}

	type outcome struct {
		result *export.Result
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		result, err := exporter.Run(ctx, req.Input)
		done <- outcome{result, err}
		p.Send(tui.ExportMsg{Result: result, Err: err})
	}()

	final, err := p.Run()
	if err != nil {
		cancel()
		<-done
		return nil, fmt.Errorf("terminal UI failed: %w", err)
	}
	if m, ok := final.(tui.ProgressModel); ok && m.Complete() {
		out := <-done
		return out.result, out.err
	}

	// The user quit: stop the run between notes and show how far it got.
	cancel()
	out := <-done
	fmt.Fprint(req.Stdout, tui.Summary(out.result, out.err, req.DryRun))
	return out.result, out.err
}

// openLogger logs to the configured file, or to stderr when none is set
func openLogger(cfg *config.Config, stderr io.Writer) (*logger.Logger, func(), error) {
	level := logger.ParseLevel(cfg.LogLevel)
	if cfg.LogFile == "" {
		// stderr only carries problems unless debugging
		if level == log.InfoLevel {
			level = log.WarnLevel
		}
		return logger.NewWithLevel(stderr, level), func() {}, nil
	}
	l, cleanup, err := logger.NewFileLogger(cfg.LogFile, level)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return l, cleanup, nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
