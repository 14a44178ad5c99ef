// Package main is the entry point for the keepbridge CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/gerunddev/keepbridge/internal/config"
	"github.com/gerunddev/keepbridge/internal/styles"
)

// version is set at build time via ldflags.
var version = "0.1.0"

// rootCmd is the base command for the keepbridge CLI.
var rootCmd = &cobra.Command{
	Use:   "keepbridge",
	Short: "Convert Google Keep exports into an Obsidian vault",
	Long: fmt.Sprintf(`keepbridge converts a Google Takeout Keep export (extracted directory,
single note file, or zip archive) into Markdown notes for Obsidian.

Labels become folders, checklists become task lists, and note metadata is
kept in YAML front matter.

Configuration:
  Config file: %s
  State file:  %s`, config.ConfigPath(), config.StateFilePath()),
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, styles.ErrorStyle.Render("✗ Error: "+err.Error()))
		os.Exit(1)
	}
}
