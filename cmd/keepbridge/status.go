package main

import (
	"github.com/spf13/cobra"

	"github.com/gerunddev/keepbridge/internal/commands"
)

var statusCmd = &cobra.Command{
	Use:   "status <export>",
	Short: "Show what converting an export would change",
	Long: `Status performs a dry run and lists every note of the export as new,
changed, unchanged, skipped, or malformed. On a terminal the list is a
browsable table; press enter on a note to see its pending diff.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd.Flags())
		if err != nil {
			return err
		}
		noTUI, _ := cmd.Flags().GetBool("no-tui")
		return commands.Status(cmd.Context(), cfg, args[0], noTUI, cmd.OutOrStdout())
	},
}

func init() {
	f := statusCmd.Flags()
	f.StringP("out", "o", "", "output directory (vault or vault subfolder)")
	f.Bool("incremental", false, "treat notes unchanged since the last run as unchanged")
	f.Bool("archived", false, "include archived notes")
	f.Bool("trashed", false, "include trashed notes")
	f.Bool("no-tui", false, "plain listing instead of the interactive table")

	rootCmd.AddCommand(statusCmd)
}
