package main

import (
	"github.com/spf13/cobra"

	"github.com/gerunddev/keepbridge/internal/commands"
)

var previewCmd = &cobra.Command{
	Use:   "preview <note.json>",
	Short: "Render one converted note in the terminal",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd.Flags())
		if err != nil {
			return err
		}
		raw, _ := cmd.Flags().GetBool("raw")
		return commands.Preview(cfg, args[0], raw, cmd.OutOrStdout())
	},
}

func init() {
	f := previewCmd.Flags()
	f.Bool("raw", false, "print the Markdown without rendering it")
	f.Bool("no-labels-as-folders", false, "do not place notes in a folder named after a label")
	f.Bool("labels-as-tags", false, "append labels as #tags")
	f.Bool("no-front-matter", false, "omit YAML front matter")
	f.Bool("annotations", false, "add a Links section for web link previews")
	f.String("attachment-style", "", "attachment links: embed or markdown")

	rootCmd.AddCommand(previewCmd)
}
