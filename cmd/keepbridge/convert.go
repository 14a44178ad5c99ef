package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/gerunddev/keepbridge/internal/commands"
	"github.com/gerunddev/keepbridge/internal/config"
)

var convertCmd = &cobra.Command{
	Use:   "convert <export>",
	Short: "Convert a Keep export into Markdown notes",
	Long: `Convert reads a Google Keep export and writes one Markdown file per note
into the output directory. The export may be an extracted Takeout directory,
a single note .json file, or a Takeout .zip archive.

Existing files that were not written by keepbridge are never overwritten;
colliding notes get a " (2)", " (3)", ... suffix instead.`,
	Example: `  keepbridge convert ~/Downloads/takeout.zip --out ~/vault/Keep
  keepbridge convert Takeout/Keep --dry-run
  keepbridge convert Takeout/Keep --incremental --labels-as-tags`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd.Flags())
		if err != nil {
			return err
		}
		dryRun, _ := cmd.Flags().GetBool("dry-run")
		noTUI, _ := cmd.Flags().GetBool("no-tui")

		return commands.Convert(cmd.Context(), cfg, commands.ConvertRequest{
			Input:  args[0],
			DryRun: dryRun,
			NoTUI:  noTUI,
			Stdout: cmd.OutOrStdout(),
			Stderr: cmd.ErrOrStderr(),
		})
	},
}

func init() {
	f := convertCmd.Flags()
	f.StringP("out", "o", "", "output directory (vault or vault subfolder)")
	f.Bool("dry-run", false, "show what would change without writing anything")
	f.Bool("incremental", false, "skip notes unchanged since the last run")
	f.Bool("no-labels-as-folders", false, "do not place notes in a folder named after a label")
	f.Bool("labels-as-tags", false, "append labels as #tags")
	f.Bool("no-front-matter", false, "omit YAML front matter")
	f.Bool("no-attachments", false, "do not reference or copy attachments")
	f.String("attachment-dir", "", "vault folder for attachments")
	f.String("attachment-style", "", "attachment links: embed or markdown")
	f.Bool("annotations", false, "add a Links section for web link previews")
	f.Bool("archived", false, "include archived notes")
	f.Bool("trashed", false, "include trashed notes")
	f.Bool("no-mtime", false, "do not set file times to the note's edit time")
	f.String("untitled-format", "", "filename template for untitled notes (%@ time, %d date, %# summary)")
	f.String("filename-style", "", "filenames from titles: title or slug")
	f.Bool("no-tui", false, "plain output without the progress spinner")

	rootCmd.AddCommand(convertCmd)
}

// loadConfig loads the configuration and applies command line overrides
func loadConfig(flags *pflag.FlagSet) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("error loading config: %w", err)
	}
	if err := applyFlags(cfg, flags); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if err := cfg.ExpandPaths(); err != nil {
		return nil, fmt.Errorf("failed to expand paths: %w", err)
	}
	return cfg, nil
}

// applyFlags copies every flag the user set onto cfg
func applyFlags(cfg *config.Config, flags *pflag.FlagSet) error {
	var err error
	flags.Visit(func(f *pflag.Flag) {
		if err != nil {
			return
		}
		switch f.Name {
		case "out":
			cfg.OutputDir, err = flags.GetString(f.Name)
		case "attachment-dir":
			cfg.AttachmentDir, err = flags.GetString(f.Name)
		case "attachment-style":
			cfg.AttachmentStyle, err = flags.GetString(f.Name)
		case "untitled-format":
			cfg.UntitledFormat, err = flags.GetString(f.Name)
		case "filename-style":
			cfg.FilenameStyle, err = flags.GetString(f.Name)
		case "incremental":
			cfg.Incremental, err = flags.GetBool(f.Name)
		case "labels-as-tags":
			cfg.LabelsAsTags, err = flags.GetBool(f.Name)
		case "annotations":
			cfg.Annotations, err = flags.GetBool(f.Name)
		case "archived":
			cfg.IncludeArchived, err = flags.GetBool(f.Name)
		case "trashed":
			cfg.IncludeTrashed, err = flags.GetBool(f.Name)
		case "no-labels-as-folders":
			cfg.LabelsAsFolders, err = negated(flags, f.Name)
		case "no-front-matter":
			cfg.FrontMatter, err = negated(flags, f.Name)
		case "no-attachments":
			cfg.Attachments, err = negated(flags, f.Name)
		case "no-mtime":
			cfg.SetMTime, err = negated(flags, f.Name)
		}
	})
	return err
}

func negated(flags *pflag.FlagSet, name string) (bool, error) {
	v, err := flags.GetBool(name)
	return !v, err
}
