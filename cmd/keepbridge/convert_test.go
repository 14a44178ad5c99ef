package main

import (
	"testing"

	"github.com/spf13/pflag"

	"github.com/gerunddev/keepbridge/internal/config"
)

func TestApplyFlags(t *testing.T) {
	// Fresh copies so parsing here does not leak into the global command.
	fresh := pflag.NewFlagSet("convert", pflag.ContinueOnError)
	convertCmd.Flags().VisitAll(func(f *pflag.Flag) {
		switch f.Value.Type() {
		case "bool":
			fresh.Bool(f.Name, false, f.Usage)
		default:
			fresh.String(f.Name, "", f.Usage)
		}
	})

	err := fresh.Parse([]string{
		"--out", "/tmp/vault",
		"--no-labels-as-folders",
		"--labels-as-tags",
		"--no-mtime",
		"--attachment-style", "markdown",
		"--archived",
	})
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	cfg := config.DefaultConfig()
	if err := applyFlags(cfg, fresh); err != nil {
		t.Fatalf("applyFlags failed: %v", err)
	}

	if cfg.OutputDir != "/tmp/vault" {
		t.Errorf("OutputDir = %q", cfg.OutputDir)
	}
	if cfg.LabelsAsFolders {
		t.Error("LabelsAsFolders should be disabled")
	}
	if !cfg.LabelsAsTags {
		t.Error("LabelsAsTags should be enabled")
	}
	if cfg.SetMTime {
		t.Error("SetMTime should be disabled")
	}
	if cfg.AttachmentStyle != "markdown" {
		t.Errorf("AttachmentStyle = %q", cfg.AttachmentStyle)
	}
	if !cfg.IncludeArchived || cfg.IncludeTrashed {
		t.Errorf("IncludeArchived = %v, IncludeTrashed = %v", cfg.IncludeArchived, cfg.IncludeTrashed)
	}
	if !cfg.FrontMatter || !cfg.Attachments {
		t.Error("flags that were not given must keep config values")
	}
}

func TestApplyFlagsUnset(t *testing.T) {
	fresh := pflag.NewFlagSet("preview", pflag.ContinueOnError)
	fresh.Bool("no-front-matter", false, "")
	fresh.String("attachment-style", "", "")
	if err := fresh.Parse(nil); err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	cfg := config.DefaultConfig()
	want := *cfg
	if err := applyFlags(cfg, fresh); err != nil {
		t.Fatalf("applyFlags failed: %v", err)
	}
	if *cfg != want {
		t.Errorf("unset flags changed config: %+v", cfg)
	}
}
