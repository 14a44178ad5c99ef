package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"

	"github.com/gerunddev/keepbridge/internal/convert"
)

// Config represents the keepbridge configuration
type Config struct {
	OutputDir       string `json:"output_dir" mapstructure:"output_dir"`
	LogFile         string `json:"log_file,omitempty" mapstructure:"log_file"`
	LogLevel        string `json:"log_level" mapstructure:"log_level"`
	StateFile       string `json:"state_file" mapstructure:"state_file"`
	LabelsAsFolders bool   `json:"labels_as_folders" mapstructure:"labels_as_folders"`
	FrontMatter     bool   `json:"front_matter" mapstructure:"front_matter"`
	LabelsAsTags    bool   `json:"labels_as_tags" mapstructure:"labels_as_tags"`
	TagPinned       bool   `json:"tag_pinned" mapstructure:"tag_pinned"`
	Attachments     bool   `json:"attachments" mapstructure:"attachments"`
	AttachmentDir   string `json:"attachment_dir" mapstructure:"attachment_dir"`
	AttachmentStyle string `json:"attachment_style" mapstructure:"attachment_style"`
	Annotations     bool   `json:"annotations" mapstructure:"annotations"`
	IncludeArchived bool   `json:"include_archived" mapstructure:"include_archived"`
	ArchiveDir      string `json:"archive_dir" mapstructure:"archive_dir"`
	IncludeTrashed  bool   `json:"include_trashed" mapstructure:"include_trashed"`
	TrashedDir      string `json:"trashed_dir" mapstructure:"trashed_dir"`
	SetMTime        bool   `json:"set_mtime" mapstructure:"set_mtime"`
	UntitledFormat  string `json:"untitled_format" mapstructure:"untitled_format"`
	FilenameStyle   string `json:"filename_style" mapstructure:"filename_style"`
	Incremental     bool   `json:"incremental" mapstructure:"incremental"`
}

// EnvPrefix prefixes environment variable overrides, e.g. KEEPBRIDGE_OUTPUT_DIR
const EnvPrefix = "KEEPBRIDGE"

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		OutputDir:       "out",
		LogLevel:        "info",
		StateFile:       StateFilePath(),
		LabelsAsFolders: true,
		FrontMatter:     true,
		TagPinned:       true,
		Attachments:     true,
		AttachmentDir:   "Attachments",
		AttachmentStyle: convert.AttachmentEmbed,
		ArchiveDir:      "Archived",
		TrashedDir:      "Trashed",
		SetMTime:        true,
		UntitledFormat:  "%@ %#",
		FilenameStyle:   convert.FilenameTitle,
	}
}

// ConfigPath returns the path to the config file
// Uses ~/.config on all platforms for consistency
// Can be overridden for testing
var ConfigPath = func() string {
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to XDG if home dir unavailable
		return filepath.Join(xdg.ConfigHome, "keepbridge", "config.json")
	}
	return filepath.Join(home, ".config", "keepbridge", "config.json")
}

// StateFilePath returns the default path to the state file
// Uses platform-specific XDG data directory
// Can be overridden for testing
var StateFilePath = func() string {
	return filepath.Join(xdg.DataHome, "keepbridge", "state.json")
}

// Load reads configuration from defaults, the config file and
// KEEPBRIDGE_* environment variables, in increasing precedence.
func Load() (*Config, error) {
	v := viper.New()
	for key, value := range defaults(DefaultConfig()) {
		v.SetDefault(key, value)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	configPath := ConfigPath()
	if _, err := os.Stat(configPath); err == nil {
		v.SetConfigFile(configPath)
		v.SetConfigType("json")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	// Validate config
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	// Expand paths
	if err := cfg.ExpandPaths(); err != nil {
		return nil, fmt.Errorf("failed to expand paths: %w", err)
	}

	return &cfg, nil
}

// defaults flattens a config into viper keys
func defaults(c *Config) map[string]any {
	return map[string]any{
		"output_dir":        c.OutputDir,
		"log_file":          c.LogFile,
		"log_level":         c.LogLevel,
		"state_file":        c.StateFile,
		"labels_as_folders": c.LabelsAsFolders,
		"front_matter":      c.FrontMatter,
		"labels_as_tags":    c.LabelsAsTags,
		"tag_pinned":        c.TagPinned,
		"attachments":       c.Attachments,
		"attachment_dir":    c.AttachmentDir,
		"attachment_style":  c.AttachmentStyle,
		"annotations":       c.Annotations,
		"include_archived":  c.IncludeArchived,
		"archive_dir":       c.ArchiveDir,
		"include_trashed":   c.IncludeTrashed,
		"trashed_dir":       c.TrashedDir,
		"set_mtime":         c.SetMTime,
		"untitled_format":   c.UntitledFormat,
		"filename_style":    c.FilenameStyle,
		"incremental":       c.Incremental,
	}
}

// Save writes configuration to the config directory
func (c *Config) Save() error {
	configPath := ConfigPath()
	configDir := filepath.Dir(configPath)

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.OutputDir == "" {
		return fmt.Errorf("output_dir cannot be empty")
	}
	if c.Incremental && c.StateFile == "" {
		return fmt.Errorf("state_file cannot be empty when incremental is enabled")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.LogLevel] {
		return fmt.Errorf("invalid log_level '%s': must be one of: debug, info, warn, error", c.LogLevel)
	}

	validStyles := map[string]bool{
		convert.AttachmentEmbed:    true,
		convert.AttachmentMarkdown: true,
	}
	if !validStyles[c.AttachmentStyle] {
		return fmt.Errorf("invalid attachment_style '%s': must be one of: embed, markdown", c.AttachmentStyle)
	}

	validFilenames := map[string]bool{
		convert.FilenameTitle: true,
		convert.FilenameSlug:  true,
	}
	if !validFilenames[c.FilenameStyle] {
		return fmt.Errorf("invalid filename_style '%s': must be one of: title, slug", c.FilenameStyle)
	}

	for name, dir := range map[string]string{
		"attachment_dir": c.AttachmentDir,
		"archive_dir":    c.ArchiveDir,
		"trashed_dir":    c.TrashedDir,
	} {
		if err := validateSubdir(dir); err != nil {
			return fmt.Errorf("invalid %s '%s': %w", name, dir, err)
		}
	}

	return nil
}

// validateSubdir ensures dir stays inside the output directory
func validateSubdir(dir string) error {
	if dir == "" {
		return nil
	}
	if filepath.IsAbs(dir) || strings.HasPrefix(dir, "/") {
		return fmt.Errorf("must be relative to output_dir")
	}
	clean := filepath.ToSlash(filepath.Clean(dir))
	if clean == ".." || strings.HasPrefix(clean, "../") {
		return fmt.Errorf("must not leave output_dir")
	}
	return nil
}

// ExpandPaths expands any ~ or relative paths to absolute paths
func (c *Config) ExpandPaths() error {
	var err error

	c.OutputDir, err = expandPath(c.OutputDir)
	if err != nil {
		return fmt.Errorf("failed to expand output_dir: %w", err)
	}

	c.LogFile, err = expandPath(c.LogFile)
	if err != nil {
		return fmt.Errorf("failed to expand log_file: %w", err)
	}

	c.StateFile, err = expandPath(c.StateFile)
	if err != nil {
		return fmt.Errorf("failed to expand state_file: %w", err)
	}

	return nil
}

// ConvertOptions projects the configuration onto converter options
func (c *Config) ConvertOptions() convert.Options {
	return convert.Options{
		LabelsAsFolders: c.LabelsAsFolders,
		FrontMatter:     c.FrontMatter,
		LabelsAsTags:    c.LabelsAsTags,
		TagPinned:       c.TagPinned,
		Attachments:     c.Attachments,
		AttachmentDir:   slashDir(c.AttachmentDir),
		AttachmentStyle: c.AttachmentStyle,
		Annotations:     c.Annotations,
		ArchiveDir:      slashDir(c.ArchiveDir),
		TrashedDir:      slashDir(c.TrashedDir),
		UntitledFormat:  c.UntitledFormat,
		FilenameStyle:   c.FilenameStyle,
	}
}

func slashDir(dir string) string {
	if dir == "" {
		return ""
	}
	clean := filepath.ToSlash(filepath.Clean(dir))
	if clean == "." {
		return ""
	}
	return clean
}

// expandPath expands ~ to home directory and converts to absolute path
func expandPath(path string) (string, error) {
	if path == "" {
		return path, nil
	}

	// Expand ~ to home directory
	if path[0] == '~' {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		if len(path) == 1 {
			return homeDir, nil
		}
		path = filepath.Join(homeDir, path[1:])
	}

	// Convert to absolute path
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}

	return absPath, nil
}
