package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/gerunddev/keepbridge/internal/config"
	"github.com/gerunddev/keepbridge/internal/styles"
)

// ConfigInit writes the default configuration file. An existing file is
// only replaced when force is set.
func ConfigInit(force bool, w io.Writer) error {
	path := config.ConfigPath()
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("config file already exists at %s (use --force to overwrite)", path)
	}

	if err := config.DefaultConfig().Save(); err != nil {
		return err
	}

	fmt.Fprintln(w, styles.SuccessStyle.Render("✓ Wrote default config to "+path))
	return nil
}

// ConfigShow prints the effective configuration
func ConfigShow(cfg *config.Config, w io.Writer) error {
	data, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	var values map[string]any
	if err := json.Unmarshal(data, &values); err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}

	keys := make([]string, 0, len(values))
	width := 0
	for k := range values {
		keys = append(keys, k)
		width = max(width, len(k))
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(styles.KeyStyle.Render(fmt.Sprintf("%-*s", width, k)))
		b.WriteString("  ")
		b.WriteString(fmt.Sprint(values[k]))
	}

	fmt.Fprintln(w, styles.DimStyle.Render("Config file: "+config.ConfigPath()))
	fmt.Fprintln(w, styles.BoxStyle.Render(b.String()))
	return nil
}
