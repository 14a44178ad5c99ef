package diff

import (
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/hexops/gotextdiff"
	"github.com/hexops/gotextdiff/myers"
	"github.com/hexops/gotextdiff/span"
)

// Unified returns a unified diff turning old into new. It is empty when the
// two are identical.
func Unified(oldName, newName, old, new string) string {
	if old == new {
		return ""
	}
	edits := myers.ComputeEdits(span.URIFromPath(oldName), old, new)
	return fmt.Sprint(gotextdiff.ToUnified(oldName, newName, old, edits))
}

// File diffs the file at path against the content that would replace it.
// A missing file diffs as empty.
func File(path, name, content string) (string, error) {
	existing, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	oldName := name
	if existing == nil {
		oldName = "/dev/null"
	}
	return Unified(oldName, name, string(existing), content), nil
}

// Fence wraps a unified diff in a markdown diff code block
func Fence(unified string) string {
	return fmt.Sprintf("```diff\n%s```\n", unified)
}

// Render formats a unified diff for the terminal with Glamour, falling back
// to the fenced diff when rendering fails.
func Render(unified string) string {
	fenced := Fence(unified)

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(120),
	)
	if err != nil {
		return fenced
	}

	rendered, err := renderer.Render(fenced)
	if err != nil {
		return fenced
	}

	return rendered
}
