package commands

import (
	"fmt"
	"io"

	"github.com/charmbracelet/glamour"

	"github.com/gerunddev/keepbridge/internal/config"
	"github.com/gerunddev/keepbridge/internal/convert"
	"github.com/gerunddev/keepbridge/internal/keep"
	"github.com/gerunddev/keepbridge/internal/styles"
)

// Preview converts a single note file and renders the result in the
// terminal. With raw set the Markdown is printed as is.
func Preview(cfg *config.Config, notePath string, raw bool, w io.Writer) error {
	doc, err := ConvertFile(cfg, notePath)
	if err != nil {
		return err
	}

	fmt.Fprintln(w, styles.PathStyle.Render(doc.RelativePath))
	if raw {
		_, err := io.WriteString(w, doc.Markdown)
		return err
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		_, err := io.WriteString(w, doc.Markdown)
		return err
	}
	rendered, err := renderer.Render(doc.Markdown)
	if err != nil {
		_, err := io.WriteString(w, doc.Markdown)
		return err
	}
	_, err = io.WriteString(w, rendered)
	return err
}

// ConvertFile reads and converts one note file with the configured options
func ConvertFile(cfg *config.Config, notePath string) (*convert.Document, error) {
	exp, err := keep.Open(notePath)
	if err != nil {
		return nil, err
	}
	defer exp.Close()

	entries, err := exp.Notes()
	if err != nil {
		return nil, err
	}
	if len(entries) != 1 {
		return nil, fmt.Errorf("%s: expected a single note file, found %d notes", notePath, len(entries))
	}
	if entries[0].Err != nil {
		return nil, entries[0].Err
	}

	return convert.Convert(entries[0].Note, cfg.ConvertOptions())
}
