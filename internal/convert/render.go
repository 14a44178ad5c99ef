package convert

import (
	"bytes"
	"fmt"
	"path"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/gerunddev/keepbridge/internal/keep"
)

var imageExts = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true,
	".webp": true, ".bmp": true, ".svg": true, ".heic": true,
}

// renderContent renders everything below the front matter: the body,
// attachment references, annotation links and tags, separated by blank
// lines.
func renderContent(n *keep.Note, opts Options, folder string) (string, error) {
	var sections []string

	var body string
	switch c := n.Content.(type) {
	case nil:
	case keep.TextContent:
		body = renderText(c)
	case keep.ChecklistContent:
		body = renderChecklist(c.Items)
	default:
		return "", &keep.MalformedNoteError{
			SourceID: n.SourceID,
			Reason:   fmt.Sprintf("unsupported content type %T", c),
		}
	}
	if strings.TrimSpace(body) != "" {
		sections = append(sections, body)
	}

	if opts.Attachments && len(n.Attachments) > 0 {
		sections = append(sections, renderAttachments(n.Attachments, opts, folder))
	}
	if opts.Annotations && len(n.Annotations) > 0 {
		sections = append(sections, renderAnnotations(n.Annotations))
	}
	if tags := renderTags(n, opts); tags != "" {
		sections = append(sections, tags)
	}

	return strings.Join(sections, "\n\n"), nil
}

// renderChecklist writes one task-list line per item, in source order.
// Keep exports lists flat, so no nesting is produced.
func renderChecklist(items []keep.ListItem) string {
	lines := make([]string, 0, len(items))
	for _, it := range items {
		mark := " "
		if it.Checked {
			mark = "x"
		}
		text := strings.ReplaceAll(strings.TrimRight(it.Text, "\r\n"), "\r\n", "\n")
		text = strings.ReplaceAll(text, "\n", "\n  ")
		lines = append(lines, fmt.Sprintf("- [%s] %s", mark, text))
	}
	return strings.Join(lines, "\n")
}

func renderAttachments(atts []keep.Attachment, opts Options, folder string) string {
	lines := make([]string, 0, len(atts))
	for _, a := range atts {
		dest := path.Join(opts.AttachmentDir, a.FilePath)
		if opts.AttachmentStyle == AttachmentMarkdown {
			target := relativeTo(folder, dest)
			if strings.ContainsAny(target, " ()<>") {
				target = "<" + target + ">"
			}
			name := path.Base(a.FilePath)
			if isImage(a) {
				lines = append(lines, fmt.Sprintf("![%s](%s)", name, target))
			} else {
				lines = append(lines, fmt.Sprintf("[%s](%s)", name, target))
			}
			continue
		}
		lines = append(lines, "![["+dest+"]]")
	}
	return strings.Join(lines, "\n")
}

// relativeTo makes the root-relative target reachable from folder.
func relativeTo(folder, target string) string {
	if folder == "" {
		return target
	}
	depth := strings.Count(folder, "/") + 1
	return strings.Repeat("../", depth) + target
}

func isImage(a keep.Attachment) bool {
	if strings.HasPrefix(a.MimeType, "image/") {
		return true
	}
	return imageExts[strings.ToLower(path.Ext(a.FilePath))]
}

func renderAnnotations(anns []keep.Annotation) string {
	var b strings.Builder
	b.WriteString("## Links\n")
	for i, a := range anns {
		text := a.Title
		if text == "" {
			text = a.URL
		}
		fmt.Fprintf(&b, "- [%s](%s)", text, a.URL)
		if a.Description != "" {
			b.WriteString(": " + a.Description)
		}
		if i < len(anns)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func renderTags(n *keep.Note, opts Options) string {
	var tags []string
	seen := make(map[string]bool)
	add := func(tag string) {
		if tag == "" || seen[tag] {
			return
		}
		seen[tag] = true
		tags = append(tags, "#"+tag)
	}

	if opts.LabelsAsTags {
		for _, l := range n.Labels {
			add(tagName(l))
		}
	}
	if opts.TagPinned && n.Pinned {
		add("pinned")
	}
	return strings.Join(tags, "\n")
}

// tagName turns a label into a tag: whitespace runs become underscores and
// characters that end a tag are dropped.
func tagName(label string) string {
	fields := strings.Fields(label)
	tag := strings.Join(fields, "_")
	return strings.Map(func(r rune) rune {
		switch r {
		case '#', ',', '.', ';', '!', '?', '"', '\'', '[', ']', '(', ')', '{', '}':
			return -1
		}
		return r
	}, tag)
}

// frontMatter is the YAML header written at the top of each document.
// Field order is the order keys appear in the file.
type frontMatter struct {
	Title    string   `yaml:"title,omitempty"`
	Created  string   `yaml:"created,omitempty"`
	Updated  string   `yaml:"updated,omitempty"`
	Labels   []string `yaml:"labels"`
	Color    string   `yaml:"color,omitempty"`
	Pinned   bool     `yaml:"pinned"`
	Archived bool     `yaml:"archived"`
	Trashed  bool     `yaml:"trashed"`
	Source   string   `yaml:"keep-source,omitempty"`
}

func renderFrontMatter(n *keep.Note) (string, error) {
	fm := frontMatter{
		Title:    strings.TrimSpace(n.Title),
		Created:  formatTime(n.Created),
		Updated:  formatTime(n.Edited),
		Labels:   append([]string{}, n.Labels...),
		Color:    n.Color,
		Pinned:   n.Pinned,
		Archived: n.Archived,
		Trashed:  n.Trashed,
		Source:   n.SourceID,
	}

	var buf bytes.Buffer
	buf.WriteString("---\n")
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(fm); err != nil {
		return "", fmt.Errorf("failed to encode front matter: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("failed to encode front matter: %w", err)
	}
	buf.WriteString("---\n")
	return buf.String(), nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
