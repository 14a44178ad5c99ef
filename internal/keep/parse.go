package keep

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// rawNote mirrors the JSON layout of a Keep export record.
type rawNote struct {
	Color                   string          `json:"color"`
	IsTrashed               bool            `json:"isTrashed"`
	IsPinned                bool            `json:"isPinned"`
	IsArchived              bool            `json:"isArchived"`
	Title                   string          `json:"title"`
	TextContent             *string         `json:"textContent"`
	TextContentHTML         *string         `json:"textContentHtml"`
	ListContent             []rawListItem   `json:"listContent"`
	UserEditedTimestampUsec int64           `json:"userEditedTimestampUsec"`
	CreatedTimestampUsec    int64           `json:"createdTimestampUsec"`
	Labels                  []rawLabel      `json:"labels"`
	Attachments             []rawAttachment `json:"attachments"`
	Annotations             []rawAnnotation `json:"annotations"`
}

type rawListItem struct {
	Text      string `json:"text"`
	IsChecked bool   `json:"isChecked"`
}

type rawLabel struct {
	Name string `json:"name"`
}

type rawAttachment struct {
	FilePath string `json:"filePath"`
	MimeType string `json:"mimetype"`
}

type rawAnnotation struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	Source      string `json:"source"`
}

// Parse decodes a single Keep note record. Records that are not valid JSON,
// carry fields of the wrong type, or hold both text and checklist content
// yield a *MalformedNoteError. JSON objects without any note content field
// are other Takeout data and yield ErrNotANote.
func Parse(data []byte, sourceID string) (*Note, error) {
	var raw rawNote
	if err := json.Unmarshal(data, &raw); err != nil {
		reason := "invalid JSON"
		if _, ok := err.(*json.UnmarshalTypeError); ok {
			reason = "field has wrong type"
		}
		return nil, &MalformedNoteError{SourceID: sourceID, Reason: reason, Err: err}
	}

	if raw.TextContent == nil && raw.TextContentHTML == nil && raw.ListContent == nil {
		return nil, fmt.Errorf("%s: %w", sourceID, ErrNotANote)
	}

	text, html := deref(raw.TextContent), deref(raw.TextContentHTML)
	hasText := strings.TrimSpace(text) != "" || strings.TrimSpace(html) != ""
	if hasText && len(raw.ListContent) > 0 {
		return nil, &MalformedNoteError{
			SourceID: sourceID,
			Reason:   "note has both text and checklist content",
		}
	}

	note := &Note{
		SourceID: sourceID,
		Title:    raw.Title,
		Color:    raw.Color,
		Created:  fromUsec(raw.CreatedTimestampUsec),
		Edited:   fromUsec(raw.UserEditedTimestampUsec),
		Pinned:   raw.IsPinned,
		Archived: raw.IsArchived,
		Trashed:  raw.IsTrashed,
	}

	if len(raw.ListContent) > 0 {
		items := make([]ListItem, 0, len(raw.ListContent))
		for _, it := range raw.ListContent {
			items = append(items, ListItem{Text: it.Text, Checked: it.IsChecked})
		}
		note.Content = ChecklistContent{Items: items}
	} else {
		note.Content = TextContent{Text: text, HTML: html}
	}

	for _, l := range raw.Labels {
		if name := strings.TrimSpace(l.Name); name != "" {
			note.Labels = append(note.Labels, name)
		}
	}

	for _, a := range raw.Attachments {
		if a.FilePath == "" {
			continue
		}
		note.Attachments = append(note.Attachments, Attachment{FilePath: a.FilePath, MimeType: a.MimeType})
	}

	for _, a := range raw.Annotations {
		if a.URL == "" {
			continue
		}
		note.Annotations = append(note.Annotations, Annotation(a))
	}

	return note, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// fromUsec converts Keep's microsecond timestamps. Zero stays the zero time.
func fromUsec(us int64) time.Time {
	if us <= 0 {
		return time.Time{}
	}
	return time.UnixMicro(us).UTC()
}

// PlainText returns the note content as plain text: the text body for text
// notes, or one "- [x] item" line per entry for checklists.
func PlainText(c Content) string {
	switch c := c.(type) {
	case TextContent:
		return c.Text
	case ChecklistContent:
		lines := make([]string, 0, len(c.Items))
		for _, it := range c.Items {
			mark := " "
			if it.Checked {
				mark = "x"
			}
			lines = append(lines, "- ["+mark+"] "+it.Text)
		}
		return strings.Join(lines, "\n")
	}
	return ""
}

// Summary returns the first n runes of the note's plain text, with "..."
// appended when the text was cut.
func Summary(c Content, n int) string {
	text := []rune(strings.TrimSpace(PlainText(c)))
	if len(text) <= n {
		return string(text)
	}
	return string(text[:n]) + "..."
}
