package keep

import (
	"errors"
	"fmt"
	"time"
)

// Note is one record from a Google Keep export.
type Note struct {
	SourceID    string
	Title       string
	Color       string
	Labels      []string
	Content     Content
	Attachments []Attachment
	Annotations []Annotation
	Created     time.Time
	Edited      time.Time
	Pinned      bool
	Archived    bool
	Trashed     bool
}

// Content is either TextContent or ChecklistContent.
type Content interface {
	isContent()
}

// TextContent is the body of a free-text note. HTML is the rich form Keep
// exports alongside the plain text, when present.
type TextContent struct {
	Text string
	HTML string
}

// ChecklistContent is the body of a list note.
type ChecklistContent struct {
	Items []ListItem
}

// ListItem is a single checklist entry
type ListItem struct {
	Text    string
	Checked bool
}

// Attachment references a media file shipped next to the note JSON.
type Attachment struct {
	FilePath string
	MimeType string
}

// Annotation is a web link preview Keep attached to a note.
type Annotation struct {
	Title       string
	Description string
	URL         string
	Source      string
}

func (TextContent) isContent()      {}
func (ChecklistContent) isContent() {}

// ErrUnsupportedArchive is returned by Open for archive formats other than zip.
var ErrUnsupportedArchive = errors.New("unsupported archive format")

// ErrNotANote is returned by Parse for JSON files that hold no note content,
// such as other Takeout data found next to the notes.
var ErrNotANote = errors.New("not a Keep note")

// MalformedNoteError reports a note whose shape does not match the Keep schema.
type MalformedNoteError struct {
	SourceID string
	Reason   string
	Err      error
}

func (e *MalformedNoteError) Error() string {
	msg := fmt.Sprintf("malformed note %s: %s", e.SourceID, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *MalformedNoteError) Unwrap() error {
	return e.Err
}

// IsMalformed reports whether err is (or wraps) a MalformedNoteError.
func IsMalformed(err error) bool {
	var m *MalformedNoteError
	return errors.As(err, &m)
}
