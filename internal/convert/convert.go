package convert

import (
	"path"
	"strings"
	"time"

	"github.com/gerunddev/keepbridge/internal/keep"
)

// Document is a converted note, ready to be written into the vault.
type Document struct {
	SourceID     string
	RelativePath string // slash-separated, relative to the output root
	Markdown     string
	Attachments  []AttachmentRef
	Modified     time.Time
}

// AttachmentRef pairs an attachment as referenced by the note with its
// destination relative to the output root.
type AttachmentRef struct {
	FilePath string
	Dest     string
}

// Convert maps a single note onto a vault document. It is a pure function
// of its arguments: converting the same note twice yields identical output.
func Convert(n *keep.Note, opts Options) (*Document, error) {
	if n == nil {
		return nil, &keep.MalformedNoteError{Reason: "nil note"}
	}

	folder := Folder(n, opts)
	content, err := renderContent(n, opts, folder)
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	if opts.FrontMatter {
		fm, err := renderFrontMatter(n)
		if err != nil {
			return nil, err
		}
		b.WriteString(fm)
	}
	if content != "" {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(content)
		b.WriteString("\n")
	}

	doc := &Document{
		SourceID:     n.SourceID,
		RelativePath: path.Join(folder, Filename(n, opts)+".md"),
		Markdown:     b.String(),
		Modified:     n.Edited,
	}

	if opts.Attachments {
		for _, a := range n.Attachments {
			doc.Attachments = append(doc.Attachments, AttachmentRef{
				FilePath: a.FilePath,
				Dest:     path.Join(opts.AttachmentDir, a.FilePath),
			})
		}
	}

	return doc, nil
}
