package convert

// Attachment reference styles.
const (
	AttachmentEmbed    = "embed"
	AttachmentMarkdown = "markdown"
)

// Filename styles.
const (
	FilenameTitle = "title"
	FilenameSlug  = "slug"
)

// Options controls how a note is mapped onto a vault document.
type Options struct {
	LabelsAsFolders bool
	FrontMatter     bool
	LabelsAsTags    bool
	TagPinned       bool
	Attachments     bool
	AttachmentDir   string
	AttachmentStyle string
	Annotations     bool
	ArchiveDir      string
	TrashedDir      string
	UntitledFormat  string
	FilenameStyle   string
}

// DefaultOptions mirrors the defaults of the configuration file.
func DefaultOptions() Options {
	return Options{
		LabelsAsFolders: true,
		FrontMatter:     true,
		TagPinned:       true,
		Attachments:     true,
		AttachmentDir:   "Attachments",
		AttachmentStyle: AttachmentEmbed,
		ArchiveDir:      "Archived",
		TrashedDir:      "Trashed",
		UntitledFormat:  "%@ %#",
		FilenameStyle:   FilenameTitle,
	}
}
