package convert

import (
	"path"
	"slices"
	"strings"
	"unicode"

	"github.com/goliatone/go-slug"
	"github.com/google/uuid"

	"github.com/gerunddev/keepbridge/internal/keep"
)

// maxNameBytes keeps "<name> (NNN).md" well below the 255 byte limit most
// filesystems impose on a single path component.
const maxNameBytes = 200

const illegalChars = `/\:*?"<>|`

var reservedNames = map[string]bool{
	"CON": true, "PRN": true, "AUX": true, "NUL": true,
	"COM1": true, "COM2": true, "COM3": true, "COM4": true, "COM5": true,
	"COM6": true, "COM7": true, "COM8": true, "COM9": true,
	"LPT1": true, "LPT2": true, "LPT3": true, "LPT4": true, "LPT5": true,
	"LPT6": true, "LPT7": true, "LPT8": true, "LPT9": true,
}

// Sanitize turns s into a string that is safe as a single path component
// on Linux, macOS and Windows. Safe input is returned unchanged, and
// Sanitize(Sanitize(s)) == Sanitize(s).
func Sanitize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case strings.ContainsRune(illegalChars, r):
			b.WriteRune('-')
		case r == '\n' || r == '\r' || r == '\t':
			b.WriteRune(' ')
		case r == unicode.ReplacementChar || unicode.IsControl(r):
			// dropped
		default:
			b.WriteRune(r)
		}
	}

	out := trimName(b.String())
	if len(out) > maxNameBytes {
		out = trimName(truncate(out, maxNameBytes))
	}
	if isReserved(out) {
		out = "_" + trimName(truncate(out, maxNameBytes-1))
	}
	return out
}

func trimName(s string) string {
	s = strings.TrimSpace(s)
	return strings.TrimRightFunc(s, func(r rune) bool {
		return r == '.' || unicode.IsSpace(r)
	})
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !isRuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}

func isReserved(name string) bool {
	stem := strings.ToUpper(name)
	if i := strings.IndexByte(stem, '.'); i >= 0 {
		stem = stem[:i]
	}
	return reservedNames[strings.TrimSpace(stem)]
}

// FolderLabel returns the label that decides the note's folder: the
// lexicographically smallest one that still names a folder once sanitized.
// Other labels never influence placement.
func FolderLabel(labels []string) (string, bool) {
	usable := slices.DeleteFunc(slices.Clone(labels), func(l string) bool {
		return Sanitize(l) == ""
	})
	if len(usable) == 0 {
		return "", false
	}
	return slices.Min(usable), true
}

// Folder returns the slash-separated folder a note is written to, relative
// to the output root. The root itself is "".
func Folder(n *keep.Note, opts Options) string {
	var parts []string

	switch {
	case n.Archived && opts.ArchiveDir != "":
		parts = append(parts, opts.ArchiveDir)
	case n.Trashed && opts.TrashedDir != "":
		parts = append(parts, opts.TrashedDir)
	}

	if opts.LabelsAsFolders {
		if label, ok := FolderLabel(n.Labels); ok {
			parts = append(parts, Sanitize(label))
		}
	}

	return path.Join(parts...)
}

// Filename returns the file name (without extension) for a note.
func Filename(n *keep.Note, opts Options) string {
	if name := titleName(n.Title, opts.FilenameStyle); name != "" {
		return name
	}
	if name := Sanitize(expandUntitled(opts.UntitledFormat, n)); name != "" {
		return name
	}
	return "Untitled-" + fallbackID(n)
}

func titleName(title, style string) string {
	if style == FilenameSlug && strings.TrimSpace(title) != "" {
		if s, err := slug.Normalize(title); err == nil {
			if name := Sanitize(s); name != "" {
				return name
			}
		}
	}
	return Sanitize(title)
}

// expandUntitled fills the untitled filename template. %@ is the creation
// time (UTC, ISO 8601 seconds), %d the creation date, %# a short summary
// of the content and %% a literal percent sign.
func expandUntitled(format string, n *keep.Note) string {
	var b strings.Builder
	for i := 0; i < len(format); i++ {
		c := format[i]
		if c != '%' || i+1 == len(format) {
			b.WriteByte(c)
			continue
		}
		i++
		switch format[i] {
		case '@':
			if !n.Created.IsZero() {
				b.WriteString(n.Created.UTC().Format("2006-01-02T15:04:05"))
			}
		case 'd':
			if !n.Created.IsZero() {
				b.WriteString(n.Created.UTC().Format("2006-01-02"))
			}
		case '#':
			b.WriteString(keep.Summary(n.Content, 10))
		case '%':
			b.WriteByte('%')
		default:
			b.WriteByte('%')
			b.WriteByte(format[i])
		}
	}
	return b.String()
}

// fallbackID derives a short stable identifier from the note's source ID,
// or from its content when the source is unknown.
func fallbackID(n *keep.Note) string {
	seed := n.SourceID
	if seed == "" {
		seed = n.Title + "\x00" + keep.PlainText(n.Content)
	}
	id := uuid.NewSHA1(uuid.NameSpaceURL, []byte("keep:"+seed))
	return strings.ReplaceAll(id.String(), "-", "")[:8]
}
