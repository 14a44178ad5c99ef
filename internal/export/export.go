package export

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/frontmatter"

	"github.com/gerunddev/keepbridge/internal/config"
	"github.com/gerunddev/keepbridge/internal/convert"
	"github.com/gerunddev/keepbridge/internal/diff"
	"github.com/gerunddev/keepbridge/internal/keep"
	"github.com/gerunddev/keepbridge/internal/logger"
	"github.com/gerunddev/keepbridge/internal/state"
)

// Exporter converts a Keep export into an Obsidian vault
type Exporter struct {
	config *config.Config
	state  *state.State
	vault  *state.Vault
	log    *logger.Logger

	// DryRun converts without touching the vault or the state file.
	DryRun bool
	// DiffOut receives a diff per changed file during a dry run.
	DiffOut io.Writer
	// FormatDiff, when set, formats each unified diff before it is written
	// to DiffOut.
	FormatDiff func(unified string) string
	// Progress, when set, is called before each note is handled.
	Progress func(done, total int)
	// Report, when set, receives the outcome of every note.
	Report func(NoteReport)
}

// Note outcomes passed to Exporter.Report
const (
	StatusNew       = "new"
	StatusChanged   = "changed"
	StatusUnchanged = "unchanged"
	StatusSkipped   = "skipped"
	StatusMalformed = "malformed"
	StatusFailed    = "failed"
)

// NoteReport describes what happened to one note. Diff is only filled in
// during a dry run.
type NoteReport struct {
	SourceID string
	Path     string
	Status   string
	Reason   string
	Diff     string
}

// New creates a new exporter instance
func New(cfg *config.Config, st *state.State, log *logger.Logger) *Exporter {
	if st == nil {
		st = state.NewState()
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Exporter{
		config: cfg,
		state:  st,
		log:    log,
	}
}

// Result represents the outcome of a conversion run
type Result struct {
	Converted   int
	Skipped     int
	Unchanged   int
	Attachments int
	Errors      []error
	StartTime   time.Time
	EndTime     time.Time
}

// String returns a human-readable summary of the run
func (r *Result) String() string {
	duration := r.EndTime.Sub(r.StartTime)
	return fmt.Sprintf(
		"Conversion complete: %d notes converted, %d unchanged, %d skipped, %d attachments, %d errors (took %v)",
		r.Converted,
		r.Unchanged,
		r.Skipped,
		r.Attachments,
		len(r.Errors),
		duration.Round(time.Millisecond),
	)
}

// Run converts every note of the export at input. Per-note failures are
// recorded in the result; only failures to read the export or to save the
// state abort the run.
func (e *Exporter) Run(ctx context.Context, input string) (*Result, error) {
	result := &Result{StartTime: time.Now()}
	defer func() {
		result.EndTime = time.Now()
	}()

	e.log.RunStarted(input, e.config.OutputDir, e.DryRun)

	exp, err := keep.Open(input)
	if err != nil {
		return result, err
	}
	defer exp.Close()

	entries, err := exp.Notes()
	if err != nil {
		return result, err
	}

	e.vault = e.state.Vault(e.config.OutputDir)
	pending := e.filter(entries, result)
	opts := e.config.ConvertOptions()
	batch := convert.NewBatch(opts)
	batch.Resolver().Available = e.available

	// A note converted with other options is out of date as well.
	optsKey, err := json.Marshal(opts)
	if err != nil {
		return result, fmt.Errorf("failed to encode options: %w", err)
	}

	hashes := make(map[string]string, len(pending))
	unchanged := make(map[string]bool)
	for _, entry := range pending {
		hash := state.ComputeHash(entry.Raw, optsKey)
		hashes[entry.SourceID] = hash
		if !e.config.Incremental || e.vault.HasChanged(entry.SourceID, hash) {
			continue
		}
		// Unchanged notes keep their path so later notes cannot claim it.
		prev, ok := e.vault.PathOf(entry.SourceID)
		if !ok || !e.exists(prev) {
			continue
		}
		if batch.Resolver().Reserve(prev, entry.SourceID) {
			unchanged[entry.SourceID] = true
		}
	}

	var runErr error
	for i, entry := range pending {
		if runErr = ctx.Err(); runErr != nil {
			break
		}
		if e.Progress != nil {
			e.Progress(i, len(pending))
		}

		if unchanged[entry.SourceID] {
			result.Unchanged++
			e.log.NoteSkipped(entry.SourceID, "unchanged")
			prev, _ := e.vault.PathOf(entry.SourceID)
			e.report(NoteReport{SourceID: entry.SourceID, Path: prev, Status: StatusUnchanged})
			continue
		}

		doc, err := batch.Convert(entry.Note)
		if err != nil {
			status := StatusFailed
			if keep.IsMalformed(err) {
				status = StatusMalformed
				e.log.MalformedNote(entry.SourceID, err)
			} else {
				e.log.Error("conversion failed", "source", entry.SourceID, "error", err)
			}
			result.Errors = append(result.Errors, err)
			e.report(NoteReport{SourceID: entry.SourceID, Status: status, Reason: err.Error()})
			continue
		}

		wanted := path.Join(convert.Folder(entry.Note, opts), convert.Filename(entry.Note, opts)+".md")
		if !strings.EqualFold(wanted, doc.RelativePath) {
			e.log.Collision(entry.SourceID, wanted, doc.RelativePath)
		}

		report, err := e.write(exp, doc, result)
		if err != nil {
			e.log.Error("write failed", "source", entry.SourceID, "dest", doc.RelativePath, "error", err)
			result.Errors = append(result.Errors, fmt.Errorf("%s: %w", entry.SourceID, err))
			e.report(NoteReport{SourceID: entry.SourceID, Path: doc.RelativePath, Status: StatusFailed, Reason: err.Error()})
			continue
		}
		e.report(report)

		result.Converted++
		if !e.DryRun {
			e.vault.Update(entry.SourceID, hashes[entry.SourceID], doc.RelativePath, doc.Modified)
		}
		e.log.NoteConverted(entry.SourceID, doc.RelativePath)
	}
	if runErr == nil && e.Progress != nil {
		e.Progress(len(pending), len(pending))
	}

	// Notes written before a cancellation are recorded too.
	if !e.DryRun && e.config.StateFile != "" {
		if err := e.state.Save(e.config.StateFile); err != nil {
			return result, fmt.Errorf("failed to save state: %w", err)
		}
	}
	if runErr != nil {
		return result, runErr
	}

	e.log.RunCompleted(result.Converted, result.Unchanged, len(result.Errors), time.Since(result.StartTime))
	return result, nil
}

// filter drops unreadable records and notes excluded by configuration
func (e *Exporter) filter(entries []keep.Entry, result *Result) []keep.Entry {
	pending := make([]keep.Entry, 0, len(entries))
	for _, entry := range entries {
		switch {
		case errors.Is(entry.Err, keep.ErrNotANote):
			e.log.NoteSkipped(entry.SourceID, "not a note")
			result.Skipped++
			e.report(NoteReport{SourceID: entry.SourceID, Status: StatusSkipped, Reason: "not a note"})
		case entry.Err != nil:
			e.log.MalformedNote(entry.SourceID, entry.Err)
			result.Errors = append(result.Errors, entry.Err)
			e.report(NoteReport{SourceID: entry.SourceID, Status: StatusMalformed, Reason: entry.Err.Error()})
		case entry.Note.Archived && !e.config.IncludeArchived:
			e.log.NoteSkipped(entry.SourceID, "archived")
			result.Skipped++
			e.report(NoteReport{SourceID: entry.SourceID, Status: StatusSkipped, Reason: "archived"})
		case entry.Note.Trashed && !e.config.IncludeTrashed:
			e.log.NoteSkipped(entry.SourceID, "trashed")
			result.Skipped++
			e.report(NoteReport{SourceID: entry.SourceID, Status: StatusSkipped, Reason: "trashed"})
		default:
			pending = append(pending, entry)
		}
	}
	return pending
}

// write puts a document and its attachments into the vault, or diffs it
// against the vault during a dry run
func (e *Exporter) write(exp *keep.Export, doc *convert.Document, result *Result) (NoteReport, error) {
	report := NoteReport{SourceID: doc.SourceID, Path: doc.RelativePath, Status: StatusNew}

	dest, err := e.destPath(doc.RelativePath)
	if err != nil {
		return report, err
	}
	if _, err := os.Stat(dest); err == nil {
		report.Status = StatusChanged
	}

	if e.DryRun {
		result.Attachments += len(doc.Attachments)
		unified, err := diff.File(dest, doc.RelativePath, doc.Markdown)
		if err != nil {
			return report, err
		}
		if unified == "" {
			report.Status = StatusUnchanged
			return report, nil
		}
		report.Diff = unified
		return report, e.showDiff(unified)
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return report, fmt.Errorf("failed to create folder: %w", err)
	}
	if err := os.WriteFile(dest, []byte(doc.Markdown), 0644); err != nil {
		return report, fmt.Errorf("failed to write note: %w", err)
	}

	for _, ref := range doc.Attachments {
		if err := e.copyAttachment(exp, doc.SourceID, ref); err != nil {
			e.log.AttachmentError(doc.SourceID, ref.FilePath, err)
			result.Errors = append(result.Errors, fmt.Errorf("%s: attachment %s: %w", doc.SourceID, ref.FilePath, err))
			continue
		}
		result.Attachments++
	}

	if e.config.SetMTime && !doc.Modified.IsZero() {
		if err := os.Chtimes(dest, doc.Modified, doc.Modified); err != nil {
			return report, fmt.Errorf("failed to set modification time: %w", err)
		}
	}

	return report, nil
}

func (e *Exporter) showDiff(unified string) error {
	if e.DiffOut == nil {
		return nil
	}
	if e.FormatDiff != nil {
		unified = e.FormatDiff(unified)
	}
	_, err := io.WriteString(e.DiffOut, unified)
	return err
}

func (e *Exporter) report(r NoteReport) {
	if e.Report != nil {
		e.Report(r)
	}
}

// copyAttachment copies an attachment into the vault. A file already at
// the destination is kept: identical content counts as copied, anything
// else is reported as fs.ErrExist.
func (e *Exporter) copyAttachment(exp *keep.Export, sourceID string, ref convert.AttachmentRef) error {
	dest, err := e.destPath(ref.Dest)
	if err != nil {
		return err
	}

	src, err := exp.OpenAttachment(sourceID, ref.FilePath)
	if err != nil {
		return err
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return err
	}

	existing, err := os.ReadFile(dest)
	switch {
	case err == nil:
		if bytes.Equal(existing, data) {
			return nil
		}
		return fmt.Errorf("%s has different content: %w", ref.Dest, fs.ErrExist)
	case !os.IsNotExist(err):
		return err
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return fmt.Errorf("failed to create attachment folder: %w", err)
	}
	return os.WriteFile(dest, data, 0644)
}

// destPath maps a vault-relative path onto the output directory, refusing
// paths that would leave it
func (e *Exporter) destPath(rel string) (string, error) {
	local := filepath.FromSlash(rel)
	if !filepath.IsLocal(local) {
		return "", fmt.Errorf("path %q escapes the output directory", rel)
	}
	return filepath.Join(e.config.OutputDir, local), nil
}

func (e *Exporter) exists(rel string) bool {
	dest, err := e.destPath(rel)
	if err != nil {
		return false
	}
	_, err = os.Stat(dest)
	return err == nil
}

// available reports whether sourceID may write rel: either nothing is
// there yet or the file there was written for the same note
func (e *Exporter) available(rel, sourceID string) bool {
	dest, err := e.destPath(rel)
	if err != nil {
		return false
	}
	if _, err := os.Stat(dest); os.IsNotExist(err) {
		return true
	} else if err != nil {
		return false
	}

	if owner, ok := e.vault.Owner(rel); ok {
		return owner == sourceID
	}
	return sourceOf(dest) == sourceID
}

// sourceOf reads the keep-source key from a vault file's front matter
func sourceOf(file string) string {
	f, err := os.Open(file)
	if err != nil {
		return ""
	}
	defer f.Close()

	var matter struct {
		Source string `yaml:"keep-source"`
	}
	if _, err := frontmatter.Parse(f, &matter); err != nil {
		return ""
	}
	return matter.Source
}
