package keep

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

// Export is an opened Keep export: an extracted Takeout directory, a
// single note file, or a Takeout zip archive.
type Export struct {
	Root   string
	fsys   fs.FS
	only   string
	closer io.Closer
}

// Entry is the outcome of reading one note file from an export.
type Entry struct {
	SourceID string
	Raw      []byte
	Note     *Note
	Err      error
}

// Open opens the export at p.
func Open(p string) (*Export, error) {
	info, err := os.Stat(p)
	if err != nil {
		return nil, fmt.Errorf("failed to open export: %w", err)
	}

	if info.IsDir() {
		return &Export{Root: p, fsys: os.DirFS(p)}, nil
	}

	lower := strings.ToLower(p)
	switch {
	case strings.HasSuffix(lower, ".json"):
		dir := filepath.Dir(p)
		return &Export{Root: dir, fsys: os.DirFS(dir), only: filepath.Base(p)}, nil
	case strings.HasSuffix(lower, ".zip"):
		zr, err := zip.OpenReader(p)
		if err != nil {
			return nil, fmt.Errorf("failed to open zip archive: %w", err)
		}
		return &Export{Root: p, fsys: zr, closer: zr}, nil
	case strings.HasSuffix(lower, ".tgz"), strings.HasSuffix(lower, ".tar.gz"), strings.HasSuffix(lower, ".tar"):
		return nil, fmt.Errorf("%s: %w (extract it first or export as zip)", p, ErrUnsupportedArchive)
	}

	return nil, fmt.Errorf("%s: not a directory, .json file or .zip archive", p)
}

// Close releases the underlying archive, if any.
func (e *Export) Close() error {
	if e.closer != nil {
		return e.closer.Close()
	}
	return nil
}

// Notes reads and parses every note file in the export, in lexical path
// order. A note that fails to parse is returned as an Entry with Err set;
// only filesystem errors abort the walk.
func (e *Export) Notes() ([]Entry, error) {
	var names []string
	if e.only != "" {
		names = []string{e.only}
	} else {
		err := fs.WalkDir(e.fsys, ".", func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if p != "." && strings.HasPrefix(d.Name(), ".") {
					return fs.SkipDir
				}
				return nil
			}
			if strings.EqualFold(path.Ext(p), ".json") {
				names = append(names, p)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to scan export: %w", err)
		}
	}
	sort.Strings(names)

	entries := make([]Entry, 0, len(names))
	for _, name := range names {
		data, err := fs.ReadFile(e.fsys, name)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", name, err)
		}
		note, err := Parse(data, name)
		entries = append(entries, Entry{SourceID: name, Raw: data, Note: note, Err: err})
	}
	return entries, nil
}

// OpenAttachment opens an attachment referenced by the note with the given
// source ID. Keep references JPEG images as ".jpeg" while the export ships
// them as ".jpg", so that spelling is tried as well.
func (e *Export) OpenAttachment(sourceID, filePath string) (fs.File, error) {
	name := path.Join(path.Dir(sourceID), filePath)
	f, err := e.fsys.Open(name)
	if err == nil {
		return f, nil
	}
	if errors.Is(err, fs.ErrNotExist) && strings.EqualFold(path.Ext(name), ".jpeg") {
		if alt, altErr := e.fsys.Open(strings.TrimSuffix(name, path.Ext(name)) + ".jpg"); altErr == nil {
			return alt, nil
		}
	}
	return nil, err
}
