package convert

import (
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/gerunddev/keepbridge/internal/keep"
)

// maxSuffix bounds the search for a free "Name (N).md".
const maxSuffix = 10000

// Resolver hands out unique relative paths. Two notes that map onto the
// same path are disambiguated with a counter suffix: the first keeps
// "Name.md", later ones get "Name (2).md", "Name (3).md" and so on.
// Paths compare case-insensitively.
type Resolver struct {
	taken map[string]string

	// Available, when set, can veto a candidate path, e.g. because a file
	// already exists there.
	Available func(relPath, sourceID string) bool
}

// NewResolver creates an empty resolver.
func NewResolver() *Resolver {
	return &Resolver{taken: make(map[string]string)}
}

// Reserve claims relPath for sourceID. It reports false if another source
// already holds it.
func (r *Resolver) Reserve(relPath, sourceID string) bool {
	key := strings.ToLower(relPath)
	if owner, ok := r.taken[key]; ok && owner != sourceID {
		return false
	}
	r.taken[key] = sourceID
	return true
}

// Owner returns the source holding relPath, if any.
func (r *Resolver) Owner(relPath string) (string, bool) {
	owner, ok := r.taken[strings.ToLower(relPath)]
	return owner, ok
}

// Resolve returns the first free variant of relPath and claims it.
func (r *Resolver) Resolve(relPath, sourceID string) (string, error) {
	dir, file := path.Split(relPath)
	ext := path.Ext(file)
	stem := strings.TrimSuffix(file, ext)

	for i := 1; i <= maxSuffix; i++ {
		candidate := relPath
		if i > 1 {
			candidate = fmt.Sprintf("%s%s (%d)%s", dir, stem, i, ext)
		}
		if owner, ok := r.Owner(candidate); ok && owner != sourceID {
			continue
		}
		if r.Available != nil && !r.Available(candidate, sourceID) {
			continue
		}
		r.taken[strings.ToLower(candidate)] = sourceID
		return candidate, nil
	}
	return "", fmt.Errorf("no free path for %s after %d attempts", relPath, maxSuffix)
}

// Batch converts notes that share one output tree.
type Batch struct {
	opts     Options
	resolver *Resolver
}

// NewBatch creates a batch with a fresh resolver.
func NewBatch(opts Options) *Batch {
	return &Batch{opts: opts, resolver: NewResolver()}
}

// Resolver exposes the batch's path resolver.
func (b *Batch) Resolver() *Resolver {
	return b.resolver
}

// Convert converts n and assigns it a path no earlier note in the batch
// holds.
func (b *Batch) Convert(n *keep.Note) (*Document, error) {
	doc, err := Convert(n, b.opts)
	if err != nil {
		return nil, err
	}
	rel, err := b.resolver.Resolve(doc.RelativePath, n.SourceID)
	if err != nil {
		return nil, err
	}
	doc.RelativePath = rel
	return doc, nil
}

// ConvertAll converts notes in ascending source ID order so path assignment
// does not depend on the order the export was read in. A note that fails
// is reported and skipped; the others still convert.
func ConvertAll(notes []*keep.Note, opts Options) ([]*Document, []error) {
	sorted := make([]*keep.Note, 0, len(notes))
	for _, n := range notes {
		if n != nil {
			sorted = append(sorted, n)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].SourceID < sorted[j].SourceID
	})

	batch := NewBatch(opts)
	docs := make([]*Document, 0, len(sorted))
	var errs []error
	for _, n := range sorted {
		doc, err := batch.Convert(n)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		docs = append(docs, doc)
	}
	return docs, errs
}
