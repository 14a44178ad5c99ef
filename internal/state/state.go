package state

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// NoteState records what was written for a single source note
type NoteState struct {
	Hash   string `json:"hash"`
	Path   string `json:"path"`
	Edited int64  `json:"edited"`
}

// Vault holds the conversion state of one output directory. Paths are
// relative to that directory.
type Vault struct {
	Notes map[string]*NoteState `json:"notes"` // source id -> state
}

// State represents the conversion state across runs, one Vault per
// output directory
type State struct {
	Vaults map[string]*Vault `json:"vaults"` // absolute output dir -> vault
}

// NewState creates a new empty state
func NewState() *State {
	return &State{
		Vaults: make(map[string]*Vault),
	}
}

// NewVault creates a new empty vault state
func NewVault() *Vault {
	return &Vault{
		Notes: make(map[string]*NoteState),
	}
}

// Load reads state from the state file
func Load(path string) (*State, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewState(), nil
		}
		return nil, err
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to parse state file: %w", err)
	}

	if state.Vaults == nil {
		state.Vaults = make(map[string]*Vault)
	}
	for _, v := range state.Vaults {
		if v.Notes == nil {
			v.Notes = make(map[string]*NoteState)
		}
	}

	return &state, nil
}

// Save writes state to the state file
func (s *State) Save(path string) error {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}

	return nil
}

// Vault returns the state of the output directory dir, creating it when
// the directory has not been converted into before
func (s *State) Vault(dir string) *Vault {
	key := vaultKey(dir)
	v, ok := s.Vaults[key]
	if !ok || v == nil {
		v = NewVault()
		s.Vaults[key] = v
	}
	return v
}

func vaultKey(dir string) string {
	if abs, err := filepath.Abs(dir); err == nil {
		return abs
	}
	return filepath.Clean(dir)
}

// ComputeHash computes the SHA256 hash over the given parts, typically a
// note's source bytes and the options it is converted with
func ComputeHash(parts ...[]byte) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write(p)
	}
	return fmt.Sprintf("sha256:%x", h.Sum(nil))
}

// HasChanged reports whether the source differs from what was last converted
func (v *Vault) HasChanged(sourceID, hash string) bool {
	ns, exists := v.Notes[sourceID]
	if !exists {
		return true
	}
	return ns.Hash != hash
}

// Update records the outcome of converting a source
func (v *Vault) Update(sourceID, hash, path string, edited time.Time) {
	var ts int64
	if !edited.IsZero() {
		ts = edited.Unix()
	}
	v.Notes[sourceID] = &NoteState{
		Hash:   hash,
		Path:   path,
		Edited: ts,
	}
}

// PathOf returns the path last written for a source
func (v *Vault) PathOf(sourceID string) (string, bool) {
	ns, exists := v.Notes[sourceID]
	if !exists || ns.Path == "" {
		return "", false
	}
	return ns.Path, true
}

// Owner returns the source that last wrote path. Paths compare
// case-insensitively.
func (v *Vault) Owner(path string) (string, bool) {
	for id, ns := range v.Notes {
		if strings.EqualFold(ns.Path, path) {
			return id, true
		}
	}
	return "", false
}
