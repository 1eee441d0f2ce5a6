// Package store persists finished analysis runs as JSON documents on disk.
//
// Layout: one file per run at <root>/<id>.json. Writes go through a
// temporary file in the same directory followed by a rename, so readers
// never observe a partially-written document. Load returns (nil, nil) for
// an unknown id so callers can treat "never ran" without branching on
// errors.
package store

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/Nita121388/Merge-Annotator/internal/analysis"
)

const defaultRoot = "data/analyses"

// Record is one persisted analysis run.
type Record struct {
	ID        string           `json:"id"`
	CreatedAt string           `json:"created_at"`
	Status    string           `json:"status"`
	Error     string           `json:"error,omitempty"`
	Roots     analysis.Roots   `json:"roots"`
	Result    *analysis.Result `json:"result,omitempty"`
}

// Store is a directory-backed record store. The zero value is not usable;
// construct with New.
type Store struct {
	root string
}

// New returns a store rooted at dir, falling back to the default root when
// dir is empty. The directory is created lazily on first save.
func New(dir string) *Store {
	if dir == "" {
		dir = defaultRoot
	}
	return &Store{root: dir}
}

// Root reports the backing directory.
func (s *Store) Root() string { return s.root }

// Save writes the record atomically under its sanitized id.
func (s *Store) Save(rec *Record) error {
	if rec == nil || rec.ID == "" {
		return errors.New("store: record without id")
	}
	if err := os.MkdirAll(s.root, 0o755); err != nil {
		return err
	}
	final := s.path(rec.ID)
	f, err := os.CreateTemp(s.root, ".tmp-"+filepath.Base(final)+"-")
	if err != nil {
		return err
	}
	tmp := f.Name()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rec); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, final)
}

// Load reads a record by id. An unknown id yields (nil, nil).
func (s *Store) Load(id string) (*Record, error) {
	b, err := os.ReadFile(s.path(id))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var rec Record
	if err := json.Unmarshal(b, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Exists reports whether a record with the given id is stored.
func (s *Store) Exists(id string) bool {
	_, err := os.Stat(s.path(id))
	return err == nil
}

func (s *Store) path(id string) string {
	return filepath.Join(s.root, sanitizeID(id)+".json")
}

// sanitizeID restricts ids to a filename-safe alphabet so a crafted id can
// never escape the store root.
func sanitizeID(id string) string {
	var b strings.Builder
	b.Grow(len(id))
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "_"
	}
	return b.String()
}
