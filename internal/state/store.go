// Package state persists contact snapshots to the filesystem.
package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/smileynet/contacts/internal/contact"
)

// snapshotVersion is the on-disk format version.
const snapshotVersion = 1

// snapshot is the JSON document written to disk.
type snapshot struct {
	Version  int               `json:"version"`
	SavedAt  time.Time         `json:"saved_at"`
	Contacts []contact.Contact `json:"contacts"`
}

// ErrVersion indicates a snapshot written by an incompatible format version.
var ErrVersion = errors.New("state: unsupported snapshot version")

// FileStore persists the full contact list as one JSON file.
type FileStore struct {
	path string
	now  func() time.Time
}

// NewFileStore creates a FileStore that saves to path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path, now: time.Now}
}

// Path returns the snapshot file path.
func (s *FileStore) Path() string {
	return s.path
}

// Save writes contacts to the snapshot file. The write goes to a temporary
// file in the same directory and is renamed into place.
func (s *FileStore) Save(contacts []contact.Contact) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("state: creating directory: %w", err)
	}

	if contacts == nil {
		contacts = []contact.Contact{}
	}
	data, err := json.MarshalIndent(snapshot{
		Version:  snapshotVersion,
		SavedAt:  s.now().UTC(),
		Contacts: contacts,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("state: marshaling: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("state: creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // gone after a successful rename
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("state: writing %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("state: writing %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("state: writing %s: %w", s.path, err)
	}
	return nil
}

// Load reads the snapshot file.
// Returns (contacts, true, nil) if found, (nil, false, nil) if not found.
func (s *FileStore) Load() ([]contact.Contact, bool, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("state: reading %s: %w", s.path, err)
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, false, fmt.Errorf("state: parsing %s: %w", s.path, err)
	}
	if snap.Version != snapshotVersion {
		return nil, false, fmt.Errorf("%w: %d", ErrVersion, snap.Version)
	}
	return snap.Contacts, true, nil
}
