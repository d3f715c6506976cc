package state

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/smileynet/contacts/internal/contact"
)

func TestFileStore_SaveAndLoad(t *testing.T) {
	// Given contacts to persist
	dir := t.TempDir()
	store := NewFileStore(filepath.Join(dir, "nested", "contacts.json"))
	contacts := []contact.Contact{
		{ID: "1", Name: "Ada", Email: "ada@example.com", Phone: "555-0100"},
		{ID: "2", Name: "Alan", Phone: "555-0102"},
	}

	// When Save is called
	if err := store.Save(contacts); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	// Then Load returns the same contacts in order
	loaded, found, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !found {
		t.Fatal("Load() found = false, want true")
	}
	if diff := cmp.Diff(contacts, loaded); diff != "" {
		t.Errorf("Load() mismatch (-want +got):\n%s", diff)
	}
}

func TestFileStore_LoadNotFound(t *testing.T) {
	// Given an empty directory
	store := NewFileStore(filepath.Join(t.TempDir(), "contacts.json"))

	// When Load is called
	_, found, err := store.Load()

	// Then it returns not found
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if found {
		t.Error("Load() found = true, want false")
	}
}

func TestFileStore_SaveEmptyWritesArray(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "contacts.json"))
	if err := store.Save(nil); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	loaded, found, err := store.Load()
	if err != nil || !found {
		t.Fatalf("Load() = %v, %v", found, err)
	}
	if loaded == nil || len(loaded) != 0 {
		t.Errorf("loaded = %#v, want empty slice", loaded)
	}
}

func TestFileStore_SaveRecordsTime(t *testing.T) {
	path := filepath.Join(t.TempDir(), "contacts.json")
	store := NewFileStore(path)
	store.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }

	if err := store.Save(nil); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if want := `"saved_at": "2026-01-02T03:04:05Z"`; !strings.Contains(string(data), want) {
		t.Errorf("snapshot missing %s:\n%s", want, data)
	}
}

func TestFileStore_LeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	store := NewFileStore(filepath.Join(dir, "contacts.json"))
	for range 3 {
		if err := store.Save([]contact.Contact{{ID: "1", Name: "A", Phone: "1"}}); err != nil {
			t.Fatal(err)
		}
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("dir has %d entries, want 1", len(entries))
	}
}

func TestFileStore_LoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantIs  error
	}{
		{name: "corrupt json", content: "{not json"},
		{name: "future version", content: `{"version": 99, "contacts": []}`, wantIs: ErrVersion},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "contacts.json")
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatal(err)
			}
			_, _, err := NewFileStore(path).Load()
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.wantIs != nil && !errors.Is(err, tt.wantIs) {
				t.Errorf("err = %v, want %v", err, tt.wantIs)
			}
		})
	}
}
