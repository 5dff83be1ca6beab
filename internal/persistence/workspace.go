package persistence

import (
	"fmt"
	"os"
	"path/filepath"
)

// Workspace bridges configuration settings with the local file layout of an
// arena profile: one journal per profile plus a shared slot database.
type Workspace struct {
	Root string
}

// NewWorkspace returns a workspace rooted at dir.
func NewWorkspace(dir string) *Workspace {
	return &Workspace{Root: dir}
}

// JournalPath is where the named journal lives.
func (w *Workspace) JournalPath(name string) string {
	return filepath.Join(w.Root, "journals", name+".jsonl")
}

// SlotsPath resolves the slot database. Relative names are placed under Root.
func (w *Workspace) SlotsPath(db string) string {
	if db == ":memory:" || filepath.IsAbs(db) {
		return db
	}
	return filepath.Join(w.Root, db)
}

// Ensure creates the directory structure.
func (w *Workspace) Ensure() error {
	for _, dir := range []string{w.Root, filepath.Join(w.Root, "journals")} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// OpenJournal opens the named journal, creating the layout first.
func (w *Workspace) OpenJournal(name string) (*Journal, error) {
	if err := w.Ensure(); err != nil {
		return nil, err
	}
	return OpenJournal(w.JournalPath(name))
}

// OpenSlots opens the slot database, creating the layout first.
func (w *Workspace) OpenSlots(db string) (*Slots, error) {
	if err := w.Ensure(); err != nil {
		return nil, err
	}
	return OpenSlots(w.SlotsPath(db))
}
