package credstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// File persists the session as a JSON document on disk, so a session
// survives process restarts. Writes go through a temp file and rename.
type File struct {
	mu   sync.Mutex
	path string
}

// NewFile creates a file-backed store at path. The parent directory is
// created on first write.
func NewFile(path string) *File {
	return &File{path: path}
}

// Get reads the persisted session. A missing file is the absent session,
// not an error.
func (f *File) Get(_ context.Context) (Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return Session{}, nil
	}
	if err != nil {
		return Session{}, fmt.Errorf("credstore: read %s: %w", f.path, err)
	}

	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return Session{}, fmt.Errorf("credstore: decode %s: %w", f.path, err)
	}
	return s, nil
}

// Set writes the session with 0600 permissions.
func (f *File) Set(_ context.Context, s Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("credstore: encode session: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("credstore: create dir: %w", err)
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("credstore: write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("credstore: rename %s: %w", tmp, err)
	}
	return nil
}

// Clear removes the session file. Removing an absent file is a no-op.
func (f *File) Clear(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	err := os.Remove(f.path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("credstore: remove %s: %w", f.path, err)
	}
	return nil
}
