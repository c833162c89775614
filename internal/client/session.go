package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// SessionStore persists the shown-set between restarts of one session.
type SessionStore interface {
	Load() (map[string]time.Time, error)
	Save(shown map[string]time.Time) error
	Clear() error
}

// FileSession keeps the shown-set in a small JSON file.
type FileSession struct {
	path string
}

func NewFileSession(path string) *FileSession {
	return &FileSession{path: path}
}

// Load returns an empty map when the file does not exist.
func (s *FileSession) Load() (map[string]time.Time, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]time.Time{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read session %s: %w", s.path, err)
	}
	shown := map[string]time.Time{}
	if err := json.Unmarshal(data, &shown); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", s.path, err)
	}
	return shown, nil
}

// Save writes through a temp file so a crash never leaves half a file.
func (s *FileSession) Save(shown map[string]time.Time) error {
	data, err := json.Marshal(shown)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace session: %w", err)
	}
	return nil
}

// Clear removes the file.
func (s *FileSession) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove session %s: %w", s.path, err)
	}
	return nil
}
