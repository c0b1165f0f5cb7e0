package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileStore keeps the library in a single JSON file.
type FileStore struct {
	mu   sync.RWMutex
	path string
}

// NewFileStore creates a file-backed store at path, creating its parent
// directory. If path is empty, DefaultPath() is used.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, unavailable(err, "create store dir")
	}
	return &FileStore{path: path}, nil
}

// DefaultPath returns ~/.local/share/shelfspace/library.json, honouring
// XDG_DATA_HOME.
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "shelfspace", "library.json"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".local", "share", "shelfspace", "library.json"), nil
}

func (s *FileStore) Load(ctx context.Context) (*Library, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, unavailable(err, "read library file")
	}

	var lib Library
	if err := json.Unmarshal(data, &lib); err != nil {
		return nil, corrupt(err, "parse library file %s", s.path)
	}
	return normalize(&lib), nil
}

// Save writes the library to a temporary file and renames it over the
// old one, so readers never see a partial write.
func (s *FileStore) Save(ctx context.Context, lib *Library) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(normalize(lib), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal library: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".library-*.json")
	if err != nil {
		return unavailable(err, "create temp file")
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return unavailable(err, "write library file")
	}
	if err := tmp.Close(); err != nil {
		return unavailable(err, "close library file")
	}
	if err := os.Chmod(tmp.Name(), 0o600); err != nil {
		return unavailable(err, "chmod library file")
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return unavailable(err, "replace library file")
	}
	return nil
}

func (s *FileStore) Close() error { return nil }

// Path returns the library file path.
func (s *FileStore) Path() string { return s.path }

var _ Store = (*FileStore)(nil)
