package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// FileKV persists each slot as one JSON document under a base
// directory. Writes go through a temp file + rename so a crashed write
// leaves the previous snapshot intact.
type FileKV struct {
	baseDir string
}

// NewFileKV ensures the base directory exists and returns a handle.
func NewFileKV(baseDir string) (*FileKV, error) {
	if baseDir == "" {
		baseDir = "./data"
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}
	return &FileKV{baseDir: baseDir}, nil
}

// Get reads the slot file, reporting absence without error.
func (s *FileKV) Get(_ context.Context, key Slot) ([]byte, bool, error) {
	raw, err := os.ReadFile(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("read slot %s: %w", key, err)
	}
	return raw, true, nil
}

// Set overwrites the slot file with the provided snapshot.
func (s *FileKV) Set(_ context.Context, key Slot, value []byte) error {
	path := s.path(key)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, value, 0o644); err != nil {
		return fmt.Errorf("write slot %s: %w", key, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("commit slot %s: %w", key, err)
	}
	return nil
}

// Delete removes the slot file if present.
func (s *FileKV) Delete(_ context.Context, key Slot) error {
	if err := os.Remove(s.path(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete slot %s: %w", key, err)
	}
	return nil
}

func (s *FileKV) path(key Slot) string {
	return filepath.Join(s.baseDir, string(key)+".json")
}
