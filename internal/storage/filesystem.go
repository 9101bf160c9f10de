package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cartographix/internal/apperr"
)

// FileStore persists generated poster artifacts onto the local filesystem.
// All access goes through the store so every path is confined to the output
// root; job cleanup and the HTTP layer rely on that guarantee.
type FileStore struct {
	basePath string
}

// NewFileStore initializes a FileStore rooted at basePath, creating the
// directory if needed.
func NewFileStore(basePath string) (*FileStore, error) {
	basePath = strings.TrimSpace(basePath)
	if basePath == "" {
		return nil, errors.New("storage: base path is required")
	}
	abs, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve base path: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("storage: ensure base path: %w", err)
	}
	return &FileStore{basePath: abs}, nil
}

// BasePath returns the configured root directory.
func (s *FileStore) BasePath() string {
	if s == nil {
		return ""
	}
	return s.basePath
}

// Write persists the provided bytes under the given file name and returns the
// absolute path. Names are sanitized to a single path component so callers
// cannot escape the storage root.
func (s *FileStore) Write(name string, data []byte) (string, error) {
	if s == nil {
		return "", errors.New("storage: no store configured")
	}
	clean, err := sanitizeName(name)
	if err != nil {
		return "", err
	}
	fullPath := filepath.Join(s.basePath, clean)
	if err := os.WriteFile(fullPath, data, 0o644); err != nil {
		return "", fmt.Errorf("storage: write file: %w", err)
	}
	return fullPath, nil
}

// Resolve validates that path refers to a file inside the storage root and
// returns its absolute form. Paths pointing outside the root are refused.
func (s *FileStore) Resolve(path string) (string, error) {
	if s == nil {
		return "", errors.New("storage: no store configured")
	}
	abs, err := filepath.Abs(strings.TrimSpace(path))
	if err != nil {
		return "", apperr.Wrap(apperr.KindAccessDenied, "", err)
	}
	rel, err := filepath.Rel(s.basePath, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", apperr.New(apperr.KindAccessDenied, "")
	}
	return abs, nil
}

// Remove deletes the file at path if it lives inside the storage root.
// A missing file is not an error.
func (s *FileStore) Remove(path string) error {
	abs, err := s.Resolve(path)
	if err != nil {
		return err
	}
	if err := os.Remove(abs); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("storage: remove file: %w", err)
	}
	return nil
}

// sanitizeName reduces a file name to a single safe path component.
func sanitizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", errors.New("storage: file name is required")
	}
	name = strings.ReplaceAll(name, "\\", "/")
	cleaned := filepath.Base(filepath.Clean(name))
	if cleaned == "." || cleaned == ".." || cleaned == "/" {
		return "", errors.New("storage: invalid file name")
	}
	return cleaned, nil
}
