package localstorage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalStorage implements ports.Storage for the local filesystem.
type LocalStorage struct {
	BaseDir string
}

// NewLocalStorage creates a new LocalStorage instance.
func NewLocalStorage(baseDir string) *LocalStorage {
	return &LocalStorage{BaseDir: baseDir}
}

// InitRun creates the run directory.
func (s *LocalStorage) InitRun(ctx context.Context, runID string) error {
	if err := validName(runID); err != nil {
		return fmt.Errorf("invalid run id: %w", err)
	}
	path := s.GetRunPath(runID)
	if err := os.MkdirAll(path, 0755); err != nil {
		return fmt.Errorf("failed to create run directory %s: %w", path, err)
	}
	return nil
}

// SaveArtifact writes one artifact into the run directory.
func (s *LocalStorage) SaveArtifact(ctx context.Context, runID, name string, reader io.Reader) error {
	if err := validName(runID); err != nil {
		return fmt.Errorf("invalid run id: %w", err)
	}
	if err := validName(name); err != nil {
		return fmt.Errorf("invalid artifact name: %w", err)
	}
	path := filepath.Join(s.GetRunPath(runID), name)

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create artifact %s: %w", path, err)
	}
	defer file.Close()

	if _, err := io.Copy(file, reader); err != nil {
		return fmt.Errorf("failed to write artifact %s: %w", name, err)
	}
	return file.Close()
}

// GetRunPath returns the path for a run directory.
func (s *LocalStorage) GetRunPath(runID string) string {
	return filepath.Join(s.BaseDir, "runs", runID)
}

// validName rejects names that would escape their directory.
func validName(name string) error {
	switch {
	case name == "", name == ".", name == "..":
		return fmt.Errorf("%q is not a file name", name)
	case strings.ContainsAny(name, `/\`):
		return fmt.Errorf("%q contains a path separator", name)
	}
	return nil
}
