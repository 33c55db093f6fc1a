package report

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrNotFound is returned when a requested report file does not exist.
var ErrNotFound = errors.New("report not found")

// FileStore keeps rendered artifacts on disk under <dir>/<attempt id>/.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

// Save writes the artifacts and returns them with Path set.
func (s *FileStore) Save(attemptID string, artifacts []Artifact) ([]Artifact, error) {
	if !safeName(attemptID) {
		return nil, fmt.Errorf("invalid attempt id %q", attemptID)
	}
	dir := filepath.Join(s.dir, attemptID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create report dir: %w", err)
	}

	saved := make([]Artifact, 0, len(artifacts))
	for _, a := range artifacts {
		if !safeName(a.Name) {
			return nil, fmt.Errorf("invalid report name %q", a.Name)
		}
		path := filepath.Join(dir, a.Name)
		if err := os.WriteFile(path, a.Data, 0o644); err != nil {
			return nil, fmt.Errorf("write %s: %w", a.Name, err)
		}
		a.Path = path
		saved = append(saved, a)
	}
	return saved, nil
}

// Path resolves the on-disk location of a saved report.
func (s *FileStore) Path(attemptID, name string) (string, error) {
	if !safeName(attemptID) || !safeName(name) {
		return "", ErrNotFound
	}
	path := filepath.Join(s.dir, attemptID, name)
	if _, err := os.Stat(path); err != nil {
		return "", ErrNotFound
	}
	return path, nil
}

func safeName(name string) bool {
	return name != "" && name != "." && name != ".." && filepath.Base(name) == name
}
