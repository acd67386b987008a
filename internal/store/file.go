package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const (
	evaluationsFile = "evaluations.json"
	submissionsFile = "submissions.json"
)

// FilePersistence stores each collection as one pretty-printed JSON array
// document under a data directory. A missing or unparseable document reads as
// an empty collection; write failures propagate to the caller unretried.
type FilePersistence struct {
	dir string
}

// NewFilePersistence builds a port rooted at dir. The directory is created
// lazily on first write.
func NewFilePersistence(dir string) *FilePersistence {
	return &FilePersistence{dir: dir}
}

func loadDoc[T any](path string) ([]T, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return []T{}, nil
	}
	var out []T
	if err := json.Unmarshal(data, &out); err != nil {
		return []T{}, nil
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}

func saveDoc[T any](path string, records []T) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}

func (f *FilePersistence) LoadEvaluations() ([]Evaluation, error) {
	return loadDoc[Evaluation](filepath.Join(f.dir, evaluationsFile))
}

func (f *FilePersistence) SaveEvaluations(evals []Evaluation) error {
	return saveDoc(filepath.Join(f.dir, evaluationsFile), evals)
}

func (f *FilePersistence) LoadSubmissions() ([]Submission, error) {
	return loadDoc[Submission](filepath.Join(f.dir, submissionsFile))
}

func (f *FilePersistence) SaveSubmissions(subs []Submission) error {
	return saveDoc(filepath.Join(f.dir, submissionsFile), subs)
}

// Wipe deletes both backing documents. Missing files are not an error.
func (f *FilePersistence) Wipe() error {
	for _, name := range []string{evaluationsFile, submissionsFile} {
		if err := os.Remove(filepath.Join(f.dir, name)); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("remove %s: %w", name, err)
		}
	}
	return nil
}

var _ Persistence = (*FilePersistence)(nil)
