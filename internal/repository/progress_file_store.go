package repository

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// ProgressFileStore keeps a flat progress record in a JSON file. It is loaded
// and saved wholesale.
type ProgressFileStore struct {
	Path string
}

func NewProgressFileStore(path string) *ProgressFileStore {
	return &ProgressFileStore{Path: path}
}

// Load returns an empty record when the file does not exist yet.
func (s *ProgressFileStore) Load() (map[string]bool, error) {
	data, err := os.ReadFile(s.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]bool{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read progress: %w", err)
	}

	progress := map[string]bool{}
	if len(data) == 0 {
		return progress, nil
	}
	if err := json.Unmarshal(data, &progress); err != nil {
		return nil, fmt.Errorf("decode progress %s: %w", s.Path, err)
	}
	return progress, nil
}

func (s *ProgressFileStore) Save(progress map[string]bool) error {
	data, err := json.MarshalIndent(progress, "", "  ")
	if err != nil {
		return fmt.Errorf("encode progress: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.Path), ".progress-*.json")
	if err != nil {
		return fmt.Errorf("write progress: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write progress: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write progress: %w", err)
	}
	return os.Rename(tmp.Name(), s.Path)
}
