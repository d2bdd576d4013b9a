package artifact

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DirStore persists artifacts on the local filesystem.
//
// Layout: <root>/<runID>/<artifactID>
type DirStore struct {
	root string
}

// NewDirStore creates a store rooted at dir, creating the directory if needed.
func NewDirStore(dir string) (*DirStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("artifact: empty directory")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("artifact: create root: %w", err)
	}
	return &DirStore{root: dir}, nil
}

// Root returns the root directory of the store.
func (d *DirStore) Root() string { return d.root }

// Path returns the file path an artifact is (or would be) stored at.
func (d *DirStore) Path(runID, artifactID string) string {
	return filepath.Join(d.root, runID, artifactID)
}

// Save writes the artifact file, replacing any previous content.
func (d *DirStore) Save(runID, artifactID string, data []byte) error {
	if err := validateID(runID); err != nil {
		return err
	}
	if err := validateID(artifactID); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Join(d.root, runID), 0o755); err != nil {
		return fmt.Errorf("artifact: create run dir: %w", err)
	}
	tmp := d.Path(runID, artifactID) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("artifact: write %s: %w", artifactID, err)
	}
	return os.Rename(tmp, d.Path(runID, artifactID))
}

// Get reads the artifact file or returns ErrNotFound.
func (d *DirStore) Get(runID, artifactID string) ([]byte, error) {
	if err := validateID(artifactID); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(d.Path(runID, artifactID))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	return data, err
}

// List returns the sorted artifact ids of the run.
func (d *DirStore) List(runID string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(d.root, runID))
	if errors.Is(err, fs.ErrNotExist) {
		return []string{}, nil
	}
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || strings.HasSuffix(e.Name(), ".tmp") {
			continue
		}
		ids = append(ids, e.Name())
	}
	sort.Strings(ids)
	return ids, nil
}

// Delete removes the artifact file or returns ErrNotFound.
func (d *DirStore) Delete(runID, artifactID string) error {
	if err := validateID(artifactID); err != nil {
		return err
	}
	err := os.Remove(d.Path(runID, artifactID))
	if errors.Is(err, fs.ErrNotExist) {
		return ErrNotFound
	}
	return err
}

func validateID(id string) error {
	if id == "" || id == "." || strings.Contains(id, "..") || strings.ContainsAny(id, `/\`) {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return nil
}
