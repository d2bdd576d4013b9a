package artifact

import (
	"sort"
	"sync"
)

// InMemoryStore is an in-process ArtifactStore. It keeps all artifacts in
// a nested map guarded by an RWMutex. Data is copied on save and retrieval.
//
// Layout: runID -> artifactID -> raw bytes
type InMemoryStore struct {
	mu        sync.RWMutex
	artifacts map[string]map[string][]byte
}

// NewInMemoryStore returns an empty in-memory artifact store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{artifacts: make(map[string]map[string][]byte)}
}

// Save stores (or overwrites) the artifact bytes for the given run and id.
func (a *InMemoryStore) Save(runID, artifactID string, data []byte) error {
	if err := validateID(artifactID); err != nil {
		return err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, exists := a.artifacts[runID]; !exists {
		a.artifacts[runID] = make(map[string][]byte)
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	a.artifacts[runID][artifactID] = cp
	return nil
}

// Get returns a copy of the stored artifact bytes or ErrNotFound.
func (a *InMemoryStore) Get(runID, artifactID string) ([]byte, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	data, ok := a.artifacts[runID][artifactID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	return cp, nil
}

// List returns the sorted artifact ids stored for the run.
func (a *InMemoryStore) List(runID string) ([]string, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	m := a.artifacts[runID]
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// Delete removes the artifact if present or returns ErrNotFound.
func (a *InMemoryStore) Delete(runID, artifactID string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	m, ok := a.artifacts[runID]
	if !ok {
		return ErrNotFound
	}
	if _, ok := m[artifactID]; !ok {
		return ErrNotFound
	}
	delete(m, artifactID)
	return nil
}
