package core

import (
	"context"
	"errors"
)

type testLogger struct{}

func (l testLogger) Debug(string, ...interface{}) {}
func (l testLogger) Info(string, ...interface{})  {}
func (l testLogger) Warn(string, ...interface{})  {}
func (l testLogger) Error(string, ...interface{}) {}

type rcMockArtifactStore struct{ saved map[string]map[string][]byte }

func (a *rcMockArtifactStore) Save(rid, aid string, data []byte) error {
	if a.saved == nil {
		a.saved = map[string]map[string][]byte{}
	}
	if _, ok := a.saved[rid]; !ok {
		a.saved[rid] = map[string][]byte{}
	}
	a.saved[rid][aid] = append([]byte{}, data...)
	return nil
}

func (a *rcMockArtifactStore) Get(rid, aid string) ([]byte, error) {
	if m, ok := a.saved[rid]; ok {
		if b, ok := m[aid]; ok {
			return b, nil
		}
	}
	return nil, errors.New("not found")
}

func (a *rcMockArtifactStore) List(rid string) ([]string, error) {
	res := []string{}
	for k := range a.saved[rid] {
		res = append(res, k)
	}
	return res, nil
}

func (a *rcMockArtifactStore) Delete(string, string) error { return nil }

func newRunContextForTest() (*RunContext, *rcMockArtifactStore) {
	store := &rcMockArtifactStore{}
	return NewRunContext(context.Background(), "run-x", "board", store, testLogger{}), store
}
