package blobstore

import (
	"context"
	"fmt"
	"sync"
)

// MemoryStore is a Store backed by an in-process map. Tests use
// FailTransient to make a specific instance return ErrTransient once,
// exercising the job-aborts-on-transient-error path deterministically.
type MemoryStore struct {
	mu        sync.Mutex
	blobs     map[string][]byte
	transient map[string]bool
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		blobs:     make(map[string][]byte),
		transient: make(map[string]bool),
	}
}

// Put registers the raw DICOM bytes for instanceID.
func (m *MemoryStore) Put(instanceID string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs[instanceID] = data
}

// FailTransient makes the next ReadDICOM call for instanceID return
// ErrTransient instead of its stored bytes.
func (m *MemoryStore) FailTransient(instanceID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transient[instanceID] = true
}

func (m *MemoryStore) ReadDICOM(_ context.Context, instanceID string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.transient[instanceID] {
		delete(m.transient, instanceID)
		return nil, fmt.Errorf("%w: %s", ErrTransient, instanceID)
	}

	data, ok := m.blobs[instanceID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, instanceID)
	}
	return data, nil
}
