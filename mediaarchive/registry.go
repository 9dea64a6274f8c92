// Package mediaarchive implements SharedMediaArchive: an in-process
// registry of completed asynchronous archives, keyed by opaque ID,
// awaiting GetOutput or removal. It is the Go analogue of Orthanc's
// SharedArchive<IDynamicObject> keyed store.
package mediaarchive

import (
	"io"
	"os"
	"sync"

	"github.com/google/uuid"
)

// Registry holds file paths for completed archives, keyed by a UUID
// minted on Add.
type Registry struct {
	mu    sync.Mutex
	paths map[string]string
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{paths: make(map[string]string)}
}

// Add registers path under a freshly minted ID and returns it.
func (r *Registry) Add(path string) string {
	id := uuid.NewString()
	r.mu.Lock()
	r.paths[id] = path
	r.mu.Unlock()
	return id
}

// Open returns a freshly-opened handle onto the archive registered under
// id, its content type, and whether it was found.
func (r *Registry) Open(id string) (io.ReadCloser, string, bool) {
	r.mu.Lock()
	path, ok := r.paths[id]
	r.mu.Unlock()
	if !ok {
		return nil, "", false
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, "", false
	}
	return f, "application/zip", true
}

// Remove deletes the archive registered under id and forgets it. Remove
// on an unknown id is a no-op.
func (r *Registry) Remove(id string) error {
	r.mu.Lock()
	path, ok := r.paths[id]
	delete(r.paths, id)
	r.mu.Unlock()
	if !ok {
		return nil
	}
	return os.Remove(path)
}
