// Package blobstore defines the content-addressed DICOM byte store the
// archive job reads instances from, plus an in-memory reference
// implementation for tests and the demo command.
package blobstore

import (
	"context"
	"errors"
)

// ErrNotFound is returned when an instance's bytes are no longer
// available (for example, the instance was deleted after the archive job
// was issued but before it ran).
var ErrNotFound = errors.New("blobstore: instance not found")

// ErrTransient is returned for storage failures the caller should treat
// as retryable, such as a transport error to a remote object store. The
// archive job does not retry internally; it surfaces the error and lets
// the host job engine decide whether to schedule a retry.
var ErrTransient = errors.New("blobstore: transient storage error")

// Store is the read surface the prefetch pipeline uses to fetch instance
// bytes. A production implementation reads from disk, S3, or whatever the
// store's attachment backend is; MemoryStore below is a reference
// implementation for tests.
type Store interface {
	ReadDICOM(ctx context.Context, instanceID string) ([]byte, error)
}
