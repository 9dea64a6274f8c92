// Package catalog defines the persistent-index contract the archive job
// reads resource ancestry, children, and DICOM tags from, plus a minimal
// in-memory reference implementation for tests and the demo command.
package catalog

import (
	"errors"

	"github.com/caio-sobreiro/dicomarchive/dicom"
	"github.com/caio-sobreiro/dicomarchive/resource"
)

// ErrNotFound is returned when a lookup targets an identifier the catalog
// does not know about.
var ErrNotFound = errors.New("catalog: resource not found")

// ContentType identifies which attachment of a resource is being queried.
// Only the DICOM file itself is modeled; a production catalog would also
// track thumbnails, metadata blobs, and so on.
type ContentType int

const (
	ContentDicom ContentType = iota
)

// AttachmentInfo describes one stored attachment without transferring its
// bytes.
type AttachmentInfo struct {
	UncompressedSize uint64
	Revision         int64
}

// Catalog is the persistent-index contract the archive job depends on. A
// production implementation backs this with the store's real index;
// MemoryCatalog below is a reference implementation for tests.
type Catalog interface {
	LookupLevel(id string) (resource.Level, error)
	LookupParent(id string) (string, error)
	Children(id string) ([]string, error)
	MainDicomTags(id string, level resource.Level) (map[dicom.Tag]string, error)
	LookupAttachment(id string, content ContentType) (AttachmentInfo, error)
}
