// Package transcode defines the DICOM transfer-syntax conversion contract
// the WriterDriver calls on its best-effort transcode path, plus two
// reference implementations used to exercise both outcomes in tests.
package transcode

import (
	"context"
	"errors"

	"github.com/caio-sobreiro/dicomarchive/dicom"
)

// ErrUnsupported is returned when the requested transfer syntax cannot be
// produced from the source bytes. The WriterDriver treats this as
// non-fatal: it logs and writes the original bytes instead.
var ErrUnsupported = errors.New("transcode: transfer syntax unsupported")

// Options carries the parameters of one transcode request.
type Options struct {
	// AcceptedSyntaxes lists transfer syntax UIDs the caller will accept
	// as output, in preference order.
	AcceptedSyntaxes []string
	// AllowNewSOPInstanceUID permits the transcoder to mint a new SOP
	// Instance UID when the conversion is lossy, per DICOM PS3.4.
	AllowNewSOPInstanceUID bool
}

// Result is the product of a successful transcode.
type Result struct {
	// Bytes is the re-encoded Part 10 file.
	Bytes []byte
	// Parsed is the decoded dataset, reused by the DICOMDIR writer so it
	// doesn't need to re-parse Bytes.
	Parsed *dicom.Dataset
}

// Transcoder converts in (a Part 10 file) to one of Options.AcceptedSyntaxes.
type Transcoder interface {
	Transcode(ctx context.Context, in []byte, opts Options) (Result, error)
}
