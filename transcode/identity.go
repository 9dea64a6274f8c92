package transcode

import (
	"context"

	"github.com/caio-sobreiro/dicomarchive/dicom"
)

// Identity is a Transcoder that accepts every requested syntax and
// re-encodes the dataset unchanged, optionally re-stamping the SOP
// Instance UID when AllowNewSOPInstanceUID is set. It exercises the
// WriterDriver's success path in tests without needing a real codec.
// Result.Bytes is the bare dataset: a Part 10 header on the input is
// stripped and not written back.
type Identity struct {
	// NewSOPInstanceUID, when non-empty, replaces (0008,0018) whenever
	// Options.AllowNewSOPInstanceUID is true.
	NewSOPInstanceUID string
}

func (t Identity) Transcode(_ context.Context, in []byte, opts Options) (Result, error) {
	dataset := in
	if dicom.HasPart10Header(in) {
		stripped, err := dicom.StripPart10Header(in)
		if err != nil {
			return Result{}, err
		}
		dataset = stripped
	}

	ds, err := dicom.ParseDataset(dataset)
	if err != nil {
		return Result{}, err
	}

	if opts.AllowNewSOPInstanceUID && t.NewSOPInstanceUID != "" {
		ds.AddElement(dicom.TagSOPInstanceUID, dicom.VR_UI, t.NewSOPInstanceUID)
	}

	var syntax string
	if len(opts.AcceptedSyntaxes) > 0 {
		syntax = opts.AcceptedSyntaxes[0]
	}
	encoded, err := dicom.EncodeDatasetWithTransferSyntax(ds, syntax)
	if err != nil {
		return Result{}, err
	}

	return Result{Bytes: encoded, Parsed: ds}, nil
}
