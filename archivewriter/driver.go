// Package archivewriter implements the WriterDriver: the component that
// actually dispatches a sealed zipstream.Stream against a ZipSink,
// transcoding instances best-effort and, in media mode, building a
// DICOMDIR alongside the ZIP entries.
package archivewriter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/caio-sobreiro/dicomarchive/dicom"
	"github.com/caio-sobreiro/dicomarchive/dirindex"
	archiveerr "github.com/caio-sobreiro/dicomarchive/errors"
	"github.com/caio-sobreiro/dicomarchive/transcode"
	"github.com/caio-sobreiro/dicomarchive/zipsink"
	"github.com/caio-sobreiro/dicomarchive/zipstream"
)

// Mode mirrors planner.Mode without importing planner, which itself does
// not depend on archivewriter; keeping the two Mode types distinct avoids
// a dependency either package does not otherwise need.
type Mode int

const (
	ModeArchive Mode = iota
	ModeMedia
)

// TranscodeRequest describes an optional transcode the driver should
// attempt for every instance, best-effort.
type TranscodeRequest struct {
	Enabled        bool
	TransferSyntax string
}

// Driver is the WriterDriver. One Driver is created per archive job run,
// Opened against a concrete Sink, stepped through the stream's commands,
// and Closed.
type Driver struct {
	stream     *zipstream.Stream
	mode       Mode
	transcode  TranscodeRequest
	transcoder transcode.Transcoder
	logger     *slog.Logger

	sizeThreshold     uint64
	instanceThreshold uint32

	sink     zipsink.Sink
	dirIndex *dirindex.Index
}

// New constructs a Driver for stream. transcoder may be nil when
// transcode.Enabled is false.
func New(
	stream *zipstream.Stream,
	mode Mode,
	transcodeReq TranscodeRequest,
	transcoder transcode.Transcoder,
	sizeThreshold uint64,
	instanceThreshold uint32,
	logger *slog.Logger,
) *Driver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Driver{
		stream:            stream,
		mode:              mode,
		transcode:         transcodeReq,
		transcoder:        transcoder,
		sizeThreshold:     sizeThreshold,
		instanceThreshold: instanceThreshold,
		logger:            logger,
	}
}

// Open binds the driver to sink, decides the ZIP64 mode from the
// stream's aggregates, and (in media mode) starts a fresh DirIndex.
func (d *Driver) Open(sink zipsink.Sink) error {
	if sink == nil {
		return archiveerr.ErrNullPointer
	}
	if d.sink != nil {
		return archiveerr.ErrBadSequenceOfCalls
	}

	d.sink = sink
	zip64 := d.stream.RequiresZip64(d.sizeThreshold, d.instanceThreshold)
	sink.SetZip64(zip64)

	if d.mode == ModeMedia {
		d.dirIndex = dirindex.New()
	}
	return nil
}

// StepCount returns the total number of calls RunStep/LastStep expect:
// one per command in the stream, plus one terminal step.
func (d *Driver) StepCount() int {
	return d.stream.Len() + 1
}

// IsWriteInstance reports whether step i is a WriteInstance command. It
// is false for the terminal step (i == StepCount()-1).
func (d *Driver) IsWriteInstance(i int) (bool, error) {
	if i == d.stream.Len() {
		return false, nil
	}
	cmd, err := d.stream.At(i)
	if err != nil {
		return false, err
	}
	return cmd.Kind == zipstream.WriteInstance, nil
}

// RunStep applies step i. payload is the instance bytes for a
// WriteInstance step (nil means the instance is gone and the step is
// skipped); it is ignored for OpenDir/CloseDir steps.
func (d *Driver) RunStep(i int, payload []byte) error {
	if d.sink == nil {
		return archiveerr.ErrBadSequenceOfCalls
	}
	cmd, err := d.stream.At(i)
	if err != nil {
		return err
	}

	switch cmd.Kind {
	case zipstream.OpenDir:
		return d.sink.OpenDirectory(cmd.Name)
	case zipstream.CloseDir:
		return d.sink.CloseDirectory()
	case zipstream.WriteInstance:
		if payload == nil {
			d.logger.Warn("instance removed after archive job was issued, skipping", "instance_id", cmd.InstanceID)
			return nil
		}
		return d.writeInstance(cmd, payload)
	default:
		return fmt.Errorf("%w: unknown command kind %d", archiveerr.ErrInternal, cmd.Kind)
	}
}

func (d *Driver) writeInstance(cmd zipstream.Command, payload []byte) error {
	if err := d.sink.OpenFile(cmd.Name); err != nil {
		return err
	}

	finalBytes := payload
	var parsed *dicom.Dataset

	if d.transcode.Enabled {
		result, err := d.transcoder.Transcode(context.Background(), payload, transcode.Options{
			AcceptedSyntaxes:       []string{d.transcode.TransferSyntax},
			AllowNewSOPInstanceUID: true,
		})
		switch {
		case err == nil:
			finalBytes = result.Bytes
			parsed = result.Parsed
		case errors.Is(err, transcode.ErrUnsupported):
			d.logger.Info("cannot transcode instance, writing original bytes",
				"instance_id", cmd.InstanceID, "transfer_syntax", d.transcode.TransferSyntax)
		default:
			return err
		}
	}

	if _, err := d.sink.Write(finalBytes); err != nil {
		return err
	}

	if d.dirIndex != nil {
		if parsed == nil {
			dataset := finalBytes
			if dicom.HasPart10Header(finalBytes) {
				stripped, err := dicom.StripPart10Header(finalBytes)
				if err != nil {
					return err
				}
				dataset = stripped
			}
			var err error
			parsed, err = dicom.ParseDataset(dataset)
			if err != nil {
				return err
			}
		}
		d.dirIndex.Add(zipstream.MediaImagesFolder, cmd.Name, parsed)
	}

	return nil
}

// LastStep applies the terminal step: in media mode this writes the
// accumulated DICOMDIR; in archive mode it is a no-op.
func (d *Driver) LastStep() error {
	if d.dirIndex == nil {
		return nil
	}
	data, err := d.dirIndex.Encode()
	if err != nil {
		return err
	}
	if err := d.sink.OpenFile("DICOMDIR"); err != nil {
		return err
	}
	_, err = d.sink.Write(data)
	return err
}

// Close finalizes the underlying sink.
func (d *Driver) Close() error {
	if d.sink == nil {
		return archiveerr.ErrBadSequenceOfCalls
	}
	return d.sink.Close()
}

// CancelStream aborts the underlying sink.
func (d *Driver) CancelStream() error {
	if d.sink == nil {
		return nil
	}
	return d.sink.CancelStream()
}

// ArchiveSize returns the number of bytes written to the sink so far.
func (d *Driver) ArchiveSize() uint64 {
	if d.sink == nil {
		return 0
	}
	return d.sink.ArchiveSize()
}
