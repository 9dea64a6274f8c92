// Package planner turns an expanded archivetree.Tree into a sealed
// zipstream.Stream, choosing filenames and directory layout according to
// the archive's Mode.
package planner

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/caio-sobreiro/dicomarchive/archivetree"
	"github.com/caio-sobreiro/dicomarchive/catalog"
	"github.com/caio-sobreiro/dicomarchive/dicom"
	archiveerr "github.com/caio-sobreiro/dicomarchive/errors"
	"github.com/caio-sobreiro/dicomarchive/resource"
	"github.com/caio-sobreiro/dicomarchive/textutil"
	"github.com/caio-sobreiro/dicomarchive/zipstream"
)

// Mode selects which visitor Plan drives the tree with.
type Mode int

const (
	// ModeArchive lays instances out under a "PatientID PatientName"/
	// "AccessionNumber StudyDescription"/"Modality SeriesDescription"
	// directory tree, mirroring how a human browsing the ZIP would expect
	// studies to be organized.
	ModeArchive Mode = iota
	// ModeMedia lays every instance flat under zipstream.MediaImagesFolder
	// with IM<n> filenames, the layout a DICOMDIR media reader expects.
	ModeMedia
)

// Plan walks tree with the visitor appropriate to mode and returns the
// resulting sealed Stream.
func Plan(tree *archivetree.Tree, cat catalog.Catalog, mode Mode) (*zipstream.Stream, error) {
	stream := zipstream.New()

	switch mode {
	case ModeMedia:
		v := newMediaVisitor(stream)
		stream.AddOpenDir(zipstream.MediaImagesFolder)
		if err := tree.Visit(v); err != nil {
			return nil, err
		}
		stream.AddCloseDir()
	default:
		v, err := newArchiveVisitor(stream, cat)
		if err != nil {
			return nil, err
		}
		if err := tree.Visit(v); err != nil {
			return nil, err
		}
	}

	stream.Seal()
	return stream, nil
}

// archiveVisitor names directories after patient, study, and series main
// tags, and names instance files by a per-series counter whose zero
// padding depends on the series' modality code length, matching the
// original ArchiveIndexVisitor's instanceFormat_ scheme.
type archiveVisitor struct {
	stream  *zipstream.Stream
	catalog catalog.Catalog
	format  string
	counter uint32
}

func newArchiveVisitor(stream *zipstream.Stream, cat catalog.Catalog) (*archiveVisitor, error) {
	if stream.Len() != 0 {
		return nil, archiveerr.ErrBadSequenceOfCalls
	}
	return &archiveVisitor{stream: stream, catalog: cat, format: "%08d.dcm"}, nil
}

func (v *archiveVisitor) Open(level resource.Level, id string) error {
	tags, err := v.catalog.MainDicomTags(id, level)
	if err != nil {
		return err
	}

	var name string
	switch level {
	case resource.Patient:
		name = joinNonEmpty(tags[dicom.TagPatientID], tags[dicom.TagPatientName])
	case resource.Study:
		name = joinNonEmpty(tags[dicom.TagAccessionNumber], tags[dicom.TagStudyDescription])
	case resource.Series:
		modality := tags[dicom.TagModality]
		name = joinNonEmpty(modality, tags[dicom.TagSeriesDescription])
		v.format = instanceFormat(modality)
		v.counter = 0
	default:
		return fmt.Errorf("%w: planner visited unexpected level %s", archiveerr.ErrInternal, level)
	}

	name = textutil.ConvertToASCII(name)
	if name == "" {
		name = "Unknown " + level.String()
	}
	v.stream.AddOpenDir(name)
	return nil
}

func (v *archiveVisitor) Close() error {
	v.stream.AddCloseDir()
	return nil
}

func (v *archiveVisitor) AddInstance(instanceID string, uncompressedSize uint64) error {
	filename := fmt.Sprintf(v.format, v.counter)
	v.counter++
	v.stream.AddWriteInstance(filename, instanceID, uncompressedSize)
	return nil
}

// instanceFormat picks the zero-padded counter format for a series based
// on its modality code length: no modality gets an 8-digit generic name,
// a 1-character modality gets 7 digits prefixed by the code, and a 2+
// character modality is truncated to its first 2 letters (uppercased)
// plus 6 digits.
func instanceFormat(modality string) string {
	modality = strings.ToUpper(strings.TrimSpace(modality))
	switch len(modality) {
	case 0:
		return "%08d.dcm"
	case 1:
		return modality + "%07d.dcm"
	default:
		return modality[:2] + "%06d.dcm"
	}
}

func joinNonEmpty(parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " ")
}

// mediaVisitor flattens every instance into zipstream.MediaImagesFolder
// with a monotonically increasing IM<n> name, matching the original
// MediaIndexVisitor. The counter runs for the whole archive, not per
// series: Open/Close are no-ops since the media layout has no
// directories below IMAGES.
type mediaVisitor struct {
	stream  *zipstream.Stream
	counter uint32
}

func newMediaVisitor(stream *zipstream.Stream) *mediaVisitor {
	return &mediaVisitor{stream: stream}
}

func (v *mediaVisitor) Open(resource.Level, string) error  { return nil }
func (v *mediaVisitor) Close() error                       { return nil }
func (v *mediaVisitor) AddInstance(instanceID string, uncompressedSize uint64) error {
	filename := "IM" + strconv.FormatUint(uint64(v.counter), 10)
	v.counter++
	v.stream.AddWriteInstance(filename, instanceID, uncompressedSize)
	return nil
}
