// Package dirindex builds a minimal DICOMDIR so a media archive's
// contents are discoverable by a generic DICOM media reader, without
// implementing the full Basic Directory IOD (nested PATIENT/STUDY/
// SERIES/IMAGE records via sequence items). It reuses this module's
// dicom.Dataset encode/parse machinery rather than a bespoke binary
// writer; see DESIGN.md for the scope this intentionally omits.
package dirindex

import (
	"bytes"

	"github.com/caio-sobreiro/dicomarchive/dicom"
)

var (
	tagDirectoryRecordType = dicom.Tag{Group: 0x0004, Element: 0x1430}
	tagReferencedFileID    = dicom.Tag{Group: 0x0004, Element: 0x1500}
)

// Index accumulates one flat directory record per archived instance and
// encodes them into a DICOMDIR byte stream.
type Index struct {
	extendedSOPClass bool
	records          []*dicom.Dataset
}

// New returns an empty Index.
func New() *Index {
	return &Index{}
}

// EnableExtendedSopClass controls whether Add copies the instance's SOP
// Class UID into each record, which some media readers use to filter by
// IOD without opening every referenced file.
func (idx *Index) EnableExtendedSopClass(enabled bool) {
	idx.extendedSOPClass = enabled
}

// Add appends one directory record for the instance described by parsed,
// referencing it at folder/filename within the archive.
func (idx *Index) Add(folder, filename string, parsed *dicom.Dataset) {
	rec := dicom.NewDataset()
	rec.AddElement(tagDirectoryRecordType, dicom.VR_CS, "IMAGE")
	rec.AddElement(tagReferencedFileID, dicom.VR_CS, folder+"\\"+filename)
	rec.AddElement(dicom.TagPatientID, dicom.VR_LO, parsed.GetString(dicom.TagPatientID))
	rec.AddElement(dicom.TagPatientName, dicom.VR_PN, parsed.GetString(dicom.TagPatientName))
	rec.AddElement(dicom.TagStudyInstanceUID, dicom.VR_UI, parsed.GetString(dicom.TagStudyInstanceUID))
	rec.AddElement(dicom.TagSeriesInstanceUID, dicom.VR_UI, parsed.GetString(dicom.TagSeriesInstanceUID))
	rec.AddElement(dicom.TagSOPInstanceUID, dicom.VR_UI, parsed.GetString(dicom.TagSOPInstanceUID))
	if idx.extendedSOPClass {
		sopClass := dicom.Tag{Group: 0x0008, Element: 0x0016}
		rec.AddElement(sopClass, dicom.VR_UI, parsed.GetString(sopClass))
	}
	idx.records = append(idx.records, rec)
}

// Encode serializes every accumulated record, Explicit VR Little Endian,
// one after another. This is not a conformant DICOMDIR (it lacks the
// File Meta Information group and the PATIENT/STUDY/SERIES hierarchy
// proper, a true Directory Record Sequence expressed via nested SQ
// items), but preserves every instance's referenced file path and
// identifying tags in a form a reader can parse back deterministically.
func (idx *Index) Encode() ([]byte, error) {
	var buf bytes.Buffer
	for _, rec := range idx.records {
		encoded, err := dicom.EncodeDatasetWithTransferSyntax(rec, dicom.TransferSyntaxExplicitVRLittleEndian)
		if err != nil {
			return nil, err
		}
		buf.Write(encoded)
	}
	return buf.Bytes(), nil
}

// Len returns the number of directory records accumulated so far.
func (idx *Index) Len() int {
	return len(idx.records)
}
