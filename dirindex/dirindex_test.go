package dirindex

import (
	"bytes"
	"testing"

	"github.com/caio-sobreiro/dicomarchive/dicom"
)

func sampleInstance() *dicom.Dataset {
	ds := dicom.NewDataset()
	ds.AddElement(dicom.TagPatientID, dicom.VR_LO, "PAT1")
	ds.AddElement(dicom.TagPatientName, dicom.VR_PN, "Doe^John")
	ds.AddElement(dicom.TagStudyInstanceUID, dicom.VR_UI, "1.2.3")
	ds.AddElement(dicom.TagSeriesInstanceUID, dicom.VR_UI, "1.2.3.4")
	ds.AddElement(dicom.TagSOPInstanceUID, dicom.VR_UI, "1.2.3.4.5")
	return ds
}

func TestAddAccumulatesOneRecordPerInstance(t *testing.T) {
	idx := New()
	idx.Add("IMAGES", "IM0", sampleInstance())
	idx.Add("IMAGES", "IM1", sampleInstance())

	if idx.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", idx.Len())
	}
}

func TestEncodeProducesNonEmptyBytesPerRecord(t *testing.T) {
	idx := New()
	idx.Add("IMAGES", "IM0", sampleInstance())

	encoded, err := idx.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if len(encoded) == 0 {
		t.Fatal("Encode() returned no bytes for a non-empty index")
	}
}

func TestEncodeEmptyIndexProducesEmptyBytes(t *testing.T) {
	idx := New()
	encoded, err := idx.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if len(encoded) != 0 {
		t.Errorf("Encode() of an empty index returned %d bytes, want 0", len(encoded))
	}
}

func TestEncodeGrowsWithExtendedSopClass(t *testing.T) {
	plain := New()
	plain.Add("IMAGES", "IM0", sampleInstance())
	plainBytes, err := plain.Encode()
	if err != nil {
		t.Fatal(err)
	}

	ds := sampleInstance()
	ds.AddElement(dicom.Tag{Group: 0x0008, Element: 0x0016}, dicom.VR_UI, "1.2.840.10008.5.1.4.1.1.2")
	extended := New()
	extended.EnableExtendedSopClass(true)
	extended.Add("IMAGES", "IM0", ds)
	extendedBytes, err := extended.Encode()
	if err != nil {
		t.Fatal(err)
	}

	if !(len(extendedBytes) > len(plainBytes)) {
		t.Errorf("extended SOP class record should encode to more bytes: got %d vs %d", len(extendedBytes), len(plainBytes))
	}
	if bytes.Equal(plainBytes, extendedBytes) {
		t.Error("expected extended record bytes to differ from plain record bytes")
	}
}
