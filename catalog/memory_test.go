package catalog

import (
	"errors"
	"testing"

	"github.com/caio-sobreiro/dicomarchive/dicom"
	"github.com/caio-sobreiro/dicomarchive/resource"
)

func TestAddInstanceBuildsFullAncestry(t *testing.T) {
	cat := NewMemoryCatalog()
	cat.AddInstance("patient-1", "study-1", "series-1", "instance-1", 1024, nil)

	level, err := cat.LookupLevel("instance-1")
	if err != nil {
		t.Fatalf("LookupLevel: %v", err)
	}
	if level != resource.Instance {
		t.Errorf("LookupLevel(instance-1) = %v, want Instance", level)
	}

	parent, err := cat.LookupParent("instance-1")
	if err != nil {
		t.Fatalf("LookupParent: %v", err)
	}
	if parent != "series-1" {
		t.Errorf("LookupParent(instance-1) = %q, want series-1", parent)
	}

	kids, err := cat.Children("series-1")
	if err != nil {
		t.Fatalf("Children: %v", err)
	}
	if len(kids) != 1 || kids[0] != "instance-1" {
		t.Errorf("Children(series-1) = %v, want [instance-1]", kids)
	}
}

func TestAddInstanceSharesExistingAncestors(t *testing.T) {
	cat := NewMemoryCatalog()
	cat.AddInstance("patient-1", "study-1", "series-1", "instance-1", 10, nil)
	cat.AddInstance("patient-1", "study-1", "series-1", "instance-2", 20, nil)

	kids, err := cat.Children("series-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(kids) != 2 {
		t.Fatalf("Children(series-1) = %v, want 2 entries", kids)
	}
}

func TestLookupUnknownResourceFails(t *testing.T) {
	cat := NewMemoryCatalog()
	if _, err := cat.LookupLevel("ghost"); !errors.Is(err, ErrNotFound) {
		t.Errorf("LookupLevel(ghost) error = %v, want ErrNotFound", err)
	}
	if _, err := cat.LookupAttachment("ghost", ContentDicom); !errors.Is(err, ErrNotFound) {
		t.Errorf("LookupAttachment(ghost) error = %v, want ErrNotFound", err)
	}
}

func TestMainDicomTagsReturnsAncestorTags(t *testing.T) {
	cat := NewMemoryCatalog()
	patientTags := map[dicom.Tag]string{dicom.TagPatientID: "PAT1"}
	cat.AddInstance("patient-1", "study-1", "series-1", "instance-1", 10, nil, patientTags)

	tags, err := cat.MainDicomTags("patient-1", resource.Patient)
	if err != nil {
		t.Fatalf("MainDicomTags: %v", err)
	}
	if tags[dicom.TagPatientID] != "PAT1" {
		t.Errorf("MainDicomTags(patient-1)[PatientID] = %q, want PAT1", tags[dicom.TagPatientID])
	}
}

func TestRemoveAttachmentCausesSubsequentLookupToFail(t *testing.T) {
	cat := NewMemoryCatalog()
	cat.AddInstance("patient-1", "study-1", "series-1", "instance-1", 10, nil)

	if _, err := cat.LookupAttachment("instance-1", ContentDicom); err != nil {
		t.Fatalf("LookupAttachment before removal: %v", err)
	}

	cat.RemoveAttachment("instance-1")

	if _, err := cat.LookupAttachment("instance-1", ContentDicom); !errors.Is(err, ErrNotFound) {
		t.Errorf("LookupAttachment after removal error = %v, want ErrNotFound", err)
	}
}
