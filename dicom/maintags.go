package dicom

// Tags used by the archive job to derive folder names and DICOMDIR
// records. Kept separate from determineVR's dictionary since these are
// referenced by name from other packages, not just looked up by value.
var (
	TagPatientID         = Tag{Group: 0x0010, Element: 0x0020}
	TagPatientName       = Tag{Group: 0x0010, Element: 0x0010}
	TagAccessionNumber   = Tag{Group: 0x0008, Element: 0x0050}
	TagStudyDescription  = Tag{Group: 0x0008, Element: 0x1030}
	TagModality          = Tag{Group: 0x0008, Element: 0x0060}
	TagSeriesDescription = Tag{Group: 0x0008, Element: 0x103E}
	TagSOPInstanceUID    = Tag{Group: 0x0008, Element: 0x0018}
	TagStudyInstanceUID  = Tag{Group: 0x0020, Element: 0x000D}
	TagSeriesInstanceUID = Tag{Group: 0x0020, Element: 0x000E}
)
