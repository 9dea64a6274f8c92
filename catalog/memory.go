package catalog

import (
	"fmt"
	"sync"

	"github.com/caio-sobreiro/dicomarchive/dicom"
	"github.com/caio-sobreiro/dicomarchive/resource"
)

// MemoryCatalog is a fixed, in-memory Catalog built by repeated calls to
// AddInstance. It is not a production index: there is no persistence, no
// query language, and children are returned in insertion order rather
// than any DICOM-meaningful sort.
type MemoryCatalog struct {
	mu          sync.Mutex
	levels      map[string]resource.Level
	parents     map[string]string
	children    map[string][]string
	tags        map[string]map[dicom.Tag]string
	attachments map[string]AttachmentInfo
}

// NewMemoryCatalog returns an empty MemoryCatalog.
func NewMemoryCatalog() *MemoryCatalog {
	return &MemoryCatalog{
		levels:      make(map[string]resource.Level),
		parents:     make(map[string]string),
		children:    make(map[string][]string),
		tags:        make(map[string]map[dicom.Tag]string),
		attachments: make(map[string]AttachmentInfo),
	}
}

// AddInstance registers one full Patient/Study/Series/Instance chain,
// creating any ancestor that does not already exist. instanceTags are
// attached to the instance only; ancestorTags (patient, study, series, in
// that order) seed the tags returned for those coarser resources.
func (c *MemoryCatalog) AddInstance(
	patientID, studyID, seriesID, instanceID string,
	uncompressedSize uint64,
	instanceTags map[dicom.Tag]string,
	ancestorTags ...map[dicom.Tag]string,
) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var patientTags, studyTags, seriesTags map[dicom.Tag]string
	if len(ancestorTags) > 0 {
		patientTags = ancestorTags[0]
	}
	if len(ancestorTags) > 1 {
		studyTags = ancestorTags[1]
	}
	if len(ancestorTags) > 2 {
		seriesTags = ancestorTags[2]
	}

	c.ensure(resource.Patient, patientID, "", patientTags)
	c.ensure(resource.Study, studyID, patientID, studyTags)
	c.ensure(resource.Series, seriesID, studyID, seriesTags)
	c.ensure(resource.Instance, instanceID, seriesID, instanceTags)

	c.attachments[instanceID] = AttachmentInfo{UncompressedSize: uncompressedSize, Revision: 1}
}

// RemoveAttachment drops an instance's attachment metadata so that a
// subsequent LookupAttachment call fails, simulating a file deleted after
// the archive job was issued.
func (c *MemoryCatalog) RemoveAttachment(instanceID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.attachments, instanceID)
}

func (c *MemoryCatalog) ensure(level resource.Level, id, parent string, tags map[dicom.Tag]string) {
	if _, exists := c.levels[id]; !exists {
		c.levels[id] = level
		if parent != "" {
			c.parents[id] = parent
			c.children[parent] = append(c.children[parent], id)
		}
	}
	if tags != nil {
		c.tags[id] = tags
	}
}

func (c *MemoryCatalog) LookupLevel(id string) (resource.Level, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	level, ok := c.levels[id]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return level, nil
}

func (c *MemoryCatalog) LookupParent(id string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	parent, ok := c.parents[id]
	if !ok {
		return "", fmt.Errorf("%w: parent of %s", ErrNotFound, id)
	}
	return parent, nil
}

func (c *MemoryCatalog) Children(id string) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.levels[id]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	kids := c.children[id]
	out := make([]string, len(kids))
	copy(out, kids)
	return out, nil
}

func (c *MemoryCatalog) MainDicomTags(id string, _ resource.Level) (map[dicom.Tag]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.levels[id]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	tags := c.tags[id]
	out := make(map[dicom.Tag]string, len(tags))
	for k, v := range tags {
		out[k] = v
	}
	return out, nil
}

func (c *MemoryCatalog) LookupAttachment(id string, _ ContentType) (AttachmentInfo, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	info, ok := c.attachments[id]
	if !ok {
		return AttachmentInfo{}, fmt.Errorf("%w: attachment for %s", ErrNotFound, id)
	}
	return info, nil
}
