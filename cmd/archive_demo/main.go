// Command archive_demo wires the archive job subsystem's in-memory
// reference adapters together, selects a small synthetic patient/study/
// series/instance tree, and drives an ArchiveJob to completion, writing
// the resulting ZIP to disk. It exists to exercise the subsystem
// end-to-end.
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/caio-sobreiro/dicomarchive/archiveconfig"
	"github.com/caio-sobreiro/dicomarchive/archivejob"
	"github.com/caio-sobreiro/dicomarchive/blobstore"
	"github.com/caio-sobreiro/dicomarchive/catalog"
	"github.com/caio-sobreiro/dicomarchive/dicom"
	"github.com/caio-sobreiro/dicomarchive/mediaarchive"
	"github.com/caio-sobreiro/dicomarchive/transcode"
)

func main() {
	outPath := flag.String("out", "demo-archive.zip", "Path to write the resulting ZIP")
	media := flag.Bool("media", false, "Emit a media (DICOMDIR) layout instead of the default archive layout")
	configPath := flag.String("config", "", "Optional archiveconfig YAML file")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	slog.SetDefault(logger)

	cfg, err := archiveconfig.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	cat, blobs := buildSyntheticCatalog()
	registry := mediaarchive.NewRegistry()

	job := archivejob.New(cat, blobs, transcode.Passthrough{}, registry, cfg, *media,
		archivejob.WithLogger(logger),
		archivejob.WithDescription("archive_demo synthetic selection"),
	)

	if err := job.AddResource("patient-1"); err != nil {
		logger.Error("AddResource failed", "error", err)
		os.Exit(1)
	}

	if err := job.Start(); err != nil {
		logger.Error("Start failed", "error", err)
		os.Exit(1)
	}

	for {
		result, err := job.Step()
		if err != nil {
			logger.Error("Step failed", "error", err)
			os.Exit(1)
		}
		if result == archivejob.StepSuccess {
			break
		}
	}

	content, _, ok := job.GetOutput()
	if !ok {
		logger.Error("job finished but produced no output")
		os.Exit(1)
	}
	defer content.Close()

	out, err := os.Create(*outPath)
	if err != nil {
		logger.Error("failed to create output file", "error", err)
		os.Exit(1)
	}
	defer out.Close()

	if _, err := io.Copy(out, content); err != nil {
		logger.Error("failed to write output file", "error", err)
		os.Exit(1)
	}

	pc := job.PublicContent()
	fmt.Printf("wrote %s: %d instances, %d MB uncompressed, %d MB archived\n",
		*outPath, pc.InstancesCount, pc.UncompressedSizeMB, pc.ArchiveSizeMB)

	if err := job.Close(); err != nil {
		logger.Error("failed to release job resources", "error", err)
		os.Exit(1)
	}
}

func buildSyntheticCatalog() (*catalog.MemoryCatalog, *blobstore.MemoryStore) {
	cat := catalog.NewMemoryCatalog()
	blobs := blobstore.NewMemoryStore()

	patientTags := map[dicom.Tag]string{
		dicom.TagPatientID:   "patient-1",
		dicom.TagPatientName: "Doe^Jane",
	}
	studyTags := map[dicom.Tag]string{
		dicom.TagAccessionNumber:  "ACC0001",
		dicom.TagStudyDescription: "CHEST CT",
	}
	seriesTags := map[dicom.Tag]string{
		dicom.TagModality:          "CT",
		dicom.TagSeriesDescription: "AXIAL",
	}

	for i := 1; i <= 3; i++ {
		instanceID := fmt.Sprintf("instance-%d", i)
		instanceTags := map[dicom.Tag]string{
			dicom.TagSOPInstanceUID:    fmt.Sprintf("1.2.840.999.1.%d", i),
			dicom.TagStudyInstanceUID:  "1.2.840.999.2",
			dicom.TagSeriesInstanceUID: "1.2.840.999.3",
		}
		data := syntheticDataset(instanceTags)
		blobs.Put(instanceID, data)
		cat.AddInstance("patient-1", "study-1", "series-1", instanceID, uint64(len(data)),
			instanceTags, patientTags, studyTags, seriesTags)
	}

	return cat, blobs
}

func syntheticDataset(tags map[dicom.Tag]string) []byte {
	ds := dicom.NewDataset()
	for tag, value := range tags {
		ds.AddElement(tag, dicom.VR_UI, value)
	}
	return ds.EncodeDataset()
}
