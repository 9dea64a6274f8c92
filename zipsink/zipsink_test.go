package zipsink

import (
	"archive/zip"
	"bytes"
	"testing"
)

func TestWriterNestsDirectories(t *testing.T) {
	var buf bytes.Buffer
	w := New(&buf)

	if err := w.OpenDirectory("PAT1"); err != nil {
		t.Fatal(err)
	}
	if err := w.OpenDirectory("STUDY1"); err != nil {
		t.Fatal(err)
	}
	if err := w.OpenFile("001.dcm"); err != nil {
		t.Fatal(err)
	}
	if _, err := w.Write([]byte("hello")); err != nil {
		t.Fatal(err)
	}
	if err := w.CloseDirectory(); err != nil {
		t.Fatal(err)
	}
	if err := w.CloseDirectory(); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("zip.NewReader: %v", err)
	}
	if len(zr.File) != 1 {
		t.Fatalf("len(zr.File) = %d, want 1", len(zr.File))
	}
	if zr.File[0].Name != "PAT1/STUDY1/001.dcm" {
		t.Errorf("entry name = %q, want %q", zr.File[0].Name, "PAT1/STUDY1/001.dcm")
	}
}

func TestArchiveSizeTracksBytesWritten(t *testing.T) {
	var buf bytes.Buffer
	w := New(&buf)

	if w.ArchiveSize() != 0 {
		t.Errorf("ArchiveSize() before any write = %d, want 0", w.ArchiveSize())
	}

	if err := w.OpenFile("a.dcm"); err != nil {
		t.Fatal(err)
	}
	w.Write([]byte("some bytes"))
	w.Close()

	if w.ArchiveSize() == 0 {
		t.Error("ArchiveSize() after writing and closing should be nonzero")
	}
}

func TestCloseDirectoryWithoutOpenFails(t *testing.T) {
	var buf bytes.Buffer
	w := New(&buf)

	if err := w.CloseDirectory(); err == nil {
		t.Fatal("expected error closing a directory that was never opened")
	}
}

func TestCancelStreamRejectsFurtherWrites(t *testing.T) {
	var buf bytes.Buffer
	w := New(&buf)

	if err := w.CancelStream(); err != nil {
		t.Fatal(err)
	}
	if err := w.OpenFile("a.dcm"); err == nil {
		t.Fatal("expected OpenFile to fail after CancelStream")
	}
}

func TestWriteWithoutOpenFileFails(t *testing.T) {
	var buf bytes.Buffer
	w := New(&buf)

	if _, err := w.Write([]byte("x")); err == nil {
		t.Fatal("expected Write to fail before OpenFile")
	}
}
