// Package zipsink adapts the standard library's archive/zip to the
// hierarchical ZipSink contract the WriterDriver drives: open/close
// directory calls push and pop a path prefix, since archive/zip itself
// only knows flat entry names.
package zipsink

import (
	"archive/zip"
	"io"
	"strings"

	archiveerr "github.com/caio-sobreiro/dicomarchive/errors"
)

// Sink is the contract a WriterDriver writes an archive through.
type Sink interface {
	SetZip64(zip64 bool)
	OpenDirectory(name string) error
	CloseDirectory() error
	OpenFile(name string) error
	Write(p []byte) (int, error)
	Close() error
	CancelStream() error
	ArchiveSize() uint64
}

type countingWriter struct {
	w io.Writer
	n uint64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += uint64(n)
	return n, err
}

// Writer is the archive/zip-backed Sink implementation. It works
// identically whether constructed over a file or an arbitrary
// io.Writer: archive/zip always writes data descriptors rather than
// seeking back to patch headers, so neither mode needs special-casing,
// and archive/zip upgrades individual entries to the ZIP64 format
// automatically once their declared size crosses the format's limit —
// SetZip64 here only stores the flag; nothing reads it back and it does
// not change the bytes written (see DESIGN.md).
type Writer struct {
	counting *countingWriter
	zw       *zip.Writer
	stack    []string
	current  io.Writer
	zip64    bool
	canceled bool
}

// New wraps w as a Sink. w may be an *os.File (asynchronous/file-backed
// target) or any other io.Writer (a caller-owned synchronous stream).
func New(w io.Writer) *Writer {
	cw := &countingWriter{w: w}
	return &Writer{counting: cw, zw: zip.NewWriter(cw)}
}

func (s *Writer) SetZip64(zip64 bool) {
	s.zip64 = zip64
}

func (s *Writer) OpenDirectory(name string) error {
	s.stack = append(s.stack, name)
	return nil
}

func (s *Writer) CloseDirectory() error {
	if len(s.stack) == 0 {
		return archiveerr.ErrInternal
	}
	s.stack = s.stack[:len(s.stack)-1]
	return nil
}

func (s *Writer) OpenFile(name string) error {
	if s.canceled {
		return archiveerr.ErrBadSequenceOfCalls
	}

	full := name
	if len(s.stack) > 0 {
		full = strings.Join(s.stack, "/") + "/" + name
	}

	w, err := s.zw.CreateHeader(&zip.FileHeader{Name: full, Method: zip.Deflate})
	if err != nil {
		return err
	}
	s.current = w
	return nil
}

func (s *Writer) Write(p []byte) (int, error) {
	if s.canceled || s.current == nil {
		return 0, archiveerr.ErrBadSequenceOfCalls
	}
	return s.current.Write(p)
}

func (s *Writer) Close() error {
	return s.zw.Close()
}

// CancelStream marks the sink canceled, rejecting further writes. The
// partial bytes already flushed to a streaming target cannot be
// unsent; it is the caller's job to discard a file-backed target by
// removing the underlying file once canceled.
func (s *Writer) CancelStream() error {
	s.canceled = true
	return nil
}

func (s *Writer) ArchiveSize() uint64 {
	return s.counting.n
}
