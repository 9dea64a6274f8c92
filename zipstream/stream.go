// Package zipstream holds the flat, ordered plan a Planner visitor
// produces from an expanded ArchiveTree: a sealed sequence of directory
// and write commands the WriterDriver replays one step at a time.
package zipstream

import (
	"fmt"

	archiveerr "github.com/caio-sobreiro/dicomarchive/errors"
)

// Kind discriminates the three command shapes a Stream can hold.
type Kind int

const (
	OpenDir Kind = iota
	CloseDir
	WriteInstance
)

// Command is one step of the plan. Name is a directory name for OpenDir,
// or the destination filename for WriteInstance; InstanceID and
// UncompressedSize are populated only for WriteInstance.
type Command struct {
	Kind             Kind
	Name             string
	InstanceID       string
	UncompressedSize uint64
}

// MediaImagesFolder is the single top-level directory DICOMDIR media
// archives place every instance under, regardless of its patient/study/
// series ancestry.
const MediaImagesFolder = "IMAGES"

// Stream is an ordered, append-only command sequence plus the running
// aggregates (instance count, uncompressed size) needed to decide
// whether the archive requires ZIP64. It is built once by a Planner
// visitor, Sealed, and then only read.
type Stream struct {
	commands         []Command
	sealed           bool
	instanceCount    uint32
	uncompressedSize uint64
}

// New returns an empty, unsealed Stream.
func New() *Stream {
	return &Stream{}
}

func (s *Stream) AddOpenDir(name string) {
	s.mustNotSealed()
	s.commands = append(s.commands, Command{Kind: OpenDir, Name: name})
}

func (s *Stream) AddCloseDir() {
	s.mustNotSealed()
	s.commands = append(s.commands, Command{Kind: CloseDir})
}

func (s *Stream) AddWriteInstance(filename, instanceID string, uncompressedSize uint64) {
	s.mustNotSealed()
	s.commands = append(s.commands, Command{
		Kind:             WriteInstance,
		Name:             filename,
		InstanceID:       instanceID,
		UncompressedSize: uncompressedSize,
	})
	s.instanceCount++
	s.uncompressedSize += uncompressedSize
}

func (s *Stream) mustNotSealed() {
	if s.sealed {
		panic("zipstream: command added to a sealed stream")
	}
}

// Seal freezes the stream. After Seal, Add* calls panic.
func (s *Stream) Seal() {
	s.sealed = true
}

// Len returns the number of commands in the stream.
func (s *Stream) Len() int {
	return len(s.commands)
}

// At returns the command at index i.
func (s *Stream) At(i int) (Command, error) {
	if i < 0 || i >= len(s.commands) {
		return Command{}, fmt.Errorf("%w: step %d", archiveerr.ErrParameterOutOfRange, i)
	}
	return s.commands[i], nil
}

// InstanceCount returns the total number of WriteInstance commands.
func (s *Stream) InstanceCount() uint32 {
	return s.instanceCount
}

// UncompressedSize returns the sum of every WriteInstance command's
// UncompressedSize.
func (s *Stream) UncompressedSize() uint64 {
	return s.uncompressedSize
}

// Zip64 size/count margins: the same headroom below the format's hard
// limits (2GiB and 65535 entries) that the original archive job leaves,
// so that per-entry ZIP metadata overhead cannot push the aggregate over
// the boundary after the decision was made.
const (
	zip64SizeMargin     = 64 * 1024 * 1024
	zip64InstanceMargin = 10
)

// RequiresZip64 applies the size/count margins to sizeThreshold and
// instanceThreshold (the format's hard limits) and reports whether this
// stream's aggregates reach or exceed the resulting, more conservative
// bounds.
func (s *Stream) RequiresZip64(sizeThreshold uint64, instanceThreshold uint32) bool {
	return s.uncompressedSize >= sizeThreshold-zip64SizeMargin ||
		s.instanceCount >= instanceThreshold-zip64InstanceMargin
}
