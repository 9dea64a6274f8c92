// Package archivejob implements the ArchiveJob façade: the state
// machine a host job engine drives through AddResource/Start/Step/Stop
// calls, wiring together an ArchiveTree selection, a Planner-built
// command stream, a WriterDriver, and a bounded prefetch pipeline.
package archivejob

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/caio-sobreiro/dicomarchive/archiveconfig"
	"github.com/caio-sobreiro/dicomarchive/archivetree"
	"github.com/caio-sobreiro/dicomarchive/archivewriter"
	"github.com/caio-sobreiro/dicomarchive/blobstore"
	"github.com/caio-sobreiro/dicomarchive/catalog"
	archiveerr "github.com/caio-sobreiro/dicomarchive/errors"
	"github.com/caio-sobreiro/dicomarchive/mediaarchive"
	"github.com/caio-sobreiro/dicomarchive/planner"
	"github.com/caio-sobreiro/dicomarchive/prefetch"
	"github.com/caio-sobreiro/dicomarchive/resource"
	"github.com/caio-sobreiro/dicomarchive/transcode"
	"github.com/caio-sobreiro/dicomarchive/zipsink"
	"github.com/caio-sobreiro/dicomarchive/zipstream"
)

// State is the job's lifecycle position. Unlike the original's implicit
// "writer_ == NULL" checks, every transition is through this explicit
// enum.
type State int

const (
	StateFresh State = iota
	StateRunning
	StateSucceeded
	StateFailed
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StateFresh:
		return "fresh"
	case StateRunning:
		return "running"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	case StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// StopReason distinguishes why a running job is being stopped.
type StopReason int

const (
	StopCancelled StopReason = iota
	StopFailure
	StopRetry
)

// StepResult is the outcome of one Step call.
type StepResult int

const (
	StepContinue StepResult = iota
	StepSuccess
	StepFailure
)

// PublicContent is the job's externally-visible summary, returned once
// the job has finished.
type PublicContent struct {
	Description        string
	InstancesCount     uint32
	UncompressedSize   uint64
	UncompressedSizeMB uint64
	ArchiveSize        uint64
	ArchiveSizeMB      uint64
	TranscodeToSyntax  string
}

// Option configures a Job at construction using the functional-options
// pattern.
type Option func(*Job)

func WithLogger(logger *slog.Logger) Option {
	return func(j *Job) { j.logger = logger }
}

func WithDescription(description string) Option {
	return func(j *Job) { j.description = description }
}

func WithExtendedSOPClass(enabled bool) Option {
	return func(j *Job) { j.enableExtendedSOPClass = enabled }
}

// Job is the ArchiveJob façade.
type Job struct {
	mu sync.Mutex

	id          string
	description string

	catalog    catalog.Catalog
	blobs      blobstore.Store
	transcoder transcode.Transcoder
	media      *mediaarchive.Registry
	cfg        archiveconfig.Config
	logger     *slog.Logger

	tree                   *archivetree.Tree
	mode                   planner.Mode
	enableExtendedSOPClass bool
	transcodeOn            bool
	transferSyntax         string

	state       State
	currentStep int

	stream   *zipstream.Stream
	driver   *archivewriter.Driver
	pipeline *prefetch.Pipeline

	syncTarget io.WriteCloser
	asyncFile  *os.File
	asyncPath  string

	mediaArchiveID   string
	instancesCount   uint32
	uncompressedSize uint64
	archiveSize      uint64
}

// New constructs a Fresh job. isMedia selects media-archive (DICOMDIR)
// layout over the default patient/study/series archive layout.
func New(
	cat catalog.Catalog,
	blobs blobstore.Store,
	transcoder transcode.Transcoder,
	media *mediaarchive.Registry,
	cfg archiveconfig.Config,
	isMedia bool,
	opts ...Option,
) *Job {
	mode := planner.ModeArchive
	if isMedia {
		mode = planner.ModeMedia
	}

	j := &Job{
		id:         uuid.NewString(),
		catalog:    cat,
		blobs:      blobs,
		transcoder: transcoder,
		media:      media,
		cfg:        cfg,
		logger:     slog.Default(),
		tree:       archivetree.New(),
		mode:       mode,
		state:      StateFresh,
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

// ID returns the job's opaque identifier.
func (j *Job) ID() string {
	return j.id
}

// State returns the job's current lifecycle state.
func (j *Job) State() State {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.state
}

func (j *Job) requireFresh() error {
	if j.state != StateFresh {
		return archiveerr.ErrBadSequenceOfCalls
	}
	return nil
}

// AddResource selects publicID (at whatever level it resolves to) for
// inclusion in the archive. Only valid while Fresh.
func (j *Job) AddResource(publicID string) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if err := j.requireFresh(); err != nil {
		return err
	}
	path, err := resource.NewPath(j.catalog, publicID)
	if err != nil {
		return err
	}
	j.tree.Add(path)
	return nil
}

// SetTranscode requests a best-effort transcode of every instance to
// transferSyntaxUID. Only valid while Fresh.
func (j *Job) SetTranscode(transferSyntaxUID string) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if err := j.requireFresh(); err != nil {
		return err
	}
	j.transcodeOn = true
	j.transferSyntax = transferSyntaxUID
	return nil
}

// AcquireSynchronousTarget binds the job to a caller-owned stream instead
// of an internally-managed temp file. May only be called once, while
// Fresh.
func (j *Job) AcquireSynchronousTarget(w io.WriteCloser) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if w == nil {
		return archiveerr.ErrNullPointer
	}
	if j.state != StateFresh || j.syncTarget != nil {
		return archiveerr.ErrBadSequenceOfCalls
	}
	j.syncTarget = w
	return nil
}

// Start expands the selection against the catalog, plans the command
// stream, opens the sink, and transitions the job to Running.
func (j *Job) Start() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.state != StateFresh {
		return archiveerr.ErrBadSequenceOfCalls
	}

	if err := j.tree.Expand(j.catalog); err != nil {
		return err
	}

	stream, err := planner.Plan(j.tree, j.catalog, j.mode)
	if err != nil {
		return err
	}
	j.stream = stream

	driverMode := archivewriter.ModeArchive
	if j.mode == planner.ModeMedia {
		driverMode = archivewriter.ModeMedia
	}
	j.driver = archivewriter.New(
		stream,
		driverMode,
		archivewriter.TranscodeRequest{Enabled: j.transcodeOn, TransferSyntax: j.transferSyntax},
		j.transcoder,
		j.cfg.Zip64SizeThreshold,
		j.cfg.Zip64InstanceThreshold,
		j.logger,
	)

	var sink zipsink.Sink
	if j.syncTarget == nil {
		f, err := os.CreateTemp("", "archivejob-*.zip")
		if err != nil {
			return err
		}
		j.asyncFile = f
		j.asyncPath = f.Name()
		sink = zipsink.New(f)
	} else {
		sink = zipsink.New(j.syncTarget)
	}

	if err := j.driver.Open(sink); err != nil {
		return err
	}

	j.pipeline = prefetch.New(j.cfg.PrefetchWorkers, j.blobs)
	j.instancesCount = stream.InstanceCount()
	j.uncompressedSize = stream.UncompressedSize()
	j.state = StateRunning

	j.logger.Info("starting archive job",
		"job_id", j.id,
		"instances", j.instancesCount,
		"uncompressed_size", humanize.Bytes(j.uncompressedSize),
		"media", j.mode == planner.ModeMedia,
	)
	return nil
}

// Step advances the job by exactly one command-stream position. Callers
// invoke it repeatedly until it returns StepSuccess or StepFailure.
func (j *Job) Step() (StepResult, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.state != StateRunning {
		return StepFailure, archiveerr.ErrBadSequenceOfCalls
	}

	if err := j.runOneStep(); err != nil {
		_ = j.driver.CancelStream()
		j.state = StateFailed
		return StepFailure, err
	}

	j.currentStep++
	j.archiveSize = j.driver.ArchiveSize()

	if j.currentStep == j.driver.StepCount() {
		if err := j.finalizeLocked(); err != nil {
			j.state = StateFailed
			return StepFailure, err
		}
		j.state = StateSucceeded
		j.logger.Info("archive job finished",
			"job_id", j.id,
			"archive_size", humanize.Bytes(j.archiveSize),
		)
		return StepSuccess, nil
	}

	return StepContinue, nil
}

func (j *Job) runOneStep() error {
	last := j.currentStep == j.driver.StepCount()-1
	if last {
		if err := j.pipeline.DrainAll(j.applyWrite); err != nil {
			return err
		}
		return j.driver.LastStep()
	}

	isWrite, err := j.driver.IsWriteInstance(j.currentStep)
	if err != nil {
		return err
	}
	if !isWrite {
		if err := j.pipeline.DrainAll(j.applyWrite); err != nil {
			return err
		}
		return j.driver.RunStep(j.currentStep, nil)
	}

	cmd, err := j.stream.At(j.currentStep)
	if err != nil {
		return err
	}

	if j.pipeline.Full() {
		idx, payload, err := j.pipeline.WaitOldest()
		if err != nil {
			return err
		}
		if err := j.applyWrite(idx, payload); err != nil {
			return err
		}
	}
	j.pipeline.Launch(context.Background(), j.currentStep, cmd.InstanceID)
	return nil
}

func (j *Job) applyWrite(commandIndex int, payload []byte) error {
	return j.driver.RunStep(commandIndex, payload)
}

func (j *Job) finalizeLocked() error {
	if err := j.driver.Close(); err != nil {
		return err
	}
	j.archiveSize = j.driver.ArchiveSize()
	j.driver = nil

	if j.asyncFile != nil {
		if err := j.asyncFile.Close(); err != nil {
			return err
		}
		j.mediaArchiveID = j.media.Add(j.asyncPath)
		j.asyncFile = nil
	}
	return nil
}

// Stop aborts a Running job (or is a no-op on an already-terminal job),
// releasing the sink and any temp file.
func (j *Job) Stop(reason StopReason) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	switch j.state {
	case StateSucceeded, StateFailed, StateCancelled:
		return nil
	}

	if j.driver != nil {
		_ = j.driver.CancelStream()
		j.driver = nil
	}
	if j.syncTarget != nil {
		_ = j.syncTarget.Close()
		j.syncTarget = nil
	}
	if j.asyncFile != nil {
		_ = j.asyncFile.Close()
		_ = os.Remove(j.asyncPath)
		j.asyncFile = nil
	}

	switch reason {
	case StopCancelled:
		j.state = StateCancelled
	default:
		j.state = StateFailed
	}
	return nil
}

// Progress returns a value in [0,1]: the fraction of steps completed, or
// 1 before a driver exists (a job that never started has nothing left to
// do) and exactly 1 once Succeeded.
func (j *Job) Progress() float64 {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.driver == nil {
		return 1
	}
	total := j.driver.StepCount()
	if total <= 1 {
		return 1
	}
	return float64(j.currentStep) / float64(total-1)
}

// PublicContent summarizes the finished job for the job engine's status
// API.
func (j *Job) PublicContent() PublicContent {
	j.mu.Lock()
	defer j.mu.Unlock()

	pc := PublicContent{
		Description:        j.description,
		InstancesCount:     j.instancesCount,
		UncompressedSize:   j.uncompressedSize,
		UncompressedSizeMB: j.uncompressedSize / (1024 * 1024),
		ArchiveSize:        j.archiveSize,
		ArchiveSizeMB:      j.archiveSize / (1024 * 1024),
	}
	if j.transcodeOn {
		pc.TranscodeToSyntax = j.transferSyntax
	}
	return pc
}

// GetOutput returns the asynchronous archive's content, if this job ran
// without AcquireSynchronousTarget and has finished.
func (j *Job) GetOutput() (io.ReadCloser, string, bool) {
	j.mu.Lock()
	id := j.mediaArchiveID
	j.mu.Unlock()

	if id == "" {
		return nil, "", false
	}
	return j.media.Open(id)
}

// Reset always fails: an archive job cannot be restarted from its
// current selection, mirroring the original's ArchiveJob::Reset, which
// unconditionally throws.
func (j *Job) Reset() error {
	return fmt.Errorf("%w: archive jobs cannot be reset", archiveerr.ErrBadSequenceOfCalls)
}

// Close releases the job's asynchronous archive from the shared
// registry, if any. The host job engine calls this when disposing of a
// finished job, the scoped-resource-release analogue of the original's
// destructor-driven cleanup.
func (j *Job) Close() error {
	j.mu.Lock()
	id := j.mediaArchiveID
	j.mediaArchiveID = ""
	j.mu.Unlock()

	if id == "" {
		return nil
	}
	return j.media.Remove(id)
}
