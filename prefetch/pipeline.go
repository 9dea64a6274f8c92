// Package prefetch implements the bounded read-ahead pool that overlaps
// blob-store fetches with ZIP writing: up to N instance reads run
// concurrently while the writer works through the command stream in
// order.
//
// The original archive job's NB_THREAD=3 pool spins on a hard-coded
// modulus-3 scan over a non-atomic "finished" flag to find a slot to
// reuse. This package replaces that with a FIFO queue of per-launch
// result channels: freeing a slot always waits on the oldest in-flight
// read, never races across slots, and needs no spin loop. Because reads
// are only ever launched in command-stream order and only ever drained
// from the queue's head, the ordering invariant (writes happen in
// exactly command-stream order even though reads may finish out of
// order) falls out of the FIFO discipline for free.
package prefetch

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"github.com/caio-sobreiro/dicomarchive/blobstore"
)

type fetchResult struct {
	payload []byte
	err     error
}

type slot struct {
	commandIndex int
	result       chan fetchResult
}

// Pipeline bounds concurrent blob-store reads to N in flight at a time.
// The bound itself is enforced by an errgroup.Group with SetLimit(n); the
// FIFO queue of per-slot result channels is what gives callers ordered,
// block-on-demand access to results regardless of completion order.
type Pipeline struct {
	n     int
	blobs blobstore.Store
	group *errgroup.Group
	queue []*slot
}

// New returns a Pipeline that allows up to n reads in flight at once. n
// is clamped to at least 1.
func New(n int, blobs blobstore.Store) *Pipeline {
	if n < 1 {
		n = 1
	}
	g := &errgroup.Group{}
	g.SetLimit(n)
	return &Pipeline{n: n, blobs: blobs, group: g}
}

// Full reports whether n reads are already in flight.
func (p *Pipeline) Full() bool {
	return len(p.queue) >= p.n
}

// Empty reports whether no reads are in flight.
func (p *Pipeline) Empty() bool {
	return len(p.queue) == 0
}

// Launch starts a read for instanceID, tagged with commandIndex so the
// caller can later match a drained result back to its WriteInstance
// command. It panics if the pipeline is already Full — callers must
// drain a slot first.
func (p *Pipeline) Launch(ctx context.Context, commandIndex int, instanceID string) {
	if p.Full() {
		panic("prefetch: Launch called while pipeline is full")
	}

	s := &slot{commandIndex: commandIndex, result: make(chan fetchResult, 1)}
	p.queue = append(p.queue, s)

	p.group.Go(func() error {
		payload, err := p.blobs.ReadDICOM(ctx, instanceID)
		switch {
		case errors.Is(err, blobstore.ErrNotFound):
			s.result <- fetchResult{payload: nil}
		case err != nil:
			s.result <- fetchResult{err: err}
		default:
			s.result <- fetchResult{payload: payload}
		}
		return nil
	})
}

// WaitOldest blocks until the oldest in-flight read (FIFO head)
// completes, removes it from the queue, and returns the command index it
// was launched for along with its payload. A nil payload with a nil
// error means the instance was gone by the time it was read (the
// attachment was removed after the archive job was issued) and the
// caller should treat this step as a skipped write, not a failure.
func (p *Pipeline) WaitOldest() (commandIndex int, payload []byte, err error) {
	s := p.queue[0]
	p.queue = p.queue[1:]
	res := <-s.result
	return s.commandIndex, res.payload, res.err
}

// DrainAll waits for every in-flight read to complete, in FIFO order,
// invoking apply for each. It is used at directory barriers and at the
// end of the command stream, where every outstanding read must be
// applied before the driver can proceed.
func (p *Pipeline) DrainAll(apply func(commandIndex int, payload []byte) error) error {
	for !p.Empty() {
		idx, payload, err := p.WaitOldest()
		if err != nil {
			return err
		}
		if err := apply(idx, payload); err != nil {
			return err
		}
	}
	return nil
}
