package bp

import (
	"fmt"
	"math"
	"reflect"

	"go.uber.org/zap"

	"github.com/robert-malhotra/go-bp/internal/batch"
	binpkg "github.com/robert-malhotra/go-bp/internal/binary"
	"github.com/robert-malhotra/go-bp/internal/dtype"
	"github.com/robert-malhotra/go-bp/internal/index"
)

// pendingRead is a scheduled read waiting for PerformReads.
type pendingRead struct {
	name string
	dt   dtype.Datatype
	dest reflect.Value
	segs []index.Segment
}

// ScheduleRead queues a read of the elements of name chosen by sel into
// dest, a slice whose length equals the number of selected elements. No data
// is read until PerformReads. dest must not be used until then.
//
// A dest whose element type does not match the stored type is rejected with
// a *TypeMismatchError; every other failure is an *IOError. A failed call
// leaves the queue as it was.
func (f *File) ScheduleRead(sel Selection, name string, dest any) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	dv := reflect.ValueOf(dest)
	if dv.Kind() != reflect.Slice {
		return newIOError("schedule", f.path, name, fmt.Errorf("%w: %T is not a slice", ErrBadDest, dest))
	}
	req, n, err := f.prepare(sel, name, dv.Type().Elem())
	if err != nil {
		return err
	}
	if uint64(dv.Len()) != n {
		return newIOError("schedule", f.path, name,
			fmt.Errorf("%w: %s selects %d elements, destination holds %d", ErrBadDest, sel, n, dv.Len()))
	}

	req.dest = dv
	f.pending = append(f.pending, req)
	return nil
}

// scheduleNew resolves sel on name, allocates a destination of exactly the
// selected length and queues the read into it. Nothing is allocated unless
// every selected element is backed by file data.
func scheduleNew[T Element](f *File, sel Selection, name string) ([]T, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	req, n, err := f.prepare(sel, name, reflect.TypeOf(*new(T)))
	if err != nil {
		return nil, err
	}
	out := make([]T, n)
	req.dest = reflect.ValueOf(out)
	f.pending = append(f.pending, req)
	return out, nil
}

// prepare checks a read of name through sel into elements of type elem and
// resolves it to file segments. The caller holds f.mu; nothing is queued.
func (f *File) prepare(sel Selection, name string, elem reflect.Type) (pendingRead, uint64, error) {
	if f.closed {
		return pendingRead{}, 0, newIOError("schedule", f.path, name, ErrClosed)
	}
	if sel == nil {
		return pendingRead{}, 0, newIOError("schedule", f.path, name, fmt.Errorf("%w: nil selection", ErrBadSelection))
	}
	v, ok := f.index.Lookup(name)
	if !ok {
		return pendingRead{}, 0, newIOError("schedule", f.path, name, ErrNotFound)
	}
	if !v.Type.Matches(elem) {
		return pendingRead{}, 0, &TypeMismatchError{Var: name, Stored: v.Type.String(), Dest: elem}
	}

	segs, n, err := sel.resolve(v)
	if err != nil {
		return pendingRead{}, 0, newIOError("schedule", f.path, name, fmt.Errorf("%s: %w", sel, err))
	}
	// Blocks may alias file bytes, so coverage alone does not bound n.
	if n > uint64(f.src.Size())/uint64(v.Type.Size) || n > math.MaxInt {
		return pendingRead{}, 0, newIOError("schedule", f.path, name,
			fmt.Errorf("%w: %s selects %d elements, more than the file holds", ErrOutOfBounds, sel, n))
	}
	return pendingRead{name: name, dt: v.Type, segs: segs}, n, nil
}

// PerformReads executes every scheduled read as one batch and blocks until
// all destinations are filled. The queue is empty afterwards, whether or not
// the batch succeeded; on failure the destinations' contents are unspecified.
func (f *File) PerformReads() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	pending := f.pending
	f.pending = nil
	if f.closed {
		return newIOError("perform", f.path, "", ErrClosed)
	}
	if len(pending) == 0 {
		return nil
	}

	type ref struct {
		req *pendingRead
		seg *index.Segment
	}
	var extents []batch.Extent
	var refs []ref
	for i := range pending {
		req := &pending[i]
		for j := range req.segs {
			seg := &req.segs[j]
			extents = append(extents, batch.Extent{Offset: int64(seg.Address), Length: int64(seg.Length)})
			refs = append(refs, ref{req: req, seg: seg})
		}
	}

	data, stats, err := batch.Fetch(f.src, extents, f.opts.coalesceGap)
	if err != nil {
		return newIOError("perform", f.path, "", err)
	}

	for i, r := range refs {
		if f.opts.checksums && r.seg.Whole && r.seg.Block.HasChecksum &&
			!binpkg.VerifyFletcher32(data[i], r.seg.Block.Checksum) {
			return newIOError("perform", f.path, r.req.name,
				fmt.Errorf("%w: block of writer %d", ErrChecksum, r.seg.Block.Writer))
		}
		if err := dtype.Decode(r.req.dt, data[i], r.req.dest, int(r.seg.At)); err != nil {
			return newIOError("perform", f.path, r.req.name, err)
		}
	}

	f.log.Debug("performed reads",
		zap.Int("requests", len(pending)),
		zap.Int("extents", stats.Extents),
		zap.Int("runs", stats.Runs),
		zap.Int64("bytes", stats.Bytes))
	return nil
}

// Pending returns the number of scheduled reads not yet performed.
func (f *File) Pending() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.pending)
}

// truncatePending drops every read queued after the first n.
func (f *File) truncatePending(n int) {
	f.mu.Lock()
	if n < len(f.pending) {
		f.pending = f.pending[:n]
	}
	f.mu.Unlock()
}
