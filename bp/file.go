package bp

import (
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/zeebo/errs"
	"go.uber.org/zap"

	"github.com/robert-malhotra/go-bp/internal/index"
	"github.com/robert-malhotra/go-bp/internal/storage"
	"github.com/robert-malhotra/go-bp/internal/superblock"
)

// File is an open, read-only BP file. It owns one reader session: the file
// is held open from Open until Close.
//
// A File is not safe for concurrent schedule/perform cycles. Callers that
// share one between goroutines must serialize Read, ScheduleRead and
// PerformReads themselves.
type File struct {
	path    string
	comm    Comm
	session uuid.UUID
	key     sessionKey
	opts    *fileOptions
	log     *zap.Logger

	src   storage.Source
	sb    *superblock.Superblock
	index *index.Index

	mu      sync.Mutex
	pending []pendingRead
	closed  bool
}

// sessionKey identifies an exclusive reader session.
type sessionKey struct {
	path string
	comm string
	rank int
}

var sessions = struct {
	sync.Mutex
	live map[sessionKey]uuid.UUID
}{live: make(map[sessionKey]uuid.UUID)}

var closeFaults atomic.Uint64

// CloseFaults returns how many Close calls in this process failed to release
// their file cleanly.
func CloseFaults() uint64 {
	return closeFaults.Load()
}

func acquireSession(key sessionKey, id uuid.UUID) error {
	sessions.Lock()
	defer sessions.Unlock()
	if owner, ok := sessions.live[key]; ok {
		return fmt.Errorf("%w (session %s)", ErrSessionBusy, owner)
	}
	sessions.live[key] = id
	return nil
}

func releaseSession(key sessionKey) {
	sessions.Lock()
	delete(sessions.live, key)
	sessions.Unlock()
}

// Open opens the file at path for reading in the process group comm. A nil
// comm means World(). Every failure is reported as an *IOError and leaves
// nothing open.
func Open(path string, comm Comm, opts ...FileOption) (*File, error) {
	o := defaultFileOptions()
	for _, opt := range opts {
		opt(o)
	}
	if comm == nil {
		comm = World()
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, newIOError("open", path, "", err)
	}
	f := &File{
		path:    path,
		comm:    comm,
		session: uuid.New(),
		key:     sessionKey{path: abs, comm: comm.ID(), rank: comm.Rank()},
		opts:    o,
	}
	f.log = o.logger.With(
		zap.String("path", path),
		zap.Stringer("session", f.session),
		zap.String("comm", comm.ID()),
		zap.Int("rank", comm.Rank()),
	)

	if err := acquireSession(f.key, f.session); err != nil {
		return nil, newIOError("open", path, "", err)
	}
	if err := f.load(); err != nil {
		releaseSession(f.key)
		return nil, newIOError("open", path, "", err)
	}

	f.log.Debug("opened",
		zap.Uint32("writers", f.sb.Writers),
		zap.Int("variables", len(f.index.Names())),
		zap.Bool("mmap", o.mmap))
	return f, nil
}

// load opens the source and parses the metadata, releasing the source if
// anything after the open fails.
func (f *File) load() (err error) {
	if f.opts.mmap {
		f.src, err = storage.OpenMmap(f.path)
	} else {
		f.src, err = storage.OpenFile(f.path)
	}
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			err = errs.Combine(err, f.src.Close())
			f.src = nil
		}
	}()

	if f.sb, err = superblock.Read(f.src); err != nil {
		return err
	}
	if f.sb.EOFAddress > uint64(f.src.Size()) {
		return fmt.Errorf("%w: EOF address %d beyond file size %d",
			superblock.ErrInvalidSuperblock, f.sb.EOFAddress, f.src.Size())
	}
	if f.index, err = index.Read(f.src, f.sb); err != nil {
		return err
	}
	return nil
}

// Close releases the file. A failure to release cleanly is returned as an
// *IOError, logged, and counted in CloseFaults so that callers which defer
// Close without checking still leave a trace. Closing twice is a no-op.
func (f *File) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return nil
	}
	f.closed = true
	f.pending = nil
	releaseSession(f.key)

	if err := f.src.Close(); err != nil {
		closeFaults.Add(1)
		f.log.Error("dirty close", zap.Error(err))
		return newIOError("close", f.path, "", err)
	}
	f.log.Debug("closed")
	return nil
}

// Session opens path, runs fn with the open file and closes it on every
// path out. Errors from fn and from Close are both reported.
func Session(path string, comm Comm, fn func(*File) error, opts ...FileOption) (err error) {
	f, err := Open(path, comm, opts...)
	if err != nil {
		return err
	}
	defer func() {
		err = errs.Combine(err, f.Close())
	}()
	return fn(f)
}

// Path returns the path the file was opened with.
func (f *File) Path() string {
	return f.path
}

// Comm returns the process group the file was opened in.
func (f *File) Comm() Comm {
	return f.comm
}

// SessionID identifies this reader session in logs.
func (f *File) SessionID() uuid.UUID {
	return f.session
}

// Writers returns the number of ranks that wrote the file.
func (f *File) Writers() int {
	return int(f.sb.Writers)
}

// Version returns the superblock version.
func (f *File) Version() int {
	return int(f.sb.Version)
}
