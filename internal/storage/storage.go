// Package storage provides the byte sources a BP-lite file is read from.
//
// Two implementations exist: a pread source over *os.File and a read-only
// memory mapping. Both satisfy [Source]; callers pick one at open time.
package storage

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/edsrzf/mmap-go"
)

// ErrClosed is returned by operations on a closed source.
var ErrClosed = errors.New("source is closed")

// Source is a random-access, read-only view of a file.
type Source interface {
	io.ReaderAt
	io.Closer

	// Size returns the length of the underlying file in bytes.
	Size() int64

	// WillNeed hints that [off, off+n) is about to be read. It never fails;
	// platforms without read-ahead advice ignore it.
	WillNeed(off, n int64)
}

var _ Source = (*fileSource)(nil)

type fileSource struct {
	f    *os.File
	size int64
}

// OpenFile opens path for positional reads.
func OpenFile(path string) (Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	return &fileSource{f: f, size: st.Size()}, nil
}

// ReadAt implements the Source interface.
func (s *fileSource) ReadAt(p []byte, off int64) (int, error) {
	return s.f.ReadAt(p, off)
}

// Close implements the Source interface.
func (s *fileSource) Close() error {
	return s.f.Close()
}

func (s *fileSource) Size() int64 {
	return s.size
}

func (s *fileSource) WillNeed(off, n int64) {
	adviseFile(s.f, off, n)
}

var _ Source = (*mmapSource)(nil)

type mmapSource struct {
	f    *os.File
	data mmap.MMap
}

// OpenMmap maps path read-only. Empty files cannot be mapped and are
// served by a pread source instead.
func OpenMmap(path string) (Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if st.Size() == 0 {
		return &fileSource{f: f}, nil
	}
	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("mmap %s: %w", path, err)
	}
	return &mmapSource{f: f, data: m}, nil
}

// ReadAt implements the Source interface.
func (s *mmapSource) ReadAt(p []byte, off int64) (int, error) {
	if s.data == nil {
		return 0, ErrClosed
	}
	if off < 0 {
		return 0, fmt.Errorf("negative offset %d", off)
	}
	if off >= int64(len(s.data)) {
		return 0, io.EOF
	}
	n := copy(p, s.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// Close unmaps the file and closes it. Closing twice reports ErrClosed.
func (s *mmapSource) Close() error {
	if s.data == nil {
		return ErrClosed
	}
	var firstErr error
	if err := s.data.Unmap(); err != nil {
		firstErr = fmt.Errorf("unmap: %w", err)
	}
	s.data = nil
	if err := s.f.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

func (s *mmapSource) Size() int64 {
	return int64(len(s.data))
}

func (s *mmapSource) WillNeed(off, n int64) {
	if s.data == nil || off < 0 || n <= 0 || off >= int64(len(s.data)) {
		return
	}
	end := min(off+n, int64(len(s.data)))
	adviseMapping(s.data, off, end)
}
