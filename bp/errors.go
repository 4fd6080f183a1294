package bp

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/robert-malhotra/go-bp/internal/index"
	"github.com/robert-malhotra/go-bp/internal/superblock"
)

// Common errors. They are never returned bare: every failure reaches the
// caller as an *IOError (or *TypeMismatchError) that wraps one of these or
// the underlying system error.
var (
	ErrNotBP         = superblock.ErrNotBP
	ErrClosed        = errors.New("file is closed")
	ErrNotFound      = errors.New("variable not found")
	ErrNoBlock       = index.ErrNoBlock
	ErrOutOfBounds   = index.ErrOutOfBounds
	ErrNotCovered    = index.ErrNotCovered
	ErrLocal         = index.ErrLocal
	ErrCorruptExtent = errors.New("corrupt block extent")
	ErrChecksum      = errors.New("block checksum mismatch")
	ErrSessionBusy   = errors.New("file already open in this session")
	ErrBadSelection  = errors.New("invalid selection")
	ErrBadDest       = errors.New("invalid destination")
)

// IOError reports any failure of the storage layer: opening, closing,
// scheduling or performing reads. Each failure site builds a new value
// holding the diagnostic of that moment.
type IOError struct {
	Op   string // "open", "close", "schedule", "perform", "read"
	Path string
	Var  string // empty for file-level operations
	Err  error
}

func (e *IOError) Error() string {
	if e.Var != "" {
		return fmt.Sprintf("bp: %s %s [%s]: %v", e.Op, e.Path, e.Var, e.Err)
	}
	return fmt.Sprintf("bp: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

func newIOError(op, path, name string, err error) *IOError {
	return &IOError{Op: op, Path: path, Var: name, Err: err}
}

// TypeMismatchError is returned when a destination's element type does not
// match the width, class or signedness of the stored elements.
type TypeMismatchError struct {
	Var    string
	Stored string       // on-disk element type, e.g. "float32"
	Dest   reflect.Type // requested element type
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("bp: variable %q stores %s, cannot read into %s", e.Var, e.Stored, e.Dest)
}

// IsIOError reports whether err is or wraps an *IOError.
func IsIOError(err error) bool {
	var ioErr *IOError
	return errors.As(err, &ioErr)
}
