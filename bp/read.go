package bp

import (
	"fmt"

	"golang.org/x/exp/constraints"
)

// Element is any Go numeric type a variable can be read into. The type must
// match the stored element exactly; no conversion is performed.
type Element interface {
	constraints.Integer | constraints.Float
}

// Sub-record names of a partitioned variable.
const (
	localDimSuffix = "/local_dim"
	offsetSuffix   = "/offset"
	arraySuffix    = "/array"
)

// Extent returns the global offset and length of the block rank wrote for
// the partitioned variable name. Both values are read from the file in one
// batch on every call; reads the caller queued earlier join that batch.
func Extent(f *File, name string, rank int) (offset, length uint64, err error) {
	mark := f.Pending()
	sel := WriteBlock(rank)

	dim, err := scheduleNew[int32](f, sel, name+localDimSuffix)
	if err != nil {
		return 0, 0, err
	}
	off, err := scheduleNew[int32](f, sel, name+offsetSuffix)
	if err != nil {
		f.truncatePending(mark)
		return 0, 0, err
	}
	if len(dim) != 1 || len(off) != 1 {
		f.truncatePending(mark)
		return 0, 0, newIOError("read", f.path, name,
			fmt.Errorf("%w: rank %d wrote %d local_dim and %d offset values", ErrCorruptExtent, rank, len(dim), len(off)))
	}
	if err := f.PerformReads(); err != nil {
		return 0, 0, err
	}

	if dim[0] < 0 || off[0] < 0 {
		return 0, 0, newIOError("read", f.path, name,
			fmt.Errorf("%w: rank %d has local_dim=%d offset=%d", ErrCorruptExtent, rank, dim[0], off[0]))
	}
	return uint64(off[0]), uint64(dim[0]), nil
}

// Read returns the block rank wrote for the partitioned variable name: the
// elements [offset, offset+local_dim) of name/array, where both bounds come
// from name/local_dim and name/offset.
//
// Any failure scheduling or performing either batch is an *IOError; a T that
// does not match the stored elements is a *TypeMismatchError. The result is
// allocated only once the whole range is known to be backed by file data. No
// state is kept between calls.
func Read[T Element](f *File, name string, rank int) ([]T, error) {
	offset, length, err := Extent(f, name, rank)
	if err != nil {
		return nil, err
	}

	arrayName := name + arraySuffix
	v, ok := f.index.Lookup(arrayName)
	if !ok {
		return nil, newIOError("read", f.path, arrayName, ErrNotFound)
	}
	if v.IsLocal() || offset+length < offset || offset+length > v.Dim {
		return nil, newIOError("read", f.path, name,
			fmt.Errorf("%w: [%d, +%d) outside global dimension %d", ErrCorruptExtent, offset, length, v.Dim))
	}

	out, err := scheduleNew[T](f, BoundingBox([]uint64{offset}, []uint64{length}), arrayName)
	if err != nil {
		return nil, err
	}
	if err := f.PerformReads(); err != nil {
		return nil, err
	}
	return out, nil
}

// ReadAll returns the complete global array stored under name. Every element
// of the global dimension must be covered by a block.
func ReadAll[T Element](f *File, name string) ([]T, error) {
	v, err := f.Variable(name)
	if err != nil {
		return nil, err
	}
	if v.IsLocal() {
		return nil, newIOError("read", f.path, name, fmt.Errorf("%w: local variable has no global extent", ErrBadSelection))
	}

	out, err := scheduleNew[T](f, BoundingBox([]uint64{0}, []uint64{v.Dim()}), name)
	if err != nil {
		return nil, err
	}
	if err := f.PerformReads(); err != nil {
		return nil, err
	}
	return out, nil
}
