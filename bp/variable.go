package bp

import (
	"strings"

	"github.com/robert-malhotra/go-bp/internal/index"
)

// Block describes one writer's contribution to a variable.
type Block struct {
	Writer int
	Start  uint64 // first global element; 0 for local variables
	Count  uint64 // elements
}

// Variable is read-only metadata about a stored variable.
type Variable struct {
	v *index.Variable
}

// Name returns the full variable name, e.g. "kappa_kl/array".
func (v *Variable) Name() string {
	return v.v.Name
}

// Type returns the stored element type, e.g. "float32" or "int32be".
func (v *Variable) Type() string {
	return v.v.Type.String()
}

// Dim returns the global dimension, 0 for local variables.
func (v *Variable) Dim() uint64 {
	return v.v.Dim
}

// IsLocal reports whether the variable holds one private value set per
// writer instead of a slice of a global array.
func (v *Variable) IsLocal() bool {
	return v.v.IsLocal()
}

// Blocks returns the variable's blocks in file order.
func (v *Variable) Blocks() []Block {
	blocks := make([]Block, len(v.v.Blocks))
	for i, b := range v.v.Blocks {
		blocks[i] = Block{Writer: int(b.Writer), Start: b.Start, Count: b.Count}
	}
	return blocks
}

// Variables returns the names of all variables in sorted order.
func (f *File) Variables() []string {
	return f.index.Names()
}

// Variable returns metadata for name.
func (f *File) Variable(name string) (*Variable, error) {
	f.mu.Lock()
	closed := f.closed
	f.mu.Unlock()
	if closed {
		return nil, newIOError("lookup", f.path, name, ErrClosed)
	}

	v, ok := f.index.Lookup(name)
	if !ok {
		return nil, newIOError("lookup", f.path, name, ErrNotFound)
	}
	return &Variable{v: v}, nil
}

// Kernels returns the names V for which the complete partitioned triple
// V/local_dim, V/offset and V/array is present.
func (f *File) Kernels() []string {
	var names []string
	for _, name := range f.index.Names() {
		base, ok := strings.CutSuffix(name, arraySuffix)
		if !ok {
			continue
		}
		arr, _ := f.index.Lookup(name)
		dim, okDim := f.index.Lookup(base + localDimSuffix)
		off, okOff := f.index.Lookup(base + offsetSuffix)
		if okDim && okOff && dim.IsLocal() && off.IsLocal() && !arr.IsLocal() {
			names = append(names, base)
		}
	}
	return names
}
