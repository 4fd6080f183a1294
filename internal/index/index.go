package index

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"

	binpkg "github.com/robert-malhotra/go-bp/internal/binary"
	"github.com/robert-malhotra/go-bp/internal/dtype"
	"github.com/robert-malhotra/go-bp/internal/superblock"
)

// Signature starts every variable index.
var Signature = []byte("BIDX")

// Errors
var (
	ErrCorrupt  = errors.New("corrupt variable index")
	ErrChecksum = errors.New("variable index checksum mismatch")
)

const flagChecksum = 0x01

// Block is one writer's contribution to a variable.
type Block struct {
	Writer      uint32
	Start       uint64 // first global element; 0 for local variables
	Count       uint64 // elements
	Address     uint64 // file address of the first element
	Checksum    uint32
	HasChecksum bool
}

// Variable is one named entry of the index.
type Variable struct {
	Name   string
	Type   dtype.Datatype
	Dim    uint64
	Blocks []Block
}

// IsLocal reports whether the variable holds per-writer values rather than
// slices of a global array.
func (v *Variable) IsLocal() bool {
	return v.Dim == 0
}

// Index is the decoded variable index of a file.
type Index struct {
	vars  map[string]*Variable
	names []string
}

// Lookup returns the named variable.
func (ix *Index) Lookup(name string) (*Variable, bool) {
	v, ok := ix.vars[name]
	return v, ok
}

// Names returns all variable names in sorted order.
func (ix *Index) Names() []string {
	return append([]string(nil), ix.names...)
}

// Read loads, verifies and decodes the index described by sb.
func Read(r io.ReaderAt, sb *superblock.Superblock) (*Index, error) {
	raw := make([]byte, sb.IndexSize)
	if n, err := r.ReadAt(raw, int64(sb.IndexAddress)); n < len(raw) {
		if err == nil || err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, fmt.Errorf("reading index: %w", err)
	}
	if !binpkg.VerifyTrailer(raw) {
		return nil, ErrChecksum
	}
	return decode(raw[:len(raw)-4], sb.ReaderConfig(), sb.EOFAddress)
}

func decode(raw []byte, cfg binpkg.Config, eof uint64) (*Index, error) {
	r := binpkg.NewReader(bytes.NewReader(raw), cfg)

	sig, err := r.ReadBytes(len(Signature))
	if err != nil || !bytes.Equal(sig, Signature) {
		return nil, fmt.Errorf("%w: bad signature", ErrCorrupt)
	}
	count, err := r.ReadUint32()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}

	ix := &Index{vars: make(map[string]*Variable, count)}
	for i := uint32(0); i < count; i++ {
		v, err := decodeVariable(r, eof)
		if err != nil {
			return nil, fmt.Errorf("%w: variable %d: %v", ErrCorrupt, i, err)
		}
		if _, dup := ix.vars[v.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate variable %q", ErrCorrupt, v.Name)
		}
		ix.vars[v.Name] = v
		ix.names = append(ix.names, v.Name)
	}
	if r.Pos() != int64(len(raw)) {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrCorrupt, int64(len(raw))-r.Pos())
	}
	sort.Strings(ix.names)
	return ix, nil
}

func decodeVariable(r *binpkg.Reader, eof uint64) (*Variable, error) {
	nameLen, err := r.ReadUint16()
	if err != nil {
		return nil, err
	}
	name, err := r.ReadBytes(int(nameLen))
	if err != nil {
		return nil, err
	}
	if len(name) == 0 {
		return nil, errors.New("empty name")
	}

	head, err := r.ReadBytes(4)
	if err != nil {
		return nil, err
	}
	v := &Variable{
		Name: string(name),
		Type: dtype.Datatype{
			Class:  dtype.Class(head[0]),
			Size:   head[1],
			Order:  dtype.Order(head[2]),
			Signed: head[3] != 0,
		},
	}
	if err := v.Type.Validate(); err != nil {
		return nil, fmt.Errorf("%q: %w", v.Name, err)
	}
	if v.Dim, err = r.ReadLength(); err != nil {
		return nil, err
	}
	if v.Dim > math.MaxInt64/uint64(v.Type.Size) {
		return nil, fmt.Errorf("%q: dimension %d overflows", v.Name, v.Dim)
	}

	nblocks, err := r.ReadUint32()
	if err != nil {
		return nil, err
	}
	v.Blocks = make([]Block, 0, min(nblocks, 64))
	for j := uint32(0); j < nblocks; j++ {
		b, err := decodeBlock(r)
		if err != nil {
			return nil, err
		}
		if err := v.checkBlock(b, eof); err != nil {
			return nil, fmt.Errorf("%q block %d: %w", v.Name, j, err)
		}
		v.Blocks = append(v.Blocks, b)
	}
	return v, nil
}

func decodeBlock(r *binpkg.Reader) (Block, error) {
	var b Block
	var err error
	if b.Writer, err = r.ReadUint32(); err != nil {
		return b, err
	}
	flags, err := r.ReadUint8()
	if err != nil {
		return b, err
	}
	if b.Start, err = r.ReadLength(); err != nil {
		return b, err
	}
	if b.Count, err = r.ReadLength(); err != nil {
		return b, err
	}
	if b.Address, err = r.ReadOffset(); err != nil {
		return b, err
	}
	if b.Checksum, err = r.ReadUint32(); err != nil {
		return b, err
	}
	b.HasChecksum = flags&flagChecksum != 0
	return b, nil
}

// checkBlock rejects blocks whose extents overflow or leave the file or the
// variable's global space.
func (v *Variable) checkBlock(b Block, eof uint64) error {
	size := uint64(v.Type.Size)
	if b.Count > (^uint64(0))/size {
		return fmt.Errorf("count %d overflows", b.Count)
	}
	nbytes := b.Count * size
	if b.Address+nbytes < b.Address || b.Address+nbytes > eof {
		return fmt.Errorf("data [%d, +%d) outside EOF %d", b.Address, nbytes, eof)
	}
	if v.IsLocal() {
		if b.Start != 0 {
			return fmt.Errorf("local block has start %d", b.Start)
		}
		return nil
	}
	if b.Start+b.Count < b.Start || b.Start+b.Count > v.Dim {
		return fmt.Errorf("elements [%d, +%d) outside dimension %d", b.Start, b.Count, v.Dim)
	}
	return nil
}
