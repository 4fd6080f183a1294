// Package bptest assembles BP-lite files for tests.
//
// The reader never writes files; this builder exists so tests can describe a
// simulation's output (which rank wrote which block) and get the exact bytes a
// writer would have produced.
package bptest

import (
	"fmt"
	"os"
	"reflect"
	"sort"

	"golang.org/x/exp/constraints"

	"github.com/robert-malhotra/go-bp/internal/alloc"
	binpkg "github.com/robert-malhotra/go-bp/internal/binary"
	"github.com/robert-malhotra/go-bp/internal/dtype"
	"github.com/robert-malhotra/go-bp/internal/index"
	"github.com/robert-malhotra/go-bp/internal/superblock"
)

// Number is any element type a variable can hold.
type Number interface {
	constraints.Integer | constraints.Float
}

// Option configures a Builder.
type Option func(*Builder)

// WithSizes sets the width of file offsets and lengths (4 or 8).
func WithSizes(offsetSize, lengthSize uint8) Option {
	return func(b *Builder) {
		b.offsetSize = offsetSize
		b.lengthSize = lengthSize
	}
}

// WithByteOrder stores element data in the given order.
func WithByteOrder(order dtype.Order) Option {
	return func(b *Builder) {
		b.order = order
	}
}

// WithChecksums records a Fletcher-32 checksum for every block.
func WithChecksums() Option {
	return func(b *Builder) {
		b.checksums = true
	}
}

// WithWriters sets a minimum for the writer count stored in the superblock.
func WithWriters(n uint32) Option {
	return func(b *Builder) {
		b.writers = n
	}
}

// Builder collects variables and lays them out as a file.
type Builder struct {
	offsetSize uint8
	lengthSize uint8
	order      dtype.Order
	checksums  bool
	writers    uint32

	vars []*index.Variable
	data map[*index.Variable][][]byte
	err  error
}

// New returns a builder for a little-endian file with 8-byte offsets.
func New(opts ...Option) *Builder {
	b := &Builder{
		offsetSize: 8,
		lengthSize: 8,
		data:       make(map[*index.Variable][][]byte),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Block is one writer's slice of a global array.
type Block[T Number] struct {
	Writer int
	Start  uint64
	Values []T
}

// AddLocal stores one value per writer rank under name.
func AddLocal[T Number](b *Builder, name string, values map[int]T) {
	ranks := make([]int, 0, len(values))
	for r := range values {
		ranks = append(ranks, r)
	}
	sort.Ints(ranks)

	blocks := make([]Block[T], 0, len(ranks))
	for _, r := range ranks {
		blocks = append(blocks, Block[T]{Writer: r, Values: []T{values[r]}})
	}
	add(b, name, 0, blocks)
}

// AddGlobal stores a 1-D array of dimension dim assembled from blocks.
func AddGlobal[T Number](b *Builder, name string, dim uint64, blocks ...Block[T]) {
	add(b, name, dim, blocks)
}

// AddPartitioned stores the local_dim/offset/array triple of a partitioned
// variable. Rank i writes perRank[i]; blocks are laid out back to back in
// global space.
func AddPartitioned[T Number](b *Builder, name string, perRank ...[]T) {
	dims := make(map[int]int32, len(perRank))
	offsets := make(map[int]int32, len(perRank))
	blocks := make([]Block[T], 0, len(perRank))
	var next uint64
	for rank, values := range perRank {
		dims[rank] = int32(len(values))
		offsets[rank] = int32(next)
		blocks = append(blocks, Block[T]{Writer: rank, Start: next, Values: values})
		next += uint64(len(values))
	}
	AddLocal(b, name+"/local_dim", dims)
	AddLocal(b, name+"/offset", offsets)
	AddGlobal(b, name+"/array", next, blocks...)
}

func add[T Number](b *Builder, name string, dim uint64, blocks []Block[T]) {
	if b.err != nil {
		return
	}
	native, _ := dtype.Of(reflect.TypeOf(*new(T)))
	native.Order = b.order

	v := &index.Variable{Name: name, Type: native, Dim: dim}
	var payloads [][]byte
	for _, blk := range blocks {
		raw, err := dtype.Encode(native, blk.Values)
		if err != nil {
			b.err = fmt.Errorf("variable %q: %w", name, err)
			return
		}
		ib := index.Block{
			Writer: uint32(blk.Writer),
			Start:  blk.Start,
			Count:  uint64(len(blk.Values)),
		}
		if b.checksums {
			ib.HasChecksum = true
			ib.Checksum = binpkg.Fletcher32(raw)
		}
		v.Blocks = append(v.Blocks, ib)
		payloads = append(payloads, raw)

		if w := uint32(blk.Writer) + 1; w > b.writers {
			b.writers = w
		}
	}
	b.vars = append(b.vars, v)
	b.data[v] = payloads
}

// Bytes lays out the file: superblock, data blocks, then the index.
func (b *Builder) Bytes() ([]byte, error) {
	if b.err != nil {
		return nil, b.err
	}
	cfg := binpkg.Config{
		ByteOrder:  binpkg.DefaultConfig().ByteOrder,
		OffsetSize: int(b.offsetSize),
		LengthSize: int(b.lengthSize),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	sb := &superblock.Superblock{
		Version:    superblock.Version,
		OffsetSize: b.offsetSize,
		LengthSize: b.lengthSize,
		Writers:    b.writers,
	}

	layout := alloc.New(uint64(sb.Size()))
	var buf binpkg.Buffer
	w := binpkg.NewWriter(&buf, cfg)
	for _, v := range b.vars {
		for i, raw := range b.data[v] {
			align := uint64(1)
			if i == 0 {
				align = 8
			}
			addr := layout.AllocAligned(uint64(len(raw)), align, v.Name)
			v.Blocks[i].Address = addr
			if err := w.At(int64(addr)).WriteBytes(raw); err != nil {
				return nil, err
			}
		}
	}

	ix, err := index.Encode(b.vars, cfg)
	if err != nil {
		return nil, err
	}
	sb.IndexAddress = layout.AllocAligned(uint64(len(ix)), 8, "index")
	sb.IndexSize = uint64(len(ix))
	sb.EOFAddress = layout.EOF()
	if err := layout.Validate(); err != nil {
		return nil, err
	}
	if err := w.At(int64(sb.IndexAddress)).WriteBytes(ix); err != nil {
		return nil, err
	}
	if err := sb.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteFile writes the assembled file to path.
func (b *Builder) WriteFile(path string) error {
	data, err := b.Bytes()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
