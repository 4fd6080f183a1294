package index

import (
	"errors"
	"fmt"
	"sort"
)

// Errors
var (
	ErrNoBlock     = errors.New("no block written by rank")
	ErrOutOfBounds = errors.New("selection out of bounds")
	ErrNotCovered  = errors.New("selection not covered by any block")
	ErrLocal       = errors.New("bounding box on a local variable")
)

// Segment is a contiguous run of elements moved from the file into a
// destination.
type Segment struct {
	Address uint64 // file address of the first byte
	Length  uint64 // bytes
	At      uint64 // destination element index of the first element

	// Block is the block the bytes come from; Whole is set when the segment
	// spans all of it.
	Block *Block
	Whole bool
}

// WriterBlock resolves the block written by rank. The returned element
// count is the block's length.
func (v *Variable) WriterBlock(rank int) ([]Segment, uint64, error) {
	if rank < 0 {
		return nil, 0, fmt.Errorf("%w %d", ErrNoBlock, rank)
	}
	for i := range v.Blocks {
		b := &v.Blocks[i]
		if int64(b.Writer) != int64(rank) {
			continue
		}
		if b.Count == 0 {
			return nil, 0, nil
		}
		seg := Segment{
			Address: b.Address,
			Length:  b.Count * uint64(v.Type.Size),
			Block:   b,
			Whole:   true,
		}
		return []Segment{seg}, b.Count, nil
	}
	return nil, 0, fmt.Errorf("%w %d", ErrNoBlock, rank)
}

// BoundingBox resolves the global element range [start, start+count).
// Where blocks overlap, the block with the lower start wins.
func (v *Variable) BoundingBox(start, count uint64) ([]Segment, error) {
	if v.IsLocal() {
		return nil, ErrLocal
	}
	end := start + count
	if end < start || end > v.Dim {
		return nil, fmt.Errorf("%w: [%d, +%d) in dimension %d", ErrOutOfBounds, start, count, v.Dim)
	}
	if count == 0 {
		return nil, nil
	}

	size := uint64(v.Type.Size)
	var segs []Segment
	for i := range v.Blocks {
		b := &v.Blocks[i]
		lo := max(start, b.Start)
		hi := min(end, b.Start+b.Count)
		if lo >= hi {
			continue
		}
		segs = append(segs, Segment{
			Address: b.Address + (lo-b.Start)*size,
			Length:  (hi - lo) * size,
			At:      lo - start,
			Block:   b,
			Whole:   lo == b.Start && hi == b.Start+b.Count,
		})
	}
	sort.SliceStable(segs, func(i, j int) bool { return segs[i].At < segs[j].At })

	// Walk the segments in destination order, trimming overlaps and
	// rejecting gaps.
	var cursor uint64
	out := segs[:0]
	for _, s := range segs {
		n := s.Length / size
		if s.At+n <= cursor {
			continue
		}
		if s.At > cursor {
			break
		}
		if skip := cursor - s.At; skip > 0 {
			s.Address += skip * size
			s.Length -= skip * size
			s.At = cursor
			s.Whole = false
		}
		out = append(out, s)
		cursor = s.At + s.Length/size
	}
	if cursor < count {
		return nil, fmt.Errorf("%w: element %d of [%d, +%d)", ErrNotCovered, start+cursor, start, count)
	}
	return out, nil
}
