package bp

import (
	"fmt"

	"github.com/robert-malhotra/go-bp/internal/index"
)

// Selection describes which elements of a variable a scheduled read
// fetches. Selections are values; they hold no reference to a file.
type Selection interface {
	fmt.Stringer

	// resolve maps the selection onto v's blocks, returning the file
	// segments and the number of elements selected.
	resolve(v *index.Variable) ([]index.Segment, uint64, error)
}

type writeBlock struct {
	rank int
}

// WriteBlock selects whatever block writer rank wrote, wherever it lies in
// the variable's global space.
func WriteBlock(rank int) Selection {
	return writeBlock{rank: rank}
}

func (s writeBlock) resolve(v *index.Variable) ([]index.Segment, uint64, error) {
	return v.WriterBlock(s.rank)
}

func (s writeBlock) String() string {
	return fmt.Sprintf("writeblock(%d)", s.rank)
}

type boundingBox struct {
	start []uint64
	count []uint64
}

// BoundingBox selects the elements [start, start+count) of a global array.
// Files are addressed in one dimension, so both slices must have length 1.
func BoundingBox(start, count []uint64) Selection {
	return boundingBox{
		start: append([]uint64(nil), start...),
		count: append([]uint64(nil), count...),
	}
}

func (s boundingBox) resolve(v *index.Variable) ([]index.Segment, uint64, error) {
	if len(s.start) != 1 || len(s.count) != 1 {
		return nil, 0, fmt.Errorf("%w: %d-D bounding box on a 1-D variable", ErrBadSelection, max(len(s.start), len(s.count)))
	}
	segs, err := v.BoundingBox(s.start[0], s.count[0])
	if err != nil {
		return nil, 0, err
	}
	return segs, s.count[0], nil
}

func (s boundingBox) String() string {
	return fmt.Sprintf("boundingbox(%v, %v)", s.start, s.count)
}
