package index

import (
	"errors"
	"testing"
)

func arrayVar() *Variable {
	// Three writers; writer 2 overlaps the tail of writer 1 and there is a
	// hole at [10, 12).
	return &Variable{
		Name: "v", Type: float32LE, Dim: 14,
		Blocks: []Block{
			{Writer: 0, Start: 0, Count: 4, Address: 1000},
			{Writer: 1, Start: 4, Count: 4, Address: 2000},
			{Writer: 2, Start: 6, Count: 4, Address: 3000},
			{Writer: 3, Start: 12, Count: 2, Address: 4000},
		},
	}
}

func TestWriterBlock(t *testing.T) {
	v := arrayVar()

	segs, n, err := v.WriterBlock(1)
	if err != nil {
		t.Fatalf("WriterBlock failed: %v", err)
	}
	if n != 4 || len(segs) != 1 {
		t.Fatalf("got %d elements in %d segments", n, len(segs))
	}
	s := segs[0]
	if s.Address != 2000 || s.Length != 16 || s.At != 0 || !s.Whole || s.Block.Writer != 1 {
		t.Errorf("unexpected segment %+v", s)
	}

	for _, rank := range []int{-1, 7} {
		if _, _, err := v.WriterBlock(rank); !errors.Is(err, ErrNoBlock) {
			t.Errorf("rank %d: expected ErrNoBlock, got %v", rank, err)
		}
	}
}

func TestBoundingBoxSingleBlock(t *testing.T) {
	segs, err := arrayVar().BoundingBox(4, 2)
	if err != nil {
		t.Fatalf("BoundingBox failed: %v", err)
	}
	if len(segs) != 1 {
		t.Fatalf("expected 1 segment, got %d", len(segs))
	}
	s := segs[0]
	if s.Address != 2000 || s.Length != 8 || s.At != 0 || s.Whole {
		t.Errorf("unexpected segment %+v", s)
	}
}

func TestBoundingBoxSpanningBlocks(t *testing.T) {
	segs, err := arrayVar().BoundingBox(2, 8)
	if err != nil {
		t.Fatalf("BoundingBox failed: %v", err)
	}

	want := []Segment{
		{Address: 1008, Length: 8, At: 0},
		{Address: 2000, Length: 16, At: 2},
		{Address: 3008, Length: 8, At: 6},
	}
	if len(segs) != len(want) {
		t.Fatalf("expected %d segments, got %d: %+v", len(want), len(segs), segs)
	}
	for i, w := range want {
		s := segs[i]
		if s.Address != w.Address || s.Length != w.Length || s.At != w.At {
			t.Errorf("segment %d = %+v, want %+v", i, s, w)
		}
	}
	if !segs[1].Whole || segs[2].Whole {
		t.Error("Whole flags wrong")
	}
}

func TestBoundingBoxErrors(t *testing.T) {
	v := arrayVar()

	tests := []struct {
		name         string
		start, count uint64
		want         error
	}{
		{"hole", 8, 4, ErrNotCovered},
		{"past end", 12, 3, ErrOutOfBounds},
		{"overflow", ^uint64(0), 2, ErrOutOfBounds},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := v.BoundingBox(tt.start, tt.count); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}

	local := &Variable{Name: "l", Type: int32LE, Blocks: []Block{{Count: 1}}}
	if _, err := local.BoundingBox(0, 1); !errors.Is(err, ErrLocal) {
		t.Errorf("expected ErrLocal, got %v", err)
	}
}

func TestBoundingBoxEmpty(t *testing.T) {
	segs, err := arrayVar().BoundingBox(14, 0)
	if err != nil || len(segs) != 0 {
		t.Errorf("empty selection: %v, %v", segs, err)
	}
}
