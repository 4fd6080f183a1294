// Package batch turns a set of pending byte extents into as few positional
// reads as possible.
//
// Extents are sorted by offset and merged into runs when they overlap, touch,
// or are separated by no more than a configurable gap. Each run is fetched
// with a single ReadAt, and every extent receives a sub-slice of its run's
// buffer.
package batch

import (
	"fmt"
	"io"
	"sort"
)

// ReaderAt is the source a batch is fetched from.
type ReaderAt interface {
	io.ReaderAt
	WillNeed(off, n int64)
}

// Extent is one requested byte range.
type Extent struct {
	Offset int64
	Length int64
}

func (e Extent) end() int64 {
	return e.Offset + e.Length
}

// Run is a merged range covering one or more extents.
type Run struct {
	Offset  int64
	Length  int64
	Members []int // indexes into the planned extents
}

// Stats summarizes a fetched batch.
type Stats struct {
	Extents int
	Runs    int
	Bytes   int64 // bytes read, gaps included
}

// Plan groups extents into runs. Extents of zero length belong to no run.
func Plan(extents []Extent, gap int64) []Run {
	order := make([]int, 0, len(extents))
	for i, e := range extents {
		if e.Length > 0 {
			order = append(order, i)
		}
	}
	sort.SliceStable(order, func(a, b int) bool {
		return extents[order[a]].Offset < extents[order[b]].Offset
	})

	var runs []Run
	for _, i := range order {
		e := extents[i]
		if n := len(runs); n > 0 {
			last := &runs[n-1]
			if e.Offset <= last.Offset+last.Length+gap {
				if end := e.end(); end > last.Offset+last.Length {
					last.Length = end - last.Offset
				}
				last.Members = append(last.Members, i)
				continue
			}
		}
		runs = append(runs, Run{Offset: e.Offset, Length: e.Length, Members: []int{i}})
	}
	return runs
}

// Fetch reads every extent from src using the runs produced by Plan and
// returns one byte slice per extent, in input order.
func Fetch(src ReaderAt, extents []Extent, gap int64) ([][]byte, Stats, error) {
	for i, e := range extents {
		if e.Offset < 0 || e.Length < 0 || e.end() < e.Offset {
			return nil, Stats{}, fmt.Errorf("extent %d: invalid range [%d, +%d)", i, e.Offset, e.Length)
		}
	}

	runs := Plan(extents, gap)
	stats := Stats{Extents: len(extents), Runs: len(runs)}
	for _, run := range runs {
		src.WillNeed(run.Offset, run.Length)
	}

	out := make([][]byte, len(extents))
	for i := range out {
		out[i] = []byte{}
	}
	for _, run := range runs {
		buf := make([]byte, run.Length)
		n, err := src.ReadAt(buf, run.Offset)
		if int64(n) < run.Length {
			if err == nil || err == io.EOF {
				err = io.ErrUnexpectedEOF
			}
			return nil, stats, fmt.Errorf("reading [%d, +%d): %w", run.Offset, run.Length, err)
		}
		stats.Bytes += run.Length
		for _, i := range run.Members {
			e := extents[i]
			lo := e.Offset - run.Offset
			out[i] = buf[lo : lo+e.Length]
		}
	}
	return out, stats, nil
}
