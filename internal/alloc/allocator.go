package alloc

import (
	"fmt"
	"sort"
	"sync"
)

// Allocator hands out file regions in address order.
type Allocator struct {
	mu      sync.Mutex
	base    uint64
	eof     uint64
	regions []Region
}

// Region is one allocated range of the file.
type Region struct {
	Addr uint64
	Size uint64
	Tag  string // owner, e.g. a variable name
}

// New returns an allocator whose first region starts at base.
func New(base uint64) *Allocator {
	return &Allocator{base: base, eof: base}
}

// AllocAligned places size bytes at the next multiple of alignment. A
// zero-sized request gets that address and records nothing.
func (a *Allocator) AllocAligned(size, alignment uint64, tag string) uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()

	if alignment > 1 {
		if r := a.eof % alignment; r != 0 {
			a.eof += alignment - r
		}
	}
	addr := a.eof
	if size == 0 {
		return addr
	}
	a.eof += size
	a.regions = append(a.regions, Region{Addr: addr, Size: size, Tag: tag})
	return addr
}

// EOF returns the address one past the last allocated byte.
func (a *Allocator) EOF() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.eof
}

// Validate checks that every region lies in [base, EOF) and that no two
// regions overlap.
func (a *Allocator) Validate() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	regions := append([]Region(nil), a.regions...)
	sort.Slice(regions, func(i, j int) bool { return regions[i].Addr < regions[j].Addr })
	for i, r := range regions {
		if r.Addr < a.base || r.Addr+r.Size > a.eof {
			return fmt.Errorf("region %q [0x%x, +%d) outside [0x%x, 0x%x)", r.Tag, r.Addr, r.Size, a.base, a.eof)
		}
		if i > 0 {
			prev := regions[i-1]
			if prev.Addr+prev.Size > r.Addr {
				return fmt.Errorf("regions %q [0x%x, +%d) and %q [0x%x, +%d) overlap",
					prev.Tag, prev.Addr, prev.Size, r.Tag, r.Addr, r.Size)
			}
		}
	}
	return nil
}
