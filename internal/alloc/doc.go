// Package alloc places the regions of a BP file being assembled.
//
// A file is laid out append-only: the superblock, then every variable's data
// blocks, then the index. Regions are never freed. The [Allocator] hands out
// addresses past a base address, optionally aligned, and can check the
// finished layout for overlaps:
//
//	a := alloc.New(superblockSize)
//	addr := a.AllocAligned(uint64(len(block)), 8, "kappa_kl/array")
//	...
//	if err := a.Validate(); err != nil { ... }
package alloc
