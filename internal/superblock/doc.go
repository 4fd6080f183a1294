// Package superblock parses the fixed header at the start of every BP-lite
// file.
//
// The superblock is always little-endian and carries everything needed to
// locate and decode the rest of the file:
//
//	Offset  Size  Description
//	0       8     Signature 0x89 'B' 'P' 'L' '\r' '\n' 0x1a '\n'
//	8       1     Version (1)
//	9       1     Size of offsets (4 or 8)
//	10      1     Size of lengths (4 or 8)
//	11      1     Flags (reserved)
//	12      4     Writer count
//	16      O     Variable index address
//	16+O    L     Variable index size
//	16+O+L  O     EOF address
//	16+2O+L 4     Checksum (lookup3) of all preceding bytes
//
// Where O = size of offsets and L = size of lengths.
package superblock
