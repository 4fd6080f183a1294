// Package index decodes the BP-lite variable index and resolves selections
// against it.
//
// The index lists every variable with its datatype, its global dimension and
// the blocks each writer contributed. A variable with a global dimension of
// zero is local: each writer stored a private value and the blocks do not
// share an address space. All other variables are 1-D global arrays whose
// blocks occupy [Start, Start+Count) of that space.
//
// Resolving a selection produces [Segment] values, each a contiguous byte
// range of the file together with the element position it fills in the
// caller's destination. Resolution is pure arithmetic; no I/O happens here.
package index
