// Package dtype describes the numeric element types stored in BP-lite files
// and moves raw element bytes into Go slices.
//
// # Type Mapping
//
//	Class    | Size | Go kinds
//	---------|------|-----------------------------------------
//	Integer  | 1-8  | int8..int64, uint8..uint64, int, uint, uintptr
//	Float    | 4, 8 | float32, float64
//
// A destination is compatible with a datatype when class, width and
// signedness agree. Byte order is not part of compatibility: [Decode] copies
// the raw bytes into the destination's backing array and swaps them in place
// when the stored order differs from the host's.
//
// No value conversion is ever performed. Reading float32 data into []float64
// is rejected rather than widened.
package dtype
