// Package bp reads partitioned numeric arrays from BP-lite files written by
// distributed simulations.
//
// A simulation run by N ranks stores each partitioned variable V as three
// records: V/local_dim and V/offset, one int32 per writer rank, and V/array,
// a 1-D global array in which rank r owns the elements
// [offset_r, offset_r+local_dim_r). Read recovers exactly the block one rank
// wrote:
//
//	f, err := bp.Open("kernels.bp", bp.NewComm("world", rank, size))
//	if err != nil {
//		return err
//	}
//	defer f.Close()
//
//	kappa, err := bp.Read[float32](f, "kappa_kl", rank)
//
// Read is built from the lower-level scheduling API. ScheduleRead queues a
// read of a selection into a caller-owned slice; PerformReads executes every
// queued read as one batch, merging nearby extents into single requests:
//
//	dim := make([]int32, 1)
//	off := make([]int32, 1)
//	f.ScheduleRead(bp.WriteBlock(rank), "kappa_kl/local_dim", dim)
//	f.ScheduleRead(bp.WriteBlock(rank), "kappa_kl/offset", off)
//	err := f.PerformReads()
//
// Storage failures are reported as *IOError. Reading into a slice whose
// element type differs from the stored one fails with *TypeMismatchError
// before any data is moved.
//
// A File serves one reader session: opening the same path twice within one
// (comm, rank) pair fails with ErrSessionBusy until the first handle is
// closed. Handles are not safe for concurrent use.
package bp
