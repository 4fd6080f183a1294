package bp

import "go.uber.org/zap"

// DefaultCoalesceGap is the largest hole, in bytes, PerformReads reads
// through to merge two pending extents into one request.
const DefaultCoalesceGap = 4096

// FileOption configures how a file is opened and read.
type FileOption func(*fileOptions)

type fileOptions struct {
	mmap        bool
	checksums   bool
	coalesceGap int64
	logger      *zap.Logger
}

func defaultFileOptions() *fileOptions {
	return &fileOptions{
		coalesceGap: DefaultCoalesceGap,
		logger:      zap.NewNop(),
	}
}

// WithMmap serves reads from a read-only memory mapping instead of
// positional reads.
func WithMmap(enabled bool) FileOption {
	return func(o *fileOptions) {
		o.mmap = enabled
	}
}

// WithChecksums verifies the Fletcher-32 checksum of every block that a
// batch reads in full.
func WithChecksums(enabled bool) FileOption {
	return func(o *fileOptions) {
		o.checksums = enabled
	}
}

// WithCoalesceGap sets the merge distance used by PerformReads. Negative
// values are ignored; 0 merges only touching or overlapping extents.
func WithCoalesceGap(bytes int64) FileOption {
	return func(o *fileOptions) {
		if bytes >= 0 {
			o.coalesceGap = bytes
		}
	}
}

// WithLogger sets the logger used for session events and teardown faults.
func WithLogger(logger *zap.Logger) FileOption {
	return func(o *fileOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}
