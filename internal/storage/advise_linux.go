//go:build linux

package storage

import (
	"os"

	"golang.org/x/sys/unix"
)

func adviseFile(f *os.File, off, n int64) {
	_ = unix.Fadvise(int(f.Fd()), off, n, unix.FADV_WILLNEED)
}

// adviseMapping issues MADV_WILLNEED over the pages covering [off, end).
func adviseMapping(data []byte, off, end int64) {
	page := int64(os.Getpagesize())
	start := off &^ (page - 1)
	_ = unix.Madvise(data[start:end], unix.MADV_WILLNEED)
}
