//go:build !linux

package storage

import "os"

func adviseFile(*os.File, int64, int64) {}

func adviseMapping([]byte, int64, int64) {}
