//go:build linux

package fs

import (
	iofs "io/fs"
	"syscall"
	"time"
)

func accessTime(info iofs.FileInfo, fallback time.Time) time.Time {
	if st, ok := info.Sys().(*syscall.Stat_t); ok {
		return time.Unix(st.Atim.Unix())
	}
	return fallback
}
