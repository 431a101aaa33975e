//go:build linux

package cache

import (
	"os"
	"syscall"
	"time"
)

// accessTime returns the last access time the filesystem recorded.
func accessTime(info os.FileInfo) time.Time {
	if stat, ok := info.Sys().(*syscall.Stat_t); ok {
		return time.Unix(stat.Atim.Sec, stat.Atim.Nsec)
	}
	return info.ModTime()
}
