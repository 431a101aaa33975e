//go:build !linux

package cache

import (
	"os"
	"time"
)

// accessTime falls back to the modification time on platforms where the
// stat access time is not portably reachable. Eviction then degrades to
// most-recently-written ordering.
func accessTime(info os.FileInfo) time.Time {
	return info.ModTime()
}
