//go:build windows

package archive

import (
	"os"
	"time"
)

// Windows has no uid/gid and exposes no direct access-time field on
// os.FileInfo, so both fall back to zero/mtime.
func ownerIDs(info os.FileInfo) (uid, gid uint32) {
	return 0, 0
}

func accessTime(info os.FileInfo) time.Time {
	return info.ModTime()
}
