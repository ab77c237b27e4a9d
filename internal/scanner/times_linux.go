//go:build linux

package scanner

import (
	"io/fs"
	"time"

	"golang.org/x/sys/unix"
)

// entryTimes resolves creation and modification time for one entry.
// Linux exposes a file's birth time only through statx(2); when the
// underlying filesystem doesn't report it (STATX_BTIME unset), creation
// time falls back to modification time — there is no portable substitute.
func entryTimes(path string, info fs.FileInfo) (created, modified time.Time) {
	modified = info.ModTime()

	var stx unix.Statx_t
	err := unix.Statx(unix.AT_FDCWD, path, unix.AT_SYMLINK_NOFOLLOW, unix.STATX_BTIME, &stx)
	if err != nil || stx.Mask&unix.STATX_BTIME == 0 {
		return modified, modified
	}
	return time.Unix(stx.Btime.Sec, int64(stx.Btime.Nsec)), modified
}
