//go:build !linux

package scanner

import (
	"io/fs"
	"time"
)

// entryTimes falls back to modification time for creation time on
// platforms without a statx(2)-equivalent in the retrieval pack.
func entryTimes(_ string, info fs.FileInfo) (created, modified time.Time) {
	modified = info.ModTime()
	return modified, modified
}
