package notifier

import (
	"io/fs"
	"os"
	"path/filepath"
)

// osStat is a thin indirection so tests can substitute a fake stat without
// touching the real filesystem.
var osStat = os.Stat

// walkDirs invokes visit for rootPath and every descendant directory that
// is not excluded by filters. A directory's subtree is pruned entirely once
// the directory itself is excluded, matching the scanner's opacity rule for
// excluded directories (spec.md §4.4).
func walkDirs(rootPath string, filters Filters, visit func(dir string) error) error {
	return filepath.WalkDir(rootPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != rootPath && isExcludedDir(d.Name(), filters) {
			return filepath.SkipDir
		}
		return visit(path)
	})
}
