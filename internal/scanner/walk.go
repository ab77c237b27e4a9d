package scanner

import (
	"errors"
	"io/fs"
	"path/filepath"
	"strings"
	"time"
)

// walkEntry is one non-skipped traversal result before it is converted to
// a store.FileEntry.
type walkEntry struct {
	name         string
	relativePath string
	size         int64
	createdAt    time.Time
	modifiedAt   time.Time
	isDirectory  bool
}

// errStopWalk unwinds filepath.WalkDir early on cooperative cancellation;
// it is never surfaced to callers as a real failure.
var errStopWalk = errors.New("scanner: walk stopped")

// walkTree applies the exclusion rules (spec.md §4.4) and calls visit for
// every entry that survives them. A directory-enumeration failure at
// rootPath aborts the whole walk; a failure below rootPath skips only the
// failing subtree.
func (s *Scanner) walkTree(rootPath string, visit func(walkEntry) error) error {
	return filepath.WalkDir(rootPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == rootPath {
				return err
			}
			if s.logger != nil {
				s.logger.Printf("[WARN] scanner: skipping %s: %v", path, err)
			}
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if path == rootPath {
			return nil
		}

		leaf := d.Name()
		rel := relativize(rootPath, path)

		if d.IsDir() {
			if s.config.ExcludedDirectories[leaf] || isHidden(leaf) {
				return filepath.SkipDir
			}
			if isExcludedExtension(leaf, s.config.ExcludedExtensions) {
				// Application bundles and similar are recorded as a single
				// opaque leaf; their contents are never descended into.
				if err := s.visitEntry(d, path, rel, true, visit); err != nil {
					return err
				}
				return filepath.SkipDir
			}
			return s.visitEntry(d, path, rel, true, visit)
		}

		if isHidden(leaf) || isExcludedExtension(leaf, s.config.ExcludedExtensions) {
			return nil
		}
		return s.visitEntry(d, path, rel, false, visit)
	})
}

func (s *Scanner) visitEntry(d fs.DirEntry, path, rel string, isDir bool, visit func(walkEntry) error) error {
	info, err := d.Info()
	if err != nil {
		if s.logger != nil {
			s.logger.Printf("[WARN] scanner: stat failed for %s: %v", path, err)
		}
		return nil
	}
	created, modified := entryTimes(path, info)
	return visit(walkEntry{
		name:         d.Name(),
		relativePath: rel,
		size:         info.Size(),
		createdAt:    created,
		modifiedAt:   modified,
		isDirectory:  isDir,
	})
}

func relativize(rootPath, path string) string {
	rel, err := filepath.Rel(rootPath, path)
	if err != nil {
		rel = strings.TrimPrefix(path, rootPath)
	}
	return filepath.ToSlash(rel)
}

func isHidden(leaf string) bool {
	return strings.HasPrefix(leaf, ".") && leaf != "." && leaf != ".."
}

// isExcludedExtension matches a leaf name against the extension set with
// or without a leading dot, or against the full leaf name (spec.md §4.4).
func isExcludedExtension(leaf string, set map[string]bool) bool {
	if len(set) == 0 {
		return false
	}
	if set[leaf] {
		return true
	}
	ext := filepath.Ext(leaf)
	if ext == "" {
		return false
	}
	return set[ext] || set[strings.TrimPrefix(ext, ".")]
}
