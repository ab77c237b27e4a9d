// Package scanner implements the scanner (spec.md §4.4, component C4): it
// walks a mounted volume's file tree and reconciles it against the stored
// inventory, emitting the minimum set of store mutations needed to bring
// the inventory into agreement with reality.
package scanner

import "time"

// Config controls exclusion rules and delta-reconciliation tolerance.
// ExcludedDirectories/ExcludedExtensions mirror the settings the change
// notifier filters against (spec.md §4.3, "same rules as the scanner").
type Config struct {
	ExcludedDirectories map[string]bool
	ExcludedExtensions  map[string]bool
	ModifiedTolerance   time.Duration
}

// DefaultConfig returns the scanner's built-in exclusions; internal/config
// replaces them with environment-provided lists when those are set. The
// store's settings rows are not read when building a scanner Config.
func DefaultConfig() Config {
	dirs := map[string]bool{}
	for _, d := range []string{".git", "node_modules", ".Spotlight-V100", ".Trashes", ".fseventsd", ".DocumentRevisions-V100", ".TemporaryItems"} {
		dirs[d] = true
	}
	return Config{
		ExcludedDirectories: dirs,
		ExcludedExtensions:  map[string]bool{".tmp": true, ".cache": true, ".log": true, ".DS_Store": true},
		ModifiedTolerance:   1 * time.Second,
	}
}

// ProgressUpdate is emitted at least every 100 entries and once on
// completion (spec.md §4.4 "Progress reporting").
type ProgressUpdate struct {
	EntriesProcessed int
	CurrentPath      string
	Done             bool
}

const (
	batchSize     = 1000
	progressEvery = 100
)
