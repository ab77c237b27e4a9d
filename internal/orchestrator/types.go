// Package orchestrator implements the scan orchestrator (spec.md §4.5,
// component C5): the single point of serialization for scan work per
// volume, owning mode selection, recovery, and the post-scan pipeline
// that triggers optimize, hashing, and thumbnailing.
package orchestrator

import "github.com/volumedex/volumedex/internal/scanner"

// Config controls the optimize-threshold and is otherwise a thin wrapper
// so orchestrator tuning lives next to the component it governs.
type Config struct {
	// OptimizeThreshold is the cumulative delta-change count that
	// triggers Index Store.optimize() (spec.md §4.5, Open Question #2).
	OptimizeThreshold int
}

// DefaultConfig returns spec.md §4.5's default optimize threshold.
func DefaultConfig() Config {
	return Config{OptimizeThreshold: 50}
}

// ProgressEvent is forwarded to the UI as a scan progresses.
type ProgressEvent struct {
	VolumeID string
	scanner.ProgressUpdate
}

// CompletionEvent is emitted strictly after a scan's writes have all
// committed (spec.md §5 "Ordering guarantees").
type CompletionEvent struct {
	VolumeID  string
	FileCount int64
	Err       error
}
