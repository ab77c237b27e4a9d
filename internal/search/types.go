// Package search implements the search service (spec.md §4.8, component
// C8): it sanitizes free-form query text into a full-text match
// expression, issues it against the index store, and joins in live volume
// connectivity.
package search

// Config controls result size and the permitted duplicate-count extension.
type Config struct {
	// DefaultLimit caps results when a caller passes limit <= 0.
	DefaultLimit int
	// WithDuplicateCount enables the join-scan extension from spec.md §4.8
	// ("a permitted extension when performance allows").
	WithDuplicateCount bool
}

// DefaultConfig returns spec.md §4.8's default result cap with the
// duplicate-count extension enabled.
func DefaultConfig() Config {
	return Config{DefaultLimit: 100, WithDuplicateCount: true}
}

// Result is a single ranked hit, annotated with live volume connectivity.
type Result struct {
	FileID            int64  `json:"file_id"`
	Name              string `json:"name"`
	RelativePath      string `json:"relative_path"`
	Size              int64  `json:"size"`
	VolumeID          string `json:"volume_id"`
	VolumeDisplayName string `json:"volume_display_name"`
	IsConnected       bool   `json:"is_connected"`
	DuplicateCount    int64  `json:"duplicate_count,omitempty"`
}
