// Package hasher implements the hasher (spec.md §4.6, component C6): it
// fills in missing content fingerprints for file entries above a
// configured size threshold, used by the search service to report
// duplicate counts.
package hasher

// Config controls the fingerprint threshold, chunk size, and fan-out.
type Config struct {
	// SizeThresholdBytes excludes files below this size entirely — they
	// are never hashed. Files of exactly this size are hashed.
	SizeThresholdBytes int64
	// ChunkSizeBytes is the head/tail window read from each file.
	ChunkSizeBytes int64
	// Concurrency bounds simultaneous file reads.
	Concurrency int
	// BatchSize bounds how many unhashed rows are drained per round.
	BatchSize int
}

// DefaultConfig returns spec.md §4.6's defaults.
func DefaultConfig() Config {
	return Config{
		SizeThresholdBytes: 5 * 1024 * 1024,
		ChunkSizeBytes:     32 * 1024,
		Concurrency:        8,
		BatchSize:          1000,
	}
}
