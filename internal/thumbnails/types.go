// Package thumbnails implements the thumbnail cache (spec.md §4.7,
// component C7): a disk-sharded, byte-budgeted cache of rendered
// thumbnails, fronted by an in-memory LRU.
package thumbnails

import "time"

// Config controls cache sharding, budget, and background fan-out.
type Config struct {
	// Root is the cache root directory; thumbnails live at
	// <Root>/<id mod 100 as two digits>/<id>.jpg.
	Root string
	// BudgetBytes is the total on-disk byte budget.
	BudgetBytes int64
	// EvictBatchSize bounds how many oldest thumbnails are drained per
	// eviction round.
	EvictBatchSize int
	// MemoryEntries bounds the in-memory LRU's entry count.
	MemoryEntries int
	// RenderConcurrency bounds simultaneous background render requests.
	RenderConcurrency int
	// SizeHint is passed to the renderer as the target bitmap dimension.
	SizeHint int
}

// DefaultConfig returns spec.md §4.7's defaults.
func DefaultConfig() Config {
	return Config{
		BudgetBytes:       500 * 1024 * 1024,
		EvictBatchSize:    100,
		MemoryEntries:     512,
		RenderConcurrency: 2,
		SizeHint:          256,
	}
}

// Bitmap is a rendered thumbnail, ready to persist to disk.
type Bitmap struct {
	Bytes      []byte
	Width      int
	Height     int
	RenderedAt time.Time
}
