package hasher

import (
	"context"
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/volumedex/volumedex/internal/store"
)

// MetricsRecorder receives hasher run telemetry; nil by default.
type MetricsRecorder interface {
	HasherRunCompleted(duration time.Duration, filesHashed int, bytesRead int64, backlog int)
}

// Repository is the subset of internal/store.HashRepository the hasher
// needs.
type Repository interface {
	Unhashed(minSize int64, limit int) ([]*store.FileEntry, error)
	UnhashedCount(minSize int64) (int64, error)
	ApplyHashes(batch []store.HashResult) error
}

// MountResolver maps a volume id to its current mount path; the hasher
// needs this to turn a FileEntry's relative path into a readable
// filesystem path.
type MountResolver interface {
	Resolve(volumeID string) (string, bool)
}

// Hasher fills in missing content fingerprints with bounded concurrency
// (spec.md §4.6).
type Hasher struct {
	repo    Repository
	mounts  MountResolver
	config  Config
	logger  *log.Logger
	metrics MetricsRecorder
}

// New creates a hasher bound to repo and mounts.
func New(repo Repository, mounts MountResolver, config Config, logger *log.Logger) *Hasher {
	return &Hasher{repo: repo, mounts: mounts, config: config, logger: logger}
}

// SetMetrics attaches a metrics recorder; optional, defaults to a no-op.
func (h *Hasher) SetMetrics(m MetricsRecorder) { h.metrics = m }

// Run drains unhashed entries in batches until none remain or ctx is
// canceled at a batch boundary.
func (h *Hasher) Run(ctx context.Context) error {
	start := time.Now()
	var filesHashed int
	var bytesRead int64

	for {
		if ctx.Err() != nil {
			return context.Canceled
		}

		count, err := h.repo.UnhashedCount(h.config.SizeThresholdBytes)
		if err != nil {
			return err
		}
		if count == 0 {
			h.recordRun(start, filesHashed, bytesRead, 0)
			return nil
		}

		entries, err := h.repo.Unhashed(h.config.SizeThresholdBytes, h.config.BatchSize)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			h.recordRun(start, filesHashed, bytesRead, 0)
			return nil
		}

		results := h.hashBatch(entries)
		if err := h.repo.ApplyHashes(results); err != nil {
			return err
		}
		filesHashed += len(results)
		// Each fingerprint reads a head window and a tail window.
		bytesRead += int64(len(results)) * 2 * h.config.ChunkSizeBytes
	}
}

func (h *Hasher) recordRun(start time.Time, filesHashed int, bytesRead int64, backlog int) {
	if h.metrics == nil {
		return
	}
	h.metrics.HasherRunCompleted(time.Since(start), filesHashed, bytesRead, backlog)
}

// hashBatch fingerprints entries with up to config.Concurrency readers in
// flight at once. Per-file failures are logged and excluded; the rest of
// the batch still commits.
func (h *Hasher) hashBatch(entries []*store.FileEntry) []store.HashResult {
	sem := make(chan struct{}, h.config.Concurrency)
	var wg sync.WaitGroup
	var mu sync.Mutex
	results := make([]store.HashResult, 0, len(entries))

	for _, entry := range entries {
		mountPath, ok := h.mounts.Resolve(entry.VolumeID)
		if !ok {
			// The drive went missing mid-batch; skip, it will be picked
			// up again once remounted and the next hasher pass runs.
			continue
		}
		fullPath := filepath.Join(mountPath, filepath.FromSlash(entry.RelativePath))

		wg.Add(1)
		sem <- struct{}{}
		go func(fileID int64, path string, size int64) {
			defer wg.Done()
			defer func() { <-sem }()

			sum, err := fingerprint(path, size, h.config.ChunkSizeBytes)
			if err != nil {
				if h.logger != nil {
					h.logger.Printf("[WARN] hasher: fingerprint failed for %s: %v", path, err)
				}
				return
			}
			mu.Lock()
			results = append(results, store.HashResult{FileID: fileID, Fingerprint: sum})
			mu.Unlock()
		}(entry.ID, fullPath, entry.Size)
	}

	wg.Wait()
	return results
}
