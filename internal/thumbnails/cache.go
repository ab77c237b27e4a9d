package thumbnails

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/volumedex/volumedex/internal/store"
)

// Repository is the subset of internal/store.ThumbnailRepository the
// cache needs.
type Repository interface {
	GetThumbnail(fileID int64) (*store.ThumbnailRef, bool, error)
	RecordThumbnail(ref store.ThumbnailRef) error
	DeleteThumbnail(fileID int64) error
	OldestThumbnails(limit int) ([]store.ThumbnailRef, error)
	ThumbnailCacheBytes() (int64, error)
	MediaWithoutThumbnail(limit int) ([]*store.FileEntry, error)
	MediaWithoutThumbnailCount() (int64, error)
}

// MountResolver maps a volume id to its current mount path.
type MountResolver interface {
	Resolve(volumeID string) (string, bool)
}

// Renderer is the external collaborator that turns a source file into a
// bitmap (spec.md §6 "A thumbnail renderer (URL → bitmap, with a size
// hint)"); decoder choice is out of scope here, only the cache contract.
type Renderer interface {
	Render(sourcePath string, sizeHint int) (Bitmap, error)
}

// MetricsRecorder receives thumbnail cache telemetry; nil by default.
type MetricsRecorder interface {
	ThumbnailRendered(outcome string)
	ThumbnailEvicted(count int)
	SetThumbnailCacheSize(bytes int64, entries int)
}

// Cache is the thumbnail cache (spec.md §4.7).
type Cache struct {
	repo     Repository
	mounts   MountResolver
	renderer Renderer
	config   Config
	logger   *log.Logger
	metrics  MetricsRecorder

	lru *memoryLRU

	evictMu sync.Mutex
}

// New creates a thumbnail cache rooted at config.Root.
func New(repo Repository, mounts MountResolver, renderer Renderer, config Config, logger *log.Logger) *Cache {
	return &Cache{
		repo:     repo,
		mounts:   mounts,
		renderer: renderer,
		config:   config,
		logger:   logger,
		lru:      newMemoryLRU(config.MemoryEntries),
	}
}

// SetMetrics attaches a metrics recorder; optional, defaults to a no-op.
func (c *Cache) SetMetrics(m MetricsRecorder) { c.metrics = m }

// Produce returns a thumbnail for fileID, rendering and caching it if
// necessary (spec.md §4.7 "Produce").
func (c *Cache) Produce(fileID int64, volumeID, relativePath string) ([]byte, error) {
	if bmp, ok := c.lru.Get(fileID); ok {
		c.recordRender("hit")
		return bmp.Bytes, nil
	}

	ref, found, err := c.repo.GetThumbnail(fileID)
	if err != nil {
		return nil, err
	}
	if found {
		if diskFileExists(ref.DiskPath) {
			data, err := readFile(ref.DiskPath)
			if err == nil {
				c.lru.Set(fileID, Bitmap{Bytes: data})
				c.recordRender("hit")
				return data, nil
			}
			if c.logger != nil {
				c.logger.Printf("[WARN] thumbnails: read %s: %v", ref.DiskPath, err)
			}
		}
		// Disk file vanished out from under the index; self-heal.
		if err := c.repo.DeleteThumbnail(fileID); err != nil {
			return nil, err
		}
	}

	mountPath, ok := c.mounts.Resolve(volumeID)
	if !ok {
		return nil, fmt.Errorf("thumbnails: volume %s is not mounted", volumeID)
	}
	sourcePath := filepath.Join(mountPath, filepath.FromSlash(relativePath))

	bmp, err := c.renderer.Render(sourcePath, c.config.SizeHint)
	if err != nil {
		c.recordRender("failed")
		return nil, fmt.Errorf("render thumbnail: %w", err)
	}
	bmp.RenderedAt = time.Now()

	diskPath, err := writeThumbnail(c.config.Root, fileID, bmp.Bytes)
	if err != nil {
		return nil, fmt.Errorf("write thumbnail: %w", err)
	}
	if err := c.repo.RecordThumbnail(store.ThumbnailRef{
		FileID:      fileID,
		DiskPath:    diskPath,
		ByteSize:    int64(len(bmp.Bytes)),
		GeneratedAt: bmp.RenderedAt,
	}); err != nil {
		return nil, err
	}
	c.lru.Set(fileID, bmp)
	c.recordRender("rendered")

	c.Evict()
	return bmp.Bytes, nil
}

func (c *Cache) recordRender(outcome string) {
	if c.metrics != nil {
		c.metrics.ThumbnailRendered(outcome)
	}
}

// Evict drains the oldest thumbnails until total on-disk usage falls
// below 80% of the configured budget (spec.md §4.7 "Eviction"). Safe to
// call concurrently; only one eviction pass runs at a time.
func (c *Cache) Evict() {
	c.evictMu.Lock()
	defer c.evictMu.Unlock()

	low := int64(float64(c.config.BudgetBytes) * 0.8)

	for {
		total, err := c.repo.ThumbnailCacheBytes()
		if err != nil {
			if c.logger != nil {
				c.logger.Printf("[WARN] thumbnails: eviction bytes check: %v", err)
			}
			return
		}
		if c.metrics != nil {
			c.metrics.SetThumbnailCacheSize(total, c.lru.Len())
		}
		if total <= c.config.BudgetBytes {
			return
		}

		oldest, err := c.repo.OldestThumbnails(c.config.EvictBatchSize)
		if err != nil {
			if c.logger != nil {
				c.logger.Printf("[WARN] thumbnails: eviction batch fetch: %v", err)
			}
			return
		}
		if len(oldest) == 0 {
			return
		}

		evicted := 0
		for _, ref := range oldest {
			if err := deleteDiskFile(ref.DiskPath); err != nil && c.logger != nil {
				c.logger.Printf("[WARN] thumbnails: evict delete %s: %v", ref.DiskPath, err)
			}
			if err := c.repo.DeleteThumbnail(ref.FileID); err != nil {
				if c.logger != nil {
					c.logger.Printf("[WARN] thumbnails: evict %d: %v", ref.FileID, err)
				}
				continue
			}
			c.lru.Delete(ref.FileID)
			evicted++
		}
		if c.metrics != nil && evicted > 0 {
			c.metrics.ThumbnailEvicted(evicted)
		}

		total, err = c.repo.ThumbnailCacheBytes()
		if err != nil {
			return
		}
		if total <= low {
			return
		}
	}
}

// Run renders thumbnails for media entries that have none yet, bounded by
// config.RenderConcurrency (mirrors the hasher's batch-drain shape for the
// same "background catch-up sweep" role). It satisfies the same
// interface the orchestrator uses to drive the hasher.
func (c *Cache) Run(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return context.Canceled
		}

		count, err := c.repo.MediaWithoutThumbnailCount()
		if err != nil {
			return err
		}
		if count == 0 {
			return nil
		}

		entries, err := c.repo.MediaWithoutThumbnail(c.config.EvictBatchSize)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			return nil
		}

		sem := make(chan struct{}, c.config.RenderConcurrency)
		var wg sync.WaitGroup
		for _, entry := range entries {
			wg.Add(1)
			sem <- struct{}{}
			go func(fileID int64, volumeID, relativePath string) {
				defer wg.Done()
				defer func() { <-sem }()
				if _, err := c.Produce(fileID, volumeID, relativePath); err != nil && c.logger != nil {
					c.logger.Printf("[WARN] thumbnails: render failed for file %d: %v", fileID, err)
				}
			}(entry.ID, entry.VolumeID, entry.RelativePath)
		}
		wg.Wait()

		if ctx.Err() != nil {
			return context.Canceled
		}
	}
}
