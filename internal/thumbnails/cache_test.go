package thumbnails

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/volumedex/volumedex/internal/store"
)

type fakeThumbRepo struct {
	mu      sync.Mutex
	refs    map[int64]store.ThumbnailRef
	pending []*store.FileEntry
}

func newFakeThumbRepo() *fakeThumbRepo {
	return &fakeThumbRepo{refs: map[int64]store.ThumbnailRef{}}
}

func (r *fakeThumbRepo) GetThumbnail(fileID int64) (*store.ThumbnailRef, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ref, ok := r.refs[fileID]
	if !ok {
		return nil, false, nil
	}
	return &ref, true, nil
}

func (r *fakeThumbRepo) RecordThumbnail(ref store.ThumbnailRef) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.refs[ref.FileID] = ref
	kept := r.pending[:0]
	for _, e := range r.pending {
		if e.ID != ref.FileID {
			kept = append(kept, e)
		}
	}
	r.pending = kept
	return nil
}

func (r *fakeThumbRepo) DeleteThumbnail(fileID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.refs, fileID)
	return nil
}

func (r *fakeThumbRepo) OldestThumbnails(limit int) ([]store.ThumbnailRef, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []store.ThumbnailRef
	for _, ref := range r.refs {
		out = append(out, ref)
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (r *fakeThumbRepo) ThumbnailCacheBytes() (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var total int64
	for _, ref := range r.refs {
		total += ref.ByteSize
	}
	return total, nil
}

func (r *fakeThumbRepo) MediaWithoutThumbnail(limit int) ([]*store.FileEntry, error) {
	return r.pending, nil
}

func (r *fakeThumbRepo) MediaWithoutThumbnailCount() (int64, error) {
	return int64(len(r.pending)), nil
}

type fakeMounts struct{ path string }

func (m *fakeMounts) Resolve(volumeID string) (string, bool) { return m.path, true }

type fakeRenderer struct {
	size  int
	calls int
}

func (r *fakeRenderer) Render(sourcePath string, sizeHint int) (Bitmap, error) {
	r.calls++
	return Bitmap{Bytes: make([]byte, r.size), Width: sizeHint, Height: sizeHint}, nil
}

func TestProduceRendersWritesAndCaches(t *testing.T) {
	root := t.TempDir()
	repo := newFakeThumbRepo()
	mounts := &fakeMounts{path: t.TempDir()}
	renderer := &fakeRenderer{size: 1024}

	cfg := DefaultConfig()
	cfg.Root = root
	c := New(repo, mounts, renderer, cfg, nil)

	data, err := c.Produce(1, "vol-1", "photo.jpg")
	require.NoError(t, err)
	assert.Len(t, data, 1024)
	assert.Equal(t, 1, renderer.calls)

	ref, found, err := repo.GetThumbnail(1)
	require.NoError(t, err)
	require.True(t, found)
	assert.True(t, diskFileExists(ref.DiskPath))

	// Second call is served from the store+disk without re-rendering.
	c2 := New(repo, mounts, renderer, cfg, nil)
	_, err = c2.Produce(1, "vol-1", "photo.jpg")
	require.NoError(t, err)
	assert.Equal(t, 1, renderer.calls)
}

func TestProduceServesFromMemoryLRUWithoutRerendering(t *testing.T) {
	root := t.TempDir()
	repo := newFakeThumbRepo()
	mounts := &fakeMounts{path: t.TempDir()}
	renderer := &fakeRenderer{size: 512}

	cfg := DefaultConfig()
	cfg.Root = root
	c := New(repo, mounts, renderer, cfg, nil)

	_, err := c.Produce(1, "vol-1", "a.jpg")
	require.NoError(t, err)
	_, err = c.Produce(1, "vol-1", "a.jpg")
	require.NoError(t, err)
	assert.Equal(t, 1, renderer.calls)
}

func TestEvictDrainsUntilBelowLowWatermark(t *testing.T) {
	root := t.TempDir()
	repo := newFakeThumbRepo()
	for i := int64(1); i <= 10; i++ {
		path, err := writeThumbnail(root, i, make([]byte, 100))
		require.NoError(t, err)
		repo.refs[i] = store.ThumbnailRef{FileID: i, DiskPath: path, ByteSize: 100, GeneratedAt: time.Unix(i, 0)}
	}

	cfg := DefaultConfig()
	cfg.Root = root
	cfg.BudgetBytes = 500
	cfg.EvictBatchSize = 3
	c := New(repo, &fakeMounts{path: root}, &fakeRenderer{}, cfg, nil)

	c.Evict()

	total, err := repo.ThumbnailCacheBytes()
	require.NoError(t, err)
	assert.LessOrEqual(t, total, int64(float64(cfg.BudgetBytes)*0.8))
}

func TestProduceSelfHealsMissingDiskFile(t *testing.T) {
	root := t.TempDir()
	repo := newFakeThumbRepo()
	repo.refs[1] = store.ThumbnailRef{FileID: 1, DiskPath: diskPath(root, 1), ByteSize: 10, GeneratedAt: time.Now()}

	renderer := &fakeRenderer{size: 64}
	cfg := DefaultConfig()
	cfg.Root = root
	c := New(repo, &fakeMounts{path: t.TempDir()}, renderer, cfg, nil)

	_, err := c.Produce(1, "vol-1", "photo.jpg")
	require.NoError(t, err)
	assert.Equal(t, 1, renderer.calls)
}

func TestRunRendersAllPendingThenStops(t *testing.T) {
	root := t.TempDir()
	repo := newFakeThumbRepo()
	repo.pending = []*store.FileEntry{
		{ID: 1, VolumeID: "vol-1", RelativePath: "a.jpg"},
		{ID: 2, VolumeID: "vol-1", RelativePath: "b.jpg"},
	}

	cfg := DefaultConfig()
	cfg.Root = root
	c := New(repo, &fakeMounts{path: t.TempDir()}, &fakeRenderer{size: 32}, cfg, nil)

	err := c.Run(context.Background())
	require.NoError(t, err)
	assert.Len(t, repo.refs, 2)
	assert.Empty(t, repo.pending)
}

func TestDiskPathShardsByIDModulo100(t *testing.T) {
	assert.Equal(t, "root/05/105.jpg", diskPath("root", 105))
	assert.Equal(t, "root/00/100.jpg", diskPath("root", 100))
}
