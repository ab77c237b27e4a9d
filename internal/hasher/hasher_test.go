package hasher

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/volumedex/volumedex/internal/store"
)

func TestFingerprintStableForSameContent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.bin")
	require.NoError(t, os.WriteFile(path, []byte("the quick brown fox jumps over the lazy dog"), 0o644))

	info, err := os.Stat(path)
	require.NoError(t, err)

	h1, err := fingerprint(path, info.Size(), 8)
	require.NoError(t, err)
	h2, err := fingerprint(path, info.Size(), 8)
	require.NoError(t, err)
	assert.Equal(t, h1, h2)
	assert.Len(t, h1, 64)
}

func TestFingerprintDiffersForDifferentSizeSameBytes(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.bin")
	b := filepath.Join(dir, "b.bin")
	require.NoError(t, os.WriteFile(a, []byte("abcdefgh"), 0o644))
	require.NoError(t, os.WriteFile(b, []byte("abcdefghij"), 0o644))

	ha, err := fingerprint(a, 8, 32*1024)
	require.NoError(t, err)
	hb, err := fingerprint(b, 10, 32*1024)
	require.NoError(t, err)
	assert.NotEqual(t, ha, hb)
}

type fakeRepo struct {
	pending  []*store.FileEntry
	applied  []store.HashResult
	drained  bool
}

func (r *fakeRepo) UnhashedCount(minSize int64) (int64, error) {
	if r.drained {
		return 0, nil
	}
	return int64(len(r.pending)), nil
}

func (r *fakeRepo) Unhashed(minSize int64, limit int) ([]*store.FileEntry, error) {
	if r.drained {
		return nil, nil
	}
	r.drained = true
	return r.pending, nil
}

func (r *fakeRepo) ApplyHashes(batch []store.HashResult) error {
	r.applied = append(r.applied, batch...)
	return nil
}

type fakeMounts struct {
	path string
}

func (m *fakeMounts) Resolve(volumeID string) (string, bool) {
	return m.path, true
}

func TestRunHashesAllEntriesThenStops(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "big.bin"), make([]byte, 10*1024*1024), 0o644))

	repo := &fakeRepo{pending: []*store.FileEntry{
		{ID: 1, VolumeID: "vol-1", RelativePath: "big.bin", Size: 10 * 1024 * 1024},
	}}
	mounts := &fakeMounts{path: dir}

	h := New(repo, mounts, DefaultConfig(), nil)
	err := h.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, repo.applied, 1)
	assert.Equal(t, int64(1), repo.applied[0].FileID)
	assert.Len(t, repo.applied[0].Fingerprint, 64)
}

func TestRunSkipsEntriesOnUnresolvableVolume(t *testing.T) {
	repo := &fakeRepo{pending: []*store.FileEntry{
		{ID: 1, VolumeID: "gone", RelativePath: "x.bin", Size: 10 * 1024 * 1024},
	}}
	mounts := &unresolvedMounts{}

	h := New(repo, mounts, DefaultConfig(), nil)
	err := h.Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, repo.applied)
}

type unresolvedMounts struct{}

func (unresolvedMounts) Resolve(volumeID string) (string, bool) { return "", false }
