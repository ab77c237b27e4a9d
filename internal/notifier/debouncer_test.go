package notifier

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() Config {
	return Config{DebounceDelay: 50 * time.Millisecond}
}

func TestSubscribeEmitsCoalescedChanges(t *testing.T) {
	root := t.TempDir()

	n := New(testConfig(), DefaultFilters(), nil)
	require.NoError(t, n.Subscribe("vol-1", root))
	defer n.Unsubscribe("vol-1")

	for i := 0; i < 5; i++ {
		path := filepath.Join(root, "file.txt")
		require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
		time.Sleep(5 * time.Millisecond)
	}

	select {
	case c := <-n.Changes():
		assert.Equal(t, "vol-1", c.VolumeID)
		assert.NotEmpty(t, c.Paths)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for coalesced change")
	}
}

func TestUnsubscribeDiscardsPendingBuffer(t *testing.T) {
	root := t.TempDir()

	n := New(Config{DebounceDelay: 500 * time.Millisecond}, DefaultFilters(), nil)
	require.NoError(t, n.Subscribe("vol-1", root))

	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), []byte("x"), 0o644))
	time.Sleep(20 * time.Millisecond)

	n.Unsubscribe("vol-1")

	select {
	case <-n.Changes():
		t.Fatal("expected no change after unsubscribe discarded the buffer")
	case <-time.After(700 * time.Millisecond):
	}
}

func TestFilterEventExcludesDotGit(t *testing.T) {
	filters := DefaultFilters()
	ok := isExcludedPath("/mnt/usb/.git/HEAD", filters)
	assert.True(t, ok)

	ok = isExcludedPath("/mnt/usb/photos/vacation.jpg", filters)
	assert.False(t, ok)
}

func TestFilterEventExcludesSuffix(t *testing.T) {
	filters := DefaultFilters()
	assert.True(t, isExcludedPath("/mnt/usb/scratch.tmp", filters))
	assert.False(t, isExcludedPath("/mnt/usb/scratch.txt", filters))
}

func TestSubscribeWatchesNewSubdirectory(t *testing.T) {
	root := t.TempDir()

	n := New(testConfig(), DefaultFilters(), nil)
	require.NoError(t, n.Subscribe("vol-1", root))
	defer n.Unsubscribe("vol-1")

	sub := filepath.Join(root, "newdir")
	require.NoError(t, os.Mkdir(sub, 0o755))
	time.Sleep(50 * time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(sub, "inner.txt"), []byte("x"), 0o644))

	select {
	case c := <-n.Changes():
		assert.Equal(t, "vol-1", c.VolumeID)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for change inside newly created subdirectory")
	}
}
