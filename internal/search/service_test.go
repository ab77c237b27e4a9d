package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/volumedex/volumedex/internal/store"
)

func TestSanitizeTrimsEscapesAndAppendsWildcard(t *testing.T) {
	expr, ok := sanitize("  o'brien photo.jpg  ")
	require.True(t, ok)
	assert.Equal(t, "o''brien photojpg*", expr)
}

func TestSanitizeEmptyInputReturnsNotOK(t *testing.T) {
	_, ok := sanitize("   ")
	assert.False(t, ok)
}

func TestSanitizeAllGrammarCharsReturnsNotOK(t *testing.T) {
	_, ok := sanitize(`"::..`)
	assert.False(t, ok)
}

type fakeRepo struct {
	lastExpr  string
	lastLimit int
	lastDup   bool
	hits      []store.SearchHit
	err       error
}

func (f *fakeRepo) Search(matchExpr string, limit int, withDuplicateCount bool) ([]store.SearchHit, error) {
	f.lastExpr = matchExpr
	f.lastLimit = limit
	f.lastDup = withDuplicateCount
	return f.hits, f.err
}

type fakeConnectivity struct {
	connected map[string]bool
}

func (f *fakeConnectivity) IsConnected(volumeID string) bool {
	return f.connected[volumeID]
}

func TestSearchReturnsEmptyResultWithoutQueryingStoreOnBlankInput(t *testing.T) {
	repo := &fakeRepo{}
	s := New(repo, &fakeConnectivity{}, DefaultConfig())

	results, err := s.Search("   ", 0)
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Equal(t, "", repo.lastExpr)
}

func TestSearchJoinsConnectivityAndAppliesDefaultLimit(t *testing.T) {
	repo := &fakeRepo{hits: []store.SearchHit{
		{FileID: 1, Name: "photo.jpg", RelativePath: "a/photo.jpg", Size: 10, VolumeID: "vol-1", VolumeDisplayName: "Backup"},
		{FileID: 2, Name: "photo2.jpg", RelativePath: "b/photo2.jpg", Size: 20, VolumeID: "vol-2", VolumeDisplayName: "Archive"},
	}}
	conn := &fakeConnectivity{connected: map[string]bool{"vol-1": true}}
	s := New(repo, conn, DefaultConfig())

	results, err := s.Search("photo", 0)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, 100, repo.lastLimit)
	assert.True(t, repo.lastDup)
	assert.Equal(t, "photo*", repo.lastExpr)
	assert.True(t, results[0].IsConnected)
	assert.False(t, results[1].IsConnected)
}

func TestSearchHonorsExplicitLimit(t *testing.T) {
	repo := &fakeRepo{}
	s := New(repo, &fakeConnectivity{}, DefaultConfig())

	_, err := s.Search("photo", 5)
	require.NoError(t, err)
	assert.Equal(t, 5, repo.lastLimit)
}
