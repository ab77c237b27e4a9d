package search

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/volumedex/volumedex/internal/search"
)

type fakeSearcher struct {
	lastQuery string
	lastLimit int
	results   []search.Result
	err       error
}

func (f *fakeSearcher) Search(query string, limit int) ([]search.Result, error) {
	f.lastQuery, f.lastLimit = query, limit
	return f.results, f.err
}

func TestSearchHandlerReturnsResults(t *testing.T) {
	gin.SetMode(gin.TestMode)
	s := &fakeSearcher{results: []search.Result{{FileID: 1, Name: "a.jpg", VolumeID: "v1"}}}
	h := NewHandler(s)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/search?q=vacation&limit=10", nil)

	h.Search(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "vacation", s.lastQuery)
	assert.Equal(t, 10, s.lastLimit)
	assert.Contains(t, w.Body.String(), "a.jpg")
}

func TestSearchHandlerRejectsInvalidLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewHandler(&fakeSearcher{})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/search?q=x&limit=-1", nil)

	h.Search(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
