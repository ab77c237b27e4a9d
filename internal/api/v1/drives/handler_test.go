package drives

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/volumedex/volumedex/internal/store"
)

type fakeVolumeRepo struct {
	list []*store.Volume
	get  map[string]*store.Volume
}

func (f *fakeVolumeRepo) ListVolumes() ([]*store.Volume, error) { return f.list, nil }
func (f *fakeVolumeRepo) GetVolume(id string) (*store.Volume, error) {
	v, ok := f.get[id]
	if !ok {
		return nil, assert.AnError
	}
	return v, nil
}

type fakeConnectivity struct{ connected map[string]bool }

func (f *fakeConnectivity) IsConnected(id string) bool { return f.connected[id] }

func TestListDrivesFiltersByQuery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &fakeVolumeRepo{list: []*store.Volume{
		{ID: "a", DisplayName: "Backup Drive", LastSeen: time.Now()},
		{ID: "b", DisplayName: "Scratch Disk", LastSeen: time.Now()},
	}}
	h := NewHandler(repo, &fakeConnectivity{connected: map[string]bool{"a": true}})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/drives?q=backup", nil)

	h.ListDrives(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Backup Drive")
	assert.NotContains(t, w.Body.String(), "Scratch Disk")
}

func TestGetDriveReturnsNotFoundForUnknownID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewHandler(&fakeVolumeRepo{get: map[string]*store.Volume{}}, &fakeConnectivity{})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/drives/missing", nil)
	c.Params = gin.Params{{Key: "id", Value: "missing"}}

	h.GetDrive(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetDriveReturnsConnectivityStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &fakeVolumeRepo{get: map[string]*store.Volume{"a": {ID: "a", DisplayName: "Backup Drive"}}}
	h := NewHandler(repo, &fakeConnectivity{connected: map[string]bool{"a": true}})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/drives/a", nil)
	c.Params = gin.Params{{Key: "id", Value: "a"}}

	h.GetDrive(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"is_connected":true`)
}
