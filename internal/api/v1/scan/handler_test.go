package scan

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/volumedex/volumedex/internal/orchestrator"
	"github.com/volumedex/volumedex/internal/store"
)

type fakeOrchestrator struct {
	scanning       map[string]bool
	requestErr     error
	requestedCalls []string
}

func (f *fakeOrchestrator) IsScanning(volumeID string) bool { return f.scanning[volumeID] }
func (f *fakeOrchestrator) RequestScan(volumeID string) error {
	f.requestedCalls = append(f.requestedCalls, volumeID)
	return f.requestErr
}

type fakeVolumeRepo struct {
	vol *store.Volume
	err error
}

func (f *fakeVolumeRepo) GetVolume(id string) (*store.Volume, error) { return f.vol, f.err }

func newTestContext(method, path string) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, path, nil)
	c.Params = gin.Params{{Key: "id", Value: "vol-1"}}
	return c, w
}

func TestTriggerScanReturnsStartedOnFreshRequest(t *testing.T) {
	orch := &fakeOrchestrator{scanning: map[string]bool{}}
	h := NewHandler(orch, &fakeVolumeRepo{})

	c, w := newTestContext(http.MethodPost, "/drives/vol-1/scan")
	h.TriggerScan(c)

	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"started"`)
	require.Equal(t, []string{"vol-1"}, orch.requestedCalls)
}

func TestTriggerScanReturnsAlreadyRunningWhenScanInFlight(t *testing.T) {
	orch := &fakeOrchestrator{scanning: map[string]bool{"vol-1": true}}
	h := NewHandler(orch, &fakeVolumeRepo{})

	c, w := newTestContext(http.MethodPost, "/drives/vol-1/scan")
	h.TriggerScan(c)

	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"already_running"`)
}

func TestTriggerScanReturnsBadRequestWhenVolumeNotConnected(t *testing.T) {
	orch := &fakeOrchestrator{scanning: map[string]bool{}, requestErr: orchestrator.ErrVolumeNotConnected}
	h := NewHandler(orch, &fakeVolumeRepo{})

	c, w := newTestContext(http.MethodPost, "/drives/vol-1/scan")
	h.TriggerScan(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetScanStatusReturnsNotFoundWhenVolumeMissing(t *testing.T) {
	orch := &fakeOrchestrator{scanning: map[string]bool{}}
	h := NewHandler(orch, &fakeVolumeRepo{err: errors.New("no rows")})

	c, w := newTestContext(http.MethodGet, "/drives/vol-1/scan")
	h.GetScanStatus(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetScanStatusReportsRunningAndFileCount(t *testing.T) {
	orch := &fakeOrchestrator{scanning: map[string]bool{"vol-1": true}}
	h := NewHandler(orch, &fakeVolumeRepo{vol: &store.Volume{ID: "vol-1", FileCount: 42}})

	c, w := newTestContext(http.MethodGet, "/drives/vol-1/scan")
	h.GetScanStatus(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"running":true`)
	assert.Contains(t, w.Body.String(), `"file_count":42`)
}
