package system

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/volumedex/volumedex/internal/store"
)

type fakeStoreHealth struct{ status *store.HealthStatus }

func (f *fakeStoreHealth) Health() *store.HealthStatus { return f.status }

type fakeVolumeRepo struct{ volumes []*store.Volume }

func (f *fakeVolumeRepo) ListVolumes() ([]*store.Volume, error) { return f.volumes, nil }

type fakeFileCounter struct{ counts map[string]int64 }

func (f *fakeFileCounter) CountByVolume(volumeID string) (int64, error) {
	return f.counts[volumeID], nil
}

func TestGetHealthReportsDegradedWhenStoreDisconnected(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewHandler(&fakeStoreHealth{status: &store.HealthStatus{Connected: false}}, &fakeVolumeRepo{}, &fakeFileCounter{})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/health", nil)

	h.GetHealth(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"degraded"`)
}

func TestGetConsistencyFlagsDriftedVolume(t *testing.T) {
	gin.SetMode(gin.TestMode)
	volumes := &fakeVolumeRepo{volumes: []*store.Volume{{ID: "a", DisplayName: "Backup", FileCount: 10}}}
	files := &fakeFileCounter{counts: map[string]int64{"a": 7}}
	h := NewHandler(&fakeStoreHealth{status: &store.HealthStatus{Connected: true}}, volumes, files)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/system/consistency", nil)

	h.GetConsistency(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"consistent":false`)
}
