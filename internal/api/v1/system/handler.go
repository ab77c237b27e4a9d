// Package system provides HTTP handlers for service-level health, version,
// and index-consistency diagnostics.
package system

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/volumedex/volumedex/internal/api/models"
	"github.com/volumedex/volumedex/internal/store"
	"github.com/volumedex/volumedex/internal/version"
)

// StoreHealthChecker is the subset of internal/store.Store this handler needs.
type StoreHealthChecker interface {
	Health() *store.HealthStatus
}

// VolumeRepository is the subset of internal/store.VolumeRepository needed
// for the consistency check.
type VolumeRepository interface {
	ListVolumes() ([]*store.Volume, error)
}

// FileCounter is the subset of internal/store.FileRepository needed for the
// consistency check.
type FileCounter interface {
	CountByVolume(volumeID string) (int64, error)
}

// Handler handles system-level HTTP requests.
type Handler struct {
	store   StoreHealthChecker
	volumes VolumeRepository
	files   FileCounter
}

// NewHandler builds a system Handler.
func NewHandler(store StoreHealthChecker, volumes VolumeRepository, files FileCounter) *Handler {
	return &Handler{store: store, volumes: volumes, files: files}
}

// GetHealth reports index-store connectivity. GET /health.
func (h *Handler) GetHealth(c *gin.Context) {
	status := h.store.Health()
	components := map[string]interface{}{
		"store": status,
	}
	overall := "ok"
	if !status.Connected {
		overall = "degraded"
	}
	c.JSON(http.StatusOK, models.HealthResponse{
		Status:     overall,
		Service:    "volumedex",
		Version:    version.Get().Version,
		Components: components,
	})
}

// GetVersion returns build/version information. GET /api/v1/system/version.
func (h *Handler) GetVersion(c *gin.Context) {
	c.JSON(http.StatusOK, version.Get())
}

// ConsistencyReport describes one volume's file-count reconciliation state.
type ConsistencyReport struct {
	VolumeID      string `json:"volume_id"`
	DisplayName   string `json:"display_name"`
	RecordedCount int64  `json:"recorded_file_count"`
	ActualCount   int64  `json:"actual_file_count"`
	Consistent    bool   `json:"consistent"`
}

// GetConsistency compares each volume's denormalized file_count against the
// actual row count in the files table (spec.md §4.1). It is a read-only
// diagnostic; it never corrects drift itself. file_count is rewritten only
// when a scan completes (VolumeRepository.SetLastScan).
// GET /api/v1/system/consistency.
func (h *Handler) GetConsistency(c *gin.Context) {
	volumes, err := h.volumes.ListVolumes()
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error: "failed to list volumes", Code: "STORE_ERROR", Details: err.Error(),
		})
		return
	}

	reports := make([]ConsistencyReport, 0, len(volumes))
	for _, v := range volumes {
		actual, err := h.files.CountByVolume(v.ID)
		if err != nil {
			continue
		}
		reports = append(reports, ConsistencyReport{
			VolumeID:      v.ID,
			DisplayName:   v.DisplayName,
			RecordedCount: v.FileCount,
			ActualCount:   actual,
			Consistent:    actual == v.FileCount,
		})
	}

	c.JSON(http.StatusOK, gin.H{"volumes": reports})
}
