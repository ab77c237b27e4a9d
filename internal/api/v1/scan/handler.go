// Package scan provides HTTP handlers for on-demand scan triggering and
// status (spec.md §4.5, component C5).
package scan

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/volumedex/volumedex/internal/api/models"
	apiutils "github.com/volumedex/volumedex/internal/api/utils"
	"github.com/volumedex/volumedex/internal/orchestrator"
	"github.com/volumedex/volumedex/internal/store"
)

// Orchestrator is the subset of internal/orchestrator.Orchestrator this
// handler needs.
type Orchestrator interface {
	RequestScan(volumeID string) error
	IsScanning(volumeID string) bool
}

// VolumeRepository is the subset of internal/store.VolumeRepository this
// handler needs to report last-scan state.
type VolumeRepository interface {
	GetVolume(id string) (*store.Volume, error)
}

// Handler handles scan-trigger and scan-status HTTP requests.
type Handler struct {
	orchestrator Orchestrator
	volumes      VolumeRepository
}

// NewHandler builds a scan Handler.
func NewHandler(orch Orchestrator, volumes VolumeRepository) *Handler {
	return &Handler{orchestrator: orch, volumes: volumes}
}

// TriggerScan implements POST /api/v1/drives/:id/scan.
func (h *Handler) TriggerScan(c *gin.Context) {
	volumeID := c.Param("id")

	alreadyRunning := h.orchestrator.IsScanning(volumeID)
	if err := h.orchestrator.RequestScan(volumeID); err != nil {
		if errors.Is(err, orchestrator.ErrVolumeNotConnected) {
			apiutils.RespondWithBadRequest(c, "drive is not currently mounted", nil)
			return
		}
		apiutils.RespondWithInternalError(c, "failed to trigger scan", err)
		return
	}

	status := "started"
	if alreadyRunning {
		status = "already_running"
	}
	c.JSON(http.StatusAccepted, models.ScanRequestResponse{VolumeID: volumeID, Status: status})
}

// GetScanStatus implements GET /api/v1/drives/:id/scan.
func (h *Handler) GetScanStatus(c *gin.Context) {
	volumeID := c.Param("id")

	vol, err := h.volumes.GetVolume(volumeID)
	if err != nil {
		apiutils.RespondWithNotFound(c, "drive not found")
		return
	}

	resp := models.ScanStatusResponse{
		VolumeID: volumeID,
		Running:  h.orchestrator.IsScanning(volumeID),
	}
	if vol != nil {
		resp.LastScan = vol.LastScan
		resp.FileCount = vol.FileCount
	}
	c.JSON(http.StatusOK, resp)
}
