// Package drives provides HTTP handlers for registered-volume listing and
// lookup (spec.md §3 "Volume", §4.1 index store).
package drives

import (
	"net/http"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/volumedex/volumedex/internal/api/models"
	apiutils "github.com/volumedex/volumedex/internal/api/utils"
	"github.com/volumedex/volumedex/internal/store"
)

// VolumeRepository is the subset of internal/store.VolumeRepository this
// handler needs.
type VolumeRepository interface {
	ListVolumes() ([]*store.Volume, error)
	GetVolume(id string) (*store.Volume, error)
}

// ConnectivityChecker reports whether a volume is currently mounted.
type ConnectivityChecker interface {
	IsConnected(volumeID string) bool
}

// Handler handles registered-volume HTTP requests.
type Handler struct {
	volumes      VolumeRepository
	connectivity ConnectivityChecker
}

// NewHandler builds a drives Handler.
func NewHandler(volumes VolumeRepository, connectivity ConnectivityChecker) *Handler {
	return &Handler{volumes: volumes, connectivity: connectivity}
}

// ListDrives returns paginated registered volumes, implementing
// GET /api/v1/drives with pagination, sorting, and filtering.
func (h *Handler) ListDrives(c *gin.Context) {
	pagination, err := apiutils.ParsePaginationParams(c)
	if err != nil {
		apiutils.RespondWithBadRequest(c, err.Error(), nil)
		return
	}

	allowedSortFields := []string{"display_name", "last_seen", "file_count", "total_bytes"}
	sortParams, err := apiutils.ParseSortParams(c, allowedSortFields)
	if err != nil {
		apiutils.RespondWithBadRequest(c, err.Error(), nil)
		return
	}

	filters, err := apiutils.ParseDriveFilters(c)
	if err != nil {
		apiutils.RespondWithBadRequest(c, err.Error(), nil)
		return
	}

	all, err := h.volumes.ListVolumes()
	if err != nil {
		apiutils.RespondWithInternalError(c, "failed to list drives", err)
		return
	}

	filtered := make([]*store.Volume, 0, len(all))
	for _, v := range all {
		if !matchesFilters(v, filters) {
			continue
		}
		if filters.ConnectedOnly && !h.connectivity.IsConnected(v.ID) {
			continue
		}
		filtered = append(filtered, v)
	}
	sortVolumes(filtered, sortParams)

	total := len(filtered)
	start := pagination.Offset
	if start > total {
		start = total
	}
	end := start + pagination.Limit
	if end > total {
		end = total
	}
	page := filtered[start:end]

	responses := make([]models.DriveResponse, 0, len(page))
	for _, v := range page {
		responses = append(responses, toDriveResponse(v, h.connectivity.IsConnected(v.ID)))
	}

	filtersMap := map[string]interface{}{}
	if filters.Query != "" {
		filtersMap["q"] = filters.Query
	}
	if filters.ExcludedOnly {
		filtersMap["excluded"] = true
	}
	if filters.ConnectedOnly {
		filtersMap["connected"] = true
	}

	response := apiutils.BuildPagedResponse(responses, pagination, int64(total), sortParams, filtersMap)
	c.JSON(http.StatusOK, response)
}

// GetDrive returns a single registered volume, implementing
// GET /api/v1/drives/:id.
func (h *Handler) GetDrive(c *gin.Context) {
	id := c.Param("id")
	v, err := h.volumes.GetVolume(id)
	if err != nil || v == nil {
		apiutils.RespondWithNotFound(c, "drive not found")
		return
	}
	c.JSON(http.StatusOK, toDriveResponse(v, h.connectivity.IsConnected(v.ID)))
}

func matchesFilters(v *store.Volume, f *apiutils.DriveFilters) bool {
	if f.Query != "" && !strings.Contains(strings.ToLower(v.DisplayName), strings.ToLower(f.Query)) {
		return false
	}
	if f.ExcludedOnly && !v.Excluded {
		return false
	}
	if f.LastSeenAfter != nil && v.LastSeen.Before(*f.LastSeenAfter) {
		return false
	}
	if f.LastSeenBefore != nil && v.LastSeen.After(*f.LastSeenBefore) {
		return false
	}
	return true
}

func sortVolumes(volumes []*store.Volume, sortParams []apiutils.SortParam) {
	if len(sortParams) == 0 {
		sort.Slice(volumes, func(i, j int) bool { return volumes[i].LastSeen.After(volumes[j].LastSeen) })
		return
	}
	sp := sortParams[0]
	asc := sp.Direction == "asc"
	less := func(i, j int) bool {
		a, b := volumes[i], volumes[j]
		switch sp.Field {
		case "display_name":
			return a.DisplayName < b.DisplayName
		case "file_count":
			return a.FileCount < b.FileCount
		case "total_bytes":
			return a.TotalBytes < b.TotalBytes
		default: // last_seen
			return a.LastSeen.Before(b.LastSeen)
		}
	}
	if asc {
		sort.SliceStable(volumes, less)
	} else {
		sort.SliceStable(volumes, func(i, j int) bool { return less(j, i) })
	}
}

func toDriveResponse(v *store.Volume, connected bool) models.DriveResponse {
	return models.DriveResponse{
		ID:          v.ID,
		DisplayName: v.DisplayName,
		TotalBytes:  v.TotalBytes,
		UsedBytes:   v.UsedBytes,
		LastSeen:    v.LastSeen,
		LastScan:    v.LastScan,
		FileCount:   v.FileCount,
		Excluded:    v.Excluded,
		IsConnected: connected,
	}
}
