// Package search provides the HTTP handler for free-form file search
// (spec.md §4.8, component C8).
package search

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/volumedex/volumedex/internal/api/models"
	apiutils "github.com/volumedex/volumedex/internal/api/utils"
	"github.com/volumedex/volumedex/internal/search"
)

// Searcher is the subset of internal/search.Service this handler needs.
type Searcher interface {
	Search(query string, limit int) ([]search.Result, error)
}

// Handler handles search HTTP requests.
type Handler struct {
	service Searcher
}

// NewHandler builds a search Handler.
func NewHandler(service Searcher) *Handler {
	return &Handler{service: service}
}

// Search implements GET /api/v1/search?q=...&limit=....
func (h *Handler) Search(c *gin.Context) {
	query := c.Query("q")
	limit := 0
	if limitStr := c.Query("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 0 {
			apiutils.RespondWithBadRequest(c, "invalid limit parameter: must be a non-negative integer", nil)
			return
		}
		limit = parsed
	}

	results, err := h.service.Search(query, limit)
	if err != nil {
		apiutils.RespondWithInternalError(c, "search failed", err)
		return
	}

	responses := make([]models.SearchResultResponse, 0, len(results))
	for _, r := range results {
		responses = append(responses, models.SearchResultResponse{
			FileID:            r.FileID,
			Name:              r.Name,
			RelativePath:      r.RelativePath,
			Size:              r.Size,
			VolumeID:          r.VolumeID,
			VolumeDisplayName: r.VolumeDisplayName,
			IsConnected:       r.IsConnected,
			DuplicateCount:    r.DuplicateCount,
		})
	}

	c.JSON(http.StatusOK, models.SearchResponse{
		Query:   query,
		Results: responses,
		Total:   len(responses),
	})
}
