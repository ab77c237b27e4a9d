package scan

import "github.com/gin-gonic/gin"

// Router handles scan-trigger and scan-status routes.
type Router struct {
	handler *Handler
}

// NewRouter builds a scan Router.
func NewRouter(orch Orchestrator, volumes VolumeRepository) *Router {
	return &Router{handler: NewHandler(orch, volumes)}
}

// RegisterRoutes registers scan routes under group (mounted alongside the
// drives group, so these hang off /drives/:id/scan).
func (r *Router) RegisterRoutes(group *gin.RouterGroup) {
	group.POST("/drives/:id/scan", r.handler.TriggerScan)
	group.GET("/drives/:id/scan", r.handler.GetScanStatus)
}
