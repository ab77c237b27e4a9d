package system

import "github.com/gin-gonic/gin"

// Router handles health, version, and consistency routes.
type Router struct {
	handler *Handler
}

// NewRouter builds a system Router.
func NewRouter(store StoreHealthChecker, volumes VolumeRepository, files FileCounter) *Router {
	return &Router{handler: NewHandler(store, volumes, files)}
}

// RegisterHealthRoute registers the health route. group is the root engine group
// (so GetHealth lands on /health, not /api/v1/health) — callers pass the
// root group for health and the v1 group for the rest.
func (r *Router) RegisterHealthRoute(group gin.IRoutes) {
	group.GET("/health", r.handler.GetHealth)
}

// RegisterRoutes registers the v1-scoped system routes.
func (r *Router) RegisterRoutes(group *gin.RouterGroup) {
	system := group.Group("/system")
	{
		system.GET("/version", r.handler.GetVersion)
		system.GET("/consistency", r.handler.GetConsistency)
	}
}
