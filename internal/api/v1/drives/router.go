package drives

import "github.com/gin-gonic/gin"

// Router handles registered-volume routes.
type Router struct {
	handler *Handler
}

// NewRouter builds a drives Router.
func NewRouter(volumes VolumeRepository, connectivity ConnectivityChecker) *Router {
	return &Router{handler: NewHandler(volumes, connectivity)}
}

// RegisterRoutes registers drive routes under group.
func (r *Router) RegisterRoutes(group *gin.RouterGroup) {
	drives := group.Group("/drives")
	{
		drives.GET("", r.handler.ListDrives)
		drives.GET("/:id", r.handler.GetDrive)
	}
}
