package search

import "github.com/gin-gonic/gin"

// Router handles search routes.
type Router struct {
	handler *Handler
}

// NewRouter builds a search Router.
func NewRouter(service Searcher) *Router {
	return &Router{handler: NewHandler(service)}
}

// RegisterRoutes registers search routes under group.
func (r *Router) RegisterRoutes(group *gin.RouterGroup) {
	group.GET("/search", r.handler.Search)
}
