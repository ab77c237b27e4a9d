// Package v1 assembles the HTTP API surface: drive listing, on-demand scan
// triggers, search, and system health/diagnostics, plus the WebSocket
// progress feed.
package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/volumedex/volumedex/internal/api/middleware"
	"github.com/volumedex/volumedex/internal/api/v1/drives"
	"github.com/volumedex/volumedex/internal/api/v1/scan"
	"github.com/volumedex/volumedex/internal/api/v1/search"
	"github.com/volumedex/volumedex/internal/api/v1/system"
	"github.com/volumedex/volumedex/internal/config"
	"github.com/volumedex/volumedex/internal/orchestrator"
	searchsvc "github.com/volumedex/volumedex/internal/search"
	"github.com/volumedex/volumedex/internal/store"
	"github.com/volumedex/volumedex/internal/version"
	"github.com/volumedex/volumedex/internal/websocket"
)

// Deps are the already-constructed domain components the router wires into
// HTTP handlers. Built by cmd/volumedexd's main, not by this package.
type Deps struct {
	Store        *store.Store
	Volumes      *store.VolumeRepository
	Files        *store.FileRepository
	Connectivity drives.ConnectivityChecker
	Orchestrator *orchestrator.Orchestrator
	Search       *searchsvc.Service
	Hub          *websocket.Hub
}

// Router owns the Gin engine and its middleware stack.
type Router struct {
	engine *gin.Engine
	hub    *websocket.Hub
}

// NewRouter builds the HTTP API, wiring deps into the v1 route groups.
func NewRouter(deps Deps, cfg *config.Config) *Router {
	r := &Router{engine: gin.New(), hub: deps.Hub}

	r.setupMiddleware(cfg)
	r.setupRoutes(deps)

	return r
}

// Engine returns the underlying Gin engine.
func (r *Router) Engine() *gin.Engine {
	return r.engine
}

// Hub returns the WebSocket hub for broadcasting drive/scan events.
func (r *Router) Hub() *websocket.Hub {
	return r.hub
}

func (r *Router) setupMiddleware(cfg *config.Config) {
	r.engine.Use(gin.Logger())
	r.engine.Use(gin.Recovery())

	r.engine.Use(middleware.ErrorHandler())
	r.engine.Use(middleware.StoreErrorHandler())

	r.engine.Use(middleware.RequestIDMiddleware())
	r.engine.Use(middleware.SecurityHeadersMiddleware(&middleware.SecurityConfig{
		ContentTypeOptions:    cfg.Security.ContentTypeOptions,
		FrameOptions:          cfg.Security.FrameOptions,
		ReferrerPolicy:        cfg.Security.ReferrerPolicy,
		ContentSecurityPolicy: cfg.Security.ContentSecurityPolicy,
		HideServerHeader:      cfg.Security.HideServerHeader,
	}))

	corsConfig := &middleware.CORSConfig{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Requested-With"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}
	r.engine.Use(middleware.CORSMiddleware(corsConfig))

	rateLimitConfig := &middleware.RateLimitConfig{
		Enabled:   cfg.RateLimit.Enabled,
		RPM:       cfg.RateLimit.RPM,
		Burst:     cfg.RateLimit.Burst,
		SkipPaths: []string{"/health", "/metrics"},
		KeyFunc:   middleware.DefaultKeyFunc,
	}
	r.engine.Use(middleware.RateLimitMiddleware(rateLimitConfig))
}

func (r *Router) setupRoutes(deps Deps) {
	r.engine.GET("/", r.getRoot)
	r.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.engine.Group("/api/v1")

	websocketHandler := websocket.NewHandler(deps.Hub)
	websocketHandler.RegisterRoutes(v1)

	systemRouter := system.NewRouter(deps.Store, deps.Volumes, deps.Files)
	systemRouter.RegisterHealthRoute(r.engine)
	systemRouter.RegisterRoutes(v1)

	drivesRouter := drives.NewRouter(deps.Volumes, deps.Connectivity)
	drivesRouter.RegisterRoutes(v1)

	scanRouter := scan.NewRouter(deps.Orchestrator, deps.Volumes)
	scanRouter.RegisterRoutes(v1)

	searchRouter := search.NewRouter(deps.Search)
	searchRouter.RegisterRoutes(v1)
}

// getRoot provides a minimal service identity response for process
// supervisors polling before the API group is ready.
func (r *Router) getRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service": "volumedex",
		"version": version.Version,
	})
}
