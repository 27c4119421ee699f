package api

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cinesort/cinesort/api/handler"
	"github.com/cinesort/cinesort/api/middleware"
	"github.com/cinesort/cinesort/cache"
	"github.com/cinesort/cinesort/config"
	"github.com/cinesort/cinesort/douban"
	"github.com/cinesort/cinesort/library"
)

// NewRouter creates a configured Gin engine with all routes and middleware.
//
// Middleware chain:
//
//	Global:  Recovery → Logger
//	API:     Auth (if enabled) → RateLimit
//
// Health endpoint is intentionally outside auth so monitoring probes always work.
func NewRouter(client *douban.Client, sorter *library.Sorter, cfg *config.Config, cc *cache.Cache, startTime time.Time) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())

	v1 := r.Group("/api/v1")

	// Health — no auth required.
	v1.GET("/health", handler.Health(cc, startTime))

	// Protected group — auth + rate limit.
	protected := v1.Group("")
	if cfg.Auth.Enabled {
		protected.Use(middleware.Auth(cfg.Auth.APIKeys))
	}
	protected.Use(middleware.RateLimit(cfg.RateLimit))

	// Search
	protected.POST("/search", handler.Search(client, cc))

	// Movie details
	protected.GET("/movie/:sid", handler.Details(client))

	// Library sort
	protected.POST("/sort", handler.PostSort(sorter))
	protected.GET("/sort/:id", handler.GetSort())

	return r
}
