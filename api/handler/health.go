package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cinesort/cinesort/cache"
	"github.com/cinesort/cinesort/models"
)

// Version is the reported service version, overridable at build time with
// -ldflags "-X ...".
var Version = "dev"

// Health returns a handler for GET /api/v1/health.
func Health(cc *cache.Cache, startTime time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, models.HealthResponse{
			Status:  "healthy",
			Uptime:  time.Since(startTime).Round(time.Second).String(),
			Cache:   cc.Stats(),
			Version: Version,
		})
	}
}
