package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cinesort/cinesort/cache"
	"github.com/cinesort/cinesort/douban"
	"github.com/cinesort/cinesort/models"
)

// Search returns a handler for POST /api/v1/search.
//
// Failed lookups come back with HTTP status 404 (no matching result) or 502
// (the site never yielded content), mirroring the two terminal outcomes of a
// query.
func Search(client *douban.Client, cc *cache.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		totalStart := time.Now()

		var req models.SearchRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.SearchResponse{
				Success: false,
				Error: &models.ErrorDetail{
					Code:    models.ErrCodeInvalidInput,
					Message: err.Error(),
				},
			})
			return
		}
		req.Defaults()

		key := cache.Key(req.Name, req.Year)
		if record, hit := cc.Get(key, req.MaxAge); hit {
			c.JSON(http.StatusOK, models.SearchResponse{
				Success:     true,
				Movie:       &record,
				CacheStatus: "hit",
				Timing: models.TimingInfo{
					TotalMs: time.Since(totalStart).Milliseconds(),
				},
			})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), time.Duration(req.Timeout)*time.Second)
		defer cancel()

		searchStart := time.Now()
		record := client.Search(ctx, req.Name, req.Year)
		searchMs := time.Since(searchStart).Milliseconds()

		timing := models.TimingInfo{
			TotalMs:  time.Since(totalStart).Milliseconds(),
			SearchMs: searchMs,
		}

		if record.Failed() {
			status := http.StatusBadGateway
			code := models.ErrCodeConnection
			if record.Error == models.MsgNoMatch {
				status = http.StatusNotFound
				code = models.ErrCodeNoMatch
			}
			c.JSON(status, models.SearchResponse{
				Success: false,
				Timing:  timing,
				Error:   &models.ErrorDetail{Code: code, Message: record.Error},
			})
			return
		}

		cc.Set(key, record)

		resp := models.SearchResponse{
			Success: true,
			Movie:   &record,
			Timing:  timing,
		}
		if req.MaxAge > 0 {
			resp.CacheStatus = "miss"
		}
		c.JSON(http.StatusOK, resp)
	}
}
