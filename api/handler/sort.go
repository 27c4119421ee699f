package handler

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cinesort/cinesort/library"
	"github.com/cinesort/cinesort/models"
	"github.com/cinesort/cinesort/webhook"
)

// sortStore holds all in-flight and completed sort jobs.
var sortStore sync.Map

func init() {
	// Background goroutine to expire sort jobs older than 1 hour.
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			cutoff := time.Now().Add(-1 * time.Hour).Unix()
			sortStore.Range(func(key, value any) bool {
				job := value.(*models.SortJob)
				if job.CreatedAt < cutoff {
					sortStore.Delete(key)
				}
				return true
			})
		}
	}()
}

// PostSort returns a handler for POST /api/v1/sort.
// It validates the request, creates a sort job, and resolves the folder in
// the background.
func PostSort(sorter *library.Sorter) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.SortRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": models.ErrorDetail{
					Code:    models.ErrCodeInvalidInput,
					Message: err.Error(),
				},
			})
			return
		}
		req.Defaults()

		jobID := "sort-" + randomID()
		job := &models.SortJob{
			ID:            jobID,
			Status:        "processing",
			CreatedAt:     time.Now().Unix(),
			WebhookURL:    req.WebhookURL,
			WebhookSecret: req.WebhookSecret,
		}
		sortStore.Store(jobID, job)

		go runSort(sorter, job, req)

		c.JSON(http.StatusOK, models.SortResponse{
			ID:     jobID,
			Status: "processing",
		})
	}
}

// GetSort returns a handler for GET /api/v1/sort/:id.
func GetSort() gin.HandlerFunc {
	return func(c *gin.Context) {
		jobID := c.Param("id")
		val, ok := sortStore.Load(jobID)
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{
				"error": models.ErrorDetail{
					Code:    models.ErrCodeInvalidInput,
					Message: "sort job not found",
				},
			})
			return
		}

		job := val.(*models.SortJob)
		c.JSON(http.StatusOK, models.SortStatusResponse{
			ID:        job.ID,
			Status:    job.Status,
			Completed: job.Completed,
			Total:     job.Total,
			Entries:   job.Entries,
		})
	}
}

// runSort resolves the whole folder and finalizes the job status. The job
// outlives the originating HTTP request, so resolution runs on a fresh
// context.
func runSort(sorter *library.Sorter, job *models.SortJob, req models.SortRequest) {
	entries, err := sorter.SortFolder(context.Background(), req.Directory, *req.Recursive)
	if err != nil {
		job.Status = "failed"
		slog.Error("sort job failed", "id", job.ID, "directory", req.Directory, "error", err)
		notify(job)
		return
	}

	job.Entries = entries
	job.Total = len(entries)

	resolved, failed := 0, 0
	for _, e := range entries {
		switch {
		case e.Movie == nil || e.Movie.Failed():
			failed++
		default:
			resolved++
		}
	}
	job.Completed = resolved + failed

	switch {
	case job.Total > 0 && failed == job.Total:
		job.Status = "failed"
	case failed > 0:
		job.Status = "partial"
	default:
		job.Status = "completed"
	}

	slog.Info("sort job finished",
		"id", job.ID,
		"status", job.Status,
		"resolved", resolved,
		"failed", failed,
		"total", job.Total,
	)
	notify(job)
}

// notify fires the job's webhook, if one was requested.
func notify(job *models.SortJob) {
	if job.WebhookURL == "" {
		return
	}
	webhook.DeliverAsync(job.WebhookURL, job.WebhookSecret, &webhook.Event{
		Type:      "sort." + job.Status,
		JobID:     job.ID,
		Timestamp: time.Now().Unix(),
		Data: models.SortStatusResponse{
			ID:        job.ID,
			Status:    job.Status,
			Completed: job.Completed,
			Total:     job.Total,
			Entries:   job.Entries,
		},
	})
}

// randomID generates a short random hex string for job IDs.
func randomID() string {
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
