package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cinesort/cinesort/douban"
	"github.com/cinesort/cinesort/models"
)

// detailTimeout bounds a whole detail lookup, challenge retries included.
const detailTimeout = 30 * time.Second

// Details returns a handler for GET /api/v1/movie/:sid.
func Details(client *douban.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		totalStart := time.Now()

		sid := c.Param("sid")
		if sid == "" {
			c.JSON(http.StatusBadRequest, models.DetailsResponse{
				Success: false,
				Error: &models.ErrorDetail{
					Code:    models.ErrCodeInvalidInput,
					Message: "missing sid",
				},
			})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), detailTimeout)
		defer cancel()

		details, err := client.Details(ctx, sid)
		timing := models.TimingInfo{TotalMs: time.Since(totalStart).Milliseconds()}

		if err != nil {
			var appErr *models.AppError
			if !errors.As(err, &appErr) {
				appErr = models.NewAppError(models.ErrCodeInternal, err.Error(), err)
			}
			c.JSON(statusForCode(appErr.Code), models.DetailsResponse{
				Success: false,
				Timing:  timing,
				Error:   appErr.ToDetail(),
			})
			return
		}

		c.JSON(http.StatusOK, models.DetailsResponse{
			Success: true,
			Movie:   &details,
			Timing:  timing,
		})
	}
}

// statusForCode maps internal error codes to HTTP statuses.
func statusForCode(code string) int {
	switch code {
	case models.ErrCodeNoMatch:
		return http.StatusNotFound
	case models.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case models.ErrCodeConnection, models.ErrCodeHTTPStatus, models.ErrCodeGaveUp, models.ErrCodeChallenge:
		return http.StatusBadGateway
	case models.ErrCodeInvalidInput:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
