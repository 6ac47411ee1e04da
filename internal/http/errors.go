package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"citypulse/internal/domain"
	"citypulse/internal/service"
)

// writeServiceError traduce sentinels del servicio a status; el resto es 500 sin detalle.
func writeServiceError(c *gin.Context, logger *zap.Logger, op string, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidRequest), errors.Is(err, domain.ErrInvalidBorough):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
	case errors.Is(err, service.ErrVideoNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "video not found"})
	case errors.Is(err, service.ErrRateLimited):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
	case errors.Is(err, service.ErrTasteUpdateConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "taste update conflict, retry"})
	default:
		logger.Error(op+" failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not " + op})
	}
}

func parseBoroughParam(c *gin.Context, raw string) (domain.Borough, bool) {
	b, err := domain.ParseBorough(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "borough_invalid",
			"allowed": domain.ValidBoroughs,
		})
		return "", false
	}
	return b, true
}
