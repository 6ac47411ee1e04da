package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Pinger es lo minimo que necesita /health de la base.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	logger  *zap.Logger
	db      Pinger
	breaker func() string
}

// NewHealthHandler acepta breaker nil cuando no hay proveedor remoto de embeddings.
func NewHealthHandler(logger *zap.Logger, db Pinger, breaker func() string) *HealthHandler {
	return &HealthHandler{logger: logger, db: db, breaker: breaker}
}

// Health maneja GET /health.
func (h *HealthHandler) Health(c *gin.Context) {
	body := gin.H{"status": "ok", "database": "unchecked"}
	if h.breaker != nil {
		body["embeddings"] = h.breaker()
	}
	if h.db != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.Ping(ctx); err != nil {
			h.logger.Warn("health check database ping failed", zap.Error(err))
			body["status"] = "degraded"
			body["database"] = "unreachable"
			c.JSON(http.StatusServiceUnavailable, body)
			return
		}
		body["database"] = "ok"
	}
	c.JSON(http.StatusOK, body)
}
