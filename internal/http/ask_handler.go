package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"citypulse/internal/domain"
	"citypulse/internal/service"
)

type AskHandler struct {
	logger *zap.Logger
	askSvc *service.AskService
}

func NewAskHandler(logger *zap.Logger, askSvc *service.AskService) *AskHandler {
	return &AskHandler{logger: logger, askSvc: askSvc}
}

// Ask maneja POST /ask. Devuelve las fuentes; no genera texto.
func (h *AskHandler) Ask(c *gin.Context) {
	var req struct {
		Query       string `json:"query" binding:"required,max=500"`
		Borough     string `json:"borough"`
		WindowHours int    `json:"window_hours" binding:"omitempty,min=1,max=168"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid ask request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	var borough domain.Borough
	if strings.TrimSpace(req.Borough) != "" {
		b, ok := parseBoroughParam(c, req.Borough)
		if !ok {
			return
		}
		borough = b
	}

	res, err := h.askSvc.Sources(c.Request.Context(), service.AskQuery{
		Question:    req.Query,
		Borough:     borough,
		WindowHours: req.WindowHours,
	})
	if err != nil {
		writeServiceError(c, h.logger, "answer question", err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Suggestions maneja GET /ask/suggestions?borough=.
func (h *AskHandler) Suggestions(c *gin.Context) {
	borough, ok := parseBoroughParam(c, c.Query("borough"))
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"borough":     borough,
		"suggestions": h.askSvc.Suggestions(borough),
	})
}
