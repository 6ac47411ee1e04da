package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"citypulse/internal/service"
)

type LikeHandler struct {
	logger  *zap.Logger
	likeSvc *service.LikeService
}

func NewLikeHandler(logger *zap.Logger, likeSvc *service.LikeService) *LikeHandler {
	return &LikeHandler{logger: logger, likeSvc: likeSvc}
}

type likeRequest struct {
	UserID  string `json:"user_id"`
	VideoID string `json:"video_id" binding:"required"`
}

// Like maneja POST /like.
func (h *LikeHandler) Like(c *gin.Context) {
	var req likeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid like request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	userID, ok := resolveUserID(c, req.UserID)
	if !ok {
		return
	}

	res, err := h.likeSvc.Like(c.Request.Context(), userID, req.VideoID)
	if err != nil {
		writeServiceError(c, h.logger, "process like", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "result": res})
}

// Unlike maneja DELETE /like.
func (h *LikeHandler) Unlike(c *gin.Context) {
	var req likeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid unlike request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	userID, ok := resolveUserID(c, req.UserID)
	if !ok {
		return
	}

	removed, err := h.likeSvc.Unlike(c.Request.Context(), userID, req.VideoID)
	if err != nil {
		writeServiceError(c, h.logger, "process unlike", err)
		return
	}
	msg := "video unliked"
	if !removed {
		msg = "video was not liked"
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "removed": removed, "message": msg})
}

// GetTaste maneja GET /users/:user_id/taste.
func (h *LikeHandler) GetTaste(c *gin.Context) {
	userID, ok := resolveUserID(c, c.Param("user_id"))
	if !ok {
		return
	}
	stats, err := h.likeSvc.TasteSummary(c.Request.Context(), userID)
	if err != nil {
		writeServiceError(c, h.logger, "load taste", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user_id": userID, "taste": stats})
}
