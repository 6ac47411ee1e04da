package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"citypulse/internal/domain"
	"citypulse/internal/service"
)

type VideoHandler struct {
	logger   *zap.Logger
	videoSvc *service.VideoService
}

func NewVideoHandler(logger *zap.Logger, videoSvc *service.VideoService) *VideoHandler {
	return &VideoHandler{logger: logger, videoSvc: videoSvc}
}

// Publish maneja POST /videos (solo metadatos; el archivo ya esta en storage).
func (h *VideoHandler) Publish(c *gin.Context) {
	var req struct {
		UserID      string   `json:"user_id"`
		Borough     string   `json:"borough" binding:"required"`
		Title       string   `json:"title" binding:"max=200"`
		Tags        []string `json:"tags"`
		Transcript  string   `json:"transcript" binding:"max=20000"`
		MediaKey    string   `json:"media_key"`
		DurationSec float64  `json:"duration_sec" binding:"min=0"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid publish request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	borough, ok := parseBoroughParam(c, req.Borough)
	if !ok {
		return
	}
	userID, ok := resolveUserID(c, req.UserID)
	if !ok {
		return
	}

	video, err := h.videoSvc.Publish(c.Request.Context(), service.PublishInput{
		UserID:      userID,
		Borough:     borough,
		Title:       req.Title,
		Tags:        req.Tags,
		Transcript:  req.Transcript,
		MediaKey:    req.MediaKey,
		DurationSec: req.DurationSec,
	})
	if err != nil {
		writeServiceError(c, h.logger, "publish video", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"video": toVideoResponse(video)})
}

// Get maneja GET /videos/:id.
func (h *VideoHandler) Get(c *gin.Context) {
	video, err := h.videoSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeServiceError(c, h.logger, "load video", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"video": toVideoResponse(video)})
}

type videoResponse struct {
	domain.Video
	HasEmbedding bool `json:"has_embedding"`
}

func toVideoResponse(v domain.Video) videoResponse {
	return videoResponse{Video: v, HasEmbedding: v.HasEmbedding()}
}
