package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"citypulse/internal/service"
)

type FeedHandler struct {
	logger  *zap.Logger
	feedSvc *service.FeedService
}

func NewFeedHandler(logger *zap.Logger, feedSvc *service.FeedService) *FeedHandler {
	return &FeedHandler{logger: logger, feedSvc: feedSvc}
}

type feedParams struct {
	Borough    string `form:"borough"`
	UserID     string `form:"user_id"`
	Limit      int    `form:"limit,default=20" binding:"min=1,max=50"`
	Skip       int    `form:"skip,default=0" binding:"min=0,max=500"`
	SinceHours int    `form:"since_hours" binding:"omitempty,min=1,max=168"`
}

// GetFeed maneja GET /feed.
func (h *FeedHandler) GetFeed(c *gin.Context) {
	var req feedParams
	if err := c.ShouldBindQuery(&req); err != nil {
		h.logger.Warn("invalid feed request", zap.Error(err))
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

	res, err := h.feedSvc.GetFeed(c.Request.Context(), service.FeedQuery{
		UserID:     userID,
		Borough:    borough,
		Skip:       req.Skip,
		Limit:      req.Limit,
		SinceHours: req.SinceHours,
	})
	if err != nil {
		writeServiceError(c, h.logger, "load feed", err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// GetRecentFeed maneja GET /feed/:borough/recent.
func (h *FeedHandler) GetRecentFeed(c *gin.Context) {
	var req feedParams
	if err := c.ShouldBindQuery(&req); err != nil {
		h.logger.Warn("invalid recent feed request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	borough, ok := parseBoroughParam(c, c.Param("borough"))
	if !ok {
		return
	}

	res, err := h.feedSvc.RecentFeed(c.Request.Context(), service.FeedQuery{
		Borough:    borough,
		Skip:       req.Skip,
		Limit:      req.Limit,
		SinceHours: req.SinceHours,
	})
	if err != nil {
		writeServiceError(c, h.logger, "load feed", err)
		return
	}
	c.JSON(http.StatusOK, res)
}
