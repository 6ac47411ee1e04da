package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"citypulse/internal/domain"
	"citypulse/internal/ranking"
	"citypulse/internal/repository"
)

// LikeResult resume que paso con un like.
type LikeResult struct {
	Created      bool   `json:"created"`
	AlreadyLiked bool   `json:"already_liked"`
	TasteUpdated bool   `json:"taste_updated"`
	LikesCount   int    `json:"likes_count"`
	Message      string `json:"message"`
}

// LikeService registra likes y alimenta el perfil de gustos.
type LikeService struct {
	videos  repository.VideoRepository
	likes   repository.LikeRepository
	tastes  repository.TasteRepository
	updater *TasteUpdater
	limiter RateLimiter
	logger  *zap.Logger
}

func NewLikeService(
	videos repository.VideoRepository,
	likes repository.LikeRepository,
	tastes repository.TasteRepository,
	updater *TasteUpdater,
	limiter RateLimiter,
	logger *zap.Logger,
) *LikeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LikeService{
		videos:  videos,
		likes:   likes,
		tastes:  tastes,
		updater: updater,
		limiter: limiter,
		logger:  logger,
	}
}

// Like es idempotente por (usuario, video): el segundo like no toca el perfil.
func (s *LikeService) Like(ctx context.Context, userID, videoID string) (LikeResult, error) {
	if s == nil || s.videos == nil || s.likes == nil || s.updater == nil {
		return LikeResult{}, ErrServiceNotConfigured
	}
	userID = strings.TrimSpace(userID)
	videoID = strings.TrimSpace(videoID)
	if userID == "" || videoID == "" {
		return LikeResult{}, ErrInvalidRequest
	}
	if s.limiter != nil && !s.limiter.Allow(ctx, userID) {
		return LikeResult{}, ErrRateLimited
	}

	video, err := s.videos.GetByID(ctx, videoID)
	if err != nil {
		if repository.IsNotFound(err) {
			return LikeResult{}, ErrVideoNotFound
		}
		return LikeResult{}, fmt.Errorf("load video: %w", err)
	}

	created, err := s.likes.Create(ctx, domain.Like{
		ID:        uuid.NewString(),
		UserID:    userID,
		VideoID:   videoID,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return LikeResult{}, fmt.Errorf("create like: %w", err)
	}
	if !created {
		return LikeResult{AlreadyLiked: true, Message: "video already liked"}, nil
	}

	if !video.HasEmbedding() {
		s.logger.Warn("liked video has no embedding, taste not updated",
			zap.String("user_id", userID),
			zap.String("video_id", videoID),
		)
		return LikeResult{Created: true, Message: "video liked"}, nil
	}

	profile, err := s.updater.Apply(ctx, userID, video.Embedding.Slice())
	if errors.Is(err, ErrTasteWriteUncertain) {
		// el fold pudo haber quedado escrito: el like se conserva para no contarlo dos veces
		s.logger.Error("taste update outcome unknown, keeping like",
			zap.String("user_id", userID),
			zap.String("video_id", videoID),
			zap.Error(err),
		)
		return LikeResult{}, fmt.Errorf("apply taste: %w", err)
	}
	if err != nil {
		// el perfil no se toco: se borra el like para que un reintento lo aplique
		if _, delErr := s.likes.Delete(context.WithoutCancel(ctx), userID, videoID); delErr != nil {
			s.logger.Error("failed to roll back like after taste error",
				zap.String("user_id", userID),
				zap.String("video_id", videoID),
				zap.Error(delErr),
			)
		}
		if errors.Is(err, ErrTasteUpdateConflict) {
			return LikeResult{}, err
		}
		return LikeResult{}, fmt.Errorf("apply taste: %w", err)
	}

	s.logger.Info("taste updated",
		zap.String("user_id", userID),
		zap.String("video_id", videoID),
		zap.Int("likes", profile.Count),
	)
	return LikeResult{
		Created:      true,
		TasteUpdated: true,
		LikesCount:   profile.Count,
		Message:      "video liked",
	}, nil
}

// Unlike borra el registro del like. El perfil no se revierte.
func (s *LikeService) Unlike(ctx context.Context, userID, videoID string) (bool, error) {
	if s == nil || s.likes == nil {
		return false, ErrServiceNotConfigured
	}
	userID = strings.TrimSpace(userID)
	videoID = strings.TrimSpace(videoID)
	if userID == "" || videoID == "" {
		return false, ErrInvalidRequest
	}
	removed, err := s.likes.Delete(ctx, userID, videoID)
	if err != nil {
		return false, fmt.Errorf("delete like: %w", err)
	}
	return removed, nil
}

func (s *LikeService) TasteSummary(ctx context.Context, userID string) (ranking.TasteStats, error) {
	if s == nil || s.tastes == nil {
		return ranking.TasteStats{}, ErrServiceNotConfigured
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return ranking.TasteStats{}, ErrInvalidRequest
	}
	profile, err := s.tastes.GetOrCreate(ctx, userID)
	if err != nil {
		return ranking.TasteStats{}, fmt.Errorf("load taste profile: %w", err)
	}
	return ranking.SummarizeTaste(profile), nil
}
