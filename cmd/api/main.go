package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"citypulse/internal/config"
	"citypulse/internal/db"
	apihttp "citypulse/internal/http"
	"citypulse/internal/llm"
	"citypulse/internal/ranking"
	"citypulse/internal/repository"
	"citypulse/internal/service"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer pool.Close()

	if err := db.EnsureSchema(ctx, pool, cfg.EmbeddingDimensions); err != nil {
		logger.Fatal("db schema", zap.Error(err))
	}

	videoRepo := repository.NewPgVideoRepository(pool)
	tasteRepo := repository.NewPgTasteRepository(pool)
	likeRepo := repository.NewPgLikeRepository(pool)

	embedder, err := llm.NewEmbeddingSource(llm.ProviderConfig{
		Provider:   cfg.EmbeddingsProvider,
		APIKey:     cfg.EmbeddingAPIKey,
		BaseURL:    cfg.EmbeddingBaseURL,
		Model:      cfg.EmbeddingModel,
		Dimensions: cfg.EmbeddingDimensions,
	}, logger)
	if err != nil {
		logger.Fatal("embedding provider", zap.Error(err))
	}
	var breakerState func() string
	if b, ok := embedder.(*llm.BreakerEmbedder); ok {
		breakerState = b.State
	}

	ranker, err := ranking.NewRanker(cfg.Ranking())
	if err != nil {
		logger.Fatal("ranking config", zap.Error(err))
	}

	var likeLimiter service.RateLimiter
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer redisClient.Close()
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed", zap.Error(err))
		} else {
			likeLimiter = service.NewRedisRateLimiter(redisClient, "like:rl:", cfg.LikeRateWindow, cfg.LikeRateLimit, logger)
		}
		cancel()
	}
	if likeLimiter == nil {
		likeLimiter = service.NewMemoryRateLimiter(cfg.LikeRateWindow, cfg.LikeRateLimit)
	}

	var jwtSvc *service.JWTService
	if cfg.JWTSecret != "" {
		jwtSvc = service.NewJWTService(cfg.JWTSecret, cfg.JWTIssuer, 0)
	} else {
		logger.Warn("jwt secret not configured, user routes trust the request user_id")
	}

	feedSvc := service.NewFeedService(videoRepo, tasteRepo, ranker, service.FeedOptions{
		DiversityEnabled:        cfg.FeedDiversityEnabled,
		DefaultSinceHours:       cfg.FeedSinceHours,
		DefaultRecentSinceHours: cfg.FeedRecentSinceHours,
	}, logger)
	updater := service.NewTasteUpdater(tasteRepo, cfg.TasteUpdateMaxAttempts, logger)
	likeSvc := service.NewLikeService(videoRepo, likeRepo, tasteRepo, updater, likeLimiter, logger)
	askSvc := service.NewAskService(videoRepo, embedder, ranker, cfg.AskWindowHours, logger)
	videoSvc := service.NewVideoService(videoRepo, embedder, cfg.VideoTTL(), logger)

	go videoSvc.RunJanitor(ctx, cfg.ExpirySweepInterval)

	router := apihttp.NewRouter(logger, apihttp.Handlers{
		Health: apihttp.NewHealthHandler(logger, pool, breakerState),
		Feed:   apihttp.NewFeedHandler(logger, feedSvc),
		Like:   apihttp.NewLikeHandler(logger, likeSvc),
		Ask:    apihttp.NewAskHandler(logger, askSvc),
		Video:  apihttp.NewVideoHandler(logger, videoSvc),
	}, jwtSvc)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Warn("server shutdown", zap.Error(err))
		}
	}()

	logger.Info("starting server",
		zap.String("port", cfg.HTTPPort),
		zap.String("embeddings", cfg.EmbeddingsProvider),
		zap.Float64("half_life_hours", cfg.RankHalfLifeHours),
		zap.Float64("vector_weight", cfg.RankVectorWeight),
	)

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("server error", zap.Error(err))
	}
}
