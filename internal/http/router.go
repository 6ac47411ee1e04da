package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"citypulse/internal/service"
)

// Handlers agrupa los handlers que monta el router.
type Handlers struct {
	Health *HealthHandler
	Feed   *FeedHandler
	Like   *LikeHandler
	Ask    *AskHandler
	Video  *VideoHandler
}

// NewRouter configura el router de Gin con middlewares y rutas.
// Con jwtSvc nil las rutas de usuario quedan abiertas y el user_id viene en el request.
func NewRouter(logger *zap.Logger, h Handlers, jwtSvc *service.JWTService) *gin.Engine {
	r := gin.New()

	// Middlewares basicos: logging, recovery y JSON content-type.
	r.Use(zapLoggerMiddleware(logger), gin.Recovery(), jsonContentTypeMiddleware())

	r.GET("/health", h.Health.Health)

	// Rutas publicas: no dependen de la identidad del usuario.
	r.GET("/feed/:borough/recent", h.Feed.GetRecentFeed)
	r.GET("/videos/:id", h.Video.Get)
	r.POST("/ask", h.Ask.Ask)
	r.GET("/ask/suggestions", h.Ask.Suggestions)

	user := r.Group("")
	if jwtSvc != nil {
		user.Use(JWTAuthMiddleware(jwtSvc))
	}
	user.GET("/feed", h.Feed.GetFeed)
	user.POST("/like", h.Like.Like)
	user.DELETE("/like", h.Like.Unlike)
	user.GET("/users/:user_id/taste", h.Like.GetTaste)
	user.POST("/videos", h.Video.Publish)

	return r
}

// zapLoggerMiddleware crea un middleware simple de logging con zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// jsonContentTypeMiddleware fuerza Content-Type: application/json en responses.
func jsonContentTypeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "application/json")
		c.Next()
	}
}
