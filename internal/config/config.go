package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"

	"citypulse/internal/ranking"
)

// Config centraliza la configuración del servicio.
type Config struct {
	HTTPPort    string `env:"HTTP_PORT" envDefault:"8080"`
	DatabaseURL string `env:"DATABASE_URL,required,notEmpty"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	JWTSecret string `env:"JWT_SECRET"`
	JWTIssuer string `env:"JWT_ISSUER" envDefault:"citypulse"`

	EmbeddingsProvider  string `env:"EMBEDDINGS_PROVIDER" envDefault:"stub"`
	EmbeddingAPIKey     string `env:"EMBEDDING_API_KEY"`
	EmbeddingBaseURL    string `env:"EMBEDDING_BASE_URL" envDefault:"https://api.openai.com/v1"`
	EmbeddingModel      string `env:"EMBEDDING_MODEL" envDefault:"text-embedding-3-small"`
	EmbeddingDimensions int    `env:"EMBEDDING_DIMENSIONS" envDefault:"1536"`

	RankHalfLifeHours float64 `env:"RANK_HALF_LIFE_HOURS" envDefault:"24"`
	RankVectorWeight  float64 `env:"RANK_VECTOR_WEIGHT" envDefault:"0.65"`
	RankMaxSameTag    int     `env:"RANK_MAX_SAME_TAG" envDefault:"3"`

	FeedDiversityEnabled bool `env:"FEED_DIVERSITY_ENABLED" envDefault:"true"`
	FeedSinceHours       int  `env:"FEED_SINCE_HOURS" envDefault:"48"`
	FeedRecentSinceHours int  `env:"FEED_RECENT_SINCE_HOURS" envDefault:"24"`
	AskWindowHours       int  `env:"ASK_WINDOW_HOURS" envDefault:"6"`
	VideoTTLHours        int  `env:"VIDEO_TTL_HOURS" envDefault:"24"`

	LikeRateLimit          int           `env:"LIKE_RATE_LIMIT" envDefault:"30"`
	LikeRateWindow         time.Duration `env:"LIKE_RATE_WINDOW" envDefault:"1m"`
	TasteUpdateMaxAttempts int           `env:"TASTE_UPDATE_MAX_ATTEMPTS" envDefault:"5"`
	ExpirySweepInterval    time.Duration `env:"EXPIRY_SWEEP_INTERVAL" envDefault:"10m"`
}

// LoadConfig carga la configuración desde variables de entorno y valida el bloque de ranking.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if err := c.Ranking().Validate(); err != nil {
		return err
	}
	switch c.EmbeddingsProvider {
	case "stub", "openai":
	default:
		return fmt.Errorf("unknown EMBEDDINGS_PROVIDER %q", c.EmbeddingsProvider)
	}
	if c.EmbeddingDimensions <= 0 {
		return fmt.Errorf("EMBEDDING_DIMENSIONS must be > 0, got %d", c.EmbeddingDimensions)
	}
	if c.FeedSinceHours <= 0 || c.FeedRecentSinceHours <= 0 || c.AskWindowHours <= 0 || c.VideoTTLHours <= 0 {
		return fmt.Errorf("feed, ask and ttl windows must be positive")
	}
	return nil
}

// Ranking arma la configuración explícita que consume el motor de ranking.
func (c *Config) Ranking() ranking.Config {
	return ranking.Config{
		HalfLifeHours: c.RankHalfLifeHours,
		VectorWeight:  c.RankVectorWeight,
		MaxSameTag:    c.RankMaxSameTag,
	}
}

func (c *Config) VideoTTL() time.Duration {
	return time.Duration(c.VideoTTLHours) * time.Hour
}
