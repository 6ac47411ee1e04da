package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const redisLikeRateTimeout = 500 * time.Millisecond

// likeWindowScript cuenta el like en la ventana actual. La clave ya trae el
// indice de ventana, asi que el TTL solo limpia.
const likeWindowScript = `
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return current
`

// redisRateLimiter limita likes por usuario con ventanas fijas compartidas entre replicas.
type redisRateLimiter struct {
	client redisEvaler
	window time.Duration
	max    int
	prefix string
	now    func() time.Time
	logger *zap.Logger
}

type redisEvaler interface {
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
}

func NewRedisRateLimiter(client *redis.Client, prefix string, window time.Duration, max int, logger *zap.Logger) RateLimiter {
	if client == nil {
		return nil
	}
	return newRedisRateLimiter(client, prefix, window, max, logger)
}

func newRedisRateLimiter(client redisEvaler, prefix string, window time.Duration, max int, logger *zap.Logger) *redisRateLimiter {
	if window < time.Second {
		window = time.Minute
	}
	if max <= 0 {
		max = 1
	}
	if prefix == "" {
		prefix = "like:rl:"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &redisRateLimiter{
		client: client,
		window: window,
		max:    max,
		prefix: prefix,
		now:    time.Now,
		logger: logger,
	}
}

// windowKey arma prefix + user + ":" + indice de ventana.
func (l *redisRateLimiter) windowKey(userID string) string {
	idx := l.now().UnixMilli() / l.window.Milliseconds()
	return l.prefix + userID + ":" + strconv.FormatInt(idx, 10)
}

// Allow falla abierto: si Redis no responde a tiempo el like sigue.
// El timeout cuelga del contexto del request, un request cancelado no espera a Redis.
func (l *redisRateLimiter) Allow(ctx context.Context, userID string) bool {
	if l == nil || l.client == nil {
		return true
	}
	userID = strings.ToLower(strings.TrimSpace(userID))
	if userID == "" {
		return false
	}
	if ctx.Err() != nil {
		return true
	}
	ctx, cancel := context.WithTimeout(ctx, redisLikeRateTimeout)
	defer cancel()

	count, err := l.client.Eval(ctx, likeWindowScript, []string{l.windowKey(userID)}, l.window.Milliseconds()).Int()
	if err != nil {
		l.logger.Warn("like rate limiter unavailable, allowing",
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return true
	}
	if count > l.max {
		l.logger.Debug("like rate limited",
			zap.String("user_id", userID),
			zap.Int("count", count),
			zap.Int("max", l.max),
		)
		return false
	}
	return true
}
