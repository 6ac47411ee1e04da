package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"citypulse/internal/domain"
	"citypulse/internal/ranking"
	"citypulse/internal/repository"
)

const (
	FeedModePersonalized = "personalized"
	FeedModeRecency      = "recency"

	DefaultFeedLimit            = 20
	MaxFeedLimit                = 50
	DefaultFeedSinceHours       = 48
	DefaultRecentFeedSinceHours = 24
	MaxSinceHours               = 168
	// MaxFeedSkip es la profundidad del feed: mas alla no se pagina.
	MaxFeedSkip                 = 500
)

// FeedQuery son los parametros ya validados de un request de feed.
type FeedQuery struct {
	UserID     string
	Borough    domain.Borough
	Skip       int
	Limit      int
	SinceHours int
}

type FeedResult struct {
	Borough domain.Borough `json:"borough"`
	Mode    string         `json:"mode"`
	ranking.Page
}

type FeedOptions struct {
	DiversityEnabled        bool
	DefaultSinceHours       int
	DefaultRecentSinceHours int
}

// FeedService orquesta taste -> candidatos -> ranking -> diversidad -> pagina.
type FeedService struct {
	videos repository.VideoRepository
	tastes repository.TasteRepository
	ranker *ranking.Ranker
	opts   FeedOptions
	now    func() time.Time
	logger *zap.Logger
}

func NewFeedService(
	videos repository.VideoRepository,
	tastes repository.TasteRepository,
	ranker *ranking.Ranker,
	opts FeedOptions,
	logger *zap.Logger,
) *FeedService {
	if opts.DefaultSinceHours <= 0 {
		opts.DefaultSinceHours = DefaultFeedSinceHours
	}
	if opts.DefaultRecentSinceHours <= 0 {
		opts.DefaultRecentSinceHours = DefaultRecentFeedSinceHours
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FeedService{
		videos: videos,
		tastes: tastes,
		ranker: ranker,
		opts:   opts,
		now:    func() time.Time { return time.Now().UTC() },
		logger: logger,
	}
}

// GetFeed devuelve el feed personalizado si el usuario tiene perfil y la busqueda
// vectorial trae candidatos; si no, cae a recencia.
func (s *FeedService) GetFeed(ctx context.Context, q FeedQuery) (FeedResult, error) {
	if s == nil || s.videos == nil || s.ranker == nil {
		return FeedResult{}, ErrServiceNotConfigured
	}
	q, err := s.normalize(q, s.opts.DefaultSinceHours)
	if err != nil {
		return FeedResult{}, err
	}
	since := s.now().Add(-time.Duration(q.SinceHours) * time.Hour)
	fetch := candidateLimit(q.Skip, q.Limit)

	if q.UserID != "" && s.tastes != nil {
		feed, fetched, ok := s.personalized(ctx, q, since, fetch)
		if ok {
			return s.finish(q, FeedModePersonalized, feed, fetched < fetch)
		}
	}
	return s.recency(ctx, q, since, fetch)
}

// RecentFeed ignora el perfil del usuario.
func (s *FeedService) RecentFeed(ctx context.Context, q FeedQuery) (FeedResult, error) {
	if s == nil || s.videos == nil || s.ranker == nil {
		return FeedResult{}, ErrServiceNotConfigured
	}
	q, err := s.normalize(q, s.opts.DefaultRecentSinceHours)
	if err != nil {
		return FeedResult{}, err
	}
	since := s.now().Add(-time.Duration(q.SinceHours) * time.Hour)
	return s.recency(ctx, q, since, candidateLimit(q.Skip, q.Limit))
}

func (s *FeedService) personalized(ctx context.Context, q FeedQuery, since time.Time, fetch int) (ranking.RankedFeed, int, bool) {
	profile, err := s.tastes.GetOrCreate(ctx, q.UserID)
	if err != nil {
		s.logger.Warn("taste lookup failed, using recency", zap.String("user_id", q.UserID), zap.Error(err))
		return nil, 0, false
	}
	if profile.IsEmpty() {
		return nil, 0, false
	}

	matches, err := s.videos.VectorSearch(ctx, repository.VectorQuery{
		Embedding: profile.Embedding,
		Borough:   q.Borough,
		Since:     since,
		Limit:     fetch,
	})
	if err != nil {
		s.logger.Warn("vector search failed, using recency",
			zap.String("user_id", q.UserID),
			zap.String("borough", q.Borough.String()),
			zap.Error(err),
		)
		return nil, 0, false
	}
	if len(matches) == 0 {
		return nil, 0, false
	}

	feed, err := s.ranker.RankPersonalized(matches)
	if err != nil {
		s.logger.Warn("personalized ranking failed, using recency", zap.String("user_id", q.UserID), zap.Error(err))
		return nil, 0, false
	}
	return feed, len(matches), true
}

func (s *FeedService) recency(ctx context.Context, q FeedQuery, since time.Time, fetch int) (FeedResult, error) {
	videos, err := s.videos.ListRecent(ctx, repository.RecentQuery{
		Borough: q.Borough,
		Since:   since,
		Limit:   fetch,
	})
	if err != nil {
		return FeedResult{}, fmt.Errorf("list recent videos: %w", err)
	}
	feed, err := s.ranker.RankRecency(videos)
	if err != nil {
		return FeedResult{}, fmt.Errorf("rank recency: %w", err)
	}
	return s.finish(q, FeedModeRecency, feed, len(videos) < fetch)
}

// finish aplica diversidad y pagina. exhausted indica que la base devolvio menos
// filas que las pedidas, o sea que no hay contenido fuera de la ventana traida.
func (s *FeedService) finish(q FeedQuery, mode string, feed ranking.RankedFeed, exhausted bool) (FeedResult, error) {
	if s.opts.DiversityEnabled {
		diverse, err := ranking.ApplyDiversity(feed, s.ranker.Config().MaxSameTag)
		if err != nil {
			return FeedResult{}, fmt.Errorf("apply diversity: %w", err)
		}
		feed = diverse
	}
	page := ranking.Paginate(feed, q.Skip, q.Limit)
	if !exhausted {
		// la diversidad pudo recortar la ventana; la base todavia tiene filas
		page.HasMore = true
	}
	if q.Skip+q.Limit > MaxFeedSkip {
		page.HasMore = false
	}

	if ce := s.logger.Check(zap.DebugLevel, "feed ranked"); ce != nil {
		explained := make([]string, 0, len(page.Items))
		for _, item := range page.Items {
			explained = append(explained, ranking.Explain(item))
		}
		ce.Write(
			zap.String("mode", mode),
			zap.String("borough", q.Borough.String()),
			zap.Strings("items", explained),
		)
	}

	return FeedResult{
		Borough: q.Borough,
		Mode:    mode,
		Page:    page,
	}, nil
}

func (s *FeedService) normalize(q FeedQuery, defaultSince int) (FeedQuery, error) {
	q.UserID = strings.TrimSpace(q.UserID)
	if q.Skip < 0 {
		q.Skip = 0
	}
	if q.Skip > MaxFeedSkip {
		return q, fmt.Errorf("%w: skip must be <= %d", ErrInvalidRequest, MaxFeedSkip)
	}
	if q.Limit <= 0 {
		q.Limit = DefaultFeedLimit
	}
	if q.Limit > MaxFeedLimit {
		q.Limit = MaxFeedLimit
	}
	if q.SinceHours <= 0 {
		q.SinceHours = defaultSince
	}
	if q.SinceHours > MaxSinceHours {
		q.SinceHours = MaxSinceHours
	}
	return q, nil
}

// candidateLimit trae skip mas el doble de la pagina pedida para absorber lo que
// descarte el filtro de diversidad. Con skip acotado por MaxFeedSkip el tope
// es MaxFeedSkip+2*MaxFeedLimit filas.
func candidateLimit(skip, limit int) int {
	n := skip + 2*limit
	if n < limit {
		n = limit
	}
	return n
}
