package service

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	pgvector "github.com/pgvector/pgvector-go"
	"go.uber.org/zap"

	"citypulse/internal/domain"
	"citypulse/internal/llm"
	"citypulse/internal/repository"
)

const (
	DefaultVideoTTL = 24 * time.Hour
	maxTitleLength  = 60
	maxVideoTags    = 5
)

// PublishInput son los metadatos de un video ya subido; el archivo vive fuera.
type PublishInput struct {
	UserID      string
	Borough     domain.Borough
	Title       string
	Tags        []string
	Transcript  string
	MediaKey    string
	DurationSec float64
	// CreatedAt cero significa "ahora"; el seed lo usa para fechar hacia atras.
	CreatedAt time.Time
}

// VideoService publica videos con embedding y limpia los expirados.
type VideoService struct {
	repo     repository.VideoRepository
	embedder llm.EmbeddingSource
	ttl      time.Duration
	now      func() time.Time
	logger   *zap.Logger
}

func NewVideoService(repo repository.VideoRepository, embedder llm.EmbeddingSource, ttl time.Duration, logger *zap.Logger) *VideoService {
	if ttl <= 0 {
		ttl = DefaultVideoTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &VideoService{
		repo:     repo,
		embedder: embedder,
		ttl:      ttl,
		now:      func() time.Time { return time.Now().UTC() },
		logger:   logger,
	}
}

func (s *VideoService) Publish(ctx context.Context, in PublishInput) (domain.Video, error) {
	if s == nil || s.repo == nil {
		return domain.Video{}, ErrServiceNotConfigured
	}
	in.UserID = strings.TrimSpace(in.UserID)
	in.Transcript = strings.TrimSpace(in.Transcript)
	if in.UserID == "" || in.DurationSec < 0 {
		return domain.Video{}, ErrInvalidRequest
	}
	borough, err := domain.ParseBorough(string(in.Borough))
	if err != nil {
		return domain.Video{}, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	createdAt := in.CreatedAt.UTC()
	if in.CreatedAt.IsZero() {
		createdAt = s.now()
	}
	video := domain.Video{
		ID:          uuid.NewString(),
		UserID:      in.UserID,
		Borough:     borough,
		Title:       normalizeTitle(in.Title, in.Transcript),
		Tags:        normalizeTags(in.Tags),
		Transcript:  in.Transcript,
		MediaKey:    strings.TrimSpace(in.MediaKey),
		DurationSec: in.DurationSec,
		CreatedAt:   createdAt,
		ExpiresAt:   createdAt.Add(s.ttl),
	}

	if s.embedder != nil {
		text := strings.TrimSpace(video.Title + "\n" + video.Transcript)
		vec, err := s.embedder.Embed(ctx, text)
		if err != nil {
			// el video se publica igual; solo queda fuera de la busqueda vectorial
			s.logger.Warn("video embedding failed",
				zap.String("video_id", video.ID),
				zap.Error(err),
			)
		} else {
			video.Embedding = pgvector.NewVector(vec)
		}
	}

	if err := s.repo.Create(ctx, video); err != nil {
		return domain.Video{}, fmt.Errorf("create video: %w", err)
	}
	s.logger.Info("video published",
		zap.String("video_id", video.ID),
		zap.String("borough", video.Borough.String()),
		zap.Bool("embedded", video.HasEmbedding()),
	)
	return video, nil
}

func (s *VideoService) Get(ctx context.Context, id string) (domain.Video, error) {
	if s == nil || s.repo == nil {
		return domain.Video{}, ErrServiceNotConfigured
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.Video{}, ErrInvalidRequest
	}
	video, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return domain.Video{}, ErrVideoNotFound
		}
		return domain.Video{}, fmt.Errorf("load video: %w", err)
	}
	return video, nil
}

func (s *VideoService) SweepExpired(ctx context.Context) (int64, error) {
	if s == nil || s.repo == nil {
		return 0, ErrServiceNotConfigured
	}
	n, err := s.repo.DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("delete expired videos: %w", err)
	}
	if n > 0 {
		s.logger.Info("expired videos removed", zap.Int64("count", n))
	}
	return n, nil
}

// RunJanitor barre videos expirados cada interval hasta que ctx se cancele.
func (s *VideoService) RunJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		if _, err := s.SweepExpired(ctx); err != nil && ctx.Err() == nil {
			s.logger.Warn("expiry sweep failed", zap.Error(err))
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func normalizeTitle(title, transcript string) string {
	title = strings.Join(strings.Fields(title), " ")
	if title == "" {
		title = strings.Join(strings.Fields(transcript), " ")
	}
	if title == "" {
		return "Untitled"
	}
	if utf8.RuneCountInString(title) <= maxTitleLength {
		return title
	}
	runes := []rune(title)
	return strings.TrimSpace(string(runes[:maxTitleLength]))
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, maxVideoTags)
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		t := strings.ToLower(strings.TrimSpace(tag))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
		if len(out) == maxVideoTags {
			break
		}
	}
	return out
}
