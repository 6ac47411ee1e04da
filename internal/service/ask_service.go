package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"citypulse/internal/domain"
	"citypulse/internal/llm"
	"citypulse/internal/ranking"
	"citypulse/internal/repository"
)

const (
	DefaultAskWindowHours = 6
	askCandidateLimit     = 10
	askMaxSources         = 5
	// relevancia fija para fuentes que vienen del fallback por recencia
	askFallbackRelevance = 0.5
	maxQuestionLength    = 500
)

type AskQuery struct {
	Question    string
	Borough     domain.Borough
	WindowHours int
}

type AskSource struct {
	VideoID   string         `json:"video_id"`
	Title     string         `json:"title"`
	Borough   domain.Borough `json:"borough"`
	Tags      []string       `json:"tags"`
	CreatedAt time.Time      `json:"created_at"`
	Relevance float64        `json:"relevance_score"`
	Score     float64        `json:"score"`
}

type AskResult struct {
	Question string         `json:"question"`
	Borough  domain.Borough `json:"borough,omitempty"`
	Mode     string         `json:"mode"`
	Sources  []AskSource    `json:"sources"`
}

// AskService recupera los videos recientes mas relevantes para una pregunta.
// La redaccion de la respuesta queda fuera; solo se devuelven las fuentes.
type AskService struct {
	videos      repository.VideoRepository
	embedder    llm.EmbeddingSource
	ranker      *ranking.Ranker
	windowHours int
	now         func() time.Time
	logger      *zap.Logger
}

func NewAskService(
	videos repository.VideoRepository,
	embedder llm.EmbeddingSource,
	ranker *ranking.Ranker,
	windowHours int,
	logger *zap.Logger,
) *AskService {
	if windowHours <= 0 {
		windowHours = DefaultAskWindowHours
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AskService{
		videos:      videos,
		embedder:    embedder,
		ranker:      ranker,
		windowHours: windowHours,
		now:         func() time.Time { return time.Now().UTC() },
		logger:      logger,
	}
}

func (s *AskService) Sources(ctx context.Context, q AskQuery) (AskResult, error) {
	if s == nil || s.videos == nil || s.ranker == nil {
		return AskResult{}, ErrServiceNotConfigured
	}
	q.Question = strings.TrimSpace(q.Question)
	if q.Question == "" || len([]rune(q.Question)) > maxQuestionLength {
		return AskResult{}, ErrInvalidRequest
	}
	if q.WindowHours <= 0 {
		q.WindowHours = s.windowHours
	}
	if q.WindowHours > MaxSinceHours {
		q.WindowHours = MaxSinceHours
	}
	since := s.now().Add(-time.Duration(q.WindowHours) * time.Hour)

	result := AskResult{
		Question: q.Question,
		Borough:  q.Borough,
		Sources:  []AskSource{},
	}

	var vector []float32
	if s.embedder != nil {
		v, err := s.embedder.Embed(ctx, q.Question)
		if err != nil {
			s.logger.Warn("question embedding failed, using recency", zap.Error(err))
		} else {
			vector = v
		}
	}

	if len(vector) > 0 {
		matches, err := s.videos.VectorSearch(ctx, repository.VectorQuery{
			Embedding: vector,
			Borough:   q.Borough,
			Since:     since,
			Limit:     askCandidateLimit,
		})
		if err != nil {
			return AskResult{}, fmt.Errorf("vector search: %w", err)
		}
		feed, err := s.ranker.RankPersonalized(matches)
		if err != nil {
			return AskResult{}, fmt.Errorf("rank sources: %w", err)
		}
		result.Mode = FeedModePersonalized
		result.Sources = toSources(feed, false)
		return result, nil
	}

	// sin embedding no hay busqueda global; el fallback necesita un borough
	borough := q.Borough
	if borough == "" {
		borough = domain.BoroughManhattan
	}
	videos, err := s.videos.ListRecent(ctx, repository.RecentQuery{
		Borough: borough,
		Since:   since,
		Limit:   askCandidateLimit,
	})
	if err != nil {
		return AskResult{}, fmt.Errorf("list recent videos: %w", err)
	}
	feed, err := s.ranker.RankRecency(videos)
	if err != nil {
		return AskResult{}, fmt.Errorf("rank sources: %w", err)
	}
	result.Mode = FeedModeRecency
	result.Sources = toSources(feed, true)
	return result, nil
}

func toSources(feed ranking.RankedFeed, fallback bool) []AskSource {
	n := len(feed)
	if n > askMaxSources {
		n = askMaxSources
	}
	sources := make([]AskSource, 0, n)
	for _, item := range feed[:n] {
		relevance := item.Score.VectorScore
		if fallback {
			relevance = askFallbackRelevance
		}
		tags := item.Video.Tags
		if tags == nil {
			tags = []string{}
		}
		sources = append(sources, AskSource{
			VideoID:   item.Video.ID,
			Title:     item.Video.Title,
			Borough:   item.Video.Borough,
			Tags:      tags,
			CreatedAt: item.Video.CreatedAt,
			Relevance: relevance,
			Score:     item.Score.FinalScore,
		})
	}
	return sources
}

var askSuggestions = map[domain.Borough][]string{
	domain.BoroughManhattan: {
		"What's happening in Times Square right now?",
		"Any street performances in Washington Square Park?",
		"Show me food activities in the Village",
		"What's the vibe in Central Park today?",
		"Any art events happening in SoHo?",
	},
	domain.BoroughBrooklyn: {
		"What's happening in Williamsburg right now?",
		"Any food events in DUMBO today?",
		"Show me street art activities in Bushwick",
		"What's going on at Brooklyn Bridge Park?",
		"Any music events in Park Slope?",
	},
	domain.BoroughQueens: {
		"What's happening in Astoria today?",
		"Any cultural events in Flushing?",
		"Show me food activities in Long Island City",
		"What's the scene in Jackson Heights?",
		"Any events at Gantry Plaza State Park?",
	},
	domain.BoroughBronx: {
		"What's happening in the South Bronx?",
		"Any events at Yankee Stadium area?",
		"Show me activities in the Bronx Zoo area",
		"What's going on in Fordham?",
		"Any cultural events happening?",
	},
	domain.BoroughStatenIsland: {
		"What's happening at the Staten Island Ferry?",
		"Any events in St. George?",
		"Show me activities near the boardwalk",
		"What's going on in Richmond Town?",
		"Any nature activities happening?",
	},
}

// Suggestions devuelve una copia; el borough ya viene validado.
func (s *AskService) Suggestions(borough domain.Borough) []string {
	list := askSuggestions[borough]
	return append([]string{}, list...)
}
