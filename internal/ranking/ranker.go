package ranking

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"citypulse/internal/domain"
)

// RankedItem es un candidato con su desglose de puntaje.
type RankedItem struct {
	Video domain.Video   `json:"video"`
	Score ScoreBreakdown `json:"score"`
}

// RankedFeed esta ordenado por FinalScore descendente; los empates conservan
// el orden de entrada.
type RankedFeed []RankedItem

// Ranker aplica el ScoringEngine a un conjunto de candidatos ya filtrados por
// borough y ventana temporal. No guarda estado entre llamadas.
type Ranker struct {
	cfg   Config
	clock func() time.Time
}

type RankerOption func(*Ranker)

// WithClock fija el "ahora" usado para el decay; util en tests.
func WithClock(clock func() time.Time) RankerOption {
	return func(r *Ranker) {
		if clock != nil {
			r.clock = clock
		}
	}
}

func NewRanker(cfg Config, opts ...RankerOption) (*Ranker, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	r := &Ranker{
		cfg:   cfg,
		clock: func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

func (r *Ranker) Config() Config {
	return r.cfg
}

// RankPersonalized rankea pares (video, similitud) combinando similitud normalizada
// y decay temporal con el VectorWeight configurado.
func (r *Ranker) RankPersonalized(matches []domain.VideoMatch) (RankedFeed, error) {
	now := r.clock()
	feed := make(RankedFeed, 0, len(matches))
	for _, m := range matches {
		decay, err := TimeDecay(m.Video.CreatedAt, now, r.cfg.HalfLifeHours)
		if err != nil {
			return nil, fmt.Errorf("video %s: %w", m.Video.ID, err)
		}
		vectorScore := NormalizeSimilarity(m.Similarity)
		final, err := FinalScore(vectorScore, decay, r.cfg.VectorWeight)
		if err != nil {
			return nil, err
		}
		feed = append(feed, RankedItem{
			Video: m.Video,
			Score: ScoreBreakdown{
				VectorScore:  vectorScore,
				TimeDecay:    decay,
				VectorWeight: r.cfg.VectorWeight,
				TimeWeight:   r.cfg.TimeWeight(),
				FinalScore:   final,
			},
		})
	}
	sortFeed(feed)
	return feed, nil
}

// RankRecency rankea solo por decay temporal (usuarios sin taste o fallback).
func (r *Ranker) RankRecency(videos []domain.Video) (RankedFeed, error) {
	now := r.clock()
	feed := make(RankedFeed, 0, len(videos))
	for _, v := range videos {
		decay, err := TimeDecay(v.CreatedAt, now, r.cfg.HalfLifeHours)
		if err != nil {
			return nil, fmt.Errorf("video %s: %w", v.ID, err)
		}
		feed = append(feed, RankedItem{
			Video: v,
			Score: ScoreBreakdown{
				VectorScore:  0.0,
				TimeDecay:    decay,
				VectorWeight: 0.0,
				TimeWeight:   1.0,
				FinalScore:   decay,
			},
		})
	}
	sortFeed(feed)
	return feed, nil
}

func sortFeed(feed RankedFeed) {
	sort.SliceStable(feed, func(i, j int) bool {
		return feed[i].Score.FinalScore > feed[j].Score.FinalScore
	})
}

// Explain arma una explicacion legible del puntaje para logs de depuracion.
func Explain(item RankedItem) string {
	parts := make([]string, 0, 3)
	if item.Score.VectorWeight > 0 {
		parts = append(parts, fmt.Sprintf("similarity: %.2f (weight: %.1f%%)", item.Score.VectorScore, item.Score.VectorWeight*100))
	}
	parts = append(parts, fmt.Sprintf("recency: %.2f (weight: %.1f%%)", item.Score.TimeDecay, item.Score.TimeWeight*100))
	parts = append(parts, fmt.Sprintf("final: %.2f", item.Score.FinalScore))
	return fmt.Sprintf("ranking for %q: %s", item.Video.Title, strings.Join(parts, " + "))
}
