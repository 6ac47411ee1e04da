package ranking

import (
	"fmt"
	"math"
	"time"

	"citypulse/internal/domain"
)

// FoldTaste incorpora el embedding de un video con like a la media acumulada:
//
//	n == 0: E' = V, n' = 1
//	n > 0:  E'[i] = (E[i]*n + V[i]) / (n+1), n' = n+1
//
// No deduplica: llamar dos veces con el mismo vector lo cuenta dos veces.
// Version queda igual; la incrementa el store al persistir.
func FoldTaste(profile domain.TasteProfile, v []float32, now time.Time) (domain.TasteProfile, error) {
	if len(v) == 0 {
		return domain.TasteProfile{}, ErrEmptyEmbedding
	}
	updated := profile
	updated.UpdatedAt = now

	if profile.Count <= 0 || len(profile.Embedding) == 0 {
		updated.Embedding = append([]float32(nil), v...)
		updated.Count = 1
		return updated, nil
	}

	if len(profile.Embedding) != len(v) {
		return domain.TasteProfile{}, fmt.Errorf("%w: taste has %d dims, vector has %d", ErrDimensionMismatch, len(profile.Embedding), len(v))
	}

	n := float64(profile.Count)
	mean := make([]float32, len(v))
	for i := range v {
		mean[i] = float32((float64(profile.Embedding[i])*n + float64(v[i])) / (n + 1))
	}
	updated.Embedding = mean
	updated.Count = profile.Count + 1
	return updated, nil
}

// TasteStats resume un perfil sin exponer el vector.
type TasteStats struct {
	Count      int       `json:"likes_count"`
	HasProfile bool      `json:"has_taste_profile"`
	UpdatedAt  time.Time `json:"last_updated"`
	Dimensions int       `json:"embedding_dimensions"`
	Magnitude  float64   `json:"embedding_magnitude"`
	Mean       float64   `json:"embedding_mean"`
	StdDev     float64   `json:"embedding_std"`
}

func SummarizeTaste(profile domain.TasteProfile) TasteStats {
	stats := TasteStats{
		Count:      profile.Count,
		HasProfile: profile.Count > 0,
		UpdatedAt:  profile.UpdatedAt,
		Dimensions: len(profile.Embedding),
	}
	if len(profile.Embedding) == 0 {
		return stats
	}
	var sum, sumSq float64
	for _, x := range profile.Embedding {
		f := float64(x)
		sum += f
		sumSq += f * f
	}
	n := float64(len(profile.Embedding))
	stats.Magnitude = math.Sqrt(sumSq)
	stats.Mean = sum / n
	var variance float64
	for _, x := range profile.Embedding {
		d := float64(x) - stats.Mean
		variance += d * d
	}
	stats.StdDev = math.Sqrt(variance / n)
	return stats
}
