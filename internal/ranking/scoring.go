package ranking

import (
	"math"
	"time"
)

// ScoreBreakdown detalla como se obtuvo el puntaje final de un candidato.
// Es efimero: se calcula por request y solo se loguea para depuracion.
type ScoreBreakdown struct {
	VectorScore  float64 `json:"vector_score"`
	TimeDecay    float64 `json:"time_decay"`
	VectorWeight float64 `json:"vector_weight"`
	TimeWeight   float64 `json:"time_weight"`
	FinalScore   float64 `json:"final_score"`
}

// TimeDecay calcula exp(-horas/halfLifeHours) acotado a [0,1].
// Un createdAt en el futuro se acota a 1.0.
func TimeDecay(createdAt, now time.Time, halfLifeHours float64) (float64, error) {
	if err := validateHalfLife(halfLifeHours); err != nil {
		return 0, err
	}
	if createdAt.IsZero() {
		return 0, ErrMissingCreatedAt
	}
	hoursElapsed := now.Sub(createdAt).Hours()
	return clamp01(math.Exp(-hoursElapsed / halfLifeHours)), nil
}

// NormalizeSimilarity acota el score del buscador vectorial a [0,1]; no lo recalcula.
func NormalizeSimilarity(raw float64) float64 {
	if math.IsNaN(raw) {
		return 0
	}
	return clamp01(raw)
}

// FinalScore combina similitud y recencia: w*vector + (1-w)*decay.
func FinalScore(vectorScore, timeDecay, vectorWeight float64) (float64, error) {
	if err := validateWeight(vectorWeight); err != nil {
		return 0, err
	}
	return vectorWeight*vectorScore + (1.0-vectorWeight)*timeDecay, nil
}

// CosineSimilarity entre dos embeddings de igual dimension. Si alguno tiene
// norma cero devuelve 0.
func CosineSimilarity(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, ErrDimensionMismatch
	}
	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return 0, nil
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}

func clamp01(v float64) float64 {
	return math.Max(0.0, math.Min(1.0, v))
}
