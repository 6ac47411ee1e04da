package domain

import "time"

// TasteProfile es la media acumulada de los embeddings que el usuario marco con like.
// Invariante: Count == 0 <=> Embedding vacio.
type TasteProfile struct {
	UserID    string    `json:"user_id"`
	Embedding []float32 `json:"-"`
	Count     int       `json:"count"`
	// Version se incrementa en cada escritura; lo usa el store para compare-and-swap.
	Version   int64     `json:"-"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsEmpty indica que todavia no hay likes incorporados.
func (p TasteProfile) IsEmpty() bool {
	return p.Count == 0
}

// Dimensions devuelve la dimensionalidad del embedding (0 si esta vacio).
func (p TasteProfile) Dimensions() int {
	return len(p.Embedding)
}
