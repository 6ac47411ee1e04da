package domain

import (
	"time"

	pgvector "github.com/pgvector/pgvector-go"
)

// Video es el registro de contenido efimero (24h) que se rankea en el feed.
// El motor de ranking solo lee ID, Embedding, CreatedAt, Tags y Borough.
type Video struct {
	ID          string          `json:"id"`
	UserID      string          `json:"user_id"`
	Borough     Borough         `json:"borough"`
	Title       string          `json:"title"`
	Tags        []string        `json:"tags"`
	Transcript  string          `json:"transcript,omitempty"`
	MediaKey    string          `json:"media_key,omitempty"`
	DurationSec float64         `json:"duration_sec"`
	Embedding   pgvector.Vector `json:"-"`
	CreatedAt   time.Time       `json:"created_at"`
	ExpiresAt   time.Time       `json:"expires_at"`
}

// HasEmbedding indica si el video puede participar en busqueda vectorial.
func (v Video) HasEmbedding() bool {
	return len(v.Embedding.Slice()) > 0
}

// IsExpired reporta si el TTL del video ya vencio respecto a now.
func (v Video) IsExpired(now time.Time) bool {
	return !v.ExpiresAt.IsZero() && !now.Before(v.ExpiresAt)
}

// VideoMatch es un candidato devuelto por la busqueda vectorial junto con su
// similitud cruda (sin normalizar).
type VideoMatch struct {
	Video      Video
	Similarity float64
}
