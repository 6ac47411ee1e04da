package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"

	"citypulse/internal/domain"
)

// RecentQuery describe un listado por recencia dentro de un borough.
type RecentQuery struct {
	Borough domain.Borough
	Since   time.Time
	Limit   int
}

// VectorQuery describe una busqueda por similitud. Borough vacio busca en toda la ciudad.
type VectorQuery struct {
	Embedding []float32
	Borough   domain.Borough
	Since     time.Time
	Limit     int
}

// VideoRepository es el colaborador que provee candidatos al ranking.
type VideoRepository interface {
	Create(ctx context.Context, video domain.Video) error
	GetByID(ctx context.Context, id string) (domain.Video, error)
	ListRecent(ctx context.Context, q RecentQuery) ([]domain.Video, error)
	VectorSearch(ctx context.Context, q VectorQuery) ([]domain.VideoMatch, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type PgVideoRepository struct {
	pool *pgxpool.Pool
}

func NewPgVideoRepository(pool *pgxpool.Pool) *PgVideoRepository {
	return &PgVideoRepository{pool: pool}
}

const videoColumns = `id, user_id, borough, title, tags, transcript, media_key, duration_sec, embedding, created_at, expires_at`

func (r *PgVideoRepository) Create(ctx context.Context, video domain.Video) error {
	const query = `
		INSERT INTO videos (` + videoColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	tags := video.Tags
	if tags == nil {
		tags = []string{}
	}
	_, err := r.pool.Exec(ctx, query,
		video.ID,
		video.UserID,
		string(video.Borough),
		video.Title,
		tags,
		video.Transcript,
		video.MediaKey,
		video.DurationSec,
		nullableVector(video.Embedding.Slice()),
		video.CreatedAt,
		video.ExpiresAt,
	)
	return err
}

// GetByID devuelve pgx.ErrNoRows si el video no existe o ya expiro.
func (r *PgVideoRepository) GetByID(ctx context.Context, id string) (domain.Video, error) {
	const query = `
		SELECT ` + videoColumns + `
		FROM videos
		WHERE id = $1 AND expires_at > now()
	`
	rows, err := r.pool.Query(ctx, query, id)
	if err != nil {
		return domain.Video{}, err
	}
	defer rows.Close()

	videos, err := scanVideos(rows, false)
	if err != nil {
		return domain.Video{}, err
	}
	if len(videos) == 0 {
		return domain.Video{}, pgx.ErrNoRows
	}
	return videos[0].Video, nil
}

func (r *PgVideoRepository) ListRecent(ctx context.Context, q RecentQuery) ([]domain.Video, error) {
	if q.Limit <= 0 {
		q.Limit = 20
	}
	const query = `
		SELECT ` + videoColumns + `
		FROM videos
		WHERE borough = $1 AND created_at >= $2 AND expires_at > now()
		ORDER BY created_at DESC
		LIMIT $3
	`
	rows, err := r.pool.Query(ctx, query, string(q.Borough), q.Since, q.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	matches, err := scanVideos(rows, false)
	if err != nil {
		return nil, err
	}
	videos := make([]domain.Video, 0, len(matches))
	for _, m := range matches {
		videos = append(videos, m.Video)
	}
	return videos, nil
}

// VectorSearch ordena por distancia coseno (<=>) y reporta similitud = 1 - distancia.
func (r *PgVideoRepository) VectorSearch(ctx context.Context, q VectorQuery) ([]domain.VideoMatch, error) {
	if len(q.Embedding) == 0 {
		return []domain.VideoMatch{}, nil
	}
	if q.Limit <= 0 {
		q.Limit = 50
	}
	const query = `
		SELECT ` + videoColumns + `, 1 - (embedding <=> $1::vector) AS similarity
		FROM videos
		WHERE embedding IS NOT NULL
			AND created_at >= $2
			AND expires_at > now()
			AND ($3 = '' OR borough = $3)
		ORDER BY embedding <=> $1::vector
		LIMIT $4
	`
	rows, err := r.pool.Query(ctx, query, pgvector.NewVector(q.Embedding), q.Since, string(q.Borough), q.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanVideos(rows, true)
}

func (r *PgVideoRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	const query = `DELETE FROM videos WHERE expires_at <= $1`
	tag, err := r.pool.Exec(ctx, query, now)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func scanVideos(rows pgxRows, withSimilarity bool) ([]domain.VideoMatch, error) {
	matches := []domain.VideoMatch{}
	for rows.Next() {
		var (
			m         domain.VideoMatch
			borough   string
			embedding *pgvector.Vector
		)
		dest := []interface{}{
			&m.Video.ID,
			&m.Video.UserID,
			&borough,
			&m.Video.Title,
			&m.Video.Tags,
			&m.Video.Transcript,
			&m.Video.MediaKey,
			&m.Video.DurationSec,
			&embedding,
			&m.Video.CreatedAt,
			&m.Video.ExpiresAt,
		}
		if withSimilarity {
			dest = append(dest, &m.Similarity)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		m.Video.Borough = domain.Borough(borough)
		if embedding != nil {
			m.Video.Embedding = *embedding
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return matches, nil
}

func nullableVector(v []float32) interface{} {
	if len(v) == 0 {
		return nil
	}
	return pgvector.NewVector(v)
}

// IsNotFound unifica la deteccion de "sin filas" para los servicios.
func IsNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
