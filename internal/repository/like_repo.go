package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"citypulse/internal/domain"
)

// LikeRepository es el ledger de likes usado para deduplicar antes de tocar el perfil.
type LikeRepository interface {
	Create(ctx context.Context, like domain.Like) (bool, error)
	Exists(ctx context.Context, userID, videoID string) (bool, error)
	Delete(ctx context.Context, userID, videoID string) (bool, error)
}

type PgLikeRepository struct {
	pool *pgxpool.Pool
}

func NewPgLikeRepository(pool *pgxpool.Pool) *PgLikeRepository {
	return &PgLikeRepository{pool: pool}
}

// Create devuelve false si el usuario ya tenia like sobre ese video.
func (r *PgLikeRepository) Create(ctx context.Context, like domain.Like) (bool, error) {
	const query = `
		INSERT INTO likes (id, user_id, video_id, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT ON CONSTRAINT likes_user_video_unique DO NOTHING
	`
	tag, err := r.pool.Exec(ctx, query, like.ID, like.UserID, like.VideoID, like.CreatedAt)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *PgLikeRepository) Exists(ctx context.Context, userID, videoID string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM likes WHERE user_id = $1 AND video_id = $2)`
	var exists bool
	if err := r.pool.QueryRow(ctx, query, userID, videoID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *PgLikeRepository) Delete(ctx context.Context, userID, videoID string) (bool, error) {
	const query = `DELETE FROM likes WHERE user_id = $1 AND video_id = $2`
	tag, err := r.pool.Exec(ctx, query, userID, videoID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
