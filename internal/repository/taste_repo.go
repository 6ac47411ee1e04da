package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"

	"citypulse/internal/domain"
)

// ErrTasteVersionConflict indica que otro like actualizo el perfil entre la lectura y la escritura.
var ErrTasteVersionConflict = errors.New("taste profile version conflict")

// TasteRepository persiste perfiles de gusto con semantica read-or-create y
// escritura compare-and-swap sobre Version.
type TasteRepository interface {
	GetOrCreate(ctx context.Context, userID string) (domain.TasteProfile, error)
	UpdateTaste(ctx context.Context, profile domain.TasteProfile, expectedVersion int64) error
}

type PgTasteRepository struct {
	pool *pgxpool.Pool
}

func NewPgTasteRepository(pool *pgxpool.Pool) *PgTasteRepository {
	return &PgTasteRepository{pool: pool}
}

func (r *PgTasteRepository) GetOrCreate(ctx context.Context, userID string) (domain.TasteProfile, error) {
	const insert = `
		INSERT INTO users (id, created_at)
		VALUES ($1, $2)
		ON CONFLICT (id) DO NOTHING
	`
	if _, err := r.pool.Exec(ctx, insert, userID, time.Now().UTC()); err != nil {
		return domain.TasteProfile{}, err
	}

	const query = `
		SELECT id, taste_embedding, taste_count, taste_version, taste_updated_at
		FROM users
		WHERE id = $1
	`
	var (
		profile   domain.TasteProfile
		embedding *pgvector.Vector
		updatedAt *time.Time
	)
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&profile.UserID,
		&embedding,
		&profile.Count,
		&profile.Version,
		&updatedAt,
	)
	if err != nil {
		return domain.TasteProfile{}, err
	}
	if embedding != nil {
		profile.Embedding = embedding.Slice()
	}
	if updatedAt != nil {
		profile.UpdatedAt = *updatedAt
	}
	return profile, nil
}

// UpdateTaste escribe el perfil solo si taste_version sigue siendo expectedVersion.
func (r *PgTasteRepository) UpdateTaste(ctx context.Context, profile domain.TasteProfile, expectedVersion int64) error {
	const query = `
		UPDATE users
		SET taste_embedding = $2,
			taste_count = $3,
			taste_updated_at = $4,
			taste_version = taste_version + 1
		WHERE id = $1 AND taste_version = $5
	`
	tag, err := r.pool.Exec(ctx, query,
		profile.UserID,
		nullableVector(profile.Embedding),
		profile.Count,
		profile.UpdatedAt,
		expectedVersion,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrTasteVersionConflict
	}
	return nil
}
