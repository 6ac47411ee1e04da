package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// schemaTemplate recibe la dimension del embedding (%d) dos veces.
// taste_version es el token de compare-and-swap del perfil de gustos.
const schemaTemplate = `
CREATE EXTENSION IF NOT EXISTS vector;

CREATE TABLE IF NOT EXISTS videos (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	borough TEXT NOT NULL,
	title TEXT NOT NULL DEFAULT '',
	tags TEXT[] NOT NULL DEFAULT '{}',
	transcript TEXT NOT NULL DEFAULT '',
	media_key TEXT NOT NULL DEFAULT '',
	duration_sec DOUBLE PRECISION NOT NULL DEFAULT 0,
	embedding vector(%d),
	created_at TIMESTAMPTZ NOT NULL,
	expires_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS videos_borough_created_at ON videos (borough, created_at DESC);
CREATE INDEX IF NOT EXISTS videos_expires_at ON videos (expires_at);
CREATE INDEX IF NOT EXISTS videos_embedding_hnsw ON videos USING hnsw (embedding vector_cosine_ops);

CREATE TABLE IF NOT EXISTS users (
	id TEXT PRIMARY KEY,
	taste_embedding vector(%d),
	taste_count INTEGER NOT NULL DEFAULT 0,
	taste_version BIGINT NOT NULL DEFAULT 0,
	taste_updated_at TIMESTAMPTZ,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS likes (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	video_id TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	CONSTRAINT likes_user_video_unique UNIQUE (user_id, video_id)
);
`

// EnsureSchema crea extension, tablas e indices si no existen.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool, dimensions int) error {
	if dimensions <= 0 {
		return fmt.Errorf("invalid embedding dimensions: %d", dimensions)
	}
	if _, err := pool.Exec(ctx, fmt.Sprintf(schemaTemplate, dimensions, dimensions)); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}
